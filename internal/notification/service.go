package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	devicedomain "liveclass-backend/internal/device/domain"
	liveclassdomain "liveclass-backend/internal/liveclass/domain"
	"liveclass-backend/internal/notification/audit"
	notificationdomain "liveclass-backend/internal/notification/domain"
	"liveclass-backend/pkg/fcm"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gorm.io/datatypes"
)

const (
	clickOpenLiveClass = "OPEN_LIVE_CLASS"
	clickOpenRecording = "OPEN_RECORDING"
)

// Dispatcher delivers one notification to a list of device tokens
type Dispatcher interface {
	Enabled() bool
	Send(ctx context.Context, tokens []string, notification fcm.Notification, data map[string]string) fcm.Result
}

// EnrollmentFinder resolves who should hear about a course's classes
type EnrollmentFinder interface {
	FindEnrolledUserIDs(courseID string) ([]string, error)
}

// TokenStore reads and prunes device tokens
type TokenStore interface {
	FindTokensByUserIDs(userIDs []string) ([]devicedomain.DeviceToken, error)
	DeleteTokens(tokens []string) (int64, error)
}

// LogWriter appends notification audit rows
type LogWriter interface {
	CreateBatch(logs []*notificationdomain.NotificationLog) error
}

// AuditPublisher forwards dispatch summaries to an external sink
type AuditPublisher interface {
	Publish(ctx context.Context, ev audit.Event) error
}

// Outcome summarises one live-class notification
type Outcome struct {
	Users   int   `json:"users"`
	Tokens  int   `json:"tokens"`
	Success int   `json:"success"`
	Failure int   `json:"failure"`
	Pruned  int64 `json:"pruned"`
}

// Options tune the notifier; zero values fall back to defaults
type Options struct {
	ReminderLead time.Duration
	// PruneOnlyInvalid keeps tokens that failed for transient reasons
	PruneOnlyInvalid bool
	Publisher        AuditPublisher
}

// Service turns live-class events into push notifications
type Service struct {
	dispatcher  Dispatcher
	enrollments EnrollmentFinder
	tokens      TokenStore
	logs        LogWriter
	opts        Options
	now         func() time.Time
}

// NewService wires a notifier from its collaborators
func NewService(dispatcher Dispatcher, enrollments EnrollmentFinder, tokens TokenStore, logs LogWriter, opts Options) *Service {
	if opts.ReminderLead <= 0 {
		opts.ReminderLead = 30 * time.Minute
	}
	return &Service{
		dispatcher:  dispatcher,
		enrollments: enrollments,
		tokens:      tokens,
		logs:        logs,
		opts:        opts,
		now:         time.Now,
	}
}

// SendLiveClassReminder tells enrolled users that lc is about to start
func (s *Service) SendLiveClassReminder(ctx context.Context, lc *liveclassdomain.LiveClass) (*Outcome, error) {
	notification := fcm.Notification{
		Title:       "🔴 Live Class Starting Soon!",
		Body:        fmt.Sprintf("%s - %s is starting in %d minutes", lc.Title, lc.CourseTitle(), int(s.opts.ReminderLead.Minutes())),
		ClickAction: clickOpenLiveClass,
	}
	data := map[string]string{
		"type":       string(notificationdomain.TypeLiveClass),
		"classId":    lc.ID,
		"courseId":   lc.CourseID,
		"meetingUrl": lc.MeetingURL,
	}

	outcome, err := s.notifyCourse(ctx, lc, notificationdomain.TypeLiveClass, notification, data)
	if err != nil {
		return nil, errors.Wrapf(err, "send live class reminder %s", lc.ID)
	}
	return outcome, nil
}

// SendRecordingAvailable tells enrolled users that lc's recording can be watched
func (s *Service) SendRecordingAvailable(ctx context.Context, lc *liveclassdomain.LiveClass) (*Outcome, error) {
	if !lc.HasRecording() {
		log.Printf("[Notifier] No recording URL for live class %s, skipping", lc.ID)
		return &Outcome{}, nil
	}

	notification := fcm.Notification{
		Title:       "📹 Recording Available!",
		Body:        fmt.Sprintf("The recording for %q is now available", lc.Title),
		ClickAction: clickOpenRecording,
	}
	data := map[string]string{
		"type":         string(notificationdomain.TypeRecordingAvailable),
		"classId":      lc.ID,
		"courseId":     lc.CourseID,
		"recordingUrl": *lc.RecordingURL,
	}

	outcome, err := s.notifyCourse(ctx, lc, notificationdomain.TypeRecordingAvailable, notification, data)
	if err != nil {
		return nil, errors.Wrapf(err, "send recording notification %s", lc.ID)
	}
	return outcome, nil
}

// SendTest sends a diagnostic notification to a single token
func (s *Service) SendTest(ctx context.Context, token string) bool {
	result := s.dispatcher.Send(ctx, []string{token}, fcm.Notification{
		Title: "Test Notification",
		Body:  "This is a test notification from the live class backend",
	}, map[string]string{
		"type":     string(notificationdomain.TypeLiveClass),
		"classId":  "test",
		"courseId": "test",
	})
	return result.SuccessCount > 0
}

func (s *Service) notifyCourse(
	ctx context.Context,
	lc *liveclassdomain.LiveClass,
	kind notificationdomain.Type,
	notification fcm.Notification,
	data map[string]string,
) (*Outcome, error) {
	userIDs, err := s.enrollments.FindEnrolledUserIDs(lc.CourseID)
	if err != nil {
		return nil, err
	}
	if len(userIDs) == 0 {
		log.Printf("[Notifier] No enrolled users for live class %s", lc.ID)
		return &Outcome{}, nil
	}

	deviceTokens, err := s.tokens.FindTokensByUserIDs(userIDs)
	if err != nil {
		return nil, err
	}
	outcome := &Outcome{Users: len(userIDs), Tokens: len(deviceTokens)}
	if len(deviceTokens) == 0 {
		log.Printf("[Notifier] No device tokens for %d enrolled users of live class %s", len(userIDs), lc.ID)
		return outcome, nil
	}

	// A token registered by two users is still one device
	tokens := lo.Uniq(lo.Map(deviceTokens, func(t devicedomain.DeviceToken, _ int) string {
		return t.Token
	}))
	outcome.Tokens = len(tokens)

	result := s.dispatcher.Send(ctx, tokens, notification, data)
	outcome.Success = result.SuccessCount
	outcome.Failure = result.FailureCount

	s.writeLogs(userIDs, kind, notification, data, lc.ID)

	// Without a gateway nothing was attempted, so nothing proves a token bad
	if s.dispatcher.Enabled() {
		outcome.Pruned = s.pruneTokens(result)
	}

	s.publish(ctx, audit.Event{
		Type:        string(kind),
		LiveClassID: lc.ID,
		CourseID:    lc.CourseID,
		UserCount:   outcome.Users,
		TokenCount:  outcome.Tokens,
		Success:     outcome.Success,
		Failure:     outcome.Failure,
		Pruned:      outcome.Pruned,
		SentAt:      s.now(),
	})

	log.Printf("[Notifier] %s notification for live class %s: tokens=%d success=%d failure=%d pruned=%d",
		kind, lc.ID, outcome.Tokens, outcome.Success, outcome.Failure, outcome.Pruned)
	return outcome, nil
}

// writeLogs records one row per targeted user; failures never block delivery
func (s *Service) writeLogs(userIDs []string, kind notificationdomain.Type, notification fcm.Notification, data map[string]string, liveClassID string) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("[Notifier] Failed to encode notification payload: %v", err)
		payload = []byte("{}")
	}

	sentAt := s.now()
	logs := make([]*notificationdomain.NotificationLog, 0, len(userIDs))
	for _, userID := range userIDs {
		id := liveClassID
		logs = append(logs, &notificationdomain.NotificationLog{
			UserID:      userID,
			Type:        kind,
			Title:       notification.Title,
			Body:        notification.Body,
			Data:        datatypes.JSON(payload),
			LiveClassID: &id,
			Sent:        true,
			SentAt:      sentAt,
		})
	}

	if err := s.logs.CreateBatch(logs); err != nil {
		log.Printf("[Notifier] Failed to log notifications: %v", err)
	}
}

func (s *Service) pruneTokens(result fcm.Result) int64 {
	candidates := result.FailedTokens
	if s.opts.PruneOnlyInvalid {
		candidates = result.InvalidTokens
	}
	if len(candidates) == 0 {
		return 0
	}

	count, err := s.tokens.DeleteTokens(candidates)
	if err != nil {
		log.Printf("[Notifier] Failed to clean up %d invalid tokens: %v", len(candidates), err)
		return 0
	}
	log.Printf("[Notifier] Cleaned up %d invalid tokens", count)
	return count
}

func (s *Service) publish(ctx context.Context, ev audit.Event) {
	if s.opts.Publisher == nil {
		return
	}
	if err := s.opts.Publisher.Publish(ctx, ev); err != nil {
		log.Printf("[Notifier] Failed to publish audit event: %v", err)
	}
}
