package scheduler

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"liveclass-backend/internal/liveclass/domain"
	"liveclass-backend/internal/notification"

	"github.com/robfig/cron/v3"
)

const (
	DefaultInterval     = 5 * time.Minute
	DefaultReminderLead = 30 * time.Minute
)

// LiveClassStore is the slice of the live class repository the worker needs
type LiveClassStore interface {
	FindPendingReminders(now time.Time, lead time.Duration) ([]*domain.LiveClass, error)
	FindPendingRecordingNotifications() ([]*domain.LiveClass, error)
	FindActiveBefore(now time.Time) ([]*domain.LiveClass, error)
	MarkNotifySent(id string) error
	MarkRecordingNotifySent(id string) error
	UpdateStatus(id string, from, to domain.Status) (bool, error)
}

// Notifier sends the push notifications for a live class
type Notifier interface {
	SendLiveClassReminder(ctx context.Context, lc *domain.LiveClass) (*notification.Outcome, error)
	SendRecordingAvailable(ctx context.Context, lc *domain.LiveClass) (*notification.Outcome, error)
}

// StateMachine decides the status a class should hold at an instant
type StateMachine interface {
	NextStatus(lc *domain.LiveClass, now time.Time) (domain.Status, bool)
}

// Config tunes the worker; zero values fall back to defaults
type Config struct {
	Interval     time.Duration
	ReminderLead time.Duration
	// Lease, when set, must be held for a tick to run
	Lease Lease
}

// TickSummary describes what one tick did
type TickSummary struct {
	StartedAt     time.Time     `json:"started_at"`
	Duration      time.Duration `json:"duration"`
	Reminders     int           `json:"reminders"`
	Recordings    int           `json:"recordings"`
	StatusUpdates int           `json:"status_updates"`
	Failures      int           `json:"failures"`
}

// WorkerStatus is a point-in-time view of the scheduler
type WorkerStatus struct {
	Running    bool          `json:"running"`
	Processing bool          `json:"processing"`
	Interval   time.Duration `json:"interval"`
	LastTick   *TickSummary  `json:"last_tick,omitempty"`
}

// LiveClassScheduler runs the reminder, recording and status passes on a fixed cadence
type LiveClassScheduler struct {
	store    LiveClassStore
	notifier Notifier
	machine  StateMachine
	cfg      Config
	now      func() time.Time

	busy     atomic.Bool
	inflight sync.WaitGroup

	mu       sync.Mutex
	cron     *cron.Cron
	lastTick *TickSummary
}

// NewLiveClassScheduler creates a new scheduler
func NewLiveClassScheduler(store LiveClassStore, notifier Notifier, machine StateMachine, cfg Config) *LiveClassScheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.ReminderLead <= 0 {
		cfg.ReminderLead = DefaultReminderLead
	}
	return &LiveClassScheduler{
		store:    store,
		notifier: notifier,
		machine:  machine,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Start runs one tick immediately, then every Interval
func (s *LiveClassScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		log.Println("[LiveClassWorker] Already running")
		return
	}

	log.Printf("[LiveClassWorker] Starting (interval: %s, reminder lead: %s)", s.cfg.Interval, s.cfg.ReminderLead)

	logger := cron.PrintfLogger(log.Default())
	job := cron.NewChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)).Then(cron.FuncJob(func() {
		s.TriggerTick(context.Background())
	}))

	c := cron.New(cron.WithLogger(logger))
	c.Schedule(cron.Every(s.cfg.Interval), job)
	s.cron = c

	// Run immediately on start
	go job.Run()
	c.Start()
}

// Stop cancels future ticks. An in-flight tick is left to finish;
// the returned context is done once it has.
func (s *LiveClassScheduler) Stop() context.Context {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}

	cronDone := c.Stop()
	done, cancel := context.WithCancel(context.Background())
	go func() {
		defer cancel()
		<-cronDone.Done()
		s.inflight.Wait()
		if s.cfg.Lease != nil {
			if err := s.cfg.Lease.Release(context.Background()); err != nil {
				log.Printf("[LiveClassWorker] Failed to release lease: %v", err)
			}
		}
		log.Println("[LiveClassWorker] Stopped")
	}()
	return done
}

// TriggerTick runs a tick now. It reports false when the tick was skipped
// because another one is in progress or the lease is held elsewhere.
func (s *LiveClassScheduler) TriggerTick(ctx context.Context) (*TickSummary, bool) {
	if !s.busy.CompareAndSwap(false, true) {
		log.Println("[LiveClassWorker] Previous tick still running, skipping")
		return nil, false
	}
	s.inflight.Add(1)
	defer s.inflight.Done()
	defer s.busy.Store(false)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Interval)
	defer cancel()

	if s.cfg.Lease != nil {
		held, err := s.cfg.Lease.Acquire(ctx)
		if err != nil {
			log.Printf("[LiveClassWorker] Failed to acquire lease, skipping tick: %v", err)
			return nil, false
		}
		if !held {
			log.Println("[LiveClassWorker] Lease held by another instance, skipping tick")
			return nil, false
		}
	}

	started := time.Now()
	now := s.now()
	summary := &TickSummary{StartedAt: now}

	var failures int
	summary.Reminders, failures = s.processReminders(ctx, now)
	summary.Failures += failures
	summary.Recordings, failures = s.processRecordings(ctx)
	summary.Failures += failures
	summary.StatusUpdates, failures = s.reconcileStatuses(now)
	summary.Failures += failures
	summary.Duration = time.Since(started)

	s.mu.Lock()
	s.lastTick = summary
	s.mu.Unlock()

	if summary.Reminders > 0 || summary.Recordings > 0 || summary.StatusUpdates > 0 || summary.Failures > 0 {
		log.Printf("[LiveClassWorker] Tick completed: reminders=%d recordings=%d status_updates=%d failures=%d duration=%s",
			summary.Reminders, summary.Recordings, summary.StatusUpdates, summary.Failures, summary.Duration)
	}
	return summary, true
}

// Status reports whether the scheduler is running and what the last tick did
func (s *LiveClassScheduler) Status() WorkerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := WorkerStatus{
		Running:    s.cron != nil,
		Processing: s.busy.Load(),
		Interval:   s.cfg.Interval,
	}
	if s.lastTick != nil {
		last := *s.lastTick
		status.LastTick = &last
	}
	return status
}

// processReminders sends the pre-class reminder for classes starting soon
func (s *LiveClassScheduler) processReminders(ctx context.Context, now time.Time) (sent, failed int) {
	classes, err := s.store.FindPendingReminders(now, s.cfg.ReminderLead)
	if err != nil {
		log.Printf("[LiveClassWorker] Error finding pending reminders: %v", err)
		return 0, 1
	}
	if len(classes) == 0 {
		return 0, 0
	}

	log.Printf("[LiveClassWorker] Found %d live classes with pending reminders", len(classes))

	for _, lc := range classes {
		if _, err := s.notifier.SendLiveClassReminder(ctx, lc); err != nil {
			log.Printf("[LiveClassWorker] Failed to send reminder for live class %s: %v", lc.ID, err)
			failed++
			continue
		}
		if err := s.store.MarkNotifySent(lc.ID); err != nil {
			log.Printf("[LiveClassWorker] Error marking reminder as sent for live class %s: %v", lc.ID, err)
			failed++
			continue
		}
		sent++
	}
	return sent, failed
}

// processRecordings announces recordings that became available
func (s *LiveClassScheduler) processRecordings(ctx context.Context) (sent, failed int) {
	classes, err := s.store.FindPendingRecordingNotifications()
	if err != nil {
		log.Printf("[LiveClassWorker] Error finding pending recording notifications: %v", err)
		return 0, 1
	}
	if len(classes) == 0 {
		return 0, 0
	}

	log.Printf("[LiveClassWorker] Found %d live classes with pending recording notifications", len(classes))

	for _, lc := range classes {
		if _, err := s.notifier.SendRecordingAvailable(ctx, lc); err != nil {
			log.Printf("[LiveClassWorker] Failed to send recording notification for live class %s: %v", lc.ID, err)
			failed++
			continue
		}
		if err := s.store.MarkRecordingNotifySent(lc.ID); err != nil {
			log.Printf("[LiveClassWorker] Error marking recording notification as sent for live class %s: %v", lc.ID, err)
			failed++
			continue
		}
		sent++
	}
	return sent, failed
}

// reconcileStatuses advances SCHEDULED and LIVE classes whose time has come
func (s *LiveClassScheduler) reconcileStatuses(now time.Time) (updated, failed int) {
	classes, err := s.store.FindActiveBefore(now)
	if err != nil {
		log.Printf("[LiveClassWorker] Error finding classes to reconcile: %v", err)
		return 0, 1
	}

	for _, lc := range classes {
		next, due := s.machine.NextStatus(lc, now)
		if !due {
			continue
		}
		changed, err := s.store.UpdateStatus(lc.ID, lc.Status, next)
		if err != nil {
			log.Printf("[LiveClassWorker] Error updating status of live class %s: %v", lc.ID, err)
			failed++
			continue
		}
		if !changed {
			// Someone else moved it first
			continue
		}
		log.Printf("[LiveClassWorker] Auto-marked live class %s as %s", lc.ID, next)
		updated++
	}
	return updated, failed
}
