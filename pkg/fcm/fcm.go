package fcm

import (
	"context"
	"log"
	"time"

	"github.com/samber/lo"
)

const (
	// MaxBatchSize is the largest number of tokens sent in one gateway request
	MaxBatchSize = 1000

	// DefaultTTL keeps stale reminders from being delivered long after the fact
	DefaultTTL = time.Hour

	PriorityHigh = "high"
)

// Per-token error codes reported by the gateway
const (
	ErrorNotRegistered       = "NotRegistered"
	ErrorInvalidRegistration = "InvalidRegistration"
	ErrorMismatchSenderID    = "MismatchSenderId"
	ErrorInvalidArgument     = "InvalidArgument"
	ErrorUnavailable         = "Unavailable"
	ErrorInternal            = "InternalServerError"
)

// IsPermanentError reports whether a per-token error means the token will never work again
func IsPermanentError(code string) bool {
	switch code {
	case ErrorNotRegistered, ErrorInvalidRegistration, ErrorMismatchSenderID:
		return true
	}
	return false
}

// Notification contains the visible part of a push notification
type Notification struct {
	Title       string
	Body        string
	ClickAction string // Action or URL to open when the notification is clicked
}

// BatchRequest is a single gateway call for at most MaxBatchSize tokens
type BatchRequest struct {
	Tokens       []string
	Notification Notification
	Data         map[string]string
	Priority     string
	TTL          time.Duration
}

// TokenResult is the gateway outcome for one token, in request order
type TokenResult struct {
	MessageID string
	Error     string
}

// BatchResponse is what a gateway reports for one batch
type BatchResponse struct {
	Success int
	Failure int
	Results []TokenResult
}

// Gateway delivers one batch of push notifications
type Gateway interface {
	Name() string
	SendBatch(ctx context.Context, req BatchRequest) (*BatchResponse, error)
}

// Result aggregates the outcome of a Send across all batches.
// InvalidTokens is the subset of FailedTokens the gateway reported as permanently invalid.
type Result struct {
	SuccessCount  int
	FailureCount  int
	FailedTokens  []string
	InvalidTokens []string
}

// Dispatcher partitions tokens into batches and hands them to a Gateway
type Dispatcher struct {
	gateway   Gateway
	batchSize int
	ttl       time.Duration
}

// NewDispatcher creates a dispatcher. A nil gateway disables delivery.
func NewDispatcher(gateway Gateway) *Dispatcher {
	return &Dispatcher{
		gateway:   gateway,
		batchSize: MaxBatchSize,
		ttl:       DefaultTTL,
	}
}

// Enabled reports whether a gateway is configured
func (d *Dispatcher) Enabled() bool {
	return d != nil && d.gateway != nil
}

// Send delivers notification to every token, one batch at a time
func (d *Dispatcher) Send(ctx context.Context, tokens []string, notification Notification, data map[string]string) Result {
	if !d.Enabled() {
		log.Printf("[FCM] No push gateway configured, skipping notification for %d tokens", len(tokens))
		return Result{
			FailureCount: len(tokens),
			FailedTokens: append([]string(nil), tokens...),
		}
	}

	if len(tokens) == 0 {
		log.Println("[FCM] No tokens to send to")
		return Result{}
	}

	payload := sanitizeData(data)
	var result Result

	for _, batch := range lo.Chunk(tokens, d.batchSize) {
		resp, err := d.gateway.SendBatch(ctx, BatchRequest{
			Tokens:       batch,
			Notification: notification,
			Data:         payload,
			Priority:     PriorityHigh,
			TTL:          d.ttl,
		})
		if err != nil {
			log.Printf("[FCM] %s batch of %d failed: %v", d.gateway.Name(), len(batch), err)
			result.FailureCount += len(batch)
			result.FailedTokens = append(result.FailedTokens, batch...)
			continue
		}

		result.SuccessCount += resp.Success
		result.FailureCount += resp.Failure

		for i, r := range resp.Results {
			if r.Error == "" || i >= len(batch) {
				continue
			}
			result.FailedTokens = append(result.FailedTokens, batch[i])
			if IsPermanentError(r.Error) {
				result.InvalidTokens = append(result.InvalidTokens, batch[i])
				log.Printf("[FCM] Invalid token detected %s: %s", MaskToken(batch[i]), r.Error)
			}
		}

		log.Printf("[FCM] Batch sent via %s: size=%d success=%d failure=%d", d.gateway.Name(), len(batch), resp.Success, resp.Failure)
	}

	return result
}

// sanitizeData drops empty values; the gateway only accepts string pairs
func sanitizeData(data map[string]string) map[string]string {
	out := make(map[string]string, len(data))
	for k, v := range data {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// MaskToken shortens a token for logging
func MaskToken(token string) string {
	if len(token) <= 20 {
		return token
	}
	return token[:20] + "..."
}
