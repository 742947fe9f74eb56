package fcm

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/samber/lo"
	"google.golang.org/api/option"
)

// firebaseMulticastLimit is the most tokens the Admin SDK accepts per multicast
const firebaseMulticastLimit = 500

// multicastSender is the part of *messaging.Client the gateway uses
type multicastSender interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// FirebaseGateway sends through the Firebase Admin SDK
type FirebaseGateway struct {
	messagingClient multicastSender
}

// NewFirebaseGateway creates a gateway using the provided credentials file
func NewFirebaseGateway(ctx context.Context, credentialsFile string) (*FirebaseGateway, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	log.Println("[FCM] Firebase client initialized successfully")
	return &FirebaseGateway{
		messagingClient: messagingClient,
	}, nil
}

func (g *FirebaseGateway) Name() string {
	return "firebase"
}

// SendBatch sends req in SDK-sized chunks and merges the per-token results in order
func (g *FirebaseGateway) SendBatch(ctx context.Context, req BatchRequest) (*BatchResponse, error) {
	out := &BatchResponse{Results: make([]TokenResult, 0, len(req.Tokens))}

	for i, chunk := range lo.Chunk(req.Tokens, firebaseMulticastLimit) {
		response, err := g.messagingClient.SendEachForMulticast(ctx, buildMulticast(chunk, req))
		if err != nil {
			if i == 0 {
				return nil, fmt.Errorf("failed to send FCM multicast message: %w", err)
			}
			// Earlier chunks were delivered; report this one as failed per token
			for range chunk {
				out.Results = append(out.Results, TokenResult{Error: ErrorUnavailable})
			}
			out.Failure += len(chunk)
			continue
		}

		out.Success += response.SuccessCount
		out.Failure += response.FailureCount
		for _, resp := range response.Responses {
			if resp.Success {
				out.Results = append(out.Results, TokenResult{MessageID: resp.MessageID})
				continue
			}
			out.Results = append(out.Results, TokenResult{Error: classifySDKError(resp.Error)})
		}
	}

	return out, nil
}

func buildMulticast(tokens []string, req BatchRequest) *messaging.MulticastMessage {
	ttl := req.TTL
	expiration := time.Now().Add(ttl).Unix()

	return &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title:    req.Notification.Title,
			Body:     req.Notification.Body,
		},
		Data: req.Data,
		Android: &messaging.AndroidConfig{
			Priority: req.Priority,
			TTL:      &ttl,
			Notification: &messaging.AndroidNotification{
				ClickAction: req.Notification.ClickAction,
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":   "10",
				"apns-expiration": strconv.FormatInt(expiration, 10),
			},
		},
		Webpush: &messaging.WebpushConfig{
			Headers: map[string]string{
				"TTL":     strconv.Itoa(int(ttl / time.Second)),
				"Urgency": req.Priority,
			},
			Notification: &messaging.WebpushNotification{
				Title: req.Notification.Title,
				Body:  req.Notification.Body,
				Icon:  "/icon-192.svg",
			},
		},
	}
}

// classifySDKError maps Admin SDK errors onto the gateway's per-token codes
func classifySDKError(err error) string {
	switch {
	case err == nil:
		return ErrorInternal
	case messaging.IsUnregistered(err):
		return ErrorNotRegistered
	case messaging.IsInvalidArgument(err):
		// also raised for payload problems, so the token is not condemned
		return ErrorInvalidArgument
	case messaging.IsSenderIDMismatch(err):
		return ErrorMismatchSenderID
	case messaging.IsUnavailable(err):
		return ErrorUnavailable
	default:
		return ErrorInternal
	}
}
