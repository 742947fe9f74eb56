package fcm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// LegacyEndpoint is the FCM legacy HTTP send endpoint
const LegacyEndpoint = "https://fcm.googleapis.com/fcm/send"

type legacyNotification struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	ClickAction string `json:"click_action,omitempty"`
}

type legacyMessage struct {
	RegistrationIDs []string           `json:"registration_ids"`
	Notification    legacyNotification `json:"notification"`
	Data            map[string]string  `json:"data"`
	Priority        string             `json:"priority,omitempty"`
	TimeToLive      int                `json:"time_to_live,omitempty"`
}

type legacyResponse struct {
	MulticastID int64 `json:"multicast_id"`
	Success     int   `json:"success"`
	Failure     int   `json:"failure"`
	Results     []struct {
		MessageID string `json:"message_id,omitempty"`
		Error     string `json:"error,omitempty"`
	} `json:"results"`
}

// LegacyHTTPGateway talks to the FCM legacy HTTP API with a server key
type LegacyHTTPGateway struct {
	Endpoint   string
	serverKey  string
	httpClient *http.Client
}

// NewLegacyHTTPGateway creates a gateway authenticated with serverKey
func NewLegacyHTTPGateway(serverKey string) *LegacyHTTPGateway {
	return &LegacyHTTPGateway{
		Endpoint:   LegacyEndpoint,
		serverKey:  serverKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *LegacyHTTPGateway) Name() string {
	return "fcm-legacy"
}

func (g *LegacyHTTPGateway) SendBatch(ctx context.Context, req BatchRequest) (*BatchResponse, error) {
	body, err := json.Marshal(legacyMessage{
		RegistrationIDs: req.Tokens,
		Notification: legacyNotification{
			Title:       req.Notification.Title,
			Body:        req.Notification.Body,
			ClickAction: req.Notification.ClickAction,
		},
		Data:       req.Data,
		Priority:   req.Priority,
		TimeToLive: int(req.TTL / time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode FCM message: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build FCM request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "key="+g.serverKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("FCM request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errText, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("FCM request failed with status %d: %s", resp.StatusCode, string(errText))
	}

	var decoded legacyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode FCM response: %w", err)
	}

	out := &BatchResponse{
		Success: decoded.Success,
		Failure: decoded.Failure,
		Results: make([]TokenResult, 0, len(decoded.Results)),
	}
	for _, r := range decoded.Results {
		out.Results = append(out.Results, TokenResult{MessageID: r.MessageID, Error: r.Error})
	}
	return out, nil
}
