package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// Event summarises one notification dispatch for downstream analytics
type Event struct {
	Type        string    `json:"type"`
	LiveClassID string    `json:"live_class_id"`
	CourseID    string    `json:"course_id"`
	UserCount   int       `json:"user_count"`
	TokenCount  int       `json:"token_count"`
	Success     int       `json:"success"`
	Failure     int       `json:"failure"`
	Pruned      int64     `json:"pruned"`
	SentAt      time.Time `json:"sent_at"`
}

// PubSubPublisher publishes dispatch events to a Google Cloud Pub/Sub topic
type PubSubPublisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// NewPubSubPublisher connects to projectID and checks that topicName exists
func NewPubSubPublisher(ctx context.Context, projectID, topicName, credentialsFile string) (*PubSubPublisher, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	topic := client.Topic(topicName)
	exists, err := topic.Exists(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to check topic %s: %w", topicName, err)
	}
	if !exists {
		client.Close()
		return nil, fmt.Errorf("topic %s does not exist", topicName)
	}

	log.Printf("[PubSub] Publishing notification audit events to topic: %s", topicName)
	return &PubSubPublisher{client: client, topic: topic}, nil
}

// Publish sends ev and waits for the server acknowledgement
func (p *PubSubPublisher) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode audit event: %w", err)
	}

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"type":          ev.Type,
			"live_class_id": ev.LiveClassID,
		},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("failed to publish audit event: %w", err)
	}
	return nil
}

// Close flushes pending messages and releases the client
func (p *PubSubPublisher) Close() error {
	p.topic.Stop()
	return p.client.Close()
}
