package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/beacontrade/stocksync-backend/pkg/config"
	"github.com/beacontrade/stocksync-backend/pkg/logger"
)

var errProjectIDRequired = errors.New("gcp project id is required")

// Publisher pushes ledger lifecycle messages onto a single Pub/Sub topic.
type Publisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	topicID   string
}

// NewPublisher creates a Pub/Sub v2 client bound to the configured ledger topic.
func NewPublisher(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Publisher, error) {
	if strings.TrimSpace(gcp.ProjectID) == "" {
		return nil, errProjectIDRequired
	}
	topicID := strings.TrimSpace(cfg.LedgerTopic)
	if topicID == "" {
		return nil, errors.New("pubsub ledger topic is required")
	}

	psClient, err := pubsub.NewClient(ctx, gcp.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "topic", topicID), "pubsub publisher initialized")
	}

	return &Publisher{
		client:    psClient,
		publisher: psClient.Publisher(topicID),
		topicID:   topicID,
	}, nil
}

// Publish sends one message and blocks until the server acks it. Nil receivers
// are a no-op so callers can leave eventing unconfigured.
func (p *Publisher) Publish(ctx context.Context, data []byte, attrs map[string]string) error {
	if p == nil || p.publisher == nil {
		return nil
	}
	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish to %s: %w", p.topicID, err)
	}
	return nil
}

// Close flushes and releases the underlying client.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	if p.publisher != nil {
		p.publisher.Stop()
	}
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
