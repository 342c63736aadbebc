// Package broadcast pushes post-sync dashboard summaries onto a Redis
// channel so connected frontends can refresh without polling. Delivery
// is best effort; a nil Publisher is a no-op.
package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Channel is the pub/sub channel dashboards subscribe to.
const Channel = "dashboard:refresh"

type Publisher struct {
	client *redis.Client
	log    *zap.Logger
}

// New creates a publisher from a Redis URL. Returns nil if the URL is
// empty (broadcast not configured).
func New(url string, log *zap.Logger) (*Publisher, error) {
	if url == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Publisher{client: client, log: log}, nil
}

// Publish sends the payload to the refresh channel. Errors are logged
// and swallowed; sync never fails on broadcast.
func (p *Publisher) Publish(ctx context.Context, payload any) {
	if p == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		p.log.Error("broadcast marshal failed", zap.Error(err))
		return
	}
	if err := p.client.Publish(ctx, Channel, body).Err(); err != nil {
		p.log.Warn("broadcast publish failed", zap.Error(err))
	}
}

func (p *Publisher) Health(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p.client.Ping(ctx).Err()
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.client.Close()
}
