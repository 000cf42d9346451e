// Package redis publishes committed review changes on a Redis channel.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ericfisherdev/reviewledger/internal/domain/model"
	"github.com/ericfisherdev/reviewledger/internal/domain/port/driven"
)

// DefaultChannel is the pub/sub channel used when none is configured.
const DefaultChannel = "reviewledger:review-status"

// Compile-time interface satisfaction check.
var _ driven.ChangePublisher = (*Publisher)(nil)

// Options configures the Redis connection.
type Options struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379/0").
	URL string

	// Channel receives one message per committed change.
	Channel string

	// ConnectTimeout is the maximum time to wait for connection establishment.
	ConnectTimeout time.Duration

	// WriteTimeout is the maximum time to wait for a publish.
	WriteTimeout time.Duration
}

// ChangeEvent is the JSON payload published for every committed change.
type ChangeEvent struct {
	FindingHash string `json:"finding_hash"`
	OldStatus   string `json:"old_status"`
	NewStatus   string `json:"new_status"`
	OldComment  string `json:"old_comment"`
	NewComment  string `json:"new_comment"`
	Author      string `json:"author"`
	AuditText   string `json:"audit_text"`
	Version     int64  `json:"version"`
	ChangedAt   string `json:"changed_at"`
}

// Publisher implements driven.ChangePublisher using Redis PUBLISH.
type Publisher struct {
	client  *goredis.Client
	channel string
}

// NewPublisher connects to Redis and verifies the connection with PING.
func NewPublisher(ctx context.Context, opts Options) (*Publisher, error) {
	if opts.Channel == "" {
		opts.Channel = DefaultChannel
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	redisOpts, err := goredis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	redisOpts.DialTimeout = opts.ConnectTimeout
	redisOpts.WriteTimeout = opts.WriteTimeout

	client := goredis.NewClient(redisOpts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Publisher{client: client, channel: opts.Channel}, nil
}

// Publish sends change as a JSON ChangeEvent.
func (p *Publisher) Publish(ctx context.Context, change model.ReviewChange) error {
	data, err := json.Marshal(toChangeEvent(change))
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", p.channel, err)
	}

	return nil
}

// Channel returns the channel events are published on.
func (p *Publisher) Channel() string {
	return p.channel
}

// Close closes the Redis connection.
func (p *Publisher) Close() error {
	return p.client.Close()
}

func toChangeEvent(c model.ReviewChange) ChangeEvent {
	return ChangeEvent{
		FindingHash: c.FindingHash,
		OldStatus:   string(c.OldStatus),
		NewStatus:   string(c.NewStatus),
		OldComment:  c.OldComment,
		NewComment:  c.NewComment,
		Author:      c.Author,
		AuditText:   c.AuditText,
		Version:     c.Version,
		ChangedAt:   c.ChangedAt.UTC().Format(time.RFC3339Nano),
	}
}
