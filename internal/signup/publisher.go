// Package signup implements the asynchronous user-creation pipeline:
// a Redis Stream carries creation requests from the HTTP boundary to a
// consumer-group worker, and a status store tracks each request's
// outcome by request ID.
package signup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/partnerhub/partnerhub/internal/metrics"
)

const (
	// StreamKey is the Redis stream for user-creation requests.
	StreamKey = "stream:user_signups"

	// DeadLetterStreamKey is the Redis stream for poison messages.
	DeadLetterStreamKey = "stream:user_signups:dlq"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 100000

	// PublishTimeout bounds how long an enqueue may block on Redis.
	PublishTimeout = 2 * time.Second
)

// Message is the wire format for a queued user-creation request.
// The password travels through the queue so the worker can hash it;
// the stream itself is internal infrastructure, never exposed.
type Message struct {
	RequestID string `json:"request_id"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name,omitempty"`
}

// NewRequestID generates an opaque token correlating an async request
// with its eventual outcome.
func NewRequestID() string {
	return ulid.Make().String()
}

// Publisher enqueues user-creation requests to the signup stream.
type Publisher struct {
	redis   *redis.Client
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewPublisher creates a new signup publisher.
func NewPublisher(client *redis.Client, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Publisher{
		redis:   client,
		logger:  logger.With("component", "signup.publisher"),
		metrics: recorder,
	}
}

// Publish adds a creation request to the stream. The caller must have
// written the PENDING status before calling, so a poll never observes
// a published request with no status.
func (p *Publisher) Publish(ctx context.Context, msg Message) (string, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		p.metrics.IncSignupPublished("dropped")
		return "", fmt.Errorf("marshal message: %w", err)
	}

	streamID, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: MaxStreamLen,
		Approx: true, // ~MAXLEN for performance
		ID:     "*",  // Auto-generate ID
		Values: map[string]interface{}{
			"payload": string(data),
		},
	}).Result()

	if err != nil {
		p.metrics.IncSignupPublished("dropped")
		return "", fmt.Errorf("xadd: %w", err)
	}

	p.logger.Debug("signup message published",
		"request_id", msg.RequestID,
		"stream_id", streamID,
	)
	p.metrics.IncSignupPublished("success")

	return streamID, nil
}
