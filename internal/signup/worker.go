package signup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/partnerhub/partnerhub/internal/metrics"
	"github.com/partnerhub/partnerhub/internal/model"
	"github.com/partnerhub/partnerhub/internal/service"
)

const (
	// ConsumerGroup is the Redis consumer group name. Each message is
	// delivered to exactly one consumer in the group.
	ConsumerGroup = "signup_workers"

	// DefaultBatchSize is the max messages per read.
	DefaultBatchSize = 16

	// DefaultBlockTimeout is how long to block waiting for messages.
	DefaultBlockTimeout = 5 * time.Second

	// DefaultClaimInterval is how often to scan pending messages.
	DefaultClaimInterval = 10 * time.Second

	// DefaultClaimIdle is the idle time before reclaiming pending messages.
	DefaultClaimIdle = 30 * time.Second

	// DefaultMetricsInterval is how often to refresh queue depth metrics.
	DefaultMetricsInterval = 5 * time.Second
)

// UserCreator is the slice of the user service the worker needs.
type UserCreator interface {
	Create(ctx context.Context, input service.CreateUserInput) (*model.User, error)
}

// StatusRecorder records terminal outcomes for signup requests.
// *cache.StatusStore satisfies it.
type StatusRecorder interface {
	SetSuccess(ctx context.Context, requestID string) error
	SetFailed(ctx context.Context, requestID string) error
}

// Worker consumes user-creation requests from the signup stream.
// Every failure, expected or not, is absorbed here and reflected only
// in the status store: there is no caller left to propagate to.
type Worker struct {
	redis           *redis.Client
	users           UserCreator
	statuses        StatusRecorder
	logger          *slog.Logger
	metrics         metrics.Recorder
	consumerID      string
	batchSize       int
	blockTimeout    time.Duration
	claimInterval   time.Duration
	claimIdle       time.Duration
	metricsInterval time.Duration
	claimStartID    string
	lastClaim       time.Time
	lastMetrics     time.Time

	started  bool
	draining bool
	cancel   context.CancelFunc
	done     chan struct{}
	mu       sync.Mutex
}

// NewWorker creates a new signup worker.
func NewWorker(client *redis.Client, users UserCreator, statuses StatusRecorder, logger *slog.Logger, consumerID string, recorder metrics.Recorder) *Worker {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Worker{
		redis:           client,
		users:           users,
		statuses:        statuses,
		logger:          logger.With("component", "signup.worker", "consumer_id", consumerID),
		metrics:         recorder,
		consumerID:      consumerID,
		batchSize:       DefaultBatchSize,
		blockTimeout:    DefaultBlockTimeout,
		claimInterval:   DefaultClaimInterval,
		claimIdle:       DefaultClaimIdle,
		metricsInterval: DefaultMetricsInterval,
		claimStartID:    "0-0",
	}
}

// NewConsumerID creates a stable-ish consumer ID for the consumer group.
func NewConsumerID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d-%d", host, os.Getpid(), time.Now().UnixNano())
}

// Run starts the worker loop. Blocks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return errors.New("worker already started")
	}
	w.started = true
	w.done = make(chan struct{})
	ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	defer close(w.done)

	if err := w.ensureConsumerGroup(ctx); err != nil {
		return fmt.Errorf("ensure consumer group: %w", err)
	}

	w.logger.Info("signup worker started")

	for {
		w.mu.Lock()
		draining := w.draining
		w.mu.Unlock()

		if draining {
			w.logger.Info("signup worker draining, stopping")
			return nil
		}

		select {
		case <-ctx.Done():
			w.logger.Info("signup worker stopping")
			return ctx.Err()
		default:
			if err := w.processOnce(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				w.logger.Error("process error", "error", err)
				time.Sleep(1 * time.Second)
			}
		}
	}
}

// Shutdown gracefully stops the worker, completing any in-flight message.
// Implements server.ShutdownFunc for integration with graceful shutdown.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return nil
	}
	w.draining = true
	cancel := w.cancel
	done := w.done
	w.mu.Unlock()

	w.logger.Info("signup worker shutdown initiated")

	if cancel != nil {
		cancel()
	}

	if done != nil {
		select {
		case <-done:
			w.logger.Info("signup worker shutdown complete")
			return nil
		case <-ctx.Done():
			w.logger.Warn("signup worker shutdown timed out")
			return ctx.Err()
		}
	}
	return nil
}

// SetBatchSize overrides the default batch size.
func (w *Worker) SetBatchSize(size int) {
	if size > 0 {
		w.batchSize = size
	}
}

// SetBlockTimeout overrides the default blocking timeout.
func (w *Worker) SetBlockTimeout(timeout time.Duration) {
	if timeout > 0 {
		w.blockTimeout = timeout
	}
}

// ensureConsumerGroup creates the consumer group if it doesn't exist.
func (w *Worker) ensureConsumerGroup(ctx context.Context) error {
	err := w.redis.XGroupCreateMkStream(ctx, StreamKey, ConsumerGroup, "0").Err()
	if err != nil && !isConsumerGroupExistsError(err) {
		return err
	}
	return nil
}

// processOnce reads and processes a single batch of messages.
// Each message is acknowledged individually, after its terminal status
// has been written.
func (w *Worker) processOnce(ctx context.Context) error {
	w.maybeUpdateQueueDepth(ctx)

	claimed, err := w.maybeClaimPending(ctx)
	if err != nil {
		w.logger.Warn("failed to claim pending messages", "error", err)
	}

	messages := claimed
	if len(messages) == 0 {
		messages, err = w.readBatch(ctx)
		if err != nil {
			return err
		}
	}

	for _, msg := range messages {
		w.processMessage(ctx, msg)

		if err := w.redis.XAck(ctx, StreamKey, ConsumerGroup, msg.ID).Err(); err != nil {
			return fmt.Errorf("xack: %w", err)
		}
	}

	return nil
}

// processMessage handles one creation request end to end. Malformed
// payloads go to the dead-letter stream; everything else resolves to a
// SUCCESS or FAILED status entry.
func (w *Worker) processMessage(ctx context.Context, msg redis.XMessage) {
	payload, err := parsePayload(msg)
	if err != nil {
		w.deadLetterMessage(ctx, msg, err.Error())
		return
	}

	w.handleMessage(ctx, payload)
}

// handleMessage attempts the creation and records the outcome.
func (w *Worker) handleMessage(ctx context.Context, msg Message) {
	_, err := w.users.Create(ctx, service.CreateUserInput{
		Email:    msg.Email,
		Password: msg.Password,
		Name:     msg.Name,
	})
	if err != nil {
		// Absorbed: duplicate email and storage outages alike end as
		// FAILED, observable only through the status store.
		w.logger.Warn("signup request failed",
			"request_id", msg.RequestID,
			"error", err,
		)
		if err := w.statuses.SetFailed(ctx, msg.RequestID); err != nil {
			w.logger.Error("failed to record FAILED status", "request_id", msg.RequestID, "error", err)
		}
		w.metrics.IncSignupProcessed("failed")
		return
	}

	if err := w.statuses.SetSuccess(ctx, msg.RequestID); err != nil {
		w.logger.Error("failed to record SUCCESS status", "request_id", msg.RequestID, "error", err)
	}

	w.logger.Info("signup request processed", "request_id", msg.RequestID)
	w.metrics.IncSignupProcessed("success")
}

// parsePayload decodes and validates a stream message.
func parsePayload(msg redis.XMessage) (Message, error) {
	payload, ok := msg.Values["payload"].(string)
	if !ok {
		return Message{}, errors.New("payload field missing or not a string")
	}

	var m Message
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return Message{}, fmt.Errorf("unmarshal payload: %w", err)
	}

	if m.RequestID == "" {
		return Message{}, errors.New("request_id is required")
	}
	if m.Email == "" {
		return Message{}, errors.New("email is required")
	}
	if m.Password == "" {
		return Message{}, errors.New("password is required")
	}

	return m, nil
}

// readBatch reads messages from the stream using XREADGROUP.
func (w *Worker) readBatch(ctx context.Context) ([]redis.XMessage, error) {
	streams, err := w.redis.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    ConsumerGroup,
		Consumer: w.consumerID,
		Streams:  []string{StreamKey, ">"},
		Count:    int64(w.batchSize),
		Block:    w.blockTimeout,
	}).Result()

	if err == redis.Nil || len(streams) == 0 {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("xreadgroup: %w", err)
	}

	return streams[0].Messages, nil
}

// maybeClaimPending reclaims messages stuck pending on a dead consumer.
func (w *Worker) maybeClaimPending(ctx context.Context) ([]redis.XMessage, error) {
	if w.claimInterval <= 0 || w.claimIdle <= 0 {
		return nil, nil
	}
	if !w.lastClaim.IsZero() && time.Since(w.lastClaim) < w.claimInterval {
		return nil, nil
	}

	w.lastClaim = time.Now()
	messages, start, err := w.redis.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   StreamKey,
		Group:    ConsumerGroup,
		Consumer: w.consumerID,
		MinIdle:  w.claimIdle,
		Start:    w.claimStartID,
		Count:    int64(w.batchSize),
	}).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("xautoclaim: %w", err)
	}
	if start != "" {
		w.claimStartID = start
	}
	return messages, nil
}

func (w *Worker) maybeUpdateQueueDepth(ctx context.Context) {
	if w.metricsInterval <= 0 {
		return
	}
	if !w.lastMetrics.IsZero() && time.Since(w.lastMetrics) < w.metricsInterval {
		return
	}
	w.lastMetrics = time.Now()

	groups, err := w.redis.XInfoGroups(ctx, StreamKey).Result()
	if err != nil && err != redis.Nil {
		w.logger.Warn("failed to read stream group info", "error", err)
		return
	}
	for _, group := range groups {
		if group.Name == ConsumerGroup {
			w.metrics.SetSignupQueueDepth(group.Pending + group.Lag)
			return
		}
	}
}

// deadLetterMessage moves a poison message to the dead-letter stream.
func (w *Worker) deadLetterMessage(ctx context.Context, msg redis.XMessage, detail string) {
	w.logger.Warn("dead-lettering poison message",
		"message_id", msg.ID,
		"detail", detail,
	)

	err := w.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: DeadLetterStreamKey,
		MaxLen: 10000, // Keep last 10k poison messages
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{
			"original_id":      msg.ID,
			"original_stream":  StreamKey,
			"detail":           detail,
			"payload":          msg.Values["payload"],
			"dead_lettered_at": time.Now().UTC().Format(time.RFC3339),
		},
	}).Err()

	if err != nil {
		w.logger.Error("failed to write to dead-letter stream",
			"message_id", msg.ID,
			"error", err,
		)
	}

	w.metrics.IncSignupProcessed("dead_lettered")
}

// isConsumerGroupExistsError checks if the error is "BUSYGROUP" (group exists).
func isConsumerGroupExistsError(err error) bool {
	return err != nil && (err.Error() == "BUSYGROUP Consumer Group name already exists" ||
		err.Error() == "BUSYGROUP")
}
