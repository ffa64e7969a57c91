package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"wellspring/internal/domain"
)

// ErrRetryQueueFull is returned when the in-process retry buffer is full.
var ErrRetryQueueFull = errors.New("pipeline: message retry queue full")

// Retrier re-attempts message attachment in the background with backoff.
// It backs deployments without a broker; with NATS configured the retry
// subject takes this role instead.
type Retrier struct {
	store    domain.MessageStore
	logger   zerolog.Logger
	queue    chan domain.Message
	attempts int
	backoff  time.Duration
	wg       sync.WaitGroup
}

// NewRetrier builds a retrier with a bounded queue.
func NewRetrier(store domain.MessageStore, logger zerolog.Logger, buffer int) *Retrier {
	if buffer <= 0 {
		buffer = 64
	}
	return &Retrier{
		store:    store,
		logger:   logger,
		queue:    make(chan domain.Message, buffer),
		attempts: 5,
		backoff:  2 * time.Second,
	}
}

// WithBackoff overrides the retry schedule. Test hook.
func (r *Retrier) WithBackoff(backoff time.Duration, attempts int) *Retrier {
	r.backoff = backoff
	r.attempts = attempts
	return r
}

// Start launches the retry worker. It drains until ctx is cancelled.
func (r *Retrier) Start(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-r.queue:
				r.deliver(ctx, msg)
			}
		}
	}()
}

// Wait blocks until the worker has stopped.
func (r *Retrier) Wait() {
	r.wg.Wait()
}

// Enqueue hands a message to the retry worker without blocking the caller.
func (r *Retrier) Enqueue(_ context.Context, msg domain.Message) error {
	select {
	case r.queue <- msg:
		return nil
	default:
		return ErrRetryQueueFull
	}
}

func (r *Retrier) deliver(ctx context.Context, msg domain.Message) {
	delay := r.backoff
	for i := 1; i <= r.attempts; i++ {
		if err := r.store.Create(ctx, &msg); err == nil {
			r.logger.Info().Str("message_id", msg.ID).Int("attempt", i).Msg("message attached on retry")
			return
		} else if i == r.attempts {
			r.logger.Error().Err(err).Str("message_id", msg.ID).Str("donation_id", msg.DonationID).Msg("message attach retries exhausted")
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
	}
}

var _ MessageRetryQueue = (*Retrier)(nil)
