package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull is returned by Enqueue when the buffer has no room.
	ErrQueueFull = errors.New("queue is full")
	// ErrQueueStopped is returned by Enqueue before Start or after Stop.
	ErrQueueStopped = errors.New("queue is not running")
)

// Handler processes one job.
type Handler[T any] func(ctx context.Context, job T) error

// Config tunes worker count, buffering and retries.
type Config struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

type envelope[T any] struct {
	job     T
	attempt int
}

// Queue is an in-memory worker pool. Enqueue never blocks the caller; Stop
// drains whatever is still buffered before returning.
type Queue[T any] struct {
	name    string
	handler Handler[T]
	cfg     Config
	logger  *zap.Logger

	jobs    chan envelope[T]
	wg      sync.WaitGroup
	mu      sync.RWMutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewQueue[T any](name string, handler Handler[T], cfg Config) *Queue[T] {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 64
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 100 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue[T]{
		name:    name,
		handler: handler,
		cfg:     cfg,
		logger:  logger.With(zap.String("queue", name)),
	}
}

// Start launches the workers with a fresh buffer, so a stopped queue can be
// started again. Calling it on a running queue is a no-op.
func (q *Queue[T]) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	q.jobs = make(chan envelope[T], q.cfg.BufferSize)
	q.running = true
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker(q.ctx, q.jobs)
	}
	q.logger.Info("queue started", zap.Int("workers", q.cfg.Workers))
}

// Enqueue buffers job for processing.
func (q *Queue[T]) Enqueue(job T) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if !q.running {
		return ErrQueueStopped
	}
	select {
	case q.jobs <- envelope[T]{job: job}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop refuses new jobs, lets the workers finish the buffer and waits for
// them. Jobs still pending when ctx expires are abandoned.
func (q *Queue[T]) Stop(ctx context.Context) {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	close(q.jobs)
	cancel := q.cancel
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		cancel()
		<-done
		q.logger.Warn("queue stopped before draining", zap.Error(ctx.Err()))
		return
	}
	cancel()
	q.logger.Info("queue stopped")
}

func (q *Queue[T]) worker(ctx context.Context, jobs <-chan envelope[T]) {
	defer q.wg.Done()
	for env := range jobs {
		q.process(ctx, env)
	}
}

func (q *Queue[T]) process(ctx context.Context, env envelope[T]) {
	for {
		if ctx.Err() != nil {
			return
		}
		err := q.handler(ctx, env.job)
		if err == nil {
			return
		}
		env.attempt++
		if env.attempt > q.cfg.MaxRetries {
			q.logger.Error("job failed", zap.Int("attempts", env.attempt), zap.Error(err))
			return
		}
		q.logger.Warn("job failed, retrying", zap.Int("attempt", env.attempt), zap.Error(err))
		timer := time.NewTimer(q.cfg.RetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
