package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/riskhub/notify/pkg/logger"
)

// Processor is the work a Sweeper runs on every tick. *Manager implements it.
type Processor interface {
	ProcessPending(ctx context.Context) (BatchResult, error)
	RetryFailed(ctx context.Context) (RetryResult, error)
}

// Locker is a lease shared by every process running a Sweeper. Acquire
// reports false when another holder owns it.
type Locker interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// Sweeper runs ProcessPending then RetryFailed on an interval. With a Locker
// only the lease holder sweeps.
type Sweeper struct {
	processor Processor
	interval  time.Duration
	locker    Locker
	logger    *slog.Logger
	id        uuid.UUID

	// running serializes RunOnce within the process.
	running sync.Mutex

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// SweeperOption configures a Sweeper.
type SweeperOption func(*Sweeper)

func WithSweepInterval(d time.Duration) SweeperOption {
	return func(s *Sweeper) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithLocker makes sweeps exclusive across processes.
func WithLocker(l Locker) SweeperOption {
	return func(s *Sweeper) {
		s.locker = l
	}
}

func WithSweeperLogger(l *slog.Logger) SweeperOption {
	return func(s *Sweeper) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSweeper creates a Sweeper with a one minute interval.
func NewSweeper(p Processor, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		processor: p,
		interval:  DefaultConfig().SweepInterval,
		logger:    slog.Default(),
		id:        uuid.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("sweeper"), slog.String("sweeper_id", s.id.String()))
	return s
}

// RunOnce performs a single sweep. It returns ErrSweepRunning when a sweep is
// already in progress in this process and ErrLockNotHeld when another process
// holds the lease.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	if !s.running.TryLock() {
		return ErrSweepRunning
	}
	defer s.running.Unlock()

	if s.locker != nil {
		ok, err := s.locker.Acquire(ctx)
		if err != nil {
			return fmt.Errorf("acquire sweep lock: %w", err)
		}
		if !ok {
			return ErrLockNotHeld
		}
		defer func() {
			// Release even when ctx is already canceled.
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := s.locker.Release(releaseCtx); err != nil {
				s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to release sweep lock", logger.Error(err))
			}
		}()
	}

	_, pendingErr := s.processor.ProcessPending(ctx)
	if errors.Is(pendingErr, context.Canceled) || errors.Is(pendingErr, context.DeadlineExceeded) {
		return pendingErr
	}
	_, retryErr := s.processor.RetryFailed(ctx)
	return errors.Join(pendingErr, retryErr)
}

// Start launches the sweep loop in the background.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return errors.New("sweeper already started")
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.loop(ctx, s.done)

	s.logger.LogAttrs(ctx, slog.LevelInfo, "sweeper started", logger.Duration(s.interval))
	return nil
}

// Stop cancels the loop and waits for the current sweep to finish.
func (s *Sweeper) Stop() error {
	s.mu.Lock()
	if s.cancel == nil {
		s.mu.Unlock()
		return errors.New("sweeper not started")
	}
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	cancel()
	<-done

	s.logger.Info("sweeper stopped")
	return nil
}

// Run starts the sweeper and returns a function suitable for errgroup.
func (s *Sweeper) Run(ctx context.Context) func() error {
	return func() error {
		if err := s.Start(ctx); err != nil {
			return err
		}

		<-ctx.Done()

		return s.Stop()
	}
}

func (s *Sweeper) loop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	err := s.RunOnce(ctx)
	switch {
	case err == nil, ctx.Err() != nil:
	case errors.Is(err, ErrLockNotHeld), errors.Is(err, ErrSweepRunning):
		s.logger.LogAttrs(ctx, slog.LevelDebug, "sweep skipped", logger.Error(err))
	default:
		s.logger.LogAttrs(ctx, slog.LevelError, "sweep failed", logger.Error(err))
	}
}
