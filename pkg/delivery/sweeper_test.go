package delivery_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/riskhub/notify/pkg/delivery"
	"github.com/riskhub/notify/pkg/notification"
)

func quietSweeper(p delivery.Processor, opts ...delivery.SweeperOption) *delivery.Sweeper {
	opts = append([]delivery.SweeperOption{
		delivery.WithSweeperLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	return delivery.NewSweeper(p, opts...)
}

func TestSweeper_RunOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("without a locker", func(t *testing.T) {
		t.Parallel()
		p := &countingProcessor{}

		require.NoError(t, quietSweeper(p).RunOnce(ctx))
		pending, retries := p.calls()
		assert.Equal(t, 1, pending)
		assert.Equal(t, 1, retries)
	})

	t.Run("lease holder sweeps and releases", func(t *testing.T) {
		t.Parallel()
		p := &countingProcessor{}
		l := &fakeLocker{free: true}

		require.NoError(t, quietSweeper(p, delivery.WithLocker(l)).RunOnce(ctx))
		pending, _ := p.calls()
		assert.Equal(t, 1, pending)
		assert.Equal(t, 1, l.acquired)
		assert.Equal(t, 1, l.released)
	})

	t.Run("lease held elsewhere", func(t *testing.T) {
		t.Parallel()
		p := &countingProcessor{}
		l := &fakeLocker{}

		err := quietSweeper(p, delivery.WithLocker(l)).RunOnce(ctx)
		assert.ErrorIs(t, err, delivery.ErrLockNotHeld)
		pending, retries := p.calls()
		assert.Zero(t, pending)
		assert.Zero(t, retries)
		assert.Zero(t, l.released)
	})

	t.Run("lock backend down", func(t *testing.T) {
		t.Parallel()
		backend := errors.New("redis: connection refused")
		l := &fakeLocker{err: backend}

		err := quietSweeper(&countingProcessor{}, delivery.WithLocker(l)).RunOnce(ctx)
		assert.ErrorIs(t, err, backend)
	})

	t.Run("pending failure still retries", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		p := &countingProcessor{err: boom}

		err := quietSweeper(p).RunOnce(ctx)
		assert.ErrorIs(t, err, boom)
		_, retries := p.calls()
		assert.Equal(t, 1, retries)
	})
}

func TestSweeper_Run(t *testing.T) {
	t.Parallel()

	p := &countingProcessor{}
	s := quietSweeper(p, delivery.WithSweepInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	g.Go(s.Run(gctx))

	assert.Eventually(t, func() bool {
		pending, _ := p.calls()
		return pending >= 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, g.Wait())

	pending, _ := p.calls()
	time.Sleep(30 * time.Millisecond)
	after, _ := p.calls()
	assert.Equal(t, pending, after, "no sweeps after shutdown")
}

func TestSweeper_StartStop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := quietSweeper(&countingProcessor{}, delivery.WithSweepInterval(time.Hour))

	require.Error(t, s.Stop())
	require.NoError(t, s.Start(ctx))
	require.Error(t, s.Start(ctx))
	require.NoError(t, s.Stop())
}

func TestSweeper_EndToEnd(t *testing.T) {
	t.Parallel()
	f := newFixture(t, wednesday)
	failed := f.seedFailed(t)
	pending := f.seed(t)
	f.clock.Advance(time.Minute)

	require.NoError(t, quietSweeper(f.manager).RunOnce(context.Background()))

	assert.Equal(t, notification.StateSent, f.get(t, pending).State)
	assert.Equal(t, notification.StateSent, f.get(t, failed).State)
}

// blockingProcessor parks ProcessPending until release is closed.
type blockingProcessor struct {
	started chan struct{}
	release chan struct{}
}

func (p *blockingProcessor) ProcessPending(context.Context) (delivery.BatchResult, error) {
	close(p.started)
	<-p.release
	return delivery.BatchResult{}, nil
}

func (p *blockingProcessor) RetryFailed(context.Context) (delivery.RetryResult, error) {
	return delivery.RetryResult{}, nil
}

func TestSweeper_RunOnceSerialized(t *testing.T) {
	t.Parallel()
	p := &blockingProcessor{started: make(chan struct{}), release: make(chan struct{})}
	s := quietSweeper(p)

	done := make(chan error, 1)
	go func() { done <- s.RunOnce(context.Background()) }()
	<-p.started

	assert.ErrorIs(t, s.RunOnce(context.Background()), delivery.ErrSweepRunning)

	close(p.release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		require.Fail(t, "first sweep did not finish")
	}
}
