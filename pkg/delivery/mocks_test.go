package delivery_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/riskhub/notify/pkg/delivery"
	"github.com/riskhub/notify/pkg/email"
	"github.com/riskhub/notify/pkg/notification"
)

// MockSender is a mock implementation of email.Sender.
type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendEmail(ctx context.Context, msg email.Message) (email.Receipt, error) {
	args := m.Called(ctx, msg)
	return args.Get(0).(email.Receipt), args.Error(1)
}

// MockUserLookup is a mock implementation of delivery.UserLookup.
type MockUserLookup struct {
	mock.Mock
}

func (m *MockUserLookup) GetUser(ctx context.Context, id int64) (delivery.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(delivery.User), args.Error(1)
}

// staticUsers resolves users from a fixed map.
type staticUsers map[int64]delivery.User

func (u staticUsers) GetUser(_ context.Context, id int64) (delivery.User, error) {
	user, ok := u[id]
	if !ok {
		return delivery.User{}, notification.ErrNotFound
	}
	return user, nil
}

// findFailingStorage breaks the duplicate lookup only.
type findFailingStorage struct {
	*notification.MemoryStorage
}

func (s findFailingStorage) Find(context.Context, notification.Filter) ([]notification.Notification, error) {
	return nil, errors.New("connection reset")
}

// fakeClock is a settable clock for WithClock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeLocker grants the lease while free is true.
type fakeLocker struct {
	mu       sync.Mutex
	free     bool
	err      error
	acquired int
	released int
}

func (l *fakeLocker) Acquire(context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	if l.free {
		l.acquired++
	}
	return l.free, nil
}

func (l *fakeLocker) Release(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.released++
	return nil
}

// countingProcessor records sweep calls.
type countingProcessor struct {
	mu      sync.Mutex
	pending int
	retries int
	err     error
}

func (p *countingProcessor) ProcessPending(context.Context) (delivery.BatchResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending++
	return delivery.BatchResult{}, p.err
}

func (p *countingProcessor) RetryFailed(context.Context) (delivery.RetryResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.retries++
	return delivery.RetryResult{}, nil
}

func (p *countingProcessor) calls() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending, p.retries
}
