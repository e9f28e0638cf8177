package dashboard_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tartampluch/go-biorhythm/internal/dashboard"
)

type fakePublisher struct {
	mu      sync.Mutex
	updates [][]byte
	signal  chan struct{}
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{signal: make(chan struct{}, 16)}
}

func (p *fakePublisher) Update(data []byte) {
	p.mu.Lock()
	p.updates = append(p.updates, data)
	p.mu.Unlock()

	select {
	case p.signal <- struct{}{}:
	default:
	}
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.updates)
}

type fakePruner struct {
	mu      sync.Mutex
	cutoffs []time.Time
	err     error
}

func (p *fakePruner) Prune(_ context.Context, before time.Time) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cutoffs = append(p.cutoffs, before)
	return 0, p.err
}

func (p *fakePruner) first() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cutoffs[0]
}

func waitForUpdate(t *testing.T, p *fakePublisher) {
	t.Helper()
	select {
	case <-p.signal:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for feed update")
	}
}

func TestFeedWorker_PublishesAndStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	pub := newFakePublisher()
	pruner := &fakePruner{}
	w := &dashboard.FeedWorker{
		Service:    newService(t, nil),
		Birth:      "1990-01-01",
		Lang:       "en",
		Interval:   10 * time.Millisecond,
		Publisher:  pub,
		Pruner:     pruner,
		RetainDays: 30,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitForUpdate(t, pub) // immediate refresh
	waitForUpdate(t, pub) // first tick
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}

	assert.GreaterOrEqual(t, pub.count(), 2)
	assert.Equal(t, time.Date(1989, 12, 2, 0, 0, 0, 0, time.UTC), pruner.first())
}

func TestFeedWorker_InvalidBirthKeepsRunning(t *testing.T) {
	defer goleak.VerifyNone(t)

	pub := newFakePublisher()
	w := &dashboard.FeedWorker{
		Service:   newService(t, nil),
		Birth:     "garbage",
		Interval:  5 * time.Millisecond,
		Publisher: pub,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, w.Run(ctx))
	assert.Zero(t, pub.count(), "nothing is published for an invalid birth date")
}

func TestFeedWorker_PruneErrorIsNotFatal(t *testing.T) {
	defer goleak.VerifyNone(t)

	pub := newFakePublisher()
	w := &dashboard.FeedWorker{
		Service:    newService(t, nil),
		Birth:      "1990-01-01",
		Interval:   time.Hour,
		Publisher:  pub,
		Pruner:     &fakePruner{err: errors.New("database is locked")},
		RetainDays: 7,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitForUpdate(t, pub)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 1, pub.count())
}
