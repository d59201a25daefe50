package lifecycle

import (
	"context"
	"sync"
	"testing"
	"time"
)

type countingSweeper struct {
	mu     sync.Mutex
	sweeps int
}

func (c *countingSweeper) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweeps++
	return 0, nil
}

func (c *countingSweeper) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweeps
}

func TestSweeperRunsUntilCanceled(t *testing.T) {
	store := &countingSweeper{}
	sweeper := NewSweeper(store, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for store.count() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 sweeps, got %d", store.count())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancellation")
	}
}

func TestNewSweeperDefaultsInterval(t *testing.T) {
	sweeper := NewSweeper(&countingSweeper{}, 0, nil)
	if sweeper.interval != DefaultSweepInterval {
		t.Fatalf("interval = %v, want %v", sweeper.interval, DefaultSweepInterval)
	}
}
