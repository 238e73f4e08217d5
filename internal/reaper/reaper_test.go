package reaper

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kgvl/freightbid-backend/internal/models"
)

type fakeStore struct {
	mu      sync.Mutex
	cutoffs []time.Time
	count   int64
	err     error
}

func (s *fakeStore) RejectExpired(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cutoffs = append(s.cutoffs, cutoff)
	return s.count, s.err
}

func TestSweepUsesWindowCutoff(t *testing.T) {
	store := &fakeStore{count: 3}
	r := New(store, time.Minute, 0)

	now := time.Now()
	if got := r.Sweep(context.Background(), now); got != 3 {
		t.Fatalf("Sweep = %d, want 3", got)
	}
	if len(store.cutoffs) != 1 {
		t.Fatalf("store called %d times, want 1", len(store.cutoffs))
	}
	want := now.Add(-models.BiddingWindow)
	if !store.cutoffs[0].Equal(want) {
		t.Errorf("cutoff = %v, want %v", store.cutoffs[0], want)
	}
}

func TestSweepSwallowsStoreErrors(t *testing.T) {
	store := &fakeStore{err: fmt.Errorf("db down")}
	r := New(store, time.Minute, 0)
	if got := r.Sweep(context.Background(), time.Now()); got != 0 {
		t.Fatalf("Sweep = %d, want 0 on error", got)
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	// A second sweep over the same instant finds nothing left to reject;
	// the store contract only matches trips still inProgress.
	store := &fakeStore{count: 2}
	r := New(store, time.Minute, 0)
	now := time.Now()

	r.Sweep(context.Background(), now)
	store.count = 0
	if got := r.Sweep(context.Background(), now); got != 0 {
		t.Fatalf("second Sweep = %d, want 0", got)
	}
	if !store.cutoffs[0].Equal(store.cutoffs[1]) {
		t.Error("sweeps over the same instant used different cutoffs")
	}
}

func TestStartStopTerminates(t *testing.T) {
	store := &fakeStore{}
	r := New(store, 5*time.Millisecond, 0)
	r.Start()
	time.Sleep(25 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		r.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}

	store.mu.Lock()
	sweeps := len(store.cutoffs)
	store.mu.Unlock()
	if sweeps == 0 {
		t.Error("scheduler never swept")
	}
}
