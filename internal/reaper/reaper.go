// Package reaper terminates negotiations whose bidding window elapsed
// without an acceptance. It is the only writer allowed to move a trip out
// of inProgress purely because of elapsed time.
package reaper

import (
	"context"
	"log"
	"time"

	"github.com/kgvl/freightbid-backend/internal/models"
)

// Store performs the bulk conditional rejection. The update must be
// atomic per matched row and must skip trips that are terminal or not
// yet started, which also makes repeated sweeps idempotent.
type Store interface {
	RejectExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

type Reaper struct {
	store    Store
	interval time.Duration
	window   time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func New(store Store, interval, window time.Duration) *Reaper {
	if interval <= 0 {
		interval = time.Minute
	}
	if window <= 0 {
		window = models.BiddingWindow
	}
	return &Reaper{
		store:    store,
		interval: interval,
		window:   window,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the periodic sweep. Call Stop to shut it down.
func (r *Reaper) Start() {
	go r.run()
}

// Stop halts the sweep loop and waits for it to exit.
func (r *Reaper) Stop() {
	close(r.stop)
	<-r.done
}

func (r *Reaper) run() {
	defer close(r.done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.Sweep(context.Background(), time.Now())
		}
	}
}

// Sweep rejects every trip whose window expired before now. Errors are
// logged and swallowed so a failed iteration never kills the scheduler.
func (r *Reaper) Sweep(ctx context.Context, now time.Time) int64 {
	count, err := r.store.RejectExpired(ctx, now.Add(-r.window))
	if err != nil {
		log.Printf("Reaper sweep failed: %v", err)
		return 0
	}
	if count > 0 {
		log.Printf("Reaper rejected %d expired trips", count)
	}
	return count
}
