// internal/app/system/workers/eventpromoter.go
package workers

import (
	"context"
	"sync"
	"time"

	eventstore "github.com/campushub/campushub/internal/app/store/events"
	"github.com/campushub/campushub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// EventPromoter is a background worker that flips scheduled events to
// ongoing once their start time arrives. The sweep itself is idempotent,
// so running it more often than needed is harmless.
type EventPromoter struct {
	events   *eventstore.Store
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewEventPromoter creates a new event promotion worker.
func NewEventPromoter(events *eventstore.Store, logger *zap.Logger, interval time.Duration) *EventPromoter {
	return &EventPromoter{
		events:   events,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background promotion loop. One sweep runs immediately
// so events that came due while the server was down promote on startup.
func (w *EventPromoter) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("event promoter started",
		zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *EventPromoter) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("event promoter stopped")
}

func (w *EventPromoter) run() {
	defer w.wg.Done()

	w.sweep()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *EventPromoter) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Batch())
	defer cancel()

	count, err := w.events.PromoteDue(ctx, time.Now().UTC())
	if err != nil {
		w.log.Error("event promotion sweep failed", zap.Error(err))
		return
	}

	if count > 0 {
		w.log.Info("promoted events to ongoing", zap.Int64("count", count))
	}
}
