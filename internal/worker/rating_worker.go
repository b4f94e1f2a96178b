package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Pesokrava/perfume_catalog/internal/domain"
	"github.com/Pesokrava/perfume_catalog/internal/pkg/logger"
)

const (
	// Events for the same perfume inside this window collapse into one update
	debounceWindow = 1 * time.Second

	maxRetries     = 3
	initialBackoff = 100 * time.Millisecond
	attemptTimeout = 5 * time.Second
)

// RatingUpdater recomputes the rating aggregates of one perfume
type RatingUpdater interface {
	CalculateAndUpdate(ctx context.Context, perfumeID uuid.UUID) error
}

// RatingWorker consumes comment events and refreshes perfume ratings
type RatingWorker struct {
	calculator RatingUpdater
	logger     *logger.Logger

	mu             sync.Mutex
	pendingUpdates map[uuid.UUID]*pendingUpdate
	shuttingDown   bool
	wg             sync.WaitGroup
	ctx            context.Context
	cancel         context.CancelFunc
}

type pendingUpdate struct {
	timestamp time.Time
	timer     *time.Timer
}

// NewRatingWorker creates a new rating worker
func NewRatingWorker(calculator RatingUpdater, logger *logger.Logger) *RatingWorker {
	ctx, cancel := context.WithCancel(context.Background())

	return &RatingWorker{
		calculator:     calculator,
		logger:         logger,
		pendingUpdates: make(map[uuid.UUID]*pendingUpdate),
		ctx:            ctx,
		cancel:         cancel,
	}
}

// HandleEvent decodes a comment event and schedules a rating update for its perfume
func (w *RatingWorker) HandleEvent(data []byte) error {
	var event domain.CommentEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("failed to unmarshal comment event: %w", err)
	}
	if event.PerfumeID == uuid.Nil {
		return errors.New("comment event without perfume_id")
	}

	w.logger.WithFields(map[string]any{
		"type":       event.Type,
		"perfume_id": event.PerfumeID.String(),
		"timestamp":  event.Timestamp,
	}).Debug("Received comment event")

	w.scheduleUpdate(event.PerfumeID, event.Timestamp)
	return nil
}

func (w *RatingWorker) scheduleUpdate(perfumeID uuid.UUID, timestamp time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.shuttingDown {
		w.logger.Info("Worker shutting down, ignoring new event")
		return
	}

	if existing, found := w.pendingUpdates[perfumeID]; found {
		if timestamp.Before(existing.timestamp) {
			w.logger.WithFields(map[string]any{
				"perfume_id":  perfumeID.String(),
				"existing_ts": existing.timestamp,
				"event_ts":    timestamp,
			}).Debug("Ignoring stale event")
			return
		}

		// A stopped timer hands its WaitGroup slot to the replacement
		if !existing.timer.Stop() {
			w.wg.Add(1)
		}
	} else {
		w.wg.Add(1)
	}

	update := &pendingUpdate{timestamp: timestamp}
	update.timer = time.AfterFunc(debounceWindow, func() {
		w.processUpdate(perfumeID, update)
	})
	w.pendingUpdates[perfumeID] = update
}

func (w *RatingWorker) processUpdate(perfumeID uuid.UUID, update *pendingUpdate) {
	defer w.wg.Done()

	w.mu.Lock()
	if w.pendingUpdates[perfumeID] == update {
		delete(w.pendingUpdates, perfumeID)
	}
	w.mu.Unlock()

	if w.ctx.Err() != nil {
		return
	}

	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			w.logger.WithFields(map[string]any{
				"perfume_id": perfumeID.String(),
				"attempt":    attempt + 1,
				"backoff_ms": backoff.Milliseconds(),
			}).Warn("Retrying rating update")

			select {
			case <-time.After(backoff):
			case <-w.ctx.Done():
				w.logger.Info("Worker context cancelled, aborting retry")
				return
			}

			backoff *= 2
		}

		ctx, cancel := context.WithTimeout(w.ctx, attemptTimeout)
		err := w.calculator.CalculateAndUpdate(ctx, perfumeID)
		cancel()

		if err == nil {
			return
		}
		lastErr = err
	}

	w.logger.WithFields(map[string]any{
		"perfume_id":  perfumeID.String(),
		"max_retries": maxRetries,
	}).Error("Rating update failed after all retries", lastErr)
}

// Shutdown stops accepting events, cancels pending timers and waits for
// in-flight updates until ctx expires
func (w *RatingWorker) Shutdown(ctx context.Context) error {
	w.logger.Info("Shutting down rating worker...")

	w.mu.Lock()
	w.shuttingDown = true
	pendingCount := len(w.pendingUpdates)
	for _, update := range w.pendingUpdates {
		if update.timer.Stop() {
			w.wg.Done()
		}
	}
	w.pendingUpdates = make(map[uuid.UUID]*pendingUpdate)
	w.mu.Unlock()

	w.logger.WithFields(map[string]any{
		"cancelled_updates": pendingCount,
	}).Info("Cancelled pending updates")

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.cancel()
		w.logger.Info("All in-flight updates completed")
		return nil
	case <-ctx.Done():
		w.cancel()
		w.logger.Warn("Shutdown timeout reached, forcing exit")
		return ctx.Err()
	}
}

// PendingCount returns the number of perfumes waiting for an update
func (w *RatingWorker) PendingCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pendingUpdates)
}
