package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Recorder writes relay outcomes to a Store, filling in identity and timing
// fields the caller did not set.
type Recorder struct {
	store  *Store
	logger *slog.Logger
}

// NewRecorder creates a recorder over the given store.
func NewRecorder(store *Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		store:  store,
		logger: logger.With("component", "audit"),
	}
}

// Record persists one outcome. An empty ID is replaced with a fresh UUID; a
// zero StartedAt is derived from the duration.
func (r *Recorder) Record(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now().Add(-time.Duration(rec.DurationMS) * time.Millisecond)
	}

	if err := r.store.Insert(ctx, &rec); err != nil {
		return err
	}

	r.logger.Debug("recorded relay outcome",
		"id", rec.ID,
		"outcome", rec.Outcome,
		"segments", rec.Segments,
	)
	return nil
}
