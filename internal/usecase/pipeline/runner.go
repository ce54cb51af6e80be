package pipeline

import (
	"context"
	"time"

	"github.com/whispernotes/insights-ms-go/internal/logger"
	"github.com/whispernotes/insights-ms-go/internal/model"
	"github.com/whispernotes/insights-ms-go/internal/port"
	"github.com/whispernotes/insights-ms-go/internal/uuid"
)

// runner bundles the bookkeeping every stage shares: progress checkpoints
// and the terminal failure path. Stage services embed it.
//
// Error handling contract for stage handlers: errors raised before any
// session mutation are returned to the queue for redelivery, while errors
// from the stage's own work mark the session failed and ack the message so
// it is never retried against a dead session.
type runner struct {
	store port.SessionStore
}

// report writes one progress checkpoint, mapping a stage-local fraction into
// the stage's slice of the overall percentage. Progress writes are best
// effort; the store also drops any write that would move backwards.
func (r runner) report(ctx context.Context, id uuid.UUID, stage string, fraction float64, message string, status model.Status) {
	p := &model.ProgressRecord{
		SessionID: id,
		Stage:     stage,
		Percent:   model.RangeFor(stage).Overall(fraction),
		Message:   message,
		Status:    status,
		UpdatedAt: time.Now().UTC(),
	}
	if err := r.store.SetProgress(ctx, p); err != nil {
		logger.Warnf(ctx, "failed to report %s progress for session #%s: %v", stage, id, err)
	}
}

// fail records the terminal failure state for a session: error record,
// failed status, progress reset to zero. It runs on a fresh context so a
// cancelled handler still leaves a readable trace, and always returns nil so
// the caller can ack the message in one line.
func (r runner) fail(id uuid.UUID, stage, reason string) error {
	ctx := context.Background()

	e := &model.ErrorRecord{
		SessionID: id,
		Stage:     stage,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	}
	if err := r.store.SaveError(ctx, e); err != nil {
		logger.Errorf(ctx, "failed to save error record for session #%s: %v", id, err)
	}
	if err := r.store.SetStatus(ctx, id, model.StatusFailed); err != nil {
		logger.Errorf(ctx, "failed to mark session #%s failed: %v", id, err)
	}

	p := &model.ProgressRecord{
		SessionID: id,
		Stage:     stage,
		Percent:   0,
		Message:   "Processing failed: " + reason,
		Status:    model.StatusFailed,
		UpdatedAt: time.Now().UTC(),
	}
	if err := r.store.SetProgress(ctx, p); err != nil {
		logger.Errorf(ctx, "failed to report failure progress for session #%s: %v", id, err)
	}

	logger.Errorf(ctx, "❌ session #%s failed in stage %s: %s", id, stage, reason)
	return nil
}
