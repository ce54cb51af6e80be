package port

import (
	"context"

	"github.com/whispernotes/insights-ms-go/internal/model"
	"github.com/whispernotes/insights-ms-go/internal/uuid"
)

// SessionStore holds session, progress, per-stage result and error records in
// a TTL-bounded key-value store. Every Get returns (nil, nil) on a miss so an
// expired record reads the same as one that never existed.
type SessionStore interface {
	SaveSession(ctx context.Context, s *model.UploadSession) error
	GetSession(ctx context.Context, id uuid.UUID) (*model.UploadSession, error)

	// UpsertPart atomically records one part in the session's part map and
	// returns the updated session. Concurrent part uploads must not lose
	// updates.
	UpsertPart(ctx context.Context, id uuid.UUID, part model.PartRecord) (*model.UploadSession, error)

	// SetStatus moves the session status forward; transitions that violate
	// the forward-only ordering are rejected.
	SetStatus(ctx context.Context, id uuid.UUID, status model.Status) error

	// SetProgress overwrites the per-session progress row. Writes that would
	// lower the percent while the status is non-terminal are dropped.
	SetProgress(ctx context.Context, p *model.ProgressRecord) error
	GetProgress(ctx context.Context, id uuid.UUID) (*model.ProgressRecord, error)

	SaveExtractResult(ctx context.Context, r *model.ExtractResult) error
	GetExtractResult(ctx context.Context, id uuid.UUID) (*model.ExtractResult, error)
	SaveTranscription(ctx context.Context, r *model.TranscriptionResult) error
	GetTranscription(ctx context.Context, id uuid.UUID) (*model.TranscriptionResult, error)
	SaveInsights(ctx context.Context, r *model.InsightResult) error
	GetInsights(ctx context.Context, id uuid.UUID) (*model.InsightResult, error)

	SaveError(ctx context.Context, e *model.ErrorRecord) error
	GetError(ctx context.Context, id uuid.UUID) (*model.ErrorRecord, error)

	// DeleteAll removes the session record and every derived record.
	DeleteAll(ctx context.Context, id uuid.UUID) error
}
