package upload

import (
	"context"
	"fmt"

	"github.com/whispernotes/insights-ms-go/internal/model"
	"github.com/whispernotes/insights-ms-go/internal/port"
	"github.com/whispernotes/insights-ms-go/internal/uuid"
)

type getResultSrv struct {
	store port.SessionStore
}

// NewResultGetter constructs a port.ResultGetter implementation.
func NewResultGetter(store port.SessionStore) port.ResultGetter {
	return &getResultSrv{store: store}
}

// GetResult returns the transcription and insights for a completed session.
// Sessions still in flight answer ErrNotReady so clients keep polling status.
func (s *getResultSrv) GetResult(ctx context.Context, id uuid.UUID) (port.ResultOutput, error) {
	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return port.ResultOutput{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if sess == nil {
		return port.ResultOutput{}, ErrSessionNotFound
	}
	if sess.Status == model.StatusFailed {
		return port.ResultOutput{}, fmt.Errorf("%w: session failed", ErrConflict)
	}
	if sess.Status != model.StatusCompleted {
		return port.ResultOutput{}, fmt.Errorf("%w: session is %s", ErrNotReady, sess.Status)
	}

	tr, err := s.store.GetTranscription(ctx, id)
	if err != nil {
		return port.ResultOutput{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if tr == nil {
		return port.ResultOutput{}, fmt.Errorf("%w: transcription record expired", ErrSessionNotFound)
	}

	ins, err := s.store.GetInsights(ctx, id)
	if err != nil {
		return port.ResultOutput{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return port.ResultOutput{SessionID: id, Transcription: tr, Insights: ins}, nil
}
