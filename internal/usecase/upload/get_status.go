package upload

import (
	"context"
	"fmt"

	"github.com/whispernotes/insights-ms-go/internal/model"
	"github.com/whispernotes/insights-ms-go/internal/port"
	"github.com/whispernotes/insights-ms-go/internal/uuid"
)

type getStatusSrv struct {
	store port.SessionStore
}

// NewStatusGetter constructs a port.StatusGetter implementation.
func NewStatusGetter(store port.SessionStore) port.StatusGetter {
	return &getStatusSrv{store: store}
}

// GetStatus merges the session record, the progress row and, for failed
// sessions, the error record into one snapshot. A session with no progress
// row yet reads as 0% in the upload stage.
func (s *getStatusSrv) GetStatus(ctx context.Context, id uuid.UUID) (port.StatusOutput, error) {
	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return port.StatusOutput{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if sess == nil {
		return port.StatusOutput{}, ErrSessionNotFound
	}

	out := port.StatusOutput{
		SessionID: sess.ID,
		Filename:  sess.Filename,
		Stage:     model.StageUpload,
		Status:    sess.Status,
	}

	p, err := s.store.GetProgress(ctx, id)
	if err != nil {
		return port.StatusOutput{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if p != nil {
		out.Stage = p.Stage
		out.Percent = p.Percent
		out.Message = p.Message
	}

	if sess.Status == model.StatusFailed {
		e, err := s.store.GetError(ctx, id)
		if err != nil {
			return port.StatusOutput{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		out.Error = e
	}

	return out, nil
}
