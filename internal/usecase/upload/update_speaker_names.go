package upload

import (
	"context"
	"fmt"

	"github.com/whispernotes/insights-ms-go/internal/port"
	"github.com/whispernotes/insights-ms-go/internal/usecase/pipeline"
	"github.com/whispernotes/insights-ms-go/internal/uuid"
)

type updateSpeakerNamesSrv struct {
	store port.SessionStore
}

// NewSpeakerNamesUpdater constructs a port.SpeakerNamesUpdater implementation.
func NewSpeakerNamesUpdater(store port.SessionStore) port.SpeakerNamesUpdater {
	return &updateSpeakerNamesSrv{store: store}
}

// UpdateSpeakerNames re-applies a positional display-name mapping over the
// stored transcription. Labels sort lexicographically; position i gets
// names[i], labels beyond the list reset to the bare label. Only SpeakerName
// changes, so the operation is idempotent.
func (s *updateSpeakerNamesSrv) UpdateSpeakerNames(ctx context.Context, id uuid.UUID, names []string) error {
	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if sess == nil {
		return ErrSessionNotFound
	}

	tr, err := s.store.GetTranscription(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if tr == nil {
		return fmt.Errorf("%w: no transcription to rename yet", ErrConflict)
	}

	pipeline.ApplySpeakerNames(tr.Segments, names)

	if err := s.store.SaveTranscription(ctx, tr); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
