package upload

import (
	"context"
	"fmt"
	"time"

	"github.com/whispernotes/insights-ms-go/internal/model"
	"github.com/whispernotes/insights-ms-go/internal/port"
)

type recordPartSrv struct {
	store port.SessionStore
}

// NewPartRecorder constructs a port.PartRecorder implementation.
func NewPartRecorder(store port.SessionStore) port.PartRecorder {
	return &recordPartSrv{store: store}
}

func (s *recordPartSrv) RecordPart(ctx context.Context, in port.RecordPartInput) (port.RecordPartOutput, error) {
	if in.PartNumber < 1 {
		return port.RecordPartOutput{}, fmt.Errorf("%w: part number must be positive", ErrValidation)
	}
	if in.SizeBytes <= 0 {
		return port.RecordPartOutput{}, fmt.Errorf("%w: part size must be positive", ErrValidation)
	}

	sess, err := s.store.GetSession(ctx, in.SessionID)
	if err != nil {
		return port.RecordPartOutput{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if sess == nil {
		return port.RecordPartOutput{}, ErrSessionNotFound
	}
	if sess.Status != model.StatusInitializing && sess.Status != model.StatusUploading {
		return port.RecordPartOutput{}, fmt.Errorf("%w: session is %s", ErrConflict, sess.Status)
	}
	if in.PartNumber > sess.ExpectedParts {
		return port.RecordPartOutput{}, fmt.Errorf("%w: part number %d out of range [1,%d]", ErrValidation, in.PartNumber, sess.ExpectedParts)
	}

	// Re-recording the same part number overwrites the prior entry, so a
	// client can retry a single part.
	sess, err = s.store.UpsertPart(ctx, in.SessionID, model.PartRecord{
		PartNumber: in.PartNumber,
		ETag:       in.ETag,
		SizeBytes:  in.SizeBytes,
	})
	if err != nil {
		return port.RecordPartOutput{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if sess == nil {
		return port.RecordPartOutput{}, ErrSessionNotFound
	}

	fraction := float64(len(sess.Parts)) / float64(sess.ExpectedParts)
	p := &model.ProgressRecord{
		SessionID: sess.ID,
		Stage:     model.StageUpload,
		Percent:   model.RangeFor(model.StageUpload).Overall(fraction),
		Message:   fmt.Sprintf("Uploaded part %d of %d", in.PartNumber, sess.ExpectedParts),
		Status:    sess.Status,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.store.SetProgress(ctx, p); err != nil {
		return port.RecordPartOutput{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return port.RecordPartOutput{
		Percent:       fraction * 100,
		RecordedParts: len(sess.Parts),
		ExpectedParts: sess.ExpectedParts,
	}, nil
}
