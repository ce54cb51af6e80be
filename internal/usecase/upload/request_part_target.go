package upload

import (
	"context"
	"fmt"

	"github.com/whispernotes/insights-ms-go/internal/port"
	"github.com/whispernotes/insights-ms-go/internal/uuid"
)

type partTargetSrv struct {
	store port.SessionStore
	strg  port.Storage
}

// NewPartTargetRequester constructs a port.PartTargetRequester implementation.
func NewPartTargetRequester(store port.SessionStore, strg port.Storage) port.PartTargetRequester {
	return &partTargetSrv{store: store, strg: strg}
}

// PartKey is the object key for one part of a session upload.
func PartKey(objectKey string, partNumber int) string {
	return fmt.Sprintf("%s.part%d", objectKey, partNumber)
}

func (s *partTargetSrv) RequestPartTarget(ctx context.Context, id uuid.UUID, partNumber int) (port.PartTargetOutput, error) {
	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return port.PartTargetOutput{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if sess == nil {
		return port.PartTargetOutput{}, ErrSessionNotFound
	}
	if sess.Status.IsTerminal() {
		return port.PartTargetOutput{}, fmt.Errorf("%w: session is %s", ErrConflict, sess.Status)
	}
	if partNumber < 1 || partNumber > sess.ExpectedParts {
		return port.PartTargetOutput{}, fmt.Errorf("%w: part number %d out of range [1,%d]", ErrValidation, partNumber, sess.ExpectedParts)
	}

	url, err := s.strg.GeneratePresignedUploadURL(ctx, PartKey(sess.ObjectKey, partNumber), PartUrlTTL)
	if err != nil {
		return port.PartTargetOutput{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return port.PartTargetOutput{PartNumber: partNumber, URL: url}, nil
}
