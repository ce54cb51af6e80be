package upload

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/whispernotes/insights-ms-go/internal/model"
	"github.com/whispernotes/insights-ms-go/internal/port"
)

type initializeUploadSrv struct {
	store   port.SessionStore
	genUUID port.UUIDGen
}

// NewUploadInitializer constructs a port.UploadInitializer implementation.
func NewUploadInitializer(store port.SessionStore, genUUID port.UUIDGen) port.UploadInitializer {
	return &initializeUploadSrv{store: store, genUUID: genUUID}
}

func (s *initializeUploadSrv) InitializeUpload(ctx context.Context, in port.InitializeUploadInput) (port.InitializeUploadOutput, error) {
	if in.DeclaredSize <= 0 {
		return port.InitializeUploadOutput{}, fmt.Errorf("%w: declared size must be positive", ErrValidation)
	}
	if in.DeclaredSize > MaxFileSize {
		return port.InitializeUploadOutput{}, fmt.Errorf("%w: declared size %d exceeds maximum %d", ErrValidation, in.DeclaredSize, MaxFileSize)
	}
	if !IsMimeTypeAllowed(in.ContentType) {
		return port.InitializeUploadOutput{}, fmt.Errorf("%w: unsupported content type %q", ErrValidation, in.ContentType)
	}

	participants := in.ParticipantCount
	if participants == 0 {
		participants = DefaultParticipants
	}
	if participants < MinParticipants || participants > MaxParticipants {
		return port.InitializeUploadOutput{}, fmt.Errorf("%w: participant count %d out of range [%d,%d]", ErrValidation, participants, MinParticipants, MaxParticipants)
	}

	id := s.genUUID()
	objectKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(in.Filename))
	expectedParts := int((in.DeclaredSize + PartSize - 1) / PartSize)

	sess := &model.UploadSession{
		ID:               id,
		ObjectKey:        objectKey,
		Filename:         in.Filename,
		DeclaredSize:     in.DeclaredSize,
		ContentType:      in.ContentType,
		OwnerID:          in.OwnerID,
		ParticipantCount: participants,
		Language:         in.Language,
		ExpectedParts:    expectedParts,
		Status:           model.StatusInitializing,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.store.SaveSession(ctx, sess); err != nil {
		return port.InitializeUploadOutput{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	p := &model.ProgressRecord{
		SessionID: id,
		Stage:     model.StageUpload,
		Percent:   0,
		Message:   "Upload session initialised",
		Status:    model.StatusInitializing,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.store.SetProgress(ctx, p); err != nil {
		return port.InitializeUploadOutput{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return port.InitializeUploadOutput{
		SessionID: id,
		ObjectKey: objectKey,
		PartSize:  PartSize,
		Parts:     expectedParts,
	}, nil
}

// sanitizeFilename keeps the object key safe for any store: everything
// outside [a-zA-Z0-9._-] collapses to underscores.
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "upload"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
