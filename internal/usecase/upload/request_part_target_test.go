package upload

import (
	"context"
	"errors"
	"testing"

	"github.com/whispernotes/insights-ms-go/internal/model"
	"github.com/whispernotes/insights-ms-go/internal/uuid"
)

func uploadingSession(parts int) *model.UploadSession {
	return &model.UploadSession{
		ID:            uuid.NewUUID(),
		ObjectKey:     "abc_meeting.mp4",
		Filename:      "meeting.mp4",
		ContentType:   "video/mp4",
		ExpectedParts: parts,
		Status:        model.StatusUploading,
	}
}

func TestRequestPartTarget_Success(t *testing.T) {
	sess := uploadingSession(3)
	store := &mockStore{sess: sess}
	strg := &mockStorage{presignedURL: "https://minio.local/presigned"}
	svc := NewPartTargetRequester(store, strg)

	out, err := svc.RequestPartTarget(context.Background(), sess.ID, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.PartNumber != 2 {
		t.Errorf("expected part number 2, got %d", out.PartNumber)
	}
	if out.URL != "https://minio.local/presigned" {
		t.Errorf("unexpected URL %q", out.URL)
	}
}

func TestRequestPartTarget_NotFound(t *testing.T) {
	svc := NewPartTargetRequester(&mockStore{}, &mockStorage{})

	_, err := svc.RequestPartTarget(context.Background(), uuid.NewUUID(), 1)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRequestPartTarget_TerminalSession(t *testing.T) {
	sess := uploadingSession(3)
	sess.Status = model.StatusFailed
	svc := NewPartTargetRequester(&mockStore{sess: sess}, &mockStorage{})

	_, err := svc.RequestPartTarget(context.Background(), sess.ID, 1)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestRequestPartTarget_PartOutOfRange(t *testing.T) {
	sess := uploadingSession(3)
	svc := NewPartTargetRequester(&mockStore{sess: sess}, &mockStorage{})

	for _, n := range []int{0, -1, 4} {
		if _, err := svc.RequestPartTarget(context.Background(), sess.ID, n); !errors.Is(err, ErrValidation) {
			t.Errorf("part %d: expected ErrValidation, got %v", n, err)
		}
	}
}

func TestPartKey(t *testing.T) {
	if got := PartKey("abc_meeting.mp4", 7); got != "abc_meeting.mp4.part7" {
		t.Errorf("unexpected part key %q", got)
	}
}
