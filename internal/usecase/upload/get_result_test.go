package upload

import (
	"context"
	"errors"
	"testing"

	"github.com/whispernotes/insights-ms-go/internal/model"
	"github.com/whispernotes/insights-ms-go/internal/uuid"
)

func TestGetResult_Success(t *testing.T) {
	sess := uploadingSession(1)
	sess.Status = model.StatusCompleted
	store := &mockStore{
		sess:          sess,
		transcription: &model.TranscriptionResult{SessionID: sess.ID, Language: "en"},
		insights:      &model.InsightResult{SessionID: sess.ID, Items: []model.InsightItem{{Task: "ship it"}}},
	}
	svc := NewResultGetter(store)

	out, err := svc.GetResult(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Transcription == nil || out.Transcription.Language != "en" {
		t.Errorf("expected transcription, got %+v", out.Transcription)
	}
	if out.Insights == nil || len(out.Insights.Items) != 1 {
		t.Errorf("expected insights, got %+v", out.Insights)
	}
}

func TestGetResult_NotFound(t *testing.T) {
	svc := NewResultGetter(&mockStore{})

	_, err := svc.GetResult(context.Background(), uuid.NewUUID())
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestGetResult_StillRunning(t *testing.T) {
	for _, status := range []model.Status{
		model.StatusUploading,
		model.StatusProcessing,
		model.StatusTranscribing,
		model.StatusAnalyzing,
	} {
		sess := uploadingSession(1)
		sess.Status = status
		svc := NewResultGetter(&mockStore{sess: sess})

		_, err := svc.GetResult(context.Background(), sess.ID)
		if !errors.Is(err, ErrNotReady) {
			t.Errorf("status %q: expected ErrNotReady, got %v", status, err)
		}
	}
}

func TestGetResult_FailedSession(t *testing.T) {
	sess := uploadingSession(1)
	sess.Status = model.StatusFailed
	svc := NewResultGetter(&mockStore{sess: sess})

	_, err := svc.GetResult(context.Background(), sess.ID)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestGetResult_ExpiredTranscription(t *testing.T) {
	sess := uploadingSession(1)
	sess.Status = model.StatusCompleted
	svc := NewResultGetter(&mockStore{sess: sess})

	_, err := svc.GetResult(context.Background(), sess.ID)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound for expired record, got %v", err)
	}
}
