package upload

import (
	"context"
	"errors"
	"testing"

	"github.com/whispernotes/insights-ms-go/internal/model"
	"github.com/whispernotes/insights-ms-go/internal/uuid"
)

func transcribedSession() (*model.UploadSession, *mockStore) {
	sess := uploadingSession(1)
	sess.Status = model.StatusCompleted
	store := &mockStore{
		sess: sess,
		transcription: &model.TranscriptionResult{
			SessionID: sess.ID,
			Segments: []model.TranscriptSegment{
				{Start: 0, End: 2, Text: "hello", SpeakerLabel: "SPEAKER_01"},
				{Start: 2, End: 4, Text: "hi there", SpeakerLabel: "SPEAKER_00"},
				{Start: 4, End: 6, Text: "agenda", SpeakerLabel: "SPEAKER_01"},
			},
		},
	}
	return sess, store
}

func TestUpdateSpeakerNames_PositionalMapping(t *testing.T) {
	sess, store := transcribedSession()
	svc := NewSpeakerNamesUpdater(store)

	if err := svc.UpdateSpeakerNames(context.Background(), sess.ID, []string{"Ada", "Brian"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.savedTr == nil {
		t.Fatal("expected transcription to be saved back")
	}
	segs := store.savedTr.Segments
	// labels sort lexicographically: SPEAKER_00 -> Ada, SPEAKER_01 -> Brian
	if segs[0].SpeakerName != "Brian" || segs[1].SpeakerName != "Ada" || segs[2].SpeakerName != "Brian" {
		t.Errorf("unexpected name mapping: %q, %q, %q", segs[0].SpeakerName, segs[1].SpeakerName, segs[2].SpeakerName)
	}
}

func TestUpdateSpeakerNames_OnlyNamesChange(t *testing.T) {
	sess, store := transcribedSession()
	svc := NewSpeakerNamesUpdater(store)

	if err := svc.UpdateSpeakerNames(context.Background(), sess.ID, []string{"Ada"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	segs := store.savedTr.Segments
	if segs[0].Start != 0 || segs[0].End != 2 || segs[0].Text != "hello" || segs[0].SpeakerLabel != "SPEAKER_01" {
		t.Errorf("expected segment timing, text and label untouched, got %+v", segs[0])
	}
	// SPEAKER_01 has no positional name, so its display name resets
	if segs[0].SpeakerName != "" {
		t.Errorf("expected unmapped label to reset its display name, got %q", segs[0].SpeakerName)
	}
	if segs[1].SpeakerName != "Ada" {
		t.Errorf("expected SPEAKER_00 mapped to Ada, got %q", segs[1].SpeakerName)
	}
}

func TestUpdateSpeakerNames_Idempotent(t *testing.T) {
	sess, store := transcribedSession()
	svc := NewSpeakerNamesUpdater(store)

	names := []string{"Ada", "Brian"}
	if err := svc.UpdateSpeakerNames(context.Background(), sess.ID, names); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := make([]model.TranscriptSegment, len(store.savedTr.Segments))
	copy(first, store.savedTr.Segments)

	store.transcription = store.savedTr
	if err := svc.UpdateSpeakerNames(context.Background(), sess.ID, names); err != nil {
		t.Fatalf("unexpected error on repeat: %v", err)
	}

	for i := range first {
		if first[i] != store.savedTr.Segments[i] {
			t.Errorf("segment %d changed on repeat application: %+v vs %+v", i, first[i], store.savedTr.Segments[i])
		}
	}
}

func TestUpdateSpeakerNames_NoTranscription(t *testing.T) {
	sess := uploadingSession(1)
	svc := NewSpeakerNamesUpdater(&mockStore{sess: sess})

	err := svc.UpdateSpeakerNames(context.Background(), sess.ID, []string{"Ada"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestUpdateSpeakerNames_NotFound(t *testing.T) {
	svc := NewSpeakerNamesUpdater(&mockStore{})

	err := svc.UpdateSpeakerNames(context.Background(), uuid.NewUUID(), []string{"Ada"})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}
