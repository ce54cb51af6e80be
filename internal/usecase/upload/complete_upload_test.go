package upload

import (
	"context"
	"errors"
	"testing"

	"github.com/whispernotes/insights-ms-go/internal/model"
	"github.com/whispernotes/insights-ms-go/internal/port"
	"github.com/whispernotes/insights-ms-go/internal/uuid"
)

func sessionWithParts(n int) *model.UploadSession {
	sess := uploadingSession(n)
	sess.Parts = make(map[int]model.PartRecord, n)
	for i := 1; i <= n; i++ {
		sess.Parts[i] = model.PartRecord{PartNumber: i, ETag: "e", SizeBytes: 10}
	}
	sess.ParticipantCount = 3
	sess.Language = "en"
	sess.SpeakerNames = []string{"Ada", "Brian"}
	return sess
}

func TestCompleteUpload_Success(t *testing.T) {
	sess := sessionWithParts(3)
	store := &mockStore{sess: sess}
	strg := &mockStorage{}
	dispatcher := &mockDispatcher{}
	svc := NewUploadCompleter(store, strg, dispatcher)

	out, err := svc.CompleteUpload(context.Background(), port.CompleteUploadInput{
		SessionID: sess.ID,
		Parts:     []int{3, 1, 2}, // any submission order is fine
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != model.StatusProcessing {
		t.Errorf("expected status %q, got %q", model.StatusProcessing, out.Status)
	}

	wantStatuses := []model.Status{model.StatusAssembling, model.StatusProcessing}
	if len(store.statuses) != 2 || store.statuses[0] != wantStatuses[0] || store.statuses[1] != wantStatuses[1] {
		t.Errorf("expected transitions %v, got %v", wantStatuses, store.statuses)
	}

	if strg.composedDest != sess.ObjectKey {
		t.Errorf("expected assembly into %q, got %q", sess.ObjectKey, strg.composedDest)
	}
	wantParts := []string{
		"abc_meeting.mp4.part1",
		"abc_meeting.mp4.part2",
		"abc_meeting.mp4.part3",
	}
	if len(strg.composedParts) != 3 {
		t.Fatalf("expected 3 part keys, got %v", strg.composedParts)
	}
	for i, want := range wantParts {
		if strg.composedParts[i] != want {
			t.Errorf("part key %d: expected %q, got %q", i, want, strg.composedParts[i])
		}
	}
	if len(strg.removed) != 3 {
		t.Errorf("expected part objects to be removed, got %v", strg.removed)
	}

	if len(dispatcher.extractMsgs) != 1 {
		t.Fatalf("expected exactly one extract message, got %d", len(dispatcher.extractMsgs))
	}
	msg := dispatcher.extractMsgs[0]
	if msg.SessionID != sess.ID || msg.ObjectKey != sess.ObjectKey {
		t.Errorf("unexpected message %+v", msg)
	}
	if msg.Params.ParticipantCount != 3 || msg.Params.Language != "en" || len(msg.Params.SpeakerNames) != 2 {
		t.Errorf("expected session params on the message, got %+v", msg.Params)
	}
}

func TestCompleteUpload_PartSetValidation(t *testing.T) {
	tests := []struct {
		name  string
		parts []int
	}{
		{"empty", nil},
		{"duplicate", []int{1, 2, 2}},
		{"gap", []int{1, 3, 4}},
		{"not starting at one", []int{2, 3, 4}},
		{"too few", []int{1, 2}},
		{"too many", []int{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := sessionWithParts(3)
			store := &mockStore{sess: sess}
			strg := &mockStorage{}
			dispatcher := &mockDispatcher{}
			svc := NewUploadCompleter(store, strg, dispatcher)

			_, err := svc.CompleteUpload(context.Background(), port.CompleteUploadInput{SessionID: sess.ID, Parts: tt.parts})
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}

			// rejection must leave the session untouched
			if len(store.statuses) != 0 {
				t.Errorf("expected no status writes, got %v", store.statuses)
			}
			if strg.composedDest != "" {
				t.Error("expected no assembly")
			}
			if len(dispatcher.extractMsgs) != 0 {
				t.Error("expected no published message")
			}
		})
	}
}

func TestCompleteUpload_MissingRecordedPart(t *testing.T) {
	sess := sessionWithParts(3)
	delete(sess.Parts, 2)
	svc := NewUploadCompleter(&mockStore{sess: sess}, &mockStorage{}, &mockDispatcher{})

	_, err := svc.CompleteUpload(context.Background(), port.CompleteUploadInput{SessionID: sess.ID, Parts: []int{1, 2, 3}})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestCompleteUpload_NotFound(t *testing.T) {
	svc := NewUploadCompleter(&mockStore{}, &mockStorage{}, &mockDispatcher{})

	_, err := svc.CompleteUpload(context.Background(), port.CompleteUploadInput{SessionID: uuid.NewUUID(), Parts: []int{1}})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestCompleteUpload_WrongStatus(t *testing.T) {
	sess := sessionWithParts(1)
	sess.Status = model.StatusProcessing
	svc := NewUploadCompleter(&mockStore{sess: sess}, &mockStorage{}, &mockDispatcher{})

	_, err := svc.CompleteUpload(context.Background(), port.CompleteUploadInput{SessionID: sess.ID, Parts: []int{1}})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestCompleteUpload_AssemblyFailureMarksFailed(t *testing.T) {
	sess := sessionWithParts(2)
	store := &mockStore{sess: sess}
	strg := &mockStorage{composeErr: errors.New("minio down")}
	dispatcher := &mockDispatcher{}
	svc := NewUploadCompleter(store, strg, dispatcher)

	_, err := svc.CompleteUpload(context.Background(), port.CompleteUploadInput{SessionID: sess.ID, Parts: []int{1, 2}})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	if store.statuses[len(store.statuses)-1] != model.StatusFailed {
		t.Errorf("expected session marked failed, got %v", store.statuses)
	}
	if store.savedErrRec == nil || store.savedErrRec.Stage != model.StageUpload {
		t.Errorf("expected an upload-stage error record, got %+v", store.savedErrRec)
	}
	if len(dispatcher.extractMsgs) != 0 {
		t.Error("expected no message after failed assembly")
	}
}

func TestCompleteUpload_DispatchFailureMarksFailed(t *testing.T) {
	sess := sessionWithParts(1)
	store := &mockStore{sess: sess}
	dispatcher := &mockDispatcher{err: errors.New("broker down")}
	svc := NewUploadCompleter(store, &mockStorage{}, dispatcher)

	_, err := svc.CompleteUpload(context.Background(), port.CompleteUploadInput{SessionID: sess.ID, Parts: []int{1}})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if store.statuses[len(store.statuses)-1] != model.StatusFailed {
		t.Errorf("expected session marked failed, got %v", store.statuses)
	}
}
