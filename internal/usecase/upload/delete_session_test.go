package upload

import (
	"context"
	"errors"
	"testing"

	"github.com/whispernotes/insights-ms-go/internal/model"
	"github.com/whispernotes/insights-ms-go/internal/uuid"
)

func TestDeleteSession_Success(t *testing.T) {
	sess := uploadingSession(2)
	store := &mockStore{
		sess:    sess,
		extract: &model.ExtractResult{SessionID: sess.ID, AudioObjectKey: sess.ObjectKey + ".wav"},
	}
	strg := &mockStorage{existing: map[string]bool{
		"abc_meeting.mp4.part1": true,
	}}
	svc := NewSessionDeleter(store, strg)

	if err := svc.DeleteSession(context.Background(), sess.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	removed := make(map[string]bool, len(strg.removed))
	for _, key := range strg.removed {
		removed[key] = true
	}
	if !removed[sess.ObjectKey] {
		t.Error("expected final object removed")
	}
	if !removed["abc_meeting.mp4.part1"] {
		t.Error("expected leftover part object removed")
	}
	if removed["abc_meeting.mp4.part2"] {
		t.Error("expected absent part object to be skipped")
	}
	if !removed[sess.ObjectKey+".wav"] {
		t.Error("expected extracted audio removed")
	}

	if !store.deleted {
		t.Error("expected store records deleted")
	}
}

func TestDeleteSession_NotFound(t *testing.T) {
	svc := NewSessionDeleter(&mockStore{}, &mockStorage{})

	err := svc.DeleteSession(context.Background(), uuid.NewUUID())
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestDeleteSession_StorageFailureStillDeletesRecords(t *testing.T) {
	sess := uploadingSession(1)
	store := &mockStore{sess: sess}
	strg := &mockStorage{removeErr: errors.New("minio down")}
	svc := NewSessionDeleter(store, strg)

	if err := svc.DeleteSession(context.Background(), sess.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.deleted {
		t.Error("expected store records deleted despite storage failure")
	}
}

func TestDeleteSession_StoreFailure(t *testing.T) {
	sess := uploadingSession(1)
	store := &mockStore{sess: sess, deleteErr: errors.New("redis down")}
	svc := NewSessionDeleter(store, &mockStorage{})

	err := svc.DeleteSession(context.Background(), sess.ID)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
