package upload

import (
	"context"
	"fmt"
	"log"

	"github.com/whispernotes/insights-ms-go/internal/port"
	"github.com/whispernotes/insights-ms-go/internal/uuid"
)

type deleteSessionSrv struct {
	store port.SessionStore
	strg  port.Storage
}

// NewSessionDeleter constructs a port.SessionDeleter implementation.
func NewSessionDeleter(store port.SessionStore, strg port.Storage) port.SessionDeleter {
	return &deleteSessionSrv{store: store, strg: strg}
}

// DeleteSession removes the stored objects first and the records last, so a
// partial failure leaves the session visible for a retry. Object removals are
// best effort since leftovers fall to bucket lifecycle rules.
func (s *deleteSessionSrv) DeleteSession(ctx context.Context, id uuid.UUID) error {
	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if sess == nil {
		return ErrSessionNotFound
	}

	if err := s.strg.RemoveFile(ctx, sess.ObjectKey); err != nil {
		log.Printf("failed to remove object %q: %v", sess.ObjectKey, err)
	}
	for n := 1; n <= sess.ExpectedParts; n++ {
		key := PartKey(sess.ObjectKey, n)
		if exists, err := s.strg.FileExists(ctx, key); err == nil && exists {
			if err := s.strg.RemoveFile(ctx, key); err != nil {
				log.Printf("failed to remove part %q: %v", key, err)
			}
		}
	}

	if extract, err := s.store.GetExtractResult(ctx, id); err == nil && extract != nil {
		if err := s.strg.RemoveFile(ctx, extract.AudioObjectKey); err != nil {
			log.Printf("failed to remove audio object %q: %v", extract.AudioObjectKey, err)
		}
	}

	if err := s.store.DeleteAll(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
