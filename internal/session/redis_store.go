package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/whispernotes/insights-ms-go/internal/model"
	"github.com/whispernotes/insights-ms-go/internal/port"
	"github.com/whispernotes/insights-ms-go/internal/uuid"
)

// ErrInvalidTransition is returned when a status write would move a session
// backwards or out of a terminal state.
var ErrInvalidTransition = errors.New("session: invalid status transition")

// txRetries bounds the optimistic-lock retries on contended keys.
const txRetries = 5

var errMissing = errors.New("session: record missing")

// Store keeps sessions, progress, stage results and error records in Redis.
// Every key carries the configured TTL so abandoned sessions self-clean.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// compile-time check: *Store must satisfy port.SessionStore
var _ port.SessionStore = (*Store)(nil)

func NewStore(addr, password string, ttl time.Duration) *Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	return &Store{client: rdb, ttl: ttl}
}

func sessionKey(id uuid.UUID) string  { return "session:" + id.String() }
func progressKey(id uuid.UUID) string { return "progress:" + id.String() }
func errorKey(id uuid.UUID) string    { return "error:" + id.String() }
func resultKey(stage string, id uuid.UUID) string {
	return "result:" + stage + ":" + id.String()
}

func (s *Store) SaveSession(ctx context.Context, sess *model.UploadSession) error {
	return s.setJSON(ctx, sessionKey(sess.ID), sess)
}

func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (*model.UploadSession, error) {
	var sess model.UploadSession
	ok, err := s.getJSON(ctx, sessionKey(id), &sess)
	if err != nil || !ok {
		return nil, err
	}
	return &sess, nil
}

// UpsertPart is an atomic read-modify-write on the session's part map, so two
// parts recorded concurrently never lose an update.
func (s *Store) UpsertPart(ctx context.Context, id uuid.UUID, part model.PartRecord) (*model.UploadSession, error) {
	var out *model.UploadSession
	err := s.watchSession(ctx, id, func(sess *model.UploadSession) error {
		if sess.Parts == nil {
			sess.Parts = make(map[int]model.PartRecord)
		}
		sess.Parts[part.PartNumber] = part
		if sess.Status == model.StatusInitializing {
			sess.Status = model.StatusUploading
		}
		out = sess
		return nil
	})
	if errors.Is(err, errMissing) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) SetStatus(ctx context.Context, id uuid.UUID, status model.Status) error {
	err := s.watchSession(ctx, id, func(sess *model.UploadSession) error {
		if sess.Status == status {
			return nil
		}
		if !sess.Status.CanTransition(status) {
			return ErrInvalidTransition
		}
		sess.Status = status
		return nil
	})
	if errors.Is(err, errMissing) {
		return nil
	}
	return err
}

// SetProgress drops writes that would lower the percent while non-terminal,
// and any write arriving after a terminal record, so polling clients only
// ever observe a monotonic progression.
func (s *Store) SetProgress(ctx context.Context, p *model.ProgressRecord) error {
	key := progressKey(p.SessionID)
	for i := 0; i < txRetries; i++ {
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			val, err := tx.Get(ctx, key).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return fmt.Errorf("redis get failed: %w", err)
			}
			if err == nil {
				var prev model.ProgressRecord
				if uerr := json.Unmarshal([]byte(val), &prev); uerr == nil {
					if prev.Status.IsTerminal() {
						return nil
					}
					if !p.Status.IsTerminal() && p.Percent < prev.Percent {
						return nil
					}
				}
			}
			data, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("marshal failed: %w", err)
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, s.ttl)
				return nil
			})
			return err
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("set progress: %w", redis.TxFailedErr)
}

func (s *Store) GetProgress(ctx context.Context, id uuid.UUID) (*model.ProgressRecord, error) {
	var p model.ProgressRecord
	ok, err := s.getJSON(ctx, progressKey(id), &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

func (s *Store) SaveExtractResult(ctx context.Context, r *model.ExtractResult) error {
	return s.setJSON(ctx, resultKey(model.StageExtract, r.SessionID), r)
}

func (s *Store) GetExtractResult(ctx context.Context, id uuid.UUID) (*model.ExtractResult, error) {
	var r model.ExtractResult
	ok, err := s.getJSON(ctx, resultKey(model.StageExtract, id), &r)
	if err != nil || !ok {
		return nil, err
	}
	return &r, nil
}

func (s *Store) SaveTranscription(ctx context.Context, r *model.TranscriptionResult) error {
	return s.setJSON(ctx, resultKey(model.StageTranscribe, r.SessionID), r)
}

func (s *Store) GetTranscription(ctx context.Context, id uuid.UUID) (*model.TranscriptionResult, error) {
	var r model.TranscriptionResult
	ok, err := s.getJSON(ctx, resultKey(model.StageTranscribe, id), &r)
	if err != nil || !ok {
		return nil, err
	}
	return &r, nil
}

func (s *Store) SaveInsights(ctx context.Context, r *model.InsightResult) error {
	return s.setJSON(ctx, resultKey(model.StageInsights, r.SessionID), r)
}

func (s *Store) GetInsights(ctx context.Context, id uuid.UUID) (*model.InsightResult, error) {
	var r model.InsightResult
	ok, err := s.getJSON(ctx, resultKey(model.StageInsights, id), &r)
	if err != nil || !ok {
		return nil, err
	}
	return &r, nil
}

func (s *Store) SaveError(ctx context.Context, e *model.ErrorRecord) error {
	return s.setJSON(ctx, errorKey(e.SessionID), e)
}

func (s *Store) GetError(ctx context.Context, id uuid.UUID) (*model.ErrorRecord, error) {
	var e model.ErrorRecord
	ok, err := s.getJSON(ctx, errorKey(id), &e)
	if err != nil || !ok {
		return nil, err
	}
	return &e, nil
}

func (s *Store) DeleteAll(ctx context.Context, id uuid.UUID) error {
	keys := []string{
		sessionKey(id),
		progressKey(id),
		errorKey(id),
		resultKey(model.StageExtract, id),
		resultKey(model.StageTranscribe, id),
		resultKey(model.StageInsights, id),
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

// --- helpers ---

func (s *Store) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *Store) getJSON(ctx context.Context, key string, out any) (bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil // miss reads the same as expired
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false, fmt.Errorf("unmarshal failed: %w", err)
	}
	return true, nil
}

// watchSession runs fn inside an optimistic transaction on the session key.
func (s *Store) watchSession(ctx context.Context, id uuid.UUID, fn func(*model.UploadSession) error) error {
	key := sessionKey(id)
	for i := 0; i < txRetries; i++ {
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			val, err := tx.Get(ctx, key).Result()
			if errors.Is(err, redis.Nil) {
				return errMissing
			}
			if err != nil {
				return fmt.Errorf("redis get failed: %w", err)
			}
			var sess model.UploadSession
			if err := json.Unmarshal([]byte(val), &sess); err != nil {
				return fmt.Errorf("unmarshal failed: %w", err)
			}
			if err := fn(&sess); err != nil {
				return err
			}
			data, err := json.Marshal(&sess)
			if err != nil {
				return fmt.Errorf("marshal failed: %w", err)
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, redis.KeepTTL)
				return nil
			})
			return err
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("session update: %w", redis.TxFailedErr)
}
