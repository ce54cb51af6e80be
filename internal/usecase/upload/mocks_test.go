package upload

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/whispernotes/insights-ms-go/internal/model"
	"github.com/whispernotes/insights-ms-go/internal/port"
	"github.com/whispernotes/insights-ms-go/internal/uuid"
)

type mockStore struct {
	sess          *model.UploadSession
	getSessionErr error

	saved   *model.UploadSession
	saveErr error

	upserted  []model.PartRecord
	upsertErr error

	statuses     []model.Status
	setStatusErr error

	progresses     []*model.ProgressRecord
	setProgressErr error
	progress       *model.ProgressRecord
	getProgressErr error

	extract       *model.ExtractResult
	transcription *model.TranscriptionResult
	savedTr       *model.TranscriptionResult
	saveTrErr     error
	insights      *model.InsightResult

	errRec      *model.ErrorRecord
	savedErrRec *model.ErrorRecord

	deleted   bool
	deleteErr error
}

func (m *mockStore) SaveSession(ctx context.Context, s *model.UploadSession) error {
	m.saved = s
	return m.saveErr
}

func (m *mockStore) GetSession(ctx context.Context, id uuid.UUID) (*model.UploadSession, error) {
	if m.getSessionErr != nil {
		return nil, m.getSessionErr
	}
	return m.sess, nil
}

func (m *mockStore) UpsertPart(ctx context.Context, id uuid.UUID, part model.PartRecord) (*model.UploadSession, error) {
	if m.upsertErr != nil {
		return nil, m.upsertErr
	}
	if m.sess == nil {
		return nil, nil
	}
	m.upserted = append(m.upserted, part)
	if m.sess.Parts == nil {
		m.sess.Parts = make(map[int]model.PartRecord)
	}
	m.sess.Parts[part.PartNumber] = part
	if m.sess.Status == model.StatusInitializing {
		m.sess.Status = model.StatusUploading
	}
	return m.sess, nil
}

func (m *mockStore) SetStatus(ctx context.Context, id uuid.UUID, status model.Status) error {
	if m.setStatusErr != nil {
		return m.setStatusErr
	}
	m.statuses = append(m.statuses, status)
	if m.sess != nil {
		m.sess.Status = status
	}
	return nil
}

func (m *mockStore) SetProgress(ctx context.Context, p *model.ProgressRecord) error {
	if m.setProgressErr != nil {
		return m.setProgressErr
	}
	m.progresses = append(m.progresses, p)
	return nil
}

func (m *mockStore) GetProgress(ctx context.Context, id uuid.UUID) (*model.ProgressRecord, error) {
	return m.progress, m.getProgressErr
}

func (m *mockStore) SaveExtractResult(ctx context.Context, r *model.ExtractResult) error {
	m.extract = r
	return nil
}

func (m *mockStore) GetExtractResult(ctx context.Context, id uuid.UUID) (*model.ExtractResult, error) {
	return m.extract, nil
}

func (m *mockStore) SaveTranscription(ctx context.Context, r *model.TranscriptionResult) error {
	m.savedTr = r
	return m.saveTrErr
}

func (m *mockStore) GetTranscription(ctx context.Context, id uuid.UUID) (*model.TranscriptionResult, error) {
	return m.transcription, nil
}

func (m *mockStore) SaveInsights(ctx context.Context, r *model.InsightResult) error {
	m.insights = r
	return nil
}

func (m *mockStore) GetInsights(ctx context.Context, id uuid.UUID) (*model.InsightResult, error) {
	return m.insights, nil
}

func (m *mockStore) SaveError(ctx context.Context, e *model.ErrorRecord) error {
	m.savedErrRec = e
	return nil
}

func (m *mockStore) GetError(ctx context.Context, id uuid.UUID) (*model.ErrorRecord, error) {
	return m.errRec, nil
}

func (m *mockStore) DeleteAll(ctx context.Context, id uuid.UUID) error {
	m.deleted = true
	return m.deleteErr
}

type nopReadSeekCloser struct{ *bytes.Reader }

func (nopReadSeekCloser) Close() error { return nil }

type mockStorage struct {
	presignedURL string
	presignErr   error

	composedDest  string
	composedParts []string
	composeErr    error

	removed   []string
	removeErr error

	existing map[string]bool
}

func (m *mockStorage) InitBucket() error { panic("not used") }

func (m *mockStorage) GeneratePresignedUploadURL(ctx context.Context, fileKey string, expiry time.Duration) (string, error) {
	return m.presignedURL, m.presignErr
}

func (m *mockStorage) GeneratePresignedDownloadURL(ctx context.Context, fileKey string, expiry time.Duration) (string, error) {
	panic("not used")
}

func (m *mockStorage) FileExists(ctx context.Context, fileKey string) (bool, error) {
	return m.existing[fileKey], nil
}

func (m *mockStorage) StatFile(ctx context.Context, fileKey string) (port.FileInfo, error) {
	panic("not used")
}

func (m *mockStorage) GetFile(ctx context.Context, fileKey string) (io.ReadSeekCloser, error) {
	return nopReadSeekCloser{bytes.NewReader([]byte("dummy"))}, nil
}

func (m *mockStorage) SaveFile(ctx context.Context, fileKey string, reader io.Reader, fileSize int64, opts map[string]string) error {
	panic("not used")
}

func (m *mockStorage) RemoveFile(ctx context.Context, fileKey string) error {
	m.removed = append(m.removed, fileKey)
	return m.removeErr
}

func (m *mockStorage) ComposeParts(ctx context.Context, destKey string, partKeys []string, contentType string) error {
	m.composedDest = destKey
	m.composedParts = partKeys
	return m.composeErr
}

type mockDispatcher struct {
	extractMsgs    []model.StageMessage
	transcribeMsgs []model.StageMessage
	insightsMsgs   []model.StageMessage
	err            error
}

func (m *mockDispatcher) EnqueueExtractAudio(ctx context.Context, msg model.StageMessage) error {
	if m.err != nil {
		return m.err
	}
	m.extractMsgs = append(m.extractMsgs, msg)
	return nil
}

func (m *mockDispatcher) EnqueueTranscribe(ctx context.Context, msg model.StageMessage) error {
	if m.err != nil {
		return m.err
	}
	m.transcribeMsgs = append(m.transcribeMsgs, msg)
	return nil
}

func (m *mockDispatcher) EnqueueInsights(ctx context.Context, msg model.StageMessage) error {
	if m.err != nil {
		return m.err
	}
	m.insightsMsgs = append(m.insightsMsgs, msg)
	return nil
}
