package pipeline

import (
	"context"

	"github.com/whispernotes/insights-ms-go/internal/model"
	"github.com/whispernotes/insights-ms-go/internal/port"
	"github.com/whispernotes/insights-ms-go/internal/uuid"
)

type mockStore struct {
	sess          *model.UploadSession
	getSessionErr error

	statuses     []model.Status
	setStatusErr error

	progresses []*model.ProgressRecord

	extract       *model.ExtractResult
	getExtractErr error
	transcription *model.TranscriptionResult
	savedTr       *model.TranscriptionResult
	insights      *model.InsightResult
	savedIns      *model.InsightResult

	savedErrRec *model.ErrorRecord
}

func (m *mockStore) SaveSession(ctx context.Context, s *model.UploadSession) error {
	panic("not used")
}

func (m *mockStore) GetSession(ctx context.Context, id uuid.UUID) (*model.UploadSession, error) {
	if m.getSessionErr != nil {
		return nil, m.getSessionErr
	}
	return m.sess, nil
}

func (m *mockStore) UpsertPart(ctx context.Context, id uuid.UUID, part model.PartRecord) (*model.UploadSession, error) {
	panic("not used")
}

func (m *mockStore) SetStatus(ctx context.Context, id uuid.UUID, status model.Status) error {
	if m.setStatusErr != nil {
		return m.setStatusErr
	}
	m.statuses = append(m.statuses, status)
	return nil
}

func (m *mockStore) SetProgress(ctx context.Context, p *model.ProgressRecord) error {
	m.progresses = append(m.progresses, p)
	return nil
}

func (m *mockStore) GetProgress(ctx context.Context, id uuid.UUID) (*model.ProgressRecord, error) {
	panic("not used")
}

func (m *mockStore) SaveExtractResult(ctx context.Context, r *model.ExtractResult) error {
	m.extract = r
	return nil
}

func (m *mockStore) GetExtractResult(ctx context.Context, id uuid.UUID) (*model.ExtractResult, error) {
	if m.getExtractErr != nil {
		return nil, m.getExtractErr
	}
	return m.extract, nil
}

func (m *mockStore) SaveTranscription(ctx context.Context, r *model.TranscriptionResult) error {
	m.savedTr = r
	m.transcription = r
	return nil
}

func (m *mockStore) GetTranscription(ctx context.Context, id uuid.UUID) (*model.TranscriptionResult, error) {
	return m.transcription, nil
}

func (m *mockStore) SaveInsights(ctx context.Context, r *model.InsightResult) error {
	m.savedIns = r
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
	return m.savedErrRec, nil
}

func (m *mockStore) DeleteAll(ctx context.Context, id uuid.UUID) error {
	panic("not used")
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

type mockExtractor struct {
	audioKey string
	info     model.MediaInfo
	err      error
	calls    int
}

func (m *mockExtractor) ExtractAudio(ctx context.Context, objectKey string) (string, model.MediaInfo, error) {
	m.calls++
	if m.err != nil {
		return "", model.MediaInfo{}, m.err
	}
	return m.audioKey, m.info, nil
}

type mockTranscriber struct {
	out      *port.TranscribeOutput
	err      error
	calls    int
	audioKey string
	language string
	count    int
}

func (m *mockTranscriber) Transcribe(ctx context.Context, audioKey, language string, participantCount int) (*port.TranscribeOutput, error) {
	m.calls++
	m.audioKey = audioKey
	m.language = language
	m.count = participantCount
	if m.err != nil {
		return nil, m.err
	}
	return m.out, nil
}

type mockInsightExtractor struct {
	items []model.InsightItem
	err   error
	calls int
}

func (m *mockInsightExtractor) ExtractInsights(ctx context.Context, tr *model.TranscriptionResult) ([]model.InsightItem, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}
