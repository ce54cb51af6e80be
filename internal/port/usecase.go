package port

import (
	"context"

	"github.com/whispernotes/insights-ms-go/internal/model"
	"github.com/whispernotes/insights-ms-go/internal/uuid"
)

type UUIDGen func() uuid.UUID

// UploadInitializer opens a new multipart upload session.
type UploadInitializer interface {
	InitializeUpload(ctx context.Context, in InitializeUploadInput) (InitializeUploadOutput, error)
}
type InitializeUploadInput struct {
	Filename         string
	DeclaredSize     int64
	ContentType      string
	OwnerID          string
	ParticipantCount int
	Language         string
}
type InitializeUploadOutput struct {
	SessionID uuid.UUID `json:"session_id"`
	ObjectKey string    `json:"object_key"`
	PartSize  int64     `json:"part_size"`
	Parts     int       `json:"total_parts"`
}

// PartTargetRequester returns a presigned write target for one part.
type PartTargetRequester interface {
	RequestPartTarget(ctx context.Context, id uuid.UUID, partNumber int) (PartTargetOutput, error)
}
type PartTargetOutput struct {
	PartNumber int    `json:"part_number"`
	URL        string `json:"url"`
}

// PartRecorder records a completed part upload.
type PartRecorder interface {
	RecordPart(ctx context.Context, in RecordPartInput) (RecordPartOutput, error)
}
type RecordPartInput struct {
	SessionID  uuid.UUID
	PartNumber int
	ETag       string
	SizeBytes  int64
}
type RecordPartOutput struct {
	Percent       float64 `json:"percent"`
	RecordedParts int     `json:"recorded_parts"`
	ExpectedParts int     `json:"expected_parts"`
}

// UploadCompleter validates the part set, assembles the final object and
// kicks off the pipeline.
type UploadCompleter interface {
	CompleteUpload(ctx context.Context, in CompleteUploadInput) (CompleteUploadOutput, error)
}
type CompleteUploadInput struct {
	SessionID uuid.UUID
	Parts     []int
}
type CompleteUploadOutput struct {
	SessionID uuid.UUID    `json:"session_id"`
	Status    model.Status `json:"status"`
}

// StatusGetter merges session + progress + terminal records into one
// client-facing view.
type StatusGetter interface {
	GetStatus(ctx context.Context, id uuid.UUID) (StatusOutput, error)
}
type StatusOutput struct {
	SessionID uuid.UUID          `json:"session_id"`
	Filename  string             `json:"filename"`
	Stage     string             `json:"stage"`
	Percent   float64            `json:"percent"`
	Message   string             `json:"message"`
	Status    model.Status       `json:"status"`
	Error     *model.ErrorRecord `json:"error,omitempty"`
}

// ResultGetter returns the terminal artifact of a completed session.
type ResultGetter interface {
	GetResult(ctx context.Context, id uuid.UUID) (ResultOutput, error)
}
type ResultOutput struct {
	SessionID     uuid.UUID                  `json:"session_id"`
	Transcription *model.TranscriptionResult `json:"transcription"`
	Insights      *model.InsightResult       `json:"insights,omitempty"`
}

// SpeakerNamesUpdater re-applies a positional display-name mapping to an
// already-completed transcription. Pure rewrite, no inference re-run.
type SpeakerNamesUpdater interface {
	UpdateSpeakerNames(ctx context.Context, id uuid.UUID, names []string) error
}

// SessionDeleter removes a session, its stored objects and all derived
// records.
type SessionDeleter interface {
	DeleteSession(ctx context.Context, id uuid.UUID) error
}
