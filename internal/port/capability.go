package port

import (
	"context"

	"github.com/whispernotes/insights-ms-go/internal/model"
)

// AudioExtractor pulls the audio track out of an uploaded media object and
// stores it as a new object. The filter graph itself is a black box.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, objectKey string) (audioKey string, info model.MediaInfo, err error)
}

// TranscribeOutput is what the transcription capability returns before
// speaker assignment. Diarization is nil when the capability runs degraded
// (no accelerator, diarization disabled).
type TranscribeOutput struct {
	Language    string
	Duration    float64
	Segments    []model.TranscriptSegment
	Diarization *model.Diarization
}

// Transcriber runs speech-to-text plus diarization over a stored audio
// object. The inference call is workload-bound and runs to completion.
type Transcriber interface {
	Transcribe(ctx context.Context, audioKey, language string, participantCount int) (*TranscribeOutput, error)
}

// InsightExtractor derives action items from a completed transcription.
type InsightExtractor interface {
	ExtractInsights(ctx context.Context, tr *model.TranscriptionResult) ([]model.InsightItem, error)
}
