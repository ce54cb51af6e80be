package model

import (
	"github.com/whispernotes/insights-ms-go/internal/uuid"
)

// TranscriptSegment is one transcribed utterance with its speaker assignment.
// SpeakerName is a display field only; it is rewritten by the speaker-name
// remap without touching any other field.
type TranscriptSegment struct {
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	Text         string  `json:"text"`
	SpeakerLabel string  `json:"speaker_label"`
	SpeakerName  string  `json:"speaker_name,omitempty"`
}

// DiarizationTurn is one "who spoke when" interval on the audio timeline,
// independent of the transcribed text.
type DiarizationTurn struct {
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	SpeakerLabel string  `json:"speaker_label"`
}

// Diarization is the full speaker timeline. Synthetic timelines are produced
// when the diarization capability is unavailable; downstream consumers must
// never mistake them for real diarization.
type Diarization struct {
	Turns       []DiarizationTurn `json:"turns"`
	IsSynthetic bool              `json:"is_synthetic"`
}

// SpeakerStats aggregates per-speaker talk time and word count.
type SpeakerStats struct {
	TotalDuration float64 `json:"total_duration"`
	WordCount     int     `json:"word_count"`
}

// MediaInfo is the probe metadata captured when the audio track is extracted.
type MediaInfo struct {
	Duration  float64 `json:"duration"`
	Format    string  `json:"format"`
	SizeBytes int64   `json:"size_bytes"`
}

// ExtractResult is the stage-1 terminal record: where the extracted audio
// lives and what the probe said about the source media.
type ExtractResult struct {
	SessionID      uuid.UUID `json:"session_id"`
	AudioObjectKey string    `json:"audio_object_key"`
	Media          MediaInfo `json:"media"`
}

// TranscriptionResult is the stage-2 terminal record.
type TranscriptionResult struct {
	SessionID   uuid.UUID               `json:"session_id"`
	Language    string                  `json:"language"`
	Duration    float64                 `json:"duration"`
	Segments    []TranscriptSegment     `json:"segments"`
	Speakers    map[string]SpeakerStats `json:"speakers"`
	IsSynthetic bool                    `json:"is_synthetic_diarization"`
}

// InsightItem is one extracted action item or discussion summary point.
type InsightItem struct {
	Task     string `json:"task"`
	Assignee string `json:"assignee,omitempty"`
	Context  string `json:"context,omitempty"`
}

// InsightResult is the stage-3 terminal record.
type InsightResult struct {
	SessionID uuid.UUID     `json:"session_id"`
	Items     []InsightItem `json:"items"`
}
