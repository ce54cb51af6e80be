package model

import (
	"github.com/whispernotes/insights-ms-go/internal/uuid"
)

// StageParams travels with a StageMessage and is the sole authority for the
// values it carries; the session record is only a legacy fallback when a
// param is absent.
type StageParams struct {
	ParticipantCount int      `json:"participant_count,omitempty"`
	Language         string   `json:"language,omitempty"`
	SpeakerNames     []string `json:"speaker_names,omitempty"`
}

// StageMessage is the queue envelope handed from one stage to the next. It
// deliberately carries only pointers (object keys), never media payloads or
// large results, so queue messages stay small and stages stay loosely
// coupled.
type StageMessage struct {
	SessionID        uuid.UUID   `json:"session_id"`
	ObjectKey        string      `json:"object_key"`
	OriginalFilename string      `json:"original_filename"`
	Params           StageParams `json:"stage_params"`
}
