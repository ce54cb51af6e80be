package model

import (
	"time"

	"github.com/whispernotes/insights-ms-go/internal/uuid"
)

// Status is the lifecycle state of an upload session. It only ever moves
// forward through statusOrder, except that any non-terminal status may jump
// to StatusFailed.
type Status string

const (
	StatusInitializing Status = "initializing"
	StatusUploading    Status = "uploading"
	StatusAssembling   Status = "assembling"
	StatusProcessing   Status = "processing"
	StatusTranscribing Status = "transcribing"
	StatusAnalyzing    Status = "analyzing"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

var statusOrder = map[Status]int{
	StatusInitializing: 0,
	StatusUploading:    1,
	StatusAssembling:   2,
	StatusProcessing:   3,
	StatusTranscribing: 4,
	StatusAnalyzing:    5,
	StatusCompleted:    6,
}

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether moving from s to next respects the
// forward-only ordering.
func (s Status) CanTransition(next Status) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StatusFailed {
		return true
	}
	from, ok1 := statusOrder[s]
	to, ok2 := statusOrder[next]
	return ok1 && ok2 && to > from
}

// PartRecord is the server-side record of one uploaded part. Re-recording the
// same part number overwrites the prior entry, so a client may safely retry a
// single part.
type PartRecord struct {
	PartNumber int    `json:"part_number"`
	ETag       string `json:"etag"`
	SizeBytes  int64  `json:"size_bytes"`
}

// UploadSession is the end-to-end identity of one media item, from upload
// initiation through the final analyzed result. Workers only ever touch the
// status; the part map belongs to the upload phase.
type UploadSession struct {
	ID               uuid.UUID          `json:"id"`
	ObjectKey        string             `json:"object_key"`
	Filename         string             `json:"filename"`
	DeclaredSize     int64              `json:"declared_size"`
	ContentType      string             `json:"content_type"`
	OwnerID          string             `json:"owner_id,omitempty"`
	ParticipantCount int                `json:"participant_count"`
	Language         string             `json:"language,omitempty"`
	SpeakerNames     []string           `json:"speaker_names,omitempty"`
	Parts            map[int]PartRecord `json:"parts,omitempty"`
	ExpectedParts    int                `json:"expected_parts"`
	Status           Status             `json:"status"`
	CreatedAt        time.Time          `json:"created_at"`
}

// ProgressRecord is the single per-session progress row, overwritten by
// whichever stage last ran. Percent covers the whole pipeline (0–100) and
// must never decrease while the status is non-terminal.
type ProgressRecord struct {
	SessionID uuid.UUID `json:"session_id"`
	Stage     string    `json:"stage"`
	Percent   float64   `json:"percent"`
	Message   string    `json:"message"`
	Status    Status    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ErrorRecord captures an asynchronous stage failure.
type ErrorRecord struct {
	SessionID uuid.UUID `json:"session_id"`
	Stage     string    `json:"stage"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}
