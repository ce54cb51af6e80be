package task

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/whispernotes/insights-ms-go/internal/model"
)

// One task type and one queue per pipeline stage; competing consumer
// processes share a stage's queue.
const (
	TypeExtractAudio = "pipeline:extract_audio"
	TypeTranscribe   = "pipeline:transcribe"
	TypeInsights     = "pipeline:extract_insights"

	QueueExtract    = "extract"
	QueueTranscribe = "transcribe"
	QueueInsights   = "insights"
)

// QueueForStage maps a stage name to its queue.
func QueueForStage(stage string) (string, error) {
	switch stage {
	case model.StageExtract:
		return QueueExtract, nil
	case model.StageTranscribe:
		return QueueTranscribe, nil
	case model.StageInsights:
		return QueueInsights, nil
	default:
		return "", fmt.Errorf("unknown stage %q", stage)
	}
}

func newStageTask(taskType, queue string, msg model.StageMessage) (*asynq.Task, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("could not marshal %s payload: %w", taskType, err)
	}
	return asynq.NewTask(taskType, data, asynq.Queue(queue)), nil
}

// NewExtractAudioTask creates the stage-1 task for a freshly assembled upload.
func NewExtractAudioTask(msg model.StageMessage) (*asynq.Task, error) {
	return newStageTask(TypeExtractAudio, QueueExtract, msg)
}

// NewTranscribeTask creates the stage-2 task pointing at the extracted audio.
func NewTranscribeTask(msg model.StageMessage) (*asynq.Task, error) {
	return newStageTask(TypeTranscribe, QueueTranscribe, msg)
}

// NewInsightsTask creates the stage-3 task for insight extraction.
func NewInsightsTask(msg model.StageMessage) (*asynq.Task, error) {
	return newStageTask(TypeInsights, QueueInsights, msg)
}

// ParseStageMessage parses any stage task payload into the shared envelope.
func ParseStageMessage(t *asynq.Task) (model.StageMessage, error) {
	var msg model.StageMessage
	if err := json.Unmarshal(t.Payload(), &msg); err != nil {
		return model.StageMessage{}, fmt.Errorf("could not unmarshal payload: %w", err)
	}
	return msg, nil
}
