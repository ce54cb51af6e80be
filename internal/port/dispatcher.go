package port

import (
	"context"

	"github.com/whispernotes/insights-ms-go/internal/model"
)

// Dispatcher publishes stage messages to the per-stage queues.
type Dispatcher interface {
	EnqueueExtractAudio(ctx context.Context, msg model.StageMessage) error
	EnqueueTranscribe(ctx context.Context, msg model.StageMessage) error
	EnqueueInsights(ctx context.Context, msg model.StageMessage) error
}
