package worker

import (
	"context"
	"log"

	"github.com/whispernotes/insights-ms-go/internal/model"
	"github.com/whispernotes/insights-ms-go/internal/usecase/pipeline"
)

// TranscribeHandler handles a stage-2 task.
func TranscribeHandler(ctx context.Context, msg model.StageMessage, svc pipeline.TranscribeProcessor) error {
	if err := svc.Process(ctx, msg); err != nil {
		log.Printf("❌  Transcription errored for session #%s: %v", msg.SessionID, err)
		return err
	}

	log.Printf("✅  Transcription handled for session #%s", msg.SessionID)
	return nil
}
