package worker

import (
	"context"
	"log"

	"github.com/whispernotes/insights-ms-go/internal/model"
	"github.com/whispernotes/insights-ms-go/internal/usecase/pipeline"
)

// ExtractAudioHandler handles a stage-1 task. It hands the parsed envelope
// to the pipeline.ExtractAudioProcessor service and delegates the call.
func ExtractAudioHandler(ctx context.Context, msg model.StageMessage, svc pipeline.ExtractAudioProcessor) error {
	if err := svc.Process(ctx, msg); err != nil {
		log.Printf("❌  Audio extraction errored for session #%s: %v", msg.SessionID, err)
		return err
	}

	log.Printf("✅  Audio extraction handled for session #%s", msg.SessionID)
	return nil
}
