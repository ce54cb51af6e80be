package worker

import (
	"context"
	"log"

	"github.com/whispernotes/insights-ms-go/internal/model"
	"github.com/whispernotes/insights-ms-go/internal/usecase/pipeline"
)

// ExtractInsightsHandler handles a stage-3 task.
func ExtractInsightsHandler(ctx context.Context, msg model.StageMessage, svc pipeline.ExtractInsightsProcessor) error {
	if err := svc.Process(ctx, msg); err != nil {
		log.Printf("❌  Insight extraction errored for session #%s: %v", msg.SessionID, err)
		return err
	}

	log.Printf("✅  Insight extraction handled for session #%s", msg.SessionID)
	return nil
}
