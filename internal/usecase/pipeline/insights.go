package pipeline

import (
	"context"
	"fmt"

	"github.com/whispernotes/insights-ms-go/internal/logger"
	"github.com/whispernotes/insights-ms-go/internal/model"
	"github.com/whispernotes/insights-ms-go/internal/port"
)

// ExtractInsightsProcessor is the stage-3 handler: derive action items from
// the transcription and close out the session.
type ExtractInsightsProcessor interface {
	Process(ctx context.Context, msg model.StageMessage) error
}

type extractInsightsSrv struct {
	runner
	extractor port.InsightExtractor
}

func NewExtractInsightsProcessor(store port.SessionStore, extractor port.InsightExtractor) ExtractInsightsProcessor {
	return &extractInsightsSrv{runner: runner{store: store}, extractor: extractor}
}

func (s *extractInsightsSrv) Process(ctx context.Context, msg model.StageMessage) error {
	existing, err := s.store.GetInsights(ctx, msg.SessionID)
	if err != nil {
		return fmt.Errorf("could not check for existing insights: %w", err)
	}
	if existing != nil {
		// re-assert the terminal state in case the first delivery died
		// between saving the result and flipping the status
		if err := s.store.SetStatus(ctx, msg.SessionID, model.StatusCompleted); err != nil {
			return fmt.Errorf("could not complete session: %w", err)
		}
		logger.Infof(ctx, "session #%s already analysed, dropping duplicate", msg.SessionID)
		return nil
	}

	sess, err := s.store.GetSession(ctx, msg.SessionID)
	if err != nil {
		return fmt.Errorf("could not load session: %w", err)
	}
	if sess == nil {
		logger.Warnf(ctx, "session #%s expired before analysis, dropping message", msg.SessionID)
		return nil
	}

	tr, err := s.store.GetTranscription(ctx, msg.SessionID)
	if err != nil {
		return fmt.Errorf("could not load transcription: %w", err)
	}
	if tr == nil {
		return s.fail(msg.SessionID, model.StageInsights, "no transcription on record")
	}

	if err := s.store.SetStatus(ctx, msg.SessionID, model.StatusAnalyzing); err != nil {
		return fmt.Errorf("could not move session to analyzing: %w", err)
	}
	s.report(ctx, msg.SessionID, model.StageInsights, 0.1, "Analyzing transcript for action items...", model.StatusAnalyzing)

	items, err := s.extractor.ExtractInsights(ctx, tr)
	if err != nil {
		return s.fail(msg.SessionID, model.StageInsights, fmt.Sprintf("insight extraction failed: %v", err))
	}

	r := &model.InsightResult{SessionID: msg.SessionID, Items: items}
	if err := s.store.SaveInsights(ctx, r); err != nil {
		return fmt.Errorf("could not save insights: %w", err)
	}

	if err := s.store.SetStatus(ctx, msg.SessionID, model.StatusCompleted); err != nil {
		return fmt.Errorf("could not complete session: %w", err)
	}
	s.report(ctx, msg.SessionID, model.StageInsights, 1, "Processing complete!", model.StatusCompleted)
	logger.Infof(ctx, "✅ completed session #%s with %d insight(s)", msg.SessionID, len(r.Items))
	return nil
}
