package pipeline

import (
	"context"
	"fmt"

	"github.com/whispernotes/insights-ms-go/internal/logger"
	"github.com/whispernotes/insights-ms-go/internal/model"
	"github.com/whispernotes/insights-ms-go/internal/port"
)

// ExtractAudioProcessor is the stage-1 handler: pull the audio track out of
// the assembled upload and hand the session to transcription.
type ExtractAudioProcessor interface {
	Process(ctx context.Context, msg model.StageMessage) error
}

type extractAudioSrv struct {
	runner
	extractor  port.AudioExtractor
	dispatcher port.Dispatcher
}

func NewExtractAudioProcessor(store port.SessionStore, extractor port.AudioExtractor, dispatcher port.Dispatcher) ExtractAudioProcessor {
	return &extractAudioSrv{runner: runner{store: store}, extractor: extractor, dispatcher: dispatcher}
}

func (s *extractAudioSrv) Process(ctx context.Context, msg model.StageMessage) error {
	// A redelivered message for an already-extracted session only re-forwards
	// the hand-off; the extraction itself never runs twice.
	existing, err := s.store.GetExtractResult(ctx, msg.SessionID)
	if err != nil {
		return fmt.Errorf("could not check for existing extract result: %w", err)
	}
	if existing != nil {
		logger.Infof(ctx, "session #%s already has extracted audio, forwarding", msg.SessionID)
		return s.dispatcher.EnqueueTranscribe(ctx, msg)
	}

	sess, err := s.store.GetSession(ctx, msg.SessionID)
	if err != nil {
		return fmt.Errorf("could not load session: %w", err)
	}
	if sess == nil {
		logger.Warnf(ctx, "session #%s expired before audio extraction, dropping message", msg.SessionID)
		return nil
	}

	s.report(ctx, msg.SessionID, model.StageExtract, 0.1, "Extracting audio track...", sess.Status)

	audioKey, info, err := s.extractor.ExtractAudio(ctx, msg.ObjectKey)
	if err != nil {
		return s.fail(msg.SessionID, model.StageExtract, fmt.Sprintf("audio extraction failed: %v", err))
	}

	s.report(ctx, msg.SessionID, model.StageExtract, 0.9, "Audio track extracted", sess.Status)

	r := &model.ExtractResult{
		SessionID:      msg.SessionID,
		AudioObjectKey: audioKey,
		Media:          info,
	}
	if err := s.store.SaveExtractResult(ctx, r); err != nil {
		// redelivery reruns the extraction and overwrites the same audio key
		return fmt.Errorf("could not save extract result: %w", err)
	}

	if err := s.dispatcher.EnqueueTranscribe(ctx, msg); err != nil {
		return fmt.Errorf("could not publish transcribe message: %w", err)
	}

	s.report(ctx, msg.SessionID, model.StageExtract, 1, "Audio ready! Starting transcription...", sess.Status)
	logger.Infof(ctx, "✅ extracted audio for session #%s (%.1fs of %s)", msg.SessionID, info.Duration, info.Format)
	return nil
}
