package pipeline

import (
	"context"
	"fmt"

	"github.com/whispernotes/insights-ms-go/internal/logger"
	"github.com/whispernotes/insights-ms-go/internal/model"
	"github.com/whispernotes/insights-ms-go/internal/port"
)

// TranscribeProcessor is the stage-2 handler: speech-to-text, speaker
// assignment and display-name application over the extracted audio.
type TranscribeProcessor interface {
	Process(ctx context.Context, msg model.StageMessage) error
}

type transcribeSrv struct {
	runner
	transcriber port.Transcriber
	dispatcher  port.Dispatcher
}

func NewTranscribeProcessor(store port.SessionStore, transcriber port.Transcriber, dispatcher port.Dispatcher) TranscribeProcessor {
	return &transcribeSrv{runner: runner{store: store}, transcriber: transcriber, dispatcher: dispatcher}
}

func (s *transcribeSrv) Process(ctx context.Context, msg model.StageMessage) error {
	existing, err := s.store.GetTranscription(ctx, msg.SessionID)
	if err != nil {
		return fmt.Errorf("could not check for existing transcription: %w", err)
	}
	if existing != nil {
		logger.Infof(ctx, "session #%s already transcribed, forwarding", msg.SessionID)
		return s.dispatcher.EnqueueInsights(ctx, msg)
	}

	sess, err := s.store.GetSession(ctx, msg.SessionID)
	if err != nil {
		return fmt.Errorf("could not load session: %w", err)
	}
	if sess == nil {
		logger.Warnf(ctx, "session #%s expired before transcription, dropping message", msg.SessionID)
		return nil
	}

	// The message params are authoritative; the session record only fills in
	// values the publisher left empty.
	participants := msg.Params.ParticipantCount
	if participants == 0 {
		participants = sess.ParticipantCount
	}
	language := msg.Params.Language
	if language == "" {
		language = sess.Language
	}
	names := msg.Params.SpeakerNames
	if names == nil {
		names = sess.SpeakerNames
	}

	extract, err := s.store.GetExtractResult(ctx, msg.SessionID)
	if err != nil {
		return fmt.Errorf("could not load extract result: %w", err)
	}
	if extract == nil {
		return s.fail(msg.SessionID, model.StageTranscribe, "no extracted audio on record")
	}

	if err := s.store.SetStatus(ctx, msg.SessionID, model.StatusTranscribing); err != nil {
		return fmt.Errorf("could not move session to transcribing: %w", err)
	}
	s.report(ctx, msg.SessionID, model.StageTranscribe, 0.05, "Transcribing audio...", model.StatusTranscribing)

	out, err := s.transcriber.Transcribe(ctx, extract.AudioObjectKey, language, participants)
	if err != nil {
		return s.fail(msg.SessionID, model.StageTranscribe, fmt.Sprintf("transcription failed: %v", err))
	}

	s.report(ctx, msg.SessionID, model.StageTranscribe, 0.75, "Transcription received, assigning speakers...", model.StatusTranscribing)

	duration := out.Duration
	if duration == 0 {
		duration = extract.Media.Duration
	}

	d := out.Diarization
	if d == nil || len(d.Turns) == 0 {
		logger.Warnf(ctx, "no diarization for session #%s, synthesizing %d-speaker timeline", msg.SessionID, participants)
		d = SynthesizeDiarization(duration, participants)
	}
	AssignSpeakers(out.Segments, d)
	ApplySpeakerNames(out.Segments, names)

	r := &model.TranscriptionResult{
		SessionID:   msg.SessionID,
		Language:    out.Language,
		Duration:    duration,
		Segments:    out.Segments,
		Speakers:    ComputeSpeakerStats(out.Segments),
		IsSynthetic: d.IsSynthetic,
	}
	if err := s.store.SaveTranscription(ctx, r); err != nil {
		return fmt.Errorf("could not save transcription: %w", err)
	}

	if err := s.dispatcher.EnqueueInsights(ctx, msg); err != nil {
		return fmt.Errorf("could not publish insights message: %w", err)
	}

	s.report(ctx, msg.SessionID, model.StageTranscribe, 1, "Transcription complete! Extracting insights...", model.StatusTranscribing)
	logger.Infof(ctx, "✅ transcribed session #%s (%d segments, %d speakers)", msg.SessionID, len(r.Segments), len(r.Speakers))
	return nil
}
