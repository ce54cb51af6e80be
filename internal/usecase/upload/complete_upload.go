package upload

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/whispernotes/insights-ms-go/internal/model"
	"github.com/whispernotes/insights-ms-go/internal/port"
)

type completeUploadSrv struct {
	store      port.SessionStore
	strg       port.Storage
	dispatcher port.Dispatcher
}

// NewUploadCompleter constructs a port.UploadCompleter implementation.
func NewUploadCompleter(store port.SessionStore, strg port.Storage, dispatcher port.Dispatcher) port.UploadCompleter {
	return &completeUploadSrv{store: store, strg: strg, dispatcher: dispatcher}
}

// CompleteUpload validates the claimed part set against the server-recorded
// one, assembles the final object and publishes exactly one stage-1 message.
// Validation failures leave the session untouched; assembly failures mark it
// failed and leave the parts for TTL cleanup.
func (s *completeUploadSrv) CompleteUpload(ctx context.Context, in port.CompleteUploadInput) (port.CompleteUploadOutput, error) {
	sess, err := s.store.GetSession(ctx, in.SessionID)
	if err != nil {
		return port.CompleteUploadOutput{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if sess == nil {
		return port.CompleteUploadOutput{}, ErrSessionNotFound
	}
	if sess.Status != model.StatusUploading {
		return port.CompleteUploadOutput{}, fmt.Errorf("%w: session is %s", ErrConflict, sess.Status)
	}

	if err := validatePartSet(in.Parts, sess); err != nil {
		return port.CompleteUploadOutput{}, err
	}

	// From here on, failures are terminal for the session.
	var finalErr error
	defer func() {
		if finalErr != nil {
			s.markAsFailed(sess, finalErr.Error())
		}
	}()

	if err := s.store.SetStatus(ctx, sess.ID, model.StatusAssembling); err != nil {
		finalErr = fmt.Errorf("could not move session to assembling: %w", err)
		return port.CompleteUploadOutput{}, fmt.Errorf("%w: %v", ErrUnavailable, finalErr)
	}
	s.reportProgress(ctx, sess, 0.9, "Assembling uploaded parts...", model.StatusAssembling)

	partKeys := make([]string, 0, sess.ExpectedParts)
	for n := 1; n <= sess.ExpectedParts; n++ {
		partKeys = append(partKeys, PartKey(sess.ObjectKey, n))
	}
	if err := s.strg.ComposeParts(ctx, sess.ObjectKey, partKeys, sess.ContentType); err != nil {
		finalErr = fmt.Errorf("assembly failed: %w", err)
		return port.CompleteUploadOutput{}, fmt.Errorf("%w: %v", ErrUnavailable, finalErr)
	}
	// part objects are no longer needed; leftovers fall to TTL cleanup
	for _, key := range partKeys {
		if err := s.strg.RemoveFile(ctx, key); err != nil {
			log.Printf("failed to remove part %q: %v", key, err)
		}
	}

	if err := s.store.SetStatus(ctx, sess.ID, model.StatusProcessing); err != nil {
		finalErr = fmt.Errorf("could not move session to processing: %w", err)
		return port.CompleteUploadOutput{}, fmt.Errorf("%w: %v", ErrUnavailable, finalErr)
	}

	msg := model.StageMessage{
		SessionID:        sess.ID,
		ObjectKey:        sess.ObjectKey,
		OriginalFilename: sess.Filename,
		Params: model.StageParams{
			ParticipantCount: sess.ParticipantCount,
			Language:         sess.Language,
			SpeakerNames:     sess.SpeakerNames,
		},
	}
	if err := s.dispatcher.EnqueueExtractAudio(ctx, msg); err != nil {
		finalErr = fmt.Errorf("could not publish extract-audio message: %w", err)
		return port.CompleteUploadOutput{}, fmt.Errorf("%w: %v", ErrUnavailable, finalErr)
	}

	s.reportProgress(ctx, sess, 1, "Upload completed! Starting audio extraction...", model.StatusProcessing)

	return port.CompleteUploadOutput{SessionID: sess.ID, Status: model.StatusProcessing}, nil
}

// validatePartSet checks that the claimed set equals the recorded set and
// forms exactly the contiguous range {1..N}. Submission order is irrelevant.
func validatePartSet(claimed []int, sess *model.UploadSession) error {
	if len(claimed) == 0 {
		return fmt.Errorf("%w: no parts submitted", ErrValidation)
	}

	sorted := make([]int, len(claimed))
	copy(sorted, claimed)
	sort.Ints(sorted)
	for i, n := range sorted {
		if n != i+1 {
			if i > 0 && n == sorted[i-1] {
				return fmt.Errorf("%w: duplicate part %d", ErrValidation, n)
			}
			return fmt.Errorf("%w: parts must form the contiguous range 1..%d", ErrValidation, len(sorted))
		}
	}

	if len(sorted) != sess.ExpectedParts {
		return fmt.Errorf("%w: expected %d parts, got %d", ErrValidation, sess.ExpectedParts, len(sorted))
	}
	if len(sess.Parts) != len(sorted) {
		return fmt.Errorf("%w: server recorded %d parts, client claimed %d", ErrValidation, len(sess.Parts), len(sorted))
	}
	for _, n := range sorted {
		if _, ok := sess.Parts[n]; !ok {
			return fmt.Errorf("%w: part %d was never recorded", ErrValidation, n)
		}
	}
	return nil
}

func (s *completeUploadSrv) reportProgress(ctx context.Context, sess *model.UploadSession, fraction float64, msg string, status model.Status) {
	p := &model.ProgressRecord{
		SessionID: sess.ID,
		Stage:     model.StageUpload,
		Percent:   model.RangeFor(model.StageUpload).Overall(fraction),
		Message:   msg,
		Status:    status,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.store.SetProgress(ctx, p); err != nil {
		log.Printf("failed to report progress for session #%s: %v", sess.ID, err)
	}
}

func (s *completeUploadSrv) markAsFailed(sess *model.UploadSession, reason string) {
	// run on a fresh context so a cancelled request still records the failure
	ctx := context.Background()
	if err := s.store.SetStatus(ctx, sess.ID, model.StatusFailed); err != nil {
		log.Printf("markAsFailed failed for session #%s: %v", sess.ID, err)
	}
	e := &model.ErrorRecord{
		SessionID: sess.ID,
		Stage:     model.StageUpload,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	}
	if err := s.store.SaveError(ctx, e); err != nil {
		log.Printf("failed to save error record for session #%s: %v", sess.ID, err)
	}
	p := &model.ProgressRecord{
		SessionID: sess.ID,
		Stage:     model.StageUpload,
		Percent:   0,
		Message:   "Upload failed: " + reason,
		Status:    model.StatusFailed,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.store.SetProgress(ctx, p); err != nil {
		log.Printf("failed to report failure progress for session #%s: %v", sess.ID, err)
	}
}
