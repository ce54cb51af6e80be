package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/whispernotes/insights-ms-go/internal/api_context"
	"github.com/whispernotes/insights-ms-go/internal/logger"
	"github.com/whispernotes/insights-ms-go/internal/port"
	"github.com/whispernotes/insights-ms-go/internal/validation"
)

func RequestPartTargetHandler(svc port.PartTargetRequester) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.SessionIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "session ID is required", nil)
			return
		}

		partNumber, err := strconv.Atoi(chi.URLParam(r, "partNumber"))
		if err != nil {
			WriteError(w, http.StatusBadRequest, "part number must be an integer", err)
			return
		}

		out, err := svc.RequestPartTarget(r.Context(), id, partNumber)
		if err != nil {
			WriteServiceError(w, fmt.Sprintf("could not generate upload target for session #%s", id), err)
			return
		}

		RespondJSON(w, http.StatusOK, out)
	}
}

type RecordPartRequest struct {
	PartNumber int    `json:"part_number" validate:"required,gt=0"`
	ETag       string `json:"etag" validate:"required"`
	SizeBytes  int64  `json:"size_bytes" validate:"required,gt=0"`
}

func RecordPartHandler(svc port.PartRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.SessionIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "session ID is required", nil)
			return
		}

		var req RecordPartRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid request", fmt.Errorf("invalid JSON: %w", err))
			return
		}

		if errs := validation.ValidateStruct(req); errs != nil {
			errsJSON, err := validation.ErrorsToJson(errs)
			if err != nil {
				WriteError(w, http.StatusInternalServerError, "Validation error (could not encode details)", fmt.Errorf("encoding validation errors: %w", err))
				return
			}
			RespondRawJSON(w, http.StatusBadRequest, []byte(errsJSON))
			logger.Warnf(r.Context(), "❌  Validation failed: %s", errsJSON)
			return
		}

		in := port.RecordPartInput{
			SessionID:  id,
			PartNumber: req.PartNumber,
			ETag:       req.ETag,
			SizeBytes:  req.SizeBytes,
		}
		out, err := svc.RecordPart(r.Context(), in)
		if err != nil {
			WriteServiceError(w, fmt.Sprintf("could not record part for session #%s", id), err)
			return
		}

		RespondJSON(w, http.StatusOK, out)
		logger.Infof(r.Context(), "✅  Recorded part %d/%d of session #%s", out.RecordedParts, out.ExpectedParts, id)
	}
}
