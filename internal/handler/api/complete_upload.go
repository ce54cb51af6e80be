package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/whispernotes/insights-ms-go/internal/api_context"
	"github.com/whispernotes/insights-ms-go/internal/logger"
	"github.com/whispernotes/insights-ms-go/internal/port"
	"github.com/whispernotes/insights-ms-go/internal/validation"
)

type CompleteUploadRequest struct {
	Parts []int `json:"parts" validate:"required,min=1,dive,gt=0"`
}

func CompleteUploadHandler(svc port.UploadCompleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.SessionIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "session ID is required", nil)
			return
		}

		var req CompleteUploadRequest
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

		in := port.CompleteUploadInput{SessionID: id, Parts: req.Parts}
		out, err := svc.CompleteUpload(r.Context(), in)
		if err != nil {
			WriteServiceError(w, fmt.Sprintf("could not complete upload of session #%s", id), err)
			return
		}

		RespondJSON(w, http.StatusAccepted, out)
		logger.Infof(r.Context(), "✅  Completed upload of session #%s, pipeline started", id)
	}
}
