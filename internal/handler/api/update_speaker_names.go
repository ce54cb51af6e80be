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

type UpdateSpeakerNamesRequest struct {
	SpeakerNames []string `json:"speaker_names" validate:"required,max=10,dive,max=100"`
}

func UpdateSpeakerNamesHandler(svc port.SpeakerNamesUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.SessionIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "session ID is required", nil)
			return
		}

		var req UpdateSpeakerNamesRequest
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

		if err := svc.UpdateSpeakerNames(r.Context(), id, req.SpeakerNames); err != nil {
			WriteServiceError(w, fmt.Sprintf("could not update speaker names of session #%s", id), err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
		logger.Infof(r.Context(), "✅  Updated speaker names of session #%s", id)
	}
}
