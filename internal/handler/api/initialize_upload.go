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

type InitializeUploadRequest struct {
	Filename         string `json:"filename" validate:"required,max=255"`
	SizeBytes        int64  `json:"size_bytes" validate:"required,gt=0"`
	ContentType      string `json:"content_type" validate:"required"`
	ParticipantCount int    `json:"participant_count" validate:"omitempty,min=1,max=10"`
	Language         string `json:"language" validate:"omitempty,bcp47_language_tag"`
}

func InitializeUploadHandler(svc port.UploadInitializer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req InitializeUploadRequest
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

		ownerID, _ := api_context.AuthUserIDFromContext(r.Context())

		in := port.InitializeUploadInput{
			Filename:         req.Filename,
			DeclaredSize:     req.SizeBytes,
			ContentType:      req.ContentType,
			OwnerID:          ownerID,
			ParticipantCount: req.ParticipantCount,
			Language:         req.Language,
		}
		out, err := svc.InitializeUpload(r.Context(), in)
		if err != nil {
			WriteServiceError(w, "Could not initialise upload session", err)
			return
		}

		RespondJSON(w, http.StatusCreated, out)
		logger.Infof(r.Context(), "✅  Successfully initialised upload session #%s (%d parts)", out.SessionID, out.Parts)
	}
}
