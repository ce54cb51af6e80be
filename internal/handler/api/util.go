package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/whispernotes/insights-ms-go/internal/logger"
	"github.com/whispernotes/insights-ms-go/internal/usecase/upload"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func WriteError(w http.ResponseWriter, status int, msg string, err error) {
	ctx := context.Background()
	if err != nil {
		logger.Errorf(ctx, "❌  %s: %v", msg, err)
	} else {
		logger.Error(ctx, "❌  "+msg)
	}
	w.Header().Set("Cache-Control", "no-store, max-age=0, must-revalidate")
	RespondJSON(w, status, ErrorResponse{Error: msg})
}

func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf(context.Background(), "❌  Failed to encode JSON response: %v", err)
	}
}

func RespondRawJSON(w http.ResponseWriter, status int, raw []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(raw); err != nil {
		logger.Errorf(context.Background(), "❌  Failed to write JSON payload: %v", err)
	}
}

// WriteServiceError maps the service-layer sentinels onto HTTP statuses.
// Anything unrecognised reads as an internal error.
func WriteServiceError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, upload.ErrValidation):
		WriteError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, upload.ErrSessionNotFound):
		WriteError(w, http.StatusNotFound, "session not found", nil)
	case errors.Is(err, upload.ErrConflict):
		WriteError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, upload.ErrNotReady):
		// not an error for the client, just "come back later"
		RespondJSON(w, http.StatusAccepted, ErrorResponse{Error: err.Error()})
	case errors.Is(err, upload.ErrUnavailable):
		WriteError(w, http.StatusServiceUnavailable, msg, err)
	default:
		WriteError(w, http.StatusInternalServerError, msg, err)
	}
}
