package api

import (
	"fmt"
	"net/http"

	"github.com/whispernotes/insights-ms-go/internal/api_context"
	"github.com/whispernotes/insights-ms-go/internal/logger"
	"github.com/whispernotes/insights-ms-go/internal/port"
)

func DeleteSessionHandler(svc port.SessionDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.SessionIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "session ID is required", nil)
			return
		}

		if err := svc.DeleteSession(r.Context(), id); err != nil {
			WriteServiceError(w, fmt.Sprintf("could not delete session #%s", id), err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
		logger.Infof(r.Context(), "✅  Successfully deleted session #%s", id)
	}
}
