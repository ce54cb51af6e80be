package api

import (
	"fmt"
	"net/http"

	"github.com/whispernotes/insights-ms-go/internal/api_context"
	"github.com/whispernotes/insights-ms-go/internal/port"
)

func GetStatusHandler(svc port.StatusGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.SessionIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "session ID is required", nil)
			return
		}

		out, err := svc.GetStatus(r.Context(), id)
		if err != nil {
			WriteServiceError(w, fmt.Sprintf("could not get status of session #%s", id), err)
			return
		}

		// polling endpoint, never cache
		w.Header().Set("Cache-Control", "no-store, max-age=0, must-revalidate")
		RespondJSON(w, http.StatusOK, out)
	}
}
