package api

import (
	"fmt"
	"net/http"

	"github.com/whispernotes/insights-ms-go/internal/api_context"
	"github.com/whispernotes/insights-ms-go/internal/port"
)

func GetResultHandler(svc port.ResultGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.SessionIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "session ID is required", nil)
			return
		}

		out, err := svc.GetResult(r.Context(), id)
		if err != nil {
			WriteServiceError(w, fmt.Sprintf("could not get result of session #%s", id), err)
			return
		}

		RespondJSON(w, http.StatusOK, out)
	}
}
