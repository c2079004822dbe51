package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/akulov/finbook/internal/common"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeMessage writes a JSON error envelope with an advisory message.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeError maps application errors to HTTP statuses. Failures are
// advisory messages for the user, never a bare 500 page, except for
// genuinely unexpected errors which are logged and masked.
func writeError(w http.ResponseWriter, err error) {
	var userErr *common.UserError

	switch {
	case errors.Is(err, common.ErrValidation):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, common.ErrDuplicateEntry):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, common.ErrReferentialConflict):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, common.ErrFeedUnavailable):
		writeMessage(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, common.ErrMalformedTimestamp):
		writeMessage(w, http.StatusBadGateway, err.Error())
	case errors.As(err, &userErr):
		writeMessage(w, http.StatusBadRequest, userErr.UserMessage)
	default:
		slog.Error("Unhandled request error", "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}
