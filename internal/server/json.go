package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/playperu/chatguessr/internal/chatguessr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeEngineError maps engine errors onto HTTP statuses. Unexpected
// errors are logged and reported as 500.
func writeEngineError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, chatguessr.ErrNoActiveRound):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, chatguessr.ErrSeedUnavailable):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, chatguessr.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
