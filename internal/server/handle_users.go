package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/chatguessr/internal/chatguessr"
)

type BanRequest struct {
	Username string `json:"username"`
}

func handleListBanned(logger *slog.Logger, users Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := users.BannedUsers(r.Context())
		if err != nil {
			writeEngineError(w, logger, err)
			return
		}
		if names == nil {
			names = []string{}
		}
		writeJSON(w, http.StatusOK, names)
	}
}

func handleAddBanned(logger *slog.Logger, users Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BanRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		name := strings.TrimSpace(req.Username)
		if name == "" {
			writeError(w, http.StatusBadRequest, "username is required")
			return
		}
		if err := users.AddBannedUser(r.Context(), name); err != nil {
			writeEngineError(w, logger, err)
			return
		}
		logger.Info("user banned", "username", name)
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleDeleteBanned(logger *slog.Logger, users Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "username")
		if err := users.DeleteBannedUser(r.Context(), name); err != nil {
			writeEngineError(w, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleUserStats(logger *slog.Logger, users Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := users.UserStats(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			writeEngineError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func handleClearUserStats(logger *slog.Logger, users Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := users.UserByChannelID(r.Context(), chi.URLParam(r, "userID"))
		if errors.Is(err, chatguessr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		if err != nil {
			writeEngineError(w, logger, err)
			return
		}
		if err := users.ResetUserStats(r.Context(), u.ID); err != nil {
			writeEngineError(w, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
