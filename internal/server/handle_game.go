package server

import (
	"log/slog"
	"net/http"

	"github.com/playperu/chatguessr/internal/chatguessr"
	"github.com/playperu/chatguessr/internal/engine"
)

type StartRequest struct {
	URL string `json:"url"`
	// MultiGuess overrides the configured mode when set.
	MultiGuess *bool `json:"multiGuess,omitempty"`
}

type RefreshResponse struct {
	Kind     string                   `json:"kind"`
	Round    int                      `json:"round,omitempty"`
	Location *chatguessr.Location     `json:"location,omitempty"`
	Results  []chatguessr.RoundResult `json:"results,omitempty"`
	Finished bool                     `json:"finished"`
}

func handleStart(logger *slog.Logger, g Game, defaultMulti bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StartRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.URL == "" {
			writeError(w, http.StatusBadRequest, "url is required")
			return
		}

		multi := defaultMulti
		if req.MultiGuess != nil {
			multi = *req.MultiGuess
		}
		if err := g.Start(r.Context(), req.URL, multi); err != nil {
			writeEngineError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, g.Snapshot())
	}
}

func handleRefresh(logger *slog.Logger, g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := g.Refresh(r.Context())
		if err != nil {
			writeEngineError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, newRefreshResponse(res))
	}
}

func newRefreshResponse(res engine.RefreshResult) RefreshResponse {
	return RefreshResponse{
		Kind:     res.Kind.String(),
		Round:    res.Round,
		Location: res.Location,
		Results:  res.Results,
		Finished: res.Finished,
	}
}

func handleOpenGuesses(logger *slog.Logger, g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := g.OpenGuesses(); err != nil {
			writeEngineError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, g.Snapshot())
	}
}

func handleCloseGuesses(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g.CloseGuesses()
		writeJSON(w, http.StatusOK, g.Snapshot())
	}
}

func handleFinish(logger *slog.Logger, g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := g.FinishGame(r.Context()); err != nil {
			writeEngineError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, g.Snapshot())
	}
}

func handleLeave(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g.Leave()
		writeJSON(w, http.StatusOK, g.Snapshot())
	}
}

func handleSnapshot(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, g.Snapshot())
	}
}

func handleLocations(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locs := g.Locations()
		if locs == nil {
			locs = []chatguessr.Location{}
		}
		writeJSON(w, http.StatusOK, locs)
	}
}

func handleRoundParticipants(logger *slog.Logger, g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := g.RoundParticipants(r.Context())
		if err != nil {
			writeEngineError(w, logger, err)
			return
		}
		if players == nil {
			players = []chatguessr.Player{}
		}
		writeJSON(w, http.StatusOK, players)
	}
}

func handleRoundResults(logger *slog.Logger, g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results, err := g.RoundResults(r.Context())
		if err != nil {
			writeEngineError(w, logger, err)
			return
		}
		if results == nil {
			results = []chatguessr.RoundResult{}
		}
		writeJSON(w, http.StatusOK, results)
	}
}

func handleGameResults(logger *slog.Logger, g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results, err := g.GameResults(r.Context())
		if err != nil {
			writeEngineError(w, logger, err)
			return
		}
		if results == nil {
			results = []chatguessr.GameResult{}
		}
		writeJSON(w, http.StatusOK, results)
	}
}
