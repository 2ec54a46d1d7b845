package server

import (
	"log/slog"
	"net/http"

	"github.com/playperu/chatguessr/internal/chatguessr"
	"github.com/playperu/chatguessr/internal/geo"
	"github.com/playperu/chatguessr/internal/ingest"
)

type GuessRequest struct {
	User chatguessr.UserInfo `json:"user"`
	Lat  float64             `json:"lat"`
	Lng  float64             `json:"lng"`
}

type GuessResponse struct {
	Outcome string                  `json:"outcome"`
	Guess   *chatguessr.RoundResult `json:"guess,omitempty"`
}

// RejectionResponse is returned with 409 when the policy refuses a guess.
type RejectionResponse struct {
	Error   string `json:"error"`
	Outcome string `json:"outcome"`
}

type ChatResponse struct {
	Action  string                `json:"action"`
	Outcome string                `json:"outcome,omitempty"`
	Flag    *string               `json:"flag,omitempty"`
	Stats   *chatguessr.UserStats `json:"stats,omitempty"`
}

var actionNames = map[ingest.Action]string{
	ingest.ActionNone:       "none",
	ingest.ActionGuess:      "guess",
	ingest.ActionFlag:       "flag",
	ingest.ActionStats:      "stats",
	ingest.ActionClearStats: "clear_stats",
}

// handleGuess submits a guess on behalf of a chat user, bypassing command
// parsing.
func handleGuess(logger *slog.Logger, g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GuessRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.User.ChannelUserID == "" {
			writeError(w, http.StatusBadRequest, "user.userId is required")
			return
		}
		p := chatguessr.LatLng{Lat: req.Lat, Lng: req.Lng}
		if !geo.Valid(p) {
			writeError(w, http.StatusBadRequest, "coordinates out of range")
			return
		}

		res, err := g.HandleUserGuess(r.Context(), req.User, p)
		if err != nil {
			writeEngineError(w, logger, err)
			return
		}
		if rejection := res.Outcome.Err(); rejection != nil {
			writeJSON(w, http.StatusConflict, RejectionResponse{Error: rejection.Error(), Outcome: res.Outcome.String()})
			return
		}
		writeJSON(w, http.StatusOK, GuessResponse{Outcome: res.Outcome.String(), Guess: res.Guess})
	}
}

// handleChat feeds a raw chat line through command dispatch.
func handleChat(logger *slog.Logger, chat Chat) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var msg ingest.Message
		if err := readJSON(r, &msg); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg.User.ChannelUserID == "" {
			writeError(w, http.StatusBadRequest, "user.userId is required")
			return
		}

		res, err := chat.Handle(r.Context(), msg)
		if err != nil {
			writeEngineError(w, logger, err)
			return
		}

		resp := ChatResponse{Action: actionNames[res.Action], Flag: res.Flag, Stats: res.Stats}
		if res.Guess != nil {
			resp.Outcome = res.Guess.Outcome.String()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
