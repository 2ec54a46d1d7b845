package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/chatguessr/internal/chatguessr"
	"github.com/playperu/chatguessr/internal/engine"
	"github.com/playperu/chatguessr/internal/ingest"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthStatus is one entry of the /healthz body, keyed by dependency name.
type HealthStatus struct {
	Status string `json:"status"`
}

type operation struct {
	method, path string
	summary      string
	description  string
	req          any
	resp         []response
}

type response struct {
	status      int
	body        any
	contentType string
}

func ok(body any) response      { return response{status: http.StatusOK, body: body} }
func fail(status int) response  { return response{status: status, body: ErrorResponse{}} }
func stream(ct string) response { return response{status: http.StatusOK, contentType: ct} }
func noContent() response       { return response{status: http.StatusNoContent} }

var operations = []operation{
	{
		method: http.MethodGet, path: "/healthz",
		summary:     "Health check",
		description: "Returns the health status of backend dependencies.",
		resp: []response{
			ok(map[string]HealthStatus{}),
			{status: http.StatusServiceUnavailable, body: map[string]HealthStatus{}},
		},
	},
	{
		method: http.MethodGet, path: "/api/game",
		summary:     "Session snapshot",
		description: "Current game, round and guess gate state.",
		resp:        []response{ok(engine.Snapshot{})},
	},
	{
		method: http.MethodGet, path: "/api/game/locations",
		summary:     "Round locations",
		description: "True locations of every round played so far.",
		resp:        []response{ok([]chatguessr.Location{})},
	},
	{
		method: http.MethodGet, path: "/api/game/round/participants",
		summary:     "Round participants",
		description: "Players who guessed in the current round, first guess first.",
		resp:        []response{ok([]chatguessr.Player{}), fail(http.StatusConflict)},
	},
	{
		method: http.MethodGet, path: "/api/game/round/results",
		summary:     "Round results",
		description: "Guesses of the current round, closest first.",
		resp:        []response{ok([]chatguessr.RoundResult{}), fail(http.StatusConflict)},
	},
	{
		method: http.MethodGet, path: "/api/game/results",
		summary:     "Game results",
		description: "Standings over the live rounds of the game, highest total first.",
		resp:        []response{ok([]chatguessr.GameResult{}), fail(http.StatusConflict)},
	},
	{
		method: http.MethodPost, path: "/api/game/start",
		summary:     "Start or resume a game",
		description: "Fetches the seed behind url and starts the session. Requires Bearer token.",
		req:         StartRequest{},
		resp:        []response{ok(engine.Snapshot{}), fail(http.StatusBadRequest), fail(http.StatusUnauthorized), fail(http.StatusBadGateway)},
	},
	{
		method: http.MethodPost, path: "/api/game/refresh",
		summary:     "Refresh the seed",
		description: "Re-fetches the seed and closes, replaces or keeps the current round. Requires Bearer token.",
		resp:        []response{ok(RefreshResponse{}), fail(http.StatusConflict), fail(http.StatusBadGateway)},
	},
	{
		method: http.MethodPost, path: "/api/game/guesses/open",
		summary:     "Open guesses",
		description: "Starts accepting chat guesses for the current round. Requires Bearer token.",
		resp:        []response{ok(engine.Snapshot{}), fail(http.StatusConflict)},
	},
	{
		method: http.MethodPost, path: "/api/game/guesses/close",
		summary:     "Close guesses",
		description: "Stops accepting chat guesses. Requires Bearer token.",
		resp:        []response{ok(engine.Snapshot{})},
	},
	{
		method: http.MethodPost, path: "/api/game/finish",
		summary:     "Finish the game",
		description: "Marks the game finished. Requires Bearer token.",
		resp:        []response{ok(engine.Snapshot{})},
	},
	{
		method: http.MethodPost, path: "/api/game/leave",
		summary:     "Leave the game",
		description: "Detaches from the game without finishing it. Requires Bearer token.",
		resp:        []response{ok(engine.Snapshot{})},
	},
	{
		method: http.MethodPost, path: "/api/guesses",
		summary:     "Submit a guess",
		description: "Submits a guess for a chat user. Policy rejections return 409 with the outcome. Requires Bearer token.",
		req:         GuessRequest{},
		resp: []response{
			ok(GuessResponse{}),
			fail(http.StatusBadRequest),
			{status: http.StatusConflict, body: RejectionResponse{}},
		},
	},
	{
		method: http.MethodPost, path: "/api/chat",
		summary:     "Relay a chat message",
		description: "Runs a chat line through command dispatch. Requires Bearer token.",
		req:         ingest.Message{},
		resp:        []response{ok(ChatResponse{}), fail(http.StatusBadRequest)},
	},
	{
		method: http.MethodGet, path: "/api/banned",
		summary: "List banned users",
		resp:    []response{ok([]string{})},
	},
	{
		method: http.MethodPost, path: "/api/banned",
		summary:     "Ban a user",
		description: "Guesses from banned usernames are ignored. Requires Bearer token.",
		req:         BanRequest{},
		resp:        []response{noContent(), fail(http.StatusBadRequest)},
	},
	{
		method: http.MethodDelete, path: "/api/banned/{username}",
		summary: "Unban a user",
		req:     usernamePath{},
		resp:    []response{noContent()},
	},
	{
		method: http.MethodGet, path: "/api/users/{userID}/stats",
		summary:     "User stats",
		description: "Lifetime stats for a chat user id.",
		req:         userPath{},
		resp:        []response{ok(chatguessr.UserStats{}), fail(http.StatusNotFound)},
	},
	{
		method: http.MethodDelete, path: "/api/users/{userID}/stats",
		summary:     "Clear user stats",
		description: "Deletes the user's guess history and streaks. Requires Bearer token.",
		req:         userPath{},
		resp:        []response{noContent(), fail(http.StatusNotFound)},
	},
	{
		method: http.MethodGet, path: "/api/events",
		summary:     "SSE event stream",
		description: "Server-Sent Events stream of session events. The first event is a snapshot.",
		resp:        []response{stream("text/event-stream")},
	},
	{
		method: http.MethodGet, path: "/ws/events",
		summary:     "WebSocket event stream",
		description: "Same events as /api/events over a WebSocket.",
		resp:        []response{{status: http.StatusSwitchingProtocols, contentType: "text/plain"}},
	},
}

type usernamePath struct {
	Username string `path:"username"`
}

type userPath struct {
	UserID string `path:"userID"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "ChatGuessr API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Round and guess reconciliation for chat-played geography games.")

	for _, op := range operations {
		oc, err := r.NewOperationContext(op.method, op.path)
		if err != nil {
			continue
		}
		oc.SetSummary(op.summary)
		if op.description != "" {
			oc.SetDescription(op.description)
		}
		if op.req != nil {
			oc.AddReqStructure(op.req)
		}
		for _, resp := range op.resp {
			opts := []openapi.ContentOption{openapi.WithHTTPStatus(resp.status)}
			if resp.contentType != "" {
				opts = append(opts, openapi.WithContentType(resp.contentType))
			}
			oc.AddRespStructure(resp.body, opts...)
		}
		_ = r.AddOperation(oc)
	}

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
