package chatguessr

type EventType string

const (
	EventGameStarted       EventType = "game_started"
	EventGameLeft          EventType = "game_left"
	EventGameFinished      EventType = "game_finished"
	EventGuessesOpen       EventType = "guesses_open"
	EventGuessesClosed     EventType = "guesses_closed"
	EventRoundStarted      EventType = "round_started"
	EventRoundReplaced     EventType = "round_replaced"
	EventRoundResults      EventType = "round_results"
	EventGuess             EventType = "guess"
	EventRelayConnected    EventType = "relay_connected"
	EventRelayDisconnected EventType = "relay_disconnected"
)

// Event is published to observers (overlay, SSE, websocket) whenever the
// session changes state.
type Event struct {
	Type     EventType     `json:"type"`
	Round    int           `json:"round,omitempty"`
	Location *Location     `json:"location,omitempty"`
	Player   *Player       `json:"player,omitempty"`
	Modified bool          `json:"modified,omitempty"`
	Multi    bool          `json:"multi,omitempty"`
	Results  []RoundResult `json:"results,omitempty"`
}
