package engine

import (
	"github.com/playperu/chatguessr/internal/chatguessr"
	"github.com/playperu/chatguessr/internal/geo"
)

// RefreshKind is what a freshly fetched seed says happened since the last
// one the engine acted on.
type RefreshKind int

const (
	Unchanged RefreshKind = iota
	// GuessCommitted means the streamer locked in a guess: the round is over.
	GuessCommitted
	// LocationChanged means the current round was skipped or reloaded with
	// a new location, without a streamer guess.
	LocationChanged
)

func (k RefreshKind) String() string {
	switch k {
	case GuessCommitted:
		return "guess_committed"
	case LocationChanged:
		return "location_changed"
	default:
		return "unchanged"
	}
}

// Classify infers why the seed changed from the shape of the change.
// current is the location of the round the engine is tracking.
func Classify(prev, next *chatguessr.Seed, current chatguessr.Location) RefreshKind {
	if len(next.Player.Guesses) > len(prev.Player.Guesses) {
		return GuessCommitted
	}
	loc, ok := next.LastRound()
	if ok && !geo.Equal(loc.LatLng(), current.LatLng()) {
		return LocationChanged
	}
	return Unchanged
}
