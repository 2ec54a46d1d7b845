package chatguessr

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrSeedUnavailable is returned when the external game session could not
	// be fetched. Local state is left untouched.
	ErrSeedUnavailable = errors.New("seed unavailable")

	ErrAlreadyGuessed      = errors.New("user already guessed")
	ErrDuplicateSubmission = errors.New("same guess submitted twice")

	ErrGeocodeUnavailable = errors.New("geocode unavailable")

	// ErrGameExists reports a second insert of the same game token, which
	// happens when an interrupted session is resumed.
	ErrGameExists = errors.New("game already exists")

	ErrNoActiveRound = errors.New("no active round")
)
