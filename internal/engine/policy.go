package engine

import (
	"github.com/playperu/chatguessr/internal/chatguessr"
	"github.com/playperu/chatguessr/internal/geo"
)

// Outcome is how the guess policy disposed of a submission. Rejections are
// ordinary outcomes, not failures.
type Outcome int

const (
	OutcomeAccepted Outcome = iota
	// OutcomeModified is an accepted resubmission in multi-guess mode.
	OutcomeModified
	// OutcomeIgnored means guesses were closed; nothing was recorded.
	OutcomeIgnored
	OutcomeAlreadyGuessed
	OutcomeDuplicateSubmission
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeModified:
		return "modified"
	case OutcomeIgnored:
		return "ignored"
	case OutcomeAlreadyGuessed:
		return "already_guessed"
	case OutcomeDuplicateSubmission:
		return "duplicate_submission"
	default:
		return "unknown"
	}
}

// Recorded reports whether the guess was written.
func (o Outcome) Recorded() bool {
	return o == OutcomeAccepted || o == OutcomeModified
}

// Err maps rejections onto their sentinel errors for callers that prefer
// errors.Is. Accepted and ignored outcomes return nil.
func (o Outcome) Err() error {
	switch o {
	case OutcomeAlreadyGuessed:
		return chatguessr.ErrAlreadyGuessed
	case OutcomeDuplicateSubmission:
		return chatguessr.ErrDuplicateSubmission
	default:
		return nil
	}
}

// GuessResult is returned by HandleUserGuess. Guess is only set when the
// outcome was recorded.
type GuessResult struct {
	Outcome Outcome
	Guess   *chatguessr.RoundResult
}

// decide runs the acceptance checks in order: gate, single-guess repeat,
// exact resubmission.
func decide(open, guessed, multi bool, previous *chatguessr.LatLng, submitted chatguessr.LatLng) Outcome {
	if !open {
		return OutcomeIgnored
	}
	if guessed && !multi {
		return OutcomeAlreadyGuessed
	}
	if previous != nil && geo.Equal(*previous, submitted) {
		return OutcomeDuplicateSubmission
	}
	if guessed {
		return OutcomeModified
	}
	return OutcomeAccepted
}
