package engine

import (
	"testing"

	"github.com/playperu/chatguessr/internal/chatguessr"
)

func TestDecide(t *testing.T) {
	here := chatguessr.LatLng{Lat: 10, Lng: 20}
	there := chatguessr.LatLng{Lat: 10, Lng: 20.0001}

	tests := []struct {
		name     string
		open     bool
		guessed  bool
		multi    bool
		previous *chatguessr.LatLng
		want     Outcome
	}{
		{"closed", false, false, false, nil, OutcomeIgnored},
		{"closed beats already guessed", false, true, false, nil, OutcomeIgnored},
		{"first guess", true, false, false, nil, OutcomeAccepted},
		{"single mode repeat", true, true, false, &there, OutcomeAlreadyGuessed},
		{"single mode repeat of same spot", true, true, false, &here, OutcomeAlreadyGuessed},
		{"exact resubmission", true, false, false, &here, OutcomeDuplicateSubmission},
		{"multi mode exact resubmission", true, true, true, &here, OutcomeDuplicateSubmission},
		{"multi mode move", true, true, true, &there, OutcomeModified},
		{"nearby is not a duplicate", true, false, true, &there, OutcomeAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decide(tt.open, tt.guessed, tt.multi, tt.previous, here); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestOutcomeErr(t *testing.T) {
	for _, o := range []Outcome{OutcomeAccepted, OutcomeModified, OutcomeIgnored} {
		if o.Err() != nil {
			t.Errorf("%s: expected nil error, got %v", o, o.Err())
		}
	}
	if OutcomeAlreadyGuessed.Err() != chatguessr.ErrAlreadyGuessed {
		t.Error("expected ErrAlreadyGuessed")
	}
	if OutcomeDuplicateSubmission.Err() != chatguessr.ErrDuplicateSubmission {
		t.Error("expected ErrDuplicateSubmission")
	}
}
