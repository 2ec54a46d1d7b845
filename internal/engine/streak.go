package engine

import (
	"context"
	"fmt"

	"github.com/playperu/chatguessr/internal/chatguessr"
	"github.com/playperu/chatguessr/internal/geo"
)

// sameCountry is true only when both codes are known and equal. An
// unresolved country never matches.
func sameCountry(a, b *string) bool {
	return a != nil && b != nil && *a == *b
}

// skipped reports whether a streak was last extended somewhere other than
// the last round the session closed, i.e. its owner sat a round out.
func skipped(st chatguessr.Streak, lastLocation *chatguessr.LatLng) bool {
	if st.Count == 0 || lastLocation == nil {
		return false
	}
	return st.LastLocation == nil || !geo.Equal(*st.LastLocation, *lastLocation)
}

// applySkipReset zeroes the user's streak if they missed the previous round.
func applySkipReset(ctx context.Context, store Store, userID string, lastLocation *chatguessr.LatLng) error {
	st, err := store.UserStreak(ctx, userID)
	if err != nil {
		return fmt.Errorf("reading streak: %w", err)
	}
	if !skipped(st, lastLocation) {
		return nil
	}
	if _, err := store.ResetUserStreak(ctx, userID); err != nil {
		return fmt.Errorf("resetting skipped streak: %w", err)
	}
	return nil
}

// applyStreak extends the streak on a match and resets it on a miss. The
// broken streak is returned on a miss, nil otherwise.
func applyStreak(ctx context.Context, store Store, userID, roundID string, correct bool) (*int, error) {
	if correct {
		if err := store.AddUserStreak(ctx, userID, roundID); err != nil {
			return nil, fmt.Errorf("extending streak: %w", err)
		}
		return nil, nil
	}
	last, err := store.ResetUserStreak(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resetting streak: %w", err)
	}
	return last, nil
}

func currentStreak(ctx context.Context, store Store, userID string) (int, error) {
	st, err := store.UserStreak(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("reading streak: %w", err)
	}
	return st.Count, nil
}
