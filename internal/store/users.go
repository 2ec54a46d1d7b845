package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/playperu/chatguessr/internal/chatguessr"
)

const userColumns = `id, channel_user_id, username, color, avatar, flag, previous_lat, previous_lng, streak, best_streak, streak_round_id`

func scanUser(row interface{ Scan(...any) error }) (chatguessr.User, error) {
	var u chatguessr.User
	var flag, streakRound sql.NullString
	var prevLat, prevLng sql.NullFloat64
	err := row.Scan(&u.ID, &u.ChannelUserID, &u.Username, &u.Color, &u.Avatar, &flag,
		&prevLat, &prevLng, &u.Streak, &u.BestStreak, &streakRound)
	if err != nil {
		return u, err
	}
	u.Flag = stringPtr(flag)
	u.StreakRoundID = stringPtr(streakRound)
	if prevLat.Valid && prevLng.Valid {
		u.PreviousGuess = &chatguessr.LatLng{Lat: prevLat.Float64, Lng: prevLng.Float64}
	}
	return u, nil
}

// GetOrCreateUser upserts the user's display fields and returns the row.
func (s *SQLiteStore) GetOrCreateUser(ctx context.Context, info chatguessr.UserInfo) (chatguessr.User, error) {
	name := info.DisplayName
	if name == "" {
		name = info.Username
	}
	color := info.Color
	if color == "" {
		color = "#FFF"
	}

	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO users (id, channel_user_id, username, color, avatar, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(channel_user_id) DO UPDATE SET
			username = excluded.username,
			color = excluded.color,
			avatar = CASE WHEN excluded.avatar = '' THEN users.avatar ELSE excluded.avatar END
	`, newID(), info.ChannelUserID, name, color, info.Avatar, nowUTC())
	if err != nil {
		return chatguessr.User{}, fmt.Errorf("upserting user: %w", err)
	}
	return s.UserByChannelID(ctx, info.ChannelUserID)
}

func (s *SQLiteStore) User(ctx context.Context, id string) (chatguessr.User, error) {
	u, err := scanUser(s.conn(ctx).QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return u, chatguessr.ErrNotFound
	}
	return u, err
}

func (s *SQLiteStore) UserByChannelID(ctx context.Context, channelUserID string) (chatguessr.User, error) {
	u, err := scanUser(s.conn(ctx).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE channel_user_id = ?`, channelUserID))
	if errors.Is(err, sql.ErrNoRows) {
		return u, chatguessr.ErrNotFound
	}
	return u, err
}

func (s *SQLiteStore) SetUserPreviousGuess(ctx context.Context, userID string, p chatguessr.LatLng) error {
	_, err := s.conn(ctx).ExecContext(ctx,
		`UPDATE users SET previous_lat = ?, previous_lng = ? WHERE id = ?`, p.Lat, p.Lng, userID)
	return err
}

func (s *SQLiteStore) SetUserFlag(ctx context.Context, userID string, flag *string) error {
	res, err := s.conn(ctx).ExecContext(ctx, `UPDATE users SET flag = ? WHERE id = ?`, nullString(flag), userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return chatguessr.ErrNotFound
	}
	return nil
}

// Streaks

// UserStreak returns the user's current streak and the location of the round
// it was last extended in. A zero streak has no location.
func (s *SQLiteStore) UserStreak(ctx context.Context, userID string) (chatguessr.Streak, error) {
	var st chatguessr.Streak
	var lat, lng sql.NullFloat64
	err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT u.streak, r.lat, r.lng
		FROM users u
		LEFT JOIN rounds r ON r.id = u.streak_round_id
		WHERE u.id = ?
	`, userID).Scan(&st.Count, &lat, &lng)
	if errors.Is(err, sql.ErrNoRows) {
		return st, chatguessr.ErrNotFound
	}
	if err != nil {
		return st, err
	}
	if st.Count > 0 && lat.Valid && lng.Valid {
		st.LastLocation = &chatguessr.LatLng{Lat: lat.Float64, Lng: lng.Float64}
	}
	return st, nil
}

// AddUserStreak extends the user's streak for roundID. Extending twice for
// the same round counts once.
func (s *SQLiteStore) AddUserStreak(ctx context.Context, userID, roundID string) error {
	_, err := s.conn(ctx).ExecContext(ctx, `
		UPDATE users SET
			streak = streak + 1,
			best_streak = MAX(best_streak, streak + 1),
			streak_round_id = ?
		WHERE id = ? AND (streak_round_id IS NULL OR streak_round_id != ?)
	`, roundID, userID, roundID)
	return err
}

// ResetUserStreak zeroes the streak and returns the value it broke, or nil
// if there was no streak to break.
func (s *SQLiteStore) ResetUserStreak(ctx context.Context, userID string) (*int, error) {
	var prev int
	err := s.InTx(ctx, func(ctx context.Context) error {
		err := s.conn(ctx).QueryRowContext(ctx, `SELECT streak FROM users WHERE id = ?`, userID).Scan(&prev)
		if errors.Is(err, sql.ErrNoRows) {
			return chatguessr.ErrNotFound
		}
		if err != nil {
			return err
		}
		_, err = s.conn(ctx).ExecContext(ctx,
			`UPDATE users SET streak = 0, streak_round_id = NULL WHERE id = ?`, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if prev == 0 {
		return nil, nil
	}
	return &prev, nil
}

// Stats

func (s *SQLiteStore) UserStats(ctx context.Context, channelUserID string) (chatguessr.UserStats, error) {
	u, err := s.UserByChannelID(ctx, channelUserID)
	if err != nil {
		return chatguessr.UserStats{}, err
	}

	st := chatguessr.UserStats{
		Player:     playerOf(u),
		Streak:     u.Streak,
		BestStreak: u.BestStreak,
	}

	var mean sql.NullFloat64
	err = s.conn(ctx).QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN g.country IS NOT NULL AND g.country = r.country THEN 1 ELSE 0 END), 0),
			AVG(g.score),
			COALESCE(SUM(CASE WHEN g.score = 5000 THEN 1 ELSE 0 END), 0)
		FROM guesses g
		JOIN rounds r ON r.id = g.round_id
		WHERE g.user_id = ?
	`, u.ID).Scan(&st.Guesses, &st.CorrectGuesses, &mean, &st.Perfects)
	if err != nil {
		return st, fmt.Errorf("aggregating guesses: %w", err)
	}
	st.MeanScore = mean.Float64

	err = s.conn(ctx).QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM guesses g
		JOIN rounds r ON r.id = g.round_id
		WHERE g.user_id = ? AND r.replaced = 0
		  AND g.score = (SELECT MAX(g2.score) FROM guesses g2 WHERE g2.round_id = g.round_id)
	`, u.ID).Scan(&st.Victories)
	if err != nil {
		return st, fmt.Errorf("counting victories: %w", err)
	}
	return st, nil
}

// ResetUserStats clears the user's guesses and streak history.
func (s *SQLiteStore) ResetUserStats(ctx context.Context, userID string) error {
	return s.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM guesses WHERE user_id = ?`, userID); err != nil {
			return err
		}
		_, err := s.conn(ctx).ExecContext(ctx, `
			UPDATE users SET streak = 0, best_streak = 0, streak_round_id = NULL,
				previous_lat = NULL, previous_lng = NULL
			WHERE id = ?
		`, userID)
		return err
	})
}

func playerOf(u chatguessr.User) chatguessr.Player {
	return chatguessr.Player{
		UserID:   u.ChannelUserID,
		Username: u.Username,
		Color:    u.Color,
		Avatar:   u.Avatar,
		Flag:     u.Flag,
	}
}
