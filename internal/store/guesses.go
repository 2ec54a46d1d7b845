package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/playperu/chatguessr/internal/chatguessr"
)

const guessColumns = `g.id, g.round_id, g.user_id, g.lat, g.lng, g.country, g.streak, g.last_streak, g.distance, g.score, g.created_at, g.updated_at`

func scanGuess(row interface{ Scan(...any) error }) (chatguessr.Guess, error) {
	var g chatguessr.Guess
	var country sql.NullString
	var lastStreak sql.NullInt64
	var createdAt, updatedAt string
	err := row.Scan(&g.ID, &g.RoundID, &g.UserID, &g.Location.Lat, &g.Location.Lng, &country,
		&g.Streak, &lastStreak, &g.Distance, &g.Score, &createdAt, &updatedAt)
	if err != nil {
		return g, err
	}
	g.Country = stringPtr(country)
	g.LastStreak = intPtr(lastStreak)
	g.CreatedAt = parseTime(createdAt)
	g.UpdatedAt = parseTime(updatedAt)
	return g, nil
}

// UserGuess returns the user's guess for a round, or ErrNotFound.
func (s *SQLiteStore) UserGuess(ctx context.Context, roundID, userID string) (chatguessr.Guess, error) {
	g, err := scanGuess(s.conn(ctx).QueryRowContext(ctx, `
		SELECT `+guessColumns+` FROM guesses g WHERE g.round_id = ? AND g.user_id = ?
	`, roundID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return g, chatguessr.ErrNotFound
	}
	return g, err
}

func (s *SQLiteStore) CreateGuess(ctx context.Context, roundID, userID string, in chatguessr.GuessInput) (string, error) {
	id := newID()
	now := nowUTC()
	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO guesses (id, round_id, user_id, lat, lng, country, streak, last_streak, distance, score, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, roundID, userID, in.Location.Lat, in.Location.Lng, nullString(in.Country),
		in.Streak, nullInt(in.LastStreak), in.Distance, in.Score, now, now)
	if err != nil {
		return "", fmt.Errorf("inserting guess: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) UpdateGuess(ctx context.Context, guessID string, in chatguessr.GuessInput) error {
	res, err := s.conn(ctx).ExecContext(ctx, `
		UPDATE guesses SET lat = ?, lng = ?, country = ?, streak = ?, last_streak = ?,
			distance = ?, score = ?, updated_at = ?
		WHERE id = ?
	`, in.Location.Lat, in.Location.Lng, nullString(in.Country), in.Streak, nullInt(in.LastStreak),
		in.Distance, in.Score, nowUTC(), guessID)
	if err != nil {
		return fmt.Errorf("updating guess: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return chatguessr.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) SetGuessCountry(ctx context.Context, guessID string, country *string) error {
	_, err := s.conn(ctx).ExecContext(ctx, `UPDATE guesses SET country = ? WHERE id = ?`, nullString(country), guessID)
	return err
}

func (s *SQLiteStore) SetGuessStreak(ctx context.Context, guessID string, streak int, lastStreak *int) error {
	_, err := s.conn(ctx).ExecContext(ctx,
		`UPDATE guesses SET streak = ?, last_streak = ? WHERE id = ?`, streak, nullInt(lastStreak), guessID)
	return err
}

// RoundGuesses lists a round's guesses in submission order.
func (s *SQLiteStore) RoundGuesses(ctx context.Context, roundID string) ([]chatguessr.Guess, error) {
	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT `+guessColumns+` FROM guesses g WHERE g.round_id = ? ORDER BY g.rowid`, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var guesses []chatguessr.Guess
	for rows.Next() {
		g, err := scanGuess(rows)
		if err != nil {
			return nil, err
		}
		guesses = append(guesses, g)
	}
	return guesses, rows.Err()
}

// RoundParticipants lists who guessed in a round, first guess first.
func (s *SQLiteStore) RoundParticipants(ctx context.Context, roundID string) ([]chatguessr.Player, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT u.channel_user_id, u.username, u.color, u.avatar, u.flag
		FROM guesses g
		JOIN users u ON u.id = g.user_id
		WHERE g.round_id = ?
		ORDER BY g.rowid
	`, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []chatguessr.Player
	for rows.Next() {
		var p chatguessr.Player
		var flag sql.NullString
		if err := rows.Scan(&p.UserID, &p.Username, &p.Color, &p.Avatar, &flag); err != nil {
			return nil, err
		}
		p.Flag = stringPtr(flag)
		players = append(players, p)
	}
	return players, rows.Err()
}

// RoundResults returns the round's scoreboard, closest guess first.
func (s *SQLiteStore) RoundResults(ctx context.Context, roundID string) ([]chatguessr.RoundResult, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT g.id, u.channel_user_id, u.username, u.color, u.avatar, u.flag,
			g.lat, g.lng, g.country, g.streak, g.last_streak, g.distance, g.score, g.created_at
		FROM guesses g
		JOIN users u ON u.id = g.user_id
		WHERE g.round_id = ?
		ORDER BY g.distance ASC, g.rowid ASC
	`, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []chatguessr.RoundResult
	for rows.Next() {
		var r chatguessr.RoundResult
		var flag, country sql.NullString
		var lastStreak sql.NullInt64
		var createdAt string
		if err := rows.Scan(&r.GuessID, &r.Player.UserID, &r.Player.Username, &r.Player.Color, &r.Player.Avatar, &flag,
			&r.Position.Lat, &r.Position.Lng, &country, &r.Streak, &lastStreak, &r.Distance, &r.Score, &createdAt); err != nil {
			return nil, err
		}
		r.Player.Flag = stringPtr(flag)
		r.Country = stringPtr(country)
		r.LastStreak = intPtr(lastStreak)
		r.Time = parseTime(createdAt)
		results = append(results, r)
	}
	return results, rows.Err()
}

// GameResults totals every player's guesses over the game's live rounds,
// highest total score first.
func (s *SQLiteStore) GameResults(ctx context.Context, gameID string) ([]chatguessr.GameResult, error) {
	var rounds int
	if err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT COALESCE(MAX(round_number), 0) FROM rounds WHERE game_id = ? AND replaced = 0
	`, gameID).Scan(&rounds); err != nil {
		return nil, err
	}

	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT u.id, u.channel_user_id, u.username, u.color, u.avatar, u.flag, u.streak,
			r.round_number, g.lat, g.lng, g.distance, g.score
		FROM guesses g
		JOIN rounds r ON r.id = g.round_id
		JOIN users u ON u.id = g.user_id
		WHERE r.game_id = ? AND r.replaced = 0
		ORDER BY g.rowid
	`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byUser := make(map[string]*chatguessr.GameResult)
	var order []string
	for rows.Next() {
		var userID string
		var p chatguessr.Player
		var flag sql.NullString
		var streak, roundNumber, score int
		var pos chatguessr.LatLng
		var distance float64
		if err := rows.Scan(&userID, &p.UserID, &p.Username, &p.Color, &p.Avatar, &flag, &streak,
			&roundNumber, &pos.Lat, &pos.Lng, &distance, &score); err != nil {
			return nil, err
		}
		p.Flag = stringPtr(flag)

		res, ok := byUser[userID]
		if !ok {
			res = &chatguessr.GameResult{
				Player:    p,
				Streak:    streak,
				Guesses:   make([]*chatguessr.LatLng, rounds),
				Scores:    make([]*int, rounds),
				Distances: make([]*float64, rounds),
			}
			byUser[userID] = res
			order = append(order, userID)
		}
		i := roundNumber - 1
		if i < 0 || i >= rounds {
			continue
		}
		res.Guesses[i] = &pos
		res.Scores[i] = &score
		res.Distances[i] = &distance
		res.TotalScore += score
		res.TotalDistance += distance
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	results := make([]chatguessr.GameResult, 0, len(order))
	for _, id := range order {
		results = append(results, *byUser[id])
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].TotalScore != results[j].TotalScore {
			return results[i].TotalScore > results[j].TotalScore
		}
		return results[i].TotalDistance < results[j].TotalDistance
	})
	return results, nil
}
