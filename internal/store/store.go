// Package store persists games, rounds, users, guesses and streaks in
// SQLite. It is the system of record; the engine only caches pointers into it.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/playperu/chatguessr/internal/chatguessr"
)

const timeLayout = "2006-01-02T15:04:05.000Z"

type SQLiteStore struct {
	db *sql.DB
}

// New wraps a migrated database.
func New(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func newID() string {
	return uuid.NewString()
}

func nowUTC() string {
	return time.Now().UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func intPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	i := int(ni.Int64)
	return &i
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Games

func (s *SQLiteStore) CreateGame(ctx context.Context, seed *chatguessr.Seed) error {
	bounds, err := json.Marshal(seed.Bounds)
	if err != nil {
		return err
	}
	res, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO games (id, map_id, map_name, no_move, no_pan, no_zoom, round_count, bounds, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'active', ?)
		ON CONFLICT(id) DO NOTHING
	`, seed.Token, seed.Map, seed.MapName,
		boolInt(seed.ForbidMoving), boolInt(seed.ForbidRotating), boolInt(seed.ForbidZooming),
		seed.RoundCount, string(bounds), nowUTC())
	if err != nil {
		return fmt.Errorf("inserting game: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return chatguessr.ErrGameExists
	}
	return nil
}

func (s *SQLiteStore) Game(ctx context.Context, id string) (chatguessr.Game, error) {
	var g chatguessr.Game
	var noMove, noPan, noZoom int
	var bounds, status, createdAt string
	err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT id, map_id, map_name, no_move, no_pan, no_zoom, round_count, bounds, status, created_at
		FROM games WHERE id = ?
	`, id).Scan(&g.ID, &g.MapID, &g.MapName, &noMove, &noPan, &noZoom, &g.RoundCount, &bounds, &status, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return g, chatguessr.ErrNotFound
	}
	if err != nil {
		return g, err
	}
	if err := json.Unmarshal([]byte(bounds), &g.Bounds); err != nil {
		return g, fmt.Errorf("decoding bounds: %w", err)
	}
	g.Mode = chatguessr.Mode{NoMove: noMove == 1, NoPan: noPan == 1, NoZoom: noZoom == 1}
	g.Status = chatguessr.GameStatus(status)
	g.CreatedAt = parseTime(createdAt)
	return g, nil
}

// FinishGame marks the game finished. Finishing twice is a no-op.
func (s *SQLiteStore) FinishGame(ctx context.Context, gameID string) error {
	res, err := s.conn(ctx).ExecContext(ctx, `UPDATE games SET status = 'finished' WHERE id = ?`, gameID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return chatguessr.ErrNotFound
	}
	return nil
}

// Rounds

func (s *SQLiteStore) CreateRound(ctx context.Context, gameID string, index int, loc chatguessr.Location) (string, error) {
	return insertRound(ctx, s.conn(ctx), gameID, index, loc)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertRound(ctx context.Context, db execer, gameID string, index int, loc chatguessr.Location) (string, error) {
	id := newID()
	_, err := db.ExecContext(ctx, `
		INSERT INTO rounds (id, game_id, round_number, lat, lng, pano_id, heading, pitch, zoom, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, gameID, index, loc.Lat, loc.Lng, nullString(loc.PanoID), loc.Heading, loc.Pitch, loc.Zoom, nowUTC())
	if err != nil {
		return "", fmt.Errorf("inserting round: %w", err)
	}
	return id, nil
}

// ReplaceRound retires every round at the given ordinal and inserts a new
// one in its place. Guesses stay attached to the retired rows.
func (s *SQLiteStore) ReplaceRound(ctx context.Context, gameID string, index int, loc chatguessr.Location) (string, error) {
	var id string
	err := s.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.conn(ctx).ExecContext(ctx, `
			UPDATE rounds SET replaced = 1 WHERE game_id = ? AND round_number = ?
		`, gameID, index); err != nil {
			return fmt.Errorf("retiring round: %w", err)
		}

		var err error
		id, err = insertRound(ctx, s.conn(ctx), gameID, index, loc)
		return err
	})
	return id, err
}

const roundColumns = `id, game_id, round_number, lat, lng, pano_id, heading, pitch, zoom, country, replaced, created_at`

func scanRound(row interface{ Scan(...any) error }) (chatguessr.Round, error) {
	var r chatguessr.Round
	var pano, country sql.NullString
	var replaced int
	var createdAt string
	err := row.Scan(&r.ID, &r.GameID, &r.Index,
		&r.Location.Lat, &r.Location.Lng, &pano, &r.Location.Heading, &r.Location.Pitch, &r.Location.Zoom,
		&country, &replaced, &createdAt)
	if err != nil {
		return r, err
	}
	r.Location.PanoID = stringPtr(pano)
	r.Country = stringPtr(country)
	r.Replaced = replaced == 1
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}

func (s *SQLiteStore) Round(ctx context.Context, id string) (chatguessr.Round, error) {
	r, err := scanRound(s.conn(ctx).QueryRowContext(ctx,
		`SELECT `+roundColumns+` FROM rounds WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return r, chatguessr.ErrNotFound
	}
	return r, err
}

// CurrentRound returns the most recently created live round of a game.
func (s *SQLiteStore) CurrentRound(ctx context.Context, gameID string) (chatguessr.Round, error) {
	r, err := scanRound(s.conn(ctx).QueryRowContext(ctx, `
		SELECT `+roundColumns+` FROM rounds
		WHERE game_id = ? AND replaced = 0
		ORDER BY rowid DESC LIMIT 1
	`, gameID))
	if errors.Is(err, sql.ErrNoRows) {
		return r, chatguessr.ErrNotFound
	}
	return r, err
}

func (s *SQLiteStore) SetRoundCountry(ctx context.Context, roundID string, country *string) error {
	_, err := s.conn(ctx).ExecContext(ctx, `UPDATE rounds SET country = ? WHERE id = ?`, nullString(country), roundID)
	return err
}

// LastRoundLocation returns the location of the latest round the streamer
// has guessed on, i.e. the last round that was closed.
func (s *SQLiteStore) LastRoundLocation(ctx context.Context) (*chatguessr.LatLng, error) {
	var p chatguessr.LatLng
	err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT r.lat, r.lng
		FROM rounds r
		JOIN guesses g ON g.round_id = r.id
		JOIN users u ON u.id = g.user_id
		WHERE u.channel_user_id = ?
		ORDER BY r.rowid DESC LIMIT 1
	`, chatguessr.BroadcasterID).Scan(&p.Lat, &p.Lng)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Banned users

func (s *SQLiteStore) BannedUsers(ctx context.Context) ([]string, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `SELECT username FROM banned_users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *SQLiteStore) IsBanned(ctx context.Context, username string) (bool, error) {
	var n int
	err := s.conn(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM banned_users WHERE username = ? COLLATE NOCASE`, username,
	).Scan(&n)
	return n > 0, err
}

func (s *SQLiteStore) AddBannedUser(ctx context.Context, username string) error {
	_, err := s.conn(ctx).ExecContext(ctx,
		`INSERT INTO banned_users (username) VALUES (?) ON CONFLICT(username) DO NOTHING`, username)
	return err
}

func (s *SQLiteStore) DeleteBannedUser(ctx context.Context, username string) error {
	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM banned_users WHERE username = ?`, username)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return chatguessr.ErrNotFound
	}
	return nil
}
