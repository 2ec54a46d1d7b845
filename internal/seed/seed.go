// Package seed fetches the authoritative game session from the external
// game API.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/playperu/chatguessr/internal/chatguessr"
)

// Source returns the current seed for a game page URL. A nil seed with a
// nil error means the URL does not identify a resolvable game.
type Source interface {
	Fetch(ctx context.Context, gameURL string) (*chatguessr.Seed, error)
}

const gameIDLength = 16

// IsGameURL reports whether url is an in-game page.
func IsGameURL(url string) bool {
	return strings.Contains(url, "/game/")
}

// GameID extracts the game token from the last path segment of url.
func GameID(url string) (string, bool) {
	url, _, _ = strings.Cut(url, "?")
	id := url[strings.LastIndex(url, "/")+1:]
	if len(id) != gameIDLength {
		return "", false
	}
	return id, true
}

type Client struct {
	base   string
	cookie string
	http   *http.Client
}

// NewClient builds a Source for the game API at base. cookie is the value of
// the player's _ncfa session cookie.
func NewClient(base, cookie string, timeout time.Duration) *Client {
	return &Client{
		base:   strings.TrimRight(base, "/"),
		cookie: cookie,
		http:   &http.Client{Timeout: timeout},
	}
}

func (c *Client) Fetch(ctx context.Context, gameURL string) (*chatguessr.Seed, error) {
	id, ok := GameID(gameURL)
	if !ok || c.cookie == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/v3/games/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.AddCookie(&http.Cookie{Name: "_ncfa", Value: c.cookie})
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching seed %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching seed %s: status %d", id, resp.StatusCode)
	}

	var s chatguessr.Seed
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decoding seed %s: %w", id, err)
	}
	return &s, nil
}
