// Package geocode resolves coordinates to the country code used for streaks.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/playperu/chatguessr/internal/chatguessr"
)

// Geocoder resolves a coordinate to a streak country code. A nil code with
// a nil error means the point is not inside any country (open water).
type Geocoder interface {
	CountryCode(ctx context.Context, p chatguessr.LatLng) (*string, error)
}

// Client calls a reverse-geocoding HTTP endpoint that answers
// GET {base}?latitude=..&longitude=.. with {"countryCode": "FR"}.
type Client struct {
	base string
	http *http.Client
}

func NewClient(base string, timeout time.Duration) *Client {
	return &Client{
		base: base,
		http: &http.Client{Timeout: timeout},
	}
}

type reverseResponse struct {
	CountryCode string `json:"countryCode"`
}

func (c *Client) CountryCode(ctx context.Context, p chatguessr.LatLng) (*string, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(p.Lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(p.Lng, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", chatguessr.ErrGeocodeUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", chatguessr.ErrGeocodeUnavailable, resp.StatusCode)
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", chatguessr.ErrGeocodeUnavailable, err)
	}

	return Fold(body.CountryCode), nil
}

// Fold maps an ISO 3166 code onto the country it counts as for streaks
// (overseas territories count as their parent). Empty input yields nil.
func Fold(code string) *string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if parent, ok := territories[code]; ok {
		code = parent
	}
	return &code
}

// territories lists dependent territories whose guesses count for the
// sovereign country.
var territories = map[string]string{
	"AX": "FI",
	"AS": "US",
	"GU": "US",
	"MP": "US",
	"PR": "US",
	"UM": "US",
	"VI": "US",
	"BL": "FR",
	"GF": "FR",
	"GP": "FR",
	"MF": "FR",
	"MQ": "FR",
	"NC": "FR",
	"PF": "FR",
	"PM": "FR",
	"RE": "FR",
	"TF": "FR",
	"WF": "FR",
	"YT": "FR",
	"AW": "NL",
	"BQ": "NL",
	"CW": "NL",
	"SX": "NL",
	"FO": "DK",
	"GL": "DK",
	"SJ": "NO",
	"BV": "NO",
	"CX": "AU",
	"CC": "AU",
	"HM": "AU",
	"NF": "AU",
	"HK": "CN",
	"MO": "CN",
	"AI": "GB",
	"BM": "GB",
	"FK": "GB",
	"GG": "GB",
	"GI": "GB",
	"GS": "GB",
	"IM": "GB",
	"IO": "GB",
	"JE": "GB",
	"KY": "GB",
	"MS": "GB",
	"PN": "GB",
	"SH": "GB",
	"TC": "GB",
	"VG": "GB",
	"CK": "NZ",
	"NU": "NZ",
	"TK": "NZ",
}
