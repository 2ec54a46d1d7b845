// Package geo holds the distance and scoring math shared by every guess.
package geo

import (
	"math"
	"math/rand/v2"
	"regexp"
	"strconv"

	"github.com/playperu/chatguessr/internal/chatguessr"
)

const (
	earthRadiusKm = 6371.071

	// scaleDivisor calibrates map scale so the score curve behaves the same
	// on a city map as on a world map.
	scaleDivisor = 7.458421

	scoreBase        = 0.99866017
	maxScore         = 5000
	perfectThreshold = 25 // meters
)

// Distance returns the great-circle distance in kilometers.
func Distance(a, b chatguessr.LatLng) float64 {
	rlat1 := a.Lat * (math.Pi / 180)
	rlat2 := b.Lat * (math.Pi / 180)
	difflat := rlat2 - rlat1
	difflon := (b.Lng - a.Lng) * (math.Pi / 180)

	h := math.Sin(difflat/2)*math.Sin(difflat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(difflon/2)*math.Sin(difflon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// MapScale normalizes scores against the size of the map being played.
func MapScale(b chatguessr.Bounds) float64 {
	return Distance(b.Min, b.Max) / scaleDivisor
}

// Score maps a distance onto 0..5000. Guesses closer than 25 m are perfect.
func Score(distanceKm, scale float64) int {
	meters := distanceKm * 1000
	if meters < perfectThreshold {
		return maxScore
	}
	// floor(x+0.5) keeps half-up rounding identical to the game's client.
	return int(math.Floor(maxScore*math.Pow(scoreBase, meters/scale) + 0.5))
}

// Equal compares coordinates exactly. Resubmission and skip detection rely
// on bit equality, so no tolerance is applied.
func Equal(a, b chatguessr.LatLng) bool {
	return a.Lat == b.Lat && a.Lng == b.Lng
}

// Valid reports whether p is a real coordinate.
func Valid(p chatguessr.LatLng) bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

var coordinatesRe = regexp.MustCompile(
	`^(?P<lat>[-+]?(?:[1-8]?\d(?:\.\d+)?|90(?:\.0+)?)),\s*(?P<lng>[-+]?(?:180(?:\.0+)?|(?:(?:1[0-7]\d)|(?:[1-9]?\d))(?:\.\d+)?))$`,
)

// ParseCoordinates reads "lat, lng" as typed in chat.
func ParseCoordinates(s string) (chatguessr.LatLng, bool) {
	m := coordinatesRe.FindStringSubmatch(s)
	if m == nil {
		return chatguessr.LatLng{}, false
	}
	lat, err := strconv.ParseFloat(m[coordinatesRe.SubexpIndex("lat")], 64)
	if err != nil {
		return chatguessr.LatLng{}, false
	}
	lng, err := strconv.ParseFloat(m[coordinatesRe.SubexpIndex("lng")], 64)
	if err != nil {
		return chatguessr.LatLng{}, false
	}
	return chatguessr.LatLng{Lat: lat, Lng: lng}, true
}

// RandomInBounds picks a uniform point inside b, or inside the inhabited
// world (no Antarctica) when b is nil.
func RandomInBounds(r *rand.Rand, b *chatguessr.Bounds) chatguessr.LatLng {
	north, south, west, east := 85.0, -60.0, -180.0, 180.0
	if b != nil {
		north = b.Max.Lat
		south = math.Max(b.Min.Lat, south)
		east = b.Max.Lng
		west = b.Min.Lng
	}
	return chatguessr.LatLng{
		Lat: r.Float64()*(north-south) + south,
		Lng: r.Float64()*(east-west) + west,
	}
}
