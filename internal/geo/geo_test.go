package geo

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/playperu/chatguessr/internal/chatguessr"
)

var (
	paris   = chatguessr.LatLng{Lat: 48.8566, Lng: 2.3522}
	lima    = chatguessr.LatLng{Lat: -12.0464, Lng: -77.0428}
	sydney  = chatguessr.LatLng{Lat: -33.8688, Lng: 151.2093}
	origin  = chatguessr.LatLng{}
	northPt = chatguessr.LatLng{Lat: 90, Lng: 0}
)

func TestDistanceZero(t *testing.T) {
	for _, p := range []chatguessr.LatLng{paris, lima, sydney, origin, northPt} {
		if d := Distance(p, p); d != 0 {
			t.Errorf("Distance(%v, %v) = %v, want 0", p, p, d)
		}
	}
}

func TestDistanceSymmetric(t *testing.T) {
	pts := []chatguessr.LatLng{paris, lima, sydney, origin, northPt}
	for _, a := range pts {
		for _, b := range pts {
			if Distance(a, b) != Distance(b, a) {
				t.Errorf("Distance not symmetric for %v, %v", a, b)
			}
		}
	}
}

func TestDistanceKnown(t *testing.T) {
	// Paris to Lima is roughly 10,250 km.
	d := Distance(paris, lima)
	if d < 10200 || d > 10300 {
		t.Fatalf("Distance(paris, lima) = %v, want ~10250", d)
	}
}

func TestMapScale(t *testing.T) {
	b := chatguessr.Bounds{Min: chatguessr.LatLng{Lat: -60, Lng: -180}, Max: chatguessr.LatLng{Lat: 85, Lng: 180}}
	want := Distance(b.Min, b.Max) / 7.458421
	if got := MapScale(b); got != want {
		t.Fatalf("MapScale = %v, want %v", got, want)
	}
}

func TestScorePerfect(t *testing.T) {
	for _, scale := range []float64{1, 500, 2161.77} {
		if got := Score(0, scale); got != 5000 {
			t.Errorf("Score(0, %v) = %d, want 5000", scale, got)
		}
		if got := Score(0.024, scale); got != 5000 {
			t.Errorf("Score(0.024, %v) = %d, want 5000", scale, got)
		}
	}
}

func TestScoreMonotonicAndBounded(t *testing.T) {
	for _, scale := range []float64{10, 500, 2161.77} {
		prev := math.MaxInt
		for d := 0.0; d < 25000; d += 7.3 {
			s := Score(d, scale)
			if s < 0 || s > 5000 {
				t.Fatalf("Score(%v, %v) = %d out of range", d, scale, s)
			}
			if s > prev {
				t.Fatalf("Score(%v, %v) = %d increased from %d", d, scale, s, prev)
			}
			prev = s
		}
	}
}

func TestScoreParisFixture(t *testing.T) {
	guess := chatguessr.LatLng{Lat: 48.85, Lng: 2.35}
	d := Distance(paris, guess)
	if d < 0.75 || d > 0.76 {
		t.Fatalf("distance = %v, want ~0.751 km", d)
	}

	want := int(math.Floor(5000*math.Pow(0.99866017, d*1000/500) + 0.5))
	if got := Score(d, 500); got != want {
		t.Fatalf("Score = %d, want %d", got, want)
	}
	if want != 4990 {
		t.Fatalf("fixture score = %d, want 4990", want)
	}
}

func TestEqual(t *testing.T) {
	if !Equal(paris, chatguessr.LatLng{Lat: 48.8566, Lng: 2.3522}) {
		t.Error("identical coordinates should be equal")
	}
	if Equal(paris, chatguessr.LatLng{Lat: 48.8566, Lng: 2.35220000001}) {
		t.Error("Equal must not apply a tolerance")
	}
}

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		in     string
		want   chatguessr.LatLng
		wantOK bool
	}{
		{"48.8566, 2.3522", chatguessr.LatLng{Lat: 48.8566, Lng: 2.3522}, true},
		{"-12.04,-77.04", chatguessr.LatLng{Lat: -12.04, Lng: -77.04}, true},
		{"+90.0, 180", chatguessr.LatLng{Lat: 90, Lng: 180}, true},
		{"91, 10", chatguessr.LatLng{}, false},
		{"10, 181", chatguessr.LatLng{}, false},
		{"paris", chatguessr.LatLng{}, false},
		{"10 20", chatguessr.LatLng{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseCoordinates(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRandomInBounds(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	b := &chatguessr.Bounds{Min: chatguessr.LatLng{Lat: 40, Lng: -5}, Max: chatguessr.LatLng{Lat: 50, Lng: 8}}
	for i := 0; i < 200; i++ {
		p := RandomInBounds(r, b)
		if p.Lat < 40 || p.Lat > 50 || p.Lng < -5 || p.Lng > 8 {
			t.Fatalf("point %v outside bounds", p)
		}
	}
	for i := 0; i < 200; i++ {
		p := RandomInBounds(r, nil)
		if p.Lat < -60 || p.Lat > 85 {
			t.Fatalf("point %v outside default latitude band", p)
		}
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		p    chatguessr.LatLng
		want bool
	}{
		{chatguessr.LatLng{Lat: 0, Lng: 0}, true},
		{chatguessr.LatLng{Lat: 90, Lng: -180}, true},
		{chatguessr.LatLng{Lat: 90.5, Lng: 0}, false},
		{chatguessr.LatLng{Lat: 0, Lng: 181}, false},
	}
	for _, tt := range tests {
		if got := Valid(tt.p); got != tt.want {
			t.Errorf("Valid(%+v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}
