// Package chatguessr defines the core domain types and sentinel errors.
// It has no external dependencies.
package chatguessr

import "time"

// BroadcasterID is the channel user id reserved for the streamer.
const BroadcasterID = "BROADCASTER"

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Location is a round's true location as the game renders it.
type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	PanoID  *string `json:"panoId"`
	Heading float64 `json:"heading"`
	Pitch   float64 `json:"pitch"`
	Zoom    float64 `json:"zoom"`
}

func (l Location) LatLng() LatLng {
	return LatLng{Lat: l.Lat, Lng: l.Lng}
}

type Bounds struct {
	Min LatLng `json:"min"`
	Max LatLng `json:"max"`
}

type GameStatus string

const (
	GameStatusActive   GameStatus = "active"
	GameStatusFinished GameStatus = "finished"
)

type Mode struct {
	NoMove bool `json:"noMove"`
	NoPan  bool `json:"noPan"`
	NoZoom bool `json:"noZoom"`
}

type Game struct {
	ID         string
	MapID      string
	MapName    string
	Mode       Mode
	RoundCount int
	Bounds     Bounds
	Status     GameStatus
	CreatedAt  time.Time
}

type Round struct {
	ID        string
	GameID    string
	Index     int
	Location  Location
	Country   *string
	Replaced  bool
	CreatedAt time.Time
}

// UserInfo is the identity a transport attaches to an incoming guess.
type UserInfo struct {
	ChannelUserID string `json:"userId"`
	Username      string `json:"username"`
	DisplayName   string `json:"displayName"`
	Color         string `json:"color"`
	Avatar        string `json:"avatar"`
}

type User struct {
	ID            string
	ChannelUserID string
	Username      string
	Color         string
	Avatar        string
	Flag          *string
	PreviousGuess *LatLng
	Streak        int
	BestStreak    int
	StreakRoundID *string
}

type Streak struct {
	Count int
	// LastLocation is the location of the round in which the streak was
	// last extended.
	LastLocation *LatLng
}

// GuessInput carries the computed fields written for a new or updated guess.
type GuessInput struct {
	Location   LatLng
	Country    *string
	Streak     int
	LastStreak *int
	Distance   float64
	Score      int
}

type Guess struct {
	ID         string
	RoundID    string
	UserID     string
	Location   LatLng
	Country    *string
	Streak     int
	LastStreak *int
	Distance   float64
	Score      int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Player struct {
	UserID   string  `json:"userId"`
	Username string  `json:"username"`
	Color    string  `json:"color"`
	Avatar   string  `json:"avatar"`
	Flag     *string `json:"flag"`
}

// RoundResult is one row of a round's scoreboard.
type RoundResult struct {
	GuessID    string    `json:"id"`
	Player     Player    `json:"player"`
	Position   LatLng    `json:"position"`
	Country    *string   `json:"country"`
	Streak     int       `json:"streak"`
	LastStreak *int      `json:"lastStreak"`
	Distance   float64   `json:"distance"`
	Score      int       `json:"score"`
	Time       time.Time `json:"time"`
}

// GameResult aggregates a player's guesses across the rounds of a game.
// Per-round slices are aligned on round ordinals; nil marks a missed round.
type GameResult struct {
	Player        Player     `json:"player"`
	Streak        int        `json:"streak"`
	Guesses       []*LatLng  `json:"guesses"`
	Scores        []*int     `json:"scores"`
	Distances     []*float64 `json:"distances"`
	TotalScore    int        `json:"totalScore"`
	TotalDistance float64    `json:"totalDistance"`
}

type UserStats struct {
	Player         Player  `json:"player"`
	Streak         int     `json:"streak"`
	BestStreak     int     `json:"bestStreak"`
	Guesses        int     `json:"guesses"`
	CorrectGuesses int     `json:"correctGuesses"`
	MeanScore      float64 `json:"meanScore"`
	Victories      int     `json:"victories"`
	Perfects       int     `json:"perfects"`
}
