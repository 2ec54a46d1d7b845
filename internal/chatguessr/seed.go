package chatguessr

// Seed mirrors the external game API's description of a session. Only the
// fields the engine reads are decoded.
type Seed struct {
	Token          string     `json:"token"`
	Map            string     `json:"map"`
	MapName        string     `json:"mapName"`
	Mode           string     `json:"mode"`
	Round          int        `json:"round"`
	RoundCount     int        `json:"roundCount"`
	Bounds         Bounds     `json:"bounds"`
	Rounds         []Location `json:"rounds"`
	Player         SeedPlayer `json:"player"`
	State          string     `json:"state"`
	ForbidMoving   bool       `json:"forbidMoving"`
	ForbidRotating bool       `json:"forbidRotating"`
	ForbidZooming  bool       `json:"forbidZooming"`
	TimeLimit      int        `json:"timeLimit"`
}

type SeedPlayer struct {
	Guesses []SeedGuess `json:"guesses"`
}

type SeedGuess struct {
	Lat                float64 `json:"lat"`
	Lng                float64 `json:"lng"`
	TimedOut           bool    `json:"timedOut"`
	TimedOutWithGuess  bool    `json:"timedOutWithGuess"`
	RoundScoreInPoints int     `json:"roundScoreInPoints"`
	DistanceInMeters   float64 `json:"distanceInMeters"`
	Time               int     `json:"time"`
}

const SeedStateFinished = "finished"

func (s *Seed) Finished() bool {
	return s.State == SeedStateFinished
}

// LastRound returns the most recent round location, which is the round
// currently being played unless the game is finished.
func (s *Seed) LastRound() (Location, bool) {
	if len(s.Rounds) == 0 {
		return Location{}, false
	}
	return s.Rounds[len(s.Rounds)-1], true
}

// LastPlayerGuess returns the streamer's most recently committed guess.
func (s *Seed) LastPlayerGuess() (SeedGuess, bool) {
	n := len(s.Player.Guesses)
	if n == 0 {
		return SeedGuess{}, false
	}
	return s.Player.Guesses[n-1], true
}

func (s *Seed) GameMode() Mode {
	return Mode{
		NoMove: s.ForbidMoving,
		NoPan:  s.ForbidRotating,
		NoZoom: s.ForbidZooming,
	}
}
