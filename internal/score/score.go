package score

// Round outcome reported by a client.
type Status string

const (
	StatusWin     = Status("Win")
	StatusFold    = Status("Fold")
	StatusForfeit = Status("Forfeit")
)

// Mode selects the ranking metric for a deployment. Points mode ranks by
// cumulative persisted points; Round mode ranks by the single-round score.
// Lower is better in both.
type Mode string

const (
	ModePoints = Mode("points")
	ModeRound  = Mode("round")
)

type Config struct {
	Mode           Mode
	FoldPenalty    int
	ForfeitPenalty int
}

func DefaultConfig() Config {
	return Config{
		Mode:           ModePoints,
		FoldPenalty:    100,
		ForfeitPenalty: 350,
	}
}

// Result is one player's outcome for a single round.
type Result struct {
	Status   Status
	Clicks   int
	Time     float64
	Articles []string
}

// Score computes the per-round score for a result. Arithmetic truncates
// toward zero, matching the stored integer semantics:
//
//	Win:     clicks + time/5
//	Fold:    clicks + time + fold penalty
//	Forfeit: flat forfeit penalty
func (c Config) Score(r Result) int {
	switch r.Status {
	case StatusWin:
		return int(float64(r.Clicks) + r.Time/5)
	case StatusFold:
		return int(float64(r.Clicks)+r.Time) + c.FoldPenalty
	default:
		return c.ForfeitPenalty
	}
}
