package stats

// PlayerStats is the persisted cumulative record for one player name.
// Names are case-sensitive and never expire.
type PlayerStats struct {
	Points      int     `json:"points"`
	Wins        int     `json:"wins"`
	Clicks      int     `json:"clicks"`
	GamesPlayed int     `json:"games_played"`
	TimePlayed  float64 `json:"time_played"`
}

// RoundEntry is one player's contribution applied after scoring a round.
type RoundEntry struct {
	Name   string
	Score  int
	Clicks int
	Time   float64
	Win    bool
}

// Store persists player statistics. Implementations serialize internally;
// methods may be called from concurrent scoring goroutines.
type Store interface {
	// Ensure creates a zeroed record for name if none exists.
	Ensure(name string) error
	// Get returns the stats for name and whether the name is known.
	Get(name string) (PlayerStats, bool)
	// RecordRound applies every entry and persists once, returning the
	// updated totals for each entry's name.
	RecordRound(entries []RoundEntry) (map[string]PlayerStats, error)
	// ResetAll deletes every record.
	ResetAll() error
	Close() error
}
