package config

import (
	"fmt"
	"time"

	"wikirace/internal/lobby"
	"wikirace/internal/score"
)

type Config struct {
	Bind     string
	Port     int
	Headless bool
	Verbose  bool

	JoinPolicy     string
	ScoringMode    string
	FoldPenalty    int
	ForfeitPenalty int
	CountdownSecs  int

	StatsFile   string
	DatabaseURL string

	WikiURL string

	Discovery     bool
	DiscoveryPort int

	// LegacyResetOnEmpty wipes all player stats whenever a lobby empties,
	// replicating an old deployment bug. Compatibility testing only.
	LegacyResetOnEmpty bool
}

func Default() Config {
	return Config{
		Bind:           "0.0.0.0",
		Port:           5555,
		JoinPolicy:     string(lobby.PolicyOpen),
		ScoringMode:    string(score.ModePoints),
		FoldPenalty:    100,
		ForfeitPenalty: 350,
		CountdownSecs:  10,
		StatsFile:      "wiki_race_player_stats.json",
		DiscoveryPort:  5556,
	}
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.Discovery && (c.DiscoveryPort < 1 || c.DiscoveryPort > 65535) {
		return fmt.Errorf("invalid discovery port: %d", c.DiscoveryPort)
	}
	switch lobby.Policy(c.JoinPolicy) {
	case lobby.PolicyOpen, lobby.PolicyStrict:
	default:
		return fmt.Errorf("invalid join policy (must be open or strict): %q", c.JoinPolicy)
	}
	switch score.Mode(c.ScoringMode) {
	case score.ModePoints, score.ModeRound:
	default:
		return fmt.Errorf("invalid scoring mode (must be points or round): %q", c.ScoringMode)
	}
	if c.FoldPenalty < 0 || c.ForfeitPenalty < 0 {
		return fmt.Errorf("penalties must be non-negative")
	}
	if c.CountdownSecs < 1 {
		return fmt.Errorf("countdown must be at least 1 second: %d", c.CountdownSecs)
	}
	return nil
}

// ScoringConfig assembles the score parameters from the flat flag values.
func (c *Config) ScoringConfig() score.Config {
	return score.Config{
		Mode:           score.Mode(c.ScoringMode),
		FoldPenalty:    c.FoldPenalty,
		ForfeitPenalty: c.ForfeitPenalty,
	}
}

// LobbyConfig assembles the per-lobby parameters.
func (c *Config) LobbyConfig() lobby.Config {
	return lobby.Config{
		Countdown: time.Duration(c.CountdownSecs) * time.Second,
		Scoring:   c.ScoringConfig(),
	}
}
