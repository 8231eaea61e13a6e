package config

import (
	"testing"
	"time"

	"wikirace/internal/score"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Port != 5555 {
		t.Errorf("Port = %d, want 5555", cfg.Port)
	}
	if cfg.CountdownSecs != 10 {
		t.Errorf("CountdownSecs = %d, want 10", cfg.CountdownSecs)
	}
	if cfg.FoldPenalty != 100 || cfg.ForfeitPenalty != 350 {
		t.Errorf("penalties = %d/%d, want 100/350", cfg.FoldPenalty, cfg.ForfeitPenalty)
	}
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Port = 0 }},
		{"port too high", func(c *Config) { c.Port = 70000 }},
		{"bad policy", func(c *Config) { c.JoinPolicy = "invite-only" }},
		{"bad scoring mode", func(c *Config) { c.ScoringMode = "elo" }},
		{"negative fold penalty", func(c *Config) { c.FoldPenalty = -1 }},
		{"negative forfeit penalty", func(c *Config) { c.ForfeitPenalty = -1 }},
		{"zero countdown", func(c *Config) { c.CountdownSecs = 0 }},
		{"bad discovery port", func(c *Config) { c.Discovery = true; c.DiscoveryPort = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestLobbyConfig_Assembly(t *testing.T) {
	cfg := Default()
	cfg.CountdownSecs = 3
	cfg.ScoringMode = string(score.ModeRound)
	cfg.ForfeitPenalty = 200

	lc := cfg.LobbyConfig()
	if lc.Countdown != 3*time.Second {
		t.Errorf("Countdown = %v, want 3s", lc.Countdown)
	}
	if lc.Scoring.Mode != score.ModeRound {
		t.Errorf("Mode = %v, want round", lc.Scoring.Mode)
	}
	if lc.Scoring.ForfeitPenalty != 200 {
		t.Errorf("ForfeitPenalty = %d, want 200", lc.Scoring.ForfeitPenalty)
	}
}
