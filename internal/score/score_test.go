package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_Win(t *testing.T) {
	cfg := DefaultConfig()

	// 4 clicks + 12.3s/5 = 4 + 2.46, truncated
	got := cfg.Score(Result{Status: StatusWin, Clicks: 4, Time: 12.3})
	assert.Equal(t, 6, got)

	got = cfg.Score(Result{Status: StatusWin, Clicks: 0, Time: 0})
	assert.Equal(t, 0, got)

	got = cfg.Score(Result{Status: StatusWin, Clicks: 10, Time: 4.9})
	assert.Equal(t, 10, got, "time under 5s contributes nothing")
}

func TestScore_Fold(t *testing.T) {
	cfg := DefaultConfig()

	got := cfg.Score(Result{Status: StatusFold, Clicks: 2, Time: 30.0})
	assert.Equal(t, 132, got)

	noPenalty := Config{Mode: ModeRound, FoldPenalty: 0, ForfeitPenalty: 200}
	got = noPenalty.Score(Result{Status: StatusFold, Clicks: 2, Time: 30.0})
	assert.Equal(t, 32, got, "fold penalty is configurable down to zero")
}

func TestScore_Forfeit(t *testing.T) {
	cfg := DefaultConfig()

	// Clicks and time are irrelevant for a forfeit.
	for _, r := range []Result{
		{Status: StatusForfeit},
		{Status: StatusForfeit, Clicks: 99, Time: 9999},
		{Status: Status("Crashed"), Clicks: 3, Time: 12},
	} {
		assert.Equal(t, 350, cfg.Score(r))
	}

	legacy := Config{Mode: ModeRound, FoldPenalty: 0, ForfeitPenalty: 200}
	assert.Equal(t, 200, legacy.Score(Result{Status: StatusForfeit}))
}

func TestScore_TruncatesTowardZero(t *testing.T) {
	cfg := DefaultConfig()

	got := cfg.Score(Result{Status: StatusWin, Clicks: 1, Time: 24.99})
	assert.Equal(t, 5, got)

	got = cfg.Score(Result{Status: StatusFold, Clicks: 1, Time: 0.9})
	assert.Equal(t, 101, got)
}
