package stats

import (
	"os"
	"path/filepath"
	"testing"
)

func tempStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stats.json")
	return NewFileStore(path), path
}

func TestFileStore_EnsureCreatesZeroedRecord(t *testing.T) {
	s, _ := tempStore(t)

	if err := s.Ensure("alice"); err != nil {
		t.Fatal(err)
	}
	p, ok := s.Get("alice")
	if !ok {
		t.Fatal("alice should exist after Ensure")
	}
	if p != (PlayerStats{}) {
		t.Errorf("new record should be zeroed, got %+v", p)
	}

	// Ensure again must not clobber accumulated stats.
	s.RecordRound([]RoundEntry{{Name: "alice", Score: 10, Clicks: 3, Time: 20, Win: true}})
	s.Ensure("alice")
	p, _ = s.Get("alice")
	if p.Points != 10 {
		t.Errorf("Ensure overwrote existing stats: %+v", p)
	}
}

func TestFileStore_RecordRoundAccumulates(t *testing.T) {
	s, _ := tempStore(t)

	updated, err := s.RecordRound([]RoundEntry{
		{Name: "alice", Score: 6, Clicks: 4, Time: 12.3, Win: true},
		{Name: "bob", Score: 132, Clicks: 2, Time: 30.0, Win: false},
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated["alice"].Points != 6 || updated["bob"].Points != 132 {
		t.Errorf("unexpected totals: %+v", updated)
	}

	updated, err = s.RecordRound([]RoundEntry{
		{Name: "alice", Score: 9, Clicks: 7, Time: 47.6, Win: false},
	})
	if err != nil {
		t.Fatal(err)
	}

	alice := updated["alice"]
	if alice.Points != 15 {
		t.Errorf("Points = %d, want 15", alice.Points)
	}
	if alice.GamesPlayed != 2 {
		t.Errorf("GamesPlayed = %d, want 2", alice.GamesPlayed)
	}
	if alice.Clicks != 11 {
		t.Errorf("Clicks = %d, want 11", alice.Clicks)
	}
	if alice.Wins != 1 {
		t.Errorf("Wins = %d, want 1", alice.Wins)
	}
	// 12.3 rounds to 12, 47.6 rounds to 48
	if alice.TimePlayed != 60 {
		t.Errorf("TimePlayed = %v, want 60", alice.TimePlayed)
	}
}

func TestFileStore_RoundTripAcrossRestart(t *testing.T) {
	s, path := tempStore(t)
	s.RecordRound([]RoundEntry{
		{Name: "alice", Score: 6, Clicks: 4, Time: 12.3, Win: true},
		{Name: "bob", Score: 132, Clicks: 2, Time: 30.0, Win: false},
	})
	before := map[string]PlayerStats{}
	for _, name := range []string{"alice", "bob"} {
		p, ok := s.Get(name)
		if !ok {
			t.Fatalf("%s missing before restart", name)
		}
		before[name] = p
	}

	reloaded := NewFileStore(path)
	for name, want := range before {
		got, ok := reloaded.Get(name)
		if !ok {
			t.Fatalf("%s missing after reload", name)
		}
		if got != want {
			t.Errorf("%s = %+v after reload, want %+v", name, got, want)
		}
	}
}

func TestFileStore_ResetAllDeletesFile(t *testing.T) {
	s, path := tempStore(t)
	s.RecordRound([]RoundEntry{{Name: "alice", Score: 5, Clicks: 1, Time: 3, Win: true}})

	if err := s.ResetAll(); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Get("alice"); ok {
		t.Error("alice should be gone after reset")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("stats file should be deleted after reset")
	}
}

func TestFileStore_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(path)
	if _, ok := s.Get("anyone"); ok {
		t.Error("corrupt file should load as empty stats")
	}
	if err := s.Ensure("alice"); err != nil {
		t.Errorf("store should be usable after corrupt load: %v", err)
	}
}

func TestFileStore_MissingFileStartsEmpty(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "nope", "stats.json"))
	if _, ok := s.Get("anyone"); ok {
		t.Error("missing file should load as empty stats")
	}
}
