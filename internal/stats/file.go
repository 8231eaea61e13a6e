package stats

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"os"
	"sync"
)

// FileStore keeps the stats map in memory and rewrites the whole JSON file
// on every update. Load failures start from empty; save failures are logged
// and swallowed so a round's results still reach the players.
type FileStore struct {
	mu      sync.Mutex
	path    string
	players map[string]PlayerStats
}

func NewFileStore(path string) *FileStore {
	s := &FileStore{
		path:    path,
		players: make(map[string]PlayerStats),
	}
	s.load()
	return s
}

func (s *FileStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("[Stats] Failed to load %s: %v (starting empty)\n", s.path, err)
		}
		return
	}
	loaded := make(map[string]PlayerStats)
	if err := json.Unmarshal(data, &loaded); err != nil {
		log.Printf("[Stats] Failed to parse %s: %v (starting empty)\n", s.path, err)
		return
	}
	s.players = loaded
}

// save writes the full file. Caller holds s.mu.
func (s *FileStore) save() {
	data, err := json.MarshalIndent(s.players, "", "  ")
	if err != nil {
		log.Printf("[Stats] Failed to encode stats: %v\n", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		log.Printf("[Stats] Failed to write %s: %v\n", s.path, err)
	}
}

func (s *FileStore) Ensure(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[name]; !ok {
		s.players[name] = PlayerStats{}
		s.save()
	}
	return nil
}

func (s *FileStore) Get(name string) (PlayerStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[name]
	return p, ok
}

func (s *FileStore) RecordRound(entries []RoundEntry) (map[string]PlayerStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := make(map[string]PlayerStats, len(entries))
	for _, e := range entries {
		p := s.players[e.Name]
		p.Points += e.Score
		p.GamesPlayed++
		p.Clicks += e.Clicks
		p.TimePlayed += math.Round(e.Time)
		if e.Win {
			p.Wins++
		}
		s.players[e.Name] = p
		updated[e.Name] = p
	}
	s.save()
	return updated, nil
}

func (s *FileStore) ResetAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.players = make(map[string]PlayerStats)
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[Stats] Failed to delete %s: %v\n", s.path, err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
