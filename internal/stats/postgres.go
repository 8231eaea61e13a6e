package stats

import (
	"database/sql"
	"embed"
	"fmt"
	"log"
	"math"
	"sync"

	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore persists player stats in a player_stats table. Used when a
// database URL is configured; otherwise the flat-file store is the default.
type PostgresStore struct {
	mu   sync.Mutex
	conn *sql.DB
}

func ConnectPostgres(dsn string) (*PostgresStore, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s := &PostgresStore{conn: conn}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	log.Println("[Stats] Connected to PostgreSQL")
	return s, nil
}

func (s *PostgresStore) migrate() error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations dir: %w", err)
	}
	for _, entry := range entries {
		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}
		if _, err := s.conn.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func (s *PostgresStore) Ensure(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.conn.Exec(
		`INSERT INTO player_stats (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return fmt.Errorf("ensuring player %q: %w", name, err)
	}
	return nil
}

func (s *PostgresStore) Get(name string) (PlayerStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var p PlayerStats
	err := s.conn.QueryRow(
		`SELECT points, wins, clicks, games_played, time_played
		 FROM player_stats WHERE name = $1`, name).
		Scan(&p.Points, &p.Wins, &p.Clicks, &p.GamesPlayed, &p.TimePlayed)
	if err != nil {
		return PlayerStats{}, false
	}
	return p, true
}

func (s *PostgresStore) RecordRound(entries []RoundEntry) (map[string]PlayerStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning round update: %w", err)
	}
	defer tx.Rollback()

	updated := make(map[string]PlayerStats, len(entries))
	for _, e := range entries {
		win := 0
		if e.Win {
			win = 1
		}
		var p PlayerStats
		err := tx.QueryRow(
			`INSERT INTO player_stats (name, points, wins, clicks, games_played, time_played)
			 VALUES ($1, $2, $3, $4, 1, $5)
			 ON CONFLICT (name) DO UPDATE SET
				points = player_stats.points + EXCLUDED.points,
				wins = player_stats.wins + EXCLUDED.wins,
				clicks = player_stats.clicks + EXCLUDED.clicks,
				games_played = player_stats.games_played + 1,
				time_played = player_stats.time_played + EXCLUDED.time_played
			 RETURNING points, wins, clicks, games_played, time_played`,
			e.Name, e.Score, win, e.Clicks, math.Round(e.Time)).
			Scan(&p.Points, &p.Wins, &p.Clicks, &p.GamesPlayed, &p.TimePlayed)
		if err != nil {
			return nil, fmt.Errorf("recording round for %q: %w", e.Name, err)
		}
		updated[e.Name] = p
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing round update: %w", err)
	}
	return updated, nil
}

func (s *PostgresStore) ResetAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.conn.Exec(`DELETE FROM player_stats`); err != nil {
		return fmt.Errorf("resetting stats: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.conn.Close()
}
