package lobby

import (
	"context"
	"log"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"wikirace/internal/protocol"
	"wikirace/internal/score"
	"wikirace/internal/stats"
	"wikirace/internal/wiki"
)

// countdownPoll is how often a running countdown re-checks readiness.
const countdownPoll = 250 * time.Millisecond

// randomDrawAttempts bounds the random-article fallback when assembling the
// start/end pair, so a dead provider cannot spin the countdown goroutine.
const randomDrawAttempts = 10

type Config struct {
	Countdown time.Duration
	Scoring   score.Config
}

func DefaultConfig() Config {
	return Config{
		Countdown: 10 * time.Second,
		Scoring:   score.DefaultConfig(),
	}
}

// Lobby is one group of players sharing a match. All maps and flags are
// guarded by mu; every check-then-act sequence (all-ready, completeness,
// emptiness) runs inside a single critical section.
type Lobby struct {
	Code string

	cfg      Config
	provider wiki.ArticleProvider
	store    stats.Store

	mu               sync.Mutex
	clients          map[*Client]bool
	requests         map[*Client]string
	requestOrder     []*Client // submission order for the current round
	results          map[*Client]score.Result
	resultOrder      []*Client
	gameActive       bool
	countdownRunning bool
	allReadyTime     time.Time
	removed          bool
}

func New(code string, cfg Config, provider wiki.ArticleProvider, store stats.Store) *Lobby {
	return &Lobby{
		Code:     code,
		cfg:      cfg,
		provider: provider,
		store:    store,
		clients:  make(map[*Client]bool),
		requests: make(map[*Client]string),
		results:  make(map[*Client]score.Result),
	}
}

// AddClient registers a connection under the given player name.
func (l *Lobby) AddClient(c *Client, name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c.Name = name
	c.Ready = false
	l.clients[c] = true
}

// RemoveClient deletes the client and any pending request or result.
// Returns true when the lobby is now empty. Completeness of an in-progress
// round is deliberately not re-evaluated here; see SubmitResult.
func (l *Lobby) RemoveClient(c *Client) (empty bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.clients[c] {
		return len(l.clients) == 0
	}
	delete(l.clients, c)
	delete(l.requests, c)
	delete(l.results, c)
	l.requestOrder = removeFromOrder(l.requestOrder, c)
	l.resultOrder = removeFromOrder(l.resultOrder, c)
	return len(l.clients) == 0
}

// SubmitArticleRequest records a client's article choice (empty means "give
// me something random") and marks it ready. When this makes everyone ready,
// the countdown starts unless one is already running.
func (l *Lobby) SubmitArticleRequest(c *Client, article string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.clients[c] {
		return
	}

	if _, seen := l.requests[c]; !seen {
		l.requestOrder = append(l.requestOrder, c)
	}
	l.requests[c] = article
	c.Ready = true
	log.Printf("[Lobby %s] %s submitted article request %q\n", l.Code, c.Name, article)

	if l.allReadyLocked() {
		if l.allReadyTime.IsZero() {
			l.allReadyTime = time.Now()
		}
		if !l.countdownRunning {
			l.countdownRunning = true
			go l.runCountdown()
		}
	} else {
		l.allReadyTime = time.Time{}
	}
}

// allReadyLocked reports whether every connected client is ready. Caller
// holds l.mu. An empty lobby is never ready.
func (l *Lobby) allReadyLocked() bool {
	if len(l.clients) == 0 {
		return false
	}
	for c := range l.clients {
		if !c.Ready {
			return false
		}
	}
	return true
}

// runCountdown polls readiness until the grace period elapses, then starts
// the round. Any client flipping not-ready (play_again) or the lobby being
// deleted cancels it.
func (l *Lobby) runCountdown() {
	deadline := time.Now().Add(l.cfg.Countdown)
	ticker := time.NewTicker(countdownPoll)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		<-ticker.C
		l.mu.Lock()
		if l.removed {
			l.mu.Unlock()
			return
		}
		if !l.allReadyLocked() {
			l.countdownRunning = false
			l.allReadyTime = time.Time{}
			l.mu.Unlock()
			log.Printf("[Lobby %s] Countdown cancelled\n", l.Code)
			return
		}
		l.mu.Unlock()
	}

	l.StartRound()

	l.mu.Lock()
	l.countdownRunning = false
	l.mu.Unlock()
}

// StartRound resolves the start/end article pair and broadcasts game_start.
// No-op when a round is already active, the lobby emptied, or readiness was
// lost between the last countdown tick and now.
func (l *Lobby) StartRound() {
	l.mu.Lock()
	if l.removed || l.gameActive || !l.allReadyLocked() {
		l.mu.Unlock()
		return
	}
	queries := make([]string, 0, len(l.requestOrder))
	for _, c := range l.requestOrder {
		if article := strings.TrimSpace(l.requests[c]); article != "" {
			queries = append(queries, article)
		}
	}
	l.mu.Unlock()

	start, end, ok := l.pickArticles(queries)
	if !ok {
		log.Printf("[Lobby %s] Could not assemble an article pair, round not started\n", l.Code)
		return
	}

	l.mu.Lock()
	if l.removed || l.gameActive || len(l.clients) == 0 {
		l.mu.Unlock()
		return
	}
	l.gameActive = true
	l.results = make(map[*Client]score.Result)
	l.resultOrder = nil
	l.broadcastLocked(protocol.GameStart{
		Type:         protocol.TypeGameStart,
		StartArticle: start,
		EndArticle:   end,
	})
	l.mu.Unlock()

	log.Printf("[Lobby %s] Game starting: %s -> %s\n", l.Code, start, end)
}

// pickArticles turns the submitted queries into exactly two distinct titles.
// Each query resolves to its top search hit; random draws fill in until two
// candidates exist. With exactly two candidates the later submission becomes
// the start, so a player is more likely to race from an article someone else
// picked. Provider failures are recovered by further random draws, never
// surfaced to clients.
func (l *Lobby) pickArticles(queries []string) (start, end string, ok bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var candidates []string
	for _, q := range queries {
		titles, err := l.provider.Search(ctx, q)
		if err != nil {
			log.Printf("[Lobby %s] Article search %q failed: %v\n", l.Code, q, err)
			continue
		}
		if len(titles) > 0 {
			candidates = append(candidates, titles[0])
		}
	}

	for attempt := 0; len(candidates) < 2 && attempt < randomDrawAttempts; attempt++ {
		titles, err := l.provider.Random(ctx, 1)
		if err != nil {
			log.Printf("[Lobby %s] Random article draw failed: %v\n", l.Code, err)
			continue
		}
		candidates = append(candidates, titles...)
	}
	if len(candidates) < 2 {
		return "", "", false
	}

	if len(candidates) == 2 {
		return candidates[1], candidates[0], true
	}
	i := rand.IntN(len(candidates))
	j := rand.IntN(len(candidates) - 1)
	if j >= i {
		j++
	}
	return candidates[i], candidates[j], true
}

// SubmitResult records a round result. When every connected client has
// reported, the round is scored exactly once: the active flag flips inside
// the same critical section that detects completeness, so concurrent
// submissions cannot double-trigger.
func (l *Lobby) SubmitResult(c *Client, r score.Result) {
	l.mu.Lock()
	if !l.clients[c] {
		l.mu.Unlock()
		return
	}
	if _, dup := l.results[c]; !dup {
		l.resultOrder = append(l.resultOrder, c)
	}
	l.results[c] = r
	log.Printf("[Lobby %s] %s finished (%s)\n", l.Code, c.Name, r.Status)

	if !l.gameActive || len(l.results) != len(l.clients) {
		l.mu.Unlock()
		return
	}
	l.gameActive = false
	participants := make([]participant, 0, len(l.resultOrder))
	for _, rc := range l.resultOrder {
		participants = append(participants, participant{name: rc.Name, result: l.results[rc]})
	}
	l.mu.Unlock()

	log.Printf("[Lobby %s] All players finished\n", l.Code)
	l.scoreRound(participants)
}

type participant struct {
	name   string
	result score.Result
}

// scoreRound computes per-round scores, persists cumulative stats, and
// broadcasts the ranked results. A failed stats write is logged and the
// results still go out.
func (l *Lobby) scoreRound(participants []participant) {
	entries := make([]stats.RoundEntry, 0, len(participants))
	rows := make([]protocol.PlayerResult, 0, len(participants))
	for _, p := range participants {
		s := l.cfg.Scoring.Score(p.result)
		entries = append(entries, stats.RoundEntry{
			Name:   p.name,
			Score:  s,
			Clicks: p.result.Clicks,
			Time:   p.result.Time,
			Win:    p.result.Status == score.StatusWin,
		})
		rows = append(rows, protocol.PlayerResult{
			Name:   p.name,
			Status: string(p.result.Status),
			Clicks: p.result.Clicks,
			Time:   p.result.Time,
			Score:  s,
		})
	}

	totals, err := l.store.RecordRound(entries)
	if err != nil {
		log.Printf("[Lobby %s] Failed to persist stats: %v\n", l.Code, err)
	}

	byPoints := l.cfg.Scoring.Mode == score.ModePoints
	if byPoints {
		for i := range rows {
			rows[i].TotalPoints = totals[rows[i].Name].Points
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if byPoints {
			return rows[i].TotalPoints < rows[j].TotalPoints
		}
		return rows[i].Score < rows[j].Score
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}

	l.mu.Lock()
	l.broadcastLocked(protocol.GameResults{
		Type:    protocol.TypeGameResults,
		Results: rows,
	})
	l.mu.Unlock()
}

// ResetForReplay clears one client's readiness and any stale submission,
// letting it opt into the next round. Leaves everything else untouched.
func (l *Lobby) ResetForReplay(c *Client) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.clients[c] {
		return
	}
	c.Ready = false
	delete(l.requests, c)
	delete(l.results, c)
	l.requestOrder = removeFromOrder(l.requestOrder, c)
	l.resultOrder = removeFromOrder(l.resultOrder, c)
	log.Printf("[Lobby %s] %s wants to play again\n", l.Code, c.Name)
}

// Size returns the number of connected clients.
func (l *Lobby) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// GameActive reports whether a round is in progress.
func (l *Lobby) GameActive() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gameActive
}

// CountdownRunning reports whether a start countdown is in flight.
func (l *Lobby) CountdownRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.countdownRunning
}

// markRemoved flags the lobby as deleted so an in-flight countdown aborts.
// Called by the registry with the registry lock held.
func (l *Lobby) markRemoved() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.removed = true
}

// Broadcast sends a message to every connected client, best effort.
func (l *Lobby) Broadcast(msg any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.broadcastLocked(msg)
}

// broadcastLocked encodes once and queues to every client. Caller holds
// l.mu. Per-client delivery is fire-and-forget; a stalled or closed client
// never affects the others.
func (l *Lobby) broadcastLocked(msg any) {
	data, err := protocol.Encode(msg)
	if err != nil {
		log.Printf("[Lobby %s] Broadcast encode error: %v\n", l.Code, err)
		return
	}
	for c := range l.clients {
		c.Send(data)
	}
}

func removeFromOrder(order []*Client, c *Client) []*Client {
	for i, oc := range order {
		if oc == c {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}
