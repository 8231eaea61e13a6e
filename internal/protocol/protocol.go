// Package protocol defines the newline-delimited JSON messages exchanged
// between clients and the lobby server. Each message is one JSON object on
// one line; the type field discriminates.
package protocol

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// MaxMessageSize caps a single wire message, including the trailing newline.
const MaxMessageSize = 4096

// Client -> server message types.
const (
	TypeJoin           = "join"
	TypeArticleRequest = "article_request"
	TypeGameResult     = "game_result"
	TypePlayAgain      = "play_again"
)

// Server -> client message types.
const (
	TypeJoinSuccess  = "join_success"
	TypeJoinRejected = "join_rejected"
	TypeGameStart    = "game_start"
	TypeGameResults  = "game_results"
)

// Message is the union of all inbound message shapes. Fields not used by a
// given type are left at their zero values.
type Message struct {
	Type      string   `json:"type"`
	Name      string   `json:"name,omitempty"`
	LobbyCode string   `json:"lobby_code,omitempty"`
	Article   string   `json:"article,omitempty"`
	Status    string   `json:"status,omitempty"`
	Clicks    int      `json:"clicks,omitempty"`
	Time      float64  `json:"time,omitempty"`
	Articles  []string `json:"articles,omitempty"`
}

type JoinSuccess struct {
	Type      string `json:"type"`
	LobbyCode string `json:"lobby_code"`
	Message   string `json:"message"`
}

type JoinRejected struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type GameStart struct {
	Type         string `json:"type"`
	StartArticle string `json:"start_article"`
	EndArticle   string `json:"end_article"`
}

// PlayerResult is one row of a game_results broadcast. TotalPoints is only
// populated when the server ranks by cumulative points.
type PlayerResult struct {
	Name        string  `json:"name"`
	Status      string  `json:"status"`
	Clicks      int     `json:"clicks"`
	Time        float64 `json:"time"`
	Score       int     `json:"score"`
	TotalPoints int     `json:"total_points,omitempty"`
	Rank        int     `json:"rank"`
}

type GameResults struct {
	Type    string         `json:"type"`
	Results []PlayerResult `json:"results"`
}

// Encode serializes a message and appends the line terminator.
func Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding message: %w", err)
	}
	if len(data)+1 > MaxMessageSize {
		return nil, fmt.Errorf("message exceeds %d bytes", MaxMessageSize)
	}
	return append(data, '\n'), nil
}

// Decoder reads one message per line from a stream, reassembling partial
// reads and splitting coalesced writes. Lines over MaxMessageSize or lines
// that fail to parse return an error; callers treat both as fatal to the
// connection.
type Decoder struct {
	scanner *bufio.Scanner
}

func NewDecoder(r io.Reader) *Decoder {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, MaxMessageSize), MaxMessageSize)
	return &Decoder{scanner: s}
}

// Next returns the next message, or io.EOF at clean end of stream.
func (d *Decoder) Next() (Message, error) {
	if !d.scanner.Scan() {
		if err := d.scanner.Err(); err != nil {
			return Message{}, err
		}
		return Message{}, io.EOF
	}
	var msg Message
	if err := json.Unmarshal(d.scanner.Bytes(), &msg); err != nil {
		return Message{}, fmt.Errorf("decoding message: %w", err)
	}
	return msg, nil
}
