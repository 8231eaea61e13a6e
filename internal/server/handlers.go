package server

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"net"
	"strings"

	"wikirace/internal/lobby"
	"wikirace/internal/protocol"
	"wikirace/internal/score"
)

// handleConn is the per-connection read loop: decode one message per line,
// dispatch on type. Read failure, clean EOF, and undecodable input all end
// the loop; the deferred cleanup removes the client from its lobby and
// garbage-collects the lobby if that emptied it. This is the only
// disconnect detection there is.
func (s *Server) handleConn(conn net.Conn) {
	log.Printf("[Server] Client connected from %s\n", conn.RemoteAddr())

	client := lobby.NewClient(conn)
	go client.WritePump()

	var current *lobby.Lobby
	defer func() {
		if current != nil {
			s.leaveLobby(current, client)
		}
		client.Close()
		s.untrack(conn)
		log.Printf("[Server] Client %s disconnected\n", conn.RemoteAddr())
	}()

	dec := protocol.NewDecoder(conn)
	for {
		msg, err := dec.Next()
		if err != nil {
			return
		}
		if s.cfg.Verbose {
			log.Printf("[Server] %s -> %s\n", conn.RemoteAddr(), msg.Type)
		}

		switch msg.Type {
		case protocol.TypeJoin:
			current = s.handleJoin(client, current, msg)
		case protocol.TypeArticleRequest:
			if current != nil {
				current.SubmitArticleRequest(client, msg.Article)
			}
		case protocol.TypeGameResult:
			if current != nil {
				current.SubmitResult(client, score.Result{
					Status:   score.Status(msg.Status),
					Clicks:   msg.Clicks,
					Time:     msg.Time,
					Articles: msg.Articles,
				})
			}
		case protocol.TypePlayAgain:
			if current != nil {
				current.ResetForReplay(client)
			}
		default:
			// Unrecognized types are ignored, not answered.
		}
	}
}

// handleJoin resolves the target lobby per the configured policy. Joining
// while already in a lobby leaves the old one first. Returns the lobby the
// client now belongs to, or its previous state on rejection.
func (s *Server) handleJoin(client *lobby.Client, current *lobby.Lobby, msg protocol.Message) *lobby.Lobby {
	name := strings.TrimSpace(msg.Name)
	if name == "" {
		name = fmt.Sprintf("Player%d", rand.IntN(9000)+1000)
	}
	code := strings.ToUpper(strings.TrimSpace(msg.LobbyCode))

	if current != nil {
		s.leaveLobby(current, client)
	}

	l, err := s.registry.Join(code, client, name)
	if err != nil {
		if errors.Is(err, lobby.ErrLobbyNotFound) {
			s.send(client, protocol.JoinRejected{
				Type:    protocol.TypeJoinRejected,
				Message: fmt.Sprintf("Lobby %s not found", code),
			})
			return nil
		}
		log.Printf("[Server] Join failed for %s: %v\n", name, err)
		s.send(client, protocol.JoinRejected{
			Type:    protocol.TypeJoinRejected,
			Message: "Could not join lobby",
		})
		return nil
	}

	if err := s.store.Ensure(name); err != nil {
		log.Printf("[Server] Failed to ensure stats for %s: %v\n", name, err)
	}

	log.Printf("[Server] %s joined lobby %s\n", name, l.Code)
	s.send(client, protocol.JoinSuccess{
		Type:      protocol.TypeJoinSuccess,
		LobbyCode: l.Code,
		Message:   fmt.Sprintf("Connected to lobby %s", l.Code),
	})
	return l
}

func (s *Server) leaveLobby(l *lobby.Lobby, client *lobby.Client) {
	l.RemoveClient(client)
	s.registry.RemoveIfEmpty(l.Code)
}

// send encodes and queues one message for a single client, best effort.
func (s *Server) send(client *lobby.Client, msg any) {
	data, err := protocol.Encode(msg)
	if err != nil {
		log.Printf("[Server] Encode error: %v\n", err)
		return
	}
	client.Send(data)
}
