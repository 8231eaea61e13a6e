package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"wikirace/internal/config"
	"wikirace/internal/discovery"
	"wikirace/internal/lobby"
	"wikirace/internal/stats"
	"wikirace/internal/wiki"
)

// acceptPoll bounds how long a blocked Accept can delay shutdown.
const acceptPoll = 1 * time.Second

type Server struct {
	cfg      config.Config
	registry *lobby.Registry
	store    stats.Store

	mu     sync.Mutex
	conns  map[net.Conn]bool
	lnAddr net.Addr
}

// New wires the stats backend, article provider, and lobby registry from
// configuration. Postgres is used for stats when a database URL is set;
// otherwise the flat stats file.
func New(cfg config.Config) (*Server, error) {
	var store stats.Store
	if cfg.DatabaseURL != "" {
		pg, err := stats.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connecting stats database: %w", err)
		}
		store = pg
	} else {
		store = stats.NewFileStore(cfg.StatsFile)
	}

	provider := wiki.NewClient(cfg.WikiURL)
	registry := lobby.NewRegistry(lobby.Policy(cfg.JoinPolicy), cfg.LobbyConfig(), provider, store)
	if cfg.LegacyResetOnEmpty {
		registry.EnableLegacyResetOnEmpty()
	}

	return &Server{
		cfg:      cfg,
		registry: registry,
		store:    store,
		conns:    make(map[net.Conn]bool),
	}, nil
}

// Addr returns the bound listen address, or nil before Run has started
// listening. Lets tests bind port 0 and discover the real port.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lnAddr
}

// Run accepts connections until the context is cancelled, spawning one
// handler goroutine per client. The accept loop polls with a short deadline
// so cancellation is noticed promptly.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	addr := fmt.Sprintf("%s:%d", s.cfg.Bind, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	defer ln.Close()
	tcpLn := ln.(*net.TCPListener)

	s.mu.Lock()
	s.lnAddr = ln.Addr()
	s.mu.Unlock()

	boundPort := ln.Addr().(*net.TCPAddr).Port
	log.Printf("[Server] Listening on %s:%d\n", discovery.LocalIP(), boundPort)

	if s.cfg.Discovery {
		go discovery.Run(ctx, boundPort, s.cfg.DiscoveryPort)
	}
	if !s.cfg.Headless {
		go s.runConsole(cancel)
	}

	for {
		if ctx.Err() != nil {
			break
		}
		if err := tcpLn.SetDeadline(time.Now().Add(acceptPoll)); err != nil {
			return fmt.Errorf("setting accept deadline: %w", err)
		}
		conn, err := ln.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				break
			}
			return fmt.Errorf("accepting connection: %w", err)
		}
		s.track(conn)
		go s.handleConn(conn)
	}

	log.Println("[Server] Shutting down")
	s.closeAll()
	return s.store.Close()
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[conn] = true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.Close()
	}
	s.conns = make(map[net.Conn]bool)
}
