package server

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
)

// runConsole reads admin commands from stdin until quit or EOF. Disabled by
// the headless flag for unattended deployments.
func (s *Server) runConsole(shutdown context.CancelFunc) {
	fmt.Println("Commands:")
	fmt.Println("  create     - Create a new lobby")
	fmt.Println("  list       - List active lobbies")
	fmt.Println("  resetstats - Wipe all persisted player stats")
	fmt.Println("  quit       - Shutdown server")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "create":
			l, err := s.registry.Create()
			if err != nil {
				log.Printf("[Console] Create failed: %v\n", err)
				continue
			}
			fmt.Printf("Created lobby: %s\n", l.Code)
		case "list":
			lobbies := s.registry.List()
			if len(lobbies) == 0 {
				fmt.Println("No active lobbies")
				continue
			}
			for _, l := range lobbies {
				state := "waiting"
				if l.Active {
					state = "in round"
				}
				fmt.Printf("Lobby %s: %d players (%s)\n", l.Code, l.Players, state)
			}
		case "resetstats":
			if err := s.store.ResetAll(); err != nil {
				log.Printf("[Console] Stats reset failed: %v\n", err)
				continue
			}
			fmt.Println("Player stats reset")
		case "quit":
			shutdown()
			return
		case "":
		default:
			fmt.Println("Unknown command")
		}
	}
}
