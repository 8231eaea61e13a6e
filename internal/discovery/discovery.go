// Package discovery announces the server on the local network so desktop
// clients can find it without typing an address.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"time"
)

const broadcastInterval = 2 * time.Second

type presence struct {
	Type string `json:"type"`
	IP   string `json:"ip"`
	Port int    `json:"port"`
}

// Run broadcasts a presence datagram to the LAN every two seconds until the
// context is cancelled. Send failures are ignored; discovery is best effort.
func Run(ctx context.Context, tcpPort, discoveryPort int) {
	conn, err := net.Dial("udp", fmt.Sprintf("255.255.255.255:%d", discoveryPort))
	if err != nil {
		log.Printf("[Discovery] Broadcast unavailable: %v\n", err)
		return
	}
	defer conn.Close()

	payload, err := json.Marshal(presence{
		Type: "server_discovery",
		IP:   LocalIP(),
		Port: tcpPort,
	})
	if err != nil {
		log.Printf("[Discovery] Encode error: %v\n", err)
		return
	}

	ticker := time.NewTicker(broadcastInterval)
	defer ticker.Stop()

	log.Printf("[Discovery] Broadcasting presence on UDP port %d\n", discoveryPort)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = conn.Write(payload)
		}
	}
}

// LocalIP returns the outbound interface address, falling back to loopback.
func LocalIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}
