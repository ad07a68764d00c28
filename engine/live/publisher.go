package live

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/Carmen-Shannon/oxy-bench/engine/stats"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Publisher streams stats samples to WebSocket clients connected to
// ws://<addr>/stats. Slow or broken clients are dropped, never waited on.
type Publisher struct {
	addr     string
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewPublisher creates a publisher serving on addr. Call Start to begin
// listening.
//
// Parameters:
//   - addr: listen address, e.g. "localhost:8090"
//
// Returns:
//   - *Publisher: the publisher
func NewPublisher(addr string) *Publisher {
	return &Publisher{
		addr:    addr,
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			// The benchmark is a local tool; any origin may watch.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Start serves the WebSocket endpoint on its own goroutine. A listen failure
// is logged, not fatal: the benchmark keeps running without live stats.
func (p *Publisher) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/stats", p.handleStats)
	go func() {
		log.Info().Str("addr", p.addr).Msg("live stats listening")
		if err := http.ListenAndServe(p.addr, mux); err != nil {
			log.Error().Err(err).Str("addr", p.addr).Msg("live stats server stopped")
		}
	}()
}

// Publish sends one sample to every connected client.
//
// Parameters:
//   - sample: the stats sample to broadcast
func (p *Publisher) Publish(sample stats.Sample) {
	payload, err := json.Marshal(sample)
	if err != nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for conn := range p.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(p.clients, conn)
		}
	}
}

// ClientCount returns the number of connected clients.
func (p *Publisher) ClientCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clients)
}

func (p *Publisher) handleStats(w http.ResponseWriter, r *http.Request) {
	conn, err := p.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("live stats upgrade failed")
		return
	}

	p.mu.Lock()
	p.clients[conn] = struct{}{}
	p.mu.Unlock()
	log.Info().Str("remote", conn.RemoteAddr().String()).Msg("live stats client connected")

	// Drain (and ignore) client messages so pings and close frames are
	// processed; exit unregisters the client.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		p.mu.Lock()
		delete(p.clients, conn)
		p.mu.Unlock()
		conn.Close()
	}()
}
