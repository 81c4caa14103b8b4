package gateway

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Monitor broadcasts accepted/rejected uplink Events to connected
// dashboard clients over WebSocket. It is a read-only operational view,
// never a control channel back into the protocol.
type Monitor struct {
	mu       sync.RWMutex
	sessions map[string]*monitorSession
	upgrader websocket.Upgrader
}

type monitorSession struct {
	id string
	ws *websocket.Conn
	mu sync.Mutex
}

// NewMonitor constructs an empty Monitor ready to serve HandleWS.
func NewMonitor() *Monitor {
	return &Monitor{
		sessions: make(map[string]*monitorSession),
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// HandleWS upgrades the request to a WebSocket and registers a new
// monitor session, identified by a uuid for log correlation.
func (m *Monitor) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sess := &monitorSession{id: uuid.NewString(), ws: ws}
	m.mu.Lock()
	m.sessions[sess.id] = sess
	m.mu.Unlock()

	log.Info().Str("session_id", sess.id).Str("remote_addr", r.RemoteAddr).Msg("monitor: session connected")

	go m.readUntilClose(sess)
}

func (m *Monitor) readUntilClose(sess *monitorSession) {
	defer func() {
		m.mu.Lock()
		delete(m.sessions, sess.id)
		m.mu.Unlock()
		sess.ws.Close()
		log.Info().Str("session_id", sess.id).Msg("monitor: session closed")
	}()

	for {
		// Dashboard clients never send anything meaningful; this loop
		// just detects disconnects and honors pings.
		if _, _, err := sess.ws.ReadMessage(); err != nil {
			return
		}
	}
}

// Run drains events and broadcasts each as JSON to every connected
// session, until events is closed.
func (m *Monitor) Run(events <-chan Event) {
	for evt := range events {
		payload, err := json.Marshal(evt)
		if err != nil {
			continue
		}
		m.broadcast(payload)
	}
}

func (m *Monitor) broadcast(payload []byte) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, sess := range m.sessions {
		sess.mu.Lock()
		_ = sess.ws.WriteMessage(websocket.TextMessage, payload)
		sess.mu.Unlock()
	}
}
