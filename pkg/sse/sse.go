package sse

import (
	"io"
	"log"
	"sync"

	"github.com/gin-gonic/gin"
)

// Event is one server-sent event destined for a user's clients
type Event struct {
	Name    string
	Payload interface{}
}

type client struct {
	userID string
	ch     chan Event
}

// Manager fans events out to connected clients per user. A user may
// hold several connections (multiple tabs/devices).
type Manager struct {
	register   chan *client
	unregister chan *client
	events     chan userEvent

	mu      sync.RWMutex
	clients map[string]map[*client]bool
}

type userEvent struct {
	userID string
	event  Event
}

// NewManager creates a new SSE manager
func NewManager() *Manager {
	return &Manager{
		register:   make(chan *client),
		unregister: make(chan *client),
		events:     make(chan userEvent, 256),
		clients:    make(map[string]map[*client]bool),
	}
}

// Run processes registration and event traffic. Call in a goroutine.
func (m *Manager) Run() {
	for {
		select {
		case c := <-m.register:
			m.mu.Lock()
			if m.clients[c.userID] == nil {
				m.clients[c.userID] = make(map[*client]bool)
			}
			m.clients[c.userID][c] = true
			m.mu.Unlock()

		case c := <-m.unregister:
			m.mu.Lock()
			if conns, ok := m.clients[c.userID]; ok {
				if conns[c] {
					delete(conns, c)
					close(c.ch)
				}
				if len(conns) == 0 {
					delete(m.clients, c.userID)
				}
			}
			m.mu.Unlock()

		case ue := <-m.events:
			m.mu.RLock()
			for c := range m.clients[ue.userID] {
				select {
				case c.ch <- ue.event:
				default:
					// Slow client, drop the event rather than block the loop
				}
			}
			m.mu.RUnlock()
		}
	}
}

// SendToUser publishes an event to every connection of the user
func (m *Manager) SendToUser(userID, event string, payload interface{}) {
	select {
	case m.events <- userEvent{userID: userID, event: Event{Name: event, Payload: payload}}:
	default:
		log.Printf("[SSE] Event queue full, dropping %s for user %s", event, userID)
	}
}

// ServeHTTP streams events to one client connection
func (m *Manager) ServeHTTP(c *gin.Context, userID string) {
	conn := &client{
		userID: userID,
		ch:     make(chan Event, 16),
	}
	m.register <- conn
	defer func() { m.unregister <- conn }()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-conn.ch:
			if !ok {
				return false
			}
			c.SSEvent(event.Name, event.Payload)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
