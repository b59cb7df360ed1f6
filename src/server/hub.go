package server

import (
	"encoding/json"
	"net/http"

	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *DashboardServer) handleWebsockets() {
	for {
		select {
		case <-s.quit:
			// Shutdown: drop every client, leave the channels open so a
			// late registration never hits a closed channel.
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			s.connCount.Store(0)
			return

		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.connCount.Store(int64(len(s.clients)))

			// Send initial state on connect
			initial := s.Store.Snapshot()
			client.send <- &initial

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
				s.connCount.Store(int64(len(s.clients)))
			}

		case message := <-s.broadcast:
			// Broadcast to all clients
			for client := range s.clients {
				select {
				case client.send <- message:
					// Message sent successfully
				default:
					// Client too slow, disconnect to prevent Hub blocking
					delete(s.clients, client)
					close(client.send)
				}
			}
			s.connCount.Store(int64(len(s.clients)))
		}
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// Broadcast - queues a fresh state copy for all connected clients. The state
// handed in is already a deep copy, so the Hub never shares memory with the
// engine tick that produced it.
func (s *DashboardServer) Broadcast(st models.MDashboardState) {
	// Non-blocking send: with a full buffer the oldest pending update is
	// already stale, dropping the new one for a cycle is harmless.
	select {
	case s.broadcast <- &st:
	default:
		s.Logger.Warning("Broadcast queue full, dropping state update")
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan *models.MDashboardState, 256),
	}

	select {
	case s.register <- client:
	case <-s.quit:
		// Upgrade landed during shutdown; the Hub is gone.
		conn.Close()
		return
	}

	// Start goroutines for reading/writing
	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage services on-demand refresh commands. Anything
// unparseable disconnects the client.
func (s *DashboardServer) HandleClientMessage(client *Client, message []byte) {
	var cmd struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	if cmd.Command != "refresh" {
		return
	}

	current := s.Store.Snapshot()
	select {
	case client.send <- &current:
	default:
		// Client buffer full; the next broadcast will catch it up anyway.
	}
}
