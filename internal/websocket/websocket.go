package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/contesttracker/tracker/internal/logger"
	"github.com/contesttracker/tracker/internal/models"
	"github.com/contesttracker/tracker/internal/session"
	"github.com/contesttracker/tracker/internal/viewstate"
)

// Message types
const (
	MsgState   = "state"
	MsgRefresh = "refresh"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// same-origin handshakes only
var upgrader = websocket.Upgrader{}

// envelope is a message addressed to one session, or to everyone when session is empty
type envelope struct {
	session string
	msg     models.WSMessage
}

// Hub maintains the set of active clients and routes state updates to the
// tabs of the session they belong to
type Hub struct {
	log        logger.Logger
	clients    map[*Client]bool
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	drop       chan string
	mutex      sync.RWMutex
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	session *session.Session
	send    chan models.WSMessage
}

// New creates a new Hub instance
func New(log logger.Logger) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan envelope, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		drop:       make(chan string),
	}
}

// Start begins the hub's main loop in a goroutine
func (h *Hub) Start() {
	go h.run()
}

// run handles client registration/unregistration and message routing
func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			// snapshot after registering so no later publish is missed
			client.send <- models.WSMessage{Type: MsgState, Payload: client.session.Store.Snapshot()}
			h.log.Debug("Client connected", "session", client.session.ID, "total_clients", total)

		case client := <-h.unregister:
			h.remove(client)

		case id := <-h.drop:
			h.mutex.RLock()
			var stale []*Client
			for client := range h.clients {
				if client.session.ID == id {
					stale = append(stale, client)
				}
			}
			h.mutex.RUnlock()
			for _, client := range stale {
				h.remove(client)
			}

		case env := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				if env.session != "" && client.session.ID != env.session {
					continue
				}
				select {
				case client.send <- env.msg:
				default:
					// Client's send channel is full, unregister
					go func(c *Client) {
						h.unregister <- c
					}(client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mutex.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mutex.Unlock()
	h.log.Debug("Client disconnected", "session", client.session.ID, "total_clients", total)
}

// BroadcastMessage sends a message to every connected client
func (h *Hub) BroadcastMessage(msgType string, payload interface{}) {
	h.broadcast <- envelope{msg: models.WSMessage{Type: msgType, Payload: payload}}
}

// SendToSession sends a message to the clients of one session
func (h *Hub) SendToSession(sessionID, msgType string, payload interface{}) {
	h.broadcast <- envelope{
		session: sessionID,
		msg:     models.WSMessage{Type: msgType, Payload: payload},
	}
}

// PublishState pushes a state snapshot to the tabs of one session
func (h *Hub) PublishState(sessionID string, st viewstate.State) {
	h.SendToSession(sessionID, MsgState, st)
}

// DropSession disconnects every client of an expired session
func (h *Hub) DropSession(sessionID string) {
	h.drop <- sessionID
}

// ClientCount returns the number of connected clients of a session
func (h *Hub) ClientCount(sessionID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	n := 0
	for client := range h.clients {
		if client.session.ID == sessionID {
			n++
		}
	}
	return n
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket error", "error", err)
			}
			break
		}

		var msg models.WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.hub.log.Debug("Ignoring malformed message", "error", err)
			continue
		}
		c.hub.log.Debug("Received message", "type", msg.Type)
		if msg.Type == MsgRefresh {
			c.hub.PublishState(c.session.ID, c.session.Store.Snapshot())
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			msgBytes, _ := json.Marshal(message)
			w.Write(msgBytes)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs upgrades a request carrying a session and starts streaming its state.
// The first message is always the current snapshot.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade error", "error", err)
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		session: sess,
		send:    make(chan models.WSMessage, 256),
	}
	h.register <- client

	// Allow collection of memory referenced by the caller by doing all work in new goroutines
	go client.writePump()
	go client.readPump()
}
