/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/Seednode/higherlower/games/higherlower"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	sendBuffer     = 64
	maxMessageSize = 8 << 10
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
)

// outbound is the frame every engine event is wrapped in.
type outbound struct {
	Type higherlower.EventName `json:"type"`
	Data any                   `json:"data,omitempty"`
}

type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks every open websocket and which session codes each one listens
// to. It implements higherlower.Broadcaster. Delivery never blocks: a client
// whose buffer is full is dropped and its connection closed by the write pump.
type Hub struct {
	cfg *Config

	mu      sync.Mutex
	clients map[string]*Client
	groups  map[string]map[string]struct{}
}

func newHub(cfg *Config) *Hub {
	return &Hub{
		cfg:     cfg,
		clients: make(map[string]*Client),
		groups:  make(map[string]map[string]struct{}),
	}
}

func (h *Hub) register(conn *websocket.Conn) *Client {
	c := &Client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	return c
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropLocked(c)
}

// dropLocked removes c from the hub and every group, closing its send
// channel exactly once.
func (h *Hub) dropLocked(c *Client) {
	if _, ok := h.clients[c.id]; !ok {
		return
	}

	delete(h.clients, c.id)
	close(c.send)

	for code, members := range h.groups {
		delete(members, c.id)
		if len(members) == 0 {
			delete(h.groups, code)
		}
	}
}

func (h *Hub) deliverLocked(c *Client, msg []byte) {
	select {
	case c.send <- msg:
	default:
		logf(h.cfg, "SERVE: Dropping slow connection %s", c.id)
		h.dropLocked(c)
	}
}

func (h *Hub) Subscribe(connID, code string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[connID]; !ok {
		return
	}

	members, ok := h.groups[code]
	if !ok {
		members = make(map[string]struct{})
		h.groups[code] = members
	}
	members[connID] = struct{}{}
}

func (h *Hub) Publish(code string, ev higherlower.Event) {
	msg, err := encodeEvent(ev)
	if err != nil {
		logf(h.cfg, "ERROR: Encoding %s for %s: %v", ev.Name, code, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for connID := range h.groups[code] {
		if c, ok := h.clients[connID]; ok {
			h.deliverLocked(c, msg)
		}
	}
}

func (h *Hub) Send(connID string, ev higherlower.Event) {
	msg, err := encodeEvent(ev)
	if err != nil {
		logf(h.cfg, "ERROR: Encoding %s for %s: %v", ev.Name, connID, err)
		return
	}

	h.sendRaw(connID, msg)
}

// Disband forgets the group for code. Members stay connected.
func (h *Hub) Disband(code string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.groups, code)
}

func (h *Hub) sendRaw(connID string, msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[connID]; ok {
		h.deliverLocked(c, msg)
	}
}

// reply encodes v and queues it for connID alone.
func (h *Hub) reply(connID string, v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		logf(h.cfg, "ERROR: Encoding reply for %s: %v", connID, err)
		return
	}

	h.sendRaw(connID, msg)
}

func encodeEvent(ev higherlower.Event) ([]byte, error) {
	return json.Marshal(outbound{Type: ev.Name, Data: ev.Data})
}

func newUpgrader(cfg *Config) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if cfg.origin == "*" {
				return true
			}

			origin := r.Header.Get("Origin")

			return origin == "" || origin == cfg.origin
		},
	}
}

func (c *Client) readPump(handle func(frame []byte)) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		handle(frame)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
