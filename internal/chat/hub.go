// Package chat fans chat-room messages out to live websocket subscribers.
//
// The hub is a single goroutine owning all subscription state; every mutation
// goes through its command channel, so no locks are needed and broadcasts
// within one room preserve order. Each subscriber gets a buffered writer
// goroutine; a subscriber that cannot keep up is evicted rather than allowed
// to stall the room.
package chat

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	maxClientsPerRoom = 100
	sendBuffer        = 16
	writeTimeout      = 5 * time.Second
)

// Message is the wire payload broadcast to a room.
type Message struct {
	ID          uint      `json:"id"`
	RoomID      uint      `json:"room_id"`
	DisplayName string    `json:"display_name"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}

// --- Command types ---

type hubCmd interface{ hubCmd() }

type cmdSubscribe struct {
	roomID  uint
	conn    *websocket.Conn
	replyCh chan subscribeReply
}

func (cmdSubscribe) hubCmd() {}

type subscribeReply struct {
	clientID uuid.UUID
	err      error
}

type cmdUnsubscribe struct {
	roomID   uint
	clientID uuid.UUID
	doneCh   chan struct{}
}

func (cmdUnsubscribe) hubCmd() {}

type cmdBroadcast struct {
	roomID uint
	data   []byte
}

func (cmdBroadcast) hubCmd() {}

type cmdCount struct {
	roomID  uint
	replyCh chan int
}

func (cmdCount) hubCmd() {}

type cmdStop struct{}

func (cmdStop) hubCmd() {}

// --- Per-connection writer ---

type clientWriter struct {
	conn   *websocket.Conn
	sendCh chan []byte
	done   chan struct{}
}

func newClientWriter(conn *websocket.Conn) *clientWriter {
	cw := &clientWriter{
		conn:   conn,
		sendCh: make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
	go cw.run()
	return cw
}

func (cw *clientWriter) run() {
	for {
		select {
		case msg, ok := <-cw.sendCh:
			if !ok {
				return
			}
			cw.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := cw.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-cw.done:
			return
		}
	}
}

func (cw *clientWriter) stop() {
	close(cw.done)
	cw.conn.Close()
}

// --- Hub ---

type Hub struct {
	cmdCh  chan hubCmd
	doneCh chan struct{} // closed once the command loop has shut down
	rooms  map[uint]map[uuid.UUID]*clientWriter
}

func NewHub() *Hub {
	hub := &Hub{
		cmdCh:  make(chan hubCmd, 256),
		doneCh: make(chan struct{}),
		rooms:  make(map[uint]map[uuid.UUID]*clientWriter),
	}
	go hub.run()
	return hub
}

func (h *Hub) run() {
	for cmd := range h.cmdCh {
		switch c := cmd.(type) {
		case cmdSubscribe:
			h.handleSubscribe(c)
		case cmdUnsubscribe:
			h.handleUnsubscribe(c.roomID, c.clientID)
			if c.doneCh != nil {
				close(c.doneCh)
			}
		case cmdBroadcast:
			h.handleBroadcast(c)
		case cmdCount:
			c.replyCh <- len(h.rooms[c.roomID])
		case cmdStop:
			h.handleStop()
			return
		}
	}
}

func (h *Hub) handleSubscribe(c cmdSubscribe) {
	clients, exists := h.rooms[c.roomID]
	if !exists {
		clients = make(map[uuid.UUID]*clientWriter)
		h.rooms[c.roomID] = clients
	}

	if len(clients) >= maxClientsPerRoom {
		log.Printf("Rejecting subscriber for room %d: max clients (%d) reached", c.roomID, maxClientsPerRoom)
		c.conn.Close()
		c.replyCh <- subscribeReply{err: fmt.Errorf("room %d is full", c.roomID)}
		return
	}

	clientID := uuid.New()
	clients[clientID] = newClientWriter(c.conn)
	log.Printf("Subscriber %s joined room %d (total: %d)", clientID, c.roomID, len(clients))
	c.replyCh <- subscribeReply{clientID: clientID}
}

func (h *Hub) handleUnsubscribe(roomID uint, clientID uuid.UUID) {
	clients, exists := h.rooms[roomID]
	if !exists {
		return
	}

	cw, exists := clients[clientID]
	if !exists {
		return
	}

	// stop() closes the writer before the client is removed from the map, so
	// nothing can be delivered after Unsubscribe returns.
	cw.stop()
	delete(clients, clientID)

	if len(clients) == 0 {
		delete(h.rooms, roomID)
	}
	log.Printf("Subscriber %s left room %d (remaining: %d)", clientID, roomID, len(clients))
}

func (h *Hub) handleBroadcast(c cmdBroadcast) {
	clients, exists := h.rooms[c.roomID]
	if !exists {
		return
	}

	var slow []uuid.UUID
	for clientID, cw := range clients {
		select {
		case cw.sendCh <- c.data:
		default:
			// client is not draining its buffer, mark for eviction
			slow = append(slow, clientID)
		}
	}

	for _, clientID := range slow {
		log.Printf("Evicting slow subscriber %s from room %d", clientID, c.roomID)
		h.handleUnsubscribe(c.roomID, clientID)
	}
}

func (h *Hub) handleStop() {
	for roomID, clients := range h.rooms {
		for _, cw := range clients {
			cw.stop()
		}
		delete(h.rooms, roomID)
	}
	close(h.doneCh)
}

// --- Public API ---

// Subscribe attaches conn to a room's live feed and returns the subscriber id
// used to cancel it. Fails once the hub is stopped.
func (h *Hub) Subscribe(roomID uint, conn *websocket.Conn) (uuid.UUID, error) {
	replyCh := make(chan subscribeReply, 1)
	select {
	case h.cmdCh <- cmdSubscribe{roomID: roomID, conn: conn, replyCh: replyCh}:
	case <-h.doneCh:
		return uuid.Nil, fmt.Errorf("hub is stopped")
	}
	select {
	case reply := <-replyCh:
		return reply.clientID, reply.err
	case <-h.doneCh:
		return uuid.Nil, fmt.Errorf("hub is stopped")
	}
}

// Unsubscribe cancels a subscription and blocks until the hub has applied it;
// no messages are delivered to the connection after it returns.
func (h *Hub) Unsubscribe(roomID uint, clientID uuid.UUID) {
	doneCh := make(chan struct{})
	select {
	case h.cmdCh <- cmdUnsubscribe{roomID: roomID, clientID: clientID, doneCh: doneCh}:
	case <-h.doneCh:
		return
	}
	select {
	case <-doneCh:
	case <-h.doneCh:
	}
}

// Broadcast delivers msg to every current subscriber of the room.
func (h *Hub) Broadcast(roomID uint, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal chat message: %v", err)
		return
	}
	select {
	case h.cmdCh <- cmdBroadcast{roomID: roomID, data: data}:
	case <-h.doneCh:
	}
}

// Count returns the number of live subscribers in a room, 0 once stopped.
func (h *Hub) Count(roomID uint) int {
	replyCh := make(chan int, 1)
	select {
	case h.cmdCh <- cmdCount{roomID: roomID, replyCh: replyCh}:
	case <-h.doneCh:
		return 0
	}
	select {
	case n := <-replyCh:
		return n
	case <-h.doneCh:
		return 0
	}
}

// Stop disconnects everyone and shuts the hub down. Safe to call more than
// once; returns after the command loop has exited.
func (h *Hub) Stop() {
	select {
	case h.cmdCh <- cmdStop{}:
	case <-h.doneCh:
		return
	}
	<-h.doneCh
}
