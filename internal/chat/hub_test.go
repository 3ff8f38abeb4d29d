package chat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialHub spins up a websocket endpoint that subscribes every incoming
// connection to roomID, and returns a connected client plus its subscriber id.
func dialHub(t *testing.T, hub *Hub, roomID uint) (*websocket.Conn, uuid.UUID) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	idCh := make(chan uuid.UUID, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		id, err := hub.Subscribe(roomID, conn)
		if err != nil {
			t.Errorf("subscribe failed: %v", err)
			return
		}
		idCh <- id
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	select {
	case id := <-idCh:
		return client, id
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for subscription")
		return nil, uuid.Nil
	}
}

func TestHubBroadcastReachesSubscribers(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()

	first, _ := dialHub(t, hub, 1)
	second, _ := dialHub(t, hub, 1)
	require.Equal(t, 2, hub.Count(1))

	sent := Message{ID: 7, RoomID: 1, DisplayName: "SwiftFox", Body: "hello room"}
	hub.Broadcast(1, sent)

	for _, client := range []*websocket.Conn{first, second} {
		client.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := client.ReadMessage()
		require.NoError(t, err)

		var got Message
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, sent.Body, got.Body)
		assert.Equal(t, sent.DisplayName, got.DisplayName)
	}
}

func TestHubRoomsAreIsolated(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()

	inRoom, _ := dialHub(t, hub, 1)
	otherRoom, _ := dialHub(t, hub, 2)

	hub.Broadcast(1, Message{RoomID: 1, Body: "only room one"})

	inRoom.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := inRoom.ReadMessage()
	require.NoError(t, err)

	otherRoom.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err = otherRoom.ReadMessage()
	assert.Error(t, err, "message must not leak into another room")
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()

	client, clientID := dialHub(t, hub, 1)

	// Unsubscribe blocks until applied, so the count is already down
	hub.Unsubscribe(1, clientID)
	require.Equal(t, 0, hub.Count(1))

	hub.Broadcast(1, Message{RoomID: 1, Body: "after unsubscribe"})

	// The hub closed the connection on unsubscribe; any read outcome other
	// than this payload is acceptable, delivery is not.
	client.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	_, data, err := client.ReadMessage()
	if err == nil {
		assert.NotContains(t, string(data), "after unsubscribe")
	}
}

func TestHubStop(t *testing.T) {
	hub := NewHub()

	client, _ := dialHub(t, hub, 1)
	hub.Stop()

	// Subscribers were disconnected
	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := client.ReadMessage()
	assert.Error(t, err)

	// The hub keeps answering without blocking after shutdown
	hub.Stop()
	assert.Equal(t, 0, hub.Count(1))
	hub.Broadcast(1, Message{RoomID: 1, Body: "into the void"})
	hub.Unsubscribe(1, uuid.New())

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		_, err = hub.Subscribe(1, conn)
		assert.Error(t, err, "subscribing to a stopped hub must fail")
		conn.Close()
	}))
	defer server.Close()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	conn.Close()
}

func TestHubCount(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()

	assert.Equal(t, 0, hub.Count(1))
	dialHub(t, hub, 1)
	assert.Equal(t, 1, hub.Count(1))
}
