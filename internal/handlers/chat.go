package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"os"

	"hallway/internal/apperr"
	"hallway/internal/chat"
	"hallway/internal/db"
	"hallway/internal/models"
	"hallway/internal/services"
	"hallway/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const historyLimit = 50

type ChatHandler struct {
	hub      *chat.Hub
	filter   *services.Filter
	upgrader websocket.Upgrader
}

func NewChatHandler(hub *chat.Hub) *ChatHandler {
	return &ChatHandler{
		hub:    hub,
		filter: services.GetFilter(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// checkOrigin accepts same-host requests and the configured SPA origin.
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if allowed := os.Getenv("ALLOWED_ORIGIN"); allowed != "" && origin == allowed {
		return true
	}
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}

// Rooms lists the available chat rooms.
func (h *ChatHandler) Rooms(c *gin.Context) {
	var rooms []models.Room
	db.DB.Order("id ASC").Find(&rooms)
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// History returns the room's last 50 messages in chronological order.
func (h *ChatHandler) History(c *gin.Context) {
	room, err := h.findRoom(c.Param("room"))
	if err != nil {
		WriteError(c, err)
		return
	}

	var messages []models.ChatMessage
	db.DB.Where("room_id = ?", room.ID).
		Order("created_at DESC").
		Limit(historyLimit).
		Find(&messages)

	// Reverse to chronological
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	c.JSON(http.StatusOK, gin.H{"room": room, "messages": messages})
}

type inboundChatMessage struct {
	Body string `json:"body"`
}

// Serve upgrades the connection and joins the room's live feed. Inbound
// messages are filter-gated and persisted before fan-out; closing the
// connection cancels the subscription with no further delivery.
func (h *ChatHandler) Serve(c *gin.Context) {
	currentUser := mustCurrentUser(c)

	room, err := h.findRoom(c.Param("room"))
	if err != nil {
		WriteError(c, err)
		return
	}

	displayName := currentUser.Username
	if room.Kind == models.RoomKindAnon {
		// One anonymous name per connection, original behavior
		displayName = utils.RandomAnonName()
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Websocket upgrade failed for room %s: %v", room.Name, err)
		return
	}

	clientID, err := h.hub.Subscribe(room.ID, conn)
	if err != nil {
		conn.Close()
		return
	}
	defer h.hub.Unsubscribe(room.ID, clientID)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var in inboundChatMessage
		if err := json.Unmarshal(data, &in); err != nil || in.Body == "" {
			continue
		}

		if clean, reason := h.filter.Check(in.Body); !clean {
			h.writeControl(conn, gin.H{"error": reason})
			continue
		}

		msg := models.ChatMessage{
			RoomID:      room.ID,
			UserID:      currentUser.ID,
			DisplayName: displayName,
			Body:        in.Body,
		}
		if err := db.DB.Create(&msg).Error; err != nil {
			log.Printf("Failed to persist chat message in room %s: %v", room.Name, err)
			h.writeControl(conn, gin.H{"error": "message not delivered"})
			continue
		}

		h.hub.Broadcast(room.ID, chat.Message{
			ID:          msg.ID,
			RoomID:      msg.RoomID,
			DisplayName: msg.DisplayName,
			Body:        msg.Body,
			CreatedAt:   msg.CreatedAt,
		})
	}
}

// writeControl sends a direct (non-broadcast) notice to one connection.
func (h *ChatHandler) writeControl(conn *websocket.Conn, payload gin.H) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = conn.WriteMessage(websocket.TextMessage, data)
}

func (h *ChatHandler) findRoom(name string) (*models.Room, error) {
	var room models.Room
	if err := db.DB.Where("name = ?", name).First(&room).Error; err != nil {
		return nil, apperr.NotFound("room not found")
	}
	return &room, nil
}
