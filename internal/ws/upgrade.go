package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"servicehub/config"
	"servicehub/internal/auth"
	"servicehub/internal/domain"
	"servicehub/internal/models"
	"servicehub/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// BookingThread is the slice of the booking service the message socket needs.
type BookingThread interface {
	Get(ctx context.Context, actor domain.Actor, id uint) (*models.Booking, error)
	SendMessage(ctx context.Context, actor domain.Actor, id uint, text string) (*models.BookingMessage, error)
}

// authenticate resolves the token query parameter before the upgrade so failures are plain HTTP.
func authenticate(c *gin.Context, cfg *config.JWTConfig) (*auth.Claims, bool) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "token required"})
		return nil, false
	}
	claims, err := auth.ParseAccessToken(cfg, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
		return nil, false
	}
	return claims, true
}

// UpgradeNotificationsWS streams the caller's in-app notifications.
func UpgradeNotificationsWS(cfg *config.JWTConfig, hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := authenticate(c, cfg)
		if !ok {
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		client := NewClient(claims.UserID, claims.Role)
		hub.Register(client)
		defer client.Close()
		go writePump(client, conn)
		readPump(conn, nil)
	}
}

// UpgradeBookingMessagesWS joins the booking's room. Text frames from the socket are stored as
// messages and fanned out to the room through the service.
func UpgradeBookingMessagesWS(cfg *config.JWTConfig, hub *BookingHub, thread BookingThread) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := authenticate(c, cfg)
		if !ok {
			return
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid booking id"})
			return
		}
		actor := claims.Actor()
		bookingID := uint(id)
		if _, err := thread.Get(c.Request.Context(), actor, bookingID); err != nil {
			status := http.StatusForbidden
			if domain.KindOf(err) == domain.KindNotFound {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"message": domain.Message(err)})
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		client := NewClient(claims.UserID, claims.Role)
		hub.Join(bookingID, client)
		defer hub.Leave(client)
		go writePump(client, conn)
		readPump(conn, func(data []byte) {
			var in struct {
				Text string `json:"text"`
			}
			if err := json.Unmarshal(data, &in); err != nil {
				in.Text = string(data)
			}
			if _, err := thread.SendMessage(context.Background(), actor, bookingID, in.Text); err != nil {
				b, _ := json.Marshal(gin.H{"type": "error", "message": domain.Message(err)})
				client.deliver(b)
				if domain.KindOf(err) == domain.KindUnexpected {
					logger.Get().Error("ws", err.Error(), "UpgradeBookingMessagesWS", strconv.FormatUint(id, 10))
				}
			}
		})
	}
}

// writePump copies messages from client.Send to the connection.
func writePump(c *Client, conn *websocket.Conn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func readPump(conn *websocket.Conn, onText func([]byte)) {
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if kind == websocket.TextMessage && onText != nil {
			onText(data)
		}
	}
}
