package handlers

// live.go upgrades /api/v1/live/... requests to WebSockets and streams newly
// recorded scores from the hub to the browser.

import (
	ws "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/trentd187/discgolf/internal/websocket"
)

// liveTopicKey is the c.Locals key the resolved topic travels under into the WebSocket handler.
const liveTopicKey = "liveTopic"

// RequireUpgrade rejects plain HTTP requests on live routes and resolves the topic
// from the :id parameter before the connection is upgraded, so bad ids get a normal
// 400 instead of a dropped socket.
func RequireUpgrade(topicFor func(uuid.UUID) string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !ws.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		id, err := pathID(c)
		if err != nil {
			return err
		}
		c.Locals(liveTopicKey, topicFor(id))
		return c.Next()
	}
}

// Live returns the WebSocket handler that subscribes the connection to its topic.
// Messages flow one way (server to client); anything the client sends is read and
// discarded so that a close frame is noticed.
func Live(hub *websocket.Hub) fiber.Handler {
	return ws.New(func(conn *ws.Conn) {
		topic, _ := conn.Locals(liveTopicKey).(string)
		client := websocket.NewClient(topic)
		hub.Register(client)
		defer hub.Unregister(client)

		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					hub.Unregister(client)
					return
				}
			}
		}()

		// Send is closed by the hub on unregister or shutdown, which ends this loop.
		for msg := range client.Send {
			if err := conn.WriteMessage(ws.TextMessage, msg); err != nil {
				return
			}
		}
	})
}
