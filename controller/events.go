package controller

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"media-engine-backend/response"
)

const (
	eventWriteTimeout = 10 * time.Second
	eventPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// auth happens via the JWT middleware before the upgrade
	CheckOrigin: func(r *http.Request) bool { return true },
}

// MediaEvents streams processed-media events over a websocket. Each
// message is one MediaRecord in its post-processing state; only the
// caller's own records are forwarded.
func MediaEvents(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error(ErrEventStream.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrEventStream.Error(),
		})
		return
	}
	defer conn.Close()

	email := c.GetString("email")
	events, cancel := eventHub.Subscribe()
	defer cancel()

	// drain reads so close frames are processed
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	ticker := time.NewTicker(eventPingInterval)
	defer ticker.Stop()

	for {
		select {
		case rec, ok := <-events:
			if !ok {
				return
			}
			if rec.UserEmail != email {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
			if err := conn.WriteJSON(rec); err != nil {
				slog.Info("Event subscriber disconnected", "email", email, "err", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
