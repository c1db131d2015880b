package handlers

import (
	"net/http"
	"time"

	"cache-viewer/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is already handled at Gin level; allow upgrade from any origin here
		return true
	},
}

// Stream handles GET /ws
// It upgrades the connection and pushes the current snapshot, then every newer one.
// Intermediate snapshots are skipped when the peer reads slowly.
func (h *GatewayHandler) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade error")
		return
	}

	sub := realtime.NewSubscription()
	unsubscribe := h.snapshots.Subscribe(sub)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.pump(conn, sub)
	}()
	defer func() {
		unsubscribe()
		sub.Close()
		<-done
		_ = conn.Close()
	}()

	// Reader loop: drain messages and keep connection alive via pong handler
	conn.SetReadLimit(1024)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// pump writes snapshots and heartbeats until the subscription closes or a write fails.
func (h *GatewayHandler) pump(conn *websocket.Conn, sub *realtime.Subscription) {
	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case snap, ok := <-sub.C():
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "viewer shutting down"),
					time.Now().Add(writeWait))
				_ = conn.Close()
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(snap.View()); err != nil {
				h.log.Debug().Err(err).Msg("websocket write failed")
				_ = conn.Close()
				return
			}
		case <-pingTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeWait)); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}
