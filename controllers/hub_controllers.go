package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/karaokehub/songbot/hub"
	"github.com/karaokehub/songbot/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HubController upgrades admin dashboard connections onto the order-event
// feed.
type HubController struct {
	Hub *hub.Hub
}

func NewHubController(h *hub.Hub) *HubController {
	return &HubController{Hub: h}
}

func (hc *HubController) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("hub: upgrade failed: %v", err)
		return
	}
	hc.Hub.Register(conn)

	// Drain (and discard) client frames so pings are answered; unregister
	// on the first read error.
	go func() {
		defer hc.Hub.Unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
