package websocket

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/forgeui/server/internal/sessions"
	ws "codeberg.org/forgeui/server/internal/websocket"
)

func RegisterRoutes(router *gin.RouterGroup, hub *ws.Hub, sessionMgr *sessions.Manager) {
	router.GET("/ws", WebSocketHandler(hub, sessionMgr))
}
