package health

import (
	"codeberg.org/forgeui/server/internal/llm"
	"github.com/gin-gonic/gin"
)

// registers ping and status routes; /health is mounted on the root router
func RegisterRoutes(router *gin.RouterGroup, client llm.Client) {
	router.GET("/ping", PingHandler)
	router.GET("/status", StatusHandler(client))
}
