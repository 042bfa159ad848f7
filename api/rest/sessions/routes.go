package sessions

import (
	"codeberg.org/forgeui/server/internal/sessions"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, sessionMgr *sessions.Manager) {
	router.POST("/sessions", CreateHandler(sessionMgr))
	router.GET("/sessions/:id/history", HistoryHandler(sessionMgr))
	router.DELETE("/sessions/:id/history", ClearHandler(sessionMgr))
	router.GET("/sessions/:id/history/:entry", EntryHandler(sessionMgr))
	router.GET("/sessions/:id/history/:entry/download", DownloadHandler(sessionMgr))
}
