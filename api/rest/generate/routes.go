package generate

import (
	"time"

	"codeberg.org/forgeui/server/internal/generator"
	"codeberg.org/forgeui/server/internal/sessions"
	"github.com/gin-gonic/gin"
)

// registers generation and preview routes. rateLimit guards the routes that
// call the generation service
func RegisterRoutes(router *gin.RouterGroup, gen *generator.Generator, sessionMgr *sessions.Manager, timeout time.Duration, rateLimit gin.HandlerFunc) {
	router.POST("/generate", rateLimit, Handler(gen, sessionMgr, timeout))
	router.POST("/restyle", rateLimit, RestyleHandler(gen, sessionMgr, timeout))
	router.POST("/extract", ExtractHandler)
	router.POST("/preview", PreviewHandler(gen))
	router.POST("/preview/document", DocumentHandler(gen))
}
