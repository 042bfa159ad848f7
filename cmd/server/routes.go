package main

import (
	"codeberg.org/forgeui/server/api/rest/catalog"
	"codeberg.org/forgeui/server/api/rest/generate"
	"codeberg.org/forgeui/server/api/rest/health"
	"codeberg.org/forgeui/server/api/rest/sessions"
	"codeberg.org/forgeui/server/api/websocket"
	"github.com/gin-gonic/gin"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server, rateLimit gin.HandlerFunc) {
	router.Use(CORSMiddleware(server.config.AllowedOrigins))
	router.GET("/health", health.Handler)

	v1 := router.Group("/api/v1")

	{
		health.RegisterRoutes(v1, server.services.LLM)
		catalog.RegisterRoutes(v1, server.services.LLM)
		generate.RegisterRoutes(v1, server.services.Generator, server.sessionMgr, server.config.GenerationTimeout, rateLimit)
		sessions.RegisterRoutes(v1, server.sessionMgr)
		websocket.RegisterRoutes(v1, server.hub, server.sessionMgr)
	}
}
