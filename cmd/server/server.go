package main

import (
	"fmt"

	"codeberg.org/forgeui/server/internal/config"
	"codeberg.org/forgeui/server/internal/logger"
	"codeberg.org/forgeui/server/internal/sessions"
	ws "codeberg.org/forgeui/server/internal/websocket"
	"github.com/gin-gonic/gin"
)

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	services, err := InitializeServices(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	rateLimit, err := RateLimitMiddleware(cfg.RateLimit)
	if err != nil {
		return nil, err
	}

	sessionMgr := sessions.NewManager(cfg.SessionTTL)

	hub := ws.NewHub()

	hub.RegisterHandler(ws.TypeGenerate, ws.GenerateHandler(services.Generator, sessionMgr, cfg.GenerationTimeout))
	hub.RegisterHandler(ws.TypeCancel, ws.CancelHandler(sessionMgr))
	hub.RegisterHandler(ws.TypePing, ws.PingHandler())

	// nobody is left to receive the result of a run in flight
	hub.OnSessionEmpty(func(sessionID string) {
		if sessionMgr.Cancel(sessionID) {
			logger.Info("cancelled generation of abandoned session",
				"session_id", sessionID,
			)
		}
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	server := &Server{
		config:     cfg,
		services:   services,
		sessionMgr: sessionMgr,
		hub:        hub,
		router:     router,
	}

	RegisterRoutes(router, server, rateLimit)

	logger.Info("server configured",
		"provider", services.LLM.Provider(),
		"base_url", services.LLM.BaseURL(),
		"model", services.Generator.DefaultModel(),
		"rate_limit", cfg.RateLimit,
	)

	return server, nil
}
