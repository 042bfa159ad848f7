package main

import (
	"codeberg.org/forgeui/server/internal/config"
	"codeberg.org/forgeui/server/internal/generator"
	"codeberg.org/forgeui/server/internal/llm"
	"codeberg.org/forgeui/server/internal/sessions"
	ws "codeberg.org/forgeui/server/internal/websocket"
	"github.com/gin-gonic/gin"
)

// holds all dependencies and state for the API server
type Server struct {
	config     *config.Config
	services   *Services
	sessionMgr *sessions.Manager
	hub        *ws.Hub
	router     *gin.Engine
}

// holds the generation service client and the pipeline built on it
type Services struct {
	LLM       llm.Client
	Generator *generator.Generator
}
