package health

import (
	"context"
	"net/http"
	"time"

	"codeberg.org/forgeui/server/internal/llm"
	"codeberg.org/forgeui/server/internal/logger"
	"github.com/gin-gonic/gin"
)

// how long the status probe waits for the generation service
const statusProbeTimeout = 5 * time.Second

// returns the server health status
func Handler(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Status:  "healthy",
		Service: "forgeui",
		Version: "1.0.0",
	})
}

// responds with pong for testing
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{
		Message: "pong",
	})
}

// reports whether the generation service answers
func StatusHandler(client llm.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), statusProbeTimeout)
		defer cancel()

		connected := client.CheckAvailability(ctx)
		if !connected {
			logger.Warn("generation service unreachable",
				"provider", client.Provider(),
				"base_url", client.BaseURL(),
			)
		}

		c.JSON(http.StatusOK, StatusResponse{
			Connected: connected,
			Provider:  string(client.Provider()),
			BaseURL:   client.BaseURL(),
		})
	}
}
