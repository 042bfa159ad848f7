package catalog

import (
	"context"
	"net/http"
	"time"

	"codeberg.org/forgeui/server/internal/generator"
	"codeberg.org/forgeui/server/internal/llm"
	"codeberg.org/forgeui/server/internal/logger"
	"codeberg.org/forgeui/server/internal/technology"
	"github.com/gin-gonic/gin"
)

const listModelsTimeout = 10 * time.Second

// lists available models. an unreachable service yields an empty list so
// clients can still fall back to the default model
func ModelsHandler(client llm.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), listModelsTimeout)
		defer cancel()

		response := ModelsResponse{Models: []ModelInfo{}}

		models, err := client.ListModels(ctx)
		if err != nil {
			logger.Warn("failed to list models",
				"provider", client.Provider(),
				"error", err,
			)

			c.JSON(http.StatusOK, response)
			return
		}

		for _, m := range models {
			response.Models = append(response.Models, ModelInfo{
				Name:       m.Name,
				Size:       m.Size,
				ModifiedAt: m.ModifiedAt,
			})
		}

		c.JSON(http.StatusOK, response)
	}
}

// lists supported technologies in display order
func TechnologiesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, TechnologiesResponse{
		Technologies: technology.All(),
		Default:      technology.Default,
	})
}

// lists example prompts
func ExamplesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, ExamplesResponse{
		Examples: generator.Examples(),
	})
}
