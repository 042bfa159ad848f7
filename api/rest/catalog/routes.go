package catalog

import (
	"codeberg.org/forgeui/server/internal/llm"
	"github.com/gin-gonic/gin"
)

// registers model, technology and example routes
func RegisterRoutes(router *gin.RouterGroup, client llm.Client) {
	router.GET("/models", ModelsHandler(client))
	router.GET("/technologies", TechnologiesHandler)
	router.GET("/examples", ExamplesHandler)
}
