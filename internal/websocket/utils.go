package websocket

import (
	"net/http"
	"os"
	"slices"
	"strings"

	"codeberg.org/forgeui/server/internal/logger"
	"github.com/google/uuid"
)

func getAllowedWebSocketOrigins() []string {
	if envOrigins := os.Getenv("ALLOWED_ORIGINS"); envOrigins != "" {
		origins := strings.Split(envOrigins, ",")

		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}

		return origins
	}

	return []string{}
}

func CheckOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	env := os.Getenv("ENVIRONMENT")

	if env != "production" {
		return true
	}

	if origin == "" {
		// terminal clients send no origin header
		return true
	}

	// production: validate against allowed origins
	allowedOrigins := getAllowedWebSocketOrigins()

	if len(allowedOrigins) == 0 {
		logger.Warn("websocket origin rejected - ALLOWED_ORIGINS not configured",
			"origin", origin,
		)
		return false
	}

	if slices.Contains(allowedOrigins, origin) {
		return true
	}

	logger.Warn("websocket origin rejected - not in allowed origins",
		"origin", origin,
		"allowed_origins", allowedOrigins,
	)

	return false
}

func GenerateClientID() string {
	return uuid.NewString()
}
