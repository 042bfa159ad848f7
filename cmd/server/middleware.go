package main

import (
	"fmt"
	"time"

	apierrors "codeberg.org/forgeui/server/internal/errors"
	"codeberg.org/forgeui/server/internal/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	limiter "github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// allows the configured origins, or any origin when none are configured
func CORSMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", "X-RateLimit-Remaining"},
		MaxAge:        12 * time.Hour,
	}

	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}

	return cors.New(cfg)
}

// limits requests per client IP; formatted is a ulule rate such as "20-M"
func RateLimitMiddleware(formatted string) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", formatted, err)
	}

	instance := limiter.New(memory.NewStore(), rate)

	return mgin.NewMiddleware(instance,
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			apierrors.TooManyRequests(c, "too many generation requests, try again later")
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			logger.ErrorErr(err, "rate limiter failed", "path", c.Request.URL.Path)
			c.Next()
		}),
	), nil
}
