package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig defines CORS configuration options.
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// DefaultCORSConfig returns the configuration for a browser-hosted editor
// talking to the playground API.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Accept",
			"Origin",
			"Cache-Control",
			"X-Requested-With",
			RequestIDHeader,
		},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
}

// CORSFromOrigins returns the default configuration restricted to origins.
// Credentials are only allowed when no wildcard origin is present.
func CORSFromOrigins(origins []string) CORSConfig {
	cfg := DefaultCORSConfig()
	if len(origins) == 0 {
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = !hasWildcard(origins)
	return cfg
}

// CORS creates a CORS middleware with the provided configuration.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	if hasWildcard(cfg.AllowOrigins) {
		return cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    cfg.AllowMethods,
			AllowHeaders:    cfg.AllowHeaders,
			ExposeHeaders:   cfg.ExposeHeaders,
			MaxAge:          cfg.MaxAge,
		})
	}
	return cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     cfg.AllowHeaders,
		ExposeHeaders:    cfg.ExposeHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})
}

func hasWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
