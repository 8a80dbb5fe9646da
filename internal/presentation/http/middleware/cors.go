package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pharmacy-api/internal/config"
)

var (
	defaultOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	defaultMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	defaultHeaders = []string{"Accept", "Content-Type", "Origin", RequestIDHeader, IdempotencyKeyHeader}
)

// CORSMiddleware lets the billing front end call the API from the browser
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	headers := orDefault(cfg.AllowedHeaders, defaultHeaders)
	if !contains(headers, IdempotencyKeyHeader) {
		headers = append(headers, IdempotencyKeyHeader)
	}

	return cors.New(cors.Config{
		AllowOrigins: orDefault(cfg.AllowedOrigins, defaultOrigins),
		AllowMethods: orDefault(cfg.AllowedMethods, defaultMethods),
		AllowHeaders: headers,
		// downloads name their file in Content-Disposition
		ExposeHeaders: []string{"Content-Length", "Content-Type", "Content-Disposition", RequestIDHeader, IdempotentReplayHeader},
		MaxAge:        12 * time.Hour,
	})
}

func orDefault(values, def []string) []string {
	if len(values) == 0 {
		return append([]string(nil), def...)
	}
	return append([]string(nil), values...)
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
