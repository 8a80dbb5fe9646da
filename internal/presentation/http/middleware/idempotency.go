package middleware

import (
	"bytes"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-api/internal/domain/repository"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotentReplayHeader marks a response served from the key store
	IdempotentReplayHeader = "X-Idempotency-Replayed"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
	// ScopeParam names the path parameter keys are scoped to. Defaults to "id",
	// the billing session.
	ScopeParam string
	// Required rejects requests without a key
	Required bool
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response when a submit is retried with a
// key that already produced a successful bill. Failed attempts are not
// stored, so the cashier can retry them with the same key.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	param := cfg.ScopeParam
	if param == "" {
		param = "id"
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			if cfg.Required {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"success": false,
					"message": "Idempotency-Key header is required for this request",
				})
				return
			}
			c.Next()
			return
		}
		scope := c.Param(param)
		if id, err := uuid.Parse(scope); err == nil {
			scope = id.String()
		}
		ctx := c.Request.Context()

		existing, err := cfg.Repo.GetByKey(ctx, key, scope)
		if err != nil {
			log.Printf("Warning: idempotency lookup failed for %s: %v", scope, err)
			c.Next()
			return
		}
		if existing != nil && !existing.IsExpired() {
			c.Header(IdempotentReplayHeader, "true")
			c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		blw := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		ikey := &entity.IdempotencyKey{
			Key:          key,
			Scope:        scope,
			Endpoint:     c.Request.Method + " " + c.FullPath(),
			ResponseCode: status,
			ResponseBody: blw.body.String(),
			ExpiresAt:    time.Now().Add(IdempotencyKeyTTL),
		}
		if err := cfg.Repo.Create(ctx, ikey); err != nil {
			log.Printf("Warning: failed to store idempotency key for %s: %v", scope, err)
		}
	}
}
