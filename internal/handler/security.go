package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/wickandwax/storefront/internal/domain/auth"
)

// apiKeyHeader carries the raw admin API key.
const apiKeyHeader = "X-API-Key"

// APIKeyAuth authenticates back-office requests. The raw key is hashed with
// the server pepper and looked up; the stored hash is re-compared in constant
// time before the scope check.
func APIKeyAuth(keys auth.Repository, pepper []byte, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(apiKeyHeader)
		if raw == "" {
			respondError(c, http.StatusUnauthorized, "missing API key")
			c.Abort()
			return
		}

		hash := auth.HashKey(raw, pepper)
		info, err := keys.FindByHash(c.Request.Context(), hash)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "invalid API key")
			c.Abort()
			return
		}
		if subtle.ConstantTimeCompare([]byte(info.KeyHash), []byte(hash)) != 1 {
			respondError(c, http.StatusUnauthorized, "invalid API key")
			c.Abort()
			return
		}
		if !info.HasScope(scope) {
			zctx.From(c.Request.Context()).Info("API key lacks scope",
				zap.String("key", info.Name),
				zap.String("scope", scope),
			)
			respondError(c, http.StatusForbidden, "insufficient scope")
			c.Abort()
			return
		}

		c.Next()
	}
}
