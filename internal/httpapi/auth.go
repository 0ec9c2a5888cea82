package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/llmhive/llmhive/internal/config"
)

// apiKeyHeader is the header name the secrets contract recognises for
// inbound authentication (spec.md §6: "header X-API-Key for
// authentication when configured").
const apiKeyHeader = "X-API-Key"

// AuthMiddleware enforces the X-API-Key header when API_KEY is
// configured in the environment. When API_KEY is absent the engine is
// running unauthenticated (e.g. local development), and every request
// passes through untouched, matching the secrets contract's
// "never fabricated" posture: an unset secret never causes a 401 that
// implies a key exists when it doesn't.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		want, configured := config.Secret(config.SecretInboundAPIKey)
		if !configured {
			c.Next()
			return
		}
		got := c.GetHeader(apiKeyHeader)
		if got == "" || got != want {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid " + apiKeyHeader})
			return
		}
		c.Next()
	}
}
