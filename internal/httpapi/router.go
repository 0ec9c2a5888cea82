package httpapi

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/llmhive/llmhive/internal/gateway"
	"github.com/llmhive/llmhive/internal/logging"
	"github.com/llmhive/llmhive/internal/orchestrator"
)

// Server wires an Orchestrator and a Gateway into a gin.Engine serving
// the three endpoints spec.md §6 names.
type Server struct {
	Orchestrator *orchestrator.Orchestrator
	Gateway      *gateway.Gateway
	Log          *logging.Logger

	engine *gin.Engine
}

// NewRouter builds the gin.Engine for s, registering middleware and
// routes. Split out from Server so tests can exercise the handlers
// directly against httptest without a running listener.
func (s *Server) NewRouter() *gin.Engine {
	if s.engine != nil {
		return s.engine
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("llmhive"))
	router.Use(s.requestLogger())

	v1 := router.Group("/v1")
	v1.Use(AuthMiddleware())
	{
		v1.POST("/chat", s.handleChat)
		v1.GET("/providers", s.handleProviders)
		status := v1.Group("/status")
		{
			status.GET("/diagnostics/config", s.handleDiagnostics)
		}
	}

	s.engine = router
	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if s.Log == nil {
			return
		}
		s.Log.InfoContext(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
		)
	}
}
