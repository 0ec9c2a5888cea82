package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/llmhive/llmhive/internal/config"
)

// handleDiagnostics serves GET /v1/status/diagnostics/config, exposing
// only secret presence booleans and never a secret value (spec.md §6,
// §7 "no error path may leak provider secrets").
func (s *Server) handleDiagnostics(c *gin.Context) {
	d := config.Snapshot()
	c.JSON(http.StatusOK, DiagnosticsResponse{
		ProvidersLoaded: d.ProvidersLoaded,
		ProviderCount:   d.ProviderCount,
		IsValid:         d.IsValid,
		Warnings:        d.Warnings,
		Timestamp:       d.Timestamp.Format(time.RFC3339),
	})
}
