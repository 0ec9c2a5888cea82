package httpapi

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/llmhive/llmhive/internal/config"
)

// handleProviders serves GET /v1/providers: which provider backends
// are actually registered on the Gateway (not merely which secrets are
// present), each with its rate-limit ceiling and the circuit-breaker
// state of every model of that provider that has taken traffic so far
// (SPEC_FULL.md "Provider discovery response shape").
func (s *Server) handleProviders(c *gin.Context) {
	registered := make(map[string]bool)
	for _, p := range s.Gateway.Providers() {
		registered[p] = true
	}
	rps, burst := s.Gateway.RateLimit()

	diag := config.Snapshot()
	resp := ProvidersResponse{FailOnStub: config.Environment() == "production"}

	names := make([]string, 0, len(diag.ProvidersLoaded))
	for name := range diag.ProvidersLoaded {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if registered[name] {
			breakers := make(map[string]string)
			for model, state := range s.Gateway.BreakerStates(name) {
				breakers[model] = string(state)
			}
			resp.AvailableProviders = append(resp.AvailableProviders, ProviderEntry{
				Name:         name,
				RateLimitRPS: rps,
				RateLimit:    burst,
				Breakers:     breakers,
			})
			continue
		}
		resp.UnavailableProviders = append(resp.UnavailableProviders, name)
	}

	c.JSON(http.StatusOK, resp)
}
