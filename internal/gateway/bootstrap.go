package gateway

import (
	"github.com/llmhive/llmhive/internal/config"
	"github.com/llmhive/llmhive/internal/logging"
)

// FromEnv builds a Gateway and registers a Backend for every provider
// whose secret is currently configured (internal/config), mirroring
// the "graceful absence" behavior of the config contract: an unset
// provider is simply skipped rather than causing a startup error, so
// the engine degrades to whichever providers are actually usable.
func FromEnv(log *logging.Logger) (*Gateway, error) {
	gw := New(log)

	if key, ok := config.Secret(config.SecretOpenAIAPIKey); ok {
		gw.Register("openai", NewOpenAIBackend(key))
	}
	if key, ok := config.Secret(config.SecretAnthropicAPIKey); ok {
		backend, err := NewAnthropicBackend(key)
		if err != nil {
			log.Error("failed to initialize anthropic backend", "error", err)
		} else {
			gw.Register("anthropic", backend)
		}
	}
	if key, ok := config.Secret(config.SecretDeepSeekAPIKey); ok {
		gw.Register("deepseek", NewOpenAICompatibleBackend(key, "https://api.deepseek.com/v1"))
	}
	if key, ok := config.Secret(config.SecretTogetherAPIKey); ok {
		gw.Register("together", NewOpenAICompatibleBackend(key, "https://api.together.xyz/v1"))
	}
	if key, ok := config.Secret(config.SecretOpenRouterAPIKey); ok {
		gw.Register("openrouter", NewOpenAICompatibleBackend(key, "https://openrouter.ai/api/v1"))
	}
	if key, ok := config.Secret(config.SecretGrokAPIKey); ok {
		gw.Register("grok", NewOpenAICompatibleBackend(key, "https://api.x.ai/v1"))
	}

	return gw, nil
}
