// Package config implements the lazy, process-lifetime settings and
// secrets contract described by the orchestration engine's external
// interfaces.
//
// # Design
//
// Settings are never read at import time. The first call to any
// accessor (Secret, LogLevel, CORSOrigins, Environment, Snapshot)
// triggers a one-time scan of the environment; subsequent calls return
// the cached snapshot. Tests that need to simulate a different
// environment call Reset to force the next accessor call to re-read.
//
// Secret values are held in memguard-backed locked buffers so their
// bytes are scrubbed from normal process memory once parsed out of
// os.Environ. Nothing in this package ever logs a secret value; only
// secret names and presence booleans are observable from the outside
// (see Diagnostics).
package config

import (
	"os"
	"sync"
	"time"

	"github.com/awnumar/memguard"
)

// Well-known secret names recognised by the contract (spec.md §6).
const (
	SecretOpenAIAPIKey     = "OPENAI_API_KEY"
	SecretAnthropicAPIKey  = "ANTHROPIC_API_KEY"
	SecretGeminiAPIKey     = "GEMINI_API_KEY"
	SecretGrokAPIKey       = "GROK_API_KEY"
	SecretDeepSeekAPIKey   = "DEEPSEEK_API_KEY"
	SecretTogetherAPIKey   = "TOGETHER_API_KEY"
	SecretOpenRouterAPIKey = "OPENROUTER_API_KEY"
	SecretInboundAPIKey    = "API_KEY"
)

// secretNames is the ordered set of names the contract watches. Order
// matters only for Diagnostics' deterministic output.
var secretNames = []string{
	SecretOpenAIAPIKey,
	SecretAnthropicAPIKey,
	SecretGeminiAPIKey,
	SecretGrokAPIKey,
	SecretDeepSeekAPIKey,
	SecretTogetherAPIKey,
	SecretOpenRouterAPIKey,
	SecretInboundAPIKey,
}

// Non-secret settings also read from the environment (spec.md §6).
const (
	EnvLogLevel    = "LOG_LEVEL"
	EnvCORSOrigins = "CORS_ORIGINS"
	EnvEnvironment = "ENVIRONMENT"
)

// ProviderClass identifies a family of provider backends the gateway can
// enable once its secret is configured.
type ProviderClass string

const (
	ProviderOpenAI     ProviderClass = "openai"
	ProviderAnthropic  ProviderClass = "anthropic"
	ProviderGemini     ProviderClass = "gemini"
	ProviderGrok       ProviderClass = "grok"
	ProviderDeepSeek   ProviderClass = "deepseek"
	ProviderTogether   ProviderClass = "together"
	ProviderOpenRouter ProviderClass = "openrouter"
)

// secretToProvider maps a secret name to the provider class it unlocks.
// API_KEY is inbound auth, not a provider credential, so it is absent
// from this map.
var secretToProvider = map[string]ProviderClass{
	SecretOpenAIAPIKey:     ProviderOpenAI,
	SecretAnthropicAPIKey:  ProviderAnthropic,
	SecretGeminiAPIKey:     ProviderGemini,
	SecretGrokAPIKey:       ProviderGrok,
	SecretDeepSeekAPIKey:   ProviderDeepSeek,
	SecretTogetherAPIKey:   ProviderTogether,
	SecretOpenRouterAPIKey: ProviderOpenRouter,
}

// snapshot is the cached, process-lifetime view of the environment.
type snapshot struct {
	present map[string]bool
	locked  map[string]*memguard.LockedBuffer
	logLevel    string
	corsOrigins string
	environment string
}

var (
	mu      sync.Mutex
	current *snapshot
)

// load performs the one-time scan of os.Environ. Callers must hold mu.
func load() *snapshot {
	s := &snapshot{
		present: make(map[string]bool, len(secretNames)),
		locked:  make(map[string]*memguard.LockedBuffer, len(secretNames)),
	}
	for _, name := range secretNames {
		v, ok := os.LookupEnv(name)
		if !ok || v == "" {
			// An empty or unset secret is observed as "not configured",
			// never fabricated (spec.md §4.11).
			s.present[name] = false
			continue
		}
		s.present[name] = true
		s.locked[name] = memguard.NewBufferFromBytes([]byte(v))
	}
	s.logLevel = os.Getenv(EnvLogLevel)
	s.corsOrigins = os.Getenv(EnvCORSOrigins)
	s.environment = os.Getenv(EnvEnvironment)
	return s
}

func ensureLoaded() *snapshot {
	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		current = load()
	}
	return current
}

// Secret returns the value of a configured secret and whether it was
// present. The returned string is a copy taken from guarded memory;
// callers should not retain it longer than necessary.
func Secret(name string) (value string, ok bool) {
	s := ensureLoaded()
	mu.Lock()
	defer mu.Unlock()
	if !s.present[name] {
		return "", false
	}
	lb := s.locked[name]
	if lb == nil || lb.Size() == 0 {
		return "", false
	}
	return string(lb.Bytes()), true
}

// LogLevel returns the configured LOG_LEVEL, or "" if unset.
func LogLevel() string { return ensureLoaded().logLevel }

// CORSOrigins returns the configured CORS_ORIGINS, or "" if unset.
func CORSOrigins() string { return ensureLoaded().corsOrigins }

// Environment returns the configured ENVIRONMENT, or "" if unset.
func Environment() string { return ensureLoaded().environment }

// Reset clears the cached snapshot so the next access re-reads the
// environment. Intended for tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	if current != nil {
		for _, lb := range current.locked {
			lb.Destroy()
		}
	}
	current = nil
}

// ProviderStatus reports whether a provider class is enabled, derived
// solely from secret presence.
type ProviderStatus struct {
	Name    ProviderClass
	Enabled bool
}

// Diagnostics is the structured snapshot returned by the diagnostics
// endpoint: which secrets are present (by name, never value) and which
// provider classes are consequently enabled.
type Diagnostics struct {
	ProvidersLoaded map[string]bool
	ProviderCount   int
	IsValid         bool
	Warnings        []string
	Timestamp       time.Time
}

// Snapshot builds a Diagnostics view. It never includes secret values,
// only presence booleans, so it is safe to serialise directly to an
// HTTP response.
func Snapshot() Diagnostics {
	s := ensureLoaded()
	mu.Lock()
	defer mu.Unlock()

	d := Diagnostics{ProvidersLoaded: make(map[string]bool)}
	for name, class := range secretToProvider {
		enabled := s.present[name]
		d.ProvidersLoaded[string(class)] = enabled
		if enabled {
			d.ProviderCount++
		}
	}
	if d.ProviderCount == 0 {
		d.Warnings = append(d.Warnings, "no LLM provider secrets configured; gateway calls will fail with CONFIG_MISSING_SECRET")
	}
	d.IsValid = true
	d.Timestamp = time.Now().UTC()
	return d
}
