// Package catalog holds the scored table of available models and the
// routing operations handlers use to pick which models to call for a
// given category, tier, and role.
package catalog

// Tier is an orthogonal quality tier; the router never crosses tiers
// unless a caller explicitly asks for both.
type Tier string

const (
	TierElite Tier = "elite"
	TierFree  Tier = "free"
)

// LatencyTier is a coarse, catalog-assigned estimate used to break
// ties and to pick the fastest acceptable model.
type LatencyTier int

const (
	LatencyFast LatencyTier = iota
	LatencyMedium
	LatencySlow
)

// UnmarshalYAML lets the catalog YAML spell latency tiers as
// "fast"/"medium"/"slow" instead of raw integers.
func (t *LatencyTier) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	switch s {
	case "fast":
		*t = LatencyFast
	case "medium":
		*t = LatencyMedium
	case "slow":
		*t = LatencySlow
	default:
		*t = LatencyMedium
	}
	return nil
}

// Descriptor is one row of the model catalog: a stable id, its
// provider, and its per-category capability scores.
type Descriptor struct {
	ID              string             `yaml:"id"`
	Provider        string             `yaml:"provider"`
	ContextWindow   int                `yaml:"context_window"`
	SupportsTools   bool               `yaml:"supports_tools"`
	CategoryScores  map[string]float64 `yaml:"category_scores"`
	LatencyTier     LatencyTier        `yaml:"latency_tier"`
	CostPer1KTokens float64            `yaml:"cost_per_1k_tokens"`
	Tier            Tier               `yaml:"tier"`
}

// ScoreFor returns the descriptor's capability score for a category,
// or 0 if the category is not scored for this model.
func (d Descriptor) ScoreFor(category string) float64 {
	return d.CategoryScores[category]
}

// Role is the capacity a strategy requests a model for.
type Role string

const (
	RolePrimary    Role = "primary"
	RoleVerifier   Role = "verifier"
	RoleSpecialist Role = "specialist"
	RoleFallback   Role = "fallback"
)

// Selection is the result of a routing call: the models chosen and
// whether the request was fully satisfied.
type Selection struct {
	Models   []Descriptor
	Role     Role
	Shortfall int // requested - len(Models), 0 if fully satisfied
}
