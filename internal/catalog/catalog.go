package catalog

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// file is the on-disk shape of the catalog YAML table.
type file struct {
	Models []Descriptor `yaml:"models"`
}

// Catalog is a read-mostly, version-stamped table of model
// descriptors. Lookups share a read lock; Reload parses the new table
// outside the lock and swaps the whole table in under the write lock,
// so a lookup waits only for that swap and always sees either the old
// or the new table, never a mix (spec.md §5: "Model catalog: read-mostly; modifications are
// versioned and atomic").
type Catalog struct {
	mu      sync.RWMutex
	models  []Descriptor
	version int
}

// Load reads a catalog YAML file from disk and returns a ready Catalog.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	return &Catalog{models: f.Models, version: 1}, nil
}

// FromDescriptors builds a Catalog directly from a slice, mainly for
// tests and for embedding a default table.
func FromDescriptors(models []Descriptor) *Catalog {
	return &Catalog{models: models, version: 1}
}

// Reload atomically replaces the catalog's contents and bumps its
// version, e.g. in response to an fsnotify change on the backing file.
func (c *Catalog) Reload(path string) error {
	fresh, err := Load(path)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models = fresh.models
	c.version++
	return nil
}

// Version returns the catalog's current version, incremented on every
// Reload.
func (c *Catalog) Version() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

func (c *Catalog) snapshot() []Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Descriptor, len(c.models))
	copy(out, c.models)
	return out
}

func byTier(models []Descriptor, tier Tier) []Descriptor {
	var out []Descriptor
	for _, m := range models {
		if m.Tier == tier {
			out = append(out, m)
		}
	}
	return out
}

func sortByScoreThenLatencyThenCost(models []Descriptor, category string) {
	sort.SliceStable(models, func(i, j int) bool {
		si, sj := models[i].ScoreFor(category), models[j].ScoreFor(category)
		if si != sj {
			return si > sj
		}
		if models[i].LatencyTier != models[j].LatencyTier {
			return models[i].LatencyTier < models[j].LatencyTier
		}
		return models[i].CostPer1KTokens < models[j].CostPer1KTokens
	})
}

// TopFor returns the k models with the highest capability score for
// category within tier, breaking ties by latency tier then cost.
func (c *Catalog) TopFor(category string, k int, tier Tier) Selection {
	models := byTier(c.snapshot(), tier)
	sortByScoreThenLatencyThenCost(models, category)
	if k > len(models) {
		return Selection{Models: models, Shortfall: k - len(models)}
	}
	return Selection{Models: models[:k]}
}

// DiverseTopFor is TopFor subject to a provider-diversity constraint:
// no two picks share a provider until every distinct provider
// represented in the tier has been used once.
func (c *Catalog) DiverseTopFor(category string, k int, tier Tier) Selection {
	models := byTier(c.snapshot(), tier)
	sortByScoreThenLatencyThenCost(models, category)

	var picked []Descriptor
	usedProviders := make(map[string]bool)

	for _, round := range []bool{true, false} {
		for _, m := range models {
			if len(picked) >= k {
				break
			}
			if round && usedProviders[m.Provider] {
				continue
			}
			already := false
			for _, p := range picked {
				if p.ID == m.ID {
					already = true
					break
				}
			}
			if already {
				continue
			}
			picked = append(picked, m)
			usedProviders[m.Provider] = true
		}
		if len(picked) >= k {
			break
		}
	}

	shortfall := k - len(picked)
	if shortfall < 0 {
		shortfall = 0
	}
	return Selection{Models: picked, Shortfall: shortfall}
}

// ToolCapableFor is TopFor restricted to SupportsTools=true models,
// searched across both tiers (a tool-capable request cares about
// capability, not cost tier).
func (c *Catalog) ToolCapableFor(category string, k int) Selection {
	var models []Descriptor
	for _, m := range c.snapshot() {
		if m.SupportsTools {
			models = append(models, m)
		}
	}
	sortByScoreThenLatencyThenCost(models, category)
	if k > len(models) {
		return Selection{Models: models, Shortfall: k - len(models)}
	}
	return Selection{Models: models[:k]}
}

// capabilityFloor is the minimum acceptable score for FastestFor to
// consider a model "acceptable" rather than merely fast.
const capabilityFloor = 40.0

// FastestFor returns the single lowest-latency model with acceptable
// capability (score >= capabilityFloor) for category, across tiers.
func (c *Catalog) FastestFor(category string) (Descriptor, bool) {
	models := c.snapshot()
	var best *Descriptor
	for i := range models {
		m := &models[i]
		if m.ScoreFor(category) < capabilityFloor {
			continue
		}
		if best == nil ||
			m.LatencyTier < best.LatencyTier ||
			(m.LatencyTier == best.LatencyTier && m.CostPer1KTokens < best.CostPer1KTokens) {
			best = m
		}
	}
	if best == nil {
		return Descriptor{}, false
	}
	return *best, true
}

// ByID returns the descriptor for a stable model id.
func (c *Catalog) ByID(id string) (Descriptor, bool) {
	for _, m := range c.snapshot() {
		if m.ID == id {
			return m, true
		}
	}
	return Descriptor{}, false
}
