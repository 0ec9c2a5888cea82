package bench

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// LoadSuite reads and validates a suite YAML file from disk
// (spec.md §6 "Suite file format").
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bench: read suite %s: %w", path, err)
	}
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("bench: parse suite %s: %w", path, err)
	}
	if err := validate.Struct(&s); err != nil {
		return nil, fmt.Errorf("bench: invalid suite %s: %w", path, err)
	}
	for i := range s.Prompts {
		if err := validate.Struct(&s.Prompts[i].Scoring); err != nil {
			return nil, fmt.Errorf("bench: invalid scoring for item %q: %w", s.Prompts[i].ID, err)
		}
	}
	seen := make(map[string]bool, len(s.Prompts))
	for _, p := range s.Prompts {
		if seen[p.ID] {
			return nil, fmt.Errorf("bench: duplicate prompt id %q in suite %s", p.ID, path)
		}
		seen[p.ID] = true
	}
	return &s, nil
}

// FilterPrompts narrows a suite's items down to the categories,
// explicit IDs, and critical-only flag a run was configured with. An
// empty categories or ids list imposes no filter on that dimension.
func FilterPrompts(items []PromptItem, categories, ids []string, criticalOnly bool) []PromptItem {
	catSet := toSet(categories)
	idSet := toSet(ids)

	out := make([]PromptItem, 0, len(items))
	for _, item := range items {
		if len(catSet) > 0 && !catSet[item.Category] {
			continue
		}
		if len(idSet) > 0 && !idSet[item.ID] {
			continue
		}
		if criticalOnly && !item.Scoring.Critical {
			continue
		}
		out = append(out, item)
	}
	return out
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
