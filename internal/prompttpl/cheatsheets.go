package prompttpl

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/llmhive/llmhive/internal/classifier"
)

// cheatSheetFile is the on-disk shape of data/cheatsheets/*.yaml: one
// file per category, loaded into a flat map keyed by category name.
type cheatSheetFile struct {
	Category classifier.Category `yaml:"category"`
	Text     string              `yaml:"text"`
}

// CheatSheets holds the per-category reference material (formulae,
// coding checklists, format rules) injected into prompts. It is
// read-mostly after Load and safe for concurrent use.
type CheatSheets struct {
	mu    sync.RWMutex
	sheets map[classifier.Category]string
}

// LoadCheatSheets reads every *.yaml file in dir, each expected to
// unmarshal to a single cheatSheetFile entry, and returns a populated
// CheatSheets. A directory containing no matching files yields an
// empty, still-usable CheatSheets (Build simply omits the section).
func LoadCheatSheets(dir string) (*CheatSheets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("prompttpl: read cheat sheet dir %q: %w", dir, err)
	}

	sheets := make(map[classifier.Category]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := dir + "/" + entry.Name()
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("prompttpl: read %q: %w", path, err)
		}
		var f cheatSheetFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("prompttpl: parse %q: %w", path, err)
		}
		if f.Category == "" {
			continue
		}
		sheets[f.Category] = f.Text
	}

	return &CheatSheets{sheets: sheets}, nil
}

// For returns the cheat sheet text for category, if one was loaded.
func (c *CheatSheets) For(category classifier.Category) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	text, ok := c.sheets[category]
	return text, ok
}
