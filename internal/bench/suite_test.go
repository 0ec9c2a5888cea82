package bench

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSuiteYAML = `
metadata:
  suite_name: smoke
  version: "1.0.0"
  categories: [math, coding]
prompts:
  - id: math-1
    category: math
    prompt: "What is 2+2?"
    rules: [numeric_equal]
    expected:
      numeric:
        value: 4
        tolerance: 0
    scoring:
      objective_weight: 1
      rubric_weight: 0
      critical: true
  - id: coding-1
    category: coding
    prompt: "Write a function that doubles a number."
    rules: [exact_contains]
    expected:
      contains: "def double"
    scoring:
      objective_weight: 1
      rubric_weight: 0
`

func writeSuiteFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSuite_ValidSuiteLoads(t *testing.T) {
	path := writeSuiteFile(t, validSuiteYAML)
	suite, err := LoadSuite(path)
	require.NoError(t, err)
	assert.Equal(t, "smoke", suite.Metadata.SuiteName)
	assert.Len(t, suite.Prompts, 2)
	assert.True(t, suite.Prompts[0].Scoring.Critical)
}

func TestLoadSuite_MissingRequiredFieldFails(t *testing.T) {
	path := writeSuiteFile(t, `
metadata:
  suite_name: smoke
  version: "1.0.0"
  categories: [math]
prompts:
  - category: math
    prompt: "no id here"
`)
	_, err := LoadSuite(path)
	assert.Error(t, err)
}

func TestLoadSuite_DuplicateIDsFail(t *testing.T) {
	path := writeSuiteFile(t, `
metadata:
  suite_name: smoke
  version: "1.0.0"
  categories: [math]
prompts:
  - id: dup
    category: math
    prompt: "first"
  - id: dup
    category: math
    prompt: "second"
`)
	_, err := LoadSuite(path)
	assert.ErrorContains(t, err, "duplicate prompt id")
}

func TestLoadSuite_MissingFile(t *testing.T) {
	_, err := LoadSuite(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFilterPrompts_ByCategoryAndID(t *testing.T) {
	path := writeSuiteFile(t, validSuiteYAML)
	suite, err := LoadSuite(path)
	require.NoError(t, err)

	byCategory := FilterPrompts(suite.Prompts, []string{"math"}, nil, false)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "math-1", byCategory[0].ID)

	byID := FilterPrompts(suite.Prompts, nil, []string{"coding-1"}, false)
	require.Len(t, byID, 1)
	assert.Equal(t, "coding-1", byID[0].ID)
}

func TestFilterPrompts_CriticalOnly(t *testing.T) {
	path := writeSuiteFile(t, validSuiteYAML)
	suite, err := LoadSuite(path)
	require.NoError(t, err)

	critical := FilterPrompts(suite.Prompts, nil, nil, true)
	require.Len(t, critical, 1)
	assert.Equal(t, "math-1", critical[0].ID)
}

func TestFilterPrompts_NoFiltersReturnsAll(t *testing.T) {
	path := writeSuiteFile(t, validSuiteYAML)
	suite, err := LoadSuite(path)
	require.NoError(t, err)

	all := FilterPrompts(suite.Prompts, nil, nil, false)
	assert.Len(t, all, 2)
}
