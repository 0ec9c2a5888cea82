package bench

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeedFor_DeterministicForSameInputs(t *testing.T) {
	a := SeedFor("1.0.0", 42)
	b := SeedFor("1.0.0", 42)
	assert.Equal(t, a, b)
}

func TestSeedFor_DiffersAcrossSuiteVersions(t *testing.T) {
	a := SeedFor("1.0.0", 42)
	b := SeedFor("1.1.0", 42)
	assert.NotEqual(t, a, b)
}

func TestSeedFor_DiffersAcrossRunSeeds(t *testing.T) {
	a := SeedFor("1.0.0", 42)
	b := SeedFor("1.0.0", 43)
	assert.NotEqual(t, a, b)
}

func TestSampleOrder_DeterministicForSameSeed(t *testing.T) {
	a := SampleOrder(20, 99)
	b := SampleOrder(20, 99)
	assert.Equal(t, a, b)
}

func TestSampleOrder_DiffersForDifferentSeeds(t *testing.T) {
	a := SampleOrder(20, 1)
	b := SampleOrder(20, 2)
	assert.NotEqual(t, a, b)
}

func TestSampleOrder_IsAPermutation(t *testing.T) {
	order := SampleOrder(10, 7)
	seen := make(map[int]bool, len(order))
	for _, idx := range order {
		assert.False(t, seen[idx], "index %d appeared twice", idx)
		seen[idx] = true
	}
	assert.Len(t, order, 10)
}

func TestOrdered_ExpandsRunsPerCase(t *testing.T) {
	items := []PromptItem{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	order := []int{2, 0, 1}

	scheduled := Ordered(items, order, 2)

	require := assert.New(t)
	require.Len(scheduled, 6)
	// Each item in the sampled order appears twice consecutively before
	// moving to the next, for checkpoint-resume locality.
	require.Equal("c", scheduled[0].ID)
	require.Equal("c", scheduled[1].ID)
	require.Equal("a", scheduled[2].ID)
	require.Equal("a", scheduled[3].ID)
	require.Equal("b", scheduled[4].ID)
	require.Equal("b", scheduled[5].ID)
}

func TestOrdered_SingleRunPerCase(t *testing.T) {
	items := []PromptItem{{ID: "x"}, {ID: "y"}}
	order := []int{1, 0}
	scheduled := Ordered(items, order, 1)
	assert.Equal(t, []PromptItem{{ID: "y"}, {ID: "x"}}, scheduled)
}
