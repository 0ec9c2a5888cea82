package bench

import (
	"hash/fnv"
	"math/rand"
)

// SeedFor derives a deterministic seed from a suite version string and
// an operator-chosen run seed, so "same seed, same suite version"
// always reproduces the same item order even across processes
// (spec.md §4.10: "reproducible given the seed and the suite version").
func SeedFor(suiteVersion string, runSeed int64) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(suiteVersion))
	return int64(h.Sum64()) ^ runSeed
}

// SampleOrder returns the manual index permutation a run will iterate
// items in: a Fisher-Yates shuffle over [0, n) driven by a seeded RNG.
// The returned slice is the literal order recorded in RunReport so a
// later run with the same seed and suite version can be verified bit
// for bit, independent of the math/rand algorithm ever changing its
// internal sequence for a given seed on some future Go release.
func SampleOrder(n int, seed int64) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
	return order
}

// Ordered returns items in the given sample order, repeated runsPerCase
// times each (consecutively, so a resumed run's checkpoint lookups stay
// contiguous per item).
func Ordered(items []PromptItem, order []int, runsPerCase int) []PromptItem {
	if runsPerCase <= 0 {
		runsPerCase = 1
	}
	out := make([]PromptItem, 0, len(order)*runsPerCase)
	for _, idx := range order {
		if idx < 0 || idx >= len(items) {
			continue
		}
		for r := 0; r < runsPerCase; r++ {
			out = append(out, items[idx])
		}
	}
	return out
}
