package consensus

import "sort"

// DefaultSimilarityThreshold is hierarchical_consensus's default
// agreement threshold before it escalates to verifiers (spec.md §4.7).
const DefaultSimilarityThreshold = 0.8

// SelfConsistency tallies weighted votes across already-generated
// samples (n independent samples at varied temperatures is the
// caller's responsibility — this function only aggregates) and
// returns the majority answer, grounded on the teacher's
// claim-frequency-map pattern in multi_sample.go's findConsensus.
func SelfConsistency(kind AnswerKind, samples []Sample) Decision {
	return vote(kind, samples, "self_consistency", DefaultSimilarityThreshold)
}

// HierarchicalConsensus runs primaries first; if they already agree
// above threshold, returns immediately with high confidence. Otherwise
// verifiers are folded in with primaries weighted 2x, verifiers 1x.
func HierarchicalConsensus(kind AnswerKind, primaries, verifiers []Sample, threshold float64) Decision {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	primaryDecision := vote(kind, weighted(primaries, 2.0), "hierarchical_consensus", threshold)
	if primaryDecision.Unanimous || agreementRatio(kind, primaries, threshold) >= threshold {
		primaryDecision.Confidence = max(primaryDecision.Confidence, threshold)
		return primaryDecision
	}

	all := append(weighted(primaries, 2.0), weighted(verifiers, 1.0)...)
	return vote(kind, all, "hierarchical_consensus", threshold)
}

func weighted(samples []Sample, weight float64) []Sample {
	out := make([]Sample, len(samples))
	for i, s := range samples {
		out[i] = Sample{ModelID: s.ModelID, Answer: s.Answer, Weight: weight}
	}
	return out
}

// agreementRatio is the fraction of primaries whose answer agrees
// with the plurality answer, used to decide whether to escalate.
func agreementRatio(kind AnswerKind, samples []Sample, threshold float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	best := 0
	for _, candidate := range samples {
		count := 0
		for _, other := range samples {
			if Agree(kind, candidate.Answer, other.Answer, threshold) {
				count++
			}
		}
		if count > best {
			best = count
		}
	}
	return float64(best) / float64(len(samples))
}

// vote groups samples into agreement clusters (per kind's similarity
// rule), sums each cluster's weight, and returns the top cluster's
// representative answer as the Decision.
func vote(kind AnswerKind, samples []Sample, strategy string, threshold float64) Decision {
	if len(samples) == 0 {
		return Decision{Strategy: strategy, Tally: map[string]float64{}}
	}

	type cluster struct {
		representative string
		weight         float64
		members        int
	}
	var clusters []cluster

	for _, s := range samples {
		w := s.Weight
		if w == 0 {
			w = 1
		}
		placed := false
		for i := range clusters {
			if Agree(kind, clusters[i].representative, s.Answer, threshold) {
				clusters[i].weight += w
				clusters[i].members++
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, cluster{representative: s.Answer, weight: w, members: 1})
		}
	}

	sort.Slice(clusters, func(i, j int) bool { return clusters[i].weight > clusters[j].weight })

	tally := make(map[string]float64, len(clusters))
	totalWeight := 0.0
	for _, c := range clusters {
		tally[c.representative] += c.weight
		totalWeight += c.weight
	}

	winner := clusters[0]
	unanimous := len(clusters) == 1

	confidence := 0.0
	if totalWeight > 0 {
		confidence = winner.weight / totalWeight
	}

	return Decision{
		Answer:     winner.representative,
		Unanimous:  unanimous,
		Confidence: confidence,
		Tally:      tally,
		Strategy:   strategy,
	}
}

// StrictlyDominant reports whether d's winner outweighs every other
// cluster in d.Tally, the condition the reasoning handler uses to
// decide whether to return immediately (spec.md §4.6: "if the
// top-weighted letter has strictly greater weight than the
// runner-up").
func StrictlyDominant(d Decision) bool {
	if len(d.Tally) <= 1 {
		return true
	}
	top, runnerUp := 0.0, 0.0
	for answer, weight := range d.Tally {
		if answer == d.Answer {
			top = weight
			continue
		}
		if weight > runnerUp {
			runnerUp = weight
		}
	}
	return top > runnerUp
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
