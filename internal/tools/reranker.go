package tools

import (
	"context"
	"sort"
	"strings"
)

// Reranker scores (query, passage) pairs for the RAG handler, used
// after the Retriever's fused candidate list to sharpen the final
// ordering before the passage-ID contract is enforced.
type Reranker struct {
	score func(ctx context.Context, query, passage string) (float64, error)
}

// NewReranker returns a Reranker using score to rate each pair. The
// default (NewLexicalReranker) needs no external dependency; a
// cross-encoder-backed reranker can be substituted by passing a
// gateway-call-backed scorer with the same signature.
func NewReranker(score func(ctx context.Context, query, passage string) (float64, error)) *Reranker {
	return &Reranker{score: score}
}

// NewLexicalReranker returns a Reranker that scores by normalized
// query-term overlap: a dependency-free fallback, used when no
// cross-encoder model is configured.
func NewLexicalReranker() *Reranker {
	return NewReranker(func(_ context.Context, query, passage string) (float64, error) {
		queryTerms := uniqueTerms(query)
		if len(queryTerms) == 0 {
			return 0, nil
		}
		passageTerms := make(map[string]bool)
		for _, t := range tokenizeText(passage) {
			passageTerms[t] = true
		}
		hits := 0
		for t := range queryTerms {
			if passageTerms[t] {
				hits++
			}
		}
		return float64(hits) / float64(len(queryTerms)), nil
	})
}

func uniqueTerms(text string) map[string]bool {
	terms := make(map[string]bool)
	for _, t := range tokenizeText(text) {
		terms[t] = true
	}
	return terms
}

// Rerank scores every passage against query and returns them sorted
// by descending score, most relevant first.
func (r *Reranker) Rerank(ctx context.Context, query string, passages []Passage) ([]Passage, error) {
	reranked := make([]Passage, len(passages))
	copy(reranked, passages)
	for i, p := range reranked {
		score, err := r.score(ctx, query, p.Text)
		if err != nil {
			return nil, err
		}
		reranked[i].Score = score
	}
	sort.SliceStable(reranked, func(i, j int) bool { return reranked[i].Score > reranked[j].Score })
	return reranked, nil
}

// PassageIDs renders passages as the comma-separated, most-relevant-
// first list the rag format contract requires.
func PassageIDs(passages []Passage) string {
	ids := make([]string, len(passages))
	for i, p := range passages {
		ids[i] = p.ID
	}
	return strings.Join(ids, ",")
}
