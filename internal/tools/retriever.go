package tools

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
)

// CorpusDocument is one document the sparse BM25 leg indexes locally.
// The same ID space is expected to also exist as vectors in the
// Weaviate collection the dense leg queries.
type CorpusDocument struct {
	ID   string
	Text string
}

// rrfK is the standard reciprocal-rank-fusion smoothing constant.
const rrfK = 60.0

// Retriever answers "top-k passages for this query" by fusing a local
// BM25 sparse leg with a Weaviate nearVector dense leg via reciprocal
// rank fusion (RRF): no sparse-search library exists in the pack, so
// the sparse leg is a small stdlib-backed BM25 index kept in process.
type Retriever struct {
	client     *weaviate.Client
	className  string
	bm25       *bm25Index
}

// NewRetriever returns a Retriever. client may be nil, in which case
// Query runs the sparse leg alone (lightweight mode, mirroring the
// teacher's own "Weaviate URL not configured, running in lightweight
// mode" fallback).
func NewRetriever(client *weaviate.Client, className string, corpus []CorpusDocument) *Retriever {
	return &Retriever{client: client, className: className, bm25: newBM25Index(corpus)}
}

// Query returns the top-k passages for query, fused across both legs.
func (r *Retriever) Query(ctx context.Context, queryVector []float32, query string, k int) ([]Passage, error) {
	sparse := r.bm25.topK(query, k*4)

	var dense []Passage
	if r.client != nil && len(queryVector) > 0 {
		var err error
		dense, err = r.nearVector(ctx, queryVector, k*4)
		if err != nil {
			return nil, fmt.Errorf("tools: dense retrieval: %w", err)
		}
	}

	fused := reciprocalRankFusion(sparse, dense)
	if len(fused) > k {
		fused = fused[:k]
	}
	return fused, nil
}

func (r *Retriever) nearVector(ctx context.Context, vector []float32, k int) ([]Passage, error) {
	// certainty (bounded [0,1]) is requested instead of distance, which
	// varies by configured similarity metric.
	nearVector := r.client.GraphQL().NearVectorArgBuilder().WithVector(vector)
	fields := []graphql.Field{
		{Name: "text"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "id"}, {Name: "certainty"}}},
	}

	resp, err := r.client.GraphQL().Get().
		WithClassName(r.className).
		WithNearVector(nearVector).
		WithFields(fields...).
		WithLimit(k).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if resp.Errors != nil && len(resp.Errors) > 0 {
		return nil, fmt.Errorf("weaviate graphql errors: %v", resp.Errors)
	}

	// This mirrors ParseGraphQLResponse's marshal/unmarshal shape but
	// keyed dynamically on className, so it is reimplemented locally
	// rather than imported from the orchestrator's datatypes package.
	raw, ok := resp.Data["Get"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected GraphQL response shape")
	}
	rows, ok := raw[r.className].([]any)
	if !ok {
		return nil, nil
	}

	passages := make([]Passage, 0, len(rows))
	for _, row := range rows {
		m, ok := row.(map[string]any)
		if !ok {
			continue
		}
		text, _ := m["text"].(string)
		id := ""
		certainty := 0.0
		if add, ok := m["_additional"].(map[string]any); ok {
			id, _ = add["id"].(string)
			if c, ok := add["certainty"].(float64); ok {
				certainty = c
			}
		}
		passages = append(passages, Passage{ID: id, Text: text, Score: certainty})
	}
	return passages, nil
}

func reciprocalRankFusion(lists ...[]Passage) []Passage {
	scores := make(map[string]float64)
	texts := make(map[string]string)
	for _, list := range lists {
		for rank, p := range list {
			scores[p.ID] += 1.0 / (rrfK + float64(rank+1))
			texts[p.ID] = p.Text
		}
	}
	fused := make([]Passage, 0, len(scores))
	for id, score := range scores {
		fused = append(fused, Passage{ID: id, Text: texts[id], Score: score})
	}
	sort.Slice(fused, func(i, j int) bool { return fused[i].Score > fused[j].Score })
	return fused
}

// bm25Index is a minimal in-memory BM25 ranker over a fixed corpus.
type bm25Index struct {
	docs    []CorpusDocument
	terms   []map[string]int
	lengths []int
	avgLen  float64
	df      map[string]int
}

const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

func newBM25Index(corpus []CorpusDocument) *bm25Index {
	idx := &bm25Index{docs: corpus, df: make(map[string]int)}
	total := 0
	for _, doc := range corpus {
		counts := make(map[string]int)
		tokens := tokenizeText(doc.Text)
		for _, t := range tokens {
			counts[t]++
		}
		idx.terms = append(idx.terms, counts)
		idx.lengths = append(idx.lengths, len(tokens))
		total += len(tokens)
		for t := range counts {
			idx.df[t]++
		}
	}
	if len(corpus) > 0 {
		idx.avgLen = float64(total) / float64(len(corpus))
	}
	return idx
}

func tokenizeText(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

func (idx *bm25Index) topK(query string, k int) []Passage {
	if len(idx.docs) == 0 {
		return nil
	}
	queryTerms := tokenizeText(query)
	n := float64(len(idx.docs))

	scored := make([]Passage, len(idx.docs))
	for i, doc := range idx.docs {
		var score float64
		docLen := float64(idx.lengths[i])
		for _, term := range queryTerms {
			tf := float64(idx.terms[i][term])
			if tf == 0 {
				continue
			}
			df := float64(idx.df[term])
			idf := math.Log(1 + (n-df+0.5)/(df+0.5))
			norm := tf * (bm25K1 + 1) / (tf + bm25K1*(1-bm25B+bm25B*docLen/idx.avgLen))
			score += idf * norm
		}
		scored[i] = Passage{ID: doc.ID, Text: doc.Text, Score: score}
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if k < len(scored) {
		scored = scored[:k]
	}
	return scored
}
