package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// WebSearcher queries an external search provider and returns ranked
// (title, url, snippet) hits. It is never invoked for static-knowledge
// queries the classifier flags as not time-sensitive; that decision
// belongs to the broker, not the searcher.
type WebSearcher struct {
	client  *resty.Client
	baseURL string
	apiKey  string
}

// NewWebSearcher returns a WebSearcher backed by a pooled resty
// client with a conservative default timeout, mirroring the teacher's
// shared-HTTP-client posture (one pooled client reused across calls
// rather than a client per request).
func NewWebSearcher(baseURL, apiKey string) *WebSearcher {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond)
	return &WebSearcher{client: client, baseURL: baseURL, apiKey: apiKey}
}

type searchResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Snippet string `json:"snippet"`
	} `json:"results"`
}

// Search returns up to k ranked hits for query.
func (w *WebSearcher) Search(ctx context.Context, query string, k int) ([]SearchHit, error) {
	var out searchResponse
	resp, err := w.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+w.apiKey).
		SetQueryParams(map[string]string{"q": query, "limit": fmt.Sprintf("%d", k)}).
		SetResult(&out).
		Get(w.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("tools: web search request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("tools: web search returned status %d", resp.StatusCode())
	}

	hits := make([]SearchHit, 0, len(out.Results))
	for _, r := range out.Results {
		hits = append(hits, SearchHit{Title: r.Title, URL: r.URL, Snippet: r.Snippet})
	}
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}
