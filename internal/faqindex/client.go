package faqindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/evidentbank/router/internal/circuitbreaker"
	"github.com/evidentbank/router/internal/interceptors"
	ometrics "github.com/evidentbank/router/internal/metrics"
	"github.com/evidentbank/router/internal/router"
	"github.com/evidentbank/router/internal/tracing"
)

// Embedder turns a query string into the vector the FAQ index searches
// against. *embeddings.Service satisfies this directly.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string, model string) ([]float32, error)
}

// Index is the Qdrant-backed FAQ lookup the router consults for faq_top_k
// evidence. It satisfies router.FAQIndex.
type Index struct {
	cfg      Config
	base     string
	http     *http.Client
	httpw    *circuitbreaker.HTTPWrapper
	embedder Embedder
	logger   *zap.Logger
}

// New builds an Index against the given Qdrant collection, embedding
// queries with embedder before searching.
func New(cfg Config, embedder Embedder, logger *zap.Logger) *Index {
	cfg.applyDefaults()

	httpClient := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: interceptors.NewWorkflowHTTPRoundTripper(nil),
	}
	httpw := circuitbreaker.NewHTTPWrapper(httpClient, "qdrant", "faqindex", logger)

	return &Index{
		cfg:      cfg,
		base:     fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port),
		http:     httpClient,
		httpw:    httpw,
		embedder: embedder,
		logger:   logger,
	}
}

type qdrantQueryRequest struct {
	Query       []float32 `json:"query"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
}

type qdrantPoint struct {
	ID      interface{}            `json:"id"`
	Score   float64                `json:"score"`
	Payload map[string]interface{} `json:"payload"`
}

type qdrantSearchResponse struct {
	Result []qdrantPoint `json:"result"`
}

type qdrantQueryResponse struct {
	Result struct {
		Points []qdrantPoint `json:"points"`
	} `json:"result"`
}

// TopK embeds query and returns the k nearest FAQ entries, most similar
// first. It satisfies router.FAQIndex.
func (idx *Index) TopK(ctx context.Context, query string, k int) ([]router.ScoredFAQMatch, error) {
	vec, err := idx.embedder.GenerateEmbedding(ctx, query, idx.cfg.EmbeddingModel)
	if err != nil {
		return nil, fmt.Errorf("embed faq query: %w", err)
	}

	points, err := idx.search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("search faq index: %w", err)
	}

	out := make([]router.ScoredFAQMatch, 0, len(points))
	for _, p := range points {
		out = append(out, router.ScoredFAQMatch{
			Similarity: p.Score,
			Match:      payloadToMatch(p.Payload),
		})
	}
	return out, nil
}

func payloadToMatch(payload map[string]interface{}) router.FAQMatch {
	str := func(key string) string {
		if v, ok := payload[key].(string); ok {
			return v
		}
		return ""
	}
	return router.FAQMatch{
		Bank:     str("bank"),
		Category: str("category"),
		Question: str("question"),
		Answer:   str("answer"),
	}
}

// search tries the modern /points/query endpoint and falls back to the
// legacy /points/search endpoint on a non-200 response.
func (idx *Index) search(ctx context.Context, vec []float32, limit int) ([]qdrantPoint, error) {
	start := time.Now()

	ctx, span := tracing.StartHTTPSpan(ctx, "POST", fmt.Sprintf("%s/collections/%s/points/query", idx.base, idx.cfg.Collection))
	defer span.End()

	call := func(url string, body []byte) (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		tracing.InjectTraceparent(ctx, req)
		return idx.httpw.Do(req)
	}

	urlQuery := fmt.Sprintf("%s/collections/%s/points/query", idx.base, idx.cfg.Collection)
	reqBody, _ := json.Marshal(qdrantQueryRequest{Query: vec, Limit: limit, WithPayload: true})

	resp, err := call(urlQuery, reqBody)
	if err != nil {
		ometrics.RecordVectorSearchMetrics(idx.cfg.Collection, "error", time.Since(start).Seconds())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		urlSearch := fmt.Sprintf("%s/collections/%s/points/search", idx.base, idx.cfg.Collection)
		legacy := map[string]interface{}{"vector": vec, "limit": limit, "with_payload": true}
		legacyBody, _ := json.Marshal(legacy)

		resp2, err2 := call(urlSearch, legacyBody)
		if err2 != nil {
			ometrics.RecordVectorSearchMetrics(idx.cfg.Collection, "error", time.Since(start).Seconds())
			return nil, fmt.Errorf("qdrant query/search failed: %w", err2)
		}
		defer resp2.Body.Close()
		if resp2.StatusCode != http.StatusOK {
			ometrics.RecordVectorSearchMetrics(idx.cfg.Collection, "error", time.Since(start).Seconds())
			return nil, fmt.Errorf("qdrant status %d", resp2.StatusCode)
		}

		var sr qdrantSearchResponse
		if err := json.NewDecoder(resp2.Body).Decode(&sr); err != nil {
			ometrics.RecordVectorSearchMetrics(idx.cfg.Collection, "error", time.Since(start).Seconds())
			return nil, err
		}
		ometrics.RecordVectorSearchMetrics(idx.cfg.Collection, "ok", time.Since(start).Seconds())
		return sr.Result, nil
	}

	var qr qdrantQueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		ometrics.RecordVectorSearchMetrics(idx.cfg.Collection, "error", time.Since(start).Seconds())
		return nil, err
	}
	ometrics.RecordVectorSearchMetrics(idx.cfg.Collection, "ok", time.Since(start).Seconds())
	return qr.Result.Points, nil
}
