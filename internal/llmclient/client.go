package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/evidentbank/router/internal/interceptors"
	ometrics "github.com/evidentbank/router/internal/metrics"
	"github.com/evidentbank/router/internal/tracing"
)

// Client is the narrow HTTP sidecar call the router hands synthesis off to
// once routing is complete. It satisfies router.Generator. The router
// never inspects the response — EXPLAIN/COMPARE/RECOMMEND/FAQ answer
// generation happens entirely on the other side of this call.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// New builds a Client against the configured sidecar.
func New(cfg Config, logger *zap.Logger) *Client {
	cfg.applyDefaults()
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: interceptors.NewWorkflowHTTPRoundTripper(nil),
		},
		logger: logger,
	}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// Generate calls the sidecar's /generate endpoint with prompt and returns
// its raw text response.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	url := fmt.Sprintf("%s/generate", c.cfg.BaseURL)

	ctx, span := tracing.StartHTTPSpan(ctx, "POST", url)
	defer span.End()

	body, err := json.Marshal(generateRequest{Prompt: prompt, Model: c.cfg.Model})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	tracing.InjectTraceparent(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		ometrics.RecordGenerationMetrics(c.cfg.Model, "error", time.Since(start).Seconds())
		return "", fmt.Errorf("generate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		ometrics.RecordGenerationMetrics(c.cfg.Model, "error", time.Since(start).Seconds())
		return "", fmt.Errorf("generate: sidecar status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		ometrics.RecordGenerationMetrics(c.cfg.Model, "error", time.Since(start).Seconds())
		return "", fmt.Errorf("decode generate response: %w", err)
	}

	ometrics.RecordGenerationMetrics(c.cfg.Model, "ok", time.Since(start).Seconds())
	return out.Text, nil
}
