package faqindex

import "time"

// Config controls the Qdrant-backed FAQ index.
type Config struct {
	Host       string
	Port       int
	Collection string
	Timeout    time.Duration
	// EmbeddingModel is passed through to the embedding service for the
	// query vector; empty means the service's configured default.
	EmbeddingModel string
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 6333
	}
	if c.Collection == "" {
		c.Collection = "faq_embeddings"
	}
	if c.Timeout == 0 {
		c.Timeout = 5 * time.Second
	}
}
