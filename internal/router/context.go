package router

import (
	"time"

	"go.uber.org/zap"
)

// Config holds the tunables spec'd as environment-provided configuration:
// the FAQ similarity threshold, evidence deadline, and greeting set.
type Config struct {
	FAQSimilarityThreshold float64
	EvidenceTimeout        time.Duration
	EvidenceRetryBackoff   time.Duration
	RequestDeadline        time.Duration
	Greetings              map[string]struct{}
}

// DefaultConfig returns the values named as defaults in the external
// interfaces section: 0.60 similarity, 100ms evidence deadline, 2s request
// deadline.
func DefaultConfig() Config {
	greetings := map[string]struct{}{
		"hi": {}, "hello": {}, "hey": {}, "good morning": {},
		"good afternoon": {}, "good evening": {}, "namaste": {},
	}
	return Config{
		FAQSimilarityThreshold: 0.60,
		EvidenceTimeout:        100 * time.Millisecond,
		EvidenceRetryBackoff:   50 * time.Millisecond,
		RequestDeadline:        2 * time.Second,
		Greetings:              greetings,
	}
}

// Context composes every dependency the router needs into one explicit
// value, replacing the singleton-style package-level globals the teacher
// uses elsewhere in the codebase. Tests build a Context from in-memory
// fakes; production wiring builds one from the real backends in cmd/router.
type Context struct {
	Store    ProductStore
	FAQ      FAQIndex
	Convo    ConversationStore
	Registry EntityRegistry
	LLM      Generator
	Config   Config
	Logger   *zap.Logger
}
