package router

import "errors"

// Error kinds the router recovers locally into routing decisions. None of
// these ever surfaces as a Go error to the router's caller — they drive
// which CLARIFY/LLM_FALLBACK decision gets emitted.
var (
	// ErrTransientBackendUnavailable marks a product-store or FAQ-index
	// timeout/connection error. The evidence retriever retries once with
	// a 50ms backoff; on second failure the sentinel evidence value is
	// substituted and routing continues.
	ErrTransientBackendUnavailable = errors.New("router: backend temporarily unavailable")

	// ErrEmptyRegistry means no banks are known yet (ingestion
	// incomplete). Entity-dependent rules are skipped.
	ErrEmptyRegistry = errors.New("router: entity registry is empty")

	// ErrAmbiguousScope means two banks were mentioned with no
	// compare/recommend signal to justify it.
	ErrAmbiguousScope = errors.New("router: ambiguous scope, multiple banks mentioned")

	// ErrOrdinalOutOfRange means an ordinal follow-up ("the fourth one")
	// indexed past the end of last_product_list.
	ErrOrdinalOutOfRange = errors.New("router: ordinal reference out of range")

	// ErrNoPriorList means an ordinal/"list them" follow-up fired with no
	// last_product_list in memory.
	ErrNoPriorList = errors.New("router: no prior product list in conversation state")

	// ErrUnknownUtterance means no signals, no scope, and no FAQ match.
	ErrUnknownUtterance = errors.New("router: utterance matched no signal, scope, or FAQ entry")
)
