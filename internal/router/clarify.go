package router

import (
	"fmt"
	"strings"
)

// ClarifyKind names the missing-dimension reason the prompt text depends on.
type ClarifyKind int

const (
	ClarifyMissingBank ClarifyKind = iota
	ClarifyMissingCategory
	ClarifyVague
	ClarifyOrdinalOutOfRange
	ClarifyAmbiguousScope
	ClarifyEmptyRegistry
	ClarifyRequestTimeout
)

// BuildClarifyPrompt renders the prompt text for a CLARIFY decision.
// Known categories are fixed by the domain; known banks come from the
// live registry so the prompt never names a bank that no longer exists.
func BuildClarifyPrompt(kind ClarifyKind, registry EntityRegistry, extra ...string) string {
	switch kind {
	case ClarifyMissingBank:
		return fmt.Sprintf("Which bank? Known banks: %s.", topBanks(registry, 5))
	case ClarifyMissingCategory:
		return "Which product type? (credit card, debit card, loan, scheme)"
	case ClarifyAmbiguousScope:
		if len(extra) >= 2 {
			return fmt.Sprintf("Did you mean %s or %s?", extra[0], extra[1])
		}
		return "Which bank did you mean?"
	case ClarifyOrdinalOutOfRange:
		n := "0"
		if len(extra) >= 1 {
			n = extra[0]
		}
		return fmt.Sprintf("I only have %s items in the last list.", n)
	case ClarifyEmptyRegistry:
		return "Our product catalog hasn't finished loading yet — please try again shortly."
	case ClarifyRequestTimeout:
		return "Sorry, that's taking longer than expected — could you try asking again?"
	default:
		return "Could you be more specific — a bank, a product category, or a specific question?"
	}
}

func topBanks(registry EntityRegistry, n int) string {
	banks := registry.Banks()
	if len(banks) > n {
		banks = banks[:n]
	}
	names := make([]string, 0, len(banks))
	for _, b := range banks {
		names = append(names, b.Canonical)
	}
	return strings.Join(names, ", ")
}

// ClarifyDecision builds a RoutingDecision around a single CLARIFY
// operation, satisfying the invariant that a CLARIFY decision's
// Operations list contains only CLARIFY.
func ClarifyDecision(kind ClarifyKind, registry EntityRegistry, extra ...string) RoutingDecision {
	prompt := BuildClarifyPrompt(kind, registry, extra...)
	return RoutingDecision{
		Operations:    []Operation{{Tag: OpClarify}},
		ClarifyPrompt: prompt,
	}
}
