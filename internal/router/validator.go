package router

import "strings"

// ValidateOperations is the operation validator: the decision procedure
// that combines Scope, Signals, and Evidence into an ordered Operation
// list. Rules are evaluated top to bottom with early return — this is the
// heart of why the router is "evidence-based" rather than keyword-driven.
func ValidateOperations(utterance string, scope Scope, signals Signals, evidence Evidence, contextBank string, cfg Config) []Operation {
	// Rule 1: non-product target override. This single rule eliminates
	// the dominant false-positive class ("how many steps to apply").
	if signals.HasNonProductTarget() {
		if signals.HasConjunction && hasProductCountClause(utterance, signals) {
			before, after, ok := SplitOnConjunction(utterance)
			if ok {
				countOp := Operation{Tag: OpCount, Scope: scope, Evidence: evidence, RewrittenClause: before}
				faqOp := Operation{Tag: OpFAQ, Scope: scope, Evidence: evidence, RewrittenClause: after, SuppressGreeting: true}
				return []Operation{countOp, faqOp}
			}
		}
		return []Operation{{Tag: OpFAQ, Scope: scope, Evidence: evidence}}
	}

	// Rule 2: compare/recommend take priority over count. A user asking
	// "which SBI card is best" does not want a number.
	if (signals.Compare || signals.Recommend) && scope.HasCategory() && scope.HasBank() {
		if signals.Compare {
			if len(scope.AltBanks) == 0 {
				// Exactly one bank named: proceed as EXPLAIN_ALL of the
				// category filtered to that bank rather than clarifying.
				return []Operation{{Tag: OpExplainAll, Scope: scope, Evidence: evidence}}
			}
			return []Operation{{Tag: OpCompare, Scope: scope, Evidence: evidence}}
		}
		return []Operation{{Tag: OpRecommend, Scope: scope, Evidence: evidence}}
	}

	// Rule 2.5: ambiguous scope. Multiple banks named in one utterance
	// with no compare/recommend signal to justify committing to either —
	// "how many cards does SBI and HDFC have" must not silently pick SBI.
	if len(scope.AltBanks) > 0 && !signals.Compare && !signals.Recommend {
		return []Operation{{Tag: OpClarify, Scope: scope, Evidence: evidence}}
	}

	// Rule 3: explicit COUNT. db_count >= 1 is the load-bearing guard —
	// "how many elves does SBI offer" cannot route to COUNT because the
	// store returns zero.
	if signals.Count && evidence.DBCount >= 1 && scope.ScopeStrength >= 0.5 {
		return []Operation{{Tag: OpCount, Scope: scope, Evidence: evidence}}
	}

	// Rule 4: explicit LIST.
	if signals.List {
		if evidence.DBCount >= 1 {
			return []Operation{{Tag: OpList, Scope: scope, Evidence: evidence}}
		}
		if scope.ScopeStrength < 0.5 {
			return clarifyMissingDimension(scope, evidence)
		}
	}

	// Rule 5: implicit LIST, the "smart fork". No explicit list signal,
	// but the utterance resolves to a category and a conversation-context
	// bank is available (threaded in from the smart-router façade).
	if !signals.List && scope.HasCategory() && !scope.HasBank() {
		if contextBank != "" {
			forked := scope
			forked.Bank = contextBank
			forked.ScopeStrength = scopeStrength(forked)
			return []Operation{{Tag: OpList, Scope: forked, Evidence: evidence}}
		}
		return clarifyMissingDimension(scope, evidence)
	}

	// Rule 6: EXPLAIN / EXPLAIN_ALL.
	if signals.Explain && scope.HasProduct() {
		return []Operation{{Tag: OpExplain, Scope: scope, Evidence: evidence}}
	}
	if signals.ExplainAll && scope.HasCategory() {
		return []Operation{{Tag: OpExplainAll, Scope: scope, Evidence: evidence}}
	}

	// Rule 7: FAQ by evidence alone, no lexical signal required.
	if evidence.FAQTopSimilarity >= cfg.FAQSimilarityThreshold {
		return []Operation{{Tag: OpFAQ, Scope: scope, Evidence: evidence}}
	}

	// Rule 8: bare bank or bare category with no signals at all.
	if scope.ScopeStrength == 0.5 && noSignalsFired(signals) {
		return clarifyMissingDimension(scope, evidence)
	}

	// Rule 9: LLM fallback.
	return []Operation{{Tag: OpLLMFallback, Scope: scope, Evidence: evidence}}
}

func noSignalsFired(s Signals) bool {
	return !s.Count && !s.List && !s.Explain && !s.ExplainAll && !s.Compare && !s.Recommend
}

// hasProductCountClause reports whether the count cue in the utterance
// targets a product noun rather than exclusively a non-product one, which
// is what justifies splitting into [COUNT, FAQ] instead of a sole FAQ.
func hasProductCountClause(utterance string, signals Signals) bool {
	before, _, ok := SplitOnConjunction(utterance)
	if !ok {
		return false
	}
	lower := strings.ToLower(before)
	if !containsAny(lower, countTriggers) {
		return false
	}
	for _, noun := range signals.NonProductTargets {
		if wordBoundaryContains(lower, noun) {
			return false
		}
	}
	return true
}

func clarifyMissingDimension(scope Scope, evidence Evidence) []Operation {
	return []Operation{{Tag: OpClarify, Scope: scope, Evidence: evidence}}
}
