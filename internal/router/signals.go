package router

import "strings"

// signalRule is one row of the fixed, ordered lexical cue table.
type signalRule struct {
	triggers []string
	apply    func(*Signals)
}

var countTriggers = []string{"how many", "count", "number of", "total"}

var signalRules = []signalRule{
	{countTriggers, func(s *Signals) { s.Count = true }},
	{[]string{"list", "show", "display", "what are", "give me all"}, func(s *Signals) { s.List = true }},
	{[]string{"explain", "tell me about", "details of", "what is"}, func(s *Signals) { s.Explain = true }},
	{[]string{"explain all", "describe all", "each of the"}, func(s *Signals) { s.ExplainAll = true }},
	{[]string{"compare", "vs", "versus", "difference between"}, func(s *Signals) { s.Compare = true }},
	{[]string{"best", "recommend", "which is better", "suitable for", "good for"}, func(s *Signals) { s.Recommend = true }},
}

// nonProductNouns are objects that turn an apparent quantity question into
// a procedural one. They are collected only when a count/quantity cue is
// present, wherever they appear in the utterance; whether the noun is the
// object of that cue is not checked.
var nonProductNouns = []string{
	"step", "steps", "document", "documents", "process", "procedure",
	"way", "apply", "application", "close", "block", "withdraw", "open",
}

var conjunctionMarkers = []string{" and ", ";", " + ", " also ", " plus "}

// ExtractSignals tokenizes utterance and emits the boolean flags the
// operation validator reasons over. Signals never decide an operation on
// their own — they are candidates to be corroborated by scope and
// evidence.
func ExtractSignals(utterance string) Signals {
	lower := strings.ToLower(utterance)

	var s Signals
	for _, rule := range signalRules {
		if containsAny(lower, rule.triggers) {
			rule.apply(&s)
		}
	}

	if s.Count {
		for _, noun := range nonProductNouns {
			if wordBoundaryContains(lower, noun) {
				s.NonProductTargets = append(s.NonProductTargets, noun)
			}
		}
	}

	s.ConjunctionIndex = -1
	for _, marker := range conjunctionMarkers {
		if idx := strings.Index(lower, marker); idx >= 0 {
			s.HasConjunction = true
			if s.ConjunctionIndex == -1 || idx < s.ConjunctionIndex {
				s.ConjunctionIndex = idx
			}
		}
	}

	return s
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// SplitOnConjunction splits utterance at its first conjunction marker into
// a (scoped clause, residual clause) pair, used by the operation
// validator's multi-operation splitter (rule 1).
func SplitOnConjunction(utterance string) (before, after string, ok bool) {
	lower := strings.ToLower(utterance)
	bestIdx := -1
	bestLen := 0
	for _, marker := range conjunctionMarkers {
		if idx := strings.Index(lower, marker); idx >= 0 {
			if bestIdx == -1 || idx < bestIdx {
				bestIdx = idx
				bestLen = len(marker)
			}
		}
	}
	if bestIdx == -1 {
		return "", "", false
	}
	before = strings.TrimSpace(utterance[:bestIdx])
	after = strings.TrimSpace(utterance[bestIdx+bestLen:])
	return before, after, true
}
