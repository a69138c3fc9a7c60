package router

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/evidentbank/router/internal/util"
)

// Rewrite is the Follow-up Resolver's output: a rewritten, self-contained
// utterance plus an optional forced operation tag.
type Rewrite struct {
	Utterance    string
	ForcedIntent OperationTag
}

var ordinalWords = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
}

var ordinalRe = regexp.MustCompile(`(?i)\b(the\s+)?(first|second|third|fourth|fifth|sixth|seventh|eighth|ninth|tenth|last|#\d+|number\s+\d+)(\s+one)?\b`)
var listThemRe = regexp.MustCompile(`(?i)^\s*(list|show)\s+(them|those|these)\s*$`)
var bareWhyHowRe = regexp.MustCompile(`(?i)^\s*(why\??|how\??|what about\s+.*)\s*$`)

// ResolveFollowUp rewrites a context-dependent utterance against last, per
// the anchored cases in priority order. It is a pure function with no
// back-reference to the router or conversation store — the smart-router
// façade owns calling it and persisting the result, which breaks the
// resolver/router cycle named in the design notes.
//
// Returns (nil, nil) when no anchored case applies; the caller passes the
// original utterance through unchanged.
func ResolveFollowUp(utterance string, last LastTurn, registry EntityRegistry) (*Rewrite, error) {
	trimmed := strings.TrimSpace(utterance)

	if rw, err := resolveOrdinal(trimmed, last); rw != nil || err != nil {
		return rw, err
	}
	if rw := resolveListThem(trimmed, last); rw != nil {
		return rw, nil
	}
	if rw := resolveRecommendWhy(trimmed, last); rw != nil {
		return rw, nil
	}
	if rw := resolveCompareWhich(trimmed, last); rw != nil {
		return rw, nil
	}
	if rw := resolveBareWhyHow(trimmed, last); rw != nil {
		return rw, nil
	}
	if rw := resolveContextOnlyBank(trimmed, last, registry); rw != nil {
		return rw, nil
	}
	return nil, nil
}

// resolveOrdinal implements anchored case 1: "explain the second one".
func resolveOrdinal(utterance string, last LastTurn) (*Rewrite, error) {
	m := ordinalRe.FindStringSubmatch(strings.ToLower(utterance))
	if m == nil {
		return nil, nil
	}
	token := m[2]

	if len(last.LastProductList) == 0 {
		return nil, ErrNoPriorList
	}

	idx, err := ordinalIndex(token, len(last.LastProductList))
	if err != nil {
		return nil, err
	}

	name := last.LastProductList[idx]
	return &Rewrite{Utterance: fmt.Sprintf("explain %s", name), ForcedIntent: OpExplain}, nil
}

func ordinalIndex(token string, size int) (int, error) {
	var n int
	switch {
	case token == "last":
		return size - 1, nil
	case strings.HasPrefix(token, "#"):
		v, err := strconv.Atoi(token[1:])
		if err != nil {
			return 0, ErrOrdinalOutOfRange
		}
		n = v
	case strings.HasPrefix(token, "number "):
		v, err := strconv.Atoi(strings.TrimSpace(token[len("number "):]))
		if err != nil {
			return 0, ErrOrdinalOutOfRange
		}
		n = v
	default:
		v, ok := ordinalWords[token]
		if !ok {
			return 0, ErrOrdinalOutOfRange
		}
		n = v
	}
	if n < 1 || n > size {
		return 0, ErrOrdinalOutOfRange
	}
	return n - 1, nil
}

// resolveListThem implements anchored case 2: "list them" after a COUNT.
func resolveListThem(utterance string, last LastTurn) *Rewrite {
	if !listThemRe.MatchString(utterance) {
		return nil
	}
	if last.LastIntent != OpCount || last.LastBank == "" || last.LastCategory == "" {
		return nil
	}
	return &Rewrite{
		Utterance:    fmt.Sprintf("list %s %s", last.LastBank, last.LastCategory),
		ForcedIntent: OpList,
	}
}

// resolveRecommendWhy supplements the anchored set: "why?" after a
// RECOMMEND resolves against the last recommended product.
func resolveRecommendWhy(utterance string, last LastTurn) *Rewrite {
	if last.LastIntent != OpRecommend || last.RecommendedProduct == "" {
		return nil
	}
	lower := strings.ToLower(utterance)
	if lower != "why" && lower != "why?" && lower != "reason" && lower != "reason?" &&
		lower != "benefit" && lower != "benefit?" && lower != "why is that" {
		return nil
	}
	return &Rewrite{
		Utterance:    fmt.Sprintf("explain %s", last.RecommendedProduct),
		ForcedIntent: OpExplain,
	}
}

// resolveCompareWhich supplements the anchored set: "which is better?"
// after a COMPARE resolves against the compared bank/category pair.
func resolveCompareWhich(utterance string, last LastTurn) *Rewrite {
	if last.LastIntent != OpCompare || len(last.ComparedBanks) == 0 || last.ComparedCategory == "" {
		return nil
	}
	lower := strings.ToLower(utterance)
	if lower != "which is better" && lower != "which is better?" &&
		lower != "which should i pick" && lower != "which should i pick?" {
		return nil
	}
	banks := strings.Join(last.ComparedBanks, " ")
	return &Rewrite{
		Utterance:    fmt.Sprintf("recommend %s %s", banks, last.ComparedCategory),
		ForcedIntent: OpRecommend,
	}
}

// resolveBareWhyHow implements anchored case 3: a bare "why"/"how"/"what
// about X" after an EXPLAIN or COMPARE is made self-contained by
// prepending the previous product name(s).
func resolveBareWhyHow(utterance string, last LastTurn) *Rewrite {
	if !bareWhyHowRe.MatchString(utterance) {
		return nil
	}
	if last.LastIntent != OpExplain && last.LastIntent != OpCompare {
		return nil
	}
	subject := last.LastBank
	if len(last.LastProductList) > 0 {
		subject = last.LastProductList[0]
	}
	if subject == "" {
		return nil
	}
	return &Rewrite{Utterance: strings.TrimSpace(utterance + " " + subject)}
}

// resolveContextOnlyBank implements anchored case 4: the utterance is
// exactly a known bank name and a last_category exists in memory.
func resolveContextOnlyBank(utterance string, last LastTurn, registry EntityRegistry) *Rewrite {
	if last.LastCategory == "" {
		return nil
	}
	lower := strings.ToLower(strings.TrimSpace(utterance))
	for _, bank := range registry.Banks() {
		if util.ContainsString(bank.Aliases, lower) {
			return &Rewrite{
				Utterance:    fmt.Sprintf("list %s %s", bank.Canonical, last.LastCategory),
				ForcedIntent: OpList,
			}
		}
	}
	return nil
}
