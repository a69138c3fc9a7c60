package router

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Route is the Smart Router façade: the single entry point cmd/router's
// HTTP handler calls. It composes, in order, greeting detection, follow-up
// resolution, scope resolution (with context-bank inheritance), signal
// extraction, evidence retrieval, and operation validation — then commits
// the resulting LastTurn for every decision except CLARIFY. A greeting
// short-circuits to FAQ before any of this and commits nothing.
func Route(ctx context.Context, rc *Context, sessionID, utterance string) RoutingDecision {
	ctx, cancel := context.WithTimeout(ctx, rc.Config.RequestDeadline)
	defer cancel()

	trimmed := strings.TrimSpace(utterance)

	if isGreeting(trimmed, rc.Config.Greetings) {
		return RoutingDecision{Operations: []Operation{{Tag: OpFAQ, SuppressGreeting: false}}}
	}

	if rc.Registry.Empty() {
		return ClarifyDecision(ClarifyEmptyRegistry, rc.Registry)
	}

	last, _ := rc.Convo.Get(ctx, sessionID)

	working := trimmed
	var forcedIntent OperationTag
	if !last.IsEmpty() {
		rewrite, err := ResolveFollowUp(trimmed, last, rc.Registry)
		if err != nil {
			return resolveFollowUpError(err, last, rc.Registry)
		}
		if rewrite != nil {
			working = rewrite.Utterance
			forcedIntent = rewrite.ForcedIntent
		}
	}

	scope := ResolveScope(working, rc.Registry)

	// Context-bank inheritance: a bare category utterance inherits the
	// prior turn's bank, except for COMPARE/RECOMMEND, which must name
	// their own banks to mean anything.
	contextBank := ""
	if scope.HasCategory() && !scope.HasBank() && !last.IsEmpty() {
		contextBank = last.LastBank
	}

	signals := ExtractSignals(working)
	if forcedIntent != "" {
		applyForcedIntent(&signals, forcedIntent)
	}

	evidence := RetrieveEvidence(ctx, rc, scope, working)

	if ctx.Err() != nil {
		rc.logger().Warn("request deadline exceeded, returning apology",
			zap.String("session_id", sessionID))
		return ClarifyDecision(ClarifyRequestTimeout, rc.Registry)
	}

	ops := ValidateOperations(working, scope, signals, evidence, contextBank, rc.Config)

	decision := RoutingDecision{
		Operations:         ops,
		RewrittenUtterance: working,
		Debug: DebugInfo{
			Signals:   signals,
			Evidence:  evidence,
			Rewritten: working,
		},
	}

	if len(ops) == 1 && ops[0].Tag == OpClarify {
		clarifyScope := ops[0].Scope
		if len(clarifyScope.AltBanks) > 0 {
			rc.logger().Debug("ambiguous scope, clarifying",
				zap.Error(ErrAmbiguousScope),
				zap.String("bank", clarifyScope.Bank),
				zap.String("alt_bank", clarifyScope.AltBanks[0]),
			)
			decision.ClarifyPrompt = BuildClarifyPrompt(ClarifyAmbiguousScope, rc.Registry, clarifyScope.Bank, clarifyScope.AltBanks[0])
		} else {
			decision.ClarifyPrompt = clarifyPromptForScope(clarifyScope, rc.Registry)
		}
		return decision
	}

	commitLastTurn(ctx, rc, sessionID, trimmed, ops)
	return decision
}

func resolveFollowUpError(err error, last LastTurn, registry EntityRegistry) RoutingDecision {
	switch {
	case errors.Is(err, ErrOrdinalOutOfRange):
		return ClarifyDecision(ClarifyOrdinalOutOfRange, registry, strconv.Itoa(len(last.LastProductList)))
	case errors.Is(err, ErrNoPriorList):
		return ClarifyDecision(ClarifyVague, registry)
	default:
		return ClarifyDecision(ClarifyVague, registry)
	}
}

func applyForcedIntent(s *Signals, tag OperationTag) {
	*s = Signals{}
	switch tag {
	case OpExplain:
		s.Explain = true
	case OpList:
		s.List = true
	case OpRecommend:
		s.Recommend = true
	case OpCompare:
		s.Compare = true
	case OpCount:
		s.Count = true
	}
}

func clarifyPromptForScope(scope Scope, registry EntityRegistry) string {
	switch {
	case !scope.HasBank() && !scope.HasCategory():
		return BuildClarifyPrompt(ClarifyVague, registry)
	case !scope.HasBank():
		return BuildClarifyPrompt(ClarifyMissingBank, registry)
	case !scope.HasCategory():
		return BuildClarifyPrompt(ClarifyMissingCategory, registry)
	default:
		return BuildClarifyPrompt(ClarifyVague, registry)
	}
}

func commitLastTurn(ctx context.Context, rc *Context, sessionID, originalUtterance string, ops []Operation) {
	if len(ops) == 0 {
		return
	}
	primary := ops[0]
	turn := LastTurn{
		SessionID:     sessionID,
		LastIntent:    primary.Tag,
		LastBank:      primary.Scope.Bank,
		LastCategory:  primary.Scope.Category,
		LastUtterance: originalUtterance,
	}

	switch primary.Tag {
	case OpRecommend:
		turn.RecommendedProduct = primary.Scope.ProductName
	case OpCompare:
		banks := []string{primary.Scope.Bank}
		banks = append(banks, primary.Scope.AltBanks...)
		turn.ComparedBanks = banks
		turn.ComparedCategory = primary.Scope.Category
	case OpList, OpExplainAll:
		// LastProductList is not set here: the router layer only knows
		// the scope that produced the list, and no caller in this module
		// writes the resolved product names back into the store.
	}

	if err := rc.Convo.Commit(ctx, turn); err != nil {
		rc.logger().Warn("conversation state commit failed", zap.Error(err), zap.String("session_id", sessionID))
	}
}

func isGreeting(utterance string, greetings map[string]struct{}) bool {
	lower := strings.ToLower(strings.Trim(utterance, " !.?"))
	_, ok := greetings[lower]
	return ok
}
