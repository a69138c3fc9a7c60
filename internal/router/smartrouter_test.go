package router

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRouteEndToEndScenarios exercises Route against the seven canonical
// utterance/state pairs: one COUNT, one pure FAQ, one split multi-op, one
// smart-fork LIST, one ordinal follow-up EXPLAIN, one empty-state CLARIFY,
// and one COMPARE.
func TestRouteEndToEndScenarios(t *testing.T) {
	cases := []struct {
		name   string
		setup  func() (*Context, string, string)
		assert func(t *testing.T, dec RoutingDecision)
	}{
		{
			name: "how many SBI credit cards -> COUNT",
			setup: func() (*Context, string, string) {
				store := &fakeStore{counts: map[string]int{"SBI|credit card|": 16}}
				rc := &Context{
					Store: store, FAQ: &fakeFAQIndex{}, Convo: newFakeConvoStore(),
					Registry: newFakeRegistry(), LLM: fakeGenerator{}, Config: DefaultConfig(),
				}
				return rc, "sess-1", "how many SBI credit cards are there"
			},
			assert: func(t *testing.T, dec RoutingDecision) {
				require.Len(t, dec.Operations, 1)
				assert.Equal(t, OpCount, dec.Operations[0].Tag)
				assert.Equal(t, "SBI", dec.Operations[0].Scope.Bank)
				assert.Equal(t, "credit card", dec.Operations[0].Scope.Category)
			},
		},
		{
			name: "how many steps to apply for a loan -> FAQ",
			setup: func() (*Context, string, string) {
				faq := &fakeFAQIndex{matches: []ScoredFAQMatch{
					{Similarity: 0.81, Match: FAQMatch{Category: "loan", Question: "how do I apply for a loan", Answer: "..."}},
				}}
				rc := &Context{
					Store: &fakeStore{}, FAQ: faq, Convo: newFakeConvoStore(),
					Registry: newFakeRegistry(), LLM: fakeGenerator{}, Config: DefaultConfig(),
				}
				return rc, "sess-2", "how many steps are there to apply for a loan"
			},
			assert: func(t *testing.T, dec RoutingDecision) {
				require.Len(t, dec.Operations, 1)
				assert.Equal(t, OpFAQ, dec.Operations[0].Tag)
			},
		},
		{
			name: "how many SBI credit cards and how to apply -> [COUNT, FAQ]",
			setup: func() (*Context, string, string) {
				store := &fakeStore{counts: map[string]int{"SBI|credit card|": 16}}
				faq := &fakeFAQIndex{matches: []ScoredFAQMatch{
					{Similarity: 0.77, Match: FAQMatch{Category: "credit card", Question: "how do I apply", Answer: "..."}},
				}}
				rc := &Context{
					Store: store, FAQ: faq, Convo: newFakeConvoStore(),
					Registry: newFakeRegistry(), LLM: fakeGenerator{}, Config: DefaultConfig(),
				}
				return rc, "sess-3", "how many SBI credit cards are there and how do I apply for one"
			},
			assert: func(t *testing.T, dec RoutingDecision) {
				require.Len(t, dec.Operations, 2)
				assert.Equal(t, OpCount, dec.Operations[0].Tag)
				assert.Equal(t, "SBI", dec.Operations[0].Scope.Bank)
				assert.Equal(t, OpFAQ, dec.Operations[1].Tag)
				assert.True(t, dec.Operations[1].SuppressGreeting)
			},
		},
		{
			name: "bare category inherits context bank -> smart-fork LIST",
			setup: func() (*Context, string, string) {
				convo := newFakeConvoStore()
				convo.turns["sess-4"] = LastTurn{
					SessionID: "sess-4", LastIntent: OpList, LastBank: "SBI", LastCategory: "debit card",
				}
				rc := &Context{
					Store: &fakeStore{}, FAQ: &fakeFAQIndex{}, Convo: convo,
					Registry: newFakeRegistry(), LLM: fakeGenerator{}, Config: DefaultConfig(),
				}
				return rc, "sess-4", "credit cards"
			},
			assert: func(t *testing.T, dec RoutingDecision) {
				require.Len(t, dec.Operations, 1)
				assert.Equal(t, OpList, dec.Operations[0].Tag)
				assert.Equal(t, "SBI", dec.Operations[0].Scope.Bank)
				assert.Equal(t, "credit card", dec.Operations[0].Scope.Category)
			},
		},
		{
			name: "ordinal follow-up against last product list -> EXPLAIN",
			setup: func() (*Context, string, string) {
				reg := newFakeRegistry()
				reg.products = append(reg.products,
					ProductAlias{Name: "SBI Prime Card", Bank: "SBI"},
					ProductAlias{Name: "SBI Elite Card", Bank: "SBI"},
				)
				convo := newFakeConvoStore()
				convo.turns["sess-5"] = LastTurn{
					SessionID: "sess-5", LastIntent: OpList, LastBank: "SBI", LastCategory: "credit card",
					LastProductList: []string{"SBI SimplyCLICK Card", "SBI Prime Card", "SBI Elite Card"},
				}
				rc := &Context{
					Store: &fakeStore{}, FAQ: &fakeFAQIndex{}, Convo: convo,
					Registry: reg, LLM: fakeGenerator{}, Config: DefaultConfig(),
				}
				return rc, "sess-5", "explain the second one"
			},
			assert: func(t *testing.T, dec RoutingDecision) {
				require.Len(t, dec.Operations, 1)
				assert.Equal(t, OpExplain, dec.Operations[0].Tag)
				assert.Equal(t, "SBI Prime Card", dec.Operations[0].Scope.ProductName)
			},
		},
		{
			name: "bare category with empty conversation state -> CLARIFY which bank",
			setup: func() (*Context, string, string) {
				rc := &Context{
					Store: &fakeStore{}, FAQ: &fakeFAQIndex{}, Convo: newFakeConvoStore(),
					Registry: newFakeRegistry(), LLM: fakeGenerator{}, Config: DefaultConfig(),
				}
				return rc, "sess-6", "credit cards"
			},
			assert: func(t *testing.T, dec RoutingDecision) {
				require.Len(t, dec.Operations, 1)
				assert.Equal(t, OpClarify, dec.Operations[0].Tag)
				assert.Contains(t, dec.ClarifyPrompt, "Which bank?")
			},
		},
		{
			name: "compare SBI vs HDFC home loan -> COMPARE",
			setup: func() (*Context, string, string) {
				reg := newFakeRegistry()
				reg.categories = append(reg.categories, Alias{Canonical: "home loan", Aliases: []string{"home loan", "home loans"}})
				rc := &Context{
					Store: &fakeStore{}, FAQ: &fakeFAQIndex{}, Convo: newFakeConvoStore(),
					Registry: reg, LLM: fakeGenerator{}, Config: DefaultConfig(),
				}
				return rc, "sess-7", "compare sbi vs hdfc home loan"
			},
			assert: func(t *testing.T, dec RoutingDecision) {
				require.Len(t, dec.Operations, 1)
				assert.Equal(t, OpCompare, dec.Operations[0].Tag)
				assert.Equal(t, "SBI", dec.Operations[0].Scope.Bank)
				assert.Equal(t, []string{"HDFC"}, dec.Operations[0].Scope.AltBanks)
				assert.Equal(t, "home loan", dec.Operations[0].Scope.Category)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rc, sessionID, utterance := tc.setup()
			dec := Route(context.Background(), rc, sessionID, utterance)
			tc.assert(t, dec)
		})
	}
}

func TestRouteGreetingShortCircuits(t *testing.T) {
	rc := &Context{
		Store: &fakeStore{}, FAQ: &fakeFAQIndex{}, Convo: newFakeConvoStore(),
		Registry: newFakeRegistry(), LLM: fakeGenerator{}, Config: DefaultConfig(),
	}
	dec := Route(context.Background(), rc, "sess-greet", "hello")
	require.Len(t, dec.Operations, 1)
	assert.Equal(t, OpFAQ, dec.Operations[0].Tag)
}

func TestRouteEmptyRegistryClarifies(t *testing.T) {
	rc := &Context{
		Store: &fakeStore{}, FAQ: &fakeFAQIndex{}, Convo: newFakeConvoStore(),
		Registry: &fakeRegistry{}, LLM: fakeGenerator{}, Config: DefaultConfig(),
	}
	dec := Route(context.Background(), rc, "sess-empty", "how many SBI credit cards")
	require.Len(t, dec.Operations, 1)
	assert.Equal(t, OpClarify, dec.Operations[0].Tag)
}

func TestRouteCommitsLastTurnForNonClarifyDecisions(t *testing.T) {
	store := &fakeStore{counts: map[string]int{"SBI|credit card|": 16}}
	convo := newFakeConvoStore()
	rc := &Context{
		Store: store, FAQ: &fakeFAQIndex{}, Convo: convo,
		Registry: newFakeRegistry(), LLM: fakeGenerator{}, Config: DefaultConfig(),
	}

	Route(context.Background(), rc, "sess-commit", "how many SBI credit cards are there")

	turn, ok := convo.Get(context.Background(), "sess-commit")
	require.True(t, ok)
	assert.Equal(t, OpCount, turn.LastIntent)
	assert.Equal(t, "SBI", turn.LastBank)
	assert.Equal(t, "credit card", turn.LastCategory)
}

func TestRouteDoesNotCommitOnClarify(t *testing.T) {
	convo := newFakeConvoStore()
	rc := &Context{
		Store: &fakeStore{}, FAQ: &fakeFAQIndex{}, Convo: convo,
		Registry: newFakeRegistry(), LLM: fakeGenerator{}, Config: DefaultConfig(),
	}

	Route(context.Background(), rc, "sess-no-commit", "credit cards")

	_, ok := convo.Get(context.Background(), "sess-no-commit")
	assert.False(t, ok)
}

func TestRouteAmbiguousScopeClarifiesNamingBothBanks(t *testing.T) {
	convo := newFakeConvoStore()
	rc := &Context{
		Store: &fakeStore{}, FAQ: &fakeFAQIndex{}, Convo: convo,
		Registry: newFakeRegistry(), LLM: fakeGenerator{}, Config: DefaultConfig(),
	}

	dec := Route(context.Background(), rc, "sess-ambiguous", "how many cards does SBI and HDFC have")

	require.Len(t, dec.Operations, 1)
	assert.Equal(t, OpClarify, dec.Operations[0].Tag)
	assert.Contains(t, dec.ClarifyPrompt, "SBI")
	assert.Contains(t, dec.ClarifyPrompt, "HDFC")

	_, ok := convo.Get(context.Background(), "sess-ambiguous")
	assert.False(t, ok, "an ambiguous-scope clarify must not commit a last turn")
}

func TestRouteRequestDeadlineReturnsApologyWithoutCommit(t *testing.T) {
	convo := newFakeConvoStore()
	cfg := DefaultConfig()
	cfg.RequestDeadline = time.Nanosecond
	rc := &Context{
		Store: &fakeStore{}, FAQ: &fakeFAQIndex{}, Convo: convo,
		Registry: newFakeRegistry(), LLM: fakeGenerator{}, Config: cfg,
	}

	dec := Route(context.Background(), rc, "sess-timeout", "how many SBI credit cards are there")

	require.Len(t, dec.Operations, 1)
	assert.Equal(t, OpClarify, dec.Operations[0].Tag)
	assert.Contains(t, dec.ClarifyPrompt, "taking longer")

	_, ok := convo.Get(context.Background(), "sess-timeout")
	assert.False(t, ok, "must not commit a decision computed past the request deadline")
}
