package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFollowUpOrdinal(t *testing.T) {
	reg := newFakeRegistry()
	last := LastTurn{LastIntent: OpList, LastProductList: []string{"SBI SimplyCLICK Card", "SBI Prime Card", "SBI Elite Card"}}

	rw, err := ResolveFollowUp("explain the second one", last, reg)
	require.NoError(t, err)
	require.NotNil(t, rw)
	assert.Equal(t, "explain SBI Prime Card", rw.Utterance)
	assert.Equal(t, OpExplain, rw.ForcedIntent)
}

func TestResolveFollowUpOrdinalLast(t *testing.T) {
	reg := newFakeRegistry()
	last := LastTurn{LastProductList: []string{"A", "B", "C"}}

	rw, err := ResolveFollowUp("tell me about the last one", last, reg)
	require.NoError(t, err)
	require.NotNil(t, rw)
	assert.Equal(t, "explain C", rw.Utterance)
}

func TestResolveFollowUpOrdinalOutOfRange(t *testing.T) {
	reg := newFakeRegistry()
	last := LastTurn{LastProductList: []string{"A", "B"}}

	_, err := ResolveFollowUp("explain the fifth one", last, reg)
	assert.ErrorIs(t, err, ErrOrdinalOutOfRange)
}

func TestResolveFollowUpOrdinalNoPriorList(t *testing.T) {
	reg := newFakeRegistry()
	last := LastTurn{LastIntent: OpCount, LastBank: "SBI"}

	_, err := ResolveFollowUp("explain the first one", last, reg)
	assert.ErrorIs(t, err, ErrNoPriorList)
}

func TestResolveFollowUpListThemAfterCount(t *testing.T) {
	reg := newFakeRegistry()
	last := LastTurn{LastIntent: OpCount, LastBank: "SBI", LastCategory: "credit card"}

	rw, err := ResolveFollowUp("list them", last, reg)
	require.NoError(t, err)
	require.NotNil(t, rw)
	assert.Equal(t, "list SBI credit card", rw.Utterance)
	assert.Equal(t, OpList, rw.ForcedIntent)
}

func TestResolveFollowUpListThemRequiresCountIntent(t *testing.T) {
	reg := newFakeRegistry()
	last := LastTurn{LastIntent: OpExplain, LastBank: "SBI", LastCategory: "credit card"}

	rw, err := ResolveFollowUp("show them", last, reg)
	require.NoError(t, err)
	assert.Nil(t, rw)
}

func TestResolveFollowUpRecommendWhy(t *testing.T) {
	reg := newFakeRegistry()
	last := LastTurn{LastIntent: OpRecommend, RecommendedProduct: "HDFC Regalia Card"}

	rw, err := ResolveFollowUp("why?", last, reg)
	require.NoError(t, err)
	require.NotNil(t, rw)
	assert.Equal(t, "explain HDFC Regalia Card", rw.Utterance)
	assert.Equal(t, OpExplain, rw.ForcedIntent)
}

func TestResolveFollowUpCompareWhichIsBetter(t *testing.T) {
	reg := newFakeRegistry()
	last := LastTurn{LastIntent: OpCompare, ComparedBanks: []string{"SBI", "HDFC"}, ComparedCategory: "home loan"}

	rw, err := ResolveFollowUp("which is better?", last, reg)
	require.NoError(t, err)
	require.NotNil(t, rw)
	assert.Equal(t, "recommend SBI HDFC home loan", rw.Utterance)
	assert.Equal(t, OpRecommend, rw.ForcedIntent)
}

func TestResolveFollowUpBareWhyAfterExplain(t *testing.T) {
	reg := newFakeRegistry()
	last := LastTurn{LastIntent: OpExplain, LastBank: "SBI", LastProductList: []string{"SBI SimplyCLICK Card"}}

	rw, err := ResolveFollowUp("why?", last, reg)
	require.NoError(t, err)
	require.NotNil(t, rw)
	assert.Contains(t, rw.Utterance, "SBI SimplyCLICK Card")
}

func TestResolveFollowUpContextOnlyBank(t *testing.T) {
	reg := newFakeRegistry()
	last := LastTurn{LastCategory: "credit card"}

	rw, err := ResolveFollowUp("hdfc", last, reg)
	require.NoError(t, err)
	require.NotNil(t, rw)
	assert.Equal(t, "list HDFC credit card", rw.Utterance)
	assert.Equal(t, OpList, rw.ForcedIntent)
}

func TestResolveFollowUpPassThroughUnchanged(t *testing.T) {
	reg := newFakeRegistry()
	last := LastTurn{LastIntent: OpList, LastBank: "SBI", LastCategory: "credit card"}

	rw, err := ResolveFollowUp("what about debit cards", last, reg)
	require.NoError(t, err)
	assert.Nil(t, rw)
}
