package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSignals(t *testing.T) {
	cases := []struct {
		name      string
		utterance string
		check     func(t *testing.T, s Signals)
	}{
		{
			name:      "count cue",
			utterance: "how many credit cards does sbi offer",
			check: func(t *testing.T, s Signals) {
				assert.True(t, s.Count)
				assert.False(t, s.HasNonProductTarget())
			},
		},
		{
			name:      "non-product target overrides count",
			utterance: "how many steps to apply for a credit card",
			check: func(t *testing.T, s Signals) {
				assert.True(t, s.Count)
				assert.True(t, s.HasNonProductTarget())
			},
		},
		{
			name:      "list cue",
			utterance: "show me all hdfc loans",
			check: func(t *testing.T, s Signals) {
				assert.True(t, s.List)
			},
		},
		{
			name:      "compare cue",
			utterance: "compare hdfc vs icici credit cards",
			check: func(t *testing.T, s Signals) {
				assert.True(t, s.Compare)
			},
		},
		{
			name:      "recommend cue",
			utterance: "which is better for a student",
			check: func(t *testing.T, s Signals) {
				assert.True(t, s.Recommend)
			},
		},
		{
			name:      "conjunction detected",
			utterance: "how many sbi cards are there and how do I apply",
			check: func(t *testing.T, s Signals) {
				assert.True(t, s.HasConjunction)
				assert.GreaterOrEqual(t, s.ConjunctionIndex, 0)
			},
		},
		{
			name:      "no conjunction",
			utterance: "how many sbi credit cards are there",
			check: func(t *testing.T, s Signals) {
				assert.False(t, s.HasConjunction)
				assert.Equal(t, -1, s.ConjunctionIndex)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, ExtractSignals(tc.utterance))
		})
	}
}

func TestSplitOnConjunction(t *testing.T) {
	before, after, ok := SplitOnConjunction("how many sbi cards are there and how do I apply")
	assert.True(t, ok)
	assert.Equal(t, "how many sbi cards are there", before)
	assert.Equal(t, "how do I apply", after)

	_, _, ok = SplitOnConjunction("how many sbi credit cards are there")
	assert.False(t, ok)
}
