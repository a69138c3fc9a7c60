package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveScope(t *testing.T) {
	reg := newFakeRegistry()

	cases := []struct {
		name         string
		utterance    string
		wantBank     string
		wantCategory string
		wantProduct  string
		wantStrength float64
	}{
		{
			name:         "bank and category",
			utterance:    "how many credit cards does SBI have",
			wantBank:     "SBI",
			wantCategory: "credit card",
			wantStrength: 1.0,
		},
		{
			name:         "bank only",
			utterance:    "tell me about HDFC",
			wantBank:     "HDFC",
			wantStrength: 0.5,
		},
		{
			name:         "category only",
			utterance:    "list all loan products",
			wantCategory: "loan",
			wantStrength: 0.5,
		},
		{
			name:         "nothing resolved",
			utterance:    "what is the weather today",
			wantStrength: 0.0,
		},
		{
			name:        "product name resolves owning bank",
			utterance:   "explain the SBI SimplyCLICK Card",
			wantBank:    "SBI",
			wantProduct: "SBI SimplyCLICK Card",
		},
		{
			name:      "two banks recorded in order for compare",
			utterance: "compare hdfc and icici credit cards",
			wantBank:  "HDFC",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			scope := ResolveScope(tc.utterance, reg)
			assert.Equal(t, tc.wantBank, scope.Bank)
			if tc.wantCategory != "" {
				assert.Equal(t, tc.wantCategory, scope.Category)
			}
			if tc.wantProduct != "" {
				assert.Equal(t, tc.wantProduct, scope.ProductName)
			}
			if tc.wantStrength != 0 {
				assert.Equal(t, tc.wantStrength, scope.ScopeStrength)
			}
		})
	}
}

func TestResolveScopeRecordsAltBanks(t *testing.T) {
	reg := newFakeRegistry()
	scope := ResolveScope("compare hdfc and icici credit cards", reg)
	assert.Equal(t, "HDFC", scope.Bank)
	assert.Contains(t, scope.AltBanks, "ICICI")
}

func TestResolveScopeProductNameSubstringMatch(t *testing.T) {
	reg := newFakeRegistry()
	scope := ResolveScope("is the hdfc regalia card worth it", reg)
	assert.Equal(t, "HDFC Regalia Card", scope.ProductName)
}
