package router

import "context"

// fakeRegistry is a minimal in-memory EntityRegistry for table-driven tests.
type fakeRegistry struct {
	banks      []Alias
	categories []Alias
	products   []ProductAlias
}

func (f *fakeRegistry) Banks() []Alias               { return f.banks }
func (f *fakeRegistry) Categories() []Alias           { return f.categories }
func (f *fakeRegistry) ProductNames() []ProductAlias  { return f.products }
func (f *fakeRegistry) Empty() bool                   { return len(f.banks) == 0 }

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		banks: []Alias{
			{Canonical: "SBI", Aliases: []string{"sbi", "state bank of india"}},
			{Canonical: "HDFC", Aliases: []string{"hdfc"}},
			{Canonical: "ICICI", Aliases: []string{"icici"}},
		},
		categories: []Alias{
			{Canonical: "credit card", Aliases: []string{"credit card", "credit cards"}},
			{Canonical: "debit card", Aliases: []string{"debit card", "debit cards"}},
			{Canonical: "loan", Aliases: []string{"loan", "loans"}},
		},
		products: []ProductAlias{
			{Name: "SBI SimplyCLICK Card", Bank: "SBI"},
			{Name: "HDFC Regalia Card", Bank: "HDFC"},
		},
	}
}

// fakeStore is an in-memory ProductStore.
type fakeStore struct {
	counts map[string]int
	err    error
}

func (f *fakeStore) key(bank, category, product string) string { return bank + "|" + category + "|" + product }

func (f *fakeStore) Count(ctx context.Context, bank, category, productName string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.counts[f.key(bank, category, productName)], nil
}

func (f *fakeStore) List(ctx context.Context, bank, category string) ([]ProductRecord, error) {
	return nil, nil
}

func (f *fakeStore) Get(ctx context.Context, bank, name string) (*ProductRecord, error) {
	return nil, nil
}

func (f *fakeStore) DistinctBanks(ctx context.Context) ([]string, error) { return nil, nil }

func (f *fakeStore) DistinctCategories(ctx context.Context) ([]string, error) { return nil, nil }

func (f *fakeStore) DistinctProductNames(ctx context.Context) ([]ProductAlias, error) { return nil, nil }

// fakeFAQIndex is an in-memory FAQIndex.
type fakeFAQIndex struct {
	matches []ScoredFAQMatch
	err     error
}

func (f *fakeFAQIndex) TopK(ctx context.Context, query string, k int) ([]ScoredFAQMatch, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.matches, nil
}

// fakeConvoStore is an in-memory ConversationStore.
type fakeConvoStore struct {
	turns map[string]LastTurn
}

func newFakeConvoStore() *fakeConvoStore {
	return &fakeConvoStore{turns: map[string]LastTurn{}}
}

func (f *fakeConvoStore) Get(ctx context.Context, sessionID string) (LastTurn, bool) {
	t, ok := f.turns[sessionID]
	return t, ok
}

func (f *fakeConvoStore) Commit(ctx context.Context, turn LastTurn) error {
	f.turns[turn.SessionID] = turn
	return nil
}

func (f *fakeConvoStore) Clear(ctx context.Context, sessionID string) error {
	delete(f.turns, sessionID)
	return nil
}

// fakeGenerator is a no-op Generator.
type fakeGenerator struct{}

func (fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return "", nil
}
