package registry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/evidentbank/router/internal/router"
)

type fakeStore struct {
	banks      []string
	categories []string
	products   []router.ProductAlias
	err        error
	calls      int32
}

func (f *fakeStore) Count(ctx context.Context, bank, category, productName string) (int, error) { return 0, nil }
func (f *fakeStore) List(ctx context.Context, bank, category string) ([]router.ProductRecord, error) {
	return nil, nil
}
func (f *fakeStore) Get(ctx context.Context, bank, name string) (*router.ProductRecord, error) {
	return nil, nil
}

func (f *fakeStore) DistinctBanks(ctx context.Context) ([]string, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return f.banks, nil
}

func (f *fakeStore) DistinctCategories(ctx context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.categories, nil
}

func (f *fakeStore) DistinctProductNames(ctx context.Context) ([]router.ProductAlias, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

func TestRegistryLoadsFromStore(t *testing.T) {
	store := &fakeStore{
		banks:      []string{"HDFC", "SBI"},
		categories: []string{"credit card", "loan"},
		products:   []router.ProductAlias{{Name: "SBI SimplyCLICK Card", Bank: "SBI"}},
	}

	reg := New(store, Config{}, zap.NewNop())

	banks := reg.Banks()
	require.Len(t, banks, 2)
	assert.Equal(t, "HDFC", banks[0].Canonical)
	assert.Equal(t, []string{"hdfc"}, banks[0].Aliases)

	categories := reg.Categories()
	require.Len(t, categories, 2)
	assert.Equal(t, "credit card", categories[0].Canonical)
	assert.Equal(t, []string{"credit card", "credit cards"}, categories[0].Aliases)

	products := reg.ProductNames()
	require.Len(t, products, 1)
	assert.Equal(t, "SBI", products[0].Bank)

	assert.False(t, reg.Empty())
}

func TestRegistryEmptyWhenStoreHasNoBanks(t *testing.T) {
	store := &fakeStore{}
	reg := New(store, Config{}, zap.NewNop())

	assert.True(t, reg.Empty())
	assert.Empty(t, reg.Banks())
}

func TestRegistrySurvivesFailedInitialLoad(t *testing.T) {
	store := &fakeStore{err: errors.New("product store unavailable")}
	reg := New(store, Config{}, zap.NewNop())

	assert.True(t, reg.Empty())
}

func TestRegistryDoesNotRefetchBeforeTTLExpires(t *testing.T) {
	store := &fakeStore{banks: []string{"SBI"}}
	reg := New(store, Config{RefreshInterval: time.Hour}, zap.NewNop())

	callsAfterInit := atomic.LoadInt32(&store.calls)

	reg.Banks()
	reg.Categories()
	reg.Empty()

	assert.Equal(t, callsAfterInit, atomic.LoadInt32(&store.calls))
}

func TestRegistryInvalidateForcesRebuildOnNextAccess(t *testing.T) {
	store := &fakeStore{banks: []string{"SBI"}}
	reg := New(store, Config{RefreshInterval: time.Hour}, zap.NewNop())

	reg.Invalidate()
	store.banks = []string{"SBI", "HDFC"}

	banks := reg.Banks()
	require.Len(t, banks, 2)
}

func TestRegistryServesStaleCacheWhenRebuildFails(t *testing.T) {
	store := &fakeStore{banks: []string{"SBI"}}
	reg := New(store, Config{}, zap.NewNop())

	store.err = errors.New("product store down")
	reg.Invalidate()

	banks := reg.Banks()
	require.Len(t, banks, 1)
	assert.Equal(t, "SBI", banks[0].Canonical)
}
