package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/evidentbank/router/internal/router"
)

// Registry is the process-local, lazily-refreshed cache of the product
// store's distinct banks, categories, and product names. It satisfies
// router.EntityRegistry. Concurrent first-callers after a cache miss join
// a single rebuild rather than each issuing their own product-store query.
type Registry struct {
	store  router.ProductStore
	cfg    Config
	logger *zap.Logger

	mu          sync.RWMutex
	banks       []router.Alias
	categories  []router.Alias
	products    []router.ProductAlias
	lastRefresh time.Time

	sf singleflight.Group
}

// New builds a Registry backed by store and performs an initial load. A
// failed initial load leaves the registry empty rather than failing
// construction — the spec treats EmptyRegistry as a legitimate, clarify-
// worthy state rather than a startup error.
func New(store router.ProductStore, cfg Config, logger *zap.Logger) *Registry {
	cfg.applyDefaults()
	r := &Registry{store: store, cfg: cfg, logger: logger}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.refreshNow(ctx); err != nil {
		logger.Warn("entity registry initial load failed; starting empty", zap.Error(err))
	}
	return r
}

// Banks returns the cached bank aliases, refreshing first if the cache is
// stale.
func (r *Registry) Banks() []router.Alias {
	r.ensureFresh()
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.banks
}

// Categories returns the cached category aliases, refreshing first if the
// cache is stale.
func (r *Registry) Categories() []router.Alias {
	r.ensureFresh()
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.categories
}

// ProductNames returns the cached product name/bank pairs, refreshing first
// if the cache is stale.
func (r *Registry) ProductNames() []router.ProductAlias {
	r.ensureFresh()
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.products
}

// Empty reports whether no banks are known, refreshing first if the cache
// is stale.
func (r *Registry) Empty() bool {
	r.ensureFresh()
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.banks) == 0
}

// Invalidate forces the next access to rebuild immediately. Wire this to an
// ingestion-changed signal.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	r.lastRefresh = time.Time{}
	r.mu.Unlock()
}

func (r *Registry) ensureFresh() {
	r.mu.RLock()
	stale := time.Since(r.lastRefresh) >= r.cfg.RefreshInterval
	r.mu.RUnlock()
	if !stale {
		return
	}

	_, err, _ := r.sf.Do("refresh", func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return nil, r.refreshNow(ctx)
	})
	if err != nil {
		r.logger.Warn("entity registry refresh failed; serving stale cache", zap.Error(err))
	}
}

func (r *Registry) refreshNow(ctx context.Context) error {
	banks, err := r.store.DistinctBanks(ctx)
	if err != nil {
		return fmt.Errorf("load banks: %w", err)
	}
	categories, err := r.store.DistinctCategories(ctx)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	products, err := r.store.DistinctProductNames(ctx)
	if err != nil {
		return fmt.Errorf("load product names: %w", err)
	}

	r.mu.Lock()
	r.banks = buildAliases(banks)
	r.categories = buildCategoryAliases(categories)
	r.products = products
	r.lastRefresh = time.Now()
	r.mu.Unlock()
	return nil
}

func buildAliases(names []string) []router.Alias {
	out := make([]router.Alias, 0, len(names))
	for _, n := range names {
		out = append(out, router.Alias{Canonical: n, Aliases: []string{strings.ToLower(n)}})
	}
	return out
}

// buildCategoryAliases adds a naive plural alias alongside the singular
// canonical form, since catalog categories are stored singular ("credit
// card") but conversational utterances routinely pluralize them.
func buildCategoryAliases(names []string) []router.Alias {
	out := make([]router.Alias, 0, len(names))
	for _, n := range names {
		lower := strings.ToLower(n)
		aliases := []string{lower}
		if plural := pluralize(lower); plural != lower {
			aliases = append(aliases, plural)
		}
		out = append(out, router.Alias{Canonical: n, Aliases: aliases})
	}
	return out
}

func pluralize(s string) string {
	if strings.HasSuffix(s, "s") {
		return s
	}
	return s + "s"
}
