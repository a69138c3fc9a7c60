package router

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RetrieveEvidence issues the product-store count and FAQ top_k queries
// concurrently, joins them, and substitutes sentinel values on timeout or
// backend error so the operation validator always receives a complete
// Evidence value. Each call is retried once with a fixed backoff before
// falling back to the sentinel, per the TransientBackendUnavailable
// recovery policy.
func RetrieveEvidence(ctx context.Context, rc *Context, scope Scope, utterance string) Evidence {
	var wg sync.WaitGroup
	var count int
	var faqSim float64
	var faqMatch FAQMatch

	wg.Add(2)

	go func() {
		defer wg.Done()
		count = fetchCount(ctx, rc, scope)
	}()

	go func() {
		defer wg.Done()
		faqSim, faqMatch = fetchTopFAQ(ctx, rc, utterance)
	}()

	wg.Wait()

	return Evidence{
		DBCount:          count,
		FAQTopSimilarity: faqSim,
		FAQTopMetadata:   faqMatch,
	}
}

func fetchCount(ctx context.Context, rc *Context, scope Scope) int {
	if !scope.HasBank() && !scope.HasCategory() {
		// Neither dimension resolved: the validator must never route to
		// COUNT on count-signal alone, so the count is omitted outright.
		return UnknownCount
	}

	var n int
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		n, err = callWithTimeout(ctx, rc.Config.EvidenceTimeout, func(cctx context.Context) (int, error) {
			return rc.Store.Count(cctx, scope.Bank, scope.Category, scope.ProductName)
		})
		if err == nil {
			return n
		}
		if attempt == 0 {
			time.Sleep(rc.Config.EvidenceRetryBackoff)
		}
	}
	rc.logger().Warn("product store count unavailable, substituting unknown sentinel",
		zap.Error(err))
	return UnknownCount
}

func fetchTopFAQ(ctx context.Context, rc *Context, utterance string) (float64, FAQMatch) {
	var matches []ScoredFAQMatch
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		matches, err = callWithTimeout(ctx, rc.Config.EvidenceTimeout, func(cctx context.Context) ([]ScoredFAQMatch, error) {
			return rc.FAQ.TopK(cctx, utterance, 1)
		})
		if err == nil {
			break
		}
		if attempt == 0 {
			time.Sleep(rc.Config.EvidenceRetryBackoff)
		}
	}
	if err != nil {
		rc.logger().Warn("faq index unavailable, substituting zero similarity", zap.Error(err))
		return 0, FAQMatch{}
	}
	if len(matches) == 0 {
		return 0, FAQMatch{}
	}
	return matches[0].Similarity, matches[0].Match
}

// callWithTimeout runs fn under a per-call deadline, mapping a context
// timeout or any returned error to the caller's retry loop uniformly.
func callWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		val T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn(cctx)
		ch <- result{v, err}
	}()

	select {
	case r := <-ch:
		return r.val, r.err
	case <-cctx.Done():
		var zero T
		return zero, ErrTransientBackendUnavailable
	}
}

func (rc *Context) logger() *zap.Logger {
	if rc.Logger != nil {
		return rc.Logger
	}
	return zap.NewNop()
}
