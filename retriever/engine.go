package retriever

import (
	"context"
	"fmt"
	"sync"

	"github.com/lookatitude/beluga-ai/ragcore"
)

// Engine owns one DomainRetriever per DomainTag and implements the
// multi-domain fan-out, per-domain quota merge, and retrieval gate that
// sit between the router and the generator.
type Engine struct {
	domains map[ragcore.DomainTag]*DomainRetriever
	cfg     Config
}

// NewEngine creates an Engine over the given per-domain retrievers.
func NewEngine(domains map[ragcore.DomainTag]*DomainRetriever, cfg Config) *Engine {
	return &Engine{domains: domains, cfg: cfg}
}

// Retrieve fans out retrieval across tags concurrently (tags is assumed
// ordered by priority, most dominant first), joins the results, merges
// them by per-domain quota into a Context, and evaluates the retrieval
// gate. attempt is 0 on the first pass and 1 on the post-rewrite retry.
func (e *Engine) Retrieve(ctx context.Context, query string, tags []ragcore.DomainTag, attempt int) ([]ragcore.RetrievalResult, ragcore.Context, ragcore.GateVerdict, error) {
	if len(tags) == 0 {
		return nil, ragcore.Context{}, ragcore.GateFail, fmt.Errorf("retriever: no domain tags given")
	}

	results := make([]ragcore.RetrievalResult, len(tags))
	errs := make([]error, len(tags))

	var wg sync.WaitGroup
	wg.Add(len(tags))
	for i, tag := range tags {
		go func(i int, tag ragcore.DomainTag) {
			defer wg.Done()
			dr, ok := e.domains[tag]
			if !ok {
				errs[i] = fmt.Errorf("retriever: no retriever configured for domain %q", tag)
				return
			}
			results[i], errs[i] = dr.Retrieve(ctx, query, e.cfg.KFetch, e.cfg.KRetrieve)
		}(i, tag)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, ragcore.Context{}, ragcore.GateFail, fmt.Errorf("retriever: domain %q: %w", tags[i], err)
		}
	}

	merged := mergeQuota(e.cfg.KContext, results)
	verdict := Verdict(e.cfg.Gate, query, merged, attempt)
	return results, contextFromScoredChunks(merged), verdict, nil
}
