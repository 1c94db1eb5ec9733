package retriever

import (
	"github.com/lookatitude/beluga-ai/lexical"
	"github.com/lookatitude/beluga-ai/ragcore"
)

// GateConfig holds the retrieval-quality gate thresholds.
type GateConfig struct {
	MinDocs         int
	MinAvgSim       float64
	MinKeywordRatio float64
}

// DefaultGateConfig returns the spec's typical thresholds.
func DefaultGateConfig() GateConfig {
	return GateConfig{MinDocs: 3, MinAvgSim: 0.35, MinKeywordRatio: 0.2}
}

// Verdict evaluates the retrieval-quality gate over the chunks assembled
// for query. attempt is the zero-based retrieval attempt for this query:
// 0 for the first pass, 1 for the post-rewrite retry. A failing gate
// returns RETRY on attempt 0, spending the query's single retry budget,
// and FAIL once that budget is spent.
func Verdict(cfg GateConfig, query string, chunks []ragcore.ScoredChunk, attempt int) ragcore.GateVerdict {
	if passesGate(cfg, query, chunks) {
		return ragcore.GatePass
	}
	if attempt == 0 {
		return ragcore.GateRetry
	}
	return ragcore.GateFail
}

func passesGate(cfg GateConfig, query string, chunks []ragcore.ScoredChunk) bool {
	if len(chunks) < cfg.MinDocs {
		return false
	}

	var sum float64
	for _, c := range chunks {
		sum += c.DenseScore
	}
	if sum/float64(len(chunks)) < cfg.MinAvgSim {
		return false
	}

	return keywordOverlapRatio(query, chunks) >= cfg.MinKeywordRatio
}

// keywordOverlapRatio is the fraction of distinct query terms that also
// appear among the retrieved chunks' titles.
func keywordOverlapRatio(query string, chunks []ragcore.ScoredChunk) float64 {
	queryTerms := lexical.Tokenize(query)
	if len(queryTerms) == 0 {
		return 0
	}

	titleTerms := make(map[string]struct{})
	for _, c := range chunks {
		for _, t := range lexical.Tokenize(c.Chunk.Title) {
			titleTerms[t] = struct{}{}
		}
	}

	seen := make(map[string]struct{}, len(queryTerms))
	matched := 0
	for _, t := range queryTerms {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := titleTerms[t]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(seen))
}
