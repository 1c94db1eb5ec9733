package evaluator

import (
	"context"
	"fmt"

	"github.com/lookatitude/beluga-ai/lexical"
	"github.com/lookatitude/beluga-ai/llm"
	"github.com/lookatitude/beluga-ai/ragcore"
	"github.com/lookatitude/beluga-ai/schema"
)

// chunkRelevance is one chunk's relevance verdict for the context
// precision judge call.
type chunkRelevance struct {
	ChunkID  string `json:"chunk_id"`
	Relevant bool   `json:"relevant"`
}

// relevanceSet is the structured shape the context-precision judge call
// produces.
type relevanceSet struct {
	Chunks []chunkRelevance `json:"chunks"`
}

// contextPrecision is the fraction of the retrieved chunks the judge
// finds actually relevant to query — a measure of retrieval noise, not
// of how the answer used them.
func (e *Evaluator) contextPrecision(ctx context.Context, query string, chunks []ragcore.Chunk) (float64, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	judge := llm.NewStructured[relevanceSet](e.judge)
	msgs := []schema.Message{
		schema.NewSystemMessage(
			"You are an evaluation judge. For each numbered context document, judge whether it is " +
				"actually relevant to answering the question, identified by its chunk_id.",
		),
		schema.NewHumanMessage(fmt.Sprintf("Question: %s\n\nContext:\n%s", query, formatChunks(chunks))),
	}

	result, err := judge.Generate(ctx, msgs)
	if err != nil {
		return 0, fmt.Errorf("evaluator: context precision judge: %w", err)
	}

	byID := make(map[string]bool, len(result.Chunks))
	for _, c := range result.Chunks {
		byID[c.ChunkID] = c.Relevant
	}

	relevant := 0
	for _, c := range chunks {
		if byID[c.ID] {
			relevant++
		}
	}
	return float64(relevant) / float64(len(chunks)), nil
}

// contextRecall is a lexical proxy for "does the retrieved context cover
// what the question asks about": the fraction of query terms that also
// appear in the retrieved chunks' text. Unlike contextPrecision this is
// not an LLM judgment — without a reference answer to check true
// recall against, a term-coverage signal over the full chunk text is a
// cheap, deterministic substitute (see DESIGN.md's Open Question note).
func contextRecall(query string, chunks []ragcore.Chunk) float64 {
	queryTerms := lexical.Tokenize(query)
	if len(queryTerms) == 0 {
		return 0
	}

	covered := make(map[string]struct{})
	for _, c := range chunks {
		for _, t := range lexical.Tokenize(c.Text) {
			covered[t] = struct{}{}
		}
	}

	seen := make(map[string]struct{}, len(queryTerms))
	matched := 0
	for _, t := range queryTerms {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := covered[t]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(seen))
}
