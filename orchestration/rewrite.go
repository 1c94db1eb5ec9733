package orchestration

import (
	"context"
	"fmt"
	"strings"

	"github.com/lookatitude/beluga-ai/llm"
	"github.com/lookatitude/beluga-ai/ragcore"
	"github.com/lookatitude/beluga-ai/schema"
)

// rewriteResult is the JSON shape the query-rewrite judge call produces.
type rewriteResult struct {
	RewrittenQuery string `json:"rewritten_query"`
}

// QueryRewriter expands a query that failed the retrieval gate into a
// self-contained, acronym-expanded query with domain hints injected, so a
// retry has a better chance of clearing the gate.
type QueryRewriter struct {
	judge *llm.StructuredOutput[rewriteResult]
}

// NewQueryRewriter creates a QueryRewriter issuing its judge call through model.
func NewQueryRewriter(model llm.ChatModel) *QueryRewriter {
	return &QueryRewriter{judge: llm.NewStructured[rewriteResult](model)}
}

// Rewrite returns a rewritten query, or the original query unchanged if the
// judge call fails or returns nothing usable — a degrade, not an error.
func (r *QueryRewriter) Rewrite(ctx context.Context, query string, domains []ragcore.DomainTag) string {
	names := make([]string, len(domains))
	for i, d := range domains {
		names[i] = string(d)
	}

	system := fmt.Sprintf(
		"The following query returned too few or too weak search results in these advisory domains: %s. "+
			"Rewrite it into a single self-contained search query: expand any acronyms or abbreviations, "+
			"and inject explicit domain terminology so a keyword and embedding search can match better. "+
			"Keep the original language and intent; do not answer the question.",
		strings.Join(names, ", "),
	)

	result, err := r.judge.Generate(ctx, []schema.Message{
		schema.NewSystemMessage(system),
		schema.NewHumanMessage(query),
	})
	if err != nil || strings.TrimSpace(result.RewrittenQuery) == "" {
		return query
	}
	return result.RewrittenQuery
}
