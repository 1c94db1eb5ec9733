package evaluator

import (
	"context"
	"fmt"
	"strings"

	"github.com/lookatitude/beluga-ai/llm"
	"github.com/lookatitude/beluga-ai/ragcore"
	"github.com/lookatitude/beluga-ai/schema"
)

// claimVerdict is one atomic claim extracted from an answer, judged
// against the retrieved context.
type claimVerdict struct {
	Claim     string `json:"claim"`
	Supported bool   `json:"supported"`
}

// claimSet is the structured shape the faithfulness judge call produces.
type claimSet struct {
	Claims []claimVerdict `json:"claims"`
}

// faithfulness is the fraction of atomic claims in answer that the judge
// finds supported by at least one chunk in chunks. An answer with no
// extractable claims (e.g. a refusal) is vacuously faithful.
func (e *Evaluator) faithfulness(ctx context.Context, answer string, chunks []ragcore.Chunk) (float64, error) {
	judge := llm.NewStructured[claimSet](e.judge)
	msgs := []schema.Message{
		schema.NewSystemMessage(
			"You are an evaluation judge. Break the answer into its atomic factual claims, " +
				"then judge each claim as supported or not using only the provided context documents. " +
				"A claim is supported only if a context document states it directly.",
		),
		schema.NewHumanMessage(fmt.Sprintf("Context:\n%s\n\nAnswer:\n%s", formatChunks(chunks), answer)),
	}

	result, err := judge.Generate(ctx, msgs)
	if err != nil {
		return 0, fmt.Errorf("evaluator: faithfulness judge: %w", err)
	}
	if len(result.Claims) == 0 {
		return 1, nil
	}

	supported := 0
	for _, c := range result.Claims {
		if c.Supported {
			supported++
		}
	}
	return float64(supported) / float64(len(result.Claims)), nil
}

// formatChunks renders chunks as a numbered, id-tagged list for a judge
// prompt.
func formatChunks(chunks []ragcore.Chunk) string {
	if len(chunks) == 0 {
		return "(검색된 문서 없음)"
	}
	var b strings.Builder
	for i, c := range chunks {
		fmt.Fprintf(&b, "[%d] (id: %s) %s\n", i+1, c.ID, c.Text)
	}
	return b.String()
}
