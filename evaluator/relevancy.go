package evaluator

import (
	"context"
	"fmt"
	"math"

	"github.com/lookatitude/beluga-ai/llm"
	"github.com/lookatitude/beluga-ai/schema"
)

// reverseQuestion is the structured shape the answer-relevancy judge
// call produces: a question the answer itself could be an answer to.
type reverseQuestion struct {
	Question string `json:"question"`
}

// answerRelevancy asks the judge to reverse-generate a question from
// answer, then embeds query and the reverse-generated question and
// returns their cosine similarity. A high similarity means the answer
// actually addresses what was asked rather than drifting off-topic.
func (e *Evaluator) answerRelevancy(ctx context.Context, query, answer string) (float64, error) {
	judge := llm.NewStructured[reverseQuestion](e.judge)
	msgs := []schema.Message{
		schema.NewSystemMessage(
			"You are an evaluation judge. Given only the answer below, write the single most likely " +
				"question it is responding to.",
		),
		schema.NewHumanMessage("Answer:\n" + answer),
	}

	result, err := judge.Generate(ctx, msgs)
	if err != nil {
		return 0, fmt.Errorf("evaluator: answer relevancy judge: %w", err)
	}
	if result.Question == "" {
		return 0, nil
	}

	queryVec, err := e.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("evaluator: embed query: %w", err)
	}
	reverseVec, err := e.embedder.EmbedSingle(ctx, result.Question)
	if err != nil {
		return 0, fmt.Errorf("evaluator: embed reverse question: %w", err)
	}

	sim := cosineSimilarity(queryVec, reverseVec)
	if sim < 0 {
		sim = 0
	}
	return sim, nil
}

// cosineSimilarity returns the cosine similarity of a and b, or 0 if
// either is a zero vector or they differ in length.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
