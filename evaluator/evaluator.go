// Package evaluator self-evaluates a generated Answer against the Context
// it was grounded in: LLM-as-judge faithfulness and context precision,
// embedding-based answer relevancy, and a lexical context-recall proxy,
// combined into a composite score and a pass/fail gate that the
// orchestrator uses to decide whether a query gets its one retry.
//
// Context precision and context recall are measured against the retrieved
// chunks only: no reference answer is consulted, so recall is a term-coverage
// proxy rather than true recall.
package evaluator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lookatitude/beluga-ai/llm"
	"github.com/lookatitude/beluga-ai/rag/embedding"
	"github.com/lookatitude/beluga-ai/ragcore"
)

// Thresholds the composite gate checks, per the typical values the
// scoring rubric gives.
const (
	MinFaithfulness    = 0.8
	MinAnswerRelevancy = 0.7
	MinLLMScore        = 70
)

// Evaluator scores one (query, answer, context) triple.
type Evaluator struct {
	judge    llm.ChatModel
	embedder embedding.Embedder
}

// New creates an Evaluator whose LLM-as-judge metrics call judge and
// whose answer-relevancy metric embeds text via embedder.
func New(judge llm.ChatModel, embedder embedding.Embedder) *Evaluator {
	return &Evaluator{judge: judge, embedder: embedder}
}

// Evaluate scores answer against query and the chunks it was generated
// from, and reports elapsed as the recorded generation latency. The three
// judge/embedder-backed metrics are independent of one another, so they run
// concurrently rather than paying their LLM/embedding round-trips in series.
func (e *Evaluator) Evaluate(ctx context.Context, query, answer string, chunks []ragcore.Chunk, elapsed time.Duration) (ragcore.EvaluationRecord, error) {
	var (
		faithfulness, relevancy, precision          float64
		faithfulnessErr, relevancyErr, precisionErr error
		wg                                           sync.WaitGroup
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		faithfulness, faithfulnessErr = e.faithfulness(ctx, answer, chunks)
	}()
	go func() {
		defer wg.Done()
		relevancy, relevancyErr = e.answerRelevancy(ctx, query, answer)
	}()
	go func() {
		defer wg.Done()
		precision, precisionErr = e.contextPrecision(ctx, query, chunks)
	}()
	wg.Wait()

	if faithfulnessErr != nil {
		return ragcore.EvaluationRecord{}, fmt.Errorf("evaluator: faithfulness: %w", faithfulnessErr)
	}
	if relevancyErr != nil {
		return ragcore.EvaluationRecord{}, fmt.Errorf("evaluator: answer relevancy: %w", relevancyErr)
	}
	if precisionErr != nil {
		return ragcore.EvaluationRecord{}, fmt.Errorf("evaluator: context precision: %w", precisionErr)
	}

	recall := contextRecall(query, chunks)
	score := compositeScore(faithfulness, relevancy, precision, recall)

	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
	}

	return ragcore.EvaluationRecord{
		Faithfulness:      faithfulness,
		AnswerRelevancy:   relevancy,
		ContextPrecision:  precision,
		ContextRecall:     recall,
		LLMScore:          score,
		Passed:            faithfulness >= MinFaithfulness && relevancy >= MinAnswerRelevancy && score >= MinLLMScore,
		LatencySeconds:    elapsed.Seconds(),
		RetrievedChunkIDs: ids,
	}, nil
}

// compositeScore blends the four metrics into a 0-100 integer score.
// Faithfulness and relevancy are weighted more heavily since they are
// judged directly against this answer; precision/recall describe the
// context quality the Generator had to work with.
func compositeScore(faithfulness, relevancy, precision, recall float64) int {
	weighted := 0.4*faithfulness + 0.3*relevancy + 0.15*precision + 0.15*recall
	score := int(weighted*100 + 0.5)
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}
