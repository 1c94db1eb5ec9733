package retriever

import "github.com/lookatitude/beluga-ai/ragcore"

// mergeQuota merges per-domain RetrievalResults into a single chunk list
// bounded by kContext, using descending per-domain quotas so the first
// (dominant) domain keeps the largest share. A domain with fewer chunks
// than its quota gives the remainder to the next domain in order.
func mergeQuota(kContext int, results []ragcore.RetrievalResult) []ragcore.ScoredChunk {
	if len(results) == 0 || kContext <= 0 {
		return nil
	}

	quota := quotas(len(results), kContext)
	merged := make([]ragcore.ScoredChunk, 0, kContext)
	carry := 0
	for i, r := range results {
		n := quota[i] + carry
		if n > len(r.Chunks) {
			carry = n - len(r.Chunks)
			n = len(r.Chunks)
		} else {
			carry = 0
		}
		merged = append(merged, r.Chunks[:n]...)
	}
	return merged
}

// quotas splits total across n domains in descending shares: the first
// domain gets weight n, the last gets weight 1.
func quotas(n, total int) []int {
	weights := make([]int, n)
	sum := 0
	for i := range weights {
		weights[i] = n - i
		sum += weights[i]
	}

	out := make([]int, n)
	assigned := 0
	for i, w := range weights {
		out[i] = total * w / sum
		assigned += out[i]
	}
	for i := 0; assigned < total; i = (i + 1) % n {
		out[i]++
		assigned++
	}
	return out
}

// contextFromScoredChunks drops per-ranker scores to build the Context the
// generator consumes.
func contextFromScoredChunks(chunks []ragcore.ScoredChunk) ragcore.Context {
	ctx := ragcore.Context{Chunks: make([]ragcore.Chunk, len(chunks))}
	for i, c := range chunks {
		ctx.Chunks[i] = c.Chunk
	}
	return ctx
}
