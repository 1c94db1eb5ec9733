package retriever

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lookatitude/beluga-ai/ragcore"
)

func TestQuotas_FirstDomainGetsLargestShare(t *testing.T) {
	q := quotas(2, 9)
	assert.Equal(t, []int{6, 3}, q)
}

func TestQuotas_SumsToTotal(t *testing.T) {
	for _, total := range []int{0, 1, 5, 7, 10} {
		q := quotas(3, total)
		sum := 0
		for _, v := range q {
			sum += v
		}
		assert.Equal(t, total, sum)
	}
}

func TestMergeQuota_ShortDomainRollsOverToNext(t *testing.T) {
	results := []ragcore.RetrievalResult{
		{Domain: ragcore.DomainHRLabor, Chunks: []ragcore.ScoredChunk{
			chunkWithTitle("a", "a", 0.9),
		}},
		{Domain: ragcore.DomainFinanceTax, Chunks: []ragcore.ScoredChunk{
			chunkWithTitle("b", "b", 0.8),
			chunkWithTitle("c", "c", 0.7),
			chunkWithTitle("d", "d", 0.6),
		}},
	}

	merged := mergeQuota(4, results)
	assert.Len(t, merged, 4, "short first domain's unused quota should roll to the second")

	ids := make([]string, len(merged))
	for i, c := range merged {
		ids[i] = c.Chunk.ID
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids)
}

func TestMergeQuota_EmptyWhenNoResults(t *testing.T) {
	assert.Nil(t, mergeQuota(5, nil))
}

func TestContextFromScoredChunks_PreservesOrder(t *testing.T) {
	chunks := []ragcore.ScoredChunk{
		chunkWithTitle("a", "a", 0.9),
		chunkWithTitle("b", "b", 0.8),
	}
	ctx := contextFromScoredChunks(chunks)
	assert.Equal(t, []string{"a", "b"}, ctx.ChunkIDs())
}
