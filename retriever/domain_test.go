package retriever

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lookatitude/beluga-ai/lexical"
	"github.com/lookatitude/beluga-ai/ragcore"
	"github.com/lookatitude/beluga-ai/rag/vectorstore/providers/inmemory"
	"github.com/lookatitude/beluga-ai/schema"
)

// fakeEmbedder maps known texts to fixed 2-dimensional vectors so test
// assertions can work out cosine similarity by hand.
type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f.vectors[t]
	}
	return out, nil
}

func (f fakeEmbedder) EmbedSingle(_ context.Context, text string) ([]float32, error) {
	return f.vectors[text], nil
}

func (f fakeEmbedder) Dimensions() int { return 2 }

func newFixture(t *testing.T) (*DomainRetriever, string) {
	t.Helper()
	query := "근로계약서 작성 방법"

	embedder := fakeEmbedder{vectors: map[string][]float32{
		query:                       {1, 0},
		"labor contract guide text": {1, 0},
		"startup funding guide":     {0, 1},
	}}

	store := inmemory.New()
	docs := []schema.Document{
		{ID: "doc1", Content: "근로계약서 작성 방법 안내", Metadata: map[string]any{"title": "근로계약서 작성 안내"}},
		{ID: "doc2", Content: "창업 지원금 신청 절차", Metadata: map[string]any{"title": "창업 지원금 안내"}},
	}
	embeddings := [][]float32{{1, 0}, {0, 1}}
	require.NoError(t, store.Add(context.Background(), docs, embeddings))

	bm25 := lexical.New()
	bm25.Add(docs)

	return NewDomainRetriever(ragcore.DomainHRLabor, store, embedder, bm25, 60), query
}

func TestDomainRetriever_Retrieve_RanksDenseAndLexicalMatchFirst(t *testing.T) {
	dr, query := newFixture(t)

	result, err := dr.Retrieve(context.Background(), query, 10, 10)
	require.NoError(t, err)
	require.NotEmpty(t, result.Chunks)

	top := result.Chunks[0]
	assert.Equal(t, "doc1", top.Chunk.ID)
	assert.Equal(t, "근로계약서 작성 안내", top.Chunk.Title)
	assert.InDelta(t, 1.0, top.DenseScore, 1e-9)
	assert.Equal(t, 1, top.LexicalRank)
	assert.Equal(t, ragcore.DomainHRLabor, result.Domain)
}

func TestDomainRetriever_Retrieve_RespectsKRetrieve(t *testing.T) {
	dr, query := newFixture(t)

	result, err := dr.Retrieve(context.Background(), query, 10, 1)
	require.NoError(t, err)
	assert.Len(t, result.Chunks, 1)
}

func TestDomainRetriever_Retrieve_KFetchZeroYieldsNoChunks(t *testing.T) {
	dr, query := newFixture(t)

	result, err := dr.Retrieve(context.Background(), query, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, result.Chunks)
}
