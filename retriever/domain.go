package retriever

import (
	"context"
	"fmt"
	"sort"

	"github.com/lookatitude/beluga-ai/lexical"
	"github.com/lookatitude/beluga-ai/ragcore"
	"github.com/lookatitude/beluga-ai/rag/embedding"
	ragretriever "github.com/lookatitude/beluga-ai/rag/retriever"
	"github.com/lookatitude/beluga-ai/rag/vectorstore"
	"github.com/lookatitude/beluga-ai/schema"
)

// DomainRetriever is the logical retriever bound to one DomainTag's vector
// collection and lexical index. Unlike rag/retriever.HybridRetriever (which
// returns only the fused score), it keeps each chunk's dense score and
// lexical rank so the retrieval gate can inspect them directly.
type DomainRetriever struct {
	Domain   ragcore.DomainTag
	store    vectorstore.VectorStore
	embedder embedding.Embedder
	bm25     *lexical.Index
	rrf      *ragretriever.RRFStrategy
}

// NewDomainRetriever creates a DomainRetriever over store/embedder (dense)
// and bm25 (lexical), fusing with reciprocal rank fusion constant kRRF.
func NewDomainRetriever(domain ragcore.DomainTag, store vectorstore.VectorStore, embedder embedding.Embedder, bm25 *lexical.Index, kRRF int) *DomainRetriever {
	return &DomainRetriever{
		Domain:   domain,
		store:    store,
		embedder: embedder,
		bm25:     bm25,
		rrf:      ragretriever.NewRRFStrategy(kRRF),
	}
}

// Retrieve runs dense and lexical search for query, fetching kFetch
// candidates from each, and fuses them into up to kRetrieve
// ragcore.ScoredChunks, tie-broken by dense score then by chunk id.
func (d *DomainRetriever) Retrieve(ctx context.Context, query string, kFetch, kRetrieve int) (ragcore.RetrievalResult, error) {
	vec, err := d.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return ragcore.RetrievalResult{}, fmt.Errorf("retriever: domain %q dense embed: %w", d.Domain, err)
	}

	dense, err := d.store.Search(ctx, vec, kFetch)
	if err != nil {
		return ragcore.RetrievalResult{}, fmt.Errorf("retriever: domain %q dense search: %w", d.Domain, err)
	}

	lexicalDocs, err := d.bm25.Search(ctx, query, kFetch)
	if err != nil {
		return ragcore.RetrievalResult{}, fmt.Errorf("retriever: domain %q lexical search: %w", d.Domain, err)
	}

	denseScore := make(map[string]float64, len(dense))
	for _, doc := range dense {
		denseScore[doc.ID] = doc.Score
	}
	lexicalRank := make(map[string]int, len(lexicalDocs))
	for i, doc := range lexicalDocs {
		lexicalRank[doc.ID] = i + 1
	}

	fused, err := d.rrf.Fuse(ctx, [][]schema.Document{dense, lexicalDocs})
	if err != nil {
		return ragcore.RetrievalResult{}, err
	}

	sort.SliceStable(fused, func(i, j int) bool {
		if fused[i].Score != fused[j].Score {
			return fused[i].Score > fused[j].Score
		}
		di, dj := denseScore[fused[i].ID], denseScore[fused[j].ID]
		if di != dj {
			return di > dj
		}
		return fused[i].ID < fused[j].ID
	})

	if kRetrieve > 0 && len(fused) > kRetrieve {
		fused = fused[:kRetrieve]
	}

	chunks := make([]ragcore.ScoredChunk, 0, len(fused))
	for _, doc := range fused {
		chunks = append(chunks, ragcore.ScoredChunk{
			Chunk:       chunkFromDocument(d.Domain, doc),
			DenseScore:  denseScore[doc.ID],
			LexicalRank: lexicalRank[doc.ID],
			FusedScore:  doc.Score,
		})
	}
	return ragcore.RetrievalResult{Domain: d.Domain, Chunks: chunks}, nil
}

// chunkFromDocument reconstructs a ragcore.Chunk from the vectorstore
// document shape, reading the provenance fields a loader is expected to
// populate in Metadata.
func chunkFromDocument(domain ragcore.DomainTag, doc schema.Document) ragcore.Chunk {
	c := ragcore.Chunk{ID: doc.ID, Domain: domain, Text: doc.Content}
	if v, ok := doc.Metadata["title"].(string); ok {
		c.Title = v
	}
	if v, ok := doc.Metadata["origin"].(string); ok {
		c.Source.Origin = v
	}
	if v, ok := doc.Metadata["url"].(string); ok {
		c.Source.URL = v
	}
	if v, ok := doc.Metadata["clause_path"].(string); ok {
		c.Source.ClausePath = v
	}
	return c
}
