package retriever

import (
	"sort"

	"github.com/lookatitude/beluga-ai/schema"
)

// sortByScore sorts docs by Score descending, in place.
func sortByScore(docs []schema.Document) {
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].Score > docs[j].Score })
}

// dedup removes duplicate IDs, keeping the highest-scoring occurrence of
// each and preserving its first-seen position.
func dedup(docs []schema.Document) []schema.Document {
	best := make(map[string]schema.Document, len(docs))
	order := make([]string, 0, len(docs))
	for _, d := range docs {
		prev, seen := best[d.ID]
		if !seen {
			order = append(order, d.ID)
			best[d.ID] = d
			continue
		}
		if d.Score > prev.Score {
			best[d.ID] = d
		}
	}
	result := make([]schema.Document, 0, len(order))
	for _, id := range order {
		result = append(result, best[id])
	}
	return result
}
