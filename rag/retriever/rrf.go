package retriever

import (
	"context"
	"fmt"

	"github.com/lookatitude/beluga-ai/schema"
)

// FusionStrategy combines several ranked result sets for the same query
// into a single ranked list.
type FusionStrategy interface {
	Fuse(ctx context.Context, sets [][]schema.Document) ([]schema.Document, error)
}

// RRFStrategy fuses rankers by reciprocal rank: a document's score is the
// sum of 1/(k+rank) across every set it appears in, rank counted from 1.
// Documents that appear in more sets, or rank higher within them, score
// higher.
type RRFStrategy struct {
	K int
}

// NewRRFStrategy creates an RRFStrategy with the given k constant
// (typically 60; smoothes the influence of top ranks).
func NewRRFStrategy(k int) *RRFStrategy {
	if k <= 0 {
		k = 60
	}
	return &RRFStrategy{K: k}
}

func (s *RRFStrategy) Fuse(_ context.Context, sets [][]schema.Document) ([]schema.Document, error) {
	scores := make(map[string]float64)
	docs := make(map[string]schema.Document)
	order := make([]string, 0)

	for _, set := range sets {
		for rank, d := range set {
			if _, ok := docs[d.ID]; !ok {
				order = append(order, d.ID)
				docs[d.ID] = d
			}
			scores[d.ID] += 1.0 / float64(s.K+rank+1)
		}
	}

	fused := make([]schema.Document, 0, len(order))
	for _, id := range order {
		d := docs[id]
		d.Score = scores[id]
		fused = append(fused, d)
	}
	sortByScore(fused)
	return fused, nil
}

// WeightedStrategy fuses rankers by a per-set weighted sum of each
// document's own Score.
type WeightedStrategy struct {
	weights []float64
}

// NewWeightedStrategy creates a WeightedStrategy applying one weight per
// input set, in order.
func NewWeightedStrategy(weights []float64) *WeightedStrategy {
	return &WeightedStrategy{weights: weights}
}

func (s *WeightedStrategy) Fuse(_ context.Context, sets [][]schema.Document) ([]schema.Document, error) {
	if len(sets) != len(s.weights) {
		return nil, fmt.Errorf("retriever: weighted fusion got %d sets but %d weights", len(sets), len(s.weights))
	}

	scores := make(map[string]float64)
	docs := make(map[string]schema.Document)
	order := make([]string, 0)

	for i, set := range sets {
		for _, d := range set {
			if _, ok := docs[d.ID]; !ok {
				order = append(order, d.ID)
				docs[d.ID] = d
			}
			scores[d.ID] += d.Score * s.weights[i]
		}
	}

	fused := make([]schema.Document, 0, len(order))
	for _, id := range order {
		d := docs[id]
		d.Score = scores[id]
		fused = append(fused, d)
	}
	sortByScore(fused)
	return fused, nil
}
