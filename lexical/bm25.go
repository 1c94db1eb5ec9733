// Package lexical implements an in-process BM25 index used as the
// lexical half of a hybrid retriever. No BM25 library appears anywhere
// in the retrieval pack's dependency surface, so this is built directly
// on the standard library.
package lexical

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/lookatitude/beluga-ai/schema"
)

const (
	defaultK1 = 1.2
	defaultB  = 0.75
)

type posting struct {
	docID string
	freq  int
}

// Index is an in-memory Okapi BM25 index over a fixed vocabulary of
// tokenized documents. It satisfies retriever.BM25Searcher.
type Index struct {
	k1 float64
	b  float64

	mu        sync.RWMutex
	docs      map[string]schema.Document
	docLen    map[string]int
	totalLen  int
	postings  map[string][]posting // term -> postings
}

// New creates an empty Index with the standard BM25 parameters
// (k1=1.2, b=0.75).
func New() *Index {
	return &Index{
		k1:       defaultK1,
		b:        defaultB,
		docs:     make(map[string]schema.Document),
		docLen:   make(map[string]int),
		postings: make(map[string][]posting),
	}
}

// Add indexes (or re-indexes) docs by their Content field.
func (idx *Index) Add(docs []schema.Document) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, doc := range docs {
		idx.removeLocked(doc.ID)

		terms := Tokenize(doc.Content)
		idx.docs[doc.ID] = doc
		idx.docLen[doc.ID] = len(terms)
		idx.totalLen += len(terms)

		counts := make(map[string]int)
		for _, term := range terms {
			counts[term]++
		}
		for term, freq := range counts {
			idx.postings[term] = append(idx.postings[term], posting{docID: doc.ID, freq: freq})
		}
	}
}

// Delete removes documents by ID from the index.
func (idx *Index) Delete(ids []string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, id := range ids {
		idx.removeLocked(id)
	}
}

func (idx *Index) removeLocked(id string) {
	if _, ok := idx.docs[id]; !ok {
		return
	}
	idx.totalLen -= idx.docLen[id]
	delete(idx.docs, id)
	delete(idx.docLen, id)
	for term, plist := range idx.postings {
		filtered := plist[:0]
		for _, p := range plist {
			if p.docID != id {
				filtered = append(filtered, p)
			}
		}
		if len(filtered) == 0 {
			delete(idx.postings, term)
		} else {
			idx.postings[term] = filtered
		}
	}
}

// Search ranks indexed documents against query by Okapi BM25 score and
// returns the top k.
func (idx *Index) Search(_ context.Context, query string, k int) ([]schema.Document, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	n := len(idx.docs)
	if n == 0 {
		return []schema.Document{}, nil
	}
	avgLen := float64(idx.totalLen) / float64(n)

	scores := make(map[string]float64)
	for _, term := range Tokenize(query) {
		plist, ok := idx.postings[term]
		if !ok {
			continue
		}
		idf := math.Log(1 + (float64(n)-float64(len(plist))+0.5)/(float64(len(plist))+0.5))
		for _, p := range plist {
			dl := float64(idx.docLen[p.docID])
			tf := float64(p.freq)
			denom := tf + idx.k1*(1-idx.b+idx.b*dl/avgLen)
			scores[p.docID] += idf * (tf * (idx.k1 + 1)) / denom
		}
	}

	results := make([]schema.Document, 0, len(scores))
	for id, score := range scores {
		doc := idx.docs[id]
		doc.Score = score
		results = append(results, doc)
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })

	if k >= 0 && len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Tokenize splits text into lowercased word tokens. ASCII letters/digits
// and any rune above 127 (Hangul, CJK, and other non-ASCII scripts) count
// as word characters, so Korean text tokenizes on syllable blocks rather
// than being discarded as punctuation.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9' || r > 127)
	})
	return fields
}
