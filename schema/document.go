package schema

// Document is a unit of retrievable content: a chunk of text plus its
// metadata, retrieval score, and (if computed) embedding vector.
type Document struct {
	ID        string
	Content   string
	Metadata  map[string]any
	Score     float64
	Embedding []float32
}
