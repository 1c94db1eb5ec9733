// Package ragcore defines the data model shared by every stage of the
// retrieval-augmented advisory pipeline: Query, DomainTag, Chunk,
// RetrievalResult, Context, Answer, and EvaluationRecord. Types here are
// plain data; behavior lives in the packages that consume them
// (router, retriever, generator, evaluator, orchestration).
package ragcore

import "time"

// DomainTag is one of a closed set of advisory domains. Order within a
// query's domain set expresses retrieval-budget priority, not importance.
type DomainTag string

const (
	DomainStartupFunding DomainTag = "startup_funding"
	DomainFinanceTax     DomainTag = "finance_tax"
	DomainHRLabor        DomainTag = "hr_labor"
	DomainLawCommon      DomainTag = "law_common"
)

// DomainPriority is the fixed tie-break ordering: the most specific
// advisory path wins when signals overlap. It is data, not logic — changing
// it is a configuration change pinned by tests, not a code change.
var DomainPriority = []DomainTag{
	DomainLawCommon,
	DomainHRLabor,
	DomainFinanceTax,
	DomainStartupFunding,
}

// PriorityRank returns the tie-break rank of d (lower sorts first, i.e. wins
// the tie) against the given ordering. Unknown tags rank last.
func PriorityRank(order []DomainTag, d DomainTag) int {
	for i, t := range order {
		if t == d {
			return i
		}
	}
	return len(order)
}

// CompanyContext is optional enrichment carried alongside a raw query.
type CompanyContext struct {
	IndustryCode  string
	Region        string
	BusinessStage string
}

// Query is immutable once admitted into the orchestrator.
type Query struct {
	ID             string
	UserID         string // empty for guest callers
	Text           string
	Company        *CompanyContext
	ConversationID string
	ArrivedAt      time.Time
}

// SourceDescriptor is the structured provenance of a Chunk.
type SourceDescriptor struct {
	Origin      string // originating system, e.g. "law.go.kr"
	URL         string
	CollectedAt time.Time
	ClausePath  string // article/clause path, when applicable
}

// Chunk is the unit stored in a vector collection. The core treats chunks
// as read-only; the embedding vector is owned by the vector store, not
// carried here.
type Chunk struct {
	ID     string
	Domain DomainTag
	Title  string
	Text   string
	Source SourceDescriptor
}

// ScoredChunk is one row of a RetrievalResult: a chunk plus its per-ranker
// and fused scores.
type ScoredChunk struct {
	Chunk       Chunk
	DenseScore  float64
	LexicalRank int // 0 means "did not appear in lexical ranking"
	FusedScore  float64
}

// RetrievalResult is the ordered output of one (query, domain) retrieval,
// already bounded by k_retrieve and fused.
type RetrievalResult struct {
	Domain DomainTag
	Chunks []ScoredChunk
}

// GateVerdict is the outcome of the retrieval-quality gate.
type GateVerdict string

const (
	GatePass  GateVerdict = "PASS"
	GateRetry GateVerdict = "RETRY"
	GateFail  GateVerdict = "FAIL"
)

// Context is the assembled, provenance-tagged block passed to the
// Generator: the top k_context chunks across one or more RetrievalResults.
// Invariant: every chunk the Generator may cite is present here, in the
// order the Generator may cite it.
type Context struct {
	Chunks []Chunk
}

// ChunkIDs returns the ordered chunk ids in the context.
func (c Context) ChunkIDs() []string {
	ids := make([]string, len(c.Chunks))
	for i, ch := range c.Chunks {
		ids[i] = ch.ID
	}
	return ids
}

// SourceReference is a citation surfaced to the caller.
type SourceReference struct {
	ChunkID string
	Title   string
	URL     string
	System  string
}

// ActionType enumerates the closed set of structured action suggestions.
type ActionType string

const (
	ActionDocumentGeneration ActionType = "document_generation"
	ActionExternalLink       ActionType = "external_link"
	ActionCalculator         ActionType = "calculator"
	ActionScheduleAlert      ActionType = "schedule_alert"
	ActionFundingSearch      ActionType = "funding_search"
)

// ActionSuggestion is a typed, structured hint for the UI.
type ActionSuggestion struct {
	Type       ActionType
	Parameters map[string]string
}

// EvaluationRecord is the Evaluator's scoring of one Answer.
type EvaluationRecord struct {
	Faithfulness      float64
	AnswerRelevancy   float64
	ContextPrecision  float64
	ContextRecall     float64
	LLMScore          int
	Passed            bool
	LatencySeconds    float64
	RetrievedChunkIDs []string
}

// Answer is the final, fully-assembled response to one Query.
type Answer struct {
	Text       string
	Sources    []SourceReference
	Actions    []ActionSuggestion
	Evaluation EvaluationRecord
}

// Turn is one (query, answer) pair retained in conversational memory.
type Turn struct {
	Query  string
	Answer string
}
