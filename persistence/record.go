// Package persistence hands off the compact (query, answer, evaluation)
// record of a completed query to a durable collaborator once the orchestrator
// has already produced its done or error event. Failures here never affect a
// response already streamed to the caller.
package persistence

import (
	"context"
	"sync"

	"github.com/lookatitude/beluga-ai/ragcore"
)

// QueryRecord is the compact tuple handed off after a query reaches DONE (or
// FAILED). SessionID ties it back to the conversation; RecordedAtUnix is
// stamped by the caller rather than taken inside workflow code, since
// workflow code must stay deterministic.
type QueryRecord struct {
	SessionID      string
	Query          string
	Answer         string
	Evaluation     ragcore.EvaluationRecord
	RecordedAtUnix int64
}

// RecordStore persists QueryRecords. Implementations must be safe for
// concurrent use; the Temporal activity that calls Save may run on any
// worker goroutine.
type RecordStore interface {
	Save(ctx context.Context, rec QueryRecord) error
	ListBySession(ctx context.Context, sessionID string) ([]QueryRecord, error)
}

// InMemoryStore is a RecordStore backed by a map, used in tests and in the
// development profile where no external store is configured.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string][]QueryRecord
}

// NewInMemoryStore creates an empty InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string][]QueryRecord)}
}

func (s *InMemoryStore) Save(_ context.Context, rec QueryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.SessionID] = append(s.records[rec.SessionID], rec)
	return nil
}

func (s *InMemoryStore) ListBySession(_ context.Context, sessionID string) ([]QueryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]QueryRecord, len(s.records[sessionID]))
	copy(out, s.records[sessionID])
	return out, nil
}
