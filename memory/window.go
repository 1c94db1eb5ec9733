package memory

import (
	"sync"

	"github.com/lookatitude/beluga-ai/ragcore"
)

// TurnWindow is a bounded, concurrency-safe ring of the last N
// (query, answer) pairs for one conversation, used to rewrite follow-up
// queries into self-contained queries before routing. It holds only the
// in-memory copy; durable persistence is an external concern.
type TurnWindow struct {
	mu    sync.RWMutex
	turns []ragcore.Turn
	n     int
}

// NewTurnWindow creates a TurnWindow retaining at most the last n turns.
// n <= 0 defaults to 5.
func NewTurnWindow(n int) *TurnWindow {
	if n <= 0 {
		n = 5
	}
	return &TurnWindow{n: n}
}

// Append records one completed turn, evicting the oldest turn once the
// window is full.
func (w *TurnWindow) Append(turn ragcore.Turn) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.turns = append(w.turns, turn)
	if len(w.turns) > w.n {
		w.turns = w.turns[len(w.turns)-w.n:]
	}
}

// Turns returns a copy of the retained turns, oldest first.
func (w *TurnWindow) Turns() []ragcore.Turn {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]ragcore.Turn, len(w.turns))
	copy(out, w.turns)
	return out
}

// Clear empties the window.
func (w *TurnWindow) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.turns = nil
}
