package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lookatitude/beluga-ai/core"
	"github.com/lookatitude/beluga-ai/orchestration"
	"github.com/lookatitude/beluga-ai/ragcore"
)

// scriptedPipeline replays a fixed event sequence, ignoring the query/history
// it is called with.
type scriptedPipeline struct {
	events []core.Event[orchestration.Payload]
	err    error
}

func (p *scriptedPipeline) Run(_ context.Context, _ string, _ []ragcore.Turn) core.Stream[orchestration.Payload] {
	return func(yield func(core.Event[orchestration.Payload], error) bool) {
		for _, e := range p.events {
			if !yield(e, nil) {
				return
			}
		}
		if p.err != nil {
			yield(core.Event[orchestration.Payload]{}, p.err)
		}
	}
}

// recordingRecorder captures every RecordAnswer call for assertions.
type recordingRecorder struct {
	calls []ragcore.Answer
}

func (r *recordingRecorder) RecordAnswer(_ context.Context, _, _ string, answer ragcore.Answer, _ int64) error {
	r.calls = append(r.calls, answer)
	return nil
}

func doneEvent(text string) core.Event[orchestration.Payload] {
	return core.Event[orchestration.Payload]{
		Type:    core.EventDone,
		Payload: orchestration.Payload{Answer: ragcore.Answer{Text: text, Evaluation: ragcore.EvaluationRecord{Passed: true}}},
	}
}

func tokenEvent(tok string) core.Event[orchestration.Payload] {
	return core.Event[orchestration.Payload]{Type: core.EventData, Payload: orchestration.Payload{Token: tok}}
}

func sourceEvent(chunkID string) core.Event[orchestration.Payload] {
	return core.Event[orchestration.Payload]{
		Type:    core.EventData,
		Payload: orchestration.Payload{Source: ragcore.SourceReference{ChunkID: chunkID}},
		Meta:    map[string]any{"kind": "source"},
	}
}

func TestChatHandler_ServeInvoke(t *testing.T) {
	t.Run("success returns assembled response", func(t *testing.T) {
		p := &scriptedPipeline{events: []core.Event[orchestration.Payload]{
			tokenEvent("hello"), sourceEvent("chunk-1"), doneEvent("hello world"),
		}}
		rec := &recordingRecorder{}
		h := NewChatHandler(p, rec)

		req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hi"}`))
		w := httptest.NewRecorder()
		h.ServeInvoke(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}
		var resp ChatResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Text != "hello world" {
			t.Errorf("text = %q", resp.Text)
		}
		if len(rec.calls) != 1 || rec.calls[0].Text != "hello world" {
			t.Errorf("expected one persisted call with final answer, got %v", rec.calls)
		}
	})

	t.Run("pipeline error returns 500", func(t *testing.T) {
		p := &scriptedPipeline{err: errors.New("boom")}
		h := NewChatHandler(p, nil)

		req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hi"}`))
		w := httptest.NewRecorder()
		h.ServeInvoke(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
		}
	})

	t.Run("invalid JSON returns 400", func(t *testing.T) {
		h := NewChatHandler(&scriptedPipeline{}, nil)
		req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("{bad"))
		w := httptest.NewRecorder()
		h.ServeInvoke(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("wrong method rejected", func(t *testing.T) {
		h := NewChatHandler(&scriptedPipeline{}, nil)
		req := httptest.NewRequest(http.MethodGet, "/chat", nil)
		w := httptest.NewRecorder()
		h.ServeInvoke(w, req)

		if w.Code != http.StatusMethodNotAllowed {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
		}
	})

	t.Run("nil recorder does not persist", func(t *testing.T) {
		p := &scriptedPipeline{events: []core.Event[orchestration.Payload]{doneEvent("ok")}}
		h := NewChatHandler(p, nil)
		req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hi"}`))
		w := httptest.NewRecorder()
		h.ServeInvoke(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}
	})
}

func TestChatHandler_ServeStream(t *testing.T) {
	t.Run("emits token, source, and done events in order", func(t *testing.T) {
		p := &scriptedPipeline{events: []core.Event[orchestration.Payload]{
			tokenEvent("hel"), tokenEvent("lo"), sourceEvent("chunk-1"), doneEvent("hello"),
		}}
		rec := &recordingRecorder{}
		h := NewChatHandler(p, rec)

		req := httptest.NewRequest(http.MethodPost, "/chat/stream", strings.NewReader(`{"message":"hi"}`))
		w := httptest.NewRecorder()
		h.ServeStream(w, req)

		if got := w.Header().Get("Content-Type"); got != "text/event-stream" {
			t.Errorf("Content-Type = %q", got)
		}
		body := w.Body.String()
		tokenIdx := strings.Index(body, "event: token")
		sourceIdx := strings.Index(body, "event: source")
		doneIdx := strings.Index(body, "event: done")
		if tokenIdx < 0 || sourceIdx < 0 || doneIdx < 0 {
			t.Fatalf("missing expected events in body:\n%s", body)
		}
		if !(tokenIdx < sourceIdx && sourceIdx < doneIdx) {
			t.Errorf("events out of order:\n%s", body)
		}
		if len(rec.calls) != 1 || rec.calls[0].Text != "hello" {
			t.Errorf("expected persisted final answer, got %v", rec.calls)
		}
	})

	t.Run("stream error emits error event", func(t *testing.T) {
		p := &scriptedPipeline{events: []core.Event[orchestration.Payload]{tokenEvent("partial")}, err: errors.New("backend unavailable")}
		h := NewChatHandler(p, nil)

		req := httptest.NewRequest(http.MethodPost, "/chat/stream", strings.NewReader(`{"message":"hi"}`))
		w := httptest.NewRecorder()
		h.ServeStream(w, req)

		body := w.Body.String()
		if !strings.Contains(body, "event: error") {
			t.Errorf("expected error event, got:\n%s", body)
		}
		if !strings.Contains(body, "backend unavailable") {
			t.Errorf("expected error message in body, got:\n%s", body)
		}
	})

	t.Run("invalid JSON returns 400", func(t *testing.T) {
		h := NewChatHandler(&scriptedPipeline{}, nil)
		req := httptest.NewRequest(http.MethodPost, "/chat/stream", strings.NewReader("{bad"))
		w := httptest.NewRecorder()
		h.ServeStream(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}
