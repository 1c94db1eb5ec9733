package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// SSEEvent is one Server-Sent Events frame.
type SSEEvent struct {
	ID    string
	Event string
	Data  string
	Retry int
}

// SSEWriter writes SSEEvents to an http.ResponseWriter, flushing after every
// write so the client receives tokens as they are produced rather than once
// the handler returns.
type SSEWriter struct {
	w http.ResponseWriter
	f http.Flusher
}

// NewSSEWriter sets the SSE response headers on w and wraps it. w must
// implement http.Flusher; most net/http response writers do, but some test
// doubles and certain proxies do not.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("server: response writer does not support flushing, cannot stream SSE")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	flusher.Flush()

	return &SSEWriter{w: w, f: flusher}, nil
}

// WriteEvent writes one SSE frame. Multi-line Data is split into one "data:"
// line per source line, per the SSE wire format.
func (s *SSEWriter) WriteEvent(e SSEEvent) error {
	var b strings.Builder
	if e.ID != "" {
		fmt.Fprintf(&b, "id: %s\n", e.ID)
	}
	if e.Event != "" {
		fmt.Fprintf(&b, "event: %s\n", e.Event)
	}
	if e.Retry > 0 {
		fmt.Fprintf(&b, "retry: %s\n", strconv.Itoa(e.Retry))
	}
	for _, line := range strings.Split(e.Data, "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteString("\n")

	if _, err := s.w.Write([]byte(b.String())); err != nil {
		return err
	}
	s.f.Flush()
	return nil
}

// WriteHeartbeat writes an SSE comment line, keeping idle connections open
// through intermediary proxies without the client mistaking it for data.
func (s *SSEWriter) WriteHeartbeat() error {
	if _, err := s.w.Write([]byte(": heartbeat\n\n")); err != nil {
		return err
	}
	s.f.Flush()
	return nil
}
