package server

import (
	"encoding/json"

	"github.com/lookatitude/beluga-ai/core"
	"github.com/lookatitude/beluga-ai/orchestration"
	"github.com/lookatitude/beluga-ai/ragcore"
)

// wireEvent is one outbound event in the token/source/action/done/error
// vocabulary, decoupled from any one transport's framing (SSE or websocket).
type wireEvent struct {
	event  SSEEvent
	final  bool
	answer ragcore.Answer
}

// eventKind classifies a core.Event[orchestration.Payload] into the wire
// vocabulary named in the streaming contract: token, source, action, done,
// or error.
func eventKind(e core.Event[orchestration.Payload]) string {
	switch e.Type {
	case core.EventDone:
		return "done"
	case core.EventError:
		return "error"
	case core.EventData:
		if e.Meta["kind"] == "source" {
			return "source"
		}
		if e.Meta["kind"] == "action" {
			return "action"
		}
		return "token"
	default:
		return "token"
	}
}

func marshalEventData(kind string, p orchestration.Payload, streamErr error) string {
	switch kind {
	case "token":
		return p.Token
	case "source":
		b, _ := json.Marshal(toSourceDTO(p.Source))
		return string(b)
	case "action":
		b, _ := json.Marshal(toActionDTO(p.Action))
		return string(b)
	case "done":
		b, _ := json.Marshal(toChatResponse(p.Answer))
		return string(b)
	case "error":
		if streamErr != nil {
			return streamErr.Error()
		}
		return "stream error"
	default:
		return ""
	}
}

// translateToSSE consumes a pipeline event stream and yields one wireEvent
// per token/source/action/done/error, in the same order the pipeline
// produced them. done and error are always last, matching the ordering
// guarantee the pipeline itself upholds.
func translateToSSE(stream core.Stream[orchestration.Payload]) func(yield func(wireEvent) bool) {
	return func(yield func(wireEvent) bool) {
		for event, err := range stream {
			if err != nil {
				w := wireEvent{event: SSEEvent{Event: "error", Data: marshalEventData("error", orchestration.Payload{}, err)}}
				yield(w)
				return
			}
			kind := eventKind(event)
			w := wireEvent{
				event: SSEEvent{Event: kind, Data: marshalEventData(kind, event.Payload, nil)},
			}
			if kind == "done" {
				w.final = true
				w.answer = event.Payload.Answer
			}
			if !yield(w) {
				return
			}
			if kind == "done" || kind == "error" {
				return
			}
		}
	}
}
