package server

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/lookatitude/beluga-ai/ragcore"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin requests are expected (browser SPA served from a
	// different origin than this API); the caller authenticates at the
	// application layer, not via Origin checks.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsFrame is one websocket message: the same token/source/action/done/error
// vocabulary as the SSE transport, carried as a JSON object instead of SSE
// lines.
type wsFrame struct {
	Event string `json:"event"`
	Data  string `json:"data"`
}

// WSHandler serves /chat/stream over a websocket connection for callers
// that cannot hold an SSE connection open.
type WSHandler struct {
	chat *ChatHandler
}

// NewWSHandler wraps chat's pipeline/recorder wiring for the websocket
// transport.
func NewWSHandler(chat *ChatHandler) *WSHandler {
	return &WSHandler{chat: chat}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := decodeChatRequest(r)
	if err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	window := h.chat.windowFor(req.ConversationID)

	var answer ragcore.Answer
	for sseEvent := range translateToSSE(h.chat.pipeline.Run(r.Context(), req.Message, window.Turns())) {
		frame := wsFrame{Event: sseEvent.event.Event, Data: sseEvent.event.Data}
		if err := conn.WriteJSON(frame); err != nil {
			return
		}
		if sseEvent.final {
			answer = sseEvent.answer
		}
	}

	window.Append(ragcore.Turn{Query: req.Message, Answer: answer.Text})
	h.chat.persist(r.Context(), req, answer)
}
