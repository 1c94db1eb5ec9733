package server

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/lookatitude/beluga-ai/core"
	"github.com/lookatitude/beluga-ai/guard"
	"github.com/lookatitude/beluga-ai/memory"
	"github.com/lookatitude/beluga-ai/orchestration"
	"github.com/lookatitude/beluga-ai/ragcore"
	"github.com/lookatitude/beluga-ai/schema"
)

const turnWindowSize = 10

// koreanPIIPatterns extends guard.DefaultPIIPatterns (email/phone/SSN/credit
// card/IP, all US-shaped) with the two registration-number formats a Korean
// advisory answer is most likely to leak back from a retrieved filing or
// cited regulation: business registration numbers (사업자등록번호,
// NNN-NN-NNNNN) and resident registration numbers (주민등록번호,
// NNNNNN-NNNNNNN).
var koreanPIIPatterns = []guard.PIIPattern{
	{
		Name:        "business_registration_number",
		Pattern:     regexp.MustCompile(`\b\d{3}-\d{2}-\d{5}\b`),
		Placeholder: "[사업자등록번호]",
	},
	{
		Name:        "resident_registration_number",
		Pattern:     regexp.MustCompile(`\b\d{6}-\d{7}\b`),
		Placeholder: "[주민등록번호]",
	},
}

// answerRedactor scrubs PII out of every answer before it is returned to a
// caller or persisted, using the same guard.PIIRedactor a request-side guard
// pipeline would use for input, pointed at the Generator's output instead.
var answerRedactor = guard.NewPIIRedactor(append(append([]guard.PIIPattern{}, guard.DefaultPIIPatterns...), koreanPIIPatterns...)...)

// redactAnswer runs a's text through answerRedactor, returning a with Text
// replaced by the sanitized version when a pattern matched.
func redactAnswer(ctx context.Context, a ragcore.Answer) ragcore.Answer {
	result, err := answerRedactor.Validate(ctx, guard.GuardInput{Content: a.Text, Role: "output"})
	if err == nil && result.Modified != "" {
		a.Text = result.Modified
	}
	return a
}

// ChatRequest is the JSON body accepted by both /chat and /chat/stream.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// sourceDTO/actionDTO/evaluationDTO/chatResponse mirror the ragcore wire
// types with explicit json tags; ragcore itself stays presentation-agnostic.
type sourceDTO struct {
	ChunkID string `json:"chunk_id"`
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	System  string `json:"system,omitempty"`
}

type actionDTO struct {
	Type       string            `json:"type"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

type evaluationDTO struct {
	Faithfulness     float64 `json:"faithfulness"`
	AnswerRelevancy  float64 `json:"answer_relevancy"`
	ContextPrecision float64 `json:"context_precision"`
	ContextRecall    float64 `json:"context_recall"`
	Passed           bool    `json:"passed"`
	LatencySeconds   float64 `json:"latency_seconds"`
}

// ChatResponse is the single-JSON-object shape /chat returns, and the shape
// the done SSE/websocket event's data carries on /chat/stream.
type ChatResponse struct {
	Text       string        `json:"text"`
	Sources    []sourceDTO   `json:"sources,omitempty"`
	Actions    []actionDTO   `json:"actions,omitempty"`
	Evaluation evaluationDTO `json:"evaluation"`
}

func toSourceDTO(s ragcore.SourceReference) sourceDTO {
	return sourceDTO{ChunkID: s.ChunkID, Title: s.Title, URL: s.URL, System: s.System}
}

func toActionDTO(a ragcore.ActionSuggestion) actionDTO {
	return actionDTO{Type: string(a.Type), Parameters: a.Parameters}
}

func toEvaluationDTO(e ragcore.EvaluationRecord) evaluationDTO {
	return evaluationDTO{
		Faithfulness:     e.Faithfulness,
		AnswerRelevancy:  e.AnswerRelevancy,
		ContextPrecision: e.ContextPrecision,
		ContextRecall:    e.ContextRecall,
		Passed:           e.Passed,
		LatencySeconds:   e.LatencySeconds,
	}
}

func toChatResponse(a ragcore.Answer) ChatResponse {
	sources := make([]sourceDTO, 0, len(a.Sources))
	for _, s := range a.Sources {
		sources = append(sources, toSourceDTO(s))
	}
	actions := make([]actionDTO, 0, len(a.Actions))
	for _, act := range a.Actions {
		actions = append(actions, toActionDTO(act))
	}
	return ChatResponse{
		Text:       a.Text,
		Sources:    sources,
		Actions:    actions,
		Evaluation: toEvaluationDTO(a.Evaluation),
	}
}

// recorder is the narrow slice of persistence.Recorder ChatHandler depends
// on, so tests can substitute a scripted double.
type recorder interface {
	RecordAnswer(ctx context.Context, sessionID, query string, answer ragcore.Answer, recordedAtUnix int64) error
}

// pipeline is the narrow slice of orchestration.Pipeline ChatHandler
// depends on.
type pipeline interface {
	Run(ctx context.Context, query string, history []ragcore.Turn) core.Stream[orchestration.Payload]
}

// longTermMemory is the narrow slice of memory.Memory ChatHandler uses for
// durable, cross-restart context: every completed turn is saved to it, and
// it is consulted for recalled context before a new query is routed. This
// is a second memory strategy alongside the in-process TurnWindow, which is
// bounded to turnWindowSize turns and lost on restart.
type longTermMemory interface {
	Save(ctx context.Context, input, output schema.Message) error
	Load(ctx context.Context, query string) ([]schema.Message, error)
}

// ChatHandler serves both the non-streaming POST /chat and the streaming
// POST /chat/stream endpoints over one conversation-memory and persistence
// wiring.
type ChatHandler struct {
	pipeline  pipeline
	recorder  recorder
	longTerm  longTermMemory
	nowUnix   func() int64
	historyMu sync.Mutex
	history   map[string]*memory.TurnWindow
}

// ChatHandlerOption configures optional ChatHandler behavior.
type ChatHandlerOption func(*ChatHandler)

// WithLongTermMemory attaches a durable memory.Memory (or a subset of it)
// that receives every completed turn and is searched for relevant recalled
// context before routing the next query. Without this option the handler
// relies solely on the in-process TurnWindow.
func WithLongTermMemory(m longTermMemory) ChatHandlerOption {
	return func(h *ChatHandler) { h.longTerm = m }
}

// NewChatHandler wires p as the query pipeline; rec may be nil, in which
// case completed turns are not persisted (useful for tests and for
// deployments that have not configured a persistence backend).
func NewChatHandler(p pipeline, rec recorder, opts ...ChatHandlerOption) *ChatHandler {
	h := &ChatHandler{
		pipeline: p,
		recorder: rec,
		nowUnix:  func() int64 { return time.Now().Unix() },
		history:  make(map[string]*memory.TurnWindow),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *ChatHandler) windowFor(conversationID string) *memory.TurnWindow {
	if conversationID == "" {
		return memory.NewTurnWindow(turnWindowSize)
	}
	h.historyMu.Lock()
	defer h.historyMu.Unlock()
	w, ok := h.history[conversationID]
	if !ok {
		w = memory.NewTurnWindow(turnWindowSize)
		h.history[conversationID] = w
	}
	return w
}

func decodeChatRequest(r *http.Request) (ChatRequest, error) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return ChatRequest{}, err
	}
	return req, nil
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// ServeInvoke handles the non-streaming POST /chat: it runs the full
// pipeline to completion and returns one ChatResponse JSON object.
func (h *ChatHandler) ServeInvoke(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	req, err := decodeChatRequest(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	window := h.windowFor(req.ConversationID)
	answer, err := h.runToCompletion(r.Context(), req, window)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(toChatResponse(answer))
}

// runToCompletion drains the pipeline stream, appends the completed turn to
// the conversation window, and fires the persistence handoff.
func (h *ChatHandler) runToCompletion(ctx context.Context, req ChatRequest, window *memory.TurnWindow) (ragcore.Answer, error) {
	var answer ragcore.Answer
	var streamErr error

	for event, err := range h.pipeline.Run(ctx, req.Message, h.historyWithRecall(ctx, req.Message, window)) {
		if err != nil {
			streamErr = err
			continue
		}
		if event.Type == core.EventDone {
			answer = event.Payload.Answer
		}
	}
	if streamErr != nil {
		return ragcore.Answer{}, streamErr
	}

	answer = redactAnswer(ctx, answer)
	window.Append(ragcore.Turn{Query: req.Message, Answer: answer.Text})
	h.persist(ctx, req, answer)
	return answer, nil
}

// historyWithRecall prepends turns recalled from long-term memory (if
// configured) to the in-process window's turns, so a query rewrite sees
// relevant older context even after the window has evicted it or the
// process has restarted.
func (h *ChatHandler) historyWithRecall(ctx context.Context, query string, window *memory.TurnWindow) []ragcore.Turn {
	turns := window.Turns()
	if h.longTerm == nil {
		return turns
	}
	msgs, err := h.longTerm.Load(ctx, query)
	if err != nil || len(msgs) == 0 {
		return turns
	}
	return append(turnsFromMessages(msgs), turns...)
}

// turnsFromMessages best-effort pairs consecutive human/AI messages into
// ragcore.Turn history, the same shape TurnWindow.Turns produces. Messages
// that do not form a human-then-AI pair (e.g. a core-memory persona system
// message) are skipped rather than mis-paired.
func turnsFromMessages(msgs []schema.Message) []ragcore.Turn {
	var turns []ragcore.Turn
	for i := 0; i+1 < len(msgs); {
		if msgs[i].GetRole() == schema.RoleHuman && msgs[i+1].GetRole() == schema.RoleAI {
			turns = append(turns, ragcore.Turn{Query: msgs[i].Text(), Answer: msgs[i+1].Text()})
			i += 2
			continue
		}
		i++
	}
	return turns
}

func (h *ChatHandler) persist(ctx context.Context, req ChatRequest, answer ragcore.Answer) {
	if h.longTerm != nil {
		_ = h.longTerm.Save(ctx, schema.NewHumanMessage(req.Message), schema.NewAIMessage(answer.Text))
	}
	if h.recorder == nil {
		return
	}
	sessionID := req.ConversationID
	_ = h.recorder.RecordAnswer(ctx, sessionID, req.Message, answer, h.nowUnix())
}

// ServeStream handles the streaming POST /chat/stream: tokens, sources, and
// actions are relayed as SSE events in generation order, followed by a
// terminal done or error event.
func (h *ChatHandler) ServeStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	req, err := decodeChatRequest(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	window := h.windowFor(req.ConversationID)

	var answer ragcore.Answer
	history := h.historyWithRecall(r.Context(), req.Message, window)
	for sseEvent := range translateToSSE(h.pipeline.Run(r.Context(), req.Message, history)) {
		if sseEvent.final {
			answer = sseEvent.answer
		}
		_ = sse.WriteEvent(sseEvent.event)
	}

	// The streamed tokens already reached the client verbatim, so redaction
	// here only protects what gets remembered, not what was already shown;
	// the same already-streamed-tokens constraint the evaluator retry path
	// lives with.
	answer = redactAnswer(r.Context(), answer)
	window.Append(ragcore.Turn{Query: req.Message, Answer: answer.Text})
	h.persist(r.Context(), req, answer)
}
