// Package orchestration drives one query through the fixed advisory
// pipeline state graph: admission, domain routing, hybrid retrieval (with
// its quality gate and single rewrite-and-retry), grounded generation, and
// faithfulness evaluation (with its own single stricter-prompt retry),
// producing a token/source/action/done/error event stream under a
// wall-clock deadline.
package orchestration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lookatitude/beluga-ai/core"
	"github.com/lookatitude/beluga-ai/generator"
	"github.com/lookatitude/beluga-ai/o11y"
	"github.com/lookatitude/beluga-ai/ragcore"
	"github.com/lookatitude/beluga-ai/router"
)

// defaultDeadline is the spec's default wall-clock budget per query.
const defaultDeadline = 60 * time.Second

const refusalText = "죄송합니다, 이 질문은 창업, 세무·회계, 인사·노동, 법률 상담 범위를 벗어나 답변드릴 수 없습니다."

const insufficientText = "죄송합니다, 관련된 자료를 충분히 찾지 못해 신뢰할 수 있는 답변을 드리기 어렵습니다. 질문을 더 구체적으로 표현해 주시면 다시 시도하겠습니다."

// Evaluator pass/fail thresholds, mirrored here (rather than imported) so
// the orchestration layer does not need a compile-time dependency on the
// evaluator package's exported constants to describe a failing metric.
const (
	minFaithfulness = 0.8
	minRelevancy    = 0.7
)

// classifier is the narrow slice of router.Router that Pipeline depends
// on, so tests can substitute a scripted double.
type classifier interface {
	Route(ctx context.Context, query string, history []ragcore.Turn) router.Result
}

// retrieverEngine is the narrow slice of retriever.Engine Pipeline depends on.
type retrieverEngine interface {
	Retrieve(ctx context.Context, query string, tags []ragcore.DomainTag, attempt int) ([]ragcore.RetrievalResult, ragcore.Context, ragcore.GateVerdict, error)
}

// answerGenerator is the narrow slice of generator.Generator Pipeline
// depends on.
type answerGenerator interface {
	Generate(ctx context.Context, domains []ragcore.DomainTag, query string, history []ragcore.Turn, rctx ragcore.Context, opts ...generator.GenerateOption) core.Stream[generator.Payload]
}

// answerEvaluator is the narrow slice of evaluator.Evaluator Pipeline
// depends on.
type answerEvaluator interface {
	Evaluate(ctx context.Context, query, answer string, chunks []ragcore.Chunk, elapsed time.Duration) (ragcore.EvaluationRecord, error)
}

// queryRewriterIface expands a query that failed the retrieval gate.
type queryRewriterIface interface {
	Rewrite(ctx context.Context, query string, domains []ragcore.DomainTag) string
}

// Payload is the event payload streamed by Pipeline.Run. Exactly one field
// is meaningful, selected by the enclosing core.Event's Type and, for a
// source or action event, Meta["kind"].
type Payload struct {
	Token  string
	Source ragcore.SourceReference
	Action ragcore.ActionSuggestion
	Answer ragcore.Answer
}

// Pipeline wires the router, retriever, generator, and evaluator into one
// query lifecycle.
type Pipeline struct {
	router    classifier
	retriever retrieverEngine
	generator answerGenerator
	evaluator answerEvaluator
	rewriter  queryRewriterIface
	deadline  time.Duration
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDeadline overrides the default 60s wall-clock budget per query.
func WithDeadline(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.deadline = d
		}
	}
}

// New creates a Pipeline over the given collaborators.
func New(rtr classifier, retriever retrieverEngine, gen answerGenerator, eval answerEvaluator, rewriter queryRewriterIface, opts ...Option) *Pipeline {
	p := &Pipeline{
		router:    rtr,
		retriever: retriever,
		generator: gen,
		evaluator: eval,
		rewriter:  rewriter,
		deadline:  defaultDeadline,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run drives query (plus optional conversation history) through the full
// pipeline, returning a stream of token/source/action events terminated by
// exactly one done or error event. Tokens and sources are relayed to the
// caller live, in generation order, as each Generate call produces them;
// a post-evaluation retry (at most one per query) appends a second draft's
// tokens and sources to the same stream rather than revising the first.
func (p *Pipeline) Run(ctx context.Context, query string, history []ragcore.Turn) core.Stream[Payload] {
	return func(yield func(core.Event[Payload], error) bool) {
		start := time.Now()
		ctx, cancel := context.WithTimeout(ctx, p.deadline)
		defer cancel()

		log := o11y.FromContext(ctx)
		transition := func(s State) {
			log.Info(ctx, "orchestration: state transition", "state", string(s), "elapsed_ms", time.Since(start).Milliseconds())
		}

		transition(StateAdmitted)

		route := p.router.Route(ctx, query, history)
		if !route.InDomain {
			transition(StateRefused)
			yield(core.Event[Payload]{Type: core.EventDone, Payload: Payload{Answer: ragcore.Answer{
				Text:       refusalText,
				Evaluation: ragcore.EvaluationRecord{Passed: false, LatencySeconds: time.Since(start).Seconds()},
			}}}, nil)
			return
		}
		transition(StateRouted)

		retriesLeft := 1
		currentQuery := query
		rctx, gated := p.retrieveUntilGated(ctx, &currentQuery, route.Domains, &retriesLeft, transition)
		if !gated {
			if ctx.Err() != nil {
				transition(StateFailed)
				yield(core.Event[Payload]{Type: core.EventError}, deadlineError(ctx.Err()))
				return
			}
			transition(StateInsufficient)
			yield(core.Event[Payload]{Type: core.EventDone, Payload: Payload{Answer: ragcore.Answer{
				Text: insufficientText,
				Evaluation: ragcore.EvaluationRecord{
					Passed:            false,
					LatencySeconds:    time.Since(start).Seconds(),
					RetrievedChunkIDs: rctx.ChunkIDs(),
				},
			}}}, nil)
			return
		}
		transition(StateRetrieved)

		text, sources, actions, genErr := p.streamGenerate(ctx, route.Domains, currentQuery, history, rctx, transition, yield, nil)
		if genErr != nil {
			transition(StateFailed)
			yield(core.Event[Payload]{Type: core.EventError}, genErr)
			return
		}

		record, err := p.evaluator.Evaluate(ctx, currentQuery, text, rctx.Chunks, time.Since(start))
		if err != nil {
			transition(StateFailed)
			yield(core.Event[Payload]{Type: core.EventError}, err)
			return
		}
		transition(StateEvaluated)

		if !record.Passed && retriesLeft > 0 {
			retriesLeft--
			transition(StateRetrying)
			opts := []generator.GenerateOption{generator.WithStricterGrounding(failingMetricNote(record))}
			retryText, retrySources, retryActions, retryErr := p.streamGenerate(ctx, route.Domains, currentQuery, history, rctx, transition, yield, opts)
			if retryErr == nil {
				if retryRecord, evalErr := p.evaluator.Evaluate(ctx, currentQuery, retryText, rctx.Chunks, time.Since(start)); evalErr == nil {
					transition(StateEvaluated)
					text, sources, actions, record = retryText, retrySources, retryActions, retryRecord
				}
			}
			// A retry-path failure (generate or evaluate erroring) is a
			// silent degrade: the first draft and its (failing) record are
			// delivered anyway, per the spec's "second failure emits the
			// answer anyway but with passed=false recorded".
		}

		for _, a := range actions {
			if !yield(core.Event[Payload]{Type: core.EventData, Payload: Payload{Action: a}, Meta: map[string]any{"kind": "action"}}, nil) {
				return
			}
		}

		transition(StateDone)
		yield(core.Event[Payload]{Type: core.EventDone, Payload: Payload{Answer: ragcore.Answer{
			Text:       text,
			Sources:    sources,
			Actions:    actions,
			Evaluation: record,
		}}}, nil)
	}
}

// retrieveUntilGated retrieves for currentQuery, rewriting and retrying
// once on a RETRY verdict. gated is false when the gate ultimately FAILs
// or retrieval itself errors (distinguishable by ctx.Err() afterward).
func (p *Pipeline) retrieveUntilGated(ctx context.Context, currentQuery *string, domains []ragcore.DomainTag, retriesLeft *int, transition func(State)) (ragcore.Context, bool) {
	attempt := 0
	for {
		if ctx.Err() != nil {
			return ragcore.Context{}, false
		}
		_, rctx, verdict, err := p.retriever.Retrieve(ctx, *currentQuery, domains, attempt)
		if err != nil {
			return ragcore.Context{}, false
		}
		switch verdict {
		case ragcore.GatePass:
			return rctx, true
		case ragcore.GateRetry:
			if *retriesLeft <= 0 {
				return rctx, false
			}
			*retriesLeft--
			transition(StateRetrying)
			*currentQuery = p.rewriter.Rewrite(ctx, *currentQuery, domains)
			attempt = 1
		default: // ragcore.GateFail
			return rctx, false
		}
	}
}

// streamGenerate drives one Generate call to completion, relaying its
// token and source events to yield live and accumulating the finished
// text, sources, and actions for the evaluator and the terminal done event.
func (p *Pipeline) streamGenerate(ctx context.Context, domains []ragcore.DomainTag, query string, history []ragcore.Turn, rctx ragcore.Context, transition func(State), yield func(core.Event[Payload], error) bool, opts []generator.GenerateOption) (string, []ragcore.SourceReference, []ragcore.ActionSuggestion, error) {
	transition(StateGenerating)
	var text strings.Builder
	var sources []ragcore.SourceReference
	var actions []ragcore.ActionSuggestion

	for event, err := range p.generator.Generate(ctx, domains, query, history, rctx, opts...) {
		if err != nil {
			return "", nil, nil, err
		}
		switch event.Type {
		case core.EventData:
			if event.Meta["kind"] == "source" {
				sources = append(sources, event.Payload.Source)
				if !yield(core.Event[Payload]{Type: core.EventData, Payload: Payload{Source: event.Payload.Source}, Meta: map[string]any{"kind": "source"}}, nil) {
					return text.String(), sources, actions, nil
				}
				continue
			}
			text.WriteString(event.Payload.Token)
			if !yield(core.Event[Payload]{Type: core.EventData, Payload: Payload{Token: event.Payload.Token}}, nil) {
				return text.String(), sources, actions, nil
			}
		case core.EventDone:
			actions = event.Payload.Actions
		}
	}
	return text.String(), sources, actions, nil
}

func failingMetricNote(r ragcore.EvaluationRecord) string {
	switch {
	case r.Faithfulness < minFaithfulness:
		return fmt.Sprintf("faithfulness %.2f", r.Faithfulness)
	case r.AnswerRelevancy < minRelevancy:
		return fmt.Sprintf("answer_relevancy %.2f", r.AnswerRelevancy)
	default:
		return fmt.Sprintf("llm_score %d", r.LLMScore)
	}
}

func deadlineError(cause error) error {
	return fmt.Errorf("orchestration: deadline exceeded: %w", cause)
}
