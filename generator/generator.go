// Package generator composes a grounded, streamed answer from a query
// and its retrieved ragcore.Context: a domain-parameterized prompt
// template, citation-fencing of untrusted retrieved text, and parsing of
// the model's trailing "[답변 근거]"/"[실행 제안]" blocks into
// ragcore.SourceReferences and ragcore.ActionSuggestions.
package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/lookatitude/beluga-ai/core"
	"github.com/lookatitude/beluga-ai/executor"
	"github.com/lookatitude/beluga-ai/guard"
	"github.com/lookatitude/beluga-ai/llm"
	"github.com/lookatitude/beluga-ai/prompt"
	"github.com/lookatitude/beluga-ai/ragcore"
	"github.com/lookatitude/beluga-ai/schema"
)

// sourceMarker and actionMarker delimit the Generator's trailing
// structured block, matched verbatim against the prompt's instructions.
const (
	sourceMarker = "[답변 근거]"
	actionMarker = "[실행 제안]"
)

// Payload is the event payload streamed by Generate. Exactly one field
// is meaningful, selected by the enclosing core.Event's Type and
// (for a source event) its Meta["kind"].
type Payload struct {
	// Token is set on a core.EventData event carrying a text delta.
	Token string

	// Source is set on a core.EventData event with Meta["kind"]=="source".
	Source ragcore.SourceReference

	// Sources and Actions are set on the terminal core.EventDone event.
	Sources []ragcore.SourceReference
	Actions []ragcore.ActionSuggestion
}

// Generator turns one (query, Context) pair into a token stream plus
// trailing citation/action metadata.
type Generator struct {
	model   llm.ChatModel
	prompts prompt.PromptManager
	wrap    *guard.Spotlighting
}

// GenerateOption configures a single Generate call.
type GenerateOption func(*generateConfig)

type generateConfig struct {
	strictNote string
}

// WithStricterGrounding appends an extra system directive quoting note
// (typically the evaluator's failing metric) and demanding tighter
// grounding. Used for the orchestrator's single post-evaluation retry.
func WithStricterGrounding(note string) GenerateOption {
	return func(cfg *generateConfig) { cfg.strictNote = note }
}

// New creates a Generator that calls model for generation and looks up
// its domain-parameterized system prompts through prompts.
func New(model llm.ChatModel, prompts prompt.PromptManager) *Generator {
	return &Generator{model: model, prompts: prompts, wrap: guard.NewSpotlighting("")}
}

// Generate streams the answer to query over rctx, using domains
// (priority-ordered, most specific first) to select the system prompt
// and history to supply recent conversation turns. The returned stream
// yields token events in order, then one source event per cited chunk,
// then a terminal done event carrying the full citation and action set.
// If the underlying model stream fails, an error event is yielded and
// any partial answer is discarded — not parsed, not returned.
func (g *Generator) Generate(ctx context.Context, domains []ragcore.DomainTag, query string, history []ragcore.Turn, rctx ragcore.Context, opts ...GenerateOption) core.Stream[Payload] {
	return func(yield func(core.Event[Payload], error) bool) {
		if len(domains) == 0 {
			yield(core.Event[Payload]{Type: core.EventError}, fmt.Errorf("generator: no domains given"))
			return
		}

		var cfg generateConfig
		for _, opt := range opts {
			opt(&cfg)
		}

		messages, err := g.buildMessages(ctx, domains, query, history, rctx, cfg)
		if err != nil {
			yield(core.Event[Payload]{Type: core.EventError}, err)
			return
		}

		var answer strings.Builder
		for chunk, streamErr := range g.model.Stream(ctx, messages) {
			if streamErr != nil {
				yield(core.Event[Payload]{Type: core.EventError}, streamErr)
				return
			}
			if chunk.Delta == "" {
				continue
			}
			answer.WriteString(chunk.Delta)
			if !yield(core.Event[Payload]{Type: core.EventData, Payload: Payload{Token: chunk.Delta}}, nil) {
				return
			}
		}

		full := stripLeakedDirectives(answer.String())
		sources := parseSources(full, rctx)
		actions := executor.Parse(extractBlock(full, actionMarker))

		for _, s := range sources {
			ok := yield(core.Event[Payload]{
				Type:    core.EventData,
				Payload: Payload{Source: s},
				Meta:    map[string]any{"kind": "source"},
			}, nil)
			if !ok {
				return
			}
		}

		yield(core.Event[Payload]{Type: core.EventDone, Payload: Payload{Sources: sources, Actions: actions}}, nil)
	}
}

// buildMessages assembles the generation prompt: the dominant domain's
// system template, the retrieved chunks wrapped with spotlighting
// delimiters and tagged with provenance as static context, conversation
// history as dynamic context, and the query as user input.
func (g *Generator) buildMessages(ctx context.Context, domains []ragcore.DomainTag, query string, history []ragcore.Turn, rctx ragcore.Context, cfg generateConfig) ([]schema.Message, error) {
	names := make([]string, len(domains))
	for i, d := range domains {
		names[i] = string(d)
	}

	system, err := g.prompts.Render(string(domains[0])+":"+TemplatePurpose, map[string]any{
		"domains": strings.Join(names, ", "),
	})
	if err != nil {
		return nil, fmt.Errorf("generator: render system prompt: %w", err)
	}

	systemPrompt := system[0].Text()
	if cfg.strictNote != "" {
		systemPrompt += "\n\n이전 답변은 검증을 통과하지 못했습니다 (" + cfg.strictNote + "). " +
			"인용되지 않은 주장을 모두 제거하고, 제공된 조각에 명시된 내용만으로 다시 답변하세요."
	}

	builder := prompt.NewBuilder(
		prompt.WithSystemPrompt(systemPrompt),
		prompt.WithStaticContext(g.fenceContext(ctx, rctx)),
		prompt.WithCacheBreakpoint(),
		prompt.WithDynamicContext(historyMessages(history)),
		prompt.WithUserInput(schema.NewHumanMessage(query)),
	)
	return builder.Build(), nil
}

// fenceContext renders each chunk as a provenance-tagged block with its
// text wrapped in spotlighting delimiters, so the model sees a clear
// boundary between trusted instructions and untrusted retrieved data.
func (g *Generator) fenceContext(ctx context.Context, rctx ragcore.Context) []string {
	docs := make([]string, 0, len(rctx.Chunks))
	for _, c := range rctx.Chunks {
		result, err := g.wrap.Validate(ctx, guard.GuardInput{Content: c.Text})
		wrapped := c.Text
		if err == nil && result.Modified != "" {
			wrapped = result.Modified
		}
		docs = append(docs, fmt.Sprintf("[조각 id: %s | 출처: %s | 제목: %s]\n%s", c.ID, c.Source.Origin, c.Title, wrapped))
	}
	return docs
}

// historyMessages turns recent conversation turns into alternating
// human/AI messages for the dynamic context slot.
func historyMessages(history []ragcore.Turn) []schema.Message {
	msgs := make([]schema.Message, 0, len(history)*2)
	for _, turn := range history {
		msgs = append(msgs, schema.NewHumanMessage(turn.Query), schema.NewAIMessage(turn.Answer))
	}
	return msgs
}
