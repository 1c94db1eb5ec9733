package prompt

import (
	"strings"

	"github.com/lookatitude/beluga-ai/schema"
)

// BuilderOption configures a Builder. Options are order-independent:
// Build always emits slots in the fixed sequence documented below
// regardless of the order options were passed in.
type BuilderOption func(*Builder)

// Builder assembles one Generate/Stream call's message slice from
// independent concerns — system instructions, tool definitions, static
// reference context, a cache breakpoint marker, recent conversation
// turns, and the current user input — in the fixed order providers
// expect: system prompt, tool definitions, static context, cache
// breakpoint, dynamic context, user input.
type Builder struct {
	systemPrompt string
	tools        []schema.ToolDefinition
	staticCtx    []string
	breakpoint   bool
	dynamicCtx   []schema.Message
	userInput    schema.Message
}

// NewBuilder creates a Builder with the given options applied.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// WithSystemPrompt sets the leading system instruction message.
func WithSystemPrompt(text string) BuilderOption {
	return func(b *Builder) { b.systemPrompt = text }
}

// WithToolDefinitions adds a system message listing the available tools.
func WithToolDefinitions(tools []schema.ToolDefinition) BuilderOption {
	return func(b *Builder) { b.tools = tools }
}

// WithStaticContext adds one system message per non-empty string, ahead
// of the cache breakpoint and conversation history.
func WithStaticContext(docs []string) BuilderOption {
	return func(b *Builder) { b.staticCtx = docs }
}

// WithCacheBreakpoint marks the point after which a provider's prompt
// cache should split: everything before it is expected to be identical
// across calls within a session.
func WithCacheBreakpoint() BuilderOption {
	return func(b *Builder) { b.breakpoint = true }
}

// WithDynamicContext inserts prior conversation turns after static
// context and the cache breakpoint.
func WithDynamicContext(msgs []schema.Message) BuilderOption {
	return func(b *Builder) { b.dynamicCtx = msgs }
}

// WithUserInput sets the final message: the current turn's input.
func WithUserInput(msg schema.Message) BuilderOption {
	return func(b *Builder) { b.userInput = msg }
}

// Build assembles the message slice in fixed slot order, omitting any
// slot that was never set.
func (b *Builder) Build() []schema.Message {
	var msgs []schema.Message

	if b.systemPrompt != "" {
		msgs = append(msgs, schema.NewSystemMessage(b.systemPrompt))
	}

	if len(b.tools) > 0 {
		var sb strings.Builder
		sb.WriteString("Available tools:\n")
		for _, t := range b.tools {
			sb.WriteString("- ")
			sb.WriteString(t.Name)
			if t.Description != "" {
				sb.WriteString(": ")
				sb.WriteString(t.Description)
			}
			sb.WriteString("\n")
		}
		msgs = append(msgs, schema.NewSystemMessage(sb.String()))
	}

	for _, doc := range b.staticCtx {
		if doc == "" {
			continue
		}
		msgs = append(msgs, schema.NewSystemMessage(doc))
	}

	if b.breakpoint {
		bp := schema.NewSystemMessage("")
		bp.Metadata = map[string]any{"cache_breakpoint": true}
		msgs = append(msgs, bp)
	}

	msgs = append(msgs, b.dynamicCtx...)

	if b.userInput != nil {
		msgs = append(msgs, b.userInput)
	}

	return msgs
}
