// Package router classifies an incoming query into one or more
// ragcore.DomainTags, or refuses it as out of domain. Classification is
// two-stage: a cheap keyword pre-filter runs first, and only falls
// through to a structured LLM call when the keyword signal is not
// confident enough.
package router

import (
	"context"
	"sort"

	"github.com/lookatitude/beluga-ai/llm"
	"github.com/lookatitude/beluga-ai/ragcore"
)

// defaultMargin is how much the dominant keyword score must exceed the
// runner-up's, as a fraction of the dominant score, for the keyword
// pre-filter to be trusted without an LLM call.
const defaultMargin = 0.34

// Result is the Router's classification of one query.
type Result struct {
	InDomain bool
	Domains  []ragcore.DomainTag // ordered by priority; empty when !InDomain
	// Degraded is true when the LLM classification stage failed and the
	// Router fell back to retrieval over every domain in priority order.
	// This is a defensive degrade, not an error.
	Degraded bool
}

// Router classifies queries via keyword pre-filter + LLM fallback.
type Router struct {
	classifier *llm.StructuredOutput[classification]
	keywords   map[ragcore.DomainTag][]string
	priority   []ragcore.DomainTag
	margin     float64
}

// Option configures a Router.
type Option func(*Router)

// WithMargin overrides the keyword pre-filter's confidence margin
// (default 0.34). Values <= 0 are ignored.
func WithMargin(margin float64) Option {
	return func(r *Router) {
		if margin > 0 {
			r.margin = margin
		}
	}
}

// WithKeywords overrides the domain keyword sets used by the pre-filter.
func WithKeywords(keywords map[ragcore.DomainTag][]string) Option {
	return func(r *Router) {
		r.keywords = keywords
	}
}

// WithPriority overrides the tie-break domain priority (default
// ragcore.DomainPriority).
func WithPriority(priority []ragcore.DomainTag) Option {
	return func(r *Router) {
		r.priority = priority
	}
}

// New creates a Router issuing its LLM fallback classification through
// model.
func New(model llm.ChatModel, opts ...Option) *Router {
	r := &Router{
		classifier: llm.NewStructured[classification](model),
		keywords:   defaultKeywords,
		priority:   ragcore.DomainPriority,
		margin:     defaultMargin,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route classifies query, optionally informed by recent conversation
// history. It never returns an error: LLM failure or malformed output
// degrades to retrieval over every domain rather than failing the query.
func (r *Router) Route(ctx context.Context, query string, history []ragcore.Turn) Result {
	if tags, ok := r.keywordPrefilter(query); ok {
		return Result{InDomain: true, Domains: tags}
	}

	result, err := r.classifier.Generate(ctx, classifyMessages(query, history, r.priority))
	if err != nil {
		return Result{InDomain: true, Domains: append([]ragcore.DomainTag(nil), r.priority...), Degraded: true}
	}

	tags, ok := result.domainTags(r.priority)
	if !ok || !result.InDomain {
		return Result{InDomain: false}
	}
	return Result{InDomain: true, Domains: tags}
}

// keywordPrefilter scores query against each domain's keyword set and
// returns the priority-ordered domain set when the dominant score beats
// the runner-up by at least the configured margin.
func (r *Router) keywordPrefilter(query string) ([]ragcore.DomainTag, bool) {
	scores := scoreDomains(query, r.keywords)

	type scored struct {
		domain ragcore.DomainTag
		score  int
	}
	ranked := make([]scored, 0, len(scores))
	for d, s := range scores {
		if s > 0 {
			ranked = append(ranked, scored{d, s})
		}
	}
	if len(ranked) == 0 {
		return nil, false
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ragcore.PriorityRank(r.priority, ranked[i].domain) < ragcore.PriorityRank(r.priority, ranked[j].domain)
	})

	top := ranked[0].score
	runnerUp := 0
	if len(ranked) > 1 {
		runnerUp = ranked[1].score
	}
	if float64(top-runnerUp)/float64(top) < r.margin {
		return nil, false
	}

	tags := make([]ragcore.DomainTag, len(ranked))
	for i, s := range ranked {
		tags[i] = s.domain
	}
	return tags, true
}
