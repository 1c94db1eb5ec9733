// Package orchestration drives one advisory query through its fixed
// lifecycle: ADMITTED -> ROUTED -> RETRIEVED -> GENERATING -> EVALUATED ->
// DONE, with side branches REFUSED, INSUFFICIENT, and RETRYING, and a
// terminal FAILED state for unrecoverable errors (see State in state.go).
//
// Pipeline.Run wires a classifier (router.Router), a retriever
// (retriever.Engine), a generator (generator.Generator), and an evaluator
// (evaluator.Evaluator) into that single state machine and streams
// core.Event[Payload] as the query progresses. QueryRewriter rewrites a query
// that failed the retrieval gate (expanding acronyms and adding domain terms)
// before the retry; the routed domain set is left unchanged.
//
// Usage:
//
//	p := orchestration.New(router, retrieverEngine, gen, eval, rewriter)
//	for event, err := range p.Run(ctx, query, history) {
//	    ...
//	}
package orchestration
