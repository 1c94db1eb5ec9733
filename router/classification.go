package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lookatitude/beluga-ai/ragcore"
	"github.com/lookatitude/beluga-ai/schema"
)

// classification is the JSON shape the LLM classification call is forced
// to produce, via llm.StructuredOutput.
type classification struct {
	InDomain bool     `json:"in_domain"`
	Domains  []string `json:"domains"`
}

// domainTags validates and orders the classifier's raw domain strings by
// priority, dropping anything outside the closed DomainTag set. ok is
// false when nothing valid survives.
func (c classification) domainTags(priority []ragcore.DomainTag) ([]ragcore.DomainTag, bool) {
	if !c.InDomain || len(c.Domains) == 0 {
		return nil, false
	}

	seen := make(map[ragcore.DomainTag]bool, len(c.Domains))
	for _, d := range c.Domains {
		tag := ragcore.DomainTag(d)
		if isKnownDomain(tag) {
			seen[tag] = true
		}
	}
	if len(seen) == 0 {
		return nil, false
	}

	tags := make([]ragcore.DomainTag, 0, len(seen))
	for d := range seen {
		tags = append(tags, d)
	}
	sort.SliceStable(tags, func(i, j int) bool {
		return ragcore.PriorityRank(priority, tags[i]) < ragcore.PriorityRank(priority, tags[j])
	})
	return tags, true
}

func isKnownDomain(d ragcore.DomainTag) bool {
	switch d {
	case ragcore.DomainStartupFunding, ragcore.DomainFinanceTax, ragcore.DomainHRLabor, ragcore.DomainLawCommon:
		return true
	default:
		return false
	}
}

// classifyMessages builds the structured classification prompt: the
// closed domain set, an explicit out-of-scope option, recent
// conversation history, and the query itself.
func classifyMessages(query string, history []ragcore.Turn, priority []ragcore.DomainTag) []schema.Message {
	var domains []string
	for _, d := range priority {
		domains = append(domains, string(d))
	}

	system := fmt.Sprintf(
		"You classify a small-business advisory query into zero or more of these domains: %s. "+
			"If the query does not concern any of them, set in_domain to false and domains to an empty list. "+
			"A query may belong to more than one domain; order domains from most to least relevant. "+
			"Respond with in_domain and domains only.",
		strings.Join(domains, ", "),
	)

	msgs := []schema.Message{schema.NewSystemMessage(system)}
	for _, turn := range history {
		msgs = append(msgs, schema.NewHumanMessage(turn.Query), schema.NewAIMessage(turn.Answer))
	}
	msgs = append(msgs, schema.NewHumanMessage(query))
	return msgs
}
