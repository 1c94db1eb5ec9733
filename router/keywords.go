package router

import (
	"strings"

	"github.com/lookatitude/beluga-ai/lexical"
	"github.com/lookatitude/beluga-ai/ragcore"
)

// defaultKeywords is a small representative keyword set per domain, used
// by the cheap pre-filter. It is not exhaustive; its job is to catch the
// common, unambiguous case cheaply and leave the rest to the LLM stage.
var defaultKeywords = map[ragcore.DomainTag][]string{
	ragcore.DomainStartupFunding: {
		"창업", "지원금", "보조금", "사업자등록", "스타트업", "투자유치", "정부지원",
	},
	ragcore.DomainFinanceTax: {
		"부가가치세", "소득세", "법인세", "세금", "세무", "신고", "공제", "연말정산",
	},
	ragcore.DomainHRLabor: {
		"근로계약서", "해고", "임금", "퇴직금", "4대보험", "근로시간", "연차", "산재",
	},
	ragcore.DomainLawCommon: {
		"소송", "계약", "분쟁", "판례", "법률", "고소", "손해배상",
	},
}

// scoreDomains counts, per domain, how many of query's tokens match that
// domain's keyword set.
func scoreDomains(query string, keywords map[ragcore.DomainTag][]string) map[ragcore.DomainTag]int {
	tokens := make(map[string]struct{})
	for _, t := range lexical.Tokenize(query) {
		tokens[t] = struct{}{}
	}

	scores := make(map[ragcore.DomainTag]int, len(keywords))
	for domain, words := range keywords {
		for _, w := range words {
			if matchesAnyToken(tokens, strings.ToLower(w)) {
				scores[domain]++
			}
		}
	}
	return scores
}

// matchesAnyToken reports whether keyword appears as a substring of any
// query token (query tokens can carry particles/suffixes Korean
// agglutinates onto a bare keyword, e.g. "창업을" contains "창업").
func matchesAnyToken(tokens map[string]struct{}, keyword string) bool {
	for t := range tokens {
		if strings.Contains(t, keyword) {
			return true
		}
	}
	return false
}
