// Package executor parses the Generator's trailing structured
// action-suggestion block into ragcore.ActionSuggestions and applies the
// type-specific validation the core is responsible for. Rendering a
// suggestion (producing a document, following a link) is always the
// caller's job; the core only decides whether a suggestion is well-formed
// enough to hand over.
package executor

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/lookatitude/beluga-ai/ragcore"
)

// allowedDocumentTypes is the closed allow-list a document_generation
// suggestion's document_type must belong to. The core never renders these
// itself; it only vouches that the UI collaborator is expected to know
// the type.
var allowedDocumentTypes = map[string]bool{
	"labor_contract":         true,
	"business_registration":  true,
	"tax_invoice":            true,
	"lease_agreement":        true,
	"nda":                    true,
	"articles_of_incorporation": true,
}

// Parse extracts zero or more ActionSuggestions from block, the raw text
// of the Generator's trailing action block: one JSON object per
// non-empty line, shaped like {"type": "...", "parameters": {...}}.
// Lines that fail to parse, or that fail type-specific validation, are
// dropped rather than returned as errors — malformed output never blocks
// answer delivery, it just yields fewer actions.
func Parse(block string) []ragcore.ActionSuggestion {
	var out []ragcore.ActionSuggestion
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var raw struct {
			Type       string            `json:"type"`
			Parameters map[string]string `json:"parameters"`
		}
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			continue
		}

		action, ok := validate(ragcore.ActionType(raw.Type), raw.Parameters)
		if !ok {
			continue
		}
		out = append(out, action)
	}
	return out
}

func validate(t ragcore.ActionType, params map[string]string) (ragcore.ActionSuggestion, bool) {
	switch t {
	case ragcore.ActionDocumentGeneration:
		if !allowedDocumentTypes[params["document_type"]] {
			return ragcore.ActionSuggestion{}, false
		}
	case ragcore.ActionExternalLink:
		u, err := url.Parse(params["url"])
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return ragcore.ActionSuggestion{}, false
		}
	case ragcore.ActionCalculator, ragcore.ActionScheduleAlert, ragcore.ActionFundingSearch:
		// Declarative today: no parameters are required to render a
		// placeholder, so anything the model proposes passes through.
	default:
		return ragcore.ActionSuggestion{}, false
	}
	return ragcore.ActionSuggestion{Type: t, Parameters: params}, true
}
