package generator

import (
	"regexp"
	"strings"
)

// leakedDirectivePatterns catches text that resembles a system-role
// directive leaking from retrieved (untrusted) context into the
// Generator's own answer — e.g. the model quoting an embedded "ignore
// previous instructions" attempt back to the user. This is the same
// family of heuristic guard.PromptInjectionDetector blocks on input;
// here the answer has already been generated, so the response is to
// strip the offending line rather than discard the whole answer.
var leakedDirectivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?(previous|prior|above)\s+(instructions?|prompts?|directions?)`),
	regexp.MustCompile(`(?i)(system\s*prompt\s*:|you\s+are\s+now|act\s+as\s+if|new\s+role|new\s+persona)`),
	regexp.MustCompile("(?i)```\\s*system|<\\|?(system|im_start)\\|?>|\\[INST\\]|\\[SYS\\]"),
}

// stripLeakedDirectives drops any line of text that resembles a
// system-role directive. It is a heuristic, not a security boundary: the
// Context is already spotlighted before generation; this is a second
// pass over the model's own output.
func stripLeakedDirectives(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if matchesAny(leakedDirectivePatterns, line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}
