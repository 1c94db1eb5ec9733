package generator

import (
	"strings"

	"github.com/lookatitude/beluga-ai/ragcore"
)

// extractBlock returns the text following the given marker line, up to
// the next recognized marker or end of text. Returns "" if marker does
// not appear.
func extractBlock(text, marker string) string {
	idx := strings.Index(text, marker)
	if idx < 0 {
		return ""
	}
	rest := text[idx+len(marker):]
	for _, m := range []string{sourceMarker, actionMarker} {
		if m == marker {
			continue
		}
		if j := strings.Index(rest, m); j >= 0 {
			rest = rest[:j]
		}
	}
	return rest
}

// parseSources reads the chunk ids the model cited in its "[답변 근거]"
// block and resolves each against rctx. The model's own rendering of a
// title or URL is never trusted — only the id is, since it is the one
// field checkable against the Context the Generator was actually given.
// A cited id outside rctx is dropped, not surfaced, per the "every
// citation must trace to a chunk actually in the Context" invariant.
func parseSources(text string, rctx ragcore.Context) []ragcore.SourceReference {
	block := extractBlock(text, sourceMarker)
	if block == "" {
		return nil
	}

	byID := make(map[string]ragcore.Chunk, len(rctx.Chunks))
	for _, c := range rctx.Chunks {
		byID[c.ID] = c
	}

	seen := make(map[string]bool)
	var out []ragcore.SourceReference
	for _, line := range strings.Split(block, "\n") {
		id := citedID(line)
		if id == "" || seen[id] {
			continue
		}
		chunk, ok := byID[id]
		if !ok {
			continue
		}
		seen[id] = true
		out = append(out, ragcore.SourceReference{
			ChunkID: chunk.ID,
			Title:   chunk.Title,
			URL:     chunk.Source.URL,
			System:  chunk.Source.Origin,
		})
	}
	return out
}

// citedID pulls a bare chunk id off a "- <id>: <summary>" citation line.
func citedID(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "-")
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}
	if i := strings.Index(line, ":"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}
