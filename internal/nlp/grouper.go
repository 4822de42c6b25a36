// internal/nlp/grouper.go
package nlp

import (
	"sort"
	"strings"
)

// maxGroupGap is the largest character gap between two same-type tokens that
// still merges them into one span.
const maxGroupGap = 2

// GroupEntities merges adjacent same-type token tags into coherent spans,
// deduplicates them case-insensitively, and returns the survivors ordered by
// start offset. Single-character results are dropped.
func GroupEntities(raw []RawEntity) []ExtractedEntity {
	if len(raw) == 0 {
		return []ExtractedEntity{}
	}

	grouped := make([]ExtractedEntity, 0, len(raw))
	current := ExtractedEntity{
		Text:       strings.TrimSpace(raw[0].Text),
		Type:       raw[0].Type,
		Confidence: raw[0].Confidence,
		Start:      raw[0].Start,
		End:        raw[0].End,
	}

	for _, tok := range raw[1:] {
		if tok.Type == current.Type && tok.Start <= current.End+maxGroupGap {
			current.Text = current.Text + " " + strings.TrimSpace(tok.Text)
			if tok.Confidence > current.Confidence {
				current.Confidence = tok.Confidence
			}
			current.End = tok.End
			continue
		}

		grouped = append(grouped, current)
		current = ExtractedEntity{
			Text:       strings.TrimSpace(tok.Text),
			Type:       tok.Type,
			Confidence: tok.Confidence,
			Start:      tok.Start,
			End:        tok.End,
		}
	}
	grouped = append(grouped, current)

	// Dedupe by lowercased text, keeping the higher-confidence span.
	byText := make(map[string]ExtractedEntity, len(grouped))
	for _, e := range grouped {
		if len(e.Text) <= 1 {
			continue
		}
		key := strings.ToLower(e.Text)
		if existing, ok := byText[key]; !ok || e.Confidence > existing.Confidence {
			byText[key] = e
		}
	}

	out := make([]ExtractedEntity, 0, len(byText))
	for _, e := range byText {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})

	return out
}
