// internal/sentiment/analyzer_test.go
package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"conflictradar-processing/internal/nlp"
)

func TestAnalyze(t *testing.T) {
	analyzer := NewAnalyzer()
	empty := nlp.EmptyExtractionResult()
	highPriority := &nlp.ExtractionResult{Entities: []nlp.ExtractedEntity{
		{Text: "President Putin", Type: nlp.TypePerson, ConflictRelevant: true, Priority: 3},
	}}

	tests := []struct {
		name       string
		keywords   []string
		critical   bool
		extraction *nlp.ExtractionResult
		expected   float64
	}{
		{"no signals", nil, false, empty, 0.0},
		{"single keyword", []string{"war"}, false, empty, -0.3},
		{"keyword count capped at three", []string{"war", "attack", "bombing", "invasion"}, false, empty, -0.9},
		{"high-priority entities shift negative", []string{"war"}, false, highPriority, -0.5},
		{"critical article shifts negative", []string{"nuclear"}, true, empty, -0.6},
		{"clamped at minus one", []string{"nuclear", "terrorism", "escalation"}, true, highPriority, -1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := analyzer.Analyze(tt.keywords, tt.critical, tt.extraction)
			assert.InDelta(t, tt.expected, result.Overall, 0.0001)
			assert.GreaterOrEqual(t, result.Overall, -1.0)
			assert.LessOrEqual(t, result.Overall, 1.0)
		})
	}
}

func TestAnalyzeAspects(t *testing.T) {
	analyzer := NewAnalyzer()
	empty := nlp.EmptyExtractionResult()

	t.Run("explicit keywords fix aspects", func(t *testing.T) {
		result := analyzer.Analyze([]string{"violence", "diplomacy", "economy"}, false, empty)

		assert.Equal(t, -0.8, result.Violence)
		assert.Equal(t, 0.3, result.Diplomacy)
		assert.Equal(t, -0.2, result.Economy)
	})

	t.Run("strongly negative overall carries into violence", func(t *testing.T) {
		result := analyzer.Analyze([]string{"war", "attack", "bombing"}, false, empty)

		assert.InDelta(t, -0.9, result.Overall, 0.0001)
		assert.InDelta(t, -0.9, result.Violence, 0.0001)
		assert.Equal(t, 0.0, result.Diplomacy)
		assert.InDelta(t, -0.27, result.Economy, 0.0001)
	})

	t.Run("metadata is constant", func(t *testing.T) {
		result := analyzer.Analyze(nil, false, empty)

		assert.Equal(t, "rule-based", result.Approach)
		assert.Equal(t, 0.7, result.Confidence)
		assert.Equal(t, 0.0, result.Humanitarian)
	})
}
