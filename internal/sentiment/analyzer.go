// internal/sentiment/analyzer.go

// Package sentiment derives a coarse rule-based sentiment signal from
// conflict keywords and extracted entities. It makes no linguistic claims,
// only a monotonic negative shift with conflict evidence.
package sentiment

import (
	"conflictradar-processing/internal/nlp"
)

// Result is the per-article sentiment outcome, overall plus aspects, all
// in [-1,1].
type Result struct {
	Overall      float64 `json:"overall"`
	Violence     float64 `json:"violence"`
	Diplomacy    float64 `json:"diplomacy"`
	Economy      float64 `json:"economy"`
	Humanitarian float64 `json:"humanitarian"`
	Approach     string  `json:"approach"`
	Confidence   float64 `json:"confidence"`
}

// Analyzer computes rule-based sentiment.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze scores an article from its conflict keywords, criticality, and
// extraction result. extraction may be empty but not nil.
func (a *Analyzer) Analyze(keywords []string, critical bool, extraction *nlp.ExtractionResult) Result {
	overall := 0.0
	if len(keywords) > 0 {
		overall = -0.3 * float64(min(len(keywords), 3))
	}

	if extraction.HasHighPriorityConflictEntities() {
		overall -= 0.2
	}

	if critical {
		overall -= 0.3
	}

	overall = clamp(overall)

	return Result{
		Overall:      overall,
		Violence:     violenceAspect(keywords, overall),
		Diplomacy:    diplomacyAspect(keywords, overall),
		Economy:      economyAspect(keywords, overall),
		Humanitarian: 0.0,
		Approach:     "rule-based",
		Confidence:   0.7,
	}
}

// Aspect rules: an explicit keyword fixes the aspect, otherwise it is derived
// from the overall score.

func violenceAspect(keywords []string, overall float64) float64 {
	if containsKeyword(keywords, "violence") {
		return -0.8
	}
	if overall < -0.5 {
		return overall
	}
	return 0.0
}

func diplomacyAspect(keywords []string, overall float64) float64 {
	if containsKeyword(keywords, "diplomacy") {
		return 0.3
	}
	if overall > 0 {
		return overall
	}
	return 0.0
}

func economyAspect(keywords []string, overall float64) float64 {
	if containsKeyword(keywords, "economy") {
		return -0.2
	}
	return overall * 0.3
}

func containsKeyword(keywords []string, term string) bool {
	for _, k := range keywords {
		if k == term {
			return true
		}
	}
	return false
}

func clamp(v float64) float64 {
	if v < -1.0 {
		return -1.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
