// internal/nlp/types.go
package nlp

import "sort"

// EntityType classifies a named entity.
type EntityType string

const (
	TypePerson       EntityType = "PERSON"
	TypeOrganization EntityType = "ORGANIZATION"
	TypeLocation     EntityType = "LOCATION"
	TypeOther        EntityType = "OTHER"
)

// RawEntity is a single token-level tag from the external tagger.
type RawEntity struct {
	Text       string     `json:"text"`
	Type       EntityType `json:"type"`
	Confidence float64    `json:"confidence"`
	Start      int        `json:"start"`
	End        int        `json:"end"`
}

// ExtractedEntity is a grouped, deduplicated entity span.
type ExtractedEntity struct {
	Text             string     `json:"text"`
	Type             EntityType `json:"type"`
	Confidence       float64    `json:"confidence"`
	Start            int        `json:"startPosition"`
	End              int        `json:"endPosition"`
	ConflictRelevant bool       `json:"conflictRelevant"`
	Priority         int        `json:"priority"`
}

// ExtractionResult is the outcome of entity extraction for one article.
type ExtractionResult struct {
	Entities          []ExtractedEntity `json:"entities"`
	ProcessingTimeMs  int64             `json:"processingTimeMs"`
	OverallConfidence float64           `json:"overallConfidence"`
}

// EmptyExtractionResult is returned when extraction fails or the text is blank.
func EmptyExtractionResult() *ExtractionResult {
	return &ExtractionResult{Entities: []ExtractedEntity{}}
}

// Persons returns the PERSON entities.
func (r *ExtractionResult) Persons() []ExtractedEntity {
	return r.byType(TypePerson)
}

// Organizations returns the ORGANIZATION entities.
func (r *ExtractionResult) Organizations() []ExtractedEntity {
	return r.byType(TypeOrganization)
}

// Locations returns the LOCATION entities.
func (r *ExtractionResult) Locations() []ExtractedEntity {
	return r.byType(TypeLocation)
}

func (r *ExtractionResult) byType(t EntityType) []ExtractedEntity {
	out := make([]ExtractedEntity, 0, len(r.Entities))
	for _, e := range r.Entities {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// ConflictRelevant returns the conflict-relevant entities, highest priority first.
func (r *ExtractionResult) ConflictRelevant() []ExtractedEntity {
	out := make([]ExtractedEntity, 0, len(r.Entities))
	for _, e := range r.Entities {
		if e.ConflictRelevant {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}

// HasHighPriorityConflictEntities reports whether any relevant entity has
// priority >= 2 (persons and organizations).
func (r *ExtractionResult) HasHighPriorityConflictEntities() bool {
	for _, e := range r.Entities {
		if e.ConflictRelevant && e.Priority >= 2 {
			return true
		}
	}
	return false
}

// ConflictRelevanceScore aggregates per-entity relevance into an article
// score in [0,1]: the relevant-entity ratio plus a small average-priority
// bonus, capped at 1.
func (r *ExtractionResult) ConflictRelevanceScore() float64 {
	if len(r.Entities) == 0 {
		return 0.0
	}

	relevant := 0
	prioritySum := 0
	for _, e := range r.Entities {
		if e.ConflictRelevant {
			relevant++
		}
		prioritySum += e.Priority
	}

	ratio := float64(relevant) / float64(len(r.Entities))
	priorityBonus := float64(prioritySum) / float64(len(r.Entities)) * 0.1

	score := ratio + priorityBonus
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// Summary holds per-article extraction statistics.
type Summary struct {
	TotalEntities          int     `json:"totalEntities"`
	Persons                int     `json:"persons"`
	Organizations          int     `json:"organizations"`
	Locations              int     `json:"locations"`
	ConflictRelevant       int     `json:"conflictRelevant"`
	ConflictRelevanceScore float64 `json:"conflictRelevanceScore"`
	OverallConfidence      float64 `json:"overallConfidence"`
	ProcessingTimeMs       int64   `json:"processingTimeMs"`
}

// Summary returns aggregate statistics for logging and events.
func (r *ExtractionResult) Summary() Summary {
	return Summary{
		TotalEntities:          len(r.Entities),
		Persons:                len(r.Persons()),
		Organizations:          len(r.Organizations()),
		Locations:              len(r.Locations()),
		ConflictRelevant:       len(r.ConflictRelevant()),
		ConflictRelevanceScore: r.ConflictRelevanceScore(),
		OverallConfidence:      r.OverallConfidence,
		ProcessingTimeMs:       r.ProcessingTimeMs,
	}
}
