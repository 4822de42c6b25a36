// internal/nlp/relevance.go
package nlp

import "strings"

// Lexicons consulted when deciding whether an entity matters for conflict
// monitoring. Matching is case-insensitive substring.
var (
	conflictOrganizations = []string{
		"military", "army", "nato", "un", "security council",
		"pentagon", "ministry of defense",
	}

	conflictRoles = []string{
		"president", "minister", "general", "commander",
	}

	conflictZones = []string{
		"ukraine", "russia", "syria", "afghanistan", "iraq",
		"gaza", "israel", "palestine", "kashmir", "taiwan",
		"south china sea", "crimea", "donetsk", "donbass",
	}
)

// RelevanceScorer annotates extracted entities with conflict relevance and
// priority so downstream scoring does not have to re-derive them.
type RelevanceScorer struct{}

func NewRelevanceScorer() *RelevanceScorer {
	return &RelevanceScorer{}
}

// Annotate stamps ConflictRelevant and Priority on each entity in place.
// Entities outside the conflict lexicon carry priority 0 regardless of type.
func (s *RelevanceScorer) Annotate(entities []ExtractedEntity) {
	for i := range entities {
		entities[i].ConflictRelevant = s.IsConflictRelevant(entities[i])
		if entities[i].ConflictRelevant {
			entities[i].Priority = priorityFor(entities[i].Type)
		} else {
			entities[i].Priority = 0
		}
	}
}

// IsConflictRelevant reports whether the entity matches the conflict lexicon
// for its type. Unknown types are never relevant.
func (s *RelevanceScorer) IsConflictRelevant(e ExtractedEntity) bool {
	text := strings.ToLower(e.Text)
	switch e.Type {
	case TypeOrganization:
		return matchesAny(text, conflictOrganizations)
	case TypePerson:
		return matchesAny(text, conflictRoles)
	case TypeLocation:
		return matchesAny(text, conflictZones)
	default:
		return false
	}
}

func matchesAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func priorityFor(t EntityType) int {
	switch t {
	case TypePerson:
		return 3
	case TypeOrganization:
		return 2
	case TypeLocation:
		return 1
	default:
		return 0
	}
}
