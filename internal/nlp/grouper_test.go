// internal/nlp/grouper_test.go
package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupEntities(t *testing.T) {
	tests := []struct {
		name     string
		raw      []RawEntity
		expected []ExtractedEntity
	}{
		{
			name:     "empty input",
			raw:      []RawEntity{},
			expected: []ExtractedEntity{},
		},
		{
			name: "adjacent same-type tokens merge",
			raw: []RawEntity{
				{Text: "Vladimir", Type: TypePerson, Confidence: 0.85, Start: 0, End: 8},
				{Text: "Putin", Type: TypePerson, Confidence: 0.92, Start: 9, End: 14},
			},
			expected: []ExtractedEntity{
				{Text: "Vladimir Putin", Type: TypePerson, Confidence: 0.92, Start: 0, End: 14},
			},
		},
		{
			name: "gap beyond two characters splits groups",
			raw: []RawEntity{
				{Text: "Putin", Type: TypePerson, Confidence: 0.9, Start: 0, End: 5},
				{Text: "Biden", Type: TypePerson, Confidence: 0.88, Start: 20, End: 25},
			},
			expected: []ExtractedEntity{
				{Text: "Putin", Type: TypePerson, Confidence: 0.9, Start: 0, End: 5},
				{Text: "Biden", Type: TypePerson, Confidence: 0.88, Start: 20, End: 25},
			},
		},
		{
			name: "type change splits groups even when adjacent",
			raw: []RawEntity{
				{Text: "NATO", Type: TypeOrganization, Confidence: 0.95, Start: 0, End: 4},
				{Text: "Ukraine", Type: TypeLocation, Confidence: 0.91, Start: 5, End: 12},
			},
			expected: []ExtractedEntity{
				{Text: "NATO", Type: TypeOrganization, Confidence: 0.95, Start: 0, End: 4},
				{Text: "Ukraine", Type: TypeLocation, Confidence: 0.91, Start: 5, End: 12},
			},
		},
		{
			name: "case-insensitive dedupe keeps higher confidence",
			raw: []RawEntity{
				{Text: "Ukraine", Type: TypeLocation, Confidence: 0.8, Start: 0, End: 7},
				{Text: "UKRAINE", Type: TypeLocation, Confidence: 0.95, Start: 30, End: 37},
			},
			expected: []ExtractedEntity{
				{Text: "UKRAINE", Type: TypeLocation, Confidence: 0.95, Start: 30, End: 37},
			},
		},
		{
			name: "single-character results are dropped",
			raw: []RawEntity{
				{Text: "X", Type: TypeOther, Confidence: 0.5, Start: 0, End: 1},
				{Text: "Moscow", Type: TypeLocation, Confidence: 0.9, Start: 5, End: 11},
			},
			expected: []ExtractedEntity{
				{Text: "Moscow", Type: TypeLocation, Confidence: 0.9, Start: 5, End: 11},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GroupEntities(tt.raw)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestGroupEntitiesSortsByStart(t *testing.T) {
	raw := []RawEntity{
		{Text: "Geneva", Type: TypeLocation, Confidence: 0.9, Start: 40, End: 46},
		{Text: "Putin", Type: TypePerson, Confidence: 0.95, Start: 10, End: 15},
	}

	result := GroupEntities(raw)

	assert.Len(t, result, 2)
	assert.Equal(t, "Putin", result[0].Text)
	assert.Equal(t, "Geneva", result[1].Text)
}
