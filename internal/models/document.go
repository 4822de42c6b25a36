// internal/models/document.go
package models

import (
	"time"

	"conflictradar-processing/internal/geo"
	"conflictradar-processing/internal/nlp"
	"conflictradar-processing/internal/sentiment"
)

// EnrichedArticleDocument is the persisted form of a processed article.
// Documents are upserted by article id, so re-processing overwrites.
type EnrichedArticleDocument struct {
	ID                     string                    `json:"id"`
	Title                  string                    `json:"title"`
	Description            string                    `json:"description,omitempty"`
	Link                   string                    `json:"link"`
	Source                 string                    `json:"source"`
	PublishedAt            time.Time                 `json:"publishedAt"`
	ProcessedAt            time.Time                 `json:"processedAt"`
	OriginalRiskScore      float64                   `json:"originalRiskScore"`
	EnhancedRiskScore      float64                   `json:"enhancedRiskScore"`
	ConflictKeywords       []string                  `json:"conflictKeywords"`
	Entities               []ExtractedEntityDocument `json:"entities"`
	Geographic             GeographicInfo            `json:"geographic"`
	Sentiment              SentimentInfo             `json:"sentiment"`
	Categories             []string                  `json:"categories"`
	ConflictRelevanceScore float64                   `json:"conflictRelevanceScore"`
	HighPriority           bool                      `json:"highPriority"`
}

// ExtractedEntityDocument is the nested entity mapping within the document.
type ExtractedEntityDocument struct {
	Text             string  `json:"text"`
	Type             string  `json:"type"`
	Confidence       float64 `json:"confidence"`
	StartPosition    int     `json:"startPosition"`
	EndPosition      int     `json:"endPosition"`
	ConflictRelevant bool    `json:"conflictRelevant"`
}

// GeographicInfo carries the resolved geography. Coordinates is a geo_point
// in "lat,lon" form, empty when nothing resolved.
type GeographicInfo struct {
	PrimaryLocation    string   `json:"primaryLocation,omitempty"`
	Coordinates        string   `json:"coordinates,omitempty"`
	MentionedLocations []string `json:"mentionedLocations"`
	Confidence         float64  `json:"confidence"`
}

// SentimentInfo holds the overall score and per-aspect breakdown.
type SentimentInfo struct {
	Overall   float64 `json:"overall"`
	Violence  float64 `json:"violence"`
	Diplomacy float64 `json:"diplomacy"`
	Economy   float64 `json:"economy"`
}

// NewEnrichedArticleDocument assembles the persisted document from the
// original event and every enrichment result.
func NewEnrichedArticleDocument(
	event NewsIngestedEvent,
	extraction *nlp.ExtractionResult,
	geoResult *geo.ResolutionResult,
	sentimentResult sentiment.Result,
	enhancedRisk float64,
) EnrichedArticleDocument {
	relevance := extraction.ConflictRelevanceScore()

	entities := make([]ExtractedEntityDocument, 0, len(extraction.Entities))
	for _, e := range extraction.Entities {
		entities = append(entities, ExtractedEntityDocument{
			Text:             e.Text,
			Type:             string(e.Type),
			Confidence:       e.Confidence,
			StartPosition:    e.Start,
			EndPosition:      e.End,
			ConflictRelevant: e.ConflictRelevant,
		})
	}

	return EnrichedArticleDocument{
		ID:                     event.ArticleID,
		Title:                  event.Title,
		Link:                   event.Link,
		Source:                 event.Source,
		PublishedAt:            event.PublishedAt,
		ProcessedAt:            time.Now(),
		OriginalRiskScore:      event.RiskScore,
		EnhancedRiskScore:      enhancedRisk,
		ConflictKeywords:       event.ConflictKeywords,
		Entities:               entities,
		Geographic:             newGeographicInfo(geoResult),
		Sentiment: SentimentInfo{
			Overall:   sentimentResult.Overall,
			Violence:  sentimentResult.Violence,
			Diplomacy: sentimentResult.Diplomacy,
			Economy:   sentimentResult.Economy,
		},
		Categories:             Categories(extraction),
		ConflictRelevanceScore: relevance,
		HighPriority:           enhancedRisk > 0.7 || relevance > 0.6,
	}
}

func newGeographicInfo(result *geo.ResolutionResult) GeographicInfo {
	info := GeographicInfo{MentionedLocations: []string{}}
	if result == nil {
		return info
	}

	info.MentionedLocations = result.LocationNames()
	info.Confidence = result.OverallConfidence
	if result.Primary != nil {
		info.PrimaryLocation = result.Primary.Name
		info.Coordinates = result.Primary.Coordinates
	}
	return info
}

// Categories assigns coarse document categories. Articles naming people get
// the extra political tag.
func Categories(extraction *nlp.ExtractionResult) []string {
	categories := []string{"conflict", "news"}
	if len(extraction.Persons()) > 0 {
		categories = append(categories, "political")
	}
	return categories
}
