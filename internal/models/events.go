// internal/models/events.go
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"conflictradar-processing/internal/geo"
	"conflictradar-processing/internal/nlp"
	"conflictradar-processing/internal/sentiment"
)

func newEventID(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

// ArticleProcessedEvent is the combined enrichment summary for one article.
type ArticleProcessedEvent struct {
	EventID                string    `json:"eventId"`
	ArticleID              string    `json:"articleId"`
	Title                  string    `json:"title"`
	Link                   string    `json:"link"`
	Source                 string    `json:"source"`
	PublishedAt            time.Time `json:"publishedAt"`
	OriginalRiskScore      float64   `json:"originalRiskScore"`
	OriginalKeywords       []string  `json:"originalKeywords"`
	EnhancedRiskScore      float64   `json:"enhancedRiskScore"`
	ConflictRelevanceScore float64   `json:"conflictRelevanceScore"`
	TotalEntities          int       `json:"totalEntities"`
	ConflictEntities       int       `json:"conflictEntities"`
	HighPriority           bool      `json:"highPriority"`
	PrimaryLocation        string    `json:"primaryLocation,omitempty"`
	Coordinates            string    `json:"coordinates,omitempty"`
	MentionedLocations     []string  `json:"mentionedLocations"`
	SentimentScore         float64   `json:"sentimentScore"`
	Categories             []string  `json:"categories"`
	ProcessedAt            time.Time `json:"processedAt"`
}

func NewArticleProcessedEvent(
	event NewsIngestedEvent,
	extraction *nlp.ExtractionResult,
	geoResult *geo.ResolutionResult,
	sentimentScore float64,
	enhancedRisk float64,
) ArticleProcessedEvent {
	relevance := extraction.ConflictRelevanceScore()

	out := ArticleProcessedEvent{
		EventID:                newEventID("processed"),
		ArticleID:              event.ArticleID,
		Title:                  event.Title,
		Link:                   event.Link,
		Source:                 event.Source,
		PublishedAt:            event.PublishedAt,
		OriginalRiskScore:      event.RiskScore,
		OriginalKeywords:       event.ConflictKeywords,
		EnhancedRiskScore:      enhancedRisk,
		ConflictRelevanceScore: relevance,
		TotalEntities:          len(extraction.Entities),
		ConflictEntities:       len(extraction.ConflictRelevant()),
		HighPriority:           enhancedRisk > 0.7 || relevance > 0.6,
		MentionedLocations:     []string{},
		SentimentScore:         sentimentScore,
		Categories:             Categories(extraction),
		ProcessedAt:            time.Now(),
	}

	if geoResult != nil {
		out.MentionedLocations = geoResult.LocationNames()
		if geoResult.Primary != nil {
			out.PrimaryLocation = geoResult.Primary.Name
			out.Coordinates = geoResult.Primary.Coordinates
		}
	}
	return out
}

// EntityExtractedEvent carries the per-article entity extraction outcome.
type EntityExtractedEvent struct {
	EventID          string       `json:"eventId"`
	ArticleID        string       `json:"articleId"`
	Entities         []EntityInfo `json:"entities"`
	TotalEntities    int          `json:"totalEntities"`
	ConflictRelevant int          `json:"conflictRelevant"`
	Confidence       float64      `json:"confidence"`
	ProcessingTimeMs int64        `json:"processingTimeMs"`
	ExtractedAt      time.Time    `json:"extractedAt"`
}

type EntityInfo struct {
	Text             string  `json:"text"`
	Type             string  `json:"type"`
	Confidence       float64 `json:"confidence"`
	ConflictRelevant bool    `json:"conflictRelevant"`
	Priority         int     `json:"priority"`
}

func NewEntityExtractedEvent(articleID string, extraction *nlp.ExtractionResult) EntityExtractedEvent {
	entities := make([]EntityInfo, 0, len(extraction.Entities))
	relevant := 0
	for _, e := range extraction.Entities {
		if e.ConflictRelevant {
			relevant++
		}
		entities = append(entities, EntityInfo{
			Text:             e.Text,
			Type:             string(e.Type),
			Confidence:       e.Confidence,
			ConflictRelevant: e.ConflictRelevant,
			Priority:         e.Priority,
		})
	}

	return EntityExtractedEvent{
		EventID:          newEventID("entity"),
		ArticleID:        articleID,
		Entities:         entities,
		TotalEntities:    len(entities),
		ConflictRelevant: relevant,
		Confidence:       extraction.OverallConfidence,
		ProcessingTimeMs: extraction.ProcessingTimeMs,
		ExtractedAt:      time.Now(),
	}
}

// LocationDetectedEvent carries resolved geography for one article.
type LocationDetectedEvent struct {
	EventID         string    `json:"eventId"`
	ArticleID       string    `json:"articleId"`
	PrimaryLocation string    `json:"primaryLocation,omitempty"`
	Coordinates     string    `json:"coordinates,omitempty"`
	Confidence      float64   `json:"confidence"`
	AllLocations    []string  `json:"allLocations"`
	ConflictZones   []string  `json:"conflictZones"`
	DetectedAt      time.Time `json:"detectedAt"`
}

// eventConflictZones is the coarse name list used to tag locations in the
// outbound event, independent of gazetteer resolution.
var eventConflictZones = []string{
	"ukraine", "russia", "syria", "afghanistan",
	"gaza", "israel", "palestine", "taiwan", "kashmir",
}

func NewLocationDetectedEvent(articleID string, geoResult *geo.ResolutionResult) LocationDetectedEvent {
	out := LocationDetectedEvent{
		EventID:       newEventID("location"),
		ArticleID:     articleID,
		AllLocations:  []string{},
		ConflictZones: []string{},
		DetectedAt:    time.Now(),
	}
	if geoResult == nil {
		return out
	}

	out.AllLocations = geoResult.LocationNames()
	out.Confidence = geoResult.OverallConfidence
	if geoResult.Primary != nil {
		out.PrimaryLocation = geoResult.Primary.Name
		out.Coordinates = geoResult.Primary.Coordinates
	}

	for _, name := range out.AllLocations {
		lower := strings.ToLower(name)
		for _, zone := range eventConflictZones {
			if strings.Contains(lower, zone) {
				out.ConflictZones = append(out.ConflictZones, name)
				break
			}
		}
	}
	return out
}

// SentimentAnalyzedEvent carries the sentiment signal for one article.
type SentimentAnalyzedEvent struct {
	EventID          string           `json:"eventId"`
	ArticleID        string           `json:"articleId"`
	OverallSentiment float64          `json:"overallSentiment"`
	Aspects          SentimentAspects `json:"aspects"`
	Approach         string           `json:"approach"`
	Confidence       float64          `json:"confidence"`
	AnalyzedAt       time.Time        `json:"analyzedAt"`
}

type SentimentAspects struct {
	Violence     float64 `json:"violence"`
	Diplomacy    float64 `json:"diplomacy"`
	Economy      float64 `json:"economy"`
	Humanitarian float64 `json:"humanitarian"`
}

func NewSentimentAnalyzedEvent(articleID string, result sentiment.Result) SentimentAnalyzedEvent {
	return SentimentAnalyzedEvent{
		EventID:          newEventID("sentiment"),
		ArticleID:        articleID,
		OverallSentiment: result.Overall,
		Aspects: SentimentAspects{
			Violence:     result.Violence,
			Diplomacy:    result.Diplomacy,
			Economy:      result.Economy,
			Humanitarian: result.Humanitarian,
		},
		Approach:   result.Approach,
		Confidence: result.Confidence,
		AnalyzedAt: time.Now(),
	}
}
