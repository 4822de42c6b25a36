// internal/models/article.go
package models

import (
	"strings"
	"time"
)

// NewsIngestedEvent is the inbound broker payload for one article.
type NewsIngestedEvent struct {
	ArticleID        string    `json:"articleId"`
	Title            string    `json:"title"`
	Link             string    `json:"link"`
	Source           string    `json:"source"`
	PublishedAt      time.Time `json:"publishedAt"`
	RiskScore        float64   `json:"riskScore"`
	ConflictKeywords []string  `json:"conflictKeywords"`
	ProcessedAt      time.Time `json:"processedAt"`
}

// IsHighRisk reports whether the article requires immediate attention.
func (e NewsIngestedEvent) IsHighRisk() bool {
	return e.RiskScore > 0.7
}

// IsCritical reports whether the article carries critical keywords.
func (e NewsIngestedEvent) IsCritical() bool {
	for _, kw := range e.ConflictKeywords {
		switch strings.ToLower(kw) {
		case "nuclear", "terrorism", "genocide":
			return true
		}
	}
	return false
}

// SimpleSource returns a display name for well-known sources.
func (e NewsIngestedEvent) SimpleSource() string {
	switch strings.ToLower(e.Source) {
	case "bbc":
		return "BBC"
	case "reuters":
		return "Reuters"
	case "cnn":
		return "CNN"
	default:
		return e.Source
	}
}
