// internal/nlp/risk.go
package nlp

// EnhanceRiskScore folds entity evidence into the risk score the article
// arrived with. The result never drops below the original and is capped at 1.
func EnhanceRiskScore(originalRisk float64, result *ExtractionResult) float64 {
	if result == nil || len(result.Entities) == 0 {
		return originalRisk
	}

	enhanced := originalRisk + 0.3*result.ConflictRelevanceScore()

	if result.HasHighPriorityConflictEntities() {
		enhanced += 0.2
	}

	relevant := len(result.ConflictRelevant())
	if relevant > 2 {
		bonus := 0.05 * float64(relevant)
		if bonus > 0.15 {
			bonus = 0.15
		}
		enhanced += bonus
	}

	if enhanced > 1.0 {
		enhanced = 1.0
	}
	return enhanced
}

// IsHighPriorityArticle reports whether the enhanced risk or the entity
// relevance alone makes the article worth surfacing first.
func IsHighPriorityArticle(enhancedRisk float64, result *ExtractionResult) bool {
	if enhancedRisk > 0.7 {
		return true
	}
	return result != nil && result.ConflictRelevanceScore() > 0.6
}
