// internal/nlp/service.go
package nlp

import (
	"context"
	"strings"
	"time"

	"conflictradar-processing/internal/common/cache"
	"conflictradar-processing/internal/common/logger"
	"conflictradar-processing/internal/common/metrics"
)

// Service runs the full entity extraction chain: tag, group, annotate, score.
type Service struct {
	tagger Tagger
	scorer *RelevanceScorer
	cache  *cache.Cache
	logger logger.Logger
}

// NewService creates an extraction service. extractionCache may be nil, in
// which case every call hits the tagger.
func NewService(tagger Tagger, extractionCache *cache.Cache, log logger.Logger) *Service {
	return &Service{
		tagger: tagger,
		scorer: NewRelevanceScorer(),
		cache:  extractionCache,
		logger: log,
	}
}

// Extract returns annotated entities for the text. Blank input and tagger
// failures both yield an empty result so the pipeline can keep moving.
func (s *Service) Extract(ctx context.Context, text string) *ExtractionResult {
	if strings.TrimSpace(text) == "" {
		return EmptyExtractionResult()
	}

	if s.cache == nil {
		return s.extract(ctx, text)
	}

	var result ExtractionResult
	err := s.cache.GetOrCompute(ctx, text, &result, func(ctx context.Context) (interface{}, error) {
		return s.extract(ctx, text), nil
	})
	if err != nil {
		s.logger.WithError(err).Warn("Extraction cache lookup failed", nil)
		return s.extract(ctx, text)
	}
	return &result
}

func (s *Service) extract(ctx context.Context, text string) *ExtractionResult {
	start := time.Now()

	raw, err := s.tagger.Tag(ctx, text)
	if err != nil {
		s.logger.WithError(err).Warn("Entity tagging failed, continuing without entities", map[string]interface{}{
			"textLength": len(text),
		})
		return EmptyExtractionResult()
	}

	entities := GroupEntities(raw)
	s.scorer.Annotate(entities)

	for _, e := range entities {
		metrics.EntitiesExtracted.WithLabelValues(string(e.Type)).Inc()
	}

	return &ExtractionResult{
		Entities:          entities,
		ProcessingTimeMs:  time.Since(start).Milliseconds(),
		OverallConfidence: overallConfidence(entities),
	}
}

// overallConfidence is the mean entity confidence plus a count bonus of 0.1
// per entity, capped at 0.3 bonus and 1.0 total.
func overallConfidence(entities []ExtractedEntity) float64 {
	if len(entities) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, e := range entities {
		sum += e.Confidence
	}
	avg := sum / float64(len(entities))

	bonus := float64(len(entities)) * 0.1
	if bonus > 0.3 {
		bonus = 0.3
	}

	confidence := avg + bonus
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

// Ready reports whether the underlying tagger can accept work.
func (s *Service) Ready(ctx context.Context) bool {
	return s.tagger.Ready(ctx)
}
