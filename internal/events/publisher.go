// internal/events/publisher.go

// Package events fans out the derived per-article events to their outbound
// topics.
package events

import (
	"context"
	"sync"

	"conflictradar-processing/internal/common/config"
	"conflictradar-processing/internal/common/logger"
	"conflictradar-processing/internal/common/metrics"
	"conflictradar-processing/internal/geo"
	"conflictradar-processing/internal/models"
	"conflictradar-processing/internal/nlp"
	"conflictradar-processing/internal/sentiment"
)

// Sender publishes one keyed payload to a topic stream.
type Sender interface {
	Publish(ctx context.Context, stream, key string, payload interface{}) error
}

// Publisher builds and publishes the four derived events for one article.
// All four sends run concurrently; a failed send is logged and never cancels
// the others.
type Publisher struct {
	sender Sender
	topics config.TopicsConfig
	logger logger.Logger
}

func NewPublisher(sender Sender, topics config.TopicsConfig, log logger.Logger) *Publisher {
	return &Publisher{
		sender: sender,
		topics: topics,
		logger: log,
	}
}

// PublishAll publishes the four events and returns once every send has
// completed, reporting how many failed.
func (p *Publisher) PublishAll(
	ctx context.Context,
	event models.NewsIngestedEvent,
	extraction *nlp.ExtractionResult,
	geoResult *geo.ResolutionResult,
	sentimentResult sentiment.Result,
	enhancedRisk float64,
) int {
	payloads := []struct {
		topic   string
		payload interface{}
	}{
		{p.topics.ArticleProcessed, models.NewArticleProcessedEvent(event, extraction, geoResult, sentimentResult.Overall, enhancedRisk)},
		{p.topics.EntityExtracted, models.NewEntityExtractedEvent(event.ArticleID, extraction)},
		{p.topics.LocationDetected, models.NewLocationDetectedEvent(event.ArticleID, geoResult)},
		{p.topics.SentimentAnalyzed, models.NewSentimentAnalyzedEvent(event.ArticleID, sentimentResult)},
	}

	var wg sync.WaitGroup
	failures := make(chan string, len(payloads))

	for _, item := range payloads {
		wg.Add(1)
		go func(topic string, payload interface{}) {
			defer wg.Done()

			if err := p.sender.Publish(ctx, topic, event.ArticleID, payload); err != nil {
				metrics.EventsPublished.WithLabelValues(topic, "failure").Inc()
				p.logger.WithError(err).Error("Event publish failed", map[string]interface{}{
					"topic":     topic,
					"articleId": event.ArticleID,
				})
				failures <- topic
				return
			}
			metrics.EventsPublished.WithLabelValues(topic, "success").Inc()
		}(item.topic, item.payload)
	}

	wg.Wait()
	close(failures)

	failed := 0
	for range failures {
		failed++
	}

	if failed == 0 {
		p.logger.Debug("All events published", map[string]interface{}{
			"articleId": event.ArticleID,
		})
	}
	return failed
}
