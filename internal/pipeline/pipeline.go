// internal/pipeline/pipeline.go

// Package pipeline orchestrates per-article enrichment: extraction, scoring,
// geographic resolution, persistence, and event fan-out, then message
// acknowledgment.
package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"conflictradar-processing/internal/broker"
	"conflictradar-processing/internal/common/errors"
	"conflictradar-processing/internal/common/logger"
	"conflictradar-processing/internal/common/metrics"
	"conflictradar-processing/internal/common/observability"
	"conflictradar-processing/internal/common/validation"
	"conflictradar-processing/internal/geo"
	"conflictradar-processing/internal/models"
	"conflictradar-processing/internal/nlp"
	"conflictradar-processing/internal/sentiment"
)

// Per-message processing states, logged as the pipeline advances.
type state string

const (
	stateReceived     state = "RECEIVED"
	stateExtracting   state = "EXTRACTING"
	stateScoring      state = "SCORING"
	stateResolvingGeo state = "RESOLVING_GEO"
	stateIndexing     state = "INDEXING"
	statePublishing   state = "PUBLISHING"
	stateAcknowledged state = "ACKNOWLEDGED"
)

// AckPolicy decides what happens to a message when processing fails. The
// default acks on every outcome, trading delivery guarantees for consumer
// liveness; OnFailure is the hook point for a future dead-letter strategy.
type AckPolicy struct {
	AckOnFailure bool
	OnFailure    func(ctx context.Context, msg broker.Message, err error)
}

// DefaultAckPolicy acknowledges every message regardless of outcome.
func DefaultAckPolicy() AckPolicy {
	return AckPolicy{AckOnFailure: true}
}

// Resolver resolves location entities; satisfied by geo.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, locations []nlp.ExtractedEntity) *geo.ResolutionResult
}

// Indexer accepts enriched documents; satisfied by indexing.Buffer.
type Indexer interface {
	Add(ctx context.Context, doc models.EnrichedArticleDocument) error
}

// FanoutPublisher publishes the derived events; satisfied by
// events.Publisher.
type FanoutPublisher interface {
	PublishAll(ctx context.Context, event models.NewsIngestedEvent, extraction *nlp.ExtractionResult, geoResult *geo.ResolutionResult, sentimentResult sentiment.Result, enhancedRisk float64) int
}

// Alerter is the optional critical-article notifier.
type Alerter interface {
	MaybeAlert(ctx context.Context, event models.NewsIngestedEvent, enhancedRisk float64, primaryLocation string) bool
}

// Pipeline runs one article event to completion.
type Pipeline struct {
	extractor *nlp.Service
	resolver  Resolver
	analyzer  *sentiment.Analyzer
	indexer   Indexer
	publisher FanoutPublisher
	alerter   Alerter
	policy    AckPolicy
	obs       *observability.Observability
	timeout   time.Duration
	logger    logger.Logger
}

type Config struct {
	Extractor *nlp.Service
	Resolver  Resolver
	Analyzer  *sentiment.Analyzer
	Indexer   Indexer
	Publisher FanoutPublisher
	Alerter   Alerter
	Policy    AckPolicy
	Obs       *observability.Observability
	Timeout   time.Duration
}

func New(cfg Config, log logger.Logger) *Pipeline {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Pipeline{
		extractor: cfg.Extractor,
		resolver:  cfg.Resolver,
		analyzer:  cfg.Analyzer,
		indexer:   cfg.Indexer,
		publisher: cfg.Publisher,
		alerter:   cfg.Alerter,
		policy:    cfg.Policy,
		obs:       cfg.Obs,
		timeout:   cfg.Timeout,
		logger:    log,
	}
}

// Handle is the broker entry point. Any processing error is logged with the
// article id; the ack decision follows the configured policy.
func (p *Pipeline) Handle(ctx context.Context, msg broker.Message) error {
	correlationID := "proc-" + uuid.NewString()[:8]
	log := p.logger.WithFields(map[string]interface{}{
		"correlationId": correlationID,
		"stream":        msg.Stream,
	})

	log.Debug("Message received", map[string]interface{}{"state": string(stateReceived), "messageId": msg.ID})

	event, err := p.parse(msg.Payload)
	if err != nil {
		return p.finish(ctx, log, msg, msg.Key, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = p.process(ctx, log, event)
	return p.finish(ctx, log, msg, event.ArticleID, err)
}

func (p *Pipeline) parse(payload []byte) (models.NewsIngestedEvent, error) {
	var event models.NewsIngestedEvent

	if err := validation.ValidateNewsIngested(payload); err != nil {
		return event, errors.NewMessageInvalidError(err.Error())
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return event, errors.NewMessageParseFailedError(err)
	}
	return event, nil
}

func (p *Pipeline) process(ctx context.Context, log logger.Logger, event models.NewsIngestedEvent) error {
	start := time.Now()
	log = log.WithFields(map[string]interface{}{"articleId": event.ArticleID})

	log.Info("Processing article", map[string]interface{}{
		"source":    event.SimpleSource(),
		"riskScore": event.RiskScore,
	})

	// Extraction works on the title only. Description text is not included.
	log.Debug("State transition", map[string]interface{}{"state": string(stateExtracting)})
	extraction := p.extractor.Extract(ctx, event.Title)

	log.Debug("State transition", map[string]interface{}{"state": string(stateScoring)})
	enhancedRisk := nlp.EnhanceRiskScore(event.RiskScore, extraction)
	sentimentResult := p.analyzer.Analyze(event.ConflictKeywords, event.IsCritical(), extraction)

	if extraction.HasHighPriorityConflictEntities() {
		names := make([]string, 0, len(extraction.ConflictRelevant()))
		for _, e := range extraction.ConflictRelevant() {
			names = append(names, e.Text+"("+string(e.Type)+")")
		}
		log.Warn("High-priority conflict entities found", map[string]interface{}{
			"entities": names,
		})
	}

	// Geo resolution, indexing, and publication overlap. Indexing and
	// publication consume the geo result, so they wait on geoDone; the
	// pipeline itself blocks on persistence, never on publication.
	var geoResult *geo.ResolutionResult
	geoDone := make(chan struct{})
	go func() {
		defer close(geoDone)
		log.Debug("State transition", map[string]interface{}{"state": string(stateResolvingGeo)})
		geoResult = p.resolver.Resolve(ctx, extraction.Locations())
	}()

	indexDone := make(chan error, 1)
	go func() {
		<-geoDone
		log.Debug("State transition", map[string]interface{}{"state": string(stateIndexing)})
		doc := models.NewEnrichedArticleDocument(event, extraction, geoResult, sentimentResult, enhancedRisk)
		indexDone <- p.indexer.Add(ctx, doc)
	}()

	go func() {
		<-geoDone
		log.Debug("State transition", map[string]interface{}{"state": string(statePublishing)})

		publishCtx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		if failed := p.publisher.PublishAll(publishCtx, event, extraction, geoResult, sentimentResult, enhancedRisk); failed > 0 {
			log.Warn("Some events failed to publish", map[string]interface{}{
				"failedSends": failed,
			})
		}

		if p.alerter != nil {
			primaryLocation := ""
			if geoResult != nil && geoResult.Primary != nil {
				primaryLocation = geoResult.Primary.Name
			}
			p.alerter.MaybeAlert(publishCtx, event, enhancedRisk, primaryLocation)
		}
	}()

	if err := <-indexDone; err != nil {
		return err
	}

	metrics.ArticleProcessingDuration.Observe(time.Since(start).Seconds())
	if p.obs != nil {
		p.obs.RecordArticleDuration(ctx, time.Since(start), "success")
	}

	log.Info("Article processed", map[string]interface{}{
		"durationMs":       time.Since(start).Milliseconds(),
		"entities":         len(extraction.Entities),
		"conflictRelevant": len(extraction.ConflictRelevant()),
		"enhancedRisk":     enhancedRisk,
	})
	return nil
}

// finish applies the ack policy and records outcome metrics. A nil return
// acknowledges the message.
func (p *Pipeline) finish(ctx context.Context, log logger.Logger, msg broker.Message, articleID string, err error) error {
	outcome := "success"
	if err != nil {
		outcome = "failure"
		log.WithError(err).Error("Article processing failed", map[string]interface{}{
			"articleId": articleID,
			"messageId": msg.ID,
		})
		if p.policy.OnFailure != nil {
			p.policy.OnFailure(ctx, msg, err)
		}
	}

	metrics.ArticlesProcessed.WithLabelValues(outcome).Inc()
	if p.obs != nil {
		p.obs.RecordArticleProcessed(ctx, outcome)
	}

	if err != nil && !p.policy.AckOnFailure {
		return err
	}

	log.Debug("State transition", map[string]interface{}{"state": string(stateAcknowledged)})
	return nil
}
