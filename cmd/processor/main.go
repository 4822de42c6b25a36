// cmd/processor/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"conflictradar-processing/internal/alerting"
	"conflictradar-processing/internal/api"
	"conflictradar-processing/internal/broker"
	"conflictradar-processing/internal/common/cache"
	"conflictradar-processing/internal/common/config"
	"conflictradar-processing/internal/common/database"
	"conflictradar-processing/internal/common/logger"
	"conflictradar-processing/internal/common/observability"
	"conflictradar-processing/internal/events"
	"conflictradar-processing/internal/geo"
	"conflictradar-processing/internal/indexing"
	"conflictradar-processing/internal/nlp"
	"conflictradar-processing/internal/pipeline"
	"conflictradar-processing/internal/sentiment"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting processing service...",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Enrichment components ---
	tagger := nlp.NewHTTPTagger(cfg.NLP.TaggerBaseURL, cfg.NLP.TaggerTimeoutDuration(), log)

	var extractionCache *cache.Cache
	if cfg.NLP.CacheEnabled {
		extractionCache = cache.New(
			redisClient.GetClient(), "extraction",
			time.Duration(cfg.NLP.ExtractionCacheTTL)*time.Second, log,
		)
	}
	extractor := nlp.NewService(tagger, extractionCache, log)

	gazetteer := geo.NewGeoNamesClient(
		cfg.Geo.GeonamesBaseURL, cfg.Geo.GeonamesUser,
		cfg.Geo.LookupTimeoutDuration(), log,
	)
	geoCache := cache.New(redisClient.GetClient(), "geo", cfg.Geo.CacheTTLDuration(), log)
	resolver := geo.NewResolver(gazetteer, geoCache, cfg.Geo.MaxLocations, log)

	store := indexing.NewArticleStore(esClient.Client, cfg.Database.Elasticsearch.Index, cfg.Indexing.EnableRefresh, log)
	buffer := indexing.NewBuffer(store, cfg.Indexing.BatchSize, log)

	producer := broker.NewProducer(redisClient.GetClient(), log)
	publisher := events.NewPublisher(producer, cfg.Broker.Topics, log)

	var alerter pipeline.Alerter
	if cfg.Alerting.Enabled {
		snsAlerter, err := alerting.NewAlerter(
			ctx, cfg.Alerting.AWSRegion, cfg.Alerting.TopicARN,
			cfg.Alerting.RiskThreshold, log,
		)
		if err != nil {
			zapLog.Fatal("alerting init failed", zap.Error(err))
		}
		alerter = snsAlerter
		zapLog.Info("SNS alerting enabled", zap.String("topic", cfg.Alerting.TopicARN))
	}

	p := pipeline.New(pipeline.Config{
		Extractor: extractor,
		Resolver:  resolver,
		Analyzer:  sentiment.NewAnalyzer(),
		Indexer:   buffer,
		Publisher: publisher,
		Alerter:   alerter,
		Policy:    pipeline.DefaultAckPolicy(),
		Obs:       obs,
		Timeout:   time.Duration(cfg.Pipeline.ProcessingTimeout) * time.Millisecond,
	}, log)

	// --- Consumer ---
	hostname, _ := os.Hostname()
	consumer := broker.NewConsumer(
		redisClient.GetClient(),
		cfg.Broker.ConsumerGroup,
		fmt.Sprintf("%s-%d", hostname, os.Getpid()),
		cfg.Broker.InboundStream,
		cfg.Broker.Partitions,
		cfg.Pipeline.Workers,
		time.Duration(cfg.Broker.BlockTimeout)*time.Millisecond,
		p.Handle,
		log,
	)
	if err := consumer.Start(ctx); err != nil {
		zapLog.Fatal("consumer start failed", zap.Error(err))
	}

	// --- Admin HTTP server ---
	adminServer := api.NewServer(
		cfg.AdminHTTP.Address, cfg.App.Name,
		extractor.Ready, resolver.Healthy, log,
	)
	go func() {
		if err := adminServer.Start(); err != nil {
			zapLog.Error("admin server failed", zap.Error(err))
		}
	}()

	zapLog.Info("Processing service started",
		zap.Int("partitions", cfg.Broker.Partitions),
		zap.String("inboundStream", cfg.Broker.InboundStream),
	)

	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping...")

	consumer.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	buffer.ForceFlush(shutdownCtx)
	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Warn("admin server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Processing service stopped gracefully")
}
