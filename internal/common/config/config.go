// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Broker    BrokerConfig    `mapstructure:"broker"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NLP       NLPConfig       `mapstructure:"nlp"`
	Geo       GeoConfig       `mapstructure:"geo"`
	Indexing  IndexingConfig  `mapstructure:"indexing"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Alerting  AlertingConfig  `mapstructure:"alerting"`
	AdminHTTP AdminHTTPConfig `mapstructure:"admin_http"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// BrokerConfig holds Redis Streams consumer/producer settings.
type BrokerConfig struct {
	ConsumerGroup string       `mapstructure:"consumer_group"`
	InboundStream string       `mapstructure:"inbound_stream"` // partition index is appended
	Partitions    int          `mapstructure:"partitions"`
	BlockTimeout  int          `mapstructure:"block_timeout"` // milliseconds
	Topics        TopicsConfig `mapstructure:"topics"`
}

// TopicsConfig names the four outbound streams.
type TopicsConfig struct {
	ArticleProcessed  string `mapstructure:"article_processed"`
	EntityExtracted   string `mapstructure:"entity_extracted"`
	LocationDetected  string `mapstructure:"location_detected"`
	SentimentAnalyzed string `mapstructure:"sentiment_analyzed"`
}

type DatabaseConfig struct {
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	Index      string   `mapstructure:"index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// NLPConfig holds tagger collaborator and extraction cache settings.
type NLPConfig struct {
	TaggerBaseURL      string `mapstructure:"tagger_base_url"`
	TaggerTimeout      int    `mapstructure:"tagger_timeout"` // milliseconds
	CacheEnabled       bool   `mapstructure:"cache_enabled"`
	ExtractionCacheTTL int    `mapstructure:"extraction_cache_ttl"` // seconds
}

// GeoConfig holds gazetteer collaborator and resolution cache settings.
type GeoConfig struct {
	GeonamesBaseURL string `mapstructure:"geonames_base_url"`
	GeonamesUser    string `mapstructure:"geonames_user"`
	LookupTimeout   int    `mapstructure:"lookup_timeout"` // milliseconds
	CacheTTL        int    `mapstructure:"cache_ttl"`      // seconds
	MaxLocations    int    `mapstructure:"max_locations"`
}

// IndexingConfig holds document store batching settings.
type IndexingConfig struct {
	BatchSize     int  `mapstructure:"batch_size"`
	EnableRefresh bool `mapstructure:"enable_refresh"`
}

// PipelineConfig holds orchestration settings.
type PipelineConfig struct {
	Workers           int `mapstructure:"workers"`
	ProcessingTimeout int `mapstructure:"processing_timeout"` // milliseconds
}

// AlertingConfig holds critical-article SNS notification settings.
type AlertingConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	AWSRegion     string  `mapstructure:"aws_region"`
	TopicARN      string  `mapstructure:"topic_arn"`
	RiskThreshold float64 `mapstructure:"risk_threshold"`
}

// AdminHTTPConfig holds the health/metrics HTTP surface settings.
type AdminHTTPConfig struct {
	Address string `mapstructure:"address"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// TaggerTimeoutDuration returns the tagger call timeout.
func (n NLPConfig) TaggerTimeoutDuration() time.Duration {
	return time.Duration(n.TaggerTimeout) * time.Millisecond
}

// LookupTimeoutDuration returns the gazetteer call timeout.
func (g GeoConfig) LookupTimeoutDuration() time.Duration {
	return time.Duration(g.LookupTimeout) * time.Millisecond
}

// CacheTTLDuration returns the geo cache TTL.
func (g GeoConfig) CacheTTLDuration() time.Duration {
	return time.Duration(g.CacheTTL) * time.Second
}

func validateConfig(cfg *Config) error {
	if cfg.Broker.Partitions <= 0 {
		return fmt.Errorf("broker.partitions must be positive, got %d", cfg.Broker.Partitions)
	}
	if cfg.Indexing.BatchSize <= 0 {
		return fmt.Errorf("indexing.batch_size must be positive, got %d", cfg.Indexing.BatchSize)
	}
	if cfg.Pipeline.Workers <= 0 {
		return fmt.Errorf("pipeline.workers must be positive, got %d", cfg.Pipeline.Workers)
	}
	if len(cfg.Database.Elasticsearch.Addresses) == 0 {
		return fmt.Errorf("database.elasticsearch.addresses is required")
	}
	if cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required")
	}
	if cfg.Alerting.Enabled && cfg.Alerting.TopicARN == "" {
		return fmt.Errorf("alerting.topic_arn is required when alerting is enabled")
	}
	return nil
}
