// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like GEONAMES_USER
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, ignored when absent
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile tries the usual locations so the binary works from the repo
// root, a cmd directory, or a test package.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "conflictradar-processing"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.Broker.ConsumerGroup == "" {
		cfg.Broker.ConsumerGroup = "processing-service"
	}
	if cfg.Broker.InboundStream == "" {
		cfg.Broker.InboundStream = "news.ingested"
	}
	if cfg.Broker.Partitions == 0 {
		cfg.Broker.Partitions = 2
	}
	if cfg.Broker.BlockTimeout == 0 {
		cfg.Broker.BlockTimeout = 5000
	}
	if cfg.Broker.Topics.ArticleProcessed == "" {
		cfg.Broker.Topics.ArticleProcessed = "articles.processed"
	}
	if cfg.Broker.Topics.EntityExtracted == "" {
		cfg.Broker.Topics.EntityExtracted = "entities.extracted"
	}
	if cfg.Broker.Topics.LocationDetected == "" {
		cfg.Broker.Topics.LocationDetected = "locations.detected"
	}
	if cfg.Broker.Topics.SentimentAnalyzed == "" {
		cfg.Broker.Topics.SentimentAnalyzed = "sentiment.analyzed"
	}
	if cfg.Database.Elasticsearch.Index == "" {
		cfg.Database.Elasticsearch.Index = "articles"
	}
	if cfg.NLP.TaggerTimeout == 0 {
		cfg.NLP.TaggerTimeout = 5000
	}
	if cfg.NLP.ExtractionCacheTTL == 0 {
		cfg.NLP.ExtractionCacheTTL = 86400 // 24h, extraction is expensive
	}
	if cfg.Geo.GeonamesBaseURL == "" {
		cfg.Geo.GeonamesBaseURL = "http://api.geonames.org"
	}
	if cfg.Geo.LookupTimeout == 0 {
		cfg.Geo.LookupTimeout = 10000
	}
	if cfg.Geo.CacheTTL == 0 {
		cfg.Geo.CacheTTL = 604800 // 7 days, geography rarely changes
	}
	if cfg.Geo.MaxLocations == 0 {
		cfg.Geo.MaxLocations = 5
	}
	if cfg.Indexing.BatchSize == 0 {
		cfg.Indexing.BatchSize = 10
	}
	if cfg.Pipeline.Workers == 0 {
		cfg.Pipeline.Workers = 2
	}
	if cfg.Pipeline.ProcessingTimeout == 0 {
		cfg.Pipeline.ProcessingTimeout = 30000
	}
	if cfg.Alerting.RiskThreshold == 0 {
		cfg.Alerting.RiskThreshold = 0.8
	}
	if cfg.AdminHTTP.Address == "" {
		cfg.AdminHTTP.Address = ":8085"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}
