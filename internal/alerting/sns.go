// internal/alerting/sns.go

// Package alerting pushes critical-article notifications to an SNS topic.
// Alerting is best-effort and never blocks or fails the pipeline.
package alerting

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"conflictradar-processing/internal/common/errors"
	"conflictradar-processing/internal/common/logger"
	"conflictradar-processing/internal/models"
)

// SNSService is the SNS surface the alerter uses, an interface for mocking.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Alerter publishes an alert when an article's enhanced risk crosses the
// configured threshold.
type Alerter struct {
	client    SNSService
	topicARN  string
	threshold float64
	logger    logger.Logger
}

func NewAlerter(ctx context.Context, region, topicARN string, threshold float64, log logger.Logger) (*Alerter, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return NewAlerterWithClient(sns.NewFromConfig(awsCfg), topicARN, threshold, log), nil
}

// NewAlerterWithClient wires an existing SNS client, used in tests.
func NewAlerterWithClient(client SNSService, topicARN string, threshold float64, log logger.Logger) *Alerter {
	return &Alerter{
		client:    client,
		topicARN:  topicARN,
		threshold: threshold,
		logger:    log,
	}
}

type alertPayload struct {
	ArticleID         string    `json:"articleId"`
	Title             string    `json:"title"`
	Source            string    `json:"source"`
	EnhancedRiskScore float64   `json:"enhancedRiskScore"`
	PrimaryLocation   string    `json:"primaryLocation,omitempty"`
	AlertedAt         time.Time `json:"alertedAt"`
}

// MaybeAlert publishes a notification when enhancedRisk crosses the
// threshold. Returns whether an alert was sent.
func (a *Alerter) MaybeAlert(ctx context.Context, event models.NewsIngestedEvent, enhancedRisk float64, primaryLocation string) bool {
	if enhancedRisk <= a.threshold {
		return false
	}

	payload := alertPayload{
		ArticleID:         event.ArticleID,
		Title:             event.Title,
		Source:            event.SimpleSource(),
		EnhancedRiskScore: enhancedRisk,
		PrimaryLocation:   primaryLocation,
		AlertedAt:         time.Now(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		a.logger.WithError(err).Error("Alert payload marshal failed", map[string]interface{}{
			"articleId": event.ArticleID,
		})
		return false
	}

	subject := fmt.Sprintf("Critical risk article: %s", event.ArticleID)
	_, err = a.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(a.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(string(body)),
	})
	if err != nil {
		sendErr := errors.NewAlertSendFailedError(err)
		a.logger.WithError(sendErr).Error("Alert publish failed", map[string]interface{}{
			"articleId": event.ArticleID,
			"riskScore": enhancedRisk,
		})
		return false
	}

	a.logger.Warn("Critical risk alert sent", map[string]interface{}{
		"articleId": event.ArticleID,
		"riskScore": enhancedRisk,
	})
	return true
}
