// Package errors provides standardized error handling for the enrichment pipeline.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeMessageParseFailed ErrorCode = "MESSAGE_PARSE_FAILED"
	ErrCodeMessageInvalid     ErrorCode = "MESSAGE_INVALID"

	ErrCodeTaggerUnavailable ErrorCode = "TAGGER_UNAVAILABLE"
	ErrCodeTaggerTimeout     ErrorCode = "TAGGER_TIMEOUT"
	ErrCodeTaggingFailed     ErrorCode = "TAGGING_FAILED"

	ErrCodeGazetteerRateLimited ErrorCode = "GAZETTEER_RATE_LIMITED"
	ErrCodeGazetteerTimeout     ErrorCode = "GAZETTEER_TIMEOUT"
	ErrCodeGazetteerQueryFailed ErrorCode = "GAZETTEER_QUERY_FAILED"
	ErrCodeLocationNotFound     ErrorCode = "LOCATION_NOT_FOUND"

	ErrCodeIndexWriteFailed              ErrorCode = "INDEX_WRITE_FAILED"
	ErrCodeBulkIndexFailed               ErrorCode = "BULK_INDEX_FAILED"
	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout                 ErrorCode = "SEARCH_TIMEOUT"

	ErrCodeEventPublishFailed ErrorCode = "EVENT_PUBLISH_FAILED"
	ErrCodeBrokerUnavailable  ErrorCode = "BROKER_UNAVAILABLE"

	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeAlertSendFailed ErrorCode = "ALERT_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewMessageParseFailedError creates a non-retryable payload parse error.
func NewMessageParseFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMessageParseFailed,
		Message:   "Failed to decode inbound article event",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMessageInvalidError creates a non-retryable schema validation error.
func NewMessageInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMessageInvalid,
		Message:   "Inbound article event failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTaggerUnavailableError creates a retryable tagger error.
func NewTaggerUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTaggerUnavailable,
		Message:   "Entity tagger is not reachable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTaggerTimeoutError creates a retryable tagger timeout error.
func NewTaggerTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeTaggerTimeout,
		Message:   "Entity tagger call exceeded timeout",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTaggingFailedError creates a non-retryable tagging error.
func NewTaggingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTaggingFailed,
		Message:   "Entity tagging returned an error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGazetteerRateLimitedError creates a retryable rate-limit error.
func NewGazetteerRateLimitedError(location string) *StandardError {
	return &StandardError{
		Code:      ErrCodeGazetteerRateLimited,
		Message:   "Gazetteer rate limit exceeded",
		Details:   fmt.Sprintf("location: %s", location),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGazetteerTimeoutError creates a retryable gazetteer timeout error.
func NewGazetteerTimeoutError(location string) *StandardError {
	return &StandardError{
		Code:      ErrCodeGazetteerTimeout,
		Message:   "Gazetteer lookup exceeded timeout",
		Details:   fmt.Sprintf("location: %s", location),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGazetteerQueryFailedError creates a retryable gazetteer error.
func NewGazetteerQueryFailedError(location string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGazetteerQueryFailed,
		Message:   "Gazetteer query error",
		Details:   fmt.Sprintf("location: %s, error: %s", location, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLocationNotFoundError creates a non-retryable no-match error.
func NewLocationNotFoundError(location string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLocationNotFound,
		Message:   "No gazetteer match for location",
		Details:   fmt.Sprintf("location: %s", location),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexWriteFailedError creates a retryable document store write error.
func NewIndexWriteFailedError(articleID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexWriteFailed,
		Message:   "Document store write failed",
		Details:   fmt.Sprintf("articleId: %s, error: %s", articleID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewBulkIndexFailedError creates a retryable bulk write error.
func NewBulkIndexFailedError(count int, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBulkIndexFailed,
		Message:   "Bulk document store write failed",
		Details:   fmt.Sprintf("documents: %d, error: %s", count, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewElasticsearchConnectionFailedError creates a retryable connection error.
func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeElasticsearchConnectionFailed,
		Message:   "Elasticsearch connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Elasticsearch query error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchTimeoutError creates a retryable search timeout error.
func NewSearchTimeoutError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchTimeout,
		Message:   "Elasticsearch query timeout",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEventPublishFailedError creates a retryable publish error.
func NewEventPublishFailedError(topic, articleID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEventPublishFailed,
		Message:   "Derived event publish failed",
		Details:   fmt.Sprintf("topic: %s, articleId: %s, error: %s", topic, articleID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewBrokerUnavailableError creates a retryable broker connection error.
func NewBrokerUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBrokerUnavailable,
		Message:   "Message broker is not reachable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a retryable cache error.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Cache store error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAlertSendFailedError creates a retryable alert delivery error.
func NewAlertSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlertSendFailed,
		Message:   "Critical-article alert delivery failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// GetRetryCount returns the recommended retry count for a code. The pipeline
// itself never retries (it acknowledges regardless); these counts feed the
// dead-letter hook so a future strategy has something to work with.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeTaggerUnavailable,
		ErrCodeGazetteerQueryFailed,
		ErrCodeIndexWriteFailed,
		ErrCodeBulkIndexFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeEventPublishFailed,
		ErrCodeBrokerUnavailable:
		return 3

	case ErrCodeTaggerTimeout,
		ErrCodeGazetteerTimeout,
		ErrCodeSearchTimeout,
		ErrCodeGazetteerRateLimited:
		return 2

	default:
		return 0
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "MESSAGE"):
		return "INGEST"
	case strings.Contains(codeStr, "TAGG"):
		return "NLP"
	case strings.Contains(codeStr, "GAZETTEER") || strings.Contains(codeStr, "LOCATION"):
		return "GEO"
	case strings.Contains(codeStr, "INDEX") || strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "SEARCH"):
		return "STORE"
	case strings.Contains(codeStr, "PUBLISH") || strings.Contains(codeStr, "BROKER"):
		return "BROKER"
	case strings.Contains(codeStr, "ALERT"):
		return "ALERTING"
	default:
		return "OTHER"
	}
}
