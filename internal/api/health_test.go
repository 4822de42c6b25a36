// internal/api/health_test.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conflictradar-processing/internal/common/logger"
)

func probe(up bool) ReadinessProbe {
	return func(ctx context.Context) bool { return up }
}

func TestHealthUp(t *testing.T) {
	server := NewServer(":0", "processing-service", probe(true), probe(true), logger.NewNoOpLogger())

	rec := httptest.NewRecorder()
	server.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/api/v1/processing/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "UP", body["status"])
	assert.Equal(t, "processing-service", body["service"])
}

func TestHealthDownWhenAnyProbeFails(t *testing.T) {
	tests := []struct {
		name      string
		tagger    bool
		gazetteer bool
	}{
		{"tagger down", false, true},
		{"gazetteer down", true, false},
		{"both down", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := NewServer(":0", "processing-service", probe(tt.tagger), probe(tt.gazetteer), logger.NewNoOpLogger())

			rec := httptest.NewRecorder()
			server.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/api/v1/processing/health", nil))

			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "DOWN", body["status"])

			processing := body["processing"].(map[string]interface{})
			assert.Equal(t, tt.tagger, processing["taggerReady"])
			assert.Equal(t, tt.gazetteer, processing["gazetteerReady"])
		})
	}
}

func TestStatus(t *testing.T) {
	server := NewServer(":0", "processing-service", probe(true), probe(true), logger.NewNoOpLogger())

	rec := httptest.NewRecorder()
	server.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/v1/processing/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	capabilities := body["capabilities"].(map[string]interface{})
	assert.Equal(t, "Elasticsearch", capabilities["documentIndexing"])
}
