// internal/indexing/store_test.go
package indexing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conflictradar-processing/internal/common/logger"
	"conflictradar-processing/internal/models"
)

type capturedRequest struct {
	Method string
	Path   string
	Query  string
}

func newStoreServer(t *testing.T, captured *[]capturedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = append(*captured, capturedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
		})
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"errors":false,"items":[]}`))
	}))
}

func newTestStore(t *testing.T, enableRefresh bool, captured *[]capturedRequest) *ArticleStore {
	t.Helper()
	server := newStoreServer(t, captured)
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)

	return NewArticleStore(client, "articles", enableRefresh, logger.NewNoOpLogger())
}

func TestSaveWithRefreshEnabled(t *testing.T) {
	var captured []capturedRequest
	store := newTestStore(t, true, &captured)

	err := store.Save(context.Background(), models.EnrichedArticleDocument{ID: "article-1"})

	require.NoError(t, err)
	require.Len(t, captured, 1)
	assert.Equal(t, "PUT", captured[0].Method)
	assert.Equal(t, "/articles/_doc/article-1", captured[0].Path)
	assert.Contains(t, captured[0].Query, "refresh=true")
}

func TestSaveWithRefreshDisabled(t *testing.T) {
	var captured []capturedRequest
	store := newTestStore(t, false, &captured)

	err := store.Save(context.Background(), models.EnrichedArticleDocument{ID: "article-1"})

	require.NoError(t, err)
	require.Len(t, captured, 1)
	assert.NotContains(t, captured[0].Query, "refresh")
}

func TestSaveAllWithRefreshEnabled(t *testing.T) {
	var captured []capturedRequest
	store := newTestStore(t, true, &captured)

	err := store.SaveAll(context.Background(), []models.EnrichedArticleDocument{
		{ID: "article-1"},
		{ID: "article-2"},
	})

	require.NoError(t, err)
	require.Len(t, captured, 1)
	assert.Equal(t, "/articles/_bulk", captured[0].Path)
	assert.Contains(t, captured[0].Query, "refresh=true")
}
