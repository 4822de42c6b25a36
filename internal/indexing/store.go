// internal/indexing/store.go

// Package indexing persists enriched articles to Elasticsearch, batching
// writes through a buffer.
package indexing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"conflictradar-processing/internal/common/errors"
	"conflictradar-processing/internal/common/logger"
	"conflictradar-processing/internal/common/metrics"
	"conflictradar-processing/internal/models"
)

// ArticleStore wraps document operations on the articles index.
type ArticleStore struct {
	client  *elasticsearch.Client
	index   string
	refresh string
	logger  logger.Logger
}

// NewArticleStore creates a store on the given index. enableRefresh makes
// every write visible to search immediately, for environments where query
// tests run right after indexing.
func NewArticleStore(client *elasticsearch.Client, index string, enableRefresh bool, log logger.Logger) *ArticleStore {
	refresh := ""
	if enableRefresh {
		refresh = "true"
	}
	return &ArticleStore{
		client:  client,
		index:   index,
		refresh: refresh,
		logger:  log.WithFields(map[string]interface{}{"index": index}),
	}
}

// Save upserts a single document by article id.
func (s *ArticleStore) Save(ctx context.Context, doc models.EnrichedArticleDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return errors.NewIndexWriteFailedError(doc.ID, err)
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: doc.ID,
		Body:       bytes.NewReader(body),
		Refresh:    s.refresh,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return errors.NewIndexWriteFailedError(doc.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewIndexWriteFailedError(doc.ID, fmt.Errorf("index returned %s", res.Status()))
	}

	metrics.DocumentsIndexed.Inc()
	return nil
}

// SaveAll bulk-upserts documents in one request.
func (s *ArticleStore) SaveAll(ctx context.Context, docs []models.EnrichedArticleDocument) error {
	if len(docs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, doc := range docs {
		action, err := json.Marshal(map[string]interface{}{
			"index": map[string]interface{}{"_index": s.index, "_id": doc.ID},
		})
		if err != nil {
			return errors.NewBulkIndexFailedError(len(docs), err)
		}
		source, err := json.Marshal(doc)
		if err != nil {
			return errors.NewBulkIndexFailedError(len(docs), err)
		}
		buf.Write(action)
		buf.WriteByte('\n')
		buf.Write(source)
		buf.WriteByte('\n')
	}

	req := esapi.BulkRequest{
		Index:   s.index,
		Body:    &buf,
		Refresh: s.refresh,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return errors.NewBulkIndexFailedError(len(docs), err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewBulkIndexFailedError(len(docs), fmt.Errorf("bulk returned %s", res.Status()))
	}

	var bulkResponse struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int    `json:"status"`
			Error  *struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error,omitempty"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkResponse); err != nil {
		return errors.NewBulkIndexFailedError(len(docs), err)
	}

	if bulkResponse.Errors {
		failed := 0
		for _, item := range bulkResponse.Items {
			for _, result := range item {
				if result.Status >= 300 {
					failed++
				}
			}
		}
		return errors.NewBulkIndexFailedError(failed,
			fmt.Errorf("%d of %d documents rejected", failed, len(docs)))
	}

	metrics.DocumentsIndexed.Add(float64(len(docs)))
	return nil
}

// Exists checks whether a document with the article id is already indexed.
func (s *ArticleStore) Exists(ctx context.Context, articleID string) (bool, error) {
	req := esapi.ExistsRequest{
		Index:      s.index,
		DocumentID: articleID,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return false, errors.NewSearchQueryFailedError("exists", err)
	}
	defer res.Body.Close()

	return res.StatusCode == 200, nil
}

// FindHighPriority returns high-priority documents, newest first.
func (s *ArticleStore) FindHighPriority(ctx context.Context, size int) ([]models.EnrichedArticleDocument, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{"highPriority": true},
		},
		"sort": []interface{}{
			map[string]interface{}{"processedAt": map[string]interface{}{"order": "desc"}},
		},
	}
	return s.search(ctx, "high_priority", query, size)
}

// FindByRiskScoreRange returns documents whose enhanced risk falls in
// [min, max].
func (s *ArticleStore) FindByRiskScoreRange(ctx context.Context, min, max float64, size int) ([]models.EnrichedArticleDocument, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"range": map[string]interface{}{
				"enhancedRiskScore": map[string]interface{}{"gte": min, "lte": max},
			},
		},
	}
	return s.search(ctx, "risk_range", query, size)
}

// SearchByText runs a free-text match over title and description.
func (s *ArticleStore) SearchByText(ctx context.Context, text string, size int) ([]models.EnrichedArticleDocument, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  text,
				"fields": []string{"title^2", "description"},
				"type":   "best_fields",
			},
		},
	}
	return s.search(ctx, "text", query, size)
}

// Count returns the number of indexed documents.
func (s *ArticleStore) Count(ctx context.Context) (int64, error) {
	req := esapi.CountRequest{Index: []string{s.index}}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return 0, errors.NewSearchQueryFailedError("count", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, errors.NewSearchQueryFailedError("count", fmt.Errorf("count returned %s", res.Status()))
	}

	var parsed struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, errors.NewSearchQueryFailedError("count", err)
	}
	return parsed.Count, nil
}

func (s *ArticleStore) search(ctx context.Context, queryType string, query map[string]interface{}, size int) ([]models.EnrichedArticleDocument, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, errors.NewSearchQueryFailedError(queryType, err)
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewSearchTimeoutError(queryType)
		}
		return nil, errors.NewSearchQueryFailedError(queryType, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewSearchQueryFailedError(queryType, fmt.Errorf("search returned %s", res.Status()))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.EnrichedArticleDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.NewSearchQueryFailedError(queryType, err)
	}

	docs := make([]models.EnrichedArticleDocument, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		docs = append(docs, hit.Source)
	}
	return docs, nil
}
