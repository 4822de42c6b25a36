// internal/indexing/buffer_test.go
package indexing

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conflictradar-processing/internal/common/logger"
	"conflictradar-processing/internal/models"
)

type fakeStore struct {
	mu      sync.Mutex
	saves   []models.EnrichedArticleDocument
	batches [][]models.EnrichedArticleDocument
	err     error
}

func (f *fakeStore) Save(ctx context.Context, doc models.EnrichedArticleDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saves = append(f.saves, doc)
	return nil
}

func (f *fakeStore) SaveAll(ctx context.Context, docs []models.EnrichedArticleDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, docs)
	return nil
}

func doc(id string) models.EnrichedArticleDocument {
	return models.EnrichedArticleDocument{ID: id}
}

func TestBufferFlushesAtBatchSize(t *testing.T) {
	store := &fakeStore{}
	buffer := NewBuffer(store, 3, logger.NewNoOpLogger())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, buffer.Add(ctx, doc(fmt.Sprintf("article-%d", i))))
	}

	// one automatic flush at the third document
	require.Len(t, store.batches, 1)
	assert.Len(t, store.batches[0], 3)
	assert.Equal(t, 2, buffer.Pending())

	buffer.ForceFlush(ctx)

	require.Len(t, store.batches, 2)
	assert.Len(t, store.batches[1], 2)
	assert.Equal(t, 0, buffer.Pending())
}

func TestBufferBatchSizeOneWritesThrough(t *testing.T) {
	store := &fakeStore{}
	buffer := NewBuffer(store, 1, logger.NewNoOpLogger())

	require.NoError(t, buffer.Add(context.Background(), doc("article-1")))

	assert.Len(t, store.saves, 1)
	assert.Empty(t, store.batches)
	assert.Equal(t, 0, buffer.Pending())
}

func TestBufferBatchSizeOnePropagatesError(t *testing.T) {
	store := &fakeStore{err: fmt.Errorf("index down")}
	buffer := NewBuffer(store, 1, logger.NewNoOpLogger())

	err := buffer.Add(context.Background(), doc("article-1"))

	assert.Error(t, err)
}

func TestBufferDropsBatchOnWriteFailure(t *testing.T) {
	store := &fakeStore{err: fmt.Errorf("index down")}
	buffer := NewBuffer(store, 2, logger.NewNoOpLogger())
	ctx := context.Background()

	require.NoError(t, buffer.Add(ctx, doc("article-1")))
	require.NoError(t, buffer.Add(ctx, doc("article-2")))

	// batch was attempted, failed, and dropped
	assert.Equal(t, 0, buffer.Pending())

	store.mu.Lock()
	store.err = nil
	store.mu.Unlock()

	require.NoError(t, buffer.Add(ctx, doc("article-3")))
	buffer.ForceFlush(ctx)

	require.Len(t, store.batches, 1)
	assert.Equal(t, "article-3", store.batches[0][0].ID)
}

func TestBufferFlushOnEmptyIsNoOp(t *testing.T) {
	store := &fakeStore{}
	buffer := NewBuffer(store, 3, logger.NewNoOpLogger())

	buffer.Flush(context.Background())

	assert.Empty(t, store.batches)
}

func TestBufferConcurrentAdds(t *testing.T) {
	store := &fakeStore{}
	buffer := NewBuffer(store, 10, logger.NewNoOpLogger())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, buffer.Add(ctx, doc(fmt.Sprintf("article-%d", n))))
		}(i)
	}
	wg.Wait()
	buffer.ForceFlush(ctx)

	total := 0
	store.mu.Lock()
	for _, batch := range store.batches {
		total += len(batch)
	}
	store.mu.Unlock()
	assert.Equal(t, 50, total)
}
