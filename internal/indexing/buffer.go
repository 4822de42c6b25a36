// internal/indexing/buffer.go
package indexing

import (
	"context"
	"sync"

	"conflictradar-processing/internal/common/logger"
	"conflictradar-processing/internal/common/metrics"
	"conflictradar-processing/internal/models"
)

// Writer is the subset of store operations the buffer needs.
type Writer interface {
	Save(ctx context.Context, doc models.EnrichedArticleDocument) error
	SaveAll(ctx context.Context, docs []models.EnrichedArticleDocument) error
}

// Buffer accumulates documents and flushes them in batches. A batch size of
// one writes through immediately. Failed batches are dropped with an error
// logged, there is no retry.
type Buffer struct {
	store     Writer
	batchSize int
	logger    logger.Logger

	mu      sync.Mutex
	pending []models.EnrichedArticleDocument
}

func NewBuffer(store Writer, batchSize int, log logger.Logger) *Buffer {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Buffer{
		store:     store,
		batchSize: batchSize,
		pending:   make([]models.EnrichedArticleDocument, 0, batchSize),
		logger:    log,
	}
}

// Add appends a document and flushes when the batch threshold is reached.
// With batchSize 1 the write is synchronous and its error is returned.
func (b *Buffer) Add(ctx context.Context, doc models.EnrichedArticleDocument) error {
	if b.batchSize == 1 {
		return b.store.Save(ctx, doc)
	}

	b.mu.Lock()
	b.pending = append(b.pending, doc)
	metrics.BufferedDocuments.Set(float64(len(b.pending)))
	var batch []models.EnrichedArticleDocument
	if len(b.pending) >= b.batchSize {
		batch = b.swapLocked()
	}
	b.mu.Unlock()

	if batch != nil {
		b.write(ctx, batch)
	}
	return nil
}

// Flush writes out whatever is currently buffered.
func (b *Buffer) Flush(ctx context.Context) {
	b.mu.Lock()
	batch := b.swapLocked()
	b.mu.Unlock()

	if batch != nil {
		b.write(ctx, batch)
	}
}

// ForceFlush is Flush under a name that signals shutdown use.
func (b *Buffer) ForceFlush(ctx context.Context) {
	b.Flush(ctx)
}

// Pending returns the current buffer depth.
func (b *Buffer) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

func (b *Buffer) swapLocked() []models.EnrichedArticleDocument {
	if len(b.pending) == 0 {
		return nil
	}
	batch := b.pending
	b.pending = make([]models.EnrichedArticleDocument, 0, b.batchSize)
	metrics.BufferedDocuments.Set(0)
	return batch
}

func (b *Buffer) write(ctx context.Context, batch []models.EnrichedArticleDocument) {
	metrics.IndexFlushSize.Observe(float64(len(batch)))

	if err := b.store.SaveAll(ctx, batch); err != nil {
		b.logger.WithError(err).Error("Bulk index failed, dropping batch", map[string]interface{}{
			"batchSize": len(batch),
		})
	}
}
