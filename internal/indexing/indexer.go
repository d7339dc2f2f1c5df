// Package indexing pushes stored chunks into a vector collection so they can
// be searched semantically. The stage is optional and never blocks a job:
// indexing failures are logged and swallowed by the caller.
package indexing

import (
	"context"

	"github.com/akolanti/DocVault/internal/config"
	"github.com/akolanti/DocVault/internal/domain/chunkModel"
	"github.com/akolanti/DocVault/internal/indexing/embedding"
	"github.com/akolanti/DocVault/internal/indexing/qdrantIndex"
	"github.com/akolanti/DocVault/pkg/logger_i"
)

type Indexer interface {
	IndexChunks(ctx context.Context, records []chunkModel.ChunkRecord) error
}

type VectorIndexer struct {
	embedder embedding.Embedder
	store    *qdrantIndex.ClientHolder
	logger   *logger_i.Logger
}

func NewVectorIndexer(embedder embedding.Embedder, store *qdrantIndex.ClientHolder) *VectorIndexer {
	return &VectorIndexer{
		embedder: embedder,
		store:    store,
		logger:   logger_i.NewLogger("vector_indexer"),
	}
}

func (v *VectorIndexer) IndexChunks(ctx context.Context, records []chunkModel.ChunkRecord) error {
	log := v.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	if len(records) == 0 {
		return nil
	}

	texts := make([]string, 0, len(records))
	for _, r := range records {
		texts = append(texts, r.Text)
	}

	vectors, err := v.embedder.BatchEmbedding(ctx, texts)
	if err != nil {
		log.Error("Embedding chunks failed", "error", err)
		return err
	}

	err = v.store.UpsertBatch(ctx, config.IndexCollection, records, vectors)
	if err != nil {
		log.Error("Upserting chunk vectors failed", "error", err)
		return err
	}

	log.Info("Indexed chunks", "count", len(records))
	return nil
}
