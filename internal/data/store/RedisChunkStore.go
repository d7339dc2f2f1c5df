package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/akolanti/DocVault/internal/config"
	"github.com/akolanti/DocVault/internal/data/redisStore"
	"github.com/akolanti/DocVault/internal/domain/chunkModel"
	"github.com/akolanti/DocVault/pkg/logger_i"
)

// RedisChunkStore persists one JSON record per chunk id and keeps a per-file
// set of chunk ids for listing. Writes never overwrite by design: the pipeline
// always generates a fresh id, so reprocessing appends a disjoint set.
type RedisChunkStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func fileIndexKey(fileKey string) string {
	return "file:" + fileKey
}

func GetRedisChunkStore(ctx context.Context) *RedisChunkStore {
	inner := redisStore.GetRedisStore(ctx, config.RedisChunkStore)
	if inner == nil {
		return nil
	}
	return &RedisChunkStore{
		store:  inner,
		logger: logger_i.NewLogger("ChunkStore"),
	}
}

func (s *RedisChunkStore) PutChunk(ctx context.Context, record chunkModel.ChunkRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, record.ChunkID, data, config.RedisChunkStoreTTL); err != nil {
		return fmt.Errorf("chunk write failed: %w", err)
	}
	return s.store.SetAdd(ctx, fileIndexKey(record.FileKey), record.ChunkID)
}

func (s *RedisChunkStore) GetChunk(ctx context.Context, chunkID string) (chunkModel.ChunkRecord, bool) {
	val, err := s.store.Get(ctx, chunkID)
	if err != nil {
		return chunkModel.ChunkRecord{}, false
	}
	var record chunkModel.ChunkRecord
	if err := json.Unmarshal([]byte(val), &record); err != nil {
		s.logger.Error("corrupt chunk record", "chunkId", chunkID, "error", err)
		return chunkModel.ChunkRecord{}, false
	}
	return record, true
}

func (s *RedisChunkStore) ListChunks(ctx context.Context, fileKey string) ([]chunkModel.ChunkRecord, error) {
	ids, err := s.store.SetMembers(ctx, fileIndexKey(fileKey))
	if err != nil {
		return nil, err
	}
	records := make([]chunkModel.ChunkRecord, 0, len(ids))
	for _, id := range ids {
		if record, ok := s.GetChunk(ctx, id); ok {
			records = append(records, record)
		}
	}
	return records, nil
}

// UpdateChunk rewrites an existing record in place; only the edit endpoint
// uses this, the pipeline never does.
func (s *RedisChunkStore) UpdateChunk(ctx context.Context, record chunkModel.ChunkRecord) error {
	if _, ok := s.GetChunk(ctx, record.ChunkID); !ok {
		return fmt.Errorf("chunk %s not found", record.ChunkID)
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, record.ChunkID, data, config.RedisChunkStoreTTL)
}

// DeleteChunks removes every chunk of a file along with its index set.
func (s *RedisChunkStore) DeleteChunks(ctx context.Context, fileKey string) error {
	ids, err := s.store.SetMembers(ctx, fileIndexKey(fileKey))
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.store.Del(ctx, id); err != nil {
			return fmt.Errorf("deleting chunk %s: %w", id, err)
		}
	}
	return s.store.Del(ctx, fileIndexKey(fileKey))
}

func TestChunkStore(store *redisStore.Store) *RedisChunkStore {
	return &RedisChunkStore{
		store:  store,
		logger: logger_i.NewLogger("test chunk store"),
	}
}
