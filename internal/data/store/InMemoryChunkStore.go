package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/akolanti/DocVault/internal/domain/chunkModel"
)

type InMemoryChunkStore struct {
	mutex  *sync.RWMutex
	chunks map[string]chunkModel.ChunkRecord
	byFile map[string][]string
}

func InitInMemoryChunkStore() *InMemoryChunkStore {
	return &InMemoryChunkStore{
		mutex:  new(sync.RWMutex),
		chunks: make(map[string]chunkModel.ChunkRecord),
		byFile: make(map[string][]string),
	}
}

func (store *InMemoryChunkStore) PutChunk(ctx context.Context, record chunkModel.ChunkRecord) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.chunks[record.ChunkID] = record
	store.byFile[record.FileKey] = append(store.byFile[record.FileKey], record.ChunkID)
	return nil
}

func (store *InMemoryChunkStore) GetChunk(ctx context.Context, chunkID string) (chunkModel.ChunkRecord, bool) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	record, found := store.chunks[chunkID]
	return record, found
}

func (store *InMemoryChunkStore) ListChunks(ctx context.Context, fileKey string) ([]chunkModel.ChunkRecord, error) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	ids := store.byFile[fileKey]
	records := make([]chunkModel.ChunkRecord, 0, len(ids))
	for _, id := range ids {
		if record, found := store.chunks[id]; found {
			records = append(records, record)
		}
	}
	return records, nil
}

func (store *InMemoryChunkStore) UpdateChunk(ctx context.Context, record chunkModel.ChunkRecord) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	if _, found := store.chunks[record.ChunkID]; !found {
		return fmt.Errorf("chunk %s not found", record.ChunkID)
	}
	store.chunks[record.ChunkID] = record
	return nil
}

func (store *InMemoryChunkStore) DeleteChunks(ctx context.Context, fileKey string) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	for _, id := range store.byFile[fileKey] {
		delete(store.chunks, id)
	}
	delete(store.byFile, fileKey)
	return nil
}
