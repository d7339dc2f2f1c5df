package store

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/DocVault/internal/domain/jobModel"
	"github.com/akolanti/DocVault/pkg/logger_i"
)

var inMemLogger = logger_i.NewLogger("InMem JobStore")

// InMemoryJobStore is the fallback when redis is offline; same hash-merge
// semantics, map-backed.
type InMemoryJobStore struct {
	jobMutex *sync.RWMutex
	jobMap   map[string]map[string]string
}

func InitInMemoryJobStore() *InMemoryJobStore {
	return &InMemoryJobStore{
		jobMutex: new(sync.RWMutex),
		jobMap:   make(map[string]map[string]string),
	}
}

func (store *InMemoryJobStore) CreateJob(ctx context.Context, record jobModel.JobRecord) error {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	store.jobMap[record.JobID] = jobModel.FieldsOf(record)
	inMemLogger.Debug("Saved job record", "jobId", record.JobID)
	return nil
}

func (store *InMemoryJobStore) UpdateJob(ctx context.Context, jobID string, update *jobModel.JobUpdate) error {
	if update == nil || update.Empty() {
		return nil
	}
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	fields, found := store.jobMap[jobID]
	if !found {
		fields = make(map[string]string)
		store.jobMap[jobID] = fields
	}
	for k, v := range update.Fields(time.Now()) {
		fields[k] = v
	}
	return nil
}

func (store *InMemoryJobStore) GetJob(ctx context.Context, jobID string) (jobModel.JobRecord, bool) {
	store.jobMutex.RLock()
	defer store.jobMutex.RUnlock()
	fields, found := store.jobMap[jobID]
	if !found {
		return jobModel.JobRecord{}, false
	}
	return jobModel.RecordFromFields(fields), true
}
