package store

import (
	"context"
	"time"

	"github.com/akolanti/DocVault/internal/config"
	"github.com/akolanti/DocVault/internal/data/redisStore"
	"github.com/akolanti/DocVault/internal/domain/jobModel"
	"github.com/akolanti/DocVault/pkg/logger_i"
)

// RedisJobStore keeps each JobRecord as a hash so the tracker's partial
// updates write only the fields they name.
type RedisJobStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisJobStore(ctx context.Context) *RedisJobStore {
	inner := redisStore.GetRedisStore(ctx, config.RedisJobStore)
	if inner == nil {
		return nil
	}
	return &RedisJobStore{
		store:  inner,
		logger: logger_i.NewLogger("JobStore"),
	}
}

func (s *RedisJobStore) CreateJob(ctx context.Context, record jobModel.JobRecord) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "job Id", record.JobID)
	log.Debug("creating job record")
	return s.store.HashSet(ctx, record.JobID, jobModel.FieldsOf(record), config.RedisJobStoreTTL)
}

func (s *RedisJobStore) UpdateJob(ctx context.Context, jobID string, update *jobModel.JobUpdate) error {
	if update == nil || update.Empty() {
		return nil
	}
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "job Id", jobID)
	log.Debug("merging job update")
	return s.store.HashSet(ctx, jobID, update.Fields(time.Now()), config.RedisJobStoreTTL)
}

func (s *RedisJobStore) GetJob(ctx context.Context, jobID string) (jobModel.JobRecord, bool) {
	fields, err := s.store.HashGetAll(ctx, jobID)
	if err != nil || len(fields) == 0 {
		return jobModel.JobRecord{}, false
	}
	return jobModel.RecordFromFields(fields), true
}

func TestJobStore(store *redisStore.Store) *RedisJobStore {
	return &RedisJobStore{
		store:  store,
		logger: logger_i.NewLogger("test redis"),
	}
}
