package job

import (
	"github.com/akolanti/DocVault/internal/domain/chunkModel"
	"github.com/akolanti/DocVault/internal/domain/jobModel"
)

type Service struct {
	JobChannel        chan jobModel.JobDescriptor
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	ChunkStore        chunkModel.ChunkStore
}

type ServiceConfig struct {
	JobChannel        chan jobModel.JobDescriptor
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	ChunkStore        chunkModel.ChunkStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		RequestCount:      cfg.RequestCount,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
		ChunkStore:        cfg.ChunkStore,
	}
}
