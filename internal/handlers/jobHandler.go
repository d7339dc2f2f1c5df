package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/DocVault/internal/config"
	"github.com/akolanti/DocVault/internal/domain/jobModel"
	"github.com/akolanti/DocVault/internal/job"
	"github.com/akolanti/DocVault/internal/metrics"
	"github.com/akolanti/DocVault/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           *logger_i.Logger
)

type JobHandler struct {
	service *job.Service
}

func InitJobHandler(jobService *job.Service) {
	once.Do(func() {
		handlerInstance = &JobHandler{service: jobService}

		logJH = logger_i.NewLogger("JobHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logJH.Info("Starting job handler")
	})
}

type newJobData struct {
	id       string
	fileKey  string
	fileName string
	traceId  string
}

// CreateNewJob persists the queued record and enqueues the descriptor. The
// record is written first so a status poll never races an empty store.
func CreateNewJob(newJob newJobData) error {
	logJH.With("traceId", newJob.traceId, "job id", newJob.id)
	logJH.Info("To create new job")

	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, newJob.traceId)
	now := time.Now().UTC().Format(time.RFC3339)
	record := jobModel.JobRecord{
		JobID:       newJob.id,
		FileKey:     newJob.fileKey,
		FileName:    newJob.fileName,
		State:       jobModel.StateQueued,
		Progress:    0,
		RequestedAt: now,
		UpdatedAt:   now,
	}
	if err := handlerInstance.service.JobStore.CreateJob(ctxC, record); err != nil {
		logJH.Error("Failed to persist queued job", "jobId", newJob.id, "error", err)
		return err
	}

	handlerInstance.pushToJobChannel(newJob)
	return nil
}

func GetJobStatus(id string, traceId string) (result jobModel.JobRecord, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctxC, id)
	}
	return result, false
}

// private methods
func (h *JobHandler) pushToJobChannel(newJob newJobData) {

	descriptor := jobModel.JobDescriptor{
		JobID:       newJob.id,
		Bucket:      config.DocsDir(),
		Key:         newJob.fileKey,
		FileName:    newJob.fileName,
		RequestedAt: time.Now(),
		TraceID:     newJob.traceId,
		Attempt:     0,
	}

	//metrics
	metrics.IncrementJobsInQueue()

	h.service.JobChannel <- descriptor //this is a blocking send to prevent the system from being overwhelmed
	logJH.Info("Created new job")

	//document processing is slow, so unlike a light request we wake the
	//dispatcher either on the usual request cadence or whenever the queue
	//starts to back up
	accurateCount := atomic.AddInt64(&h.service.RequestCount, 1) //after sending a request increment counter
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || len(h.service.JobChannel) > 1 {
		metrics.StartDispatcherSignalCount() //metrics
		logJH.Debug("Worker count ", accurateCount)
		h.service.DispatcherChannel <- true
	}
}
