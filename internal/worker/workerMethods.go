package worker

import (
	"context"
	"sync/atomic"

	"github.com/akolanti/DocVault/internal/config"
	"github.com/akolanti/DocVault/internal/domain/jobModel"
	"github.com/akolanti/DocVault/internal/metrics"
)

func executeJob(d jobModel.JobDescriptor) {
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, d.TraceID)
	ctx, cancel := context.WithTimeout(ctxTrace, config.JobExecutionTimeout)
	defer cancel()
	log := logger.With("traceId", d.TraceID, "jobId", d.JobID)
	log.Debug("Processing job", "attempt", d.Attempt)

	err := _processor.Process(ctx, d)
	if err == nil {
		return
	}

	if d.Attempt+1 >= config.MaxDeliveryAttempts {
		log.Error("Job dead-lettered after max delivery attempts", "attempts", d.Attempt+1, "error", err)
		return
	}
	redeliver(d, err)
}

// redeliver pushes the descriptor back onto the queue. When the buffer is full
// the descriptor is dead-lettered instead of blocking a worker.
func redeliver(d jobModel.JobDescriptor, cause error) {
	d.Attempt++
	select {
	case _jobService.JobChannel <- d:
		metrics.IncrementJobsInQueue()
		logger.Info("Job requeued for redelivery", "jobId", d.JobID, "attempt", d.Attempt, "cause", cause)
	default:
		logger.Error("Job dead-lettered, queue full on redelivery", "jobId", d.JobID, "error", cause)
	}
}

func removeWorker(reason string) {
	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker ", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()
}
