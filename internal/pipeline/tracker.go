package pipeline

import (
	"context"

	"github.com/akolanti/DocVault/internal/config"
	"github.com/akolanti/DocVault/internal/domain/jobModel"
	"github.com/akolanti/DocVault/pkg/logger_i"
)

// Tracker writes job progress best-effort. A lost progress update must never
// kill the job, so store errors are logged and swallowed here.
type Tracker struct {
	store  jobModel.JobStore
	logger *logger_i.Logger
}

func NewTracker(store jobModel.JobStore) *Tracker {
	return &Tracker{
		store:  store,
		logger: logger_i.NewLogger("Job Tracker"),
	}
}

func (t *Tracker) Update(ctx context.Context, jobID string, update *jobModel.JobUpdate) {
	if update == nil || update.Empty() {
		return
	}
	err := t.store.UpdateJob(ctx, jobID, update)
	if err != nil {
		log := t.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
		log.Error("job progress update dropped", "jobId", jobID, "error", err)
	}
}

// HeartbeatFunc adapts Update to the callback shape long-running steps expect.
func (t *Tracker) HeartbeatFunc(ctx context.Context, jobID string) jobModel.HeartbeatFunc {
	return func(hb jobModel.Heartbeat) {
		update := jobModel.NewJobUpdate().State(hb.State).Progress(hb.Progress).Attrs(hb.Attrs)
		t.Update(ctx, jobID, update)
	}
}
