package extraction

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/akolanti/DocVault/internal/config"
	"github.com/akolanti/DocVault/internal/domain/chunkModel"
	"github.com/akolanti/DocVault/internal/domain/jobModel"
	"github.com/akolanti/DocVault/pkg/logger_i"
)

// Poller drives one text-detection job to completion: submit, poll on a fixed
// interval with throttled heartbeats, then page through the results.
type Poller struct {
	engine         Engine
	logger         *logger_i.Logger
	PollInterval   time.Duration
	HeartbeatEvery time.Duration
	MaxWait        time.Duration
}

func NewPoller(engine Engine) *Poller {
	return &Poller{
		engine:         engine,
		logger:         logger_i.NewLogger("Extraction Poller"),
		PollInterval:   config.OCRPollInterval,
		HeartbeatEvery: config.OCRHeartbeatInterval,
		MaxWait:        config.OCRMaxWait(),
	}
}

func (p *Poller) ExtractLines(ctx context.Context, bucket string, key string, heartbeat jobModel.HeartbeatFunc) ([]chunkModel.TextLine, error) {
	log := p.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "key", key)

	ocrJobID, err := p.engine.StartTextDetection(ctx, bucket, key)
	if err != nil {
		if isTransientNetErr(err) {
			// connection/read timeouts propagate unmodified so the queue's
			// redelivery can retry the whole job
			log.Error("text detection submit network error", "error", err)
			return nil, err
		}
		log.Error("text detection submit failed", "error", err)
		return nil, fmt.Errorf("%w: submit: %v", ErrFailed, err)
	}
	log.Info("text detection started", "ocrJobId", ocrJobID)
	if heartbeat != nil {
		heartbeat(jobModel.Heartbeat{
			State:    jobModel.StateExtractionStarted,
			Progress: 20,
			Attrs:    map[string]any{"ocr_job_id": ocrJobID},
		})
	}

	lastPage, err := p.awaitCompletion(ctx, ocrJobID, heartbeat, log)
	if err != nil {
		return nil, err
	}

	lines := collectLines(lastPage)
	for token := lastPage.NextToken; token != ""; {
		page, err := p.engine.GetTextDetection(ctx, ocrJobID, token)
		if err != nil {
			return nil, fmt.Errorf("%w: result page: %v", ErrFailed, err)
		}
		lines = append(lines, collectLines(page)...)
		token = page.NextToken
	}

	log.Info("text detection done", "ocrJobId", ocrJobID, "lines", len(lines))
	if heartbeat != nil {
		heartbeat(jobModel.Heartbeat{
			State:    jobModel.StateExtractionSucceeded,
			Progress: 60,
			Attrs:    map[string]any{"line_count": len(lines)},
		})
	}
	return lines, nil
}

// awaitCompletion polls until the job reaches a terminal status. The returned
// page is the terminal status response, which already carries the first batch
// of blocks.
func (p *Poller) awaitCompletion(ctx context.Context, ocrJobID string, heartbeat jobModel.HeartbeatFunc, log *logger_i.Logger) (*ResultPage, error) {
	start := time.Now()
	var lastHeartbeat time.Time
	for {
		page, err := p.engine.GetTextDetection(ctx, ocrJobID, "")
		if err != nil {
			return nil, fmt.Errorf("%w: status poll: %v", ErrFailed, err)
		}
		switch page.Status {
		case StatusSucceeded:
			return page, nil
		case StatusFailed:
			log.Error("text detection job failed", "ocrJobId", ocrJobID, "message", page.StatusMessage)
			return nil, fmt.Errorf("%w: %s", ErrFailed, page.StatusMessage)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.PollInterval):
		}

		elapsed := time.Since(start)
		if elapsed > p.MaxWait {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, elapsed.Round(time.Second))
		}
		if heartbeat != nil && time.Since(lastHeartbeat) > p.HeartbeatEvery {
			heartbeat(jobModel.Heartbeat{
				State:    jobModel.StateExtractionPolling,
				Progress: estimateProgress(elapsed, p.MaxWait),
			})
			lastHeartbeat = time.Now()
		}
	}
}

// estimateProgress maps elapsed poll time onto the 20..55 band.
func estimateProgress(elapsed, maxWait time.Duration) int {
	est := 20 + int(float64(elapsed)/float64(maxWait)*35)
	if est > 55 {
		est = 55
	}
	return est
}

func collectLines(page *ResultPage) []chunkModel.TextLine {
	var lines []chunkModel.TextLine
	for _, block := range page.Blocks {
		if block.Type != BlockLine || block.Text == "" {
			continue
		}
		pageNum := block.Page
		if pageNum <= 0 {
			pageNum = 1
		}
		lines = append(lines, chunkModel.TextLine{Text: block.Text, Page: pageNum})
	}
	return lines
}

func isTransientNetErr(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
