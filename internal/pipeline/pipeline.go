// Package pipeline runs one document job end to end: text extraction, chunking
// and chunk persistence, with the job record advanced through its state machine
// along the way.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/DocVault/internal/adapter/utils"
	"github.com/akolanti/DocVault/internal/chunking"
	"github.com/akolanti/DocVault/internal/chunking/llm"
	"github.com/akolanti/DocVault/internal/config"
	"github.com/akolanti/DocVault/internal/domain/chunkModel"
	"github.com/akolanti/DocVault/internal/domain/jobModel"
	"github.com/akolanti/DocVault/internal/extraction"
	"github.com/akolanti/DocVault/internal/indexing"
	"github.com/akolanti/DocVault/internal/metrics"
	"github.com/akolanti/DocVault/pkg/logger_i"
)

// Chunker is the agentic engine's surface, kept narrow so tests can stub it.
type Chunker interface {
	Chunk(ctx context.Context, lines []chunkModel.TextLine) ([]chunkModel.Chunk, error)
}

type Pipeline struct {
	tracker *Tracker
	chunks  chunkModel.ChunkStore
	poller  *extraction.Poller
	agentic Chunker          // nil means sliding-window only
	indexer indexing.Indexer // nil means indexing stage is off
	logger  *logger_i.Logger

	ChunkSize int
	Overlap   int
}

func NewPipeline(jobs jobModel.JobStore, chunks chunkModel.ChunkStore, poller *extraction.Poller, agentic Chunker, indexer indexing.Indexer) *Pipeline {
	return &Pipeline{
		tracker:   NewTracker(jobs),
		chunks:    chunks,
		poller:    poller,
		agentic:   agentic,
		indexer:   indexer,
		logger:    logger_i.NewLogger("Pipeline"),
		ChunkSize: config.ChunkSize(),
		Overlap:   config.ChunkOverlap(),
	}
}

// Process drives one job descriptor to a terminal state. The returned error is
// non-nil only when the job failed; the job record is already marked failed by
// then, so callers only decide about redelivery.
func (p *Pipeline) Process(ctx context.Context, d jobModel.JobDescriptor) error {
	start := time.Now()
	log := p.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "jobId", d.JobID)
	log.Info("processing job", "file", d.FileName, "attempt", d.Attempt)

	p.tracker.Update(ctx, d.JobID, jobModel.NewJobUpdate().State(jobModel.StateReceived).Progress(5))
	p.tracker.Update(ctx, d.JobID, jobModel.NewJobUpdate().State(jobModel.StateProcessing).Progress(10))

	extractStart := time.Now()
	lines, err := p.poller.ExtractLines(ctx, d.Bucket, d.Key, p.tracker.HeartbeatFunc(ctx, d.JobID))
	metrics.CaptureExecutionMetrics("extraction", time.Since(extractStart))
	if err != nil {
		return p.fail(ctx, d.JobID, start, fmt.Errorf("extraction: %w", err))
	}

	if len(lines) == 0 {
		log.Warn("document produced no text")
		p.complete(ctx, d.JobID, start, 0)
		return nil
	}

	chunkStart := time.Now()
	chunks, err := p.runChunking(ctx, d.JobID, lines)
	metrics.CaptureExecutionMetrics("chunking", time.Since(chunkStart))
	if err != nil {
		return p.fail(ctx, d.JobID, start, fmt.Errorf("chunking: %w", err))
	}

	storeStart := time.Now()
	records, err := p.storeChunks(ctx, d, chunks)
	metrics.CaptureExecutionMetrics("store_chunks", time.Since(storeStart))
	if err != nil {
		return p.fail(ctx, d.JobID, start, fmt.Errorf("store chunks: %w", err))
	}

	if p.indexer != nil {
		//indexing is additive, a failure must not fail the job
		err = p.indexer.IndexChunks(ctx, records)
		if err != nil {
			log.Error("vector indexing failed", "error", err)
		}
	}

	p.complete(ctx, d.JobID, start, len(records))
	log.Info("job completed", "chunks", len(records), "took", time.Since(start).Round(time.Millisecond))
	return nil
}

// runChunking picks the engine. A model access denial is a deployment problem
// and fails the job outright; any other agentic error degrades to sliding-window
// chunks under a distinct state.
func (p *Pipeline) runChunking(ctx context.Context, jobID string, lines []chunkModel.TextLine) ([]chunkModel.Chunk, error) {
	log := p.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "jobId", jobID)

	if p.agentic == nil {
		p.tracker.Update(ctx, jobID, jobModel.NewJobUpdate().State(jobModel.StateChunkingNaive).Progress(65))
		chunks := chunking.ChunkWithOffsets(lines, p.ChunkSize, p.Overlap)
		p.tracker.Update(ctx, jobID, jobModel.NewJobUpdate().State(jobModel.StateChunkingCompleted).Progress(80))
		return chunks, nil
	}

	p.tracker.Update(ctx, jobID, jobModel.NewJobUpdate().State(jobModel.StateChunkingStarted).Progress(65))
	chunks, err := p.agentic.Chunk(ctx, lines)
	if err != nil {
		if errors.Is(err, llm.ErrPermissionDenied) {
			return nil, err
		}
		log.Warn("agentic chunking failed, falling back to sliding-window chunks", "error", err)
		p.tracker.Update(ctx, jobID, jobModel.NewJobUpdate().
			State(jobModel.StateChunkingFallback).
			Progress(75).
			Message(err.Error()))
		return chunking.ChunkWithOffsets(lines, p.ChunkSize, p.Overlap), nil
	}
	p.tracker.Update(ctx, jobID, jobModel.NewJobUpdate().State(jobModel.StateChunkingCompleted).Progress(80))
	return chunks, nil
}

// storeChunks persists every chunk under a fresh id and advances progress
// through the 85..98 band. Progress writes are throttled so a large document
// does not turn into one store write per chunk.
func (p *Pipeline) storeChunks(ctx context.Context, d jobModel.JobDescriptor, chunks []chunkModel.Chunk) ([]chunkModel.ChunkRecord, error) {
	p.tracker.Update(ctx, d.JobID, jobModel.NewJobUpdate().State(jobModel.StateStoringChunks).Progress(85))

	total := len(chunks)
	records := make([]chunkModel.ChunkRecord, 0, total)
	lastReported := 85
	now := time.Now().UTC().Format(time.RFC3339)

	for i, chunk := range chunks {
		title := chunk.Title
		if title == "" {
			title = fmt.Sprintf("Chunk %d", i+1)
		}
		summary := chunk.Summary
		if summary == "" {
			summary = title
		}
		record := chunkModel.ChunkRecord{
			ChunkID:   utils.GetNewUUID(),
			FileKey:   d.Key,
			Title:     title,
			Summary:   summary,
			Text:      chunk.Text,
			Pages:     chunk.Pages,
			UpdatedAt: now,
		}
		err := p.chunks.PutChunk(ctx, record)
		if err != nil {
			return nil, fmt.Errorf("chunk %d of %d: %w", i+1, total, err)
		}
		records = append(records, record)

		pct := 85 + int(float64(i+1)/float64(total)*13)
		if pct-lastReported >= 3 || (i+1)%10 == 0 || i+1 == total {
			p.tracker.Update(ctx, d.JobID, jobModel.NewJobUpdate().State(jobModel.StateStoringChunks).Progress(pct))
			lastReported = pct
		}
	}

	metrics.AddChunksStored(len(records))
	return records, nil
}

func (p *Pipeline) complete(ctx context.Context, jobID string, start time.Time, chunkCount int) {
	p.tracker.Update(ctx, jobID, jobModel.NewJobUpdate().
		State(jobModel.StateCompleted).
		Progress(100).
		Message("").
		Attr("chunk_count", chunkCount))
	metrics.CountJobFinished(string(jobModel.StateCompleted))
	metrics.CaptureJobMetrics("completed", time.Since(start))
}

func (p *Pipeline) fail(ctx context.Context, jobID string, start time.Time, err error) error {
	log := p.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "jobId", jobID)
	log.Error("job failed", "error", err)
	p.tracker.Update(ctx, jobID, jobModel.NewJobUpdate().
		State(jobModel.StateFailed).
		Message(err.Error()))
	metrics.CountJobFinished(string(jobModel.StateFailed))
	metrics.CaptureJobMetrics("failed", time.Since(start))
	return err
}
