package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/DocVault/internal/chunking/llm"
	"github.com/akolanti/DocVault/internal/domain/chunkModel"
	"github.com/akolanti/DocVault/internal/domain/jobModel"
	"github.com/akolanti/DocVault/internal/extraction"
	"github.com/akolanti/DocVault/internal/indexing"
	"github.com/akolanti/DocVault/pkg/logger_i"
)

type MockJobStore struct {
	mu      sync.Mutex
	Updates []map[string]string
}

func (m *MockJobStore) CreateJob(ctx context.Context, record jobModel.JobRecord) error {
	return nil
}

func (m *MockJobStore) UpdateJob(ctx context.Context, jobID string, update *jobModel.JobUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Updates = append(m.Updates, update.Fields(time.Now()))
	return nil
}

func (m *MockJobStore) GetJob(ctx context.Context, jobID string) (jobModel.JobRecord, bool) {
	return jobModel.JobRecord{}, false
}

func (m *MockJobStore) States() []jobModel.JobState {
	m.mu.Lock()
	defer m.mu.Unlock()
	var states []jobModel.JobState
	for _, fields := range m.Updates {
		if s, ok := fields[jobModel.FieldState]; ok {
			states = append(states, jobModel.JobState(s))
		}
	}
	return states
}

func (m *MockJobStore) CountState(state jobModel.JobState) int {
	count := 0
	for _, s := range m.States() {
		if s == state {
			count++
		}
	}
	return count
}

type MockChunkStore struct {
	mu         sync.Mutex
	Stored     []chunkModel.ChunkRecord
	OnPutChunk func(record chunkModel.ChunkRecord) error
}

func (m *MockChunkStore) PutChunk(ctx context.Context, record chunkModel.ChunkRecord) error {
	if m.OnPutChunk != nil {
		if err := m.OnPutChunk(record); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stored = append(m.Stored, record)
	return nil
}

func (m *MockChunkStore) GetChunk(ctx context.Context, chunkID string) (chunkModel.ChunkRecord, bool) {
	return chunkModel.ChunkRecord{}, false
}

func (m *MockChunkStore) ListChunks(ctx context.Context, fileKey string) ([]chunkModel.ChunkRecord, error) {
	return nil, nil
}

func (m *MockChunkStore) UpdateChunk(ctx context.Context, record chunkModel.ChunkRecord) error {
	return nil
}

func (m *MockChunkStore) DeleteChunks(ctx context.Context, fileKey string) error {
	return nil
}

type MockEngine struct {
	OnGet func(ctx context.Context, jobID string, nextToken string) (*extraction.ResultPage, error)
}

func (m *MockEngine) StartTextDetection(ctx context.Context, bucket string, key string) (string, error) {
	return "ocr-1", nil
}

func (m *MockEngine) GetTextDetection(ctx context.Context, jobID string, nextToken string) (*extraction.ResultPage, error) {
	if m.OnGet != nil {
		return m.OnGet(ctx, jobID, nextToken)
	}
	return &extraction.ResultPage{
		Status: extraction.StatusSucceeded,
		Blocks: []extraction.Block{
			{Type: extraction.BlockLine, Text: "first line of text", Page: 1},
			{Type: extraction.BlockLine, Text: "second line of text", Page: 2},
		},
	}, nil
}

type MockChunker struct {
	OnChunk func(ctx context.Context, lines []chunkModel.TextLine) ([]chunkModel.Chunk, error)
}

func (m *MockChunker) Chunk(ctx context.Context, lines []chunkModel.TextLine) ([]chunkModel.Chunk, error) {
	return m.OnChunk(ctx, lines)
}

type MockIndexer struct {
	Indexed int
	Err     error
}

func (m *MockIndexer) IndexChunks(ctx context.Context, records []chunkModel.ChunkRecord) error {
	m.Indexed += len(records)
	return m.Err
}

func newTestPipeline(jobs jobModel.JobStore, chunks chunkModel.ChunkStore, engine extraction.Engine, agentic Chunker, mockIndexer *MockIndexer) *Pipeline {
	poller := extraction.NewPoller(engine)
	poller.PollInterval = time.Millisecond
	poller.MaxWait = time.Second
	var indexer indexing.Indexer
	if mockIndexer != nil {
		indexer = mockIndexer
	}
	p := NewPipeline(jobs, chunks, poller, agentic, indexer)
	p.logger = logger_i.NewLogger("test pipeline")
	return p
}

func descriptor() jobModel.JobDescriptor {
	return jobModel.JobDescriptor{
		JobID:       "job-1",
		Bucket:      "vault",
		Key:         "170000-doc.pdf",
		FileName:    "doc.pdf",
		RequestedAt: time.Now(),
		TraceID:     "trace-1",
	}
}

func TestPipeline_SuccessfulNaiveRun(t *testing.T) {
	jobs := &MockJobStore{}
	chunks := &MockChunkStore{}
	p := newTestPipeline(jobs, chunks, &MockEngine{}, nil, nil)

	if err := p.Process(context.Background(), descriptor()); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	states := jobs.States()
	if len(states) == 0 {
		t.Fatal("No state updates recorded")
	}
	if states[0] != jobModel.StateReceived {
		t.Errorf("First state = %s, want received", states[0])
	}
	if states[len(states)-1] != jobModel.StateCompleted {
		t.Errorf("Last state = %s, want completed", states[len(states)-1])
	}
	for i := 1; i < len(states); i++ {
		if states[i] == states[i-1] && states[i] == jobModel.StateStoringChunks {
			continue
		}
		if !jobModel.CanTransition(states[i-1], states[i]) {
			t.Errorf("Illegal transition %s -> %s", states[i-1], states[i])
		}
	}
	if jobs.CountState(jobModel.StateChunkingNaive) != 1 {
		t.Errorf("Expected the naive chunking state, got sequence %v", states)
	}

	if len(chunks.Stored) == 0 {
		t.Fatal("No chunks stored")
	}
	for i, record := range chunks.Stored {
		if record.ChunkID == "" {
			t.Errorf("Chunk %d has no id", i)
		}
		if record.FileKey != "170000-doc.pdf" {
			t.Errorf("Chunk %d file key = %q", i, record.FileKey)
		}
		if record.Title == "" || record.Summary == "" {
			t.Errorf("Chunk %d missing title defaults: %+v", i, record)
		}
	}
}

func TestPipeline_ProgressThrottling(t *testing.T) {
	jobs := &MockJobStore{}
	chunks := &MockChunkStore{}
	agentic := &MockChunker{
		OnChunk: func(ctx context.Context, lines []chunkModel.TextLine) ([]chunkModel.Chunk, error) {
			out := make([]chunkModel.Chunk, 100)
			for i := range out {
				out[i] = chunkModel.Chunk{Text: fmt.Sprintf("chunk %d", i), Title: fmt.Sprintf("T%d", i)}
			}
			return out, nil
		},
	}
	p := newTestPipeline(jobs, chunks, &MockEngine{}, agentic, nil)

	if err := p.Process(context.Background(), descriptor()); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if len(chunks.Stored) != 100 {
		t.Fatalf("Expected 100 stored chunks, got %d", len(chunks.Stored))
	}
	storingUpdates := jobs.CountState(jobModel.StateStoringChunks)
	if storingUpdates >= 50 {
		t.Errorf("Progress writes not throttled: %d updates for 100 chunks", storingUpdates)
	}
	if storingUpdates < 5 {
		t.Errorf("Suspiciously few progress updates: %d", storingUpdates)
	}

	// the final chunk always reports
	last := jobs.Updates[len(jobs.Updates)-1]
	if last[jobModel.FieldState] != string(jobModel.StateCompleted) || last[jobModel.FieldProgress] != "100" {
		t.Errorf("Final update = %v", last)
	}
}

func TestPipeline_ExtractionFailureMarksJobFailed(t *testing.T) {
	jobs := &MockJobStore{}
	engine := &MockEngine{
		OnGet: func(ctx context.Context, jobID string, nextToken string) (*extraction.ResultPage, error) {
			return &extraction.ResultPage{Status: extraction.StatusFailed, StatusMessage: "bad scan"}, nil
		},
	}
	p := newTestPipeline(jobs, &MockChunkStore{}, engine, nil, nil)

	err := p.Process(context.Background(), descriptor())
	if err == nil {
		t.Fatal("Expected Process to return the failure")
	}

	states := jobs.States()
	if states[len(states)-1] != jobModel.StateFailed {
		t.Errorf("Last state = %s, want failed", states[len(states)-1])
	}
	last := jobs.Updates[len(jobs.Updates)-1]
	if !strings.Contains(last[jobModel.FieldMessage], "bad scan") {
		t.Errorf("Failure message lost: %v", last)
	}
}

func TestPipeline_PermissionDeniedFailsJob(t *testing.T) {
	jobs := &MockJobStore{}
	chunks := &MockChunkStore{}
	agentic := &MockChunker{
		OnChunk: func(ctx context.Context, lines []chunkModel.TextLine) ([]chunkModel.Chunk, error) {
			return nil, fmt.Errorf("%w: no model access", llm.ErrPermissionDenied)
		},
	}
	p := newTestPipeline(jobs, chunks, &MockEngine{}, agentic, nil)

	err := p.Process(context.Background(), descriptor())
	if !errors.Is(err, llm.ErrPermissionDenied) {
		t.Fatalf("Process error = %v, want the permission sentinel", err)
	}

	states := jobs.States()
	if states[len(states)-1] != jobModel.StateFailed {
		t.Errorf("Last state = %s, want failed", states[len(states)-1])
	}
	if jobs.CountState(jobModel.StateChunkingFallback) != 0 {
		t.Errorf("Access denial must not fall back: %v", states)
	}
	if len(chunks.Stored) != 0 {
		t.Errorf("Expected no chunks after access denial, got %d", len(chunks.Stored))
	}
}

func TestPipeline_ChunkerErrorFallsBackToNaive(t *testing.T) {
	jobs := &MockJobStore{}
	chunks := &MockChunkStore{}
	agentic := &MockChunker{
		OnChunk: func(ctx context.Context, lines []chunkModel.TextLine) ([]chunkModel.Chunk, error) {
			return nil, errors.New("boom")
		},
	}
	p := newTestPipeline(jobs, chunks, &MockEngine{}, agentic, nil)

	if err := p.Process(context.Background(), descriptor()); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if jobs.CountState(jobModel.StateChunkingFallback) != 1 {
		t.Errorf("Fallback state missing from %v", jobs.States())
	}
	if jobs.CountState(jobModel.StateCompleted) != 1 {
		t.Errorf("Job did not complete after fallback: %v", jobs.States())
	}
	if len(chunks.Stored) == 0 {
		t.Error("Fallback produced no chunks")
	}
}

func TestPipeline_ChunkStoreFailureFailsJob(t *testing.T) {
	jobs := &MockJobStore{}
	chunks := &MockChunkStore{
		OnPutChunk: func(record chunkModel.ChunkRecord) error {
			return errors.New("store down")
		},
	}
	p := newTestPipeline(jobs, chunks, &MockEngine{}, nil, nil)

	if err := p.Process(context.Background(), descriptor()); err == nil {
		t.Fatal("Expected Process to fail")
	}
	states := jobs.States()
	if states[len(states)-1] != jobModel.StateFailed {
		t.Errorf("Last state = %s, want failed", states[len(states)-1])
	}
}

func TestPipeline_EmptyDocumentCompletesWithZeroChunks(t *testing.T) {
	jobs := &MockJobStore{}
	chunks := &MockChunkStore{}
	engine := &MockEngine{
		OnGet: func(ctx context.Context, jobID string, nextToken string) (*extraction.ResultPage, error) {
			return &extraction.ResultPage{Status: extraction.StatusSucceeded}, nil
		},
	}
	p := newTestPipeline(jobs, chunks, engine, nil, nil)

	if err := p.Process(context.Background(), descriptor()); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(chunks.Stored) != 0 {
		t.Errorf("Expected no chunks, got %d", len(chunks.Stored))
	}
	last := jobs.Updates[len(jobs.Updates)-1]
	if last[jobModel.FieldState] != string(jobModel.StateCompleted) || last["chunk_count"] != "0" {
		t.Errorf("Final update = %v", last)
	}
}

func TestPipeline_IndexerFailureDoesNotFailJob(t *testing.T) {
	jobs := &MockJobStore{}
	chunks := &MockChunkStore{}
	indexer := &MockIndexer{Err: errors.New("vector store offline")}
	p := newTestPipeline(jobs, chunks, &MockEngine{}, nil, indexer)

	if err := p.Process(context.Background(), descriptor()); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if indexer.Indexed == 0 {
		t.Error("Indexer never received chunks")
	}
	states := jobs.States()
	if states[len(states)-1] != jobModel.StateCompleted {
		t.Errorf("Last state = %s, want completed", states[len(states)-1])
	}
}
