package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/DocVault/internal/domain/jobModel"
	"github.com/akolanti/DocVault/internal/job"
)

// MockProcessor to track job executions
type MockProcessor struct {
	mu        sync.Mutex
	Attempts  []int
	OnProcess func(ctx context.Context, d jobModel.JobDescriptor) error
	count     int32
}

func (m *MockProcessor) Process(ctx context.Context, d jobModel.JobDescriptor) error {
	m.mu.Lock()
	m.Attempts = append(m.Attempts, d.Attempt)
	m.mu.Unlock()
	atomic.AddInt32(&m.count, 1)
	if m.OnProcess != nil {
		return m.OnProcess(ctx, d)
	}
	return nil
}

func (m *MockProcessor) Count() int32 {
	return atomic.LoadInt32(&m.count)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestWorkerPool_Flow(t *testing.T) {
	// 1. Setup
	jobSvc := &job.Service{
		JobChannel:        make(chan jobModel.JobDescriptor, 10),
		DispatcherChannel: make(chan bool, 10),
	}
	mockProcessor := &MockProcessor{}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	InitServices(jobSvc, mockProcessor)
	InitWorkerPool(stopChan, wg)

	// Reset global state for test
	atomic.StoreInt64(&currentWorkerCount, 0)

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		jobSvc.DispatcherChannel <- true

		if !waitFor(t, time.Second, func() bool {
			return atomic.LoadInt64(&currentWorkerCount) >= 1
		}) {
			t.Errorf("Expected at least 1 worker, got %d", atomic.LoadInt64(&currentWorkerCount))
		}
	})

	t.Run("Worker processes a job", func(t *testing.T) {
		jobSvc.JobChannel <- jobModel.JobDescriptor{JobID: "test-1", TraceID: "trace-1"}

		if !waitFor(t, time.Second, func() bool {
			return mockProcessor.Count() >= 1
		}) {
			t.Errorf("Job was never processed")
		}
	})

	t.Run("Failed job is redelivered then dead-lettered", func(t *testing.T) {
		before := mockProcessor.Count()
		mockProcessor.OnProcess = func(ctx context.Context, d jobModel.JobDescriptor) error {
			return context.DeadlineExceeded
		}
		defer func() { mockProcessor.OnProcess = nil }()

		jobSvc.JobChannel <- jobModel.JobDescriptor{JobID: "doomed", TraceID: "trace-2", Attempt: 0}

		// attempts 0, 1 and 2 run, then the descriptor is dropped
		if !waitFor(t, 2*time.Second, func() bool {
			return mockProcessor.Count() >= before+3
		}) {
			t.Fatalf("Expected 3 delivery attempts, got %d", mockProcessor.Count()-before)
		}

		time.Sleep(50 * time.Millisecond)
		if got := mockProcessor.Count() - before; got != 3 {
			t.Errorf("Expected exactly 3 delivery attempts, got %d", got)
		}

		mockProcessor.mu.Lock()
		attempts := mockProcessor.Attempts[len(mockProcessor.Attempts)-3:]
		mockProcessor.mu.Unlock()
		for i, want := range []int{0, 1, 2} {
			if attempts[i] != want {
				t.Errorf("Delivery %d ran with attempt %d, want %d", i, attempts[i], want)
			}
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		close(stopChan)

		if !waitFor(t, time.Second, func() bool {
			return atomic.LoadInt64(&currentWorkerCount) <= 0
		}) {
			t.Errorf("Workers still active after stop: %d", atomic.LoadInt64(&currentWorkerCount))
		}
	})
}
