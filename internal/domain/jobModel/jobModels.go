package jobModel

import (
	"context"
	"strconv"
	"time"

	"github.com/akolanti/DocVault/internal/config"
)

type JobState string

const (
	StateQueued              JobState = "queued"
	StateReceived            JobState = "received"
	StateProcessing          JobState = "processing"
	StateExtractionStarted   JobState = "extraction_started"
	StateExtractionPolling   JobState = "extraction_polling"
	StateExtractionSucceeded JobState = "extraction_succeeded"
	StateChunkingStarted     JobState = "chunking_started"
	StateChunkingNaive       JobState = "chunking_started_naive"
	StateChunkingCompleted   JobState = "chunking_completed"
	StateChunkingFallback    JobState = "chunking_fallback_naive"
	StateStoringChunks       JobState = "storing_chunks"
	StateCompleted           JobState = "completed"
	StateFailed              JobState = "failed"
)

// transitions holds the expected forward edges. failed is reachable from every
// non-terminal state and is handled in CanTransition rather than listed per state.
var transitions = map[JobState][]JobState{
	StateQueued:              {StateReceived},
	StateReceived:            {StateProcessing},
	StateProcessing:          {StateExtractionStarted},
	StateExtractionStarted:   {StateExtractionPolling, StateExtractionSucceeded},
	StateExtractionPolling:   {StateExtractionPolling, StateExtractionSucceeded},
	StateExtractionSucceeded: {StateChunkingStarted, StateChunkingNaive},
	StateChunkingStarted:     {StateChunkingCompleted, StateChunkingFallback},
	StateChunkingNaive:       {StateChunkingCompleted},
	StateChunkingCompleted:   {StateStoringChunks},
	StateChunkingFallback:    {StateStoringChunks},
	StateStoringChunks:       {StateStoringChunks, StateCompleted},
	StateCompleted:           {},
	StateFailed:              {},
}

func (s JobState) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

func CanTransition(from, to JobState) bool {
	if to == StateFailed {
		return !from.Terminal()
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// JobRecord is the persisted state/progress record for one processing job.
// State stays a plain string in the store so external readers are unaffected.
type JobRecord struct {
	JobID       string   `json:"job_id"`
	FileKey     string   `json:"file_key"`
	FileName    string   `json:"file_name"`
	State       JobState `json:"state"`
	Progress    int      `json:"progress"`
	Message     string   `json:"message,omitempty"`
	ChunkCount  int      `json:"chunk_count"`
	OCRJobID    string   `json:"ocr_job_id,omitempty"`
	RequestedAt string   `json:"requested_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// JobDescriptor is the queue message: one per processing request.
type JobDescriptor struct {
	JobID       string    `json:"job_id"`
	Bucket      string    `json:"bucket"`
	Key         string    `json:"key"`
	FileName    string    `json:"file_name"`
	RequestedAt time.Time `json:"requested_at"`
	TraceID     string    `json:"trace_id"`
	Attempt     int       `json:"attempt"`
}

// Heartbeat is the progress callback payload emitted by long-running steps.
// Progress < 0 means "leave progress untouched".
type Heartbeat struct {
	State    JobState
	Progress int
	Attrs    map[string]any
}

type HeartbeatFunc func(Heartbeat)

// Reserved field names, never settable through Attr.
const (
	FieldState     = "state"
	FieldProgress  = "progress"
	FieldMessage   = "message"
	FieldUpdatedAt = "updated_at"
)

// JobUpdate accumulates a best-effort partial update and renders it into the
// store's native partial-update form (a field->value map for a hash write).
// Missing fields are left untouched in the record; updated_at is always stamped.
type JobUpdate struct {
	fields map[string]string
}

func NewJobUpdate() *JobUpdate {
	return &JobUpdate{fields: make(map[string]string)}
}

func (u *JobUpdate) State(s JobState) *JobUpdate {
	u.fields[FieldState] = string(s)
	return u
}

func (u *JobUpdate) Progress(p int) *JobUpdate {
	if p >= 0 {
		u.fields[FieldProgress] = strconv.Itoa(p)
	}
	return u
}

func (u *JobUpdate) Message(m string) *JobUpdate {
	if len(m) > config.JobMessageMaxLen {
		m = m[:config.JobMessageMaxLen]
	}
	u.fields[FieldMessage] = m
	return u
}

// Attr sets an extra attribute unless it collides with a reserved field.
func (u *JobUpdate) Attr(key string, value any) *JobUpdate {
	switch key {
	case FieldState, FieldProgress, FieldMessage, FieldUpdatedAt:
		return u
	}
	switch v := value.(type) {
	case string:
		u.fields[key] = v
	case int:
		u.fields[key] = strconv.Itoa(v)
	case int64:
		u.fields[key] = strconv.FormatInt(v, 10)
	case bool:
		u.fields[key] = strconv.FormatBool(v)
	default:
		return u
	}
	return u
}

func (u *JobUpdate) Attrs(attrs map[string]any) *JobUpdate {
	for k, v := range attrs {
		u.Attr(k, v)
	}
	return u
}

func (u *JobUpdate) Empty() bool {
	return len(u.fields) == 0
}

// Fields renders the update, stamping updated_at.
func (u *JobUpdate) Fields(now time.Time) map[string]string {
	out := make(map[string]string, len(u.fields)+1)
	for k, v := range u.fields {
		out[k] = v
	}
	out[FieldUpdatedAt] = now.UTC().Format(time.RFC3339)
	return out
}

// FieldsOf renders a full record the same way an accumulated update would be,
// so create and partial update share one storage shape.
func FieldsOf(r JobRecord) map[string]string {
	return map[string]string{
		"job_id":       r.JobID,
		"file_key":     r.FileKey,
		"file_name":    r.FileName,
		FieldState:     string(r.State),
		FieldProgress:  strconv.Itoa(r.Progress),
		FieldMessage:   r.Message,
		"chunk_count":  strconv.Itoa(r.ChunkCount),
		"ocr_job_id":   r.OCRJobID,
		"requested_at": r.RequestedAt,
		FieldUpdatedAt: r.UpdatedAt,
	}
}

// RecordFromFields is the inverse of FieldsOf for reads; unknown extra
// attributes written via Attr are simply not surfaced on the record.
func RecordFromFields(fields map[string]string) JobRecord {
	progress, _ := strconv.Atoi(fields[FieldProgress])
	chunkCount, _ := strconv.Atoi(fields["chunk_count"])
	return JobRecord{
		JobID:       fields["job_id"],
		FileKey:     fields["file_key"],
		FileName:    fields["file_name"],
		State:       JobState(fields[FieldState]),
		Progress:    progress,
		Message:     fields[FieldMessage],
		ChunkCount:  chunkCount,
		OCRJobID:    fields["ocr_job_id"],
		RequestedAt: fields["requested_at"],
		UpdatedAt:   fields[FieldUpdatedAt],
	}
}

type JobStore interface {
	CreateJob(ctx context.Context, record JobRecord) error
	UpdateJob(ctx context.Context, jobID string, update *JobUpdate) error
	GetJob(ctx context.Context, jobID string) (JobRecord, bool)
}
