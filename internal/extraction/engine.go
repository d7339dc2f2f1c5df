package extraction

import (
	"context"
	"errors"
)

type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusSucceeded  Status = "SUCCEEDED"
	StatusFailed     Status = "FAILED"
)

type BlockType string

const (
	BlockLine BlockType = "LINE"
	BlockWord BlockType = "WORD"
)

// Block is one element of an OCR result page. The poller only keeps LINE
// blocks; engines may emit finer-grained types.
type Block struct {
	Type BlockType
	Text string
	Page int
}

// ResultPage is one page of an engine's paginated result set. While the job
// is still running only Status is meaningful.
type ResultPage struct {
	Status        Status
	StatusMessage string
	Blocks        []Block
	NextToken     string
}

// Engine is the boundary to the external text-detection service: submit a
// job against an object reference, then poll and page through results.
type Engine interface {
	StartTextDetection(ctx context.Context, bucket string, key string) (string, error)
	GetTextDetection(ctx context.Context, jobID string, nextToken string) (*ResultPage, error)
}

var (
	// ErrTimeout: the job did not reach a terminal status within max wait.
	ErrTimeout = errors.New("text detection polling exceeded max wait")
	// ErrFailed: the engine reported a terminal failure or rejected the submission.
	ErrFailed = errors.New("text detection failed")
)
