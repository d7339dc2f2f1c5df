package extraction

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/akolanti/DocVault/internal/adapter/utils"
	"github.com/akolanti/DocVault/internal/config"
	"github.com/akolanti/DocVault/pkg/logger_i"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

// LocalEngine runs text extraction in-process but keeps the asynchronous
// submit/poll/paginate contract, so the poller treats it exactly like a
// remote OCR service and a remote engine can drop in behind the interface.
type LocalEngine struct {
	mu          sync.Mutex
	jobs        map[string]*localJob
	logger      *logger_i.Logger
	PageTimeout time.Duration
	PageSize    int
}

type localJob struct {
	status  Status
	message string
	blocks  []Block
}

func NewLocalEngine() *LocalEngine {
	return &LocalEngine{
		jobs:        make(map[string]*localJob),
		logger:      logger_i.NewLogger("Local OCR Engine"),
		PageTimeout: config.OCRPageExtractTimeout,
		PageSize:    config.OCRResultPageSize,
	}
}

func (e *LocalEngine) StartTextDetection(ctx context.Context, bucket string, key string) (string, error) {
	path := filepath.Join(bucket, key)
	if !SupportedDocument(path) {
		return "", fmt.Errorf("unsupported document type: %s", filepath.Ext(path))
	}

	jobID := utils.GetNewUUID()
	e.mu.Lock()
	e.jobs[jobID] = &localJob{status: StatusInProgress}
	e.mu.Unlock()

	e.logger.Debug("starting local text detection", "ocrJobId", jobID, "path", path)
	go e.run(jobID, path)
	return jobID, nil
}

func (e *LocalEngine) GetTextDetection(ctx context.Context, jobID string, nextToken string) (*ResultPage, error) {
	e.mu.Lock()
	job, found := e.jobs[jobID]
	e.mu.Unlock()
	if !found {
		return nil, fmt.Errorf("unknown text detection job: %s", jobID)
	}

	if job.status != StatusSucceeded {
		return &ResultPage{Status: job.status, StatusMessage: job.message}, nil
	}

	offset := 0
	if nextToken != "" {
		parsed, err := strconv.Atoi(nextToken)
		if err != nil || parsed < 0 || parsed > len(job.blocks) {
			return nil, fmt.Errorf("bad result token: %q", nextToken)
		}
		offset = parsed
	}

	end := offset + e.PageSize
	token := ""
	if end < len(job.blocks) {
		token = strconv.Itoa(end)
	} else {
		end = len(job.blocks)
	}
	return &ResultPage{
		Status:    StatusSucceeded,
		Blocks:    job.blocks[offset:end],
		NextToken: token,
	}, nil
}

func (e *LocalEngine) run(jobID string, path string) {
	blocks, err := e.extract(path)

	e.mu.Lock()
	defer e.mu.Unlock()
	job := e.jobs[jobID]
	if err != nil {
		e.logger.Error("local extraction failed", "ocrJobId", jobID, "error", err)
		job.status = StatusFailed
		job.message = err.Error()
		return
	}
	job.status = StatusSucceeded
	job.blocks = blocks
}

func (e *LocalEngine) extract(path string) ([]Block, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return e.extractPDF(path)
	case ".docx", ".txt", ".rtf":
		return extractFlat(path)
	default:
		return nil, fmt.Errorf("unsupported document type: %s", filepath.Ext(path))
	}
}

func (e *LocalEngine) extractPDF(path string) ([]Block, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var blocks []Block
	numPages := f.NumPage()
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := e.guardedPageText(page)
		if err != nil {
			// keep going, a single bad page should not sink the document
			e.logger.Error("error parsing page content", "page", i, "error", err)
			continue
		}
		blocks = append(blocks, pageBlocks(content, i)...)
	}
	return blocks, nil
}

// guardedPageText runs GetPlainText behind a timeout; the parser can hang on
// malformed content streams.
func (e *LocalEngine) guardedPageText(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(e.PageTimeout):
		return "", errors.New("page extraction timeout")
	}
}

// extractFlat reads docx/txt/rtf; these formats carry no page info so
// everything lands on page 1.
func extractFlat(path string) ([]Block, error) {
	text, err := cat.File(path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract document: %w", err)
	}
	return pageBlocks(text, 1), nil
}

func pageBlocks(content string, page int) []Block {
	var blocks []Block
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		blocks = append(blocks, Block{Type: BlockLine, Text: line, Page: page})
	}
	return blocks
}

// SupportedDocument reports whether the file name carries one of the
// extensions the engines can extract text from.
func SupportedDocument(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".docx", ".txt", ".rtf":
		return true
	}
	return false
}
