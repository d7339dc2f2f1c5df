package extraction

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSupportedDocument(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"doc.pdf", true},
		{"doc.PDF", true},
		{"doc.docx", true},
		{"notes.txt", true},
		{"letter.rtf", true},
		{"image.png", false},
		{"archive.zip", false},
		{"noextension", false},
	}
	for _, tt := range tests {
		if got := SupportedDocument(tt.path); got != tt.want {
			t.Errorf("SupportedDocument(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestPageBlocks(t *testing.T) {
	blocks := pageBlocks("first line\n\n  second line  \n", 3)
	if len(blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Text != "first line" || blocks[0].Page != 3 || blocks[0].Type != BlockLine {
		t.Errorf("Unexpected block %+v", blocks[0])
	}
	if blocks[1].Text != "second line" {
		t.Errorf("Lines not trimmed: %+v", blocks[1])
	}
}

func TestLocalEngine_RejectsUnsupportedType(t *testing.T) {
	engine := NewLocalEngine()
	_, err := engine.StartTextDetection(context.Background(), t.TempDir(), "image.png")
	if err == nil {
		t.Fatal("Expected unsupported type error")
	}
}

func TestLocalEngine_UnknownJob(t *testing.T) {
	engine := NewLocalEngine()
	_, err := engine.GetTextDetection(context.Background(), "ghost", "")
	if err == nil {
		t.Fatal("Expected unknown job error")
	}
}

func awaitTerminal(t *testing.T, engine *LocalEngine, jobID string) *ResultPage {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		page, err := engine.GetTextDetection(context.Background(), jobID, "")
		if err != nil {
			t.Fatalf("GetTextDetection failed: %v", err)
		}
		if page.Status != StatusInProgress {
			return page
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("Job never reached a terminal status")
	return nil
}

func TestLocalEngine_TextFileLifecycle(t *testing.T) {
	dir := t.TempDir()
	content := "line one\nline two\nline three\n"
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	engine := NewLocalEngine()
	jobID, err := engine.StartTextDetection(context.Background(), dir, "notes.txt")
	if err != nil {
		t.Fatalf("StartTextDetection failed: %v", err)
	}

	page := awaitTerminal(t, engine, jobID)
	if page.Status != StatusSucceeded {
		t.Fatalf("Job status = %s (%s)", page.Status, page.StatusMessage)
	}
	if len(page.Blocks) != 3 {
		t.Fatalf("Expected 3 line blocks, got %d", len(page.Blocks))
	}
	if page.Blocks[0].Text != "line one" || page.Blocks[0].Page != 1 {
		t.Errorf("Unexpected first block %+v", page.Blocks[0])
	}
	if page.NextToken != "" {
		t.Errorf("Small result should fit in one page, got token %q", page.NextToken)
	}
}

func TestLocalEngine_MissingFileFails(t *testing.T) {
	engine := NewLocalEngine()
	jobID, err := engine.StartTextDetection(context.Background(), t.TempDir(), "missing.txt")
	if err != nil {
		t.Fatalf("StartTextDetection failed: %v", err)
	}

	page := awaitTerminal(t, engine, jobID)
	if page.Status != StatusFailed {
		t.Fatalf("Expected FAILED for missing file, got %s", page.Status)
	}
	if page.StatusMessage == "" {
		t.Error("Failure must carry a status message")
	}
}

func TestLocalEngine_Pagination(t *testing.T) {
	dir := t.TempDir()
	var contents []byte
	for i := 0; i < 7; i++ {
		contents = append(contents, []byte(fmt.Sprintf("line %d\n", i))...)
	}
	if err := os.WriteFile(filepath.Join(dir, "long.txt"), contents, 0o600); err != nil {
		t.Fatal(err)
	}

	engine := NewLocalEngine()
	engine.PageSize = 3
	jobID, err := engine.StartTextDetection(context.Background(), dir, "long.txt")
	if err != nil {
		t.Fatalf("StartTextDetection failed: %v", err)
	}
	awaitTerminal(t, engine, jobID)

	var all []Block
	token := ""
	pages := 0
	for {
		page, err := engine.GetTextDetection(context.Background(), jobID, token)
		if err != nil {
			t.Fatalf("GetTextDetection failed: %v", err)
		}
		all = append(all, page.Blocks...)
		pages++
		if page.NextToken == "" {
			break
		}
		token = page.NextToken
	}

	if pages != 3 {
		t.Errorf("Expected 3 result pages for 7 blocks at size 3, got %d", pages)
	}
	if len(all) != 7 {
		t.Errorf("Pagination lost blocks: got %d", len(all))
	}
	for i, b := range all {
		if b.Text != fmt.Sprintf("line %d", i) {
			t.Errorf("Block %d out of order: %q", i, b.Text)
		}
	}

	t.Run("Bad token", func(t *testing.T) {
		if _, err := engine.GetTextDetection(context.Background(), jobID, "nonsense"); err == nil {
			t.Error("Expected error for malformed token")
		}
	})
}
