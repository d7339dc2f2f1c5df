package chunking

import (
	"reflect"
	"testing"

	"github.com/akolanti/DocVault/internal/domain/chunkModel"
)

func TestChunkWithOffsets_Basic(t *testing.T) {

	t.Run("No lines", func(t *testing.T) {
		chunks := ChunkWithOffsets(nil, 100, 10)
		if len(chunks) != 0 {
			t.Errorf("Expected no chunks, got %d", len(chunks))
		}
	})

	t.Run("Single short line", func(t *testing.T) {
		lines := []chunkModel.TextLine{{Text: "hello world", Page: 1}}
		chunks := ChunkWithOffsets(lines, 100, 10)
		if len(chunks) != 1 {
			t.Fatalf("Expected 1 chunk, got %d", len(chunks))
		}
		c := chunks[0]
		if c.Text != "hello world" || c.Start != 0 || c.End != 11 {
			t.Errorf("Unexpected chunk %+v", c)
		}
		if !reflect.DeepEqual(c.Pages, []int{1}) {
			t.Errorf("Expected pages [1], got %v", c.Pages)
		}
	})

	t.Run("Lines merge with single space and collect pages", func(t *testing.T) {
		lines := []chunkModel.TextLine{
			{Text: "hello", Page: 1},
			{Text: "world", Page: 2},
		}
		chunks := ChunkWithOffsets(lines, 100, 10)
		if len(chunks) != 1 {
			t.Fatalf("Expected 1 chunk, got %d", len(chunks))
		}
		if chunks[0].Text != "hello world" {
			t.Errorf("Got text %q", chunks[0].Text)
		}
		if !reflect.DeepEqual(chunks[0].Pages, []int{1, 2}) {
			t.Errorf("Expected pages [1 2], got %v", chunks[0].Pages)
		}
	})

	t.Run("Missing page defaults to 1", func(t *testing.T) {
		lines := []chunkModel.TextLine{{Text: "hello", Page: 0}}
		chunks := ChunkWithOffsets(lines, 100, 10)
		if !reflect.DeepEqual(chunks[0].Pages, []int{1}) {
			t.Errorf("Expected pages [1], got %v", chunks[0].Pages)
		}
	})
}

func TestChunkWithOffsets_SplitAndOverlap(t *testing.T) {
	lines := []chunkModel.TextLine{
		{Text: "aaaaaaaaaa", Page: 1},
		{Text: "bbbbbbbbbb", Page: 1},
		{Text: "cccccccccc", Page: 2},
	}
	chunks := ChunkWithOffsets(lines, 22, 4)

	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d: %+v", len(chunks), chunks)
	}

	first := chunks[0]
	if first.Text != "aaaaaaaaaa bbbbbbbbbb" {
		t.Errorf("First chunk text = %q", first.Text)
	}
	if first.Start != 0 || first.End != 21 {
		t.Errorf("First chunk offsets = [%d, %d], want [0, 21]", first.Start, first.End)
	}
	if !reflect.DeepEqual(first.Pages, []int{1}) {
		t.Errorf("First chunk pages = %v", first.Pages)
	}

	second := chunks[1]
	if second.Text != "bbbb cccccccccc" {
		t.Errorf("Second chunk text = %q, overlap was not carried over", second.Text)
	}
	// the carried overlap is counted in both chunks, so the second chunk
	// starts before the first one ends
	if second.Start != 17 || second.End != 32 {
		t.Errorf("Second chunk offsets = [%d, %d], want [17, 32]", second.Start, second.End)
	}
	if second.Start >= first.End {
		t.Errorf("Expected overlapping offsets, got first end %d, second start %d", first.End, second.Start)
	}
	if !reflect.DeepEqual(second.Pages, []int{2}) {
		t.Errorf("Second chunk pages = %v, page set must reset on split", second.Pages)
	}
}

func TestChunkWithOffsets_OverlapLargerThanBuffer(t *testing.T) {
	lines := []chunkModel.TextLine{
		{Text: "aaaa", Page: 1},
		{Text: "bbbb", Page: 1},
	}
	chunks := ChunkWithOffsets(lines, 8, 100)

	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Text != "aaaa" {
		t.Errorf("First chunk text = %q", chunks[0].Text)
	}
	// the whole buffer is carried when overlap exceeds it
	if chunks[1].Text != "aaaa bbbb" {
		t.Errorf("Second chunk text = %q", chunks[1].Text)
	}
	if chunks[1].Start != 0 || chunks[1].End != 9 {
		t.Errorf("Second chunk offsets = [%d, %d], want [0, 9]", chunks[1].Start, chunks[1].End)
	}
}

func TestChunkWithOffsets_LineLongerThanChunkSize(t *testing.T) {
	long := "cccccccccccccccccccccccccccccc" //30 chars
	lines := []chunkModel.TextLine{{Text: long, Page: 1}}
	chunks := ChunkWithOffsets(lines, 10, 2)

	// the empty buffer is closed first, then the oversized line becomes its
	// own chunk
	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Text != "" {
		t.Errorf("First chunk text = %q, want empty", chunks[0].Text)
	}
	if chunks[1].Text != long || chunks[1].Start != 0 || chunks[1].End != 30 {
		t.Errorf("Second chunk = %+v", chunks[1])
	}
}

func TestChunkWithOffsets_Deterministic(t *testing.T) {
	lines := []chunkModel.TextLine{
		{Text: "the quick brown fox", Page: 1},
		{Text: "jumps over the lazy dog", Page: 1},
		{Text: "and keeps on running", Page: 2},
		{Text: "until the end of the page", Page: 3},
	}
	a := ChunkWithOffsets(lines, 40, 5)
	b := ChunkWithOffsets(lines, 40, 5)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Same input produced different chunks:\n%+v\n%+v", a, b)
	}
}
