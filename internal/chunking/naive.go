package chunking

import (
	"sort"
	"strings"

	"github.com/akolanti/DocVault/internal/domain/chunkModel"
)

// ChunkWithOffsets is the deterministic sliding-window chunker. Lines are
// joined with single spaces into a running buffer; when appending a line
// would push the buffer past chunkSize the buffer is closed as a chunk and
// the last `overlap` characters are carried into the next one.
//
// Start/End index a conceptual concatenation of the chunk texts, not the
// source document: carried overlap text is counted twice on purpose. Kept
// exactly as-is because downstream readers depend on the scheme.
func ChunkWithOffsets(lines []chunkModel.TextLine, chunkSize int, overlap int) []chunkModel.Chunk {
	var chunks []chunkModel.Chunk

	current := ""
	pages := make(map[int]bool)
	charCount := 0

	for _, line := range lines {
		text := line.Text
		page := line.Page
		if page <= 0 {
			page = 1
		}

		if len(current)+len(text)+1 > chunkSize {
			end := charCount + len(current)
			chunks = append(chunks, chunkModel.Chunk{
				Text:  strings.TrimSpace(current),
				Start: charCount,
				End:   end,
				Pages: sortedPages(pages),
			})

			overlapText := ""
			if overlap > 0 {
				if overlap < len(current) {
					overlapText = current[len(current)-overlap:]
				} else {
					overlapText = current
				}
			}
			current = strings.TrimSpace(overlapText + " " + text)
			pages = map[int]bool{page: true}
			charCount = end - len(overlapText)
		} else {
			current = strings.TrimSpace(current + " " + text)
			pages[page] = true
		}
	}

	if current != "" {
		end := charCount + len(current)
		chunks = append(chunks, chunkModel.Chunk{
			Text:  strings.TrimSpace(current),
			Start: charCount,
			End:   end,
			Pages: sortedPages(pages),
		})
	}
	return chunks
}

func sortedPages(pages map[int]bool) []int {
	out := make([]int, 0, len(pages))
	for p := range pages {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}
