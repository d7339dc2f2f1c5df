package chunkModel

import "context"

// TextLine is one extracted line of document text, in source order.
type TextLine struct {
	Text string `json:"text"`
	Page int    `json:"page"`
}

// Chunk is the chunking engine's output unit. The naive chunker fills
// Start/End/Pages; the agentic chunker fills Title/Summary/LocalID.
type Chunk struct {
	Text    string
	Title   string
	Summary string
	LocalID string
	Start   int
	End     int
	Pages   []int
}

// PropositionCluster groups related propositions under a short identifier,
// title and summary, as returned by the clustering stage.
type PropositionCluster struct {
	ChunkID      string   `json:"chunk_id"`
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	Propositions []string `json:"propositions"`
}

// ChunkRecord is the persisted form of one chunk. ChunkID is generated fresh
// per write and never reused; re-processing a file appends a new disjoint set.
type ChunkRecord struct {
	ChunkID   string `json:"chunk_id"`
	FileKey   string `json:"file_key"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Text      string `json:"text"`
	Pages     []int  `json:"pages,omitempty"`
	UpdatedAt string `json:"updated_at"`
}

type ChunkStore interface {
	PutChunk(ctx context.Context, record ChunkRecord) error
	GetChunk(ctx context.Context, chunkID string) (ChunkRecord, bool)
	ListChunks(ctx context.Context, fileKey string) ([]ChunkRecord, error)
	UpdateChunk(ctx context.Context, record ChunkRecord) error
	DeleteChunks(ctx context.Context, fileKey string) error
}
