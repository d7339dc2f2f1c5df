package api

type JobStatusResponse struct {
	JobID       string    `json:"job_id" example:"8b5a3f1c"`
	FileName    string    `json:"file_name" example:"contract.pdf"`
	FileKey     string    `json:"file_key"`
	State       string    `json:"state" example:"storing_chunks"`
	Progress    int       `json:"progress" example:"85"`
	ChunkCount  int       `json:"chunk_count"`
	Message     string    `json:"message,omitempty"`
	RequestedAt string    `json:"requested_at,omitempty"`
	UpdatedAt   string    `json:"updated_at,omitempty"`
	Error       *JobError `json:"error,omitempty"`
}

type JobError struct {
	Code    int    `json:"code" example:"404"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type FileInfo struct {
	FileKey    string `json:"file_key"`
	FileName   string `json:"file_name"`
	SizeBytes  int64  `json:"size_bytes"`
	UploadedAt string `json:"uploaded_at"`
}

type ChunkResponse struct {
	ChunkID   string `json:"chunk_id"`
	FileKey   string `json:"file_key"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Text      string `json:"text"`
	Pages     []int  `json:"pages,omitempty"`
	UpdatedAt string `json:"updated_at"`
}

// requests---------------------

type ChunkEditRequest struct {
	ChunkID string `json:"chunk_id" validate:"required"`
	Title   string `json:"title,omitempty"`
	Summary string `json:"summary,omitempty"`
	Text    string `json:"text,omitempty"`
}
