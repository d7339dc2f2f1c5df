package adapter

import (
	"fmt"

	"github.com/akolanti/DocVault/internal/api"
	"github.com/akolanti/DocVault/internal/domain/chunkModel"
	"github.com/akolanti/DocVault/internal/domain/jobModel"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("jobs/%s", id),
	}
}

func ToJobStatusResponse(record jobModel.JobRecord) api.JobStatusResponse {
	return api.JobStatusResponse{
		JobID:       record.JobID,
		FileName:    record.FileName,
		FileKey:     record.FileKey,
		State:       string(record.State),
		Progress:    record.Progress,
		ChunkCount:  record.ChunkCount,
		Message:     record.Message,
		RequestedAt: record.RequestedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}

func ToChunkResponse(record chunkModel.ChunkRecord) api.ChunkResponse {
	return api.ChunkResponse{
		ChunkID:   record.ChunkID,
		FileKey:   record.FileKey,
		Title:     record.Title,
		Summary:   record.Summary,
		Text:      record.Text,
		Pages:     record.Pages,
		UpdatedAt: record.UpdatedAt,
	}
}

func ToChunkResponses(records []chunkModel.ChunkRecord) []api.ChunkResponse {
	out := make([]api.ChunkResponse, 0, len(records))
	for _, r := range records {
		out = append(out, ToChunkResponse(r))
	}
	return out
}

func BadRequest(id string, error string, code int) api.JobStatusResponse {
	return api.JobStatusResponse{
		JobID: id,
		State: string(jobModel.StateFailed),
		Error: &api.JobError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
