package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/DocVault/internal/adapter"
	"github.com/akolanti/DocVault/internal/adapter/utils"
	"github.com/akolanti/DocVault/internal/api"
	"github.com/akolanti/DocVault/internal/config"
	"github.com/akolanti/DocVault/internal/extraction"
	"github.com/akolanti/DocVault/pkg/logger_i"
)

var logRH *logger_i.Logger

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// PostFileHandler handles the uploading of documents for chunk processing.
// @Summary      Upload a document
// @Description  Receives a file via multipart/form-data, saves it to the vault directory, and queues a processing job.
// @Tags         Files
// @Accept       multipart/form-data
// @Produce      json
// @Param        document_name  formData  string  false  "The display name of the document"
// @Param        document       formData  file    true   "The PDF, DOCX, TXT or RTF file to upload"
// @Success      202  {object}  api.InitJobResponse   "Accepted - returns job id and status URL"
// @Failure      400  {object}  api.JobStatusResponse "Bad Request - Missing fields, unsupported document type or file too large"
// @Failure      500  {object}  api.JobStatusResponse "Internal Server Error - Storage or Write Error"
// @Router       /files [post]
func PostFileHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	targetDir, errString := getTargetDirectory()
	if errString != "" {
		logRH.Error("Couldn't get target directory :", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
		return
	}

	// ParseMultipartForm only caps in-memory buffering, the reader enforces
	// the actual upload limit
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes)
	err := r.ParseMultipartForm(config.MaxUploadBytes)
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	if !extraction.SupportedDocument(fileMetadata.Filename) {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Unsupported document type")
		return
	}

	docName := r.FormValue("document_name")
	if docName == "" {
		docName = fileMetadata.Filename
	}

	fileKey := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(fileMetadata.Filename))
	destinationFileWriter, err := os.Create(filepath.Join(targetDir, fileKey))
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Storage error")
		return
	}
	defer destinationFileWriter.Close()

	if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Write error")
		return
	}

	newJob := newJobData{
		id:       utils.GetNewUUID(),
		fileKey:  fileKey,
		fileName: docName,
		traceId:  r.Context().Value(config.TRACE_ID_KEY).(string),
	}
	if err := CreateNewJob(newJob); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, newJob.id, "Could not queue job")
		return
	}
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id))
}

// GetFilesHandler godoc
// @Summary      List uploaded documents
// @Tags         Files
// @Produce      json
// @Success      200  {array}  api.FileInfo
// @Router       /files [get]
func GetFilesHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	targetDir, errString := getTargetDirectory()
	if errString != "" {
		WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
		return
	}

	entries, err := os.ReadDir(targetDir)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Storage error")
		return
	}

	files := make([]api.FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, api.FileInfo{
			FileKey:    entry.Name(),
			FileName:   displayName(entry.Name()),
			SizeBytes:  info.Size(),
			UploadedAt: info.ModTime().UTC().Format(time.RFC3339),
		})
	}
	writeJsonResponse(w, http.StatusOK, files)
}

// DeleteFileHandler godoc
// @Summary      Delete a document and its chunks
// @Tags         Files
// @Produce      json
// @Param        key  path  string  true  "File key"
// @Success      204  "Deleted"
// @Failure      404  {object}  api.JobStatusResponse "File not found"
// @Router       /files/{key} [delete]
func DeleteFileHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	fileKey := utils.GetChiURLParam(r, "key")
	if fileKey == "" || fileKey != filepath.Base(fileKey) {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Bad file key")
		return
	}

	targetDir, errString := getTargetDirectory()
	if errString != "" {
		WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
		return
	}

	err := os.Remove(filepath.Join(targetDir, fileKey))
	if err != nil {
		if os.IsNotExist(err) {
			WriteErrorResponse(w, http.StatusNotFound, fileKey, "File not found")
			return
		}
		WriteErrorResponse(w, http.StatusInternalServerError, fileKey, "Storage error")
		return
	}

	if err := handlerInstance.service.ChunkStore.DeleteChunks(r.Context(), fileKey); err != nil {
		logRH.Error("Chunk cleanup failed", "fileKey", fileKey, "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetJobStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current state and progress of a processing job.
// @Tags         Jobs
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobStatusResponse "The current status of the job"
// @Failure      404  {object}  api.JobStatusResponse "Job not found"
// @Router       /jobs/{id} [get]
func GetJobStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	idString := utils.GetChiURLParam(r, "id")
	result, isFound := validateId(idString, r.Context().Value(config.TRACE_ID_KEY).(string))

	logRH.Debug("Get Status Request:", "URL path", r.URL.Path)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToJobStatusResponse(result))
}

// GetChunksHandler godoc
// @Summary      List chunks of a document
// @Tags         Chunks
// @Produce      json
// @Param        file_key  query     string  true  "File key"
// @Success      200       {array}   api.ChunkResponse
// @Failure      400       {object}  api.JobStatusResponse "Missing file_key"
// @Router       /chunks [get]
func GetChunksHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	fileKey := r.URL.Query().Get("file_key")
	if fileKey == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "file_key is required")
		return
	}

	records, err := handlerInstance.service.ChunkStore.ListChunks(r.Context(), fileKey)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Chunk store error")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToChunkResponses(records))
}

// PutChunkHandler godoc
// @Summary      Edit a stored chunk
// @Description  Updates the title, summary or text of an existing chunk.
// @Tags         Chunks
// @Accept       json
// @Produce      json
// @Param        request  body      api.ChunkEditRequest  true  "Chunk fields to change"
// @Success      200      {object}  api.ChunkResponse
// @Failure      404      {object}  api.JobStatusResponse "Chunk not found"
// @Router       /chunks [put]
func PutChunkHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	var edit api.ChunkEditRequest
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			logRH.Error("Couldn't close the chunk edit reader :", "error", err)
		}
	}(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&edit); err != nil || edit.ChunkID == "" {
		logRH.Warn("Bad Chunk Edit Request: ", "error:", err)
		WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
		return
	}

	record, found := handlerInstance.service.ChunkStore.GetChunk(r.Context(), edit.ChunkID)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, edit.ChunkID, "Chunk not found")
		return
	}

	if edit.Title != "" {
		record.Title = edit.Title
	}
	if edit.Summary != "" {
		record.Summary = edit.Summary
	}
	if edit.Text != "" {
		record.Text = edit.Text
	}
	record.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	if err := handlerInstance.service.ChunkStore.UpdateChunk(r.Context(), record); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, edit.ChunkID, "Chunk store error")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToChunkResponse(record))
}

// displayName strips the upload timestamp prefix from a file key.
func displayName(fileKey string) string {
	if i := strings.Index(fileKey, "-"); i > 0 && i < len(fileKey)-1 {
		return fileKey[i+1:]
	}
	return fileKey
}
