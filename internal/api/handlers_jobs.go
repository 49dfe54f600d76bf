package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/docpart/internal/partition"
	"github.com/dgallion1/docpart/internal/pipeline"
)

// handleSubmitJob queues an upload for asynchronous partitioning and
// responds 202 with a poll URL.
func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()
	filename := sanitizeFilename(header.Filename)

	strategy := r.FormValue("strategy")
	if strategy == "" {
		strategy = "auto"
	}
	if _, err := partition.ForStrategy(strategy); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	opts, err := s.optionsFromForm(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	now := time.Now()
	job := &pipeline.Job{
		ID:        pipeline.NewULID(),
		Filename:  filename,
		Strategy:  strategy,
		Status:    pipeline.StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	job.SetFileData(data)
	job.SetOptions(opts)

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/jobs/%s", job.ID),
	})
}

// handleJobStatus reports a job snapshot, including elements once the
// job completed.
func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}
