package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/docpart/internal/element"
	"github.com/dgallion1/docpart/internal/partition"
)

func (s *Server) handlePartition(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

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

	p, err := partition.ForStrategy(r.FormValue("strategy"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	opts, err := s.optionsFromForm(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if opts.MetadataFilename == "" {
		opts.MetadataFilename = filename
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

	start := time.Now()
	elements, err := p(partition.Source{File: bytes.NewReader(data)}, opts)
	if err != nil {
		jsonError(w, err.Error(), partitionErrorStatus(err))
		return
	}
	s.orchestrator.Stats().Record(time.Since(start).Milliseconds(), len(elements))

	writeElements(w, elements)
}

// partitionURLRequest is the body of POST /api/partition/url. Boolean
// options that default to on are pointers so an absent field keeps the
// default.
type partitionURLRequest struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`

	Encoding              string            `json:"encoding"`
	IncludeMetadata       *bool             `json:"include_metadata"`
	UniqueElementIDs      bool              `json:"unique_element_ids"`
	SkipHeadersAndFooters bool              `json:"skip_headers_and_footers"`
	AssembleArticles      *bool             `json:"html_assemble_articles"`
	IncludePageBreaks     bool              `json:"include_page_breaks"`
	RegexMetadata         map[string]string `json:"regex_metadata"`
	MetadataFilename      string            `json:"metadata_filename"`
	MetadataLastModified  string            `json:"metadata_last_modified"`
}

func (s *Server) handlePartitionURL(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req partitionURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.URL == "" {
		jsonError(w, "url is required", http.StatusBadRequest)
		return
	}

	opts := s.defaultOptions()
	opts.Headers = req.Headers
	opts.Encoding = req.Encoding
	if req.IncludeMetadata != nil {
		opts.IncludeMetadata = *req.IncludeMetadata
	}
	opts.UniqueElementIDs = req.UniqueElementIDs
	opts.SkipHeadersAndFooters = req.SkipHeadersAndFooters
	if req.AssembleArticles != nil {
		opts.AssembleArticles = *req.AssembleArticles
	}
	opts.IncludePageBreaks = req.IncludePageBreaks
	opts.RegexMetadata = req.RegexMetadata
	opts.MetadataFilename = req.MetadataFilename
	opts.MetadataLastModified = req.MetadataLastModified

	start := time.Now()
	elements, err := partition.HTML(partition.Source{URL: req.URL}, opts)
	if err != nil {
		status := partitionErrorStatus(err)
		var cfgErr *partition.ConfigError
		var decErr *partition.DecodeError
		if !errors.As(err, &cfgErr) && !errors.As(err, &decErr) {
			// Network and upstream failures, not client mistakes.
			status = http.StatusBadGateway
		}
		jsonError(w, err.Error(), status)
		return
	}
	s.orchestrator.Stats().Record(time.Since(start).Milliseconds(), len(elements))

	writeElements(w, elements)
}

// defaultOptions seeds request options from the service configuration.
func (s *Server) defaultOptions() partition.Options {
	opts := partition.DefaultOptions()
	opts.MinPartition = s.cfg.DefaultMinPartition
	opts.MaxPartition = s.cfg.DefaultMaxPartition
	opts.FetchTimeout = s.cfg.FetchTimeout
	return opts
}

// optionsFromForm reads the option fields shared by the multipart
// endpoints.
func (s *Server) optionsFromForm(r *http.Request) (partition.Options, error) {
	opts := s.defaultOptions()

	opts.Encoding = r.FormValue("encoding")
	opts.MetadataFilename = r.FormValue("metadata_filename")
	opts.MetadataLastModified = r.FormValue("metadata_last_modified")

	if v := r.FormValue("min_partition"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("invalid min_partition %q", v)
		}
		opts.MinPartition = n
	}
	if v := r.FormValue("max_partition"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("invalid max_partition %q", v)
		}
		opts.MaxPartition = n
	}

	if v := r.FormValue("include_metadata"); v != "" {
		opts.IncludeMetadata = v == "true"
	}
	if v := r.FormValue("html_assemble_articles"); v != "" {
		opts.AssembleArticles = v == "true"
	}
	opts.UniqueElementIDs = r.FormValue("unique_element_ids") == "true"
	opts.SkipHeadersAndFooters = r.FormValue("skip_headers_and_footers") == "true"
	opts.IncludePageBreaks = r.FormValue("include_page_breaks") == "true"
	if r.FormValue("group_broken_paragraphs") == "true" {
		opts.ParagraphGrouper = partition.GroupBrokenParagraphs
	}

	if v := r.FormValue("regex_metadata"); v != "" {
		patterns := map[string]string{}
		if err := json.Unmarshal([]byte(v), &patterns); err != nil {
			return opts, fmt.Errorf("invalid regex_metadata: %v", err)
		}
		opts.RegexMetadata = patterns
	}

	return opts, nil
}

// partitionErrorStatus maps partitioning failures to response codes:
// rejected requests are 400, content the partitioner could not process
// is 422.
func partitionErrorStatus(err error) int {
	var cfgErr *partition.ConfigError
	if errors.As(err, &cfgErr) {
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}

func writeElements(w http.ResponseWriter, elements []element.Element) {
	if elements == nil {
		elements = []element.Element{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"elements": elements,
		"count":    len(elements),
	})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
