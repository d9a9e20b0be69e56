package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	domainerrors "github.com/kakera-app/kakera-server/internal/errors"
	"github.com/kakera-app/kakera-server/internal/http/response"
	"github.com/kakera-app/kakera-server/internal/media/files"
)

func (s *Server) registerUploadRoutes() {
	// Uploads and media serving use chi directly: Huma doesn't easily
	// support multipart forms, and file responses should stream without
	// the JSON envelope.
	s.router.Post("/api/v1/uploads", s.handleUpload)
	s.router.Get("/files/{kind}/{name}", s.handleServeFile)
}

// handleUpload accepts a multipart file upload and stores it for later
// attachment to an entry.
// POST /api/v1/uploads
// Content-Type: multipart/form-data with "file" field
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := GetUserID(ctx); err != nil {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	maxSize := s.services.Upload.MaxSize()
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		response.BadRequest(w, "Failed to parse form data", s.logger)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "No file uploaded. Use 'file' field in multipart form", s.logger)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.logger.Error("Failed to read uploaded file", "error", err, "filename", header.Filename)
		response.InternalError(w, "Failed to read uploaded file", s.logger)
		return
	}

	result, err := s.services.Upload.Store(ctx, header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		var domainErr *domainerrors.Error
		if errors.As(err, &domainErr) {
			response.Error(w, domainErr.HTTPStatus(), domainErr.Message, s.logger)
			return
		}
		s.logger.Error("Failed to store upload", "error", err, "filename", header.Filename)
		response.InternalError(w, "Failed to store upload", s.logger)
		return
	}

	response.Created(w, result, s.logger)
}

// handleServeFile streams a stored media file.
// GET /files/{kind}/{name}
func (s *Server) handleServeFile(w http.ResponseWriter, r *http.Request) {
	kind := files.Kind(chi.URLParam(r, "kind"))
	name := chi.URLParam(r, "name")

	if !kind.Valid() || name == "" {
		http.NotFound(w, r)
		return
	}

	data, err := s.media.Get(kind, name)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// Upload names are immutable UUIDs, so far-future caching is safe.
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", CacheOneWeek)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.Write(data) //nolint:errcheck // Nothing to do about write errors mid-response
}
