package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	domainerrors "github.com/kakera-app/kakera-server/internal/errors"
	"github.com/kakera-app/kakera-server/internal/media/files"
)

// UploadService stores uploaded media and derives display hints from it.
// Uploads are a separate step from entry creation: the client uploads
// first, then references the returned URL in the entry it creates.
type UploadService struct {
	media   *files.Storage
	maxSize int64
	logger  *slog.Logger
}

// NewUploadService creates a new upload service.
func NewUploadService(media *files.Storage, maxSize int64, logger *slog.Logger) *UploadService {
	return &UploadService{
		media:   media,
		maxSize: maxSize,
		logger:  logger,
	}
}

// MaxSize returns the configured upload size cap in bytes.
func (s *UploadService) MaxSize() int64 {
	return s.maxSize
}

// UploadResult describes a stored upload.
type UploadResult struct {
	URL        string     `json:"url"`
	Kind       files.Kind `json:"kind"`
	SizeBytes  int64      `json:"size_bytes"`
	BlurHash   string     `json:"blur_hash,omitempty"`   // images only
	DurationMs int64      `json:"duration_ms,omitempty"` // audio only
}

// Store persists an upload and returns its durable URL. The file's kind
// is classified from its declared content type, falling back to the
// filename extension for clients that send application/octet-stream.
// Unsupported types are rejected.
func (s *UploadService) Store(ctx context.Context, filename, contentType string, data []byte) (*UploadResult, error) {
	if len(data) == 0 {
		return nil, domainerrors.Validation("file is empty")
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return nil, domainerrors.Validationf("file exceeds maximum size of %d bytes", s.maxSize)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	kind, ok := files.KindForContentType(contentType)
	if !ok {
		kind, ok = files.KindForExt(ext)
	}
	if !ok {
		rejected := contentType
		if rejected == "" {
			rejected = ext
		}
		return nil, domainerrors.Validationf("unsupported file type %q", rejected)
	}

	name, err := s.media.Save(kind, ext, data)
	if err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}

	result := &UploadResult{
		URL:       files.URLPath(kind, name),
		Kind:      kind,
		SizeBytes: int64(len(data)),
	}

	// Hints are best-effort; the upload stands even when probing fails.
	switch kind {
	case files.KindImage:
		hash, hashErr := files.ComputeBlurHash(s.media.Path(kind, name))
		if hashErr != nil {
			if s.logger != nil {
				s.logger.Warn("Failed to compute blurhash for upload", "name", name, "error", hashErr)
			}
		} else {
			result.BlurHash = hash
		}
	case files.KindAudio:
		durationMs, probeErr := files.ProbeDuration(ctx, s.media.Path(kind, name))
		if probeErr != nil {
			if s.logger != nil {
				s.logger.Warn("Failed to probe upload duration", "name", name, "error", probeErr)
			}
		} else {
			result.DurationMs = durationMs
		}
	}

	if s.logger != nil {
		s.logger.Info("Upload stored",
			"kind", kind,
			"name", name,
			"size", len(data),
		)
	}

	return result, nil
}
