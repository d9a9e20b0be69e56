// Package files provides durable storage for uploaded progress media.
package files

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Kind identifies the media namespace a file belongs to.
type Kind string

// Media namespaces. Each kind gets its own subdirectory under progress_files/.
const (
	KindImage Kind = "images"
	KindAudio Kind = "audios"
)

// Valid reports whether the kind is a known namespace.
func (k Kind) Valid() bool {
	return k == KindImage || k == KindAudio
}

// KindForExt returns the media kind for a file extension (with leading dot).
// Returns false for extensions we don't accept as uploads.
func KindForExt(ext string) (Kind, bool) {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return KindImage, true
	case ".mp3", ".m4a", ".m4b", ".wav", ".ogg":
		return KindAudio, true
	default:
		return "", false
	}
}

// KindForContentType returns the media kind for a declared MIME type,
// ignoring any parameters. Returns false for types we don't accept.
func KindForContentType(contentType string) (Kind, bool) {
	mediaType, _, _ := strings.Cut(contentType, ";")
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	switch {
	case strings.HasPrefix(mediaType, "image/"):
		return KindImage, true
	case strings.HasPrefix(mediaType, "audio/"):
		return KindAudio, true
	default:
		return "", false
	}
}

// Storage manages media filesystem operations.
// Thread-safe for concurrent operations.
type Storage struct {
	basePath string
	mu       sync.RWMutex // Protects file operations
}

// NewStorage creates a Storage rooted at {dataPath}/progress_files/.
// Subdirectories for each kind are created up front.
func NewStorage(dataPath string) (*Storage, error) {
	if dataPath == "" {
		return nil, fmt.Errorf("data path cannot be empty")
	}

	basePath := filepath.Join(dataPath, "progress_files")
	for _, kind := range []Kind{KindImage, KindAudio} {
		if err := os.MkdirAll(filepath.Join(basePath, string(kind)), 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s directory: %w", kind, err)
		}
	}

	return &Storage{
		basePath: basePath,
	}, nil
}

// BasePath returns the root of the media tree.
func (s *Storage) BasePath() string {
	return s.basePath
}

// Save stores media data under a freshly generated name and returns it.
// Names are random so uploads can never collide or be guessed.
func (s *Storage) Save(kind Kind, ext string, data []byte) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown media kind %q", kind)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("media data cannot be empty")
	}

	name := uuid.NewString() + strings.ToLower(ext)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.Path(kind, name), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write media file: %w", err)
	}

	return name, nil
}

// Get retrieves media data by kind and name.
func (s *Storage) Get(kind Kind, name string) ([]byte, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown media kind %q", kind)
	}
	if name == "" {
		return nil, fmt.Errorf("name cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.Path(kind, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("media not found for %s/%s: %w", kind, name, err)
		}
		return nil, fmt.Errorf("failed to read media file: %w", err)
	}

	return data, nil
}

// Exists checks whether a media file is present.
func (s *Storage) Exists(kind Kind, name string) bool {
	if !kind.Valid() || name == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.Path(kind, name))
	return err == nil
}

// Delete removes a media file. Missing files are not an error.
func (s *Storage) Delete(kind Kind, name string) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown media kind %q", kind)
	}
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path(kind, name)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete media file: %w", err)
	}

	return nil
}

// Hash computes the SHA256 hash of a media file.
// Returns hex-encoded string for ETag/cache validation.
func (s *Storage) Hash(kind Kind, name string) (string, error) {
	data, err := s.Get(kind, name)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}

// Path returns the full filesystem path for a media file.
// The name is reduced to its base so traversal segments can't escape the tree.
func (s *Storage) Path(kind Kind, name string) string {
	return filepath.Join(s.basePath, string(kind), filepath.Base(name))
}

// URLPath returns the public URL path a stored file is served under.
func URLPath(kind Kind, name string) string {
	return "/files/" + string(kind) + "/" + name
}

// ParseURLPath splits a public URL path back into kind and name.
// Returns false when the path is not a media URL.
func ParseURLPath(urlPath string) (Kind, string, bool) {
	rest, ok := strings.CutPrefix(urlPath, "/files/")
	if !ok {
		return "", "", false
	}
	kindStr, name, ok := strings.Cut(rest, "/")
	if !ok || name == "" || strings.Contains(name, "/") {
		return "", "", false
	}
	kind := Kind(kindStr)
	if !kind.Valid() {
		return "", "", false
	}
	return kind, name, true
}
