package receipt

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const receiptsDir = "receipts"

// MediaStore persists normalized receipt files under a media root.
// Backed by afero so tests can run against an in-memory filesystem.
type MediaStore struct {
	fs afero.Fs
}

func NewMediaStore(fs afero.Fs) *MediaStore {
	return &MediaStore{fs: fs}
}

// NewOSMediaStore roots the store at dir on the local filesystem,
// creating it if needed.
func NewOSMediaStore(dir string) (*MediaStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &MediaStore{fs: afero.NewBasePathFs(afero.NewOsFs(), dir)}, nil
}

// rooted maps a media-root-relative path to the rooted form the
// filesystem is keyed by. http.FileServer opens rooted paths, and
// MemMapFs keys "receipts/x" and "/receipts/x" separately, so every
// read and write must go through the same form.
func rooted(rel string) string {
	return "/" + strings.TrimPrefix(rel, "/")
}

// Save writes the file under a fresh random name and returns its
// path relative to the media root.
func (s *MediaStore) Save(data []byte) (string, error) {
	if err := s.fs.MkdirAll(rooted(receiptsDir), 0o755); err != nil {
		return "", fmt.Errorf("create receipts dir: %w", err)
	}
	rel := path.Join(receiptsDir, uuid.NewString()+".jpg")
	if err := afero.WriteFile(s.fs, rooted(rel), data, 0o644); err != nil {
		return "", fmt.Errorf("write receipt: %w", err)
	}
	return rel, nil
}

// Remove deletes a previously saved file. Missing files are not an
// error: the record may outlive the media volume.
func (s *MediaStore) Remove(rel string) error {
	err := s.fs.Remove(rooted(rel))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// HTTPFS exposes the media root for serving under /media/.
func (s *MediaStore) HTTPFS() http.FileSystem {
	return afero.NewHttpFs(afero.NewReadOnlyFs(s.fs))
}
