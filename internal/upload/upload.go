// Package upload stores question audio files on disk.
package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/lesezeit/lesezeit/internal/apperr"
)

const (
	// PathPrefix is the first element of every stored relative path. It is also
	// the URL prefix the upload directory is served under.
	PathPrefix = "uploads"
	// AllowedExtension is the only accepted file extension.
	AllowedExtension = ".mp3"
	// AllowedMIME is the only accepted sniffed content type.
	AllowedMIME = "audio/mpeg"
)

// Store writes uploaded audio into a single directory.
type Store struct {
	dir     string
	maxSize int64
	log     *log.Logger
}

// New creates a Store, creating dir if it doesn't exist.
func New(dir string, maxSize int64) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	if maxSize <= 0 {
		return nil, fmt.Errorf("upload max size must be greater than 0")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Store{
		dir:     dir,
		maxSize: maxSize,
		log:     log.Default().WithPrefix("upload"),
	}, nil
}

// Dir returns the directory files are written to.
func (s *Store) Dir() string {
	return s.dir
}

// MaxSize returns the maximum accepted size of a single file in bytes.
func (s *Store) MaxSize() int64 {
	return s.maxSize
}

// Check validates all files without writing any of them. A single invalid
// file rejects the whole set.
func (s *Store) Check(files ...*multipart.FileHeader) error {
	for _, fh := range files {
		if fh == nil {
			continue
		}
		if err := s.check(fh); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) check(fh *multipart.FileHeader) error {
	name := filepath.Base(fh.Filename)
	if !strings.EqualFold(filepath.Ext(name), AllowedExtension) {
		return apperr.Validation(fmt.Sprintf("Audio file %q must be an MP3 file.", name))
	}
	if fh.Size > s.maxSize {
		return apperr.Validation(fmt.Sprintf("Audio file %q exceeds the maximum size of %s.", name, humanize.IBytes(uint64(s.maxSize))))
	}
	if fh.Size == 0 {
		return apperr.Validation(fmt.Sprintf("Audio file %q is empty.", name))
	}

	f, err := fh.Open()
	if err != nil {
		return apperr.Unexpected(fmt.Errorf("failed to open uploaded file: %w", err))
	}
	defer f.Close() //nolint:errcheck

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return apperr.Unexpected(fmt.Errorf("failed to detect content type: %w", err))
	}
	if !mtype.Is(AllowedMIME) {
		s.log.Debug("rejected upload", "file", name, "detected", mtype.String())
		return apperr.Validation(fmt.Sprintf("Audio file %q must be an MP3 file.", name))
	}
	return nil
}

// generateName returns a collision resistant file name that keeps the
// original extension.
func generateName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), suffix, ext)
}

// RelPath returns the stored relative path for a file name.
func RelPath(name string) string {
	return path.Join(PathPrefix, name)
}

// absPath maps a stored relative path back into the upload directory.
// Paths outside the prefix are rejected.
func (s *Store) absPath(rel string) (string, bool) {
	name, ok := strings.CutPrefix(rel, PathPrefix+"/")
	if !ok || name == "" || name != filepath.Base(name) {
		return "", false
	}
	return filepath.Join(s.dir, name), true
}

// write copies fh into the upload directory under a generated name and
// returns the stored relative path. Partially written files are removed.
func (s *Store) write(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close() //nolint:errcheck

	name := generateName(fh.Filename)
	target := filepath.Join(s.dir, name)
	tempPath := filepath.Join(s.dir, "tmp_"+name)
	defer os.Remove(tempPath) //nolint:errcheck

	tmp, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	n, err := io.Copy(tmp, io.LimitReader(src, s.maxSize+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if n > s.maxSize {
		return "", apperr.Validation(fmt.Sprintf("Audio file %q exceeds the maximum size of %s.", filepath.Base(fh.Filename), humanize.IBytes(uint64(s.maxSize))))
	}

	if err := os.Rename(tempPath, target); err != nil {
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}
	return RelPath(name), nil
}

// remove deletes a stored file. Missing files are not an error.
func (s *Store) remove(rel string) error {
	p, ok := s.absPath(rel)
	if !ok {
		return fmt.Errorf("invalid upload path %q", rel)
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
