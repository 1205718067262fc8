package upload

import (
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
)

// File describes a stored upload.
type File struct {
	Path string
	Size int64
}

// List returns all stored files as relative paths. Temporary files are skipped.
func (s *Store) List() ([]File, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload directory: %w", err)
	}

	var files []File
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), "tmp_") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		files = append(files, File{Path: RelPath(entry.Name()), Size: info.Size()})
	}
	return files, nil
}

// Prune deletes every stored file whose path is not in referenced and returns
// the files it removed (or would remove, when dryRun is set).
func (s *Store) Prune(referenced []string, dryRun bool) ([]File, error) {
	files, err := s.List()
	if err != nil {
		return nil, err
	}

	keep := lo.SliceToMap(referenced, func(p string) (string, struct{}) { return p, struct{}{} })
	orphans := lo.Filter(files, func(f File, _ int) bool {
		_, ok := keep[f.Path]
		return !ok
	})

	if dryRun {
		return orphans, nil
	}
	for _, f := range orphans {
		if err := s.remove(f.Path); err != nil {
			return nil, fmt.Errorf("failed to remove %s: %w", f.Path, err)
		}
		s.log.Info("removed orphaned upload", "path", f.Path)
	}
	return orphans, nil
}
