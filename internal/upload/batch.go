package upload

import (
	"mime/multipart"
)

// Batch tracks the files written for one submission. Unless Commit is
// called, Cleanup deletes every file the batch wrote. Callers defer Cleanup
// right after creating the batch so every exit path is covered.
type Batch struct {
	store     *Store
	written   []string
	committed bool
}

// NewBatch starts a new pending upload batch.
func (s *Store) NewBatch() *Batch {
	return &Batch{store: s}
}

// Save writes fh and records it as pending. It returns the stored relative path.
func (b *Batch) Save(fh *multipart.FileHeader) (string, error) {
	rel, err := b.store.write(fh)
	if err != nil {
		return "", err
	}
	b.written = append(b.written, rel)
	return rel, nil
}

// Written returns the relative paths written so far.
func (b *Batch) Written() []string {
	return append([]string(nil), b.written...)
}

// Commit keeps all written files.
func (b *Batch) Commit() {
	b.committed = true
}

// Cleanup removes all written files unless the batch was committed.
// Removal is best effort; failures are logged and otherwise ignored.
func (b *Batch) Cleanup() {
	if b.committed {
		return
	}
	for _, rel := range b.written {
		if err := b.store.remove(rel); err != nil {
			b.store.log.Warn("failed to remove pending upload", "path", rel, "error", err)
			continue
		}
		b.store.log.Debug("removed pending upload", "path", rel)
	}
	b.written = nil
}
