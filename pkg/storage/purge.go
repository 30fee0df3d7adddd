package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cuemby/filekv/pkg/metrics"
)

// runPurge deletes the transaction tree rooted at <purge>/<bucket>/<uuid>.
// It restores owner permissions first, tolerating a tree left mode 0 by a
// crash between commit stage 3 and stage 4 (a transaction purged mid-commit
// never happens through the normal Rollback path, but a root recovered from
// disk by an operator could be in this state). If the root turns out to be
// a regular file rather than a directory, it is unlinked directly.
func (s *Store) runPurge(uuid string) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.PurgeDuration)

	path := s.paths.purgePath(uuid)

	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("statting purge root: %w", err)
	}

	if err := os.Chmod(path, 0o700); err != nil {
		return fmt.Errorf("restoring purge root permissions: %w", err)
	}

	if !info.IsDir() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("unlinking purge root: %w", err)
		}
		return nil
	}

	subdirs, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("reading purge root: %w", err)
	}

	for _, subdir := range subdirs {
		subPath := filepath.Join(path, subdir.Name())

		entries, err := os.ReadDir(subPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", subPath, err)
		}
		for _, entry := range entries {
			entryPath := filepath.Join(subPath, entry.Name())
			if err := os.Remove(entryPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("unlinking %s: %w", entryPath, err)
			}
		}

		if err := os.Remove(subPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", subPath, err)
		}
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing purge root: %w", err)
	}

	return nil
}
