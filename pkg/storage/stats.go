package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// Stats reports a point-in-time count of entries in each area. It is a
// best-effort diagnostic, not part of the transactional surface: counting
// entries requires walking every bucket of an area, so it is O(n) in
// the number of entries and not meant for hot-path use.
type Stats struct {
	Objects      int
	Namespace    int
	Transactions int
	Commits      int
	Purges       int
}

// Stats counts the live entries under each of the five areas.
func (s *Store) Stats() (Stats, error) {
	var stats Stats
	var err error

	if stats.Objects, err = countArea(s.paths.objects); err != nil {
		return Stats{}, fmt.Errorf("storage: counting objects: %w", err)
	}
	if stats.Namespace, err = countArea(s.paths.namespace); err != nil {
		return Stats{}, fmt.Errorf("storage: counting namespace entries: %w", err)
	}
	if stats.Transactions, err = countArea(s.paths.transactions); err != nil {
		return Stats{}, fmt.Errorf("storage: counting open transactions: %w", err)
	}
	if stats.Commits, err = countArea(s.paths.commits); err != nil {
		return Stats{}, fmt.Errorf("storage: counting in-flight commits: %w", err)
	}
	if stats.Purges, err = countArea(s.paths.purge); err != nil {
		return Stats{}, fmt.Errorf("storage: counting pending purges: %w", err)
	}

	return stats, nil
}

func countArea(area string) (int, error) {
	buckets, err := os.ReadDir(area)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	total := 0
	for _, bucket := range buckets {
		if !bucket.IsDir() {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(area, bucket.Name()))
		if err != nil {
			return 0, err
		}
		total += len(entries)
	}
	return total, nil
}
