package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cuemby/filekv/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Recover drains the commit area and the purge area of any transaction a
// prior process left behind mid-pipeline. The source pykvfs implementation
// has no recovery routine of its own; this is the explicit startup
// operation the corrected design requires, and Open calls it unconditionally
// so every Open is also a recovery point. Re-running the commit pipeline or
// purge on a transaction that already finished is a safe no-op because both
// are built from idempotent, individually-resumable stages.
func (s *Store) Recover() error {
	if err := s.recoverArea(s.paths.commits, s.runCommit, metrics.RecoveredCommitsTotal); err != nil {
		return fmt.Errorf("draining commit area: %w", err)
	}
	if err := s.recoverArea(s.paths.purge, s.runPurge, metrics.RecoveredPurgesTotal); err != nil {
		return fmt.Errorf("draining purge area: %w", err)
	}
	return nil
}

func (s *Store) recoverArea(area string, drain func(uuid string) error, counter prometheus.Counter) error {
	buckets, err := os.ReadDir(area)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", area, err)
	}

	for _, bucket := range buckets {
		if !bucket.IsDir() {
			continue
		}

		bucketPath := filepath.Join(area, bucket.Name())
		entries, err := os.ReadDir(bucketPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", bucketPath, err)
		}

		for _, entry := range entries {
			uuid := entry.Name()
			if err := drain(uuid); err != nil {
				return fmt.Errorf("draining %s: %w", uuid, err)
			}
			counter.Inc()
			s.log.Info().Str("tx", uuid).Str("area", area).Msg("recovered transaction")
		}
	}

	return nil
}
