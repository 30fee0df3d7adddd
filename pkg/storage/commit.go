package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cuemby/filekv/pkg/log"
	"github.com/cuemby/filekv/pkg/metrics"
)

// runCommit runs the commit pipeline against the transaction already
// renamed into the commit area under uuid. Every stage is individually
// idempotent, so running this again on the same uuid after a crash
// converges on the same final state (see doc.go).
func (s *Store) runCommit(uuid string) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.CommitDuration)

	stageLog := log.WithStage(uuid, 0)
	commitDir := s.paths.commitPath(uuid)
	td := newTransactionDirs(commitDir)

	// Restore owner permissions unconditionally before touching anything
	// else: a crash between stage 3 (mode 0, point of no return) and
	// stage 4 (which itself restores 0700 as its first act) leaves the
	// directory unreadable to a re-run that starts, like this one, from
	// the top.
	if err := os.Chmod(commitDir, 0o700); err != nil {
		if os.IsNotExist(err) {
			stageLog.Debug().Msg("commit directory already finalized")
			return nil
		}
		return fmt.Errorf("restoring commit directory permissions: %w", err)
	}

	entries, err := os.ReadDir(td.namespace)
	if err != nil {
		if os.IsNotExist(err) {
			return s.commitFinalize(uuid)
		}
		return fmt.Errorf("reading commit namespace: %w", err)
	}

	if len(entries) == 0 {
		if err := s.commitFinalize(uuid); err != nil {
			return err
		}
		metrics.CommitsTotal.Inc()
		return nil
	}

	liveTargets := map[string]struct{}{}
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, processedSuffix) {
			continue
		}
		target, err := os.Readlink(filepath.Join(td.namespace, name))
		if err != nil {
			return fmt.Errorf("reading namespace entry %s: %w", name, err)
		}
		liveTargets[target] = struct{}{}
	}

	stage1Timer := metrics.NewTimer()
	if err := s.commitStage1(td, liveTargets); err != nil {
		return fmt.Errorf("commit stage 1: %w", err)
	}
	stage1Timer.ObserveDurationVec(metrics.CommitStageDuration, "1")
	log.WithStage(uuid, 1).Debug().Int("live_objects", len(liveTargets)).Msg("integrated objects into shared store")

	stage2Timer := metrics.NewTimer()
	if err := s.commitStage2(td); err != nil {
		return fmt.Errorf("commit stage 2: %w", err)
	}
	stage2Timer.ObserveDurationVec(metrics.CommitStageDuration, "2")
	log.WithStage(uuid, 2).Debug().Msg("promoted private namespace to regular files")

	stage3Timer := metrics.NewTimer()
	if err := s.commitStage3(commitDir, td); err != nil {
		return fmt.Errorf("commit stage 3: %w", err)
	}
	stage3Timer.ObserveDurationVec(metrics.CommitStageDuration, "3")
	log.WithStage(uuid, 3).Debug().Msg("published committed side-links, past point of no return")

	stage4Timer := metrics.NewTimer()
	if err := s.commitStage4(commitDir, td); err != nil {
		return fmt.Errorf("commit stage 4: %w", err)
	}
	stage4Timer.ObserveDurationVec(metrics.CommitStageDuration, "4")
	log.WithStage(uuid, 4).Debug().Msg("swapped live namespace")

	finalizeTimer := metrics.NewTimer()
	if err := s.commitFinalize(uuid); err != nil {
		return fmt.Errorf("commit finalize: %w", err)
	}
	finalizeTimer.ObserveDurationVec(metrics.CommitStageDuration, "finalize")

	metrics.CommitsTotal.Inc()
	return nil
}

// commitStage1 integrates the private object pool into the shared object
// store. Objects not referenced by any live namespace entry are orphans and
// are discarded; referenced objects are hard-linked into the shared store
// (or the shared store is seeded from the private copy if this is the
// first committer to ever write that content) and marked with a processed
// sentinel so a re-run recognizes them as already handled.
func (s *Store) commitStage1(td transactionDirs, liveTargets map[string]struct{}) error {
	entries, err := os.ReadDir(td.objects)
	if err != nil {
		return fmt.Errorf("reading private object pool: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		path := filepath.Join(td.objects, name)

		if strings.HasSuffix(name, processedSuffix) {
			continue
		}

		if _, live := liveTargets[name]; !live {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("removing orphaned object %s: %w", name, err)
			}
			metrics.ObjectsOrphanedTotal.Inc()
			continue
		}

		sentinel := path + processedSuffix
		if _, err := os.Lstat(sentinel); err == nil {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("removing processed object %s: %w", name, err)
			}
			continue
		}

		sharedPath := s.paths.objectPath(name)
		for attempt := 0; ; attempt++ {
			linkErr := os.Link(sharedPath, sentinel)
			if linkErr == nil {
				break
			}
			if os.IsExist(linkErr) {
				break
			}
			if os.IsNotExist(linkErr) && attempt == 0 {
				if seedErr := os.Link(path, sharedPath); seedErr != nil && !os.IsExist(seedErr) {
					return fmt.Errorf("seeding shared object %s: %w", name, seedErr)
				}
				continue
			}
			return fmt.Errorf("linking shared object %s: %w", name, linkErr)
		}
		metrics.ObjectsLinkedTotal.Inc()

		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing staged object %s: %w", name, err)
		}
	}

	return nil
}

// commitStage2 promotes the private namespace's live symlinks into regular
// files holding the final committed content, so stages 3 and 4 never need
// to dereference a symlink under the mode-0 commit directory.
func (s *Store) commitStage2(td transactionDirs) error {
	entries, err := os.ReadDir(td.namespace)
	if err != nil {
		return fmt.Errorf("reading private namespace: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		path := filepath.Join(td.namespace, name)

		if strings.HasSuffix(name, processedSuffix) {
			continue
		}
		sentinel := path + processedSuffix
		if _, err := os.Lstat(sentinel); err == nil {
			continue
		}

		target, err := os.Readlink(path)
		if err != nil {
			return fmt.Errorf("reading namespace entry %s: %w", name, err)
		}

		sharedObj := s.paths.objectPath(target)
		if err := os.Link(sharedObj, sentinel); err != nil && !os.IsExist(err) {
			return fmt.Errorf("promoting namespace entry %s: %w", name, err)
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing namespace symlink %s: %w", name, err)
		}

		objSentinel := filepath.Join(td.objects, target+processedSuffix)
		if err := os.Remove(objSentinel); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing object sentinel for %s: %w", target, err)
		}
	}

	return nil
}

// commitStage3 marks the commit directory as beyond the point of no
// return (mode 0) and publishes a :committed side-link for every pending
// entry so concurrent readers never see an empty window between stage 4's
// unlink and its rename.
func (s *Store) commitStage3(commitDir string, td transactionDirs) error {
	if err := os.Chmod(commitDir, 0o000); err != nil {
		return fmt.Errorf("marking commit directory point-of-no-return: %w", err)
	}

	entries, err := os.ReadDir(td.namespace)
	if err != nil {
		return fmt.Errorf("reading private namespace: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		keyHash := strings.TrimSuffix(name, processedSuffix)
		src := filepath.Join(td.namespace, name)
		dst := s.paths.committedSidelinkPath(keyHash)
		if err := os.Symlink(src, dst); err != nil && !os.IsExist(err) {
			return fmt.Errorf("publishing side-link for %s: %w", keyHash, err)
		}
	}

	return nil
}

// commitStage4 restores owner permissions on the commit directory and
// swaps the live namespace: each pending entry's regular file is renamed
// directly over the shared namespace slot, a single atomic operation that
// publishes the new value.
func (s *Store) commitStage4(commitDir string, td transactionDirs) error {
	if err := os.Chmod(commitDir, 0o700); err != nil {
		return fmt.Errorf("restoring commit directory permissions: %w", err)
	}

	entries, err := os.ReadDir(td.namespace)
	if err != nil {
		return fmt.Errorf("reading private namespace: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		keyHash := strings.TrimSuffix(name, processedSuffix)
		src := filepath.Join(td.namespace, name)
		dst := s.paths.namespacePath(keyHash)

		if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("unlinking previous value for %s: %w", keyHash, err)
		}
		if err := os.Rename(src, dst); err != nil {
			return fmt.Errorf("publishing new value for %s: %w", keyHash, err)
		}
		metrics.NamespaceEntriesPublishedTotal.Inc()

		sidelink := s.paths.committedSidelinkPath(keyHash)
		if err := os.Remove(sidelink); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing side-link for %s: %w", keyHash, err)
		}
	}

	return nil
}

// commitFinalize removes the now-empty private object pool, private
// namespace, and commit directory. Missing directories are tolerated so a
// crash between removals is safely resumed by a later Recover.
func (s *Store) commitFinalize(uuid string) error {
	commitDir := s.paths.commitPath(uuid)
	td := newTransactionDirs(commitDir)

	for _, dir := range []string{td.objects, td.namespace, commitDir} {
		if err := os.Remove(dir); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", dir, err)
		}
	}

	return nil
}
