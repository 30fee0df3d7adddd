// Package storage implements filekv, a transactional, content-addressed
// key-value store built entirely on POSIX filesystem primitives. See doc.go
// for the architecture and pykvfs (the reference implementation this
// package was ported from) for the original choreography.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cuemby/filekv/pkg/log"
	"github.com/rs/zerolog"
)

// Store is a content-addressed key-value store rooted at a single
// directory. A Store is safe for concurrent use by multiple goroutines and,
// because all cross-writer coordination happens through filesystem
// primitives, by multiple independent processes pointed at the same root.
type Store struct {
	paths   areaPaths
	log     zerolog.Logger
	buckets int
}

// Open opens (and, if necessary, initializes) a store rooted at root. On a
// fresh root it creates the five areas and their buckets (256 by default,
// see WithBucketCount), then writes the .inited sentinel. On an existing
// root it runs Recover to drain any transactions left mid-commit or
// mid-purge by a prior crash.
func Open(root string, opts ...Option) (*Store, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Store{
		paths:   newAreaPaths(root),
		log:     log.WithStore(root),
		buckets: cfg.buckets,
	}

	initialized, err := s.isInitialized()
	if err != nil {
		return nil, fmt.Errorf("storage: checking init sentinel: %w", err)
	}

	if !initialized {
		if err := s.initialize(); err != nil {
			return nil, fmt.Errorf("storage: initializing store at %s: %w", root, err)
		}
		s.log.Info().Msg("store initialized")
	}

	if err := s.Recover(); err != nil {
		return nil, fmt.Errorf("storage: recovering store at %s: %w", root, err)
	}

	return s, nil
}

func (s *Store) isInitialized() (bool, error) {
	_, err := os.Stat(sentinelPath(s.paths.root))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func sentinelPath(root string) string {
	return filepath.Join(root, initSentinel)
}

// initialize creates the store root, the five areas, and s.buckets two-hex-
// character buckets (256 by default) under each of them, then writes the
// .inited sentinel.
// Idempotent: MkdirAll on an existing directory is a no-op, and the
// sentinel is written last so a crash mid-initialize is retried in full on
// the next Open.
func (s *Store) initialize() error {
	if err := os.MkdirAll(s.paths.root, 0o700); err != nil {
		return err
	}

	areas := []string{
		s.paths.objects,
		s.paths.namespace,
		s.paths.transactions,
		s.paths.commits,
		s.paths.purge,
	}
	for _, area := range areas {
		for b := 0; b < s.buckets; b++ {
			dir := filepath.Join(area, fmt.Sprintf("%02x", b))
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return err
			}
		}
	}

	f, err := os.OpenFile(sentinelPath(s.paths.root), os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	return f.Close()
}

// Begin opens a new transaction against the store.
func (s *Store) Begin() (*Transaction, error) {
	return newTransaction(s)
}

// Get returns the value committed for key, or ErrNotFound if no committed
// put exists for it.
//
// It first consults the committed side-link (the in-flight publication
// link written during commit stage 3); on NotFound or PermissionDenied it
// falls back to the live namespace entry. This order means a concurrent
// reader never observes an empty window between a commit's unlink and its
// rename in stage 4: it either sees the old value, the new value, or
// briefly the side-link to the new value.
func (s *Store) Get(key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, ErrKeyEmpty
	}
	return s.getByHash(keyHash(key))
}

func (s *Store) getByHash(hash string) ([]byte, error) {
	data, err := os.ReadFile(s.paths.committedSidelinkPath(hash))
	if err == nil {
		return data, nil
	}
	if !os.IsNotExist(err) && !os.IsPermission(err) {
		return nil, fmt.Errorf("storage: reading committed side-link for %s: %w", hash, err)
	}

	data, err = os.ReadFile(s.paths.namespacePath(hash))
	if err == nil {
		return data, nil
	}
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return nil, fmt.Errorf("storage: reading namespace entry for %s: %w", hash, err)
}
