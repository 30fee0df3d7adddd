package storage

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cuemby/filekv/pkg/log"
	"github.com/cuemby/filekv/pkg/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Transaction is a staging area for a batch of puts. Reads inside a
// transaction see its own uncommitted writes first (read-your-writes) and
// fall back to the store's committed state. A Transaction must be
// terminated by exactly one of Commit or Rollback; Close rolls back if
// neither has run yet, so a defer'd Close is a safe scoped-resource guard.
type Transaction struct {
	store *Store
	uuid  string
	dir   transactionDirs
	log   zerolog.Logger

	mu   sync.Mutex
	done bool
}

// newTransaction mints a fresh 128-bit identifier, creates its staging
// directory under the transaction area (retrying on a UUID collision), and
// creates the private object pool and private namespace underneath it.
func newTransaction(s *Store) (*Transaction, error) {
	var id string
	var dir string
	for {
		id = newTransactionUUID()
		dir = s.paths.transactionPath(id)
		err := os.Mkdir(dir, 0o700)
		if err == nil {
			break
		}
		if os.IsExist(err) {
			continue
		}
		return nil, fmt.Errorf("storage: creating transaction directory: %w", err)
	}

	td := newTransactionDirs(dir)
	if err := os.MkdirAll(td.namespace, 0o700); err != nil {
		return nil, fmt.Errorf("storage: creating private namespace: %w", err)
	}
	if err := os.MkdirAll(td.objects, 0o700); err != nil {
		return nil, fmt.Errorf("storage: creating private object pool: %w", err)
	}

	metrics.TransactionsOpened.Inc()

	return &Transaction{
		store: s,
		uuid:  id,
		dir:   td,
		log:   log.WithTransaction(id),
	}, nil
}

func newTransactionUUID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

func (t *Transaction) namespacePath(keyHash string) string {
	return filepath.Join(t.dir.namespace, keyHash)
}

func (t *Transaction) objectPath(contentHash string) string {
	return filepath.Join(t.dir.objects, contentHash)
}

// Put stages a write. Two puts of identical content within the same
// transaction share one private-pool file; a repeated put of the same key
// replaces whichever content it previously pointed at.
func (t *Transaction) Put(key, value []byte) error {
	if len(key) == 0 {
		return ErrKeyEmpty
	}

	tmp, err := os.CreateTemp(t.dir.objects, ".put-*")
	if err != nil {
		return fmt.Errorf("storage: creating staged object: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("storage: writing staged object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storage: closing staged object: %w", err)
	}

	hash := contentHash(value)
	objPath := t.objectPath(hash)
	if err := os.Rename(tmpName, objPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storage: renaming staged object into private pool: %w", err)
	}

	nsPath := t.namespacePath(keyHash(key))
	target, err := os.Readlink(nsPath)
	switch {
	case err == nil:
		if target == hash {
			return nil
		}
		if err := os.Remove(nsPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("storage: replacing private namespace entry: %w", err)
		}
		if err := os.Symlink(hash, nsPath); err != nil {
			return fmt.Errorf("storage: replacing private namespace entry: %w", err)
		}
	case os.IsNotExist(err):
		if err := os.Symlink(hash, nsPath); err != nil {
			return fmt.Errorf("storage: creating private namespace entry: %w", err)
		}
	default:
		return fmt.Errorf("storage: reading private namespace entry: %w", err)
	}

	return nil
}

// Get resolves key against this transaction's own staged writes first, then
// falls back to the store's committed state.
func (t *Transaction) Get(key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, ErrKeyEmpty
	}

	hash := keyHash(key)
	target, err := os.Readlink(t.namespacePath(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return t.store.getByHash(hash)
		}
		return nil, fmt.Errorf("storage: reading private namespace entry: %w", err)
	}

	data, err := os.ReadFile(t.objectPath(target))
	if err != nil {
		return nil, fmt.Errorf("storage: reading private object: %w", err)
	}
	return data, nil
}

// Commit hands the transaction off to the commit pipeline: it atomically
// renames the staging directory into the commit area, then runs the
// pipeline against it. A transaction already committed or rolled back
// returns ErrTransactionDone.
func (t *Transaction) Commit() error {
	if !t.markDone() {
		return ErrTransactionDone
	}

	dst := t.store.paths.commitPath(t.uuid)
	if err := os.Rename(t.dir.root, dst); err != nil {
		return fmt.Errorf("storage: moving transaction %s to commit area: %w", t.uuid, err)
	}

	if err := t.store.runCommit(t.uuid); err != nil {
		return fmt.Errorf("storage: committing transaction %s: %w", t.uuid, err)
	}

	t.log.Info().Msg("transaction committed")
	return nil
}

// Rollback discards the transaction: it atomically renames the staging
// directory into the purge area, then recursively removes it. A
// transaction already committed or rolled back returns ErrTransactionDone.
func (t *Transaction) Rollback() error {
	if !t.markDone() {
		return ErrTransactionDone
	}

	dst := t.store.paths.purgePath(t.uuid)
	if err := os.Rename(t.dir.root, dst); err != nil {
		return fmt.Errorf("storage: moving transaction %s to purge area: %w", t.uuid, err)
	}

	if err := t.store.runPurge(t.uuid); err != nil {
		return fmt.Errorf("storage: purging transaction %s: %w", t.uuid, err)
	}
	metrics.RollbacksTotal.Inc()

	t.log.Info().Msg("transaction rolled back")
	return nil
}

// Close implements the scoped-resource guard: it rolls back the
// transaction unless Commit or Rollback already ran, so a defer'd Close
// guarantees release regardless of how the caller's function returns.
func (t *Transaction) Close() error {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()
	if done {
		return nil
	}
	return t.Rollback()
}

func (t *Transaction) markDone() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}
