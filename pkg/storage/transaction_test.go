package storage

import (
	"errors"
	"os"
	"testing"
)

func TestReadYourWritesBeforeCommit(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	tx, err := s.Begin()
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	defer tx.Close()

	if err := tx.Put([]byte("k"), []byte("staged")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := tx.Get([]byte("k"))
	if err != nil {
		t.Fatalf("tx.Get() error = %v", err)
	}
	if string(got) != "staged" {
		t.Errorf("tx.Get() = %q, want %q", got, "staged")
	}

	// The write is not visible outside the transaction until commit.
	if _, err := s.Get([]byte("k")); !errors.Is(err, ErrNotFound) {
		t.Errorf("store.Get() before commit error = %v, want ErrNotFound", err)
	}
}

func TestTransactionGetFallsBackToStore(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	tx1, _ := s.Begin()
	if err := tx1.Put([]byte("k"), []byte("committed")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := tx1.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	tx2, err := s.Begin()
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	defer tx2.Close()

	got, err := tx2.Get([]byte("k"))
	if err != nil {
		t.Fatalf("tx2.Get() error = %v", err)
	}
	if string(got) != "committed" {
		t.Errorf("tx2.Get() = %q, want %q", got, "committed")
	}
}

func TestRepeatedPutWithinTransactionCollapses(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	tx, _ := s.Begin()
	if err := tx.Put([]byte("k"), []byte("first")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := tx.Put([]byte("k"), []byte("second")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	got, err := s.Get([]byte("k"))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "second" {
		t.Errorf("Get() = %q, want %q", got, "second")
	}
}

func TestPutEmptyKeyRejected(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	tx, _ := s.Begin()
	defer tx.Close()

	if err := tx.Put(nil, []byte("v")); !errors.Is(err, ErrKeyEmpty) {
		t.Errorf("Put(nil, ...) error = %v, want ErrKeyEmpty", err)
	}
}

func TestCommitThenCommitFails(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	tx, _ := s.Begin()
	if err := tx.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("first Commit() error = %v", err)
	}

	if err := tx.Commit(); !errors.Is(err, ErrTransactionDone) {
		t.Errorf("second Commit() error = %v, want ErrTransactionDone", err)
	}
}

func TestCommitThenRollbackFails(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	tx, _ := s.Begin()
	if err := tx.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	if err := tx.Rollback(); !errors.Is(err, ErrTransactionDone) {
		t.Errorf("Rollback() after Commit() error = %v, want ErrTransactionDone", err)
	}
}

func TestRollbackThenRollbackFails(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	tx, _ := s.Begin()
	if err := tx.Rollback(); err != nil {
		t.Fatalf("first Rollback() error = %v", err)
	}
	if err := tx.Rollback(); !errors.Is(err, ErrTransactionDone) {
		t.Errorf("second Rollback() error = %v, want ErrTransactionDone", err)
	}
}

func TestCloseAfterCommitIsNoop(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	tx, _ := s.Begin()
	if err := tx.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if err := tx.Close(); err != nil {
		t.Errorf("Close() after Commit() error = %v, want nil", err)
	}
}

func TestCloseRollsBackUncommittedTransaction(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	tx, _ := s.Begin()
	if err := tx.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if err := tx.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, err := s.Get([]byte("k")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Close() error = %v, want ErrNotFound", err)
	}
	if err := tx.Commit(); !errors.Is(err, ErrTransactionDone) {
		t.Errorf("Commit() after Close() error = %v, want ErrTransactionDone", err)
	}
}

func TestRollbackDiscardsStagedObjects(t *testing.T) {
	root := t.TempDir()
	s, err := Open(root)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	before, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	tx, _ := s.Begin()
	if err := tx.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	after, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if before != after {
		t.Errorf("Stats() changed by rollback: before=%+v after=%+v", before, after)
	}

	if _, err := s.Get([]byte("k")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after rollback error = %v, want ErrNotFound", err)
	}
}

func TestConcurrentTransactionsGetDistinctUUIDs(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	tx1, err := s.Begin()
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	defer tx1.Close()

	tx2, err := s.Begin()
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	defer tx2.Close()

	if tx1.uuid == tx2.uuid {
		t.Errorf("two transactions minted the same uuid %s", tx1.uuid)
	}
	if len(tx1.uuid) != 32 {
		t.Errorf("uuid length = %d, want 32", len(tx1.uuid))
	}

	if _, err := os.Stat(s.paths.transactionPath(tx1.uuid)); err != nil {
		t.Errorf("transaction directory missing: %v", err)
	}
}
