/*
Package storage implements filekv, a transactional, content-addressed
key-value store built entirely on POSIX filesystem primitives. There is no
in-memory index and no write-ahead log; durability and atomicity come from
directory renames, hard links, and symbolic links, coordinated so that an
arbitrary crash mid-commit is resolved the same way by a later run of the
same pipeline.

# Architecture

	┌──────────────────── FILEKV STORAGE ───────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │              Store root                      │          │
	│  │  - File: <root>/.inited (sentinel)          │          │
	│  │  - Five areas, 256 buckets each             │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │              Area structure                  │          │
	│  │  ┌────────────────────────────┐             │          │
	│  │  │ __objects__      (content hash)│          │          │
	│  │  │ __namespace__    (key hash)    │          │          │
	│  │  │ __transactions__ (uuid)        │          │          │
	│  │  │ __commits__      (uuid)        │          │          │
	│  │  │ __purge__        (uuid)        │          │          │
	│  │  └────────────────────────────┘             │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │          Transaction lifecycle               │          │
	│  │  - Begin: mkdir under __transactions__      │          │
	│  │  - Put: write object, symlink namespace     │          │
	│  │  - Commit: rename to __commits__, pipeline  │          │
	│  │  - Rollback: rename to __purge__, unlink    │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Commit pipeline                    │          │
	│  │  Stage 1: integrate objects into the store  │          │
	│  │  Stage 2: promote namespace to regular files│          │
	│  │  Stage 3: publish :committed side-links     │          │
	│  │           (commit dir mode 0 — no return)   │          │
	│  │  Stage 4: rename over the live namespace     │          │
	│  │  Finalize: remove empty staging directories │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │              Recover                         │          │
	│  │  - Drains __commits__: re-runs the pipeline │          │
	│  │  - Drains __purge__: re-runs purge          │          │
	│  │  - Invoked once by Open on every start       │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Why hard links, renames, and symlinks

An object's content-hash name makes insertion commutative: two committers
writing the same content converge on one file, because hard-linking the
same name twice either succeeds or fails with "already exists", and either
outcome leaves the correct content in place. A namespace entry's identity
is a single atomic rename, so a reader never observes a torn write — it
sees the old value, the new value, or (briefly, via the :committed
side-link published in stage 3) a pointer to the new value before the
rename lands.

# Operations

	Open(root)                               — open or initialize a store, run Recover
	(*Store).Get(key)                        — read the committed value for key
	(*Store).Begin()                         — start a transaction
	(*Transaction).Put(key, value)           — stage a write
	(*Transaction).Get(key)                  — read-your-writes, falls back to Store.Get
	(*Transaction).Commit()                  — hand off to the commit pipeline
	(*Transaction).Rollback()                — discard the transaction
	(*Transaction).Close()                   — rollback unless already terminal

# Ported from

The choreography in commit.go and purge.go descends from pykvfs (Gilles
Chehade's POSIX filesystem key-value store). The private object pool and
private namespace are kept as genuinely separate directories, and Recover
is an addition the original never had.
*/
package storage
