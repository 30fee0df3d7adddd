/*
Package log provides structured logging for filekv using zerolog.

The log package wraps zerolog to provide JSON-structured or human-readable
console logging, with domain-scoped child loggers for the store, a
transaction, and a commit-pipeline stage. Engine code reserves Info for
transaction lifecycle transitions (begin/commit/rollback) and Debug for
filesystem operations that can plausibly race (link/rename/unlink during
commit), matching the level discipline below.

# Architecture

	┌──────────────────── LOGGING SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Global Logger                    │          │
	│  │  - Zerolog instance                         │          │
	│  │  - Initialized via log.Init()               │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Domain-scoped loggers               │          │
	│  │  - WithStore(root)                          │          │
	│  │  - WithTransaction(uuid)                     │          │
	│  │  - WithStage(uuid, stage)                    │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Usage

	import "github.com/cuemby/filekv/pkg/log"

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true, Output: os.Stdout})

	storeLog := log.WithStore(root)
	storeLog.Info().Msg("store initialized")

	txLog := log.WithTransaction(tx.uuid)
	txLog.Debug().Str("key_hash", hash).Msg("staged put")

JSON output:

	{"level":"info","component":"store","root":"/var/lib/filekv","time":"...","message":"store initialized"}

Console output:

	2026-01-15T10:30:00Z INF store initialized component=store root=/var/lib/filekv
*/
package log
