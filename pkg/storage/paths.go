package storage

import "path/filepath"

// Directory names for the five areas rooted at the store directory, and the
// two per-transaction subdirectories that live inside the transaction,
// commit and purge areas. Matches the on-disk layout in spec.md §6.
const (
	dirObjects      = "__objects__"
	dirNamespace    = "__namespace__"
	dirTransactions = "__transactions__"
	dirCommits      = "__commits__"
	dirPurge        = "__purge__"

	initSentinel = ".inited"

	// committedSuffix marks the transient side-link published during
	// commit stage 3 so concurrent readers never see an empty window
	// between the unlink and the rename in stage 4.
	committedSuffix = ":committed"

	// processedSuffix marks a commit-pipeline entry already handled by an
	// earlier stage, recognized on re-run so every stage stays idempotent.
	processedSuffix = "-"

	numBuckets = 256
)

// bucket returns the two lowercase hex characters every hex-named file or
// directory is filed under, so no single directory in an area ever holds
// more than a fraction of its entries.
func bucket(name string) string {
	return name[:2]
}

// areaPaths bundles the filesystem roots the engine operates against.
type areaPaths struct {
	root         string
	objects      string
	namespace    string
	transactions string
	commits      string
	purge        string
}

func newAreaPaths(root string) areaPaths {
	return areaPaths{
		root:         root,
		objects:      filepath.Join(root, dirObjects),
		namespace:    filepath.Join(root, dirNamespace),
		transactions: filepath.Join(root, dirTransactions),
		commits:      filepath.Join(root, dirCommits),
		purge:        filepath.Join(root, dirPurge),
	}
}

// bucketDir returns <area>/<bucket(name)>.
func bucketDir(area, name string) string {
	return filepath.Join(area, bucket(name))
}

// entryPath returns <area>/<bucket(name)>/<name>.
func entryPath(area, name string) string {
	return filepath.Join(area, bucket(name), name)
}

func (p areaPaths) objectPath(contentHash string) string {
	return entryPath(p.objects, contentHash)
}

func (p areaPaths) namespacePath(keyHash string) string {
	return entryPath(p.namespace, keyHash)
}

func (p areaPaths) committedSidelinkPath(keyHash string) string {
	return filepath.Join(p.namespace, bucket(keyHash), keyHash+committedSuffix)
}

func (p areaPaths) transactionPath(uuid string) string {
	return entryPath(p.transactions, uuid)
}

func (p areaPaths) commitPath(uuid string) string {
	return entryPath(p.commits, uuid)
}

func (p areaPaths) purgePath(uuid string) string {
	return entryPath(p.purge, uuid)
}

// transactionDirs describes the shape shared by a staging, commit and purge
// transaction tree: an objects pool and a namespace directory underneath.
type transactionDirs struct {
	root      string
	objects   string
	namespace string
}

func newTransactionDirs(root string) transactionDirs {
	return transactionDirs{
		root:      root,
		objects:   filepath.Join(root, dirObjects),
		namespace: filepath.Join(root, dirNamespace),
	}
}
