package storage

import (
	"crypto/sha256"
	"encoding/hex"
)

// keyHash returns the lowercase hex SHA-256 digest of key. It is the
// filesystem-visible identifier for the key inside the namespace areas.
func keyHash(key []byte) string {
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:])
}

// contentHash returns the lowercase hex SHA-256 digest of value. It is the
// filesystem-visible identifier for the value inside the object store.
func contentHash(value []byte) string {
	sum := sha256.Sum256(value)
	return hex.EncodeToString(sum[:])
}
