// Package storage provides the key-addressed blob store behind snapshot
// and model persistence, with filesystem and SQLite backends.
package storage

import "context"

// BlobStore is a key-addressed store of opaque byte payloads. Keys use
// forward slashes as separators (e.g. "models/AAPL/latest_model.json").
//
// Put overwrites any existing payload at the key. Get reports a missing
// key as ok=false, not as an error; absence is an expected outcome.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
}
