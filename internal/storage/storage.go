// Package storage provides blob storage for note images behind a small
// flat-namespace interface: byte blobs keyed by filename, no directories,
// no metadata beyond existence. Two implementations exist: an
// S3-compatible client for deployments and a local-directory store for
// development and tests.
package storage

import "context"

// BlobStore is the flat filename-keyed byte store note images live in.
// Implementations must treat filenames as opaque keys.
type BlobStore interface {
	Put(ctx context.Context, filename string, data []byte) error
	Read(ctx context.Context, filename string) ([]byte, error)
	Delete(ctx context.Context, filename string) error
	Exists(ctx context.Context, filename string) (bool, error)
}
