package blobstore

import (
	"context"
	"io"
	"os"
)

// Current is the name of the pointer blob that records the most recent
// committed checkpoint. Stores may give it special treatment (the S3
// commit store routes it through DynamoDB conditional writes).
const Current = "CURRENT"

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is an abstraction for run artifacts: checkpoints, reports and the
// CURRENT pointer.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Open opens a blob for sequential reading.
	Open(ctx context.Context, name string) (Blob, error)

	// Create creates a blob for streaming writes. The blob becomes visible
	// under its name only after a successful Close.
	Create(ctx context.Context, name string) (WritableBlob, error)

	// Put writes a blob atomically.
	Put(ctx context.Context, name string, data []byte) error

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all blobs with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)

	// Close releases resources held by the store.
	Close() error
}

// Blob is a read-only handle to a stored artifact.
type Blob interface {
	io.ReadCloser

	// Size returns the size of the blob in bytes.
	Size() int64
}

// WritableBlob is a streaming write handle. Close commits the blob under
// its name; Abort discards the partial write.
type WritableBlob interface {
	io.WriteCloser

	// Abort discards the partially written blob. Abort after a successful
	// Close is a no-op.
	Abort() error
}
