// Package blobstore provides storage abstraction for sampler run artifacts.
//
// Store is the interface for reading and writing data blobs (checkpoints,
// reports, the CURRENT pointer). Implementations must be safe for
// concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem with atomic temp-and-rename writes
//   - MemoryStore: in-memory store for tests and ephemeral runs
//   - s3.Store: Amazon S3 with streaming multipart uploads
//   - minio.Store: MinIO and other S3-compatible object storage
//
// # Custom Implementations
//
// Implement the Store interface to support custom storage backends:
//
//	type Store interface {
//	    Open(ctx, name) (Blob, error)            // Open for reading
//	    Create(ctx, name) (WritableBlob, error)  // Create for streaming writes
//	    Put(ctx, name, data) error               // Atomic write
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	    Close() error
//	}
//
// Blob names may contain slashes; stores treat them as hierarchical keys
// the way object stores do.
package blobstore
