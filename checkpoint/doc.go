//go:build amd64 || arm64

// Package checkpoint provides high-performance binary serialization of sampler state.
//
// PLATFORM REQUIREMENTS:
// - Architecture: amd64 or arm64 only
// - Endianness: Little-endian (native on x86_64 and ARM64)
// - Alignment: 4-byte for uint32, 8-byte for float64/uint64
//
// The unsafe operations in this package are verified at runtime with alignment checks
// and platform validation. See safety.go for implementation details.
//
// A checkpoint is a single stream: a fixed little-endian header, a body
// holding the factorized model and every vertex and edge record
// (optionally zstd or lz4 compressed), and a CRC32 of the uncompressed
// body. Read rebuilds the clique graph from the model and overlays the
// serialized records, so a restored graph is bit-for-bit the sampler
// state that was saved.
//
// Write/Read work on streams, Save/Load on files (atomic temp + rename),
// and the Manager layers run-scoped sequencing, retention and the
// CURRENT pointer blob on top of a blobstore.Store.
package checkpoint
