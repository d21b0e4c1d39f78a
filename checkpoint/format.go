package checkpoint

import "errors"

const (
	// MagicNumber identifies checkpoint files (ASCII: "GMRF")
	MagicNumber = 0x474D5246
	// FormatVersion is the current file format version (v1.0.0)
	FormatVersion = 0x00010000
)

// Compression selects the codec used for the checkpoint body.
type Compression uint8

const (
	// CompressionNone stores the body uncompressed.
	CompressionNone Compression = 0
	// CompressionLZ4 streams the body through an LZ4 frame.
	CompressionLZ4 Compression = 1
	// CompressionZstd streams the body through a zstd frame.
	CompressionZstd Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidMagic       = errors.New("invalid magic number")
	ErrInvalidVersion     = errors.New("unsupported version")
	ErrUnknownCompression = errors.New("unknown compression codec")
)

// FileHeader is the 64-byte header at the start of every checkpoint file.
// The header is always uncompressed; Compression applies to the body that
// follows it.
type FileHeader struct {
	Magic         uint32 // 0x474D5246 ("GMRF")
	Version       uint32 // File format version
	Compression   Compression
	Padding       [7]byte
	VariableCount uint64 // Model variables
	FactorCount   uint64 // Model factor tables
	VertexCount   uint64 // Graph vertex records
	EdgeCount     uint64 // Graph edge records
	Reserved      [16]byte // Future use
}
