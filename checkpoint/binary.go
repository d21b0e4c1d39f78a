package checkpoint

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unsafe"
)

// maxStringLen bounds length-prefixed strings so a corrupt prefix cannot
// drive a huge allocation before the checksum is verified.
const maxStringLen = 1 << 20

// Writer writes checkpoint data in optimized binary format.
type Writer struct {
	w         io.Writer
	byteOrder binary.ByteOrder
}

// NewWriter creates a new binary checkpoint writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:         w,
		byteOrder: binary.LittleEndian, // Native on x86/ARM
	}
}

// WriteHeader writes the file header.
func (bw *Writer) WriteHeader(header *FileHeader) error {
	header.Magic = MagicNumber
	header.Version = FormatVersion
	return binary.Write(bw.w, bw.byteOrder, header)
}

// WriteUint32 writes a single uint32.
func (bw *Writer) WriteUint32(v uint32) error {
	return binary.Write(bw.w, bw.byteOrder, v)
}

// WriteUint64 writes a single uint64.
func (bw *Writer) WriteUint64(v uint64) error {
	return binary.Write(bw.w, bw.byteOrder, v)
}

// WriteFloat64 writes a single float64.
func (bw *Writer) WriteFloat64(v float64) error {
	return binary.Write(bw.w, bw.byteOrder, v)
}

// WriteBool writes a bool as a single byte.
func (bw *Writer) WriteBool(v bool) error {
	var b uint8
	if v {
		b = 1
	}
	return binary.Write(bw.w, bw.byteOrder, b)
}

// WriteString writes a length-prefixed UTF-8 string.
func (bw *Writer) WriteString(s string) error {
	if len(s) > maxStringLen {
		return fmt.Errorf("string length %d exceeds limit", len(s))
	}
	if err := bw.WriteUint32(uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(bw.w, s)
	return err
}

// WriteFloat64Slice writes a float64 slice as raw bytes (zero-copy compatible).
// Safety: Validates alignment before unsafe conversion.
func (bw *Writer) WriteFloat64Slice(vec []float64) error {
	if len(vec) == 0 {
		return nil
	}

	// Verify alignment before unsafe operation
	if err := validateFloat64SliceAlignment(vec); err != nil {
		return err
	}

	// Direct memory conversion (no allocation)
	byteSlice := unsafe.Slice((*byte)(unsafe.Pointer(&vec[0])), len(vec)*8)
	_, err := bw.w.Write(byteSlice)
	return err
}

// WriteUint32Slice writes a uint32 slice as raw bytes.
// Safety: Validates alignment before unsafe conversion.
func (bw *Writer) WriteUint32Slice(slice []uint32) error {
	if len(slice) == 0 {
		return nil
	}

	// Verify alignment before unsafe operation
	if err := validateUint32SliceAlignment(slice); err != nil {
		return err
	}

	byteSlice := unsafe.Slice((*byte)(unsafe.Pointer(&slice[0])), len(slice)*4)
	_, err := bw.w.Write(byteSlice)
	return err
}

// WriteUint64Slice writes a uint64 slice as raw bytes.
// Safety: Validates alignment before unsafe conversion.
func (bw *Writer) WriteUint64Slice(slice []uint64) error {
	if len(slice) == 0 {
		return nil
	}

	// Verify alignment before unsafe operation
	if err := validateUint64SliceAlignment(slice); err != nil {
		return err
	}

	byteSlice := unsafe.Slice((*byte)(unsafe.Pointer(&slice[0])), len(slice)*8)
	_, err := bw.w.Write(byteSlice)
	return err
}

// Reader reads checkpoint data from binary format.
type Reader struct {
	r         io.Reader
	byteOrder binary.ByteOrder
}

// NewReader creates a new binary checkpoint reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		r:         r,
		byteOrder: binary.LittleEndian,
	}
}

// ReadHeader reads and validates the file header.
func (br *Reader) ReadHeader() (*FileHeader, error) {
	var header FileHeader
	if err := binary.Read(br.r, br.byteOrder, &header); err != nil {
		return nil, err
	}
	if header.Magic != MagicNumber {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, header.Magic)
	}
	if header.Version != FormatVersion {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, header.Version)
	}
	return &header, nil
}

// ReadUint32 reads a single uint32.
func (br *Reader) ReadUint32() (uint32, error) {
	var v uint32
	err := binary.Read(br.r, br.byteOrder, &v)
	return v, err
}

// ReadUint64 reads a single uint64.
func (br *Reader) ReadUint64() (uint64, error) {
	var v uint64
	err := binary.Read(br.r, br.byteOrder, &v)
	return v, err
}

// ReadFloat64 reads a single float64.
func (br *Reader) ReadFloat64() (float64, error) {
	var v float64
	err := binary.Read(br.r, br.byteOrder, &v)
	return v, err
}

// ReadBool reads a single byte as a bool.
func (br *Reader) ReadBool() (bool, error) {
	var b uint8
	if err := binary.Read(br.r, br.byteOrder, &b); err != nil {
		return false, err
	}
	return b != 0, nil
}

// ReadString reads a length-prefixed UTF-8 string.
func (br *Reader) ReadString() (string, error) {
	n, err := br.ReadUint32()
	if err != nil {
		return "", err
	}
	if n > maxStringLen {
		return "", fmt.Errorf("string length %d exceeds limit", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(br.r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// ReadFloat64Slice reads a float64 slice.
func (br *Reader) ReadFloat64Slice(count int) ([]float64, error) {
	if count == 0 {
		return nil, nil
	}
	vec := make([]float64, count)
	if err := br.ReadFloat64SliceInto(vec); err != nil {
		return nil, err
	}
	return vec, nil
}

// ReadFloat64SliceInto reads a float64 slice into the provided buffer.
func (br *Reader) ReadFloat64SliceInto(vec []float64) error {
	if len(vec) == 0 {
		return nil
	}
	byteSlice := unsafe.Slice((*byte)(unsafe.Pointer(&vec[0])), len(vec)*8)
	if _, err := io.ReadFull(br.r, byteSlice); err != nil {
		return err
	}
	return nil
}

// ReadUint32Slice reads a uint32 slice.
func (br *Reader) ReadUint32Slice(count int) ([]uint32, error) {
	if count == 0 {
		return nil, nil
	}
	slice := make([]uint32, count)
	byteSlice := unsafe.Slice((*byte)(unsafe.Pointer(&slice[0])), count*4)
	if _, err := io.ReadFull(br.r, byteSlice); err != nil {
		return nil, err
	}
	return slice, nil
}

// ReadUint64Slice reads a uint64 slice.
func (br *Reader) ReadUint64Slice(count int) ([]uint64, error) {
	if count == 0 {
		return nil, nil
	}
	slice := make([]uint64, count)
	byteSlice := unsafe.Slice((*byte)(unsafe.Pointer(&slice[0])), count*8)
	if _, err := io.ReadFull(br.r, byteSlice); err != nil {
		return nil, err
	}
	return slice, nil
}

// SaveToFile is a helper to save data to a file.
func SaveToFile(filename string, writeFunc func(io.Writer) error) error {
	dir := filepath.Dir(filename)
	base := filepath.Base(filename)

	// Write to a temp file in the same directory to ensure rename is atomic.
	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	// Match typical file permissions (best-effort).
	_ = tmp.Chmod(0644)

	// Use buffered writer to batch writes (critical for performance)
	buf := bufio.NewWriterSize(tmp, 256*1024) // 256KB buffer
	if err := writeFunc(buf); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	// Atomically replace target.
	if err := os.Rename(tmpName, filename); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	// Success: prevent deferred cleanup from removing the final file.
	tmpName = ""
	return nil
}

// LoadFromFile is a helper to load data from a file.
func LoadFromFile(filename string, readFunc func(io.Reader) error) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	// Use buffered reader to batch reads
	buf := bufio.NewReaderSize(f, 256*1024) // 256KB buffer
	return readFunc(buf)
}
