package kdtree

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"math/bits"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType defines the compression algorithm used for snapshots.
type CompressionType uint8

const (
	// CompressionNone indicates no compression.
	CompressionNone CompressionType = 0
	// CompressionLZ4 indicates LZ4 block compression (fast).
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD indicates ZSTD block compression (better ratio).
	CompressionZSTD CompressionType = 2
)

var (
	snapshotMagic = [4]byte{'K', 'D', 'G', 'O'}

	// ErrBadSnapshot is returned when a snapshot is malformed.
	ErrBadSnapshot = errors.New("malformed snapshot")
)

const snapshotVersion uint16 = 1

// Snapshot header layout (little endian):
//
//	magic [4]byte | version uint16 | compression uint8 | reserved uint8 |
//	dim uint32 | bucketSize uint32 | count uint64
const snapshotHeaderSize = 4 + 2 + 1 + 1 + 4 + 4 + 8

// Payload block framing: [UncompressedSize uint32][CompressedSize uint32][Data].
// CompressedSize == 0 means the data is stored uncompressed.
const blockHeaderSize = 8

// maxBlockSize bounds the sizes a block header may claim, so a hostile
// header cannot demand a multi-GiB allocation before any data is read.
const maxBlockSize = 1 << 30

// ZSTD encoder/decoder pools for efficiency.
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// WriteSnapshot serializes the tree's points to w. The tree structure itself
// is not stored; it is rebuilt deterministically on read.
func (t *Tree) WriteSnapshot(w io.Writer, compression CompressionType) error {
	switch compression {
	case CompressionNone, CompressionLZ4, CompressionZSTD:
	default:
		return fmt.Errorf("unsupported compression type: %d", compression)
	}

	header := make([]byte, snapshotHeaderSize)
	copy(header[0:4], snapshotMagic[:])
	binary.LittleEndian.PutUint16(header[4:6], snapshotVersion)
	header[6] = byte(compression)
	binary.LittleEndian.PutUint32(header[8:12], uint32(t.dim))       //nolint:gosec // dim is validated positive
	binary.LittleEndian.PutUint32(header[12:16], uint32(t.bucketSize)) //nolint:gosec // bucketSize is validated positive
	binary.LittleEndian.PutUint64(header[16:24], uint64(len(t.ids)))

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("write snapshot header: %w", err)
	}

	payload := make([]byte, 0, len(t.ids)*4+len(t.coords)*4)
	for _, id := range t.ids {
		payload = binary.LittleEndian.AppendUint32(payload, uint32(id))
	}
	for _, c := range t.coords {
		payload = binary.LittleEndian.AppendUint32(payload, math.Float32bits(c))
	}

	block, err := compressBlock(payload, compression)
	if err != nil {
		return fmt.Errorf("compress snapshot payload: %w", err)
	}
	if _, err := w.Write(block); err != nil {
		return fmt.Errorf("write snapshot payload: %w", err)
	}

	return nil
}

// ReadSnapshot restores a tree written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (*Tree, error) {
	header := make([]byte, snapshotHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("read snapshot header: %w", err)
	}

	if [4]byte(header[0:4]) != snapshotMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrBadSnapshot)
	}
	if v := binary.LittleEndian.Uint16(header[4:6]); v != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadSnapshot, v)
	}

	compression := CompressionType(header[6])
	dim := int(binary.LittleEndian.Uint32(header[8:12]))
	bucketSize := int(binary.LittleEndian.Uint32(header[12:16]))
	count := binary.LittleEndian.Uint64(header[16:24])

	payload, err := decompressBlock(r, compression)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot payload: %w", err)
	}

	// count and dim come straight from the header; the product must not wrap.
	hi, want := bits.Mul64(count, uint64(dim+1)*4)
	if hi != 0 || uint64(len(payload)) != want {
		return nil, fmt.Errorf("%w: payload size %d does not hold %d points of dimension %d", ErrBadSnapshot, len(payload), count, dim)
	}

	t, err := New(dim, WithBucketSize(bucketSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadSnapshot, err)
	}

	ids := payload[:count*4]
	coords := payload[count*4:]
	point := make([]float32, dim)
	for i := uint64(0); i < count; i++ {
		id := ID(binary.LittleEndian.Uint32(ids[i*4:]))
		for d := 0; d < dim; d++ {
			off := (i*uint64(dim) + uint64(d)) * 4 //nolint:gosec // bounds checked via payload size
			point[d] = math.Float32frombits(binary.LittleEndian.Uint32(coords[off:]))
		}
		if err := t.Add(point, id); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// compressBlock frames and compresses data. If compression does not help
// (ratio above 0.9), the block is stored uncompressed.
func compressBlock(data []byte, compression CompressionType) ([]byte, error) {
	var compressed []byte
	var err error

	switch compression {
	case CompressionLZ4:
		compressed, err = compressBlockLZ4(data)
	case CompressionZSTD:
		compressed = compressBlockZSTD(data)
	}
	if err != nil {
		return nil, err
	}

	if compressed == nil || float64(len(compressed)) > float64(len(data))*0.9 {
		result := make([]byte, blockHeaderSize+len(data))
		binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
		binary.LittleEndian.PutUint32(result[4:], 0) // 0 = uncompressed
		copy(result[blockHeaderSize:], data)
		return result, nil
	}

	result := make([]byte, blockHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(result[4:], uint32(len(compressed)))
	copy(result[blockHeaderSize:], compressed)
	return result, nil
}

func compressBlockLZ4(data []byte) ([]byte, error) {
	buf := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, buf, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // incompressible
	}
	return buf[:n], nil
}

func compressBlockZSTD(data []byte) []byte {
	enc := getZstdEncoder()
	defer zstdEncoderPool.Put(enc)
	return enc.EncodeAll(data, nil)
}

func decompressBlock(r io.Reader, compression CompressionType) ([]byte, error) {
	header := make([]byte, blockHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	uncompressedSize := binary.LittleEndian.Uint32(header[0:4])
	compressedSize := binary.LittleEndian.Uint32(header[4:8])

	if uncompressedSize > maxBlockSize || compressedSize > maxBlockSize {
		return nil, fmt.Errorf("%w: block size %d/%d exceeds limit", ErrBadSnapshot, uncompressedSize, compressedSize)
	}

	if compressedSize == 0 {
		data := make([]byte, uncompressedSize)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, err
		}
		return data, nil
	}

	compressed := make([]byte, compressedSize)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, err
	}

	switch compression {
	case CompressionLZ4:
		data := make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(compressed, data)
		if err != nil {
			return nil, err
		}
		return data[:n], nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		return dec.DecodeAll(compressed, make([]byte, 0, uncompressedSize))
	default:
		return nil, fmt.Errorf("%w: compressed block with compression type %d", ErrBadSnapshot, compression)
	}
}
