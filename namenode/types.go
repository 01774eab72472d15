package namenode

import (
	"context"
	"errors"
	"strconv"
)

// ErrNotFound is returned when a path or block is unknown to the catalog.
var ErrNotFound = errors.New("namenode: not found")

// Compression identifies how a block payload is framed in the data tier.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionLZ4
	CompressionZSTD
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return "compression(" + strconv.Itoa(int(c)) + ")"
	}
}

// BlockInfo describes where one block of a file physically resides.
type BlockInfo struct {
	// Addr names the blob in the data tier that holds the block.
	Addr string
	// Offset is the byte offset of the framed block inside the blob.
	Offset int64
	// Length is the framed length in bytes.
	Length int64
	// Local is true when the data tier is co-located with the client.
	Local bool
	// Compression is the payload framing.
	Compression Compression
}

// FileInfo describes an open-able file.
type FileInfo struct {
	Path       string
	Size       int64
	BlockSize  int64
	Generation uint64
	Dir        bool
}

// Blocks returns the number of blocks the file spans.
func (f FileInfo) Blocks() int64 {
	if f.BlockSize <= 0 || f.Size <= 0 {
		return 0
	}
	return (f.Size + f.BlockSize - 1) / f.BlockSize
}

// Capacity returns the bytes reserved for the file, a whole number of blocks.
func (f FileInfo) Capacity() int64 {
	return f.Blocks() * f.BlockSize
}

// BlockKey builds the cache key for block index of a file generation.
// Keys of different generations never collide, so a rewritten file does not
// see stale locations.
func BlockKey(index int64, generation uint64) string {
	return strconv.FormatInt(index, 10) + "@" + strconv.FormatUint(generation, 10)
}

// Catalog resolves file and block metadata. Implementations must be safe for
// concurrent use.
type Catalog interface {
	// Stat returns the metadata of path, or ErrNotFound.
	Stat(ctx context.Context, path string) (FileInfo, error)
	// Lookup returns the location of block index of path, or ErrNotFound.
	Lookup(ctx context.Context, path string, index int64) (BlockInfo, error)
}
