package testutil

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/blockloc/blobstore"
	"github.com/hupe1980/blockloc/internal/blockcodec"
	"github.com/hupe1980/blockloc/namenode"
)

// FileOptions controls how PutFile lays out a file.
type FileOptions struct {
	BlockSize   int64
	Generation  uint64
	Dir         bool
	Compression namenode.Compression
	// Remote marks every block as not co-located with the client.
	Remote bool
}

// BlobName returns the blob PutFile stores the blocks of path in.
func BlobName(path string, generation uint64) string {
	return fmt.Sprintf("%s@%d", path, generation)
}

// PutFile splits data into blocks, frames each one, writes them back to back
// into a single blob and registers the file in catalog.
func PutFile(ctx context.Context, catalog *namenode.MemoryCatalog, store blobstore.BlobStore, path string, data []byte, opts FileOptions) (namenode.FileInfo, error) {
	if opts.BlockSize <= 0 {
		return namenode.FileInfo{}, errors.New("testutil: block size must be positive")
	}

	info := namenode.FileInfo{
		Path:       path,
		Size:       int64(len(data)),
		BlockSize:  opts.BlockSize,
		Generation: opts.Generation,
		Dir:        opts.Dir,
	}

	name := BlobName(path, opts.Generation)
	blocks := make([]namenode.BlockInfo, 0, info.Blocks())

	var blob []byte
	for off := int64(0); off < info.Size; off += opts.BlockSize {
		end := min(off+opts.BlockSize, info.Size)

		frame, err := blockcodec.Encode(data[off:end], blockcodec.Type(opts.Compression))
		if err != nil {
			return namenode.FileInfo{}, err
		}

		blocks = append(blocks, namenode.BlockInfo{
			Addr:        name,
			Offset:      int64(len(blob)),
			Length:      int64(len(frame)),
			Local:       !opts.Remote,
			Compression: opts.Compression,
		})
		blob = append(blob, frame...)
	}

	if err := store.Put(ctx, name, blob); err != nil {
		return namenode.FileInfo{}, err
	}
	if err := catalog.PutFile(info, blocks); err != nil {
		return namenode.FileInfo{}, err
	}
	return info, nil
}
