package namenode

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// MemoryCatalog is an in-memory Catalog.
type MemoryCatalog struct {
	mu    sync.RWMutex
	files map[string]*memoryFile

	lookups atomic.Int64
}

type memoryFile struct {
	info   FileInfo
	blocks map[int64]BlockInfo
}

// NewMemoryCatalog creates an empty catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		files: make(map[string]*memoryFile),
	}
}

// PutFile registers or replaces a file and its block locations.
// blocks[i] is the location of block i.
func (m *MemoryCatalog) PutFile(info FileInfo, blocks []BlockInfo) error {
	if info.Path == "" {
		return fmt.Errorf("namenode: empty path")
	}
	if int64(len(blocks)) != info.Blocks() {
		return fmt.Errorf("namenode: %s spans %d blocks, got %d locations", info.Path, info.Blocks(), len(blocks))
	}

	f := &memoryFile{
		info:   info,
		blocks: make(map[int64]BlockInfo, len(blocks)),
	}
	for i, b := range blocks {
		f.blocks[int64(i)] = b
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[info.Path] = f
	return nil
}

// DeleteFile removes path. Deleting an unknown path is a no-op.
func (m *MemoryCatalog) DeleteFile(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
}

// Stat implements Catalog.
func (m *MemoryCatalog) Stat(ctx context.Context, path string) (FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return FileInfo{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.files[path]
	if !ok {
		return FileInfo{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return f.info, nil
}

// Lookup implements Catalog.
func (m *MemoryCatalog) Lookup(ctx context.Context, path string, index int64) (BlockInfo, error) {
	if err := ctx.Err(); err != nil {
		return BlockInfo{}, err
	}
	m.lookups.Add(1)

	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.files[path]
	if !ok {
		return BlockInfo{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	b, ok := f.blocks[index]
	if !ok {
		return BlockInfo{}, fmt.Errorf("%w: %s block %d", ErrNotFound, path, index)
	}
	return b, nil
}

// Lookups returns how many Lookup calls the catalog served.
func (m *MemoryCatalog) Lookups() int64 {
	return m.lookups.Load()
}
