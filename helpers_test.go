package blockloc

import (
	"context"
	"testing"

	"github.com/hupe1980/blockloc/blobstore"
	"github.com/hupe1980/blockloc/namenode"
	"github.com/hupe1980/blockloc/testutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testBlockSize = 1024

type fixture struct {
	client  *Client
	catalog *namenode.MemoryCatalog
	store   blobstore.BlobStore
}

func newFixture(t *testing.T, store blobstore.BlobStore, opts ...Option) *fixture {
	t.Helper()
	if store == nil {
		store = blobstore.NewMemoryStore()
	}
	catalog := namenode.NewMemoryCatalog()
	return &fixture{
		client:  New(catalog, store, opts...),
		catalog: catalog,
		store:   store,
	}
}

func (f *fixture) putFile(t *testing.T, path string, data []byte, opts testutil.FileOptions) namenode.FileInfo {
	t.Helper()
	if opts.BlockSize == 0 {
		opts.BlockSize = testBlockSize
	}
	info, err := testutil.PutFile(context.Background(), f.catalog, f.store, path, data, opts)
	require.NoError(t, err)
	return info
}

func (f *fixture) open(t *testing.T, path string) *Stream {
	t.Helper()
	s, err := f.client.Open(context.Background(), path)
	require.NoError(t, err)
	return s
}

// gateStore blocks Open until the gate is closed.
type gateStore struct {
	blobstore.BlobStore
	gate chan struct{}
}

func (g *gateStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	select {
	case <-g.gate:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.BlobStore.Open(ctx, name)
}

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) Stat(ctx context.Context, path string) (namenode.FileInfo, error) {
	args := m.Called(ctx, path)
	return args.Get(0).(namenode.FileInfo), args.Error(1)
}

func (m *mockCatalog) Lookup(ctx context.Context, path string, index int64) (namenode.BlockInfo, error) {
	args := m.Called(ctx, path, index)
	return args.Get(0).(namenode.BlockInfo), args.Error(1)
}
