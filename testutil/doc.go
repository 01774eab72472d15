// Package testutil provides fixtures for tests and benchmarks.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random data
//
//	rng := testutil.NewRNG(seed)
//	data := rng.Bytes(1 << 20)
//
// # File fixtures
//
//	catalog := namenode.NewMemoryCatalog()
//	store := blobstore.NewMemoryStore()
//	info, err := testutil.PutFile(ctx, catalog, store, "/data/a", data, testutil.FileOptions{BlockSize: 4096})
package testutil
