// Package blockloc is the read side of a distributed file system client.
//
// Files are described by a metadata catalog (package namenode) and their
// blocks are stored, framed and optionally compressed, in a data tier
// (package blobstore). A Client opens read streams; each stream resolves
// block locations through a Resolver backed by the shared location cache
// (package blockcache) and records what it did in per-stream statistics
// (package iostats) that are merged into the client total on Close.
//
// # Quick Start
//
//	catalog := namenode.NewMemoryCatalog()
//	store := blobstore.NewMemoryStore()
//
//	c := blockloc.New(catalog, store,
//	    blockloc.WithLogger(blockloc.NewTextLogger(slog.LevelDebug)),
//	    blockloc.WithResourceController(resource.NewController(resource.Config{
//	        MaxInflightLookups: 32,
//	    })),
//	)
//	defer c.Close(ctx)
//
//	s, err := c.Open(ctx, "/data/part-0")
//	if err != nil {
//	    return err
//	}
//	_ = s.Prefetch(ctx, 0, 1<<20)
//	n, err := s.ReadAt(ctx, buf, 0)
//	_ = s.Close(ctx)
//
//	fmt.Println(c.Statistics())
//
// # Statistics
//
// Every ReadAt counts one operation and classifies each block it touches:
// served from a prefetch (blocking or not), fetched synchronously, with a
// cached or fresh location, from a local or remote data node. Seeks and
// async reads are counted separately. Close records the file capacity and
// merges the stream into Client.Statistics exactly once.
//
// # Backends
//
//   - namenode.MemoryCatalog, namenode/ddb.Catalog (DynamoDB)
//   - blobstore.MemoryStore, blobstore.LocalStore (mmap), blobstore/s3.Store,
//     blobstore/minio.Store
package blockloc
