// Package blobstore provides the data tier a stream reads block payloads from.
//
// A block location names a blob (BlockInfo.Addr) and a byte range inside it.
// BlobStore abstracts where those blobs live. Implementations must be safe for
// concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process, for tests and embedding
//   - LocalStore: local filesystem, read through mmap
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// Reads are expected to be random and block sized, so every backend serves
// ReadAt with a single ranged request.
package blobstore
