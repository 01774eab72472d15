// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "blocks/")
//	client := blockloc.New(catalog, store)
//
// # Features
//
//   - Single ranged GET per block read
//   - Streaming multipart uploads through feature/s3/manager
//   - CRC32C checksums on Put
//   - Automatic pagination for listing
package s3
