// Package minio provides a blobstore.BlobStore backed by MinIO or any
// S3-compatible object store (Ceph, Garage, SeaweedFS).
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "blocks", "cluster-a/")
//	c := blockloc.New(catalog, store)
package minio
