package s3

import (
	"context"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_RoundTrip(t *testing.T) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		t.Skip("S3_BUCKET not set")
	}

	ctx := context.Background()
	cfg, err := config.LoadDefaultConfig(ctx)
	require.NoError(t, err)

	store := NewStore(awss3.NewFromConfig(cfg), bucket, "blockloc-it/"+t.Name())

	require.NoError(t, store.Put(ctx, "blk", []byte("0123456789")))
	defer func() { _ = store.Delete(ctx, "blk") }()

	blob, err := store.Open(ctx, "blk")
	require.NoError(t, err)
	defer blob.Close()

	buf := make([]byte, 3)
	_, err = blob.ReadAt(ctx, buf, 4)
	require.NoError(t, err)
	assert.Equal(t, "456", string(buf))
}
