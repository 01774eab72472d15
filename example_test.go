package blockloc_test

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/hupe1980/blockloc"
	"github.com/hupe1980/blockloc/blobstore"
	"github.com/hupe1980/blockloc/namenode"
	"github.com/hupe1980/blockloc/testutil"
)

func Example() {
	ctx := context.Background()
	catalog := namenode.NewMemoryCatalog()
	store := blobstore.NewMemoryStore()

	data := []byte(strings.Repeat("0123456789", 300))
	_, err := testutil.PutFile(ctx, catalog, store, "/logs/app.log", data, testutil.FileOptions{
		BlockSize:   1024,
		Compression: namenode.CompressionZSTD,
	})
	if err != nil {
		log.Fatal(err)
	}

	client := blockloc.New(catalog, store)
	defer func() { _ = client.Close(ctx) }()

	s, err := client.Open(ctx, "/logs/app.log")
	if err != nil {
		log.Fatal(err)
	}

	buf := make([]byte, 10)
	for i := 0; i < 2; i++ {
		n, err := s.ReadAt(ctx, buf, 1020)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(string(buf[:n]))
	}

	_ = s.Close(ctx)
	fmt.Println(client.Statistics())

	// Output:
	// 0123456789
	// 0123456789
	// IOStatistics, client, total 2, localOps 4, remoteOps 0, localDirOps 0, remoteDirOps 0, cached 2, nonBlocking 0, blocking 4, prefetched 0, prefetchedNonBlocking 0, prefetchedBlocking 0, capacity 3072, totalStreams 1, avgCapacity 3072, avgOpLen 10
}
