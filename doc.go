// Package kdgo provides an embedded k-d tree for exact nearest-neighbor
// search over fixed-dimension float32 vectors.
//
// Features:
//
//   - Exact nearest, k-nearest, and radius search with axis pruning
//   - SIMD-optimized distance kernels (SSE4.1 on x86-64, portable fallback)
//   - Allow-list filtering with Roaring Bitmaps
//   - Snapshot persistence (LZ4/ZSTD) to pluggable blob storage
//     (local filesystem, MinIO, Amazon S3)
//   - Thread-safe operations behind a single coordinator lock
//
// # Quick Start
//
//	ctx := context.Background()
//	tree, err := kdgo.New(3) // 3-dimensional points
//	if err != nil {
//	    panic(err)
//	}
//
//	_ = tree.Add(ctx, []float32{1, 2, 3}, 1)
//	_ = tree.Add(ctx, []float32{4, 5, 6}, 2)
//
//	match, err := tree.Nearest(ctx, []float32{1, 2, 2.5})
//	fmt.Println(match.ID, match.Distance)
//
// Persist and restore through any blobstore.Store:
//
//	store, _ := blobstore.NewLocalStore("./snapshots")
//	_ = tree.SaveSnapshot(ctx, store, "tree.kdgo")
//	tree, _ = kdgo.LoadSnapshot(ctx, store, "tree.kdgo")
//
// For raw distance computations without a tree, use the distance package
// directly.
package kdgo
