// Package blobstore provides storage abstraction for kdgo snapshots.
//
// Store is the interface for reading and writing whole snapshot blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-memory, for tests
//   - LocalStore: local filesystem with atomic writes
//   - ThrottledStore: wraps any Store with throughput and concurrency limits
//   - minio.Store: MinIO and S3-compatible object storage
//   - s3.Store: Amazon S3 with multipart uploads
package blobstore
