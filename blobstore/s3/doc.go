// Package s3 provides a blobstore.Store backed by Amazon S3.
//
// Puts go through the SDK's multipart uploader so large snapshots are
// uploaded in parallel parts.
package s3
