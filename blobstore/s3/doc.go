// Package s3 provides an S3 implementation of the blobstore.Store interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("sampler/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
// # Features
//
//   - Streaming multipart uploads for large checkpoints
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
//   - Optional DynamoDB commit store for safe concurrent CURRENT updates
package s3
