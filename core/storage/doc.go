// Package storage wraps the MinIO client for the bucket that holds sync
// inputs (imports/) and delta reports (reports/).
//
// The Client interface keeps the MinIO surface small enough to mock; see
// core/storage/mocks. ParseURI recognizes storage:// input paths, and
// ReadObject / WriteObject move whole objects in and out of the bucket.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	data, err := storage.ReadObject(ctx, client, cfg.Storage.Bucket, "imports/lab.csv")
package storage
