package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

// Scheme prefixes input paths that live in the bucket.
const Scheme = "storage://"

// ParseURI returns the object name of a storage:// path.
// ok is false for plain filesystem paths.
func ParseURI(p string) (object string, ok bool) {
	if !strings.HasPrefix(p, Scheme) {
		return "", false
	}
	return strings.TrimLeft(strings.TrimPrefix(p, Scheme), "/"), true
}

// ReportKey builds the object name of a delta report:
// <prefix>/<table>/<name>_<timestamp>.csv
func ReportKey(prefix, table, name string, at time.Time) string {
	return path.Join(prefix, table, fmt.Sprintf("%s_%s.csv", name, at.UTC().Format("20060102T150405Z")))
}

// ReadObject downloads an object fully.
func ReadObject(ctx context.Context, client Client, bucket, object string) ([]byte, error) {
	rc, err := client.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s/%s: %w", bucket, object, err)
	}
	return data, nil
}

// WriteObject uploads data under object.
func WriteObject(ctx context.Context, client Client, bucket, object, contentType string, data []byte) error {
	_, err := client.PutObject(ctx, bucket, object, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s/%s: %w", bucket, object, err)
	}
	return nil
}
