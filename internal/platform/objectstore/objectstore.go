// Package objectstore stores uploaded images in S3-compatible buckets.
package objectstore

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

const (
	BucketProductImages = "product-images"
	BucketGalleryImages = "gallery-images"
)

// Store is the object storage port.
type Store interface {
	Put(ctx context.Context, bucket, key, contentType string, r io.Reader, size int64) (publicURL string, err error)
	Delete(ctx context.Context, bucket, key string) error
}

// NewKey generates "<prefix>/<uuid><ext>" keeping the original file's
// extension, lowercased.
func NewKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return prefix + "/" + uuid.NewString() + ext
}

// KeyFromURL recovers the object key from a public URL produced by Put for
// the given bucket. Returns "" when the URL does not point into the bucket.
func KeyFromURL(publicURL, bucket string) string {
	marker := "/" + bucket + "/"
	idx := strings.Index(publicURL, marker)
	if idx < 0 {
		return ""
	}
	return publicURL[idx+len(marker):]
}

func joinURL(base, bucket, key string) string {
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + key
}
