package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

var _ Store = (*GCSStore)(nil)

// GCSStore archives objects to a Cloud Storage bucket using application
// default credentials.
type GCSStore struct {
	gcs    *storage.Client
	bucket *storage.BucketHandle
	name   string
}

func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	gcs, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	return &GCSStore{gcs: gcs, bucket: gcs.Bucket(bucket), name: bucket}, nil
}

func (s *GCSStore) Close() error {
	return s.gcs.Close()
}

func (s *GCSStore) uri(key string) string {
	return "gs://" + s.name + "/" + key
}

// Put streams r to key. The content type is derived from the key's
// extension when known.
func (s *GCSStore) Put(ctx context.Context, key string, r io.Reader) error {
	w := s.bucket.Object(key).NewWriter(ctx)
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("write %s: %w", s.uri(key), err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", s.uri(key), err)
	}
	return nil
}

func (s *GCSStore) List(ctx context.Context, prefix string) ([]string, error) {
	q := &storage.Query{Prefix: prefix}
	if err := q.SetAttrSelection([]string{"Name"}); err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var keys []string
	for it := s.bucket.Objects(ctx, q); ; {
		attrs, err := it.Next()
		switch {
		case errors.Is(err, iterator.Done):
			return keys, nil
		case err != nil:
			return nil, fmt.Errorf("list %s: %w", s.uri(prefix), err)
		}
		keys = append(keys, attrs.Name)
	}
}
