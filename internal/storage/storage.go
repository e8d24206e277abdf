// Package storage archives finished productions. Objects are addressed by
// slash-separated keys under a configured prefix.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"omniflow/pkg/config"
)

const localScheme = "file://"

var ErrDisabled = errors.New("artifact storage disabled")

type Store interface {
	Put(ctx context.Context, key string, r io.Reader) error
	List(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Open returns the store named by cfg.Bucket. A file:// bucket archives to
// a local directory; anything else is a GCS bucket.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage enabled but no bucket configured (set storage.bucket or GCS_BUCKET)")
	}
	if dir, ok := strings.CutPrefix(cfg.Bucket, localScheme); ok {
		return NewLocalStore(dir), nil
	}
	return NewGCSStore(ctx, cfg.Bucket)
}

// UploadDir copies every regular file under dir to the store, keyed by
// prefix plus the file's path relative to dir. It returns the keys written.
func UploadDir(ctx context.Context, s Store, dir, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		key := Key(prefix, filepath.ToSlash(rel))

		f, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("open %s: %w", p, err)
		}
		defer func() { _ = f.Close() }()

		if err := s.Put(ctx, key, f); err != nil {
			return fmt.Errorf("upload %s: %w", key, err)
		}
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		return keys, err
	}
	return keys, nil
}

func Key(parts ...string) string {
	var clean []string
	for _, p := range parts {
		if p = strings.Trim(p, "/"); p != "" {
			clean = append(clean, p)
		}
	}
	return path.Join(clean...)
}
