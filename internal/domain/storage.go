package domain

import (
	"context"
	"sync/atomic"
)

// ObjectStore is the subset of the object storage API the pipeline consumes.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string) error
	PublicURL(bucket, path string) (string, error)
	Remove(ctx context.Context, bucket string, paths []string) error
	Download(ctx context.Context, bucket, path string) ([]byte, error)
}

// TemporaryAsset is a staged object with a public URL.
type TemporaryAsset struct {
	Bucket string
	Path   string
	URL    string

	scheduled atomic.Bool
}

// MarkScheduled flips the asset into the "deletion scheduled" state.
// It returns false if a deletion was already scheduled.
func (a *TemporaryAsset) MarkScheduled() bool {
	return a.scheduled.CompareAndSwap(false, true)
}

// DeletionScheduled reports whether Unstage has already run for this asset.
func (a *TemporaryAsset) DeletionScheduled() bool {
	return a.scheduled.Load()
}
