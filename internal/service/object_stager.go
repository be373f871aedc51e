package service

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"study-set-server/internal/domain"

	"github.com/google/uuid"
)

const defaultStagedExt = "jpg"

// ObjectStager stages images in the object store under a temporary prefix
type ObjectStager struct {
	store   domain.ObjectStore
	cleanup *CleanupQueue
	bucket  string
	prefix  string
	logger  domain.Logger
	now     func() time.Time
}

// NewObjectStager creates a new stager
func NewObjectStager(store domain.ObjectStore, cleanup *CleanupQueue, bucket, prefix string, logger domain.Logger) *ObjectStager {
	return &ObjectStager{
		store:   store,
		cleanup: cleanup,
		bucket:  bucket,
		prefix:  strings.Trim(prefix, "/"),
		logger:  logger,
		now:     time.Now,
	}
}

// Stage uploads data and returns an asset with a public URL, or nil on any storage error.
func (s *ObjectStager) Stage(ctx context.Context, data []byte, filenameHint string, contentType string) *domain.TemporaryAsset {
	objectPath := s.objectPath(filenameHint)

	if err := s.store.Upload(ctx, s.bucket, objectPath, data, contentType); err != nil {
		s.logger.Warn("Failed to stage temporary asset", "bucket", s.bucket, "path", objectPath, "error", fmt.Errorf("%w: %v", domain.ErrStagingFailed, err))
		return nil
	}

	url, err := s.store.PublicURL(s.bucket, objectPath)
	if err != nil || url == "" {
		s.logger.Warn("Failed to resolve public URL for staged asset", "bucket", s.bucket, "path", objectPath, "error", err)
		// the object exists, so it still needs removing
		s.Unstage(&domain.TemporaryAsset{Bucket: s.bucket, Path: objectPath})
		return nil
	}

	s.logger.Debug("Staged temporary asset", "bucket", s.bucket, "path", objectPath, "bytes", len(data))
	return &domain.TemporaryAsset{Bucket: s.bucket, Path: objectPath, URL: url}
}

// Unstage schedules one background deletion of the asset and returns immediately.
func (s *ObjectStager) Unstage(asset *domain.TemporaryAsset) {
	if asset == nil || asset.Path == "" || !asset.MarkScheduled() {
		return
	}

	bucket, objectPath := asset.Bucket, asset.Path
	queued := s.cleanup.Enqueue(CleanupTask{
		Name: "unstage",
		Run: func(ctx context.Context) error {
			return s.store.Remove(ctx, bucket, []string{objectPath})
		},
	})
	if !queued {
		s.logger.Warn("Temporary asset left for out-of-band cleanup", "bucket", bucket, "path", objectPath)
	}
}

func (s *ObjectStager) objectPath(filenameHint string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(strings.TrimSpace(filenameHint))), ".")
	if ext == "" {
		ext = defaultStagedExt
	}
	name := fmt.Sprintf("%d-%s.%s", s.now().UnixMilli(), uuid.NewString()[:8], ext)
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}
