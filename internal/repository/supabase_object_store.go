package repository

import (
	"bytes"
	"context"
	"fmt"

	"study-set-server/internal/domain"

	storage_go "github.com/supabase-community/storage-go"
)

// SupabaseObjectStore implements domain.ObjectStore on Supabase Storage
type SupabaseObjectStore struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewSupabaseObjectStore creates a new Supabase object store
func NewSupabaseObjectStore(supabaseClient domain.SupabaseClient, logger domain.Logger) *SupabaseObjectStore {
	return &SupabaseObjectStore{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

func (s *SupabaseObjectStore) storage() (*storage_go.Client, error) {
	client := s.supabaseClient.DB()
	if client == nil || client.Storage == nil {
		return nil, domain.ErrStoreUnavailable
	}
	return client.Storage, nil
}

// Upload writes data at bucket/path, replacing any existing object
func (s *SupabaseObjectStore) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) error {
	st, err := s.storage()
	if err != nil {
		return err
	}

	upsert := true
	cacheControl := "60"
	opts := storage_go.FileOptions{Upsert: &upsert, CacheControl: &cacheControl}
	if contentType != "" {
		opts.ContentType = &contentType
	}

	if _, err := st.UploadFile(bucket, path, bytes.NewReader(data), opts); err != nil {
		return fmt.Errorf("failed to upload %s/%s: %w", bucket, path, err)
	}
	return nil
}

// PublicURL returns the public URL of an object
func (s *SupabaseObjectStore) PublicURL(bucket, path string) (string, error) {
	st, err := s.storage()
	if err != nil {
		return "", err
	}
	resp := st.GetPublicUrl(bucket, path)
	if resp.SignedURL == "" {
		return "", fmt.Errorf("no public url for %s/%s", bucket, path)
	}
	return resp.SignedURL, nil
}

// Remove deletes objects in bucket
func (s *SupabaseObjectStore) Remove(ctx context.Context, bucket string, paths []string) error {
	st, err := s.storage()
	if err != nil {
		return err
	}
	if _, err := st.RemoveFile(bucket, paths); err != nil {
		return fmt.Errorf("failed to remove %d object(s) from %s: %w", len(paths), bucket, err)
	}
	s.logger.Debug("Removed objects", "bucket", bucket, "count", len(paths))
	return nil
}

// Download reads an object into memory
func (s *SupabaseObjectStore) Download(ctx context.Context, bucket, path string) ([]byte, error) {
	st, err := s.storage()
	if err != nil {
		return nil, err
	}
	data, err := st.DownloadFile(bucket, path)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s/%s: %w", bucket, path, err)
	}
	return data, nil
}
