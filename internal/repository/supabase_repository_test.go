package repository

import (
	"context"
	"errors"
	"testing"

	"study-set-server/internal/domain"

	"github.com/supabase-community/supabase-go"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, fields ...interface{})             {}
func (nopLogger) Error(msg string, err error, fields ...interface{}) {}
func (nopLogger) Debug(msg string, fields ...interface{})            {}
func (nopLogger) Warn(msg string, fields ...interface{})             {}

// uninitializedClient mirrors a server started without Supabase credentials
type uninitializedClient struct{}

func (uninitializedClient) Initialize() error      { return errors.New("not configured") }
func (uninitializedClient) DB() *supabase.Client { return nil }

func TestSupabaseObjectStore_UninitializedClient(t *testing.T) {
	store := NewSupabaseObjectStore(uninitializedClient{}, nopLogger{})
	ctx := context.Background()

	if err := store.Upload(ctx, "b", "p", []byte("x"), "image/png"); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable from Upload, got %v", err)
	}
	if _, err := store.PublicURL("b", "p"); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable from PublicURL, got %v", err)
	}
	if err := store.Remove(ctx, "b", []string{"p"}); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable from Remove, got %v", err)
	}
	if _, err := store.Download(ctx, "b", "p"); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable from Download, got %v", err)
	}
}

func TestSupabaseStudySetRepository_UninitializedClient(t *testing.T) {
	repo := NewSupabaseStudySetRepository(uninitializedClient{}, nopLogger{})

	if _, err := repo.GetSourceFile(context.Background(), "set-1"); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestDecodeStudySetFile(t *testing.T) {
	file, err := decodeStudySetFile([]byte(`[{"file_path":"u1/notes.pdf","file_name":"notes.pdf","file_type":"application/pdf"}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if file.FilePath != "u1/notes.pdf" || file.FileName != "notes.pdf" || file.FileType != "application/pdf" {
		t.Fatalf("unexpected file %+v", file)
	}

	if _, err := decodeStudySetFile([]byte(`[]`)); !errors.Is(err, domain.ErrStudySetNotFound) {
		t.Fatalf("expected ErrStudySetNotFound, got %v", err)
	}
	if _, err := decodeStudySetFile([]byte(`{"message":"bad"}`)); err == nil {
		t.Fatalf("expected decode error")
	}
}
