package supabase

import (
	"fmt"

	"study-set-server/internal/domain"

	"github.com/supabase-community/supabase-go"
)

// Client owns the single supabase-go client shared by the object store and the study-set repository.
type Client struct {
	client *supabase.Client
	config domain.Config
	logger domain.Logger
}

// NewSupabaseClient returns an uninitialized client; call Initialize before use.
func NewSupabaseClient(config domain.Config, logger domain.Logger) domain.SupabaseClient {
	return &Client{config: config, logger: logger}
}

// DB returns the underlying client, or nil before Initialize succeeds
func (c *Client) DB() *supabase.Client {
	return c.client
}

// Initialize connects with the service key and checks that the staging bucket exists.
// A missing bucket is only logged; uploads will fail and image naming falls back to text.
func (c *Client) Initialize() error {
	url := c.config.GetSupabaseURL()
	key := c.config.GetSupabaseKey()
	if url == "" || key == "" {
		return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY must be set")
	}

	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{Schema: "public"})
	if err != nil {
		return fmt.Errorf("create supabase client: %w", err)
	}
	c.client = client

	bucket := c.config.GetStorageBucket()
	if _, err := client.Storage.GetBucket(bucket); err != nil {
		c.logger.Warn("Storage bucket not reachable", "bucket", bucket, "error", err.Error())
	}

	c.logger.Info("Supabase client initialized", "url", url, "bucket", bucket)
	return nil
}
