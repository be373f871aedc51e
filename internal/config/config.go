package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"study-set-server/internal/domain"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort     string
	MaxFileSize    int64
	LogLevel       string
	AllowedOrigins []string

	SupabaseURL   string
	SupabaseKey   string
	StorageBucket string
	TempPrefix    string

	SofficePath       string
	ConversionTimeout time.Duration

	LLMProvider   string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OllamaURL     string
	TextModel     string
	VisionModel   string
	GCPProjectID  string
	GCPLocation   string
	ModelTimeout  time.Duration

	CleanupWorkers   int
	CleanupQueueSize int
}

var defaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:     getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		MaxFileSize:    getEnvInt64OrDefault("MAX_FILE_SIZE", 25*1024*1024), // 25MB default
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvListOrDefault("ALLOWED_ORIGINS", defaultAllowedOrigins),

		SupabaseURL:   getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:   getEnvOrDefault("SUPABASE_SERVICE_KEY", getEnvOrDefault("SUPABASE_ANON_KEY", "")),
		StorageBucket: getEnvOrDefault("STORAGE_BUCKET", "study-materials"),
		TempPrefix:    getEnvOrDefault("TEMP_PREFIX", "temp"),

		SofficePath:       getEnvOrDefault("SOFFICE_PATH", "soffice"),
		ConversionTimeout: getEnvSecondsOrDefault("CONVERSION_TIMEOUT_SECONDS", 120*time.Second),

		LLMProvider:   strings.ToLower(getEnvOrDefault("LLM_PROVIDER", "openai")),
		OpenAIAPIKey:  getEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnvOrDefault("OPENAI_BASE_URL", ""),
		OllamaURL:     getEnvOrDefault("OLLAMA_URL", "http://localhost:11434"),
		TextModel:     getEnvOrDefault("TEXT_MODEL", "gpt-4o-mini"),
		VisionModel:   getEnvOrDefault("VISION_MODEL", "gpt-4o"),
		GCPProjectID:  getEnvOrDefault("GCP_PROJECT_ID", ""),
		GCPLocation:   getEnvOrDefault("GCP_LOCATION", "us-central1"),
		ModelTimeout:  getEnvSecondsOrDefault("MODEL_TIMEOUT_SECONDS", 60*time.Second),

		CleanupWorkers:   getEnvIntOrDefault("CLEANUP_WORKERS", 2),
		CleanupQueueSize: getEnvIntOrDefault("CLEANUP_QUEUE_SIZE", 64),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetMaxFileSize returns the maximum allowed file size
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetAllowedOrigins returns the CORS origins
func (c *AppConfig) GetAllowedOrigins() []string {
	return c.AllowedOrigins
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase key, preferring the service key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

func (c *AppConfig) GetStorageBucket() string {
	return c.StorageBucket
}

func (c *AppConfig) GetTempPrefix() string {
	return c.TempPrefix
}

func (c *AppConfig) GetSofficePath() string {
	return c.SofficePath
}

func (c *AppConfig) GetConversionTimeout() time.Duration {
	return c.ConversionTimeout
}

// GetLLMProvider returns openai, ollama or vertex
func (c *AppConfig) GetLLMProvider() string {
	return c.LLMProvider
}

func (c *AppConfig) GetOpenAIAPIKey() string {
	return c.OpenAIAPIKey
}

func (c *AppConfig) GetOpenAIBaseURL() string {
	return c.OpenAIBaseURL
}

func (c *AppConfig) GetOllamaURL() string {
	return c.OllamaURL
}

func (c *AppConfig) GetTextModel() string {
	return c.TextModel
}

func (c *AppConfig) GetVisionModel() string {
	return c.VisionModel
}

func (c *AppConfig) GetGCPProjectID() string {
	return c.GCPProjectID
}

func (c *AppConfig) GetGCPLocation() string {
	return c.GCPLocation
}

func (c *AppConfig) GetModelTimeout() time.Duration {
	return c.ModelTimeout
}

func (c *AppConfig) GetCleanupWorkers() int {
	return c.CleanupWorkers
}

func (c *AppConfig) GetCleanupQueueSize() int {
	return c.CleanupQueueSize
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func getEnvSecondsOrDefault(key string, defaultValue time.Duration) time.Duration {
	if seconds := getEnvIntOrDefault(key, 0); seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
