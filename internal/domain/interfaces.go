package domain

import (
	"context"
	"time"
)

// TextExtractor produces best-effort plain text from classified bytes.
// It never fails; an empty string is the failure signal.
type TextExtractor interface {
	Extract(data []byte, mimeType string) string
}

// ConversionEngine turns office documents into PDF bytes.
type ConversionEngine interface {
	ConvertToPDF(ctx context.Context, data []byte, sourceExt string) ([]byte, error)
}

// AvailabilityProbe reports whether the conversion engine can be used right now.
type AvailabilityProbe interface {
	Available(ctx context.Context) bool
}

// AssetStager puts images somewhere a vision model can fetch them from.
type AssetStager interface {
	// Stage returns nil when the asset could not be stored.
	Stage(ctx context.Context, data []byte, filenameHint string, contentType string) *TemporaryAsset
	// Unstage schedules exactly one best-effort deletion and returns immediately.
	Unstage(asset *TemporaryAsset)
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetMaxFileSize() int64
	GetLogLevel() string
	GetAllowedOrigins() []string

	GetSupabaseURL() string
	GetSupabaseKey() string
	GetStorageBucket() string
	GetTempPrefix() string

	GetSofficePath() string
	GetConversionTimeout() time.Duration

	GetLLMProvider() string
	GetOpenAIAPIKey() string
	GetOpenAIBaseURL() string
	GetOllamaURL() string
	GetTextModel() string
	GetVisionModel() string
	GetGCPProjectID() string
	GetGCPLocation() string
	GetModelTimeout() time.Duration

	GetCleanupWorkers() int
	GetCleanupQueueSize() int
}
