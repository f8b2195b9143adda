// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers .env, a YAML file and WORKPULSE_ environment variables on top.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// QueueSize bounds the number of analyses waiting for a worker.
	QueueSize int `koanf:"queue_size" validate:"gte=1"`

	// WorkerCount sets the number of analysis workers.
	WorkerCount int `koanf:"worker_count" validate:"gte=1"`

	// DedupeSize bounds the fingerprint index of recent submissions.
	DedupeSize int `koanf:"dedupe_size" validate:"gte=0"`

	// ResultCapacity bounds how many analyses are kept in memory.
	ResultCapacity int `koanf:"result_capacity" validate:"gte=1"`

	// MaxUploadBytes caps the multipart body of POST /analyses.
	MaxUploadBytes int64 `koanf:"max_upload_bytes" validate:"gte=1024"`

	// DefaultDelimiter is used for activity exports when a request names none.
	DefaultDelimiter string `koanf:"default_delimiter" validate:"oneof=, ; comma semicolon"`

	// SignificanceThreshold is the |t| above which a correlation is High.
	SignificanceThreshold float64 `koanf:"significance_threshold" validate:"gt=0"`

	// StandardBrowser and StandardPDFTool are the fallback standard apps.
	StandardBrowser string `koanf:"standard_browser"`
	StandardPDFTool string `koanf:"standard_pdf_tool"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":9080",
		QueueSize:             256,
		WorkerCount:           runtime.NumCPU(),
		DedupeSize:            1024,
		ResultCapacity:        512,
		MaxUploadBytes:        64 << 20,
		DefaultDelimiter:      ",",
		SignificanceThreshold: 2,
		StandardBrowser:       "Google Chrome",
		StandardPDFTool:       "Adobe Acrobat",
	}
}
