package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// Config holds the daemon configuration.
type Config struct {
	// ListenAddr is the bridge gRPC address.
	ListenAddr string `json:"listen_addr"`
	// MetricsAddr serves Prometheus metrics; empty disables it.
	MetricsAddr string `json:"metrics_addr,omitempty"`

	// SaveTime is the initial _scoreSaveTime in seconds.
	SaveTime float64 `json:"save_time"`
	// VarsFile is an optional JSON file of server variables, re-read every
	// VarsReloadTime seconds (0 reads it once).
	VarsFile       string `json:"vars_file,omitempty"`
	VarsReloadTime int    `json:"vars_reload_time,omitempty"`

	// MaxRecords bounds the number of stored records; 0 is unbounded.
	MaxRecords          int64 `json:"max_records,omitempty"`
	KeepEmpty           bool  `json:"keep_empty,omitempty"`
	OverwriteDuplicates bool  `json:"overwrite_duplicates,omitempty"`

	// Tokens maps bearer tokens to host IDs.
	Tokens map[string]string `json:"tokens,omitempty"`
	// AllowList holds CIDRs or addresses of game servers.
	AllowList []string `json:"allow_list,omitempty"`

	// RateLimit is calls per second across all hosts; 0 disables it.
	RateLimit float64 `json:"rate_limit,omitempty"`
	RateBurst int     `json:"rate_burst,omitempty"`

	Debug       bool `json:"debug,omitempty"`
	TraceStdout bool `json:"trace_stdout,omitempty"`
}

// LoadConfig loads configuration from a JSON file on fs and applies
// defaults.
func LoadConfig(fs afero.Fs, path string, config *Config) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	// Resolve the vars file relative to the config file location
	if config.VarsFile != "" && !filepath.IsAbs(config.VarsFile) {
		config.VarsFile = filepath.Join(filepath.Dir(path), config.VarsFile)
	}

	// Set defaults for optional settings
	if config.ListenAddr == "" {
		config.ListenAddr = "127.0.0.1:7451"
	}
	if config.SaveTime <= 0 {
		config.SaveTime = 120
	}
	if config.RateLimit > 0 && config.RateBurst <= 0 {
		config.RateBurst = int(config.RateLimit)
		if config.RateBurst < 1 {
			config.RateBurst = 1
		}
	}
	if config.MaxRecords < 0 {
		return fmt.Errorf("max_records must not be negative")
	}

	return nil
}
