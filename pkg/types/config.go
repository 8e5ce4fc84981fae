// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// FilePatterns lists glob patterns per input kind, matched inside SourceDir.
type FilePatterns struct {
	Bib []string `json:"bib" yaml:"bib" mapstructure:"bib"`
}

// ConvertConfig holds settings for turning bibliography files into tables.
type ConvertConfig struct {
	// SourceDir is searched for input files when none are given.
	SourceDir string `json:"source_dir" yaml:"source_dir" mapstructure:"source_dir"`

	// OutputDir receives converted tables, logs, and the catalog index.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// FilePatterns selects input files inside SourceDir.
	FilePatterns FilePatterns `json:"file_patterns" yaml:"file_patterns" mapstructure:"file_patterns"`

	// MissingMarker is written for absent fields (default: empty string).
	MissingMarker string `json:"missing_marker" yaml:"missing_marker" mapstructure:"missing_marker"`
}

// DownloadConfig holds settings for the download stage.
type DownloadConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// DownloadDir is the directory PDFs and the download report are written to.
	DownloadDir string `json:"download_dir" yaml:"download_dir" mapstructure:"download_dir"`

	// RetryCount is the number of extra attempts after a failed download (default 3).
	RetryCount int `json:"retry_count" yaml:"retry_count" mapstructure:"retry_count"`

	// Delay is the pause between retries and between consecutive papers (default 2s).
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`

	// ContactEmail is passed to OpenAlex as the mailto parameter when set.
	ContactEmail string `json:"contact_email,omitempty" yaml:"contact_email,omitempty" mapstructure:"contact_email"`
}

// RenameConfig holds settings for the rename stage.
type RenameConfig struct {
	// Cutoff is the minimum title similarity for a match, 0..1 (default 0.5).
	Cutoff float64 `json:"cutoff" yaml:"cutoff" mapstructure:"cutoff"`

	// Workers bounds the number of PDFs processed concurrently (default 4).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	ConvertConfig  `yaml:",inline" mapstructure:",squash"`
	DownloadConfig `yaml:",inline" mapstructure:",squash"`
	Rename         RenameConfig `json:"rename" yaml:"rename" mapstructure:"rename"`
}
