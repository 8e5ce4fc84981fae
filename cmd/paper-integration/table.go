// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/paper-integration/internal/export"
	"github.com/pdiddy/paper-integration/pkg/types"
)

const logsDir = "logs"

// tablePatterns select the newest converted table when none is named.
var tablePatterns = []string{"papers_*", "*_converted_*"}

// loadPapers reads the table named by args, or the newest table in the
// output directory.
func loadPapers(cfg types.PipelineConfig, args []string) (string, []types.Paper, error) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	} else {
		p, err := export.Latest(cfg.OutputDir, tablePatterns...)
		if err != nil {
			return "", nil, err
		}
		path = p
	}

	rows, err := export.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return path, types.PapersFromRows(rows, cfg.MissingMarker), nil
}

// openRunLog creates <output_dir>/logs/<stage>_<timestamp>.log and returns
// a writer that copies to both w and the log file.
func openRunLog(cfg types.PipelineConfig, stage string, w io.Writer) (io.Writer, func() error, error) {
	dir := filepath.Join(cfg.OutputDir, logsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	name := fmt.Sprintf("%s_%s.log", stage, time.Now().Format("20060102_150405"))
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, nil, fmt.Errorf("creating log file: %w", err)
	}
	return io.MultiWriter(w, f), f.Close, nil
}
