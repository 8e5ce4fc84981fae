// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-integration/internal/bibtex"
	"github.com/pdiddy/paper-integration/internal/catalog"
	"github.com/pdiddy/paper-integration/internal/export"
	"github.com/pdiddy/paper-integration/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert BibTeX files into a table",
	Long: `Convert parses BibTeX files into records and writes them as one table
(CSV, XLSX, JSON, or YAML) in the output directory. Without arguments every
file in the source directory matching file_patterns.bib is converted.

Columns are ordered with cite_key first, then the well-known bibliographic
fields, then every other field in first-seen order. After writing, the
column list and per-field coverage are printed.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("format", "csv", "output format: csv, xlsx, json, or yaml")
	convertCmd.Flags().StringP("output", "o", "", "output file (default: <output_dir>/<prefix>_converted_<timestamp>.<format>)")
	convertCmd.Flags().String("prefix", "", "output file name prefix (default: --source, the input file name, or \"papers\")")
	convertCmd.Flags().String("source", "", "value for the source column of records that have no source field (e.g. acm)")
	convertCmd.Flags().Bool("catalog", false, "also import the records into the SQLite catalog")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	files := args
	if len(files) == 0 {
		files, err = sourceFiles(cfg.ConvertConfig)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no BibTeX files matching %v in %s", cfg.FilePatterns.Bib, cfg.SourceDir)
		}
	}

	source, _ := cmd.Flags().GetString("source")
	out := cmd.OutOrStdout()

	var records []bibtex.Record
	failed := 0
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(out, "failed:  %s (%v)\n", file, err)
			failed++
			continue
		}
		parsed := bibtex.Parse(string(data))
		tagSource(parsed, source)
		fmt.Fprintf(out, "converted: %s (%d records)\n", file, len(parsed))
		records = append(records, parsed...)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No records found.")
		if failed > 0 {
			return fmt.Errorf("%d file(s) could not be read", failed)
		}
		return nil
	}

	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := export.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		prefix, _ := cmd.Flags().GetString("prefix")
		if prefix == "" {
			prefix = defaultPrefix(source, files)
		}
		path = filepath.Join(cfg.OutputDir, export.OutputName(prefix, format, time.Now()))
	} else if !cmd.Flags().Changed("format") {
		format = ""
	}

	table := export.NewTable(records)
	if err := export.WriteFile(path, table, format, cfg.MissingMarker); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nWrote %d records to %s\n", len(records), path)
	fmt.Fprintf(out, "\nColumns: %s\n", strings.Join(table.Schema, ", "))
	fmt.Fprintln(out, "\nCoverage:")
	export.WriteCoverage(out, table)

	if importIt, _ := cmd.Flags().GetBool("catalog"); importIt {
		store, err := catalog.Open(cfg.OutputDir)
		if err != nil {
			return err
		}
		defer store.Close()

		summary, err := store.Import(context.Background(), strings.Join(files, ","), records)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nCatalog import %s: %d inserted, %d updated, %d skipped\n",
			summary.ID, summary.Inserted, summary.Updated, summary.Skipped)
	}

	if failed > 0 {
		return fmt.Errorf("%d file(s) could not be read", failed)
	}
	return nil
}

// sourceFiles globs the configured patterns inside the source directory.
func sourceFiles(cfg types.ConvertConfig) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range cfg.FilePatterns.Bib {
		matches, err := filepath.Glob(filepath.Join(cfg.SourceDir, pattern))
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// tagSource sets the source field on records that lack one. A source
// field read from the .bib file is kept.
func tagSource(records []bibtex.Record, source string) {
	if source == "" {
		return
	}
	for i := range records {
		if !records[i].Has(types.ColumnSource) {
			records[i].Set(types.ColumnSource, source)
		}
	}
}

func defaultPrefix(source string, files []string) string {
	if source != "" {
		return source
	}
	if len(files) == 1 {
		base := filepath.Base(files[0])
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return "papers"
}
