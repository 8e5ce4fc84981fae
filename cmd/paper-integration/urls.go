// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-integration/internal/download"
)

var urlsCmd = &cobra.Command{
	Use:   "urls [table]",
	Short: "List paper URLs from a converted table",
	Long: `Urls reads a converted table (the newest one in the output directory
unless a path is given) and writes a Markdown list of titles with their
DOI or URL links to the download directory. With --json the title to URL
mapping is printed to stdout instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runURLs,
}

func init() {
	urlsCmd.Flags().Bool("json", false, "print a title to URL mapping as JSON")

	rootCmd.AddCommand(urlsCmd)
}

func runURLs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	table, papers, err := loadPapers(cfg, args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(download.URLMap(papers))
	}

	if err := os.MkdirAll(cfg.DownloadDir, 0o755); err != nil {
		return fmt.Errorf("creating download directory: %w", err)
	}
	path := filepath.Join(cfg.DownloadDir, download.URLListName(time.Now()))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating URL list: %w", err)
	}
	n, writeErr := download.WriteURLList(f, papers)
	if err := f.Close(); err != nil && writeErr == nil {
		writeErr = err
	}
	if writeErr != nil {
		return fmt.Errorf("writing URL list: %w", writeErr)
	}

	fmt.Fprintf(out, "Read %d papers from %s\n", len(papers), table)
	fmt.Fprintf(out, "Wrote %d URLs to %s\n", n, path)
	return nil
}
