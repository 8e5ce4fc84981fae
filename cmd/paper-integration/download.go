// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-integration/internal/download"
)

var downloadCmd = &cobra.Command{
	Use:   "download [table]",
	Short: "Download the papers listed in a converted table",
	Long: `Download fetches a PDF for every paper in a converted table. Papers
with a DOI are first looked up in OpenAlex for an open-access PDF; otherwise
the DOI resolver or the entry URL is used, following citation_pdf_url links
on HTML landing pages. Existing files are skipped.

Progress is written to stdout and to output_dir/logs/download_<timestamp>.log,
and a summary report is left in the download directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().Duration("delay", 0, "pause between papers and retries (default from config, 2s)")
	downloadCmd.Flags().Int("retries", -1, "extra attempts per failed request (default from config, 3)")
	downloadCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default from config, 30s)")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if d, _ := cmd.Flags().GetDuration("delay"); d > 0 {
		cfg.Delay = d
	}
	if n, _ := cmd.Flags().GetInt("retries"); n >= 0 {
		cfg.RetryCount = n
	}
	if t, _ := cmd.Flags().GetDuration("timeout"); t > 0 {
		cfg.Timeout = t
	}

	table, papers, err := loadPapers(cfg, args)
	if err != nil {
		return err
	}

	w, closeLog, err := openRunLog(cfg, "download", cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeLog()

	fmt.Fprintf(w, "Read %d papers from %s\n", len(papers), table)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := download.NewClient(cfg.DownloadConfig)
	result := download.DownloadBatch(ctx, client, papers, cfg.DownloadConfig, w)

	report, err := download.WriteReport(cfg.DownloadDir, len(papers), result, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Report written to %s\n", report)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("download interrupted: %w", err)
	}
	if result.HasFailures() {
		return fmt.Errorf("%d paper(s) failed to download", result.Failed)
	}
	return nil
}
