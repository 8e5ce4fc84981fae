// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-integration/internal/rename"
)

var renameCmd = &cobra.Command{
	Use:   "rename [table]",
	Short: "Rename downloaded PDFs after their catalog titles",
	Long: `Rename reads the title from the first page of every PDF in the download
directory, finds the closest title in a converted table, and renames the file
to "<title>-<year>-<source>.pdf". Files that already carry a catalog name are
skipped; files with no match above the cutoff are left alone and reported.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRename,
}

func init() {
	renameCmd.Flags().String("dir", "", "directory of PDFs to rename (default: download_dir)")
	renameCmd.Flags().Float64("cutoff", 0, "minimum title similarity, 0..1 (default from config, 0.5)")
	renameCmd.Flags().Int("workers", 0, "PDFs processed concurrently (default from config, 4)")

	rootCmd.AddCommand(renameCmd)
}

func runRename(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts := rename.Options{Cutoff: cfg.Rename.Cutoff, Workers: cfg.Rename.Workers}
	if c, _ := cmd.Flags().GetFloat64("cutoff"); c > 0 {
		opts.Cutoff = c
	}
	if n, _ := cmd.Flags().GetInt("workers"); n > 0 {
		opts.Workers = n
	}
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = cfg.DownloadDir
	}

	table, papers, err := loadPapers(cfg, args)
	if err != nil {
		return err
	}
	cat := rename.NewCatalog(papers)

	w, closeLog, err := openRunLog(cfg, "rename", cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeLog()

	fmt.Fprintf(w, "Catalog: %d titles from %s\n", cat.Len(), table)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := rename.RenameDir(ctx, dir, cat, opts, w)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) could not be renamed", result.Failed)
	}
	return nil
}
