// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-integration/internal/chart"
)

const visualizationDir = "visualization"

var chartCmd = &cobra.Command{
	Use:   "chart [table]",
	Short: "Chart papers by publication year",
	Long: `Chart counts the papers in a converted table per year, prints a text
histogram, and writes a workbook with the counts and a column chart to
output_dir/visualization/papers_by_year.xlsx.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChart,
}

func init() {
	chartCmd.Flags().StringP("output", "o", "", "workbook path (default: <output_dir>/visualization/papers_by_year.xlsx)")

	rootCmd.AddCommand(chartCmd)
}

func runChart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	table, papers, err := loadPapers(cfg, args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	counts := chart.CountByYear(papers)
	fmt.Fprintf(out, "Papers by year (%s):\n\n", table)
	if len(counts) == 0 {
		fmt.Fprintln(out, "No papers with a year.")
	}
	chart.WriteHistogram(out, counts)

	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		path = filepath.Join(cfg.OutputDir, visualizationDir, chart.DefaultFile)
	}
	if err := chart.WriteWorkbook(path, counts); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nWorkbook written to %s\n", path)
	return nil
}
