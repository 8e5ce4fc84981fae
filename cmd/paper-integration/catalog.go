// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-integration/internal/bibtex"
	"github.com/pdiddy/paper-integration/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the SQLite catalog of converted records",
	Long: `Catalog keeps every converted record in output_dir/index/catalog.db with
a full-text index over titles, abstracts, and keywords. Use subcommands to
import BibTeX files, search the catalog, list imports, or export it.`,
}

// --- import subcommand ---

var catalogImportCmd = &cobra.Command{
	Use:   "import [files...]",
	Short: "Import BibTeX files into the catalog",
	Long: `Import parses BibTeX files (the source directory's files when none are
given) and upserts their records by cite key. Records without a cite key
are skipped.`,
	RunE: runCatalogImport,
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	files := args
	if len(files) == 0 {
		if files, err = sourceFiles(cfg.ConvertConfig); err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no BibTeX files matching %v in %s", cfg.FilePatterns.Bib, cfg.SourceDir)
		}
	}
	source, _ := cmd.Flags().GetString("source")
	out := cmd.OutOrStdout()

	store, err := catalog.Open(cfg.OutputDir)
	if err != nil {
		return err
	}
	defer store.Close()

	failed := 0
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(out, "failed:  %s (%v)\n", file, err)
			failed++
			continue
		}
		records := bibtex.Parse(string(data))
		tagSource(records, source)
		summary, err := store.Import(context.Background(), file, records)
		if err != nil {
			fmt.Fprintf(out, "failed:  %s (%v)\n", file, err)
			failed++
			continue
		}
		fmt.Fprintf(out, "imported: %s (%d inserted, %d updated, %d skipped)\n",
			file, summary.Inserted, summary.Updated, summary.Skipped)
	}

	n, err := store.Count(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nCatalog holds %d entries\n", n)

	if failed > 0 {
		return fmt.Errorf("%d file(s) failed to import", failed)
	}
	return nil
}

// --- search subcommand ---

var catalogSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the catalog with full-text search and filters",
	Long: `Search matches the query against titles, abstracts, and keywords,
ranked by relevance. --year and --type narrow the results; with only
filters, entries are listed by year and cite key.`,
	RunE: runCatalogSearch,
}

func runCatalogSearch(cmd *cobra.Command, args []string) error {
	opts := catalogQueryFromFlags(cmd, args)
	if opts.Query == "" && opts.Year == "" && opts.DocumentType == "" {
		return fmt.Errorf("query or filter required: provide a search query, --year, or --type")
	}

	store, err := openCatalog()
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Search(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(cmd, results, jsonOutput)
}

func formatSearchOutput(cmd *cobra.Command, results []catalog.Entry, jsonOutput bool) error {
	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if results == nil {
			results = []catalog.Entry{}
		}
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}

	fmt.Fprintf(out, "%-4s  %-20s  %-4s  %-14s  %s\n", "Rank", "Cite key", "Year", "Type", "Title")
	fmt.Fprintln(out, strings.Repeat("-", 100))
	for i, e := range results {
		fmt.Fprintf(out, "%-4d  %-20s  %-4s  %-14s  %s\n",
			i+1, truncate(e.CiteKey, 20), e.Year, truncate(e.DocumentType, 14), truncate(e.Title, 50))
	}
	fmt.Fprintf(out, "\n%d results\n", len(results))
	return nil
}

// --- imports subcommand ---

var catalogImportsCmd = &cobra.Command{
	Use:   "imports",
	Short: "List past catalog imports",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCatalog()
		if err != nil {
			return err
		}
		defer store.Close()

		imports, err := store.Imports(context.Background())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(imports) == 0 {
			fmt.Fprintln(out, "No imports yet.")
			return nil
		}
		for _, im := range imports {
			fmt.Fprintf(out, "%s  %s  %5d  %s\n",
				im.ImportedAt.Local().Format("2006-01-02 15:04:05"), im.ID, im.Count, im.Source)
		}
		return nil
	},
}

// --- export subcommand ---

var catalogExportCmd = &cobra.Command{
	Use:   "export [query]",
	Short: "Export the catalog to YAML or JSON",
	Long: `Export writes the whole catalog (or the subset selected by a query and
the --year and --type filters) to output_dir/index/catalog.yaml or
catalog.json.`,
	RunE: runCatalogExport,
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := openCatalog()
	if err != nil {
		return err
	}
	defer store.Close()

	opts := catalogQueryFromFlags(cmd, args)

	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(context.Background(), opts)
	case "json":
		path, err = store.ExportJSON(context.Background(), opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	return nil
}

// --- shared helpers ---

func openCatalog() (*catalog.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return catalog.Open(cfg.OutputDir)
}

func catalogQueryFromFlags(cmd *cobra.Command, args []string) catalog.QueryOptions {
	year, _ := cmd.Flags().GetString("year")
	docType, _ := cmd.Flags().GetString("type")
	limit, _ := cmd.Flags().GetInt("limit")
	return catalog.QueryOptions{
		Query:        strings.Join(args, " "),
		Year:         year,
		DocumentType: docType,
		MaxResults:   limit,
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	catalogImportCmd.Flags().String("source", "", "value for the source field of records that have none")

	for _, c := range []*cobra.Command{catalogSearchCmd, catalogExportCmd} {
		c.Flags().String("year", "", "filter by publication year")
		c.Flags().String("type", "", "filter by document type (e.g. article)")
	}
	catalogSearchCmd.Flags().Int("limit", 0, "maximum results (0 = default 20)")
	catalogSearchCmd.Flags().Bool("json", false, "output results as JSON")

	catalogExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	catalogExportCmd.Flags().Int("limit", 0, "maximum entries to export (0 = all)")

	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
	catalogCmd.AddCommand(catalogImportsCmd)
	catalogCmd.AddCommand(catalogExportCmd)

	rootCmd.AddCommand(catalogCmd)
}
