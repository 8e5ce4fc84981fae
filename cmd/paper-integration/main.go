// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-integration CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-integration/internal/secrets"
	"github.com/pdiddy/paper-integration/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

// rootCmd is the base command for the paper-integration CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-integration",
	Short: "Turn BibTeX exports into tables, PDFs, and charts",
	Long: `paper-integration converts BibTeX exports from digital libraries into
tabular form and works from those tables: it lists and downloads the papers,
renames downloaded PDFs after their titles, charts papers by year, and keeps
a searchable SQLite catalog of converted records.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(secrets.DefaultDir, os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./paper-integration.yaml or ~/.config/paper-integration/paper-integration.yaml)")
	pf.String("source-dir", "", "directory searched for input .bib files")
	pf.String("output-dir", "", "directory for converted tables, logs, and the catalog")
	pf.String("download-dir", "", "directory for downloaded PDFs")

	viper.BindPFlag("source_dir", pf.Lookup("source-dir"))
	viper.BindPFlag("output_dir", pf.Lookup("output-dir"))
	viper.BindPFlag("download_dir", pf.Lookup("download-dir"))

	setDefaults()
}

func setDefaults() {
	viper.SetDefault("source_dir", "source")
	viper.SetDefault("output_dir", "output")
	viper.SetDefault("download_dir", "downloads")
	viper.SetDefault("file_patterns.bib", []string{"*.bib"})
	viper.SetDefault("missing_marker", "")
	viper.SetDefault("timeout", "30s")
	viper.SetDefault("user_agent", "paper-integration/0.1")
	viper.SetDefault("retry_count", 3)
	viper.SetDefault("delay", "2s")
	viper.SetDefault("contact_email", "")
	viper.SetDefault("rename.cutoff", 0.5)
	viper.SetDefault("rename.workers", 4)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-integration")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-integration"))
		}
	}

	viper.SetEnvPrefix("PAPER_INTEGRATION")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig unmarshals the merged flag, env, file and default settings.
func loadConfig() (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}
	cfg.ContactEmail = loadedSecrets.ContactEmail(cfg.ContactEmail)
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
