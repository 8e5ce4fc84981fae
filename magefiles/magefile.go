//go:build mage

// Package main contains Mage build targets for paper-integration developer tooling.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories the pipeline expects.
var projectDirs = []string{
	"source",
	"downloads",
	"output/logs",
	"output/index",
	"output/visualization",
}

// configFile is the starter config Init writes when none exists.
const configFile = "paper-integration.yaml"

const starterConfig = `source_dir: source
output_dir: output
download_dir: downloads
file_patterns:
  bib: ["*.bib"]
missing_marker: ""
timeout: 30s
retry_count: 3
delay: 2s
rename:
  cutoff: 0.5
  workers: 4
`

// Init creates the pipeline's working directories and a starter
// paper-integration.yaml. An existing config is left untouched.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(configFile, []byte(starterConfig), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", configFile, err)
		}
		fmt.Println("  ", configFile)
	}
	fmt.Println("Pipeline directories ready.")
	return nil
}

const (
	binDir  = "bin"
	binName = "paper-integration"
	cmdPkg  = "./cmd/paper-integration"

	// buildTags enables the FTS5 module in go-sqlite3 for the catalog.
	buildTags = "sqlite_fts5"
)

// binPath is the CLI binary the pipeline targets run.
var binPath = filepath.Join(binDir, binName)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		version = "dev"
	}
	ldflags := "-X main.version=" + version
	if err := sh.RunV("go", "build", "-tags", buildTags, "-ldflags", ldflags, "-o", binPath, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", binPath)
	return nil
}

// Test runs the unit tests with the catalog's FTS5 build tag.
func Test() error {
	return sh.RunV("go", "test", "-tags", buildTags, "./...")
}

// Clean removes the built binary.
func Clean() error {
	return sh.Rm(binDir)
}

// statsRoots are the source trees Stats reports on.
var statsRoots = []string{"cmd", "internal", "pkg", "magefiles"}

// packageStats is the non-blank line count of one Go package directory.
type packageStats struct {
	dir   string
	prod  int
	tests int
}

// Stats prints non-blank Go lines per package, split into production and
// test code, with totals.
func Stats() error {
	var pkgs []*packageStats
	byDir := make(map[string]*packageStats)
	for _, root := range statsRoots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				return err
			}
			if d.IsDir() || filepath.Ext(path) != ".go" {
				return nil
			}
			n, err := countLines(path)
			if err != nil {
				return err
			}
			dir := filepath.Dir(path)
			ps, ok := byDir[dir]
			if !ok {
				ps = &packageStats{dir: dir}
				byDir[dir] = ps
				pkgs = append(pkgs, ps)
			}
			if strings.HasSuffix(path, "_test.go") {
				ps.tests += n
			} else {
				ps.prod += n
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].dir < pkgs[j].dir })
	var prod, tests int
	fmt.Printf("%-32s %8s %8s\n", "Package", "Prod", "Tests")
	for _, ps := range pkgs {
		fmt.Printf("%-32s %8d %8d\n", ps.dir, ps.prod, ps.tests)
		prod += ps.prod
		tests += ps.tests
	}
	fmt.Printf("%-32s %8d %8d\n", "total", prod, tests)
	return nil
}

// countLines returns the number of non-blank lines in a file.
func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			n++
		}
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	return n, nil
}
