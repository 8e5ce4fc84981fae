//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Pipeline groups the targets that run pipeline stages through the CLI.
type Pipeline mg.Namespace

// Convert converts every .bib file in source/ to a CSV table in output/.
func (Pipeline) Convert() error {
	mg.Deps(Build, Init)
	return sh.RunV(binPath, "convert", "--catalog")
}

// Urls writes the Markdown URL list for the newest table.
func (Pipeline) Urls() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "urls")
}

// Download fetches the papers of the newest table into downloads/.
func (Pipeline) Download() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "download")
}

// Rename renames the downloaded PDFs after their catalog titles.
func (Pipeline) Rename() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "rename")
}

// Chart writes the papers-by-year workbook for the newest table.
func (Pipeline) Chart() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "chart")
}

// All runs every stage in order.
func (p Pipeline) All() {
	mg.SerialDeps(p.Convert, p.Urls, p.Download, p.Rename, p.Chart)
}
