// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chart summarizes a converted table by publication year, as a
// spreadsheet with a column chart and as a text histogram.
package chart

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/paper-integration/pkg/types"
)

// DefaultFile is the workbook name written under output_dir/visualization.
const DefaultFile = "papers_by_year.xlsx"

const (
	dataSheet  = "Papers by year"
	chartTitle = "Papers by year"
	maxBar     = 50
)

// YearCount is the number of papers published in one year.
type YearCount struct {
	Year  string
	Count int
}

// CountByYear counts papers per year, sorted by year. Papers without a
// year are left out. Numeric years sort numerically, others after them
// as strings.
func CountByYear(papers []types.Paper) []YearCount {
	counts := make(map[string]int)
	for _, p := range papers {
		y := strings.TrimSpace(p.Year)
		if y == "" {
			continue
		}
		counts[y]++
	}

	out := make([]YearCount, 0, len(counts))
	for y, n := range counts {
		out = append(out, YearCount{Year: y, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		a, aErr := strconv.Atoi(out[i].Year)
		b, bErr := strconv.Atoi(out[j].Year)
		switch {
		case aErr == nil && bErr == nil:
			return a < b
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		default:
			return out[i].Year < out[j].Year
		}
	})
	return out
}

// WriteWorkbook writes the year counts to path with a clustered column
// chart beside the data.
func WriteWorkbook(path string, counts []YearCount) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return err
	}
	header := []interface{}{"Year", "Papers"}
	if err := f.SetSheetRow(dataSheet, "A1", &header); err != nil {
		return err
	}
	for i, c := range counts {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{c.Year, c.Count}
		if err := f.SetSheetRow(dataSheet, cell, &row); err != nil {
			return fmt.Errorf("writing year %s: %w", c.Year, err)
		}
	}

	if len(counts) > 0 {
		last := len(counts) + 1
		sheetRef := "'" + dataSheet + "'"
		if err := f.AddChart(dataSheet, "D2", &excelize.Chart{
			Type: excelize.Col,
			Series: []excelize.ChartSeries{{
				Name:       sheetRef + "!$B$1",
				Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheetRef, last),
				Values:     fmt.Sprintf("%s!$B$2:$B$%d", sheetRef, last),
			}},
			Title:    []excelize.RichTextRun{{Text: chartTitle}},
			Legend:   excelize.ChartLegend{Position: "none"},
			PlotArea: excelize.ChartPlotArea{ShowVal: true},
			XAxis:    excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Year"}}},
			YAxis: excelize.ChartAxis{
				MajorGridLines: true,
				Title:          []excelize.RichTextRun{{Text: "Papers"}},
			},
		}); err != nil {
			return fmt.Errorf("adding chart: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

// WriteHistogram prints one bar per year, scaled so the largest count is
// at most 50 characters wide, followed by the count.
func WriteHistogram(w io.Writer, counts []YearCount) {
	peak := 0
	width := 0
	for _, c := range counts {
		if c.Count > peak {
			peak = c.Count
		}
		if len(c.Year) > width {
			width = len(c.Year)
		}
	}
	for _, c := range counts {
		n := c.Count
		if peak > maxBar {
			n = (c.Count*maxBar + peak - 1) / peak
		}
		fmt.Fprintf(w, "%-*s | %s %d\n", width, c.Year, strings.Repeat("#", n), c.Count)
	}
}
