// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report exports the stored publication join as a spreadsheet, csv,
// json, or yaml file and renders console tables for run summaries.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/scholar-audit/pkg/types"
)

// Supported formats.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const sheetName = "Report"

// Header is the column order of tabular exports.
var Header = []string{
	"Scholar ID", "Name", "Profile Affiliation", "Email",
	"Title", "Authors", "Year", "Venue",
	"Name Match", "Affiliation Match", "SDG", "Status", "Source URL",
}

// NormalizeFormat maps a format name or file extension to a supported
// format. It returns "" for anything unsupported.
func NormalizeFormat(f string) string {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(f)), ".") {
	case "xlsx", "excel":
		return FormatXLSX
	case "csv":
		return FormatCSV
	case "json":
		return FormatJSON
	case "yaml", "yml":
		return FormatYAML
	default:
		return ""
	}
}

// DefaultPath returns a per-run report path under dir, for example
// reports/report-20250301-142500.xlsx.
func DefaultPath(dir, format string, now time.Time) string {
	return PrefixedPath(dir, "report", format, now)
}

// PrefixedPath is DefaultPath with a file name prefix other than "report".
func PrefixedPath(dir, prefix, format string, now time.Time) string {
	f := NormalizeFormat(format)
	if f == "" {
		f = FormatXLSX
	}
	return filepath.Join(dir, prefix+"-"+now.Format("20060102-150405")+"."+f)
}

// Write exports rows to path in the format given by its extension. The file
// is written to a temporary name first and renamed on success.
func Write(path string, rows []types.ReportRow) error {
	if rows == nil {
		rows = []types.ReportRow{}
	}
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, Record(r))
	}
	return writeTable(path, Header, records, rows)
}

// writeTable writes header and records as xlsx or csv, or value as json or
// yaml, depending on the extension of path.
func writeTable(path string, header []string, records [][]string, value any) error {
	format := NormalizeFormat(filepath.Ext(path))
	if format == "" {
		return fmt.Errorf("unsupported report format %q", filepath.Ext(path))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	return writeAtomic(path, func(w io.Writer) error {
		switch format {
		case FormatXLSX:
			return writeXLSX(w, header, records)
		case FormatCSV:
			return writeCSV(w, header, records)
		case FormatJSON:
			return writeJSON(w, value)
		default:
			return writeYAML(w, value)
		}
	})
}

func writeAtomic(path string, fn func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := fn(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming report: %w", err)
	}
	return nil
}

func flag(b bool) string {
	if b {
		return types.StatusCodeValid
	}
	return types.StatusCodeDoubtful
}

// Record renders a row as the tabular cells under Header.
func Record(r types.ReportRow) []string {
	return []string{
		r.ExternalID, r.Name, r.Affiliation, r.Email,
		r.Title, r.Authors, r.Year, r.Venue,
		flag(r.NameMatch), flag(r.AffiliationMatch), flag(r.SDGRelated), string(r.Status), r.SourceURL,
	}
}

func writeXLSX(w io.Writer, header []string, records [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &rec); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeCSV(w io.Writer, header []string, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, value any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}
