// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package filter

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"
)

// nameHeaders are the column headers recognized as the name column of a
// spreadsheet or csv name list.
var nameHeaders = []string{"nama", "nama2", "name"}

// LoadExclusions reads the exclusion list at path. The format follows the
// extension: .xlsx, .csv, .yaml/.yml (a list of strings), or anything else as
// one name per line with # comments. An empty path yields an empty set. Any
// read error is logged and also yields an empty set.
func LoadExclusions(path string, log *zap.Logger) ExcludedNames {
	if log == nil {
		log = zap.NewNop()
	}
	if path == "" {
		return NewExcludedNames()
	}
	names, err := readNames(path)
	if err != nil {
		log.Warn("exclusion list unavailable, excluding nobody", zap.String("path", path), zap.Error(err))
		return NewExcludedNames()
	}
	set := NewExcludedNames(names...)
	log.Info("loaded exclusion list", zap.String("path", path), zap.Int("names", set.Len()))
	return set
}

// ReadNames reads a name list in any format LoadExclusions accepts. Names
// are trimmed; blanks and repeats under NormalizeName are dropped, keeping
// the first spelling in file order.
func ReadNames(path string) ([]string, error) {
	raw, err := readNames(path)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(raw))
	var names []string
	for _, n := range raw {
		key := NormalizeName(n)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, strings.Join(strings.Fields(n), " "))
	}
	return names, nil
}

func readNames(path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readXLSX(path)
	case ".csv":
		return readCSV(path)
	case ".yaml", ".yml":
		return readYAML(path)
	default:
		return readLines(path)
	}
}

func readXLSX(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}
	return nameColumn(rows), nil
}

func readCSV(path string) ([]string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	r := csv.NewReader(fh)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return nameColumn(rows), nil
}

func readYAML(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := yaml.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return names, nil
}

func readLines(path string) ([]string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return scanLines(fh)
}

func scanLines(r io.Reader) ([]string, error) {
	var names []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	return names, sc.Err()
}

// nameColumn picks the name column of a table. A header row naming the
// column is skipped; without one, the first column of every row is used.
func nameColumn(rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}
	col, start := 0, 0
	for i, h := range rows[0] {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, want := range nameHeaders {
			if h == want {
				col, start = i, 1
				break
			}
		}
		if start == 1 {
			break
		}
	}

	var names []string
	for _, row := range rows[start:] {
		if col < len(row) {
			names = append(names, row[col])
		}
	}
	return names
}
