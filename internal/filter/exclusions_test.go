// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package filter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadExclusions_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daftar_kecuali.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"nip", "Nama"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"1001", "Ahmad Rafiq"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"1002", " SITI  AMINAH "}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	got := LoadExclusions(path, nil)

	assert.Equal(t, 2, got.Len())
	assert.True(t, got.Contains("ahmad rafiq"))
	assert.True(t, got.Contains("siti aminah"))
	assert.False(t, got.Contains("1001"))
}

func TestLoadExclusions_CSVWithoutHeader(t *testing.T) {
	path := writeFile(t, "names.csv", "Ahmad Rafiq,x\nBudi Santoso,y\n")

	got := LoadExclusions(path, nil)

	assert.Equal(t, 2, got.Len())
	assert.True(t, got.Contains("Budi Santoso"))
}

func TestLoadExclusions_CSVWithHeader(t *testing.T) {
	path := writeFile(t, "names.csv", "id,name\n1,Ahmad Rafiq\n2\n")

	got := LoadExclusions(path, nil)

	assert.Equal(t, 1, got.Len())
	assert.True(t, got.Contains("ahmad rafiq"))
}

func TestLoadExclusions_YAML(t *testing.T) {
	path := writeFile(t, "names.yaml", "- Ahmad Rafiq\n- Siti Aminah\n")
	got := LoadExclusions(path, nil)
	assert.Equal(t, 2, got.Len())
}

func TestLoadExclusions_Text(t *testing.T) {
	path := writeFile(t, "names.txt", "# staff on leave\nAhmad Rafiq\n\n  Siti Aminah  \n")
	got := LoadExclusions(path, nil)
	assert.Equal(t, 2, got.Len())
	assert.True(t, got.Contains("siti aminah"))
}

func TestLoadExclusions_DegradesToEmpty(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := zap.New(core)

	missing := LoadExclusions(filepath.Join(t.TempDir(), "missing.xlsx"), log)
	assert.Zero(t, missing.Len())

	bad := LoadExclusions(writeFile(t, "bad.yaml", "key: [unclosed"), log)
	assert.Zero(t, bad.Len())

	assert.Equal(t, 2, logs.Len())
}

func TestLoadExclusions_EmptyPath(t *testing.T) {
	assert.Zero(t, LoadExclusions("", nil).Len())
}

func TestReadNames_DedupesInFileOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "author79.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"No", "Nama2"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"1", " Siti  Aminah "}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"2", "Ahmad Rafiq"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]any{"3", "SITI AMINAH"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A5", &[]any{"4", ""}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	got, err := ReadNames(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Siti Aminah", "Ahmad Rafiq"}, got)
}

func TestReadNames_MissingFile(t *testing.T) {
	_, err := ReadNames(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
