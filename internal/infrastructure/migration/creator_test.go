package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add supplier column", "add_supplier_column"},
		{"Add-Supplier-Column", "add_supplier_column"},
		{"ADD__SUPPLIER", "add_supplier"},
		{"index 2 debts", "index_2_debts"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading and trailing_", "leading_and_trailing"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration_NumbersSequentially(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "add supplier column", "Track suppliers")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_supplier_column.up.sql"), first.UpPath)
	assert.Equal(t, filepath.Join(dir, "000001_add_supplier_column.down.sql"), first.DownPath)

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "Migration: add supplier column")
	assert.Contains(t, string(up), "Description: Track suppliers")

	down, err := os.ReadFile(first.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(Rollback)")

	second, err := CreateMigration(dir, "index debts", "")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second.Version)

	listed, err := ListMigrations(dir)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "add_supplier_column", listed[0].Name)
	assert.Equal(t, "index_debts", listed[1].Name)
}

func TestCreateMigration_InvalidName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations_MissingDir(t *testing.T) {
	files, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestListEmbedded(t *testing.T) {
	files, err := ListEmbedded()
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, uint64(1), files[0].Version)
	assert.Equal(t, "init_schema", files[0].Name)
}

func TestSource(t *testing.T) {
	src, err := Source("")
	require.NoError(t, err)
	defer src.Close()

	version, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
}
