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
		{"add supplier notes", "add_supplier_notes"},
		{"Add-Supplier-Notes", "add_supplier_notes"},
		{"ADD__PRICE__HISTORY", "add_price_history"},
		{"index 2 orders", "index_2_orders"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "special_chars"},
		{"_leading_", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "create dropship tables", "suppliers and orders")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_create_dropship_tables.up.sql"), first.UpPath)
	assert.Equal(t, filepath.Join(dir, "000001_create_dropship_tables.down.sql"), first.DownPath)

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- create dropship tables (up)")
	assert.Contains(t, string(up), "-- suppliers and orders")

	down, err := os.ReadFile(first.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(down)")

	second, err := CreateMigration(dir, "add tracking index", "")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)
	assert.Equal(t, "000002_add_tracking_index.up.sql", filepath.Base(second.UpPath))
}

func TestCreateMigration_InvalidName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		list, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("pairs ordered by version", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{
			"000010_later.up.sql", "000010_later.down.sql",
			"000002_first.up.sql", "000002_first.down.sql",
			"README.md", "000003_orphan.up.sql",
		} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
		}

		list, err := ListMigrations(dir)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, []uint{2, 3, 10}, []uint{list[0].Version, list[1].Version, list[2].Version})
		assert.Equal(t, "first", list[0].Name)
		assert.Empty(t, list[1].DownPath)
	})

	t.Run("repository migrations", func(t *testing.T) {
		list, err := ListMigrations(filepath.Join("..", "..", "..", "migrations"))
		require.NoError(t, err)
		require.NotEmpty(t, list)
		assert.Equal(t, "create_dropship_tables", list[0].Name)
		assert.NotEmpty(t, list[0].DownPath)
	})
}
