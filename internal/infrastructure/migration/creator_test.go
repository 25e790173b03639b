package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/procurement/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add bills table", "add_bills_table"},
		{"Add-Bills-Table", "add_bills_table"},
		{"ADD_BILLS_TABLE", "add_bills_table"},
		{"add__bills__table", "add_bills_table"},
		{"Add Tenders 123", "add_tenders_123"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading", "leading"},
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

	mf, err := CreateMigration(dir, "add bill links", "Store external bill references")
	require.NoError(t, err)
	assert.Equal(t, "000001", mf.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_bill_links.up.sql"), mf.UpPath)
	assert.Equal(t, filepath.Join(dir, "000001_add_bill_links.down.sql"), mf.DownPath)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "Store external bill references")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "rollback")

	next, err := CreateMigration(dir, "index tenders", "")
	require.NoError(t, err)
	assert.Equal(t, "000002", next.Version)
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "nested", "migrations")

	_, err := CreateMigration(nested, "init", "")
	require.NoError(t, err)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"000010_add_pos.up.sql":     {Data: []byte("--")},
		"000010_add_pos.down.sql":   {Data: []byte("--")},
		"000002_add_bills.up.sql":   {Data: []byte("--")},
		"000002_add_bills.down.sql": {Data: []byte("--")},
		"000001_init.up.sql":        {Data: []byte("--")},
		"README.md":                 {Data: []byte("docs")},
		"nested.up.sql/keep":        {Data: []byte("")},
	}

	names, err := ListMigrations(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_init", "000002_add_bills", "000010_add_pos"}, names)
}

func TestListMigrations_NonexistentDirectory(t *testing.T) {
	names, err := ListMigrations(os.DirFS("/nonexistent/path/to/migrations"))
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestListMigrations_EmbeddedSchema(t *testing.T) {
	names, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "000001_create_procurement_tables", names[0])
}

func TestNew_RequiresSource(t *testing.T) {
	_, err := New(nil, Source{}, nil)
	assert.Error(t, err)
}
