package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoubd/filevault"
	"github.com/ayoubd/filevault/database"
)

func newTestConfig(t *testing.T) database.Config {
	t.Helper()
	return database.Config{
		Type: "sqlite",
		DSN:  filepath.Join(t.TempDir(), "test.db"),
		Tables: database.Tables{
			Users: "test_users",
			Files: "test_files",
		},
	}
}

func TestIsValidTableName(t *testing.T) {
	tt := []struct {
		Name  string
		Table string
		Want  bool
	}{
		{Name: "simple", Table: "filevault_files", Want: true},
		{Name: "leading underscore", Table: "_files", Want: true},
		{Name: "digits", Table: "files2", Want: true},
		{Name: "empty", Table: "", Want: false},
		{Name: "uppercase", Table: "Files", Want: false},
		{Name: "leading digit", Table: "2files", Want: false},
		{Name: "quote injection", Table: `files"; DROP TABLE users; --`, Want: false},
		{Name: "too long", Table: "a123456789012345678901234567890123456789012345678901234567890123", Want: false},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Want, database.IsValidTableName(tc.Table))
		})
	}
}

func TestTables_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		tables := database.Tables{Users: "users", Files: "files"}
		assert.NoError(t, tables.Validate())
	})

	t.Run("missing name", func(t *testing.T) {
		tables := database.Tables{Users: "users"}
		assert.Error(t, tables.Validate())
	})

	t.Run("invalid name", func(t *testing.T) {
		tables := database.Tables{Users: "users", Files: "Files!"}
		assert.Error(t, tables.Validate())
	})
}

func TestConnect_SQLite(t *testing.T) {
	ctx := context.Background()

	repos, cleanup, err := database.Connect(ctx, newTestConfig(t))
	require.NoError(t, err)
	defer cleanup()

	require.NotNil(t, repos.Users)
	require.NotNil(t, repos.Files)

	// Connect migrates and validates; the repos are immediately usable.
	user, err := repos.Users.InsertUser(ctx, "bob@dylan.com", "salt$key")
	require.NoError(t, err)
	assert.Equal(t, "bob@dylan.com", user.Email)

	node, err := repos.Files.InsertFile(ctx, filevault.FileNode{
		UserID: user.ID, Name: "x", Kind: filevault.KindFolder, ParentID: filevault.RootParent,
	})
	require.NoError(t, err)

	found, err := repos.Files.GetFile(ctx, node.ID.String(), user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "x", found.Name)
}

func TestConnect_Reconnect(t *testing.T) {
	ctx := context.Background()
	cfg := newTestConfig(t)

	repos, cleanup, err := database.Connect(ctx, cfg)
	require.NoError(t, err)

	_, err = repos.Users.InsertUser(ctx, "bob@dylan.com", "h")
	require.NoError(t, err)
	cleanup()

	// Migrations are idempotent so reconnecting to the same file works and
	// keeps the data.
	repos, cleanup, err = database.Connect(ctx, cfg)
	require.NoError(t, err)
	defer cleanup()

	n, err := repos.Users.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestConnect_InvalidType(t *testing.T) {
	ctx := context.Background()

	cfg := newTestConfig(t)
	cfg.Type = "mongodb"

	_, _, err := database.Connect(ctx, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}

func TestConnect_InvalidTables(t *testing.T) {
	ctx := context.Background()

	cfg := newTestConfig(t)
	cfg.Tables.Files = ""

	_, _, err := database.Connect(ctx, cfg)
	assert.Error(t, err)
}

// Note: postgres-specific behavior is covered in database/postgres; the
// Connect routing for postgres is implicitly tested there.
