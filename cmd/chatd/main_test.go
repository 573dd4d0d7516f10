package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "dev\n", out.String())
}

func TestMigrateCommand(t *testing.T) {
	dir := t.TempDir()
	dsn := filepath.Join(dir, "chat.db")
	cfg := "logger:\n  enable_console: false\n  enable_file: false\n" +
		"database:\n  driver: sqlite\n  dsn: " + dsn + "\n" +
		"jwt:\n  secret: test-secret\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(cfg), 0o644))

	root := newRootCmd()
	root.SetArgs([]string{"migrate", "--config", dir, "--env", "test"})
	require.NoError(t, root.Execute())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable("users"))
	assert.True(t, db.Migrator().HasTable("direct_messages"))
}
