package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/izposoja/internal/db"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestInitCreatesAdmin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.sqlite3")

	out, err := run(t, "init", "--db", path, "--user", "root")
	require.NoError(t, err)
	assert.Contains(t, out, "Username: root")

	m := regexp.MustCompile(`Password: (\S+)`).FindStringSubmatch(out)
	require.Len(t, m, 2)
	assert.Len(t, m[1], 16)

	database, err := db.Open(path)
	require.NoError(t, err)
	defer database.Close()

	admin, err := store.GetUserByUsername(context.Background(), database, "root")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, model.RoleAdmin, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(m[1])))

	_, err = run(t, "init", "--db", path)
	assert.ErrorContains(t, err, "already exists")
}

func TestMigrateReportsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.sqlite3")

	out, err := run(t, "migrate", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Schema at version 1 (dirty: false)")
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "izposoja.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("db: from-file.sqlite3\naddr: \":9000\"\n"), 0o644))

	root := newRootCmd()
	require.NoError(t, root.ParseFlags([]string{"--config", cfgPath, "--addr", ":7000"}))

	f := &flags{}
	f.configPath = cfgPath
	f.addr = ":7000"
	cfg, err := f.load(root)
	require.NoError(t, err)
	assert.Equal(t, "from-file.sqlite3", cfg.DB)
	assert.Equal(t, ":7000", cfg.Addr)
}

func TestInvalidConfigRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.sqlite3")
	_, err := run(t, "migrate", "--db", path, "--log-format", "xml")
	assert.ErrorContains(t, err, "Format")
}

func TestGeneratePassword(t *testing.T) {
	a, err := generatePassword(16)
	require.NoError(t, err)
	b, err := generatePassword(16)
	require.NoError(t, err)
	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)
}
