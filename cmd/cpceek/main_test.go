package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaki95/cpceek/config"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestMissingRomsDirIsFatal(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, `
server:
  address: ftp://ftp.nvg.ntnu.no
  index_file: 00_table.txt
`)

	root := newRootCommand()
	root.SetArgs([]string{"missing", "--config", cfg})
	err := root.ExecuteContext(context.Background())

	assert.ErrorIs(t, err, config.ErrMissingRomsDir)
}

func TestMissingCommandListsWorkList(t *testing.T) {
	dir := t.TempDir()
	workDir := filepath.Join(dir, "work")
	romsDir := filepath.Join(dir, "roms")
	require.NoError(t, os.MkdirAll(workDir, 0755))
	require.NoError(t, os.MkdirAll(romsDir, 0755))

	index := "/pub/cpc/games/a.zip\nTITLE: A\n----------\n/pub/cpc/games/b.zip\nTITLE: B\n----------\n"
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "00_table.txt"), []byte(index), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(romsDir, "a.zip"), []byte("rom"), 0644))

	cfg := writeConfig(t, dir, fmt.Sprintf(`
log_level: 8
server:
  address: ftp://ftp.nvg.ntnu.no
  catalog_path: /pub/cpc/
  index_file: 00_table.txt
storage:
  roms_dir: %s
  work_dir: %s
log:
  file: %s
`, romsDir, workDir, filepath.Join(dir, "Cpceek.log")))

	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"missing", "--config", cfg})

	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Equal(t, "b.zip\t/pub/cpc/games/b.zip\n1 missing\n", out.String())
}

func TestUnknownCommandFails(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"frobnicate"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	assert.Error(t, root.ExecuteContext(context.Background()))
}
