package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/cc-session-search/internal/parse"
)

func TestLoadFile_Defaults(t *testing.T) {
	home := t.TempDir()
	cfg, err := LoadFile(DefaultPath(home), home)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".claude", "projects"), cfg.ProjectsRoot)
	assert.Equal(t, filepath.Join(home, ".config", "ccs", "ccs.db"), cfg.DBPath)
	assert.Equal(t, runtime.GOMAXPROCS(0), cfg.Workers)
	assert.Equal(t, parse.DefaultModel, cfg.DefaultModel)
	assert.Empty(t, cfg.Path)
}

func TestLoadFile_Overrides(t *testing.T) {
	home := t.TempDir()
	path := DefaultPath(home)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`
projects_root = "~/logs"
db_path = "/tmp/x.db"
workers = 3
default_model = "claude-3-haiku-20240307"

[pricing."my-model"]
input = 2.0
output = 8.0
`), 0o644))

	cfg, err := LoadFile(path, home)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "logs"), cfg.ProjectsRoot)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, path, cfg.Path)

	price, ok := cfg.Prices().Lookup("my-model")
	require.True(t, ok)
	assert.Equal(t, parse.ModelPrice{Input: 2, Output: 8}, price)
	assert.Equal(t, "claude-3-haiku-20240307", cfg.Parser().Normalizer.DefaultModel)
}

func TestLoadFile_Errors(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "config.toml")

	require.NoError(t, os.WriteFile(path, []byte(`projects_root = [`), 0o644))
	_, err := LoadFile(path, home)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`claude_root = "/x"`), 0o644))
	_, err = LoadFile(path, home)
	assert.ErrorContains(t, err, "claude_root")

	require.NoError(t, os.WriteFile(path, []byte("[pricing.m]\ninput = -1.0\noutput = 1.0\n"), 0o644))
	_, err = LoadFile(path, home)
	assert.ErrorContains(t, err, "negative price")
}

func TestExpandHome(t *testing.T) {
	assert.Equal(t, "/h", expandHome("~", "/h"))
	assert.Equal(t, filepath.Join("/h", "a"), expandHome("~/a", "/h"))
	assert.Equal(t, "~user/a", expandHome("~user/a", "/h"))
	assert.Equal(t, "/abs", expandHome("/abs", "/h"))
}
