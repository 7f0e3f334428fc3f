package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
browser:
  headless: false
behavior:
  max_comments_per_run: 2
style:
  length: 100-200字
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.False(t, cfg.Browser.Headless)
	require.Equal(t, 2, cfg.Behavior.MaxCommentsPerRun)
	require.Equal(t, "100-200字", cfg.Style.Length)

	// untouched keys keep their defaults
	require.Equal(t, "data/comments.db", cfg.Storage.DBFile)
	require.Equal(t, "Asia/Shanghai", cfg.Schedule.Timezone)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("behavior: ["), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestCommentInterval(t *testing.T) {
	cfg := Default()
	require.Equal(t, "30s", cfg.Behavior.CommentInterval().String())
}

func TestCredentialsValid(t *testing.T) {
	require.False(t, Credentials{}.Valid())
	require.False(t, Credentials{Username: "u"}.Valid())
	require.True(t, Credentials{Username: "u", Password: "p"}.Valid())
}
