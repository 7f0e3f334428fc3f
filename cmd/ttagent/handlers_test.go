package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yhzhou/ttagent/internal/ledger"
)

func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	runErr := fn()
	w.Close()
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, runErr)
	return string(out)
}

func TestHistoryListsRecordedComments(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "comments.db")
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath,
		[]byte("storage:\n  db_file: "+dbPath+"\n"), 0o644))

	prev := cfgFile
	cfgFile = cfgPath
	t.Cleanup(func() { cfgFile = prev })

	led, err := ledger.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, led.RecordComment(context.Background(),
		"9001", "某条新闻", "https://www.toutiao.com/article/9001/", "我就问一句，这合理吗？"))
	led.Close()

	out := captureStdout(t, func() error { return runHistory(10) })
	require.Contains(t, out, "某条新闻")
	require.Contains(t, out, "我就问一句，这合理吗？")
}

func TestActivitiesCategoryFlag(t *testing.T) {
	f := activitiesCmd().Flags().Lookup("category")
	require.NotNil(t, f)
	require.Equal(t, "全部", f.DefValue)
}
