package main

import (
	"os"
	"path/filepath"
	"testing"

	"benchdash/internal/benchmark"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCmd_HTML(t *testing.T) {
	withRecords(t, testRecords())
	out := filepath.Join(t.TempDir(), "site", "index.html")

	stdout, err := executeCommand(rootCmd, "render", "--out", out, "--branch", "pr-1", "--title", "Nightly")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Nightly")
	assert.Contains(t, string(data), "bench_a")
	assert.Contains(t, string(data), "pr-1")
}

func TestRenderCmd_PNG(t *testing.T) {
	withRecords(t, testRecords())
	out := filepath.Join(t.TempDir(), "time.png")

	_, err := executeCommand(rootCmd, "render", "--format", "png", "--out", out, "bench_a")
	require.NoError(t, err)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRenderCmd_NothingToDraw(t *testing.T) {
	withRecords(t, testRecords())
	out := filepath.Join(t.TempDir(), "empty.html")

	_, err := executeCommand(rootCmd, "render", "--out", out, "--metric", "mbs_per_sec")
	assert.ErrorIs(t, err, benchmark.ErrNoMatch)
	assert.NoFileExists(t, out)
}

func TestRenderCmd_UnsupportedFormat(t *testing.T) {
	withRecords(t, testRecords())

	_, err := executeCommand(rootCmd, "render", "--format", "svg")
	assert.EqualError(t, err, "unsupported format: svg")
}
