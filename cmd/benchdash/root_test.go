package main

import (
	"context"
	"errors"
	"testing"

	"benchdash/internal/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Help(t *testing.T) {
	out, err := executeCommand(rootCmd, "--help")
	require.NoError(t, err)
	for _, sub := range []string{"serve", "series", "compare", "render", "fake", "bench"} {
		assert.Contains(t, out, sub)
	}
}

func TestRootCmd_SourceFlagBindsConfig(t *testing.T) {
	var got source.Config
	old := newSourceFunc
	newSourceFunc = func(cfg source.Config) (source.Source, error) {
		got = cfg
		return &source.Static{}, nil
	}
	defer func() { newSourceFunc = old }()

	_, err := executeCommand(rootCmd, "series", "--source", "sqlite", "--path", "bench.db")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", got.Type)
	assert.Equal(t, "bench.db", got.Path)
}

func TestRootCmd_InvalidConfigExits(t *testing.T) {
	withRecords(t, testRecords())

	exited := false
	oldExit := exit
	exit = func(code int) {
		exited = code != 0
		panic("exit-1")
	}
	defer func() { exit = oldExit }()

	resetFlags(rootCmd)
	func() {
		defer func() { recover() }()
		rootCmd.SetArgs([]string{"series", "--band", "bogus"})
		rootCmd.Execute()
	}()
	resetFlags(rootCmd)
	assert.True(t, exited)
}

func TestLoadIndex(t *testing.T) {
	withRecords(t, testRecords())

	idx, err := loadIndex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"bench_a", "bench_b"}, idx.Names())
	assert.Equal(t, "master", idx.DefaultBranch())
}

func TestLoadIndex_SourceErrors(t *testing.T) {
	old := newSourceFunc
	defer func() { newSourceFunc = old }()

	newSourceFunc = func(source.Config) (source.Source, error) {
		return nil, errors.New("postgres connection string is required")
	}
	_, err := loadIndex(context.Background())
	assert.EqualError(t, err, "postgres connection string is required")

	fetchErr := &source.FetchError{Source: "graphql", StatusCode: 500, Err: errors.New("boom")}
	newSourceFunc = func(source.Config) (source.Source, error) {
		return &source.Static{Err: fetchErr}, nil
	}
	_, err = loadIndex(context.Background())
	assert.ErrorIs(t, err, fetchErr)
}
