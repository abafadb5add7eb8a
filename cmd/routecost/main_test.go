package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/routecost/internal/cli"
)

func TestRun_Help(t *testing.T) {
	var out, errOut bytes.Buffer

	err := run(context.Background(), &out, &errOut, []string{"-h"})

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Usage:")
}

func TestRun_ParseError(t *testing.T) {
	var out, errOut bytes.Buffer

	err := run(context.Background(), &out, &errOut, []string{"--this-is-not-a-valid-flag"})

	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, cli.ExitUsage, exitErr.Code)
	assert.Contains(t, exitErr.Message, "unknown flag: --this-is-not-a-valid-flag")
}

func TestRun_InvalidRouteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(path, []byte("step \"I\" {\n  yield = 0.5\n"), 0o600))
	var out, errOut bytes.Buffer

	err := run(context.Background(), &out, &errOut, []string{"calc", path})

	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, cli.ExitRuntime, exitErr.Code)
	assert.Empty(t, out.String())
}
