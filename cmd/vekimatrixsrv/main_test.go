package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogOutput(t *testing.T) {
	assert.Equal(t, os.Stderr, logOutput("", false))
	assert.Equal(t, io.Discard, logOutput("", true))

	// the terminal preview only logs to the file
	filename := filepath.Join(t.TempDir(), "vekimatrix.log")
	w := logOutput(filename, true)
	_, err := w.Write([]byte("hello\n"))
	require.NoError(t, err)
	if closer, ok := w.(io.Closer); ok {
		closer.Close()
	}

	content, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(content))
}
