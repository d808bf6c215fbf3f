package fileio

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAll(t *testing.T, filename string, opts Options, content string) *Handler {
	t.Helper()
	h, err := Open(filename, opts)
	require.NoError(t, err)
	_, err = io.WriteString(h, content)
	require.NoError(t, err)
	require.NoError(t, h.Close())
	return h
}

func readAll(t *testing.T, filename string) string {
	t.Helper()
	rc, err := OpenReader(filename)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestHandlerPlain(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "plain.txt")
	h := writeAll(t, filename, Options{}, "hello\n")
	assert.Equal(t, filename, h.Filename())
	assert.False(t, h.Skipped())
	assert.Equal(t, "hello\n", readAll(t, filename))

	// a second close is a no-op
	assert.NoError(t, h.Close())
	_, err := h.Write([]byte("late"))
	assert.ErrorIs(t, err, ErrIO)
}

func TestHandlerOverwriteAndAppend(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "data.txt")
	writeAll(t, filename, Options{}, "first\n")
	writeAll(t, filename, Options{}, "second\n")
	assert.Equal(t, "second\n", readAll(t, filename))

	h := writeAll(t, filename, Options{Append: true}, "third\n")
	assert.True(t, h.Appending())
	assert.Equal(t, "second\nthird\n", readAll(t, filename))
}

func TestHandlerAppendFallback(t *testing.T) {
	var logs bytes.Buffer
	filename := filepath.Join(t.TempDir(), "missing.txt")
	h := writeAll(t, filename, Options{Append: true, Logger: zerolog.New(&logs)}, "new\n")
	assert.False(t, h.Appending())
	assert.Equal(t, "new\n", readAll(t, filename))
	assert.Contains(t, logs.String(), "unable to append")
}

func TestHandlerSafeMode(t *testing.T) {
	var logs bytes.Buffer
	filename := filepath.Join(t.TempDir(), "keep.txt")
	writeAll(t, filename, Options{}, "original\n")

	h := writeAll(t, filename, Options{SafeMode: true, Logger: zerolog.New(&logs)}, "replacement\n")
	assert.True(t, h.Skipped())
	assert.Equal(t, "original\n", readAll(t, filename))
	assert.Contains(t, logs.String(), "not overwriting")

	// safe mode does not prevent the first write
	other := filepath.Join(t.TempDir(), "fresh.txt")
	h = writeAll(t, other, Options{SafeMode: true}, "fresh\n")
	assert.False(t, h.Skipped())
	assert.Equal(t, "fresh\n", readAll(t, other))
}

func TestHandlerCompression(t *testing.T) {
	dir := t.TempDir()
	content := "$MeshFormat\n2.2 0 8\n$EndMeshFormat\n"

	gz := writeAll(t, filepath.Join(dir, "mesh.msh"), Options{Gzip: true}, content)
	assert.Equal(t, filepath.Join(dir, "mesh.msh.gz"), gz.Filename())
	assert.Equal(t, content, readAll(t, gz.Filename()))

	bz := writeAll(t, filepath.Join(dir, "mesh.msh"), Options{Bzip2: true}, content)
	assert.Equal(t, filepath.Join(dir, "mesh.msh.bz2"), bz.Filename())
	assert.Equal(t, content, readAll(t, bz.Filename()))

	// the extension wins over the options
	byExt := writeAll(t, filepath.Join(dir, "other.vtk.gz"), Options{Bzip2: true}, content)
	assert.Equal(t, filepath.Join(dir, "other.vtk.gz"), byExt.Filename())
	assert.Equal(t, content, readAll(t, byExt.Filename()))

	raw, err := os.ReadFile(gz.Filename())
	require.NoError(t, err)
	assert.NotEqual(t, content, string(raw))
}

func TestCompressionOf(t *testing.T) {
	assert.Equal(t, Gzip, CompressionOf("a.vtk.GZ"))
	assert.Equal(t, Bzip2, CompressionOf("a.msh.bz2"))
	assert.Equal(t, NoCompression, CompressionOf("a.msh"))
}

func TestOpenErrors(t *testing.T) {
	_, err := Open("", Options{})
	assert.ErrorIs(t, err, ErrIO)
	_, err = Open(filepath.Join(t.TempDir(), "no", "such", "dir.txt"), Options{})
	assert.ErrorIs(t, err, ErrIO)
	_, err = OpenReader(filepath.Join(t.TempDir(), "absent.msh"))
	assert.ErrorIs(t, err, ErrIO)
}
