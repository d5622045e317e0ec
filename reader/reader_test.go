package reader

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adorton/fileprompt/config"
	"github.com/adorton/fileprompt/llm"
)

func testConfig(dir string) config.FileConfig {
	return config.FileConfig{
		InputDirectory: dir,
		Extensions:     []string{".txt", ".md"},
		Recursive:      true,
		MaxFileSize:    1048576,
		Encoding:       "utf-8",
	}
}

func testReader(t *testing.T, cfg config.FileConfig) *Reader {
	t.Helper()
	r, err := New(cfg, zerolog.New(io.Discard))
	require.NoError(t, err)
	return r
}

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
}

func TestNew_RejectsUnknownEncoding(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Encoding = "klingon"

	_, err := New(cfg, zerolog.New(io.Discard))
	require.Error(t, err)
	assert.True(t, llm.IsConfigError(err))
}

func TestScan_FiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), []byte("alpha"))
	writeFile(t, filepath.Join(dir, "b.md"), []byte("bravo"))
	writeFile(t, filepath.Join(dir, "c.jpg"), []byte("charlie"))

	entries, err := testReader(t, testConfig(dir)).Scan()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, filepath.Join(dir, "a.txt"), entries[0].Path)
	assert.Equal(t, ".txt", entries[0].Extension)
	assert.Equal(t, filepath.Join(dir, "b.md"), entries[1].Path)
}

func TestScan_RecursionToggle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "top.txt"), []byte("top"))
	writeFile(t, filepath.Join(dir, "sub", "nested.txt"), []byte("nested"))

	cfg := testConfig(dir)
	entries, err := testReader(t, cfg).Scan()
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	cfg.Recursive = false
	entries, err = testReader(t, cfg).Scan()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Join(dir, "top.txt"), entries[0].Path)
}

func TestScan_Deterministic(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"z.txt", "a.txt", "m/inner.md", "b.md"} {
		writeFile(t, filepath.Join(dir, name), []byte(name))
	}

	r := testReader(t, testConfig(dir))
	first, err := r.Scan()
	require.NoError(t, err)
	second, err := r.Scan()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestScan_SkipsOversizedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "small.txt"), []byte("ok"))
	writeFile(t, filepath.Join(dir, "big.txt"), make([]byte, 2048))

	cfg := testConfig(dir)
	cfg.MaxFileSize = 1024
	entries, err := testReader(t, cfg).Scan()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Join(dir, "small.txt"), entries[0].Path)
}

func TestScan_MissingDirectoryIsEmpty(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "nope"))
	entries, err := testReader(t, cfg).Scan()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	writeFile(t, path, []byte("hello world"))

	fc, err := testReader(t, testConfig(dir)).Read(path)
	require.NoError(t, err)
	assert.Equal(t, "hello world", fc.Content)
	assert.Equal(t, int64(11), fc.Size)
	assert.Equal(t, "utf-8", fc.Encoding)
}

func TestRead_TooLarge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.txt")
	writeFile(t, path, make([]byte, 2048))

	cfg := testConfig(dir)
	cfg.MaxFileSize = 1024
	_, err := testReader(t, cfg).Read(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileTooLarge))
}

func TestRead_InvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.txt")
	writeFile(t, path, []byte{0xff, 0xfe, 0x41})

	_, err := testReader(t, testConfig(dir)).Read(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadEncoding))
}

func TestRead_Latin1(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "latin.txt")
	// "café" in ISO 8859-1: é is a single 0xe9 byte.
	writeFile(t, path, []byte{'c', 'a', 'f', 0xe9})

	cfg := testConfig(dir)
	cfg.Encoding = "iso-8859-1"
	fc, err := testReader(t, cfg).Read(path)
	require.NoError(t, err)
	assert.Equal(t, "café", fc.Content)
	assert.Equal(t, "iso-8859-1", fc.Encoding)
}

func TestSummarize(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), []byte("aaaa"))
	writeFile(t, filepath.Join(dir, "b.txt"), []byte("bb"))
	writeFile(t, filepath.Join(dir, "c.md"), []byte("c"))

	summary, err := testReader(t, testConfig(dir)).Summarize()
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalFiles)
	assert.Equal(t, int64(7), summary.TotalSize)
	assert.Equal(t, map[string]int{".txt": 2, ".md": 1}, summary.Extensions)
}
