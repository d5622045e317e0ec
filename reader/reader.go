// Package reader discovers and reads text files from an input directory,
// filtering by extension and size and decoding file bytes into UTF-8.
package reader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/adorton/fileprompt/config"
	"github.com/adorton/fileprompt/llm"
)

// Sentinel errors for read failures. Callers can test them with errors.Is.
var (
	ErrFileTooLarge = errors.New("file exceeds maximum size")
	ErrBadEncoding  = errors.New("file is not valid in the configured encoding")
)

// FileEntry describes a discovered file.
type FileEntry struct {
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	Extension string `json:"extension"`
}

// FileContent is a fully read and decoded file.
type FileContent struct {
	Path     string
	Content  string
	Size     int64
	Encoding string
}

// Summary aggregates the result of a directory scan.
type Summary struct {
	TotalFiles int            `json:"total_files"`
	TotalSize  int64          `json:"total_size"`
	Extensions map[string]int `json:"extensions"`
	Files      []FileEntry    `json:"files"`
}

// Reader scans a directory tree and reads matching files.
type Reader struct {
	cfg     config.FileConfig
	decoder *encoding.Decoder
	logger  zerolog.Logger
}

// New creates a Reader for the given file configuration. The configured
// encoding is resolved eagerly so a typo fails at startup rather than on the
// first read.
func New(cfg config.FileConfig, logger zerolog.Logger) (*Reader, error) {
	r := &Reader{
		cfg:    cfg,
		logger: logger.With().Str("component", "reader").Logger(),
	}

	// UTF-8 is handled directly: the htmlindex decoder substitutes
	// replacement runes for invalid bytes instead of reporting them, and
	// invalid input should be an error here.
	if !isUTF8(cfg.Encoding) {
		enc, err := htmlindex.Get(cfg.Encoding)
		if err != nil {
			return nil, llm.NewConfigError(fmt.Sprintf("unknown file encoding %q", cfg.Encoding))
		}
		r.decoder = enc.NewDecoder()
	}

	return r, nil
}

func isUTF8(name string) bool {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return true
	}
	return false
}

// Scan walks the input directory and returns matching files in lexical
// walk order, so repeated scans of the same tree yield the same sequence.
func (r *Reader) Scan() ([]FileEntry, error) {
	root := r.cfg.InputDirectory

	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn().Str("dir", root).Msg("Input directory does not exist")
			return []FileEntry{}, nil
		}
		return nil, fmt.Errorf("stat input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path %s is not a directory", root)
	}

	var entries []FileEntry
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !r.cfg.Recursive && path != root {
				return fs.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !lo.Contains(r.cfg.Extensions, ext) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return err
		}
		if fi.Size() > r.cfg.MaxFileSize {
			r.logger.Warn().
				Str("path", path).
				Int64("size", fi.Size()).
				Int64("max_size", r.cfg.MaxFileSize).
				Msg("Skipping file over size limit")
			return nil
		}

		entries = append(entries, FileEntry{
			Path:      path,
			Size:      fi.Size(),
			Extension: ext,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	r.logger.Debug().Str("dir", root).Int("count", len(entries)).Msg("Scan complete")
	return entries, nil
}

// Read reads and decodes a single file.
func (r *Reader) Read(path string) (*FileContent, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.Size() > r.cfg.MaxFileSize {
		return nil, fmt.Errorf("%s (%d bytes, limit %d): %w",
			path, fi.Size(), r.cfg.MaxFileSize, ErrFileTooLarge)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	content, err := r.decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &FileContent{
		Path:     path,
		Content:  content,
		Size:     fi.Size(),
		Encoding: r.encodingName(),
	}, nil
}

func (r *Reader) decode(raw []byte) (string, error) {
	if r.decoder == nil {
		if !utf8.Valid(raw) {
			return "", ErrBadEncoding
		}
		return string(raw), nil
	}

	decoded, _, err := transform.Bytes(r.decoder, raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadEncoding, err)
	}
	return string(decoded), nil
}

func (r *Reader) encodingName() string {
	if r.decoder == nil {
		return "utf-8"
	}
	return r.cfg.Encoding
}

// Summarize scans the input directory and aggregates counts by extension.
func (r *Reader) Summarize() (*Summary, error) {
	entries, err := r.Scan()
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		TotalFiles: len(entries),
		TotalSize:  lo.SumBy(entries, func(e FileEntry) int64 { return e.Size }),
		Extensions: lo.CountValuesBy(entries, func(e FileEntry) string { return e.Extension }),
		Files:      entries,
	}
	return summary, nil
}
