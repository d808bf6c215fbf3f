// Package fileio opens the text streams read and written by the mesh codecs.
// Compression is chosen from the file extension (.gz, .bz2) or forced through
// Options, and is transparent to callers.
package fileio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dsnet/compress/bzip2"
	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/gzip"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
)

// ErrIO wraps every open, write and close failure of a Handler
var ErrIO = errors.New("i/o error")

// Compression of a stream
type Compression uint8

const (
	NoCompression Compression = iota
	Gzip
	Bzip2
)

// CompressionOf returns the compression implied by the filename extension
func CompressionOf(filename string) Compression {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".gz":
		return Gzip
	case ".bz2":
		return Bzip2
	default:
		return NoCompression
	}
}

// Options control how a Handler opens its file
type Options struct {
	Append   bool // append to an existing file, falls back to overwrite when missing
	SafeMode bool // never overwrite: an existing target is skipped
	Gzip     bool // compress with gzip, adds .gz when missing
	Bzip2    bool // compress with bzip2, adds .bz2 when missing
	Logger   zerolog.Logger
}

// Handler owns one output stream
type Handler struct {
	filename string
	basename string
	dirname  string
	append   bool
	compress Compression
	skipped  bool

	file  *os.File
	zw    io.WriteCloser // compressor, nil for plain files
	buf   *bufio.Writer
	start time.Time

	logger zerolog.Logger
}

// Expand resolves a leading ~ in filename
func Expand(filename string) (string, error) {
	expanded, err := homedir.Expand(filename)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrIO, filename, err)
	}
	return expanded, nil
}

// Open opens filename for writing according to opts
func Open(filename string, opts Options) (h *Handler, err error) {
	if filename == "" {
		return nil, fmt.Errorf("%w: filename argument missing", ErrIO)
	}
	if filename, err = Expand(filename); err != nil {
		return nil, err
	}
	h = &Handler{
		append: opts.Append,
		logger: opts.Logger,
	}
	h.compress = CompressionOf(filename)
	if h.compress == NoCompression {
		switch {
		case opts.Gzip:
			filename += ".gz"
			h.compress = Gzip
		case opts.Bzip2:
			filename += ".bz2"
			h.compress = Bzip2
		}
	}
	h.filename = filename
	h.basename = filepath.Base(filename)
	h.dirname = filepath.Dir(filename)

	_, statErr := os.Stat(filename)
	exists := statErr == nil
	if h.append && !exists {
		h.logger.Warn().Str("file", h.basename).Msg("file does not exist, unable to append")
		h.append = false
	}
	if exists && !h.append {
		if opts.SafeMode {
			h.logger.Warn().Str("file", h.basename).Msg("file already exists, not overwriting it")
			h.skipped = true
			h.start = time.Now()
			return h, nil
		}
		h.logger.Warn().Str("file", h.basename).Msg("file already exists, it will be overwritten")
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	right := "w"
	if h.append {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
		right = "a"
	}
	h.logger.Debug().Str("file", h.basename).Str("dir", h.dirname).Str("right", right).Msg("open")
	if h.file, err = os.OpenFile(filename, flags, 0644); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	var w io.Writer = h.file
	switch h.compress {
	case Gzip:
		h.logger.Debug().Msg("use gzip")
		if h.zw, err = gzip.NewWriterLevel(h.file, gzip.DefaultCompression); err != nil {
			h.file.Close()
			return nil, fmt.Errorf("%w: %v", ErrIO, err)
		}
		w = h.zw
	case Bzip2:
		h.logger.Debug().Msg("use bzip2")
		if h.zw, err = bzip2.NewWriter(h.file, &bzip2.WriterConfig{Level: bzip2.DefaultCompression}); err != nil {
			h.file.Close()
			return nil, fmt.Errorf("%w: %v", ErrIO, err)
		}
		w = h.zw
	}
	h.buf = bufio.NewWriter(w)
	h.start = time.Now()
	return h, nil
}

// Filename returns the final filename, compression suffix included
func (h *Handler) Filename() string { return h.filename }

// Appending reports whether the stream appends to an existing file
func (h *Handler) Appending() bool { return h.append }

// Skipped reports whether safe mode refused to open an existing file
func (h *Handler) Skipped() bool { return h.skipped }

// Write implements io.Writer. Writes to a skipped handler are discarded.
func (h *Handler) Write(p []byte) (int, error) {
	if h.skipped {
		return len(p), nil
	}
	if h.buf == nil {
		return 0, fmt.Errorf("%w: write to closed file %s", ErrIO, h.basename)
	}
	n, err := h.buf.Write(p)
	if err != nil {
		return n, fmt.Errorf("%w: %v", ErrIO, err)
	}
	return n, nil
}

// Close flushes and closes the stream. It is safe to call more than once.
func (h *Handler) Close() error {
	if h.skipped || h.buf == nil {
		return nil
	}
	var errs []error
	if err := h.buf.Flush(); err != nil {
		errs = append(errs, err)
	}
	if h.zw != nil {
		if err := h.zw.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := h.file.Close(); err != nil {
		errs = append(errs, err)
	}
	h.buf, h.zw, h.file = nil, nil, nil
	if len(errs) > 0 {
		return fmt.Errorf("%w: close %s: %v", ErrIO, h.basename, errors.Join(errs...))
	}
	size := "unknown"
	if fi, err := os.Stat(h.filename); err == nil {
		size = humanize.Bytes(uint64(fi.Size()))
	}
	h.logger.Info().Str("file", h.basename).Dur("elapsed", time.Since(h.start)).
		Str("size", size).Msg("close file")
	return nil
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() error {
	var errs []error
	for _, c := range rc.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OpenReader opens filename for reading, decompressing by extension
func OpenReader(filename string) (io.ReadCloser, error) {
	filename, err := Expand(filename)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	switch CompressionOf(filename) {
	case Gzip:
		zr, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("%w: %s: %v", ErrIO, filename, err)
		}
		return &readCloser{Reader: zr, closers: []io.Closer{zr, file}}, nil
	case Bzip2:
		zr, err := bzip2.NewReader(file, nil)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("%w: %s: %v", ErrIO, filename, err)
		}
		return &readCloser{Reader: zr, closers: []io.Closer{zr, file}}, nil
	default:
		return file, nil
	}
}
