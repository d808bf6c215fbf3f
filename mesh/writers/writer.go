// Package writers serializes a mesh.Mesh to Gmsh MSH 2.2 and legacy VTK
// files.
package writers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/notargets/meshrw/fileio"
	"github.com/notargets/meshrw/mesh"
)

// AllSteps asks WriteFields for every step of every field
const AllSteps = -1

// Writer emits one mesh. Calls must follow the order WriteHeader,
// WriteNodes, WriteElements, WriteFields; WriteContents runs all of them and
// closes the stream.
type Writer interface {
	WriteHeader() error
	WriteNodes() error
	WriteElements() error
	WriteFields(step int) error
	WriteContents() error
	Close() error
	Summary() *mesh.Summary
}

type stage uint8

const (
	stageUnopened stage = iota
	stageHeaderWritten
	stageNodesWritten
	stageElementsWritten
	stageFieldsWritten
	stageClosed
)

func (s stage) String() string {
	switch s {
	case stageUnopened:
		return "unopened"
	case stageHeaderWritten:
		return "header written"
	case stageNodesWritten:
		return "nodes written"
	case stageElementsWritten:
		return "elements written"
	case stageFieldsWritten:
		return "fields written"
	case stageClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// fileWriter is the stream and stage bookkeeping shared by every format
type fileWriter struct {
	format   string
	filename string
	opts     Options
	logger   zerolog.Logger

	m       *mesh.Mesh
	summary *mesh.Summary

	h     *fileio.Handler
	stage stage
	err   error // first write error, later writes are dropped
}

func newFileWriter(format, filename string, m *mesh.Mesh, opts Options) (*fileWriter, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil mesh", mesh.ErrSchema)
	}
	logger := opts.Logger.With().Str("format", format).Logger()
	summary, err := mesh.Analyze(m, logger)
	if err != nil {
		return nil, err
	}
	return &fileWriter{
		format:   format,
		filename: filename,
		opts:     opts,
		logger:   logger,
		m:        m,
		summary:  summary,
	}, nil
}

// open starts a new stream on filename and resets the stage
func (fw *fileWriter) open(filename string) error {
	if fw.h != nil {
		return fmt.Errorf("%w: %s writer: %s is still open", mesh.ErrOutOfOrder, fw.format, fw.h.Filename())
	}
	h, err := fileio.Open(filename, fileio.Options{
		Append:   fw.opts.Append,
		SafeMode: fw.opts.SafeMode,
		Gzip:     fw.opts.Gzip,
		Bzip2:    fw.opts.Bzip2,
		Logger:   fw.logger,
	})
	if err != nil {
		return err
	}
	fw.h = h
	fw.stage = stageUnopened
	fw.err = nil
	return nil
}

// advance moves the stage from one step to the next
func (fw *fileWriter) advance(from, to stage) error {
	if fw.h == nil {
		return fmt.Errorf("%w: %s writer: no open stream", mesh.ErrOutOfOrder, fw.format)
	}
	if fw.stage != from {
		return fmt.Errorf("%w: %s writer: cannot go from %s to %s",
			mesh.ErrOutOfOrder, fw.format, fw.stage, to)
	}
	fw.stage = to
	return nil
}

// skipped reports whether safe mode refused the current target
func (fw *fileWriter) skipped() bool {
	return fw.h != nil && fw.h.Skipped()
}

func (fw *fileWriter) appending() bool {
	return fw.h != nil && fw.h.Appending()
}

func (fw *fileWriter) printf(format string, args ...interface{}) {
	if fw.err != nil {
		return
	}
	_, fw.err = fmt.Fprintf(fw.h, format, args...)
}

func (fw *fileWriter) println(s string) {
	if fw.err != nil {
		return
	}
	_, fw.err = fw.h.Write([]byte(s + "\n"))
}

// close closes the current stream, joining err with any close failure
func (fw *fileWriter) close(err error) error {
	if fw.h == nil {
		return err
	}
	if fw.err != nil {
		err = errors.Join(err, fw.err)
	}
	if cerr := fw.h.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	fw.h = nil
	fw.stage = stageClosed
	return err
}

// Close closes the current stream, safe to call more than once
func (fw *fileWriter) Close() error {
	return fw.close(nil)
}

// Summary returns the statistics computed at construction
func (fw *fileWriter) Summary() *mesh.Summary {
	return fw.summary
}

// joinRow formats one row of an array with the given real formatter
func joinRow(a mesh.Array, i int, real func(float64) string) string {
	_, c := a.Dims()
	parts := make([]string, c)
	ia, isInt := a.(*mesh.IntArray)
	for j := 0; j < c; j++ {
		switch {
		case isInt:
			parts[j] = strconv.Itoa(ia.IntAt(i, j))
		case a.Kind() == mesh.Int:
			parts[j] = strconv.Itoa(int(a.At(i, j)))
		default:
			parts[j] = real(a.At(i, j))
		}
	}
	return strings.Join(parts, " ")
}

func joinInts(vals []int, offset int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v + offset)
	}
	return strings.Join(parts, " ")
}
