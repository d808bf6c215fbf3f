package readers

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/notargets/meshrw/mesh"
)

// ParseError locates a malformed input line
type ParseError struct {
	Line     int   // 1-based line number
	Offset   int64 // byte offset of the line start
	Expected string
	Found    string
	Err      error // underlying cause, may be nil
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse error at line %d (byte %d): expected %s, found %q",
		e.Line, e.Offset, e.Expected, e.Found)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is makes every ParseError match mesh.ErrParse
func (e *ParseError) Is(target error) bool { return target == mesh.ErrParse }

// lineReader returns the non blank, trimmed lines of a stream along with
// their position
type lineReader struct {
	sc     *bufio.Scanner
	pos    int64 // bytes consumed by the scanner
	start  int64 // offset of the current line
	line   int
	text   string
	peeked bool
}

func newLineReader(r io.Reader) *lineReader {
	lr := &lineReader{sc: bufio.NewScanner(r)}
	lr.sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	lr.sc.Split(func(data []byte, atEOF bool) (int, []byte, error) {
		advance, token, err := bufio.ScanLines(data, atEOF)
		if advance > 0 {
			lr.start = lr.pos
			lr.pos += int64(advance)
		}
		return advance, token, err
	})
	return lr
}

// next moves to the next non blank line, false at end of input
func (lr *lineReader) next() bool {
	if lr.peeked {
		lr.peeked = false
		return true
	}
	for lr.sc.Scan() {
		lr.line++
		lr.text = strings.TrimSpace(lr.sc.Text())
		if lr.text != "" {
			return true
		}
	}
	lr.text = ""
	return false
}

// unread makes the next call to next return the current line again
func (lr *lineReader) unread() {
	lr.peeked = true
}

func (lr *lineReader) errorf(expected string, cause error) *ParseError {
	found := lr.text
	if found == "" {
		found = "EOF"
	}
	return &ParseError{Line: lr.line, Offset: lr.start, Expected: expected, Found: found, Err: cause}
}

// fail reports a scanner failure in preference to a syntax error
func (lr *lineReader) fail(expected string) error {
	if err := lr.sc.Err(); err != nil {
		return lr.errorf(expected, err)
	}
	return lr.errorf(expected, nil)
}

// expect consumes the next line and checks it equals marker
func (lr *lineReader) expect(marker string) error {
	if !lr.next() || lr.text != marker {
		return lr.fail(marker)
	}
	return nil
}

// count reads a line holding a single non negative integer
func (lr *lineReader) count(what string) (int, error) {
	if !lr.next() {
		return 0, lr.fail(what)
	}
	n, err := strconv.Atoi(lr.text)
	if err != nil || n < 0 {
		return 0, lr.errorf(what, nil)
	}
	return n, nil
}

// ints parses every token of fields
func ints(fields []string) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
