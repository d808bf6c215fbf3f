package mesh

import "errors"

// Error classes reported by the codec. Callers test with errors.Is.
var (
	// ErrSchema reports a malformed or incomplete element/field descriptor
	ErrSchema = errors.New("schema error")

	// ErrRegistry reports an element tag that is unknown or unavailable in a format
	ErrRegistry = errors.New("registry error")

	// ErrParse reports a malformed input file
	ErrParse = errors.New("parse error")

	// ErrOutOfOrder reports a section written before its predecessor
	ErrOutOfOrder = errors.New("section written out of order")

	// ErrNotImplemented reports a declared but unbuilt format flavour
	ErrNotImplemented = errors.New("not implemented")

	// ErrBadExtension reports a filename outside the allowed extension set
	ErrBadExtension = errors.New("bad extension")
)
