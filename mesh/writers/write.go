package writers

import (
	"fmt"
	"strings"

	"github.com/notargets/meshrw/mesh"
)

// NewWriter returns the writer matching the extension of filename
func NewWriter(filename string, m *mesh.Mesh, opts ...Option) (Writer, error) {
	if _, _, _, err := SplitFilename(filename, MSHExtensions); err == nil {
		return NewMSHWriter(filename, m, opts...)
	}
	if _, _, _, err := SplitFilename(filename, VTKExtensions); err == nil {
		return NewVTKWriter(filename, m, opts...)
	}
	allowed := append(append([]string{}, MSHExtensions...), VTKExtensions...)
	return nil, fmt.Errorf("%w: file %s (allowed: %s)", mesh.ErrBadExtension, filename, strings.Join(allowed, " "))
}

// WriteFile writes m to filename in the format given by its extension
func WriteFile(filename string, m *mesh.Mesh, opts ...Option) error {
	w, err := NewWriter(filename, m, opts...)
	if err != nil {
		return err
	}
	return w.WriteContents()
}
