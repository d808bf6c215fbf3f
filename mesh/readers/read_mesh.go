package readers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/notargets/meshrw/fileio"
	"github.com/notargets/meshrw/mesh"
)

// ReadMeshFile reads a mesh file based on extension, .gz and .bz2 included
func ReadMeshFile(filename string) (*mesh.Mesh, error) {
	name := strings.ToLower(filename)
	if fileio.CompressionOf(name) != fileio.NoCompression {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	ext := filepath.Ext(name)

	switch ext {
	case ".msh":
		return ReadGmshAuto(filename)
	case ".vtk":
		return nil, fmt.Errorf("%w: reading vtk files", mesh.ErrNotImplemented)
	default:
		return nil, fmt.Errorf("%w: unsupported mesh format: %s", mesh.ErrBadExtension, ext)
	}
}
