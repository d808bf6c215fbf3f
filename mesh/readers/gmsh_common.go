package readers

import (
	"fmt"
	"strings"

	"github.com/notargets/meshrw/fileio"
	"github.com/notargets/meshrw/mesh"
)

// GmshVersion returns the version token of the $MeshFormat section
func GmshVersion(filename string) (string, error) {
	rc, err := fileio.OpenReader(filename)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	lr := newLineReader(rc)
	for lr.next() {
		if lr.text != "$MeshFormat" {
			continue
		}
		if !lr.next() {
			break
		}
		if parts := strings.Fields(lr.text); len(parts) > 0 {
			return parts[0], nil
		}
	}
	return "", lr.fail("$MeshFormat section")
}

// ReadGmshAuto detects the Gmsh format version and reads the file
func ReadGmshAuto(filename string) (*mesh.Mesh, error) {
	version, err := GmshVersion(filename)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.HasPrefix(version, "2."):
		return ReadGmsh22(filename)
	case strings.HasPrefix(version, "4."):
		return nil, fmt.Errorf("%w: gmsh format version %s", mesh.ErrNotImplemented, version)
	default:
		return nil, fmt.Errorf("%w: unsupported gmsh format version %s", mesh.ErrNotImplemented, version)
	}
}
