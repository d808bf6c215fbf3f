package writers

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/notargets/meshrw/mesh"
)

// Allowed filename extensions, compressed variants included
var (
	MSHExtensions = []string{".msh", ".msh.gz", ".msh.bz2"}
	VTKExtensions = []string{".vtk", ".vtk.gz", ".vtk.bz2"}
)

func allowedExtension(ext string, allowed []string) bool {
	ext = strings.ToLower(ext)
	for _, a := range allowed {
		if a == ext {
			return true
		}
	}
	return false
}

// SplitFilename splits filename into directory, stem and extension. The
// extension is one or two suffixes long and must belong to allowed.
func SplitFilename(filename string, allowed []string) (dir, stem, ext string, err error) {
	dir = filepath.Dir(filename)
	base := filepath.Base(filename)
	rest := base
	for i := 0; i < 2; i++ {
		suffix := filepath.Ext(rest)
		if suffix == "" {
			break
		}
		rest = strings.TrimSuffix(rest, suffix)
		ext = suffix + ext
		if allowedExtension(ext, allowed) {
			return dir, rest, ext, nil
		}
	}
	return "", "", "", fmt.Errorf("%w: file %s (allowed: %s)", mesh.ErrBadExtension, filename, strings.Join(allowed, " "))
}

// StepSuffix returns ".<step>" zero padded to the digit count of nbSteps
func StepSuffix(step, nbSteps int) string {
	width := len(strconv.Itoa(nbSteps))
	return fmt.Sprintf(".%0*d", width, step)
}

// StepFilename inserts the step suffix between stem and extension
func StepFilename(filename string, allowed []string, step, nbSteps int) (string, error) {
	dir, stem, ext, err := SplitFilename(filename, allowed)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, stem+StepSuffix(step, nbSteps)+ext), nil
}
