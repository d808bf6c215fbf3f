package mesh

import (
	"fmt"

	"github.com/notargets/meshrw/utils"
)

// Format identifies a target file format of the registry
type Format uint8

const (
	FormatMSH Format = iota
	FormatVTK
)

func (f Format) String() string {
	switch f {
	case FormatMSH:
		return "MSH"
	case FormatVTK:
		return "VTK"
	default:
		return "Unknown"
	}
}

type registryEntry struct {
	Type      utils.ElementType
	Code      int
	Available bool
}

// mshElementTypes maps canonical tags to Gmsh 2.2 element numbers
var mshElementTypes = []registryEntry{
	{utils.LIN2, 1, true},
	{utils.LIN3, 8, true},
	{utils.LIN4, 0, false},
	{utils.TRI3, 2, true},
	{utils.TRI6, 9, true},
	{utils.TRI9, 20, true},
	{utils.TRI10, 21, true},
	{utils.TRI12, 0, false},
	{utils.TRI15, 0, false},
	{utils.QUA4, 3, true},
	{utils.QUA8, 16, true},
	{utils.QUA9, 10, true},
	{utils.TET4, 4, true},
	{utils.TET10, 11, true},
	{utils.HEX8, 5, true},
	{utils.HEX20, 17, true},
	{utils.HEX27, 12, true},
	{utils.PRI6, 6, true},
	{utils.PRI15, 18, true},
	{utils.PRI18, 13, true},
	{utils.PYR5, 7, true},
	{utils.PYR13, 19, true},
	{utils.PYR14, 14, true},
	{utils.NOD1, 15, true},
}

// vtkElementTypes maps canonical tags to legacy VTK cell types
var vtkElementTypes = []registryEntry{
	{utils.LIN2, 3, true},
	{utils.LIN3, 21, true},
	{utils.LIN4, 0, false},
	{utils.TRI3, 5, true},
	{utils.TRI6, 22, true},
	{utils.TRI9, 0, false},
	{utils.TRI10, 0, false},
	{utils.TRI12, 0, false},
	{utils.TRI15, 0, false},
	{utils.QUA4, 9, true},
	{utils.QUA8, 23, true},
	{utils.QUA9, 0, false},
	{utils.TET4, 10, true},
	{utils.TET10, 24, true},
	{utils.HEX8, 12, true},
	{utils.HEX20, 25, true},
	{utils.HEX27, 0, false},
	{utils.PRI6, 13, true},
	{utils.PRI15, 0, false},
	{utils.PRI18, 0, false},
	{utils.PYR5, 14, true},
	{utils.PYR13, 0, false},
	{utils.PYR14, 0, false},
	{utils.NOD1, 1, true},
	{utils.NODN, 2, true},
	{utils.LINEN, 4, true},
	{utils.TRIN, 6, true},
	{utils.POLY, 7, true},
	{utils.PIXEL, 8, true},
	{utils.VOXEL, 11, true},
}

func registryTable(format Format) ([]registryEntry, error) {
	switch format {
	case FormatMSH:
		return mshElementTypes, nil
	case FormatVTK:
		return vtkElementTypes, nil
	default:
		return nil, fmt.Errorf("%w: no element table for format %d", ErrRegistry, format)
	}
}

// TypeCodeFor returns the numeric element code of a tag in the given format.
// Tags declared unavailable in the format are errors, never coerced.
func TypeCodeFor(et utils.ElementType, format Format) (int, error) {
	table, err := registryTable(format)
	if err != nil {
		return 0, err
	}
	for _, e := range table {
		if e.Type != et {
			continue
		}
		if !e.Available {
			return 0, fmt.Errorf("%w: element %s is not available in %s format", ErrRegistry, et, format)
		}
		return e.Code, nil
	}
	return 0, fmt.Errorf("%w: element %s is not declared in %s format", ErrRegistry, et, format)
}

// NodeCountFor returns the number of nodes of a tag (utils.VariableNodes for
// poly cells)
func NodeCountFor(et utils.ElementType) int {
	return et.GetNumNodes()
}

// TagFromCode returns the canonical tag of a numeric element code
func TagFromCode(code int, format Format) (utils.ElementType, error) {
	table, err := registryTable(format)
	if err != nil {
		return utils.Unknown, err
	}
	for i := len(table) - 1; i >= 0; i-- {
		if table[i].Available && table[i].Code == code {
			return table[i].Type, nil
		}
	}
	return utils.Unknown, fmt.Errorf("%w: code %d not found in %s format", ErrRegistry, code, format)
}

// SupportedTypes lists the tags available in every given format
func SupportedTypes(formats ...Format) []utils.ElementType {
	var out []utils.ElementType
	for _, et := range utils.AllElementTypes() {
		ok := true
		for _, f := range formats {
			if _, err := TypeCodeFor(et, f); err != nil {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, et)
		}
	}
	return out
}
