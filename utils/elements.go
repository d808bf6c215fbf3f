package utils

import (
	"errors"
	"fmt"
	"strings"
)

// ElementType represents the canonical finite element tags shared by every
// file format. The tag fixes the shape and the node ordering.
type ElementType int

const (
	Unknown ElementType = iota
	// 0D elements
	NOD1 // 1-node point
	// 1D elements
	LIN2 // 2-node line
	LIN3 // 3-node second order line
	LIN4 // 4-node third order line
	// 2D elements
	TRI3  // 3-node triangle
	TRI6  // 6-node second order triangle (3 vertices, 3 on edges)
	TRI9  // 9-node cubic triangle (3 vertices, 3 on edges, 3 inside)
	TRI10 // 10-node triangle (3 vertices, 6 on edges, 1 inside)
	TRI12 // 12-node triangle (3 vertices, 9 on edges)
	TRI15 // 15-node triangle (3 vertices, 9 on edges, 3 inside)
	QUA4  // 4-node quadrangle
	QUA8  // 8-node second order quadrangle (4 vertices, 4 on edges)
	QUA9  // 9-node quadrangle (4 vertices, 4 on edges, 1 inside)
	// 3D elements
	TET4  // 4-node tetrahedron
	TET10 // 10-node second order tetrahedron (4 vertices, 6 on edges)
	HEX8  // 8-node hexahedron
	HEX20 // 20-node second order hexahedron (8 vertices, 12 on edges)
	HEX27 // 27-node hexahedron (8 vertices, 12 on edges, 6 on faces, 1 inside)
	PRI6  // 6-node prism
	PRI15 // 15-node second order prism (6 vertices, 9 on edges)
	PRI18 // 18-node prism (6 vertices, 9 on edges, 3 on faces)
	PYR5  // 5-node pyramid
	PYR13 // 13-node second order pyramid (5 vertices, 8 on edges)
	PYR14 // 14-node pyramid (5 vertices, 8 on edges, 1 inside)
	// VTK only cells
	NODN  // poly vertex
	LINEN // poly line
	TRIN  // triangle strip
	POLY  // polygon
	PIXEL // axis aligned quadrangle
	VOXEL // axis aligned hexahedron
)

// VariableNodes is the node count reported for cells whose size is set per row
const VariableNodes = -1

var ErrUnknownElement = errors.New("unknown element type")

var elementNames = []string{
	"Unknown",
	"NOD1",
	"LIN2", "LIN3", "LIN4",
	"TRI3", "TRI6", "TRI9", "TRI10", "TRI12", "TRI15", "QUA4", "QUA8", "QUA9",
	"TET4", "TET10", "HEX8", "HEX20", "HEX27", "PRI6", "PRI15", "PRI18", "PYR5", "PYR13", "PYR14",
	"NODN", "LINEN", "TRIN", "POLY", "PIXEL", "VOXEL",
}

// String representation of element types
func (e ElementType) String() string {
	if e >= 0 && int(e) < len(elementNames) {
		return elementNames[e]
	}
	return "Invalid"
}

// AllElementTypes lists every known tag in declaration order
func AllElementTypes() []ElementType {
	types := make([]ElementType, 0, len(elementNames)-1)
	for e := NOD1; int(e) < len(elementNames); e++ {
		types = append(types, e)
	}
	return types
}

// GetDimension returns the spatial dimension of the element
func (e ElementType) GetDimension() int {
	switch e {
	case NOD1, NODN:
		return 0
	case LIN2, LIN3, LIN4, LINEN:
		return 1
	case TRI3, TRI6, TRI9, TRI10, TRI12, TRI15, QUA4, QUA8, QUA9, TRIN, POLY, PIXEL:
		return 2
	case TET4, TET10, HEX8, HEX20, HEX27, PRI6, PRI15, PRI18, PYR5, PYR13, PYR14, VOXEL:
		return 3
	default:
		return -1
	}
}

// GetNumNodes returns the number of nodes for each element type, VariableNodes
// for poly cells and 0 for unknown tags
func (e ElementType) GetNumNodes() int {
	switch e {
	case NOD1:
		return 1
	case LIN2:
		return 2
	case LIN3, TRI3:
		return 3
	case LIN4, QUA4, TET4, PIXEL:
		return 4
	case PYR5:
		return 5
	case TRI6, PRI6:
		return 6
	case QUA8, HEX8, VOXEL:
		return 8
	case TRI9, QUA9:
		return 9
	case TRI10, TET10:
		return 10
	case TRI12:
		return 12
	case PYR13:
		return 13
	case PYR14:
		return 14
	case TRI15, PRI15:
		return 15
	case PRI18:
		return 18
	case HEX20:
		return 20
	case HEX27:
		return 27
	case NODN, LINEN, TRIN, POLY:
		return VariableNodes
	default:
		return 0
	}
}

// IsVariable reports whether rows of this type carry their own length
func (e ElementType) IsVariable() bool {
	return e.GetNumNodes() == VariableNodes
}

// elementAliases resolves tokens that are not canonical tags. VTK cell names,
// the long shape names and historical spellings all land here.
var elementAliases = map[string]ElementType{
	"VTK_VERTEX":               NOD1,
	"VTK_LINE":                 LIN2,
	"VTK_TRIANGLE":             TRI3,
	"VTK_QUAD":                 QUA4,
	"VTK_TETRA":                TET4,
	"VTK_HEXAHEDRON":           HEX8,
	"VTK_WEDGE":                PRI6,
	"VTK_PYRAMID":              PYR5,
	"VTK_QUADRATIC_EDGE":       LIN3,
	"VTK_QUADRATIC_TRIANGLE":   TRI6,
	"VTK_QUADRATIC_QUAD":       QUA8,
	"VTK_QUADRATIC_TETRA":      TET10,
	"VTK_QUADRATIC_HEXAHEDRON": HEX20,
	"VTK_POLY_VERTEX":          NODN,
	"VTK_POLY_LINE":            LINEN,
	"VTK_TRIANGLE_STRIP":       TRIN,
	"VTK_POLYGON":              POLY,
	"VTK_PIXEL":                PIXEL,
	"VTK_VOXEL":                VOXEL,
	"QUAD4":                    QUA4,
	"POINT":                    NOD1,
	"LINE":                     LIN2,
	"TRIANGLE":                 TRI3,
	"TRIANGLE6":                TRI6,
	"TRIANGLE9":                TRI9,
	"TRIANGLE10":               TRI10,
	"QUAD":                     QUA4,
	"QUAD8":                    QUA8,
	"QUAD9":                    QUA9,
	"TET":                      TET4,
	"HEX":                      HEX8,
	"PRISM":                    PRI6,
	"WEDGE":                    PRI6,
	"PYRAMID":                  PYR5,
	"PRISM15":                  PRI15,
	"PRISM18":                  PRI18,
	"PYRAMID13":                PYR13,
	"PYRAMID14":                PYR14,
}

// ParseElementType resolves a token to its canonical tag. The alias table is
// consulted before the canonical names.
func ParseElementType(token string) (ElementType, error) {
	key := strings.ToUpper(strings.TrimSpace(token))
	if et, ok := elementAliases[key]; ok {
		return et, nil
	}
	for i := 1; i < len(elementNames); i++ {
		if elementNames[i] == key {
			return ElementType(i), nil
		}
	}
	return Unknown, fmt.Errorf("%w: %q", ErrUnknownElement, token)
}

// MarshalText writes the canonical tag
func (e ElementType) MarshalText() ([]byte, error) {
	if e.GetNumNodes() == 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownElement, int(e))
	}
	return []byte(e.String()), nil
}

// UnmarshalText accepts any token understood by ParseElementType
func (e *ElementType) UnmarshalText(text []byte) error {
	et, err := ParseElementType(string(text))
	if err != nil {
		return err
	}
	*e = et
	return nil
}
