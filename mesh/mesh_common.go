package mesh

import (
	"fmt"

	"github.com/notargets/meshrw/utils"
)

// ElementGroup is a set of elements of one canonical type
type ElementGroup struct {
	Type         utils.ElementType
	Connectivity [][]int // 1-based node indices [nelems][nverts_per_elem]
	// PhysGroups is empty (no assignment), one value applied to every element,
	// or one value per element
	PhysGroups []int
	Name       string
}

// NumElements returns the number of elements in the group
func (g *ElementGroup) NumElements() int {
	return len(g.Connectivity)
}

// HasPhysGroup reports whether the group declares a physical group assignment
func (g *ElementGroup) HasPhysGroup() bool {
	return len(g.PhysGroups) > 0
}

// PhysGroupOf returns the physical group of element i of the group, or
// NoPhysGroup when none is assigned
func (g *ElementGroup) PhysGroupOf(i int) int {
	switch {
	case len(g.PhysGroups) == 0:
		return NoPhysGroup
	case len(g.PhysGroups) == len(g.Connectivity):
		return g.PhysGroups[i]
	default:
		return g.PhysGroups[0]
	}
}

// Mesh is the in-memory mesh handed to writers and returned by readers
type Mesh struct {
	// Geometry
	Nodes [][]float64 // Node coordinates [nnodes][2 or 3]

	// Element data
	ElementGroups []ElementGroup

	// Field data
	Fields []FieldSpec
}

// NewMesh creates a mesh over the given node coordinates
func NewMesh(nodes [][]float64) *Mesh {
	return &Mesh{Nodes: nodes}
}

// AddElementGroup appends a group and returns the mesh for chaining
func (m *Mesh) AddElementGroup(g ElementGroup) *Mesh {
	m.ElementGroups = append(m.ElementGroups, g)
	return m
}

// AddField appends a field descriptor and returns the mesh for chaining
func (m *Mesh) AddField(f FieldSpec) *Mesh {
	m.Fields = append(m.Fields, f)
	return m
}

// NumNodes returns the number of nodes
func (m *Mesh) NumNodes() int {
	return len(m.Nodes)
}

// NumElements returns the number of elements over all groups
func (m *Mesh) NumElements() int {
	n := 0
	for i := range m.ElementGroups {
		n += m.ElementGroups[i].NumElements()
	}
	return n
}

// Dimension returns the coordinate width of the node set
func (m *Mesh) Dimension() int {
	if len(m.Nodes) == 0 {
		return 0
	}
	return len(m.Nodes[0])
}

// validateNodes checks every row has the same width of 2 or 3 coordinates
func (m *Mesh) validateNodes() error {
	dim := m.Dimension()
	if len(m.Nodes) > 0 && dim != 2 && dim != 3 {
		return fmt.Errorf("%w: nodes must have 2 or 3 coordinates, got %d", ErrSchema, dim)
	}
	for i, n := range m.Nodes {
		if len(n) != dim {
			return fmt.Errorf("%w: node %d has %d coordinates, expected %d", ErrSchema, i+1, len(n), dim)
		}
	}
	return nil
}

// validateGroup checks the connectivity of group ig against the node set
func (m *Mesh) validateGroup(ig int) error {
	g := &m.ElementGroups[ig]
	expected := g.Type.GetNumNodes()
	if expected == 0 {
		return fmt.Errorf("%w: element group %d has unknown type %s", ErrRegistry, ig, g.Type)
	}
	nn := m.NumNodes()
	for ie, conn := range g.Connectivity {
		if g.Type.IsVariable() {
			if len(conn) == 0 {
				return fmt.Errorf("%w: group %d element %d of type %s has no nodes", ErrSchema, ig, ie+1, g.Type)
			}
		} else if len(conn) != expected {
			return fmt.Errorf("%w: group %d element %d of type %s: expected %d nodes, got %d",
				ErrSchema, ig, ie+1, g.Type, expected, len(conn))
		}
		for _, idx := range conn {
			if idx < 1 || idx > nn {
				return fmt.Errorf("%w: group %d element %d references node %d outside 1..%d",
					ErrSchema, ig, ie+1, idx, nn)
			}
		}
	}
	return nil
}
