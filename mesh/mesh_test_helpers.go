package mesh

import (
	"github.com/notargets/meshrw/utils"
)

// TestMeshes provides a collection of standard meshes shared by the reader
// and writer tests
type TestMeshes struct {
	CubeNodes NodeSet

	TwoTetMesh CompleteMesh
	MixedMesh  CompleteMesh
	CubeMesh   CompleteMesh
	SquareMesh CompleteMesh // 2-D, triangles and quads
}

// NodeSet represents a set of nodes with their coordinates
type NodeSet struct {
	Nodes   [][]float64    // Coordinates [N][2 or 3]
	NodeMap map[string]int // Logical name -> array index
}

// ElementSet is one element group with connectivity by logical node name
type ElementSet struct {
	Type      utils.ElementType
	Elements  [][]string
	PhysGroup int // 0 leaves the group unassigned
	Name      string
}

// CompleteMesh represents a complete mesh with nodes and elements
type CompleteMesh struct {
	Nodes     NodeSet
	Elements  []ElementSet
	Dimension int
}

// GetStandardTestMeshes returns a set of standard test meshes
func GetStandardTestMeshes() *TestMeshes {
	tm := &TestMeshes{}
	tm.CubeNodes = createCubeNodes()
	tm.TwoTetMesh = createTwoTetMesh()
	tm.MixedMesh = createMixedMesh()
	tm.CubeMesh = createCubeMesh()
	tm.SquareMesh = createSquareMesh()
	return tm
}

func createCubeNodes() NodeSet {
	nodes := [][]float64{
		{0, 0, 0}, // 0: origin
		{1, 0, 0}, // 1: x
		{1, 1, 0}, // 2: xy
		{0, 1, 0}, // 3: y
		{0, 0, 1}, // 4: z
		{1, 0, 1}, // 5: xz
		{1, 1, 1}, // 6: xyz
		{0, 1, 1}, // 7: yz
		{0.5, 0.5, 0.5},
	}
	nodeMap := map[string]int{
		"origin": 0, "x": 1, "xy": 2, "y": 3,
		"z": 4, "xz": 5, "xyz": 6, "yz": 7,
		"center": 8,
	}
	return NodeSet{Nodes: nodes, NodeMap: nodeMap}
}

func createTwoTetMesh() CompleteMesh {
	// Two tetrahedra sharing a face
	nodes := NodeSet{
		Nodes: [][]float64{
			{0, 0, 0},
			{1, 0, 0},
			{0, 1, 0},
			{0, 0, 1},
			{1, 1, 1},
		},
		NodeMap: map[string]int{
			"v0": 0, "v1": 1, "v2": 2, "v3": 3, "v4": 4,
		},
	}
	return CompleteMesh{
		Nodes: nodes,
		Elements: []ElementSet{
			{
				Type: utils.TET4,
				Elements: [][]string{
					{"v0", "v1", "v2", "v3"},
					{"v1", "v2", "v3", "v4"},
				},
				PhysGroup: 1,
				Name:      "volume",
			},
		},
		Dimension: 3,
	}
}

func createMixedMesh() CompleteMesh {
	// One group per 3-D element type, plus a boundary triangle without group
	return CompleteMesh{
		Nodes: createCubeNodes(),
		Elements: []ElementSet{
			{
				Type: utils.TET4,
				Elements: [][]string{
					{"origin", "x", "y", "z"},
					{"x", "xy", "y", "center"},
				},
				PhysGroup: 10,
				Name:      "tets",
			},
			{
				Type:      utils.HEX8,
				Elements:  [][]string{{"origin", "x", "xy", "y", "z", "xz", "xyz", "yz"}},
				PhysGroup: 10,
				Name:      "hexes",
			},
			{
				Type:      utils.PRI6,
				Elements:  [][]string{{"origin", "x", "y", "z", "xz", "yz"}},
				PhysGroup: 20,
			},
			{
				Type:      utils.PYR5,
				Elements:  [][]string{{"origin", "x", "xy", "y", "center"}},
				PhysGroup: 20,
			},
			{
				Type:     utils.TRI3,
				Elements: [][]string{{"origin", "x", "y"}},
			},
		},
		Dimension: 3,
	}
}

func createCubeMesh() CompleteMesh {
	// A simple cube meshed with 6 tetrahedra
	return CompleteMesh{
		Nodes: createCubeNodes(),
		Elements: []ElementSet{
			{
				Type: utils.TET4,
				Elements: [][]string{
					{"origin", "x", "y", "center"},
					{"x", "xy", "y", "center"},
					{"origin", "y", "z", "center"},
					{"y", "yz", "z", "center"},
					{"x", "center", "xz", "xyz"},
					{"center", "xyz", "yz", "y"},
				},
				PhysGroup: 1,
			},
		},
		Dimension: 3,
	}
}

func createSquareMesh() CompleteMesh {
	// Unit square split in a quad and two triangles, with its bottom edge
	nodes := NodeSet{
		Nodes: [][]float64{
			{0, 0}, {0.5, 0}, {1, 0},
			{0, 1}, {0.5, 1}, {1, 1},
		},
		NodeMap: map[string]int{
			"sw": 0, "s": 1, "se": 2,
			"nw": 3, "n": 4, "ne": 5,
		},
	}
	return CompleteMesh{
		Nodes: nodes,
		Elements: []ElementSet{
			{
				Type:      utils.QUA4,
				Elements:  [][]string{{"sw", "s", "n", "nw"}},
				PhysGroup: 1,
				Name:      "left",
			},
			{
				Type:      utils.TRI3,
				Elements:  [][]string{{"s", "se", "ne"}, {"s", "ne", "n"}},
				PhysGroup: 2,
				Name:      "right",
			},
			{
				Type:     utils.LIN2,
				Elements: [][]string{{"sw", "s"}, {"s", "se"}},
			},
		},
		Dimension: 2,
	}
}

// ConvertToMesh converts a CompleteMesh to a Mesh without fields
func (cm *CompleteMesh) ConvertToMesh() *Mesh {
	nodes := make([][]float64, len(cm.Nodes.Nodes))
	for i, xyz := range cm.Nodes.Nodes {
		nodes[i] = append([]float64(nil), xyz...)
	}
	m := NewMesh(nodes)
	for _, es := range cm.Elements {
		g := ElementGroup{Type: es.Type, Name: es.Name}
		for _, names := range es.Elements {
			conn := make([]int, len(names))
			for j, name := range names {
				conn[j] = cm.Nodes.NodeMap[name] + 1
			}
			g.Connectivity = append(g.Connectivity, conn)
		}
		if es.PhysGroup != 0 {
			g.PhysGroups = []int{es.PhysGroup}
		}
		m.AddElementGroup(g)
	}
	return m
}

// SingleElementMesh builds a mesh holding one element of type et on
// distinct nodes. Variable size types get five nodes.
func SingleElementMesh(et utils.ElementType) *Mesh {
	n := et.GetNumNodes()
	if et.IsVariable() {
		n = 5
	}
	nodes := make([][]float64, n)
	conn := make([]int, n)
	for i := range nodes {
		x := float64(i)
		nodes[i] = []float64{x, 0.5 * x, 0.25 * x * x}
		conn[i] = i + 1
	}
	m := NewMesh(nodes)
	m.AddElementGroup(ElementGroup{Type: et, Connectivity: [][]int{conn}})
	return m
}
