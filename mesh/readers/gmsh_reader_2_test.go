package readers

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/meshrw/mesh"
	"github.com/notargets/meshrw/mesh/writers"
	"github.com/notargets/meshrw/utils"
)

func msh(lines ...string) *strings.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func fieldByName(t *testing.T, m *mesh.Mesh, name string) mesh.FieldSpec {
	t.Helper()
	for _, f := range m.Fields {
		if f.Name == name {
			return f
		}
	}
	require.Failf(t, "missing field", "no field named %q", name)
	return mesh.FieldSpec{}
}

func TestGmsh22RoundTrip(t *testing.T) {
	m := mesh.GetStandardTestMeshes().MixedMesh.ConvertToMesh()
	nn := m.NumNodes()
	vel0, vel1 := make([]float64, nn*3), make([]float64, nn*3)
	for i := range vel0 {
		vel0[i] = 0.125 * float64(i)
		vel1[i] = -1.5 * float64(i)
	}
	m.AddField(mesh.FieldSpec{
		Kind:       mesh.Nodal,
		Name:       "vel",
		StepValues: []mesh.Array{mesh.NewFloatArray(nn, 3, vel0), mesh.NewFloatArray(nn, 3, vel1)},
		Steps:      []float64{0, 0.5},
	})
	m.AddField(mesh.FieldSpec{Kind: mesh.Elemental, Name: "mat", Values: mesh.IntColumn([]int{4, 4, 3, 2, 2, 1})})
	m.AddField(mesh.FieldSpec{Kind: mesh.Nodal, Name: "probe", Values: mesh.FloatColumn([]float64{1.25, -2}), Entities: []int{1, 9}})

	filename := filepath.Join(t.TempDir(), "mixed.msh")
	require.NoError(t, writers.WriteFile(filename, m))
	got, err := ReadGmsh22(filename)
	require.NoError(t, err)

	require.Equal(t, nn, got.NumNodes())
	for i := range m.Nodes {
		assert.InDeltaSlice(t, m.Nodes[i], got.Nodes[i], utils.ROUNDTRIPTOL, "node %d", i+1)
	}
	require.Len(t, got.ElementGroups, len(m.ElementGroups))
	for ig, g := range m.ElementGroups {
		assert.Equal(t, g.Type, got.ElementGroups[ig].Type)
		assert.Equal(t, g.Connectivity, got.ElementGroups[ig].Connectivity)
		assert.Equal(t, g.PhysGroups, got.ElementGroups[ig].PhysGroups, g.Type.String())
	}

	// physgrp is consumed, the user fields come back
	require.Len(t, got.Fields, 3)
	vel := fieldByName(t, got, "vel")
	assert.Equal(t, mesh.Nodal, vel.Kind)
	assert.Equal(t, 3, vel.Dim)
	assert.Equal(t, 2, vel.NbSteps)
	assert.Equal(t, []float64{0, 0.5}, vel.Steps)
	require.Len(t, vel.StepValues, 2)
	r, c := vel.StepValues[1].Dims()
	assert.Equal(t, nn, r)
	assert.Equal(t, 3, c)
	assert.InDelta(t, vel1[3*4+2], vel.StepValues[1].At(4, 2), utils.ROUNDTRIPTOL)
	assert.Nil(t, vel.Entities)

	mat := fieldByName(t, got, "mat")
	assert.Equal(t, mesh.Elemental, mat.Kind)
	require.NotNil(t, mat.Values)
	assert.Equal(t, mesh.Int, mat.Values.Kind())
	assert.Equal(t, []float64{4, 4, 3, 2, 2, 1}, column(mat.Values))
	assert.Nil(t, mat.Steps)

	probe := fieldByName(t, got, "probe")
	assert.Equal(t, []int{1, 9}, probe.Entities)
	assert.InDelta(t, -2, probe.Values.At(1, 0), utils.ROUNDTRIPTOL)

	_, err = mesh.Analyze(got, zerolog.Nop())
	assert.NoError(t, err)
}

func column(a mesh.Array) []float64 {
	n, _ := a.Dims()
	out := make([]float64, n)
	for i := range out {
		out[i] = a.At(i, 0)
	}
	return out
}

func TestGmsh22RoundTripPlanar(t *testing.T) {
	m := mesh.GetStandardTestMeshes().SquareMesh.ConvertToMesh()
	filename := filepath.Join(t.TempDir(), "square.msh")
	require.NoError(t, writers.WriteFile(filename, m, writers.WithPhysicalNames(true)))

	got, err := ReadGmsh22(filename)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Dimension())
	assert.Len(t, got.Nodes[0], 2)
	require.Len(t, got.ElementGroups, 3)
	assert.Equal(t, "left", got.ElementGroups[0].Name)
	assert.Equal(t, "right", got.ElementGroups[1].Name)
	// lines carry -1 in physgrp, the global group only lives in the tags
	assert.Nil(t, got.ElementGroups[2].PhysGroups)
	assert.Empty(t, got.ElementGroups[2].Name)
	assert.Empty(t, got.Fields)
}

func TestGmsh22PhysGroupsFromTags(t *testing.T) {
	got, err := ReadGmsh22From(msh(
		"$MeshFormat", "2.2 0 8", "$EndMeshFormat",
		"$PhysicalNames", "1", "2 7 \"flat plate\"", "$EndPhysicalNames",
		"$Nodes", "4",
		"1 0 0 0", "2 1 0 0", "3 1 1 0", "4 0 1 0",
		"$EndNodes",
		"$Elements", "4",
		"10 2 2 7 1 1 2 3",
		"11 1 2 0 2 1 2",
		"12 2 2 7 1 1 3 4",
		"13 1 2 9 2 3 4",
		"$EndElements",
		"$ElementData", "1", "\"flag\"", "1", "2.5", "3", "0", "1", "2",
		"13 1", "10 0",
		"$EndElementData",
	))
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}, got.Nodes)
	require.Len(t, got.ElementGroups, 2)

	tri := got.ElementGroups[0]
	assert.Equal(t, utils.TRI3, tri.Type)
	assert.Equal(t, [][]int{{1, 2, 3}, {1, 3, 4}}, tri.Connectivity)
	assert.Equal(t, []int{7}, tri.PhysGroups)
	assert.Equal(t, "flat plate", tri.Name)

	lin := got.ElementGroups[1]
	assert.Equal(t, utils.LIN2, lin.Type)
	assert.Equal(t, []int{-1, 9}, lin.PhysGroups)

	// element ids are renumbered group after group: 10->1, 12->2, 11->3, 13->4
	require.Len(t, got.Fields, 1)
	flag := got.Fields[0]
	assert.Equal(t, []int{1, 4}, flag.Entities)
	assert.Equal(t, []float64{2.5}, flag.Steps)
	assert.Equal(t, mesh.Int, flag.Values.Kind())
	assert.Equal(t, []float64{0, 1}, column(flag.Values))
}

func TestGmsh22ParseErrors(t *testing.T) {
	header := []string{"$MeshFormat", "2.2 0 8", "$EndMeshFormat"}
	with := func(lines ...string) *strings.Reader {
		return msh(append(append([]string{}, header...), lines...)...)
	}
	tests := []struct {
		name     string
		input    *strings.Reader
		line     int
		expected string
		found    string
	}{
		{"no header", msh("$Nodes", "0", "$EndNodes"), 1, "$MeshFormat", "$Nodes"},
		{"bad version line", msh("$MeshFormat", "2.2 0", "$EndMeshFormat"), 2, "version line \"2.2 0 8\"", "2.2 0"},
		{"elements first", with("$Elements", "0", "$EndElements"), 4, "$Nodes", "$Elements"},
		{"short node", with("$Nodes", "2", "1 0 0 0", "2 1 0", "$EndNodes"), 7, "node line \"id x y z\"", "2 1 0"},
		{"node count", with("$Nodes", "2", "1 0 0 0", "$EndNodes"), 7, "node line \"id x y z\"", "$EndNodes"},
		{"duplicate node", with("$Nodes", "2", "1 0 0 0", "1 1 0 0", "$EndNodes"), 7, "unique node id", "1 1 0 0"},
		{"truncated", with("$Nodes", "1", "1 0 0 0"), 6, "$EndNodes", "EOF"},
		{
			"element nodes",
			with("$Nodes", "2", "1 0 0 0", "2 1 0 0", "$EndNodes", "$Elements", "1", "1 2 2 0 1 1 2", "$EndElements"),
			11, "2 tags and 3 nodes for TRI3", "1 2 2 0 1 1 2",
		},
		{
			"undeclared node",
			with("$Nodes", "2", "1 0 0 0", "2 1 0 0", "$EndNodes", "$Elements", "1", "1 1 2 0 1 1 3", "$EndElements"),
			11, "declared node id", "1 1 2 0 1 1 3",
		},
		{
			"unknown section",
			with("$Nodes", "1", "1 0 0 0", "$EndNodes", "$Elements", "1", "1 15 2 0 1 1", "$EndElements", "$Comments"),
			12, "$NodeData or $ElementData", "$Comments",
		},
		{
			"data count",
			with("$Nodes", "1", "1 0 0 0", "$EndNodes", "$Elements", "0", "$EndElements",
				"$NodeData", "1", "\"u\"", "1", "0", "3", "0", "1", "2", "1 0.5", "$EndNodeData"),
			19, "at most 1 nodal entities", "2",
		},
		{
			"data entity",
			with("$Nodes", "1", "1 0 0 0", "$EndNodes", "$Elements", "0", "$EndElements",
				"$NodeData", "1", "\"u\"", "1", "0", "3", "0", "1", "1", "4 0.5", "$EndNodeData"),
			20, "declared nodal id", "4 0.5",
		},
	}
	for _, tt := range tests {
		_, err := ReadGmsh22From(tt.input)
		require.Error(t, err, tt.name)
		assert.ErrorIs(t, err, mesh.ErrParse, tt.name)
		var pe *ParseError
		require.True(t, errors.As(err, &pe), tt.name)
		assert.Equal(t, tt.line, pe.Line, tt.name)
		assert.Equal(t, tt.expected, pe.Expected, tt.name)
		assert.Equal(t, tt.found, pe.Found, tt.name)
	}
}

func TestGmsh22ParseErrorOffset(t *testing.T) {
	_, err := ReadGmsh22From(msh("$MeshFormat", "2.2 0 8", "$EndMeshFormat", "$Nodes", "2", "1 0 0 0", "2 1 0"))
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 7, pe.Line)
	assert.Equal(t, int64(52), pe.Offset)
	assert.Contains(t, pe.Error(), "line 7 (byte 52)")
}

func TestGmsh22UnsupportedVariants(t *testing.T) {
	for _, version := range []string{"4.1 0 8", "2.2 1 8"} {
		_, err := ReadGmsh22From(msh("$MeshFormat", version, "$EndMeshFormat"))
		assert.ErrorIs(t, err, mesh.ErrNotImplemented, version)
		assert.ErrorIs(t, err, mesh.ErrParse, version)
	}

	_, err := ReadGmsh22From(msh("$MeshFormat", "2.2 0 8", "$EndMeshFormat",
		"$Nodes", "1", "1 0 0 0", "$EndNodes", "$Elements", "1", "1 99 0 1", "$EndElements"))
	assert.ErrorIs(t, err, mesh.ErrRegistry)
	assert.ErrorIs(t, err, mesh.ErrParse)
}

func TestGmsh22InconsistentField(t *testing.T) {
	head := []string{"$MeshFormat", "2.2 0 8", "$EndMeshFormat",
		"$Nodes", "2", "1 0 0 0", "2 1 0 0", "$EndNodes", "$Elements", "0", "$EndElements"}
	step := func(step, dim string, rows ...string) []string {
		out := []string{"$NodeData", "1", "\"u\"", "1", "0", "3", step, dim, "1"}
		return append(append(out, rows...), "$EndNodeData")
	}

	lines := append(append(append([]string{}, head...), step("0", "1", "1 0.5")...), step("1", "2", "1 0.5 1.5")...)
	_, err := ReadGmsh22From(msh(lines...))
	assert.ErrorIs(t, err, mesh.ErrParse)

	lines = append(append(append([]string{}, head...), step("0", "1", "1 0.5")...), step("1", "1", "2 0.5")...)
	_, err = ReadGmsh22From(msh(lines...))
	require.ErrorIs(t, err, mesh.ErrParse)
	assert.Contains(t, err.Error(), "same entities")

	// steps may come out of order
	lines = append(append(append([]string{}, head...), step("1", "1", "1 3.5")...), step("0", "1", "1 0.5")...)
	got, err := ReadGmsh22From(msh(lines...))
	require.NoError(t, err)
	require.Len(t, got.Fields, 1)
	assert.Equal(t, 2, got.Fields[0].NbSteps)
	assert.Equal(t, 0.5, got.Fields[0].StepValues[0].At(0, 0))
	assert.Equal(t, 3.5, got.Fields[0].StepValues[1].At(0, 0))
}

func TestReadGmshAuto(t *testing.T) {
	dir := t.TempDir()
	v4 := filepath.Join(dir, "v4.msh")
	require.NoError(t, os.WriteFile(v4, []byte("$MeshFormat\n4.1 0 8\n$EndMeshFormat\n"), 0644))
	version, err := GmshVersion(v4)
	require.NoError(t, err)
	assert.Equal(t, "4.1", version)
	_, err = ReadGmshAuto(v4)
	assert.ErrorIs(t, err, mesh.ErrNotImplemented)
	assert.NotErrorIs(t, err, mesh.ErrParse)

	empty := filepath.Join(dir, "empty.msh")
	require.NoError(t, os.WriteFile(empty, []byte("\n\n"), 0644))
	_, err = GmshVersion(empty)
	assert.ErrorIs(t, err, mesh.ErrParse)
}

func TestReadMeshFile(t *testing.T) {
	dir := t.TempDir()
	m := mesh.GetStandardTestMeshes().TwoTetMesh.ConvertToMesh()
	for _, name := range []string{"tets.msh", "tets.msh.gz", "tets.MSH.bz2"} {
		filename := filepath.Join(dir, name)
		require.NoError(t, writers.WriteFile(filename, m), name)
		got, err := ReadMeshFile(filename)
		require.NoError(t, err, name)
		assert.Equal(t, 5, got.NumNodes(), name)
		assert.Equal(t, 2, got.NumElements(), name)
		assert.Equal(t, []int{1}, got.ElementGroups[0].PhysGroups, name)
	}

	_, err := ReadMeshFile(filepath.Join(dir, "tets.vtk"))
	assert.ErrorIs(t, err, mesh.ErrNotImplemented)
	_, err = ReadMeshFile(filepath.Join(dir, "tets.txt"))
	assert.ErrorIs(t, err, mesh.ErrBadExtension)
	_, err = ReadMeshFile(filepath.Join(dir, "absent.msh"))
	assert.Error(t, err)
}

func TestGmsh22RoundTripEveryType(t *testing.T) {
	types := mesh.SupportedTypes(mesh.FormatMSH)
	require.Len(t, types, 21)

	var nodes [][]float64
	m := mesh.NewMesh(nil)
	for ig, et := range types {
		n := et.GetNumNodes()
		conn := make([]int, n)
		for i := range conn {
			x := float64(len(nodes))
			nodes = append(nodes, []float64{x, 0.5 * x, 0.25*x + 1})
			// reversed so a reordering reader would show
			conn[n-1-i] = len(nodes)
		}
		m.AddElementGroup(mesh.ElementGroup{Type: et, Connectivity: [][]int{conn}, PhysGroups: []int{ig + 1}})
	}
	m.Nodes = nodes

	filename := filepath.Join(t.TempDir(), "every.msh")
	require.NoError(t, writers.WriteFile(filename, m))
	got, err := ReadGmsh22(filename)
	require.NoError(t, err)

	require.Equal(t, len(nodes), got.NumNodes())
	for i := range nodes {
		assert.InDeltaSlice(t, nodes[i], got.Nodes[i], utils.ROUNDTRIPTOL, "node %d", i+1)
	}
	require.Len(t, got.ElementGroups, len(types))
	for ig, g := range m.ElementGroups {
		assert.Equal(t, g.Type, got.ElementGroups[ig].Type)
		assert.Equal(t, g.Connectivity, got.ElementGroups[ig].Connectivity, g.Type.String())
		assert.Equal(t, []int{ig + 1}, got.ElementGroups[ig].PhysGroups, g.Type.String())
	}
}

func TestGmsh22FlatSurfaceReadsAs2D(t *testing.T) {
	m := mesh.NewMesh([][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	m.AddElementGroup(mesh.ElementGroup{Type: utils.TRI3, Connectivity: [][]int{{1, 2, 3}}})
	filename := filepath.Join(t.TempDir(), "flat.msh")
	require.NoError(t, writers.WriteFile(filename, m))

	got, err := ReadGmsh22(filename)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Dimension())
	assert.Equal(t, 2, got.Dimension(), "z = 0 surfaces come back planar")
	assert.Equal(t, [][]float64{{0, 0}, {1, 0}, {0, 1}}, got.Nodes)

	// one lifted node keeps the third column
	m.Nodes[2][2] = 0.5
	require.NoError(t, writers.WriteFile(filename, m))
	got, err = ReadGmsh22(filename)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Dimension())

	// volume elements keep it too
	vol := mesh.GetStandardTestMeshes().TwoTetMesh.ConvertToMesh()
	for i := range vol.Nodes {
		vol.Nodes[i][2] = 0
	}
	require.NoError(t, writers.WriteFile(filename, vol))
	got, err = ReadGmsh22(filename)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Dimension())
}
