package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/meshrw/InputParameters"
	"github.com/notargets/meshrw/mesh"
	"github.com/notargets/meshrw/mesh/writers"
)

func squareFile(t *testing.T, dir string) string {
	t.Helper()
	m := mesh.GetStandardTestMeshes().SquareMesh.ConvertToMesh()
	m.AddField(mesh.FieldSpec{Kind: mesh.Nodal, Name: "T", Values: mesh.FloatColumn([]float64{0, 1, 2, 3, 4, 5})})
	m.AddField(mesh.FieldSpec{Kind: mesh.Elemental, Name: "rho", Values: mesh.FloatColumn([]float64{1, 1, 1, 1, 1})})
	filename := filepath.Join(dir, "square.msh.gz")
	require.NoError(t, writers.WriteFile(filename, m))
	return filename
}

func TestConvertToVTK(t *testing.T) {
	dir := t.TempDir()
	input := squareFile(t, dir)
	output := filepath.Join(dir, "square.vtk")

	var logs bytes.Buffer
	wp := &InputParameters.WriteParameters{Title: "converted", Fields: []string{"T"}}
	require.NoError(t, Convert(input, output, wp, zerolog.New(&logs)))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	out := string(data)
	assert.True(t, strings.HasPrefix(out, "# vtk DataFile Version 2.0\nconverted\nASCII\n"))
	assert.Contains(t, out, "POINTS 6 double")
	assert.Contains(t, out, "SCALARS T double 1")
	assert.NotContains(t, out, "rho")
	// physgrp is rebuilt from the element tags
	assert.Contains(t, out, "SCALARS physgrp int 1")
	assert.Contains(t, logs.String(), `"message":"convert"`)
	assert.Contains(t, logs.String(), `"message":"close file"`)
}

func TestConvertErrors(t *testing.T) {
	dir := t.TempDir()
	input := squareFile(t, dir)

	wp := &InputParameters.WriteParameters{Fields: []string{"missing"}}
	assert.ErrorIs(t, Convert(input, filepath.Join(dir, "a.vtk"), wp, zerolog.Nop()), mesh.ErrSchema)

	wp = &InputParameters.WriteParameters{}
	assert.ErrorIs(t, Convert(input, filepath.Join(dir, "a.obj"), wp, zerolog.Nop()), mesh.ErrBadExtension)
	assert.ErrorIs(t, Convert(filepath.Join(dir, "a.stl"), filepath.Join(dir, "a.vtk"), wp, zerolog.Nop()), mesh.ErrBadExtension)

	wp = &InputParameters.WriteParameters{Compress: "lz4"}
	assert.ErrorIs(t, Convert(input, filepath.Join(dir, "a.vtk"), wp, zerolog.Nop()), mesh.ErrSchema)
}

func TestInfo(t *testing.T) {
	dir := t.TempDir()
	input := squareFile(t, dir)

	var out bytes.Buffer
	require.NoError(t, Info(input, &out, zerolog.Nop()))
	s := out.String()
	assert.Contains(t, s, "Dimension\t2\n")
	assert.Contains(t, s, "Nodes\t\t6\n")
	assert.Contains(t, s, "Elements\t5\n")
	assert.Contains(t, s, "Physical groups\t2\n")
	assert.Contains(t, s, "Fields\t\t3 (nodal 1, elemental 2, temporal 0)\n")
	assert.Contains(t, s, "Steps\t\t1 [0]\n")

	assert.Error(t, Info(filepath.Join(dir, "absent.msh"), &out, zerolog.Nop()))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := newLogger("warn", false, &buf)
	require.NoError(t, err)
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	_, err = newLogger("loud", false, &buf)
	assert.Error(t, err)
}
