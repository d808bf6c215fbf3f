package InputParameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/meshrw/mesh"
	"github.com/notargets/meshrw/mesh/writers"
)

func TestParseJob(t *testing.T) {
	fileInput := []byte(`
Title: Test Case
MshVersion: 2.2 0 8
Precision: 6
SafeMode: true
Compress: gzip
PhysicalNames: true
VTKFlavor: ascii
Fields:
  - T
  - physgrp
`)
	var wp WriteParameters
	require.NoError(t, wp.Parse(fileInput))
	assert.Equal(t, "Test Case", wp.Title)
	assert.Equal(t, "2.2 0 8", wp.MshVersion)
	assert.Equal(t, 6, wp.Precision)
	assert.False(t, wp.Append)
	assert.True(t, wp.SafeMode)
	assert.Equal(t, []string{"T", "physgrp"}, wp.Fields)
	wp.Print()

	opts, err := wp.Options()
	require.NoError(t, err)
	o := writers.SetOptions(opts...)
	assert.Equal(t, "Test Case", o.Title)
	assert.Equal(t, 6, o.Precision)
	assert.True(t, o.SafeMode)
	assert.True(t, o.Gzip)
	assert.False(t, o.Bzip2)
	assert.True(t, o.PhysicalNames)
	assert.Equal(t, writers.LegacyASCII, o.Flavor)
	assert.Equal(t, "2.2 0 8", o.MSHVersion)
}

func TestOptionsDefaults(t *testing.T) {
	var wp WriteParameters
	opts, err := wp.Options()
	require.NoError(t, err)
	o := writers.SetOptions(opts...)
	assert.Equal(t, writers.DefaultMSHVersion, o.MSHVersion)
	assert.Zero(t, o.Precision)
	assert.False(t, o.Gzip)

	wp.Compress = "BZ2"
	opts, err = wp.Options()
	require.NoError(t, err)
	assert.True(t, writers.SetOptions(opts...).Bzip2)

	wp.Compress = "zstd"
	_, err = wp.Options()
	assert.ErrorIs(t, err, mesh.ErrSchema)

	wp.Compress = ""
	wp.VTKFlavor = "hdf5"
	_, err = wp.Options()
	assert.ErrorIs(t, err, mesh.ErrSchema)
}

func TestSelectFields(t *testing.T) {
	m := mesh.NewMesh([][]float64{{0, 0}, {1, 0}})
	m.AddField(mesh.FieldSpec{Kind: mesh.Nodal, Name: "a", Values: mesh.FloatColumn([]float64{1, 2})})
	m.AddField(mesh.FieldSpec{Kind: mesh.Nodal, Name: "b", Values: mesh.FloatColumn([]float64{3, 4})})

	wp := WriteParameters{}
	require.NoError(t, wp.SelectFields(m))
	assert.Len(t, m.Fields, 2)

	wp.Fields = []string{"b"}
	require.NoError(t, wp.SelectFields(m))
	require.Len(t, m.Fields, 1)
	assert.Equal(t, "b", m.Fields[0].Name)

	wp.Fields = []string{"c"}
	assert.ErrorIs(t, wp.SelectFields(m), mesh.ErrSchema)
}
