package readers

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/meshrw/fileio"
	"github.com/notargets/meshrw/mesh"
	"github.com/notargets/meshrw/utils"
)

// ReadGmsh22 reads a Gmsh MSH 2.2 ASCII file, compressed or not
func ReadGmsh22(filename string) (*mesh.Mesh, error) {
	rc, err := fileio.OpenReader(filename)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ReadGmsh22From(rc)
}

// groupKey identifies an element group of the file: elements sharing a type
// and an elementary entity
type groupKey struct {
	etype  utils.ElementType
	entity int
}

type gmshElement struct {
	group int // index in reader22.groups
	local int // index in the group
	phys  int // first tag, 0 when absent
}

type gmshStep struct {
	step     int
	time     float64
	entities []int // 1-based mesh indices
	data     mesh.Array
}

type gmshField struct {
	name  string
	kind  mesh.Association
	dim   int
	steps []gmshStep
}

type reader22 struct {
	lr *lineReader

	physNames map[int]string

	nodes     [][]float64
	nodeIndex map[int]int // file node id to 1-based index

	groups    []mesh.ElementGroup
	groupKeys map[groupKey]int
	elements  []gmshElement
	elemIndex map[int]int // file element id to 1-based ordinal

	fields     []*gmshField
	fieldIndex map[string]int
}

// ReadGmsh22From parses an MSH 2.2 ASCII stream. Sections must appear in the
// order $MeshFormat, [$PhysicalNames], $Nodes, $Elements, then any number of
// $NodeData and $ElementData. The physgrp field written by the MSH writer is
// consumed to restore physical groups.
func ReadGmsh22From(r io.Reader) (*mesh.Mesh, error) {
	rd := &reader22{
		lr:         newLineReader(r),
		physNames:  make(map[int]string),
		nodeIndex:  make(map[int]int),
		groupKeys:  make(map[groupKey]int),
		elemIndex:  make(map[int]int),
		fieldIndex: make(map[string]int),
	}
	lr := rd.lr

	if err := rd.readMeshFormat(); err != nil {
		return nil, err
	}
	if !lr.next() {
		return nil, lr.fail("$PhysicalNames or $Nodes")
	}
	if lr.text == "$PhysicalNames" {
		if err := rd.readPhysicalNames(); err != nil {
			return nil, err
		}
	} else {
		lr.unread()
	}
	if err := lr.expect("$Nodes"); err != nil {
		return nil, err
	}
	if err := rd.readNodes(); err != nil {
		return nil, err
	}
	if err := lr.expect("$Elements"); err != nil {
		return nil, err
	}
	if err := rd.readElements(); err != nil {
		return nil, err
	}
	for lr.next() {
		switch lr.text {
		case "$NodeData":
			if err := rd.readData(mesh.Nodal, "$EndNodeData"); err != nil {
				return nil, err
			}
		case "$ElementData":
			if err := rd.readData(mesh.Elemental, "$EndElementData"); err != nil {
				return nil, err
			}
		default:
			return nil, lr.errorf("$NodeData or $ElementData", nil)
		}
	}
	if err := lr.sc.Err(); err != nil {
		return nil, lr.errorf("end of file", err)
	}
	return rd.build()
}

func (rd *reader22) readMeshFormat() error {
	lr := rd.lr
	if err := lr.expect("$MeshFormat"); err != nil {
		return err
	}
	if !lr.next() {
		return lr.fail("version line")
	}
	parts := strings.Fields(lr.text)
	if len(parts) != 3 {
		return lr.errorf("version line \"2.2 0 8\"", nil)
	}
	if !strings.HasPrefix(parts[0], "2.") {
		return lr.errorf("version 2.x", mesh.ErrNotImplemented)
	}
	if parts[1] != "0" {
		return lr.errorf("ASCII file type 0", mesh.ErrNotImplemented)
	}
	return lr.expect("$EndMeshFormat")
}

func (rd *reader22) readPhysicalNames() error {
	lr := rd.lr
	n, err := lr.count("physical name count")
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if !lr.next() {
			return lr.fail("physical name line")
		}
		parts := strings.Fields(lr.text)
		if len(parts) < 3 {
			return lr.errorf("dim tag \"name\"", nil)
		}
		tag, err := strconv.Atoi(parts[1])
		if err != nil {
			return lr.errorf("integer physical tag", err)
		}
		rd.physNames[tag] = strings.Trim(strings.Join(parts[2:], " "), "\"")
	}
	return lr.expect("$EndPhysicalNames")
}

func (rd *reader22) readNodes() error {
	lr := rd.lr
	n, err := lr.count("node count")
	if err != nil {
		return err
	}
	rd.nodes = make([][]float64, 0, n)
	for i := 0; i < n; i++ {
		if !lr.next() {
			return lr.fail("node line")
		}
		parts := strings.Fields(lr.text)
		if len(parts) != 4 {
			return lr.errorf("node line \"id x y z\"", nil)
		}
		id, err := strconv.Atoi(parts[0])
		if err != nil {
			return lr.errorf("integer node id", err)
		}
		if _, dup := rd.nodeIndex[id]; dup {
			return lr.errorf("unique node id", nil)
		}
		xyz := make([]float64, 3)
		for j := range xyz {
			if xyz[j], err = strconv.ParseFloat(parts[j+1], 64); err != nil {
				return lr.errorf("real coordinate", err)
			}
		}
		rd.nodes = append(rd.nodes, xyz)
		rd.nodeIndex[id] = len(rd.nodes)
	}
	return lr.expect("$EndNodes")
}

func (rd *reader22) readElements() error {
	lr := rd.lr
	n, err := lr.count("element count")
	if err != nil {
		return err
	}
	ids := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if !lr.next() {
			return lr.fail("element line")
		}
		vals, err := ints(strings.Fields(lr.text))
		if err != nil || len(vals) < 3 {
			return lr.errorf("element line \"id type ntags tags... nodes...\"", err)
		}
		id, code, ntags := vals[0], vals[1], vals[2]
		et, err := mesh.TagFromCode(code, mesh.FormatMSH)
		if err != nil {
			return lr.errorf("msh element type", err)
		}
		if ntags < 0 || len(vals) != 3+ntags+et.GetNumNodes() {
			return lr.errorf(fmt.Sprintf("%d tags and %d nodes for %s", ntags, et.GetNumNodes(), et), nil)
		}
		if _, dup := rd.elemIndex[id]; dup {
			return lr.errorf("unique element id", nil)
		}
		tags := vals[3 : 3+ntags]
		var phys, entity int
		if ntags > 0 {
			phys = tags[0]
		}
		if ntags > 1 {
			entity = tags[1]
		}
		conn := make([]int, et.GetNumNodes())
		for j, nid := range vals[3+ntags:] {
			idx, ok := rd.nodeIndex[nid]
			if !ok {
				return lr.errorf("declared node id", fmt.Errorf("node %d not found", nid))
			}
			conn[j] = idx
		}
		key := groupKey{etype: et, entity: entity}
		ig, ok := rd.groupKeys[key]
		if !ok {
			ig = len(rd.groups)
			rd.groupKeys[key] = ig
			rd.groups = append(rd.groups, mesh.ElementGroup{Type: et})
		}
		g := &rd.groups[ig]
		rd.elements = append(rd.elements, gmshElement{group: ig, local: len(g.Connectivity), phys: phys})
		g.Connectivity = append(g.Connectivity, conn)
		ids = append(ids, id)
		rd.elemIndex[id] = 0
	}
	if err := lr.expect("$EndElements"); err != nil {
		return err
	}
	// elements are renumbered group after group
	offsets := rd.groupOffsets()
	for i, e := range rd.elements {
		rd.elemIndex[ids[i]] = offsets[e.group] + e.local + 1
	}
	return nil
}

// readData reads one field section for one step
func (rd *reader22) readData(kind mesh.Association, end string) error {
	lr := rd.lr
	nstr, err := lr.count("string tag count")
	if err != nil {
		return err
	}
	var name string
	for i := 0; i < nstr; i++ {
		if !lr.next() {
			return lr.fail("string tag")
		}
		if i == 0 {
			name = strings.Trim(lr.text, "\"")
		}
	}
	nreal, err := lr.count("real tag count")
	if err != nil {
		return err
	}
	var time float64
	for i := 0; i < nreal; i++ {
		if !lr.next() {
			return lr.fail("real tag")
		}
		v, err := strconv.ParseFloat(lr.text, 64)
		if err != nil {
			return lr.errorf("real tag", err)
		}
		if i == 0 {
			time = v
		}
	}
	nint, err := lr.count("integer tag count")
	if err != nil {
		return err
	}
	if nint < 3 {
		return lr.errorf("at least 3 integer tags", nil)
	}
	itags := make([]int, nint)
	for i := range itags {
		if !lr.next() {
			return lr.fail("integer tag")
		}
		if itags[i], err = strconv.Atoi(lr.text); err != nil {
			return lr.errorf("integer tag", err)
		}
	}
	step, dim, n := itags[0], itags[1], itags[2]
	if dim < 1 || n < 0 {
		return lr.errorf("positive component and entity counts", nil)
	}

	index, count := rd.nodeIndex, len(rd.nodes)
	if kind == mesh.Elemental {
		index, count = rd.elemIndex, len(rd.elements)
	}
	if n > count {
		return lr.errorf(fmt.Sprintf("at most %d %s entities", count, kind), nil)
	}
	entities := make([]int, n)
	tokens := make([][]string, n)
	isInt := true
	for i := 0; i < n; i++ {
		if !lr.next() {
			return lr.fail("data line")
		}
		parts := strings.Fields(lr.text)
		if len(parts) != dim+1 {
			return lr.errorf(fmt.Sprintf("data line with id and %d values", dim), nil)
		}
		id, err := strconv.Atoi(parts[0])
		if err != nil {
			return lr.errorf("integer entity id", err)
		}
		idx, ok := index[id]
		if !ok {
			return lr.errorf(fmt.Sprintf("declared %s id", kind), fmt.Errorf("entity %d not found", id))
		}
		entities[i] = idx
		tokens[i] = parts[1:]
		for _, tok := range tokens[i] {
			if strings.ContainsAny(tok, ".eEnN") {
				isInt = false
			}
		}
	}
	data, err := parseRows(tokens, dim, isInt)
	if err != nil {
		return lr.errorf("numeric values", err)
	}
	if err := lr.expect(end); err != nil {
		return err
	}

	if name == "" {
		name = fmt.Sprintf("%s_%d", kind, len(rd.fields))
	}
	fi, ok := rd.fieldIndex[name]
	if !ok {
		fi = len(rd.fields)
		rd.fieldIndex[name] = fi
		rd.fields = append(rd.fields, &gmshField{name: name, kind: kind, dim: dim})
	}
	f := rd.fields[fi]
	if f.kind != kind || f.dim != dim {
		return lr.errorf(fmt.Sprintf("%s field %q with %d components", f.kind, name, f.dim), nil)
	}
	entities, data = sortRows(entities, data)
	if len(f.steps) > 0 && !equalInts(f.steps[0].entities, entities) {
		return lr.errorf(fmt.Sprintf("same entities on every step of %q", name), nil)
	}
	f.steps = append(f.steps, gmshStep{step: step, time: time, entities: entities, data: data})
	return nil
}

func parseRows(tokens [][]string, dim int, isInt bool) (mesh.Array, error) {
	if isInt {
		vals := make([]int, 0, len(tokens)*dim)
		for _, row := range tokens {
			iv, err := ints(row)
			if err != nil {
				return nil, err
			}
			vals = append(vals, iv...)
		}
		return mesh.NewIntArray(len(tokens), dim, vals), nil
	}
	vals := make([]float64, 0, len(tokens)*dim)
	for _, row := range tokens {
		for _, tok := range row {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, err
			}
			vals = append(vals, v)
		}
	}
	return mesh.NewFloatArray(len(tokens), dim, vals), nil
}

// sortRows orders rows by entity index
func sortRows(entities []int, data mesh.Array) ([]int, mesh.Array) {
	if sort.IntsAreSorted(entities) {
		return entities, data
	}
	perm := make([]int, len(entities))
	for i := range perm {
		perm[i] = i
	}
	sort.Slice(perm, func(a, b int) bool { return entities[perm[a]] < entities[perm[b]] })
	rows, cols := data.Dims()
	sorted := make([]int, rows)
	for i, p := range perm {
		sorted[i] = entities[p]
	}
	if ia, ok := data.(*mesh.IntArray); ok {
		vals := make([]int, 0, rows*cols)
		for _, p := range perm {
			for j := 0; j < cols; j++ {
				vals = append(vals, ia.IntAt(p, j))
			}
		}
		return sorted, mesh.NewIntArray(rows, cols, vals)
	}
	vals := make([]float64, 0, rows*cols)
	for _, p := range perm {
		vals = append(vals, mesh.Row(data, p)...)
	}
	return sorted, mesh.NewFloatArray(rows, cols, vals)
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isDense(entities []int, count int) bool {
	if len(entities) != count {
		return false
	}
	for i, e := range entities {
		if e != i+1 {
			return false
		}
	}
	return true
}

// build assembles the mesh once every section has been read
func (rd *reader22) build() (*mesh.Mesh, error) {
	m := mesh.NewMesh(rd.nodes)
	if rd.planar() {
		for i, xyz := range m.Nodes {
			m.Nodes[i] = xyz[:2]
		}
	}

	// per element physical group, in file element order
	phys := make([]int, len(rd.elements))
	for i, e := range rd.elements {
		phys[i] = e.phys
		if phys[i] == 0 {
			phys[i] = mesh.NoPhysGroup
		}
	}
	if fi, ok := rd.fieldIndex[mesh.PhysGroupFieldName]; ok && rd.fields[fi].kind == mesh.Elemental {
		st := rd.fields[fi].steps[0]
		for i := range phys {
			phys[i] = mesh.NoPhysGroup
		}
		// entities are mesh ordinals, map them back to file order
		ordinalToFile := make([]int, len(rd.elements))
		offsets := rd.groupOffsets()
		for i, e := range rd.elements {
			ordinalToFile[offsets[e.group]+e.local] = i
		}
		for r, ord := range st.entities {
			phys[ordinalToFile[ord-1]] = int(st.data.At(r, 0))
		}
		rd.fields = append(rd.fields[:fi], rd.fields[fi+1:]...)
	}
	perGroup := make([][]int, len(rd.groups))
	for i, e := range rd.elements {
		perGroup[e.group] = append(perGroup[e.group], phys[i])
	}
	for ig := range rd.groups {
		g := &rd.groups[ig]
		g.PhysGroups = compactPhysGroups(perGroup[ig])
		if len(g.PhysGroups) == 1 {
			g.Name = rd.physNames[g.PhysGroups[0]]
		}
		m.AddElementGroup(*g)
	}

	for _, f := range rd.fields {
		sort.SliceStable(f.steps, func(a, b int) bool { return f.steps[a].step < f.steps[b].step })
		spec := mesh.FieldSpec{Kind: f.kind, Name: f.name, Dim: f.dim}
		count := len(rd.nodes)
		if f.kind == mesh.Elemental {
			count = len(rd.elements)
		}
		if !isDense(f.steps[0].entities, count) {
			spec.Entities = f.steps[0].entities
		}
		if len(f.steps) == 1 {
			spec.Values = f.steps[0].data
			if t := f.steps[0].time; t != 0 {
				spec.Steps = []float64{t}
			}
		} else {
			for _, st := range f.steps {
				spec.StepValues = append(spec.StepValues, st.data)
				spec.Steps = append(spec.Steps, st.time)
			}
			spec.NbSteps = len(f.steps)
		}
		m.AddField(spec)
	}
	return m, nil
}

func (rd *reader22) groupOffsets() []int {
	offsets := make([]int, len(rd.groups))
	var total int
	for ig := range rd.groups {
		offsets[ig] = total
		total += rd.groups[ig].NumElements()
	}
	return offsets
}

// planar reports whether every z coordinate is zero and no element is a
// volume, in which case the mesh is read as 2-D
func (rd *reader22) planar() bool {
	if len(rd.nodes) == 0 {
		return false
	}
	for ig := range rd.groups {
		if rd.groups[ig].Type.GetDimension() == 3 {
			return false
		}
	}
	z := make([]float64, len(rd.nodes))
	for i, xyz := range rd.nodes {
		z[i] = xyz[2]
	}
	return floats.Norm(z, math.Inf(1)) == 0
}

// compactPhysGroups reduces per element ids to nothing, one shared id, or the
// full list
func compactPhysGroups(ids []int) []int {
	if len(ids) == 0 {
		return nil
	}
	same := true
	for _, p := range ids {
		if p != ids[0] {
			same = false
			break
		}
	}
	switch {
	case same && ids[0] == mesh.NoPhysGroup:
		return nil
	case same:
		return []int{ids[0]}
	default:
		return ids
	}
}
