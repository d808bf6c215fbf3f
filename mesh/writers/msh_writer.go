package writers

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/notargets/meshrw/mesh"
)

// MSHWriter writes Gmsh MSH 2.2 ASCII files
type MSHWriter struct {
	*fileWriter
	version   string
	precision int
	codes     []int // element code per element group
}

// NewMSHWriter validates filename and m and prepares the writer. Nothing is
// written until WriteContents (or WriteHeader) is called.
func NewMSHWriter(filename string, m *mesh.Mesh, opts ...Option) (*MSHWriter, error) {
	o := SetOptions(opts...)
	if _, _, _, err := SplitFilename(filename, MSHExtensions); err != nil {
		return nil, err
	}
	version := strings.TrimSpace(o.MSHVersion)
	if version == "" {
		version = DefaultMSHVersion
	}
	fields := strings.Fields(version)
	if len(fields) != 3 || !strings.HasPrefix(fields[0], "2.") {
		return nil, fmt.Errorf("%w: msh version %q, only 2.x is written", mesh.ErrNotImplemented, version)
	}
	if fields[1] != "0" {
		return nil, fmt.Errorf("%w: binary msh files", mesh.ErrNotImplemented)
	}
	fw, err := newFileWriter("msh", filename, m, o)
	if err != nil {
		return nil, err
	}
	w := &MSHWriter{
		fileWriter: fw,
		version:    version,
		precision:  o.Precision,
	}
	if w.precision <= 0 {
		w.precision = DefaultMSHPrecision
	}
	for ig := range m.ElementGroups {
		code, err := mesh.TypeCodeFor(m.ElementGroups[ig].Type, mesh.FormatMSH)
		if err != nil {
			return nil, err
		}
		w.codes = append(w.codes, code)
	}
	return w, nil
}

func (w *MSHWriter) real(v float64) string {
	return strconv.FormatFloat(v, 'f', w.precision, 64)
}

// Open opens the output stream
func (w *MSHWriter) Open() error {
	return w.open(w.filename)
}

// WriteHeader writes $MeshFormat and, when requested, $PhysicalNames
func (w *MSHWriter) WriteHeader() error {
	if err := w.advance(stageUnopened, stageHeaderWritten); err != nil {
		return err
	}
	if w.appending() {
		return nil
	}
	w.logger.Debug().Msg("write header")
	w.println("$MeshFormat")
	w.println(w.version)
	w.println("$EndMeshFormat")
	if w.opts.PhysicalNames {
		w.writePhysicalNames()
	}
	return w.err
}

func (w *MSHWriter) writePhysicalNames() {
	s := w.summary
	dims := make(map[int]int)
	var ie int
	for ig := range w.m.ElementGroups {
		g := &w.m.ElementGroups[ig]
		for range g.Connectivity {
			p := s.ElementPhysGroups[ie]
			if p == mesh.NoPhysGroup {
				p = s.GlobalPhysGroup
			}
			if d, ok := dims[p]; !ok || g.Type.GetDimension() > d {
				dims[p] = g.Type.GetDimension()
			}
			ie++
		}
	}
	ids := make([]int, 0, len(dims))
	for p := range dims {
		ids = append(ids, p)
	}
	sort.Ints(ids)
	w.println("$PhysicalNames")
	w.printf("%d\n", len(ids))
	for _, p := range ids {
		name, ok := s.GroupNames[p]
		if !ok {
			name = fmt.Sprintf("physgrp-%d", p)
		}
		w.printf("%d %d \"%s\"\n", dims[p], p, name)
	}
	w.println("$EndPhysicalNames")
}

// WriteNodes writes $Nodes, 2-D coordinates get z = 0
func (w *MSHWriter) WriteNodes() error {
	if err := w.advance(stageHeaderWritten, stageNodesWritten); err != nil {
		return err
	}
	if w.appending() {
		return nil
	}
	w.logger.Debug().Int("nodes", w.summary.NumNodes).Msg("write nodes")
	w.println("$Nodes")
	w.printf("%d\n", w.summary.NumNodes)
	var sb strings.Builder
	for i, node := range w.m.Nodes {
		sb.Reset()
		sb.WriteString(strconv.Itoa(i + 1))
		for _, x := range node {
			sb.WriteByte(' ')
			sb.WriteString(w.real(x))
		}
		for k := len(node); k < 3; k++ {
			sb.WriteByte(' ')
			sb.WriteString(w.real(0))
		}
		w.println(sb.String())
	}
	w.println("$EndNodes")
	return w.err
}

// WriteElements writes $Elements with two tags per element: physical group
// and entity
func (w *MSHWriter) WriteElements() error {
	if err := w.advance(stageNodesWritten, stageElementsWritten); err != nil {
		return err
	}
	if w.appending() {
		return nil
	}
	s := w.summary
	w.logger.Debug().Int("elements", s.NumElements).Msg("write elements")
	w.println("$Elements")
	w.printf("%d\n", s.NumElements)
	var ie int
	for ig := range w.m.ElementGroups {
		g := &w.m.ElementGroups[ig]
		for _, conn := range g.Connectivity {
			p := s.ElementPhysGroups[ie]
			if p == mesh.NoPhysGroup {
				p = s.GlobalPhysGroup
			}
			w.printf("%d %d 2 %d %d %s\n", ie+1, w.codes[ig], p, s.ElementEntities[ie], joinInts(conn, 0))
			ie++
		}
	}
	w.println("$EndElements")
	return w.err
}

// WriteFields writes one $NodeData/$ElementData section per field for the
// given step, or for every step of every field with AllSteps
func (w *MSHWriter) WriteFields(step int) error {
	if err := w.advance(stageElementsWritten, stageFieldsWritten); err != nil {
		return err
	}
	for i := range w.summary.Fields {
		f := &w.summary.Fields[i]
		if step == AllSteps {
			for s := 0; s < f.NumSteps(); s++ {
				w.writeFieldStep(f, s, f.Data[s], f.Steps[s])
			}
			continue
		}
		s := step
		switch {
		case s < 0:
			s = 0
		case s >= f.NumSteps():
			s = f.NumSteps() - 1
		}
		w.writeFieldStep(f, step, f.AtStep(step), f.Steps[s])
	}
	return w.err
}

func (w *MSHWriter) writeFieldStep(f *mesh.Field, step int, data mesh.Array, time float64) {
	section := "NodeData"
	if f.Kind == mesh.Elemental {
		section = "ElementData"
	}
	w.logger.Debug().Str("field", f.Name).Int("step", step).Msg("write " + section)
	w.printf("$%s\n", section)
	w.println("1")
	w.printf("\"%s\"\n", f.Name)
	w.println("1")
	w.println(strconv.FormatFloat(time, 'g', -1, 64))
	w.println("3")
	w.printf("%d\n%d\n%d\n", step, f.Dim, f.NumEntities())
	for r, id := range f.Entities {
		w.printf("%d %s\n", id, joinRow(data, r, w.real))
	}
	w.printf("$End%s\n", section)
}

// WriteContents writes the whole file and closes it
func (w *MSHWriter) WriteContents() (err error) {
	if err = w.Open(); err != nil {
		return err
	}
	defer func() { err = w.close(err) }()
	if w.skipped() {
		w.logger.Info().Str("file", w.h.Filename()).Msg("skip existing file")
		return nil
	}
	if err = w.WriteHeader(); err != nil {
		return err
	}
	if err = w.WriteNodes(); err != nil {
		return err
	}
	if err = w.WriteElements(); err != nil {
		return err
	}
	return w.WriteFields(AllSteps)
}
