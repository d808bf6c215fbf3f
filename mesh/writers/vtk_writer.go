package writers

import (
	"fmt"
	"strings"
	"time"

	"github.com/notargets/meshrw/mesh"
)

// VTKWriter writes legacy ASCII VTK unstructured grids, one file per step
type VTKWriter struct {
	*fileWriter
	title     string
	precision int
	codes     []int // cell type per element group
	step      int   // step of the open stream
}

// NewVTKWriter validates filename and m and prepares the writer. Only the
// legacy ASCII flavor is written.
func NewVTKWriter(filename string, m *mesh.Mesh, opts ...Option) (*VTKWriter, error) {
	o := SetOptions(opts...)
	if _, _, _, err := SplitFilename(filename, VTKExtensions); err != nil {
		return nil, err
	}
	switch o.Flavor {
	case LegacyASCII:
	case LegacyBinary, XML:
		return nil, fmt.Errorf("%w: %s vtk files", mesh.ErrNotImplemented, o.Flavor)
	default:
		return nil, fmt.Errorf("%w: vtk flavor %d", mesh.ErrSchema, o.Flavor)
	}
	fw, err := newFileWriter("vtk", filename, m, o)
	if err != nil {
		return nil, err
	}
	w := &VTKWriter{
		fileWriter: fw,
		title:      o.Title,
		precision:  o.Precision,
	}
	if w.title == "" {
		w.title = "File generated on " + time.Now().Format("2006-01-02 15:04:05")
	}
	if w.precision <= 0 {
		w.precision = DefaultVTKPrecision
	}
	for ig := range m.ElementGroups {
		code, err := mesh.TypeCodeFor(m.ElementGroups[ig].Type, mesh.FormatVTK)
		if err != nil {
			return nil, err
		}
		w.codes = append(w.codes, code)
	}
	s := w.summary
	for i := range s.Fields {
		f := &s.Fields[i]
		count := s.NumNodes
		if f.Kind == mesh.Elemental {
			count = s.NumElements
		}
		if f.NumEntities() != count {
			return nil, fmt.Errorf("%w: field %q: vtk data must cover all %d %s entities, got %d",
				mesh.ErrSchema, f.Name, count, f.Kind, f.NumEntities())
		}
	}
	return w, nil
}

// Filenames returns the file written for every step
func (w *VTKWriter) Filenames() ([]string, error) {
	n := w.summary.NumSteps
	if n <= 1 {
		return []string{w.filename}, nil
	}
	names := make([]string, n)
	for s := range names {
		name, err := StepFilename(w.filename, VTKExtensions, s, n)
		if err != nil {
			return nil, err
		}
		names[s] = name
	}
	return names, nil
}

// Open opens the stream of one step
func (w *VTKWriter) Open(step int) error {
	n := w.summary.NumSteps
	if step < 0 || step >= n {
		return fmt.Errorf("%w: step %d outside 0..%d", mesh.ErrSchema, step, n-1)
	}
	filename := w.filename
	if n > 1 {
		var err error
		if filename, err = StepFilename(w.filename, VTKExtensions, step, n); err != nil {
			return err
		}
	}
	if err := w.open(filename); err != nil {
		return err
	}
	w.step = step
	return nil
}

func (w *VTKWriter) coord(v float64) string {
	return fmt.Sprintf("%9.*g", w.precision, v)
}

func (w *VTKWriter) value(v float64) string {
	return fmt.Sprintf("%9.*f", w.precision, v)
}

// WriteHeader writes the version, title, ASCII and dataset lines
func (w *VTKWriter) WriteHeader() error {
	if err := w.advance(stageUnopened, stageHeaderWritten); err != nil {
		return err
	}
	if w.appending() {
		return nil
	}
	title := w.title
	if w.summary.NumSteps > 1 {
		title += fmt.Sprintf(" step num %d", w.step)
	}
	w.println("# vtk DataFile Version 2.0")
	w.println(title)
	w.println("ASCII")
	w.println("DATASET UNSTRUCTURED_GRID")
	return w.err
}

// WriteNodes writes POINTS with the dimension of the node set
func (w *VTKWriter) WriteNodes() error {
	if err := w.advance(stageHeaderWritten, stageNodesWritten); err != nil {
		return err
	}
	if w.appending() {
		return nil
	}
	w.logger.Debug().Int("nodes", w.summary.NumNodes).Msg("write points")
	w.printf("\nPOINTS %d double\n", w.summary.NumNodes)
	row := make([]string, 0, 3)
	for _, node := range w.m.Nodes {
		row = row[:0]
		for _, x := range node {
			row = append(row, w.coord(x))
		}
		w.println(strings.Join(row, " "))
	}
	return w.err
}

// WriteElements writes CELLS and CELL_TYPES, node indices 0-based
func (w *VTKWriter) WriteElements() error {
	if err := w.advance(stageNodesWritten, stageElementsWritten); err != nil {
		return err
	}
	if w.appending() {
		return nil
	}
	s := w.summary
	total := s.NumElements
	for ig := range w.m.ElementGroups {
		for _, conn := range w.m.ElementGroups[ig].Connectivity {
			total += len(conn)
		}
	}
	w.logger.Debug().Int("cells", s.NumElements).Int("size", total).Msg("write cells")
	w.printf("\nCELLS %d %d\n", s.NumElements, total)
	for ig := range w.m.ElementGroups {
		for _, conn := range w.m.ElementGroups[ig].Connectivity {
			w.printf("%d %s\n", len(conn), joinInts(conn, -1))
		}
	}
	w.printf("\nCELL_TYPES %d\n", s.NumElements)
	for ig := range w.m.ElementGroups {
		for range w.m.ElementGroups[ig].Connectivity {
			w.printf("%d\n", w.codes[ig])
		}
	}
	return w.err
}

// WriteFields writes CELL_DATA then POINT_DATA for one step. AllSteps
// selects the step of the open stream.
func (w *VTKWriter) WriteFields(step int) error {
	if err := w.advance(stageElementsWritten, stageFieldsWritten); err != nil {
		return err
	}
	if step == AllSteps {
		step = w.step
	}
	s := w.summary
	w.writeData("CELL_DATA", "cellField", s.NumElements, s.FieldsOf(mesh.Elemental), step)
	w.writeData("POINT_DATA", "pointField", s.NumNodes, s.FieldsOf(mesh.Nodal), step)
	return w.err
}

// writeData writes the SCALARS of single component fields, then one FIELD
// block with the others
func (w *VTKWriter) writeData(section, label string, count int, fields []*mesh.Field, step int) {
	if len(fields) == 0 {
		return
	}
	var scalars, vectors []*mesh.Field
	for _, f := range fields {
		if f.Dim == 1 {
			scalars = append(scalars, f)
		} else {
			vectors = append(vectors, f)
		}
	}
	w.logger.Debug().Str("section", section).Int("scalars", len(scalars)).
		Int("vectors", len(vectors)).Int("step", step).Msg("write data")
	w.printf("\n%s %d\n", section, count)
	for _, f := range scalars {
		w.printf("SCALARS %s %s 1\n", f.Name, f.DataKind())
		w.println("LOOKUP_TABLE default")
		w.writeRows(f, f.AtStep(step))
	}
	if len(vectors) == 0 {
		return
	}
	w.printf("FIELD %s %d\n", label, len(vectors))
	for _, f := range vectors {
		data := f.AtStep(step)
		rows, _ := data.Dims()
		w.printf("%s %d %d %s\n", f.Name, f.Dim, rows, f.DataKind())
		w.writeRows(f, data)
	}
}

// writeRows writes data in entity order, rows are stored in the order of
// f.Entities
func (w *VTKWriter) writeRows(f *mesh.Field, data mesh.Array) {
	rows, _ := data.Dims()
	order := make([]int, rows)
	for r, id := range f.Entities {
		order[id-1] = r
	}
	for _, r := range order {
		w.println(joinRow(data, r, w.value))
	}
}

// WriteContents writes every step file
func (w *VTKWriter) WriteContents() error {
	for s := 0; s < w.summary.NumSteps; s++ {
		if err := w.writeStep(s); err != nil {
			return err
		}
	}
	return nil
}

func (w *VTKWriter) writeStep(step int) (err error) {
	if err = w.Open(step); err != nil {
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
	return w.WriteFields(step)
}
