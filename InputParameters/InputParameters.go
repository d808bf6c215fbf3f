package InputParameters

import (
	"fmt"
	"strings"

	"github.com/ghodss/yaml"

	"github.com/notargets/meshrw/mesh"
	"github.com/notargets/meshrw/mesh/writers"
)

// Parameters obtained from the YAML job file
type WriteParameters struct {
	Title         string   `json:"Title"`
	MshVersion    string   `json:"MshVersion"`
	Precision     int      `json:"Precision"`
	Append        bool     `json:"Append"`
	SafeMode      bool     `json:"SafeMode"`
	Compress      string   `json:"Compress"` // "", gzip or bzip2
	PhysicalNames bool     `json:"PhysicalNames"`
	VTKFlavor     string   `json:"VTKFlavor"`
	Fields        []string `json:"Fields"` // fields to write, all when empty
}

func (wp *WriteParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, wp)
}

func (wp *WriteParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", wp.Title)
	fmt.Printf("[%s]\t\t= MSH Version\n", wp.MshVersion)
	fmt.Printf("[%d]\t\t\t= Precision\n", wp.Precision)
	fmt.Printf("[%v]\t\t\t= Append\n", wp.Append)
	fmt.Printf("[%v]\t\t\t= Safe Mode\n", wp.SafeMode)
	fmt.Printf("[%s]\t\t\t= Compress\n", wp.Compress)
	fmt.Printf("[%v]\t\t\t= Physical Names\n", wp.PhysicalNames)
	fmt.Printf("[%s]\t\t\t= VTK Flavor\n", wp.VTKFlavor)
	if len(wp.Fields) > 0 {
		fmt.Printf("[%s]\t= Fields\n", strings.Join(wp.Fields, ", "))
	}
}

// Options translates the parameters into writer options
func (wp *WriteParameters) Options() (opts []writers.Option, err error) {
	flavor, err := writers.ParseVTKFlavor(wp.VTKFlavor)
	if err != nil {
		return nil, err
	}
	opts = append(opts,
		writers.WithTitle(wp.Title),
		writers.WithPrecision(wp.Precision),
		writers.WithAppend(wp.Append),
		writers.WithSafeMode(wp.SafeMode),
		writers.WithPhysicalNames(wp.PhysicalNames),
		writers.WithVTKFlavor(flavor),
	)
	if wp.MshVersion != "" {
		opts = append(opts, writers.WithMSHVersion(wp.MshVersion))
	}
	switch strings.ToLower(wp.Compress) {
	case "", "none":
	case "gzip", "gz":
		opts = append(opts, writers.WithGzip(true))
	case "bzip2", "bz2":
		opts = append(opts, writers.WithBzip2(true))
	default:
		return nil, fmt.Errorf("%w: unknown compression %q", mesh.ErrSchema, wp.Compress)
	}
	return opts, nil
}

// SelectFields keeps the fields of m listed in Fields
func (wp *WriteParameters) SelectFields(m *mesh.Mesh) error {
	if len(wp.Fields) == 0 {
		return nil
	}
	byName := make(map[string]mesh.FieldSpec, len(m.Fields))
	for _, f := range m.Fields {
		byName[f.Name] = f
	}
	selected := make([]mesh.FieldSpec, 0, len(wp.Fields))
	for _, name := range wp.Fields {
		f, ok := byName[name]
		if !ok {
			return fmt.Errorf("%w: field %q not found", mesh.ErrSchema, name)
		}
		selected = append(selected, f)
	}
	m.Fields = selected
	return nil
}
