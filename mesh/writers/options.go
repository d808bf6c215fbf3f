package writers

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/notargets/meshrw/mesh"
)

// VTKFlavor selects the VTK file layout
type VTKFlavor uint8

const (
	LegacyASCII VTKFlavor = iota
	LegacyBinary
	XML
)

func (f VTKFlavor) String() string {
	switch f {
	case LegacyASCII:
		return "legacy-ascii"
	case LegacyBinary:
		return "legacy-binary"
	case XML:
		return "xml"
	default:
		return "unknown"
	}
}

// ParseVTKFlavor accepts the names returned by VTKFlavor.String, "" meaning legacy-ascii
func ParseVTKFlavor(s string) (VTKFlavor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "legacy-ascii", "ascii", "v2":
		return LegacyASCII, nil
	case "legacy-binary", "binary":
		return LegacyBinary, nil
	case "xml":
		return XML, nil
	default:
		return LegacyASCII, fmt.Errorf("%w: unknown vtk flavor %q", mesh.ErrSchema, s)
	}
}

const (
	// DefaultMSHVersion is the MeshFormat line written to MSH files
	DefaultMSHVersion = "2.2 0 8"
	// DefaultMSHPrecision is the number of decimals of MSH reals
	DefaultMSHPrecision = 8
	// DefaultVTKPrecision is the precision of VTK reals (%9.4g coordinates, %9.4f values)
	DefaultVTKPrecision = 4
)

// Options shared by every writer
type Options struct {
	Title         string
	Append        bool
	SafeMode      bool
	Gzip          bool
	Bzip2         bool
	Precision     int // 0 selects the format default
	PhysicalNames bool
	MSHVersion    string
	Flavor        VTKFlavor
	Logger        zerolog.Logger
}

// Option mutates Options
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		MSHVersion: DefaultMSHVersion,
		Flavor:     LegacyASCII,
		Logger:     zerolog.Nop(),
	}
}

// WithTitle sets the VTK title line, a timestamp is used when empty
func WithTitle(title string) Option { return func(o *Options) { o.Title = title } }

// WithAppend appends field data to an existing file instead of rewriting it
func WithAppend(append bool) Option { return func(o *Options) { o.Append = append } }

// WithSafeMode skips targets that already exist
func WithSafeMode(safe bool) Option { return func(o *Options) { o.SafeMode = safe } }

// WithGzip compresses the output with gzip
func WithGzip(gz bool) Option { return func(o *Options) { o.Gzip = gz } }

// WithBzip2 compresses the output with bzip2
func WithBzip2(bz bool) Option { return func(o *Options) { o.Bzip2 = bz } }

// WithPrecision overrides the number of digits of written reals
func WithPrecision(p int) Option { return func(o *Options) { o.Precision = p } }

// WithPhysicalNames emits a $PhysicalNames section in MSH files
func WithPhysicalNames(on bool) Option { return func(o *Options) { o.PhysicalNames = on } }

// WithMSHVersion sets the MeshFormat line, only 2.x ASCII is supported
func WithMSHVersion(v string) Option { return func(o *Options) { o.MSHVersion = v } }

// WithVTKFlavor selects the VTK layout
func WithVTKFlavor(f VTKFlavor) Option { return func(o *Options) { o.Flavor = f } }

// WithLogger sets the logger of the writer and of its streams
func WithLogger(l zerolog.Logger) Option { return func(o *Options) { o.Logger = l } }

// SetOptions applies opts over the defaults
func SetOptions(opts ...Option) Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
