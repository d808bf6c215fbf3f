package mesh

import (
	"fmt"
	"strings"
)

// Association tells whether field values are indexed by node or by element
type Association uint8

const (
	NoAssociation Association = iota
	Nodal
	Elemental
)

func (a Association) String() string {
	switch a {
	case Nodal:
		return "nodal"
	case Elemental:
		return "elemental"
	default:
		return "none"
	}
}

// ParseAssociation accepts "nodal" and "elemental"
func ParseAssociation(s string) (Association, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nodal":
		return Nodal, nil
	case "elemental":
		return Elemental, nil
	default:
		return NoAssociation, fmt.Errorf("%w: field type must be nodal or elemental, got %q", ErrSchema, s)
	}
}

// FieldSpec is the caller side description of a field. Only Kind and one of
// Values/StepValues are required; defaults are applied by FieldNormalizer.
type FieldSpec struct {
	Kind       Association
	Values     Array   // single step payload
	StepValues []Array // one payload per step
	Dim        int     // number of components, inferred when 0
	Name       string
	Steps      []float64 // step (time) values
	NbSteps    int
	Entities   []int // 1-based entity ids, dense 1..N when empty
}

// DeclaresSteps reports whether the spec places the field on the step axis
func (s *FieldSpec) DeclaresSteps() bool {
	return s.NbSteps > 0 || s.Steps != nil
}

// Field is the canonical form of a FieldSpec
type Field struct {
	Name     string
	Kind     Association
	Dim      int
	Steps    []float64 // one value per step
	Data     []Array   // one payload per step
	Entities []int     // 1-based entity ids, one per row
	Temporal bool      // declared on the step axis
}

// NumSteps returns the number of payload steps
func (f *Field) NumSteps() int {
	return len(f.Data)
}

// NumEntities returns the row count of every step payload
func (f *Field) NumEntities() int {
	return len(f.Entities)
}

// AtStep returns the payload written for global step s. Fields with a single
// step are repeated on every step.
func (f *Field) AtStep(s int) Array {
	if len(f.Data) == 1 || s < 0 {
		return f.Data[0]
	}
	if s >= len(f.Data) {
		return f.Data[len(f.Data)-1]
	}
	return f.Data[s]
}

// DataKind returns the scalar type of the payload
func (f *Field) DataKind() DataKind {
	if len(f.Data) == 0 {
		return Float64
	}
	return f.Data[0].Kind()
}

// FieldNormalizer turns FieldSpecs into Fields. The name ordinal is owned by
// the instance.
type FieldNormalizer struct {
	numNodes, numElements int
	ordinal               int
}

// NewFieldNormalizer creates a normalizer over the current entity counts
func NewFieldNormalizer(numNodes, numElements int) *FieldNormalizer {
	return &FieldNormalizer{numNodes: numNodes, numElements: numElements}
}

// Normalize validates spec and applies every default
func (fn *FieldNormalizer) Normalize(spec FieldSpec) (f Field, err error) {
	var count int
	switch spec.Kind {
	case Nodal:
		count = fn.numNodes
	case Elemental:
		count = fn.numElements
	default:
		return f, fmt.Errorf("%w: field %q: type must be nodal or elemental", ErrSchema, spec.Name)
	}
	f.Kind = spec.Kind
	f.Name = spec.Name
	if f.Name == "" {
		f.Name = fmt.Sprintf("%s_%d", spec.Kind, fn.ordinal)
		fn.ordinal++
	}
	f.Temporal = spec.DeclaresSteps()

	switch {
	case spec.Values != nil && len(spec.StepValues) > 0:
		return f, fmt.Errorf("%w: field %q: both single and per-step data supplied", ErrSchema, f.Name)
	case spec.Values != nil:
		f.Data = []Array{spec.Values}
	case len(spec.StepValues) > 0:
		f.Data = spec.StepValues
	default:
		return f, fmt.Errorf("%w: field %q: no data", ErrSchema, f.Name)
	}

	nbSteps := spec.NbSteps
	if nbSteps == 0 {
		nbSteps = len(spec.Steps)
	}
	if nbSteps == 0 {
		nbSteps = len(f.Data)
	}
	if len(f.Data) != nbSteps {
		return f, fmt.Errorf("%w: field %q: %d step payloads for %d steps", ErrSchema, f.Name, len(f.Data), nbSteps)
	}
	switch {
	case spec.Steps != nil:
		if len(spec.Steps) != nbSteps {
			return f, fmt.Errorf("%w: field %q: %d step values for %d steps", ErrSchema, f.Name, len(spec.Steps), nbSteps)
		}
		f.Steps = append([]float64(nil), spec.Steps...)
	case spec.NbSteps > 0:
		f.Steps = stepRange(nbSteps)
	default:
		f.Steps = make([]float64, nbSteps)
	}

	if len(spec.Entities) > 0 {
		seen := make(map[int]bool, len(spec.Entities))
		for _, id := range spec.Entities {
			if id < 1 || id > count {
				return f, fmt.Errorf("%w: field %q: entity %d outside 1..%d", ErrSchema, f.Name, id, count)
			}
			if seen[id] {
				return f, fmt.Errorf("%w: field %q: duplicate entity %d", ErrSchema, f.Name, id)
			}
			seen[id] = true
		}
		f.Entities = append([]int(nil), spec.Entities...)
	} else {
		f.Entities = denseRange(count)
	}

	f.Dim = spec.Dim
	for s, a := range f.Data {
		if a == nil {
			return f, fmt.Errorf("%w: field %q: step %d has no data", ErrSchema, f.Name, s)
		}
		r, c := a.Dims()
		if r != len(f.Entities) {
			return f, fmt.Errorf("%w: field %q step %d: %d rows for %d %s entities",
				ErrSchema, f.Name, s, r, len(f.Entities), f.Kind)
		}
		if f.Dim == 0 {
			f.Dim = c
		}
		if c != f.Dim {
			return f, fmt.Errorf("%w: field %q step %d: %d components, expected %d", ErrSchema, f.Name, s, c, f.Dim)
		}
		if a.Kind() != f.Data[0].Kind() {
			return f, fmt.Errorf("%w: field %q step %d: mixed int and real payloads", ErrSchema, f.Name, s)
		}
	}
	return f, nil
}

func stepRange(n int) []float64 {
	steps := make([]float64, n)
	for i := range steps {
		steps[i] = float64(i)
	}
	return steps
}

func denseRange(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i + 1
	}
	return ids
}
