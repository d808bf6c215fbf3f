package mesh

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/meshrw/utils"
)

const (
	// PhysGroupFieldName is the reserved name of the synthesized physical group field
	PhysGroupFieldName = "physgrp"
	// NoPhysGroup marks an element without physical group assignment
	NoPhysGroup = -1

	globalGroupBase = 1000
	globalGroupStep = 50
)

// Summary is the bookkeeping derived from a Mesh for one write
type Summary struct {
	NumNodes    int
	NumElements int
	Dimension   int

	TypeOrder        []utils.ElementType // first-seen order
	ElementsPerType  map[utils.ElementType]int
	ElementsPerGroup map[int]int
	GroupNames       map[int]string
	PhysGroups       []int // sorted, [1] when nothing is declared
	GlobalPhysGroup  int

	ElementPhysGroups []int // per element, NoPhysGroup when unassigned
	ElementEntities   []int // per element, 1-based element group ordinal

	NumSteps int
	Steps    []float64
	Fields   []Field

	NumNodalFields     int
	NumElementalFields int
	NumTemporalFields  int
}

// GlobalPhysGroup returns the first id of the base/step sequence that is not in use
func GlobalPhysGroup(inUse []int) int {
	used := make(map[int]bool, len(inUse))
	for _, p := range inUse {
		used[p] = true
	}
	current := globalGroupBase
	for used[current] {
		current += globalGroupStep
	}
	return current
}

// Analyze validates m and computes its Summary. The physical group field is
// synthesized and prepended to the normalized fields when any group declares
// an assignment.
func Analyze(m *Mesh, logger zerolog.Logger) (*Summary, error) {
	if err := m.validateNodes(); err != nil {
		return nil, err
	}
	s := &Summary{
		NumNodes:         m.NumNodes(),
		Dimension:        m.Dimension(),
		ElementsPerType:  make(map[utils.ElementType]int),
		ElementsPerGroup: make(map[int]int),
		GroupNames:       make(map[int]string),
	}

	var anyPhys bool
	for ig := range m.ElementGroups {
		if err := m.validateGroup(ig); err != nil {
			return nil, err
		}
		g := &m.ElementGroups[ig]
		n := g.NumElements()
		if _, ok := s.ElementsPerType[g.Type]; !ok {
			s.TypeOrder = append(s.TypeOrder, g.Type)
		}
		s.ElementsPerType[g.Type] += n
		s.NumElements += n

		name := g.Name
		if name == "" {
			name = fmt.Sprintf("grp-%d", ig)
		}
		if g.HasPhysGroup() {
			anyPhys = true
		}
		seen := make(map[int]bool)
		for ie := 0; ie < n; ie++ {
			p := g.PhysGroupOf(ie)
			s.ElementPhysGroups = append(s.ElementPhysGroups, p)
			s.ElementEntities = append(s.ElementEntities, ig+1)
			if p == NoPhysGroup && !g.HasPhysGroup() {
				continue
			}
			s.ElementsPerGroup[p]++
			if !seen[p] {
				seen[p] = true
				if prev, ok := s.GroupNames[p]; ok {
					s.GroupNames[p] = prev + "-" + name
				} else {
					s.GroupNames[p] = name
				}
			}
		}
	}

	for p := range s.ElementsPerGroup {
		s.PhysGroups = append(s.PhysGroups, p)
	}
	sort.Ints(s.PhysGroups)
	s.GlobalPhysGroup = GlobalPhysGroup(s.PhysGroups)

	logger.Debug().Int("nodes", s.NumNodes).Int("elements", s.NumElements).
		Int("physical_groups", len(s.PhysGroups)).Msg("mesh statistics")
	for _, t := range s.TypeOrder {
		logger.Debug().Str("type", t.String()).Int("elements", s.ElementsPerType[t]).Msg("elements per type")
	}
	for _, p := range s.PhysGroups {
		logger.Debug().Int("group", p).Int("elements", s.ElementsPerGroup[p]).Msg("elements per physical group")
	}
	logger.Debug().Int("group", s.GlobalPhysGroup).Msg("global physical group")

	if len(s.PhysGroups) == 0 {
		s.PhysGroups = []int{1}
	}

	specs := m.Fields
	if anyPhys {
		logger.Debug().Msg("create field for physical groups")
		data := make([]int, len(s.ElementPhysGroups))
		copy(data, s.ElementPhysGroups)
		specs = append([]FieldSpec{{
			Kind:   Elemental,
			Values: IntColumn(data),
			Dim:    1,
			Name:   PhysGroupFieldName,
		}}, specs...)
	}

	norm := NewFieldNormalizer(s.NumNodes, s.NumElements)
	s.Fields = make([]Field, 0, len(specs))
	for _, spec := range specs {
		f, err := norm.Normalize(spec)
		if err != nil {
			return nil, err
		}
		s.Fields = append(s.Fields, f)
	}
	if err := s.buildStepAxis(); err != nil {
		return nil, err
	}

	logger.Debug().Int("fields", len(s.Fields)).Int("cell_fields", s.NumElementalFields).
		Int("point_fields", s.NumNodalFields).Int("temporal_fields", s.NumTemporalFields).
		Int("steps", s.NumSteps).Msg("field statistics")
	return s, nil
}

// buildStepAxis counts fields and checks that every field with more than one
// step shares the same step values
func (s *Summary) buildStepAxis() error {
	var owner string
	for i := range s.Fields {
		f := &s.Fields[i]
		switch f.Kind {
		case Nodal:
			s.NumNodalFields++
		case Elemental:
			s.NumElementalFields++
		}
		if f.Temporal {
			s.NumTemporalFields++
		}
		if f.NumSteps() <= 1 {
			continue
		}
		if s.Steps == nil {
			s.Steps = f.Steps
			owner = f.Name
			continue
		}
		if len(s.Steps) != len(f.Steps) || !floats.EqualApprox(s.Steps, f.Steps, utils.STEPTOL) {
			return fmt.Errorf("%w: inconsistent steps in field %q (steps of %q: %v, got %v)",
				ErrSchema, f.Name, owner, s.Steps, f.Steps)
		}
	}
	if s.Steps == nil {
		s.Steps = []float64{0}
	}
	s.NumSteps = len(s.Steps)
	return nil
}

// ElementsByType returns the element counts in first-seen type order
func (s *Summary) ElementsByType() (types []utils.ElementType, counts []int) {
	for _, t := range s.TypeOrder {
		types = append(types, t)
		counts = append(counts, s.ElementsPerType[t])
	}
	return
}

// FieldsOf returns the fields with the given association, in field order
func (s *Summary) FieldsOf(kind Association) []*Field {
	var out []*Field
	for i := range s.Fields {
		if s.Fields[i].Kind == kind {
			out = append(out, &s.Fields[i])
		}
	}
	return out
}
