/*
Package fvoptions holds the optional sources and constraints that the region
equations pick up by field name: explicit and implicit volumetric sources,
fixed value constraints, temperature and velocity limits.
*/
package fvoptions

import (
	"fmt"
	"io"
	"strings"

	"github.com/notargets/gofv/fields"
	"github.com/notargets/gofv/fvm"
	"github.com/notargets/gofv/mesh"
	"github.com/notargets/gofv/types"
)

// Box selects the cells whose centres lie inside it, a nil Box selects all cells
type Box struct {
	Min types.Vec3 `json:"min"`
	Max types.Vec3 `json:"max"`
}

func (b *Box) Cells(m *mesh.Mesh) (cells []int) {
	for c, x := range m.C {
		if b == nil || (x[0] >= b.Min[0] && x[0] <= b.Max[0] &&
			x[1] >= b.Min[1] && x[1] <= b.Max[1] &&
			x[2] >= b.Min[2] && x[2] <= b.Max[2]) {
			cells = append(cells, c)
		}
	}
	return
}

type Properties struct {
	Name   string   `json:"name"`
	Type   string   `json:"type"`
	Active *bool    `json:"active,omitempty"`
	Fields []string `json:"fields,omitempty"`
	Box    *Box     `json:"box,omitempty"`
	// semiImplicitSource
	VolumeMode string     `json:"volumeMode,omitempty"` // absolute or specific
	Su         float64    `json:"Su,omitempty"`
	SuVector   types.Vec3 `json:"SuVector,omitempty"`
	Sp         float64    `json:"Sp,omitempty"`
	// limitTemperature, limitVelocity uses Max only
	Min float64 `json:"min,omitempty"`
	Max float64 `json:"max,omitempty"`
	// fixedValueConstraint
	Value       float64    `json:"value,omitempty"`
	VectorValue types.Vec3 `json:"vectorValue,omitempty"`
}

type Option interface {
	Name() string
	Active() bool
	FieldNames() []string
}

type scalarSource interface {
	addSup(rho *fields.VolScalarField, M *fvm.ScalarMatrix)
}

type vectorSource interface {
	addSupVector(rho *fields.VolScalarField, M *fvm.VectorMatrix)
}

type scalarConstraint interface {
	constrain(M *fvm.ScalarMatrix)
}

type vectorConstraint interface {
	constrainVector(M *fvm.VectorMatrix)
}

type corrector interface {
	correct(psi *fields.VolScalarField, cp []float64)
}

type vectorCorrector interface {
	correctVector(U *fields.VolVectorField)
}

// base is the part of an option common to every type
type base struct {
	name   string
	active bool
	fields []string
	cells  []int
	vol    float64
}

func newBase(m *mesh.Mesh, p Properties) (b base, err error) {
	b = base{name: p.Name, active: p.Active == nil || *p.Active, fields: p.Fields}
	if b.cells = p.Box.Cells(m); len(b.cells) == 0 {
		return b, fmt.Errorf("option %s selects no cells", p.Name)
	}
	for _, c := range b.cells {
		b.vol += m.V[c]
	}
	return
}

func (b *base) Name() string         { return b.name }
func (b *base) Active() bool         { return b.active }
func (b *base) FieldNames() []string { return b.fields }

// List is the set of options of one region
type List struct {
	Options []Option
	// Cp supplies the cell heat capacity used to express temperatures as enthalpy
	Cp      func() []float64
	applied map[string]map[string]bool
}

func New(m *mesh.Mesh, props []Properties) (l *List, err error) {
	l = &List{applied: make(map[string]map[string]bool)}
	for _, p := range props {
		var (
			b   base
			opt Option
		)
		if p.Name == "" {
			return nil, fmt.Errorf("option of type %q has no name", p.Type)
		}
		if b, err = newBase(m, p); err != nil {
			return nil, err
		}
		switch strings.ToLower(p.Type) {
		case "semiimplicitsource":
			opt, err = newSemiImplicitSource(b, p)
		case "limittemperature":
			opt, err = newLimitTemperature(b, p)
		case "limitvelocity":
			opt, err = newLimitVelocity(b, p)
		case "fixedvalueconstraint":
			opt, err = newFixedValueConstraint(b, p)
		default:
			err = fmt.Errorf("unknown option type %q, choose from semiImplicitSource, limitTemperature, limitVelocity, fixedValueConstraint",
				p.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("option %s: %w", p.Name, err)
		}
		l.Options = append(l.Options, opt)
		l.applied[p.Name] = make(map[string]bool)
	}
	return
}

func (l *List) each(field string, fn func(o Option)) {
	if l == nil {
		return
	}
	for _, o := range l.Options {
		if !o.Active() {
			continue
		}
		for _, f := range o.FieldNames() {
			if f == field {
				l.applied[o.Name()][field] = true
				fn(o)
				break
			}
		}
	}
}

// Source is the right hand side contributed to the equation of rho*psi, a nil rho is unity
func (l *List) Source(rho, psi *fields.VolScalarField) (M *fvm.ScalarMatrix) {
	M = fvm.NewScalarMatrix(psi, sourceDims(rho, psi.Dims))
	l.each(psi.Name, func(o Option) {
		if s, ok := o.(scalarSource); ok {
			s.addSup(rho, M)
		}
	})
	return
}

func (l *List) SourceVector(rho *fields.VolScalarField, U *fields.VolVectorField) (M *fvm.VectorMatrix) {
	M = fvm.NewVectorMatrix(U, sourceDims(rho, U.Dims))
	l.each(U.Name, func(o Option) {
		if s, ok := o.(vectorSource); ok {
			s.addSupVector(rho, M)
		}
	})
	return
}

func sourceDims(rho *fields.VolScalarField, psiDims types.Dimensions) types.Dimensions {
	dims := psiDims.Div(types.DimTime)
	if rho != nil {
		dims = dims.Mul(rho.Dims)
	}
	return dims
}

// Constrain applies the constraints on M.Psi to the assembled equation
func (l *List) Constrain(M *fvm.ScalarMatrix) {
	l.each(M.Psi.Name, func(o Option) {
		if c, ok := o.(scalarConstraint); ok {
			c.constrain(M)
		}
	})
}

func (l *List) ConstrainVector(M *fvm.VectorMatrix) {
	l.each(M.Psi.Name, func(o Option) {
		if c, ok := o.(vectorConstraint); ok {
			c.constrainVector(M)
		}
	})
}

// Correct adjusts psi after its equation is solved
func (l *List) Correct(psi *fields.VolScalarField) {
	var cp []float64
	l.each(psi.Name, func(o Option) {
		if c, ok := o.(corrector); ok {
			if cp == nil && l.Cp != nil {
				cp = l.Cp()
			}
			c.correct(psi, cp)
		}
	})
}

func (l *List) CorrectVector(U *fields.VolVectorField) {
	l.each(U.Name, func(o Option) {
		if c, ok := o.(vectorCorrector); ok {
			c.correctVector(U)
		}
	})
}

// CheckApplied reports options that were never applied to one of their fields
func (l *List) CheckApplied(w io.Writer) {
	if l == nil {
		return
	}
	for _, o := range l.Options {
		for _, f := range o.FieldNames() {
			if o.Active() && !l.applied[o.Name()][f] {
				fmt.Fprintf(w, "Source %s defined for field %s but never used\n", o.Name(), f)
			}
		}
	}
}
