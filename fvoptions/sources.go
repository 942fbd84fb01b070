package fvoptions

import (
	"fmt"
	"math"

	"github.com/notargets/gofv/fields"
	"github.com/notargets/gofv/fvm"
	"github.com/notargets/gofv/thermo"
	"github.com/notargets/gofv/types"
)

/*
SemiImplicitSource adds Su + Sp*psi to the right hand side of the equations
of its fields over the selected cells. In absolute volume mode the values
are totals over the cell set, otherwise they are per unit volume.
*/
type SemiImplicitSource struct {
	base
	Su, Sp   float64
	SuVector types.Vec3
}

func newSemiImplicitSource(b base, p Properties) (s *SemiImplicitSource, err error) {
	if len(b.fields) == 0 {
		return nil, fmt.Errorf("semiImplicitSource needs at least one field")
	}
	scale := 1.
	switch p.VolumeMode {
	case "", "specific":
	case "absolute":
		scale = 1. / b.vol
	default:
		return nil, fmt.Errorf("unknown volumeMode %q, choose from absolute, specific", p.VolumeMode)
	}
	s = &SemiImplicitSource{base: b, Su: p.Su * scale, Sp: p.Sp * scale, SuVector: p.SuVector.Scale(scale)}
	return
}

func (s *SemiImplicitSource) addSup(rho *fields.VolScalarField, M *fvm.ScalarMatrix) {
	V := M.Psi.Mesh.V
	for _, c := range s.cells {
		M.Source[c] -= V[c] * s.Su
		M.Diag[c] += V[c] * s.Sp
	}
}

func (s *SemiImplicitSource) addSupVector(rho *fields.VolScalarField, M *fvm.VectorMatrix) {
	V := M.Psi.Mesh.V
	for _, c := range s.cells {
		M.Source[c] = M.Source[c].Sub(s.SuVector.Scale(V[c]))
		M.Diag[c] += V[c] * s.Sp
	}
}

/*
LimitTemperature bounds the temperature of the selected cells after the
energy equation is solved. Applied to the enthalpy the bounds are converted
with the cell heat capacity.
*/
type LimitTemperature struct {
	base
	Min, Max float64
}

func newLimitTemperature(b base, p Properties) (l *LimitTemperature, err error) {
	if p.Min <= 0 || p.Max <= p.Min {
		return nil, fmt.Errorf("limitTemperature needs 0 < min < max, have min = %g, max = %g", p.Min, p.Max)
	}
	if len(b.fields) == 0 {
		b.fields = []string{"h"}
	}
	return &LimitTemperature{base: b, Min: p.Min, Max: p.Max}, nil
}

func (l *LimitTemperature) correct(psi *fields.VolScalarField, cp []float64) {
	for _, c := range l.cells {
		lo, hi := l.Min, l.Max
		if cp != nil {
			lo, hi = cp[c]*(l.Min-thermo.Tstd), cp[c]*(l.Max-thermo.Tstd)
		}
		psi.Internal[c] = math.Max(lo, math.Min(hi, psi.Internal[c]))
	}
	psi.CorrectBoundaryConditions()
}

// LimitVelocity caps the speed in the selected cells at Max
type LimitVelocity struct {
	base
	Max float64
}

func newLimitVelocity(b base, p Properties) (l *LimitVelocity, err error) {
	if p.Max <= 0 {
		return nil, fmt.Errorf("limitVelocity needs max > 0, have %g", p.Max)
	}
	if len(b.fields) == 0 {
		b.fields = []string{"U"}
	}
	return &LimitVelocity{base: b, Max: p.Max}, nil
}

func (l *LimitVelocity) correctVector(U *fields.VolVectorField) {
	for _, c := range l.cells {
		if mag := U.Internal[c].Mag(); mag > l.Max {
			U.Internal[c] = U.Internal[c].Scale(l.Max / mag)
		}
	}
	U.CorrectBoundaryConditions()
}

// FixedValueConstraint holds its fields at a value in the selected cells
type FixedValueConstraint struct {
	base
	Value       float64
	VectorValue types.Vec3
}

func newFixedValueConstraint(b base, p Properties) (f *FixedValueConstraint, err error) {
	if len(b.fields) == 0 {
		return nil, fmt.Errorf("fixedValueConstraint needs at least one field")
	}
	return &FixedValueConstraint{base: b, Value: p.Value, VectorValue: p.VectorValue}, nil
}

func (f *FixedValueConstraint) constrain(M *fvm.ScalarMatrix) {
	M.SetValues(f.cells, f.Value)
}

func (f *FixedValueConstraint) constrainVector(M *fvm.VectorMatrix) {
	M.SetValues(f.cells, f.VectorValue)
}
