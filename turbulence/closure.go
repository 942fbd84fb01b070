/*
Package turbulence provides the eddy viscosity closures consumed by the
momentum, energy and species equations of a fluid region.
*/
package turbulence

import (
	"fmt"
	"strings"

	"github.com/notargets/gofv/fields"
	"github.com/notargets/gofv/fvc"
	"github.com/notargets/gofv/fvm"
	"github.com/notargets/gofv/types"
)

const (
	DefaultPrt = 0.85 // Turbulent Prandtl number
	DefaultSct = 0.7  // Turbulent Schmidt number
)

// Closure is what a fluid region needs from a turbulence model
type Closure interface {
	Name() string
	Nut() *fields.VolScalarField
	EffectiveViscosity(rho *fields.VolScalarField) *fields.VolScalarField
	EffectiveDiffusivity(alpha, rho *fields.VolScalarField) *fields.VolScalarField
	DivDevRhoReff(U *fields.VolVectorField, muEff *fields.VolScalarField) *fvm.VectorMatrix
	Sct() float64
	Correct()
}

type Properties struct {
	Model        string  `json:"model"`
	Nut          float64 `json:"nut,omitempty"`          // constantEddyViscosity
	MixingLength float64 `json:"mixingLength,omitempty"` // mixingLength
	Prt          float64 `json:"Prt,omitempty"`
	Sct          float64 `json:"Sct,omitempty"`
}

func (p *Properties) SetDefaults() {
	if p.Model == "" {
		p.Model = "laminar"
	}
	if p.Prt == 0 {
		p.Prt = DefaultPrt
	}
	if p.Sct == 0 {
		p.Sct = DefaultSct
	}
}

// New selects a closure by name. mu is the molecular viscosity of the region's thermo
func New(props Properties, U *fields.VolVectorField, mu *fields.VolScalarField) (c Closure, err error) {
	props.SetDefaults()
	if props.Prt <= 0 || props.Sct <= 0 {
		return nil, fmt.Errorf("turbulent Prandtl and Schmidt numbers must be positive, have %g and %g",
			props.Prt, props.Sct)
	}
	base := eddyViscosity{
		props: props,
		U:     U,
		mu:    mu,
		nut:   fields.NewCalculatedScalarField("nut", types.DimKinematicViscosity, U.Mesh, 0),
	}
	switch strings.ToLower(props.Model) {
	case "laminar":
		c = &Laminar{base}
	case "constanteddyviscosity":
		if props.Nut < 0 {
			return nil, fmt.Errorf("eddy viscosity must not be negative, have %g", props.Nut)
		}
		ce := &ConstantEddyViscosity{base}
		ce.Correct()
		c = ce
	case "mixinglength":
		if props.MixingLength <= 0 {
			return nil, fmt.Errorf("mixingLength model needs a positive mixingLength, have %g", props.MixingLength)
		}
		ml := &MixingLength{eddyViscosity: base}
		ml.Correct()
		c = ml
	default:
		return nil, fmt.Errorf("unknown turbulence model %q, choose from laminar, constantEddyViscosity, mixingLength",
			props.Model)
	}
	return
}

// eddyViscosity carries what every closure shares: nut and the effective transport properties
type eddyViscosity struct {
	props Properties
	U     *fields.VolVectorField
	mu    *fields.VolScalarField
	nut   *fields.VolScalarField
}

func (e *eddyViscosity) Nut() *fields.VolScalarField { return e.nut }

func (e *eddyViscosity) Sct() float64 { return e.props.Sct }

// EffectiveViscosity is mu + rho*nut
func (e *eddyViscosity) EffectiveViscosity(rho *fields.VolScalarField) (muEff *fields.VolScalarField) {
	muEff = e.mu.Clone("muEff")
	for c := range muEff.Internal {
		muEff.Internal[c] += rho.Internal[c] * e.nut.Internal[c]
	}
	for b := range muEff.Boundary {
		muEff.Boundary[b] += rho.Boundary[b] * e.nut.Boundary[b]
	}
	return
}

// EffectiveDiffusivity is alpha + rho*nut/Prt
func (e *eddyViscosity) EffectiveDiffusivity(alpha, rho *fields.VolScalarField) (alphaEff *fields.VolScalarField) {
	alphaEff = alpha.Clone("alphaEff")
	rPrt := 1. / e.props.Prt
	for c := range alphaEff.Internal {
		alphaEff.Internal[c] += rho.Internal[c] * e.nut.Internal[c] * rPrt
	}
	for b := range alphaEff.Boundary {
		alphaEff.Boundary[b] += rho.Boundary[b] * e.nut.Boundary[b] * rPrt
	}
	return
}

/*
DivDevRhoReff is the divergence of the effective stress,
-laplacian(muEff, U) - div(muEff dev2(T(grad(U)))), the second part explicit.
*/
func (e *eddyViscosity) DivDevRhoReff(U *fields.VolVectorField, muEff *fields.VolScalarField) (M *fvm.VectorMatrix) {
	var (
		m      = U.Mesh
		nInt   = m.NInternalFaces
		muEfff = fvc.Interpolate(muEff)
		gradU  = fvc.GradVector(U)
		ff     = make([]types.Vec3, m.NFaces())
		dims   = muEff.Dims.Mul(U.Dims).Div(types.DimArea)
	)
	for f := 0; f < nInt; f++ {
		w := m.Weights[f]
		gf := gradU[m.Owner[f]].Scale(w).Add(gradU[m.Neighbour[f]].Scale(1 - w))
		ff[f] = gf.T().Dev2().LeftDot(m.Sf[f]).Scale(muEfff.Values[f])
	}
	for f := nInt; f < m.NFaces(); f++ {
		if !m.EmptyFace[f-nInt] {
			ff[f] = gradU[m.Owner[f]].T().Dev2().LeftDot(m.Sf[f]).Scale(muEfff.Values[f])
		}
	}
	div := fvc.DivVectorFlux(m, ff)
	for c := range div {
		div[c] = div[c].Scale(-1)
	}
	M = fvm.LaplacianVector(muEfff, U).Negate()
	M.AddExplicit(div, dims)
	return
}

// wallBoundary sets nut to zero on walls and to the owner value elsewhere
func (e *eddyViscosity) wallBoundary() {
	m := e.nut.Mesh
	for b := range e.nut.Boundary {
		if m.Patches[m.FacePatch[b]].Type == types.PT_Wall {
			e.nut.Boundary[b] = 0
			continue
		}
		e.nut.Boundary[b] = e.nut.Internal[m.Owner[b+m.NInternalFaces]]
	}
}
