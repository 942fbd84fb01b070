package thermo

import (
	"fmt"

	"github.com/notargets/gofv/fields"
	"github.com/notargets/gofv/types"
	"github.com/notargets/gofv/utils"
)

/*
Fluid is the thermodynamic state of a fluid region. The solved variable is
the sensible enthalpy H = Cp (T - Tstd), Correct recovers the temperature
and the derived properties from it.
*/
type Fluid struct {
	Props FluidProperties
	EOS   EquationOfState
	P     *fields.VolScalarField // Absolute pressure
	T     *fields.VolScalarField
	H     *fields.VolScalarField
	Rho   *fields.VolScalarField
	Psi   *fields.VolScalarField
	Mu    *fields.VolScalarField
	Alpha *fields.VolScalarField // Kappa/Cp
	Kappa *fields.VolScalarField
	Comp  *Composition // Nil for a single component fluid
}

func NewFluid(props FluidProperties, p, T *fields.VolScalarField) (th *Fluid, err error) {
	props.SetDefaults()
	if err = props.Validate(); err != nil {
		return
	}
	m := T.Mesh
	th = &Fluid{
		Props: props,
		P:     p,
		T:     T,
		Rho:   fields.NewCalculatedScalarField("thermo:rho", types.DimDensity, m, 0),
		Psi:   fields.NewCalculatedScalarField("thermo:psi", types.DimCompressibility, m, 0),
		Mu:    fields.NewCalculatedScalarField("thermo:mu", types.DimDynamicViscosity, m, props.Mu),
		Alpha: fields.NewCalculatedScalarField("thermo:alpha", types.DimDynamicViscosity, m, 0),
		Kappa: fields.NewCalculatedScalarField("thermo:kappa", types.DimThermalConductivity, m, 0),
	}
	th.EOS, _ = NewEquationOfState(props.EquationOfState)
	if len(props.Species) != 0 {
		if th.Comp, err = NewComposition(m, props.Species, props.InertSpecie); err != nil {
			return nil, err
		}
	}
	th.H = enthalpyField(T, th.cpBoundary)
	th.UpdateH()
	th.Correct()
	return
}

/*
enthalpyField derives the enthalpy boundary conditions from the temperature
conditions, fixed gradients scale with the boundary heat capacity.
*/
func enthalpyField(T *fields.VolScalarField, cpB func(b int) float64) (h *fields.VolScalarField) {
	m := T.Mesh
	h = fields.NewVolScalarField("h", types.DimSpecificEnergy, m, 0)
	copy(h.Kinds, T.Kinds)
	for b := range h.Gradient {
		h.Gradient[b] = cpB(b) * T.Gradient[b]
	}
	return
}

func (th *Fluid) cpCell(c int) float64 {
	if th.Comp == nil {
		return th.Props.Cp
	}
	return th.Comp.Cp(th.Comp.cellY(c))
}

func (th *Fluid) cpBoundary(b int) float64 {
	if th.Comp == nil {
		return th.Props.Cp
	}
	return th.Comp.Cp(th.Comp.faceY(b))
}

func (th *Fluid) wCell(c int) float64 {
	if th.Comp == nil {
		return th.Props.W
	}
	return th.Comp.W(th.Comp.cellY(c))
}

func (th *Fluid) wBoundary(b int) float64 {
	if th.Comp == nil {
		return th.Props.W
	}
	return th.Comp.W(th.Comp.faceY(b))
}

// Cp is the heat capacity per cell
func (th *Fluid) Cp() (cp []float64) {
	cp = make([]float64, len(th.T.Internal))
	for c := range cp {
		cp[c] = th.cpCell(c)
	}
	return
}

// UpdateH sets the enthalpy from the temperature, used after T changes directly
func (th *Fluid) UpdateH() {
	for c, T := range th.T.Internal {
		th.H.Internal[c] = th.cpCell(c) * (T - Tstd)
	}
	for b, T := range th.T.Boundary {
		th.H.Boundary[b] = th.cpBoundary(b) * (T - Tstd)
	}
}

// Correct updates the temperature and properties from the enthalpy
func (th *Fluid) Correct() {
	for c, h := range th.H.Internal {
		th.T.Internal[c] = Tstd + h/th.cpCell(c)
	}
	for b := range th.T.Boundary {
		switch th.T.BoundaryKind(b) {
		case types.BC_FixedValue, types.BC_Coupled:
			th.H.Boundary[b] = th.cpBoundary(b) * (th.T.Boundary[b] - Tstd)
		default:
			th.T.Boundary[b] = Tstd + th.H.Boundary[b]/th.cpBoundary(b)
		}
	}
	th.correctProperties()
}

func (th *Fluid) correctProperties() {
	var (
		rho, psi = th.Rho, th.Psi
	)
	for c, T := range th.T.Internal {
		cp := th.cpCell(c)
		psi.Internal[c], rho.Internal[c] = th.eos(th.P.Internal[c], T, th.wCell(c))
		th.Kappa.Internal[c] = cp * th.Props.Mu / th.Props.Pr
		th.Alpha.Internal[c] = th.Kappa.Internal[c] / cp
	}
	for b, T := range th.T.Boundary {
		cp := th.cpBoundary(b)
		psi.Boundary[b], rho.Boundary[b] = th.eos(th.P.Boundary[b], T, th.wBoundary(b))
		th.Kappa.Boundary[b] = cp * th.Props.Mu / th.Props.Pr
		th.Alpha.Boundary[b] = th.Kappa.Boundary[b] / cp
	}
}

func (th *Fluid) eos(p, T, W float64) (psi, rho float64) {
	switch th.EOS {
	case PerfectGas:
		psi = 1. / (RR / W * utils.StabiliseDivisor(T, utils.SMALL))
		rho = p * psi
	default:
		rho = th.Props.Rho
	}
	return
}

// LimitRho bounds the thermodynamic density
func (th *Fluid) LimitRho(rhoMin, rhoMax float64) {
	th.Rho.Clamp(rhoMin, rhoMax)
}

// Incompressible is true when the density does not depend on pressure
func (th *Fluid) Incompressible() bool { return th.EOS == RhoConst }

// SetT sets a uniform temperature on the interior and non-fixed patches
func (th *Fluid) SetT(T float64) {
	for c := range th.T.Internal {
		th.T.Internal[c] = T
	}
	th.T.CorrectBoundaryConditions()
	th.UpdateH()
	th.Correct()
}

func (th *Fluid) String() string {
	s := fmt.Sprintf("%s fluid, mu = %g, Pr = %g", th.EOS, th.Props.Mu, th.Props.Pr)
	if th.Comp != nil {
		s += fmt.Sprintf(", %d species, inert %s", th.Comp.NSpecies(), th.Props.InertSpecie)
	}
	return s
}
