package thermo

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gofv/fields"
	"github.com/notargets/gofv/types"
)

// Solid is a constant property conducting region
type Solid struct {
	Props    SolidProperties
	T        *fields.VolScalarField
	H        *fields.VolScalarField
	Rho      *fields.VolScalarField
	Alpha    *fields.VolScalarField     // Kappa/Cp, isotropic solids
	AniAlpha *fields.VolSymmTensorField // Kappa/Cp in global axes, anisotropic solids
}

func NewSolid(props SolidProperties, T *fields.VolScalarField) (th *Solid, err error) {
	if err = props.Validate(); err != nil {
		return
	}
	m := T.Mesh
	th = &Solid{
		Props: props,
		T:     T,
		Rho:   fields.NewCalculatedScalarField("thermo:rho", types.DimDensity, m, props.Rho),
	}
	cpB := func(int) float64 { return props.Cp }
	th.H = enthalpyField(T, cpB)
	if props.Anisotropic == nil {
		th.Alpha = fields.NewCalculatedScalarField("thermo:alpha", types.DimDynamicViscosity, m, props.Kappa/props.Cp)
	} else {
		a := props.Anisotropic
		th.AniAlpha = fields.NewVolSymmTensorField("aniAlpha", types.DimDynamicViscosity, m,
			TransformPrincipal(a.E1, a.E3, a.Kappa.Scale(1./props.Cp)))
	}
	th.UpdateH()
	return
}

func (th *Solid) Isotropic() bool { return th.Props.Anisotropic == nil }

func (th *Solid) UpdateH() {
	for c, T := range th.T.Internal {
		th.H.Internal[c] = th.Props.Cp * (T - Tstd)
	}
	for b, T := range th.T.Boundary {
		th.H.Boundary[b] = th.Props.Cp * (T - Tstd)
	}
}

func (th *Solid) Correct() {
	cp := th.Props.Cp
	for c, h := range th.H.Internal {
		th.T.Internal[c] = Tstd + h/cp
	}
	for b := range th.T.Boundary {
		switch th.T.BoundaryKind(b) {
		case types.BC_FixedValue, types.BC_Coupled:
			th.H.Boundary[b] = cp * (th.T.Boundary[b] - Tstd)
		default:
			th.T.Boundary[b] = Tstd + th.H.Boundary[b]/cp
		}
	}
}

// KappaNormal is the conductivity along the unit normal n in cell c
func (th *Solid) KappaNormal(c int, n types.Vec3) float64 {
	if th.Isotropic() {
		return th.Props.Kappa
	}
	return th.AniAlpha.Internal[c].Project(n) * th.Props.Cp
}

func (th *Solid) String() string {
	if th.Isotropic() {
		return fmt.Sprintf("solid, rho = %g, Cp = %g, kappa = %g", th.Props.Rho, th.Props.Cp, th.Props.Kappa)
	}
	return fmt.Sprintf("solid, rho = %g, Cp = %g, principal kappa = %v", th.Props.Rho, th.Props.Cp, th.Props.Anisotropic.Kappa)
}

/*
TransformPrincipal rotates the principal values v, given along the local axes
e1, e2 = e3 x e1, e3, into the global system: R diag(v) R^T with the unit
axes as the columns of R.
*/
func TransformPrincipal(e1, e3 types.Vec3, v types.Vec3) types.SymmTensor {
	e1 = e1.Scale(1. / e1.Mag())
	e3 = e3.Sub(e1.Scale(e1.Dot(e3)))
	e3 = e3.Scale(1. / e3.Mag())
	e2 := e3.Cross(e1)
	R := mat.NewDense(3, 3, []float64{
		e1[0], e2[0], e3[0],
		e1[1], e2[1], e3[1],
		e1[2], e2[2], e3[2],
	})
	D := mat.NewDiagDense(3, []float64{v[0], v[1], v[2]})
	var RD, K mat.Dense
	RD.Mul(R, D)
	K.Mul(&RD, R.T())
	return types.SymmTensor{K.At(0, 0), K.At(0, 1), K.At(0, 2), K.At(1, 1), K.At(1, 2), K.At(2, 2)}
}
