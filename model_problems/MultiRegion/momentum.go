package MultiRegion

import (
	"math"

	"github.com/notargets/gofv/control"
	"github.com/notargets/gofv/fields"
	"github.com/notargets/gofv/fvc"
	"github.com/notargets/gofv/fvm"
	"github.com/notargets/gofv/mesh"
	"github.com/notargets/gofv/types"
)

var (
	dimForceDensity = types.DimPressure.Div(types.DimLength)
	dimPowerDensity = types.DimPower.Div(types.DimVolume)
	dimMassRate     = types.DimDensity.Div(types.DimTime)
)

/*
solveMomentum assembles the momentum equation of the region
	ddt(rho, U) + div(phi, U) + divDevRhoReff(U) = fvOptions(rho, U)
relaxes and constrains it, and with the momentum predictor solves it against
the pressure gradient and the buoyancy force. The matrix is retained with
its inverse diagonal for the pressure correction.
*/
func (fr *FluidRegion) solveMomentum(sc *control.SolutionControl, ts fvm.TimeState) {
	var (
		m          = fr.Mesh
		U          = fr.U
		rp         = sc.Region()
		transient  = ts.Transient()
		muEff      = fr.Turbulence.EffectiveViscosity(fr.Rho)
		UEqn       = fvm.DivVector(fr.Phi, U, !transient)
		consistent = rp.Consistent
	)
	UEqn.Add(fr.Turbulence.DivDevRhoReff(U, muEff))
	UEqn.Sub(fr.FvOptions.SourceVector(fr.Rho, U))
	if transient {
		UEqn.Add(fvm.DdtVector(fr.Rho, U, ts))
	}
	UEqn.Relax(sc.EquationRelaxation(U.Name))
	fr.FvOptions.ConstrainVector(UEqn)
	fr.UEqn = UEqn

	if sc.MomentumPredictor() || consistent {
		fr.GradP_rgh = fvc.Grad(fr.P_rgh)
	}
	if sc.MomentumPredictor() {
		rhs := make([]types.Vec3, m.NCells)
		for c, gp := range fr.GradP_rgh.Internal {
			rhs[c] = gp.Add(fr.GravityForce.Internal[c]).Scale(-1)
		}
		sc.SolveVector(UEqn.Clone().Eq(rhs, dimForceDensity), sc.FinalIter())
		fr.FvOptions.CorrectVector(U)
		fr.updateK()
	}
	fr.updateRAU(consistent)
}

/*
updateRAU evaluates rAU = 1/A of the momentum matrix, and for the consistent
formulation rAtU = 1/(A - H1) with drAU = rAtU - rAU. The face coefficient
of the pressure equation and the gravity flux follow from rAtU.
*/
func (fr *FluidRegion) updateRAU(consistent bool) {
	var (
		m    = fr.Mesh
		A    = fr.UEqn.A()
		dims = fr.UEqn.Dims.Div(fr.U.Dims).Inv()
	)
	fr.RAU = cellField("rAU", dims, m, func(c int) float64 { return 1. / A[c] })
	fr.RAtU, fr.DrAU = fr.RAU, nil
	if consistent {
		H1 := fr.UEqn.H1()
		fr.RAtU = cellField("rAtU", dims, m, func(c int) float64 {
			return 1. / math.Max(A[c]-H1[c], 0.1*A[c])
		})
		fr.DrAU = cellField("drAU", dims, m, func(c int) float64 {
			return fr.RAtU.Internal[c] - fr.RAU.Internal[c]
		})
	}
	fr.RhorAUf = fvc.Interpolate(fr.RAtU)
	fr.RhorAUf.Name, fr.RhorAUf.Dims = "rhorAUf", fr.Rhof.Dims.Mul(dims)
	for f, rhof := range fr.Rhof.Values {
		fr.RhorAUf.Values[f] *= rhof
		fr.GravityFlux.Values[f] = -fr.RhorAUf.Values[f] * fr.GravityFluxPotential.Values[f]
	}
}

// cellField is a calculated field from a cell function, boundary values are taken from the adjacent cell
func cellField(name string, dims types.Dimensions, m *mesh.Mesh, fn func(c int) float64) (f *fields.VolScalarField) {
	f = fields.NewCalculatedScalarField(name, dims, m, 0)
	for c := range f.Internal {
		f.Internal[c] = fn(c)
	}
	for b := range f.Boundary {
		f.Boundary[b] = f.Internal[m.Owner[b+m.NInternalFaces]]
	}
	return
}
