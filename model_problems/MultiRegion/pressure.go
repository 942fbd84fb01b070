package MultiRegion

import (
	"fmt"
	"io"
	"math"

	"github.com/notargets/gofv/control"
	"github.com/notargets/gofv/fields"
	"github.com/notargets/gofv/fvc"
	"github.com/notargets/gofv/fvm"
	"github.com/notargets/gofv/types"
	"github.com/notargets/gofv/utils"
)

/*
solvePressure is one pressure correction of the region. The flux predicted
from the momentum matrix without the pressure gradient is corrected by the
solution of
	ddt(psi p_rgh) + div(phiHbyA) - laplacian(rhorAUf, p_rgh) = 0
after which the cell velocity and the absolute pressure follow.
*/
func (fr *FluidRegion) solvePressure(sc *control.SolutionControl, ts fvm.TimeState, w io.Writer) (err error) {
	var (
		m        = fr.Mesh
		rp       = sc.Region()
		p_rgh    = fr.P_rgh
		th       = fr.Thermo
		HbyA     = fr.constrainHbyA()
		phiHbyA  = fr.predictedFlux(HbyA, sc.EquationRelaxation(fr.U.Name))
		transCmp = ts.Transient() && !th.Incompressible()
		lap      *fvm.ScalarMatrix
	)
	if rp.Consistent {
		var (
			snGradp = fvc.SnGrad(p_rgh, true)
			drAUf   = fvc.Interpolate(fr.DrAU)
		)
		eachFace(fr, func(f int) {
			phiHbyA.Values[f] += fr.Rhof.Values[f] * drAUf.Values[f] * snGradp.Values[f] * m.MagSf[f]
		})
		for c, gp := range fr.GradP_rgh.Internal {
			HbyA.Internal[c] = HbyA.Internal[c].Add(gp.Scale(fr.DrAU.Internal[c]))
		}
	}
	if p_rgh.NeedReference() {
		if _, err = adjustPhi(phiHbyA, fr.U); err != nil {
			return fmt.Errorf("region %s: %w", fr.Name, err)
		}
	}
	for f, gf := range fr.GravityFlux.Values {
		phiHbyA.Values[f] += gf
	}
	constrainPressure(p_rgh, fr.Rho, fr.U, phiHbyA, fr.RhorAUf)

	divPhiHbyA := fvc.Div(phiHbyA)
	for sc.CorrectNonOrthogonal() {
		lap = fvm.Laplacian(fr.RhorAUf, p_rgh)
		pEqn := fvm.NewScalarMatrix(p_rgh, lap.Dims)
		if transCmp {
			fr.compressibleDdt(pEqn, ts.DeltaT)
		}
		pEqn.AddExplicit(divPhiHbyA, lap.Dims)
		pEqn.Sub(lap)
		pEqn.SetReference(rp.PRefCell, rp.PRefValue, false)
		sc.SolveScalar(pEqn, sc.FinalInnerIter())
		if sc.FinalNonOrthogonalIter() {
			flux := lap.Flux()
			for f := range fr.Phi.Values {
				fr.Phi.Values[f] = phiHbyA.Values[f] - flux.Values[f]
			}
		}
	}
	fr.initialState = false

	// Velocity from the unrelaxed pressure
	gradp := fvc.Grad(p_rgh)
	for c := range fr.U.Internal {
		f := gradp.Internal[c].Add(fr.GravityForce.Internal[c])
		fr.U.Internal[c] = HbyA.Internal[c].Sub(f.Scale(fr.RAtU.Internal[c]))
	}
	fr.U.CorrectBoundaryConditions()
	fr.updateK()

	p_rgh.Relax(sc.FieldRelaxation(p_rgh.Name))
	p_rgh.CorrectBoundaryConditions()
	fr.updatePressure()
	fr.incompressibleContinuityErrs(w, ts.DeltaT)
	return
}

/*
constrainHbyA is rAU H of the momentum matrix. On patches with a fixed
velocity it takes the velocity, elsewhere the value of the adjacent cell.
*/
func (fr *FluidRegion) constrainHbyA() (HbyA *fields.VolVectorField) {
	var (
		m    = fr.Mesh
		H    = fr.UEqn.H()
		nInt = m.NInternalFaces
	)
	HbyA = fields.NewCalculatedVectorField("HbyA", types.DimVelocity, m, types.Vec3{})
	for c, h := range H {
		HbyA.Internal[c] = h.Scale(fr.RAU.Internal[c])
	}
	for b := range HbyA.Boundary {
		if fixedValue(fr.U.BoundaryKind(b)) {
			HbyA.Boundary[b] = fr.U.Boundary[b]
		} else {
			HbyA.Boundary[b] = HbyA.Internal[m.Owner[b+nInt]]
		}
	}
	return
}

/*
predictedFlux is rhof interpolate(HbyA)·Sf. After the first iteration the
interior faces carry the correction (1 - alphaU)(phi0 - rhof interpolate(U0)·Sf)
with the values of the previous iteration, which keeps the converged flux
independent of the velocity relaxation.
*/
func (fr *FluidRegion) predictedFlux(HbyA *fields.VolVectorField, alphaU float64) (phiHbyA *fields.SurfaceScalarField) {
	var (
		m     = fr.Mesh
		HbyAf = fvc.InterpolateVector(HbyA)
	)
	phiHbyA = fields.NewSurfaceScalarField("phiHbyA", types.DimMassFlux, m, 0)
	eachFace(fr, func(f int) {
		phiHbyA.Values[f] = fr.Rhof.Values[f] * HbyAf[f].Dot(m.Sf[f])
	})
	if fr.initialState || alphaU >= 1 {
		return
	}
	var (
		phi0 = fr.Phi.PrevIter()
		U0f  = fvc.InterpolateVectorValues(m, fr.U.PrevIter(), fr.U.PrevIterBoundary())
	)
	for f := 0; f < m.NInternalFaces; f++ {
		phiHbyA.Values[f] += (1 - alphaU) * (phi0[f] - fr.Rhof.Values[f]*U0f[f].Dot(m.Sf[f]))
	}
	return
}

// eachFace calls fn for the interior faces and the non-empty boundary faces
func eachFace(fr *FluidRegion, fn func(f int)) {
	m := fr.Mesh
	for f := 0; f < m.NFaces(); f++ {
		if f >= m.NInternalFaces && m.EmptyFace[f-m.NInternalFaces] {
			continue
		}
		fn(f)
	}
}

/*
adjustPhi scales the outflow through the boundaries without a fixed velocity
so that a region with no fixed pressure conserves mass. It reports whether
the region is closed, with no flux through any boundary.
*/
func adjustPhi(phi *fields.SurfaceScalarField, U *fields.VolVectorField) (closed bool, err error) {
	var (
		m                                   = phi.Mesh
		nInt                                = m.NInternalFaces
		massIn, fixedMassOut, adjustableOut float64
		totalFlux                           = utils.VSMALL
	)
	for f := 0; f < nInt; f++ {
		totalFlux += math.Abs(phi.Values[f])
	}
	for b := 0; b < m.NBoundaryFaces(); b++ {
		if m.EmptyFace[b] {
			continue
		}
		flux := phi.Values[b+nInt]
		switch {
		case flux < 0:
			massIn -= flux
		case fixedValue(U.BoundaryKind(b)):
			fixedMassOut += flux
		default:
			adjustableOut += flux
		}
	}
	massCorr := 1.
	magAdjustableOut := math.Abs(adjustableOut)
	switch {
	case magAdjustableOut > utils.VSMALL && magAdjustableOut/totalFlux > utils.SMALL:
		massCorr = (massIn - fixedMassOut) / adjustableOut
	case math.Abs(fixedMassOut-massIn)/totalFlux > 1.e-8:
		return false, fmt.Errorf("continuity error cannot be removed by adjusting the outflow, "+
			"check the velocity boundary conditions: total flux %g, specified mass inflow %g, "+
			"specified mass outflow %g, adjustable mass outflow %g",
			totalFlux, massIn, fixedMassOut, adjustableOut)
	}
	for b := 0; b < m.NBoundaryFaces(); b++ {
		f := b + nInt
		if m.EmptyFace[b] || fixedValue(U.BoundaryKind(b)) || phi.Values[f] <= 0 {
			continue
		}
		phi.Values[f] *= massCorr
	}
	closed = massIn/totalFlux < utils.SMALL &&
		math.Abs(fixedMassOut)/totalFlux < utils.SMALL &&
		magAdjustableOut/totalFlux < utils.SMALL
	return
}

/*
constrainPressure sets the gradient of the fixed flux pressure patches so
that the corrected flux equals the flux of the boundary velocity,
	snGrad(p_rgh) = (phiHbyA - rho U·Sf) / (|Sf| rhorAUf)
*/
func constrainPressure(p_rgh, rho *fields.VolScalarField, U *fields.VolVectorField,
	phiHbyA, rhorAUf *fields.SurfaceScalarField) {
	var (
		m    = p_rgh.Mesh
		nInt = m.NInternalFaces
	)
	for b := range p_rgh.Boundary {
		if m.EmptyFace[b] || p_rgh.BoundaryKind(b) != types.BC_FixedFluxPressure {
			continue
		}
		f := b + nInt
		p_rgh.Gradient[b] = (phiHbyA.Values[f] - rho.Boundary[b]*U.Boundary[b].Dot(m.Sf[f])) /
			(m.MagSf[f] * utils.StabiliseDivisor(rhorAUf.Values[f], utils.VSMALL))
	}
}

/*
compressibleDdt adds psi correction(ddt(p_rgh)) + ddt(rho) to the pressure
equation, the implicit part is psi/dt and the explicit part uses Euler.
*/
func (fr *FluidRegion) compressibleDdt(pEqn *fvm.ScalarMatrix, deltaT float64) {
	var (
		m   = fr.Mesh
		psi = fr.Thermo.Psi.Internal
		p   = fr.P_rgh.Internal
	)
	for c, v := range m.V {
		d := psi[c] * v / deltaT
		pEqn.Diag[c] += d
		pEqn.Source[c] += d * p[c]
	}
	if fr.Rho.NOldTimes() > 0 {
		pEqn.AddExplicit(fvc.DdtEuler(fr.Rho.Internal, fr.Rho.OldTime(1), deltaT), pEqn.Dims)
	}
}

/*
updatePressure sets p = p_rgh + rho gh + pOperating. With pCorrLimit set the
change of the interior pressure is bounded by PCorrMax, pCorrLimit times the
largest initial pressure.
*/
func (fr *FluidRegion) updatePressure() {
	p := fr.Thermo.P
	if fr.PCorrMax <= 0 {
		fr.absolutePressure(p, fr.HydroStaticPressure)
		return
	}
	prev := append([]float64(nil), p.Internal...)
	fr.absolutePressure(p, fr.HydroStaticPressure)
	for c, p0 := range prev {
		p.Internal[c] = p0 + math.Max(-fr.PCorrMax, math.Min(fr.PCorrMax, p.Internal[c]-p0))
	}
}
