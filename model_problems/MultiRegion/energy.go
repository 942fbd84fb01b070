package MultiRegion

import (
	"github.com/notargets/gofv/control"
	"github.com/notargets/gofv/fields"
	"github.com/notargets/gofv/fvc"
	"github.com/notargets/gofv/fvm"
)

/*
solveEnergy solves the sensible enthalpy equation of the fluid
	ddt(rho, h) + div(phi, h) + ddt(rho, K) + div(phi, K) - laplacian(alphaEff, h)
		= rho U·g + Qdot + div(sum_i J_i hs_i) + radiation + fvOptions
and updates the thermodynamic state from the new enthalpy.
*/
func (fr *FluidRegion) solveEnergy(sc *control.SolutionControl, ts fvm.TimeState) {
	var (
		m         = fr.Mesh
		th        = fr.Thermo
		h         = th.H
		transient = ts.Transient()
		alphaEff  = fvc.Interpolate(fr.Turbulence.EffectiveDiffusivity(th.Alpha, fr.Rho))
		ke        = fr.kineticEnergyTransport(ts)
		diffusion = fr.speciesDiffusionEnthalpy()
		rhs       = make([]float64, m.NCells)
	)
	for c, rho := range fr.Rho.Internal {
		rhs[c] = rho*fr.U.Internal[c].Dot(fr.g) + fr.Qdot[c] + diffusion[c]
	}
	for sc.CorrectNonOrthogonal() {
		hEqn := fvm.Div(fr.Phi, h, !transient)
		hEqn.Sub(fvm.Laplacian(alphaEff, h))
		hEqn.AddExplicit(ke, dimPowerDensity)
		hEqn.Eq(rhs, dimPowerDensity)
		hEqn.Sub(fr.FvOptions.Source(fr.Rho, h))
		hEqn.Sub(fr.Radiation.Sh(h, th.Cp()))
		if transient {
			hEqn.Add(fvm.Ddt(fr.Rho, h, ts))
		}
		hEqn.Relax(sc.EquationRelaxation(h.Name))
		fr.FvOptions.Constrain(hEqn)
		sc.SolveScalar(hEqn, sc.FinalInnerIter())
		fr.FvOptions.Correct(h)
	}
	th.Correct()
	fr.Radiation.Correct()
}

// kineticEnergyTransport is div(phi, K) and for a transient run ddt(rho, K), both explicit
func (fr *FluidRegion) kineticEnergyTransport(ts fvm.TimeState) (ke []float64) {
	var (
		KFlux = fr.Phi.Clone("phiK")
		Kf    = fvc.Interpolate(fr.K)
	)
	for f, k := range Kf.Values {
		KFlux.Values[f] *= k
	}
	ke = fvc.Div(KFlux)
	if ts.Transient() && fr.K.NOldTimes() > 0 && fr.Rho.NOldTimes() > 0 {
		var (
			rhoK  = make([]float64, len(ke))
			rhoK0 = make([]float64, len(ke))
			K0    = fr.K.OldTime(1)
			rho0  = fr.Rho.OldTime(1)
		)
		for c, k := range fr.K.Internal {
			rhoK[c] = fr.Rho.Internal[c] * k
			rhoK0[c] = rho0[c] * K0[c]
		}
		for c, d := range fvc.DdtEuler(rhoK, rhoK0, ts.DeltaT) {
			ke[c] += d
		}
	}
	return
}

/*
speciesDiffusionEnthalpy is the enthalpy carried by the diffusion of the
species, div(sum_i J_i hs_i) with J_i = rho Deff grad(Y_i) on the faces. The
inert specie carries -sum_i J_i so that the diffusion fluxes sum to zero.
*/
func (fr *FluidRegion) speciesDiffusionEnthalpy() (div []float64) {
	var (
		m    = fr.Mesh
		comp = fr.Thermo.Comp
	)
	if comp == nil {
		return make([]float64, m.NCells)
	}
	var (
		sumJ  = make([]float64, m.NFaces())
		sumJh = make([]float64, m.NFaces())
	)
	for i, Y := range comp.Y {
		if i == comp.InertIndex {
			continue
		}
		var (
			DEff   = fvc.Interpolate(fr.diffusivity(i))
			snGrad = fvc.SnGrad(Y, true)
			hsf    = fr.specieEnthalpyFaces(i)
		)
		eachFace(fr, func(f int) {
			J := DEff.Values[f] * snGrad.Values[f] * m.MagSf[f]
			sumJ[f] += J
			sumJh[f] += J * hsf[f]
		})
	}
	hsInert := fr.specieEnthalpyFaces(comp.InertIndex)
	for f := range sumJh {
		sumJh[f] -= sumJ[f] * hsInert[f]
	}
	div = fvc.SurfaceIntegrate(m, sumJh)
	for c, v := range m.V {
		div[c] /= v
	}
	return
}

// diffusivity is rho (Dm + nut/Sct) of specie i
func (fr *FluidRegion) diffusivity(i int) (DEff *fields.VolScalarField) {
	var (
		Dm  = fr.Thermo.Comp.Species[i].Dm
		nut = fr.Turbulence.Nut()
		Sct = fr.Turbulence.Sct()
	)
	DEff = fr.Rho.Clone("DEff")
	DEff.Dims = fr.Rho.Dims.Mul(nut.Dims)
	for c, rho := range fr.Rho.Internal {
		DEff.Internal[c] = rho * (Dm + nut.Internal[c]/Sct)
	}
	for b, rho := range fr.Rho.Boundary {
		DEff.Boundary[b] = rho * (Dm + nut.Boundary[b]/Sct)
	}
	return
}

// specieEnthalpyFaces is the sensible enthalpy of specie i interpolated to the faces
func (fr *FluidRegion) specieEnthalpyFaces(i int) []float64 {
	var (
		m    = fr.Mesh
		comp = fr.Thermo.Comp
		p, T = fr.Thermo.P, fr.Thermo.T
		hs   = make([]float64, m.NCells)
		hsB  = make([]float64, m.NBoundaryFaces())
	)
	for c := range hs {
		hs[c] = comp.Hs(i, p.Internal[c], T.Internal[c])
	}
	for b := range hsB {
		hsB[b] = comp.Hs(i, p.Boundary[b], T.Boundary[b])
	}
	return fvc.InterpolateValues(m, hs, hsB)
}

/*
solveEnergy solves the enthalpy equation of the solid
	ddt(rho, h) - laplacian(alpha, h) = radiation + fvOptions
within the non-orthogonal corrector loop, with a tensor diffusivity for an
anisotropic solid.
*/
func (sr *SolidRegion) solveEnergy(sc *control.SolutionControl, ts fvm.TimeState) {
	var (
		th = sr.Thermo
		h  = th.H
		cp = sr.FvOptions.Cp()
	)
	for sc.CorrectNonOrthogonal() {
		var hEqn *fvm.ScalarMatrix
		if th.Isotropic() {
			hEqn = fvm.Laplacian(fvc.Interpolate(th.Alpha), h).Negate()
		} else {
			hEqn = fvm.LaplacianTensor(th.AniAlpha, h).Negate()
		}
		hEqn.Sub(sr.FvOptions.Source(th.Rho, h))
		hEqn.Sub(sr.Radiation.Sh(h, cp))
		if ts.Transient() {
			hEqn.Add(fvm.Ddt(th.Rho, h, ts))
		}
		hEqn.Relax(sc.EquationRelaxation(h.Name))
		sr.FvOptions.Constrain(hEqn)
		sc.SolveScalar(hEqn, sc.FinalInnerIter())
		sr.FvOptions.Correct(h)
	}
	th.Correct()
	sr.Radiation.Correct()
}
