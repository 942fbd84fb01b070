package MultiRegion

import (
	"fmt"
	"io"

	"github.com/notargets/gofv/control"
	"github.com/notargets/gofv/fvc"
	"github.com/notargets/gofv/utils"
)

/*
updateDensity limits the thermodynamic density, reports how far the solver
density was from it and takes it over with the field relaxation of rho. The
face density, the hydrostatic pressure and the buoyancy terms follow.
*/
func (fr *FluidRegion) updateDensity(sc *control.SolutionControl, w io.Writer) {
	var (
		rp             = sc.Region()
		rhoMin, rhoMax = rp.RhoMin, rp.RhoMax
	)
	if rhoMin <= 0 {
		rhoMin = utils.SMALL
	}
	if rhoMax <= 0 {
		rhoMax = utils.GREAT
	}
	fr.Thermo.LimitRho(rhoMin, rhoMax)
	fr.compressibleContinuityErrs(w)
	fr.Rho.Assign(fr.Thermo.Rho)
	fr.Rho.Relax(sc.FieldRelaxation(fr.Rho.Name))

	fr.Rhof.StorePrevIter()
	fr.Rhof.Assign(fvc.Interpolate(fr.Rho))
	if !sc.Transient || sc.Props.SIMPLErho {
		fr.Rhof.Relax(faceDensityRelaxation(
			sc.EquationRelaxation(fr.U.Name),
			sc.FieldRelaxation(fr.P_rgh.Name),
			sc.EquationRelaxation(fr.Thermo.H.Name)))
	}
	fr.updateHydroStaticPressure()
	fr.updateGravity()
	if sc.Transient {
		fr.updateHydroStaticDensity()
	}
	if rp.MaintainInitialMass && fr.P_rgh.NeedReference() {
		fr.maintainInitialMass(w)
	}
}

/*
faceDensityRelaxation is the relaxation factor of the face density between
iterations, the product UUrf² pUrf hUrf of the velocity equation, the p_rgh
field and the enthalpy equation factors.
TODO: replace the product with a factor derived from the linearised face
density change of the pressure correction, the product over-damps cases
with strong buoyancy.
*/
func faceDensityRelaxation(UUrf, pUrf, hUrf float64) float64 {
	return UUrf * UUrf * pUrf * hUrf
}

// updateHydroStaticDensity is psi (rho gh + pOperating)
func (fr *FluidRegion) updateHydroStaticDensity() {
	var (
		psi = fr.Thermo.Psi
		hsp = fr.HydroStaticPressure
	)
	for c, ps := range psi.Internal {
		fr.HydroStaticDensity.Internal[c] = ps * (hsp.Internal[c] + fr.POperating)
	}
	for b, ps := range psi.Boundary {
		fr.HydroStaticDensity.Boundary[b] = ps * (hsp.Boundary[b] + fr.POperating)
	}
}

/*
maintainInitialMass shifts the pressure of a region without a fixed pressure
level by the mass deficit over the compressibility, the integral of psi.
The shift is uniform, p_rgh follows from p. Regions whose compressibility
does not exceed SMALL are left alone.
*/
func (fr *FluidRegion) maintainInitialMass(w io.Writer) (imbalance float64) {
	var (
		m  = fr.Mesh
		th = fr.Thermo
		p  = th.P
	)
	compressibility := fvc.DomainIntegrate(m, th.Psi.Internal)
	if compressibility <= utils.SMALL {
		return
	}
	imbalance = fr.InitialMass - fvc.DomainIntegrate(m, fr.Rho.Internal)
	dp := imbalance / compressibility
	for c := range fr.P_rgh.Internal {
		fr.P_rgh.Internal[c] = p.Internal[c] + dp - fr.POperating - fr.HydroStaticPressure.Internal[c]
	}
	fr.P_rgh.CorrectBoundaryConditions()
	fr.absolutePressure(p, fr.HydroStaticPressure)
	fmt.Fprintf(w, "Mass Imbalance = %g\n\n", imbalance)
	return
}
