package MultiRegion

import (
	"fmt"
	"io"
	"math"

	"github.com/notargets/gofv/fvc"
)

// incompressibleContinuityErrs reports the volume weighted divergence of the volumetric flux phi/rho
func (fr *FluidRegion) incompressibleContinuityErrs(w io.Writer, deltaT float64) (sumLocal, global float64) {
	var (
		m       = fr.Mesh
		contErr = fvc.Div(fr.Phi)
		magErr  = make([]float64, m.NCells)
	)
	for c := range contErr {
		contErr[c] /= fr.Rho.Internal[c]
		magErr[c] = math.Abs(contErr[c])
	}
	sumLocal = deltaT * fvc.VolumeAverage(m, magErr)
	global = deltaT * fvc.VolumeAverage(m, contErr)
	fr.cumulativeContErr += global
	fr.printContinuityErrs(w, sumLocal, global)
	return
}

// compressibleContinuityErrs compares the solver density with the thermodynamic density before it is taken over
func (fr *FluidRegion) compressibleContinuityErrs(w io.Writer) (sumLocal, global float64) {
	var (
		m         = fr.Mesh
		totalMass = fvc.DomainIntegrate(m, fr.Rho.Internal)
		diff      = make([]float64, m.NCells)
		magDiff   = make([]float64, m.NCells)
	)
	for c, rho := range fr.Rho.Internal {
		diff[c] = rho - fr.Thermo.Rho.Internal[c]
		magDiff[c] = math.Abs(diff[c])
	}
	sumLocal = fvc.DomainIntegrate(m, magDiff) / totalMass
	global = fvc.DomainIntegrate(m, diff) / totalMass
	fr.cumulativeContErr += global
	fr.printContinuityErrs(w, sumLocal, global)
	return
}

func (fr *FluidRegion) printContinuityErrs(w io.Writer, sumLocal, global float64) {
	fmt.Fprintf(w, "time step continuity errors (%s) : sum local = %g, global = %g, cumulative = %g\n",
		fr.Name, sumLocal, global, fr.cumulativeContErr)
}
