package control

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gofv/fields"
	"github.com/notargets/gofv/fvc"
)

// magSurfaceSum is Σ_f |x_f| over the non empty faces of each cell
func magSurfaceSum(ssf *fields.SurfaceScalarField, x []float64) (sum []float64) {
	m := ssf.Mesh
	sum = make([]float64, m.NCells)
	for f, v := range x {
		if f >= m.NInternalFaces && m.EmptyFace[f-m.NInternalFaces] {
			continue
		}
		sum[m.Owner[f]] += math.Abs(v)
		if f < m.NInternalFaces {
			sum[m.Neighbour[f]] += math.Abs(v)
		}
	}
	return
}

/*
CourantNo is the largest and the volume weighted mean Courant number of a
fluid region, 0.5 Σ|phi|/(rho V) dt. A nil rho takes phi as a volume flux.
*/
func CourantNo(phi *fields.SurfaceScalarField, rho *fields.VolScalarField, deltaT float64) (coNum, meanCoNum float64) {
	var (
		m      = phi.Mesh
		sumPhi = magSurfaceSum(phi, phi.Values)
	)
	if rho != nil {
		for c, r := range rho.Internal {
			sumPhi[c] /= math.Max(r, small)
		}
	}
	meanCoNum = 0.5 * floats.Sum(sumPhi) / floats.Sum(m.V) * deltaT
	floats.Div(sumPhi, m.V)
	coNum = 0.5 * floats.Max(sumPhi) * deltaT
	return
}

/*
DiffusionNo is the largest diffusion number of a solid region, the sum over
the faces of a cell of |Sf| deltaCoeff kappa_f/(rho Cp)_f divided by the
cell volume, times dt.
*/
func DiffusionNo(kappa, rhoCp *fields.VolScalarField, deltaT float64) (diNum float64) {
	var (
		m        = kappa.Mesh
		kappaf   = fvc.Interpolate(kappa)
		rhoCpf   = fvc.Interpolate(rhoCp)
		diffFlux = make([]float64, m.NFaces())
	)
	for f := range diffFlux {
		diffFlux[f] = m.MagSf[f] * m.DeltaCoeffs[f] * kappaf.Values[f] / math.Max(rhoCpf.Values[f], small)
	}
	sum := magSurfaceSum(kappaf, diffFlux)
	floats.Div(sum, m.V)
	return floats.Max(sum) * deltaT
}
