package fvm

import (
	"fmt"
	"strings"

	"github.com/notargets/gofv/fields"
	"github.com/notargets/gofv/fvc"
	"github.com/notargets/gofv/mesh"
	"github.com/notargets/gofv/types"
)

type DdtScheme uint8

const (
	SteadyState DdtScheme = iota
	Euler
	Backward
)

func (s DdtScheme) String() string {
	return [...]string{"steadyState", "Euler", "backward"}[s]
}

func NewDdtScheme(name string) (s DdtScheme, err error) {
	switch strings.ToLower(name) {
	case "steadystate":
		s = SteadyState
	case "euler":
		s = Euler
	case "backward":
		s = Backward
	default:
		err = fmt.Errorf("unknown ddt scheme %q, choose from steadyState, Euler, backward", name)
	}
	return
}

// TimeState carries what the time derivative needs from the time control
type TimeState struct {
	Scheme  DdtScheme
	DeltaT  float64
	DeltaT0 float64 // Previous step size, used by the backward scheme
}

func (ts TimeState) Transient() bool { return ts.Scheme != SteadyState }

/*
backwardCoeffs are the second order weights for variable steps,
ddt = (c psi - c0 psi0 + c00 psi00)/dt. The first step, without an old-old
level, falls back to Euler.
*/
func (ts TimeState) backwardCoeffs(nOld int) (c, c0, c00 float64) {
	if ts.Scheme != Backward || nOld < 2 || ts.DeltaT0 <= 0 {
		return 1, 1, 0
	}
	dt, dt0 := ts.DeltaT, ts.DeltaT0
	c = 1 + dt/(dt+dt0)
	c00 = dt * dt / (dt0 * (dt + dt0))
	c0 = c + c00
	return
}

// Ddt is the implicit time derivative of rho*psi, a nil rho is unity
func Ddt(rho *fields.VolScalarField, psi *fields.VolScalarField, ts TimeState) (M *ScalarMatrix) {
	dims := psi.Dims.Div(types.DimTime)
	if rho != nil {
		dims = dims.Mul(rho.Dims)
	}
	M = NewScalarMatrix(psi, dims)
	if !ts.Transient() {
		return
	}
	var (
		m           = psi.Mesh
		rDeltaT     = 1. / ts.DeltaT
		c, c0, c00  = ts.backwardCoeffs(psi.NOldTimes())
		psi0, psi00 = psi.OldTime(1), psi.OldTime(2)
		r, r0, r00  = density(rho, 0), density(rho, 1), density(rho, 2)
	)
	for i, v := range m.V {
		M.Diag[i] = c * rDeltaT * r(i) * v
		M.Source[i] = rDeltaT * v * (c0*r0(i)*psi0[i] - c00*r00(i)*psi00[i])
	}
	return
}

func DdtVector(rho *fields.VolScalarField, psi *fields.VolVectorField, ts TimeState) (M *VectorMatrix) {
	dims := psi.Dims.Div(types.DimTime)
	if rho != nil {
		dims = dims.Mul(rho.Dims)
	}
	M = NewVectorMatrix(psi, dims)
	if !ts.Transient() {
		return
	}
	var (
		m           = psi.Mesh
		rDeltaT     = 1. / ts.DeltaT
		c, c0, c00  = ts.backwardCoeffs(psi.NOldTimes())
		psi0, psi00 = psi.OldTime(1), psi.OldTime(2)
		r, r0, r00  = density(rho, 0), density(rho, 1), density(rho, 2)
	)
	for i, v := range m.V {
		M.Diag[i] = c * rDeltaT * r(i) * v
		M.Source[i] = psi0[i].Scale(c0 * r0(i)).Sub(psi00[i].Scale(c00 * r00(i))).Scale(rDeltaT * v)
	}
	return
}

func density(rho *fields.VolScalarField, level int) func(i int) float64 {
	if rho == nil {
		return func(int) float64 { return 1 }
	}
	vals := rho.OldTime(level)
	return func(i int) float64 { return vals[i] }
}

/*
Div is the upwind convection of psi by the face flux phi. The bounded form
subtracts psi*div(phi), removing the continuity error from the operator.
*/
func Div(phi *fields.SurfaceScalarField, psi *fields.VolScalarField, bounded bool) (M *ScalarMatrix) {
	var (
		m    = psi.Mesh
		nInt = m.NInternalFaces
	)
	M = NewScalarMatrix(psi, phi.Dims.Mul(psi.Dims).Div(types.DimVolume))
	upwindCoeffs(M.Diag, M.Lower, M.Upper, m, phi.Values)
	for b := range M.InternalCoeffs {
		if m.EmptyFace[b] {
			continue
		}
		F := phi.Values[b+nInt]
		vic, vbc := psi.ValueCoeffs(b)
		M.InternalCoeffs[b] = F * vic
		M.BoundaryCoeffs[b] = -F * vbc
	}
	if bounded {
		divPhi := fvc.Div(phi)
		for i, v := range m.V {
			M.Diag[i] -= v * divPhi[i]
		}
	}
	return
}

func DivVector(phi *fields.SurfaceScalarField, psi *fields.VolVectorField, bounded bool) (M *VectorMatrix) {
	var (
		m    = psi.Mesh
		nInt = m.NInternalFaces
	)
	M = NewVectorMatrix(psi, phi.Dims.Mul(psi.Dims).Div(types.DimVolume))
	upwindCoeffs(M.Diag, M.Lower, M.Upper, m, phi.Values)
	for b := range M.InternalCoeffs {
		if m.EmptyFace[b] {
			continue
		}
		F := phi.Values[b+nInt]
		vic, vbc := psi.ValueCoeffs(b)
		M.InternalCoeffs[b] = F * vic
		M.BoundaryCoeffs[b] = vbc.Scale(-F)
	}
	if bounded {
		divPhi := fvc.Div(phi)
		for i, v := range m.V {
			M.Diag[i] -= v * divPhi[i]
		}
	}
	return
}

func upwindCoeffs(diag, lower, upper []float64, m *mesh.Mesh, phi []float64) {
	for f := 0; f < m.NInternalFaces; f++ {
		var w float64
		if phi[f] >= 0 {
			w = 1
		}
		lower[f] = -w * phi[f]
		upper[f] = lower[f] + phi[f]
		diag[m.Owner[f]] -= lower[f]
		diag[m.Neighbour[f]] -= upper[f]
	}
}

// laplacianCoeffs fills the two point part, gammaMagSf is per face
func laplacianCoeffs(diag, lower, upper []float64, m *mesh.Mesh, gammaMagSf []float64) {
	for f := 0; f < m.NInternalFaces; f++ {
		c := gammaMagSf[f] * m.NonOrthDeltaCoeffs[f]
		lower[f], upper[f] = c, c
		diag[m.Owner[f]] -= c
		diag[m.Neighbour[f]] -= c
	}
}

func nonOrthogonal(m *mesh.Mesh) bool {
	for f := 0; f < m.NInternalFaces; f++ {
		if m.NonOrthCorrVectors[f].MagSqr() > 1.e-20 {
			return true
		}
	}
	return false
}

// subtractDivergence removes the explicit face flux corr from the source
func subtractDivergence(source []float64, m *mesh.Mesh, corr []float64) {
	for f := 0; f < m.NInternalFaces; f++ {
		source[m.Owner[f]] -= corr[f]
		source[m.Neighbour[f]] += corr[f]
	}
	for f := m.NInternalFaces; f < m.NFaces(); f++ {
		if !m.EmptyFace[f-m.NInternalFaces] {
			source[m.Owner[f]] -= corr[f]
		}
	}
}

/*
Laplacian is the Gauss linear corrected laplacian of psi with face diffusivity
gammaf. The non-orthogonal part is explicit, it enters the source and the face
flux correction.
*/
func Laplacian(gammaf *fields.SurfaceScalarField, psi *fields.VolScalarField) (M *ScalarMatrix) {
	var (
		m          = psi.Mesh
		nInt       = m.NInternalFaces
		gammaMagSf = make([]float64, m.NFaces())
	)
	M = NewScalarMatrix(psi, gammaf.Dims.Mul(psi.Dims).Div(types.DimArea))
	for f := range gammaMagSf {
		gammaMagSf[f] = gammaf.Values[f] * m.MagSf[f]
	}
	laplacianCoeffs(M.Diag, M.Lower, M.Upper, m, gammaMagSf)
	for b := range M.InternalCoeffs {
		if m.EmptyFace[b] {
			continue
		}
		gic, gbc := psi.GradientCoeffs(b)
		M.InternalCoeffs[b] = gammaMagSf[b+nInt] * gic
		M.BoundaryCoeffs[b] = -gammaMagSf[b+nInt] * gbc
	}
	if nonOrthogonal(m) {
		gradf := fvc.InterpolateVector(fvc.Grad(psi))
		M.FaceFluxCorrection = make([]float64, m.NFaces())
		for f := 0; f < nInt; f++ {
			M.FaceFluxCorrection[f] = gammaMagSf[f] * m.NonOrthCorrVectors[f].Dot(gradf[f])
		}
		subtractDivergence(M.Source, m, M.FaceFluxCorrection)
	}
	return
}

/*
LaplacianTensor is the laplacian with an anisotropic diffusivity. The part of
Sf·gamma along the face normal is implicit, the remainder is an explicit
correction using the interpolated gradient.
*/
func LaplacianTensor(gamma *fields.VolSymmTensorField, psi *fields.VolScalarField) (M *ScalarMatrix) {
	var (
		m          = psi.Mesh
		nInt       = m.NInternalFaces
		nFaces     = m.NFaces()
		gammaMagSf = make([]float64, nFaces)
		sfGammaCor = make([]types.Vec3, nFaces)
		grad       = fvc.Grad(psi)
		gradf      = fvc.InterpolateVector(grad)
	)
	M = NewScalarMatrix(psi, gamma.Dims.Mul(psi.Dims).Div(types.DimArea))
	for f := 0; f < nFaces; f++ {
		var gf types.SymmTensor
		if f < nInt {
			w := m.Weights[f]
			gf = gamma.Internal[m.Owner[f]].Scale(w).Add(gamma.Internal[m.Neighbour[f]].Scale(1 - w))
		} else {
			gf = gamma.Internal[m.Owner[f]]
		}
		var (
			sfGamma = gf.Dot(m.Sf[f])
			n       = m.Sf[f].Scale(1. / m.MagSf[f])
		)
		gammaMagSf[f] = sfGamma.Dot(n)
		sfGammaCor[f] = sfGamma.Sub(n.Scale(gammaMagSf[f]))
	}
	laplacianCoeffs(M.Diag, M.Lower, M.Upper, m, gammaMagSf)
	for b := range M.InternalCoeffs {
		if m.EmptyFace[b] {
			continue
		}
		gic, gbc := psi.GradientCoeffs(b)
		M.InternalCoeffs[b] = gammaMagSf[b+nInt] * gic
		M.BoundaryCoeffs[b] = -gammaMagSf[b+nInt] * gbc
	}
	M.FaceFluxCorrection = make([]float64, nFaces)
	for f := 0; f < nFaces; f++ {
		if f >= nInt {
			if !m.EmptyFace[f-nInt] {
				M.FaceFluxCorrection[f] = sfGammaCor[f].Dot(grad.Boundary[f-nInt])
			}
			continue
		}
		M.FaceFluxCorrection[f] = sfGammaCor[f].Dot(gradf[f]) +
			gammaMagSf[f]*m.NonOrthCorrVectors[f].Dot(gradf[f])
	}
	subtractDivergence(M.Source, m, M.FaceFluxCorrection)
	return
}

func LaplacianVector(gammaf *fields.SurfaceScalarField, psi *fields.VolVectorField) (M *VectorMatrix) {
	var (
		m          = psi.Mesh
		nInt       = m.NInternalFaces
		gammaMagSf = make([]float64, m.NFaces())
	)
	M = NewVectorMatrix(psi, gammaf.Dims.Mul(psi.Dims).Div(types.DimArea))
	for f := range gammaMagSf {
		gammaMagSf[f] = gammaf.Values[f] * m.MagSf[f]
	}
	laplacianCoeffs(M.Diag, M.Lower, M.Upper, m, gammaMagSf)
	for b := range M.InternalCoeffs {
		if m.EmptyFace[b] {
			continue
		}
		gic, gbc := psi.GradientCoeffs(b)
		M.InternalCoeffs[b] = gammaMagSf[b+nInt] * gic
		M.BoundaryCoeffs[b] = gbc.Scale(-gammaMagSf[b+nInt])
	}
	if nonOrthogonal(m) {
		gradU := fvc.GradVector(psi)
		M.FaceFluxCorrection = make([]types.Vec3, m.NFaces())
		for f := 0; f < nInt; f++ {
			w := m.Weights[f]
			gf := gradU[m.Owner[f]].Scale(w).Add(gradU[m.Neighbour[f]].Scale(1 - w))
			corr := gf.LeftDot(m.NonOrthCorrVectors[f]).Scale(gammaMagSf[f])
			M.FaceFluxCorrection[f] = corr
			M.Source[m.Owner[f]] = M.Source[m.Owner[f]].Sub(corr)
			M.Source[m.Neighbour[f]] = M.Source[m.Neighbour[f]].Add(corr)
		}
	}
	return
}

// Sp is the implicit source sp*psi, sp per unit volume
func Sp(sp []float64, dims types.Dimensions, psi *fields.VolScalarField) (M *ScalarMatrix) {
	M = NewScalarMatrix(psi, dims.Mul(psi.Dims))
	for i, v := range psi.Mesh.V {
		M.Diag[i] += v * sp[i]
	}
	return
}

// Su is the explicit source su as an equation term
func Su(su []float64, dims types.Dimensions, psi *fields.VolScalarField) (M *ScalarMatrix) {
	M = NewScalarMatrix(psi, dims)
	return M.AddExplicit(su, dims)
}

func SpVector(sp []float64, dims types.Dimensions, psi *fields.VolVectorField) (M *VectorMatrix) {
	M = NewVectorMatrix(psi, dims.Mul(psi.Dims))
	for i, v := range psi.Mesh.V {
		M.Diag[i] += v * sp[i]
	}
	return
}

func SuVector(su []types.Vec3, dims types.Dimensions, psi *fields.VolVectorField) (M *VectorMatrix) {
	M = NewVectorMatrix(psi, dims)
	return M.AddExplicit(su, dims)
}
