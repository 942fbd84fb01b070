// Package fvc evaluates explicit finite volume operators on existing fields
package fvc

import (
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gofv/fields"
	"github.com/notargets/gofv/mesh"
	"github.com/notargets/gofv/types"
)

// InterpolateValues is linear interpolation of cell values to every face,
// boundary faces take the supplied boundary values
func InterpolateValues(m *mesh.Mesh, internal, boundary []float64) (ff []float64) {
	ff = make([]float64, m.NFaces())
	for f := 0; f < m.NInternalFaces; f++ {
		w := m.Weights[f]
		ff[f] = w*internal[m.Owner[f]] + (1-w)*internal[m.Neighbour[f]]
	}
	for b, v := range boundary {
		if !m.EmptyFace[b] {
			ff[b+m.NInternalFaces] = v
		}
	}
	return
}

func Interpolate(vf *fields.VolScalarField) *fields.SurfaceScalarField {
	sf := fields.NewSurfaceScalarField(vf.Name+"f", vf.Dims, vf.Mesh, 0)
	sf.Values = InterpolateValues(vf.Mesh, vf.Internal, vf.Boundary)
	return sf
}

func InterpolateVectorValues(m *mesh.Mesh, internal, boundary []types.Vec3) (ff []types.Vec3) {
	ff = make([]types.Vec3, m.NFaces())
	for f := 0; f < m.NInternalFaces; f++ {
		w := m.Weights[f]
		ff[f] = internal[m.Owner[f]].Scale(w).Add(internal[m.Neighbour[f]].Scale(1 - w))
	}
	for b, v := range boundary {
		if !m.EmptyFace[b] {
			ff[b+m.NInternalFaces] = v
		}
	}
	return
}

func InterpolateVector(vf *fields.VolVectorField) []types.Vec3 {
	return InterpolateVectorValues(vf.Mesh, vf.Internal, vf.Boundary)
}

// Flux is rhof*(interpolate(U)·Sf), a nil rhof gives the volumetric flux
func Flux(rhof *fields.SurfaceScalarField, U *fields.VolVectorField) (phi *fields.SurfaceScalarField) {
	var (
		m    = U.Mesh
		Uf   = InterpolateVector(U)
		dims = U.Dims.Mul(types.DimArea)
	)
	if rhof != nil {
		dims = dims.Mul(rhof.Dims)
	}
	phi = fields.NewSurfaceScalarField("phi", dims, m, 0)
	for f := range phi.Values {
		if f >= m.NInternalFaces && m.EmptyFace[f-m.NInternalFaces] {
			continue
		}
		phi.Values[f] = Uf[f].Dot(m.Sf[f])
		if rhof != nil {
			phi.Values[f] *= rhof.Values[f]
		}
	}
	return
}

// SurfaceIntegrate sums a face field over the faces of each cell, owner positive
func SurfaceIntegrate(m *mesh.Mesh, ff []float64) (sum []float64) {
	sum = make([]float64, m.NCells)
	for f := 0; f < m.NInternalFaces; f++ {
		sum[m.Owner[f]] += ff[f]
		sum[m.Neighbour[f]] -= ff[f]
	}
	for f := m.NInternalFaces; f < m.NFaces(); f++ {
		if !m.EmptyFace[f-m.NInternalFaces] {
			sum[m.Owner[f]] += ff[f]
		}
	}
	return
}

// Div is the Gauss divergence of a face flux, per unit volume
func Div(ssf *fields.SurfaceScalarField) (div []float64) {
	m := ssf.Mesh
	div = SurfaceIntegrate(m, ssf.Values)
	floats.Div(div, m.V)
	return
}

// DivVectorFlux is the divergence of a face vector flux, e.g. Sf·T_f
func DivVectorFlux(m *mesh.Mesh, ff []types.Vec3) (div []types.Vec3) {
	div = make([]types.Vec3, m.NCells)
	for f := 0; f < m.NInternalFaces; f++ {
		div[m.Owner[f]] = div[m.Owner[f]].Add(ff[f])
		div[m.Neighbour[f]] = div[m.Neighbour[f]].Sub(ff[f])
	}
	for f := m.NInternalFaces; f < m.NFaces(); f++ {
		if !m.EmptyFace[f-m.NInternalFaces] {
			div[m.Owner[f]] = div[m.Owner[f]].Add(ff[f])
		}
	}
	for c := range div {
		div[c] = div[c].Scale(1. / m.V[c])
	}
	return
}

/*
Grad is the Gauss linear gradient. Boundary values of the gradient take the
owner gradient with its normal component replaced by the face normal gradient.
*/
func Grad(vf *fields.VolScalarField) (g *fields.VolVectorField) {
	var (
		m    = vf.Mesh
		ff   = InterpolateValues(m, vf.Internal, vf.Boundary)
		nInt = m.NInternalFaces
	)
	g = fields.NewCalculatedVectorField("grad("+vf.Name+")", vf.Dims.Div(types.DimLength), m, types.Vec3{})
	for f := 0; f < nInt; f++ {
		s := m.Sf[f].Scale(ff[f])
		g.Internal[m.Owner[f]] = g.Internal[m.Owner[f]].Add(s)
		g.Internal[m.Neighbour[f]] = g.Internal[m.Neighbour[f]].Sub(s)
	}
	for f := nInt; f < m.NFaces(); f++ {
		if !m.EmptyFace[f-nInt] {
			g.Internal[m.Owner[f]] = g.Internal[m.Owner[f]].Add(m.Sf[f].Scale(ff[f]))
		}
	}
	for c := range g.Internal {
		g.Internal[c] = g.Internal[c].Scale(1. / m.V[c])
	}
	for b := range g.Boundary {
		f := b + nInt
		gP := g.Internal[m.Owner[f]]
		if m.EmptyFace[b] {
			g.Boundary[b] = gP
			continue
		}
		n := m.Sf[f].Scale(1. / m.MagSf[f])
		g.Boundary[b] = gP.Add(n.Scale(vf.SnGradBoundary(b) - n.Dot(gP)))
	}
	return
}

// GradVector is the Gauss linear gradient of a vector field, (grad U)_ij = d U_j / d x_i
func GradVector(vf *fields.VolVectorField) (g []types.Tensor) {
	var (
		m    = vf.Mesh
		Uf   = InterpolateVector(vf)
		nInt = m.NInternalFaces
	)
	g = make([]types.Tensor, m.NCells)
	for f := 0; f < nInt; f++ {
		s := m.Sf[f].Outer(Uf[f])
		g[m.Owner[f]] = g[m.Owner[f]].Add(s)
		g[m.Neighbour[f]] = g[m.Neighbour[f]].Add(s.Scale(-1))
	}
	for f := nInt; f < m.NFaces(); f++ {
		if !m.EmptyFace[f-nInt] {
			g[m.Owner[f]] = g[m.Owner[f]].Add(m.Sf[f].Outer(Uf[f]))
		}
	}
	for c := range g {
		g[c] = g[c].Scale(1. / m.V[c])
	}
	return
}

/*
SnGrad is the face normal gradient. The corrected form adds the explicit
non-orthogonal part from the interpolated cell gradient.
*/
func SnGrad(vf *fields.VolScalarField, corrected bool) (sg *fields.SurfaceScalarField) {
	var (
		m    = vf.Mesh
		nInt = m.NInternalFaces
		gf   []types.Vec3
	)
	sg = fields.NewSurfaceScalarField("snGrad("+vf.Name+")", vf.Dims.Div(types.DimLength), m, 0)
	if corrected {
		g := Grad(vf)
		gf = InterpolateVector(g)
	}
	for f := 0; f < nInt; f++ {
		sg.Values[f] = (vf.Internal[m.Neighbour[f]] - vf.Internal[m.Owner[f]]) * m.NonOrthDeltaCoeffs[f]
		if corrected {
			sg.Values[f] += m.NonOrthCorrVectors[f].Dot(gf[f])
		}
	}
	for b := range vf.Boundary {
		if !m.EmptyFace[b] {
			sg.Values[b+nInt] = vf.SnGradBoundary(b)
		}
	}
	return
}

// DomainIntegrate is Σ V_c x_c
func DomainIntegrate(m *mesh.Mesh, x []float64) float64 {
	return floats.Dot(m.V, x)
}

// VolumeAverage is DomainIntegrate divided by the total volume
func VolumeAverage(m *mesh.Mesh, x []float64) float64 {
	return floats.Dot(m.V, x) / floats.Sum(m.V)
}

// DdtEuler is the first order backward difference of cell values
func DdtEuler(cur, old []float64, deltaT float64) (ddt []float64) {
	ddt = make([]float64, len(cur))
	floats.SubTo(ddt, cur, old)
	floats.Scale(1./deltaT, ddt)
	return
}
