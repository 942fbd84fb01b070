package fvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofv/fields"
	"github.com/notargets/gofv/mesh"
	"github.com/notargets/gofv/types"
)

func linearField(t *testing.T) (m *mesh.Mesh, phi *fields.VolScalarField) {
	bs := mesh.NewBlockSpec(types.Vec3{}, types.Vec3{3, 3, 1}, [3]int{3, 3, 1}, true)
	m, err := mesh.NewBlockMesh(bs)
	require.NoError(t, err)
	exact := func(x types.Vec3) float64 { return 2*x[0] + 3*x[1] }
	phi = fields.NewVolScalarField("phi", types.Dimless, m, 0)
	for c := range phi.Internal {
		phi.Internal[c] = exact(m.C[c])
	}
	for pi, p := range m.Patches {
		if p.Type != types.PT_Empty {
			phi.Kinds[pi] = types.BC_FixedValue
		}
	}
	for b := range phi.Boundary {
		phi.Boundary[b] = exact(m.Cf[b+m.NInternalFaces])
	}
	return
}

func TestGradient(t *testing.T) {
	m, phi := linearField(t)
	{ // Test Gauss gradient of a linear field is exact
		g := Grad(phi)
		assert.Equal(t, types.DimLength.Inv(), g.Dims)
		for c := range g.Internal {
			assert.InDelta(t, 2., g.Internal[c][0], 1.e-12)
			assert.InDelta(t, 3., g.Internal[c][1], 1.e-12)
			assert.InDelta(t, 0., g.Internal[c][2], 1.e-12)
		}
		for b := range g.Boundary {
			if !m.EmptyFace[b] {
				assert.InDelta(t, 2., g.Boundary[b][0], 1.e-12)
				assert.InDelta(t, 3., g.Boundary[b][1], 1.e-12)
			}
		}
	}
	{ // Test face normal gradient
		sg := SnGrad(phi, true)
		for f := 0; f < m.NInternalFaces; f++ {
			n := m.Sf[f].Scale(1. / m.MagSf[f])
			assert.InDelta(t, n.Dot(types.Vec3{2, 3, 0}), sg.Values[f], 1.e-12)
		}
		for b := range phi.Boundary {
			f := b + m.NInternalFaces
			if !m.EmptyFace[b] {
				n := m.Sf[f].Scale(1. / m.MagSf[f])
				assert.InDelta(t, n.Dot(types.Vec3{2, 3, 0}), sg.Values[f], 1.e-12)
			}
		}
	}
	{ // Test vector gradient of U = (y, 0, 0)
		U := fields.NewVolVectorField("U", types.DimVelocity, m, types.Vec3{})
		for c := range U.Internal {
			U.Internal[c] = types.Vec3{m.C[c][1], 0, 0}
		}
		for pi, p := range m.Patches {
			if p.Type != types.PT_Empty {
				U.Kinds[pi] = types.BC_FixedValue
			}
		}
		for b := range U.Boundary {
			U.Boundary[b] = types.Vec3{m.Cf[b+m.NInternalFaces][1], 0, 0}
		}
		gU := GradVector(U)
		for c := range gU {
			// d U_x / d y
			assert.InDelta(t, 1., gU[c][3*1+0], 1.e-12)
			assert.InDelta(t, 0., gU[c][3*0+0], 1.e-12)
		}
	}
}

func TestDivergence(t *testing.T) {
	m, _ := linearField(t)
	{ // Test a uniform velocity has zero divergence and a balanced flux
		U := fields.NewVolVectorField("U", types.DimVelocity, m, types.Vec3{1, 0.5, 0})
		phi := Flux(nil, U)
		assert.Equal(t, types.DimVolumeFlux, phi.Dims)
		for _, d := range Div(phi) {
			assert.InDelta(t, 0., d, 1.e-12)
		}
		rho := fields.NewVolScalarField("rho", types.DimDensity, m, 2)
		mphi := Flux(Interpolate(rho), U)
		assert.Equal(t, types.DimMassFlux, mphi.Dims)
		xmax := m.Patches[1]
		assert.InDelta(t, 2*1*1, mphi.Values[xmax.Start], 1.e-12)
		for b := range U.Boundary {
			if m.EmptyFace[b] {
				assert.Equal(t, 0., phi.Values[b+m.NInternalFaces])
			}
		}
		assert.Equal(t, 0., DivVectorFlux(m, InterpolateVector(U))[4][2])
	}
	{ // Test integrals and time derivatives
		ones := make([]float64, m.NCells)
		for i := range ones {
			ones[i] = 1
		}
		assert.InDelta(t, 9., DomainIntegrate(m, ones), 1.e-12)
		assert.InDelta(t, 1., VolumeAverage(m, ones), 1.e-12)
		assert.Equal(t, []float64{2, 4}, DdtEuler([]float64{3, 5}, []float64{1, 1}, 1))
	}
}
