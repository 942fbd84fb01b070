package fvm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofv/fields"
	"github.com/notargets/gofv/fvc"
	"github.com/notargets/gofv/linsolve"
	"github.com/notargets/gofv/mesh"
	"github.com/notargets/gofv/types"
)

var direct = linsolve.Controls{Solver: "direct"}

func blockMesh(t *testing.T, nx, ny int) *mesh.Mesh {
	bs := mesh.NewBlockSpec(types.Vec3{}, types.Vec3{1, 1, 1}, [3]int{nx, ny, 1}, true)
	m, err := mesh.NewBlockMesh(bs)
	require.NoError(t, err)
	return m
}

func TestLaplacian(t *testing.T) {
	m := blockMesh(t, 4, 1)
	gamma := fields.NewSurfaceScalarField("gamma", types.Dimless, m, 1)
	newT := func() *fields.VolScalarField {
		T := fields.NewVolScalarField("T", types.DimTemperature, m, 0)
		require.NoError(t, T.SetBCByName("xmin", fields.ScalarBC{Kind: types.BC_FixedValue, Value: 0}))
		require.NoError(t, T.SetBCByName("xmax", fields.ScalarBC{Kind: types.BC_FixedValue, Value: 1}))
		return T
	}
	{ // Test conduction between two fixed values gives the linear profile
		T := newT()
		M := Laplacian(gamma, T)
		assert.Equal(t, types.DimTemperature.Div(types.DimArea), M.Dims)
		assert.Nil(t, M.FaceFluxCorrection)
		perf := M.Solve(direct)
		assert.True(t, perf.Converged)
		for c := range T.Internal {
			assert.InDelta(t, m.C[c][0], T.Internal[c], 1.e-12)
		}
		flux := M.Flux()
		for f := 0; f < m.NInternalFaces; f++ {
			assert.InDelta(t, 1., flux.Values[f], 1.e-12)
		}
		xmin, xmax := m.Patches[0], m.Patches[1]
		assert.InDelta(t, -1., flux.Values[xmin.Start], 1.e-12)
		assert.InDelta(t, 1., flux.Values[xmax.Start], 1.e-12)
		A, H := M.A(), M.H()
		for c := range A {
			assert.InDelta(t, 0., A[c]*T.Internal[c]-H[c], 1.e-10)
		}
		assert.InDelta(t, 0., M.Residual(), 1.e-10)
	}
	{ // Test relaxation keeps the solution and is the identity at alpha = 1
		T := newT()
		M := Laplacian(gamma, T).Negate()
		M.Solve(direct)
		assert.InDeltaSlice(t, []float64{16, 32, 32, 16}, M.H1(), 1.e-10)

		R := M.Clone()
		R.Relax(1)
		assert.InDeltaSlice(t, M.Diag, R.Diag, 1.e-12)
		assert.InDeltaSlice(t, M.Source, R.Source, 1.e-12)

		R.Relax(0.5)
		sumOff := R.SumMagOffDiag()
		D := totalDiag(R.Matrix, m, R.InternalCoeffs)
		for c := range D {
			assert.GreaterOrEqual(t, D[c]+1.e-12, 2*sumOff[c])
		}
		before := append([]float64(nil), T.Internal...)
		R.Solve(direct)
		assert.InDeltaSlice(t, before, T.Internal, 1.e-12)
	}
	{ // Test an isotropic tensor diffusivity matches the scalar operator
		T := newT()
		k := fields.NewVolSymmTensorField("kappa", types.Dimless, m, types.NewSphericalSymmTensor(1))
		Ms, Mt := Laplacian(gamma, T), LaplacianTensor(k, T)
		assert.InDeltaSlice(t, Ms.Diag, Mt.Diag, 1.e-12)
		assert.InDeltaSlice(t, Ms.Upper, Mt.Upper, 1.e-12)
		assert.InDeltaSlice(t, Ms.InternalCoeffs, Mt.InternalCoeffs, 1.e-12)
		for _, c := range Mt.FaceFluxCorrection {
			assert.InDelta(t, 0., c, 1.e-12)
		}
	}
	{ // Test the pressure reference and operator dimensions
		p := fields.NewVolScalarField("p", types.DimPressure, m, 0)
		M := Laplacian(gamma, p)
		d := M.Diag[0]
		M.SetReference(0, 5, false)
		assert.Equal(t, 2*d, M.Diag[0])
		assert.Equal(t, 5*d, M.Source[0])
		T := newT()
		assert.Panics(t, func() {
			Laplacian(gamma, T).Add(Ddt(nil, T, TimeState{Scheme: Euler, DeltaT: 1}))
		})
	}
}

func TestConvection(t *testing.T) {
	m := blockMesh(t, 4, 1)
	U := fields.NewVolVectorField("U", types.DimVelocity, m, types.Vec3{1, 0, 0})
	phi := fvc.Flux(nil, U)
	{ // Test upwind transport of a fixed inlet value
		T := fields.NewVolScalarField("T", types.DimTemperature, m, 0)
		require.NoError(t, T.SetBCByName("xmin", fields.ScalarBC{Kind: types.BC_FixedValue, Value: 1}))
		M := Div(phi, T, true)
		assert.False(t, M.Symmetric())
		assert.Equal(t, []float64{-1, -1, -1}, M.Lower)
		assert.Equal(t, []float64{0, 0, 0}, M.Upper)
		M.Solve(direct)
		for _, v := range T.Internal {
			assert.InDelta(t, 1., v, 1.e-12)
		}
		assert.InDelta(t, 1., T.Boundary[m.Patches[1].Start-m.NInternalFaces], 1.e-12)
	}
	{ // Test the component matrix and solution directions
		assert.Equal(t, [3]bool{true, true, false}, SolutionDirections(m))
		V := fields.NewVolVectorField("V", types.DimVelocity, m, types.Vec3{})
		require.NoError(t, V.SetBCByName("xmin", fields.VectorBC{Kind: types.BC_FixedValue, Value: types.Vec3{2, 1, 0}}))
		M := DivVector(phi, V, false)
		_, cmpts := M.Solve(direct)
		assert.Len(t, cmpts, 2)
		assert.Equal(t, "Vx", cmpts[0].Field)
		for _, v := range V.Internal {
			assert.InDelta(t, 2., v[0], 1.e-12)
			assert.InDelta(t, 1., v[1], 1.e-12)
		}
	}
}

func TestVectorLaplacian(t *testing.T) {
	m := blockMesh(t, 1, 4)
	{ // Test plane Couette flow
		U := fields.NewVolVectorField("U", types.DimVelocity, m, types.Vec3{})
		require.NoError(t, U.SetBCByName("ymax", fields.VectorBC{Kind: types.BC_FixedValue, Value: types.Vec3{1, 0, 0}}))
		require.NoError(t, U.SetBCByName("ymin", fields.VectorBC{Kind: types.BC_FixedValue}))
		nu := fields.NewSurfaceScalarField("nu", types.DimKinematicViscosity, m, 1)
		M := LaplacianVector(nu, U)
		perf, _ := M.Solve(direct)
		assert.Equal(t, "U", perf.Field)
		for c, v := range U.Internal {
			assert.InDelta(t, m.C[c][1], v[0], 1.e-12)
			assert.InDelta(t, 0., v[1], 1.e-12)
		}
		A, H := M.A(), M.H()
		for c := range A {
			assert.InDelta(t, 0., U.Internal[c].Scale(A[c]).Sub(H[c]).Mag(), 1.e-10)
		}
	}
	{ // Test sources
		U := fields.NewVolVectorField("U", types.DimVelocity, m, types.Vec3{})
		M := SpVector([]float64{2, 2, 2, 2}, types.Dimless, U)
		M.Sub(SuVector([]types.Vec3{{4, 0, 0}, {4, 0, 0}, {4, 0, 0}, {4, 0, 0}}, types.DimVelocity, U))
		M.Solve(direct)
		for _, v := range U.Internal {
			assert.InDelta(t, 2., v[0], 1.e-12)
		}
	}
}

func TestDdt(t *testing.T) {
	m := blockMesh(t, 4, 1)
	T := fields.NewVolScalarField("T", types.DimTemperature, m, 1)
	T.StoreOldTime()
	T.SetUniform(2)
	T.StoreOldTime()
	T.SetUniform(3)
	{ // Test the schemes, backward starts from two old levels
		M := Ddt(nil, T, TimeState{Scheme: Backward, DeltaT: 0.1, DeltaT0: 0.1})
		assert.InDelta(t, 1.5*10*0.25, M.Diag[0], 1.e-12)
		assert.InDelta(t, 10*0.25*(2*2-0.5*1), M.Source[0], 1.e-12)
		M = Ddt(nil, T, TimeState{Scheme: Euler, DeltaT: 0.1})
		assert.InDelta(t, 2.5, M.Diag[0], 1.e-12)
		assert.InDelta(t, 5., M.Source[0], 1.e-12)
		M = Ddt(nil, T, TimeState{Scheme: SteadyState})
		assert.Equal(t, 0., M.Diag[0])
		assert.Equal(t, types.DimTemperature.Div(types.DimTime), M.Dims)

		rho := fields.NewVolScalarField("rho", types.DimDensity, m, 2)
		M = Ddt(rho, T, TimeState{Scheme: Euler, DeltaT: 0.1})
		assert.InDelta(t, 5., M.Diag[0], 1.e-12)
		M.Solve(direct)
		assert.InDelta(t, 2., T.Internal[0], 1.e-12)
	}
	{ // Test backward falls back to Euler without an old-old level
		S := fields.NewVolScalarField("S", types.Dimless, m, 1)
		S.StoreOldTime()
		M := Ddt(nil, S, TimeState{Scheme: Backward, DeltaT: 0.1, DeltaT0: 0.1})
		assert.InDelta(t, 2.5, M.Diag[0], 1.e-12)
		_, err := NewDdtScheme("CrankNicolson")
		assert.Error(t, err)
		s, err := NewDdtScheme("backward")
		require.NoError(t, err)
		assert.Equal(t, "backward", s.String())
	}
}
