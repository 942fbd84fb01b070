package turbulence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofv/fields"
	"github.com/notargets/gofv/linsolve"
	"github.com/notargets/gofv/mesh"
	"github.com/notargets/gofv/types"
)

// couette is a 1x4 channel with a linear velocity profile between fixed walls
func couette(t *testing.T) (U *fields.VolVectorField, mu, rho *fields.VolScalarField) {
	bs := mesh.NewBlockSpec(types.Vec3{}, types.Vec3{1, 1, 1}, [3]int{1, 4, 1}, true)
	m, err := mesh.NewBlockMesh(bs)
	require.NoError(t, err)
	U = fields.NewVolVectorField("U", types.DimVelocity, m, types.Vec3{})
	require.NoError(t, U.SetBCByName("ymax", fields.VectorBC{Kind: types.BC_FixedValue, Value: types.Vec3{1, 0, 0}}))
	require.NoError(t, U.SetBCByName("ymin", fields.VectorBC{Kind: types.BC_FixedValue}))
	for c := range U.Internal {
		U.Internal[c] = types.Vec3{m.C[c][1], 0, 0}
	}
	U.CorrectBoundaryConditions()
	mu = fields.NewCalculatedScalarField("mu", types.DimDynamicViscosity, m, 1.e-3)
	rho = fields.NewCalculatedScalarField("rho", types.DimDensity, m, 2)
	return
}

func TestClosures(t *testing.T) {
	{ // Test model selection
		U, mu, _ := couette(t)
		_, err := New(Properties{Model: "kEpsilon"}, U, mu)
		assert.Error(t, err)
		_, err = New(Properties{Model: "mixingLength"}, U, mu)
		assert.Error(t, err)
		_, err = New(Properties{Model: "laminar", Prt: -1}, U, mu)
		assert.Error(t, err)
		c, err := New(Properties{}, U, mu)
		require.NoError(t, err)
		assert.Equal(t, "laminar", c.Name())
		assert.Equal(t, DefaultSct, c.Sct())
	}
	{ // Test laminar effective properties are molecular
		U, mu, rho := couette(t)
		c, err := New(Properties{Model: "laminar"}, U, mu)
		require.NoError(t, err)
		c.Correct()
		muEff := c.EffectiveViscosity(rho)
		assert.Equal(t, mu.Internal, muEff.Internal)
		assert.Equal(t, types.DimDynamicViscosity, muEff.Dims)
	}
	{ // Test constant eddy viscosity vanishes on walls
		U, mu, rho := couette(t)
		c, err := New(Properties{Model: "constantEddyViscosity", Nut: 0.01}, U, mu)
		require.NoError(t, err)
		muEff := c.EffectiveViscosity(rho)
		assert.InDelta(t, 1.e-3+0.02, muEff.Internal[2], 1.e-15)
		for _, v := range muEff.Boundary {
			assert.InDelta(t, 1.e-3, v, 1.e-15)
		}
		alpha := fields.NewCalculatedScalarField("alpha", types.DimDynamicViscosity, U.Mesh, 1.e-4)
		alphaEff := c.EffectiveDiffusivity(alpha, rho)
		assert.InDelta(t, 1.e-4+0.02/DefaultPrt, alphaEff.Internal[0], 1.e-15)
	}
	{ // Test the mixing length of a uniform shear
		U, mu, _ := couette(t)
		c, err := New(Properties{Model: "mixingLength", MixingLength: 0.1}, U, mu)
		require.NoError(t, err)
		ml := c.(*MixingLength)
		for i, s := range ml.MagS {
			assert.InDelta(t, 1., s, 1.e-12)
			assert.InDelta(t, 0.041*0.041, c.Nut().Internal[i], 1.e-15)
		}
	}
	{ // Test the stress divergence keeps the Couette profile
		U, mu, rho := couette(t)
		c, err := New(Properties{Model: "laminar"}, U, mu)
		require.NoError(t, err)
		muEff := c.EffectiveViscosity(rho)
		M := c.DivDevRhoReff(U, muEff)
		assert.Equal(t, types.DimDynamicViscosity.Mul(types.DimVelocity).Div(types.DimArea), M.Dims)
		for c := range U.Internal {
			U.Internal[c] = types.Vec3{}
		}
		perf, cmpts := M.Solve(linsolve.Controls{Solver: "direct"})
		assert.Len(t, cmpts, 2)
		assert.Equal(t, "U", perf.Field)
		for c, v := range U.Internal {
			assert.InDelta(t, U.Mesh.C[c][1], v[0], 1.e-12)
			assert.InDelta(t, 0., v[1], 1.e-12)
		}
	}
}
