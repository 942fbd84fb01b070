package thermo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofv/fields"
	"github.com/notargets/gofv/mesh"
	"github.com/notargets/gofv/types"
)

func testMesh(t *testing.T) *mesh.Mesh {
	bs := mesh.NewBlockSpec(types.Vec3{}, types.Vec3{1, 1, 1}, [3]int{2, 2, 1}, true)
	m, err := mesh.NewBlockMesh(bs)
	require.NoError(t, err)
	return m
}

func TestFluid(t *testing.T) {
	m := testMesh(t)
	{ // Test constant density and the enthalpy round trip
		p := fields.NewVolScalarField("p", types.DimPressure, m, 1.e5)
		T := fields.NewVolScalarField("T", types.DimTemperature, m, 300)
		require.NoError(t, T.SetBCByName("xmin", fields.ScalarBC{Kind: types.BC_FixedValue, Value: 350}))
		th, err := NewFluid(FluidProperties{EquationOfState: "rhoConst", Rho: 1000, Cp: 4180, Mu: 1.e-3, Pr: 7}, p, T)
		require.NoError(t, err)
		assert.True(t, th.Incompressible())
		assert.Equal(t, 1000., th.Rho.Internal[0])
		assert.Equal(t, 0., th.Psi.Max())
		assert.InDelta(t, 4180*(300-Tstd), th.H.Internal[0], 1.e-9)
		assert.InDelta(t, 4180*1.e-3/7, th.Kappa.Internal[0], 1.e-12)
		assert.InDelta(t, 1.e-3/7, th.Alpha.Internal[0], 1.e-12)

		th.H.Internal[1] = 4180 * (320 - Tstd)
		th.H.CorrectBoundaryConditions()
		th.Correct()
		assert.InDelta(t, 320., th.T.Internal[1], 1.e-9)
		b := m.Patches[0].Start - m.NInternalFaces
		assert.Equal(t, 350., th.T.Boundary[b])
		assert.InDelta(t, 4180*(350-Tstd), th.H.Boundary[b], 1.e-9)
		assert.Equal(t, types.BC_FixedValue, th.H.Kinds[0])

		th.SetT(310)
		assert.InDelta(t, 310., th.T.Internal[3], 1.e-9)
		assert.Equal(t, 350., th.T.Boundary[b])
	}
	{ // Test the perfect gas law and density limits
		p := fields.NewVolScalarField("p", types.DimPressure, m, 1.e5)
		T := fields.NewVolScalarField("T", types.DimTemperature, m, 300)
		th, err := NewFluid(FluidProperties{EquationOfState: "perfectGas", W: 28.9, Cp: 1005, Mu: 1.8e-5}, p, T)
		require.NoError(t, err)
		rho := 1.e5 * 28.9 / (RR * 300)
		assert.InDelta(t, rho, th.Rho.Internal[0], 1.e-12)
		assert.InDelta(t, rho/1.e5, th.Psi.Internal[0], 1.e-15)
		th.LimitRho(0.1, 1)
		assert.Equal(t, 1., th.Rho.Max())
		assert.False(t, th.Incompressible())
	}
	{ // Test bad properties
		p := fields.NewVolScalarField("p", types.DimPressure, m, 1.e5)
		T := fields.NewVolScalarField("T", types.DimTemperature, m, 300)
		_, err := NewFluid(FluidProperties{EquationOfState: "rhoConst"}, p, T)
		assert.Error(t, err)
		_, err = NewFluid(FluidProperties{EquationOfState: "idealLiquid", Rho: 1}, p, T)
		assert.Error(t, err)
	}
}

func TestComposition(t *testing.T) {
	m := testMesh(t)
	species := []SpecieProperties{
		{Name: "O2", W: 32, Cp: 920, Y: 0.23},
		{Name: "N2", W: 28, Cp: 1040, Y: 0.77},
	}
	{ // Test the inert specie must exist
		_, err := NewComposition(m, species, "Ar")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found in available species [O2 N2]")
	}
	{ // Test mixture properties
		c, err := NewComposition(m, species, "N2")
		require.NoError(t, err)
		assert.Equal(t, 1, c.InertIndex)
		assert.Equal(t, 0, c.Index("O2"))
		assert.True(t, c.Active(0))
		y := c.cellY(0)
		assert.InDelta(t, 0.23*920+0.77*1040, c.Cp(y), 1.e-9)
		assert.InDelta(t, 1./(0.23/32+0.77/28), c.W(y), 1.e-12)
		assert.InDelta(t, 920*(400-Tstd), c.Hs(0, 1.e5, 400), 1.e-9)

		p := fields.NewVolScalarField("p", types.DimPressure, m, 1.e5)
		T := fields.NewVolScalarField("T", types.DimTemperature, m, 300)
		th, err := NewFluid(FluidProperties{EquationOfState: "perfectGas", Mu: 1.8e-5, Species: species, InertSpecie: "N2"}, p, T)
		require.NoError(t, err)
		assert.InDelta(t, 0.23*920+0.77*1040, th.Cp()[2], 1.e-9)
		assert.Equal(t, 1.e-10, th.Comp.Species[0].Dm)
	}
}

func TestSolid(t *testing.T) {
	m := testMesh(t)
	{ // Test principal axes rotation
		K := TransformPrincipal(types.Vec3{1, 0, 0}, types.Vec3{0, 0, 1}, types.Vec3{1, 2, 3})
		assert.InDeltaSlice(t, []float64{1, 0, 0, 2, 0, 3}, K[:], 1.e-14)
		K = TransformPrincipal(types.Vec3{0, 2, 0}, types.Vec3{0, 0, 1}, types.Vec3{1, 2, 3})
		assert.InDeltaSlice(t, []float64{2, 0, 0, 1, 0, 3}, K[:], 1.e-14)
	}
	{ // Test isotropic and anisotropic solids
		T := fields.NewVolScalarField("T", types.DimTemperature, m, 400)
		th, err := NewSolid(SolidProperties{Rho: 8000, Cp: 500, Kappa: 15}, T)
		require.NoError(t, err)
		assert.True(t, th.Isotropic())
		assert.InDelta(t, 15./500, th.Alpha.Internal[0], 1.e-15)
		th.H.Internal[0] = 500 * (500 - Tstd)
		th.Correct()
		assert.InDelta(t, 500., T.Internal[0], 1.e-9)
		assert.Equal(t, 15., th.KappaNormal(0, types.Vec3{0, 1, 0}))

		T2 := fields.NewVolScalarField("T", types.DimTemperature, m, 400)
		ani := &Anisotropy{Kappa: types.Vec3{10, 20, 30}, E1: types.Vec3{1, 0, 0}, E3: types.Vec3{0, 0, 1}}
		th, err = NewSolid(SolidProperties{Rho: 8000, Cp: 500, Anisotropic: ani}, T2)
		require.NoError(t, err)
		assert.False(t, th.Isotropic())
		assert.InDelta(t, 20., th.KappaNormal(1, types.Vec3{0, 1, 0}), 1.e-12)
		_, err = NewSolid(SolidProperties{Rho: 8000, Cp: 500}, T2)
		assert.Error(t, err)
	}
}
