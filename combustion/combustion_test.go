package combustion

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofv/fields"
	"github.com/notargets/gofv/mesh"
	"github.com/notargets/gofv/thermo"
	"github.com/notargets/gofv/types"
)

func TestSingleStep(t *testing.T) {
	bs := mesh.NewBlockSpec(types.Vec3{}, types.Vec3{1, 1, 1}, [3]int{2, 2, 1}, true)
	m, err := mesh.NewBlockMesh(bs)
	require.NoError(t, err)
	comp, err := thermo.NewComposition(m, []thermo.SpecieProperties{
		{Name: "CH4", W: 16, Cp: 2200, Y: 0.1},
		{Name: "O2", W: 32, Cp: 920, Y: 0.2},
		{Name: "P", W: 28, Cp: 1100},
		{Name: "N2", W: 28, Cp: 1040, Y: 0.7},
	}, "N2")
	require.NoError(t, err)
	rho := fields.NewCalculatedScalarField("rho", types.DimDensity, m, 1.2)
	T := fields.NewVolScalarField("T", types.DimTemperature, m, 1500)
	props := Properties{Model: "singleStep", Fuel: "CH4", Oxidiser: "O2", Product: "P", S: 4, A: 1.e3, Ta: 1.e4, Qc: 5.e7}
	{ // Test configuration errors
		_, err = New(Properties{Model: "EDC"}, comp, rho, T)
		assert.Error(t, err)
		_, err = New(props, nil, rho, T)
		assert.Error(t, err)
		bad := props
		bad.Fuel = "C3H8"
		_, err = New(bad, comp, rho, T)
		assert.Error(t, err)
		bad = props
		bad.Product = "O2"
		_, err = New(bad, comp, rho, T)
		assert.Error(t, err)
		mdl, err := New(Properties{}, comp, rho, T)
		require.NoError(t, err)
		assert.False(t, mdl.Active())
		assert.Equal(t, []float64{0, 0, 0, 0}, mdl.Qdot())
	}
	{ // Test the rates balance and the heat release
		mdl, err := New(props, comp, rho, T)
		require.NoError(t, err)
		assert.True(t, mdl.Active())
		omega := 1.e3 * 1.2 * 1.2 * 0.1 * 0.2 * math.Exp(-1.e4/1500)
		assert.InDelta(t, omega, mdl.(*SingleStep).Omega()[0], 1.e-12)
		rate := func(Y *fields.VolScalarField, c int) float64 {
			M := mdl.R(Y)
			assert.Equal(t, types.DimDensity.Div(types.DimTime), M.Dims)
			return (M.Diag[c]*Y.Internal[c] - M.Source[c]) / m.V[c]
		}
		var sum float64
		expected := []float64{-omega, -4 * omega, 5 * omega, 0}
		for i, Y := range comp.Y {
			r := rate(Y, 1)
			assert.InDelta(t, expected[i], r, 1.e-12)
			sum += r
		}
		assert.InDelta(t, 0., sum, 1.e-12)
		assert.InDelta(t, omega*5.e7, mdl.Qdot()[3], 1.e-6)
		// No fuel, no reaction
		comp.Y[0].SetUniform(0)
		mdl.Correct()
		assert.Equal(t, 0., mdl.Qdot()[0])
	}
}
