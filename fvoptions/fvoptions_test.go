package fvoptions

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofv/fields"
	"github.com/notargets/gofv/fvm"
	"github.com/notargets/gofv/linsolve"
	"github.com/notargets/gofv/mesh"
	"github.com/notargets/gofv/thermo"
	"github.com/notargets/gofv/types"
)

var direct = linsolve.Controls{Solver: "direct"}

func row(t *testing.T) *mesh.Mesh {
	bs := mesh.NewBlockSpec(types.Vec3{}, types.Vec3{1, 1, 1}, [3]int{4, 1, 1}, true)
	m, err := mesh.NewBlockMesh(bs)
	require.NoError(t, err)
	return m
}

func TestOptions(t *testing.T) {
	m := row(t)
	ones := []float64{1, 1, 1, 1}
	{ // Test configuration errors
		_, err := New(m, []Properties{{Name: "a", Type: "meanVelocityForce"}})
		assert.Error(t, err)
		_, err = New(m, []Properties{{Type: "semiImplicitSource", Fields: []string{"T"}}})
		assert.Error(t, err)
		_, err = New(m, []Properties{{Name: "a", Type: "semiImplicitSource"}})
		assert.Error(t, err)
		_, err = New(m, []Properties{{Name: "a", Type: "limitTemperature", Min: 400, Max: 300}})
		assert.Error(t, err)
		_, err = New(m, []Properties{{Name: "a", Type: "semiImplicitSource", Fields: []string{"T"},
			Box: &Box{Min: types.Vec3{2, 2, 2}, Max: types.Vec3{3, 3, 3}}}})
		assert.Error(t, err)
	}
	{ // Test semi implicit sources in both volume modes
		for _, mode := range []string{"specific", "absolute"} {
			l, err := New(m, []Properties{{Name: "heater", Type: "semiImplicitSource", Fields: []string{"T"},
				VolumeMode: mode, Su: 2, Sp: -1}})
			require.NoError(t, err)
			T := fields.NewVolScalarField("T", types.DimTemperature, m, 0)
			M := fvm.Sp(ones, types.DimTime.Inv(), T)
			M.Sub(l.Source(nil, T))
			M.Solve(direct)
			for _, v := range T.Internal {
				assert.InDelta(t, 1., v, 1.e-12)
			}
		}
	}
	{ // Test the box selection and a vector source
		l, err := New(m, []Properties{{Name: "push", Type: "semiImplicitSource", Fields: []string{"U"},
			Box: &Box{Max: types.Vec3{0.5, 1, 1}}, SuVector: types.Vec3{3, 0, 0}}})
		require.NoError(t, err)
		U := fields.NewVolVectorField("U", types.DimVelocity, m, types.Vec3{})
		M := fvm.SpVector(ones, types.DimTime.Inv(), U)
		M.Sub(l.SourceVector(nil, U))
		M.Solve(direct)
		assert.InDeltaSlice(t, []float64{3, 3, 0, 0}, U.Component(0), 1.e-12)
	}
	{ // Test a fixed value constraint inside a conduction problem
		l, err := New(m, []Properties{{Name: "hold", Type: "fixedValueConstraint", Fields: []string{"T"},
			Box: &Box{Max: types.Vec3{0.25, 1, 1}}, Value: 0.5}})
		require.NoError(t, err)
		T := fields.NewVolScalarField("T", types.DimTemperature, m, 0)
		require.NoError(t, T.SetBCByName("xmin", fields.ScalarBC{Kind: types.BC_FixedValue, Value: 0}))
		require.NoError(t, T.SetBCByName("xmax", fields.ScalarBC{Kind: types.BC_FixedValue, Value: 1}))
		gamma := fields.NewSurfaceScalarField("gamma", types.Dimless, m, 1)
		M := fvm.Laplacian(gamma, T).Negate()
		l.Constrain(M)
		M.Solve(direct)
		assert.InDelta(t, 0.5, T.Internal[0], 1.e-12)
		for c := 1; c < 4; c++ {
			assert.Greater(t, T.Internal[c], T.Internal[c-1])
		}
		// Linear between the held cell centre and the right wall
		assert.InDelta(t, 0.5+0.5*(m.C[2][0]-m.C[0][0])/(1-m.C[0][0]), T.Internal[2], 1.e-12)
	}
	{ // Test the velocity limit keeps direction and leaves slow cells alone
		_, err := New(m, []Properties{{Name: "a", Type: "limitVelocity"}})
		assert.Error(t, err)
		l, err := New(m, []Properties{{Name: "limitU", Type: "limitVelocity", Max: 5}})
		require.NoError(t, err)
		U := fields.NewVolVectorField("U", types.DimVelocity, m, types.Vec3{})
		U.Internal = []types.Vec3{{6, 8, 0}, {3, 4, 0}, {0, 0, -10}, {1, 0, 0}}
		l.CorrectVector(U)
		assert.InDeltaSlice(t, []float64{3, 3, 0, 1}, U.Component(0), 1.e-12)
		assert.InDeltaSlice(t, []float64{4, 4, 0, 0}, U.Component(1), 1.e-12)
		assert.InDeltaSlice(t, []float64{0, 0, -5, 0}, U.Component(2), 1.e-12)
		var nilList *List
		nilList.CorrectVector(U)
		var buf bytes.Buffer
		l.CheckApplied(&buf)
		assert.Empty(t, buf.String())
	}
	{ // Test temperature limits in enthalpy and the unused option report
		active := false
		l, err := New(m, []Properties{
			{Name: "limitT", Type: "limitTemperature", Min: 300, Max: 400},
			{Name: "off", Type: "semiImplicitSource", Fields: []string{"T"}, Active: &active},
			{Name: "unused", Type: "semiImplicitSource", Fields: []string{"Yi"}},
		})
		require.NoError(t, err)
		l.Cp = func() []float64 { return []float64{1000, 1000, 1000, 1000} }
		h := fields.NewVolScalarField("h", types.DimSpecificEnergy, m, 0)
		h.Internal = []float64{1000 * (500 - thermo.Tstd), 1000 * (350 - thermo.Tstd), 1000 * (200 - thermo.Tstd), 0}
		l.Correct(h)
		assert.InDeltaSlice(t, []float64{
			1000 * (400 - thermo.Tstd), 1000 * (350 - thermo.Tstd), 1000 * (300 - thermo.Tstd), 1000 * (300 - thermo.Tstd),
		}, h.Internal, 1.e-9)
		var buf bytes.Buffer
		l.CheckApplied(&buf)
		assert.Equal(t, "Source unused defined for field Yi but never used\n", buf.String())
	}
}
