package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypes(t *testing.T) {
	{ // Test packed int for edge labeling
		en := NewEdgeKey([2]int{1, 0})
		assert.Equal(t, EdgeKey(1<<32), en)
		assert.Equal(t, [2]int{0, 1}, en.GetVertices(false))

		en = NewEdgeKey([2]int{0, 1})
		assert.Equal(t, EdgeKey(1<<32), en)
		assert.Equal(t, [2]int{0, 1}, en.GetVertices(false))

		en = NewEdgeKey([2]int{0, 10})
		assert.Equal(t, EdgeKey(10*(1<<32)), en)
		assert.Equal(t, [2]int{0, 10}, en.GetVertices(false))

		en = NewEdgeKey([2]int{100, 0})
		assert.Equal(t, EdgeKey(100*(1<<32)), en)
		assert.Equal(t, [2]int{0, 100}, en.GetVertices(false))

		en = NewEdgeKey([2]int{100, 1})
		assert.Equal(t, EdgeKey(100*(1<<32)+1), en)
		assert.Equal(t, [2]int{1, 100}, en.GetVertices(false))

		en = NewEdgeKey([2]int{100, 100001})
		assert.Equal(t, EdgeKey(100001*(1<<32)+100), en)
		assert.Equal(t, [2]int{100, 100001}, en.GetVertices(false))

		// Test maximum/minimum indices
		en = NewEdgeKey([2]int{1, 1<<32 - 1})
		assert.Equal(t, EdgeKey((1<<32-1)<<32+1), en)
		assert.Equal(t, [2]int{1, 1<<32 - 1}, en.GetVertices(false))

		en = NewEdgeKey([2]int{1<<32 - 1, 1<<32 - 1})
		assert.Equal(t, EdgeKey(1<<64-1), en)
		assert.Equal(t, [2]int{1<<32 - 1, 1<<32 - 1}, en.GetVertices(false))

		en = NewEdgeKey([2]int{1<<32 - 1, 1})
		assert.Equal(t, EdgeKey((1<<32-1)<<32+1), en)
		assert.Equal(t, [2]int{1, 1<<32 - 1}, en.GetVertices(false))
	}
	{ // Test face keys are independent of vertex order
		assert.Equal(t, NewFaceKey([]int{3, 1, 2, 0}), NewFaceKey([]int{0, 1, 2, 3}))
		assert.Equal(t, FaceKey("0:1:2:3"), NewFaceKey([]int{2, 3, 0, 1}))
		assert.NotEqual(t, NewFaceKey([]int{0, 1, 2}), NewFaceKey([]int{0, 1, 2, 3}))
	}
	{ // Test patch and boundary condition names
		tokens := []string{"WALL", "inlet", " empty ", "Mapped"}
		pts := []PatchType{PT_Wall, PT_Patch, PT_Empty, PT_Interface}
		for i, token := range tokens {
			pt, err := NewPatchType(token)
			assert.Nil(t, err)
			assert.Equal(t, pts[i], pt)
		}
		_, err := NewPatchType("periodic")
		assert.NotNil(t, err)

		bcTokens := []string{"fixedValue", "zeroGradient", "fixedFluxPressure", "Dirichlet", "calculated"}
		bcs := []BCKIND{BC_FixedValue, BC_ZeroGradient, BC_FixedFluxPressure, BC_FixedValue, BC_Calculated}
		for i, token := range bcTokens {
			bc, err := NewBCKind(token)
			assert.Nil(t, err)
			assert.Equal(t, bcs[i], bc)
		}
		assert.Equal(t, "fixedFluxPressure", BC_FixedFluxPressure.String())
		assert.False(t, BC_FixedValue.Assignable())
		assert.True(t, BC_ZeroGradient.Assignable())
	}
	{ // Test dimension algebra
		assert.Equal(t, DimMass.Div(DimLength).Div(DimTime.Pow(2)), DimPressure)
		assert.Equal(t, DimDensity.Mul(DimVelocity).Mul(DimArea), DimMassFlux)
		assert.True(t, DimPressure.Div(DimPressure).IsDimless())
		assert.Equal(t, "[kg m^-1 s^-2]", DimPressure.String())
		assert.Panics(t, func() { CheckDims(DimPressure, DimDensity, "+") })
		assert.NotPanics(t, func() { CheckDims(DimEnergy, DimForce.Mul(DimLength), "+") })
	}
	{ // Test vector algebra
		a, b := Vec3{1, 2, 3}, Vec3{4, 5, 6}
		assert.Equal(t, 32., a.Dot(b))
		assert.Equal(t, Vec3{-3, 6, -3}, a.Cross(b))
		assert.InDelta(t, 5., Vec3{3, 4, 0}.Mag(), 1.e-14)
		tt := a.Outer(b)
		assert.Equal(t, 12., tt[3*1+2])
		assert.Equal(t, tt.T()[3*2+1], tt[3*1+2])
		assert.Equal(t, Vec3{1, 2, 3}, Tensor{1, 0, 0, 0, 1, 0, 0, 0, 1}.LeftDot(a))
		assert.Equal(t, -3., Tensor{1, 0, 0, 0, 1, 0, 0, 0, 1}.Dev2().Trace())
		st := NewSphericalSymmTensor(2)
		assert.Equal(t, Vec3{2, 4, 6}, st.Dot(a))
		assert.Equal(t, 2., st.Project(Vec3{0, 0, 1}))
	}
}
