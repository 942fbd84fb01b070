package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSparse(t *testing.T) {
	{ // Test assembly and matrix-vector product of a tridiagonal system
		N := 5
		A := NewDOK(N, N)
		for i := 0; i < N; i++ {
			A.Add(i, i, 2)
			if i > 0 {
				A.Add(i, i-1, -1)
			}
			if i < N-1 {
				A.Add(i, i+1, -1)
			}
		}
		A.Add(0, 0, 1) // accumulates
		assert.Equal(t, 3., A.At(0, 0))
		A.SetReadOnly("A")
		assert.Panics(t, func() { A.Set(0, 0, 1) })
		Acsr := A.ToCSR()
		assert.Equal(t, 13, Acsr.NNZ())
		x := []float64{1, 1, 1, 1, 1}
		dst := []float64{9, 9, 9, 9, 9} // must be overwritten
		Acsr.MulVec(dst, x)
		assert.Equal(t, []float64{2, 0, 0, 0, 1}, dst)
		assert.Equal(t, dst, Acsr.RowSums())
		assert.Panics(t, func() { Acsr.MulVec(make([]float64, 4), x) })
	}
}

func TestMath(t *testing.T) {
	{ // Test integer powers
		assert.Equal(t, 8., POW(2, 3))
		assert.Equal(t, 0.25, POW(2, -2))
		assert.Equal(t, 1., POW(7, 0))
		assert.InDelta(t, 1024., POW(2, 10), 1.e-12)
	}
	{ // Test clamping and divisor stabilisation
		assert.Equal(t, 1., Clamp(3, 0, 1))
		assert.Equal(t, 0., Clamp(-3, 0, 1))
		assert.Equal(t, 0.5, Clamp(0.5, 0, 1))
		assert.True(t, StabiliseDivisor(0, SMALL) > 0)
		assert.True(t, StabiliseDivisor(-1.e-20, SMALL) < 0)
	}
	{ // Test NaN detection
		assert.False(t, IsNan([]float64{1, 2, 3}))
		assert.True(t, IsNan([]float64{1, 0 / zero(), 3}))
		assert.Panics(t, func() { IsNanPanic(0 / zero()) })
	}
}

func zero() float64 { return 0 }
