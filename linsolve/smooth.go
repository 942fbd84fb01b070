package linsolve

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gofv/utils"
)

// SmoothSolver iterates Gauss-Seidel sweeps until converged
type SmoothSolver struct {
	Controls
}

func (s *SmoothSolver) Solve(A *Matrix, x, b []float64, field string) (perf Performance) {
	var (
		n  = len(x)
		Ax = make([]float64, n)
		r  = make([]float64, n)
	)
	perf = Performance{Solver: "smoothSolver", Field: field}
	A.Amul(Ax, x)
	normFactor := NormFactor(A, x, b, Ax)
	A.Residual(r, x, b)
	perf.InitialResidual = sumMag(r) / normFactor
	perf.FinalResidual = perf.InitialResidual

	if s.MinIter > 0 || !s.converged(perf.InitialResidual, perf.FinalResidual) {
		for {
			GaussSeidel(A, x, b, s.NSweeps)
			A.Residual(r, x, b)
			perf.FinalResidual = sumMag(r) / normFactor
			perf.NIterations += s.NSweeps
			if !s.keepIterating(perf.NIterations, perf.InitialResidual, perf.FinalResidual) {
				break
			}
		}
	}
	perf.Converged = s.converged(perf.InitialResidual, perf.FinalResidual)
	return
}

// GaussSeidel performs nSweeps in place sweeps in cell order
func GaussSeidel(A *Matrix, x, b []float64, nSweeps int) {
	var (
		addr = A.Addr
		l, u = addr.Lower, addr.Upper
	)
	for sweep := 0; sweep < nSweeps; sweep++ {
		for i := range x {
			sum := b[i]
			for k := addr.ownerStart[i]; k < addr.ownerStart[i+1]; k++ {
				sum -= A.Upper[k] * x[u[k]]
			}
			for k := addr.losortStart[i]; k < addr.losortStart[i+1]; k++ {
				f := addr.losort[k]
				sum -= A.Lower[f] * x[l[f]]
			}
			x[i] = sum / A.Diag[i]
		}
	}
}

/*
Direct factorises the assembled matrix with a dense LU decomposition, for small
systems and as a reference for the iterative solvers.
*/
type Direct struct{}

func (s *Direct) Solve(A *Matrix, x, b []float64, field string) (perf Performance) {
	var (
		n   = len(x)
		dok = A.ToDOK()
		csr = dok.ToCSR()
		Ax  = make([]float64, n)
		lu  mat.LU
	)
	perf = Performance{Solver: "direct", Field: field}
	csr.MulVec(Ax, x)
	normFactor := NormFactor(A, x, b, Ax)
	perf.InitialResidual = residualCSR(csr, x, b) / normFactor

	lu.Factorize(mat.DenseCopyOf(dok))
	xv := mat.NewVecDense(n, nil)
	err := lu.SolveVecTo(xv, false, mat.NewVecDense(n, append([]float64(nil), b...)))
	if cond, ok := err.(mat.Condition); ok && math.IsInf(float64(cond), 1) {
		perf.Singular = true
		perf.FinalResidual = perf.InitialResidual
		return
	}
	copy(x, xv.RawVector().Data)
	perf.FinalResidual = residualCSR(csr, x, b) / normFactor
	perf.NIterations = 1
	perf.Converged = true
	return
}

func residualCSR(csr utils.CSR, x, b []float64) (res float64) {
	Ax := make([]float64, len(x))
	csr.MulVec(Ax, x)
	for i := range Ax {
		Ax[i] = b[i] - Ax[i]
	}
	return sumMag(Ax)
}
