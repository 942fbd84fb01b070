package linsolve

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// PCG is preconditioned conjugate gradients, symmetric matrices only
type PCG struct {
	Controls
	precon preconditioner
}

func (s *PCG) Solve(A *Matrix, x, b []float64, field string) (perf Performance) {
	if !A.Symmetric() {
		// Asymmetric systems go to the bi-conjugate solver with the matching preconditioner
		return (&PBiCGStab{Controls: s.Controls, precon: &dilu{}}).Solve(A, x, b, field)
	}
	var (
		n  = len(x)
		wA = make([]float64, n)
		rA = make([]float64, n)
		pA = make([]float64, n)
	)
	var wArA, beta float64
	perf = Performance{Solver: s.precon.name() + "PCG", Field: field}
	A.Amul(wA, x)
	floats.SubTo(rA, b, wA)
	normFactor := NormFactor(A, x, b, wA)
	perf.InitialResidual = sumMag(rA) / normFactor
	perf.FinalResidual = perf.InitialResidual

	if s.MinIter > 0 || !s.converged(perf.InitialResidual, perf.FinalResidual) {
		s.precon.setup(A)
		for {
			wArAold := wArA
			s.precon.precondition(wA, rA)
			wArA = floats.Dot(wA, rA)
			if perf.NIterations == 0 {
				copy(pA, wA)
			} else {
				beta = wArA / wArAold
				// pA = wA + beta pA
				floats.AddScaledTo(pA, wA, beta, pA)
			}
			A.Amul(wA, pA)
			wApA := floats.Dot(wA, pA)
			if math.Abs(wApA)/normFactor < vSmall {
				perf.Singular = true
				break
			}
			alpha := wArA / wApA
			floats.AddScaled(x, alpha, pA)
			floats.AddScaled(rA, -alpha, wA)
			perf.FinalResidual = sumMag(rA) / normFactor
			perf.NIterations++
			if !s.keepIterating(perf.NIterations, perf.InitialResidual, perf.FinalResidual) {
				break
			}
		}
	}
	perf.Converged = s.converged(perf.InitialResidual, perf.FinalResidual)
	return
}

// PBiCGStab is the preconditioned stabilised bi-conjugate gradient method
type PBiCGStab struct {
	Controls
	precon preconditioner
}

func (s *PBiCGStab) Solve(A *Matrix, x, b []float64, field string) (perf Performance) {
	var (
		n   = len(x)
		yA  = make([]float64, n)
		rA  = make([]float64, n)
		pA  = make([]float64, n)
		rA0 = make([]float64, n)
		AyA = make([]float64, n)
		sA  = make([]float64, n)
		zA  = make([]float64, n)
		tA  = make([]float64, n)
	)
	var rA0rA, alpha, omega, beta float64
	perf = Performance{Solver: s.precon.name() + "PBiCGStab", Field: field}
	A.Amul(yA, x)
	floats.SubTo(rA, b, yA)
	normFactor := NormFactor(A, x, b, yA)
	perf.InitialResidual = sumMag(rA) / normFactor
	perf.FinalResidual = perf.InitialResidual

	if s.MinIter > 0 || !s.converged(perf.InitialResidual, perf.FinalResidual) {
		s.precon.setup(A)
		copy(rA0, rA)
		for {
			rA0rAold := rA0rA
			rA0rA = floats.Dot(rA0, rA)
			if math.Abs(rA0rA) < vSmall {
				perf.Singular = true
				break
			}
			if perf.NIterations == 0 {
				copy(pA, rA)
			} else {
				if math.Abs(omega) < vSmall {
					perf.Singular = true
					break
				}
				beta = (rA0rA / rA0rAold) * (alpha / omega)
				for i := range pA {
					pA[i] = rA[i] + beta*(pA[i]-omega*AyA[i])
				}
			}
			s.precon.precondition(yA, pA)
			A.Amul(AyA, yA)
			alpha = rA0rA / floats.Dot(rA0, AyA)
			floats.AddScaledTo(sA, rA, -alpha, AyA)
			if res := sumMag(sA) / normFactor; res < s.Tolerance {
				floats.AddScaled(x, alpha, yA)
				perf.NIterations++
				perf.FinalResidual = res
				break
			}
			s.precon.precondition(zA, sA)
			A.Amul(tA, zA)
			tAtA := floats.Dot(tA, tA)
			omega = floats.Dot(tA, sA) / math.Max(tAtA, vSmall)
			floats.AddScaled(x, alpha, yA)
			floats.AddScaled(x, omega, zA)
			floats.AddScaledTo(rA, sA, -omega, tA)
			perf.FinalResidual = sumMag(rA) / normFactor
			perf.NIterations++
			if !s.keepIterating(perf.NIterations, perf.InitialResidual, perf.FinalResidual) {
				break
			}
		}
	}
	perf.Converged = s.converged(perf.InitialResidual, perf.FinalResidual)
	return
}
