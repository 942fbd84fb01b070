// Package linsolve solves LDU addressed linear systems to a tolerance
package linsolve

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

const (
	smallResidual = 1.e-20
	vSmall        = 1.e-300
)

// Controls is one solver dictionary entry, e.g. p_rgh { solver PCG; preconditioner DIC; ... }
type Controls struct {
	Solver         string  `json:"solver"`
	Preconditioner string  `json:"preconditioner,omitempty"`
	Smoother       string  `json:"smoother,omitempty"`
	Tolerance      float64 `json:"tolerance"`
	RelTol         float64 `json:"relTol"`
	MaxIter        int     `json:"maxIter,omitempty"`
	MinIter        int     `json:"minIter,omitempty"`
	NSweeps        int     `json:"nSweeps,omitempty"`
}

func DefaultControls() Controls {
	return Controls{
		Solver:         "PBiCGStab",
		Preconditioner: "DILU",
		Smoother:       "GaussSeidel",
		Tolerance:      1.e-6,
		RelTol:         0.1,
		MaxIter:        1000,
		NSweeps:        1,
	}
}

// WithDefaults fills unset entries
func (c Controls) WithDefaults() Controls {
	d := DefaultControls()
	if c.Solver == "" {
		c.Solver = d.Solver
	}
	if c.Preconditioner == "" {
		c.Preconditioner = d.Preconditioner
	}
	if c.Smoother == "" {
		c.Smoother = d.Smoother
	}
	if c.MaxIter == 0 {
		c.MaxIter = d.MaxIter
	}
	if c.NSweeps == 0 {
		c.NSweeps = d.NSweeps
	}
	return c
}

func (c Controls) Validate() (err error) {
	if _, err = newPreconditioner(c.Preconditioner); err != nil {
		return
	}
	switch strings.ToLower(c.Solver) {
	case "pcg", "pbicgstab", "smoothsolver", "direct":
	default:
		return fmt.Errorf("unknown linear solver %q, choose from PCG, PBiCGStab, smoothSolver, direct", c.Solver)
	}
	if strings.ToLower(c.Smoother) != "gaussseidel" {
		return fmt.Errorf("unknown smoother %q, only GaussSeidel is available", c.Smoother)
	}
	if c.Tolerance < 0 || c.RelTol < 0 {
		return fmt.Errorf("negative tolerance in solver controls")
	}
	return
}

// Solver solves A x = b, x holds the initial guess and is updated in place
type Solver interface {
	Solve(A *Matrix, x, b []float64, field string) Performance
}

func New(c Controls) (s Solver, err error) {
	c = c.WithDefaults()
	if err = c.Validate(); err != nil {
		return
	}
	pc, _ := newPreconditioner(c.Preconditioner)
	switch strings.ToLower(c.Solver) {
	case "pcg":
		s = &PCG{Controls: c, precon: pc}
	case "pbicgstab":
		s = &PBiCGStab{Controls: c, precon: pc}
	case "smoothsolver":
		s = &SmoothSolver{Controls: c}
	case "direct":
		s = &Direct{}
	}
	return
}

/*
NormFactor is the OpenFOAM residual normalisation
Σ(|Ax - xRef·ΣA| + |b - xRef·ΣA|) + small, xRef the mean of x.
*/
func NormFactor(A *Matrix, x, b, Ax []float64) float64 {
	var (
		xRef = floats.Sum(x) / float64(len(x))
		sumA = A.SumA()
		nf   float64
	)
	for i := range x {
		t := sumA[i] * xRef
		nf += math.Abs(Ax[i]-t) + math.Abs(b[i]-t)
	}
	return nf + smallResidual
}

func sumMag(x []float64) float64 {
	return floats.Norm(x, 1)
}

func (c Controls) converged(initial, final float64) bool {
	return final < c.Tolerance || (c.RelTol > 0 && final < c.RelTol*initial)
}

func (c Controls) keepIterating(nIter int, initial, final float64) bool {
	return (nIter < c.MaxIter && !c.converged(initial, final)) || nIter < c.MinIter
}
