package linsolve

import (
	"fmt"
	"math"
)

// Performance is the outcome of one linear solve
type Performance struct {
	Solver          string
	Field           string
	InitialResidual float64
	FinalResidual   float64
	NIterations     int
	Converged       bool
	Singular        bool
}

func (p Performance) String() string {
	return fmt.Sprintf("%s:  Solving for %s, Initial residual = %11.4e, Final residual = %11.4e, No Iterations %d",
		p.Solver, p.Field, p.InitialResidual, p.FinalResidual, p.NIterations)
}

/*
Merge combines the component solves of a vector field into one record, keeping
the largest residuals and iteration count.
*/
func Merge(field string, perfs ...Performance) (p Performance) {
	p.Field = field
	p.Converged = true
	for i, pc := range perfs {
		if i == 0 {
			p.Solver = pc.Solver
		}
		p.InitialResidual = math.Max(p.InitialResidual, pc.InitialResidual)
		p.FinalResidual = math.Max(p.FinalResidual, pc.FinalResidual)
		if pc.NIterations > p.NIterations {
			p.NIterations = pc.NIterations
		}
		p.Converged = p.Converged && pc.Converged
		p.Singular = p.Singular || pc.Singular
	}
	return
}
