package turbulence

import (
	"math"

	"github.com/notargets/gofv/fvc"
)

const Kappa = 0.41 // von Karman constant

// Laminar has no eddy viscosity
type Laminar struct {
	eddyViscosity
}

func (l *Laminar) Name() string { return "laminar" }

func (l *Laminar) Correct() {}

// ConstantEddyViscosity holds nut at a configured value away from walls
type ConstantEddyViscosity struct {
	eddyViscosity
}

func (ce *ConstantEddyViscosity) Name() string { return "constantEddyViscosity" }

func (ce *ConstantEddyViscosity) Correct() {
	ce.nut.SetUniform(ce.props.Nut)
	ce.wallBoundary()
}

/*
MixingLength is Prandtl's algebraic model, nut = (Kappa lm)^2 |S| with
|S| = sqrt(2 S:S) and S the symmetric part of grad(U).
*/
type MixingLength struct {
	eddyViscosity
	MagS []float64
}

func (ml *MixingLength) Name() string { return "mixingLength" }

func (ml *MixingLength) Correct() {
	var (
		gradU = fvc.GradVector(ml.U)
		lm    = Kappa * ml.props.MixingLength
	)
	if ml.MagS == nil {
		ml.MagS = make([]float64, len(gradU))
	}
	for c, g := range gradU {
		var sum float64
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				s := 0.5 * (g[3*i+j] + g[3*j+i])
				sum += s * s
			}
		}
		ml.MagS[c] = math.Sqrt(2 * sum)
		ml.nut.Internal[c] = lm * lm * ml.MagS[c]
	}
	ml.wallBoundary()
}
