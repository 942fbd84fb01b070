package MultiRegion

import (
	"math"

	"github.com/notargets/gofv/control"
	"github.com/notargets/gofv/fvc"
	"github.com/notargets/gofv/fvm"
	"github.com/notargets/gofv/thermo"
)

/*
solveSpecies corrects the reaction model and solves the transport of each
active specie other than the inert one
	ddt(rho, Yi) + div(phi, Yi) - laplacian(rho Deff, Yi) = R(Yi) + fvOptions
clipping the result at zero. The inert specie takes up the balance
1 - sum Yi over the solved species, clipped at zero without renormalising
the others.
*/
func (fr *FluidRegion) solveSpecies(sc *control.SolutionControl, ts fvm.TimeState) {
	comp := fr.Thermo.Comp
	if comp == nil {
		return
	}
	if fr.Combustion.Active() {
		fr.Combustion.Correct()
		fr.Qdot = fr.Combustion.Qdot()
	}
	for i, Y := range comp.Y {
		if i == comp.InertIndex || !comp.Active(i) {
			continue
		}
		YEqn := fvm.Div(fr.Phi, Y, !ts.Transient())
		YEqn.Sub(fvm.Laplacian(fvc.Interpolate(fr.diffusivity(i)), Y))
		YEqn.Sub(fr.Combustion.R(Y))
		YEqn.Sub(fr.FvOptions.Source(fr.Rho, Y))
		if ts.Transient() {
			YEqn.Add(fvm.Ddt(fr.Rho, Y, ts))
		}
		YEqn.Relax(sc.EquationRelaxation("Yi"))
		fr.FvOptions.Constrain(YEqn)
		sc.Record(YEqn.Solve(sc.Solver("Yi", sc.FinalIter())))
		fr.FvOptions.Correct(Y)
		Y.ClampMin(0)
	}
	updateInertSpecie(comp)
}

// updateInertSpecie sets the inert mass fraction to 1 - sum Yi over the active species, clipped at zero
func updateInertSpecie(comp *thermo.Composition) {
	var (
		inert = comp.Y[comp.InertIndex]
		Yt    = make([]float64, len(inert.Internal))
		YtB   = make([]float64, len(inert.Boundary))
	)
	for i, Y := range comp.Y {
		if i == comp.InertIndex || !comp.Active(i) {
			continue
		}
		for c, y := range Y.Internal {
			Yt[c] += y
		}
		for b, y := range Y.Boundary {
			YtB[b] += y
		}
	}
	for c, yt := range Yt {
		inert.Internal[c] = math.Max(1-yt, 0)
	}
	for b, yt := range YtB {
		inert.Boundary[b] = math.Max(1-yt, 0)
	}
}
