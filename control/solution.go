package control

import (
	"fmt"
	"io"

	"github.com/notargets/gofv/fvm"
	"github.com/notargets/gofv/linsolve"
)

type prevIterStorer interface {
	StorePrevIter()
}

/*
SolutionControl drives the outer corrector loop of all regions of a case.
A transient case runs the PIMPLE loop of up to nOuterCorrectors iterations
per time step, ending early once the residual controls of every region are
met, in which case one more, final, iteration is run. A steady case runs a
single SIMPLE iteration per time step and checks the residual controls
between time steps.

The non-orthogonal and PISO counters belong to the region set with
SetRegion.
*/
type SolutionControl struct {
	Props     Properties
	Regions   []RegionProperties
	Transient bool
	Verbose   bool // Print every linear solve
	w         io.Writer
	measure   ResidualMeasure
	nOuter    int
	region    int
	// Loop state
	corr, corrPISO, corrNonOrtho int
	converged                    bool
	// Per region solver performance of the current outer iteration
	records []map[string][]linsolve.Performance
	// Per region residuals of the first outer iteration, for relTol
	firstResiduals []map[string]float64
	prevIter       [][]prevIterStorer
}

func NewSolutionControl(props Properties, regions []RegionProperties, transient bool, w io.Writer) (sc *SolutionControl, err error) {
	props.SetDefaults()
	sc = &SolutionControl{
		Props:          props,
		Regions:        regions,
		Transient:      transient,
		w:              w,
		nOuter:         props.NOuterCorrectors,
		records:        make([]map[string][]linsolve.Performance, len(regions)),
		firstResiduals: make([]map[string]float64, len(regions)),
		prevIter:       make([][]prevIterStorer, len(regions)),
	}
	if sc.measure, err = NewResidualMeasure(props.ResidualMeasure); err != nil {
		return nil, err
	}
	if !transient {
		sc.nOuter = 1
	}
	for i := range sc.Regions {
		rp := &sc.Regions[i]
		rp.SetDefaults()
		if err = rp.Validate(); err != nil {
			return nil, fmt.Errorf("region %d: %w", i, err)
		}
		sc.records[i] = make(map[string][]linsolve.Performance)
		sc.firstResiduals[i] = make(map[string]float64)
	}
	return
}

func (sc *SolutionControl) Algorithm() string {
	if sc.Transient {
		return "PIMPLE"
	}
	return "SIMPLE"
}

func (sc *SolutionControl) NOuterCorrectors() int { return sc.nOuter }

func (sc *SolutionControl) SetRegion(i int) {
	if i < 0 || i >= len(sc.Regions) {
		panic(fmt.Errorf("region index %d out of range [0,%d)", i, len(sc.Regions)))
	}
	sc.region = i
	sc.corrNonOrtho = 0
	sc.corrPISO = 0
}

func (sc *SolutionControl) RegionIndex() int { return sc.region }

// Region is the solution controls of the current region
func (sc *SolutionControl) Region() *RegionProperties { return &sc.Regions[sc.region] }

// AddPrevIterField registers a field of a region whose previous iteration is stored each outer iteration
func (sc *SolutionControl) AddPrevIterField(region int, f prevIterStorer) {
	sc.prevIter[region] = append(sc.prevIter[region], f)
}

/*
Loop advances the outer corrector and returns false when the time step is
done.
*/
func (sc *SolutionControl) Loop() bool {
	sc.corr++
	alg := sc.Algorithm()
	switch {
	case sc.converged:
		fmt.Fprintf(sc.w, "%s: converged in %d iterations\n", alg, sc.corr-1)
		sc.reset()
		return false
	case sc.corr > sc.nOuter:
		if sc.nOuter > 1 && sc.hasResidualControl() {
			fmt.Fprintf(sc.w, "%s: not converged within %d iterations\n", alg, sc.nOuter)
		}
		sc.reset()
		return false
	case sc.Transient && sc.corr > 1 && sc.corr-1 >= sc.Props.MinIter && sc.criteriaSatisfied():
		// One more iteration with the final settings
		sc.converged = true
	}
	if sc.Transient {
		fmt.Fprintf(sc.w, "%s: iteration %d\n", alg, sc.corr)
	}
	sc.startIteration()
	return true
}

func (sc *SolutionControl) hasResidualControl() bool {
	for _, rp := range sc.Regions {
		if len(rp.ResidualControl) > 0 {
			return true
		}
	}
	return false
}

func (sc *SolutionControl) startIteration() {
	for i := range sc.records {
		sc.records[i] = make(map[string][]linsolve.Performance)
	}
	for _, fs := range sc.prevIter {
		for _, f := range fs {
			f.StorePrevIter()
		}
	}
}

func (sc *SolutionControl) reset() {
	sc.corr = 0
	sc.corrPISO = 0
	sc.corrNonOrtho = 0
	sc.converged = false
	for i := range sc.firstResiduals {
		sc.firstResiduals[i] = make(map[string]float64)
	}
}

// Corr is the current outer corrector, counted from 1
func (sc *SolutionControl) Corr() int { return sc.corr }

func (sc *SolutionControl) FirstIter() bool { return sc.corr == 1 }

// FinalIter is the last outer iteration of a transient time step
func (sc *SolutionControl) FinalIter() bool {
	return sc.Transient && (sc.converged || sc.corr >= sc.nOuter)
}

// TurbCorr reports whether the turbulence closure is corrected in this iteration
func (sc *SolutionControl) TurbCorr() bool {
	return !sc.Transient || !*sc.Props.TurbOnFinalIterOnly || sc.FinalIter()
}

// Correct is the PISO loop within an outer iteration
func (sc *SolutionControl) Correct() bool {
	sc.corrPISO++
	if sc.corrPISO <= sc.Props.NCorrectors {
		return true
	}
	sc.corrPISO = 0
	return false
}

func (sc *SolutionControl) CorrPISO() int { return sc.corrPISO }

// CorrectNonOrthogonal runs nNonOrthogonalCorrectors+1 passes of the current region
func (sc *SolutionControl) CorrectNonOrthogonal() bool {
	sc.corrNonOrtho++
	if sc.corrNonOrtho <= sc.Region().NNonOrthogonalCorrectors+1 {
		return true
	}
	sc.corrNonOrtho = 0
	return false
}

func (sc *SolutionControl) CorrNonOrtho() int { return sc.corrNonOrtho }

func (sc *SolutionControl) FinalNonOrthogonalIter() bool {
	return sc.corrNonOrtho == sc.Region().NNonOrthogonalCorrectors+1
}

func (sc *SolutionControl) FinalInnerIter() bool {
	return sc.FinalIter() &&
		(sc.corrPISO == 0 || sc.corrPISO >= sc.Props.NCorrectors) &&
		(sc.corrNonOrtho == 0 || sc.FinalNonOrthogonalIter())
}

func (sc *SolutionControl) MomentumPredictor() bool { return *sc.Region().MomentumPredictor }

func (sc *SolutionControl) SolveFlow() bool { return !sc.Region().FrozenFlow }

func (sc *SolutionControl) SolveEnergy() bool { return *sc.Region().SolveEnergy }

func (sc *SolutionControl) SolveSpecies() bool { return *sc.Region().SolveSpecies }

func (sc *SolutionControl) FieldRelaxation(name string) float64 {
	return sc.Region().Relaxation.Field(name, sc.FinalIter())
}

func (sc *SolutionControl) EquationRelaxation(name string) float64 {
	return sc.Region().Relaxation.Equation(name, sc.FinalIter())
}

// Solver selects the linear solver controls of a field in the current region
func (sc *SolutionControl) Solver(name string, final bool) linsolve.Controls {
	return solverControls(sc.Region().Solvers, name, final)
}

// Record adds a solve outcome of the current region to the convergence check
func (sc *SolutionControl) Record(perf linsolve.Performance) {
	sc.record(perf)
	if sc.Verbose {
		fmt.Fprintln(sc.w, perf.String())
	}
}

func (sc *SolutionControl) record(perf linsolve.Performance) {
	recs := sc.records[sc.region]
	recs[perf.Field] = append(recs[perf.Field], perf)
	if _, ok := sc.firstResiduals[sc.region][perf.Field]; !ok && sc.corr <= 1 {
		sc.firstResiduals[sc.region][perf.Field] = perf.InitialResidual
	}
}

// SolveScalar solves M with the controls of its field and records the outcome
func (sc *SolutionControl) SolveScalar(M *fvm.ScalarMatrix, final bool) (perf linsolve.Performance) {
	perf = M.Solve(sc.Solver(M.Psi.Name, final))
	sc.Record(perf)
	return
}

func (sc *SolutionControl) SolveVector(M *fvm.VectorMatrix, final bool) (perf linsolve.Performance) {
	perf, cmpts := M.Solve(sc.Solver(M.Psi.Name, final))
	if sc.Verbose {
		for _, pc := range cmpts {
			fmt.Fprintln(sc.w, pc.String())
		}
	}
	sc.record(perf)
	return
}

func (sc *SolutionControl) residual(perfs []linsolve.Performance) float64 {
	if sc.measure == FinalResidual {
		return perfs[len(perfs)-1].FinalResidual
	}
	return perfs[0].InitialResidual
}

/*
criteriaSatisfied is true when at least one recorded field has a residual
control and every such field meets it. A transient field meets it with
either the absolute tolerance or relTol times its residual in the first
outer iteration.
*/
func (sc *SolutionControl) criteriaSatisfied() bool {
	var checked bool
	for ri := range sc.Regions {
		rc := sc.Regions[ri].ResidualControl
		for field, perfs := range sc.records[ri] {
			tol, ok := lookup(rc, field)
			if !ok || len(perfs) == 0 {
				continue
			}
			checked = true
			r := sc.residual(perfs)
			achieved := r < tol.Tolerance
			if sc.Transient && !achieved && tol.RelTol > 0 {
				if r0, ok := sc.firstResiduals[ri][field]; ok && r0 > 0 {
					achieved = r < tol.RelTol*r0
				}
			}
			if !achieved {
				return false
			}
		}
	}
	return checked
}

// SteadyConverged checks the residual controls after a steady iteration, not before minIter iterations
func (sc *SolutionControl) SteadyConverged(iteration int) bool {
	if sc.Transient || iteration < sc.Props.MinIter || !sc.criteriaSatisfied() {
		return false
	}
	fmt.Fprintf(sc.w, "\nSIMPLE solution converged in %d iterations\n\n", iteration)
	return true
}
