package MultiRegion

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/notargets/gofv/InputParameters"
	"github.com/notargets/gofv/control"
	"github.com/notargets/gofv/fields"
	"github.com/notargets/gofv/mesh"
	"github.com/notargets/gofv/types"
)

/*
Solver marches a multi-region case. Within each outer iteration the fluid
regions are solved first, each through momentum, pressure, energy, species,
density and turbulence, followed by the solid regions. Interface
temperatures are refreshed from the neighbouring regions before each region
is solved.
*/
type Solver struct {
	Params  *InputParameters.CaseParameters
	CaseDir string // Fields are read and written below it, "" disables file I/O
	Mesh    *mesh.Mesh
	Time    *control.Time
	Control *control.SolutionControl
	Fluids  []*FluidRegion
	Solids  []*SolidRegion
	thermal map[string]thermalRegion
	w       io.Writer
}

func NewSolver(cp *InputParameters.CaseParameters, caseDir string, w io.Writer) (s *Solver, err error) {
	var (
		subs []*mesh.Mesh
	)
	s = &Solver{
		Params:  cp,
		CaseDir: caseDir,
		thermal: make(map[string]thermalRegion),
		w:       w,
	}
	if s.Time, err = control.NewTime(cp.Time); err != nil {
		return nil, err
	}
	if s.Mesh, subs, err = BuildMesh(cp, caseDir, false); err != nil {
		return nil, err
	}
	var (
		ps          = newPatchSet(s.Mesh, subs)
		regionProps = make([]control.RegionProperties, len(cp.Regions))
	)
	for i := range cp.Regions {
		rp := &cp.Regions[i]
		regionProps[i] = rp.Solution
		restart := newRestartReader(caseDir, s.Time.Name(), rp.Name)
		if rp.IsFluid() {
			var fr *FluidRegion
			if fr, err = newFluidRegion(i, rp, subs[i], ps, cp.Gravity, restart); err != nil {
				return nil, err
			}
			s.Fluids = append(s.Fluids, fr)
			s.thermal[fr.Name] = fr
		} else {
			var sr *SolidRegion
			if sr, err = newSolidRegion(i, rp, subs[i], ps, restart); err != nil {
				return nil, err
			}
			s.Solids = append(s.Solids, sr)
			s.thermal[sr.Name] = sr
		}
	}
	if s.Control, err = control.NewSolutionControl(cp.PIMPLE, regionProps, s.Time.Transient(), w); err != nil {
		return nil, err
	}
	for _, fr := range s.Fluids {
		s.Control.AddPrevIterField(fr.Index, fr.U)
		s.Control.AddPrevIterField(fr.Index, fr.P_rgh)
		s.Control.AddPrevIterField(fr.Index, fr.Rho)
		s.Control.AddPrevIterField(fr.Index, fr.Phi)
		if rp := &s.Control.Regions[fr.Index]; rp.PRefCell < 0 || rp.PRefCell >= fr.Mesh.NCells {
			return nil, fmt.Errorf("region %s: pRefCell %d is outside the %d cells",
				fr.Name, rp.PRefCell, fr.Mesh.NCells)
		}
	}
	return
}

// Run marches the case to the end time, or for a steady case until the residual controls are met
func (s *Solver) Run() (err error) {
	var (
		transient = s.Time.Transient()
		steps     int
		start     = time.Now()
		written   bool
	)
	s.PrintInitialization()
	if transient {
		s.Time.SetInitialDeltaT(s.stabilityNumbers())
	}
	for s.Time.Run() {
		if transient && steps > 0 {
			s.Time.AdjustDeltaT(s.stabilityNumbers())
		}
		s.storeOldTimes()
		s.Time.Advance()
		steps++
		fmt.Fprintf(s.w, "Time = %s\n\n", s.Time.Name())
		for s.Control.Loop() {
			if err = s.solveIteration(); err != nil {
				return
			}
		}
		if steps == 1 {
			s.checkOptions()
		}
		written = false
		if s.Time.WriteTime() {
			if err = s.Write(); err != nil {
				return
			}
			written = true
		}
		s.PrintUpdate(time.Since(start))
		if s.Control.SteadyConverged(s.Time.Index) {
			if !written {
				err = s.Write()
			}
			break
		}
	}
	s.PrintFinal(time.Since(start), steps)
	return
}

// solveIteration is one outer iteration over every region
func (s *Solver) solveIteration() (err error) {
	var (
		sc = s.Control
		ts = s.Time.State()
	)
	for _, fr := range s.Fluids {
		sc.SetRegion(fr.Index)
		if err = updateInterfaces(fr, s.thermal); err != nil {
			return
		}
		if sc.SolveFlow() {
			fr.solveMomentum(sc, ts)
			for sc.Correct() {
				if err = fr.solvePressure(sc, ts, s.w); err != nil {
					return
				}
			}
		}
		if sc.SolveEnergy() {
			fr.solveEnergy(sc, ts)
		}
		if sc.SolveSpecies() {
			fr.solveSpecies(sc, ts)
		}
		if sc.SolveFlow() {
			fr.updateDensity(sc, s.w)
			if sc.TurbCorr() {
				fr.Turbulence.Correct()
			}
		}
	}
	for _, sr := range s.Solids {
		sc.SetRegion(sr.Index)
		if err = updateInterfaces(sr, s.thermal); err != nil {
			return
		}
		if sc.SolveEnergy() {
			sr.solveEnergy(sc, ts)
		}
	}
	return
}

// storeOldTimes keeps the fields the time derivatives need before the time advances
func (s *Solver) storeOldTimes() {
	if !s.Time.Transient() {
		return
	}
	for _, fr := range s.Fluids {
		fr.U.StoreOldTime()
		fr.P_rgh.StoreOldTime()
		fr.Rho.StoreOldTime()
		fr.K.StoreOldTime()
		fr.Thermo.H.StoreOldTime()
		fr.Phi.StoreOldTime()
		if comp := fr.Thermo.Comp; comp != nil {
			for _, Y := range comp.Y {
				Y.StoreOldTime()
			}
		}
	}
	for _, sr := range s.Solids {
		sr.Thermo.H.StoreOldTime()
	}
}

/*
stabilityNumbers is the largest Courant number over the fluid regions and
the largest diffusion number over the solid regions.
*/
func (s *Solver) stabilityNumbers() (coNum, diNum float64) {
	dt := s.Time.DeltaT()
	for _, fr := range s.Fluids {
		co, mean := control.CourantNo(fr.Phi, fr.Rho, dt)
		fmt.Fprintf(s.w, "Region: %s Courant Number mean: %g max: %g\n", fr.Name, mean, co)
		coNum = math.Max(coNum, co)
	}
	for _, sr := range s.Solids {
		var (
			m     = sr.Mesh
			props = sr.Thermo.Props
			kappa = props.Kappa
		)
		if !sr.Thermo.Isotropic() {
			k := props.Anisotropic.Kappa
			kappa = math.Max(k[0], math.Max(k[1], k[2]))
		}
		di := control.DiffusionNo(
			fields.NewCalculatedScalarField("kappa", types.DimThermalConductivity, m, kappa),
			fields.NewCalculatedScalarField("rhoCp", types.DimDensity.Mul(types.DimSpecificHeat), m,
				props.Rho*props.Cp),
			dt)
		fmt.Fprintf(s.w, "Region: %s Diffusion Number max: %g\n", sr.Name, di)
		diNum = math.Max(diNum, di)
	}
	return
}

// Write saves the fields of every region at the current time
func (s *Solver) Write() (err error) {
	if s.CaseDir == "" {
		return
	}
	timeName := s.Time.Name()
	for _, fr := range s.Fluids {
		dir := regionDir(s.CaseDir, timeName, fr.Name)
		if err = writeFields(dir, fr.Fields); err != nil {
			return
		}
		if err = writeInitialMass(dir, fr.InitialMass); err != nil {
			return
		}
	}
	for _, sr := range s.Solids {
		if err = writeFields(regionDir(s.CaseDir, timeName, sr.Name), sr.Fields); err != nil {
			return
		}
	}
	fmt.Fprintf(s.w, "Wrote fields at time %s\n", timeName)
	return
}

// checkOptions reports source options that no equation picked up
func (s *Solver) checkOptions() {
	for _, fr := range s.Fluids {
		fr.FvOptions.CheckApplied(s.w)
	}
	for _, sr := range s.Solids {
		sr.FvOptions.CheckApplied(s.w)
	}
}

func (s *Solver) Region(name string) (fr *FluidRegion, sr *SolidRegion) {
	for _, f := range s.Fluids {
		if f.Name == name {
			return f, nil
		}
	}
	for _, r := range s.Solids {
		if r.Name == name {
			return nil, r
		}
	}
	return
}

func (s *Solver) PrintInitialization() {
	fmt.Fprintf(s.w, "%s solver, %d fluid and %d solid regions, %d cells\n",
		s.Control.Algorithm(), len(s.Fluids), len(s.Solids), s.Mesh.NCells)
	printRegions(s.w, s.Fluids, s.Solids)
	fmt.Fprintf(s.w, "Start Time = %s, End Time = %g\n\n", s.Time.Name(), s.Time.Props.EndTime)
}

func (s *Solver) PrintUpdate(elapsed time.Duration) {
	fmt.Fprintf(s.w, "ExecutionTime = %.3f s\n\n", elapsed.Seconds())
}

func (s *Solver) PrintFinal(elapsed time.Duration, steps int) {
	rate := float64(elapsed.Microseconds()) / float64(s.Mesh.NCells*max(steps, 1))
	fmt.Fprintf(s.w, "\nRate of execution = %8.5f us/(cell*iteration) over %d iterations\n", rate, steps)
}
