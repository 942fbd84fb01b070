/*
Package control holds the solution control of a multi-region case: the run
time, the outer corrector loop with its convergence criteria, the
non-orthogonal and PISO sub loops, and the per region relaxation factors
and linear solver controls.
*/
package control

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/notargets/gofv/linsolve"
)

type ResidualMeasure uint8

const (
	InitialResidual ResidualMeasure = iota // First solve of the field in an iteration
	FinalResidual                          // Last solve of the field in an iteration
)

func NewResidualMeasure(name string) (rm ResidualMeasure, err error) {
	switch strings.ToLower(name) {
	case "", "initial":
		rm = InitialResidual
	case "final":
		rm = FinalResidual
	default:
		err = fmt.Errorf("unknown residualMeasure %q, choose from initial, final", name)
	}
	return
}

// Properties are the controls shared by every region
type Properties struct {
	NOuterCorrectors    int    `json:"nOuterCorrectors"`
	NCorrectors         int    `json:"nCorrectors"`
	TurbOnFinalIterOnly *bool  `json:"turbOnFinalIterOnly,omitempty"`
	SIMPLErho           bool   `json:"SIMPLErho,omitempty"`
	ResidualMeasure     string `json:"residualMeasure,omitempty"`
	MinIter             int    `json:"minIter,omitempty"`
}

func (p *Properties) SetDefaults() {
	if p.NOuterCorrectors < 1 {
		p.NOuterCorrectors = 1
	}
	if p.NCorrectors < 1 {
		p.NCorrectors = 1
	}
	if p.TurbOnFinalIterOnly == nil {
		t := true
		p.TurbOnFinalIterOnly = &t
	}
	if p.MinIter < 1 {
		p.MinIter = 1
	}
}

type ResidualTolerance struct {
	Tolerance float64 `json:"tolerance"`
	RelTol    float64 `json:"relTol,omitempty"`
}

// RegionProperties are the solution controls of one region
type RegionProperties struct {
	NNonOrthogonalCorrectors int                          `json:"nNonOrthogonalCorrectors,omitempty"`
	MomentumPredictor        *bool                        `json:"momentumPredictor,omitempty"`
	Consistent               bool                         `json:"consistent,omitempty"`
	Transonic                bool                         `json:"transonic,omitempty"`
	FrozenFlow               bool                         `json:"frozenFlow,omitempty"`
	SolveEnergy              *bool                        `json:"solveEnergy,omitempty"`
	SolveSpecies             *bool                        `json:"solveSpecies,omitempty"`
	PRefCell                 int                          `json:"pRefCell,omitempty"`
	PRefValue                float64                      `json:"pRefValue,omitempty"`
	PCorrLimit               float64                      `json:"pCorrLimit,omitempty"`
	MaintainInitialMass      bool                         `json:"maintainInitialMass,omitempty"`
	RhoMin                   float64                      `json:"rhoMin,omitempty"`
	RhoMax                   float64                      `json:"rhoMax,omitempty"`
	ResidualControl          map[string]ResidualTolerance `json:"residualControl,omitempty"`
	Relaxation               RelaxationFactors            `json:"relaxationFactors,omitempty"`
	Solvers                  map[string]linsolve.Controls `json:"solvers,omitempty"`
}

func (rp *RegionProperties) SetDefaults() {
	t := true
	if rp.MomentumPredictor == nil {
		rp.MomentumPredictor = &t
	}
	if rp.SolveEnergy == nil {
		rp.SolveEnergy = &t
	}
	if rp.SolveSpecies == nil {
		rp.SolveSpecies = &t
	}
}

func (rp *RegionProperties) Validate() (err error) {
	if rp.NNonOrthogonalCorrectors < 0 {
		return fmt.Errorf("nNonOrthogonalCorrectors must not be negative, have %d", rp.NNonOrthogonalCorrectors)
	}
	if rp.PCorrLimit < 0 || rp.PCorrLimit > 1 {
		return fmt.Errorf("pCorrLimit must lie in [0,1], have %g", rp.PCorrLimit)
	}
	if rp.RhoMax > 0 && rp.RhoMax <= rp.RhoMin {
		return fmt.Errorf("rhoMax %g must exceed rhoMin %g", rp.RhoMax, rp.RhoMin)
	}
	for name, c := range rp.Solvers {
		if err = c.WithDefaults().Validate(); err != nil {
			return fmt.Errorf("solver for %s: %w", name, err)
		}
	}
	if err = rp.Relaxation.Validate(); err != nil {
		return
	}
	for _, key := range patterns(rp.ResidualControl) {
		if _, err = regexp.Compile("^(" + key + ")$"); err != nil {
			return fmt.Errorf("residualControl entry %q: %w", key, err)
		}
	}
	return
}

// patterns orders the keys of a lookup table for matching, longest first
func patterns[T any](table map[string]T) (keys []string) {
	for k := range table {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return
}

/*
lookup finds name in table, first as an exact key and then by matching the
keys as anchored regular expressions, longest key first.
*/
func lookup[T any](table map[string]T, name string) (v T, ok bool) {
	if v, ok = table[name]; ok {
		return
	}
	for _, key := range patterns(table) {
		if re, err := regexp.Compile("^(" + key + ")$"); err == nil && re.MatchString(name) {
			return table[key], true
		}
	}
	return
}
