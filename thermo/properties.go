// Package thermo provides the thermophysical models of fluid and solid regions
package thermo

import (
	"fmt"
	"strings"

	"github.com/notargets/gofv/types"
)

const (
	Tstd = 298.15  // Reference temperature of the sensible enthalpy, K
	RR   = 8314.47 // Universal gas constant, J/(kmol K)
)

type EquationOfState uint8

const (
	RhoConst EquationOfState = iota
	PerfectGas
)

func (e EquationOfState) String() string {
	return [...]string{"rhoConst", "perfectGas"}[e]
}

func NewEquationOfState(name string) (e EquationOfState, err error) {
	switch strings.ToLower(name) {
	case "rhoconst", "":
		e = RhoConst
	case "perfectgas":
		e = PerfectGas
	default:
		err = fmt.Errorf("unknown equation of state %q, choose from rhoConst, perfectGas", name)
	}
	return
}

// SpecieProperties is one component of a mixture
type SpecieProperties struct {
	Name string  `json:"name"`
	W    float64 `json:"W"`            // Molecular weight, kg/kmol
	Cp   float64 `json:"Cp"`           // J/(kg K)
	Dm   float64 `json:"Dm,omitempty"` // Mass diffusivity, m^2/s
	Y    float64 `json:"Y0"`           // Initial mass fraction
	// Inactive species are transported by the inert balance only
	Inactive bool `json:"inactive,omitempty"`
}

// FluidProperties configures a fluid region
type FluidProperties struct {
	EquationOfState string             `json:"equationOfState"`
	Rho             float64            `json:"rho,omitempty"` // rhoConst only
	W               float64            `json:"W,omitempty"`   // Single component molecular weight
	Cp              float64            `json:"Cp,omitempty"`  // Single component heat capacity
	Mu              float64            `json:"mu"`
	Pr              float64            `json:"Pr"`
	Species         []SpecieProperties `json:"species,omitempty"`
	InertSpecie     string             `json:"inertSpecie,omitempty"`
}

func (fp *FluidProperties) SetDefaults() {
	if fp.Cp == 0 {
		fp.Cp = 1005
	}
	if fp.W == 0 {
		fp.W = 28.9
	}
	if fp.Pr == 0 {
		fp.Pr = 0.7
	}
	for i := range fp.Species {
		if fp.Species[i].Dm == 0 {
			fp.Species[i].Dm = 1.e-10
		}
	}
}

func (fp FluidProperties) Validate() (err error) {
	var eos EquationOfState
	if eos, err = NewEquationOfState(fp.EquationOfState); err != nil {
		return
	}
	if eos == RhoConst && fp.Rho <= 0 {
		return fmt.Errorf("rhoConst requires a positive rho, have %g", fp.Rho)
	}
	if fp.Mu < 0 || fp.Pr <= 0 {
		return fmt.Errorf("invalid transport properties mu = %g, Pr = %g", fp.Mu, fp.Pr)
	}
	for _, sp := range fp.Species {
		if sp.W <= 0 || sp.Cp <= 0 {
			return fmt.Errorf("specie %s needs positive W and Cp", sp.Name)
		}
	}
	return
}

// Anisotropy gives principal conductivities along the axes of a cartesian system
type Anisotropy struct {
	Kappa types.Vec3 `json:"kappa"`
	E1    types.Vec3 `json:"e1"`
	E3    types.Vec3 `json:"e3"`
}

// SolidProperties configures a solid region
type SolidProperties struct {
	Rho         float64     `json:"rho"`
	Cp          float64     `json:"Cp"`
	Kappa       float64     `json:"kappa,omitempty"`
	Anisotropic *Anisotropy `json:"anisotropic,omitempty"`
}

func (sp SolidProperties) Validate() (err error) {
	if sp.Rho <= 0 || sp.Cp <= 0 {
		return fmt.Errorf("solid needs positive rho and Cp, have %g and %g", sp.Rho, sp.Cp)
	}
	if sp.Anisotropic == nil && sp.Kappa <= 0 {
		return fmt.Errorf("isotropic solid needs a positive kappa, have %g", sp.Kappa)
	}
	if a := sp.Anisotropic; a != nil {
		if a.E1.Mag() == 0 || a.E3.Mag() == 0 || a.E1.Cross(a.E3).Mag() == 0 {
			return fmt.Errorf("anisotropic solid needs two independent axes e1 and e3")
		}
	}
	return
}
