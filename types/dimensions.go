package types

import (
	"fmt"
	"strings"
)

// Dimensions holds the SI exponents of a quantity in the order
// mass, length, time, temperature, moles, current, luminous intensity
type Dimensions [7]int8

var (
	Dimless        = Dimensions{}
	DimMass        = Dimensions{1, 0, 0, 0, 0, 0, 0}
	DimLength      = Dimensions{0, 1, 0, 0, 0, 0, 0}
	DimTime        = Dimensions{0, 0, 1, 0, 0, 0, 0}
	DimTemperature = Dimensions{0, 0, 0, 1, 0, 0, 0}
	DimMoles       = Dimensions{0, 0, 0, 0, 1, 0, 0}

	DimArea                = DimLength.Pow(2)
	DimVolume              = DimLength.Pow(3)
	DimVelocity            = DimLength.Div(DimTime)
	DimAcceleration        = DimVelocity.Div(DimTime)
	DimDensity             = DimMass.Div(DimVolume)
	DimPressure            = DimMass.Div(DimLength).Div(DimTime.Pow(2))
	DimMassFlux            = DimMass.Div(DimTime)
	DimVolumeFlux          = DimVolume.Div(DimTime)
	DimDynamicViscosity    = DimMass.Div(DimLength).Div(DimTime)
	DimKinematicViscosity  = DimArea.Div(DimTime)
	DimSpecificEnergy      = DimVelocity.Pow(2)
	DimEnergy              = DimMass.Mul(DimSpecificEnergy)
	DimPower               = DimEnergy.Div(DimTime)
	DimSpecificHeat        = DimSpecificEnergy.Div(DimTemperature)
	DimGasConstant         = DimSpecificHeat
	DimCompressibility     = DimDensity.Div(DimPressure)
	DimThermalConductivity = DimPower.Div(DimLength).Div(DimTemperature)
	DimForce               = DimMass.Mul(DimAcceleration)
)

func (d Dimensions) Mul(o Dimensions) (r Dimensions) {
	for i := range d {
		r[i] = d[i] + o[i]
	}
	return
}

func (d Dimensions) Div(o Dimensions) (r Dimensions) {
	for i := range d {
		r[i] = d[i] - o[i]
	}
	return
}

func (d Dimensions) Pow(n int) (r Dimensions) {
	for i := range d {
		r[i] = d[i] * int8(n)
	}
	return
}

func (d Dimensions) Inv() Dimensions { return Dimless.Div(d) }

func (d Dimensions) IsDimless() bool { return d == Dimless }

var dimSymbols = [7]string{"kg", "m", "s", "K", "mol", "A", "cd"}

func (d Dimensions) String() string {
	var parts []string
	for i, e := range d {
		if e == 0 {
			continue
		}
		if e == 1 {
			parts = append(parts, dimSymbols[i])
		} else {
			parts = append(parts, fmt.Sprintf("%s^%d", dimSymbols[i], e))
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// CheckDims panics when two operands of an equation have different dimensions
func CheckDims(a, b Dimensions, operation string) {
	if a != b {
		panic(fmt.Errorf("incompatible dimensions for operation %s: %v and %v", operation, a, b))
	}
}
