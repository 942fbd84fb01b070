// Package radiation supplies the radiative source of the energy equations
package radiation

import (
	"fmt"
	"strings"

	"github.com/notargets/gofv/fields"
	"github.com/notargets/gofv/fvm"
	"github.com/notargets/gofv/types"
	"github.com/notargets/gofv/utils"
)

const Sigma = 5.670374419e-8 // Stefan-Boltzmann constant, W/(m^2 K^4)

var dimPowerDensity = types.DimPower.Div(types.DimVolume)

type Properties struct {
	Model        string  `json:"model"`
	Absorptivity float64 `json:"absorptivity,omitempty"` // Grey absorption coefficient, 1/m
	TInf         float64 `json:"Tinf,omitempty"`         // Temperature of the surroundings
	SolverFreq   int     `json:"solverFreq,omitempty"`   // Outer iterations between updates
}

type Model interface {
	Name() string
	// Correct updates the radiative state, every SolverFreq calls
	Correct()
	// Sh is the source of the enthalpy equation, linearised in h
	Sh(h *fields.VolScalarField, cp []float64) *fvm.ScalarMatrix
}

func New(props Properties, T *fields.VolScalarField) (mdl Model, err error) {
	switch strings.ToLower(props.Model) {
	case "", "none":
		mdl = NoRadiation{}
	case "opticallythin":
		if props.Absorptivity <= 0 || props.TInf <= 0 {
			return nil, fmt.Errorf("opticallyThin needs positive absorptivity and Tinf, have %g and %g",
				props.Absorptivity, props.TInf)
		}
		if props.SolverFreq < 1 {
			props.SolverFreq = 1
		}
		ot := &OpticallyThin{
			Props: props,
			T:     T,
			Qr:    fields.NewCalculatedScalarField("Qr", dimPowerDensity, T.Mesh, 0),
		}
		ot.update()
		mdl = ot
	default:
		err = fmt.Errorf("unknown radiation model %q, choose from none, opticallyThin", props.Model)
	}
	return
}

type NoRadiation struct{}

func (NoRadiation) Name() string { return "none" }

func (NoRadiation) Correct() {}

func (NoRadiation) Sh(h *fields.VolScalarField, cp []float64) *fvm.ScalarMatrix {
	return fvm.NewScalarMatrix(h, dimPowerDensity)
}

/*
OpticallyThin is grey emission and absorption of a gas that sees the
surroundings at TInf through a transparent path,
Qr = 4 a Sigma (TInf^4 - T^4) per unit volume.
*/
type OpticallyThin struct {
	Props Properties
	T     *fields.VolScalarField
	Qr    *fields.VolScalarField
	Rp    []float64 // 4 a Sigma per cell
	Ru    []float64 // 4 a Sigma TInf^4 per cell
	calls int
}

func (ot *OpticallyThin) Name() string { return "opticallyThin" }

func (ot *OpticallyThin) Correct() {
	ot.calls++
	if ot.calls%ot.Props.SolverFreq == 0 {
		ot.update()
	}
}

func (ot *OpticallyThin) update() {
	var (
		n  = len(ot.T.Internal)
		rp = 4 * ot.Props.Absorptivity * Sigma
		ru = rp * utils.POW(ot.Props.TInf, 4)
	)
	if ot.Rp == nil {
		ot.Rp, ot.Ru = make([]float64, n), make([]float64, n)
	}
	for c, T := range ot.T.Internal {
		ot.Rp[c], ot.Ru[c] = rp, ru
		ot.Qr.Internal[c] = ru - rp*utils.POW(T, 4)
	}
}

/*
Sh = Ru - Rp T^4 written as Ru - Sp(4 Rp T^3/Cp, h) - Rp T^3 (T - 4 h/Cp),
implicit in h with the T^4 slope.
*/
func (ot *OpticallyThin) Sh(h *fields.VolScalarField, cp []float64) (M *fvm.ScalarMatrix) {
	var (
		m    = h.Mesh
		sp   = make([]float64, m.NCells)
		su   = make([]float64, m.NCells)
		dims = dimPowerDensity.Div(h.Dims)
	)
	for c, T := range ot.T.Internal {
		T3 := utils.POW(T, 3)
		sp[c] = -4 * ot.Rp[c] * T3 / cp[c]
		su[c] = ot.Ru[c] - ot.Rp[c]*T3*(T-4*h.Internal[c]/cp[c])
	}
	M = fvm.Sp(sp, dims, h)
	M.Add(fvm.Su(su, dimPowerDensity, h))
	return
}
