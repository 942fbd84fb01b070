/*
Package combustion supplies species reaction rates and the heat release of
reacting fluid regions.
*/
package combustion

import (
	"fmt"
	"math"
	"strings"

	"github.com/notargets/gofv/fields"
	"github.com/notargets/gofv/fvm"
	"github.com/notargets/gofv/thermo"
	"github.com/notargets/gofv/types"
)

var dimRate = types.DimDensity.Div(types.DimTime)

type Properties struct {
	Model    string  `json:"model"`
	Fuel     string  `json:"fuel,omitempty"`
	Oxidiser string  `json:"oxidiser,omitempty"`
	Product  string  `json:"product,omitempty"`
	S        float64 `json:"s,omitempty"`  // Oxidiser mass consumed per unit fuel mass
	A        float64 `json:"A,omitempty"`  // Pre-exponential factor, m^3/(kg s)
	Ta       float64 `json:"Ta,omitempty"` // Activation temperature, K
	Qc       float64 `json:"Qc,omitempty"` // Heat of combustion per unit fuel mass, J/kg
}

type Model interface {
	Name() string
	Active() bool
	// Correct evaluates the reaction rate from the current state
	Correct()
	// R is the source of the equation of rho*Y for specie Y
	R(Y *fields.VolScalarField) *fvm.ScalarMatrix
	// Qdot is the heat release rate per unit volume
	Qdot() []float64
}

func New(props Properties, comp *thermo.Composition, rho, T *fields.VolScalarField) (mdl Model, err error) {
	switch strings.ToLower(props.Model) {
	case "", "none":
		return &NoCombustion{nCells: len(T.Internal)}, nil
	case "singlestep":
	default:
		return nil, fmt.Errorf("unknown combustion model %q, choose from none, singleStep", props.Model)
	}
	if comp == nil {
		return nil, fmt.Errorf("singleStep combustion needs a multi-component fluid")
	}
	ss := &SingleStep{Props: props, comp: comp, rho: rho, T: T}
	for _, sp := range []struct {
		name string
		idx  *int
	}{{props.Fuel, &ss.fuel}, {props.Oxidiser, &ss.oxidiser}, {props.Product, &ss.product}} {
		if *sp.idx = comp.Index(sp.name); *sp.idx < 0 {
			return nil, fmt.Errorf("specie %q of the reaction not found in available species", sp.name)
		}
	}
	if ss.fuel == ss.oxidiser || ss.fuel == ss.product || ss.oxidiser == ss.product {
		return nil, fmt.Errorf("fuel, oxidiser and product must be distinct species")
	}
	if props.S <= 0 || props.A <= 0 || props.Ta < 0 {
		return nil, fmt.Errorf("singleStep needs positive s and A and a non negative Ta")
	}
	ss.omega = make([]float64, len(T.Internal))
	ss.Correct()
	return ss, nil
}

type NoCombustion struct {
	nCells int
}

func (nc *NoCombustion) Name() string { return "none" }

func (nc *NoCombustion) Active() bool { return false }

func (nc *NoCombustion) Correct() {}

func (nc *NoCombustion) R(Y *fields.VolScalarField) *fvm.ScalarMatrix {
	return fvm.NewScalarMatrix(Y, dimRate)
}

func (nc *NoCombustion) Qdot() []float64 { return make([]float64, nc.nCells) }

/*
SingleStep is the irreversible global reaction F + s O -> (1+s) P with the
fuel consumption rate omega = A rho^2 Y_F Y_O exp(-Ta/T) per unit volume.
Consumption of fuel and oxidiser is implicit in the consumed specie.
*/
type SingleStep struct {
	Props    Properties
	comp     *thermo.Composition
	rho, T   *fields.VolScalarField
	fuel     int
	oxidiser int
	product  int
	omega    []float64
}

func (ss *SingleStep) Name() string { return "singleStep" }

func (ss *SingleStep) Active() bool { return true }

func (ss *SingleStep) Correct() {
	var (
		YF, YO = ss.comp.Y[ss.fuel].Internal, ss.comp.Y[ss.oxidiser].Internal
	)
	for c, T := range ss.T.Internal {
		rho := ss.rho.Internal[c]
		ss.omega[c] = ss.Props.A * rho * rho * math.Max(YF[c], 0) * math.Max(YO[c], 0) *
			math.Exp(-ss.Props.Ta/math.Max(T, 1))
	}
}

// Omega is the fuel consumption rate per unit volume
func (ss *SingleStep) Omega() []float64 { return ss.omega }

func (ss *SingleStep) R(Y *fields.VolScalarField) (M *fvm.ScalarMatrix) {
	var (
		n  = len(ss.omega)
		sp = make([]float64, n)
		su = make([]float64, n)
	)
	switch i := ss.comp.Index(Y.Name); i {
	case ss.fuel, ss.oxidiser:
		scale := 1.
		if i == ss.oxidiser {
			scale = ss.Props.S
		}
		for c, w := range ss.omega {
			if y := Y.Internal[c]; y > 0 {
				sp[c] = -scale * w / y
			}
		}
	case ss.product:
		for c, w := range ss.omega {
			su[c] = (1 + ss.Props.S) * w
		}
	}
	M = fvm.Sp(sp, dimRate, Y)
	M.Add(fvm.Su(su, dimRate, Y))
	return
}

func (ss *SingleStep) Qdot() (q []float64) {
	q = make([]float64, len(ss.omega))
	for c, w := range ss.omega {
		q[c] = w * ss.Props.Qc
	}
	return
}
