package control

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/notargets/gofv/fvm"
)

const (
	small = 1.e-15
	great = 1.e15
)

type WriteControl uint8

const (
	WriteTimeStep WriteControl = iota
	WriteRunTime
	WriteAdjustableRunTime
)

func NewWriteControl(name string) (wc WriteControl, err error) {
	switch strings.ToLower(name) {
	case "", "timestep":
		wc = WriteTimeStep
	case "runtime":
		wc = WriteRunTime
	case "adjustableruntime":
		wc = WriteAdjustableRunTime
	default:
		err = fmt.Errorf("unknown writeControl %q, choose from timeStep, runTime, adjustableRunTime", name)
	}
	return
}

type TimeProperties struct {
	StartTime      float64 `json:"startTime,omitempty"`
	EndTime        float64 `json:"endTime"`
	DeltaT         float64 `json:"deltaT"`
	DdtScheme      string  `json:"ddtScheme,omitempty"`
	WriteControl   string  `json:"writeControl,omitempty"`
	WriteInterval  float64 `json:"writeInterval,omitempty"`
	AdjustTimeStep bool    `json:"adjustTimeStep,omitempty"`
	MaxCo          float64 `json:"maxCo,omitempty"`
	MaxDi          float64 `json:"maxDi,omitempty"`
	MaxDeltaT      float64 `json:"maxDeltaT,omitempty"`
}

func (tp *TimeProperties) SetDefaults() {
	if tp.DdtScheme == "" {
		tp.DdtScheme = "steadyState"
	}
	if tp.WriteInterval == 0 {
		// Only the end time
		tp.WriteInterval = great
	}
	if tp.MaxCo == 0 {
		tp.MaxCo = 1
	}
	if tp.MaxDi == 0 {
		tp.MaxDi = 10
	}
	if tp.MaxDeltaT == 0 {
		tp.MaxDeltaT = great
	}
}

/*
Time is the run time of a case. A steady case counts iterations with a unit
time step.
*/
type Time struct {
	Props        TimeProperties
	Value        float64
	Index        int
	scheme       fvm.DdtScheme
	writeControl WriteControl
	deltaT       float64
	deltaT0      float64 // Step size of the previous step
	lastStep     float64
	nextWrite    float64
}

func NewTime(props TimeProperties) (t *Time, err error) {
	props.SetDefaults()
	t = &Time{Props: props, Value: props.StartTime, deltaT: props.DeltaT}
	if t.scheme, err = fvm.NewDdtScheme(props.DdtScheme); err != nil {
		return nil, err
	}
	if t.writeControl, err = NewWriteControl(props.WriteControl); err != nil {
		return nil, err
	}
	if t.scheme == fvm.SteadyState {
		t.deltaT = 1
		t.Props.AdjustTimeStep = false
	}
	switch {
	case props.EndTime <= props.StartTime:
		return nil, fmt.Errorf("endTime %g must be after startTime %g", props.EndTime, props.StartTime)
	case t.deltaT <= 0:
		return nil, fmt.Errorf("deltaT must be positive, have %g", props.DeltaT)
	case props.WriteInterval <= 0:
		return nil, fmt.Errorf("writeInterval must be positive, have %g", props.WriteInterval)
	case props.MaxCo <= 0 || props.MaxDi <= 0 || props.MaxDeltaT <= 0:
		return nil, fmt.Errorf("maxCo, maxDi and maxDeltaT must be positive")
	}
	t.nextWrite = props.StartTime + props.WriteInterval
	return
}

func (t *Time) Transient() bool { return t.scheme != fvm.SteadyState }

func (t *Time) DeltaT() float64 { return t.deltaT }

// State is what the time derivative of the current step needs
func (t *Time) State() fvm.TimeState {
	return fvm.TimeState{Scheme: t.scheme, DeltaT: t.deltaT, DeltaT0: t.deltaT0}
}

// Run reports whether another step remains before the end time
func (t *Time) Run() bool {
	return t.Value < t.Props.EndTime-1.e-6*t.deltaT
}

// Advance moves to the next time step
func (t *Time) Advance() {
	if t.Transient() {
		t.deltaT = math.Min(t.deltaT, t.Props.EndTime-t.Value)
	}
	t.deltaT0 = t.lastStep
	t.lastStep = t.deltaT
	t.Value += t.deltaT
	t.Index++
}

// WriteTime reports whether the fields of the current step are written
func (t *Time) WriteTime() (write bool) {
	if t.writeControl == WriteTimeStep {
		n := int(math.Round(t.Props.WriteInterval))
		return n < 1 || t.Index%n == 0 || !t.Run()
	}
	if t.Value >= t.nextWrite-1.e-6*t.deltaT {
		write = true
		for t.nextWrite <= t.Value+1.e-6*t.deltaT {
			t.nextWrite += t.Props.WriteInterval
		}
	}
	return write || !t.Run()
}

func (t *Time) Name() string {
	return TimeName(t.Value)
}

// TimeName formats a time the way the output directories are named
func TimeName(value float64) string {
	return strconv.FormatFloat(value, 'g', 8, 64)
}

/*
SetInitialDeltaT limits the first time step of an adjustable run by the
Courant number of the fluid and the diffusion number of the solid regions.
*/
func (t *Time) SetInitialDeltaT(coNum, diNum float64) {
	if !t.Props.AdjustTimeStep {
		return
	}
	dt := t.deltaT
	if coNum > small {
		dt = math.Min(dt, t.Props.MaxCo*t.deltaT/coNum)
	}
	if diNum > small {
		dt = math.Min(dt, t.Props.MaxDi*t.deltaT/diNum)
	}
	t.deltaT = t.clipToWrite(math.Min(dt, t.Props.MaxDeltaT))
}

/*
AdjustDeltaT sets the next time step from the Courant and diffusion numbers
of the last one. The fluid step grows by no more than 20% per step and by
no more than 10% of the Courant limit.
*/
func (t *Time) AdjustDeltaT(coNum, diNum float64) {
	if !t.Props.AdjustTimeStep {
		return
	}
	maxDeltaTFluid := t.Props.MaxCo / (coNum + small)
	maxDeltaTSolid := t.Props.MaxDi / (diNum + small)
	deltaTFluid := math.Min(math.Min(maxDeltaTFluid, 1+0.1*maxDeltaTFluid), 1.2)
	dt := math.Min(math.Min(deltaTFluid, maxDeltaTSolid)*t.deltaT, t.Props.MaxDeltaT)
	t.deltaT = t.clipToWrite(dt)
}

// clipToWrite spreads the steps to the next write time evenly when writing at adjustable times
func (t *Time) clipToWrite(dt float64) float64 {
	if t.writeControl != WriteAdjustableRunTime {
		return dt
	}
	toWrite := t.nextWrite - t.Value
	if toWrite <= 0 {
		return dt
	}
	nSteps := math.Ceil(toWrite/dt - 1.e-6)
	if nSteps < 1 {
		nSteps = 1
	}
	return toWrite / nSteps
}
