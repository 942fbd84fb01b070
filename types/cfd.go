package types

import (
	"fmt"
	"strings"
)

// PatchType is the geometric role of a mesh boundary patch
type PatchType uint8

const (
	PT_Patch PatchType = iota
	PT_Wall
	PT_Empty
	PT_Symmetry
	PT_Interface // Shares its faces with a patch of another region
)

var patchTypeNames = []string{"patch", "wall", "empty", "symmetry", "interface"}

func (pt PatchType) String() string {
	if int(pt) < len(patchTypeNames) {
		return patchTypeNames[pt]
	}
	return fmt.Sprintf("PatchType(%d)", pt)
}

var PatchNameMap = map[string]PatchType{
	"patch":     PT_Patch,
	"inlet":     PT_Patch,
	"outlet":    PT_Patch,
	"wall":      PT_Wall,
	"empty":     PT_Empty,
	"symmetry":  PT_Symmetry,
	"interface": PT_Interface,
	"mapped":    PT_Interface,
}

func NewPatchType(label string) (pt PatchType, err error) {
	var ok bool
	if pt, ok = PatchNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown patch type [%s]", label)
	}
	return
}

// BCKIND is the boundary condition applied to a field on one patch
type BCKIND uint8

const (
	BC_Calculated BCKIND = iota
	BC_FixedValue
	BC_ZeroGradient
	BC_FixedGradient
	BC_FixedFluxPressure
	BC_Coupled
	BC_Empty
)

var bcKindNames = []string{"calculated", "fixedValue", "zeroGradient", "fixedGradient",
	"fixedFluxPressure", "coupled", "empty"}

func (bc BCKIND) String() string {
	if int(bc) < len(bcKindNames) {
		return bcKindNames[bc]
	}
	return fmt.Sprintf("BCKIND(%d)", bc)
}

var BCNameMap = map[string]BCKIND{
	"calculated":        BC_Calculated,
	"fixedvalue":        BC_FixedValue,
	"dirichlet":         BC_FixedValue,
	"zerogradient":      BC_ZeroGradient,
	"neuman":            BC_ZeroGradient,
	"fixedgradient":     BC_FixedGradient,
	"fixedfluxpressure": BC_FixedFluxPressure,
	"coupled":           BC_Coupled,
	"empty":             BC_Empty,
}

func NewBCKind(label string) (bc BCKIND, err error) {
	var ok bool
	if bc, ok = BCNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown boundary condition type [%s]", label)
	}
	return
}

// Assignable reports whether the boundary value follows the interior solution,
// i.e. the patch does not impose the value of the field
func (bc BCKIND) Assignable() bool {
	switch bc {
	case BC_FixedValue, BC_Coupled:
		return false
	}
	return true
}
