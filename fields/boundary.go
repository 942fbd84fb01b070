package fields

import (
	"fmt"

	"github.com/notargets/gofv/mesh"
	"github.com/notargets/gofv/types"
)

type ScalarBC struct {
	Kind     types.BCKIND
	Value    float64
	Gradient float64
}

type VectorBC struct {
	Kind     types.BCKIND
	Value    types.Vec3
	Gradient types.Vec3
}

// DefaultBCKind is the condition a patch gets when none is configured
func DefaultBCKind(pt types.PatchType) types.BCKIND {
	switch pt {
	case types.PT_Empty:
		return types.BC_Empty
	case types.PT_Interface:
		return types.BC_Coupled
	}
	return types.BC_ZeroGradient
}

func checkBCKind(m *mesh.Mesh, pi int, kind types.BCKIND) (err error) {
	if pi < 0 || pi >= len(m.Patches) {
		return fmt.Errorf("patch index %d out of range", pi)
	}
	p := m.Patches[pi]
	if (p.Type == types.PT_Empty) != (kind == types.BC_Empty) {
		return fmt.Errorf("patch %s of type %s can not take a %s condition", p.Name, p.Type, kind)
	}
	if kind == types.BC_Coupled && p.Type != types.PT_Interface {
		return fmt.Errorf("coupled condition on patch %s requires an interface patch", p.Name)
	}
	return
}

// patchFaces is the range [b0, b1) of boundary face indices of patch pi
func patchFaces(m *mesh.Mesh, pi int) (b0, b1 int) {
	p := m.Patches[pi]
	return p.Start - m.NInternalFaces, p.Start + p.Size - m.NInternalFaces
}

/*
Coefficients used by the equation assembler at boundary face b:
 face value = vic*psi_P + vbc
 face normal gradient = gic*psi_P + gbc
*/
func valueCoeffs(kind types.BCKIND, deltaCoeff, value, gradient float64) (vic, vbc float64) {
	switch kind {
	case types.BC_ZeroGradient:
		return 1, 0
	case types.BC_FixedGradient, types.BC_FixedFluxPressure:
		return 1, gradient / deltaCoeff
	case types.BC_Empty:
		return 0, 0
	}
	return 0, value
}

func gradientCoeffs(kind types.BCKIND, deltaCoeff, value, gradient float64) (gic, gbc float64) {
	switch kind {
	case types.BC_ZeroGradient, types.BC_Empty:
		return 0, 0
	case types.BC_FixedGradient, types.BC_FixedFluxPressure:
		return 0, gradient
	}
	return -deltaCoeff, deltaCoeff * value
}
