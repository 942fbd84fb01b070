package fields

import (
	"fmt"
	"math"

	"github.com/notargets/gofv/mesh"
	"github.com/notargets/gofv/types"
)

type VolScalarField struct {
	Name     string
	Dims     types.Dimensions
	Mesh     *mesh.Mesh
	Internal []float64 // Per cell
	Boundary []float64 // Per boundary face
	Kinds    []types.BCKIND
	Gradient []float64 // Per boundary face, used by gradient conditions
	old      [][]float64
	prevIter []float64
	prevB    []float64
}

func NewVolScalarField(name string, dims types.Dimensions, m *mesh.Mesh, value float64) (f *VolScalarField) {
	f = &VolScalarField{
		Name:     name,
		Dims:     dims,
		Mesh:     m,
		Internal: make([]float64, m.NCells),
		Boundary: make([]float64, m.NBoundaryFaces()),
		Kinds:    make([]types.BCKIND, len(m.Patches)),
		Gradient: make([]float64, m.NBoundaryFaces()),
	}
	for i := range f.Internal {
		f.Internal[i] = value
	}
	for b := range f.Boundary {
		f.Boundary[b] = value
	}
	for pi, p := range m.Patches {
		f.Kinds[pi] = DefaultBCKind(p.Type)
	}
	return
}

// NewCalculatedScalarField holds derived values, its boundary is set by the caller
func NewCalculatedScalarField(name string, dims types.Dimensions, m *mesh.Mesh, value float64) (f *VolScalarField) {
	f = NewVolScalarField(name, dims, m, value)
	for pi, p := range m.Patches {
		if p.Type != types.PT_Empty {
			f.Kinds[pi] = types.BC_Calculated
		}
	}
	return
}

func (f *VolScalarField) FieldName() string           { return f.Name }
func (f *VolScalarField) FieldDims() types.Dimensions { return f.Dims }
func (f *VolScalarField) FieldKind() Kind             { return KindVolScalar }

func (f *VolScalarField) BoundaryKind(b int) types.BCKIND {
	return f.Kinds[f.Mesh.FacePatch[b]]
}

func (f *VolScalarField) SetBC(pi int, bc ScalarBC) (err error) {
	if err = checkBCKind(f.Mesh, pi, bc.Kind); err != nil {
		return fmt.Errorf("field %s: %w", f.Name, err)
	}
	f.Kinds[pi] = bc.Kind
	b0, b1 := patchFaces(f.Mesh, pi)
	for b := b0; b < b1; b++ {
		switch bc.Kind {
		case types.BC_FixedValue, types.BC_Coupled, types.BC_Calculated:
			f.Boundary[b] = bc.Value
		case types.BC_FixedGradient, types.BC_FixedFluxPressure:
			f.Gradient[b] = bc.Gradient
		}
	}
	return
}

func (f *VolScalarField) SetBCByName(patch string, bc ScalarBC) (err error) {
	var pi int
	if pi, err = f.Mesh.PatchIndex(patch); err != nil {
		return fmt.Errorf("field %s: %w", f.Name, err)
	}
	return f.SetBC(pi, bc)
}

// Clone copies values and boundary conditions, not the history
func (f *VolScalarField) Clone(name string) (g *VolScalarField) {
	g = &VolScalarField{
		Name:     name,
		Dims:     f.Dims,
		Mesh:     f.Mesh,
		Internal: append([]float64(nil), f.Internal...),
		Boundary: append([]float64(nil), f.Boundary...),
		Kinds:    append([]types.BCKIND(nil), f.Kinds...),
		Gradient: append([]float64(nil), f.Gradient...),
	}
	return
}

// Assign copies the values of g, keeping the boundary conditions of f
func (f *VolScalarField) Assign(g *VolScalarField) {
	types.CheckDims(f.Dims, g.Dims, "assign "+f.Name+" = "+g.Name)
	copy(f.Internal, g.Internal)
	copy(f.Boundary, g.Boundary)
}

func (f *VolScalarField) SetUniform(value float64) {
	for i := range f.Internal {
		f.Internal[i] = value
	}
	for b := range f.Boundary {
		f.Boundary[b] = value
	}
}

// CorrectBoundaryConditions updates boundary values that follow the interior
func (f *VolScalarField) CorrectBoundaryConditions() {
	var (
		m    = f.Mesh
		nInt = m.NInternalFaces
	)
	for b := range f.Boundary {
		fc := b + nInt
		P := m.Owner[fc]
		switch f.BoundaryKind(b) {
		case types.BC_ZeroGradient, types.BC_Empty:
			f.Boundary[b] = f.Internal[P]
		case types.BC_FixedGradient, types.BC_FixedFluxPressure:
			f.Boundary[b] = f.Internal[P] + f.Gradient[b]/m.DeltaCoeffs[fc]
		}
	}
}

func (f *VolScalarField) ValueCoeffs(b int) (vic, vbc float64) {
	fc := b + f.Mesh.NInternalFaces
	return valueCoeffs(f.BoundaryKind(b), f.Mesh.DeltaCoeffs[fc], f.Boundary[b], f.Gradient[b])
}

func (f *VolScalarField) GradientCoeffs(b int) (gic, gbc float64) {
	fc := b + f.Mesh.NInternalFaces
	return gradientCoeffs(f.BoundaryKind(b), f.Mesh.DeltaCoeffs[fc], f.Boundary[b], f.Gradient[b])
}

// SnGradBoundary is the face normal gradient at boundary face b
func (f *VolScalarField) SnGradBoundary(b int) float64 {
	fc := b + f.Mesh.NInternalFaces
	return (f.Boundary[b] - f.Internal[f.Mesh.Owner[fc]]) * f.Mesh.DeltaCoeffs[fc]
}

// NeedReference is true when no boundary condition fixes the level of the field
func (f *VolScalarField) NeedReference() bool {
	for pi, kind := range f.Kinds {
		if f.Mesh.Patches[pi].Size > 0 && (kind == types.BC_FixedValue || kind == types.BC_Coupled) {
			return false
		}
	}
	return true
}

func (f *VolScalarField) StoreOldTime() {
	cur := append([]float64(nil), f.Internal...)
	f.old = append([][]float64{cur}, f.old...)
	if len(f.old) > 2 {
		f.old = f.old[:2]
	}
}

// OldTime returns the internal values n time levels back, the current values
// stand in for levels that were never stored
func (f *VolScalarField) OldTime(n int) []float64 {
	if n == 0 {
		return f.Internal
	}
	if len(f.old) == 0 {
		return f.Internal
	}
	if n > len(f.old) {
		n = len(f.old)
	}
	return f.old[n-1]
}

func (f *VolScalarField) NOldTimes() int { return len(f.old) }

func (f *VolScalarField) StorePrevIter() {
	f.prevIter = append(f.prevIter[:0], f.Internal...)
	f.prevB = append(f.prevB[:0], f.Boundary...)
}

func (f *VolScalarField) PrevIter() []float64 {
	if f.prevIter == nil {
		return f.Internal
	}
	return f.prevIter
}

// Relax sets f = prev + alpha*(f - prev) using the stored previous iteration
func (f *VolScalarField) Relax(alpha float64) {
	if f.prevIter == nil || alpha >= 1 {
		return
	}
	for i, v := range f.Internal {
		f.Internal[i] = f.prevIter[i] + alpha*(v-f.prevIter[i])
	}
	for b, v := range f.Boundary {
		f.Boundary[b] = f.prevB[b] + alpha*(v-f.prevB[b])
	}
}

func (f *VolScalarField) Min() (mn float64) {
	mn = math.Inf(1)
	for _, v := range f.Internal {
		mn = math.Min(mn, v)
	}
	return
}

func (f *VolScalarField) Max() (mx float64) {
	mx = math.Inf(-1)
	for _, v := range f.Internal {
		mx = math.Max(mx, v)
	}
	return
}

// ClampMin bounds the internal and boundary values from below
func (f *VolScalarField) ClampMin(lo float64) {
	for i := range f.Internal {
		f.Internal[i] = math.Max(f.Internal[i], lo)
	}
	for b := range f.Boundary {
		f.Boundary[b] = math.Max(f.Boundary[b], lo)
	}
}

func (f *VolScalarField) Clamp(lo, hi float64) {
	for i := range f.Internal {
		f.Internal[i] = math.Max(lo, math.Min(hi, f.Internal[i]))
	}
	for b := range f.Boundary {
		f.Boundary[b] = math.Max(lo, math.Min(hi, f.Boundary[b]))
	}
}
