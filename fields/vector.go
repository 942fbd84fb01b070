package fields

import (
	"fmt"

	"github.com/notargets/gofv/mesh"
	"github.com/notargets/gofv/types"
)

type VolVectorField struct {
	Name     string
	Dims     types.Dimensions
	Mesh     *mesh.Mesh
	Internal []types.Vec3
	Boundary []types.Vec3
	Kinds    []types.BCKIND
	Gradient []types.Vec3
	old      [][]types.Vec3
	prevIter []types.Vec3
	prevB    []types.Vec3
}

func NewVolVectorField(name string, dims types.Dimensions, m *mesh.Mesh, value types.Vec3) (f *VolVectorField) {
	f = &VolVectorField{
		Name:     name,
		Dims:     dims,
		Mesh:     m,
		Internal: make([]types.Vec3, m.NCells),
		Boundary: make([]types.Vec3, m.NBoundaryFaces()),
		Kinds:    make([]types.BCKIND, len(m.Patches)),
		Gradient: make([]types.Vec3, m.NBoundaryFaces()),
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

func NewCalculatedVectorField(name string, dims types.Dimensions, m *mesh.Mesh, value types.Vec3) (f *VolVectorField) {
	f = NewVolVectorField(name, dims, m, value)
	for pi, p := range m.Patches {
		if p.Type != types.PT_Empty {
			f.Kinds[pi] = types.BC_Calculated
		}
	}
	return
}

func (f *VolVectorField) FieldName() string           { return f.Name }
func (f *VolVectorField) FieldDims() types.Dimensions { return f.Dims }
func (f *VolVectorField) FieldKind() Kind             { return KindVolVector }

func (f *VolVectorField) BoundaryKind(b int) types.BCKIND {
	return f.Kinds[f.Mesh.FacePatch[b]]
}

func (f *VolVectorField) SetBC(pi int, bc VectorBC) (err error) {
	if err = checkBCKind(f.Mesh, pi, bc.Kind); err != nil {
		return fmt.Errorf("field %s: %w", f.Name, err)
	}
	if bc.Kind == types.BC_FixedFluxPressure {
		return fmt.Errorf("field %s: %s applies to pressure only", f.Name, bc.Kind)
	}
	f.Kinds[pi] = bc.Kind
	b0, b1 := patchFaces(f.Mesh, pi)
	for b := b0; b < b1; b++ {
		switch bc.Kind {
		case types.BC_FixedValue, types.BC_Coupled, types.BC_Calculated:
			f.Boundary[b] = bc.Value
		case types.BC_FixedGradient:
			f.Gradient[b] = bc.Gradient
		}
	}
	return
}

func (f *VolVectorField) SetBCByName(patch string, bc VectorBC) (err error) {
	var pi int
	if pi, err = f.Mesh.PatchIndex(patch); err != nil {
		return fmt.Errorf("field %s: %w", f.Name, err)
	}
	return f.SetBC(pi, bc)
}

func (f *VolVectorField) Clone(name string) (g *VolVectorField) {
	g = &VolVectorField{
		Name:     name,
		Dims:     f.Dims,
		Mesh:     f.Mesh,
		Internal: append([]types.Vec3(nil), f.Internal...),
		Boundary: append([]types.Vec3(nil), f.Boundary...),
		Kinds:    append([]types.BCKIND(nil), f.Kinds...),
		Gradient: append([]types.Vec3(nil), f.Gradient...),
	}
	return
}

func (f *VolVectorField) Assign(g *VolVectorField) {
	types.CheckDims(f.Dims, g.Dims, "assign "+f.Name+" = "+g.Name)
	copy(f.Internal, g.Internal)
	copy(f.Boundary, g.Boundary)
}

func (f *VolVectorField) CorrectBoundaryConditions() {
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
		case types.BC_FixedGradient:
			f.Boundary[b] = f.Internal[P].Add(f.Gradient[b].Scale(1. / m.DeltaCoeffs[fc]))
		}
	}
}

func (f *VolVectorField) ValueCoeffs(b int) (vic float64, vbc types.Vec3) {
	fc := b + f.Mesh.NInternalFaces
	kind, dc := f.BoundaryKind(b), f.Mesh.DeltaCoeffs[fc]
	for i := 0; i < 3; i++ {
		vic, vbc[i] = valueCoeffs(kind, dc, f.Boundary[b][i], f.Gradient[b][i])
	}
	return
}

func (f *VolVectorField) GradientCoeffs(b int) (gic float64, gbc types.Vec3) {
	fc := b + f.Mesh.NInternalFaces
	kind, dc := f.BoundaryKind(b), f.Mesh.DeltaCoeffs[fc]
	for i := 0; i < 3; i++ {
		gic, gbc[i] = gradientCoeffs(kind, dc, f.Boundary[b][i], f.Gradient[b][i])
	}
	return
}

// Component extracts one cartesian component of the internal values
func (f *VolVectorField) Component(cmpt int) (c []float64) {
	c = make([]float64, len(f.Internal))
	for i, v := range f.Internal {
		c[i] = v[cmpt]
	}
	return
}

func (f *VolVectorField) SetComponent(cmpt int, c []float64) {
	for i := range f.Internal {
		f.Internal[i][cmpt] = c[i]
	}
}

func (f *VolVectorField) StoreOldTime() {
	cur := append([]types.Vec3(nil), f.Internal...)
	f.old = append([][]types.Vec3{cur}, f.old...)
	if len(f.old) > 2 {
		f.old = f.old[:2]
	}
}

func (f *VolVectorField) OldTime(n int) []types.Vec3 {
	if n == 0 || len(f.old) == 0 {
		return f.Internal
	}
	if n > len(f.old) {
		n = len(f.old)
	}
	return f.old[n-1]
}

func (f *VolVectorField) NOldTimes() int { return len(f.old) }

func (f *VolVectorField) StorePrevIter() {
	f.prevIter = append(f.prevIter[:0], f.Internal...)
	f.prevB = append(f.prevB[:0], f.Boundary...)
}

func (f *VolVectorField) PrevIter() []types.Vec3 {
	if f.prevIter == nil {
		return f.Internal
	}
	return f.prevIter
}

// PrevIterBoundary is the boundary values at the last StorePrevIter
func (f *VolVectorField) PrevIterBoundary() []types.Vec3 {
	if f.prevB == nil {
		return f.Boundary
	}
	return f.prevB
}

func (f *VolVectorField) Relax(alpha float64) {
	if f.prevIter == nil || alpha >= 1 {
		return
	}
	for i, v := range f.Internal {
		f.Internal[i] = f.prevIter[i].Add(v.Sub(f.prevIter[i]).Scale(alpha))
	}
	for b, v := range f.Boundary {
		f.Boundary[b] = f.prevB[b].Add(v.Sub(f.prevB[b]).Scale(alpha))
	}
}

// MaxMag is the largest cell magnitude
func (f *VolVectorField) MaxMag() (mx float64) {
	for _, v := range f.Internal {
		if m := v.Mag(); m > mx {
			mx = m
		}
	}
	return
}
