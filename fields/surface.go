package fields

import (
	"github.com/notargets/gofv/mesh"
	"github.com/notargets/gofv/types"
)

// SurfaceScalarField holds one value per face, internal faces first
type SurfaceScalarField struct {
	Name     string
	Dims     types.Dimensions
	Mesh     *mesh.Mesh
	Values   []float64
	old      []float64
	prevIter []float64
}

func NewSurfaceScalarField(name string, dims types.Dimensions, m *mesh.Mesh, value float64) (f *SurfaceScalarField) {
	f = &SurfaceScalarField{
		Name:   name,
		Dims:   dims,
		Mesh:   m,
		Values: make([]float64, m.NFaces()),
	}
	for i := range f.Values {
		f.Values[i] = value
	}
	return
}

func (f *SurfaceScalarField) FieldName() string           { return f.Name }
func (f *SurfaceScalarField) FieldDims() types.Dimensions { return f.Dims }
func (f *SurfaceScalarField) FieldKind() Kind             { return KindSurfaceScalar }

func (f *SurfaceScalarField) Clone(name string) *SurfaceScalarField {
	return &SurfaceScalarField{
		Name:   name,
		Dims:   f.Dims,
		Mesh:   f.Mesh,
		Values: append([]float64(nil), f.Values...),
	}
}

func (f *SurfaceScalarField) Assign(g *SurfaceScalarField) {
	types.CheckDims(f.Dims, g.Dims, "assign "+f.Name+" = "+g.Name)
	copy(f.Values, g.Values)
}

func (f *SurfaceScalarField) StoreOldTime() {
	f.old = append(f.old[:0], f.Values...)
}

func (f *SurfaceScalarField) OldTime() []float64 {
	if f.old == nil {
		return f.Values
	}
	return f.old
}

func (f *SurfaceScalarField) StorePrevIter() {
	f.prevIter = append(f.prevIter[:0], f.Values...)
}

func (f *SurfaceScalarField) PrevIter() []float64 {
	if f.prevIter == nil {
		return f.Values
	}
	return f.prevIter
}

func (f *SurfaceScalarField) Relax(alpha float64) {
	if f.prevIter == nil || alpha >= 1 {
		return
	}
	for i, v := range f.Values {
		f.Values[i] = f.prevIter[i] + alpha*(v-f.prevIter[i])
	}
}

// VolSymmTensorField carries anisotropic material properties, boundary values
// follow the owner cell
type VolSymmTensorField struct {
	Name     string
	Dims     types.Dimensions
	Mesh     *mesh.Mesh
	Internal []types.SymmTensor
}

func NewVolSymmTensorField(name string, dims types.Dimensions, m *mesh.Mesh, value types.SymmTensor) (f *VolSymmTensorField) {
	f = &VolSymmTensorField{
		Name:     name,
		Dims:     dims,
		Mesh:     m,
		Internal: make([]types.SymmTensor, m.NCells),
	}
	for i := range f.Internal {
		f.Internal[i] = value
	}
	return
}

func (f *VolSymmTensorField) FieldName() string           { return f.Name }
func (f *VolSymmTensorField) FieldDims() types.Dimensions { return f.Dims }
func (f *VolSymmTensorField) FieldKind() Kind             { return KindVolSymmTensor }
