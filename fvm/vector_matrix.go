package fvm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gofv/fields"
	"github.com/notargets/gofv/linsolve"
	"github.com/notargets/gofv/mesh"
	"github.com/notargets/gofv/types"
)

// VectorMatrix shares one set of coefficients between the three components of psi
type VectorMatrix struct {
	*linsolve.Matrix
	Psi                *fields.VolVectorField
	Dims               types.Dimensions
	Source             []types.Vec3
	InternalCoeffs     []float64
	BoundaryCoeffs     []types.Vec3
	FaceFluxCorrection []types.Vec3
}

func NewVectorMatrix(psi *fields.VolVectorField, dims types.Dimensions) *VectorMatrix {
	m := psi.Mesh
	return &VectorMatrix{
		Matrix:         linsolve.NewMatrix(Addressing(m)),
		Psi:            psi,
		Dims:           dims,
		Source:         make([]types.Vec3, m.NCells),
		InternalCoeffs: make([]float64, m.NBoundaryFaces()),
		BoundaryCoeffs: make([]types.Vec3, m.NBoundaryFaces()),
	}
}

func (M *VectorMatrix) Clone() (N *VectorMatrix) {
	N = &VectorMatrix{
		Matrix:         M.Matrix.Clone(),
		Psi:            M.Psi,
		Dims:           M.Dims,
		Source:         append([]types.Vec3(nil), M.Source...),
		InternalCoeffs: append([]float64(nil), M.InternalCoeffs...),
		BoundaryCoeffs: append([]types.Vec3(nil), M.BoundaryCoeffs...),
	}
	if M.FaceFluxCorrection != nil {
		N.FaceFluxCorrection = append([]types.Vec3(nil), M.FaceFluxCorrection...)
	}
	return
}

func (M *VectorMatrix) check(N *VectorMatrix, op string) {
	if M.Psi != N.Psi {
		panic(fmt.Errorf("incompatible fields for operation %s: %s and %s", op, M.Psi.Name, N.Psi.Name))
	}
	types.CheckDims(M.Dims, N.Dims, op+" on equation for "+M.Psi.Name)
}

func (M *VectorMatrix) Add(N *VectorMatrix) *VectorMatrix {
	M.check(N, "+")
	M.axpy(1, N)
	return M
}

func (M *VectorMatrix) Sub(N *VectorMatrix) *VectorMatrix {
	M.check(N, "-")
	M.axpy(-1, N)
	return M
}

func (M *VectorMatrix) axpy(a float64, N *VectorMatrix) {
	floats.AddScaled(M.Diag, a, N.Diag)
	floats.AddScaled(M.Lower, a, N.Lower)
	floats.AddScaled(M.Upper, a, N.Upper)
	floats.AddScaled(M.InternalCoeffs, a, N.InternalCoeffs)
	addVec(M.Source, a, N.Source)
	addVec(M.BoundaryCoeffs, a, N.BoundaryCoeffs)
	if N.FaceFluxCorrection != nil {
		if M.FaceFluxCorrection == nil {
			M.FaceFluxCorrection = make([]types.Vec3, len(N.FaceFluxCorrection))
		}
		addVec(M.FaceFluxCorrection, a, N.FaceFluxCorrection)
	}
}

func (M *VectorMatrix) Negate() *VectorMatrix {
	floats.Scale(-1, M.Diag)
	floats.Scale(-1, M.Lower)
	floats.Scale(-1, M.Upper)
	floats.Scale(-1, M.InternalCoeffs)
	for i := range M.Source {
		M.Source[i] = M.Source[i].Scale(-1)
	}
	for i := range M.BoundaryCoeffs {
		M.BoundaryCoeffs[i] = M.BoundaryCoeffs[i].Scale(-1)
	}
	for i := range M.FaceFluxCorrection {
		M.FaceFluxCorrection[i] = M.FaceFluxCorrection[i].Scale(-1)
	}
	return M
}

func (M *VectorMatrix) AddExplicit(su []types.Vec3, dims types.Dimensions) *VectorMatrix {
	types.CheckDims(M.Dims, dims, "explicit term in equation for "+M.Psi.Name)
	for c, v := range M.Psi.Mesh.V {
		M.Source[c] = M.Source[c].Sub(su[c].Scale(v))
	}
	return M
}

func (M *VectorMatrix) Eq(su []types.Vec3, dims types.Dimensions) *VectorMatrix {
	types.CheckDims(M.Dims, dims, "right hand side of equation for "+M.Psi.Name)
	for c, v := range M.Psi.Mesh.V {
		M.Source[c] = M.Source[c].Add(su[c].Scale(v))
	}
	return M
}

func (M *VectorMatrix) Relax(alpha float64) {
	if alpha <= 0 {
		return
	}
	D := relaxedDiagonal(M.Matrix, M.Psi.Mesh, M.InternalCoeffs, alpha)
	for c, d := range D {
		M.Source[c] = M.Source[c].Add(M.Psi.Internal[c].Scale(d - M.Diag[c]))
	}
	M.Diag = D
}

func (M *VectorMatrix) SetValues(cells []int, value types.Vec3) {
	m := M.Psi.Mesh
	fixed := fixedCells(M.Matrix, m, M.InternalCoeffs, cells)
	for _, c := range cells {
		M.Psi.Internal[c] = value
		M.Source[c] = value.Scale(M.Diag[c])
	}
	for f := 0; f < m.NInternalFaces; f++ {
		o, n := m.Owner[f], m.Neighbour[f]
		switch {
		case fixed[o] && fixed[n]:
		case fixed[o]:
			M.Source[n] = M.Source[n].Sub(value.Scale(M.Lower[f]))
		case fixed[n]:
			M.Source[o] = M.Source[o].Sub(value.Scale(M.Upper[f]))
		default:
			continue
		}
		M.Lower[f], M.Upper[f] = 0, 0
	}
	for b := range M.InternalCoeffs {
		if fixed[m.Owner[b+m.NInternalFaces]] {
			M.InternalCoeffs[b], M.BoundaryCoeffs[b] = 0, types.Vec3{}
		}
	}
}

func (M *VectorMatrix) A() (a []float64) {
	a = totalDiag(M.Matrix, M.Psi.Mesh, M.InternalCoeffs)
	for c, v := range M.Psi.Mesh.V {
		a[c] /= v
	}
	return
}

func (M *VectorMatrix) H() (h []types.Vec3) {
	var (
		m    = M.Psi.Mesh
		psi  = M.Psi.Internal
		l, u = M.Addr.Lower, M.Addr.Upper
	)
	h = append([]types.Vec3(nil), M.Source...)
	for f := range l {
		h[u[f]] = h[u[f]].Sub(psi[l[f]].Scale(M.Lower[f]))
		h[l[f]] = h[l[f]].Sub(psi[u[f]].Scale(M.Upper[f]))
	}
	for b, c := range M.BoundaryCoeffs {
		if !m.EmptyFace[b] {
			P := m.Owner[b+m.NInternalFaces]
			h[P] = h[P].Add(c)
		}
	}
	for c, v := range m.V {
		h[c] = h[c].Scale(1. / v)
	}
	return
}

func (M *VectorMatrix) H1() []float64 {
	return h1(M.Matrix, M.Psi.Mesh)
}

// Solve solves each component that lies in a solution direction of the mesh
func (M *VectorMatrix) Solve(c linsolve.Controls) (perf linsolve.Performance, cmpts []linsolve.Performance) {
	var (
		m    = M.Psi.Mesh
		nInt = m.NInternalFaces
		dirs = SolutionDirections(m)
		name = [3]string{"x", "y", "z"}
	)
	s, err := linsolve.New(c)
	if err != nil {
		panic(fmt.Errorf("solving for %s: %w", M.Psi.Name, err))
	}
	A := M.Matrix.Clone()
	A.Diag = totalDiag(M.Matrix, m, M.InternalCoeffs)
	b := make([]float64, m.NCells)
	for d := 0; d < 3; d++ {
		if !dirs[d] {
			continue
		}
		for i := range b {
			b[i] = M.Source[i][d]
		}
		for bf, bc := range M.BoundaryCoeffs {
			if !m.EmptyFace[bf] {
				b[m.Owner[bf+nInt]] += bc[d]
			}
		}
		x := M.Psi.Component(d)
		cmpts = append(cmpts, s.Solve(A, x, b, M.Psi.Name+name[d]))
		M.Psi.SetComponent(d, x)
	}
	M.Psi.CorrectBoundaryConditions()
	perf = linsolve.Merge(M.Psi.Name, cmpts...)
	return
}

/*
SolutionDirections excludes the directions normal to empty patches, a one cell
thick 2D mesh solves only its in-plane components.
*/
func SolutionDirections(m *mesh.Mesh) (dirs [3]bool) {
	dirs = [3]bool{true, true, true}
	for b, empty := range m.EmptyFace {
		if !empty {
			continue
		}
		f := b + m.NInternalFaces
		for d := 0; d < 3; d++ {
			if math.Abs(m.Sf[f][d])/m.MagSf[f] > 1-1.e-6 {
				dirs[d] = false
			}
		}
	}
	return
}

func addVec(dst []types.Vec3, a float64, x []types.Vec3) {
	for i, v := range x {
		dst[i] = dst[i].Add(v.Scale(a))
	}
}
