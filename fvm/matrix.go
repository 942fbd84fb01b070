/*
Package fvm assembles implicit finite volume operators into LDU matrices.

A matrix M for the field psi stands for the equation M psi = Source, explicit
terms on the left hand side of an equation are subtracted from Source. The
boundary faces contribute InternalCoeffs to the diagonal of their owner cell
and BoundaryCoeffs to its source when the system is solved.
*/
package fvm

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gofv/fields"
	"github.com/notargets/gofv/linsolve"
	"github.com/notargets/gofv/mesh"
	"github.com/notargets/gofv/types"
)

var (
	addrMu    sync.Mutex
	addrCache = map[*mesh.Mesh]*linsolve.Addressing{}
)

// Addressing returns the LDU addressing of the internal faces of m, built once per mesh
func Addressing(m *mesh.Mesh) *linsolve.Addressing {
	addrMu.Lock()
	defer addrMu.Unlock()
	if a, ok := addrCache[m]; ok {
		return a
	}
	a := linsolve.NewAddressing(m.NCells, m.Owner[:m.NInternalFaces], m.Neighbour)
	addrCache[m] = a
	return a
}

type ScalarMatrix struct {
	*linsolve.Matrix
	Psi                *fields.VolScalarField
	Dims               types.Dimensions // Of each term, per unit volume
	Source             []float64
	InternalCoeffs     []float64 // Per boundary face
	BoundaryCoeffs     []float64 // Per boundary face
	FaceFluxCorrection []float64 // Per face, nil without an explicit correction
}

func NewScalarMatrix(psi *fields.VolScalarField, dims types.Dimensions) *ScalarMatrix {
	m := psi.Mesh
	return &ScalarMatrix{
		Matrix:         linsolve.NewMatrix(Addressing(m)),
		Psi:            psi,
		Dims:           dims,
		Source:         make([]float64, m.NCells),
		InternalCoeffs: make([]float64, m.NBoundaryFaces()),
		BoundaryCoeffs: make([]float64, m.NBoundaryFaces()),
	}
}

func (M *ScalarMatrix) Clone() (N *ScalarMatrix) {
	N = &ScalarMatrix{
		Matrix:         M.Matrix.Clone(),
		Psi:            M.Psi,
		Dims:           M.Dims,
		Source:         append([]float64(nil), M.Source...),
		InternalCoeffs: append([]float64(nil), M.InternalCoeffs...),
		BoundaryCoeffs: append([]float64(nil), M.BoundaryCoeffs...),
	}
	if M.FaceFluxCorrection != nil {
		N.FaceFluxCorrection = append([]float64(nil), M.FaceFluxCorrection...)
	}
	return
}

func (M *ScalarMatrix) check(N *ScalarMatrix, op string) {
	if M.Psi != N.Psi {
		panic(fmt.Errorf("incompatible fields for operation %s: %s and %s", op, M.Psi.Name, N.Psi.Name))
	}
	types.CheckDims(M.Dims, N.Dims, op+" on equation for "+M.Psi.Name)
}

// Add accumulates N into M, returning M
func (M *ScalarMatrix) Add(N *ScalarMatrix) *ScalarMatrix {
	M.check(N, "+")
	M.axpy(1, N)
	return M
}

// Sub subtracts N from M, returning M. M == N is written M.Sub(N)
func (M *ScalarMatrix) Sub(N *ScalarMatrix) *ScalarMatrix {
	M.check(N, "-")
	M.axpy(-1, N)
	return M
}

func (M *ScalarMatrix) axpy(a float64, N *ScalarMatrix) {
	floats.AddScaled(M.Diag, a, N.Diag)
	floats.AddScaled(M.Lower, a, N.Lower)
	floats.AddScaled(M.Upper, a, N.Upper)
	floats.AddScaled(M.Source, a, N.Source)
	floats.AddScaled(M.InternalCoeffs, a, N.InternalCoeffs)
	floats.AddScaled(M.BoundaryCoeffs, a, N.BoundaryCoeffs)
	if N.FaceFluxCorrection != nil {
		if M.FaceFluxCorrection == nil {
			M.FaceFluxCorrection = make([]float64, len(N.FaceFluxCorrection))
		}
		floats.AddScaled(M.FaceFluxCorrection, a, N.FaceFluxCorrection)
	}
}

func (M *ScalarMatrix) Negate() *ScalarMatrix {
	floats.Scale(-1, M.Diag)
	floats.Scale(-1, M.Lower)
	floats.Scale(-1, M.Upper)
	floats.Scale(-1, M.Source)
	floats.Scale(-1, M.InternalCoeffs)
	floats.Scale(-1, M.BoundaryCoeffs)
	if M.FaceFluxCorrection != nil {
		floats.Scale(-1, M.FaceFluxCorrection)
	}
	return M
}

// AddExplicit adds the per unit volume term su to the left hand side
func (M *ScalarMatrix) AddExplicit(su []float64, dims types.Dimensions) *ScalarMatrix {
	types.CheckDims(M.Dims, dims, "explicit term in equation for "+M.Psi.Name)
	for c, v := range M.Psi.Mesh.V {
		M.Source[c] -= v * su[c]
	}
	return M
}

// Eq places the per unit volume term su on the right hand side, M == su
func (M *ScalarMatrix) Eq(su []float64, dims types.Dimensions) *ScalarMatrix {
	types.CheckDims(M.Dims, dims, "right hand side of equation for "+M.Psi.Name)
	for c, v := range M.Psi.Mesh.V {
		M.Source[c] += v * su[c]
	}
	return M
}

/*
Relax under-relaxes the matrix in place. The diagonal including the boundary
contribution is made at least the sum of the off-diagonal magnitudes, divided
by alpha, and the source picks up the difference times the current values.
*/
func (M *ScalarMatrix) Relax(alpha float64) {
	if alpha <= 0 {
		return
	}
	D := relaxedDiagonal(M.Matrix, M.Psi.Mesh, M.InternalCoeffs, alpha)
	for c, d := range D {
		M.Source[c] += (d - M.Diag[c]) * M.Psi.Internal[c]
	}
	M.Diag = D
}

func relaxedDiagonal(A *linsolve.Matrix, m *mesh.Mesh, ic []float64, alpha float64) (D []float64) {
	var (
		sumOff = A.SumMagOffDiag()
		nInt   = m.NInternalFaces
	)
	D = append([]float64(nil), A.Diag...)
	for b, c := range ic {
		if !m.EmptyFace[b] {
			D[m.Owner[b+nInt]] += math.Abs(c)
		}
	}
	for i := range D {
		D[i] = math.Max(math.Abs(D[i]), sumOff[i]) / alpha
	}
	for b, c := range ic {
		if !m.EmptyFace[b] {
			D[m.Owner[b+nInt]] -= c
		}
	}
	return
}

// SetReference pins the value of cell when the field has no fixed value boundary
func (M *ScalarMatrix) SetReference(cell int, value float64, force bool) {
	if cell < 0 || !(force || M.Psi.NeedReference()) {
		return
	}
	M.Source[cell] += M.Diag[cell] * value
	M.Diag[cell] += M.Diag[cell]
}

/*
SetValues fixes psi to value in cells. Their rows reduce to the diagonal, the
couplings of the neighbours to them move into the neighbour sources.
*/
func (M *ScalarMatrix) SetValues(cells []int, value float64) {
	m := M.Psi.Mesh
	fixed := fixedCells(M.Matrix, m, M.InternalCoeffs, cells)
	for _, c := range cells {
		M.Psi.Internal[c] = value
		M.Source[c] = M.Diag[c] * value
	}
	for f := 0; f < m.NInternalFaces; f++ {
		o, n := m.Owner[f], m.Neighbour[f]
		switch {
		case fixed[o] && fixed[n]:
		case fixed[o]:
			M.Source[n] -= M.Lower[f] * value
		case fixed[n]:
			M.Source[o] -= M.Upper[f] * value
		default:
			continue
		}
		M.Lower[f], M.Upper[f] = 0, 0
	}
	for b := range M.InternalCoeffs {
		if fixed[m.Owner[b+m.NInternalFaces]] {
			M.InternalCoeffs[b], M.BoundaryCoeffs[b] = 0, 0
		}
	}
}

/*
fixedCells folds the boundary coefficients of the listed cells into their
diagonal, a zero diagonal becomes unity, and returns the cell mask.
*/
func fixedCells(A *linsolve.Matrix, m *mesh.Mesh, ic []float64, cells []int) (fixed []bool) {
	fixed = make([]bool, m.NCells)
	for _, c := range cells {
		fixed[c] = true
	}
	for b, c := range ic {
		if P := m.Owner[b+m.NInternalFaces]; fixed[P] && !m.EmptyFace[b] {
			A.Diag[P] += c
		}
	}
	for _, c := range cells {
		if A.Diag[c] == 0 {
			A.Diag[c] = 1
		}
	}
	return
}

// totalDiag is the diagonal including the boundary contributions
func totalDiag(A *linsolve.Matrix, m *mesh.Mesh, ic []float64) (D []float64) {
	D = append([]float64(nil), A.Diag...)
	for b, c := range ic {
		if !m.EmptyFace[b] {
			D[m.Owner[b+m.NInternalFaces]] += c
		}
	}
	return
}

// A is the central coefficient per unit volume
func (M *ScalarMatrix) A() (a []float64) {
	a = totalDiag(M.Matrix, M.Psi.Mesh, M.InternalCoeffs)
	for c, v := range M.Psi.Mesh.V {
		a[c] /= v
	}
	return
}

// H is (source - offdiag*psi) per unit volume
func (M *ScalarMatrix) H() (h []float64) {
	var (
		m    = M.Psi.Mesh
		psi  = M.Psi.Internal
		l, u = M.Addr.Lower, M.Addr.Upper
	)
	h = append([]float64(nil), M.Source...)
	for f := range l {
		h[u[f]] -= M.Lower[f] * psi[l[f]]
		h[l[f]] -= M.Upper[f] * psi[u[f]]
	}
	for b, c := range M.BoundaryCoeffs {
		if !m.EmptyFace[b] {
			h[m.Owner[b+m.NInternalFaces]] += c
		}
	}
	for c, v := range m.V {
		h[c] /= v
	}
	return
}

// H1 is -Σ offdiag per unit volume
func (M *ScalarMatrix) H1() []float64 {
	return h1(M.Matrix, M.Psi.Mesh)
}

func h1(A *linsolve.Matrix, m *mesh.Mesh) (h []float64) {
	var (
		l, u = A.Addr.Lower, A.Addr.Upper
	)
	h = make([]float64, m.NCells)
	for f := range l {
		h[u[f]] -= A.Lower[f]
		h[l[f]] -= A.Upper[f]
	}
	for c, v := range m.V {
		h[c] /= v
	}
	return
}

// Flux is the face flux of the implicit operator evaluated with the current psi
func (M *ScalarMatrix) Flux() (flux *fields.SurfaceScalarField) {
	var (
		m    = M.Psi.Mesh
		psi  = M.Psi.Internal
		nInt = m.NInternalFaces
	)
	flux = fields.NewSurfaceScalarField("flux("+M.Psi.Name+")", M.Dims.Mul(types.DimVolume), m, 0)
	for f := 0; f < nInt; f++ {
		flux.Values[f] = M.Upper[f]*psi[m.Neighbour[f]] - M.Lower[f]*psi[m.Owner[f]]
	}
	for b := range M.InternalCoeffs {
		if !m.EmptyFace[b] {
			f := b + nInt
			flux.Values[f] = M.InternalCoeffs[b]*psi[m.Owner[f]] - M.BoundaryCoeffs[b]
		}
	}
	if M.FaceFluxCorrection != nil {
		floats.AddScaled(flux.Values, 1, M.FaceFluxCorrection)
	}
	return
}

// Residual is Σ|source - M psi| with the boundary contributions included
func (M *ScalarMatrix) Residual() float64 {
	A, b := M.system()
	r := make([]float64, len(b))
	A.Residual(r, M.Psi.Internal, b)
	var sum float64
	for _, v := range r {
		sum += math.Abs(v)
	}
	return sum
}

func (M *ScalarMatrix) system() (A *linsolve.Matrix, b []float64) {
	m := M.Psi.Mesh
	A = M.Matrix.Clone()
	A.Diag = totalDiag(M.Matrix, m, M.InternalCoeffs)
	b = append([]float64(nil), M.Source...)
	for bf, c := range M.BoundaryCoeffs {
		if !m.EmptyFace[bf] {
			b[m.Owner[bf+m.NInternalFaces]] += c
		}
	}
	return
}

// Solve updates psi in place and corrects its boundary values
func (M *ScalarMatrix) Solve(c linsolve.Controls) (perf linsolve.Performance) {
	s, err := linsolve.New(c)
	if err != nil {
		panic(fmt.Errorf("solving for %s: %w", M.Psi.Name, err))
	}
	A, b := M.system()
	perf = s.Solve(A, M.Psi.Internal, b, M.Psi.Name)
	M.Psi.CorrectBoundaryConditions()
	return
}
