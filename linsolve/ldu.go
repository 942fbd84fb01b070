package linsolve

import (
	"fmt"

	"github.com/notargets/gofv/utils"
)

/*
Addressing is the LDU sparsity pattern: one off-diagonal pair per face, Lower
holds the row of the Upper coefficient (face owner) and Upper its column
(face neighbour). Faces are in upper triangular order.
*/
type Addressing struct {
	NCells      int
	Lower       []int
	Upper       []int
	ownerStart  []int // Faces of row i are ownerStart[i]..ownerStart[i+1]
	losort      []int // Faces ordered by Upper
	losortStart []int
}

func NewAddressing(nCells int, lower, upper []int) (a *Addressing) {
	if len(lower) != len(upper) {
		panic(fmt.Errorf("lower and upper addressing differ in length, %d and %d", len(lower), len(upper)))
	}
	a = &Addressing{
		NCells:      nCells,
		Lower:       lower,
		Upper:       upper,
		ownerStart:  make([]int, nCells+1),
		losortStart: make([]int, nCells+1),
		losort:      make([]int, len(upper)),
	}
	for _, l := range lower {
		a.ownerStart[l+1]++
	}
	for _, u := range upper {
		a.losortStart[u+1]++
	}
	for i := 0; i < nCells; i++ {
		a.ownerStart[i+1] += a.ownerStart[i]
		a.losortStart[i+1] += a.losortStart[i]
	}
	next := append([]int(nil), a.losortStart[:nCells]...)
	for face, u := range upper {
		a.losort[next[u]] = face
		next[u]++
	}
	return
}

func (a *Addressing) NFaces() int { return len(a.Lower) }

// Matrix is a square LDU matrix sharing an Addressing with other matrices of the mesh
type Matrix struct {
	Addr  *Addressing
	Diag  []float64
	Lower []float64 // Coefficient of row Upper[f], column Lower[f]
	Upper []float64 // Coefficient of row Lower[f], column Upper[f]
}

func NewMatrix(addr *Addressing) *Matrix {
	return &Matrix{
		Addr:  addr,
		Diag:  make([]float64, addr.NCells),
		Lower: make([]float64, addr.NFaces()),
		Upper: make([]float64, addr.NFaces()),
	}
}

func (A *Matrix) Clone() *Matrix {
	return &Matrix{
		Addr:  A.Addr,
		Diag:  append([]float64(nil), A.Diag...),
		Lower: append([]float64(nil), A.Lower...),
		Upper: append([]float64(nil), A.Upper...),
	}
}

func (A *Matrix) Symmetric() bool {
	for f := range A.Upper {
		if A.Upper[f] != A.Lower[f] {
			return false
		}
	}
	return true
}

// Amul computes Ax = A x
func (A *Matrix) Amul(Ax, x []float64) {
	var (
		l, u = A.Addr.Lower, A.Addr.Upper
	)
	for i := range Ax {
		Ax[i] = A.Diag[i] * x[i]
	}
	for f := range l {
		Ax[u[f]] += A.Lower[f] * x[l[f]]
		Ax[l[f]] += A.Upper[f] * x[u[f]]
	}
}

// SumA is the row sum of the matrix
func (A *Matrix) SumA() (sumA []float64) {
	sumA = append([]float64(nil), A.Diag...)
	for f, l := range A.Addr.Lower {
		sumA[A.Addr.Upper[f]] += A.Lower[f]
		sumA[l] += A.Upper[f]
	}
	return
}

// SumMagOffDiag is Σ_j≠i |a_ij| for each row
func (A *Matrix) SumMagOffDiag() (s []float64) {
	s = make([]float64, A.Addr.NCells)
	for f, l := range A.Addr.Lower {
		u := A.Addr.Upper[f]
		s[l] += abs(A.Upper[f])
		s[u] += abs(A.Lower[f])
	}
	return
}

// Residual is b - A x
func (A *Matrix) Residual(r, x, b []float64) {
	A.Amul(r, x)
	for i := range r {
		r[i] = b[i] - r[i]
	}
}

// ToDOK assembles the matrix in dictionary of keys form
func (A *Matrix) ToDOK() (dok utils.DOK) {
	n := A.Addr.NCells
	dok = utils.NewDOK(n, n)
	for i, d := range A.Diag {
		dok.Set(i, i, d)
	}
	for f, l := range A.Addr.Lower {
		u := A.Addr.Upper[f]
		dok.Add(l, u, A.Upper[f])
		dok.Add(u, l, A.Lower[f])
	}
	dok.SetReadOnly("LDU")
	return
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
