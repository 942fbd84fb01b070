package types

import "math"

type Vec3 [3]float64

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }

func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }

func (a Vec3) Scale(s float64) Vec3 { return Vec3{s * a[0], s * a[1], s * a[2]} }

func (a Vec3) Dot(b Vec3) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func (a Vec3) Mag() float64 { return math.Sqrt(a.Dot(a)) }

func (a Vec3) MagSqr() float64 { return a.Dot(a) }

// Outer returns the full tensor a⊗b
func (a Vec3) Outer(b Vec3) (t Tensor) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t[3*i+j] = a[i] * b[j]
		}
	}
	return
}

// CmptMax is the largest component, used to reduce vector residuals
func (a Vec3) CmptMax() float64 { return math.Max(a[0], math.Max(a[1], a[2])) }

// CmptAv is the component average
func (a Vec3) CmptAv() float64 { return (a[0] + a[1] + a[2]) / 3 }

// Tensor is a full second rank tensor stored row major
type Tensor [9]float64

func (t Tensor) Add(o Tensor) (r Tensor) {
	for i := range t {
		r[i] = t[i] + o[i]
	}
	return
}

func (t Tensor) Scale(s float64) (r Tensor) {
	for i := range t {
		r[i] = s * t[i]
	}
	return
}

func (t Tensor) T() (r Tensor) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[3*i+j] = t[3*j+i]
		}
	}
	return
}

func (t Tensor) Trace() float64 { return t[0] + t[4] + t[8] }

// Dev2 is t - (2/3) tr(t) I
func (t Tensor) Dev2() (r Tensor) {
	r = t
	tr := (2. / 3.) * t.Trace()
	r[0] -= tr
	r[4] -= tr
	r[8] -= tr
	return
}

// LeftDot is v·t, i.e. r_j = Σ_i v_i t_ij
func (t Tensor) LeftDot(v Vec3) (r Vec3) {
	for j := 0; j < 3; j++ {
		r[j] = v[0]*t[j] + v[1]*t[3+j] + v[2]*t[6+j]
	}
	return
}

// SymmTensor stores xx, xy, xz, yy, yz, zz
type SymmTensor [6]float64

func NewSphericalSymmTensor(s float64) SymmTensor { return SymmTensor{s, 0, 0, s, 0, s} }

func (t SymmTensor) Add(o SymmTensor) (r SymmTensor) {
	for i := range t {
		r[i] = t[i] + o[i]
	}
	return
}

func (t SymmTensor) Scale(s float64) (r SymmTensor) {
	for i := range t {
		r[i] = s * t[i]
	}
	return
}

func (t SymmTensor) Dot(v Vec3) Vec3 {
	return Vec3{
		t[0]*v[0] + t[1]*v[1] + t[2]*v[2],
		t[1]*v[0] + t[3]*v[1] + t[4]*v[2],
		t[2]*v[0] + t[4]*v[1] + t[5]*v[2],
	}
}

// Project is n·t·n
func (t SymmTensor) Project(n Vec3) float64 { return n.Dot(t.Dot(n)) }
