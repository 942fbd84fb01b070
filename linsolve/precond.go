package linsolve

import (
	"fmt"
	"strings"
)

type preconditioner interface {
	name() string
	setup(A *Matrix)
	// precondition computes w = M^-1 r
	precondition(w, r []float64)
}

func newPreconditioner(name string) (p preconditioner, err error) {
	switch strings.ToLower(name) {
	case "dic":
		p = &dic{}
	case "dilu", "":
		p = &dilu{}
	case "diagonal":
		p = &diagonal{}
	case "none":
		p = &noPrecon{}
	default:
		err = fmt.Errorf("unknown preconditioner %q, choose from DIC, DILU, diagonal, none", name)
	}
	return
}

// dic is the diagonal incomplete Cholesky preconditioner for symmetric matrices
type dic struct {
	A  *Matrix
	rD []float64
}

func (p *dic) name() string { return "DIC" }

func (p *dic) setup(A *Matrix) {
	var (
		l, u = A.Addr.Lower, A.Addr.Upper
	)
	p.A = A
	p.rD = append(p.rD[:0], A.Diag...)
	for f := range l {
		p.rD[u[f]] -= A.Upper[f] * A.Upper[f] / p.rD[l[f]]
	}
	for i := range p.rD {
		p.rD[i] = 1. / p.rD[i]
	}
}

func (p *dic) precondition(w, r []float64) {
	var (
		l, u  = p.A.Addr.Lower, p.A.Addr.Upper
		upper = p.A.Upper
	)
	for i := range w {
		w[i] = p.rD[i] * r[i]
	}
	for f := range l {
		w[u[f]] -= p.rD[u[f]] * upper[f] * w[l[f]]
	}
	for f := len(l) - 1; f >= 0; f-- {
		w[l[f]] -= p.rD[l[f]] * upper[f] * w[u[f]]
	}
}

// dilu is the diagonal incomplete LU preconditioner for asymmetric matrices
type dilu struct {
	A  *Matrix
	rD []float64
}

func (p *dilu) name() string { return "DILU" }

func (p *dilu) setup(A *Matrix) {
	var (
		l, u = A.Addr.Lower, A.Addr.Upper
	)
	p.A = A
	p.rD = append(p.rD[:0], A.Diag...)
	for f := range l {
		p.rD[u[f]] -= A.Upper[f] * A.Lower[f] / p.rD[l[f]]
	}
	for i := range p.rD {
		p.rD[i] = 1. / p.rD[i]
	}
}

func (p *dilu) precondition(w, r []float64) {
	var (
		addr = p.A.Addr
		l, u = addr.Lower, addr.Upper
	)
	for i := range w {
		w[i] = p.rD[i] * r[i]
	}
	for _, f := range addr.losort {
		w[u[f]] -= p.rD[u[f]] * p.A.Lower[f] * w[l[f]]
	}
	for f := len(l) - 1; f >= 0; f-- {
		w[l[f]] -= p.rD[l[f]] * p.A.Upper[f] * w[u[f]]
	}
}

type diagonal struct {
	rD []float64
}

func (p *diagonal) name() string { return "diagonal" }

func (p *diagonal) setup(A *Matrix) {
	p.rD = p.rD[:0]
	for _, d := range A.Diag {
		p.rD = append(p.rD, 1./d)
	}
}

func (p *diagonal) precondition(w, r []float64) {
	for i := range w {
		w[i] = p.rD[i] * r[i]
	}
}

type noPrecon struct{}

func (p *noPrecon) name() string     { return "" }
func (p *noPrecon) setup(A *Matrix) {}
func (p *noPrecon) precondition(w, r []float64) {
	copy(w, r)
}
