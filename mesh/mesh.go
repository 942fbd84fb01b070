package mesh

import (
	"fmt"
	"math"

	"github.com/notargets/gofv/types"
	"github.com/notargets/gofv/utils"
)

type Patch struct {
	Name  string
	Type  types.PatchType
	Start int // First face of the patch in the global face list
	Size  int
	// Interface patches only
	NeighbourRegion string
	NeighbourPatch  string
}

/*
Mesh is a face addressed polyhedral mesh. Internal faces come first, ordered
by owner then neighbour (upper triangular order), followed by the boundary
faces grouped by patch. Face normals point out of the owner cell.
*/
type Mesh struct {
	Points         []types.Vec3
	Faces          [][]int
	Owner          []int // One per face
	Neighbour      []int // One per internal face
	Patches        []Patch
	NCells         int
	NInternalFaces int

	// Per boundary face, indexed by face - NInternalFaces
	FacePatch []int
	EmptyFace []bool

	// Geometry
	Sf                 []types.Vec3
	MagSf              []float64
	Cf                 []types.Vec3
	C                  []types.Vec3
	V                  []float64
	Weights            []float64 // Owner side linear interpolation weight, 1 on the boundary
	DeltaCoeffs        []float64
	NonOrthDeltaCoeffs []float64
	NonOrthCorrVectors []types.Vec3
}

func NewMesh(points []types.Vec3, faces [][]int, owner, neighbour []int, patches []Patch) (m *Mesh, err error) {
	m = &Mesh{
		Points:         points,
		Faces:          faces,
		Owner:          owner,
		Neighbour:      neighbour,
		Patches:        patches,
		NInternalFaces: len(neighbour),
	}
	if err = m.checkAddressing(); err != nil {
		return nil, err
	}
	m.calcFaceGeometry()
	m.calcCellGeometry()
	m.calcInterpolationCoeffs()
	return
}

func (m *Mesh) NFaces() int { return len(m.Faces) }

func (m *Mesh) NBoundaryFaces() int { return len(m.Faces) - m.NInternalFaces }

func (m *Mesh) PatchIndex(name string) (pi int, err error) {
	for pi = range m.Patches {
		if m.Patches[pi].Name == name {
			return
		}
	}
	return -1, fmt.Errorf("unknown patch name [%s]", name)
}

// TotalVolume is the sum of the cell volumes
func (m *Mesh) TotalVolume() (vol float64) {
	for _, v := range m.V {
		vol += v
	}
	return
}

func (m *Mesh) checkAddressing() (err error) {
	var (
		nFaces = len(m.Faces)
		nInt   = m.NInternalFaces
	)
	if len(m.Owner) != nFaces {
		return fmt.Errorf("owner list has %d entries for %d faces", len(m.Owner), nFaces)
	}
	if nInt > nFaces {
		return fmt.Errorf("neighbour list has %d entries for %d faces", nInt, nFaces)
	}
	for _, own := range m.Owner {
		if own+1 > m.NCells {
			m.NCells = own + 1
		}
	}
	for f := 0; f < nInt; f++ {
		own, nei := m.Owner[f], m.Neighbour[f]
		if own >= nei {
			return fmt.Errorf("internal face %d has owner %d not below neighbour %d", f, own, nei)
		}
		if nei+1 > m.NCells {
			m.NCells = nei + 1
		}
		if f > 0 {
			pOwn, pNei := m.Owner[f-1], m.Neighbour[f-1]
			if own < pOwn || (own == pOwn && nei < pNei) {
				return fmt.Errorf("internal faces are not in upper triangular order at face %d", f)
			}
		}
	}
	m.FacePatch = make([]int, nFaces-nInt)
	m.EmptyFace = make([]bool, nFaces-nInt)
	next := nInt
	for pi, p := range m.Patches {
		if p.Start != next {
			return fmt.Errorf("patch %s starts at face %d, expected %d", p.Name, p.Start, next)
		}
		for f := p.Start; f < p.Start+p.Size; f++ {
			m.FacePatch[f-nInt] = pi
			m.EmptyFace[f-nInt] = p.Type == types.PT_Empty
		}
		next += p.Size
	}
	if next != nFaces {
		return fmt.Errorf("patches cover %d boundary faces, mesh has %d", next-nInt, nFaces-nInt)
	}
	return
}

func (m *Mesh) calcFaceGeometry() {
	var (
		nFaces = len(m.Faces)
	)
	m.Sf = make([]types.Vec3, nFaces)
	m.MagSf = make([]float64, nFaces)
	m.Cf = make([]types.Vec3, nFaces)
	for f, verts := range m.Faces {
		if len(verts) == 3 {
			a, b, c := m.Points[verts[0]], m.Points[verts[1]], m.Points[verts[2]]
			m.Sf[f] = b.Sub(a).Cross(c.Sub(a)).Scale(0.5)
			m.Cf[f] = a.Add(b).Add(c).Scale(1. / 3.)
		} else {
			// Triangle fan about the vertex average
			var fCentre types.Vec3
			for _, v := range verts {
				fCentre = fCentre.Add(m.Points[v])
			}
			fCentre = fCentre.Scale(1. / float64(len(verts)))
			var (
				sumN, sumAc types.Vec3
				sumA        float64
			)
			for i := range verts {
				p := m.Points[verts[i]]
				pn := m.Points[verts[(i+1)%len(verts)]]
				n := pn.Sub(p).Cross(fCentre.Sub(p))
				sumN = sumN.Add(n)
			}
			nHat := sumN.Scale(1. / math.Max(sumN.Mag(), utils.VSMALL))
			for i := range verts {
				p := m.Points[verts[i]]
				pn := m.Points[verts[(i+1)%len(verts)]]
				c := p.Add(pn).Add(fCentre)
				a := pn.Sub(p).Cross(fCentre.Sub(p)).Dot(nHat)
				sumA += a
				sumAc = sumAc.Add(c.Scale(a))
			}
			if math.Abs(sumA) < utils.ROOTVSMALL {
				m.Cf[f] = fCentre
			} else {
				m.Cf[f] = sumAc.Scale(1. / (3. * sumA))
			}
			m.Sf[f] = sumN.Scale(0.5)
		}
		m.MagSf[f] = math.Max(m.Sf[f].Mag(), utils.VSMALL)
	}
}

func (m *Mesh) calcCellGeometry() {
	var (
		nCells = m.NCells
		cEst   = make([]types.Vec3, nCells)
		nCellF = make([]int, nCells)
	)
	for f := range m.Faces {
		own := m.Owner[f]
		cEst[own] = cEst[own].Add(m.Cf[f])
		nCellF[own]++
		if f < m.NInternalFaces {
			nei := m.Neighbour[f]
			cEst[nei] = cEst[nei].Add(m.Cf[f])
			nCellF[nei]++
		}
	}
	for c := range cEst {
		cEst[c] = cEst[c].Scale(1. / float64(nCellF[c]))
	}
	m.C = make([]types.Vec3, nCells)
	m.V = make([]float64, nCells)
	addPyramid := func(c int, pyr3Vol float64, fc types.Vec3) {
		pyr3Vol = math.Max(pyr3Vol, utils.VSMALL)
		pc := fc.Scale(0.75).Add(cEst[c].Scale(0.25))
		m.C[c] = m.C[c].Add(pc.Scale(pyr3Vol))
		m.V[c] += pyr3Vol
	}
	for f := range m.Faces {
		own := m.Owner[f]
		addPyramid(own, m.Sf[f].Dot(m.Cf[f].Sub(cEst[own])), m.Cf[f])
		if f < m.NInternalFaces {
			nei := m.Neighbour[f]
			addPyramid(nei, m.Sf[f].Dot(cEst[nei].Sub(m.Cf[f])), m.Cf[f])
		}
	}
	for c := range m.C {
		m.C[c] = m.C[c].Scale(1. / m.V[c])
		m.V[c] /= 3.
	}
}

func (m *Mesh) calcInterpolationCoeffs() {
	var (
		nFaces = len(m.Faces)
	)
	m.Weights = make([]float64, nFaces)
	m.DeltaCoeffs = make([]float64, nFaces)
	m.NonOrthDeltaCoeffs = make([]float64, nFaces)
	m.NonOrthCorrVectors = make([]types.Vec3, nFaces)
	for f := 0; f < nFaces; f++ {
		var (
			own  = m.Owner[f]
			nHat = m.Sf[f].Scale(1. / m.MagSf[f])
			d    types.Vec3
		)
		if f < m.NInternalFaces {
			nei := m.Neighbour[f]
			dOwn := math.Abs(m.Sf[f].Dot(m.Cf[f].Sub(m.C[own])))
			dNei := math.Abs(m.Sf[f].Dot(m.C[nei].Sub(m.Cf[f])))
			m.Weights[f] = dNei / math.Max(dOwn+dNei, utils.VSMALL)
			d = m.C[nei].Sub(m.C[own])
			m.DeltaCoeffs[f] = 1. / math.Max(d.Mag(), utils.VSMALL)
			m.NonOrthDeltaCoeffs[f] = 1. / math.Max(nHat.Dot(d), 0.05*d.Mag())
			m.NonOrthCorrVectors[f] = nHat.Sub(d.Scale(m.NonOrthDeltaCoeffs[f]))
		} else {
			// Boundary distances are measured normal to the face
			d = m.Cf[f].Sub(m.C[own])
			m.Weights[f] = 1
			m.DeltaCoeffs[f] = 1. / math.Max(nHat.Dot(d), 0.05*d.Mag())
			m.NonOrthDeltaCoeffs[f] = m.DeltaCoeffs[f]
		}
	}
}

// MaxNonOrthogonality returns the largest angle in degrees between a face
// normal and the line joining the cell centres either side of it
func (m *Mesh) MaxNonOrthogonality() (maxAngle float64) {
	for f := 0; f < m.NInternalFaces; f++ {
		d := m.C[m.Neighbour[f]].Sub(m.C[m.Owner[f]])
		cosA := utils.Clamp(d.Dot(m.Sf[f])/(d.Mag()*m.MagSf[f]), -1, 1)
		maxAngle = math.Max(maxAngle, math.Acos(cosA)*180/math.Pi)
	}
	return
}

func (m *Mesh) String() string {
	return fmt.Sprintf("cells: %d, faces: %d, internal faces: %d, patches: %d, volume: %11.4e",
		m.NCells, len(m.Faces), m.NInternalFaces, len(m.Patches), m.TotalVolume())
}
