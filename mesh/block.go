package mesh

import (
	"fmt"

	"github.com/notargets/gofv/types"
	"github.com/notargets/gofv/utils"
)

const (
	XMin = iota
	XMax
	YMin
	YMax
	ZMin
	ZMax
)

var DefaultBlockPatchNames = [6]string{"xmin", "xmax", "ymin", "ymax", "zmin", "zmax"}

type BlockPatch struct {
	Name string
	Type types.PatchType
}

// BlockSpec describes an axis aligned box of hexahedra
type BlockSpec struct {
	Origin  types.Vec3
	Lengths types.Vec3
	N       [3]int
	// One entry per box side in XMin..ZMax order, sides sharing a name are merged
	Patches [6]BlockPatch
	// Collapses the z direction to one cell with empty front and back patches
	TwoD bool
}

func NewBlockSpec(origin, lengths types.Vec3, N [3]int, twoD bool) (bs BlockSpec) {
	bs = BlockSpec{Origin: origin, Lengths: lengths, N: N, TwoD: twoD}
	for i := range bs.Patches {
		bs.Patches[i] = BlockPatch{Name: DefaultBlockPatchNames[i], Type: types.PT_Wall}
	}
	if twoD {
		bs.N[2] = 1
		bs.Patches[ZMin] = BlockPatch{Name: "frontAndBack", Type: types.PT_Empty}
		bs.Patches[ZMax] = BlockPatch{Name: "frontAndBack", Type: types.PT_Empty}
	}
	return
}

func (bs BlockSpec) NCells() int { return bs.N[0] * bs.N[1] * bs.N[2] }

func (bs BlockSpec) CellIndex(i, j, k int) int { return i + bs.N[0]*(j+bs.N[1]*k) }

func (bs BlockSpec) pointIndex(i, j, k int) int { return i + (bs.N[0]+1)*(j+(bs.N[1]+1)*k) }

func NewBlockMesh(bs BlockSpec) (m *Mesh, err error) {
	var (
		nx, ny, nz = bs.N[0], bs.N[1], bs.N[2]
		points     = make([]types.Vec3, (nx+1)*(ny+1)*(nz+1))
		cells      = make([][]CellFace, bs.NCells())
	)
	if nx < 1 || ny < 1 || nz < 1 {
		return nil, fmt.Errorf("block needs at least one cell in each direction, have %v", bs.N)
	}
	for d := 0; d < 3; d++ {
		if bs.Lengths[d] <= 0 {
			return nil, fmt.Errorf("block lengths must be positive, have %v", bs.Lengths)
		}
	}
	for k := 0; k <= nz; k++ {
		for j := 0; j <= ny; j++ {
			for i := 0; i <= nx; i++ {
				points[bs.pointIndex(i, j, k)] = types.Vec3{
					bs.Origin[0] + bs.Lengths[0]*float64(i)/float64(nx),
					bs.Origin[1] + bs.Lengths[1]*float64(j)/float64(ny),
					bs.Origin[2] + bs.Lengths[2]*float64(k)/float64(nz),
				}
			}
		}
	}
	// Merge sides with a common name into one patch
	var (
		patches    []Patch
		sidePatch  [6]int
		patchIndex = make(map[string]int)
	)
	for side, bp := range bs.Patches {
		pi, ok := patchIndex[bp.Name]
		if !ok {
			pi = len(patches)
			patchIndex[bp.Name] = pi
			patches = append(patches, Patch{Name: bp.Name, Type: bp.Type})
		} else if patches[pi].Type != bp.Type {
			return nil, fmt.Errorf("patch %s is given two types, %s and %s", bp.Name, patches[pi].Type, bp.Type)
		}
		sidePatch[side] = pi
	}
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				v := [8]int{
					bs.pointIndex(i, j, k), bs.pointIndex(i+1, j, k),
					bs.pointIndex(i+1, j+1, k), bs.pointIndex(i, j+1, k),
					bs.pointIndex(i, j, k+1), bs.pointIndex(i+1, j, k+1),
					bs.pointIndex(i+1, j+1, k+1), bs.pointIndex(i, j+1, k+1),
				}
				hint := func(side int, onBoundary bool) int {
					if onBoundary {
						return sidePatch[side]
					}
					return -1
				}
				cells[bs.CellIndex(i, j, k)] = []CellFace{
					{[]int{v[0], v[4], v[7], v[3]}, hint(XMin, i == 0)},
					{[]int{v[1], v[2], v[6], v[5]}, hint(XMax, i == nx-1)},
					{[]int{v[0], v[1], v[5], v[4]}, hint(YMin, j == 0)},
					{[]int{v[3], v[7], v[6], v[2]}, hint(YMax, j == ny-1)},
					{[]int{v[0], v[3], v[2], v[1]}, hint(ZMin, k == 0)},
					{[]int{v[4], v[5], v[6], v[7]}, hint(ZMax, k == nz-1)},
				}
			}
		}
	}
	return Build(points, cells, patches)
}

// RegionsAlongX assigns the cells to nRegions slabs of near equal width in x
func (bs BlockSpec) RegionsAlongX(nRegions int) (cellRegion []int) {
	var (
		pm = utils.NewPartitionMap(nRegions, bs.N[0])
	)
	cellRegion = make([]int, bs.NCells())
	for k := 0; k < bs.N[2]; k++ {
		for j := 0; j < bs.N[1]; j++ {
			for i := 0; i < bs.N[0]; i++ {
				bn, _, _ := pm.GetBucket(i)
				cellRegion[bs.CellIndex(i, j, k)] = bn
			}
		}
	}
	return
}

// CellBox is an inclusive-exclusive range of block cell indices
type CellBox struct {
	Min, Max [3]int
}

// RegionsFromBoxes assigns cells inside boxes[r] to region r, later boxes win.
// Cells outside every box stay in region 0.
func (bs BlockSpec) RegionsFromBoxes(boxes []CellBox) (cellRegion []int) {
	cellRegion = make([]int, bs.NCells())
	for r, b := range boxes {
		for k := max(b.Min[2], 0); k < min(b.Max[2], bs.N[2]); k++ {
			for j := max(b.Min[1], 0); j < min(b.Max[1], bs.N[1]); j++ {
				for i := max(b.Min[0], 0); i < min(b.Max[0], bs.N[0]); i++ {
					cellRegion[bs.CellIndex(i, j, k)] = r
				}
			}
		}
	}
	return
}
