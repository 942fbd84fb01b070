package MultiRegion

import (
	"fmt"
	"path/filepath"

	"github.com/notargets/gofv/InputParameters"
	"github.com/notargets/gofv/mesh"
	"github.com/notargets/gofv/types"
)

/*
BuildMesh creates the mesh of the case and divides it into one mesh per
region, in the order of the regions in the case. With a single region the
undivided mesh is returned as the only region mesh.
*/
func BuildMesh(cp *InputParameters.CaseParameters, caseDir string, verbose bool) (m *mesh.Mesh, subs []*mesh.Mesh, err error) {
	var (
		mp         = cp.Mesh
		names      = cp.RegionNames()
		cellRegion []int
	)
	if mp.Block != nil {
		var bs mesh.BlockSpec
		if bs, err = blockSpec(mp.Block); err != nil {
			return
		}
		if m, err = mesh.NewBlockMesh(bs); err != nil {
			return
		}
		if len(names) > 1 {
			if len(mp.RegionBoxes) != 0 {
				boxes := make([]mesh.CellBox, len(mp.RegionBoxes))
				for i, b := range mp.RegionBoxes {
					boxes[i] = mesh.CellBox{Min: b.Min, Max: b.Max}
				}
				cellRegion = bs.RegionsFromBoxes(boxes)
			} else {
				cellRegion = bs.RegionsAlongX(len(names))
			}
		}
	} else {
		path := mp.SU2File
		if !filepath.IsAbs(path) && caseDir != "" {
			path = filepath.Join(caseDir, path)
		}
		thickness := mp.Thickness
		if thickness <= 0 {
			thickness = 1
		}
		if m, err = mesh.ReadSU2File(path, thickness, verbose); err != nil {
			return
		}
		if len(names) > 1 {
			cellRegion = make([]int, m.NCells)
			for c, x := range m.C {
				for r, z := range mp.RegionZones {
					if z.Contains(x) {
						cellRegion[c] = r
					}
				}
			}
		}
	}
	if cellRegion == nil {
		return m, []*mesh.Mesh{m}, nil
	}
	if subs, err = mesh.Split(m, cellRegion, names); err != nil {
		return nil, nil, err
	}
	return
}

func blockSpec(bp *InputParameters.BlockParameters) (bs mesh.BlockSpec, err error) {
	bs = mesh.NewBlockSpec(bp.Origin, bp.Lengths, bp.N, bp.TwoD)
	for side, pp := range bp.Patches {
		i := InputParameters.SideIndex(side)
		if i < 0 {
			return bs, fmt.Errorf("unknown block side %q", side)
		}
		if pp.Name != "" {
			bs.Patches[i].Name = pp.Name
		}
		if pp.Type != "" {
			if bs.Patches[i].Type, err = types.NewPatchType(pp.Type); err != nil {
				return
			}
		}
	}
	return
}
