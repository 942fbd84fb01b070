package mesh

import (
	"fmt"

	"github.com/notargets/gofv/types"
)

func InterfacePatchName(region, neighbour string) string {
	return region + "_to_" + neighbour
}

/*
Split partitions a mesh into one mesh per region. Internal faces joining two
regions become boundary faces of an interface patch on each side. Both sides
list the shared faces in the same order, so face i of patch "a_to_b" in
region a coincides with face i of patch "b_to_a" in region b.
*/
func Split(m *Mesh, cellRegion []int, names []string) (subs []*Mesh, err error) {
	var (
		nRegions = len(names)
		localID  = make([]int, m.NCells)
		nLocal   = make([]int, nRegions)
	)
	if len(cellRegion) != m.NCells {
		return nil, fmt.Errorf("region map has %d entries for %d cells", len(cellRegion), m.NCells)
	}
	for c, r := range cellRegion {
		if r < 0 || r >= nRegions {
			return nil, fmt.Errorf("cell %d is assigned to unknown region %d", c, r)
		}
		localID[c] = nLocal[r]
		nLocal[r]++
	}
	for r, n := range nLocal {
		if n == 0 {
			return nil, fmt.Errorf("region %s has no cells", names[r])
		}
	}
	subs = make([]*Mesh, nRegions)
	for r := 0; r < nRegions; r++ {
		var (
			pointID   = make(map[int]int)
			points    []types.Vec3
			faces     [][]int
			owner     []int
			neighbour []int
			patches   []Patch
		)
		mapVerts := func(verts []int) (out []int) {
			out = make([]int, len(verts))
			for i, v := range verts {
				id, ok := pointID[v]
				if !ok {
					id = len(points)
					pointID[v] = id
					points = append(points, m.Points[v])
				}
				out[i] = id
			}
			return
		}
		// Local numbering is monotone in the global one so upper triangular order survives
		for f := 0; f < m.NInternalFaces; f++ {
			own, nei := m.Owner[f], m.Neighbour[f]
			if cellRegion[own] == r && cellRegion[nei] == r {
				faces = append(faces, mapVerts(m.Faces[f]))
				owner = append(owner, localID[own])
				neighbour = append(neighbour, localID[nei])
			}
		}
		for _, p := range m.Patches {
			start := len(faces)
			for f := p.Start; f < p.Start+p.Size; f++ {
				if cellRegion[m.Owner[f]] == r {
					faces = append(faces, mapVerts(m.Faces[f]))
					owner = append(owner, localID[m.Owner[f]])
				}
			}
			if len(faces) > start {
				np := p
				np.Start, np.Size = start, len(faces)-start
				patches = append(patches, np)
			}
		}
		for s := 0; s < nRegions; s++ {
			if s == r {
				continue
			}
			start := len(faces)
			for f := 0; f < m.NInternalFaces; f++ {
				own, nei := m.Owner[f], m.Neighbour[f]
				switch {
				case cellRegion[own] == r && cellRegion[nei] == s:
					faces = append(faces, mapVerts(m.Faces[f]))
					owner = append(owner, localID[own])
				case cellRegion[own] == s && cellRegion[nei] == r:
					faces = append(faces, mapVerts(reversed(m.Faces[f])))
					owner = append(owner, localID[nei])
				}
			}
			if len(faces) > start {
				patches = append(patches, Patch{
					Name:            InterfacePatchName(names[r], names[s]),
					Type:            types.PT_Interface,
					Start:           start,
					Size:            len(faces) - start,
					NeighbourRegion: names[s],
					NeighbourPatch:  InterfacePatchName(names[s], names[r]),
				})
			}
		}
		if subs[r], err = NewMesh(points, faces, owner, neighbour, patches); err != nil {
			return nil, fmt.Errorf("region %s: %w", names[r], err)
		}
	}
	return
}
