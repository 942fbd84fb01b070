package mesh

import (
	"fmt"
	"sort"

	"github.com/notargets/gofv/types"
)

// CellFace is one face of a cell with its vertices ordered so the normal
// points out of the cell. Patch is used only if no other cell shares the face.
type CellFace struct {
	Verts []int
	Patch int
}

type pendingFace struct {
	verts          []int
	owner, nei     int
	patch          int
	firstAppearing int
}

/*
Build assembles a face addressed mesh from cells described by their outward
oriented faces. Faces seen from two cells become internal faces, the rest are
assigned to the patch named by their CellFace.Patch.
*/
func Build(points []types.Vec3, cells [][]CellFace, patches []Patch) (m *Mesh, err error) {
	var (
		faceMap = make(map[types.FaceKey]*pendingFace)
		order   []*pendingFace
	)
	for c, cellFaces := range cells {
		for _, cf := range cellFaces {
			key := types.NewFaceKey(cf.Verts)
			if pf, ok := faceMap[key]; ok {
				if pf.nei != -1 {
					return nil, fmt.Errorf("face %v is shared by more than two cells", cf.Verts)
				}
				pf.nei = c
				continue
			}
			pf := &pendingFace{
				verts:          cf.Verts,
				owner:          c,
				nei:            -1,
				patch:          cf.Patch,
				firstAppearing: len(order),
			}
			faceMap[key] = pf
			order = append(order, pf)
		}
	}
	var (
		internal []*pendingFace
		boundary = make([][]*pendingFace, len(patches))
	)
	for _, pf := range order {
		if pf.nei == -1 {
			if pf.patch < 0 || pf.patch >= len(patches) {
				return nil, fmt.Errorf("boundary face %v of cell %d is not assigned to a patch",
					pf.verts, pf.owner)
			}
			boundary[pf.patch] = append(boundary[pf.patch], pf)
			continue
		}
		if pf.owner > pf.nei {
			pf.owner, pf.nei = pf.nei, pf.owner
			pf.verts = reversed(pf.verts)
		}
		internal = append(internal, pf)
	}
	sort.SliceStable(internal, func(i, j int) bool {
		if internal[i].owner != internal[j].owner {
			return internal[i].owner < internal[j].owner
		}
		return internal[i].nei < internal[j].nei
	})
	var (
		faces     [][]int
		owner     []int
		neighbour []int
		outPatch  = make([]Patch, len(patches))
	)
	for _, pf := range internal {
		faces = append(faces, pf.verts)
		owner = append(owner, pf.owner)
		neighbour = append(neighbour, pf.nei)
	}
	for pi := range patches {
		outPatch[pi] = patches[pi]
		outPatch[pi].Start = len(faces)
		outPatch[pi].Size = len(boundary[pi])
		for _, pf := range boundary[pi] {
			faces = append(faces, pf.verts)
			owner = append(owner, pf.owner)
		}
	}
	return NewMesh(points, faces, owner, neighbour, outPatch)
}

func reversed(verts []int) (r []int) {
	r = make([]int, len(verts))
	for i, v := range verts {
		r[len(verts)-1-i] = v
	}
	return
}
