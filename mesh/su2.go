package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/notargets/gofv/types"
)

// From here: https://su2code.github.io/docs_v7/Mesh-File/
type SU2ElementType uint8

const (
	ELType_LINE          SU2ElementType = 3
	ELType_Triangle      SU2ElementType = 5
	ELType_Quadrilateral SU2ElementType = 9
)

const FrontAndBackPatch = "frontAndBack"

func readBCs(reader *bufio.Reader) (names []string, BCEdges map[string][]types.EdgeKey) {
	var (
		nType  int
		v1, v2 int
		err    error
	)
	NBCs := readNumber(reader)
	BCEdges = make(map[string][]types.EdgeKey, NBCs)
	for n := 0; n < NBCs; n++ {
		label := readLabel(reader)
		if _, ok := BCEdges[label]; ok {
			err = fmt.Errorf("duplicate boundary condition found with label: [%s]", label)
			panic(err)
		}
		names = append(names, label)
		nEdges := readNumber(reader)
		BCEdges[label] = make([]types.EdgeKey, nEdges)
		for i := 0; i < nEdges; i++ {
			line := getLine(reader)
			if _, err = fmt.Sscanf(line, "%d %d %d", &nType, &v1, &v2); err != nil {
				panic(err)
			}
			if SU2ElementType(nType) != ELType_LINE {
				panic("BCs should only contain line elements in 2D")
			}
			BCEdges[label][i] = types.NewEdgeKey([2]int{v1, v2})
		}
	}
	return
}

func readVertices(reader *bufio.Reader) (VX, VY []float64) {
	var (
		n    int
		x, y float64
		err  error
	)
	Nv := readNumber(reader)
	VX, VY = make([]float64, Nv), make([]float64, Nv)
	for i := 0; i < Nv; i++ {
		line := getLine(reader)
		if n, err = fmt.Sscanf(line, "%f %f", &x, &y); err != nil {
			panic(err)
		}
		if n != 2 {
			panic("unable to read coordinates")
		}
		VX[i], VY[i] = x, y
	}
	return
}

func readElements(reader *bufio.Reader) (K int, EToV [][]int) {
	var (
		nType int
		err   error
	)
	K = readNumber(reader)
	EToV = make([][]int, K)
	for k := 0; k < K; k++ {
		line := getLine(reader)
		fields := strings.Fields(line)
		if len(fields) < 1 {
			panic(fmt.Errorf("empty element line at element %d", k))
		}
		if _, err = fmt.Sscanf(fields[0], "%d", &nType); err != nil {
			panic(err)
		}
		var nv int
		switch SU2ElementType(nType) {
		case ELType_Triangle:
			nv = 3
		case ELType_Quadrilateral:
			nv = 4
		default:
			panic(fmt.Errorf("unable to deal with element type %d, only triangles and quadrilaterals", nType))
		}
		if len(fields) < nv+1 {
			panic("unable to read vertices")
		}
		EToV[k] = make([]int, nv)
		for i := 0; i < nv; i++ {
			if _, err = fmt.Sscanf(fields[i+1], "%d", &EToV[k][i]); err != nil {
				panic(err)
			}
		}
	}
	return
}

func getLine(reader *bufio.Reader) (line string) {
	var (
		err error
	)
	line, err = reader.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			err = fmt.Errorf("early end of file")
		}
		panic(err)
	}
	line = strings.TrimRight(line, "\r\n") // Strip away the newline
	return
}

func skipLines(n int, reader *bufio.Reader) {
	for i := 0; i < n; i++ {
		getLine(reader)
	}
}

func getToken(reader *bufio.Reader) (token string) {
	var (
		line string
		err  error
	)
	line = getLineNoComments(reader)
	ind := strings.Index(line, "=")
	if ind < 0 {
		err = fmt.Errorf("badly formed input line [%s], should have an =", line)
		panic(err)
	}
	token = line[ind+1:]
	return
}

func readLabel(reader *bufio.Reader) (label string) {
	var (
		err error
	)
	token := getToken(reader)
	if _, err = fmt.Sscanf(token, "%s", &label); err != nil {
		err = fmt.Errorf("unable to read label from token: [%s]", token)
		panic(err)
	}
	label = strings.Trim(label, " ")
	return
}

func readNumber(reader *bufio.Reader) (num int) {
	var (
		err error
	)
	token := getToken(reader)
	if _, err = fmt.Sscanf(token, "%d", &num); err != nil {
		err = fmt.Errorf("unable to read number from token: [%s]", token)
		panic(err)
	}
	return
}

func getLineNoComments(reader *bufio.Reader) (line string) {
	for {
		line = strings.Trim(getLine(reader), " ")
		if !strings.HasPrefix(line, "%") {
			return
		}
	}
}

// markerPatchType uses the part of a marker tag before the first '-' as the
// patch type when it names one, e.g. "wall-top"
func markerPatchType(label string) types.PatchType {
	prefix := label
	if ind := strings.Index(label, "-"); ind > 0 {
		prefix = label[:ind]
	}
	if pt, err := types.NewPatchType(prefix); err == nil {
		return pt
	}
	return types.PT_Patch
}

/*
ReadSU2 reads a two dimensional SU2 mesh and extrudes it one cell thick in z.
Each marker becomes a patch, the extruded faces form the empty frontAndBack patch.
*/
func ReadSU2(r io.Reader, thickness float64, verbose bool) (m *Mesh, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("reading SU2 mesh: %v", rec)
		}
	}()
	reader := bufio.NewReader(r)
	dimensionality := readNumber(reader)
	if dimensionality != 2 {
		return nil, fmt.Errorf("only two dimensional SU2 meshes are supported, have NDIME= %d", dimensionality)
	}
	K, EToV := readElements(reader)
	VX, VY := readVertices(reader)
	markers, BCEdges := readBCs(reader)
	if verbose {
		fmt.Printf("Read SU2 mesh with %d elements, %d vertices and %d markers\n", K, len(VX), len(markers))
	}
	var (
		np      = len(VX)
		points  = make([]types.Vec3, 2*np)
		patches = make([]Patch, 0, len(markers)+1)
		edgeBC  = make(map[types.EdgeKey]int)
		cells   = make([][]CellFace, K)
	)
	for i := 0; i < np; i++ {
		points[i] = types.Vec3{VX[i], VY[i], 0}
		points[i+np] = types.Vec3{VX[i], VY[i], thickness}
	}
	for pi, name := range markers {
		patches = append(patches, Patch{Name: name, Type: markerPatchType(name)})
		for _, ek := range BCEdges[name] {
			edgeBC[ek] = pi
		}
	}
	emptyPatch := len(patches)
	patches = append(patches, Patch{Name: FrontAndBackPatch, Type: types.PT_Empty})
	for k, verts := range EToV {
		for _, v := range verts {
			if v < 0 || v >= np {
				return nil, fmt.Errorf("element %d references vertex %d, mesh has %d", k, v, np)
			}
		}
		// Counter clockwise in the xy plane
		var area float64
		for i := range verts {
			a, b := verts[i], verts[(i+1)%len(verts)]
			area += VX[a]*VY[b] - VX[b]*VY[a]
		}
		if area < 0 {
			verts = reversed(verts)
		}
		nv := len(verts)
		cellFaces := make([]CellFace, 0, nv+2)
		for i := range verts {
			a, b := verts[i], verts[(i+1)%nv]
			pi, ok := edgeBC[types.NewEdgeKey([2]int{a, b})]
			if !ok {
				pi = -1
			}
			cellFaces = append(cellFaces, CellFace{Verts: []int{a, b, b + np, a + np}, Patch: pi})
		}
		bottom, top := make([]int, nv), make([]int, nv)
		for i := range verts {
			bottom[nv-1-i] = verts[i]
			top[i] = verts[i] + np
		}
		cellFaces = append(cellFaces,
			CellFace{Verts: bottom, Patch: emptyPatch},
			CellFace{Verts: top, Patch: emptyPatch},
		)
		cells[k] = cellFaces
	}
	return Build(points, cells, patches)
}

func ReadSU2File(filename string, thickness float64, verbose bool) (m *Mesh, err error) {
	var (
		file *os.File
	)
	if verbose {
		fmt.Printf("Reading SU2 file named: %s\n", filename)
	}
	if file, err = os.Open(filename); err != nil {
		return nil, fmt.Errorf("unable to open file %s: %w", filename, err)
	}
	defer file.Close()
	return ReadSU2(file, thickness, verbose)
}
