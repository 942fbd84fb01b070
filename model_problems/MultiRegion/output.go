package MultiRegion

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ghodss/yaml"

	"github.com/notargets/gofv/fields"
	"github.com/notargets/gofv/types"
)

/*
Field files live in <case>/<time>/<region>/<field>.yaml, the initial mass
of a fluid region in <case>/<time>/<region>/uniform/initialMass.
*/
type scalarFieldFile struct {
	Name       string           `json:"name"`
	Class      string           `json:"class"`
	Dimensions types.Dimensions `json:"dimensions"`
	Internal   []float64        `json:"internalField"`
	Boundary   []float64        `json:"boundaryField,omitempty"`
}

type vectorFieldFile struct {
	Name       string           `json:"name"`
	Class      string           `json:"class"`
	Dimensions types.Dimensions `json:"dimensions"`
	Internal   []types.Vec3     `json:"internalField"`
	Boundary   []types.Vec3     `json:"boundaryField,omitempty"`
}

type initialMassFile struct {
	InitialMass float64 `json:"initialMass"`
}

func regionDir(caseDir, timeName, region string) string {
	return filepath.Join(caseDir, timeName, region)
}

// restartReader reads the fields of one region at the start time, a nil reader finds nothing
type restartReader struct {
	dir string
}

func newRestartReader(caseDir, timeName, region string) *restartReader {
	if caseDir == "" {
		return nil
	}
	return &restartReader{dir: regionDir(caseDir, timeName, region)}
}

func (r *restartReader) load(file string, v interface{}) (found bool, err error) {
	if r == nil {
		return
	}
	var data []byte
	path := filepath.Join(r.dir, file)
	if data, err = os.ReadFile(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return
	}
	if err = yaml.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	return true, nil
}

func (r *restartReader) readScalar(f *fields.VolScalarField) (err error) {
	var (
		ff    scalarFieldFile
		found bool
	)
	if found, err = r.load(f.Name+".yaml", &ff); err != nil || !found {
		return
	}
	if len(ff.Internal) != len(f.Internal) {
		return fmt.Errorf("field %s has %d values in %s, the mesh has %d cells",
			f.Name, len(ff.Internal), r.dir, len(f.Internal))
	}
	copy(f.Internal, ff.Internal)
	if len(ff.Boundary) == len(f.Boundary) {
		copy(f.Boundary, ff.Boundary)
	}
	f.CorrectBoundaryConditions()
	return
}

func (r *restartReader) readVector(f *fields.VolVectorField) (err error) {
	var (
		ff    vectorFieldFile
		found bool
	)
	if found, err = r.load(f.Name+".yaml", &ff); err != nil || !found {
		return
	}
	if len(ff.Internal) != len(f.Internal) {
		return fmt.Errorf("field %s has %d values in %s, the mesh has %d cells",
			f.Name, len(ff.Internal), r.dir, len(f.Internal))
	}
	copy(f.Internal, ff.Internal)
	if len(ff.Boundary) == len(f.Boundary) {
		copy(f.Boundary, ff.Boundary)
	}
	f.CorrectBoundaryConditions()
	return
}

// readSurface reports whether the face field was found
func (r *restartReader) readSurface(f *fields.SurfaceScalarField) (found bool, err error) {
	var ff scalarFieldFile
	if found, err = r.load(f.Name+".yaml", &ff); err != nil || !found {
		return
	}
	if len(ff.Internal) != len(f.Values) {
		return false, fmt.Errorf("field %s has %d values in %s, the mesh has %d faces",
			f.Name, len(ff.Internal), r.dir, len(f.Values))
	}
	copy(f.Values, ff.Internal)
	return
}

func (r *restartReader) readInitialMass() (m0 float64, ok bool, err error) {
	var im initialMassFile
	if ok, err = r.load(filepath.Join("uniform", "initialMass"), &im); err != nil || !ok {
		return
	}
	return im.InitialMass, true, nil
}

// writeFields writes every field of a registry into dir
func writeFields(dir string, reg *fields.Registry) (err error) {
	if err = os.MkdirAll(dir, 0755); err != nil {
		return
	}
	for _, name := range reg.Names() {
		f, _ := reg.Lookup(name)
		var v interface{}
		switch ff := f.(type) {
		case *fields.VolScalarField:
			v = scalarFieldFile{Name: ff.Name, Class: ff.FieldKind().String(), Dimensions: ff.Dims,
				Internal: ff.Internal, Boundary: ff.Boundary}
		case *fields.VolVectorField:
			v = vectorFieldFile{Name: ff.Name, Class: ff.FieldKind().String(), Dimensions: ff.Dims,
				Internal: ff.Internal, Boundary: ff.Boundary}
		case *fields.SurfaceScalarField:
			v = scalarFieldFile{Name: ff.Name, Class: ff.FieldKind().String(), Dimensions: ff.Dims,
				Internal: ff.Values}
		default:
			continue
		}
		if err = writeYAML(filepath.Join(dir, name+".yaml"), v); err != nil {
			return
		}
	}
	return
}

func writeInitialMass(dir string, m0 float64) error {
	uniform := filepath.Join(dir, "uniform")
	if err := os.MkdirAll(uniform, 0755); err != nil {
		return err
	}
	return writeYAML(filepath.Join(uniform, "initialMass"), initialMassFile{InitialMass: m0})
}

func writeYAML(path string, v interface{}) (err error) {
	var data []byte
	if data, err = yaml.Marshal(v); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0644)
}
