package fields

import (
	"fmt"
	"sort"

	"github.com/notargets/gofv/types"
)

type Kind uint8

const (
	KindVolScalar Kind = iota
	KindVolVector
	KindSurfaceScalar
	KindVolSymmTensor
)

func (k Kind) String() string {
	return [...]string{"volScalarField", "volVectorField", "surfaceScalarField", "volSymmTensorField"}[k]
}

// Field is the tagged handle stored in a Registry
type Field interface {
	FieldName() string
	FieldDims() types.Dimensions
	FieldKind() Kind
}

type SchemaEntry struct {
	Name     string
	Kind     Kind
	Dims     types.Dimensions
	Optional bool
}

// Schema lists the fields a region expects to find in its registry
type Schema []SchemaEntry

/*
Registry maps field names to fields for one region. Name lookup serves the
configuration and boundary condition layers; solvers hold typed pointers.
*/
type Registry struct {
	Region string
	fields map[string]Field
}

func NewRegistry(region string) *Registry {
	return &Registry{Region: region, fields: make(map[string]Field)}
}

func (r *Registry) Add(f Field) (err error) {
	if _, ok := r.fields[f.FieldName()]; ok {
		return fmt.Errorf("region %s: field %s is already registered", r.Region, f.FieldName())
	}
	r.fields[f.FieldName()] = f
	return
}

// MustAdd registers fields created by the solver itself, where a clash is a programming error
func (r *Registry) MustAdd(fs ...Field) {
	for _, f := range fs {
		if err := r.Add(f); err != nil {
			panic(err)
		}
	}
}

func (r *Registry) Lookup(name string) (f Field, ok bool) {
	f, ok = r.fields[name]
	return
}

func (r *Registry) Names() (names []string) {
	for name := range r.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}

func (r *Registry) Scalar(name string) (f *VolScalarField, err error) {
	var ok bool
	fi, found := r.fields[name]
	if !found {
		return nil, fmt.Errorf("region %s: no field named %s", r.Region, name)
	}
	if f, ok = fi.(*VolScalarField); !ok {
		return nil, fmt.Errorf("region %s: field %s is a %s, not a %s", r.Region, name, fi.FieldKind(), KindVolScalar)
	}
	return
}

func (r *Registry) Vector(name string) (f *VolVectorField, err error) {
	var ok bool
	fi, found := r.fields[name]
	if !found {
		return nil, fmt.Errorf("region %s: no field named %s", r.Region, name)
	}
	if f, ok = fi.(*VolVectorField); !ok {
		return nil, fmt.Errorf("region %s: field %s is a %s, not a %s", r.Region, name, fi.FieldKind(), KindVolVector)
	}
	return
}

func (r *Registry) Surface(name string) (f *SurfaceScalarField, err error) {
	var ok bool
	fi, found := r.fields[name]
	if !found {
		return nil, fmt.Errorf("region %s: no field named %s", r.Region, name)
	}
	if f, ok = fi.(*SurfaceScalarField); !ok {
		return nil, fmt.Errorf("region %s: field %s is a %s, not a %s", r.Region, name, fi.FieldKind(), KindSurfaceScalar)
	}
	return
}

// Validate checks every schema entry is present with the expected kind and dimensions
func (r *Registry) Validate(schema Schema) (err error) {
	for _, e := range schema {
		f, ok := r.fields[e.Name]
		if !ok {
			if e.Optional {
				continue
			}
			return fmt.Errorf("region %s: missing required field %s", r.Region, e.Name)
		}
		if f.FieldKind() != e.Kind {
			return fmt.Errorf("region %s: field %s is a %s, expected a %s", r.Region, e.Name, f.FieldKind(), e.Kind)
		}
		if f.FieldDims() != e.Dims {
			return fmt.Errorf("region %s: field %s has dimensions %v, expected %v",
				r.Region, e.Name, f.FieldDims(), e.Dims)
		}
	}
	return
}
