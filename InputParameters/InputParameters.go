package InputParameters

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ghodss/yaml"

	"github.com/notargets/gofv/combustion"
	"github.com/notargets/gofv/control"
	"github.com/notargets/gofv/fvoptions"
	"github.com/notargets/gofv/radiation"
	"github.com/notargets/gofv/thermo"
	"github.com/notargets/gofv/turbulence"
	"github.com/notargets/gofv/types"
)

const (
	FluidRegion = "fluid"
	SolidRegion = "solid"
)

// Parameters obtained from the YAML case file
type CaseParameters struct {
	Title   string                 `json:"Title"`
	Time    control.TimeProperties `json:"Time"`
	Gravity types.Vec3             `json:"Gravity,omitempty"`
	PIMPLE  control.Properties     `json:"PIMPLE,omitempty"`
	Mesh    MeshParameters         `json:"Mesh"`
	Regions []RegionParameters     `json:"Regions"`
}

// PatchParameters renames and retypes one side of a block mesh
type PatchParameters struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type BlockParameters struct {
	Origin  types.Vec3 `json:"origin"`
	Lengths types.Vec3 `json:"lengths"`
	N       [3]int     `json:"cells"`
	TwoD    bool       `json:"twoD,omitempty"`
	// Keyed by side, xmin xmax ymin ymax zmin zmax
	Patches map[string]PatchParameters `json:"patches,omitempty"`
}

// CellBox is an inclusive-exclusive range of block cell indices
type CellBox struct {
	Min [3]int `json:"min"`
	Max [3]int `json:"max"`
}

// Zone selects cells by the position of their centres
type Zone struct {
	Min types.Vec3 `json:"min"`
	Max types.Vec3 `json:"max"`
}

func (z Zone) Contains(x types.Vec3) bool {
	for d := 0; d < 3; d++ {
		if x[d] < z.Min[d] || x[d] > z.Max[d] {
			return false
		}
	}
	return true
}

/*
MeshParameters selects either a block mesh or an SU2 grid. With more than one
region a block mesh is divided by RegionBoxes, or into slabs along x without
them. An SU2 grid is divided by RegionZones. In both cases entry r names the
cells of region r, later entries win and the remaining cells go to region 0.
*/
type MeshParameters struct {
	Block       *BlockParameters `json:"block,omitempty"`
	SU2File     string           `json:"su2File,omitempty"`
	Thickness   float64          `json:"thickness,omitempty"`
	RegionBoxes []CellBox        `json:"regionBoxes,omitempty"`
	RegionZones []Zone           `json:"regionZones,omitempty"`
}

// BCParameters is the condition of one field on one patch
type BCParameters struct {
	Type     string     `json:"type"`
	Value    float64    `json:"value,omitempty"`
	Vector   types.Vec3 `json:"vector,omitempty"` // Value of a vector field
	Gradient float64    `json:"gradient,omitempty"`
}

type InitialParameters struct {
	U     types.Vec3 `json:"U,omitempty"`
	P_rgh float64    `json:"p_rgh,omitempty"`
	T     float64    `json:"T"`
}

type RegionParameters struct {
	Name       string                   `json:"name"`
	Type       string                   `json:"type"`
	Fluid      *thermo.FluidProperties  `json:"fluid,omitempty"`
	Solid      *thermo.SolidProperties  `json:"solid,omitempty"`
	POperating float64                  `json:"pOperating,omitempty"`
	Turbulence turbulence.Properties    `json:"turbulence,omitempty"`
	Radiation  radiation.Properties     `json:"radiation,omitempty"`
	Combustion combustion.Properties    `json:"combustion,omitempty"`
	FvOptions  []fvoptions.Properties   `json:"fvOptions,omitempty"`
	Solution   control.RegionProperties `json:"solution,omitempty"`
	Initial    InitialParameters        `json:"initial"`
	// First key is the field name, second the patch name
	BCs map[string]map[string]BCParameters `json:"BCs,omitempty"`
}

func (rp *RegionParameters) IsFluid() bool { return strings.ToLower(rp.Type) == FluidRegion }

func (cp *CaseParameters) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, cp); err != nil {
		return
	}
	cp.SetDefaults()
	return cp.Validate()
}

func (cp *CaseParameters) SetDefaults() {
	cp.Time.SetDefaults()
	cp.PIMPLE.SetDefaults()
	for i := range cp.Regions {
		rp := &cp.Regions[i]
		rp.Solution.SetDefaults()
		if rp.Fluid != nil {
			rp.Fluid.SetDefaults()
		}
		if rp.Initial.T == 0 {
			rp.Initial.T = thermo.Tstd
		}
	}
}

// Transient is true when the case marches in time with the PIMPLE loop
func (cp *CaseParameters) Transient() bool {
	return strings.ToLower(cp.Time.DdtScheme) != "steadystate"
}

func (cp *CaseParameters) RegionNames() (names []string) {
	for _, rp := range cp.Regions {
		names = append(names, rp.Name)
	}
	return
}

func (cp *CaseParameters) Validate() (err error) {
	if len(cp.Regions) == 0 {
		return fmt.Errorf("case has no regions")
	}
	if _, err = control.NewTime(cp.Time); err != nil {
		return
	}
	if err = cp.Mesh.Validate(len(cp.Regions)); err != nil {
		return
	}
	names := make(map[string]bool)
	for i := range cp.Regions {
		rp := &cp.Regions[i]
		if rp.Name == "" {
			return fmt.Errorf("region %d has no name", i)
		}
		if names[rp.Name] {
			return fmt.Errorf("region name %s is used twice", rp.Name)
		}
		names[rp.Name] = true
		if err = rp.Validate(); err != nil {
			return fmt.Errorf("region %s: %w", rp.Name, err)
		}
	}
	return
}

func (mp *MeshParameters) Validate(nRegions int) (err error) {
	switch {
	case mp.Block == nil && mp.SU2File == "":
		return fmt.Errorf("mesh needs either a block or an su2File")
	case mp.Block != nil && mp.SU2File != "":
		return fmt.Errorf("mesh can not have both a block and an su2File")
	case len(mp.RegionBoxes) > nRegions || len(mp.RegionZones) > nRegions:
		return fmt.Errorf("more region boxes or zones than the %d regions", nRegions)
	}
	if mp.SU2File != "" {
		if nRegions > 1 && len(mp.RegionZones) == 0 {
			return fmt.Errorf("an su2 mesh with %d regions needs regionZones", nRegions)
		}
		return
	}
	b := mp.Block
	for d := 0; d < 3; d++ {
		if b.N[d] < 1 && !(d == 2 && b.TwoD) {
			return fmt.Errorf("block needs at least one cell in each direction, have %v", b.N)
		}
		if b.Lengths[d] <= 0 {
			return fmt.Errorf("block needs positive lengths, have %v", b.Lengths)
		}
	}
	for side, pp := range b.Patches {
		if SideIndex(side) < 0 {
			return fmt.Errorf("unknown block side %q, choose from xmin, xmax, ymin, ymax, zmin, zmax", side)
		}
		if _, err = types.NewPatchType(pp.Type); err != nil {
			return fmt.Errorf("block side %s: %w", side, err)
		}
	}
	return
}

// SideIndex is the position of a block side in xmin..zmax order, -1 if unknown
func SideIndex(side string) int {
	for i, s := range []string{"xmin", "xmax", "ymin", "ymax", "zmin", "zmax"} {
		if strings.ToLower(side) == s {
			return i
		}
	}
	return -1
}

func (rp *RegionParameters) Validate() (err error) {
	switch strings.ToLower(rp.Type) {
	case FluidRegion:
		if rp.Fluid == nil {
			return fmt.Errorf("fluid region needs fluid properties")
		}
		if err = rp.Fluid.Validate(); err != nil {
			return
		}
		if len(rp.Fluid.Species) != 0 && rp.Fluid.InertSpecie == "" {
			return fmt.Errorf("a multi-component fluid needs an inertSpecie")
		}
	case SolidRegion:
		if rp.Solid == nil {
			return fmt.Errorf("solid region needs solid properties")
		}
		if err = rp.Solid.Validate(); err != nil {
			return
		}
	default:
		return fmt.Errorf("unknown region type %q, choose from fluid, solid", rp.Type)
	}
	if rp.Initial.T <= 0 {
		return fmt.Errorf("initial temperature must be positive, have %g", rp.Initial.T)
	}
	if err = rp.Solution.Validate(); err != nil {
		return
	}
	for field, patches := range rp.BCs {
		for patch, bc := range patches {
			if _, err = types.NewBCKind(bc.Type); err != nil {
				return fmt.Errorf("field %s, patch %s: %w", field, patch, err)
			}
		}
	}
	return
}

func (cp *CaseParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", cp.Title)
	fmt.Printf("[%s]\t\t= Time Scheme\n", cp.Time.DdtScheme)
	fmt.Printf("%8.5f\t\t= StartTime\n", cp.Time.StartTime)
	fmt.Printf("%8.5f\t\t= EndTime\n", cp.Time.EndTime)
	fmt.Printf("%8.5f\t\t= DeltaT\n", cp.Time.DeltaT)
	fmt.Printf("%v\t\t= Gravity\n", cp.Gravity)
	if cp.Transient() {
		fmt.Printf("[%d]\t\t\t\t= Outer Correctors\n", cp.PIMPLE.NOuterCorrectors)
		fmt.Printf("[%d]\t\t\t\t= PISO Correctors\n", cp.PIMPLE.NCorrectors)
	}
	for _, rp := range cp.Regions {
		fmt.Printf("Region[%s] = %s, %d non-orthogonal correctors\n",
			rp.Name, rp.Type, rp.Solution.NNonOrthogonalCorrectors)
		keys := make([]string, len(rp.BCs))
		i := 0
		for k := range rp.BCs {
			keys[i] = k
			i++
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Printf("\tBCs[%s] = %v\n", key, rp.BCs[key])
		}
	}
}
