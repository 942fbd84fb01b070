package InputParameters

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofv/thermo"
	"github.com/notargets/gofv/types"
)

func TestParseExample(t *testing.T) {
	cp := &CaseParameters{}
	require.NoError(t, cp.Parse([]byte(ExampleCase)))
	assert.Equal(t, "Heated channel", cp.Title)
	assert.False(t, cp.Transient())
	assert.Equal(t, []string{"air", "plate"}, cp.RegionNames())
	assert.Equal(t, types.Vec3{0, -9.81, 0}, cp.Gravity)
	assert.Equal(t, [3]int{20, 8, 1}, cp.Mesh.Block.N)
	assert.Equal(t, "outlet", cp.Mesh.Block.Patches["xmax"].Name)
	require.Len(t, cp.Mesh.RegionBoxes, 2)
	assert.Equal(t, [3]int{20, 2, 1}, cp.Mesh.RegionBoxes[1].Max)

	air, plate := cp.Regions[0], cp.Regions[1]
	assert.True(t, air.IsFluid())
	assert.False(t, plate.IsFluid())
	assert.Equal(t, 100000., air.POperating)
	assert.Equal(t, "perfectGas", air.Fluid.EquationOfState)
	assert.Equal(t, types.Vec3{0.1, 0, 0}, air.BCs["U"]["inlet"].Vector)
	assert.Equal(t, 350., plate.BCs["T"]["bottom"].Value)
	assert.True(t, air.Solution.Consistent)
	assert.Equal(t, 0.7, air.Solution.Relaxation.Equation("U", false))
	assert.Equal(t, 1., air.Solution.Relaxation.Equation("U", true))
	assert.Equal(t, "PCG", air.Solution.Solvers["p_rgh"].Solver)
	assert.Equal(t, 45., plate.Solid.Kappa)
	// Defaults
	assert.True(t, *plate.Solution.MomentumPredictor)
	assert.Equal(t, 1, cp.PIMPLE.NOuterCorrectors)
}

func TestBlockAndSpecieKeys(t *testing.T) {
	cp := &CaseParameters{}
	require.NoError(t, cp.Parse([]byte(`
Time: {endTime: 1, deltaT: 1}
Mesh:
  block: {lengths: [1, 1, 0.1], cells: [4, 3, 1], twoD: true}
Regions:
  - name: duct
    type: fluid
    fluid:
      equationOfState: rhoConst
      rho: 1
      mu: 0.01
      inertSpecie: N2
      species:
        - {name: O2, W: 32, Cp: 920, Y0: 0.23}
        - {name: N2, W: 28, Cp: 1040, Y0: 0.77}
`)))
	{ // Test the cell counts of the block reach the mesh parameters
		assert.Equal(t, [3]int{4, 3, 1}, cp.Mesh.Block.N)
	}
	{ // Test the initial mass fractions reach the species
		sp := cp.Regions[0].Fluid.Species
		require.Len(t, sp, 2)
		assert.Equal(t, 0.23, sp[0].Y)
		assert.Equal(t, 0.77, sp[1].Y)
	}
	{ // Test the YAML 1.1 boolean spelling of a key is not taken for the cell counts
		bad := &CaseParameters{}
		err := bad.Parse([]byte(`
Time: {endTime: 1, deltaT: 1}
Mesh:
  block: {lengths: [1, 1, 1], N: [2, 2, 2]}
Regions:
  - {name: box, type: solid, solid: {rho: 1, Cp: 1, kappa: 1}}
`))
		assert.Error(t, err)
	}
}

func TestDefaults(t *testing.T) {
	cp := &CaseParameters{}
	require.NoError(t, cp.Parse([]byte(`
Time: {endTime: 10, deltaT: 1}
Mesh:
  block: {lengths: [1, 1, 1], cells: [2, 2, 2]}
Regions:
  - name: box
    type: solid
    solid: {rho: 1, Cp: 1, kappa: 1}
`)))
	assert.Equal(t, "steadyState", cp.Time.DdtScheme)
	assert.Equal(t, thermo.Tstd, cp.Regions[0].Initial.T)
	assert.True(t, *cp.Regions[0].Solution.SolveEnergy)
}

func TestValidation(t *testing.T) {
	header := `
Time: {endTime: 10, deltaT: 1}
Mesh:
  block: {lengths: [1, 1, 1], cells: [2, 2, 2]}
`
	var tests = []struct {
		name, regions, want string
	}{
		{"no regions", "Regions: []", "no regions"},
		{"unknown type", `
Regions:
  - {name: a, type: gas}`, "unknown region type"},
		{"duplicate name", `
Regions:
  - {name: a, type: solid, solid: {rho: 1, Cp: 1, kappa: 1}}
  - {name: a, type: solid, solid: {rho: 1, Cp: 1, kappa: 1}}`, "used twice"},
		{"missing thermo", `
Regions:
  - {name: a, type: fluid}`, "needs fluid properties"},
		{"missing inert", `
Regions:
  - name: a
    type: fluid
    fluid:
      equationOfState: perfectGas
      mu: 1.e-5
      species: [{name: O2, W: 32, Cp: 900, Y0: 1}]`, "inertSpecie"},
		{"bad bc", `
Regions:
  - name: a
    type: solid
    solid: {rho: 1, Cp: 1, kappa: 1}
    BCs:
      T:
        xmin: {type: slip}`, "unknown boundary condition type"},
		{"bad relaxation", `
Regions:
  - name: a
    type: solid
    solid: {rho: 1, Cp: 1, kappa: 1}
    solution:
      relaxationFactors:
        equations: {h: 1.5}`, "relaxation factor"},
	}
	for _, tc := range tests {
		cp := &CaseParameters{}
		err := cp.Parse([]byte(header + tc.regions))
		require.Error(t, err, tc.name)
		assert.True(t, strings.Contains(err.Error(), tc.want), "%s: %v", tc.name, err)
	}
	{ // Test the mesh needs exactly one source
		cp := &CaseParameters{}
		err := cp.Parse([]byte(`
Time: {endTime: 10, deltaT: 1}
Mesh: {}
Regions:
  - {name: a, type: solid, solid: {rho: 1, Cp: 1, kappa: 1}}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "either a block or an su2File")
	}
	{ // Test an unknown block side
		cp := &CaseParameters{}
		err := cp.Parse([]byte(`
Time: {endTime: 10, deltaT: 1}
Mesh:
  block:
    lengths: [1, 1, 1]
    cells: [2, 2, 2]
    patches: {left: {name: inlet, type: patch}}
Regions:
  - {name: a, type: solid, solid: {rho: 1, Cp: 1, kappa: 1}}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown block side")
	}
}

func TestZone(t *testing.T) {
	z := Zone{Min: types.Vec3{0, 0, 0}, Max: types.Vec3{1, 1, 1}}
	assert.True(t, z.Contains(types.Vec3{0.5, 0.5, 0.5}))
	assert.True(t, z.Contains(types.Vec3{1, 0, 0}))
	assert.False(t, z.Contains(types.Vec3{0.5, 1.5, 0.5}))
	assert.Equal(t, 3, SideIndex("YMAX"))
	assert.Equal(t, -1, SideIndex("left"))
}
