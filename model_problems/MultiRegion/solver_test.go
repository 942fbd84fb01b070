package MultiRegion

import (
	"bytes"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofv/InputParameters"
	"github.com/notargets/gofv/fvc"
	"github.com/notargets/gofv/mesh"
)

func newTestSolver(t *testing.T, yamlCase string) *Solver {
	cp := &InputParameters.CaseParameters{}
	require.NoError(t, cp.Parse([]byte(yamlCase)))
	s, err := NewSolver(cp, "", io.Discard)
	require.NoError(t, err)
	return s
}

func patchFlux(m *mesh.Mesh, phi []float64, name string) (sum float64) {
	pi, err := m.PatchIndex(name)
	if err != nil {
		panic(err)
	}
	p := m.Patches[pi]
	for f := p.Start; f < p.Start+p.Size; f++ {
		sum += phi[f]
	}
	return
}

const cavityCase = `
Time: {endTime: 1, deltaT: 1}
Mesh:
  block:
    lengths: [1, 1, 0.1]
    cells: [4, 4, 1]
    twoD: true
    patches:
      ymax: {name: lid, type: wall}
Regions:
  - name: cavity
    type: fluid
    fluid: {equationOfState: rhoConst, rho: 1, mu: 0.01}
    solution:
      solveEnergy: false
      relaxationFactors:
        fields: {p_rgh: 0.3}
        equations: {U: 0.7}
      solvers:
        "(U|p_rgh)": {solver: direct}
    BCs:
      U:
        lid: {type: fixedValue, vector: [1, 0, 0]}
`

func TestCavity(t *testing.T) {
	s := newTestSolver(t, cavityCase)
	require.Len(t, s.Fluids, 1)
	fr := s.Fluids[0]
	assert.True(t, fr.P_rgh.NeedReference())
	assert.Equal(t, 16, fr.Mesh.NCells)
	require.NoError(t, s.Run())
	{ // Test the lid drives the flow
		assert.Greater(t, fr.U.MaxMag(), 1.e-3)
		assert.Less(t, fr.U.MaxMag(), 2.)
	}
	{ // Test the corrected flux is divergence free
		for c, d := range fvc.Div(fr.Phi) {
			assert.InDeltaf(t, 0., d, 1.e-10, "cell %d", c)
		}
	}
	{ // Test no flux leaves through the walls
		nInt := fr.Mesh.NInternalFaces
		for f := nInt; f < fr.Mesh.NFaces(); f++ {
			assert.InDelta(t, 0., fr.Phi.Values[f], 1.e-12)
		}
	}
	{ // Test the reference cell holds the reference level
		assert.InDelta(t, 0., fr.P_rgh.Internal[0], 1.e-8)
	}
}

const ductCase = `
Time: {endTime: 3, deltaT: 1}
Mesh:
  block:
    lengths: [3, 1, 0.1]
    cells: [6, 2, 1]
    twoD: true
    patches:
      xmin: {name: inlet, type: patch}
      xmax: {name: outlet, type: patch}
Regions:
  - name: duct
    type: fluid
    fluid:
      equationOfState: rhoConst
      rho: 1
      mu: 0.01
      inertSpecie: N2
      species:
        - {name: O2, W: 32, Cp: 920, Dm: 1.e-3, Y0: 0.2}
        - {name: N2, W: 28, Cp: 1040, Y0: 0.8}
    solution:
      solveEnergy: false
      relaxationFactors:
        fields: {p_rgh: 0.3}
        equations: {U: 0.7}
      solvers:
        "(U|p_rgh|Yi)": {solver: direct}
    BCs:
      U:
        inlet: {type: fixedValue, vector: [1, 0, 0]}
      p_rgh:
        outlet: {type: fixedValue, value: 0}
      O2:
        inlet: {type: fixedValue, value: 0.5}
`

func TestDuct(t *testing.T) {
	s := newTestSolver(t, ductCase)
	fr := s.Fluids[0]
	assert.False(t, fr.P_rgh.NeedReference())
	require.NoError(t, s.Run())
	var (
		m   = fr.Mesh
		phi = fr.Phi.Values
	)
	{ // Test the mass flux balances over the boundary
		in, out := patchFlux(m, phi, "inlet"), patchFlux(m, phi, "outlet")
		assert.InDelta(t, -0.1, in, 1.e-12)
		assert.InDelta(t, 0.1, out, 1.e-10)
		var net float64
		for f := m.NInternalFaces; f < m.NFaces(); f++ {
			net += phi[f]
		}
		assert.InDelta(t, 0., net, 1.e-10)
	}
	{ // Test the mass fractions close to one and stay bounded
		comp := fr.Thermo.Comp
		require.NotNil(t, comp)
		O2, N2 := comp.Y[comp.Index("O2")], comp.Y[comp.Index("N2")]
		for c := range O2.Internal {
			assert.InDelta(t, 1., O2.Internal[c]+N2.Internal[c], 1.e-12)
			assert.GreaterOrEqual(t, O2.Internal[c], 0.)
			assert.LessOrEqual(t, O2.Internal[c], 0.5+1.e-12)
		}
		for b := range O2.Boundary {
			if !m.EmptyFace[b] {
				assert.InDelta(t, 1., O2.Boundary[b]+N2.Boundary[b], 1.e-12)
			}
		}
		// The inflowing oxygen has reached the first cells
		assert.Greater(t, O2.Internal[0], 0.2)
	}
}

const closedBoxCase = `
Time: {endTime: 1, deltaT: 1}
Mesh:
  block:
    lengths: [1, 1, 0.1]
    cells: [3, 3, 1]
    twoD: true
Regions:
  - name: box
    type: fluid
    pOperating: 100000
    fluid: {equationOfState: perfectGas, W: 28.9, Cp: 1005, mu: 1.8e-5}
    initial: {T: 300}
    solution:
      maintainInitialMass: true
`

func TestMaintainInitialMass(t *testing.T) {
	{ // Test a consistent state has no imbalance
		fr := newTestSolver(t, closedBoxCase).Fluids[0]
		m0 := fr.InitialMass
		require.Greater(t, m0, 0.)
		assert.InDelta(t, 0., fr.maintainInitialMass(io.Discard), 1.e-9*m0)
	}
	{ // Test the mass is measured by the density, p stays put when rho holds the initial mass
		fr := newTestSolver(t, closedBoxCase).Fluids[0]
		for c := range fr.Rho.Internal {
			fr.Rho.Internal[c] *= 1.001
		}
		fr.InitialMass = fvc.DomainIntegrate(fr.Mesh, fr.Rho.Internal)
		p0 := fr.Thermo.P.Internal[4]
		assert.InDelta(t, 0., fr.maintainInitialMass(io.Discard), 1.e-9*fr.InitialMass)
		assert.InDelta(t, p0, fr.Thermo.P.Internal[4], 1.e-9*p0)
	}
	{ // Test the pressure shift closes the imbalance once the density follows
		fr := newTestSolver(t, closedBoxCase).Fluids[0]
		m0 := fr.InitialMass
		p0 := fr.Thermo.P.Internal[4]
		fr.InitialMass = 1.01 * m0
		assert.InDelta(t, 0.01*m0, fr.maintainInitialMass(io.Discard), 1.e-9*m0)
		assert.InDelta(t, 1.01*p0, fr.Thermo.P.Internal[4], 1.e-6*p0)
		assert.InDelta(t, 1.01*p0-fr.POperating, fr.P_rgh.Internal[4], 1.e-6*p0)
		fr.Thermo.Correct()
		fr.Rho.Assign(fr.Thermo.Rho)
		assert.InDelta(t, 0., fr.maintainInitialMass(io.Discard), 1.e-9*m0)
	}
	{ // Test a region with a compressibility below SMALL is left alone
		fr := newTestSolver(t, closedBoxCase).Fluids[0]
		for c := range fr.Thermo.Psi.Internal {
			fr.Thermo.Psi.Internal[c] = 1.e-20
		}
		p0 := fr.Thermo.P.Internal[4]
		fr.InitialMass *= 1.01
		assert.Equal(t, 0., fr.maintainInitialMass(io.Discard))
		assert.Equal(t, p0, fr.Thermo.P.Internal[4])
	}
}

func TestPressureCorrectionLimit(t *testing.T) {
	cp := &InputParameters.CaseParameters{}
	require.NoError(t, cp.Parse([]byte(closedBoxCase)))
	cp.Regions[0].Solution.PCorrLimit = 0.1
	s, err := NewSolver(cp, "", io.Discard)
	require.NoError(t, err)
	fr := s.Fluids[0]
	{ // Test the bound is taken from the initial pressure
		assert.InDelta(t, 1.e4, fr.PCorrMax, 1.e-6)
	}
	{ // Test successive corrections are clipped by the same bound
		for c := range fr.P_rgh.Internal {
			fr.P_rgh.Internal[c] += 5.e4
		}
		fr.updatePressure()
		assert.InDelta(t, 1.1e5, fr.Thermo.P.Internal[4], 1.e-6)
		for c := range fr.P_rgh.Internal {
			fr.P_rgh.Internal[c] += 5.e4
		}
		fr.updatePressure()
		assert.InDelta(t, 1.2e5, fr.Thermo.P.Internal[4], 1.e-6)
		assert.InDelta(t, 1.e4, fr.PCorrMax, 1.e-6)
	}
	{ // Test no limit without pCorrLimit
		fr := newTestSolver(t, closedBoxCase).Fluids[0]
		assert.Equal(t, 0., fr.PCorrMax)
		for c := range fr.P_rgh.Internal {
			fr.P_rgh.Internal[c] += 5.e4
		}
		fr.updatePressure()
		assert.InDelta(t, 1.5e5, fr.Thermo.P.Internal[4], 1.e-6)
	}
}

func TestEnergyNonOrthogonalCorrectors(t *testing.T) {
	cp := &InputParameters.CaseParameters{}
	require.NoError(t, cp.Parse([]byte(closedBoxCase)))
	cp.Time.DdtScheme = "Euler"
	cp.Regions[0].Solution.NNonOrthogonalCorrectors = 2
	var buf bytes.Buffer
	s, err := NewSolver(cp, "", &buf)
	require.NoError(t, err)
	s.Control.Verbose = true
	fr := s.Fluids[0]
	h0 := append([]float64(nil), fr.Thermo.H.Internal...)
	s.storeOldTimes()
	s.Time.Advance()
	s.Control.SetRegion(fr.Index)
	buf.Reset()
	fr.solveEnergy(s.Control, s.Time.State())
	{ // Test the enthalpy is solved once per non-orthogonal pass
		assert.Equal(t, 3, strings.Count(buf.String(), "Solving for h,"))
		assert.Equal(t, 0, s.Control.CorrNonOrtho())
	}
	{ // Test a closed box at rest keeps its enthalpy
		assert.InDeltaSlice(t, h0, fr.Thermo.H.Internal, 1.e-6)
	}
}

func TestFaceDensityRelaxation(t *testing.T) {
	assert.Equal(t, 1., faceDensityRelaxation(1, 1, 1))
	assert.InDelta(t, 0.7*0.7*0.3*0.9, faceDensityRelaxation(0.7, 0.3, 0.9), 1.e-15)
	{ // Test the face density is unchanged by a unit factor
		s := newTestSolver(t, closedBoxCase)
		fr := s.Fluids[0]
		rhof := append([]float64(nil), fr.Rhof.Values...)
		fr.Rhof.StorePrevIter()
		fr.Rhof.Relax(faceDensityRelaxation(1, 1, 1))
		assert.Equal(t, rhof, fr.Rhof.Values)
	}
}

const twoSolidsCase = `
Time: {endTime: 200, deltaT: 1}
Mesh:
  block:
    lengths: [4, 1, 0.1]
    cells: [4, 1, 1]
    twoD: true
    patches:
      xmin: {name: left, type: wall}
      xmax: {name: right, type: wall}
Regions:
  - name: a
    type: solid
    solid: {rho: 1000, Cp: 500, kappa: 1}
    initial: {T: 350}
    solution:
      solvers:
        h: {solver: direct}
    BCs:
      T:
        left: {type: fixedValue, value: 400}
  - name: b
    type: solid
    solid: {rho: 1000, Cp: 500, kappa: 3}
    initial: {T: 350}
    solution:
      solvers:
        h: {solver: direct}
    BCs:
      T:
        right: {type: fixedValue, value: 300}
`

func TestConjugateInterface(t *testing.T) {
	s := newTestSolver(t, twoSolidsCase)
	require.Len(t, s.Solids, 2)
	require.NoError(t, s.Run())
	a, b := s.Solids[0], s.Solids[1]
	interfaceT := func(sr *SolidRegion, name string) float64 {
		m := sr.Mesh
		pi, err := m.PatchIndex(name)
		require.NoError(t, err)
		return sr.Thermo.T.Boundary[m.Patches[pi].Start-m.NInternalFaces]
	}
	{ // Test the interface temperature balances the conductive fluxes
		assert.InDelta(t, 325., interfaceT(a, mesh.InterfacePatchName("a", "b")), 1.e-6)
		assert.InDelta(t, 325., interfaceT(b, mesh.InterfacePatchName("b", "a")), 1.e-6)
	}
	{ // Test the profile is linear within each solid
		assert.InDelta(t, 381.25, a.Thermo.T.Internal[0], 1.e-6)
		assert.InDelta(t, 343.75, a.Thermo.T.Internal[1], 1.e-6)
		assert.InDelta(t, 318.75, b.Thermo.T.Internal[0], 1.e-6)
		assert.InDelta(t, 306.25, b.Thermo.T.Internal[1], 1.e-6)
	}
	{ // Test the heat flux is continuous, 37.5 W/m2 through both solids
		qa := 1. * (a.Thermo.T.Internal[0] - a.Thermo.T.Internal[1]) / 1.
		qb := 3. * (b.Thermo.T.Internal[0] - b.Thermo.T.Internal[1]) / 1.
		assert.InDelta(t, 37.5, qa, 1.e-5)
		assert.InDelta(t, 37.5, qb, 1.e-5)
	}
	assert.False(t, math.IsNaN(a.Thermo.H.Internal[0]))
}

func TestInertSpecieClosure(t *testing.T) {
	s := newTestSolver(t, ductCase)
	comp := s.Fluids[0].Thermo.Comp
	O2, N2 := comp.Y[comp.Index("O2")], comp.Y[comp.Index("N2")]
	O2.Internal[0], O2.Internal[1] = 0.3, 1.25
	updateInertSpecie(comp)
	{ // Test the inert specie takes up the balance
		assert.InDelta(t, 0.7, N2.Internal[0], 1.e-15)
	}
	{ // Test an excess is clipped and the others are not renormalised
		assert.Equal(t, 0., N2.Internal[1])
		assert.Equal(t, 1.25, O2.Internal[1]+N2.Internal[1])
	}
	{ // Test an inactive specie is left out of the balance
		comp.Species[comp.Index("O2")].Inactive = true
		updateInertSpecie(comp)
		assert.Equal(t, 1., N2.Internal[0])
		assert.Equal(t, 0.3, O2.Internal[0])
	}
}

func TestWriteRestart(t *testing.T) {
	dir := t.TempDir()
	{ // Test written fields are read back at the start time
		cp := &InputParameters.CaseParameters{}
		require.NoError(t, cp.Parse([]byte(twoSolidsCase)))
		s, err := NewSolver(cp, dir, io.Discard)
		require.NoError(t, err)
		s.Solids[0].Thermo.T.Internal[0] = 390
		require.NoError(t, s.Write())
		s, err = NewSolver(cp, dir, io.Discard)
		require.NoError(t, err)
		assert.Equal(t, 390., s.Solids[0].Thermo.T.Internal[0])
		assert.Equal(t, 350., s.Solids[0].Thermo.T.Internal[1])
	}
	{ // Test the initial mass and the flux of a fluid region survive a restart
		cp := &InputParameters.CaseParameters{}
		require.NoError(t, cp.Parse([]byte(closedBoxCase)))
		s, err := NewSolver(cp, dir, io.Discard)
		require.NoError(t, err)
		assert.True(t, s.Fluids[0].initialState)
		s.Fluids[0].InitialMass = 1.5
		require.NoError(t, s.Write())
		s, err = NewSolver(cp, dir, io.Discard)
		require.NoError(t, err)
		assert.Equal(t, 1.5, s.Fluids[0].InitialMass)
		assert.False(t, s.Fluids[0].initialState)
	}
}
