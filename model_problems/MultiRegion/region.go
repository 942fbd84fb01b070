package MultiRegion

import (
	"fmt"
	"io"

	"github.com/notargets/gofv/InputParameters"
	"github.com/notargets/gofv/combustion"
	"github.com/notargets/gofv/fields"
	"github.com/notargets/gofv/fvc"
	"github.com/notargets/gofv/fvm"
	"github.com/notargets/gofv/fvoptions"
	"github.com/notargets/gofv/mesh"
	"github.com/notargets/gofv/radiation"
	"github.com/notargets/gofv/thermo"
	"github.com/notargets/gofv/turbulence"
	"github.com/notargets/gofv/types"
)

// regionBase is what fluid and solid regions share
type regionBase struct {
	Name      string
	Index     int // Position in the solution control, stable for the run
	Mesh      *mesh.Mesh
	Fields    *fields.Registry
	Params    *InputParameters.RegionParameters
	FvOptions *fvoptions.List
	Radiation radiation.Model
}

/*
FluidRegion holds the state of one fluid region between outer iterations.
The momentum matrix and the inverse diagonals are retained from the
momentum predictor for the pressure correction.
*/
type FluidRegion struct {
	regionBase
	Thermo     *thermo.Fluid
	Turbulence turbulence.Closure
	Combustion combustion.Model

	// Solution fields, Rho is the solver density relaxed towards the thermo density
	U                    *fields.VolVectorField
	P_rgh                *fields.VolScalarField
	Rho                  *fields.VolScalarField
	Gh, K                *fields.VolScalarField
	HydroStaticPressure  *fields.VolScalarField
	HydroStaticDensity   *fields.VolScalarField
	GravityForce         *fields.VolVectorField
	GradP_rgh            *fields.VolVectorField
	Phi, Rhof, Ghf       *fields.SurfaceScalarField
	GravityFluxPotential *fields.SurfaceScalarField
	GravityFlux          *fields.SurfaceScalarField

	UEqn            *fvm.VectorMatrix
	RAU, RAtU, DrAU *fields.VolScalarField
	RhorAUf         *fields.SurfaceScalarField

	POperating        float64
	g                 types.Vec3
	InitialMass       float64
	PCorrMax          float64 // Bound on the pressure change of one correction, fixed at start
	cumulativeContErr float64
	initialState      bool // No flux was read at the start time
	Qdot              []float64
}

type SolidRegion struct {
	regionBase
	Thermo *thermo.Solid
}

var (
	fluidSchema = fields.Schema{
		{Name: "U", Kind: fields.KindVolVector, Dims: types.DimVelocity},
		{Name: "p_rgh", Kind: fields.KindVolScalar, Dims: types.DimPressure},
		{Name: "p", Kind: fields.KindVolScalar, Dims: types.DimPressure},
		{Name: "T", Kind: fields.KindVolScalar, Dims: types.DimTemperature},
		{Name: "h", Kind: fields.KindVolScalar, Dims: types.DimSpecificEnergy},
		{Name: "rho", Kind: fields.KindVolScalar, Dims: types.DimDensity},
		{Name: "phi", Kind: fields.KindSurfaceScalar, Dims: types.DimMassFlux},
		{Name: "rhof", Kind: fields.KindSurfaceScalar, Dims: types.DimDensity},
		{Name: "gh", Kind: fields.KindVolScalar, Dims: types.DimSpecificEnergy},
		{Name: "ghf", Kind: fields.KindSurfaceScalar, Dims: types.DimSpecificEnergy},
		{Name: "K", Kind: fields.KindVolScalar, Dims: types.DimSpecificEnergy},
		{Name: "nut", Kind: fields.KindVolScalar, Dims: types.DimKinematicViscosity, Optional: true},
	}
	solidSchema = fields.Schema{
		{Name: "T", Kind: fields.KindVolScalar, Dims: types.DimTemperature},
		{Name: "h", Kind: fields.KindVolScalar, Dims: types.DimSpecificEnergy},
		{Name: "rho", Kind: fields.KindVolScalar, Dims: types.DimDensity},
	}
)

/*
patchSet is the set of patch names of the undivided mesh. A condition on a
patch that the region does not own is skipped, one on a patch nobody owns is
a configuration error.
*/
type patchSet map[string]bool

func newPatchSet(m *mesh.Mesh, subs []*mesh.Mesh) (ps patchSet) {
	ps = make(patchSet)
	for _, p := range m.Patches {
		ps[p.Name] = true
	}
	for _, sm := range subs {
		for _, p := range sm.Patches {
			ps[p.Name] = true
		}
	}
	return
}

func (ps patchSet) lookup(m *mesh.Mesh, field, patch string) (pi int, skip bool, err error) {
	if pi, err = m.PatchIndex(patch); err == nil {
		return
	}
	if ps[patch] {
		return -1, true, nil
	}
	return -1, false, fmt.Errorf("field %s: boundary condition on unknown patch %s", field, patch)
}

func (ps patchSet) applyScalarBCs(f *fields.VolScalarField, bcs map[string]InputParameters.BCParameters) (err error) {
	for patch, bc := range bcs {
		var (
			pi   int
			skip bool
			kind types.BCKIND
		)
		if pi, skip, err = ps.lookup(f.Mesh, f.Name, patch); err != nil {
			return
		} else if skip {
			continue
		}
		if kind, err = types.NewBCKind(bc.Type); err != nil {
			return fmt.Errorf("field %s, patch %s: %w", f.Name, patch, err)
		}
		if err = f.SetBC(pi, fields.ScalarBC{Kind: kind, Value: bc.Value, Gradient: bc.Gradient}); err != nil {
			return
		}
	}
	f.CorrectBoundaryConditions()
	return
}

func (ps patchSet) applyVectorBCs(f *fields.VolVectorField, bcs map[string]InputParameters.BCParameters) (err error) {
	for patch, bc := range bcs {
		var (
			pi   int
			skip bool
			kind types.BCKIND
		)
		if pi, skip, err = ps.lookup(f.Mesh, f.Name, patch); err != nil {
			return
		} else if skip {
			continue
		}
		if kind, err = types.NewBCKind(bc.Type); err != nil {
			return fmt.Errorf("field %s, patch %s: %w", f.Name, patch, err)
		}
		if err = f.SetBC(pi, fields.VectorBC{Kind: kind, Value: bc.Vector}); err != nil {
			return
		}
	}
	f.CorrectBoundaryConditions()
	return
}

// setWallDefaults makes walls and interfaces of a fluid no-slip and impermeable
func setWallDefaults(U *fields.VolVectorField, p_rgh *fields.VolScalarField) {
	for pi, p := range U.Mesh.Patches {
		if p.Type != types.PT_Wall && p.Type != types.PT_Interface {
			continue
		}
		_ = U.SetBC(pi, fields.VectorBC{Kind: types.BC_FixedValue})
		_ = p_rgh.SetBC(pi, fields.ScalarBC{Kind: types.BC_FixedFluxPressure})
	}
}

func newFluidRegion(index int, rp *InputParameters.RegionParameters, m *mesh.Mesh, ps patchSet,
	g types.Vec3, restart *restartReader) (fr *FluidRegion, err error) {
	var (
		bcs = rp.BCs
	)
	fr = &FluidRegion{
		regionBase: regionBase{
			Name:   rp.Name,
			Index:  index,
			Mesh:   m,
			Fields: fields.NewRegistry(rp.Name),
			Params: rp,
		},
		POperating: rp.POperating,
		g:          g,
	}
	fr.U = fields.NewVolVectorField("U", types.DimVelocity, m, rp.Initial.U)
	fr.P_rgh = fields.NewVolScalarField("p_rgh", types.DimPressure, m, rp.Initial.P_rgh)
	T := fields.NewVolScalarField("T", types.DimTemperature, m, rp.Initial.T)
	setWallDefaults(fr.U, fr.P_rgh)
	if err = ps.applyVectorBCs(fr.U, bcs["U"]); err != nil {
		return
	}
	if err = ps.applyScalarBCs(fr.P_rgh, bcs["p_rgh"]); err != nil {
		return
	}
	if err = ps.applyScalarBCs(T, bcs["T"]); err != nil {
		return
	}
	if err = restart.readVector(fr.U); err != nil {
		return
	}
	if err = restart.readScalar(fr.P_rgh); err != nil {
		return
	}
	if err = restart.readScalar(T); err != nil {
		return
	}

	fr.Gh = fields.NewCalculatedScalarField("gh", types.DimSpecificEnergy, m, 0)
	fr.Ghf = fields.NewSurfaceScalarField("ghf", types.DimSpecificEnergy, m, 0)
	for c, x := range m.C {
		fr.Gh.Internal[c] = g.Dot(x)
	}
	for f, x := range m.Cf {
		fr.Ghf.Values[f] = g.Dot(x)
		if f >= m.NInternalFaces {
			fr.Gh.Boundary[f-m.NInternalFaces] = g.Dot(x)
		}
	}

	p := fields.NewCalculatedScalarField("p", types.DimPressure, m, 0)
	fr.absolutePressure(p, nil)
	if fr.Thermo, err = thermo.NewFluid(*rp.Fluid, p, T); err != nil {
		return nil, fmt.Errorf("region %s: %w", rp.Name, err)
	}
	if comp := fr.Thermo.Comp; comp != nil {
		for _, Y := range comp.Y {
			for pi, pt := range m.Patches {
				if pt.Type == types.PT_Interface {
					_ = Y.SetBC(pi, fields.ScalarBC{Kind: types.BC_ZeroGradient})
				}
			}
			if err = ps.applyScalarBCs(Y, bcs[Y.Name]); err != nil {
				return
			}
			if err = restart.readScalar(Y); err != nil {
				return
			}
		}
		fr.Thermo.UpdateH()
	}
	fr.Rho = fr.Thermo.Rho.Clone("rho")
	fr.HydroStaticPressure = fields.NewCalculatedScalarField("hydroStaticPressure", types.DimPressure, m, 0)
	fr.updateHydroStaticPressure()
	// Absolute pressure including the hydrostatic part, then the consistent density
	fr.absolutePressure(p, fr.HydroStaticPressure)
	fr.PCorrMax = rp.Solution.PCorrLimit * p.Max()
	fr.Thermo.Correct()
	fr.Rho.Assign(fr.Thermo.Rho)
	fr.updateHydroStaticPressure()
	fr.Rhof = fvc.Interpolate(fr.Rho)

	fr.HydroStaticDensity = fields.NewCalculatedScalarField("hydroStaticDensity", types.DimDensity, m, 0)
	fr.GravityForce = fields.NewCalculatedVectorField("gravityForce", types.DimPressure.Div(types.DimLength), m, types.Vec3{})
	fr.GravityFluxPotential = fields.NewSurfaceScalarField("gravityFluxPotential",
		types.DimMassFlux.Div(types.DimTime), m, 0)
	fr.GravityFlux = fields.NewSurfaceScalarField("gravityFlux", types.DimMassFlux, m, 0)
	fr.updateGravity()

	fr.K = fields.NewCalculatedScalarField("K", types.DimSpecificEnergy, m, 0)
	fr.updateK()

	fr.Phi = fr.compressibleInitPhi()
	var found bool
	if found, err = restart.readSurface(fr.Phi); err != nil {
		return
	}
	fr.initialState = !found

	if fr.Turbulence, err = turbulence.New(rp.Turbulence, fr.U, fr.Thermo.Mu); err != nil {
		return nil, fmt.Errorf("region %s: %w", rp.Name, err)
	}
	if fr.Combustion, err = combustion.New(rp.Combustion, fr.Thermo.Comp, fr.Rho, T); err != nil {
		return nil, fmt.Errorf("region %s: %w", rp.Name, err)
	}
	fr.Qdot = fr.Combustion.Qdot()
	if fr.Radiation, err = radiation.New(rp.Radiation, T); err != nil {
		return nil, fmt.Errorf("region %s: %w", rp.Name, err)
	}
	if fr.FvOptions, err = fvoptions.New(m, rp.FvOptions); err != nil {
		return nil, fmt.Errorf("region %s: %w", rp.Name, err)
	}
	fr.FvOptions.Cp = fr.Thermo.Cp

	fr.Fields.MustAdd(fr.U, fr.P_rgh, p, T, fr.Thermo.H, fr.Rho, fr.Phi, fr.Rhof, fr.Gh, fr.Ghf, fr.K,
		fr.Turbulence.Nut())
	if comp := fr.Thermo.Comp; comp != nil {
		for _, Y := range comp.Y {
			if err = fr.Fields.Add(Y); err != nil {
				return
			}
		}
	}
	if err = fr.Fields.Validate(fluidSchema); err != nil {
		return
	}
	fr.InitialMass = fvc.DomainIntegrate(m, fr.Rho.Internal)
	if m0, ok, err := restart.readInitialMass(); err != nil {
		return nil, err
	} else if ok {
		fr.InitialMass = m0
	}
	return
}

/*
absolutePressure sets p = p_rgh + hsp + pOperating on the interior and the
boundary, a nil hsp is zero.
*/
func (fr *FluidRegion) absolutePressure(p, hsp *fields.VolScalarField) {
	for c, v := range fr.P_rgh.Internal {
		p.Internal[c] = v + fr.POperating
		if hsp != nil {
			p.Internal[c] += hsp.Internal[c]
		}
	}
	for b, v := range fr.P_rgh.Boundary {
		p.Boundary[b] = v + fr.POperating
		if hsp != nil {
			p.Boundary[b] += hsp.Boundary[b]
		}
	}
}

func (fr *FluidRegion) updateHydroStaticPressure() {
	for c, rho := range fr.Rho.Internal {
		fr.HydroStaticPressure.Internal[c] = rho * fr.Gh.Internal[c]
	}
	for b, rho := range fr.Rho.Boundary {
		fr.HydroStaticPressure.Boundary[b] = rho * fr.Gh.Boundary[b]
	}
}

/*
updateGravity evaluates the buoyancy terms from the current density,
gravityForce = gh grad(rho) and gravityFluxPotential = ghf snGrad(rho) |Sf|.
*/
func (fr *FluidRegion) updateGravity() {
	if fr.g.MagSqr() == 0 {
		return
	}
	var (
		m         = fr.Mesh
		gradRho   = fvc.Grad(fr.Rho)
		snGradRho = fvc.SnGrad(fr.Rho, false)
	)
	for c, gr := range gradRho.Internal {
		fr.GravityForce.Internal[c] = gr.Scale(fr.Gh.Internal[c])
	}
	for b, gr := range gradRho.Boundary {
		fr.GravityForce.Boundary[b] = gr.Scale(fr.Gh.Boundary[b])
	}
	for f, sg := range snGradRho.Values {
		fr.GravityFluxPotential.Values[f] = fr.Ghf.Values[f] * sg * m.MagSf[f]
	}
}

func (fr *FluidRegion) updateK() {
	for c, u := range fr.U.Internal {
		fr.K.Internal[c] = 0.5 * u.MagSqr()
	}
	for b, u := range fr.U.Boundary {
		fr.K.Boundary[b] = 0.5 * u.MagSqr()
	}
}

/*
compressibleInitPhi is the mass flux interpolate(rho U)·Sf. Boundary faces
of fixed value velocity patches carry the patch values, the others the
values of the adjacent cell.
*/
func (fr *FluidRegion) compressibleInitPhi() (phi *fields.SurfaceScalarField) {
	var (
		m     = fr.Mesh
		nInt  = m.NInternalFaces
		rhoU  = make([]types.Vec3, m.NCells)
		rhoUb = make([]types.Vec3, m.NBoundaryFaces())
	)
	for c, u := range fr.U.Internal {
		rhoU[c] = u.Scale(fr.Rho.Internal[c])
	}
	for b := range rhoUb {
		if fixedValue(fr.U.BoundaryKind(b)) {
			rhoUb[b] = fr.U.Boundary[b].Scale(fr.Rho.Boundary[b])
		} else {
			rhoUb[b] = rhoU[m.Owner[b+nInt]]
		}
	}
	rhoUf := fvc.InterpolateVectorValues(m, rhoU, rhoUb)
	phi = fields.NewSurfaceScalarField("phi", types.DimMassFlux, m, 0)
	for f := range phi.Values {
		if f >= nInt && m.EmptyFace[f-nInt] {
			continue
		}
		phi.Values[f] = rhoUf[f].Dot(m.Sf[f])
	}
	return
}

func fixedValue(kind types.BCKIND) bool {
	return kind == types.BC_FixedValue || kind == types.BC_Coupled
}

func newSolidRegion(index int, rp *InputParameters.RegionParameters, m *mesh.Mesh, ps patchSet,
	restart *restartReader) (sr *SolidRegion, err error) {
	sr = &SolidRegion{
		regionBase: regionBase{
			Name:   rp.Name,
			Index:  index,
			Mesh:   m,
			Fields: fields.NewRegistry(rp.Name),
			Params: rp,
		},
	}
	T := fields.NewVolScalarField("T", types.DimTemperature, m, rp.Initial.T)
	if err = ps.applyScalarBCs(T, rp.BCs["T"]); err != nil {
		return
	}
	if err = restart.readScalar(T); err != nil {
		return
	}
	if sr.Thermo, err = thermo.NewSolid(*rp.Solid, T); err != nil {
		return nil, fmt.Errorf("region %s: %w", rp.Name, err)
	}
	sr.Thermo.Rho.Name = "rho"
	if sr.Radiation, err = radiation.New(rp.Radiation, T); err != nil {
		return nil, fmt.Errorf("region %s: %w", rp.Name, err)
	}
	if sr.FvOptions, err = fvoptions.New(m, rp.FvOptions); err != nil {
		return nil, fmt.Errorf("region %s: %w", rp.Name, err)
	}
	cp := rp.Solid.Cp
	sr.FvOptions.Cp = func() []float64 {
		c := make([]float64, m.NCells)
		for i := range c {
			c[i] = cp
		}
		return c
	}
	sr.Fields.MustAdd(T, sr.Thermo.H, sr.Thermo.Rho)
	err = sr.Fields.Validate(solidSchema)
	return
}

func (fr *FluidRegion) String() string {
	return fmt.Sprintf("fluid region %s: %d cells, %s, turbulence %s, radiation %s, combustion %s",
		fr.Name, fr.Mesh.NCells, fr.Thermo, fr.Turbulence.Name(), fr.Radiation.Name(), fr.Combustion.Name())
}

func (sr *SolidRegion) String() string {
	return fmt.Sprintf("solid region %s: %d cells, %s, radiation %s",
		sr.Name, sr.Mesh.NCells, sr.Thermo, sr.Radiation.Name())
}

func printRegions(w io.Writer, fluids []*FluidRegion, solids []*SolidRegion) {
	for _, fr := range fluids {
		fmt.Fprintln(w, fr)
	}
	for _, sr := range solids {
		fmt.Fprintln(w, sr)
	}
}
