package MultiRegion

import (
	"fmt"

	"github.com/notargets/gofv/fields"
	"github.com/notargets/gofv/mesh"
	"github.com/notargets/gofv/types"
)

/*
interfaceSide is what a region shows its neighbour of one interface patch:
the temperature of the cells next to the patch and the conductance
kappa*deltaCoeff of the half cell between cell centre and face. It is a
copy, the neighbour never sees a region mid-update.
*/
type interfaceSide struct {
	T, KDelta []float64
}

// thermalRegion is a region that takes part in the conjugate heat transfer
type thermalRegion interface {
	regionName() string
	regionMesh() *mesh.Mesh
	temperature() *fields.VolScalarField
	interfaceSide(pi int) interfaceSide
	correctThermo()
}

func (fr *FluidRegion) regionName() string                  { return fr.Name }
func (fr *FluidRegion) regionMesh() *mesh.Mesh              { return fr.Mesh }
func (fr *FluidRegion) temperature() *fields.VolScalarField { return fr.Thermo.T }
func (fr *FluidRegion) correctThermo()                      { fr.Thermo.Correct() }

func (sr *SolidRegion) regionName() string                  { return sr.Name }
func (sr *SolidRegion) regionMesh() *mesh.Mesh              { return sr.Mesh }
func (sr *SolidRegion) temperature() *fields.VolScalarField { return sr.Thermo.T }
func (sr *SolidRegion) correctThermo()                      { sr.Thermo.Correct() }

// interfaceSide of a fluid uses the effective conductivity alphaEff Cp, laminar plus turbulent
func (fr *FluidRegion) interfaceSide(pi int) (s interfaceSide) {
	var (
		m        = fr.Mesh
		p        = m.Patches[pi]
		T        = fr.Thermo.T
		alphaEff = fr.Turbulence.EffectiveDiffusivity(fr.Thermo.Alpha, fr.Rho)
		cp       = fr.Thermo.Cp()
	)
	s = interfaceSide{T: make([]float64, p.Size), KDelta: make([]float64, p.Size)}
	for i := 0; i < p.Size; i++ {
		f := p.Start + i
		c := m.Owner[f]
		s.T[i] = T.Internal[c]
		s.KDelta[i] = alphaEff.Internal[c] * cp[c] * m.DeltaCoeffs[f]
	}
	return
}

// interfaceSide of a solid uses the conductivity along the face normal
func (sr *SolidRegion) interfaceSide(pi int) (s interfaceSide) {
	var (
		m = sr.Mesh
		p = m.Patches[pi]
		T = sr.Thermo.T
	)
	s = interfaceSide{T: make([]float64, p.Size), KDelta: make([]float64, p.Size)}
	for i := 0; i < p.Size; i++ {
		f := p.Start + i
		c := m.Owner[f]
		n := m.Sf[f].Scale(1. / m.MagSf[f])
		s.T[i] = T.Internal[c]
		s.KDelta[i] = sr.Thermo.KappaNormal(c, n) * m.DeltaCoeffs[f]
	}
	return
}

/*
updateInterfaces sets the temperature of each interface patch of r to the
value that makes the conductive heat flux continuous,
	Tb = (kδ TP + kδN TN) / (kδ + kδN)
using the current state of the neighbouring regions, then updates the
boundary enthalpy of r from it.
*/
func updateInterfaces(r thermalRegion, regions map[string]thermalRegion) (err error) {
	var (
		m       = r.regionMesh()
		T       = r.temperature()
		nInt    = m.NInternalFaces
		updated bool
	)
	for pi, p := range m.Patches {
		if p.Type != types.PT_Interface || T.BoundaryKind(p.Start-nInt) != types.BC_Coupled {
			continue
		}
		nbr, ok := regions[p.NeighbourRegion]
		if !ok {
			return fmt.Errorf("region %s, patch %s: neighbour region %s not found",
				r.regionName(), p.Name, p.NeighbourRegion)
		}
		var npi int
		if npi, err = nbr.regionMesh().PatchIndex(p.NeighbourPatch); err != nil {
			return fmt.Errorf("region %s, patch %s: %w", r.regionName(), p.Name, err)
		}
		var (
			own   = r.interfaceSide(pi)
			other = nbr.interfaceSide(npi)
		)
		if len(other.T) != p.Size {
			return fmt.Errorf("region %s, patch %s has %d faces, neighbour patch %s has %d",
				r.regionName(), p.Name, p.Size, p.NeighbourPatch, len(other.T))
		}
		for i := 0; i < p.Size; i++ {
			T.Boundary[p.Start-nInt+i] = (own.KDelta[i]*own.T[i] + other.KDelta[i]*other.T[i]) /
				(own.KDelta[i] + other.KDelta[i])
		}
		updated = true
	}
	if updated {
		r.correctThermo()
	}
	return
}
