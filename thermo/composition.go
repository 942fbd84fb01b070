package thermo

import (
	"fmt"

	"github.com/notargets/gofv/fields"
	"github.com/notargets/gofv/mesh"
	"github.com/notargets/gofv/types"
)

// Composition is the set of species mass fractions of a mixture
type Composition struct {
	Species    []SpecieProperties
	Y          []*fields.VolScalarField
	InertIndex int
}

func NewComposition(m *mesh.Mesh, species []SpecieProperties, inert string) (c *Composition, err error) {
	c = &Composition{Species: species, InertIndex: -1}
	names := make([]string, len(species))
	for i, sp := range species {
		names[i] = sp.Name
		if sp.Name == inert {
			c.InertIndex = i
		}
		c.Y = append(c.Y, fields.NewVolScalarField(sp.Name, types.Dimless, m, sp.Y))
	}
	if c.InertIndex < 0 {
		return nil, fmt.Errorf("inert specie %q not found in available species %v", inert, names)
	}
	return
}

func (c *Composition) NSpecies() int { return len(c.Species) }

func (c *Composition) Active(i int) bool { return !c.Species[i].Inactive }

func (c *Composition) Index(name string) int {
	for i, sp := range c.Species {
		if sp.Name == name {
			return i
		}
	}
	return -1
}

// Hs is the sensible enthalpy of specie i
func (c *Composition) Hs(i int, p, T float64) float64 {
	return c.Species[i].Cp * (T - Tstd)
}

// Cp is the mass fraction weighted heat capacity from the mixture fractions y
func (c *Composition) Cp(y func(i int) float64) (cp float64) {
	for i, sp := range c.Species {
		cp += y(i) * sp.Cp
	}
	return
}

// W is the mixture molecular weight 1/Σ(Y_i/W_i)
func (c *Composition) W(y func(i int) float64) float64 {
	var sum float64
	for i, sp := range c.Species {
		sum += y(i) / sp.W
	}
	if sum <= 0 {
		return c.Species[c.InertIndex].W
	}
	return 1. / sum
}

func (c *Composition) cellY(cell int) func(i int) float64 {
	return func(i int) float64 { return c.Y[i].Internal[cell] }
}

func (c *Composition) faceY(b int) func(i int) float64 {
	return func(i int) float64 { return c.Y[i].Boundary[b] }
}
