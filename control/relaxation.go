package control

import (
	"fmt"
	"regexp"

	"github.com/notargets/gofv/linsolve"
)

// RelaxationFactors map field and equation names, or patterns, to factors
type RelaxationFactors struct {
	Fields    map[string]float64 `json:"fields,omitempty"`
	Equations map[string]float64 `json:"equations,omitempty"`
}

func (rf RelaxationFactors) Validate() (err error) {
	for _, table := range []map[string]float64{rf.Fields, rf.Equations} {
		for key, alpha := range table {
			if _, err = regexp.Compile("^(" + key + ")$"); err != nil {
				return fmt.Errorf("relaxation factor entry %q: %w", key, err)
			}
			if alpha <= 0 || alpha > 1 {
				return fmt.Errorf("relaxation factor for %s must lie in (0,1], have %g", key, alpha)
			}
		}
	}
	return
}

/*
factor selects the factor of name. In the final outer iteration only a
"<name>Final" entry applies and the default is no relaxation.
*/
func factor(table map[string]float64, name string, final bool) float64 {
	if final {
		name += "Final"
	}
	if alpha, ok := lookup(table, name); ok {
		return alpha
	}
	return 1
}

func (rf RelaxationFactors) Field(name string, final bool) float64 {
	return factor(rf.Fields, name, final)
}

func (rf RelaxationFactors) Equation(name string, final bool) float64 {
	return factor(rf.Equations, name, final)
}

/*
solverControls selects the linear solver of a field. A missing "<name>Final"
entry falls back to the entry of the field solved to its absolute tolerance.
*/
func solverControls(table map[string]linsolve.Controls, name string, final bool) (c linsolve.Controls) {
	var ok bool
	if final {
		if c, ok = lookup(table, name+"Final"); ok {
			return c.WithDefaults()
		}
	}
	if c, ok = lookup(table, name); !ok {
		c = linsolve.DefaultControls()
	}
	c = c.WithDefaults()
	if final {
		c.RelTol = 0
	}
	return
}
