package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofv/InputParameters"
	"github.com/notargets/gofv/model_problems/MultiRegion"
)

func TestProcessInput(t *testing.T) {
	dir := t.TempDir()
	caseFile := filepath.Join(dir, "case.yaml")
	require.NoError(t, os.WriteFile(caseFile, []byte(InputParameters.ExampleCase), 0644))
	{ // Test the case directory defaults to the directory of the case file
		rp := &RunParameters{CaseFile: caseFile}
		cp, err := processInput(rp)
		require.NoError(t, err)
		assert.Equal(t, dir, rp.CaseDir)
		assert.Equal(t, []string{"air", "plate"}, cp.RegionNames())
		assert.False(t, cp.Transient())
		m, subs, err := MultiRegion.BuildMesh(cp, rp.CaseDir, false)
		require.NoError(t, err)
		assert.Equal(t, 160, m.NCells)
		require.Len(t, subs, 2)
		assert.Equal(t, 120, subs[0].NCells)
		assert.Equal(t, 40, subs[1].NCells)
	}
	{ // Test file I/O can be turned off
		rp := &RunParameters{CaseFile: caseFile, CaseDir: dir, NoWrite: true}
		_, err := processInput(rp)
		require.NoError(t, err)
		assert.Equal(t, "", rp.CaseDir)
	}
	{ // Test a missing case file is an error
		_, err := processInput(&RunParameters{})
		assert.Error(t, err)
		_, err = processInput(&RunParameters{CaseFile: filepath.Join(dir, "none.yaml")})
		assert.Error(t, err)
	}
	{ // Test an unknown profile is rejected before solving
		err := Run(&RunParameters{Profile: "gpu"}, &InputParameters.CaseParameters{}, io.Discard)
		assert.Error(t, err)
	}
}

const cavityCase = `
Time: {endTime: 2, deltaT: 1}
Mesh:
  block: {lengths: [1, 1, 0.1], cells: [4, 4, 1], twoD: true, patches: {ymax: {name: lid, type: wall}}}
Regions:
  - name: cavity
    type: fluid
    fluid: {equationOfState: rhoConst, rho: 1, mu: 0.01}
    solution:
      solveEnergy: false
      solvers:
        "(U|p_rgh)": {solver: direct}
    BCs:
      U:
        lid: {type: fixedValue, vector: [1, 0, 0]}
`

func TestRunVerbose(t *testing.T) {
	dir := t.TempDir()
	caseFile := filepath.Join(dir, "cavity.yaml")
	require.NoError(t, os.WriteFile(caseFile, []byte(cavityCase), 0644))
	run := func(verbose bool) string {
		rp := &RunParameters{CaseFile: caseFile, NoWrite: true, Verbose: verbose}
		cp, err := processInput(rp)
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, Run(rp, cp, &buf))
		return buf.String()
	}
	{ // Test every linear solve is reported with the verbose switch
		out := run(true)
		assert.Contains(t, out, "Solving for Ux, Initial residual = ")
		assert.Contains(t, out, "Solving for p_rgh, Initial residual = ")
		assert.Contains(t, out, "Time = 2")
	}
	{ // Test the solves are quiet without it
		out := run(false)
		assert.NotContains(t, out, "Solving for")
		assert.Contains(t, out, "Total time = ")
	}
}
