/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gofv/InputParameters"
	"github.com/notargets/gofv/model_problems/MultiRegion"
	"github.com/notargets/gofv/utils"
)

type RunParameters struct {
	CaseFile string
	CaseDir  string // Fields are read from and written below it
	NoWrite  bool
	Profile  string // cpu or mem
	Perf     bool
	Verbose  bool
}

// RunCmd represents the run command
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Solve a multi-region case",
	Long: `
Reads a YAML case file, builds the mesh and regions, and marches the case to
its end time. Fields are written into <caseDir>/<time>/<region>/,

gofv run -I case.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
			cp  *InputParameters.CaseParameters
		)
		rp := &RunParameters{}
		if rp.CaseFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			panic(err)
		}
		rp.CaseDir, _ = cmd.Flags().GetString("caseDir")
		rp.NoWrite, _ = cmd.Flags().GetBool("noWrite")
		rp.Profile, _ = cmd.Flags().GetString("profile")
		rp.Perf, _ = cmd.Flags().GetBool("perf")
		rp.Verbose = viper.GetBool("verbose")
		if cp, err = processInput(rp); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		if err = Run(rp, cp, os.Stdout); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(RunCmd)
	RunCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML case file, see the example command")
	RunCmd.Flags().StringP("caseDir", "C", "", "directory for restart and output fields (default is the directory of the case file)")
	RunCmd.Flags().Bool("noWrite", false, "do not read or write field files")
	RunCmd.Flags().StringP("profile", "p", "", "write a pprof profile into the case directory: cpu or mem")
	RunCmd.Flags().Bool("perf", false, "count the CPU instructions of the run with perf events")
}

/*
processInput reads and validates the case file. Without a case file it
prints the example case and fails.
*/
func processInput(rp *RunParameters) (cp *InputParameters.CaseParameters, err error) {
	var data []byte
	if len(rp.CaseFile) == 0 {
		fmt.Printf("Example File:%s\n", InputParameters.ExampleCase)
		return nil, fmt.Errorf("must supply a case file (-I, --inputConditionsFile) in YAML format")
	}
	if data, err = os.ReadFile(rp.CaseFile); err != nil {
		return
	}
	cp = &InputParameters.CaseParameters{}
	if err = cp.Parse(data); err != nil {
		return nil, fmt.Errorf("%s: %w", rp.CaseFile, err)
	}
	switch {
	case rp.NoWrite:
		rp.CaseDir = ""
	case rp.CaseDir == "":
		rp.CaseDir = filepath.Dir(rp.CaseFile)
	}
	return
}

// Run solves the case, progress goes to w and with Verbose every linear solve is reported
func Run(rp *RunParameters, cp *InputParameters.CaseParameters, w io.Writer) (err error) {
	var (
		s     *MultiRegion.Solver
		start = time.Now()
	)
	switch rp.Profile {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(rp.CaseDir), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(rp.CaseDir), profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown profile %q, use cpu or mem", rp.Profile)
	}
	if rp.Verbose {
		cp.Print()
	}
	if s, err = MultiRegion.NewSolver(cp, rp.CaseDir, w); err != nil {
		return
	}
	s.Control.Verbose = rp.Verbose
	if rp.Perf {
		err = countInstructions(s.Run)
	} else {
		err = s.Run()
	}
	fmt.Fprintf(w, "Total time = %v, %s\n", time.Since(start).Round(time.Millisecond), utils.GetMemUsage())
	return
}
