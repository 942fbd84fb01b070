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

	"github.com/spf13/cobra"

	"github.com/notargets/gofv/InputParameters"
)

// ExampleCmd prints an annotated case file
var ExampleCmd = &cobra.Command{
	Use:   "example",
	Short: "Print an example case file",
	Long: `
Prints a two region case, air over a heated steel plate, that can be used as
a starting point for a new case,

gofv example > case.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(InputParameters.ExampleCase)
	},
}

func init() {
	rootCmd.AddCommand(ExampleCmd)
}
