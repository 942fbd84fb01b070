//go:build linux

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
	"runtime"

	perf "github.com/hodgesds/perf-utils"
)

// countInstructions runs f and reports the instructions retired by its thread
func countInstructions(f func() error) (err error) {
	var pv *perf.ProfileValue
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	if pv, err = perf.CPUInstructions(f); err != nil {
		return
	}
	fmt.Printf("CPU instructions = %d, enabled %v\n", pv.Value, pv.TimeEnabled)
	return
}
