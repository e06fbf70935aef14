/*
Copyright (c) Facebook, Inc. and its affiliates.

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
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/facebook/ptzrig/input"
)

var (
	curveDeadzoneFlag float64
	curveExpoFlag     float64
	curveStepFlag     int
)

func init() {
	RootCmd.AddCommand(curveCmd)
	defaults := input.DefaultConfig()
	curveCmd.Flags().Float64VarP(&curveDeadzoneFlag, "deadzone", "d", defaults.PanDeadzone, "deadzone")
	curveCmd.Flags().Float64VarP(&curveExpoFlag, "expo", "e", defaults.PanExpo, "expo")
	curveCmd.Flags().IntVarP(&curveStepFlag, "step", "s", 32, "raw stick value step")
}

const barWidth = 40

func bar(v float64) string {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return ""
	}
	return color.GreenString(strings.Repeat("#", int(v*barWidth)))
}

func curveRun(deadzone, expo float64, step int) error {
	if step <= 0 {
		return fmt.Errorf("step must be greater than zero")
	}
	c := input.DefaultConfig()
	c.PanDeadzone = deadzone
	c.PanExpo = expo
	if err := c.Validate(); err != nil {
		return err
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("raw", "normalized", "velocity", "")
	for raw := 0; raw <= input.AxisRange; raw += step {
		v := input.Shape(int16(raw), deadzone, expo)
		out := fmt.Sprintf("%.4f", v)
		if v == 0 {
			out = color.YellowString(out)
		}
		err := table.Append([]string{
			fmt.Sprintf("%d", raw),
			fmt.Sprintf("%.4f", float64(raw)/input.AxisRange),
			out,
			bar(v),
		})
		if err != nil {
			return err
		}
	}
	return table.Render()
}

var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "Print the stick response curve",
	Long:  "Print the stick response curve for a given deadzone and expo, useful when tuning the input config.",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()
		if err := curveRun(curveDeadzoneFlag, curveExpoFlag, curveStepFlag); err != nil {
			log.Fatal(err)
		}
	},
}
