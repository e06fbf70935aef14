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

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/facebook/ptzrig/rig"
	"github.com/facebook/ptzrig/stats"
)

var statusAddressFlag string

func init() {
	RootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVarP(&statusAddressFlag, "address", "a", fmt.Sprintf("http://localhost:%d", rig.DefaultConfig().MonitoringPort), "rig monitoring endpoint")
}

func statusLine(ok bool, good, bad string) string {
	if ok {
		return fmt.Sprintf("%s %s", okString, good)
	}
	return fmt.Sprintf("%s %s", failString, bad)
}

func statusRun(address string) error {
	counters, err := stats.FetchCounters(address)
	if err != nil {
		return fmt.Errorf("fetching data: %w", err)
	}
	fmt.Println(statusLine(counters[stats.GamepadConnected] == 1, "controller connected", "controller disconnected"))
	fmt.Println(statusLine(counters[stats.SafetyForcedIdle] == 0, "motion enabled", "motion suppressed"))
	if counters[stats.MotionErrors] > 0 {
		fmt.Printf("%s %d motion command errors\n", warnString, counters[stats.MotionErrors])
	}
	if counters[stats.TickOverruns] > 0 {
		fmt.Printf("%s %d tick overruns\n", warnString, counters[stats.TickOverruns])
	}
	fmt.Printf("position: pan=%d tilt=%d zoom=%d\n", counters[stats.PositionPan], counters[stats.PositionTilt], counters[stats.PositionZoom])
	fmt.Printf("preset slot: %d (saves=%d recalls=%d failures=%d)\n",
		counters[stats.PresetSlot], counters[stats.PresetSaves], counters[stats.PresetRecalls], counters[stats.PresetFailures])
	fmt.Printf("tick: mean=%dus stddev=%dus max=%dus\n",
		counters[stats.TickDurationMean], counters[stats.TickDurationDev], counters[stats.TickDurationMax])
	return nil
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the state of a running rig",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()
		if err := statusRun(statusAddressFlag); err != nil {
			log.Fatal(err)
		}
	},
}
