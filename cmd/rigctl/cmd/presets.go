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
	"strconv"

	"github.com/davecgh/go-spew/spew"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/facebook/ptzrig/preset"
	"github.com/facebook/ptzrig/rig"
)

var (
	presetsFileFlag string
	presetsRawFlag  bool
)

func init() {
	RootCmd.AddCommand(presetsCmd)
	presetsCmd.PersistentFlags().StringVarP(&presetsFileFlag, "file", "f", rig.DefaultConfig().PresetFile, "preset storage file")
	presetsCmd.AddCommand(presetsListCmd)
	presetsListCmd.Flags().BoolVar(&presetsRawFlag, "raw", false, "dump raw records")
	presetsCmd.AddCommand(presetsClearCmd)
}

func openPresets(path string) (*preset.Store, *preset.FileStore, error) {
	fs := preset.NewFileStore(path)
	s := preset.New(fs, log.StandardLogger())
	if err := s.Begin(); err != nil {
		return nil, nil, err
	}
	return s, fs, nil
}

func statusString(s preset.Status) string {
	switch s {
	case preset.StatusValid:
		return okString
	case preset.StatusEmpty:
		return warnString
	}
	return failString
}

func presetsListRun(path string, raw bool) error {
	s, fs, err := openPresets(path)
	if err != nil {
		return err
	}
	entries, err := s.Entries()
	if err != nil {
		return err
	}
	if raw {
		for _, e := range entries {
			b, err := fs.Read(e.Slot*preset.RecordSize, preset.RecordSize)
			if err != nil {
				return err
			}
			r := &preset.Record{}
			if err := r.UnmarshalBinary(b); err != nil {
				return err
			}
			fmt.Printf("slot %d: % x\n", e.Slot, b)
			spew.Dump(r)
		}
		return nil
	}
	fmt.Printf("presets in %s\n", fs.Path())
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("slot", "status", "pan", "tilt", "zoom")
	for _, e := range entries {
		val := []string{strconv.Itoa(e.Slot), fmt.Sprintf("%s %s", statusString(e.Status), e.Status)}
		if e.Status == preset.StatusValid {
			val = append(val,
				strconv.Itoa(int(e.Positions.Pan)),
				strconv.Itoa(int(e.Positions.Tilt)),
				strconv.Itoa(int(e.Positions.Zoom)),
			)
		} else {
			val = append(val, "", "", "")
		}
		if err := table.Append(val); err != nil {
			return err
		}
	}
	return table.Render()
}

func presetsClearRun(path string, args []string) error {
	s, _, err := openPresets(path)
	if err != nil {
		return err
	}
	slots := []int{}
	for _, a := range args {
		slot, err := strconv.Atoi(a)
		if err != nil {
			return fmt.Errorf("parsing slot %q: %w", a, err)
		}
		slots = append(slots, slot)
	}
	if len(slots) == 0 {
		for i := 0; i < preset.MaxSlots; i++ {
			slots = append(slots, i)
		}
	}
	for _, slot := range slots {
		if err := s.Clear(slot); err != nil {
			return err
		}
	}
	return nil
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "Inspect and manage stored presets",
}

var presetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print all preset slots",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()
		if err := presetsListRun(presetsFileFlag, presetsRawFlag); err != nil {
			log.Fatal(err)
		}
	},
}

var presetsClearCmd = &cobra.Command{
	Use:   "clear [slot...]",
	Short: "Wipe preset slots, all of them if none given",
	Run: func(_ *cobra.Command, args []string) {
		ConfigureVerbosity()
		if err := presetsClearRun(presetsFileFlag, args); err != nil {
			log.Fatal(err)
		}
	},
}
