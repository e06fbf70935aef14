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

package gamepad

import (
	"fmt"
	"sort"
	"time"

	"github.com/facebook/ptzrig/input"
)

// buttonNames maps config names to snapshot button bits
var buttonNames = map[string]uint32{
	"A":      input.MaskA,
	"B":      input.MaskB,
	"X":      input.MaskX,
	"Y":      input.MaskY,
	"L1":     input.MaskShoulderL,
	"R1":     input.MaskShoulderR,
	"START":  input.MaskStart,
	"L3":     input.MaskThumbL,
	"R3":     input.MaskThumbR,
	"IGNORE": 0,
}

// ButtonNames lists the names accepted in the buttons map
func ButtonNames() []string {
	names := make([]string, 0, len(buttonNames))
	for n := range buttonNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// AxisMapping tells which joystick axis number feeds which snapshot field
type AxisMapping struct {
	LeftX        uint8 `yaml:"left_x"`
	LeftY        uint8 `yaml:"left_y"`
	RightX       uint8 `yaml:"right_x"`
	RightY       uint8 `yaml:"right_y"`
	TriggerLeft  uint8 `yaml:"trigger_left"`
	TriggerRight uint8 `yaml:"trigger_right"`
}

func (m *AxisMapping) numbers() []uint8 {
	return []uint8{m.LeftX, m.LeftY, m.RightX, m.RightY, m.TriggerLeft, m.TriggerRight}
}

// Config of the joystick transport
type Config struct {
	Device         string           `yaml:"device"`
	ReopenInterval time.Duration    `yaml:"reopen_interval"`
	Axes           AxisMapping      `yaml:"axes"`
	Buttons        map[uint8]string `yaml:"buttons"` // joystick button number -> button name
}

// DefaultConfig returns Config initialized with default values.
// The mapping matches the xpad driver layout.
func DefaultConfig() Config {
	return Config{
		Device:         "/dev/input/js0",
		ReopenInterval: time.Second,
		Axes: AxisMapping{
			LeftX:        0,
			LeftY:        1,
			TriggerLeft:  2,
			RightX:       3,
			RightY:       4,
			TriggerRight: 5,
		},
		Buttons: map[uint8]string{
			0:  "A",
			1:  "B",
			2:  "X",
			3:  "Y",
			4:  "L1",
			5:  "R1",
			7:  "START",
			9:  "L3",
			10: "R3",
		},
	}
}

// Validate Config is sane
func (c *Config) Validate() error {
	if c.Device == "" {
		return fmt.Errorf("device must be set")
	}
	if c.ReopenInterval <= 0 {
		return fmt.Errorf("reopen_interval must be greater than zero")
	}
	seen := map[uint8]bool{}
	for _, n := range c.Axes.numbers() {
		if seen[n] {
			return fmt.Errorf("axis %d is mapped more than once", n)
		}
		seen[n] = true
	}
	for n, name := range c.Buttons {
		if _, ok := buttonNames[name]; !ok {
			return fmt.Errorf("button %d: unknown name %q, must be one of %v", n, name, ButtonNames())
		}
	}
	return nil
}

func (c *Config) buttonMasks() map[uint8]uint32 {
	masks := make(map[uint8]uint32, len(c.Buttons))
	for n, name := range c.Buttons {
		masks[n] = buttonNames[name]
	}
	return masks
}
