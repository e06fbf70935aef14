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

/*
Package motion translates command intents into stepper commands.

The actual pulse generation happens in an external motion engine which owns the
authoritative step counters. The Controller issues velocity-jog or absolute
move commands per axis and mirrors positions back after every update.
*/
package motion

import (
	"fmt"
)

//go:generate mockgen -source motion.go -destination mock_motion.go -package motion

// Axis is a handle to a single stepper on a motion engine.
// None of the methods wait for the motor to physically move.
type Axis interface {
	SetDirectionPin(pin uint8) error
	SetEnablePin(pin uint8) error
	SetAutoEnable(enable bool) error
	SetCurrentPosition(pos int32) error
	CurrentPosition() (int32, error)
	SetAcceleration(accel uint32) error
	SetSpeedInHz(speed uint32) error
	RunForward() error
	RunBackward() error
	StopMove() error
	ForceStop() error
	DisableOutputs() error
	MoveTo(pos int32) error
	IsRunning() (bool, error)
}

// Engine hands out axis handles bound to step pins
type Engine interface {
	Attach(stepPin uint8) (Axis, error)
}

// ErrAttach is returned when the engine cannot bind all axes
var ErrAttach = fmt.Errorf("failed to attach one or more steppers")

// Positions are step counts of every axis
type Positions struct {
	Pan  int32
	Tilt int32
	Zoom int32
}

func (p Positions) String() string {
	return fmt.Sprintf("pan=%d tilt=%d zoom=%d", p.Pan, p.Tilt, p.Zoom)
}

// Pins of a single stepper driver
type Pins struct {
	Step   uint8 `yaml:"step"`
	Dir    uint8 `yaml:"dir"`
	Enable uint8 `yaml:"enable"`
}

// AxisConfig describes limits and wiring of a single axis
type AxisConfig struct {
	Pins         Pins   `yaml:"pins"`
	MaxSpeedHz   uint32 `yaml:"max_speed_hz"`
	Acceleration uint32 `yaml:"acceleration"` // steps/s^2
}

// Validate AxisConfig is sane
func (c *AxisConfig) Validate() error {
	if c.MaxSpeedHz < MinSpeedHz {
		return fmt.Errorf("max_speed_hz must be at least %d", MinSpeedHz)
	}
	if c.Acceleration == 0 {
		return fmt.Errorf("acceleration must be greater than zero")
	}
	return nil
}

// Config holds all three axes
type Config struct {
	Pan  AxisConfig `yaml:"pan"`
	Tilt AxisConfig `yaml:"tilt"`
	Zoom AxisConfig `yaml:"zoom"`
}

// DefaultConfig returns Config initialized with default values
func DefaultConfig() Config {
	return Config{
		Pan: AxisConfig{
			Pins:         Pins{Step: 25, Dir: 26, Enable: 27},
			MaxSpeedHz:   6000,
			Acceleration: 10000,
		},
		Tilt: AxisConfig{
			Pins:         Pins{Step: 32, Dir: 33, Enable: 14},
			MaxSpeedHz:   6000,
			Acceleration: 10000,
		},
		Zoom: AxisConfig{
			Pins:         Pins{Step: 18, Dir: 19, Enable: 21},
			MaxSpeedHz:   4000,
			Acceleration: 5000,
		},
	}
}

// Validate Config is sane
func (c *Config) Validate() error {
	if err := c.Pan.Validate(); err != nil {
		return fmt.Errorf("invalid pan config: %w", err)
	}
	if err := c.Tilt.Validate(); err != nil {
		return fmt.Errorf("invalid tilt config: %w", err)
	}
	if err := c.Zoom.Validate(); err != nil {
		return fmt.Errorf("invalid zoom config: %w", err)
	}
	if c.Pan.Pins.Step == c.Tilt.Pins.Step || c.Pan.Pins.Step == c.Zoom.Pins.Step || c.Tilt.Pins.Step == c.Zoom.Pins.Step {
		return fmt.Errorf("step pins must be distinct")
	}
	return nil
}
