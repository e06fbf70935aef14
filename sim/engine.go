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
Package sim is an in-process motion engine for dry runs without a stepper board.

Axes move at their commanded speed against wall clock time. Acceleration is
only used to work out how far a graceful stop coasts.
*/
package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/facebook/ptzrig/motion"
)

// DefaultSpeedHz is used by MoveTo when no speed was set yet
const DefaultSpeedHz = 1000

// Engine hands out simulated axes. It implements motion.Engine.
type Engine struct {
	now  func() time.Time
	axes map[uint8]*Axis
}

// New creates an Engine driven by the wall clock
func New() *Engine {
	return NewWithClock(time.Now)
}

// NewWithClock creates an Engine driven by now
func NewWithClock(now func() time.Time) *Engine {
	return &Engine{now: now, axes: map[uint8]*Axis{}}
}

// Attach implements motion.Engine
func (e *Engine) Attach(stepPin uint8) (motion.Axis, error) {
	if _, ok := e.axes[stepPin]; ok {
		return nil, fmt.Errorf("step pin %d is already attached", stepPin)
	}
	a := &Axis{now: e.now, last: e.now(), speed: DefaultSpeedHz}
	e.axes[stepPin] = a
	return a, nil
}

// Axis returns the axis attached to stepPin, or nil
func (e *Engine) Axis(stepPin uint8) *Axis {
	return e.axes[stepPin]
}

type mode uint8

const (
	modeIdle mode = iota
	modeJog
	modeSeek
)

// Axis is a simulated stepper
type Axis struct {
	now  func() time.Time
	last time.Time

	pos    float64
	target float64
	dir    float64
	mode   mode

	speed      uint32
	accel      uint32
	dirPin     uint8
	enablePin  uint8
	autoEnable bool
	enabled    bool
}

func (a *Axis) advance() {
	now := a.now()
	dt := now.Sub(a.last).Seconds()
	a.last = now
	if dt <= 0 {
		return
	}
	travel := float64(a.speed) * dt
	switch a.mode {
	case modeJog:
		a.pos += a.dir * travel
	case modeSeek:
		d := a.target - a.pos
		if math.Abs(d) <= travel {
			a.pos = a.target
			a.idle()
			return
		}
		a.pos += math.Copysign(travel, d)
	}
}

func (a *Axis) idle() {
	a.mode = modeIdle
	if a.autoEnable {
		a.enabled = false
	}
}

func (a *Axis) start() {
	if a.autoEnable {
		a.enabled = true
	}
}

// SetDirectionPin implements motion.Axis
func (a *Axis) SetDirectionPin(pin uint8) error {
	a.dirPin = pin
	return nil
}

// SetEnablePin implements motion.Axis
func (a *Axis) SetEnablePin(pin uint8) error {
	a.enablePin = pin
	return nil
}

// SetAutoEnable implements motion.Axis
func (a *Axis) SetAutoEnable(enable bool) error {
	a.autoEnable = enable
	return nil
}

// SetCurrentPosition implements motion.Axis
func (a *Axis) SetCurrentPosition(pos int32) error {
	a.advance()
	shift := float64(pos) - a.pos
	a.pos += shift
	a.target += shift
	return nil
}

// CurrentPosition implements motion.Axis
func (a *Axis) CurrentPosition() (int32, error) {
	a.advance()
	return int32(math.Round(a.pos)), nil
}

// SetAcceleration implements motion.Axis
func (a *Axis) SetAcceleration(accel uint32) error {
	if accel == 0 {
		return fmt.Errorf("acceleration must be greater than zero")
	}
	a.advance()
	a.accel = accel
	return nil
}

// SetSpeedInHz implements motion.Axis
func (a *Axis) SetSpeedInHz(speed uint32) error {
	if speed == 0 {
		return fmt.Errorf("speed must be greater than zero")
	}
	a.advance()
	a.speed = speed
	return nil
}

func (a *Axis) run(dir float64) error {
	a.advance()
	a.mode = modeJog
	a.dir = dir
	a.start()
	return nil
}

// RunForward implements motion.Axis
func (a *Axis) RunForward() error { return a.run(1) }

// RunBackward implements motion.Axis
func (a *Axis) RunBackward() error { return a.run(-1) }

// StopMove implements motion.Axis. A jog coasts for speed²/2a steps.
func (a *Axis) StopMove() error {
	a.advance()
	if a.mode != modeJog {
		return nil
	}
	if a.accel == 0 {
		a.idle()
		return nil
	}
	v := float64(a.speed)
	a.target = a.pos + a.dir*v*v/(2*float64(a.accel))
	a.mode = modeSeek
	return nil
}

// ForceStop implements motion.Axis
func (a *Axis) ForceStop() error {
	a.advance()
	a.idle()
	return nil
}

// DisableOutputs implements motion.Axis
func (a *Axis) DisableOutputs() error {
	a.enabled = false
	return nil
}

// MoveTo implements motion.Axis
func (a *Axis) MoveTo(pos int32) error {
	a.advance()
	a.target = float64(pos)
	a.mode = modeSeek
	a.start()
	return nil
}

// IsRunning implements motion.Axis
func (a *Axis) IsRunning() (bool, error) {
	a.advance()
	return a.mode != modeIdle, nil
}

// Enabled reports whether the driver outputs are on
func (a *Axis) Enabled() bool {
	return a.enabled
}

// Speed returns the last commanded speed
func (a *Axis) Speed() uint32 {
	return a.speed
}
