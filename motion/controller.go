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

package motion

import (
	"errors"
	"fmt"
	"io"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/facebook/ptzrig/input"
)

const (
	// MinSpeedHz is the lowest step rate we command, below that the motors stall
	MinSpeedHz = 200

	velocityThreshold = 0.01
)

type axis struct {
	name   string
	handle Axis
	cfg    AxisConfig
	// set by MoveToPreset, cleared once a jog takes over or the move finished
	seeking bool
}

func (a *axis) configure() error {
	if err := a.handle.SetDirectionPin(a.cfg.Pins.Dir); err != nil {
		return err
	}
	if err := a.handle.SetEnablePin(a.cfg.Pins.Enable); err != nil {
		return err
	}
	if err := a.handle.SetAutoEnable(true); err != nil {
		return err
	}
	return a.handle.SetCurrentPosition(0)
}

func (a *axis) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s %s: %w", a.name, op, err)
}

// applyVelocity turns a normalized velocity into a jog command.
// A velocity below the threshold stops a running axis, except while the axis
// is still travelling to a recalled preset: the idle stick would otherwise
// cancel every recall on the next tick. The seek ends once the axis halts or
// the stick moves the axis again.
func (a *axis) applyVelocity(v float64) error {
	magnitude := math.Abs(v)
	if magnitude < velocityThreshold {
		running, err := a.handle.IsRunning()
		if err != nil {
			// unknown state, stopping is the safe side
			return a.wrap("stop", errors.Join(err, a.handle.StopMove()))
		}
		if a.seeking {
			if running {
				return nil
			}
			a.seeking = false
		}
		if running {
			return a.wrap("stop", a.handle.StopMove())
		}
		return nil
	}

	a.seeking = false
	speed := uint32(float64(a.cfg.MaxSpeedHz) * magnitude)
	speed = max(speed, MinSpeedHz)
	speed = min(speed, a.cfg.MaxSpeedHz)
	if err := a.handle.SetAcceleration(a.cfg.Acceleration); err != nil {
		return a.wrap("acceleration", err)
	}
	if err := a.handle.SetSpeedInHz(speed); err != nil {
		return a.wrap("speed", err)
	}
	if v > 0 {
		return a.wrap("run forward", a.handle.RunForward())
	}
	return a.wrap("run backward", a.handle.RunBackward())
}

// Controller drives pan, tilt and zoom axes of a motion engine
type Controller struct {
	pan  *axis
	tilt *axis
	zoom *axis

	positions Positions
	l         log.FieldLogger
}

// New attaches and configures all three axes. The controller cannot
// operate without all of them, so any failure is returned.
func New(engine Engine, cfg *Config, l log.FieldLogger) (*Controller, error) {
	if l == nil {
		discard := log.New()
		discard.SetOutput(io.Discard)
		l = discard
	}
	if engine == nil {
		return nil, fmt.Errorf("%w: no motion engine", ErrAttach)
	}
	c := &Controller{l: l}
	bind := func(name string, ac AxisConfig) (*axis, error) {
		h, err := engine.Attach(ac.Pins.Step)
		if err != nil {
			return nil, fmt.Errorf("%w: %s on pin %d: %w", ErrAttach, name, ac.Pins.Step, err)
		}
		if h == nil {
			return nil, fmt.Errorf("%w: %s on pin %d", ErrAttach, name, ac.Pins.Step)
		}
		a := &axis{name: name, handle: h, cfg: ac}
		if err := a.configure(); err != nil {
			return nil, fmt.Errorf("%w: configuring %s: %w", ErrAttach, name, err)
		}
		return a, nil
	}
	var err error
	if c.pan, err = bind("pan", cfg.Pan); err != nil {
		l.Error(err)
		return nil, err
	}
	if c.tilt, err = bind("tilt", cfg.Tilt); err != nil {
		l.Error(err)
		return nil, err
	}
	if c.zoom, err = bind("zoom", cfg.Zoom); err != nil {
		l.Error(err)
		return nil, err
	}
	l.Info("motion controller initialized steppers")
	return c, nil
}

func (c *Controller) axes() []*axis {
	return []*axis{c.pan, c.tilt, c.zoom}
}

// Update applies intent velocities to every axis and refreshes the position cache.
// All axes are always commanded, failures are collected and returned together.
func (c *Controller) Update(intent input.Intent) error {
	errs := []error{
		c.pan.applyVelocity(intent.Pan),
		c.tilt.applyVelocity(intent.Tilt),
		c.zoom.applyVelocity(intent.Zoom),
	}
	errs = append(errs, c.refresh())
	return errors.Join(errs...)
}

// refresh mirrors engine positions into the cache
func (c *Controller) refresh() error {
	var errs []error
	read := func(a *axis, dst *int32) {
		pos, err := a.handle.CurrentPosition()
		if err != nil {
			errs = append(errs, a.wrap("read position", err))
			return
		}
		*dst = pos
	}
	read(c.pan, &c.positions.Pan)
	read(c.tilt, &c.positions.Tilt)
	read(c.zoom, &c.positions.Zoom)
	return errors.Join(errs...)
}

// StopAll halts every axis immediately, skipping deceleration, and cuts driver outputs
func (c *Controller) StopAll() error {
	var errs []error
	for _, a := range c.axes() {
		a.seeking = false
		errs = append(errs, a.wrap("force stop", a.handle.ForceStop()))
		errs = append(errs, a.wrap("disable outputs", a.handle.DisableOutputs()))
	}
	return errors.Join(errs...)
}

// ResetEncoders zeroes engine positions and the local cache
func (c *Controller) ResetEncoders() error {
	var errs []error
	for _, a := range c.axes() {
		errs = append(errs, a.wrap("reset position", a.handle.SetCurrentPosition(0)))
	}
	c.positions = Positions{}
	c.l.Info("encoder positions reset")
	return errors.Join(errs...)
}

// MoveToPreset starts an absolute move on every axis and returns right away
func (c *Controller) MoveToPreset(target Positions) error {
	var errs []error
	move := func(a *axis, pos int32) {
		if err := a.handle.MoveTo(pos); err != nil {
			errs = append(errs, a.wrap("move", err))
			return
		}
		a.seeking = true
	}
	move(c.pan, target.Pan)
	move(c.tilt, target.Tilt)
	move(c.zoom, target.Zoom)
	c.l.Infof("recalling preset: %s", target)
	return errors.Join(errs...)
}

// Positions returns the cached read-back of the last update
func (c *Controller) Positions() Positions {
	return c.positions
}

// DumpDiagnostics logs the cached positions
func (c *Controller) DumpDiagnostics() {
	c.l.Infof("stepper positions %s", c.positions)
}
