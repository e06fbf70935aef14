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
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/facebook/ptzrig/input"
)

const (
	rawAxisMax     = math.MaxInt16
	rawTriggerIdle = -math.MaxInt16
)

// Source hands out one controller snapshot per tick
type Source interface {
	Poll() input.Snapshot
}

// EventCounter is implemented by sources that count raw device events.
// A changed count marks fresh input even when the snapshot looks the same.
type EventCounter interface {
	Events() uint64
}

// Joystick is a Source backed by a Linux joystick device. The device is read
// on its own goroutine (see Run), Poll only copies the latest state.
type Joystick struct {
	cfg   Config
	masks map[uint8]uint32
	open  func(path string) (io.ReadCloser, error)
	l     log.FieldLogger

	mu        sync.Mutex
	connected bool
	axes      [256]int16
	mask      uint32
	events    uint64
}

// NewJoystick creates a Joystick. Nothing is opened before Run.
func NewJoystick(cfg Config, l log.FieldLogger) *Joystick {
	if l == nil {
		l = log.StandardLogger()
	}
	return &Joystick{
		cfg:   cfg,
		masks: cfg.buttonMasks(),
		open: func(path string) (io.ReadCloser, error) {
			return os.Open(path)
		},
		l: l,
	}
}

// Run reads the device until ctx is done, reopening it whenever it goes away
func (j *Joystick) Run(ctx context.Context) error {
	for {
		if err := j.session(ctx); err != nil && ctx.Err() == nil {
			j.l.Debugf("joystick %s: %v", j.cfg.Device, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(j.cfg.ReopenInterval):
		}
	}
}

func (j *Joystick) session(ctx context.Context) error {
	dev, err := j.open(j.cfg.Device)
	if err != nil {
		return fmt.Errorf("opening: %w", err)
	}
	done := make(chan struct{})
	defer close(done)
	go func() {
		// unblocks the read below on shutdown
		select {
		case <-ctx.Done():
		case <-done:
		}
		dev.Close()
	}()

	j.reset(true)
	j.l.Infof("joystick %s connected", j.cfg.Device)
	defer func() {
		j.reset(false)
		j.l.Warningf("joystick %s disconnected", j.cfg.Device)
	}()

	buf := make([]byte, eventSize)
	for {
		if _, err := io.ReadFull(dev, buf); err != nil {
			return fmt.Errorf("reading events: %w", err)
		}
		e := &Event{}
		if err := e.UnmarshalBinary(buf); err != nil {
			return err
		}
		j.apply(e)
	}
}

func (j *Joystick) reset(connected bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.connected = connected
	j.axes = [256]int16{}
	// released triggers sit at the bottom of the axis range
	j.axes[j.cfg.Axes.TriggerLeft] = rawTriggerIdle
	j.axes[j.cfg.Axes.TriggerRight] = rawTriggerIdle
	j.mask = 0
}

func (j *Joystick) apply(e *Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events++
	switch e.Kind() {
	case EventAxis:
		j.axes[e.Number] = e.Value
	case EventButton:
		bit := j.masks[e.Number]
		if e.Value != 0 {
			j.mask |= bit
		} else {
			j.mask &^= bit
		}
	}
}

// Poll returns the current controller state
func (j *Joystick) Poll() input.Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.connected {
		return input.Snapshot{}
	}
	a := j.cfg.Axes
	return input.Snapshot{
		Connected:    true,
		LeftX:        scaleStick(j.axes[a.LeftX]),
		LeftY:        scaleStick(j.axes[a.LeftY]),
		RightX:       scaleStick(j.axes[a.RightX]),
		RightY:       scaleStick(j.axes[a.RightY]),
		TriggerLeft:  scaleTrigger(j.axes[a.TriggerLeft]),
		TriggerRight: scaleTrigger(j.axes[a.TriggerRight]),
		Buttons:      input.ButtonsFromMask(j.mask),
		// the joystick API has no battery reporting
		Battery: 0,
	}
}

// Events returns how many events were read so far
func (j *Joystick) Events() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.events
}

// scaleStick maps the full int16 range onto ±input.AxisRange
func scaleStick(v int16) int16 {
	return int16(int32(v) * input.AxisRange / rawAxisMax)
}

// scaleTrigger maps a full range trigger axis onto 0..input.TriggerRange
func scaleTrigger(v int16) uint16 {
	t := (int32(v) - rawTriggerIdle) * input.TriggerRange / (rawAxisMax - rawTriggerIdle)
	return uint16(max(t, 0))
}
