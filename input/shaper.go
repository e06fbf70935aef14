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
Package input turns raw controller snapshots into command intents.

Stick axes go through a deadzone and an expo curve, triggers are combined into
a single signed zoom velocity, and button gestures (long hold, short tap, rising
edge, two-button combo) are turned into one-shot events.
*/
package input

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/constraints"
)

const (
	defaultDeadzone       = 0.08
	defaultExpo           = 0.3
	defaultSaveHold       = 2000 * time.Millisecond
	defaultRecallTapLimit = 1500 * time.Millisecond
)

// Config holds the shaping and gesture parameters
type Config struct {
	PanDeadzone    float64       `yaml:"pan_deadzone"`
	PanExpo        float64       `yaml:"pan_expo"`
	TiltDeadzone   float64       `yaml:"tilt_deadzone"`
	TiltExpo       float64       `yaml:"tilt_expo"`
	SaveHold       time.Duration `yaml:"save_hold"`        // how long A must be held to save a preset
	RecallTapLimit time.Duration `yaml:"recall_tap_limit"` // B released later than this after press is not a recall
}

// DefaultConfig returns Config initialized with default values
func DefaultConfig() Config {
	return Config{
		PanDeadzone:    defaultDeadzone,
		PanExpo:        defaultExpo,
		TiltDeadzone:   defaultDeadzone,
		TiltExpo:       defaultExpo,
		SaveHold:       defaultSaveHold,
		RecallTapLimit: defaultRecallTapLimit,
	}
}

// Validate Config is sane
func (c *Config) Validate() error {
	for name, dz := range map[string]float64{"pan_deadzone": c.PanDeadzone, "tilt_deadzone": c.TiltDeadzone} {
		if dz < 0 || dz >= 1 {
			return fmt.Errorf("%s must be in [0, 1)", name)
		}
	}
	for name, e := range map[string]float64{"pan_expo": c.PanExpo, "tilt_expo": c.TiltExpo} {
		if e < 0 || e > 1 {
			return fmt.Errorf("%s must be in [0, 1]", name)
		}
	}
	if c.SaveHold <= 0 {
		return fmt.Errorf("save_hold must be greater than zero")
	}
	if c.RecallTapLimit <= 0 {
		return fmt.Errorf("recall_tap_limit must be greater than zero")
	}
	return nil
}

// Intent is what the operator asks the rig to do during one tick
type Intent struct {
	Pan  float64 // [-1, 1], positive is right
	Tilt float64 // [-1, 1], positive is up
	Zoom float64 // [-1, 1], positive is tele

	SavePreset      bool
	RecallPreset    bool
	ResetEncoders   bool
	DumpDiagnostics bool
	NextSlot        bool
	PrevSlot        bool

	Timestamp time.Time
}

// Moving reports whether any axis velocity is non-zero
func (i Intent) Moving() bool {
	return i.Pan != 0 || i.Tilt != 0 || i.Zoom != 0
}

// Shaper maps snapshots to intents. It keeps just enough state to detect
// edges and timed gestures across ticks.
type Shaper struct {
	cfg Config

	previous    Buttons
	saveActive  bool
	saveStart   time.Time
	recallPress time.Time
}

// NewShaper creates a Shaper with the given config
func NewShaper(cfg Config) *Shaper {
	return &Shaper{cfg: cfg}
}

// Reset forgets all gesture state
func (s *Shaper) Reset() {
	s.previous = Buttons{}
	s.saveActive = false
	s.saveStart = time.Time{}
	s.recallPress = time.Time{}
}

// Map converts a snapshot taken at now into an intent
func (s *Shaper) Map(snap Snapshot, now time.Time) Intent {
	intent := Intent{Timestamp: now}

	if !snap.Connected {
		// a gesture started before the link dropped must not complete after it comes back
		s.Reset()
		return intent
	}

	intent.Pan = Shape(snap.LeftX, s.cfg.PanDeadzone, s.cfg.PanExpo)
	// stick forward reads negative, camera up is positive
	intent.Tilt = -Shape(snap.RightY, s.cfg.TiltDeadzone, s.cfg.TiltExpo)

	zoomIn := float64(snap.TriggerRight) / TriggerRange
	zoomOut := float64(snap.TriggerLeft) / TriggerRange
	intent.Zoom = clamp(zoomIn-zoomOut, -1, 1)

	cur := snap.Buttons
	prev := s.previous

	if cur.A {
		if !s.saveActive {
			s.saveActive = true
			s.saveStart = now
		}
	} else if s.saveActive {
		if now.Sub(s.saveStart) >= s.cfg.SaveHold {
			intent.SavePreset = true
		}
		s.saveActive = false
	}

	if !prev.B && cur.B {
		s.recallPress = now
	}
	if prev.B && !cur.B && now.Sub(s.recallPress) <= s.cfg.RecallTapLimit {
		intent.RecallPreset = true
	}

	intent.ResetEncoders = !prev.Start && cur.Start
	intent.NextSlot = !prev.ShoulderR && cur.ShoulderR
	intent.PrevSlot = !prev.ShoulderL && cur.ShoulderL
	intent.DumpDiagnostics = cur.ThumbL && cur.ThumbR && !(prev.ThumbL && prev.ThumbR)

	s.previous = cur
	return intent
}

// Shape applies a deadzone and an expo curve to a raw stick value.
// The result is 0 inside the deadzone and reaches ±1 at full deflection.
func Shape(raw int16, deadzone, expo float64) float64 {
	normalized := clamp(float64(raw)/AxisRange, -1, 1)
	if math.Abs(normalized) < deadzone {
		return 0
	}
	sign := 1.0
	if normalized < 0 {
		sign = -1.0
	}
	magnitude := clamp((math.Abs(normalized)-deadzone)/(1-deadzone), 0, 1)
	return sign * (magnitude*(1-expo) + math.Pow(magnitude, 3)*expo)
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
