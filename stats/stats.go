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
Package stats keeps rig counters and exports them over http, both as a flat
JSON map and in Prometheus format.
*/
package stats

import (
	"sort"
	"sync"
)

// Counter names
const (
	TickCount        = "tick.count"
	TickOverruns     = "tick.overruns"
	TickDurationMean = "tick.duration_us.mean"
	TickDurationDev  = "tick.duration_us.stddev"
	TickDurationMax  = "tick.duration_us.max"
	GamepadConnected = "gamepad.connected"
	GamepadBattery   = "gamepad.battery"
	SafetyForcedIdle = "safety.forced_idle"
	SafetyIdleEvents = "safety.idle_events"
	MotionErrors     = "motion.errors"
	MotionResets     = "motion.resets"
	PositionPan      = "position.pan"
	PositionTilt     = "position.tilt"
	PositionZoom     = "position.zoom"
	PresetSlot       = "preset.slot"
	PresetSaves      = "preset.saves"
	PresetRecalls    = "preset.recalls"
	PresetFailures   = "preset.failures"
	DiagnosticsDumps = "diagnostics.dumps"
)

// Server is a stats server interface
type Server interface {
	// Reset atomically sets all the counters to 0
	Reset()
	SetCounter(key string, val int64)
	UpdateCounterBy(key string, count int64)
}

// Stats is a mutex guarded map of counters
type Stats struct {
	mux      sync.Mutex
	counters map[string]int64
}

// NewStats created new instance of Stats
func NewStats() *Stats {
	return &Stats{
		counters: map[string]int64{},
	}
}

// UpdateCounterBy will increment counter
func (s *Stats) UpdateCounterBy(key string, count int64) {
	s.mux.Lock()
	s.counters[key] += count
	s.mux.Unlock()
}

// SetCounter will set a counter to the provided value.
func (s *Stats) SetCounter(key string, val int64) {
	s.mux.Lock()
	s.counters[key] = val
	s.mux.Unlock()
}

// Get returns a copy of all counters
func (s *Stats) Get() map[string]int64 {
	ret := make(map[string]int64)
	s.mux.Lock()
	for key, val := range s.counters {
		ret[key] = val
	}
	s.mux.Unlock()
	return ret
}

// Keys returns counter names in sorted order
func (s *Stats) Keys() []string {
	s.mux.Lock()
	keys := make([]string, 0, len(s.counters))
	for k := range s.counters {
		keys = append(keys, k)
	}
	s.mux.Unlock()
	sort.Strings(keys)
	return keys
}

// Reset all the values of counters
func (s *Stats) Reset() {
	s.mux.Lock()
	for k := range s.counters {
		s.counters[k] = 0
	}
	s.mux.Unlock()
}

// BoolToInt is a helper for flag counters
func BoolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
