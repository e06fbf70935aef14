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

package stats

import (
	"time"

	"github.com/eclesh/welford"
)

// TickStats aggregates control loop tick durations over a window
type TickStats struct {
	budget   time.Duration
	w        *welford.Stats
	max      time.Duration
	count    int64
	overruns int64
}

// NewTickStats creates TickStats, ticks longer than budget count as overruns
func NewTickStats(budget time.Duration) *TickStats {
	return &TickStats{budget: budget, w: welford.New()}
}

// Add records the duration of a single tick
func (t *TickStats) Add(d time.Duration) {
	t.w.Add(float64(d.Microseconds()))
	t.count++
	t.max = max(t.max, d)
	if d > t.budget {
		t.overruns++
	}
}

// Count of ticks in the current window
func (t *TickStats) Count() int64 {
	return t.count
}

// Mean tick duration of the current window
func (t *TickStats) Mean() time.Duration {
	if t.count == 0 {
		return 0
	}
	return time.Duration(t.w.Mean() * float64(time.Microsecond))
}

// Stddev of tick durations in the current window
func (t *TickStats) Stddev() time.Duration {
	if t.count < 2 {
		return 0
	}
	return time.Duration(t.w.Stddev() * float64(time.Microsecond))
}

// Flush publishes the window to s and starts a new one
func (t *TickStats) Flush(s Server) {
	if t.count > 0 {
		s.SetCounter(TickDurationMean, t.Mean().Microseconds())
		s.SetCounter(TickDurationDev, t.Stddev().Microseconds())
		s.SetCounter(TickDurationMax, t.max.Microseconds())
	}
	s.UpdateCounterBy(TickOverruns, t.overruns)
	t.w = welford.New()
	t.max = 0
	t.count = 0
	t.overruns = 0
}
