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
Package rig runs the control loop of the pan-tilt-zoom rig.

Every tick the controller snapshot goes through the input shaper, the safety
watchdog decides whether motion is allowed, and the resulting intent drives the
motion controller and the preset store.
*/
package rig

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/facebook/ptzrig/gamepad"
	"github.com/facebook/ptzrig/input"
	"github.com/facebook/ptzrig/motion"
	"github.com/facebook/ptzrig/preset"
	"github.com/facebook/ptzrig/safety"
	"github.com/facebook/ptzrig/stats"
)

// Rig wires all control components together. It is single threaded,
// only Run (or Begin and Tick) may touch it.
type Rig struct {
	cfg      *Config
	source   gamepad.Source
	shaper   *input.Shaper
	watchdog *safety.Watchdog
	motion   *motion.Controller
	presets  *preset.Store
	selector preset.Selector
	stats    *stats.Stats
	ticks    *stats.TickStats
	l        log.FieldLogger

	connected bool
	idle      bool
	last      input.Snapshot
	events    uint64
	lastFresh time.Time
	stale     bool
}

// New creates a Rig
func New(cfg *Config, source gamepad.Source, ctrl *motion.Controller, presets *preset.Store, st *stats.Stats, l log.FieldLogger) *Rig {
	if l == nil {
		l = log.StandardLogger()
	}
	if st == nil {
		st = stats.NewStats()
	}
	return &Rig{
		cfg:      cfg,
		source:   source,
		shaper:   input.NewShaper(cfg.Input),
		watchdog: safety.NewWatchdog(cfg.Safety, l.WithField("component", "safety")),
		motion:   ctrl,
		presets:  presets,
		stats:    st,
		ticks:    stats.NewTickStats(cfg.TickInterval),
		l:        l,
	}
}

// Begin puts every component into its initial state. The rig starts stopped.
func (r *Rig) Begin(now time.Time) {
	r.watchdog.Begin(now)
	r.shaper.Reset()
	r.connected = false
	r.idle = true
	r.last = input.Snapshot{}
	r.lastFresh = now
	r.stale = false
	if err := r.presets.Begin(); err != nil {
		r.l.Warningf("presets unavailable: %v", err)
	}
	r.countErr(r.motion.StopAll())
	r.publish(input.Snapshot{})
}

// Tick runs a single iteration of the control loop
func (r *Rig) Tick(now time.Time) {
	snap := r.source.Poll()
	if snap.Connected != r.connected {
		if snap.Connected {
			r.l.Info("controller connected")
			r.watchdog.OnConnected(now)
		} else {
			r.l.Warning("controller disconnected")
			r.watchdog.OnDisconnected(now)
		}
		r.connected = snap.Connected
	}

	intent := r.shaper.Map(snap, now)
	if r.active(snap, intent, now) {
		r.watchdog.OnInputActivity(now)
	}
	r.watchdog.UpdateHeartbeat(now)

	if r.watchdog.ShouldForceIdle(now) {
		if !r.idle {
			r.l.Warningf("forcing idle (%s), stopping all axes", r.watchdog.State())
			r.countErr(r.motion.StopAll())
			r.stats.UpdateCounterBy(stats.SafetyIdleEvents, 1)
			r.idle = true
		}
	} else {
		r.idle = false
		r.countErr(r.motion.Update(intent))
		r.handleEvents(snap, intent)
	}
	r.stats.UpdateCounterBy(stats.TickCount, 1)
	r.publish(snap)
}

// active reports whether snap counts as input activity. The joystick API only
// reports changes, so an unchanged snapshot still counts for HoldLimit after
// the last fresh input. A reader that hangs with the stick deflected is then
// stopped by the watchdog once HoldLimit runs out.
func (r *Rig) active(snap input.Snapshot, intent input.Intent, now time.Time) bool {
	fresh := snap != r.last
	r.last = snap
	if c, ok := r.source.(gamepad.EventCounter); ok {
		if n := c.Events(); n != r.events {
			r.events = n
			fresh = true
		}
	}
	if !snap.Connected {
		return false
	}
	if fresh {
		r.lastFresh = now
		r.stale = false
		return true
	}
	held := now.Sub(r.lastFresh)
	if held < r.cfg.HoldLimit {
		return true
	}
	if !r.stale && intent.Moving() {
		r.l.Warningf("controller input unchanged for %v while moving", held)
	}
	r.stale = true
	return false
}

func (r *Rig) handleEvents(snap input.Snapshot, intent input.Intent) {
	if intent.NextSlot {
		r.l.Infof("preset slot %d selected", r.selector.Next())
	}
	if intent.PrevSlot {
		r.l.Infof("preset slot %d selected", r.selector.Prev())
	}
	if intent.ResetEncoders {
		r.countErr(r.motion.ResetEncoders())
		r.stats.UpdateCounterBy(stats.MotionResets, 1)
	}
	if intent.SavePreset {
		if err := r.presets.Save(r.selector.Active(), r.motion.Positions()); err != nil {
			r.l.Warningf("saving preset %d: %v", r.selector.Active(), err)
			r.stats.UpdateCounterBy(stats.PresetFailures, 1)
		} else {
			r.stats.UpdateCounterBy(stats.PresetSaves, 1)
		}
	}
	if intent.RecallPreset {
		if err := r.presets.Recall(r.selector.Active(), r.motion); err != nil {
			r.stats.UpdateCounterBy(stats.PresetFailures, 1)
		} else {
			r.stats.UpdateCounterBy(stats.PresetRecalls, 1)
		}
	}
	if intent.DumpDiagnostics {
		r.DumpDiagnostics(snap)
	}
}

// DumpDiagnostics logs the state of every component along with snap,
// the controller reading the current tick acted on
func (r *Rig) DumpDiagnostics(snap input.Snapshot) {
	r.stats.UpdateCounterBy(stats.DiagnosticsDumps, 1)
	r.l.Infof("controller: %s", snap)
	r.watchdog.DumpDiagnostics()
	r.motion.DumpDiagnostics()
	r.l.Infof("active preset slot %d", r.selector.Active())
	r.presets.DumpDiagnostics()
	r.l.Infof("ticks: mean=%v stddev=%v", r.ticks.Mean(), r.ticks.Stddev())
	counters := r.stats.Get()
	for _, k := range r.stats.Keys() {
		r.l.Debugf("counter %s=%d", k, counters[k])
	}
}

func (r *Rig) countErr(err error) {
	if err == nil {
		return
	}
	r.l.Warning(err)
	r.stats.UpdateCounterBy(stats.MotionErrors, 1)
}

func (r *Rig) publish(snap input.Snapshot) {
	p := r.motion.Positions()
	r.stats.SetCounter(stats.GamepadConnected, stats.BoolToInt(snap.Connected))
	r.stats.SetCounter(stats.GamepadBattery, int64(snap.Battery))
	r.stats.SetCounter(stats.SafetyForcedIdle, stats.BoolToInt(r.idle))
	r.stats.SetCounter(stats.PositionPan, int64(p.Pan))
	r.stats.SetCounter(stats.PositionTilt, int64(p.Tilt))
	r.stats.SetCounter(stats.PositionZoom, int64(p.Zoom))
	r.stats.SetCounter(stats.PresetSlot, int64(r.selector.Active()))
}

// Idle reports whether motion is currently suppressed
func (r *Rig) Idle() bool {
	return r.idle
}

// Run begins the rig and ticks it until ctx is done. All axes are stopped on the way out.
func (r *Rig) Run(ctx context.Context) error {
	r.Begin(time.Now())
	ticker := time.NewTicker(r.cfg.TickInterval)
	defer ticker.Stop()
	lastFlush := time.Now()
	for {
		select {
		case <-ctx.Done():
			r.l.Info("shutting down, stopping all axes")
			r.countErr(r.motion.StopAll())
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			r.Tick(start)
			r.ticks.Add(time.Since(start))
			if start.Sub(lastFlush) >= r.cfg.StatsInterval {
				r.ticks.Flush(r.stats)
				lastFlush = start
			}
		}
	}
}
