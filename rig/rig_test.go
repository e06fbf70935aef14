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

package rig

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/facebook/ptzrig/input"
	"github.com/facebook/ptzrig/motion"
	"github.com/facebook/ptzrig/preset"
	"github.com/facebook/ptzrig/sim"
	"github.com/facebook/ptzrig/stats"
)

type fakeSource struct {
	snap   input.Snapshot
	polls  int
	events uint64
}

func (f *fakeSource) Poll() input.Snapshot {
	f.polls++
	return f.snap
}

func (f *fakeSource) Events() uint64 {
	return f.events
}

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time {
	return c.t
}

type testRig struct {
	*Rig
	src   *fakeSource
	clock *clock
	ctrl  *motion.Controller
	eng   *sim.Engine
	stats *stats.Stats
	file  string
	hook  *test.Hook
}

func (tr *testRig) step(d time.Duration, snap input.Snapshot) {
	tr.clock.t = tr.clock.t.Add(d)
	tr.src.snap = snap
	tr.Tick(tr.clock.t)
}

func pressed(b input.Buttons) input.Snapshot {
	return input.Snapshot{Connected: true, Buttons: b}
}

func newTestRig(t *testing.T) *testRig {
	cfg := DefaultConfig()
	cfg.Engine = EngineSim
	c := &clock{t: time.Unix(1700000000, 0)}
	eng := sim.NewWithClock(c.now)
	ctrl, err := motion.New(eng, &cfg.Motion, nil)
	require.NoError(t, err)
	file := filepath.Join(t.TempDir(), "presets.bin")
	l, hook := test.NewNullLogger()
	st := stats.NewStats()
	src := &fakeSource{}
	r := New(cfg, src, ctrl, preset.New(preset.NewFileStore(file), l), st, l)
	r.Begin(c.t)
	return &testRig{Rig: r, src: src, clock: c, ctrl: ctrl, eng: eng, stats: st, file: file, hook: hook}
}

func TestRigStartsIdle(t *testing.T) {
	tr := newTestRig(t)
	require.True(t, tr.Idle())

	tr.step(20*time.Millisecond, input.Snapshot{LeftX: 512})
	require.True(t, tr.Idle())
	require.Equal(t, motion.Positions{}, tr.ctrl.Positions())
	require.Equal(t, int64(1), tr.stats.Get()[stats.SafetyForcedIdle])
}

func TestRigJogAndDisconnect(t *testing.T) {
	tr := newTestRig(t)
	jog := input.Snapshot{Connected: true, LeftX: 512, TriggerLeft: 1023}

	tr.step(20*time.Millisecond, jog)
	require.False(t, tr.Idle())
	tr.step(100*time.Millisecond, jog)
	require.Equal(t, motion.Positions{Pan: 600, Zoom: -400}, tr.ctrl.Positions())

	got := tr.stats.Get()
	require.Equal(t, int64(1), got[stats.GamepadConnected])
	require.Equal(t, int64(600), got[stats.PositionPan])
	require.Equal(t, int64(0), got[stats.SafetyForcedIdle])

	// link lost: hard stop, nothing moves afterwards
	pan := tr.eng.Axis(tr.cfg.Motion.Pan.Pins.Step)
	tr.step(20*time.Millisecond, input.Snapshot{})
	require.True(t, tr.Idle())
	require.Equal(t, int64(1), tr.stats.Get()[stats.SafetyIdleEvents])
	require.False(t, pan.Enabled())
	stopped, err := pan.CurrentPosition()
	require.NoError(t, err)
	tr.step(time.Second, input.Snapshot{})
	pos, err := pan.CurrentPosition()
	require.NoError(t, err)
	require.Equal(t, stopped, pos)

	// reconnecting resumes control
	tr.step(20*time.Millisecond, jog)
	require.False(t, tr.Idle())
	running, err := pan.IsRunning()
	require.NoError(t, err)
	require.True(t, running)
	require.Equal(t, int64(1), tr.stats.Get()[stats.SafetyIdleEvents])
}

func TestRigSaveResetRecall(t *testing.T) {
	tr := newTestRig(t)
	jog := input.Snapshot{Connected: true, LeftX: 512}
	tr.step(20*time.Millisecond, jog)
	tr.step(100*time.Millisecond, jog)
	// release and let the pan axis coast to a halt
	tr.step(20*time.Millisecond, pressed(input.Buttons{}))
	tr.step(time.Second, pressed(input.Buttons{}))
	saved := tr.ctrl.Positions()
	require.NotZero(t, saved.Pan)

	tr.step(10*time.Millisecond, pressed(input.Buttons{A: true}))
	tr.step(2100*time.Millisecond, pressed(input.Buttons{A: true}))
	tr.step(10*time.Millisecond, pressed(input.Buttons{}))
	require.Equal(t, int64(1), tr.stats.Get()[stats.PresetSaves])

	tr.step(10*time.Millisecond, pressed(input.Buttons{Start: true}))
	require.Equal(t, motion.Positions{}, tr.ctrl.Positions())
	require.Equal(t, int64(1), tr.stats.Get()[stats.MotionResets])

	tr.step(10*time.Millisecond, pressed(input.Buttons{B: true}))
	tr.step(200*time.Millisecond, pressed(input.Buttons{}))
	require.Equal(t, int64(1), tr.stats.Get()[stats.PresetRecalls])
	tr.step(time.Second, pressed(input.Buttons{}))
	require.Equal(t, saved, tr.ctrl.Positions())

	// record survives on disk
	s := preset.New(preset.NewFileStore(tr.file), nil)
	require.NoError(t, s.Begin())
	e, err := s.Lookup(0)
	require.NoError(t, err)
	require.Equal(t, preset.StatusValid, e.Status)
	require.Equal(t, saved, e.Positions)
}

func TestRigSlotSelection(t *testing.T) {
	tr := newTestRig(t)
	tr.step(10*time.Millisecond, pressed(input.Buttons{ShoulderR: true}))
	tr.step(10*time.Millisecond, pressed(input.Buttons{}))
	tr.step(10*time.Millisecond, pressed(input.Buttons{ShoulderR: true}))
	require.Equal(t, int64(2), tr.stats.Get()[stats.PresetSlot])
	tr.step(10*time.Millisecond, pressed(input.Buttons{ShoulderL: true}))
	require.Equal(t, int64(1), tr.stats.Get()[stats.PresetSlot])

	tr.step(10*time.Millisecond, pressed(input.Buttons{A: true}))
	tr.step(2000*time.Millisecond, pressed(input.Buttons{}))

	// recalling an empty slot is a failure, not motion
	tr.step(10*time.Millisecond, pressed(input.Buttons{ShoulderL: true}))
	tr.step(10*time.Millisecond, pressed(input.Buttons{B: true}))
	tr.step(10*time.Millisecond, pressed(input.Buttons{}))
	got := tr.stats.Get()
	require.Equal(t, int64(1), got[stats.PresetSaves])
	require.Equal(t, int64(1), got[stats.PresetFailures])
	require.Equal(t, int64(0), got[stats.PresetRecalls])

	entries, err := tr.presets.Entries()
	require.NoError(t, err)
	require.Equal(t, preset.StatusEmpty, entries[0].Status)
	require.Equal(t, preset.StatusValid, entries[1].Status)
}

func TestRigPresetsDisabled(t *testing.T) {
	cfg := DefaultConfig()
	c := &clock{t: time.Unix(1700000000, 0)}
	ctrl, err := motion.New(sim.NewWithClock(c.now), &cfg.Motion, nil)
	require.NoError(t, err)
	l, hook := test.NewNullLogger()
	st := stats.NewStats()
	src := &fakeSource{}
	tr := &testRig{Rig: New(cfg, src, ctrl, preset.New(nil, l), st, l), src: src, clock: c, ctrl: ctrl, stats: st, hook: hook}
	tr.Begin(c.t)

	tr.step(10*time.Millisecond, pressed(input.Buttons{A: true}))
	tr.step(2500*time.Millisecond, pressed(input.Buttons{}))
	tr.step(10*time.Millisecond, pressed(input.Buttons{B: true}))
	tr.step(10*time.Millisecond, pressed(input.Buttons{}))
	require.Equal(t, int64(2), st.Get()[stats.PresetFailures])
	require.False(t, tr.Idle())
}

func (tr *testRig) logged(msg string) bool {
	for _, e := range tr.hook.AllEntries() {
		if e.Message == msg {
			return true
		}
	}
	return false
}

func TestRigDiagnosticsCombo(t *testing.T) {
	tr := newTestRig(t)
	combo := pressed(input.Buttons{ThumbL: true, ThumbR: true})
	combo.LeftY = 100
	tr.step(10*time.Millisecond, combo)
	tr.step(10*time.Millisecond, combo)
	require.Equal(t, int64(1), tr.stats.Get()[stats.DiagnosticsDumps])
	require.True(t, tr.logged("active preset slot 0"))
	// the dump reports the reading the tick acted on, the source is polled once per tick
	require.True(t, tr.logged("controller: "+combo.String()))
	require.Equal(t, 2, tr.src.polls)
}

func TestRigHeldInputLimit(t *testing.T) {
	tr := newTestRig(t)
	jog := input.Snapshot{Connected: true, LeftX: 512}
	tr.step(20*time.Millisecond, jog)
	for i := 0; i < 29; i++ {
		tr.step(time.Second, jog)
	}
	require.False(t, tr.Idle())

	// unchanged input for longer than the hold limit is no longer activity
	tr.step(time.Second, jog)
	require.True(t, tr.Idle())
	require.Equal(t, int64(1), tr.stats.Get()[stats.SafetyIdleEvents])
	require.True(t, tr.logged("controller input unchanged for 30s while moving"))
	pan := tr.eng.Axis(tr.cfg.Motion.Pan.Pins.Step)
	require.False(t, pan.Enabled())
	tr.step(time.Second, jog)
	require.True(t, tr.Idle())

	// any change is fresh input again
	jog.LeftX = 500
	tr.step(20*time.Millisecond, jog)
	require.False(t, tr.Idle())
}

func TestRigDeviceEventsAreActivity(t *testing.T) {
	tr := newTestRig(t)
	jog := input.Snapshot{Connected: true, LeftX: 512}
	tr.step(20*time.Millisecond, jog)
	for i := 0; i < 40; i++ {
		tr.src.events++
		tr.step(time.Second, jog)
	}
	require.False(t, tr.Idle())
	require.Equal(t, int64(0), tr.stats.Get()[stats.SafetyIdleEvents])
}

func TestRigRun(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TickInterval = 5 * time.Millisecond
	ctrl, err := motion.New(sim.New(), &cfg.Motion, nil)
	require.NoError(t, err)
	l, _ := test.NewNullLogger()
	st := stats.NewStats()
	r := New(cfg, &fakeSource{snap: input.Snapshot{Connected: true, RightY: -512}}, ctrl, preset.New(nil, l), st, l)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err = r.Run(ctx)
	require.True(t, errors.Is(err, context.DeadlineExceeded))
	require.Greater(t, st.Get()[stats.TickCount], int64(1))
	require.Greater(t, st.Get()[stats.PositionTilt], int64(0))
}
