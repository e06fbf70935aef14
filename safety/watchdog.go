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

package safety

import (
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	defaultInputTimeout      = 300 * time.Millisecond
	defaultRampDown          = 150 * time.Millisecond
	defaultHeartbeatInterval = 2000 * time.Millisecond
)

// Config holds watchdog timeouts
type Config struct {
	InputTimeout      time.Duration `yaml:"input_timeout"`
	RampDown          time.Duration `yaml:"ramp_down"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
}

// DefaultConfig returns Config initialized with default values
func DefaultConfig() Config {
	return Config{
		InputTimeout:      defaultInputTimeout,
		RampDown:          defaultRampDown,
		HeartbeatInterval: defaultHeartbeatInterval,
	}
}

// Validate Config is sane
func (c *Config) Validate() error {
	if c.InputTimeout <= 0 {
		return fmt.Errorf("input_timeout must be greater than zero")
	}
	if c.RampDown < 0 {
		return fmt.Errorf("ramp_down must be 0 or positive")
	}
	if c.HeartbeatInterval < c.InputTimeout+c.RampDown {
		return fmt.Errorf("heartbeat_interval must not be shorter than input_timeout + ramp_down")
	}
	return nil
}

// State is a coarse view of the watchdog
type State uint8

// All the states of the watchdog
const (
	StateDisconnected State = iota
	StateIdleForced
	StateActive
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateIdleForced:
		return "IDLE_FORCED"
	case StateActive:
		return "ACTIVE"
	}
	return "UNSUPPORTED"
}

// Watchdog decides whether motion must be suppressed. It never fails,
// the only output is ShouldForceIdle.
type Watchdog struct {
	cfg Config
	l   log.FieldLogger

	connected     bool
	forceIdle     bool
	timedOut      bool
	lastInput     time.Time
	lastHeartbeat time.Time
}

// NewWatchdog creates a watchdog in the disconnected, forced idle state
func NewWatchdog(cfg Config, l log.FieldLogger) *Watchdog {
	if l == nil {
		discard := log.New()
		discard.SetOutput(io.Discard)
		l = discard
	}
	return &Watchdog{cfg: cfg, l: l, forceIdle: true}
}

// Begin resets the watchdog to its initial state
func (w *Watchdog) Begin(now time.Time) {
	w.connected = false
	w.forceIdle = true
	w.timedOut = false
	w.lastInput = now
	w.lastHeartbeat = now
}

// OnConnected marks the controller as connected and clears forced idle
func (w *Watchdog) OnConnected(now time.Time) {
	w.connected = true
	w.forceIdle = false
	w.timedOut = false
	w.lastInput = now
	w.lastHeartbeat = now
}

// OnDisconnected marks the controller as gone and forces idle
func (w *Watchdog) OnDisconnected(now time.Time) {
	w.connected = false
	w.forceIdle = true
	w.lastInput = now
}

// OnInputActivity records fresh input, which also clears a forced idle
func (w *Watchdog) OnInputActivity(now time.Time) {
	w.lastInput = now
	w.forceIdle = false
	w.timedOut = false
}

func (w *Watchdog) stale(now time.Time, limit time.Duration) bool {
	return now.Sub(w.lastInput) > limit
}

// ShouldForceIdle reports whether motion must be suppressed at now
func (w *Watchdog) ShouldForceIdle(now time.Time) bool {
	if w.forceIdle || !w.connected {
		return true
	}
	return w.stale(now, w.cfg.InputTimeout+w.cfg.RampDown)
}

// UpdateHeartbeat is called once per tick
func (w *Watchdog) UpdateHeartbeat(now time.Time) {
	if !w.connected {
		return
	}
	if w.stale(now, w.cfg.InputTimeout+w.cfg.RampDown) {
		if !w.forceIdle {
			w.l.Warningf("no input for %v, ramping down to idle", now.Sub(w.lastInput))
		}
		w.forceIdle = true
	}
	// coarser second net on the heartbeat interval
	if w.stale(now, w.cfg.HeartbeatInterval) {
		if !w.timedOut {
			w.l.Warning("safety timeout triggered - forcing idle")
			w.timedOut = true
		}
		w.forceIdle = true
	}
	if now.Sub(w.lastHeartbeat) >= w.cfg.HeartbeatInterval {
		w.l.Debug("heartbeat ok")
		w.lastHeartbeat = now
	}
}

// State returns the coarse watchdog state
func (w *Watchdog) State() State {
	if !w.connected {
		return StateDisconnected
	}
	if w.forceIdle {
		return StateIdleForced
	}
	return StateActive
}

// Connected reports whether the controller is connected
func (w *Watchdog) Connected() bool {
	return w.connected
}

// LastInput returns the time of the most recent input activity
func (w *Watchdog) LastInput() time.Time {
	return w.lastInput
}

// DumpDiagnostics logs the watchdog state
func (w *Watchdog) DumpDiagnostics() {
	w.l.Infof("safety: state=%s connected=%t forceIdle=%t lastInput=%s",
		w.State(), w.connected, w.forceIdle, w.lastInput.Format(time.RFC3339Nano))
}
