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
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v2"

	"github.com/facebook/ptzrig/gamepad"
	"github.com/facebook/ptzrig/input"
	"github.com/facebook/ptzrig/motion"
	"github.com/facebook/ptzrig/safety"
	"github.com/facebook/ptzrig/stepper"
)

// Supported motion engines
const (
	EngineSerial = "serial"
	EngineSim    = "sim"
)

// Config specifies rig run options
type Config struct {
	TickInterval   time.Duration  `yaml:"tick_interval"`
	StatsInterval  time.Duration  `yaml:"stats_interval"`
	HoldLimit      time.Duration  `yaml:"hold_limit"`      // longest unchanged input still counted as activity
	MonitoringPort int            `yaml:"monitoring_port"` // JSON counters, 0 disables
	MetricsPort    int            `yaml:"metrics_port"`    // prometheus, 0 disables
	Engine         string         `yaml:"engine"`
	PresetFile     string         `yaml:"preset_file"`
	Gamepad        gamepad.Config `yaml:"gamepad"`
	Input          input.Config   `yaml:"input"`
	Safety         safety.Config  `yaml:"safety"`
	Motion         motion.Config  `yaml:"motion"`
	Stepper        stepper.Config `yaml:"stepper"`
}

// DefaultConfig returns Config initialized with default values
func DefaultConfig() *Config {
	return &Config{
		TickInterval:   20 * time.Millisecond,
		StatsInterval:  10 * time.Second,
		HoldLimit:      30 * time.Second,
		MonitoringPort: 4270,
		MetricsPort:    0,
		Engine:         EngineSerial,
		PresetFile:     "/var/lib/ptzrig/presets.bin",
		Gamepad:        gamepad.DefaultConfig(),
		Input:          input.DefaultConfig(),
		Safety:         safety.DefaultConfig(),
		Motion:         motion.DefaultConfig(),
		Stepper:        stepper.DefaultConfig(),
	}
}

// Validate config is sane
func (c *Config) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be greater than zero")
	}
	if c.TickInterval >= c.Safety.InputTimeout {
		return fmt.Errorf("tick_interval must be shorter than safety input_timeout")
	}
	if c.HoldLimit <= c.Safety.HeartbeatInterval {
		return fmt.Errorf("hold_limit must be longer than safety heartbeat_interval")
	}
	if c.StatsInterval <= 0 {
		return fmt.Errorf("stats_interval must be greater than zero")
	}
	if c.MonitoringPort < 0 {
		return fmt.Errorf("monitoring_port must be 0 or positive")
	}
	if c.MetricsPort < 0 {
		return fmt.Errorf("metrics_port must be 0 or positive")
	}
	if c.MonitoringPort != 0 && c.MonitoringPort == c.MetricsPort {
		return fmt.Errorf("monitoring_port and metrics_port must differ")
	}
	if c.Engine != EngineSerial && c.Engine != EngineSim {
		return fmt.Errorf("engine must be either %q or %q", EngineSerial, EngineSim)
	}
	if err := c.Gamepad.Validate(); err != nil {
		return fmt.Errorf("invalid gamepad config: %w", err)
	}
	if err := c.Input.Validate(); err != nil {
		return fmt.Errorf("invalid input config: %w", err)
	}
	if err := c.Safety.Validate(); err != nil {
		return fmt.Errorf("invalid safety config: %w", err)
	}
	if err := c.Motion.Validate(); err != nil {
		return fmt.Errorf("invalid motion config: %w", err)
	}
	if c.Engine == EngineSerial {
		if err := c.Stepper.Validate(); err != nil {
			return fmt.Errorf("invalid stepper config: %w", err)
		}
	}
	if c.PresetFile == "" {
		log.Warning("preset_file is empty, presets are disabled")
	}
	return nil
}

// ReadConfig reads config from the file
func ReadConfig(path string) (*Config, error) {
	c := DefaultConfig()
	cData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(cData, &c)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// Flags holds CLI flag values that may override the config file
type Flags struct {
	Gamepad        string
	Serial         string
	Engine         string
	PresetFile     string
	MonitoringPort int
	MetricsPort    int
}

// PrepareConfig prepares final version of config based on defaults, CLI flags and on-disk config, and validates resulting config
func PrepareConfig(cfgPath string, f Flags, setFlags map[string]bool) (*Config, error) {
	cfg := DefaultConfig()
	var err error
	warn := func(name string) {
		log.Warningf("overriding %s from CLI flag", name)
	}
	if cfgPath != "" {
		cfg, err = ReadConfig(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("reading config from %q: %w", cfgPath, err)
		}
	}
	if setFlags["gamepad"] {
		warn("gamepad")
		cfg.Gamepad.Device = f.Gamepad
	}
	if setFlags["serial"] {
		warn("serial")
		cfg.Stepper.Device = f.Serial
	}
	if setFlags["engine"] {
		warn("engine")
		cfg.Engine = f.Engine
	}
	if setFlags["presets"] {
		warn("presets")
		cfg.PresetFile = f.PresetFile
	}
	if setFlags["monitoringport"] {
		warn("monitoringport")
		cfg.MonitoringPort = f.MonitoringPort
	}
	if setFlags["metricsport"] {
		warn("metricsport")
		cfg.MetricsPort = f.MetricsPort
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	log.Debugf("config: %+v", cfg)
	return cfg, nil
}
