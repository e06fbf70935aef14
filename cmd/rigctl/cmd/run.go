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

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/facebook/ptzrig/gamepad"
	"github.com/facebook/ptzrig/motion"
	"github.com/facebook/ptzrig/preset"
	"github.com/facebook/ptzrig/rig"
	"github.com/facebook/ptzrig/sim"
	"github.com/facebook/ptzrig/stats"
	"github.com/facebook/ptzrig/stepper"
)

var (
	runConfigFlag string
	runFlags      rig.Flags
)

func init() {
	RootCmd.AddCommand(runCmd)
	defaults := rig.DefaultConfig()
	runCmd.Flags().StringVarP(&runConfigFlag, "config", "c", "", "path to the config")
	runCmd.Flags().StringVar(&runFlags.Gamepad, "gamepad", defaults.Gamepad.Device, "joystick device")
	runCmd.Flags().StringVar(&runFlags.Serial, "serial", defaults.Stepper.Device, "stepper board serial port")
	runCmd.Flags().StringVar(&runFlags.Engine, "engine", defaults.Engine, fmt.Sprintf("motion engine, either %q or %q", rig.EngineSerial, rig.EngineSim))
	runCmd.Flags().StringVar(&runFlags.PresetFile, "presets", defaults.PresetFile, "preset storage file, empty disables presets")
	runCmd.Flags().IntVar(&runFlags.MonitoringPort, "monitoringport", defaults.MonitoringPort, "port to start monitoring http server on, 0 disables")
	runCmd.Flags().IntVar(&runFlags.MetricsPort, "metricsport", defaults.MetricsPort, "port to start prometheus exporter on, 0 disables")
}

func openEngine(cfg *rig.Config) (motion.Engine, func(), error) {
	if cfg.Engine == rig.EngineSim {
		log.Warning("using simulated motion engine, no motors will move")
		return sim.New(), func() {}, nil
	}
	link, err := stepper.Open(&cfg.Stepper)
	if err != nil {
		return nil, func() {}, err
	}
	if v, err := link.Version(); err == nil {
		log.Infof("stepper board firmware %s", v)
	}
	return link, func() {
		if err := link.Close(); err != nil {
			log.Warningf("closing %s: %v", cfg.Stepper.Device, err)
		}
	}, nil
}

func presetStore(cfg *rig.Config) *preset.Store {
	l := log.WithField("component", "preset")
	if cfg.PresetFile == "" {
		return preset.New(nil, l)
	}
	return preset.New(preset.NewFileStore(cfg.PresetFile), l)
}

// notifySystemd reports readiness and keeps the service watchdog fed for as long as the control loop ticks
func notifySystemd(ctx context.Context, st *stats.Stats) error {
	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Warningf("notifying systemd: %v", err)
	} else if !ok {
		log.Debug("not running under systemd")
		return nil
	}
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return nil
	}
	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()
	var lastTicks int64
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			ticks := st.Get()[stats.TickCount]
			if ticks == lastTicks {
				log.Warning("control loop is stuck, not feeding systemd watchdog")
				continue
			}
			lastTicks = ticks
			if _, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog); err != nil {
				log.Warningf("feeding systemd watchdog: %v", err)
			}
		}
	}
}

func runRun(cfg *rig.Config) error {
	engine, closeEngine, err := openEngine(cfg)
	if err != nil {
		return fmt.Errorf("opening motion engine: %w", err)
	}
	defer closeEngine()
	ctrl, err := motion.New(engine, &cfg.Motion, log.WithField("component", "motion"))
	if err != nil {
		return err
	}

	st := stats.NewStats()
	joystick := gamepad.NewJoystick(cfg.Gamepad, log.WithField("component", "gamepad"))
	r := rig.New(cfg, joystick, ctrl, presetStore(cfg), st, log.StandardLogger())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return joystick.Run(ctx)
	})
	eg.Go(func() error {
		return r.Run(ctx)
	})
	eg.Go(func() error {
		return (&stats.SysStats{}).Run(ctx, st, cfg.StatsInterval)
	})
	if cfg.MonitoringPort != 0 {
		eg.Go(func() error {
			return stats.NewJSONStats(st).Start(ctx, cfg.MonitoringPort)
		})
	}
	if cfg.MetricsPort != 0 {
		eg.Go(func() error {
			return stats.NewPrometheusExporter(st, cfg.StatsInterval).Start(ctx, cfg.MetricsPort)
		})
	}
	eg.Go(func() error {
		return notifySystemd(ctx, st)
	})
	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the rig control loop",
	Long:  "Run the rig control loop: read the gamepad, drive the motors, save and recall presets.",
	Run: func(c *cobra.Command, _ []string) {
		ConfigureVerbosity()
		setFlags := map[string]bool{}
		for _, name := range []string{"gamepad", "serial", "engine", "presets", "monitoringport", "metricsport"} {
			setFlags[name] = c.Flags().Changed(name)
		}
		cfg, err := rig.PrepareConfig(runConfigFlag, runFlags, setFlags)
		if err != nil {
			log.Fatal(err)
		}
		if err := runRun(cfg); err != nil {
			log.Fatal(err)
		}
	},
}
