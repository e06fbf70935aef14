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
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/facebook/ptzrig/motion"
	"github.com/facebook/ptzrig/preset"
	"github.com/facebook/ptzrig/stats"
)

// captureStdout returns what f printed to stdout
func captureStdout(t *testing.T, f func() error) string {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	stdout := os.Stdout
	os.Stdout = w
	ferr := f()
	os.Stdout = stdout
	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, ferr)
	return string(out)
}

func TestPresetsListOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.bin")
	s, _, err := openPresets(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(3, motion.Positions{Pan: 4242, Tilt: -17, Zoom: 99}))

	out := captureStdout(t, func() error { return presetsListRun(path, false) })
	require.True(t, strings.HasPrefix(out, "presets in "+path+"\n"))
	require.Contains(t, out, "4242")
	require.Contains(t, out, "-17")
	require.Contains(t, out, "VALID")
	require.Contains(t, out, "EMPTY")
}

func TestCurveOutput(t *testing.T) {
	out := captureStdout(t, func() error { return curveRun(0.08, 0.3, 256) })
	require.Contains(t, out, "0.5000")
	require.Contains(t, out, "1.0000")
}

func TestPresetsClearAndList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.bin")
	s, _, err := openPresets(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(1, motion.Positions{Pan: 10, Tilt: -20, Zoom: 30}))
	require.NoError(t, s.Save(2, motion.Positions{Pan: 1}))

	require.NoError(t, presetsListRun(path, false))
	require.NoError(t, presetsListRun(path, true))

	require.NoError(t, presetsClearRun(path, []string{"2"}))
	s, _, err = openPresets(path)
	require.NoError(t, err)
	entries, err := s.Entries()
	require.NoError(t, err)
	require.Equal(t, preset.StatusValid, entries[1].Status)
	require.Equal(t, preset.StatusEmpty, entries[2].Status)

	require.NoError(t, presetsClearRun(path, nil))
	s, _, err = openPresets(path)
	require.NoError(t, err)
	entries, err = s.Entries()
	require.NoError(t, err)
	require.Equal(t, preset.StatusEmpty, entries[1].Status)

	require.Error(t, presetsClearRun(path, []string{"six"}))
	require.ErrorIs(t, presetsClearRun(path, []string{"6"}), preset.ErrSlot)
}

func TestCurveRun(t *testing.T) {
	require.NoError(t, curveRun(0.08, 0.3, 64))
	require.Error(t, curveRun(0.08, 0.3, 0))
	require.Error(t, curveRun(1.2, 0.3, 64))
}

func TestStatusRun(t *testing.T) {
	st := stats.NewStats()
	st.SetCounter(stats.GamepadConnected, 1)
	st.SetCounter(stats.MotionErrors, 2)
	srv := httptest.NewServer(stats.NewJSONStats(st).Handler())
	defer srv.Close()
	require.NoError(t, statusRun(srv.URL))

	srv.Close()
	require.ErrorContains(t, statusRun(srv.URL), "fetching data")
}
