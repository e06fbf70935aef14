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

package motion

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/facebook/ptzrig/input"
)

type testAxes struct {
	pan  *MockAxis
	tilt *MockAxis
	zoom *MockAxis
}

func expectConfigure(m *MockAxis, p Pins) {
	m.EXPECT().SetDirectionPin(p.Dir).Return(nil)
	m.EXPECT().SetEnablePin(p.Enable).Return(nil)
	m.EXPECT().SetAutoEnable(true).Return(nil)
	m.EXPECT().SetCurrentPosition(int32(0)).Return(nil)
}

func newTestController(t *testing.T) (*Controller, *testAxes) {
	ctrl := gomock.NewController(t)
	engine := NewMockEngine(ctrl)
	axes := &testAxes{
		pan:  NewMockAxis(ctrl),
		tilt: NewMockAxis(ctrl),
		zoom: NewMockAxis(ctrl),
	}
	cfg := DefaultConfig()
	engine.EXPECT().Attach(cfg.Pan.Pins.Step).Return(axes.pan, nil)
	engine.EXPECT().Attach(cfg.Tilt.Pins.Step).Return(axes.tilt, nil)
	engine.EXPECT().Attach(cfg.Zoom.Pins.Step).Return(axes.zoom, nil)
	expectConfigure(axes.pan, cfg.Pan.Pins)
	expectConfigure(axes.tilt, cfg.Tilt.Pins)
	expectConfigure(axes.zoom, cfg.Zoom.Pins)

	c, err := New(engine, &cfg, nil)
	require.NoError(t, err)
	return c, axes
}

func expectPositions(a *testAxes, p Positions) {
	a.pan.EXPECT().CurrentPosition().Return(p.Pan, nil)
	a.tilt.EXPECT().CurrentPosition().Return(p.Tilt, nil)
	a.zoom.EXPECT().CurrentPosition().Return(p.Zoom, nil)
}

func expectIdle(m *MockAxis) {
	m.EXPECT().IsRunning().Return(false, nil)
}

func TestNewAttachFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := NewMockEngine(ctrl)
	pan := NewMockAxis(ctrl)
	cfg := DefaultConfig()
	engine.EXPECT().Attach(cfg.Pan.Pins.Step).Return(pan, nil)
	expectConfigure(pan, cfg.Pan.Pins)
	engine.EXPECT().Attach(cfg.Tilt.Pins.Step).Return(nil, fmt.Errorf("no free channel"))

	c, err := New(engine, &cfg, nil)
	require.Nil(t, c)
	require.ErrorIs(t, err, ErrAttach)
	require.ErrorContains(t, err, "tilt")
}

func TestNewNilAxis(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := NewMockEngine(ctrl)
	cfg := DefaultConfig()
	engine.EXPECT().Attach(cfg.Pan.Pins.Step).Return(nil, nil)

	_, err := New(engine, &cfg, nil)
	require.ErrorIs(t, err, ErrAttach)
}

func TestNewNilEngine(t *testing.T) {
	cfg := DefaultConfig()
	_, err := New(nil, &cfg, nil)
	require.ErrorIs(t, err, ErrAttach)
}

func TestUpdateFullDeflection(t *testing.T) {
	c, a := newTestController(t)
	gomock.InOrder(
		a.pan.EXPECT().SetAcceleration(uint32(10000)).Return(nil),
		a.pan.EXPECT().SetSpeedInHz(uint32(6000)).Return(nil),
		a.pan.EXPECT().RunForward().Return(nil),
	)
	gomock.InOrder(
		a.tilt.EXPECT().SetAcceleration(uint32(10000)).Return(nil),
		a.tilt.EXPECT().SetSpeedInHz(uint32(3000)).Return(nil),
		a.tilt.EXPECT().RunBackward().Return(nil),
	)
	gomock.InOrder(
		a.zoom.EXPECT().SetAcceleration(uint32(5000)).Return(nil),
		a.zoom.EXPECT().SetSpeedInHz(uint32(4000)).Return(nil),
		a.zoom.EXPECT().RunForward().Return(nil),
	)
	expectPositions(a, Positions{Pan: 10, Tilt: -20, Zoom: 30})

	err := c.Update(input.Intent{Pan: 1, Tilt: -0.5, Zoom: 1})
	require.NoError(t, err)
	require.Equal(t, Positions{Pan: 10, Tilt: -20, Zoom: 30}, c.Positions())
}

func TestUpdateSpeedFloor(t *testing.T) {
	c, a := newTestController(t)
	a.pan.EXPECT().SetAcceleration(uint32(10000)).Return(nil)
	a.pan.EXPECT().SetSpeedInHz(uint32(MinSpeedHz)).Return(nil)
	a.pan.EXPECT().RunBackward().Return(nil)
	expectIdle(a.tilt)
	expectIdle(a.zoom)
	expectPositions(a, Positions{})

	require.NoError(t, c.Update(input.Intent{Pan: -0.02}))
}

func TestUpdateBelowThresholdStops(t *testing.T) {
	for _, v := range []float64{0, 0.005, -0.005, 0.0099, -0.0099} {
		t.Run(fmt.Sprintf("%v", v), func(t *testing.T) {
			c, a := newTestController(t)
			// running axes get a graceful stop, never a run command
			a.pan.EXPECT().IsRunning().Return(true, nil)
			a.pan.EXPECT().StopMove().Return(nil)
			a.tilt.EXPECT().IsRunning().Return(true, nil)
			a.tilt.EXPECT().StopMove().Return(nil)
			expectIdle(a.zoom)
			expectPositions(a, Positions{})

			require.NoError(t, c.Update(input.Intent{Pan: v, Tilt: -v, Zoom: v}))
		})
	}
}

func TestUpdateRunningUnknownStops(t *testing.T) {
	c, a := newTestController(t)
	a.pan.EXPECT().IsRunning().Return(false, fmt.Errorf("link down"))
	a.pan.EXPECT().StopMove().Return(nil)
	expectIdle(a.tilt)
	expectIdle(a.zoom)
	expectPositions(a, Positions{})

	err := c.Update(input.Intent{})
	require.ErrorContains(t, err, "pan stop: link down")
}

func TestUpdateKeepsCacheOnReadFailure(t *testing.T) {
	c, a := newTestController(t)
	expectIdle(a.pan)
	expectIdle(a.tilt)
	expectIdle(a.zoom)
	expectPositions(a, Positions{Pan: 1, Tilt: 2, Zoom: 3})
	require.NoError(t, c.Update(input.Intent{}))

	expectIdle(a.pan)
	expectIdle(a.tilt)
	expectIdle(a.zoom)
	a.pan.EXPECT().CurrentPosition().Return(int32(100), nil)
	a.tilt.EXPECT().CurrentPosition().Return(int32(0), fmt.Errorf("timeout"))
	a.zoom.EXPECT().CurrentPosition().Return(int32(300), nil)
	err := c.Update(input.Intent{})
	require.Error(t, err)
	require.Equal(t, Positions{Pan: 100, Tilt: 2, Zoom: 300}, c.Positions())
}

func TestUpdateCommandsAllAxesOnFailure(t *testing.T) {
	c, a := newTestController(t)
	a.pan.EXPECT().SetAcceleration(uint32(10000)).Return(fmt.Errorf("nak"))
	a.tilt.EXPECT().SetAcceleration(uint32(10000)).Return(nil)
	a.tilt.EXPECT().SetSpeedInHz(uint32(6000)).Return(nil)
	a.tilt.EXPECT().RunForward().Return(nil)
	expectIdle(a.zoom)
	expectPositions(a, Positions{})

	err := c.Update(input.Intent{Pan: 1, Tilt: 1})
	require.ErrorContains(t, err, "pan acceleration: nak")
}

func TestStopAll(t *testing.T) {
	c, a := newTestController(t)
	for _, m := range []*MockAxis{a.pan, a.tilt, a.zoom} {
		gomock.InOrder(
			m.EXPECT().ForceStop().Return(nil),
			m.EXPECT().DisableOutputs().Return(nil),
		)
	}
	require.NoError(t, c.StopAll())
}

func TestResetEncoders(t *testing.T) {
	c, a := newTestController(t)
	expectIdle(a.pan)
	expectIdle(a.tilt)
	expectIdle(a.zoom)
	expectPositions(a, Positions{Pan: 5, Tilt: 6, Zoom: 7})
	require.NoError(t, c.Update(input.Intent{}))

	a.pan.EXPECT().SetCurrentPosition(int32(0)).Return(nil)
	a.tilt.EXPECT().SetCurrentPosition(int32(0)).Return(nil)
	a.zoom.EXPECT().SetCurrentPosition(int32(0)).Return(nil)
	require.NoError(t, c.ResetEncoders())
	require.Equal(t, Positions{}, c.Positions())
}

func TestMoveToPresetNotCancelledByIdleStick(t *testing.T) {
	c, a := newTestController(t)
	target := Positions{Pan: 1200, Tilt: -300, Zoom: 50}
	a.pan.EXPECT().MoveTo(target.Pan).Return(nil)
	a.tilt.EXPECT().MoveTo(target.Tilt).Return(nil)
	a.zoom.EXPECT().MoveTo(target.Zoom).Return(nil)
	require.NoError(t, c.MoveToPreset(target))

	// axes still travelling: no stop for a centered stick
	a.pan.EXPECT().IsRunning().Return(true, nil)
	a.tilt.EXPECT().IsRunning().Return(true, nil)
	a.zoom.EXPECT().IsRunning().Return(false, nil)
	expectPositions(a, Positions{Pan: 600, Tilt: -150, Zoom: 50})
	require.NoError(t, c.Update(input.Intent{}))

	// a jog takes pan over again
	a.pan.EXPECT().SetAcceleration(uint32(10000)).Return(nil)
	a.pan.EXPECT().SetSpeedInHz(uint32(6000)).Return(nil)
	a.pan.EXPECT().RunForward().Return(nil)
	a.tilt.EXPECT().IsRunning().Return(true, nil)
	expectIdle(a.zoom)
	expectPositions(a, Positions{Pan: 700, Tilt: -200, Zoom: 50})
	require.NoError(t, c.Update(input.Intent{Pan: 1}))

	// after the jog pan is back in velocity mode and gets stopped
	a.pan.EXPECT().IsRunning().Return(true, nil)
	a.pan.EXPECT().StopMove().Return(nil)
	a.tilt.EXPECT().IsRunning().Return(false, nil)
	expectIdle(a.zoom)
	expectPositions(a, Positions{Pan: 800, Tilt: -300, Zoom: 50})
	require.NoError(t, c.Update(input.Intent{}))
}

func TestStopAllClearsSeek(t *testing.T) {
	c, a := newTestController(t)
	a.pan.EXPECT().MoveTo(int32(1)).Return(nil)
	a.tilt.EXPECT().MoveTo(int32(2)).Return(nil)
	a.zoom.EXPECT().MoveTo(int32(3)).Return(fmt.Errorf("busy"))
	require.ErrorContains(t, c.MoveToPreset(Positions{Pan: 1, Tilt: 2, Zoom: 3}), "zoom move: busy")

	for _, m := range []*MockAxis{a.pan, a.tilt, a.zoom} {
		m.EXPECT().ForceStop().Return(nil)
		m.EXPECT().DisableOutputs().Return(nil)
	}
	require.NoError(t, c.StopAll())

	for _, m := range []*MockAxis{a.pan, a.tilt, a.zoom} {
		m.EXPECT().IsRunning().Return(true, nil)
		m.EXPECT().StopMove().Return(nil)
	}
	expectPositions(a, Positions{})
	require.NoError(t, c.Update(input.Intent{}))
}

func TestConfigValidate(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Validate())

	c.Zoom.MaxSpeedHz = 100
	require.EqualError(t, c.Validate(), "invalid zoom config: max_speed_hz must be at least 200")

	c = DefaultConfig()
	c.Tilt.Pins.Step = c.Pan.Pins.Step
	require.EqualError(t, c.Validate(), "step pins must be distinct")

	c = DefaultConfig()
	c.Pan.Acceleration = 0
	require.Error(t, c.Validate())
}

func TestPositionsString(t *testing.T) {
	require.Equal(t, "pan=1 tilt=-2 zoom=3", Positions{Pan: 1, Tilt: -2, Zoom: 3}.String())
}
