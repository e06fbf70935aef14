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

package input

import (
	"fmt"
	"strings"
)

// Raw button bits as reported by the controller transport
const (
	MaskA         uint32 = 1 << 0
	MaskB         uint32 = 1 << 1
	MaskX         uint32 = 1 << 2
	MaskY         uint32 = 1 << 3
	MaskShoulderL uint32 = 1 << 4
	MaskShoulderR uint32 = 1 << 5
	MaskThumbL    uint32 = 1 << 8
	MaskThumbR    uint32 = 1 << 9
	MaskStart     uint32 = 1 << 12
)

// Value ranges of the analog inputs
const (
	AxisRange    = 512
	TriggerRange = 1023
)

// Buttons holds named button flags, derived once per tick from the raw mask
type Buttons struct {
	A         bool
	B         bool
	X         bool
	Y         bool
	ShoulderL bool
	ShoulderR bool
	Start     bool
	ThumbL    bool
	ThumbR    bool
}

// ButtonsFromMask decodes raw transport bits into named flags
func ButtonsFromMask(mask uint32) Buttons {
	return Buttons{
		A:         mask&MaskA != 0,
		B:         mask&MaskB != 0,
		X:         mask&MaskX != 0,
		Y:         mask&MaskY != 0,
		ShoulderL: mask&MaskShoulderL != 0,
		ShoulderR: mask&MaskShoulderR != 0,
		Start:     mask&MaskStart != 0,
		ThumbL:    mask&MaskThumbL != 0,
		ThumbR:    mask&MaskThumbR != 0,
	}
}

// Mask encodes flags back into the raw transport layout
func (b Buttons) Mask() uint32 {
	var m uint32
	set := func(on bool, bit uint32) {
		if on {
			m |= bit
		}
	}
	set(b.A, MaskA)
	set(b.B, MaskB)
	set(b.X, MaskX)
	set(b.Y, MaskY)
	set(b.ShoulderL, MaskShoulderL)
	set(b.ShoulderR, MaskShoulderR)
	set(b.Start, MaskStart)
	set(b.ThumbL, MaskThumbL)
	set(b.ThumbR, MaskThumbR)
	return m
}

func (b Buttons) String() string {
	names := []string{}
	add := func(on bool, name string) {
		if on {
			names = append(names, name)
		}
	}
	add(b.A, "A")
	add(b.B, "B")
	add(b.X, "X")
	add(b.Y, "Y")
	add(b.ShoulderL, "L1")
	add(b.ShoulderR, "R1")
	add(b.Start, "START")
	add(b.ThumbL, "L3")
	add(b.ThumbR, "R3")
	return "[" + strings.Join(names, " ") + "]"
}

// Snapshot is a single reading of the controller, rebuilt every tick
type Snapshot struct {
	Connected    bool
	LeftX        int16
	LeftY        int16
	RightX       int16
	RightY       int16
	TriggerLeft  uint16
	TriggerRight uint16
	Buttons      Buttons
	Battery      uint8
}

func (s Snapshot) String() string {
	if !s.Connected {
		return "disconnected"
	}
	return fmt.Sprintf("L(%d,%d) R(%d,%d) T(%d,%d) %s bat=%d",
		s.LeftX, s.LeftY, s.RightX, s.RightY, s.TriggerLeft, s.TriggerRight, s.Buttons, s.Battery)
}
