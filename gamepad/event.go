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
Package gamepad reads a game controller through the Linux joystick API
(/dev/input/jsN) and turns its state into input snapshots.

The kernel delivers fixed size events, one per axis move or button change:

	time uint32 | value int16 | type uint8 | number uint8

in host byte order. Right after open it replays the current state of every
control with the init bit set in type.
*/
package gamepad

import (
	"encoding/binary"
	"fmt"
)

const eventSize = 8

// Event types
const (
	EventButton uint8 = 0x01
	EventAxis   uint8 = 0x02
	EventInit   uint8 = 0x80
)

// Event is a single joystick event
type Event struct {
	Time   uint32 // ms, kernel clock
	Value  int16
	Type   uint8
	Number uint8
}

// Kind returns the event type without the init bit
func (e *Event) Kind() uint8 {
	return e.Type &^ EventInit
}

// Initial reports whether the event replays state after open
func (e *Event) Initial() bool {
	return e.Type&EventInit != 0
}

// UnmarshalBinary parses []byte and populates struct fields
func (e *Event) UnmarshalBinary(b []byte) error {
	if len(b) < eventSize {
		return fmt.Errorf("not enough data to decode Event: need %d, have %d", eventSize, len(b))
	}
	e.Time = binary.NativeEndian.Uint32(b[0:])
	e.Value = int16(binary.NativeEndian.Uint16(b[4:]))
	e.Type = b[6]
	e.Number = b[7]
	return nil
}

// MarshalBinary converts the event to []byte
func (e *Event) MarshalBinary() ([]byte, error) {
	b := make([]byte, eventSize)
	binary.NativeEndian.PutUint32(b[0:], e.Time)
	binary.NativeEndian.PutUint16(b[4:], uint16(e.Value))
	b[6] = e.Type
	b[7] = e.Number
	return b, nil
}
