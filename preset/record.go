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
Package preset persists axis positions in checksum guarded slots.

Each slot is a fixed 16 byte record at slot*RecordSize in a byte store:

	checksum uint32 | pan int32 | tilt int32 | zoom int32

all little-endian. The checksum covers the 12 position bytes only. A checksum of
zero marks a slot that was never written.
*/
package preset

import (
	"encoding/binary"
	"fmt"

	"github.com/facebook/ptzrig/motion"
)

const (
	// RecordSize is the size of a single record on the byte store
	RecordSize = 16
	// MaxSlots is how many records the store holds
	MaxSlots = 6

	checksumSeed uint32 = 0xA5A5A5A5
	positionSize        = 12
)

// Record is a single persisted preset
type Record struct {
	Checksum  uint32
	Positions motion.Positions
}

// NewRecord builds a record with a valid checksum over p
func NewRecord(p motion.Positions) Record {
	return Record{Checksum: Checksum(p), Positions: p}
}

// Valid reports whether the record was written and is intact
func (r *Record) Valid() bool {
	return r.Checksum != 0 && r.Checksum == Checksum(r.Positions)
}

func marshalPositions(p motion.Positions, b []byte) {
	binary.LittleEndian.PutUint32(b[0:], uint32(p.Pan))
	binary.LittleEndian.PutUint32(b[4:], uint32(p.Tilt))
	binary.LittleEndian.PutUint32(b[8:], uint32(p.Zoom))
}

// Checksum is a rolling hash over the raw position bytes of p.
// It detects blank or mangled slots, it is not meant to resist tampering.
func Checksum(p motion.Positions) uint32 {
	var b [positionSize]byte
	marshalPositions(p, b[:])
	crc := checksumSeed
	for _, c := range b {
		crc = (crc << 5) ^ (crc >> 27) ^ uint32(c)
	}
	return crc
}

// MarshalBinaryTo marshals the record into b, which must hold RecordSize bytes
func (r *Record) MarshalBinaryTo(b []byte) (int, error) {
	if len(b) < RecordSize {
		return 0, fmt.Errorf("not enough buffer to write Record: need %d, have %d", RecordSize, len(b))
	}
	binary.LittleEndian.PutUint32(b[0:], r.Checksum)
	marshalPositions(r.Positions, b[4:])
	return RecordSize, nil
}

// MarshalBinary converts the record to []byte
func (r *Record) MarshalBinary() ([]byte, error) {
	b := make([]byte, RecordSize)
	_, err := r.MarshalBinaryTo(b)
	return b, err
}

// UnmarshalBinary parses []byte and populates struct fields.
// It does not check the checksum, see Valid.
func (r *Record) UnmarshalBinary(b []byte) error {
	if len(b) < RecordSize {
		return fmt.Errorf("not enough data to decode Record: need %d, have %d", RecordSize, len(b))
	}
	r.Checksum = binary.LittleEndian.Uint32(b[0:])
	r.Positions.Pan = int32(binary.LittleEndian.Uint32(b[4:]))
	r.Positions.Tilt = int32(binary.LittleEndian.Uint32(b[8:]))
	r.Positions.Zoom = int32(binary.LittleEndian.Uint32(b[12:]))
	return nil
}
