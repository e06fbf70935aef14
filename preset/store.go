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

package preset

import (
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/facebook/ptzrig/motion"
)

// Capacity is the number of bytes the store claims on the byte store
const Capacity = MaxSlots * RecordSize

// Errors returned by the Store
var (
	ErrDisabled = errors.New("presets disabled")
	ErrEmpty    = errors.New("preset slot is empty")
	ErrCorrupt  = errors.New("preset slot checksum mismatch")
	ErrSlot     = fmt.Errorf("preset slot must be in [0, %d)", MaxSlots)
)

// ByteStore is a small non-volatile memory addressed by offset.
// Writes are only durable after Commit.
type ByteStore interface {
	Init(capacity int) error
	Read(offset, size int) ([]byte, error)
	Write(offset int, b []byte) error
	Commit() error
}

// Mover starts an absolute move to the given positions
type Mover interface {
	MoveToPreset(target motion.Positions) error
}

// Status of a preset slot
type Status uint8

// All the statuses a slot can be in
const (
	StatusEmpty Status = iota
	StatusCorrupt
	StatusValid
)

func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "EMPTY"
	case StatusCorrupt:
		return "CORRUPT"
	case StatusValid:
		return "VALID"
	}
	return "UNSUPPORTED"
}

// Entry is the result of looking up a slot. Positions are only meaningful for StatusValid.
type Entry struct {
	Slot      int
	Status    Status
	Positions motion.Positions
}

// Err maps a non valid status to its error
func (e Entry) Err() error {
	switch e.Status {
	case StatusEmpty:
		return ErrEmpty
	case StatusCorrupt:
		return ErrCorrupt
	}
	return nil
}

// Store reads and writes preset records on a ByteStore
type Store struct {
	bs      ByteStore
	l       log.FieldLogger
	enabled bool
}

// New creates a Store. Presets stay disabled until Begin succeeds.
func New(bs ByteStore, l log.FieldLogger) *Store {
	if l == nil {
		discard := log.New()
		discard.SetOutput(io.Discard)
		l = discard
	}
	return &Store{bs: bs, l: l}
}

// Begin initializes the byte store. On failure presets are disabled and the error is returned.
func (s *Store) Begin() error {
	s.enabled = false
	if s.bs == nil {
		s.l.Warning("no byte store - presets disabled")
		return ErrDisabled
	}
	if err := s.bs.Init(Capacity); err != nil {
		s.l.Warningf("byte store init failed - presets disabled: %v", err)
		return fmt.Errorf("%w: %w", ErrDisabled, err)
	}
	s.enabled = true
	return nil
}

// Enabled reports whether the byte store is usable
func (s *Store) Enabled() bool {
	return s.enabled
}

func (s *Store) check(slot int) error {
	if !s.enabled {
		return ErrDisabled
	}
	if slot < 0 || slot >= MaxSlots {
		return fmt.Errorf("%w: got %d", ErrSlot, slot)
	}
	return nil
}

func (s *Store) write(slot int, r *Record) error {
	b, err := r.MarshalBinary()
	if err != nil {
		return err
	}
	prev, err := s.bs.Read(slot*RecordSize, RecordSize)
	if err != nil {
		return fmt.Errorf("reading slot %d: %w", slot, err)
	}
	prev = append([]byte(nil), prev...)
	if err := s.bs.Write(slot*RecordSize, b); err != nil {
		return fmt.Errorf("writing slot %d: %w", slot, err)
	}
	if err := s.bs.Commit(); err != nil {
		s.l.Warningf("commit failed for preset %d: %v", slot, err)
		// the image must not hold a record that never reached storage
		if rerr := s.bs.Write(slot*RecordSize, prev); rerr != nil {
			err = errors.Join(err, rerr)
		}
		return fmt.Errorf("committing slot %d: %w", slot, err)
	}
	return nil
}

// Save stores positions into slot
func (s *Store) Save(slot int, p motion.Positions) error {
	if err := s.check(slot); err != nil {
		return err
	}
	r := NewRecord(p)
	if err := s.write(slot, &r); err != nil {
		return err
	}
	s.l.Infof("saved preset to slot %d: %s", slot, p)
	return nil
}

// Clear wipes slot back to the never written state
func (s *Store) Clear(slot int) error {
	if err := s.check(slot); err != nil {
		return err
	}
	if err := s.write(slot, &Record{}); err != nil {
		return err
	}
	s.l.Infof("cleared preset slot %d", slot)
	return nil
}

// Lookup reads slot and classifies it
func (s *Store) Lookup(slot int) (Entry, error) {
	e := Entry{Slot: slot}
	if err := s.check(slot); err != nil {
		return e, err
	}
	b, err := s.bs.Read(slot*RecordSize, RecordSize)
	if err != nil {
		return e, fmt.Errorf("reading slot %d: %w", slot, err)
	}
	r := &Record{}
	if err := r.UnmarshalBinary(b); err != nil {
		return e, fmt.Errorf("reading slot %d: %w", slot, err)
	}
	switch {
	case r.Checksum == 0:
		e.Status = StatusEmpty
	case !r.Valid():
		e.Status = StatusCorrupt
	default:
		e.Status = StatusValid
		e.Positions = r.Positions
	}
	return e, nil
}

// Recall moves the rig to the positions stored in slot.
// An empty or corrupt slot is logged and no motion is issued.
func (s *Store) Recall(slot int, m Mover) error {
	e, err := s.Lookup(slot)
	if err != nil {
		s.l.Warningf("preset %d recall failed: %v", slot, err)
		return err
	}
	if err := e.Err(); err != nil {
		s.l.Warningf("preset %d invalid or empty: %s", slot, e.Status)
		return err
	}
	return m.MoveToPreset(e.Positions)
}

// Entries looks up every slot
func (s *Store) Entries() ([]Entry, error) {
	entries := make([]Entry, 0, MaxSlots)
	for i := 0; i < MaxSlots; i++ {
		e, err := s.Lookup(i)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// DumpDiagnostics logs every valid slot
func (s *Store) DumpDiagnostics() {
	entries, err := s.Entries()
	if err != nil {
		s.l.Infof("presets: %v", err)
		return
	}
	for _, e := range entries {
		if e.Status == StatusValid {
			s.l.Infof("preset %d: %s", e.Slot, e.Positions)
		}
	}
}
