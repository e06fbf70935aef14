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
Package stepper talks to a stepper driver board over a serial line.

Every request is a single line in curly braces, every answer a single line in
square brackets, both terminated by CRLF:

	{ATTACH 25}       -> [=0]
	{0 SPEED 6000}    -> [=OK]
	{0 POS?}          -> [=-1200]
	{7 RUN?}          -> [!no such stepper]
	{SYNC 4}          -> [=SYNC 4]

Axis commands carry the id handed out by ATTACH. Answers carry no tag, so after
a read failure the link no longer knows which request the next line belongs to.
It then sends SYNC with a fresh token and drops every line up to the echo
before issuing the next request.
*/
package stepper

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/facebook/ptzrig/motion"
)

const (
	cmdInit    string = "{INIT}"
	cmdVersion string = "{VERSION?}"
	cmdAttach  string = "{ATTACH %d}"
	cmdSync    string = "{SYNC %d}"
	ansOK      string = "OK"
	ansSync    string = "[=SYNC %d]"

	maxAnswer = 256
	// lines dropped while resyncing before giving up
	maxStale  = 16
)

// Errors returned by the Link
var (
	ErrTimeout = errors.New("stepper board did not answer in time")
	ErrFormat  = errors.New("malformed answer from stepper board")
	ErrDevice  = errors.New("stepper board reported an error")
	ErrSync    = errors.New("stepper board out of sync")
)

// Config of the serial link
type Config struct {
	Device      string        `yaml:"device"`
	BaudRate    int           `yaml:"baud_rate"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// DefaultConfig returns Config initialized with default values
func DefaultConfig() Config {
	return Config{
		Device:      "/dev/ttyUSB0",
		BaudRate:    115200,
		ReadTimeout: 200 * time.Millisecond,
	}
}

// Validate Config is sane
func (c *Config) Validate() error {
	if c.Device == "" {
		return fmt.Errorf("device must be set")
	}
	if c.BaudRate <= 0 {
		return fmt.Errorf("baud_rate must be greater than zero")
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read_timeout must be greater than zero")
	}
	return nil
}

// inputFlusher drops whatever the OS has buffered on the receive side.
// serial.Port implements it.
type inputFlusher interface {
	ResetInputBuffer() error
}

// Link is a command/answer channel to the board. It implements motion.Engine.
type Link struct {
	sync.Mutex
	rw      io.ReadWriter
	closer  io.Closer
	pending []byte
	desync  bool
	token   uint32
}

// Open opens the serial port and initializes the board
func Open(cfg *Config) (*Link, error) {
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
	}
	port, err := serial.Open(cfg.Device, mode)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", cfg.Device, err)
	}
	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		port.Close()
		return nil, err
	}
	l := NewLink(port)
	l.closer = port
	if err := l.Init(); err != nil {
		port.Close()
		return nil, err
	}
	return l, nil
}

// NewLink wraps an already open channel. A Read returning no data counts as a timeout.
func NewLink(rw io.ReadWriter) *Link {
	return &Link{rw: rw}
}

// Close closes the serial port
func (l *Link) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func (l *Link) readResult() (string, error) {
	buff := make([]byte, maxAnswer)
	for {
		if i := bytes.Index(l.pending, []byte("\r\n")); i >= 0 {
			res := string(l.pending[:i])
			l.pending = l.pending[i+2:]
			return res, nil
		}
		if len(l.pending) > maxAnswer {
			l.pending = nil
			return "", fmt.Errorf("%w: answer longer than %d bytes", ErrFormat, maxAnswer)
		}
		n, err := l.rw.Read(buff)
		if err != nil {
			return "", err
		}
		if n == 0 {
			l.pending = nil
			return "", ErrTimeout
		}
		l.pending = append(l.pending, buff[:n]...)
	}
}

// parseAnswer strips the brackets off an answer and returns its value
func parseAnswer(res string) (string, error) {
	if len(res) < 3 || res[0] != '[' || res[len(res)-1] != ']' {
		return "", fmt.Errorf("%w: %q", ErrFormat, res)
	}
	body := res[2 : len(res)-1]
	switch res[1] {
	case '=':
		return body, nil
	case '!':
		return "", fmt.Errorf("%w: %s", ErrDevice, body)
	}
	return "", fmt.Errorf("%w: %q", ErrFormat, res)
}

// flush drops buffered input, answers to earlier commands are stale
func (l *Link) flush() error {
	l.pending = nil
	if f, ok := l.rw.(inputFlusher); ok {
		return f.ResetInputBuffer()
	}
	return nil
}

// resync drops answers still in flight for earlier requests
func (l *Link) resync() error {
	l.token++
	if _, err := fmt.Fprintf(l.rw, cmdSync+"\r\n", l.token); err != nil {
		return err
	}
	want := fmt.Sprintf(ansSync, l.token)
	for i := 0; i < maxStale; i++ {
		res, err := l.readResult()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSync, err)
		}
		if res == want {
			l.desync = false
			return nil
		}
	}
	return fmt.Errorf("%w: no echo for token %d", ErrSync, l.token)
}

func (l *Link) cmdResult(cmd string) (string, error) {
	l.Lock()
	defer l.Unlock()
	if err := l.flush(); err != nil {
		return "", fmt.Errorf("%s: flushing input: %w", cmd, err)
	}
	if l.desync {
		if err := l.resync(); err != nil {
			return "", fmt.Errorf("%s: %w", cmd, err)
		}
	}
	if _, err := l.rw.Write([]byte(cmd + "\r\n")); err != nil {
		return "", err
	}
	res, err := l.readResult()
	if err != nil {
		// the answer may still show up later
		l.desync = true
		return "", fmt.Errorf("%s: %w", cmd, err)
	}
	v, err := parseAnswer(res)
	if err != nil {
		return "", fmt.Errorf("%s: %w", cmd, err)
	}
	return v, nil
}

func (l *Link) cmdOK(cmd string) error {
	v, err := l.cmdResult(cmd)
	if err != nil {
		return err
	}
	if v != ansOK {
		return fmt.Errorf("%s: %w: expected %s, got %q", cmd, ErrFormat, ansOK, v)
	}
	return nil
}

// Init resets the board, detaching all steppers
func (l *Link) Init() error {
	return l.cmdOK(cmdInit)
}

// Version returns the board firmware version string
func (l *Link) Version() (string, error) {
	return l.cmdResult(cmdVersion)
}

// Attach binds a stepper to stepPin and returns its handle
func (l *Link) Attach(stepPin uint8) (motion.Axis, error) {
	v, err := l.cmdResult(fmt.Sprintf(cmdAttach, stepPin))
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseUint(v, 10, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: stepper id %q", ErrFormat, v)
	}
	return &Axis{link: l, id: uint8(id)}, nil
}

// Axis is a single stepper attached on a Link
type Axis struct {
	link *Link
	id   uint8
}

// ID assigned by the board
func (a *Axis) ID() uint8 {
	return a.id
}

func (a *Axis) cmd(verb string, args ...any) string {
	parts := []string{strconv.Itoa(int(a.id)), verb}
	for _, arg := range args {
		parts = append(parts, fmt.Sprint(arg))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

func (a *Axis) do(verb string, args ...any) error {
	return a.link.cmdOK(a.cmd(verb, args...))
}

func boolArg(b bool) int {
	if b {
		return 1
	}
	return 0
}

// SetDirectionPin implements motion.Axis
func (a *Axis) SetDirectionPin(pin uint8) error { return a.do("DIR", pin) }

// SetEnablePin implements motion.Axis
func (a *Axis) SetEnablePin(pin uint8) error { return a.do("ENABLE", pin) }

// SetAutoEnable implements motion.Axis
func (a *Axis) SetAutoEnable(enable bool) error { return a.do("AUTOEN", boolArg(enable)) }

// SetCurrentPosition implements motion.Axis
func (a *Axis) SetCurrentPosition(pos int32) error { return a.do("SETPOS", pos) }

// SetAcceleration implements motion.Axis
func (a *Axis) SetAcceleration(accel uint32) error { return a.do("ACCEL", accel) }

// SetSpeedInHz implements motion.Axis
func (a *Axis) SetSpeedInHz(speed uint32) error { return a.do("SPEED", speed) }

// RunForward implements motion.Axis
func (a *Axis) RunForward() error { return a.do("RUNF") }

// RunBackward implements motion.Axis
func (a *Axis) RunBackward() error { return a.do("RUNB") }

// StopMove implements motion.Axis
func (a *Axis) StopMove() error { return a.do("STOP") }

// ForceStop implements motion.Axis
func (a *Axis) ForceStop() error { return a.do("FSTOP") }

// DisableOutputs implements motion.Axis
func (a *Axis) DisableOutputs() error { return a.do("DISABLE") }

// MoveTo implements motion.Axis
func (a *Axis) MoveTo(pos int32) error { return a.do("MOVE", pos) }

// CurrentPosition implements motion.Axis
func (a *Axis) CurrentPosition() (int32, error) {
	cmd := a.cmd("POS?")
	v, err := a.link.cmdResult(cmd)
	if err != nil {
		return 0, err
	}
	pos, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: position %q", cmd, ErrFormat, v)
	}
	return int32(pos), nil
}

// IsRunning implements motion.Axis
func (a *Axis) IsRunning() (bool, error) {
	cmd := a.cmd("RUN?")
	v, err := a.link.cmdResult(cmd)
	if err != nil {
		return false, err
	}
	switch v {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, fmt.Errorf("%s: %w: running flag %q", cmd, ErrFormat, v)
}
