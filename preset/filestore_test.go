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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/facebook/ptzrig/motion"
)

func TestFileStoreMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.bin")
	f := NewFileStore(path)
	require.NoError(t, f.Init(Capacity))
	b, err := f.Read(0, Capacity)
	require.NoError(t, err)
	require.Equal(t, make([]byte, Capacity), b)
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestFileStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.bin")
	p := motion.Positions{Pan: 42, Tilt: -42, Zoom: 4242}

	s := New(NewFileStore(path), nil)
	require.NoError(t, s.Begin())
	require.NoError(t, s.Save(5, p))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, Capacity)

	s = New(NewFileStore(path), nil)
	require.NoError(t, s.Begin())
	e, err := s.Lookup(5)
	require.NoError(t, err)
	require.Equal(t, StatusValid, e.Status)
	require.Equal(t, p, e.Positions)

	// no temp files left behind
	files, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, files, 1)
}

func TestFileStoreShortFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.bin")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o644))
	f := NewFileStore(path)
	require.NoError(t, f.Init(Capacity))
	b, err := f.Read(0, 4)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 0}, b)
}

func TestFileStoreBounds(t *testing.T) {
	f := NewFileStore(filepath.Join(t.TempDir(), "presets.bin"))
	_, err := f.Read(0, 1)
	require.Error(t, err)
	require.Error(t, f.Commit())

	require.NoError(t, f.Init(16))
	_, err = f.Read(8, 9)
	require.Error(t, err)
	require.Error(t, f.Write(-1, []byte{1}))
	require.Error(t, f.Init(0))
}

func TestFileStoreUnreadable(t *testing.T) {
	dir := t.TempDir()
	s := New(NewFileStore(dir), nil)
	require.ErrorIs(t, s.Begin(), ErrDisabled)
}
