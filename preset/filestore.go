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
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore is a ByteStore backed by a regular file.
// The whole image lives in memory, Commit replaces the file atomically.
type FileStore struct {
	path  string
	image []byte
}

// NewFileStore returns a FileStore for path. Nothing is touched before Init.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path of the backing file
func (f *FileStore) Path() string {
	return f.path
}

// Init loads the file, a missing file reads as all zeroes
func (f *FileStore) Init(capacity int) error {
	if capacity <= 0 {
		return fmt.Errorf("capacity must be greater than zero, got %d", capacity)
	}
	f.image = make([]byte, capacity)
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		f.image = nil
		return err
	}
	copy(f.image, data)
	return nil
}

func (f *FileStore) bounds(offset, size int) error {
	if f.image == nil {
		return fmt.Errorf("file store %s is not initialized", f.path)
	}
	if offset < 0 || size < 0 || offset+size > len(f.image) {
		return fmt.Errorf("range [%d, %d) is outside of %d bytes", offset, offset+size, len(f.image))
	}
	return nil
}

// Read returns a copy of size bytes at offset
func (f *FileStore) Read(offset, size int) ([]byte, error) {
	if err := f.bounds(offset, size); err != nil {
		return nil, err
	}
	b := make([]byte, size)
	copy(b, f.image[offset:])
	return b, nil
}

// Write updates the in memory image
func (f *FileStore) Write(offset int, b []byte) error {
	if err := f.bounds(offset, len(b)); err != nil {
		return err
	}
	copy(f.image[offset:], b)
	return nil
}

// Commit writes the image next to the target and renames it into place
func (f *FileStore) Commit() error {
	if f.image == nil {
		return fmt.Errorf("file store %s is not initialized", f.path)
	}
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(f.image); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}
