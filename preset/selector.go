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

// Selector tracks the slot that save and recall operate on
type Selector struct {
	active int
}

// Active slot
func (s *Selector) Active() int {
	return s.active
}

// Next moves to the following slot, wrapping after the last one
func (s *Selector) Next() int {
	s.active = (s.active + 1) % MaxSlots
	return s.active
}

// Prev moves to the preceding slot, wrapping before the first one
func (s *Selector) Prev() int {
	s.active = (s.active + MaxSlots - 1) % MaxSlots
	return s.active
}
