// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dataset

// NotId represents an identifier absent from a dictionary.
const NotId int32 = -1

// Index is a dense index that may be unknown. It replaces the bare NotId
// sentinel everywhere outside of the numeric loops.
type Index struct {
	value int32
	known bool
}

// Known wraps a dense index.
func Known(i int32) Index {
	return Index{value: i, known: true}
}

// Unknown is the index of an identifier absent from training data.
var Unknown = Index{}

// Get returns the index and whether it is known.
func (i Index) Get() (int32, bool) {
	return i.value, i.known
}

// Raw collapses the index into an int32, NotId if unknown.
func (i Index) Raw() int32 {
	if !i.known {
		return NotId
	}
	return i.value
}

// FromRaw is the inverse of Raw.
func FromRaw(i int32) Index {
	if i < 0 {
		return Unknown
	}
	return Known(i)
}
