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

// Dict assigns dense indices to identifiers in first-encountered order.
type Dict struct {
	si  map[string]int32
	is  []string
	cnt []int
}

func NewDict() *Dict {
	return &Dict{si: map[string]int32{}}
}

// NewDictFromList creates a dictionary whose i-th identifier is a[i].
func NewDictFromList(a []string) *Dict {
	d := NewDict()
	for _, s := range a {
		d.NotCount(s)
	}
	return d
}

func (d *Dict) Count() int32 {
	return int32(len(d.is))
}

// Add returns the index of s, assigning the next unused index if s is new.
func (d *Dict) Add(s string) int32 {
	if y, ok := d.si[s]; ok {
		d.cnt[y]++
		return y
	}
	y := int32(len(d.is))
	d.si[s] = y
	d.is = append(d.is, s)
	d.cnt = append(d.cnt, 1)
	return y
}

// NotCount is Add without counting frequency.
func (d *Dict) NotCount(s string) int32 {
	if y, ok := d.si[s]; ok {
		return y
	}
	y := int32(len(d.is))
	d.si[s] = y
	d.is = append(d.is, s)
	d.cnt = append(d.cnt, 0)
	return y
}

// Id looks up s without modifying the dictionary.
func (d *Dict) Id(s string) Index {
	if y, ok := d.si[s]; ok {
		return Known(y)
	}
	return Unknown
}

func (d *Dict) String(id int32) (string, bool) {
	if id < 0 || int(id) >= len(d.is) {
		return "", false
	}
	return d.is[id], true
}

// Freq returns how many times an identifier was added.
func (d *Dict) Freq(id int32) int {
	if id < 0 || int(id) >= len(d.cnt) {
		return 0
	}
	return d.cnt[id]
}

// ToList returns identifiers ordered by index.
func (d *Dict) ToList() []string {
	return d.is
}
