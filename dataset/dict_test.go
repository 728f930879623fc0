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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDict(t *testing.T) {
	dict := NewDict()
	assert.Equal(t, int32(0), dict.Add("a"))
	assert.Equal(t, int32(1), dict.Add("b"))
	assert.Equal(t, int32(1), dict.Add("b"))
	assert.Equal(t, int32(2), dict.Add("c"))
	assert.Equal(t, int32(2), dict.Add("c"))
	assert.Equal(t, int32(2), dict.Add("c"))
	assert.Equal(t, int32(3), dict.Count())
	assert.Equal(t, 1, dict.Freq(0))
	assert.Equal(t, 2, dict.Freq(1))
	assert.Equal(t, 3, dict.Freq(2))
	assert.Equal(t, 0, dict.Freq(3))
	assert.Equal(t, Known(1), dict.Id("b"))
	assert.Equal(t, Unknown, dict.Id("d"))
	assert.Equal(t, int32(3), dict.Count())
	s, ok := dict.String(2)
	assert.True(t, ok)
	assert.Equal(t, "c", s)
	_, ok = dict.String(NotId)
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, dict.ToList())
}

func TestNewDictFromList(t *testing.T) {
	dict := NewDictFromList([]string{"x", "y"})
	assert.Equal(t, Known(0), dict.Id("x"))
	assert.Equal(t, Known(1), dict.Id("y"))
	assert.Equal(t, 0, dict.Freq(0))
}

func TestIndex(t *testing.T) {
	i, ok := Known(3).Get()
	assert.True(t, ok)
	assert.Equal(t, int32(3), i)
	_, ok = Unknown.Get()
	assert.False(t, ok)
	assert.Equal(t, NotId, Unknown.Raw())
	assert.Equal(t, int32(3), Known(3).Raw())
	assert.Equal(t, Unknown, FromRaw(NotId))
	assert.Equal(t, Known(0), FromRaw(0))
}
