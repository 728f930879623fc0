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

package floats

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func TestMulConstTo(t *testing.T) {
	a := []float32{1, 2, 3, 4}
	dst := make([]float32, 4)
	MulConstTo(a, 2, dst)
	assert.Equal(t, []float32{2, 4, 6, 8}, dst)
	assert.Panics(t, func() { MulConstTo(nil, 1, dst) })
}

func TestMulConstAdd(t *testing.T) {
	a := []float32{1, 2, 3, 4}
	dst := []float32{1, 1, 1, 1}
	MulConstAdd(a, 2, dst)
	assert.Equal(t, []float32{3, 5, 7, 9}, dst)
	assert.Panics(t, func() { MulConstAdd(nil, 1, dst) })
}

func TestDot(t *testing.T) {
	a := []float32{1, 2, 3, 4}
	b := []float32{5, 6, 7, 8}
	assert.Equal(t, float32(70), Dot(a, b))
	assert.Equal(t, float32(30), SquaredNorm(a))
	assert.Panics(t, func() { Dot([]float32{1}, nil) })
}

func TestClip(t *testing.T) {
	assert.Equal(t, float32(5), Clip(5.7, 1, 5))
	assert.Equal(t, float32(1), Clip(0.3, 1, 5))
	assert.Equal(t, float32(3.2), Clip(3.2, 1, 5))
}

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite(1))
	assert.False(t, IsFinite(math32.NaN()))
	assert.False(t, IsFinite(math32.Inf(1)))
	assert.False(t, IsFinite(math32.Inf(-1)))
}
