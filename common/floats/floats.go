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

import "github.com/chewxy/math32"

// MulConstTo multiplies a vector and a const, then saves the result in dst: dst = a * c
func MulConstTo(a []float32, c float32, dst []float32) {
	if len(a) != len(dst) {
		panic("floats: slice lengths do not match")
	}
	for i := range a {
		dst[i] = a[i] * c
	}
}

// MulConstAdd multiplies a vector and a const, then adds to dst: dst = dst + a * c
func MulConstAdd(a []float32, c float32, dst []float32) {
	if len(a) != len(dst) {
		panic("floats: slice lengths do not match")
	}
	for i := range a {
		dst[i] += a[i] * c
	}
}

// Dot two vectors.
func Dot(a, b []float32) (ret float32) {
	if len(a) != len(b) {
		panic("floats: slice lengths do not match")
	}
	for i := range a {
		ret += a[i] * b[i]
	}
	return
}

// SquaredNorm returns the squared L2 norm of a vector.
func SquaredNorm(a []float32) float32 {
	return Dot(a, a)
}

// Clip restricts x to the closed interval [low, high].
func Clip(x, low, high float32) float32 {
	if x > high {
		return high
	}
	if x < low {
		return low
	}
	return x
}

// IsFinite returns false for NaN and infinities.
func IsFinite(x float32) bool {
	return !math32.IsNaN(x) && !math32.IsInf(x, 0)
}
