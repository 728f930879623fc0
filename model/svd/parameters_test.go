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

package svd

import (
	"testing"

	"github.com/gorse-io/funksvd/base"
	"github.com/gorse-io/funksvd/dataset"
	"github.com/stretchr/testify/assert"
)

func TestInitialize(t *testing.T) {
	params := Initialize(base.NewRandomGenerator(0), 3, 4, 5, 0, 0.1)
	assert.Equal(t, 3, params.CountUsers())
	assert.Equal(t, 4, params.CountItems())
	assert.Equal(t, 5, params.CountFactors())
	assert.Len(t, params.UserFactor, 3)
	assert.Len(t, params.ItemFactor, 4)
	assert.Equal(t, []float32{0, 0, 0}, params.UserBias)
	assert.Equal(t, []float32{0, 0, 0, 0}, params.ItemBias)
	for _, row := range params.ItemFactor {
		assert.Len(t, row, 5)
	}
	// rows are not aliased
	params.UserFactor[0][0] = 100
	assert.NotEqual(t, float32(100), params.UserFactor[1][0])

	// same seed, same parameters
	a := Initialize(base.NewRandomGenerator(7), 10, 10, 8, 0.5, 0.1)
	b := Initialize(base.NewRandomGenerator(7), 10, 10, 8, 0.5, 0.1)
	assert.Equal(t, a, b)
	c := Initialize(base.NewRandomGenerator(8), 10, 10, 8, 0.5, 0.1)
	assert.NotEqual(t, a, c)
}

func TestInitialize_Distribution(t *testing.T) {
	params := Initialize(base.NewRandomGenerator(0), 1000, 1, 100, 1, 0.1)
	var sum, squared float64
	for _, row := range params.UserFactor {
		for _, v := range row {
			sum += float64(v)
			squared += float64(v) * float64(v)
		}
	}
	n := float64(1000 * 100)
	mean := sum / n
	assert.InDelta(t, 1, mean, 0.01)
	assert.InDelta(t, 0.01, squared/n-mean*mean, 0.001)
}

func TestParameters_Predict(t *testing.T) {
	params := &Parameters{
		UserFactor: [][]float32{{1, 2}},
		ItemFactor: [][]float32{{3, 4}},
		UserBias:   []float32{0.4},
		ItemBias:   []float32{-0.2},
	}
	assert.InDelta(t, 3+0.4-0.2+11, params.Predict(3, dataset.Known(0), dataset.Known(0)), 1e-5)
	assert.InDelta(t, 3.4, params.Predict(3, dataset.Known(0), dataset.Unknown), 1e-5)
	assert.InDelta(t, 2.8, params.Predict(3, dataset.Unknown, dataset.Known(0)), 1e-5)
	assert.Equal(t, float32(3), params.Predict(3, dataset.Unknown, dataset.Unknown))
}

func TestRunEpoch(t *testing.T) {
	params := &Parameters{
		UserFactor: [][]float32{{0.1}},
		ItemFactor: [][]float32{{0.2}},
		UserBias:   []float32{0},
		ItemBias:   []float32{0},
	}
	rows := dataset.NewRatings(1)
	rows.Append(0, 0, 4)
	loss := RunEpoch(rows, params, 3, 0.1, 0.5)
	// e = 4 - (3 + 0.1 * 0.2) = 0.98
	assert.InDelta(t, 0.9604, loss, 1e-5)
	assert.InDelta(t, 0.098, params.UserBias[0], 1e-6)
	assert.InDelta(t, 0.098, params.ItemBias[0], 1e-6)
	// both factors are updated from values before the update
	assert.InDelta(t, 0.1+0.1*(0.98*0.2-0.5*0.1), params.UserFactor[0][0], 1e-6)
	assert.InDelta(t, 0.2+0.1*(0.98*0.1-0.5*0.2), params.ItemFactor[0][0], 1e-6)
}

func TestRunEpoch_Order(t *testing.T) {
	newParams := func() *Parameters {
		return Initialize(base.NewRandomGenerator(0), 2, 2, 4, 0, 0.1)
	}
	rows := dataset.NewRatings(3)
	rows.Append(0, 0, 5)
	rows.Append(1, 1, 1)
	rows.Append(0, 1, 3)
	a, b := newParams(), newParams()
	RunEpoch(rows, a, 3, 0.05, 0.02)
	RunEpoch(rows, b, 3, 0.05, 0.02)
	assert.Equal(t, a, b)
	// a different order gives different parameters
	reversed := dataset.NewRatings(3)
	for i := rows.Len() - 1; i >= 0; i-- {
		reversed.Append(rows.Users[i], rows.Items[i], rows.Ratings[i])
	}
	c := newParams()
	RunEpoch(reversed, c, 3, 0.05, 0.02)
	assert.NotEqual(t, a, c)
}

func TestRunEpoch_InvalidIndex(t *testing.T) {
	params := Initialize(base.NewRandomGenerator(0), 1, 1, 2, 0, 0.1)
	rows := dataset.NewRatings(1)
	rows.Append(dataset.NotId, 0, 4)
	assert.Panics(t, func() { RunEpoch(rows, params, 3, 0.1, 0.1) })
	rows = dataset.NewRatings(1)
	rows.Append(0, 1, 4)
	assert.Panics(t, func() { RunEpoch(rows, params, 3, 0.1, 0.1) })
	assert.Zero(t, RunEpoch(dataset.NewRatings(0), params, 3, 0.1, 0.1))
}
