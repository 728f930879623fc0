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

	"github.com/chewxy/math32"
	"github.com/gorse-io/funksvd/base"
	"github.com/gorse-io/funksvd/dataset"
	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	params := &Parameters{
		UserFactor: [][]float32{{1, 0}},
		ItemFactor: [][]float32{{0.5, 1}},
		UserBias:   []float32{0.5},
		ItemBias:   []float32{-0.5},
	}
	rows := dataset.NewRatings(3)
	rows.Append(0, 0, 4)                         // 3 + 0.5 - 0.5 + 0.5 = 3.5
	rows.Append(0, dataset.NotId, 2.5)           // 3 + 0.5 = 3.5
	rows.Append(dataset.NotId, dataset.NotId, 3) // 3
	score := Evaluate(rows, params, 3, 0, 1)
	mse := float32(0.25+1+0) / 3
	assert.InDelta(t, mse, score.Loss, 1e-6)
	assert.InDelta(t, math32.Sqrt(mse), score.RMSE, 1e-6)
	assert.InDelta(t, float32(0.5+1+0)/3, score.MAE, 1e-6)

	// regularization penalty of known entities
	score = Evaluate(rows, params, 3, 0.1, 1)
	userPenalty := float32(0.25 + 1)
	itemPenalty := float32(0.25 + 0.25 + 1)
	assert.InDelta(t, mse+0.1*(2*userPenalty+itemPenalty)/3, score.Loss, 1e-6)
	assert.InDelta(t, math32.Sqrt(mse), score.RMSE, 1e-6)

	// read only
	assert.Equal(t, []float32{0.5}, params.UserBias)
	assert.Equal(t, Score{}, Evaluate(dataset.NewRatings(0), params, 3, 0.1, 1))
}

func TestEvaluate_Jobs(t *testing.T) {
	rng := base.NewRandomGenerator(0)
	params := Initialize(rng, 50, 40, 8, 0, 0.5)
	rows := dataset.NewRatings(20000)
	for i := 0; i < 20000; i++ {
		rows.Append(rng.Int31n(60)-5, rng.Int31n(50)-5, float32(rng.Intn(5)+1))
	}
	for u := range rows.Users {
		if rows.Users[u] < 0 || rows.Users[u] >= 50 {
			rows.Users[u] = dataset.NotId
		}
		if rows.Items[u] < 0 || rows.Items[u] >= 40 {
			rows.Items[u] = dataset.NotId
		}
	}
	expected := Evaluate(rows, params, 3, 0.02, 1)
	assert.Equal(t, expected, Evaluate(rows, params, 3, 0.02, 4))
	assert.Equal(t, expected, Evaluate(rows, params, 3, 0.02, 16))
}

func TestEvaluate_InvalidIndex(t *testing.T) {
	params := Initialize(base.NewRandomGenerator(0), 5, 5, 4, 0, 0.1)
	rows := dataset.NewRatings(10000)
	for i := 0; i < 10000; i++ {
		rows.Append(int32(i%5), int32(i%5), 3)
	}
	// a user index beyond the parameters in the last chunk
	rows.Users[9999] = 7
	for _, jobs := range []int{1, 4} {
		assert.Panics(t, func() { Evaluate(rows, params, 3, 0.02, jobs) }, "jobs = %d", jobs)
	}
}

func TestEarlyStopping(t *testing.T) {
	e := NewEarlyStopping(0.001)
	assert.False(t, e.Append(1.0))
	assert.True(t, e.Append(1.002))
	assert.Equal(t, []float32{math32.Inf(1), 1.0, 1.002}, e.History())

	e = NewEarlyStopping(0.001)
	assert.False(t, e.Append(1.0))
	assert.False(t, e.Append(0.9))
	assert.False(t, e.Append(0.85))
	// improvement smaller than delta
	assert.True(t, e.Append(0.8495))

	// the first value never stops
	e = NewEarlyStopping(1e9)
	assert.False(t, e.Append(100))
	assert.True(t, e.Append(1))
}
