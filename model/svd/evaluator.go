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
	"context"

	"github.com/chewxy/math32"
	"github.com/gorse-io/funksvd/common/parallel"
	"github.com/gorse-io/funksvd/dataset"
)

const evalChunkSize = 4096

// Score is the validation result of an epoch.
type Score struct {
	Loss float32
	RMSE float32
	MAE  float32
}

type partialScore struct {
	squared  float64
	absolute float64
	penalty  float64
}

// Evaluate computes loss, RMSE and MAE of params on rows. Unknown users or
// items are allowed and predicted by the fallback rule. The loss is the mean
// squared error plus reg times the mean squared norm of the weights touched
// by each rating. Rows are scored in fixed chunks by jobs workers and the
// chunks are reduced in order, so the result doesn't depend on jobs.
func Evaluate(rows *dataset.Ratings, params *Parameters, globalMean, reg float32, jobs int) Score {
	n := rows.Len()
	if n == 0 {
		return Score{}
	}
	chunks := parallel.Ranges(n, evalChunkSize)
	partials := make([]partialScore, len(chunks))
	_ = parallel.For(context.Background(), len(chunks), jobs, func(c int) {
		begin, end := chunks[c].Unpack()
		var partial partialScore
		for j := begin; j < end; j++ {
			userIndex, itemIndex, rating := rows.Get(j)
			residual := rating - params.Predict(globalMean, userIndex, itemIndex)
			partial.squared += float64(residual * residual)
			partial.absolute += float64(math32.Abs(residual))
			partial.penalty += float64(params.penalty(userIndex, itemIndex))
		}
		partials[c] = partial
	})
	var total partialScore
	for _, partial := range partials {
		total.squared += partial.squared
		total.absolute += partial.absolute
		total.penalty += partial.penalty
	}
	mse := float32(total.squared / float64(n))
	return Score{
		Loss: mse + reg*float32(total.penalty/float64(n)),
		RMSE: math32.Sqrt(mse),
		MAE:  float32(total.absolute / float64(n)),
	}
}
