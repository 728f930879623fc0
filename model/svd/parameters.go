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
	"fmt"

	"github.com/gorse-io/funksvd/base"
	"github.com/gorse-io/funksvd/common/floats"
	"github.com/gorse-io/funksvd/dataset"
)

// Parameters are the learned weights of a biased matrix factorization.
// Every row of a factor matrix is owned by one entity.
type Parameters struct {
	UserFactor [][]float32 // p_u
	ItemFactor [][]float32 // q_i
	UserBias   []float32   // b_u
	ItemBias   []float32   // b_i
}

// Initialize creates parameters for nUsers users and nItems items. Biases
// start at zero and factors are drawn from N(mean, stdDev^2).
func Initialize(rng base.RandomGenerator, nUsers, nItems, nFactors int, mean, stdDev float32) *Parameters {
	return &Parameters{
		UserFactor: rng.NormalMatrix(nUsers, nFactors, mean, stdDev),
		ItemFactor: rng.NormalMatrix(nItems, nFactors, mean, stdDev),
		UserBias:   make([]float32, nUsers),
		ItemBias:   make([]float32, nItems),
	}
}

func (params *Parameters) CountUsers() int {
	return len(params.UserBias)
}

func (params *Parameters) CountItems() int {
	return len(params.ItemBias)
}

// CountFactors returns the number of latent factors.
func (params *Parameters) CountFactors() int {
	if len(params.UserFactor) > 0 {
		return len(params.UserFactor[0])
	}
	if len(params.ItemFactor) > 0 {
		return len(params.ItemFactor[0])
	}
	return 0
}

// Predict the rating of a user to an item. An unknown user or item
// contributes neither bias nor factors:
//
//	\hat{r}_{ui} = μ + b_u + b_i + q_i^Tp_u
func (params *Parameters) Predict(globalMean float32, userIndex, itemIndex dataset.Index) float32 {
	ret := globalMean
	u, userKnown := userIndex.Get()
	i, itemKnown := itemIndex.Get()
	// + b_u
	if userKnown {
		ret += params.UserBias[u]
	}
	// + b_i
	if itemKnown {
		ret += params.ItemBias[i]
	}
	// + q_i^Tp_u
	if userKnown && itemKnown {
		ret += floats.Dot(params.UserFactor[u], params.ItemFactor[i])
	}
	return ret
}

// penalty returns the squared norm of the weights touched by a rating.
func (params *Parameters) penalty(userIndex, itemIndex dataset.Index) float32 {
	var ret float32
	if u, ok := userIndex.Get(); ok {
		ret += params.UserBias[u]*params.UserBias[u] + floats.SquaredNorm(params.UserFactor[u])
	}
	if i, ok := itemIndex.Get(); ok {
		ret += params.ItemBias[i]*params.ItemBias[i] + floats.SquaredNorm(params.ItemFactor[i])
	}
	return ret
}

// RunEpoch runs one pass of stochastic gradient descent over rows in order
// and updates params in place. It returns the mean squared error observed
// during the pass. Every index in rows must be known to params.
func RunEpoch(rows *dataset.Ratings, params *Parameters, globalMean, lr, reg float32) float32 {
	if rows.Len() == 0 {
		return 0
	}
	nFactors := params.CountFactors()
	userFactor := make([]float32, nFactors)
	itemFactor := make([]float32, nFactors)
	temp := make([]float32, nFactors)
	var cost float64
	for j := 0; j < rows.Len(); j++ {
		u, i, rating := rows.Users[j], rows.Items[j], rows.Ratings[j]
		if u < 0 || int(u) >= params.CountUsers() || i < 0 || int(i) >= params.CountItems() {
			panic(fmt.Sprintf("svd: invalid index (%d, %d) at row %d", u, i, j))
		}
		// e_{ui} = r - \hat r
		pred := globalMean + params.UserBias[u] + params.ItemBias[i] + floats.Dot(params.UserFactor[u], params.ItemFactor[i])
		diff := rating - pred
		cost += float64(diff * diff)
		// b_u <- b_u + \gamma (e_{ui} - \lambda b_u)
		params.UserBias[u] += lr * (diff - reg*params.UserBias[u])
		// b_i <- b_i + \gamma (e_{ui} - \lambda b_i)
		params.ItemBias[i] += lr * (diff - reg*params.ItemBias[i])
		copy(userFactor, params.UserFactor[u])
		copy(itemFactor, params.ItemFactor[i])
		// p_u <- p_u + \gamma (e_{ui} q_i - \lambda p_u)
		floats.MulConstTo(itemFactor, diff, temp)
		floats.MulConstAdd(userFactor, -reg, temp)
		floats.MulConstAdd(temp, lr, params.UserFactor[u])
		// q_i <- q_i + \gamma (e_{ui} p_u - \lambda q_i)
		floats.MulConstTo(userFactor, diff, temp)
		floats.MulConstAdd(itemFactor, -reg, temp)
		floats.MulConstAdd(temp, lr, params.ItemFactor[i])
	}
	return float32(cost / float64(rows.Len()))
}
