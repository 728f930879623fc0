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

import "github.com/chewxy/math32"

// DefaultMinDelta is the smallest RMSE improvement that keeps training going.
const DefaultMinDelta = 0.001

// EarlyStopping compares the latest validation RMSE with the previous one.
// The history starts with +Inf so the first epoch never stops training.
type EarlyStopping struct {
	minDelta float32
	history  []float32
}

func NewEarlyStopping(minDelta float32) *EarlyStopping {
	return &EarlyStopping{
		minDelta: minDelta,
		history:  []float32{math32.Inf(1)},
	}
}

// Append records the RMSE of an epoch and returns true if training should
// stop, that is rmse + minDelta > previous RMSE.
func (e *EarlyStopping) Append(rmse float32) bool {
	last := e.history[len(e.history)-1]
	e.history = append(e.history, rmse)
	return rmse+e.minDelta > last
}

// History returns recorded values including the leading +Inf.
func (e *EarlyStopping) History() []float32 {
	return e.history
}
