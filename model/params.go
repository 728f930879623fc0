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

package model

import (
	"encoding/json"
	"fmt"

	"github.com/gorse-io/funksvd/base/log"
	"go.uber.org/zap"
)

// ParamName is the type of hyper-parameter names.
type ParamName string

// Predefined hyper-parameter names
const (
	Lr          ParamName = "Lr"          // learning rate
	Reg         ParamName = "Reg"         // regularization strength
	NEpochs     ParamName = "NEpochs"     // number of epochs
	NFactors    ParamName = "NFactors"    // number of factors
	RandomState ParamName = "RandomState" // random state (seed)
	InitMean    ParamName = "InitMean"    // mean of gaussian initial parameter
	InitStdDev  ParamName = "InitStdDev"  // standard deviation of gaussian initial parameter
	MinRating   ParamName = "MinRating"   // lower bound of clipped predictions
	MaxRating   ParamName = "MaxRating"   // upper bound of clipped predictions
)

// Params stores hyper-parameters for a model. It is a map between names
// and values. For example, hyper-parameters for SVD is given by:
//
//	model.Params{
//		model.Lr:       0.007,
//		model.NEpochs:  100,
//		model.NFactors: 80,
//		model.Reg:      0.1,
//	}
type Params map[ParamName]interface{}

// Copy hyper-parameters.
func (parameters Params) Copy() Params {
	newParams := make(Params, len(parameters))
	for k, v := range parameters {
		newParams[k] = v
	}
	return newParams
}

// GetInt gets an integer parameter by name. Returns _default if not exists or type doesn't match.
func (parameters Params) GetInt(name ParamName, _default int) int {
	if val, exist := parameters[name]; exist {
		switch val := val.(type) {
		case int:
			return val
		case int64:
			return int(val)
		default:
			logMismatch("int", name, val)
		}
	}
	return _default
}

// GetInt64 gets an int64 parameter by name. Returns _default if not exists or type doesn't match. The
// type will be converted if given int.
func (parameters Params) GetInt64(name ParamName, _default int64) int64 {
	if val, exist := parameters[name]; exist {
		switch val := val.(type) {
		case int64:
			return val
		case int:
			return int64(val)
		default:
			logMismatch("int64", name, val)
		}
	}
	return _default
}

// GetFloat32 gets a float32 parameter by name. Integers and float64 values are converted.
func (parameters Params) GetFloat32(name ParamName, _default float32) float32 {
	if val, exist := parameters[name]; exist {
		switch val := val.(type) {
		case float32:
			return val
		case float64:
			return float32(val)
		case int:
			return float32(val)
		default:
			logMismatch("float32", name, val)
		}
	}
	return _default
}

func (parameters Params) ToString() string {
	b, err := json.Marshal(parameters)
	if err != nil {
		log.Logger().Error("failed to marshal params", zap.Error(err))
		return fmt.Sprint(map[ParamName]interface{}(parameters))
	}
	return string(b)
}

func logMismatch(expect string, name ParamName, val interface{}) {
	log.Logger().Error("type of hyper-parameter mismatch",
		zap.String("name", string(name)),
		zap.String("expect", expect),
		zap.String("actual", fmt.Sprintf("%T", val)))
}
