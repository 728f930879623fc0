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
	"time"

	"github.com/google/uuid"
	"github.com/gorse-io/funksvd/base/log"
	"github.com/gorse-io/funksvd/common/floats"
	"github.com/gorse-io/funksvd/common/parallel"
	"github.com/gorse-io/funksvd/dataset"
	"github.com/gorse-io/funksvd/model"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

var (
	ErrNotTrained    = errors.New("model is not trained")
	ErrEmptyTrainSet = errors.New("train set is empty")
)

// SVD algorithm, as popularized by Simon Funk during the Netflix Prize. The
// prediction \hat{r}_{ui} is set as:
//
//	\hat{r}_{ui} = μ + b_u + b_i + q_i^Tp_u
//
// If user u is unknown, then the bias b_u and the factors p_u are assumed
// to be zero. The same applies for item i with b_i and q_i.
//
// Hyper-parameters:
//
//	Reg        - The regularization parameter of the cost function that is
//	             optimized. Default is 0.02.
//	Lr         - The learning rate of SGD. Default is 0.005.
//	NFactors   - The number of latent factors. Default is 100.
//	NEpochs    - The number of iteration of the SGD procedure. Default is 20.
//	InitMean   - The mean of initial random latent factors. Default is 0.
//	InitStdDev - The standard deviation of initial random latent factors. Default is 0.1.
//	MinRating  - The lower bound of clipped predictions. Default is 1.
//	MaxRating  - The upper bound of clipped predictions. Default is 5.
type SVD struct {
	model.BaseModel
	Mapping    *dataset.Mapping
	Parameters *Parameters
	GlobalMean float32 // μ
	// Hyper parameters
	nFactors   int
	nEpochs    int
	lr         float32
	reg        float32
	initMean   float32
	initStdDev float32
	minRating  float32
	maxRating  float32
	// number of workers for batch prediction
	jobs int
}

// NewSVD creates a SVD model.
func NewSVD(params model.Params) *SVD {
	svd := &SVD{jobs: 1}
	svd.SetParams(params)
	return svd
}

// SetParams sets hyper-parameters of the SVD model.
func (svd *SVD) SetParams(params model.Params) {
	if params == nil {
		params = model.Params{}
	}
	svd.BaseModel.SetParams(params)
	svd.nFactors = svd.Params.GetInt(model.NFactors, 100)
	svd.nEpochs = svd.Params.GetInt(model.NEpochs, 20)
	svd.lr = svd.Params.GetFloat32(model.Lr, 0.005)
	svd.reg = svd.Params.GetFloat32(model.Reg, 0.02)
	svd.initMean = svd.Params.GetFloat32(model.InitMean, 0)
	svd.initStdDev = svd.Params.GetFloat32(model.InitStdDev, 0.1)
	svd.minRating = svd.Params.GetFloat32(model.MinRating, 1)
	svd.maxRating = svd.Params.GetFloat32(model.MaxRating, 5)
}

// SetJobs sets the number of workers used by PredictBatch.
func (svd *SVD) SetJobs(jobs int) {
	svd.jobs = max(jobs, 1)
}

func (svd *SVD) IsTrained() bool {
	return svd.Mapping != nil && svd.Parameters != nil
}

// Clear model weights.
func (svd *SVD) Clear() {
	svd.Mapping = nil
	svd.Parameters = nil
	svd.GlobalMean = 0
}

// Fit the SVD model on trainSet. Validation metrics are computed on valSet
// after every epoch if it isn't empty. Previous state of the model is
// replaced once the fit succeeds and kept if it fails. The context is only
// checked between epochs.
func (svd *SVD) Fit(ctx context.Context, trainSet, valSet []dataset.Row, config *FitConfig) (FitResult, error) {
	if config == nil {
		config = NewFitConfig()
	}
	if svd.nEpochs < 1 {
		return FitResult{}, errors.NotValidf("number of epochs %d", svd.nEpochs)
	}
	if svd.nFactors < 0 {
		return FitResult{}, errors.NotValidf("number of factors %d", svd.nFactors)
	}
	if svd.minRating > svd.maxRating {
		return FitResult{}, errors.NotValidf("rating range [%v, %v]", svd.minRating, svd.maxRating)
	}
	if len(trainSet) == 0 {
		return FitResult{}, errors.Trace(ErrEmptyTrainSet)
	}
	if err := dataset.ValidateRows(trainSet); err != nil {
		return FitResult{}, errors.Annotate(err, "invalid train set")
	}
	if err := dataset.ValidateRows(valSet); err != nil {
		return FitResult{}, errors.Annotate(err, "invalid validation set")
	}
	logger := log.Logger().With(zap.String("run_id", uuid.NewString()))
	logger.Info("fit svd",
		zap.Int("train_set_size", len(trainSet)),
		zap.Int("test_set_size", len(valSet)),
		zap.String("params", svd.GetParams().ToString()),
		zap.Int("jobs", config.Jobs),
		zap.Bool("early_stopping", config.EarlyStopping),
		zap.Bool("shuffle", config.Shuffle))
	fitStart := time.Now()

	// Preprocess
	svd.ResetRandomGenerator()
	rng := svd.GetRandomGenerator()
	mapping := dataset.NewMapping()
	train := mapping.Translate(trainSet, true)
	val := mapping.Translate(valSet, false)
	globalMean := train.Mean()
	params := Initialize(rng, int(mapping.Users.Count()), int(mapping.Items.Count()),
		svd.nFactors, svd.initMean, svd.initStdDev)
	logger.Debug("preprocess data",
		zap.Int32("n_users", mapping.Users.Count()),
		zap.Int32("n_items", mapping.Items.Count()),
		zap.Int("n_unknown_validation", val.CountUnknown()),
		zap.Float32("global_mean", globalMean))

	// Training
	var (
		result        FitResult
		earlyStopping = NewEarlyStopping(config.MinDelta)
	)
	for epoch := 1; epoch <= svd.nEpochs; epoch++ {
		if epoch > 1 {
			if err := ctx.Err(); err != nil {
				logger.Warn("fit svd canceled", zap.Int("epoch", epoch-1))
				return result, errors.Annotate(err, "fit svd")
			}
		}
		epochStart := time.Now()
		if config.Shuffle {
			train.Shuffle(rng.Rand)
		}
		event := EpochEvent{
			Epoch:     epoch,
			NEpochs:   svd.nEpochs,
			TrainLoss: RunEpoch(train, params, globalMean, svd.lr, svd.reg),
		}
		if val.Len() > 0 {
			score := Evaluate(val, params, globalMean, svd.reg, config.Jobs)
			event.Validation = &score
		}
		event.Duration = time.Since(epochStart)
		result.Epochs = append(result.Epochs, event)
		for _, observer := range config.Observers {
			observer.OnEpoch(event)
		}
		if config.EarlyStopping && event.Validation != nil && earlyStopping.Append(event.Validation.RMSE) {
			result.Stopped = true
			break
		}
	}

	svd.Mapping = mapping
	svd.Parameters = params
	svd.GlobalMean = globalMean
	svd.SetJobs(config.Jobs)
	fields := []zap.Field{
		zap.Int("n_epochs", len(result.Epochs)),
		zap.Bool("early_stopped", result.Stopped),
		zap.String("fit_time", time.Since(fitStart).String()),
	}
	if last := result.Epochs[len(result.Epochs)-1]; last.Validation != nil {
		fields = append(fields, zap.Float32("val_rmse", last.Validation.RMSE))
	}
	logger.Info("fit svd complete", fields...)
	return result, nil
}

// PredictPair predicts the rating given by a user to an item. Unknown users
// and items fall back to the global mean and the known biases. If clip is
// set the prediction is clipped to [MinRating, MaxRating].
func (svd *SVD) PredictPair(userId, itemId string, clip bool) (float32, error) {
	if !svd.IsTrained() {
		return 0, errors.Trace(ErrNotTrained)
	}
	return svd.predict(dataset.Pair{UserId: userId, ItemId: itemId}, clip), nil
}

// PredictBatch predicts ratings of pairs independently. Predictions are
// returned in the order of pairs.
func (svd *SVD) PredictBatch(pairs []dataset.Pair, clip bool) ([]float32, error) {
	if !svd.IsTrained() {
		return nil, errors.Trace(ErrNotTrained)
	}
	predictions := make([]float32, len(pairs))
	err := parallel.ForEach(context.Background(), pairs, svd.jobs, func(i int, pair dataset.Pair) {
		predictions[i] = svd.predict(pair, clip)
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return predictions, nil
}

func (svd *SVD) predict(pair dataset.Pair, clip bool) float32 {
	userIndex, itemIndex := svd.Mapping.Lookup(pair)
	ret := svd.Parameters.Predict(svd.GlobalMean, userIndex, itemIndex)
	if clip {
		ret = floats.Clip(ret, svd.minRating, svd.maxRating)
	}
	return ret
}

// Evaluate scores the model on ratings without changing it.
func (svd *SVD) Evaluate(ratings []dataset.Row, jobs int) (Score, error) {
	if !svd.IsTrained() {
		return Score{}, errors.Trace(ErrNotTrained)
	}
	if err := dataset.ValidateRows(ratings); err != nil {
		return Score{}, errors.Trace(err)
	}
	rows := svd.Mapping.Translate(ratings, false)
	return Evaluate(rows, svd.Parameters, svd.GlobalMean, svd.reg, jobs), nil
}
