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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogObserver(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	o := NewLogObserver(zap.New(core))
	o.OnEpoch(EpochEvent{Epoch: 1, NEpochs: 2, TrainLoss: 0.5, Duration: time.Second})
	o.OnEpoch(EpochEvent{Epoch: 2, NEpochs: 2, TrainLoss: 0.4, Validation: &Score{Loss: 0.9, RMSE: 0.8, MAE: 0.7}})
	entries := logs.AllUntimed()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "fit svd 1/2", entries[0].Message)
		assert.NotContains(t, entries[0].ContextMap(), "val_rmse")
		assert.Equal(t, "fit svd 2/2", entries[1].Message)
		assert.InDelta(t, 0.8, entries[1].ContextMap()["val_rmse"], 1e-6)
		assert.InDelta(t, 0.4, entries[1].ContextMap()["train_loss"], 1e-6)
	}
}

func TestMetricsObserver(t *testing.T) {
	o := NewMetricsObserver(prometheus.NewRegistry())
	o.OnEpoch(EpochEvent{Epoch: 1, NEpochs: 2, TrainLoss: 0.5, Duration: 2 * time.Second})
	assert.Equal(t, 1.0, testutil.ToFloat64(o.Epoch))
	assert.Equal(t, 2.0, testutil.ToFloat64(o.EpochSeconds))
	assert.Equal(t, 0.5, testutil.ToFloat64(o.LossVec.WithLabelValues(setTrain)))
	assert.Equal(t, 0.0, testutil.ToFloat64(o.RMSE))
	o.OnEpoch(EpochEvent{Epoch: 2, NEpochs: 2, TrainLoss: 0.25, Validation: &Score{Loss: 0.75, RMSE: 0.5, MAE: 0.25}})
	assert.Equal(t, 2.0, testutil.ToFloat64(o.Epoch))
	assert.Equal(t, 0.75, testutil.ToFloat64(o.LossVec.WithLabelValues(setValidation)))
	assert.Equal(t, 0.5, testutil.ToFloat64(o.RMSE))
	assert.Equal(t, 0.25, testutil.ToFloat64(o.MAE))
	assert.Equal(t, 2.0, testutil.ToFloat64(o.EpochsTotal))
}
