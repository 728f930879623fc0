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

	"github.com/gorse-io/funksvd/base/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// LogObserver writes a log line for each epoch.
type LogObserver struct {
	logger *zap.Logger
}

// NewLogObserver creates a LogObserver. The global logger is used if logger is nil.
func NewLogObserver(logger *zap.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnEpoch(event EpochEvent) {
	logger := o.logger
	if logger == nil {
		logger = log.Logger()
	}
	fields := []zap.Field{
		zap.Float32("train_loss", event.TrainLoss),
		zap.String("fit_time", event.Duration.String()),
	}
	if event.Validation != nil {
		fields = append(fields,
			zap.Float32("val_loss", event.Validation.Loss),
			zap.Float32("val_rmse", event.Validation.RMSE),
			zap.Float32("val_mae", event.Validation.MAE))
	}
	logger.Info(fmt.Sprintf("fit svd %v/%v", event.Epoch, event.NEpochs), fields...)
}

const (
	LabelSet = "set"

	setTrain      = "train"
	setValidation = "validation"
)

// MetricsObserver exports the progress of training as prometheus metrics.
type MetricsObserver struct {
	Epoch        prometheus.Gauge
	EpochSeconds prometheus.Gauge
	LossVec      *prometheus.GaugeVec
	RMSE         prometheus.Gauge
	MAE          prometheus.Gauge
	EpochsTotal  prometheus.Counter
}

// NewMetricsObserver creates metrics on registerer. The default registerer
// is used if registerer is nil.
func NewMetricsObserver(registerer prometheus.Registerer) *MetricsObserver {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)
	return &MetricsObserver{
		Epoch: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "funksvd",
			Subsystem: "fit",
			Name:      "epoch",
		}),
		EpochSeconds: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "funksvd",
			Subsystem: "fit",
			Name:      "epoch_seconds",
		}),
		LossVec: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "funksvd",
			Subsystem: "fit",
			Name:      "loss",
		}, []string{LabelSet}),
		RMSE: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "funksvd",
			Subsystem: "fit",
			Name:      "validation_rmse",
		}),
		MAE: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "funksvd",
			Subsystem: "fit",
			Name:      "validation_mae",
		}),
		EpochsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "funksvd",
			Subsystem: "fit",
			Name:      "epochs_total",
		}),
	}
}

func (o *MetricsObserver) OnEpoch(event EpochEvent) {
	o.Epoch.Set(float64(event.Epoch))
	o.EpochSeconds.Set(event.Duration.Seconds())
	o.LossVec.WithLabelValues(setTrain).Set(float64(event.TrainLoss))
	if event.Validation != nil {
		o.LossVec.WithLabelValues(setValidation).Set(float64(event.Validation.Loss))
		o.RMSE.Set(float64(event.Validation.RMSE))
		o.MAE.Set(float64(event.Validation.MAE))
	}
	o.EpochsTotal.Inc()
}
