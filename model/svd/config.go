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

import "time"

type FitConfig struct {
	Jobs          int
	EarlyStopping bool
	MinDelta      float32
	Shuffle       bool
	Observers     []Observer
}

func NewFitConfig() *FitConfig {
	return &FitConfig{
		Jobs:     1,
		MinDelta: DefaultMinDelta,
	}
}

func (config *FitConfig) SetJobs(jobs int) *FitConfig {
	config.Jobs = jobs
	return config
}

func (config *FitConfig) SetEarlyStopping(earlyStopping bool) *FitConfig {
	config.EarlyStopping = earlyStopping
	return config
}

func (config *FitConfig) SetMinDelta(minDelta float32) *FitConfig {
	config.MinDelta = minDelta
	return config
}

func (config *FitConfig) SetShuffle(shuffle bool) *FitConfig {
	config.Shuffle = shuffle
	return config
}

// AddObserver registers an observer notified after every epoch.
func (config *FitConfig) AddObserver(observer Observer) *FitConfig {
	config.Observers = append(config.Observers, observer)
	return config
}

// EpochEvent describes a finished epoch. Validation is nil if no validation
// set is given.
type EpochEvent struct {
	Epoch     int
	NEpochs   int
	TrainLoss float32
	// Validation score after the epoch's updates.
	Validation *Score
	Duration   time.Duration
}

// FitResult summarizes a fit.
type FitResult struct {
	Epochs  []EpochEvent
	Stopped bool // stopped early
}

// Observer receives epoch events from the trainer. It is called on the
// training goroutine.
type Observer interface {
	OnEpoch(event EpochEvent)
}

// ObserverFunc adapts a function to an Observer.
type ObserverFunc func(event EpochEvent)

func (f ObserverFunc) OnEpoch(event EpochEvent) {
	f(event)
}
