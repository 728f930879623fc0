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

package main

import (
	"fmt"
	"io"

	"github.com/gorse-io/funksvd/model/svd"
	"github.com/schollz/progressbar/v3"
)

// progressObserver renders a progress bar of epochs.
type progressObserver struct {
	bar *progressbar.ProgressBar
}

func newProgressObserver(w io.Writer, nEpochs int) *progressObserver {
	return &progressObserver{
		bar: progressbar.NewOptions(nEpochs,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("Training"),
			progressbar.OptionShowCount(),
		),
	}
}

func (o *progressObserver) OnEpoch(event svd.EpochEvent) {
	if event.Validation != nil {
		o.bar.Describe(fmt.Sprintf("val_rmse: %.3f", event.Validation.RMSE))
	}
	_ = o.bar.Add(1)
}

// Finish completes the bar even if training stopped early.
func (o *progressObserver) Finish() {
	_ = o.bar.Finish()
}
