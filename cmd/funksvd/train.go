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
	"os"
	"os/signal"

	"github.com/gorse-io/funksvd/base/log"
	"github.com/gorse-io/funksvd/config"
	"github.com/gorse-io/funksvd/model/svd"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var trainCommand = &cobra.Command{
	Use:   "train",
	Short: "Train a model from ratings",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig(cmd)
		if err != nil {
			return errors.Trace(err)
		}
		if err = overrideConfig(cmd, conf); err != nil {
			return errors.Trace(err)
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		train, val, err := loadTrainSet(ctx, conf)
		if err != nil {
			return errors.Trace(err)
		}

		// register observers
		fitConfig := conf.FitConfig().AddObserver(svd.NewLogObserver(nil))
		registry := prometheus.NewRegistry()
		fitConfig.AddObserver(svd.NewMetricsObserver(registry))
		var progress *progressObserver
		if showProgress, _ := cmd.Flags().GetBool("progress"); showProgress {
			progress = newProgressObserver(cmd.ErrOrStderr(), conf.Model.NEpochs)
			fitConfig.AddObserver(progress)
		}

		m := svd.NewSVD(conf.ModelParams())
		result, err := m.Fit(ctx, train, val, fitConfig)
		if progress != nil {
			progress.Finish()
		}
		if err != nil {
			return errors.Trace(err)
		}
		if err = renderEpochs(cmd.OutOrStdout(), result); err != nil {
			return errors.Trace(err)
		}

		// save model and metrics
		output, _ := cmd.Flags().GetString("output")
		if err = m.Save(output); err != nil {
			return errors.Trace(err)
		}
		log.Logger().Info("save model", zap.String("path", output))
		if metricsPath, _ := cmd.Flags().GetString("metrics-path"); metricsPath != "" {
			if err = prometheus.WriteToTextfile(metricsPath, registry); err != nil {
				return errors.Trace(err)
			}
			log.Logger().Info("save metrics", zap.String("path", metricsPath))
		}
		return nil
	},
}

func init() {
	rootCommand.AddCommand(trainCommand)
	flags := trainCommand.Flags()
	flags.StringP("output", "o", "model.bin", "path of the trained model")
	flags.String("metrics-path", "", "path of the prometheus text file of training metrics")
	flags.Bool("progress", false, "show a progress bar of epochs")
	// override config
	flags.String("train", "", "CSV file of the train set")
	flags.String("validation", "", "CSV file of the validation set")
	flags.String("database", "", "database to load the train set from")
	flags.String("query", "", "query returning user id, item id and rating")
	flags.Int("n-epochs", 0, "number of epochs")
	flags.Int("n-factors", 0, "number of latent factors")
	flags.Float32("lr", 0, "learning rate")
	flags.Float32("reg", 0, "regularization strength")
	flags.Int64("random-state", 0, "random seed")
	flags.Bool("early-stopping", false, "stop training when the validation RMSE stops improving")
	flags.Bool("shuffle", false, "shuffle the train set before every epoch")
	flags.Int("jobs", 0, "number of workers for evaluation")
}

// overrideConfig applies flags that are set on the command line.
func overrideConfig(cmd *cobra.Command, conf *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("train") {
		conf.Data.TrainPath, _ = flags.GetString("train")
	}
	if flags.Changed("validation") {
		conf.Data.ValidationPath, _ = flags.GetString("validation")
	}
	if flags.Changed("database") {
		conf.Data.Database, _ = flags.GetString("database")
	}
	if flags.Changed("query") {
		conf.Data.Query, _ = flags.GetString("query")
	}
	if flags.Changed("n-epochs") {
		conf.Model.NEpochs, _ = flags.GetInt("n-epochs")
	}
	if flags.Changed("n-factors") {
		conf.Model.NFactors, _ = flags.GetInt("n-factors")
	}
	if flags.Changed("lr") {
		conf.Model.Lr, _ = flags.GetFloat32("lr")
	}
	if flags.Changed("reg") {
		conf.Model.Reg, _ = flags.GetFloat32("reg")
	}
	if flags.Changed("random-state") {
		conf.Model.RandomState, _ = flags.GetInt64("random-state")
	}
	if flags.Changed("early-stopping") {
		conf.Fit.EarlyStopping, _ = flags.GetBool("early-stopping")
	}
	if flags.Changed("shuffle") {
		conf.Fit.Shuffle, _ = flags.GetBool("shuffle")
	}
	if flags.Changed("jobs") {
		conf.Fit.Jobs, _ = flags.GetInt("jobs")
	}
	return conf.Validate()
}

func renderEpochs(w io.Writer, result svd.FitResult) error {
	table := tablewriter.NewWriter(w)
	table.Header("Epoch", "Train Loss", "Val Loss", "Val RMSE", "Val MAE", "Took")
	for _, event := range result.Epochs {
		row := []string{
			fmt.Sprintf("%d/%d", event.Epoch, event.NEpochs),
			fmt.Sprintf("%.4f", event.TrainLoss),
			"-", "-", "-",
			event.Duration.String(),
		}
		if event.Validation != nil {
			row[2] = fmt.Sprintf("%.4f", event.Validation.Loss)
			row[3] = fmt.Sprintf("%.4f", event.Validation.RMSE)
			row[4] = fmt.Sprintf("%.4f", event.Validation.MAE)
		}
		if err := table.Append(row); err != nil {
			return errors.Trace(err)
		}
	}
	if err := table.Render(); err != nil {
		return errors.Trace(err)
	}
	if result.Stopped {
		_, err := fmt.Fprintln(w, "Stopped early.")
		return errors.Trace(err)
	}
	return nil
}
