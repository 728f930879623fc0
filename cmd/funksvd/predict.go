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
	"encoding/csv"
	"io"
	"os"
	"runtime"
	"strconv"

	"github.com/gorse-io/funksvd/base/log"
	"github.com/gorse-io/funksvd/dataset"
	"github.com/gorse-io/funksvd/model/svd"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var predictCommand = &cobra.Command{
	Use:   "predict",
	Short: "Predict ratings of user/item pairs",
	RunE: func(cmd *cobra.Command, args []string) error {
		modelPath, _ := cmd.Flags().GetString("model")
		m, err := svd.Load(modelPath)
		if err != nil {
			return errors.Trace(err)
		}
		jobs, _ := cmd.Flags().GetInt("jobs")
		m.SetJobs(jobs)
		// load pairs
		input, _ := cmd.Flags().GetString("input")
		sep, _ := cmd.Flags().GetString("sep")
		header, _ := cmd.Flags().GetBool("header")
		pairs, err := dataset.LoadPairsCSV(input, sep, header)
		if err != nil {
			return errors.Trace(err)
		}
		// predict
		conf, err := loadConfig(cmd)
		if err != nil {
			return errors.Trace(err)
		}
		clip := conf.Fit.Clip
		if cmd.Flags().Changed("clip") {
			clip, _ = cmd.Flags().GetBool("clip")
		}
		predictions, err := m.PredictBatch(pairs, clip)
		if err != nil {
			return errors.Trace(err)
		}
		log.Logger().Info("predict ratings",
			zap.Int("n_pairs", len(pairs)),
			zap.Bool("clip", clip))
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			return renderPredictions(cmd.OutOrStdout(), pairs, predictions)
		}
		file, err := os.Create(output)
		if err != nil {
			return errors.Trace(err)
		}
		if err = writePredictions(file, pairs, predictions); err != nil {
			_ = file.Close()
			return errors.Trace(err)
		}
		return errors.Trace(file.Close())
	},
}

func init() {
	rootCommand.AddCommand(predictCommand)
	flags := predictCommand.Flags()
	flags.StringP("model", "m", "model.bin", "path of the trained model")
	flags.StringP("input", "i", "", "CSV file of user/item pairs")
	flags.String("sep", ",", "single-character separator of the CSV file")
	flags.Bool("header", true, "whether the CSV file has a header")
	flags.Bool("clip", false, "clip predictions to the rating range (default from fit.clip)")
	flags.StringP("output", "o", "", "CSV file of predictions (print a table if empty)")
	flags.Int("jobs", runtime.NumCPU(), "number of workers")
	_ = predictCommand.MarkFlagRequired("input")
}

// writePredictions writes predictions as CSV with a header.
func writePredictions(w io.Writer, pairs []dataset.Pair, predictions []float32) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"user_id", "item_id", "prediction"}); err != nil {
		return errors.Trace(err)
	}
	for i, pair := range pairs {
		record := []string{pair.UserId, pair.ItemId, strconv.FormatFloat(float64(predictions[i]), 'f', -1, 32)}
		if err := writer.Write(record); err != nil {
			return errors.Trace(err)
		}
	}
	writer.Flush()
	return errors.Trace(writer.Error())
}

func renderPredictions(w io.Writer, pairs []dataset.Pair, predictions []float32) error {
	table := tablewriter.NewWriter(w)
	table.Header("User", "Item", "Prediction")
	for i, pair := range pairs {
		if err := table.Append([]string{pair.UserId, pair.ItemId, strconv.FormatFloat(float64(predictions[i]), 'f', 4, 32)}); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(table.Render())
}
