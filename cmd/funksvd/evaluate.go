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
	"runtime"

	"github.com/gorse-io/funksvd/config"
	"github.com/gorse-io/funksvd/model/svd"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var evaluateCommand = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a trained model on ratings",
	RunE: func(cmd *cobra.Command, args []string) error {
		modelPath, _ := cmd.Flags().GetString("model")
		m, err := svd.Load(modelPath)
		if err != nil {
			return errors.Trace(err)
		}
		input, _ := cmd.Flags().GetString("input")
		data := config.DataConfig{}
		data.Sep, _ = cmd.Flags().GetString("sep")
		data.Header, _ = cmd.Flags().GetBool("header")
		data.Database, _ = cmd.Flags().GetString("database")
		data.Query, _ = cmd.Flags().GetString("query")
		rows, err := loadRatings(cmd.Context(), input, data)
		if err != nil {
			return errors.Trace(err)
		}
		jobs, _ := cmd.Flags().GetInt("jobs")
		score, err := m.Evaluate(rows, jobs)
		if err != nil {
			return errors.Trace(err)
		}
		unknown := m.Mapping.Translate(rows, false).CountUnknown()
		return renderScore(cmd.OutOrStdout(), len(rows), unknown, score)
	},
}

func init() {
	rootCommand.AddCommand(evaluateCommand)
	flags := evaluateCommand.Flags()
	flags.StringP("model", "m", "model.bin", "path of the trained model")
	flags.StringP("input", "i", "", "CSV file of ratings")
	flags.String("sep", ",", "single-character separator of the CSV file")
	flags.Bool("header", true, "whether the CSV file has a header")
	flags.String("database", "", "database to load ratings from")
	flags.String("query", "", "query returning user id, item id and rating")
	flags.Int("jobs", runtime.NumCPU(), "number of workers")
}

func renderScore(w io.Writer, n, unknown int, score svd.Score) error {
	table := tablewriter.NewWriter(w)
	table.Header("#Ratings", "#Unknown", "Loss", "RMSE", "MAE")
	if err := table.Append([]string{
		fmt.Sprint(n),
		fmt.Sprint(unknown),
		fmt.Sprintf("%.4f", score.Loss),
		fmt.Sprintf("%.4f", score.RMSE),
		fmt.Sprintf("%.4f", score.MAE),
	}); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(table.Render())
}
