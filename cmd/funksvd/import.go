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
	"github.com/gorse-io/funksvd/base/log"
	"github.com/gorse-io/funksvd/dataset"
	"github.com/juju/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var importCommand = &cobra.Command{
	Use:   "import",
	Short: "Import ratings from a CSV file into a database",
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		sep, _ := cmd.Flags().GetString("sep")
		header, _ := cmd.Flags().GetBool("header")
		rows, err := dataset.LoadCSV(input, sep, header)
		if err != nil {
			return errors.Trace(err)
		}
		database, _ := cmd.Flags().GetString("database")
		db, err := dataset.OpenDatabase(database)
		if err != nil {
			return errors.Trace(err)
		}
		defer func() {
			if err := dataset.CloseDatabase(db); err != nil {
				log.Logger().Warn("failed to close database", zap.Error(err))
			}
		}()
		batchSize, _ := cmd.Flags().GetInt("batch-size")
		if err = dataset.ImportDatabase(cmd.Context(), db, rows, batchSize); err != nil {
			return errors.Trace(err)
		}
		log.Logger().Info("import ratings",
			zap.String("database", log.RedactDBURL(database)),
			zap.Int("n_ratings", len(rows)))
		return nil
	},
}

func init() {
	rootCommand.AddCommand(importCommand)
	flags := importCommand.Flags()
	flags.StringP("input", "i", "", "CSV file of ratings")
	flags.String("sep", ",", "single-character separator of the CSV file")
	flags.Bool("header", true, "whether the CSV file has a header")
	flags.String("database", "", "database to import ratings into")
	flags.Int("batch-size", 1000, "number of ratings inserted per statement")
	_ = importCommand.MarkFlagRequired("input")
	_ = importCommand.MarkFlagRequired("database")
}
