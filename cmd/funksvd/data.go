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
	"context"

	"github.com/gorse-io/funksvd/base/log"
	"github.com/gorse-io/funksvd/config"
	"github.com/gorse-io/funksvd/dataset"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// loadDatabase loads ratings returned by query from a database.
func loadDatabase(ctx context.Context, database, query string) ([]dataset.Row, error) {
	log.Logger().Info("load ratings from database",
		zap.String("database", log.RedactDBURL(database)),
		zap.String("query", query))
	db, err := dataset.OpenDatabase(database)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer func() {
		if err := dataset.CloseDatabase(db); err != nil {
			log.Logger().Warn("failed to close database", zap.Error(err))
		}
	}()
	return dataset.LoadDatabase(ctx, db, query)
}

// loadRatings loads ratings from the database if configured, otherwise from
// the CSV file at path.
func loadRatings(ctx context.Context, path string, data config.DataConfig) ([]dataset.Row, error) {
	if data.Database != "" {
		return loadDatabase(ctx, data.Database, data.Query)
	}
	if path == "" {
		return nil, errors.NotValidf("empty source of ratings")
	}
	log.Logger().Info("load ratings from csv", zap.String("path", path))
	rows, err := dataset.LoadCSV(path, data.Sep, data.Header)
	return rows, errors.Trace(err)
}

// loadTrainSet loads the train set and the validation set. The validation set
// is loaded from validation_path if given, otherwise it is sampled from the
// train set by validation_ratio.
func loadTrainSet(ctx context.Context, conf *config.Config) (train, val []dataset.Row, err error) {
	rows, err := loadRatings(ctx, conf.Data.TrainPath, conf.Data)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	if conf.Data.ValidationPath != "" {
		log.Logger().Info("load validation set from csv", zap.String("path", conf.Data.ValidationPath))
		val, err = dataset.LoadCSV(conf.Data.ValidationPath, conf.Data.Sep, conf.Data.Header)
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
		train = rows
	} else {
		train, val = dataset.Split(rows, conf.Data.ValidationRatio, conf.Model.RandomState)
	}
	log.Logger().Info("load data set",
		zap.Int("n_train", len(train)),
		zap.Int("n_validation", len(val)))
	return train, val, nil
}
