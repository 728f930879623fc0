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

package config

import (
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gorse-io/funksvd/model"
	"github.com/gorse-io/funksvd/model/svd"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

// Config is the configuration for training and serving a model.
type Config struct {
	Model ModelConfig `mapstructure:"model"`
	Fit   FitConfig   `mapstructure:"fit"`
	Data  DataConfig  `mapstructure:"data"`
}

// ModelConfig holds hyper-parameters.
type ModelConfig struct {
	Lr          float32 `mapstructure:"lr" validate:"gt=0"`
	Reg         float32 `mapstructure:"reg" validate:"gte=0"`
	NEpochs     int     `mapstructure:"n_epochs" validate:"gt=0"`
	NFactors    int     `mapstructure:"n_factors" validate:"gte=0"`
	InitMean    float32 `mapstructure:"init_mean"`
	InitStdDev  float32 `mapstructure:"init_std" validate:"gte=0"`
	RandomState int64   `mapstructure:"random_state"`
	MinRating   float32 `mapstructure:"min_rating"`
	MaxRating   float32 `mapstructure:"max_rating" validate:"gtefield=MinRating"`
}

// FitConfig holds options of a fit.
type FitConfig struct {
	EarlyStopping bool    `mapstructure:"early_stopping"`
	MinDelta      float32 `mapstructure:"min_delta" validate:"gte=0"`
	Shuffle       bool    `mapstructure:"shuffle"`
	Jobs          int     `mapstructure:"jobs" validate:"gt=0"`
	Clip          bool    `mapstructure:"clip"`
}

// DataConfig locates ratings.
type DataConfig struct {
	TrainPath       string  `mapstructure:"train_path"`
	ValidationPath  string  `mapstructure:"validation_path"`
	Sep             string  `mapstructure:"sep" validate:"len=1"`
	Header          bool    `mapstructure:"header"`
	ValidationRatio float64 `mapstructure:"validation_ratio" validate:"gte=0,lt=1"`
	Database        string  `mapstructure:"database"`
	Query           string  `mapstructure:"query"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Lr:          0.005,
			Reg:         0.02,
			NEpochs:     20,
			NFactors:    100,
			InitMean:    0,
			InitStdDev:  0.1,
			RandomState: 0,
			MinRating:   1,
			MaxRating:   5,
		},
		Fit: FitConfig{
			EarlyStopping: false,
			MinDelta:      svd.DefaultMinDelta,
			Shuffle:       false,
			Jobs:          1,
			Clip:          false,
		},
		Data: DataConfig{
			Sep:             ",",
			Header:          true,
			ValidationRatio: 0,
		},
	}
}

func setDefault(v *viper.Viper) {
	defaultConfig := GetDefaultConfig()
	// [model]
	v.SetDefault("model.lr", defaultConfig.Model.Lr)
	v.SetDefault("model.reg", defaultConfig.Model.Reg)
	v.SetDefault("model.n_epochs", defaultConfig.Model.NEpochs)
	v.SetDefault("model.n_factors", defaultConfig.Model.NFactors)
	v.SetDefault("model.init_mean", defaultConfig.Model.InitMean)
	v.SetDefault("model.init_std", defaultConfig.Model.InitStdDev)
	v.SetDefault("model.random_state", defaultConfig.Model.RandomState)
	v.SetDefault("model.min_rating", defaultConfig.Model.MinRating)
	v.SetDefault("model.max_rating", defaultConfig.Model.MaxRating)
	// [fit]
	v.SetDefault("fit.early_stopping", defaultConfig.Fit.EarlyStopping)
	v.SetDefault("fit.min_delta", defaultConfig.Fit.MinDelta)
	v.SetDefault("fit.shuffle", defaultConfig.Fit.Shuffle)
	v.SetDefault("fit.jobs", defaultConfig.Fit.Jobs)
	v.SetDefault("fit.clip", defaultConfig.Fit.Clip)
	// [data]
	v.SetDefault("data.train_path", defaultConfig.Data.TrainPath)
	v.SetDefault("data.validation_path", defaultConfig.Data.ValidationPath)
	v.SetDefault("data.sep", defaultConfig.Data.Sep)
	v.SetDefault("data.header", defaultConfig.Data.Header)
	v.SetDefault("data.validation_ratio", defaultConfig.Data.ValidationRatio)
	v.SetDefault("data.database", defaultConfig.Data.Database)
	v.SetDefault("data.query", defaultConfig.Data.Query)
}

// LoadConfig loads configuration from a file. Values missing from the file
// fall back to defaults and every value can be overridden by an environment
// variable such as FUNKSVD_MODEL_LR. Only defaults and environment variables
// are used if path is empty.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefault(v)
	// bind environment variables
	v.SetEnvPrefix("funksvd")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// load config file
	if path != "" {
		v.SetConfigFile(path)
		if ext := filepath.Ext(strings.TrimSuffix(path, ".template")); ext != "" {
			v.SetConfigType(ext[1:])
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Trace(err)
		}
	}
	// unmarshal config file
	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}

func (config *Config) Validate() error {
	english := en.New()
	trans, _ := ut.New(english, english).GetTranslator("en")
	validate := validator.New()
	// report keys as they are written in config files
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("mapstructure"), ",", 2)[0]
	})
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return errors.Trace(err)
	}
	if err := validate.Struct(config); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return errors.Trace(err)
		}
		messages := make([]string, 0, len(validationErrors))
		for _, message := range validationErrors.Translate(trans) {
			messages = append(messages, message)
		}
		sort.Strings(messages)
		return errors.NotValidf("config: %s", strings.Join(messages, "; "))
	}
	return nil
}

// ModelParams converts [model] to hyper-parameters.
func (config *Config) ModelParams() model.Params {
	return model.Params{
		model.Lr:          config.Model.Lr,
		model.Reg:         config.Model.Reg,
		model.NEpochs:     config.Model.NEpochs,
		model.NFactors:    config.Model.NFactors,
		model.InitMean:    config.Model.InitMean,
		model.InitStdDev:  config.Model.InitStdDev,
		model.RandomState: config.Model.RandomState,
		model.MinRating:   config.Model.MinRating,
		model.MaxRating:   config.Model.MaxRating,
	}
}

// FitConfig converts [fit] to options of a fit.
func (config *Config) FitConfig() *svd.FitConfig {
	return svd.NewFitConfig().
		SetJobs(config.Fit.Jobs).
		SetEarlyStopping(config.Fit.EarlyStopping).
		SetMinDelta(config.Fit.MinDelta).
		SetShuffle(config.Fit.Shuffle)
}
