// Copyright 2025 latrec Project Authors
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

// Package config loads and validates the training configuration from a file
// and LATREC_* environment variables.
package config

import (
	"github.com/go-playground/validator/v10"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

// Config is the configuration of a training run.
type Config struct {
	Data  DataConfig  `mapstructure:"data"`
	Model ModelConfig `mapstructure:"model"`
	Train TrainConfig `mapstructure:"train"`
}

// DataConfig points to the interaction files.
type DataConfig struct {
	// TrainPath is the CSV file holding the train split.
	TrainPath string `mapstructure:"train_path" validate:"required"`
	// TestPath is the CSV file holding the test split. Empty disables
	// validation passes.
	TestPath string `mapstructure:"test_path"`
	// Separator between the fields of one interaction line.
	Separator string `mapstructure:"separator" validate:"required"`
}

// ModelConfig selects and shapes the model.
type ModelConfig struct {
	Kind       string  `mapstructure:"kind" validate:"oneof=pointwise pairwise"`
	NFactors   int     `mapstructure:"n_factors" validate:"gt=0"`
	DropoutP   float64 `mapstructure:"dropout_p" validate:"gte=0,lte=1"`
	InitMean   float64 `mapstructure:"init_mean"`
	InitStdDev float64 `mapstructure:"init_std_dev" validate:"gte=0"`
}

// TrainConfig shapes the optimization loop.
type TrainConfig struct {
	NEpochs      int     `mapstructure:"n_epochs" validate:"gt=0"`
	BatchSize    int     `mapstructure:"batch_size" validate:"gt=0"`
	Lr           float64 `mapstructure:"lr" validate:"gt=0"`
	WeightDecay  float64 `mapstructure:"weight_decay" validate:"gte=0"`
	Optimizer    string  `mapstructure:"optimizer" validate:"oneof=adam sgd"`
	RandomState  int64   `mapstructure:"random_state"`
	SkipUnstable bool    `mapstructure:"skip_unstable"`
	Verbose      bool    `mapstructure:"verbose"`
}

// GetDefaultConfig returns a Config with default values, minus the data paths
// which have no sensible default.
func GetDefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Separator: ",",
		},
		Model: ModelConfig{
			Kind:       "pointwise",
			NFactors:   40,
			DropoutP:   0,
			InitMean:   0,
			InitStdDev: 0.1,
		},
		Train: TrainConfig{
			NEpochs:     10,
			BatchSize:   1024,
			Lr:          0.01,
			WeightDecay: 0,
			Optimizer:   "adam",
			RandomState: 0,
		},
	}
}

func setDefault() {
	defaultConfig := GetDefaultConfig()
	// [data]
	viper.SetDefault("data.separator", defaultConfig.Data.Separator)
	// [model]
	viper.SetDefault("model.kind", defaultConfig.Model.Kind)
	viper.SetDefault("model.n_factors", defaultConfig.Model.NFactors)
	viper.SetDefault("model.dropout_p", defaultConfig.Model.DropoutP)
	viper.SetDefault("model.init_mean", defaultConfig.Model.InitMean)
	viper.SetDefault("model.init_std_dev", defaultConfig.Model.InitStdDev)
	// [train]
	viper.SetDefault("train.n_epochs", defaultConfig.Train.NEpochs)
	viper.SetDefault("train.batch_size", defaultConfig.Train.BatchSize)
	viper.SetDefault("train.lr", defaultConfig.Train.Lr)
	viper.SetDefault("train.weight_decay", defaultConfig.Train.WeightDecay)
	viper.SetDefault("train.optimizer", defaultConfig.Train.Optimizer)
	viper.SetDefault("train.random_state", defaultConfig.Train.RandomState)
}

type configBinding struct {
	key string
	env string
}

func bindEnv() {
	bindings := []configBinding{
		{"data.train_path", "LATREC_TRAIN_PATH"},
		{"data.test_path", "LATREC_TEST_PATH"},
		{"data.separator", "LATREC_SEPARATOR"},
		{"model.kind", "LATREC_MODEL_KIND"},
		{"model.n_factors", "LATREC_N_FACTORS"},
		{"model.dropout_p", "LATREC_DROPOUT_P"},
		{"train.n_epochs", "LATREC_N_EPOCHS"},
		{"train.batch_size", "LATREC_BATCH_SIZE"},
		{"train.lr", "LATREC_LR"},
		{"train.weight_decay", "LATREC_WEIGHT_DECAY"},
		{"train.optimizer", "LATREC_OPTIMIZER"},
		{"train.random_state", "LATREC_RANDOM_STATE"},
	}
	for _, binding := range bindings {
		viper.MustBindEnv(binding.key, binding.env)
	}
}

// Validate checks the configuration against its constraints.
func (config *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return errors.Trace(err)
	}
	return nil
}

// LoadConfig loads and validates the configuration from a TOML or YAML file.
// Environment variables override file values.
func LoadConfig(path string) (*Config, error) {
	setDefault()
	bindEnv()
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return nil, errors.Trace(err)
	}
	var conf Config
	if err := viper.Unmarshal(&conf); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}
