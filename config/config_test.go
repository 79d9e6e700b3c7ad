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

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshal(t *testing.T) {
	text := `
[data]
train_path = "train.csv"
test_path = "test.csv"
separator = "\t"

[model]
kind = "pairwise"
n_factors = 16
dropout_p = 0.2

[train]
n_epochs = 5
batch_size = 128
lr = 0.05
weight_decay = 0.001
optimizer = "sgd"
random_state = 42
verbose = true
`
	setDefault()
	viper.SetConfigType("toml")
	err := viper.ReadConfig(strings.NewReader(text))
	require.NoError(t, err)
	var config Config
	err = viper.Unmarshal(&config)
	require.NoError(t, err)
	// [data]
	assert.Equal(t, "train.csv", config.Data.TrainPath)
	assert.Equal(t, "test.csv", config.Data.TestPath)
	assert.Equal(t, "\t", config.Data.Separator)
	// [model]
	assert.Equal(t, "pairwise", config.Model.Kind)
	assert.Equal(t, 16, config.Model.NFactors)
	assert.Equal(t, 0.2, config.Model.DropoutP)
	assert.Equal(t, 0.1, config.Model.InitStdDev)
	// [train]
	assert.Equal(t, 5, config.Train.NEpochs)
	assert.Equal(t, 128, config.Train.BatchSize)
	assert.Equal(t, 0.05, config.Train.Lr)
	assert.Equal(t, 0.001, config.Train.WeightDecay)
	assert.Equal(t, "sgd", config.Train.Optimizer)
	assert.Equal(t, int64(42), config.Train.RandomState)
	assert.True(t, config.Train.Verbose)
	assert.NoError(t, config.Validate())
}

func TestSetDefault(t *testing.T) {
	setDefault()
	viper.SetConfigType("toml")
	err := viper.ReadConfig(strings.NewReader(""))
	require.NoError(t, err)
	var config Config
	err = viper.Unmarshal(&config)
	require.NoError(t, err)
	expected := GetDefaultConfig()
	assert.Equal(t, expected.Model, config.Model)
	assert.Equal(t, expected.Train, config.Train)
	assert.Equal(t, expected.Data.Separator, config.Data.Separator)
}

type environmentVariable struct {
	key   string
	value string
}

func TestBindEnv(t *testing.T) {
	variables := []environmentVariable{
		{"LATREC_TRAIN_PATH", "ratings.csv"},
		{"LATREC_MODEL_KIND", "pairwise"},
		{"LATREC_N_FACTORS", "64"},
		{"LATREC_LR", "0.5"},
	}
	for _, variable := range variables {
		t.Setenv(variable.key, variable.value)
	}
	setDefault()
	bindEnv()
	viper.SetConfigType("toml")
	err := viper.ReadConfig(strings.NewReader(""))
	require.NoError(t, err)
	var config Config
	err = viper.Unmarshal(&config)
	require.NoError(t, err)
	assert.Equal(t, "ratings.csv", config.Data.TrainPath)
	assert.Equal(t, "pairwise", config.Model.Kind)
	assert.Equal(t, 64, config.Model.NFactors)
	assert.Equal(t, 0.5, config.Train.Lr)
}

func TestValidate(t *testing.T) {
	config := GetDefaultConfig()
	config.Data.TrainPath = "train.csv"
	assert.NoError(t, config.Validate())

	config.Model.Kind = "bayesian"
	assert.Error(t, config.Validate())
	config.Model.Kind = "pointwise"

	config.Model.DropoutP = 1.5
	assert.Error(t, config.Validate())
	config.Model.DropoutP = 0

	config.Train.NEpochs = 0
	assert.Error(t, config.Validate())
	config.Train.NEpochs = 10

	config.Data.TrainPath = ""
	assert.Error(t, config.Validate())
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	text := `
[data]
train_path = "ratings.csv"

[train]
n_epochs = 3
`
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "ratings.csv", config.Data.TrainPath)
	assert.Equal(t, 3, config.Train.NEpochs)
	assert.Equal(t, 1024, config.Train.BatchSize)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
