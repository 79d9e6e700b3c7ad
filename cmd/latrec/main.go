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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/latrec-io/latrec/base/log"
	"github.com/latrec-io/latrec/common/nn"
	"github.com/latrec-io/latrec/config"
	"github.com/latrec-io/latrec/dataset"
	"github.com/latrec-io/latrec/model"
	"github.com/latrec-io/latrec/model/mf"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const version = "0.1.0"

var trainCommand = &cobra.Command{
	Use:   "latrec",
	Short: "Train latent-factor recommendation models on interaction matrices.",
	Run: func(cmd *cobra.Command, args []string) {
		// Show version
		if showVersion, _ := cmd.PersistentFlags().GetBool("version"); showVersion {
			fmt.Println("latrec version", version)
			return
		}
		// setup logger
		debug, _ := cmd.PersistentFlags().GetBool("debug")
		log.SetLogger(cmd.PersistentFlags(), debug)

		// Load config
		configPath, _ := cmd.PersistentFlags().GetString("config")
		log.Logger().Info("load config", zap.String("config", configPath))
		conf, err := config.LoadConfig(configPath)
		if err != nil {
			log.Logger().Fatal("failed to load config", zap.Error(err))
		}

		// Load data
		train, test, err := loadData(&conf.Data)
		if err != nil {
			log.Logger().Fatal("failed to load data", zap.Error(err))
		}

		// Build pipeline
		pipeline, err := mf.NewPipeline(train, test, &mf.PipelineConfig{
			Kind:         mf.Kind(conf.Model.Kind),
			Params:       model.NewParamsFromConfig(conf),
			Optimizer:    optimizerFromConfig(&conf.Train),
			SkipUnstable: conf.Train.SkipUnstable,
			Verbose:      conf.Train.Verbose,
		})
		if err != nil {
			log.Logger().Fatal("failed to build pipeline", zap.Error(err))
		}

		// Stop training on interrupt
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		// Train
		if err := pipeline.Fit(ctx); err != nil {
			log.Logger().Fatal("failed to fit model", zap.Error(err))
		}
		history := pipeline.History()
		log.Logger().Info("training complete",
			zap.Int("epochs", len(history.Epoch)),
			zap.Float32s("train_loss", history.Train),
			zap.Float32s("test_loss", history.Test))
	},
}

// loadData reads the train split and the optional test split, then grows both
// matrices to a common shape.
func loadData(conf *config.DataConfig) (train, test *dataset.Matrix, err error) {
	if train, err = dataset.LoadCSV(conf.TrainPath, conf.Separator); err != nil {
		return nil, nil, err
	}
	if conf.TestPath == "" {
		return train, nil, nil
	}
	if test, err = dataset.LoadCSV(conf.TestPath, conf.Separator); err != nil {
		return nil, nil, err
	}
	numUsers := max(train.NumRows(), test.NumRows())
	numItems := max(train.NumCols(), test.NumCols())
	if train, err = train.Reshape(numUsers, numItems); err != nil {
		return nil, nil, err
	}
	if test, err = test.Reshape(numUsers, numItems); err != nil {
		return nil, nil, err
	}
	return train, test, nil
}

func optimizerFromConfig(conf *config.TrainConfig) nn.OptimizerCreator {
	if conf.Optimizer == "sgd" {
		return nn.NewSGD
	}
	return nn.NewAdam
}

func init() {
	log.AddFlags(trainCommand.PersistentFlags())
	trainCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	trainCommand.PersistentFlags().StringP("config", "c", "", "configuration file path")
	trainCommand.PersistentFlags().BoolP("version", "v", false, "latrec version")
}

func main() {
	if err := trainCommand.Execute(); err != nil {
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}
