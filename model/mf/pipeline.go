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

package mf

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chewxy/math32"
	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/latrec-io/latrec/base"
	"github.com/latrec-io/latrec/base/log"
	"github.com/latrec-io/latrec/common/nn"
	"github.com/latrec-io/latrec/dataset"
	"github.com/latrec-io/latrec/model"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// Kind selects the model variant trained by a pipeline.
type Kind string

const (
	// KindPointwise trains a Pointwise model against observed values.
	KindPointwise Kind = "pointwise"
	// KindPairwise trains a Pairwise model on sampled (positive, negative) pairs.
	KindPairwise Kind = "pairwise"
)

// PipelineConfig gathers everything a Pipeline needs besides the data. The
// zero value trains a pointwise model with default hyper-parameters.
type PipelineConfig struct {
	// Kind of model to train. Defaults to KindPointwise.
	Kind Kind
	// Params are the hyper-parameters. Missing entries fall back to defaults.
	Params model.Params
	// Loss maps predictions and targets to a scalar. Defaults to
	// nn.SumSquareError for pointwise and nn.PairwiseLogLoss for pairwise.
	Loss nn.Loss
	// Optimizer creates the optimizer bound to the model parameters.
	// Defaults to nn.NewAdam.
	Optimizer nn.OptimizerCreator
	// Sampler draws negative items for pairwise training. Defaults to a
	// uniform sampler over items outside the user's feedback set.
	Sampler NegativeSampler
	// SkipUnstable continues past batches with a non-finite loss instead of
	// aborting the run.
	SkipUnstable bool
	// WarmStart is reserved. Repeated Fit calls continue from the current
	// parameters either way.
	WarmStart bool
	// Verbose prints one summary line per epoch and a per-batch progress bar.
	Verbose bool
	// Output receives the verbose report. Defaults to os.Stdout.
	Output io.Writer
}

// History records the loss series of a training run. All slices grow by one
// entry per completed epoch. Test stays nil when there is no test split.
type History struct {
	Epoch []int
	Train []float32
	Test  []float32
}

// Pipeline owns a model, its optimizer and the interaction store, and drives
// training for a fixed number of epochs.
type Pipeline struct {
	data      *dataset.Interactions
	kind      Kind
	pointwise *Pointwise
	pairwise  *Pairwise
	loss      nn.Loss
	optimizer nn.Optimizer
	sampler   NegativeSampler
	rng       base.RandomGenerator

	nEpochs      int
	batchSize    int
	skipUnstable bool
	warmStart    bool
	verbose      bool
	out          io.Writer

	history History
}

// NewPipeline builds the interaction store from the train matrix and the
// optional test matrix, sizes the model from it and binds the optimizer to
// the model parameters.
func NewPipeline(train, test *dataset.Matrix, cfg *PipelineConfig) (*Pipeline, error) {
	if cfg == nil {
		cfg = &PipelineConfig{}
	}
	data, err := dataset.NewInteractions(train, test)
	if err != nil {
		return nil, errors.Trace(err)
	}
	params := cfg.Params
	if params == nil {
		params = model.Params{}
	}
	p := &Pipeline{
		data:         data,
		kind:         cfg.Kind,
		loss:         cfg.Loss,
		sampler:      cfg.Sampler,
		nEpochs:      params.GetInt(model.NEpochs, 10),
		batchSize:    params.GetInt(model.BatchSize, 1024),
		skipUnstable: cfg.SkipUnstable,
		warmStart:    cfg.WarmStart,
		verbose:      cfg.Verbose,
		out:          cfg.Output,
	}
	if p.kind == "" {
		p.kind = KindPointwise
	}
	if p.out == nil {
		p.out = os.Stdout
	}
	if p.nEpochs <= 0 {
		return nil, errors.Annotatef(ErrInvalidConfig, "n_epochs must be positive, got %d", p.nEpochs)
	}
	if p.batchSize <= 0 {
		return nil, errors.Annotatef(ErrInvalidConfig, "batch_size must be positive, got %d", p.batchSize)
	}
	var parameters []*nn.Tensor
	switch p.kind {
	case KindPointwise:
		if p.pointwise, err = NewPointwise(params); err != nil {
			return nil, errors.Trace(err)
		}
		// Shuffling draws from a generator derived from the model's seed.
		p.rng = base.NewRandomGenerator(p.pointwise.GetRandomGenerator().Int63())
		p.pointwise.Init(data)
		parameters = p.pointwise.Parameters()
		if p.loss == nil {
			p.loss = nn.SumSquareError
		}
	case KindPairwise:
		if p.pairwise, err = NewPairwise(params); err != nil {
			return nil, errors.Trace(err)
		}
		// Shuffling and negative sampling draw from a generator derived
		// from the model's seed.
		p.rng = base.NewRandomGenerator(p.pairwise.GetRandomGenerator().Int63())
		p.pairwise.Init(data)
		parameters = p.pairwise.Parameters()
		if p.loss == nil {
			p.loss = nn.PairwiseLogLoss
		}
		if p.sampler == nil {
			p.sampler = NewUniformSampler(p.rng, data)
		}
	default:
		return nil, errors.Annotatef(ErrInvalidConfig, "unknown model kind %q", p.kind)
	}
	creator := cfg.Optimizer
	if creator == nil {
		creator = nn.NewAdam
	}
	p.optimizer = creator(parameters, params.GetFloat32(model.Lr, 0.01))
	p.optimizer.SetWeightDecay(params.GetFloat32(model.WeightDecay, 0))
	return p, nil
}

// Pointwise returns the trained pointwise model, or nil for pairwise runs.
func (p *Pipeline) Pointwise() *Pointwise {
	return p.pointwise
}

// Pairwise returns the trained pairwise model, or nil for pointwise runs.
func (p *Pipeline) Pairwise() *Pairwise {
	return p.pairwise
}

// History returns the loss series recorded so far.
func (p *Pipeline) History() History {
	return p.history
}

// Fit trains the model for the configured number of epochs. Each epoch runs
// one pass over the shuffled train split and, when a test split exists, one
// no-gradient validation pass. The context is checked between batches.
func (p *Pipeline) Fit(ctx context.Context) error {
	runID := uuid.NewString()
	log.Logger().Info("fit "+string(p.kind),
		zap.String("run_id", runID),
		zap.Int("train_set_size", p.data.Count(dataset.Train)),
		zap.Int("test_set_size", lo.Ternary(p.data.HasTest(), p.data.Count(dataset.Test), 0)),
		zap.Int("n_epochs", p.nEpochs),
		zap.Int("batch_size", p.batchSize))
	trainLoader, err := dataset.NewLoader(p.data, dataset.Train, p.batchSize, p.rng)
	if err != nil {
		return errors.Trace(err)
	}
	var testLoader *dataset.Loader
	if p.data.HasTest() {
		if testLoader, err = dataset.NewLoader(p.data, dataset.Test, p.batchSize, p.rng); err != nil {
			return errors.Trace(err)
		}
	}
	for epoch := 1; epoch <= p.nEpochs; epoch++ {
		fitStart := time.Now()
		trainLoss, err := p.fitEpoch(ctx, epoch, trainLoader)
		if err != nil {
			return errors.Trace(err)
		}
		row := fmt.Sprintf("Epoch: %s | %s | ", center(strconv.Itoa(epoch), 3), center(fmt.Sprintf("%.5f", trainLoss), 10))
		fields := []zap.Field{
			zap.String("run_id", runID),
			zap.Duration("fit_time", time.Since(fitStart)),
			zap.Float32("train_loss", trainLoss),
		}
		p.history.Epoch = append(p.history.Epoch, epoch)
		p.history.Train = append(p.history.Train, trainLoss)
		if testLoader != nil {
			testLoss, err := p.validationLoss(ctx, testLoader)
			if err != nil {
				return errors.Trace(err)
			}
			p.history.Test = append(p.history.Test, testLoss)
			row += center(fmt.Sprintf("%.5f", testLoss), 10)
			fields = append(fields, zap.Float32("test_loss", testLoss))
		}
		log.Logger().Info(fmt.Sprintf("fit %s %d/%d", p.kind, epoch, p.nEpochs), fields...)
		if p.verbose {
			fmt.Fprintln(p.out, row)
		}
	}
	return nil
}

// fitEpoch runs one pass over the shuffled train split and returns the
// accumulated loss normalized by the number of train entries.
func (p *Pipeline) fitEpoch(ctx context.Context, epoch int, loader *dataset.Loader) (float32, error) {
	loader.Reset()
	var bar *progressbar.ProgressBar
	if p.verbose {
		bar = progressbar.NewOptions(loader.BatchCount(),
			progressbar.OptionSetDescription(fmt.Sprintf("Epoch %d/%d", epoch, p.nEpochs)),
			progressbar.OptionSetWriter(p.out))
	}
	totalLoss := float32(0)
	for {
		if err := ctx.Err(); err != nil {
			return 0, errors.Trace(err)
		}
		batch, ok := loader.Next()
		if !ok {
			break
		}
		batchLoss, err := p.batchLoss(batch, Train)
		if err != nil {
			return 0, errors.Trace(err)
		}
		value := batchLoss.Float()
		if math32.IsNaN(value) || math32.IsInf(value, 0) {
			log.Logger().Warn("numeric instability",
				zap.Int("epoch", epoch),
				zap.Float32("batch_loss", value))
			if p.skipUnstable {
				continue
			}
			return 0, errors.Annotatef(ErrNumericInstability, "batch loss %g in epoch %d", value, epoch)
		}
		p.optimizer.ZeroGrad()
		batchLoss.Backward()
		p.optimizer.Step()
		totalLoss += value
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
		_ = bar.Clear()
	}
	return totalLoss / float32(p.data.Count(dataset.Train)), nil
}

// validationLoss runs one pass over the test split without touching the
// parameters and returns the loss normalized by the number of test entries.
func (p *Pipeline) validationLoss(ctx context.Context, loader *dataset.Loader) (float32, error) {
	loader.Reset()
	totalLoss := float32(0)
	for {
		if err := ctx.Err(); err != nil {
			return 0, errors.Trace(err)
		}
		batch, ok := loader.Next()
		if !ok {
			break
		}
		batchLoss, err := p.batchLoss(batch, Eval)
		if err != nil {
			return 0, errors.Trace(err)
		}
		totalLoss += batchLoss.Float()
	}
	return totalLoss / float32(p.data.Count(dataset.Test)), nil
}

// batchLoss runs the forward pass of the configured model variant on one
// batch and reduces it with the configured loss.
func (p *Pipeline) batchLoss(batch dataset.Batch, mode Mode) (*nn.Tensor, error) {
	targets := nn.NewTensor(batch.Values, batch.Len())
	var prediction *nn.Tensor
	var err error
	switch p.kind {
	case KindPointwise:
		prediction, err = p.pointwise.Predict(batch.Users, batch.Items, mode)
	case KindPairwise:
		var negatives []int32
		if negatives, err = p.sampler.Sample(batch.Users); err != nil {
			return nil, errors.Trace(err)
		}
		prediction, err = p.pairwise.Predict(batch.Users, batch.Items, negatives, mode)
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	return p.loss(prediction, targets), nil
}

// center pads s with spaces on both sides up to width, the extra space going
// to the right.
func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	left := (width - len(s)) / 2
	right := width - len(s) - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}
