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

// Package mf implements latent-factor matrix factorization models trained by
// gradient descent, with pointwise regression and pairwise ranking variants.
package mf

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/juju/errors"
	"github.com/latrec-io/latrec/common/nn"
	"github.com/latrec-io/latrec/dataset"
	"github.com/latrec-io/latrec/model"
)

var (
	// ErrInvalidConfig reports hyper-parameters outside their legal range.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrNumericInstability reports a non-finite training loss.
	ErrNumericInstability = errors.New("numeric instability")
)

// Mode selects whether a forward pass applies training-only transforms such
// as dropout. It is passed explicitly on every prediction instead of being
// carried as mutable model state.
type Mode int

const (
	// Train enables dropout on the factor embeddings.
	Train Mode = iota
	// Eval computes deterministic predictions.
	Eval
)

func (m Mode) String() string {
	switch m {
	case Train:
		return "train"
	case Eval:
		return "eval"
	default:
		return "unknown"
	}
}

// baseFactorization holds the parameters shared by both model variants: bias
// and factor lookup tables for users and items. Tables are sized once by Init
// and never resized.
type baseFactorization struct {
	model.BaseModel
	nFactors   int
	dropoutP   float32
	initMean   float32
	initStdDev float32

	numUsers int
	numItems int

	userBias   *nn.EmbeddingLayer // b_u, n_users x 1
	itemBias   *nn.EmbeddingLayer // b_i, n_items x 1
	userFactor *nn.EmbeddingLayer // p_u, n_users x n_factors
	itemFactor *nn.EmbeddingLayer // q_i, n_items x n_factors

	userTrained *bitset.BitSet
	itemTrained *bitset.BitSet
}

// SetParams sets hyper-parameters for the factorization model.
func (m *baseFactorization) SetParams(params model.Params) {
	m.BaseModel.SetParams(params)
	m.nFactors = m.Params.GetInt(model.NFactors, 40)
	m.dropoutP = m.Params.GetFloat32(model.DropoutP, 0)
	m.initMean = m.Params.GetFloat32(model.InitMean, 0)
	m.initStdDev = m.Params.GetFloat32(model.InitStdDev, 0.1)
}

func (m *baseFactorization) validate() error {
	if m.nFactors <= 0 {
		return errors.Annotatef(ErrInvalidConfig, "n_factors must be positive, got %d", m.nFactors)
	}
	if m.dropoutP < 0 || m.dropoutP > 1 {
		return errors.Annotatef(ErrInvalidConfig, "dropout_p must be in [0,1], got %g", m.dropoutP)
	}
	return nil
}

// Init sizes the parameter tables from the train split and initializes them
// from N(initMean, initStdDev). Users and items with feedback in the train
// split are flagged as trained.
func (m *baseFactorization) Init(data *dataset.Interactions) {
	m.numUsers = data.NumUsers()
	m.numItems = data.NumItems()
	rng := m.GetRandomGenerator()
	m.userBias = nn.NewEmbedding(rng.Rand, m.initMean, m.initStdDev, m.numUsers, 1)
	m.itemBias = nn.NewEmbedding(rng.Rand, m.initMean, m.initStdDev, m.numItems, 1)
	m.userFactor = nn.NewEmbedding(rng.Rand, m.initMean, m.initStdDev, m.numUsers, m.nFactors)
	m.itemFactor = nn.NewEmbedding(rng.Rand, m.initMean, m.initStdDev, m.numItems, m.nFactors)
	// set user trained flags
	m.userTrained = bitset.New(uint(m.numUsers))
	for userIndex, feedback := range data.UserFeedback() {
		if feedback.Cardinality() > 0 {
			m.userTrained.Set(uint(userIndex))
		}
	}
	// set item trained flags
	m.itemTrained = bitset.New(uint(m.numItems))
	for itemIndex, feedback := range data.ItemFeedback() {
		if feedback.Cardinality() > 0 {
			m.itemTrained.Set(uint(itemIndex))
		}
	}
}

// Parameters returns all trainable tensors.
func (m *baseFactorization) Parameters() []*nn.Tensor {
	var params []*nn.Tensor
	for _, layer := range []nn.Layer{m.userBias, m.itemBias, m.userFactor, m.itemFactor} {
		params = append(params, layer.Parameters()...)
	}
	return params
}

// NumUsers returns the number of user rows.
func (m *baseFactorization) NumUsers() int {
	return m.numUsers
}

// NumItems returns the number of item rows.
func (m *baseFactorization) NumItems() int {
	return m.numItems
}

// IsUserTrained returns false if the user has no feedback in the train split
// and its embedding keeps its random initialization.
func (m *baseFactorization) IsUserTrained(userIndex int32) bool {
	if userIndex < 0 || int(userIndex) >= m.numUsers {
		return false
	}
	return m.userTrained.Test(uint(userIndex))
}

// IsItemTrained returns false if the item has no feedback in the train split
// and its embedding keeps its random initialization.
func (m *baseFactorization) IsItemTrained(itemIndex int32) bool {
	if itemIndex < 0 || int(itemIndex) >= m.numItems {
		return false
	}
	return m.itemTrained.Test(uint(itemIndex))
}

func (m *baseFactorization) checkUsers(users []int32) error {
	for _, u := range users {
		if u < 0 || int(u) >= m.numUsers {
			return errors.Annotatef(dataset.ErrIndexOutOfRange, "user %d of %d", u, m.numUsers)
		}
	}
	return nil
}

func (m *baseFactorization) checkItems(items []int32) error {
	for _, i := range items {
		if i < 0 || int(i) >= m.numItems {
			return errors.Annotatef(dataset.ErrIndexOutOfRange, "item %d of %d", i, m.numItems)
		}
	}
	return nil
}

// dropout masks x during training. Eval passes and a zero probability leave x
// untouched and draw nothing from the random generator.
func (m *baseFactorization) dropout(x *nn.Tensor, mode Mode) *nn.Tensor {
	if mode != Train || m.dropoutP == 0 {
		return x
	}
	return nn.Dropout(x, m.dropoutP, m.GetRandomGenerator().Rand)
}

// Pointwise predicts explicit ratings as
//
//	b_u + b_i + p_u . q_i
//
// and is trained against observed values with a regression loss.
type Pointwise struct {
	baseFactorization
}

// NewPointwise creates a pointwise factorization model.
func NewPointwise(params model.Params) (*Pointwise, error) {
	p := new(Pointwise)
	p.SetParams(params)
	if err := p.validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return p, nil
}

// Predict scores each (user, item) pair. Dropout applies to the factor
// embeddings only when mode is Train.
func (p *Pointwise) Predict(users, items []int32, mode Mode) (*nn.Tensor, error) {
	if len(users) != len(items) {
		return nil, errors.Annotatef(dataset.ErrLengthMismatch,
			"%d users and %d items", len(users), len(items))
	}
	if err := p.checkUsers(users); err != nil {
		return nil, errors.Trace(err)
	}
	if err := p.checkItems(items); err != nil {
		return nil, errors.Trace(err)
	}
	userEmbedding := p.dropout(p.userFactor.Forward(users), mode)
	itemEmbedding := p.dropout(p.itemFactor.Forward(items), mode)
	prediction := nn.Add(
		nn.Add(nn.Flatten(p.userBias.Forward(users)), nn.Flatten(p.itemBias.Forward(items))),
		nn.BatchDot(userEmbedding, itemEmbedding))
	return prediction, nil
}

// Pairwise scores the preference margin between a positive and a negative
// item for each user:
//
//	p_u . (q_pos - q_neg) + b_u + b_pos - b_neg
//
// The margin is antisymmetric under swapping the positive and negative items.
type Pairwise struct {
	baseFactorization
}

// NewPairwise creates a pairwise ranking factorization model.
func NewPairwise(params model.Params) (*Pairwise, error) {
	p := new(Pairwise)
	p.SetParams(params)
	if err := p.validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return p, nil
}

// Predict scores each (user, positive, negative) triple.
func (p *Pairwise) Predict(users, posItems, negItems []int32, mode Mode) (*nn.Tensor, error) {
	if len(users) != len(posItems) || len(users) != len(negItems) {
		return nil, errors.Annotatef(dataset.ErrLengthMismatch,
			"%d users, %d positive and %d negative items", len(users), len(posItems), len(negItems))
	}
	if err := p.checkUsers(users); err != nil {
		return nil, errors.Trace(err)
	}
	if err := p.checkItems(posItems); err != nil {
		return nil, errors.Trace(err)
	}
	if err := p.checkItems(negItems); err != nil {
		return nil, errors.Trace(err)
	}
	userEmbedding := p.dropout(p.userFactor.Forward(users), mode)
	itemEmbedding := p.dropout(nn.Sub(p.itemFactor.Forward(posItems), p.itemFactor.Forward(negItems)), mode)
	margin := nn.Add(nn.BatchDot(userEmbedding, itemEmbedding), nn.Flatten(p.userBias.Forward(users)))
	margin = nn.Add(margin, nn.Sub(nn.Flatten(p.itemBias.Forward(posItems)), nn.Flatten(p.itemBias.Forward(negItems))))
	return margin, nil
}
