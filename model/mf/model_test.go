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
	"testing"

	"github.com/juju/errors"
	"github.com/latrec-io/latrec/common/floats"
	"github.com/latrec-io/latrec/dataset"
	"github.com/latrec-io/latrec/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestInteractions builds a 3 users by 2 items store where user 2 and
// item 1 have no train feedback.
func newTestInteractions(t *testing.T) *dataset.Interactions {
	t.Helper()
	train, err := dataset.NewMatrix(3, 2,
		[]int32{0, 1},
		[]int32{0, 0},
		[]float32{4, 2})
	require.NoError(t, err)
	data, err := dataset.NewInteractions(train, nil)
	require.NoError(t, err)
	return data
}

func TestNewPointwise_InvalidConfig(t *testing.T) {
	_, err := NewPointwise(model.Params{model.NFactors: 0})
	assert.ErrorIs(t, errors.Cause(err), ErrInvalidConfig)
	_, err = NewPointwise(model.Params{model.DropoutP: float32(1.5)})
	assert.ErrorIs(t, errors.Cause(err), ErrInvalidConfig)
	_, err = NewPointwise(model.Params{model.DropoutP: float32(-0.1)})
	assert.ErrorIs(t, errors.Cause(err), ErrInvalidConfig)
	_, err = NewPointwise(nil)
	assert.NoError(t, err)
}

func TestBaseFactorization_TrainedFlags(t *testing.T) {
	m, err := NewPointwise(model.Params{model.NFactors: 4})
	require.NoError(t, err)
	m.Init(newTestInteractions(t))
	assert.True(t, m.IsUserTrained(0))
	assert.True(t, m.IsUserTrained(1))
	assert.False(t, m.IsUserTrained(2))
	assert.True(t, m.IsItemTrained(0))
	assert.False(t, m.IsItemTrained(1))
	// Out-of-range indices are never trained.
	assert.False(t, m.IsUserTrained(-1))
	assert.False(t, m.IsUserTrained(3))
	assert.False(t, m.IsItemTrained(2))
}

func TestPointwise_Predict(t *testing.T) {
	m, err := NewPointwise(model.Params{model.NFactors: 4, model.RandomState: int64(42)})
	require.NoError(t, err)
	m.Init(newTestInteractions(t))
	// With zeroed factors the prediction reduces to the bias sum.
	floats.Zero(m.userFactor.W.Data())
	floats.Zero(m.itemFactor.W.Data())
	copy(m.userBias.W.Data(), []float32{1, 2, 3})
	copy(m.itemBias.W.Data(), []float32{10, 20})
	prediction, err := m.Predict([]int32{0, 1, 2}, []int32{0, 1, 0}, Eval)
	require.NoError(t, err)
	assert.Equal(t, []float32{11, 22, 13}, prediction.Data())
}

func TestPointwise_PredictErrors(t *testing.T) {
	m, err := NewPointwise(nil)
	require.NoError(t, err)
	m.Init(newTestInteractions(t))
	_, err = m.Predict([]int32{0, 1}, []int32{0}, Eval)
	assert.ErrorIs(t, errors.Cause(err), dataset.ErrLengthMismatch)
	_, err = m.Predict([]int32{3}, []int32{0}, Eval)
	assert.ErrorIs(t, errors.Cause(err), dataset.ErrIndexOutOfRange)
	_, err = m.Predict([]int32{0}, []int32{-1}, Eval)
	assert.ErrorIs(t, errors.Cause(err), dataset.ErrIndexOutOfRange)
}

func TestPointwise_DropoutModes(t *testing.T) {
	m, err := NewPointwise(model.Params{
		model.NFactors: 4,
		model.DropoutP: float32(1),
	})
	require.NoError(t, err)
	m.Init(newTestInteractions(t))
	copy(m.userBias.W.Data(), []float32{1, 2, 3})
	copy(m.itemBias.W.Data(), []float32{10, 20})
	// Eval ignores dropout and keeps the factor term.
	evalPrediction, err := m.Predict([]int32{0}, []int32{0}, Eval)
	require.NoError(t, err)
	factorTerm := floats.Dot(m.userFactor.W.Data()[:4], m.itemFactor.W.Data()[:4])
	assert.InDelta(t, 11+factorTerm, evalPrediction.Data()[0], 1e-6)
	// Train with p=1 drops every factor, leaving only the biases.
	trainPrediction, err := m.Predict([]int32{0}, []int32{0}, Train)
	require.NoError(t, err)
	assert.InDelta(t, 11, trainPrediction.Data()[0], 1e-6)
}

func TestPointwise_DropoutZeroIsDeterministic(t *testing.T) {
	predict := func() []float32 {
		m, err := NewPointwise(model.Params{model.NFactors: 8, model.RandomState: int64(7)})
		require.NoError(t, err)
		m.Init(newTestInteractions(t))
		first, err := m.Predict([]int32{0, 1}, []int32{0, 1}, Train)
		require.NoError(t, err)
		second, err := m.Predict([]int32{0, 1}, []int32{0, 1}, Train)
		require.NoError(t, err)
		assert.Equal(t, first.Data(), second.Data())
		return first.Data()
	}
	assert.Equal(t, predict(), predict())
}

func TestPairwise_Antisymmetry(t *testing.T) {
	m, err := NewPairwise(model.Params{model.NFactors: 4, model.RandomState: int64(3)})
	require.NoError(t, err)
	m.Init(newTestInteractions(t))
	// The user bias is invariant under the swap, so remove it to observe
	// the antisymmetric part of the margin.
	floats.Zero(m.userBias.W.Data())
	users := []int32{0, 1, 2}
	pos := []int32{0, 1, 0}
	neg := []int32{1, 0, 1}
	forward, err := m.Predict(users, pos, neg, Eval)
	require.NoError(t, err)
	backward, err := m.Predict(users, neg, pos, Eval)
	require.NoError(t, err)
	for i := range forward.Data() {
		assert.InDelta(t, -forward.Data()[i], backward.Data()[i], 1e-6)
	}
}

func TestPairwise_PredictErrors(t *testing.T) {
	m, err := NewPairwise(nil)
	require.NoError(t, err)
	m.Init(newTestInteractions(t))
	_, err = m.Predict([]int32{0}, []int32{0, 1}, []int32{1}, Eval)
	assert.ErrorIs(t, errors.Cause(err), dataset.ErrLengthMismatch)
	_, err = m.Predict([]int32{0}, []int32{2}, []int32{1}, Eval)
	assert.ErrorIs(t, errors.Cause(err), dataset.ErrIndexOutOfRange)
	_, err = m.Predict([]int32{0}, []int32{0}, []int32{5}, Eval)
	assert.ErrorIs(t, errors.Cause(err), dataset.ErrIndexOutOfRange)
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "train", Train.String())
	assert.Equal(t, "eval", Eval.String())
	assert.Equal(t, "unknown", Mode(42).String())
}
