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

package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// minimize (x-3)^2 from x=0
func optimize(t *testing.T, creator OptimizerCreator, lr float32, steps int) {
	x := NewTensor([]float32{0}, 1)
	optimizer := creator([]*Tensor{x}, lr)
	for i := 0; i < steps; i++ {
		loss := Sum(Square(Sub(x, NewTensor([]float32{3}, 1))))
		optimizer.ZeroGrad()
		loss.Backward()
		optimizer.Step()
	}
	assert.InDelta(t, 3, x.data[0], 0.1)
}

func TestSGD(t *testing.T) {
	optimize(t, NewSGD, 0.1, 100)
}

func TestAdam(t *testing.T) {
	optimize(t, NewAdam, 0.1, 500)
}

func TestZeroGrad(t *testing.T) {
	x := NewTensor([]float32{1}, 1)
	optimizer := NewSGD([]*Tensor{x}, 0.1)
	Sum(Square(x)).Backward()
	assert.NotNil(t, x.grad)
	optimizer.ZeroGrad()
	assert.Nil(t, x.grad)
}

func TestWeightDecay(t *testing.T) {
	// with pure weight decay the parameter shrinks toward zero
	x := NewTensor([]float32{1}, 1)
	optimizer := NewSGD([]*Tensor{x}, 0.1)
	optimizer.SetWeightDecay(1)
	for i := 0; i < 10; i++ {
		loss := Sum(Mul(x, NewScalar(0)))
		optimizer.ZeroGrad()
		loss.Backward()
		optimizer.Step()
	}
	assert.Less(t, x.data[0], float32(1))
	assert.Greater(t, x.data[0], float32(0))
}

func TestStepWithoutGradient(t *testing.T) {
	x := NewTensor([]float32{1}, 1)
	optimizer := NewAdam([]*Tensor{x}, 0.1)
	assert.NotPanics(t, optimizer.Step)
	assert.Equal(t, float32(1), x.data[0])
}
