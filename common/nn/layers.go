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

import "math/rand"

// Layer is a container of trainable tensors.
type Layer interface {
	Parameters() []*Tensor
}

// EmbeddingLayer is a lookup table of trainable rows.
type EmbeddingLayer struct {
	W *Tensor
}

// NewEmbedding creates a lookup table of n rows initialized from
// N(mean, stdDev) drawn from rng.
func NewEmbedding(rng *rand.Rand, mean, stdDev float32, n int, shape ...int) *EmbeddingLayer {
	wShape := append([]int{n}, shape...)
	return &EmbeddingLayer{
		W: Normal(rng, mean, stdDev, wShape...),
	}
}

func (e *EmbeddingLayer) Parameters() []*Tensor {
	return []*Tensor{e.W}
}

// Forward gathers the rows addressed by indices.
func (e *EmbeddingLayer) Forward(indices []int32) *Tensor {
	return Embedding(e.W, indices)
}
