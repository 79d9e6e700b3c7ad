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

// Package nn is a reverse-mode automatic differentiation engine over float32
// tensors. It provides the gradient and optimizer capability consumed by the
// factorization models: build a scalar loss from parameter tensors, call
// Backward, then apply an optimizer step.
package nn

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/chewxy/math32"
)

type Tensor struct {
	data  []float32
	shape []int
	grad  *Tensor
	op    op
}

func NewTensor(data []float32, shape ...int) *Tensor {
	n := 1
	for _, s := range shape {
		n *= s
	}
	if n != len(data) {
		panic(fmt.Sprintf("nn: shape %v does not match data length %d", shape, len(data)))
	}
	return &Tensor{
		data:  data,
		shape: shape,
	}
}

func NewScalar(data float32) *Tensor {
	return &Tensor{
		data:  []float32{data},
		shape: []int{},
	}
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape ...int) *Tensor {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return &Tensor{
		data:  make([]float32, n),
		shape: shape,
	}
}

// Ones creates a tensor filled with ones.
func Ones(shape ...int) *Tensor {
	n := 1
	for _, s := range shape {
		n *= s
	}
	data := make([]float32, n)
	for i := range data {
		data[i] = 1
	}
	return &Tensor{
		data:  data,
		shape: shape,
	}
}

// Rand creates a tensor filled with uniform random values in [0, 1).
func Rand(rng *rand.Rand, shape ...int) *Tensor {
	n := 1
	for _, s := range shape {
		n *= s
	}
	data := make([]float32, n)
	for i := range data {
		data[i] = rng.Float32()
	}
	return &Tensor{
		data:  data,
		shape: shape,
	}
}

// Normal creates a tensor filled with normal random values.
func Normal(rng *rand.Rand, mean, stdDev float32, shape ...int) *Tensor {
	n := 1
	for _, s := range shape {
		n *= s
	}
	data := make([]float32, n)
	for i := range data {
		data[i] = float32(rng.NormFloat64())*stdDev + mean
	}
	return &Tensor{
		data:  data,
		shape: shape,
	}
}

// NoGrad detaches a tensor from the graph that produced it.
func (t *Tensor) NoGrad() *Tensor {
	if t.op != nil {
		t.op = nil
	}
	return t
}

// Shape returns the dimensions of the tensor.
func (t *Tensor) Shape() []int {
	return t.shape
}

// Data returns the backing slice of the tensor.
func (t *Tensor) Data() []float32 {
	return t.data
}

// Float returns the value of a scalar (or single-element) tensor.
func (t *Tensor) Float() float32 {
	if len(t.data) != 1 {
		panic("nn: Float called on a tensor with more than one element")
	}
	return t.data[0]
}

func (t *Tensor) Grad() *Tensor {
	return t.grad
}

func (t *Tensor) String() string {
	// Print scalar value
	if len(t.shape) == 0 {
		return fmt.Sprint(t.data[0])
	}

	builder := strings.Builder{}
	builder.WriteString("[")
	if len(t.data) <= 10 {
		for i := 0; i < len(t.data); i++ {
			builder.WriteString(fmt.Sprint(t.data[i]))
			if i != len(t.data)-1 {
				builder.WriteString(", ")
			}
		}
	} else {
		for i := 0; i < 5; i++ {
			builder.WriteString(fmt.Sprint(t.data[i]))
			builder.WriteString(", ")
		}
		builder.WriteString("..., ")
		for i := len(t.data) - 5; i < len(t.data); i++ {
			builder.WriteString(fmt.Sprint(t.data[i]))
			if i != len(t.data)-1 {
				builder.WriteString(", ")
			}
		}
	}
	builder.WriteString("]")
	return builder.String()
}

// Backward propagates gradients from t to every tensor in the graph that
// produced it. Gradients accumulate when a tensor feeds several operators,
// so parameter tables gathered more than once per step (the item table of a
// pairwise model) receive the sum of contributions. An operator's backward
// runs only after all of its consumers have contributed, which keeps the
// traversal a valid topological order.
func (t *Tensor) Backward() {
	t.grad = Ones(t.shape...)
	if t.op == nil {
		return
	}
	// count consumers of each tensor within the graph
	pending := make(map[*Tensor]int)
	visited := make(map[op]bool)
	stack := []op{t.op}
	visited[t.op] = true
	for len(stack) > 0 {
		o := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		inputs, _ := o.inputsAndOutput()
		for _, input := range inputs {
			pending[input]++
			if input.op != nil && !visited[input.op] {
				visited[input.op] = true
				stack = append(stack, input.op)
			}
		}
	}
	// propagate
	queue := []op{t.op}
	for len(queue) > 0 {
		o := queue[0]
		queue = queue[1:]
		inputs, output := o.inputsAndOutput()
		grads := o.backward(output.grad)
		for i, input := range inputs {
			if input.grad == nil {
				input.grad = grads[i].clone()
			} else {
				input.grad.add(grads[i])
			}
			pending[input]--
			if input.op != nil && pending[input] == 0 {
				queue = append(queue, input.op)
			}
		}
	}
}

func (t *Tensor) clone() *Tensor {
	newData := make([]float32, len(t.data))
	copy(newData, t.data)
	return &Tensor{
		data:  newData,
		shape: t.shape,
	}
}

func (t *Tensor) add(other *Tensor) *Tensor {
	wSize := 1
	for i := range other.shape {
		wSize *= other.shape[i]
	}
	for i := range t.data {
		t.data[i] += other.data[i%wSize]
	}
	return t
}

func (t *Tensor) sub(other *Tensor) *Tensor {
	wSize := 1
	for i := range other.shape {
		wSize *= other.shape[i]
	}
	for i := range t.data {
		t.data[i] -= other.data[i%wSize]
	}
	return t
}

func (t *Tensor) mul(other *Tensor) *Tensor {
	wSize := 1
	for i := range other.shape {
		wSize *= other.shape[i]
	}
	for i := range t.data {
		t.data[i] *= other.data[i%wSize]
	}
	return t
}

func (t *Tensor) square() *Tensor {
	for i := range t.data {
		t.data[i] = t.data[i] * t.data[i]
	}
	return t
}

func (t *Tensor) exp() *Tensor {
	for i := range t.data {
		t.data[i] = math32.Exp(t.data[i])
	}
	return t
}

func (t *Tensor) log() *Tensor {
	for i := range t.data {
		t.data[i] = math32.Log(t.data[i])
	}
	return t
}

func (t *Tensor) neg() *Tensor {
	for i := range t.data {
		t.data[i] = -t.data[i]
	}
	return t
}

func (t *Tensor) sigmoid() *Tensor {
	for i := range t.data {
		t.data[i] = 1 / (1 + math32.Exp(-t.data[i]))
	}
	return t
}
