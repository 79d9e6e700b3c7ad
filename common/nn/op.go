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
	"math/rand"

	"github.com/chewxy/math32"
)

type op interface {
	String() string
	forward(inputs ...*Tensor) *Tensor
	backward(dy *Tensor) []*Tensor
	inputsAndOutput() ([]*Tensor, *Tensor)
	setInputs(inputs ...*Tensor)
	setOutput(y *Tensor)
}

type base struct {
	inputs []*Tensor
	output *Tensor
}

func (b *base) inputsAndOutput() ([]*Tensor, *Tensor) {
	return b.inputs, b.output
}

func (b *base) setInputs(inputs ...*Tensor) {
	b.inputs = inputs
}

func (b *base) setOutput(y *Tensor) {
	b.output = y
}

func apply[T op](f T, inputs ...*Tensor) *Tensor {
	y := f.forward(inputs...)
	f.setInputs(inputs...)
	f.setOutput(y)
	y.op = f
	return y
}

// checkSuffixShape panics unless the shape of the second tensor is a suffix
// sequence of the shape of the first tensor.
func checkSuffixShape(x0, x1 *Tensor) (*Tensor, *Tensor) {
	if len(x0.shape) < len(x1.shape) {
		x0, x1 = x1, x0
	}
	for i := 0; i < len(x1.shape); i++ {
		if x0.shape[len(x0.shape)-len(x1.shape)+i] != x1.shape[i] {
			panic("the shape of the second tensor must be a suffix sequence of the shape of the first tensor")
		}
	}
	return x0, x1
}

type add struct {
	base
}

func (a *add) String() string {
	return "Add"
}

func (a *add) forward(inputs ...*Tensor) *Tensor {
	y := inputs[0].clone()
	y.add(inputs[1])
	return y
}

func (a *add) backward(dy *Tensor) []*Tensor {
	gx0 := dy.clone()
	gx1 := Zeros(a.inputs[1].shape...)
	wSize := 1
	for i := range gx1.shape {
		wSize *= gx1.shape[i]
	}
	for i := range dy.data {
		gx1.data[i%wSize] += dy.data[i]
	}
	return []*Tensor{gx0, gx1}
}

type sub struct {
	base
}

func (s *sub) String() string {
	return "Sub"
}

func (s *sub) forward(inputs ...*Tensor) *Tensor {
	y := inputs[0].clone()
	y.sub(inputs[1])
	return y
}

func (s *sub) backward(dy *Tensor) []*Tensor {
	gx0 := dy.clone()
	gx1 := Zeros(s.inputs[1].shape...)
	wSize := 1
	for i := range gx1.shape {
		wSize *= gx1.shape[i]
	}
	for i := range dy.data {
		gx1.data[i%wSize] -= dy.data[i]
	}
	return []*Tensor{gx0, gx1}
}

type mul struct {
	base
}

func (m *mul) String() string {
	return "Mul"
}

func (m *mul) forward(inputs ...*Tensor) *Tensor {
	y := inputs[0].clone()
	y.mul(inputs[1])
	return y
}

func (m *mul) backward(dy *Tensor) []*Tensor {
	gx0 := dy.clone()
	gx0.mul(m.inputs[1])
	gx1 := Zeros(m.inputs[1].shape...)
	wSize := 1
	for i := range gx1.shape {
		wSize *= gx1.shape[i]
	}
	for i := range dy.data {
		gx1.data[i%wSize] += dy.data[i] * m.inputs[0].data[i]
	}
	return []*Tensor{gx0, gx1}
}

type neg struct {
	base
}

func (n *neg) String() string {
	return "Neg"
}

func (n *neg) forward(inputs ...*Tensor) *Tensor {
	y := inputs[0].clone()
	y.neg()
	return y
}

func (n *neg) backward(dy *Tensor) []*Tensor {
	dx := dy.clone()
	dx.neg()
	return []*Tensor{dx}
}

type square struct {
	base
}

func (s *square) String() string {
	return "Square"
}

func (s *square) forward(inputs ...*Tensor) *Tensor {
	y := inputs[0].clone()
	y.square()
	return y
}

func (s *square) backward(dy *Tensor) []*Tensor {
	dx := s.inputs[0].clone()
	dx.mul(dy)
	for i := range dx.data {
		dx.data[i] *= 2
	}
	return []*Tensor{dx}
}

type exp struct {
	base
}

func (e *exp) String() string {
	return "Exp"
}

func (e *exp) forward(inputs ...*Tensor) *Tensor {
	y := inputs[0].clone()
	y.exp()
	return y
}

func (e *exp) backward(dy *Tensor) []*Tensor {
	dx := e.output.clone()
	dx.mul(dy)
	return []*Tensor{dx}
}

type log struct {
	base
}

func (l *log) String() string {
	return "Log"
}

func (l *log) forward(inputs ...*Tensor) *Tensor {
	y := inputs[0].clone()
	y.log()
	return y
}

func (l *log) backward(dy *Tensor) []*Tensor {
	dx := dy.clone()
	for i := range dx.data {
		dx.data[i] /= l.inputs[0].data[i]
	}
	return []*Tensor{dx}
}

type sum struct {
	base
}

func (s *sum) String() string {
	return "Sum"
}

func (s *sum) forward(inputs ...*Tensor) *Tensor {
	x := inputs[0]
	y := NewScalar(0)
	for i := range x.data {
		y.data[0] += x.data[i]
	}
	return y
}

func (s *sum) backward(dy *Tensor) []*Tensor {
	dx := Zeros(s.inputs[0].shape...)
	for i := range dx.data {
		dx.data[i] = dy.data[0]
	}
	return []*Tensor{dx}
}

type mean struct {
	base
}

func (m *mean) String() string {
	return "Mean"
}

func (m *mean) forward(inputs ...*Tensor) *Tensor {
	x := inputs[0]
	y := NewScalar(0)
	for i := range x.data {
		y.data[0] += x.data[i]
	}
	y.data[0] /= float32(len(x.data))
	return y
}

func (m *mean) backward(dy *Tensor) []*Tensor {
	dx := Zeros(m.inputs[0].shape...)
	for i := range dx.data {
		dx.data[i] = dy.data[0] / float32(len(dx.data))
	}
	return []*Tensor{dx}
}

type flatten struct {
	base
}

func (f *flatten) String() string {
	return "Flatten"
}

func (f *flatten) forward(inputs ...*Tensor) *Tensor {
	data := make([]float32, len(inputs[0].data))
	copy(data, inputs[0].data)
	return NewTensor(data, len(data))
}

func (f *flatten) backward(dy *Tensor) []*Tensor {
	data := make([]float32, len(dy.data))
	copy(data, dy.data)
	return []*Tensor{NewTensor(data, f.inputs[0].shape...)}
}

type sigmoid struct {
	base
}

func (s *sigmoid) String() string {
	return "Sigmoid"
}

func (s *sigmoid) forward(inputs ...*Tensor) *Tensor {
	y := inputs[0].clone()
	y.sigmoid()
	return y
}

func (s *sigmoid) backward(dy *Tensor) []*Tensor {
	// dx = dy * y * (1 - y)
	dx := dy.clone()
	dx.mul(s.output)
	for i := range dx.data {
		dx.data[i] *= 1 - s.output.data[i]
	}
	return []*Tensor{dx}
}

type softplus struct {
	base
}

func (s *softplus) String() string {
	return "Softplus"
}

func (s *softplus) forward(inputs ...*Tensor) *Tensor {
	// log(1+exp(x)) computed without overflow for large |x|
	y := inputs[0].clone()
	for i := range y.data {
		x := y.data[i]
		if x > 0 {
			y.data[i] = x + math32.Log1p(math32.Exp(-x))
		} else {
			y.data[i] = math32.Log1p(math32.Exp(x))
		}
	}
	return y
}

func (s *softplus) backward(dy *Tensor) []*Tensor {
	dx := s.inputs[0].clone()
	dx.sigmoid()
	dx.mul(dy)
	return []*Tensor{dx}
}

// batchDot computes the row-wise dot product of two (batch, factors) tensors.
type batchDot struct {
	base
}

func (b *batchDot) String() string {
	return "BatchDot"
}

func (b *batchDot) forward(inputs ...*Tensor) *Tensor {
	x0, x1 := inputs[0], inputs[1]
	batch, dim := x0.shape[0], x0.shape[1]
	y := Zeros(batch)
	for i := 0; i < batch; i++ {
		for j := 0; j < dim; j++ {
			y.data[i] += x0.data[i*dim+j] * x1.data[i*dim+j]
		}
	}
	return y
}

func (b *batchDot) backward(dy *Tensor) []*Tensor {
	x0, x1 := b.inputs[0], b.inputs[1]
	batch, dim := x0.shape[0], x0.shape[1]
	dx0 := Zeros(x0.shape...)
	dx1 := Zeros(x1.shape...)
	for i := 0; i < batch; i++ {
		for j := 0; j < dim; j++ {
			dx0.data[i*dim+j] = dy.data[i] * x1.data[i*dim+j]
			dx1.data[i*dim+j] = dy.data[i] * x0.data[i*dim+j]
		}
	}
	return []*Tensor{dx0, dx1}
}

// embedding gathers rows of a table by index. Backward scatter-adds the
// output gradient back into the table rows.
type embedding struct {
	base
	indices []int32
}

func (e *embedding) String() string {
	return "Embedding"
}

func (e *embedding) forward(inputs ...*Tensor) *Tensor {
	w := inputs[0]
	dim := w.shape[1]
	y := Zeros(len(e.indices), dim)
	for i, index := range e.indices {
		copy(y.data[i*dim:(i+1)*dim], w.data[int(index)*dim:(int(index)+1)*dim])
	}
	return y
}

func (e *embedding) backward(dy *Tensor) []*Tensor {
	w := e.inputs[0]
	dim := w.shape[1]
	dw := Zeros(w.shape...)
	for i, index := range e.indices {
		for j := 0; j < dim; j++ {
			dw.data[int(index)*dim+j] += dy.data[i*dim+j]
		}
	}
	return []*Tensor{dw}
}

// dropout zeroes each element independently with probability p and rescales
// survivors by 1/(1-p). The mask is drawn once at forward time from the
// caller's random source and reused by backward.
type dropout struct {
	base
	p    float32
	mask []float32
}

func (d *dropout) String() string {
	return "Dropout"
}

func (d *dropout) forward(inputs ...*Tensor) *Tensor {
	y := inputs[0].clone()
	for i := range y.data {
		y.data[i] *= d.mask[i]
	}
	return y
}

func (d *dropout) backward(dy *Tensor) []*Tensor {
	dx := dy.clone()
	for i := range dx.data {
		dx.data[i] *= d.mask[i]
	}
	return []*Tensor{dx}
}

// Add returns the element-wise sum of two tensors. The shape of the second tensor must be a suffix sequence of the shape of the first tensor.
func Add(x0, x1 *Tensor) *Tensor {
	x0, x1 = checkSuffixShape(x0, x1)
	return apply(&add{}, x0, x1)
}

// Sub returns the element-wise difference of two tensors. The shape of the second tensor must be a suffix sequence of the shape of the first tensor.
func Sub(x0, x1 *Tensor) *Tensor {
	x0, x1 = checkSuffixShape(x0, x1)
	return apply(&sub{}, x0, x1)
}

// Mul returns the element-wise product of two tensors. The shape of the second tensor must be a suffix sequence of the shape of the first tensor.
func Mul(x0, x1 *Tensor) *Tensor {
	x0, x1 = checkSuffixShape(x0, x1)
	return apply(&mul{}, x0, x1)
}

// Neg returns the element-wise negation of a tensor.
func Neg(x *Tensor) *Tensor {
	return apply(&neg{}, x)
}

// Square returns the element-wise square of a tensor.
func Square(x *Tensor) *Tensor {
	return apply(&square{}, x)
}

// Exp returns the element-wise exponential of a tensor.
func Exp(x *Tensor) *Tensor {
	return apply(&exp{}, x)
}

// Log returns the element-wise natural logarithm of a tensor.
func Log(x *Tensor) *Tensor {
	return apply(&log{}, x)
}

// Sum returns the sum of all elements in a tensor.
func Sum(x *Tensor) *Tensor {
	return apply(&sum{}, x)
}

// Mean returns the mean of all elements in a tensor.
func Mean(x *Tensor) *Tensor {
	return apply(&mean{}, x)
}

// Flatten reshapes a tensor to one dimension.
func Flatten(x *Tensor) *Tensor {
	return apply(&flatten{}, x)
}

// Sigmoid returns the element-wise logistic function of a tensor.
func Sigmoid(x *Tensor) *Tensor {
	return apply(&sigmoid{}, x)
}

// Softplus returns the element-wise log(1+exp(x)) of a tensor.
func Softplus(x *Tensor) *Tensor {
	return apply(&softplus{}, x)
}

// BatchDot returns the row-wise dot product of two (batch, factors) tensors.
func BatchDot(x0, x1 *Tensor) *Tensor {
	if len(x0.shape) != 2 || len(x1.shape) != 2 || x0.shape[0] != x1.shape[0] || x0.shape[1] != x1.shape[1] {
		panic("BatchDot expects two tensors of identical (batch, factors) shape")
	}
	return apply(&batchDot{}, x0, x1)
}

// Embedding gathers rows of table w by index.
func Embedding(w *Tensor, indices []int32) *Tensor {
	if len(w.shape) != 2 {
		panic("Embedding expects a two dimensional table")
	}
	for _, index := range indices {
		if index < 0 || int(index) >= w.shape[0] {
			panic("Embedding index out of range")
		}
	}
	return apply(&embedding{indices: indices}, w)
}

// Dropout zeroes elements of x independently with probability p and rescales
// survivors by 1/(1-p). The mask is drawn from rng.
func Dropout(x *Tensor, p float32, rng *rand.Rand) *Tensor {
	mask := make([]float32, len(x.data))
	if p < 1 {
		scale := 1 / (1 - p)
		for i := range mask {
			if rng.Float32() >= p {
				mask[i] = scale
			}
		}
	}
	return apply(&dropout{p: p, mask: mask}, x)
}
