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

// Package floats provides float32 vector kernels shared by the tensor engine
// and the models.
package floats

import (
	"github.com/chewxy/math32"
)

// Zero fills a vector with zeros.
func Zero(a []float32) {
	for i := range a {
		a[i] = 0
	}
}

// SubTo computes dst = a - b.
func SubTo(a, b, dst []float32) {
	if len(a) != len(b) || len(a) != len(dst) {
		panic("floats: slice lengths do not match")
	}
	for i := range a {
		dst[i] = a[i] - b[i]
	}
}

// AddTo computes dst = a + b.
func AddTo(a, b, dst []float32) {
	if len(a) != len(b) || len(a) != len(dst) {
		panic("floats: slice lengths do not match")
	}
	for i := range a {
		dst[i] = a[i] + b[i]
	}
}

// MulTo computes dst = a * b.
func MulTo(a, b, dst []float32) {
	if len(a) != len(b) || len(a) != len(dst) {
		panic("floats: slice lengths do not match")
	}
	for i := range a {
		dst[i] = a[i] * b[i]
	}
}

// MulConst computes dst *= c.
func MulConst(dst []float32, c float32) {
	for i := range dst {
		dst[i] *= c
	}
}

// MulConstTo computes dst = a * c.
func MulConstTo(a []float32, c float32, dst []float32) {
	if len(a) != len(dst) {
		panic("floats: slice lengths do not match")
	}
	for i := range a {
		dst[i] = a[i] * c
	}
}

// MulConstAdd computes dst += a * c.
func MulConstAdd(a []float32, c float32, dst []float32) {
	if len(a) != len(dst) {
		panic("floats: slice lengths do not match")
	}
	for i := range a {
		dst[i] += a[i] * c
	}
}

// Dot computes the dot product of two vectors.
func Dot(a, b []float32) (ret float32) {
	if len(a) != len(b) {
		panic("floats: slice lengths do not match")
	}
	for i := range a {
		ret += a[i] * b[i]
	}
	return
}

// Sum returns the sum of elements.
func Sum(a []float32) (ret float32) {
	for i := range a {
		ret += a[i]
	}
	return
}

// Mean returns the mean of elements.
func Mean(a []float32) float32 {
	return Sum(a) / float32(len(a))
}

// StdDev returns the sample standard deviation of elements.
func StdDev(a []float32) float32 {
	mean := Mean(a)
	var s float32
	for i := range a {
		s += (a[i] - mean) * (a[i] - mean)
	}
	return math32.Sqrt(s / float32(len(a)-1))
}

// Min returns the smallest element.
func Min(a []float32) float32 {
	ret := a[0]
	for i := range a {
		if a[i] < ret {
			ret = a[i]
		}
	}
	return ret
}

// Max returns the largest element.
func Max(a []float32) float32 {
	ret := a[0]
	for i := range a {
		if a[i] > ret {
			ret = a[i]
		}
	}
	return ret
}
