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

// Loss reduces a batch of predictions and targets to a scalar minimized by
// gradient descent. Losses are plain values passed per construction; nothing
// is shared between independently constructed pipelines.
type Loss func(prediction, target *Tensor) *Tensor

// SumSquareError returns the sum of squared differences.
func SumSquareError(prediction, target *Tensor) *Tensor {
	return Sum(Square(Sub(prediction, target)))
}

// MeanSquareError returns the mean of squared differences.
func MeanSquareError(prediction, target *Tensor) *Tensor {
	return Mean(Square(Sub(prediction, target)))
}

// PairwiseLogLoss is the BPR ranking loss: the sum of -log sigmoid(margin)
// over a batch of preference margins. The target tensor is ignored.
func PairwiseLogLoss(margin, _ *Tensor) *Tensor {
	return Sum(Softplus(Neg(margin)))
}
