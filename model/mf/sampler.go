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
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
	"github.com/latrec-io/latrec/base"
	"github.com/latrec-io/latrec/dataset"
)

// NegativeSampler draws one unobserved item per user for pairwise training.
type NegativeSampler interface {
	Sample(users []int32) ([]int32, error)
}

// uniformSampler draws items uniformly and rejects those in the user's
// feedback set.
type uniformSampler struct {
	rng          base.RandomGenerator
	numItems     int32
	userFeedback []mapset.Set[int32]
}

// NewUniformSampler creates a sampler over the items of the train split.
func NewUniformSampler(rng base.RandomGenerator, data *dataset.Interactions) NegativeSampler {
	return &uniformSampler{
		rng:          rng,
		numItems:     int32(data.NumItems()),
		userFeedback: data.UserFeedback(),
	}
}

func (s *uniformSampler) Sample(users []int32) ([]int32, error) {
	negatives := make([]int32, len(users))
	for i, userIndex := range users {
		if userIndex < 0 || int(userIndex) >= len(s.userFeedback) {
			return nil, errors.Annotatef(dataset.ErrIndexOutOfRange,
				"user %d of %d", userIndex, len(s.userFeedback))
		}
		seen := s.userFeedback[userIndex]
		if seen.Cardinality() >= int(s.numItems) {
			return nil, errors.Errorf("no negative item left for user %d", userIndex)
		}
		for {
			itemIndex := s.rng.Int31n(s.numItems)
			if !seen.Contains(itemIndex) {
				negatives[i] = itemIndex
				break
			}
		}
	}
	return negatives, nil
}
