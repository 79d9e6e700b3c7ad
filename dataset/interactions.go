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

package dataset

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
)

// Split selects the train or test part of an interaction store.
type Split int

const (
	Train Split = iota
	Test
)

func (s Split) String() string {
	switch s {
	case Train:
		return "train"
	case Test:
		return "test"
	default:
		return "unknown"
	}
}

// Interactions wraps a sparse user-item matrix for the train split and an
// optional test split. Both splits share one declared (users, items) shape.
// The store is immutable after construction; iteration order during training
// is decided by a Loader, not by storage order.
type Interactions struct {
	train        *Matrix
	test         *Matrix
	userFeedback []mapset.Set[int32]
	itemFeedback []mapset.Set[int32]
}

// NewInteractions creates an interaction store from a train matrix and an
// optional (nil) test matrix.
func NewInteractions(train, test *Matrix) (*Interactions, error) {
	if train == nil {
		return nil, errors.NotValidf("nil train matrix")
	}
	if test != nil && (train.numRows != test.numRows || train.numCols != test.numCols) {
		return nil, errors.Annotatef(ErrShapeMismatch,
			"train (%d, %d) and test (%d, %d)", train.numRows, train.numCols, test.numRows, test.numCols)
	}
	i := &Interactions{
		train:        train,
		test:         test,
		userFeedback: make([]mapset.Set[int32], train.numRows),
		itemFeedback: make([]mapset.Set[int32], train.numCols),
	}
	for u := range i.userFeedback {
		i.userFeedback[u] = mapset.NewThreadUnsafeSet[int32]()
	}
	for j := range i.itemFeedback {
		i.itemFeedback[j] = mapset.NewThreadUnsafeSet[int32]()
	}
	for k := range train.values {
		i.userFeedback[train.rows[k]].Add(train.cols[k])
		i.itemFeedback[train.cols[k]].Add(train.rows[k])
	}
	return i, nil
}

// NumUsers returns the declared number of users.
func (i *Interactions) NumUsers() int {
	return i.train.numRows
}

// NumItems returns the declared number of items.
func (i *Interactions) NumItems() int {
	return i.train.numCols
}

// HasTest reports whether a test split was supplied.
func (i *Interactions) HasTest() bool {
	return i.test != nil
}

// Count returns the number of recorded entries for a split. An absent test
// split counts zero entries.
func (i *Interactions) Count(split Split) int {
	switch split {
	case Train:
		return i.train.NNZ()
	case Test:
		if i.test == nil {
			return 0
		}
		return i.test.NNZ()
	default:
		return 0
	}
}

// Get returns the index-th recorded (user, item, value) entry of a split.
func (i *Interactions) Get(split Split, index int) (user, item int32, value float32, err error) {
	switch split {
	case Train:
		return i.train.Get(index)
	case Test:
		if i.test == nil {
			return 0, 0, 0, errors.Trace(ErrNoTestSplit)
		}
		return i.test.Get(index)
	default:
		return 0, 0, 0, errors.NotValidf("split %v", split)
	}
}

// UserFeedback returns the set of items each user interacted with in the
// train split, used to exclude seen items from negative sampling.
func (i *Interactions) UserFeedback() []mapset.Set[int32] {
	return i.userFeedback
}

// ItemFeedback returns the set of users each item interacted with in the
// train split.
func (i *Interactions) ItemFeedback() []mapset.Set[int32] {
	return i.itemFeedback
}
