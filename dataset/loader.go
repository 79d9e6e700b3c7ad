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
	"github.com/juju/errors"
	"github.com/latrec-io/latrec/base"
)

// Batch is one mini-batch of (user, item, value) entries as parallel arrays.
type Batch struct {
	Users  []int32
	Items  []int32
	Values []float32
}

// Len returns the number of entries in the batch.
func (b Batch) Len() int {
	return len(b.Values)
}

// Loader iterates one split of an interaction store in shuffled mini-batches.
// Reset reshuffles with the loader's own random generator and rewinds, making
// every epoch a fresh permutation while keeping seeded runs reproducible.
// Loaders are not safe for concurrent use.
type Loader struct {
	data      *Interactions
	split     Split
	batchSize int
	rng       base.RandomGenerator
	perm      []int
	cursor    int
}

// NewLoader creates a loader over one split. The batch size is fixed for the
// lifetime of the loader.
func NewLoader(data *Interactions, split Split, batchSize int, rng base.RandomGenerator) (*Loader, error) {
	if batchSize <= 0 {
		return nil, errors.NotValidf("batch size %d", batchSize)
	}
	if split == Test && !data.HasTest() {
		return nil, errors.Trace(ErrNoTestSplit)
	}
	l := &Loader{
		data:      data,
		split:     split,
		batchSize: batchSize,
		rng:       rng,
	}
	l.Reset()
	return l, nil
}

// BatchCount returns the number of batches per epoch.
func (l *Loader) BatchCount() int {
	return (l.data.Count(l.split) + l.batchSize - 1) / l.batchSize
}

// Reset reshuffles the split and rewinds the loader to the first batch.
func (l *Loader) Reset() {
	l.perm = l.rng.Perm(l.data.Count(l.split))
	l.cursor = 0
}

// Next returns the next mini-batch. The second return value is false after
// the last batch of the epoch has been consumed.
func (l *Loader) Next() (Batch, bool) {
	if l.cursor >= len(l.perm) {
		return Batch{}, false
	}
	end := l.cursor + l.batchSize
	if end > len(l.perm) {
		end = len(l.perm)
	}
	batch := Batch{
		Users:  make([]int32, 0, end-l.cursor),
		Items:  make([]int32, 0, end-l.cursor),
		Values: make([]float32, 0, end-l.cursor),
	}
	for _, i := range l.perm[l.cursor:end] {
		user, item, value, _ := l.data.Get(l.split, i)
		batch.Users = append(batch.Users, user)
		batch.Items = append(batch.Items, item)
		batch.Values = append(batch.Values, value)
	}
	l.cursor = end
	return batch, true
}
