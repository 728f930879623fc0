// Copyright 2026 gorse Project Authors
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
	"math/rand"

	"github.com/gorse-io/funksvd/base"
	"github.com/gorse-io/funksvd/common/floats"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

// Row is a raw rating given by a user to an item.
type Row struct {
	UserId string
	ItemId string
	Rating float32
}

// Pair is a user/item pair to predict.
type Pair struct {
	UserId string
	ItemId string
}

// ValidateRows checks that every row has both identifiers and a finite rating.
func ValidateRows(rows []Row) error {
	for i, row := range rows {
		if row.UserId == "" {
			return errors.NotValidf("empty user id at row %d", i)
		}
		if row.ItemId == "" {
			return errors.NotValidf("empty item id at row %d", i)
		}
		if !floats.IsFinite(row.Rating) {
			return errors.NotValidf("rating %v at row %d", row.Rating, i)
		}
	}
	return nil
}

// Mapping holds user and item dictionaries built from a training set.
type Mapping struct {
	Users  *Dict
	Items  *Dict
	frozen bool
}

func NewMapping() *Mapping {
	return &Mapping{Users: NewDict(), Items: NewDict()}
}

// NewMappingFromLists restores a frozen mapping from identifier lists.
func NewMappingFromLists(users, items []string) *Mapping {
	return &Mapping{
		Users:  NewDictFromList(users),
		Items:  NewDictFromList(items),
		frozen: true,
	}
}

// BuildMapping assigns indices to distinct users and items of rows in
// first-encountered order.
func BuildMapping(rows []Row) *Mapping {
	m := NewMapping()
	m.Translate(rows, true)
	return m
}

// Translate maps identifiers of rows to dense indices. If isTraining is set,
// the mapping is built from rows in the same pass and frozen afterwards.
// Otherwise lookups are read-only and unknown identifiers become NotId.
func (m *Mapping) Translate(rows []Row, isTraining bool) *Ratings {
	if isTraining && m.frozen {
		panic("dataset: mapping is frozen")
	}
	ratings := NewRatings(len(rows))
	for _, row := range rows {
		var userIndex, itemIndex int32
		if isTraining {
			userIndex = m.Users.Add(row.UserId)
			itemIndex = m.Items.Add(row.ItemId)
		} else {
			userIndex = m.Users.Id(row.UserId).Raw()
			itemIndex = m.Items.Id(row.ItemId).Raw()
		}
		ratings.Append(userIndex, itemIndex, row.Rating)
	}
	if isTraining {
		m.frozen = true
	}
	return ratings
}

// Lookup translates a single pair.
func (m *Mapping) Lookup(pair Pair) (Index, Index) {
	return m.Users.Id(pair.UserId), m.Items.Id(pair.ItemId)
}

// Ratings stores indexed ratings column by column.
type Ratings struct {
	Users   []int32
	Items   []int32
	Ratings []float32
}

func NewRatings(capacity int) *Ratings {
	return &Ratings{
		Users:   make([]int32, 0, capacity),
		Items:   make([]int32, 0, capacity),
		Ratings: make([]float32, 0, capacity),
	}
}

func (r *Ratings) Append(userIndex, itemIndex int32, rating float32) {
	r.Users = append(r.Users, userIndex)
	r.Items = append(r.Items, itemIndex)
	r.Ratings = append(r.Ratings, rating)
}

func (r *Ratings) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Ratings)
}

// Get returns the i-th rating with tagged indices.
func (r *Ratings) Get(i int) (Index, Index, float32) {
	return FromRaw(r.Users[i]), FromRaw(r.Items[i]), r.Ratings[i]
}

// Shuffle permutes rows in place. Columns are swapped together.
func (r *Ratings) Shuffle(rng *rand.Rand) {
	rng.Shuffle(r.Len(), func(i, j int) {
		r.Users[i], r.Users[j] = r.Users[j], r.Users[i]
		r.Items[i], r.Items[j] = r.Items[j], r.Items[i]
		r.Ratings[i], r.Ratings[j] = r.Ratings[j], r.Ratings[i]
	})
}

// Mean returns the arithmetic mean of ratings. The sum is accumulated in
// float64 before rounding to float32.
func (r *Ratings) Mean() float32 {
	if r.Len() == 0 {
		return 0
	}
	var sum float64
	for _, v := range r.Ratings {
		sum += float64(v)
	}
	return float32(sum / float64(len(r.Ratings)))
}

// CountUnknown returns the number of rows with an unknown user or item.
func (r *Ratings) CountUnknown() int {
	return lo.CountBy(lo.Range(r.Len()), func(i int) bool {
		return r.Users[i] < 0 || r.Items[i] < 0
	})
}

// Split rows into a train set and a test set. testRatio of rows are sampled
// into the test set.
func Split(rows []Row, testRatio float64, seed int64) (train, test []Row) {
	testSize := int(float64(len(rows)) * testRatio)
	if testSize <= 0 {
		return rows, nil
	}
	rng := base.NewRandomGenerator(seed)
	isTest := make([]bool, len(rows))
	for _, i := range rng.Sample(0, len(rows), testSize) {
		isTest[i] = true
	}
	train = make([]Row, 0, len(rows)-testSize)
	test = make([]Row, 0, testSize)
	for i, row := range rows {
		if isTest[i] {
			test = append(test, row)
		} else {
			train = append(train, row)
		}
	}
	return
}
