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
	"math"
	"testing"

	"github.com/gorse-io/funksvd/base"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

var testRows = []Row{
	{"alice", "matrix", 5},
	{"bob", "matrix", 4},
	{"alice", "inception", 3},
	{"carol", "memento", 1},
	{"bob", "memento", 2},
}

func TestBuildMapping(t *testing.T) {
	m := BuildMapping(testRows)
	assert.Panics(t, func() { m.Translate(testRows, true) })
	assert.Equal(t, int32(3), m.Users.Count())
	assert.Equal(t, int32(3), m.Items.Count())
	assert.Equal(t, []string{"alice", "bob", "carol"}, m.Users.ToList())
	assert.Equal(t, []string{"matrix", "inception", "memento"}, m.Items.ToList())
	// deterministic
	assert.Equal(t, m, BuildMapping(testRows))
}

func TestTranslate(t *testing.T) {
	m := NewMapping()
	train := m.Translate(testRows, true)
	assert.Equal(t, []int32{0, 1, 0, 2, 1}, train.Users)
	assert.Equal(t, []int32{0, 0, 1, 2, 2}, train.Items)
	assert.Equal(t, []float32{5, 4, 3, 1, 2}, train.Ratings)
	assert.Zero(t, train.CountUnknown())

	test := m.Translate([]Row{
		{"alice", "memento", 2},
		{"dave", "matrix", 3},
		{"bob", "tenet", 4},
		{"dave", "tenet", 1},
	}, false)
	assert.Equal(t, 4, test.Len())
	assert.Equal(t, []int32{0, NotId, 1, NotId}, test.Users)
	assert.Equal(t, []int32{2, 0, NotId, NotId}, test.Items)
	assert.Equal(t, 3, test.CountUnknown())
	// mapping is never resized by lookups
	assert.Equal(t, int32(3), m.Users.Count())
	assert.Equal(t, int32(3), m.Items.Count())

	userIndex, itemIndex, rating := test.Get(1)
	assert.Equal(t, Unknown, userIndex)
	assert.Equal(t, Known(0), itemIndex)
	assert.Equal(t, float32(3), rating)

	assert.Panics(t, func() { m.Translate(testRows, true) })
}

func TestMapping_Lookup(t *testing.T) {
	m := BuildMapping(testRows)
	userIndex, itemIndex := m.Lookup(Pair{"carol", "inception"})
	assert.Equal(t, Known(2), userIndex)
	assert.Equal(t, Known(1), itemIndex)
	userIndex, itemIndex = m.Lookup(Pair{"eve", "inception"})
	assert.Equal(t, Unknown, userIndex)
	assert.Equal(t, Known(1), itemIndex)

	restored := NewMappingFromLists(m.Users.ToList(), m.Items.ToList())
	assert.Panics(t, func() { restored.Translate(testRows, true) })
	assert.Equal(t, m.Users.ToList(), restored.Users.ToList())
	assert.Equal(t, m.Items.Id("memento"), restored.Items.Id("memento"))
}

func TestValidateRows(t *testing.T) {
	assert.NoError(t, ValidateRows(testRows))
	assert.NoError(t, ValidateRows(nil))
	err := ValidateRows([]Row{{"", "a", 1}})
	assert.True(t, errors.Is(err, errors.NotValid))
	err = ValidateRows([]Row{{"a", "", 1}})
	assert.True(t, errors.Is(err, errors.NotValid))
	err = ValidateRows([]Row{{"a", "b", float32(math.NaN())}})
	assert.True(t, errors.Is(err, errors.NotValid))
	err = ValidateRows([]Row{{"a", "b", float32(math.Inf(1))}})
	assert.True(t, errors.Is(err, errors.NotValid))
}

func TestRatings_Shuffle(t *testing.T) {
	mapping := BuildMapping(testRows)
	ratings := mapping.Translate(testRows, false)
	shuffled := mapping.Translate(testRows, false)
	shuffled.Shuffle(base.NewRandomGenerator(1).Rand)
	assert.Equal(t, ratings.Len(), shuffled.Len())
	type triple = lo.Tuple3[int32, int32, float32]
	collect := func(r *Ratings) []triple {
		return lo.Map(lo.Range(r.Len()), func(i, _ int) triple {
			return lo.T3(r.Users[i], r.Items[i], r.Ratings[i])
		})
	}
	// same multiset of rows
	assert.ElementsMatch(t, collect(ratings), collect(shuffled))
	// the source is untouched
	assert.Equal(t, []int32{0, 1, 0, 2, 1}, ratings.Users)
	// same seed, same permutation
	again := mapping.Translate(testRows, false)
	again.Shuffle(base.NewRandomGenerator(1).Rand)
	assert.Equal(t, shuffled, again)
}

func TestRatings_Mean(t *testing.T) {
	ratings := BuildMapping(testRows).Translate(testRows, false)
	assert.Equal(t, float32(3), ratings.Mean())
	assert.Zero(t, NewRatings(0).Mean())
	var nilRatings *Ratings
	assert.Zero(t, nilRatings.Len())
}

func TestSplit(t *testing.T) {
	rows := make([]Row, 100)
	for i := range rows {
		rows[i] = Row{UserId: string(rune('a' + i%26)), ItemId: string(rune('A' + i%7)), Rating: float32(i)}
	}
	train, test := Split(rows, 0.2, 0)
	assert.Len(t, train, 80)
	assert.Len(t, test, 20)
	assert.ElementsMatch(t, rows, append(append([]Row{}, train...), test...))
	// deterministic
	train2, test2 := Split(rows, 0.2, 0)
	assert.Equal(t, train, train2)
	assert.Equal(t, test, test2)
	// no test set
	train, test = Split(rows, 0, 0)
	assert.Equal(t, rows, train)
	assert.Empty(t, test)
}
