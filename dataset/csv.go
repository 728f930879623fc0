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
	"bufio"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/gorse-io/funksvd/common/util"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

var (
	userColumns   = []string{"u_id", "user_id", "userid", "user"}
	itemColumns   = []string{"i_id", "item_id", "itemid", "item", "movie_id", "movieid"}
	ratingColumns = []string{"rating", "score", "r"}
)

// ReadLines parse fields of each line for csv file. The separator must be a
// single character.
func ReadLines(sc *bufio.Scanner, sep string, handler func(int, []string) bool) error {
	if utf8.RuneCountInString(sep) != 1 {
		return errors.NotValidf("separator %q of more or less than one character", sep)
	}
	sepRune, _ := utf8.DecodeRuneInString(sep)
	lineCount := 0               // line number of current position
	fields := make([]string, 0)  // fields for current line
	builder := strings.Builder{} // string builder for current field
	quoted := false              // whether current position in quote
	for sc.Scan() {
		// read line
		lineStr := sc.Text()
		line := []rune(lineStr)
		// start of line
		if quoted {
			builder.WriteString("\r\n")
		}
		// parse line
		for i := 0; i < len(line); i++ {
			if line[i] == sepRune && !quoted {
				// end of field
				fields = append(fields, builder.String())
				builder.Reset()
			} else if line[i] == '"' {
				if quoted {
					if i+1 >= len(line) || line[i+1] != '"' {
						// end of quoted
						quoted = false
					} else {
						i++
						builder.WriteRune('"')
					}
				} else {
					// start of quoted
					quoted = true
				}
			} else {
				builder.WriteRune(line[i])
			}
		}
		// end of line
		if !quoted {
			fields = append(fields, builder.String())
			builder.Reset()
			if !handler(lineCount, fields) {
				return nil
			}
			fields = []string{}
		}
		// increase line count
		lineCount++
	}
	return sc.Err()
}

// columnIndex finds the first header column matching one of names.
func columnIndex(header []string, names []string) int {
	for i, column := range header {
		if lo.Contains(names, strings.ToLower(strings.TrimSpace(column))) {
			return i
		}
	}
	return -1
}

type csvLayout struct {
	user, item, rating int
}

func parseLayout(header []string, withRating bool) (csvLayout, error) {
	layout := csvLayout{
		user:   columnIndex(header, userColumns),
		item:   columnIndex(header, itemColumns),
		rating: columnIndex(header, ratingColumns),
	}
	if layout.user < 0 {
		return layout, errors.NotFoundf("user column in header %v", header)
	}
	if layout.item < 0 {
		return layout, errors.NotFoundf("item column in header %v", header)
	}
	if withRating && layout.rating < 0 {
		return layout, errors.NotFoundf("rating column in header %v", header)
	}
	return layout, nil
}

func readCSV(path, sep string, header, withRating bool, handler func(lineNumber int, fields []string, layout csvLayout) error) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Trace(err)
	}
	defer file.Close()
	layout := csvLayout{user: 0, item: 1, rating: 2}
	var handleErr error
	err = ReadLines(bufio.NewScanner(file), sep, func(lineNumber int, fields []string) bool {
		if lineNumber == 0 && header {
			layout, handleErr = parseLayout(fields, withRating)
			return handleErr == nil
		}
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			// skip blank lines
			return true
		}
		handleErr = handler(lineNumber, fields, layout)
		return handleErr == nil
	})
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(handleErr)
}

// LoadCSV loads ratings from a CSV file. Without header the first three
// columns are user id, item id and rating. With header, columns are located
// by name (u_id/user_id, i_id/item_id, rating).
func LoadCSV(path, sep string, header bool) ([]Row, error) {
	var rows []Row
	err := readCSV(path, sep, header, true, func(lineNumber int, fields []string, layout csvLayout) error {
		if len(fields) <= max(layout.user, layout.item, layout.rating) {
			return errors.NotValidf("line %d with %d fields", lineNumber, len(fields))
		}
		rating, err := util.ParseFloat[float32](strings.TrimSpace(fields[layout.rating]))
		if err != nil {
			return errors.NotValidf("rating %q at line %d", fields[layout.rating], lineNumber)
		}
		rows = append(rows, Row{
			UserId: strings.TrimSpace(fields[layout.user]),
			ItemId: strings.TrimSpace(fields[layout.item]),
			Rating: rating,
		})
		return nil
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	if err = ValidateRows(rows); err != nil {
		return nil, errors.Trace(err)
	}
	return rows, nil
}

// LoadPairsCSV loads user/item pairs from a CSV file. Extra columns are ignored.
func LoadPairsCSV(path, sep string, header bool) ([]Pair, error) {
	var pairs []Pair
	err := readCSV(path, sep, header, false, func(lineNumber int, fields []string, layout csvLayout) error {
		if len(fields) <= max(layout.user, layout.item) {
			return errors.NotValidf("line %d with %d fields", lineNumber, len(fields))
		}
		pairs = append(pairs, Pair{
			UserId: strings.TrimSpace(fields[layout.user]),
			ItemId: strings.TrimSpace(fields[layout.item]),
		})
		return nil
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return pairs, nil
}
