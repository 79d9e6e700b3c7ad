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
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/juju/errors"
)

// LoadCSV reads a sparse matrix from a delimited text file. Each line holds
// `user<sep>item[<sep>value]`; the value defaults to 1 for implicit feedback
// files. The shape is inferred from the largest indices seen. Empty lines and
// lines starting with '#' are skipped.
func LoadCSV(path, sep string) (*Matrix, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	var (
		rows    []int32
		cols    []int32
		values  []float32
		numRows int
		numCols int
	)
	scanner := bufio.NewScanner(file)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, sep)
		if len(fields) < 2 {
			return nil, errors.NotValidf("line %d: %q", lineNumber, line)
		}
		user, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			return nil, errors.Annotatef(err, "line %d", lineNumber)
		}
		item, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil {
			return nil, errors.Annotatef(err, "line %d", lineNumber)
		}
		if user < 0 || item < 0 {
			return nil, errors.Annotatef(ErrIndexOutOfRange, "line %d", lineNumber)
		}
		value := float32(1)
		if len(fields) > 2 {
			v, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 32)
			if err != nil {
				return nil, errors.Annotatef(err, "line %d", lineNumber)
			}
			value = float32(v)
		}
		rows = append(rows, int32(user))
		cols = append(cols, int32(item))
		values = append(values, value)
		if user+1 > numRows {
			numRows = user + 1
		}
		if item+1 > numCols {
			numCols = item + 1
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	return NewMatrix(numRows, numCols, rows, cols, values)
}
