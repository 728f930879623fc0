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

package encoding

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"io"

	"github.com/juju/errors"
)

// readChunkSize bounds the memory allocated ahead of data actually read, so
// that a corrupted length can't allocate more than the stream holds.
const readChunkSize = 1 << 16

// WriteMatrix writes matrix to byte stream.
func WriteMatrix(w io.Writer, m [][]float32) error {
	for i := range m {
		err := binary.Write(w, binary.LittleEndian, m[i])
		if err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// ReadMatrix reads a row x col matrix written by WriteMatrix.
func ReadMatrix(r io.Reader, row, col int) ([][]float32, error) {
	if row < 0 || col < 0 {
		return nil, errors.NotValidf("matrix shape %dx%d", row, col)
	}
	m := make([][]float32, 0, min(row, readChunkSize))
	for i := 0; i < row; i++ {
		v, err := readFloats(r, int64(col))
		if err != nil {
			return nil, errors.Trace(err)
		}
		m = append(m, v)
	}
	return m, nil
}

// readFloats reads n floats in chunks of at most readChunkSize.
func readFloats(r io.Reader, n int64) ([]float32, error) {
	v := make([]float32, 0, min(n, readChunkSize))
	for remain := n; remain > 0; remain = n - int64(len(v)) {
		chunk := make([]float32, min(remain, readChunkSize))
		if err := binary.Read(r, binary.LittleEndian, chunk); err != nil {
			return nil, errors.Trace(err)
		}
		v = append(v, chunk...)
	}
	return v, nil
}

// WriteVector writes a length-prefixed vector to byte stream.
func WriteVector(w io.Writer, v []float32) error {
	if err := binary.Write(w, binary.LittleEndian, int64(len(v))); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(binary.Write(w, binary.LittleEndian, v))
}

// ReadVector reads a length-prefixed vector from byte stream.
func ReadVector(r io.Reader) ([]float32, error) {
	var n int64
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, errors.Trace(err)
	}
	if n < 0 {
		return nil, errors.NotValidf("vector length %d", n)
	}
	return readFloats(r, n)
}

// WriteString writes string to byte stream.
func WriteString(w io.Writer, s string) error {
	return WriteBytes(w, []byte(s))
}

// ReadString reads string from byte stream.
func ReadString(r io.Reader) (string, error) {
	data, err := ReadBytes(r)
	return string(data), err
}

// WriteStrings writes a count followed by every string.
func WriteStrings(w io.Writer, a []string) error {
	if err := binary.Write(w, binary.LittleEndian, int64(len(a))); err != nil {
		return errors.Trace(err)
	}
	for _, s := range a {
		if err := WriteString(w, s); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// ReadStrings reads strings written by WriteStrings.
func ReadStrings(r io.Reader) ([]string, error) {
	var n int64
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, errors.Trace(err)
	}
	if n < 0 {
		return nil, errors.NotValidf("string count %d", n)
	}
	a := make([]string, 0, min(n, readChunkSize))
	for i := int64(0); i < n; i++ {
		s, err := ReadString(r)
		if err != nil {
			return nil, errors.Trace(err)
		}
		a = append(a, s)
	}
	return a, nil
}

// WriteBytes writes bytes to byte stream.
func WriteBytes(w io.Writer, s []byte) error {
	err := binary.Write(w, binary.LittleEndian, int32(len(s)))
	if err != nil {
		return err
	}
	n, err := w.Write(s)
	if err != nil {
		return err
	} else if n != len(s) {
		return errors.New("fail to write string")
	}
	return nil
}

// ReadBytes reads bytes from byte stream.
func ReadBytes(r io.Reader) ([]byte, error) {
	var length int32
	err := binary.Read(r, binary.LittleEndian, &length)
	if err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, errors.NotValidf("bytes length %d", length)
	}
	data, err := io.ReadAll(io.LimitReader(r, int64(length)))
	if err != nil {
		return nil, errors.Annotate(err, "fail to read string")
	}
	if len(data) != int(length) {
		return nil, errors.Annotate(io.ErrUnexpectedEOF, "fail to read string")
	}
	return data, nil
}

// WriteGob writes object to byte stream.
func WriteGob(w io.Writer, v interface{}) error {
	buffer := bytes.NewBuffer(nil)
	encoder := gob.NewEncoder(buffer)
	err := encoder.Encode(v)
	if err != nil {
		return err
	}
	return WriteBytes(w, buffer.Bytes())
}

// ReadGob read object from byte stream.
func ReadGob(r io.Reader, v interface{}) error {
	data, err := ReadBytes(r)
	if err != nil {
		return err
	}
	buffer := bytes.NewBuffer(data)
	decoder := gob.NewDecoder(buffer)
	return decoder.Decode(v)
}
