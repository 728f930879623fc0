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

package svd

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/gorse-io/funksvd/base/encoding"
	"github.com/gorse-io/funksvd/dataset"
	"github.com/gorse-io/funksvd/model"
	"github.com/juju/errors"
)

const magic = "funksvd/v1"

// Marshal model into byte stream.
func (svd *SVD) Marshal(w io.Writer) error {
	if !svd.IsTrained() {
		return errors.Trace(ErrNotTrained)
	}
	if err := encoding.WriteString(w, magic); err != nil {
		return errors.Trace(err)
	}
	// write params
	if err := encoding.WriteGob(w, svd.Params); err != nil {
		return errors.Trace(err)
	}
	// write shape and global mean
	if err := binary.Write(w, binary.LittleEndian, int64(svd.Parameters.CountFactors())); err != nil {
		return errors.Trace(err)
	}
	if err := binary.Write(w, binary.LittleEndian, svd.GlobalMean); err != nil {
		return errors.Trace(err)
	}
	// write mapping
	if err := encoding.WriteStrings(w, svd.Mapping.Users.ToList()); err != nil {
		return errors.Trace(err)
	}
	if err := encoding.WriteStrings(w, svd.Mapping.Items.ToList()); err != nil {
		return errors.Trace(err)
	}
	// write biases and factors
	if err := encoding.WriteVector(w, svd.Parameters.UserBias); err != nil {
		return errors.Trace(err)
	}
	if err := encoding.WriteVector(w, svd.Parameters.ItemBias); err != nil {
		return errors.Trace(err)
	}
	if err := encoding.WriteMatrix(w, svd.Parameters.UserFactor); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(encoding.WriteMatrix(w, svd.Parameters.ItemFactor))
}

// Unmarshal model from byte stream. The model is left unchanged on error.
func (svd *SVD) Unmarshal(r io.Reader) error {
	header, err := encoding.ReadString(r)
	if err != nil {
		return errors.Trace(err)
	}
	if header != magic {
		return errors.NotValidf("model header %q", header)
	}
	// read params
	var params model.Params
	if err = encoding.ReadGob(r, &params); err != nil {
		return errors.Trace(err)
	}
	// read shape and global mean
	var (
		nFactors   int64
		globalMean float32
	)
	if err = binary.Read(r, binary.LittleEndian, &nFactors); err != nil {
		return errors.Trace(err)
	}
	if nFactors < 0 {
		return errors.NotValidf("number of factors %d", nFactors)
	}
	if err = binary.Read(r, binary.LittleEndian, &globalMean); err != nil {
		return errors.Trace(err)
	}
	// read mapping
	users, err := encoding.ReadStrings(r)
	if err != nil {
		return errors.Trace(err)
	}
	items, err := encoding.ReadStrings(r)
	if err != nil {
		return errors.Trace(err)
	}
	mapping := dataset.NewMappingFromLists(users, items)
	if int(mapping.Users.Count()) != len(users) || int(mapping.Items.Count()) != len(items) {
		return errors.NotValidf("duplicate identifiers in mapping")
	}
	// read biases and factors
	parameters := &Parameters{}
	if parameters.UserBias, err = encoding.ReadVector(r); err != nil {
		return errors.Trace(err)
	}
	if parameters.ItemBias, err = encoding.ReadVector(r); err != nil {
		return errors.Trace(err)
	}
	if len(parameters.UserBias) != len(users) || len(parameters.ItemBias) != len(items) {
		return errors.NotValidf("biases of %d users and %d items", len(parameters.UserBias), len(parameters.ItemBias))
	}
	if parameters.UserFactor, err = encoding.ReadMatrix(r, len(users), int(nFactors)); err != nil {
		return errors.Trace(err)
	}
	if parameters.ItemFactor, err = encoding.ReadMatrix(r, len(items), int(nFactors)); err != nil {
		return errors.Trace(err)
	}
	svd.SetParams(params)
	svd.Mapping = mapping
	svd.Parameters = parameters
	svd.GlobalMean = globalMean
	return nil
}

// Save writes the model to a file.
func (svd *SVD) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Trace(err)
	}
	w := bufio.NewWriter(file)
	if err = svd.Marshal(w); err != nil {
		_ = file.Close()
		return errors.Trace(err)
	}
	if err = w.Flush(); err != nil {
		_ = file.Close()
		return errors.Trace(err)
	}
	return errors.Trace(file.Close())
}

// Load reads a model saved by Save.
func Load(path string) (*SVD, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	m := NewSVD(nil)
	if err = m.Unmarshal(bufio.NewReader(file)); err != nil {
		return nil, errors.Annotatef(err, "load model from %s", path)
	}
	return m, nil
}
