// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package store

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sync"

	"github.com/segmentio/encoding/json"
	log "github.com/sirupsen/logrus"

	"github.com/loda-lang/loda-go/pkg/lang"
	"github.com/loda-lang/loda-go/pkg/lang/parser"
	"github.com/loda-lang/loda-go/pkg/number"
)

// parseTerm decodes one catalog term, which is either "inf" (a term beyond
// what any known program computes) or a nonnegative decimal integer.
func parseTerm(s string) (number.Number, error) {
	if s == "inf" {
		return number.Inf, nil
	}

	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return number.Zero, fmt.Errorf("malformed term %q", s)
	}

	return number.FromBigInt(v), nil
}

// programFilename returns the on-disk name for a program id, e.g. "A123.asm".
func programFilename(id uint64) string {
	return fmt.Sprintf("A%d.asm", id)
}

// FileProgramStore lazily loads "A<id>.asm" files from a directory,
// memoizing successful (and failed) lookups so concurrent miner goroutines
// never reparse the same file.
type FileProgramStore struct {
	dir    string
	cache  sync.Map // uint64 -> lang.Program
	misses sync.Map // uint64 -> struct{}
}

// NewFileProgramStore constructs a store rooted at dir.
func NewFileProgramStore(dir string) *FileProgramStore {
	return &FileProgramStore{dir: dir}
}

// Get implements ProgramStore, loading and parsing the backing file on
// first access.
func (s *FileProgramStore) Get(id uint64) (lang.Program, bool) {
	if v, ok := s.cache.Load(id); ok {
		return v.(lang.Program), true
	}

	if _, missed := s.misses.Load(id); missed {
		return lang.Program{}, false
	}

	path := filepath.Join(s.dir, programFilename(id))

	p, err := parser.ParseFile(path)
	if err != nil {
		log.Debugf("store: failed to load %s: %v", path, err)
		s.misses.Store(id, struct{}{})

		return lang.Program{}, false
	}

	actual, _ := s.cache.LoadOrStore(id, p)

	return actual.(lang.Program), true
}

// Put writes a program to its canonical path within dir and caches it.
func (s *FileProgramStore) Put(id uint64, p lang.Program) error {
	path := filepath.Join(s.dir, programFilename(id))
	if err := parser.WriteFile(path, p); err != nil {
		return fmt.Errorf("store: writing %s: %w", path, err)
	}

	s.cache.Store(id, p)
	s.misses.Delete(id)

	return nil
}

// sequenceRecord is the on-disk JSON shape of one sequence catalog entry.
type sequenceRecord struct {
	ID             uint64   `json:"id"`
	Identifier     string   `json:"identifier"`
	RequiredFirstN int      `json:"required_first_n"`
	Terms          []string `json:"terms"`
}

// FileSequenceCatalog loads a JSON array of sequenceRecord from a single
// file into a MapSequenceCatalog, decoded with segmentio/encoding/json for
// throughput on catalogs with hundreds of thousands of entries.
type FileSequenceCatalog struct {
	*MapSequenceCatalog
}

// LoadFileSequenceCatalog reads and decodes path.
func LoadFileSequenceCatalog(path string) (*FileSequenceCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("store: reading %s: %w", path, err)
	}

	var records []sequenceRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("store: decoding %s: %w", path, err)
	}

	cat := NewMapSequenceCatalog()

	for _, rec := range records {
		terms := make(lang.Sequence, len(rec.Terms))

		for i, t := range rec.Terms {
			n, err := parseTerm(t)
			if err != nil {
				return nil, fmt.Errorf("store: %s: sequence %d term %d: %w", path, rec.ID, i, err)
			}

			terms[i] = n
		}

		cat.Put(rec.ID, terms, rec.RequiredFirstN, rec.Identifier)
	}

	log.Debugf("store: loaded %d sequences from %s", len(records), path)

	return &FileSequenceCatalog{cat}, nil
}

// SaveFileSequenceCatalog encodes every entry of cat to path as JSON.
func SaveFileSequenceCatalog(path string, cat *MapSequenceCatalog) error {
	records := make([]sequenceRecord, 0, cat.Len())

	for id, e := range cat.entries {
		terms := make([]string, len(e.Terms))
		for i, n := range e.Terms {
			terms[i] = n.String()
		}

		records = append(records, sequenceRecord{
			ID:             id,
			Identifier:     e.Identifier,
			RequiredFirstN: e.RequiredFirstN,
			Terms:          terms,
		})
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("store: encoding %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("store: writing %s: %w", path, err)
	}

	return nil
}
