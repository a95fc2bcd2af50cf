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

// Package store provides the two external collaborators the interpreter and
// miner depend on: a ProgramStore resolving SEQ operands to programs, and a
// SequenceCatalog resolving check targets to known terms.  Only this package
// is allowed to know that ids map to "A<id>.asm" filenames; pkg/lang and
// pkg/interp see nothing but the interfaces.
package store

import "github.com/loda-lang/loda-go/pkg/lang"

// ProgramStore resolves a sequence id to the program believed to compute it.
type ProgramStore interface {
	Get(id uint64) (lang.Program, bool)
}

// SequenceCatalog resolves a sequence id to its known terms, the number of
// leading terms a candidate program must reproduce exactly, and a
// human-readable identifier.
type SequenceCatalog interface {
	Terms(id uint64) (lang.Sequence, bool)
	RequiredFirstN(id uint64) int
	Identifier(id uint64) string
}

// MapProgramStore is an in-memory ProgramStore backed by a map, suitable for
// tests and single-process miners that keep every candidate program
// resident.
type MapProgramStore struct {
	programs map[uint64]lang.Program
}

// NewMapProgramStore constructs an empty MapProgramStore.
func NewMapProgramStore() *MapProgramStore {
	return &MapProgramStore{programs: make(map[uint64]lang.Program)}
}

// Get implements ProgramStore.
func (s *MapProgramStore) Get(id uint64) (lang.Program, bool) {
	p, ok := s.programs[id]
	return p, ok
}

// Put registers or replaces the program for id.
func (s *MapProgramStore) Put(id uint64, p lang.Program) {
	s.programs[id] = p
}

// Delete removes id, if present.
func (s *MapProgramStore) Delete(id uint64) {
	delete(s.programs, id)
}

// Len returns the number of programs registered.
func (s *MapProgramStore) Len() int {
	return len(s.programs)
}

// sequenceEntry is one catalog record.
type sequenceEntry struct {
	Terms          lang.Sequence
	RequiredFirstN int
	Identifier     string
}

// MapSequenceCatalog is an in-memory SequenceCatalog backed by a map.
type MapSequenceCatalog struct {
	entries map[uint64]sequenceEntry
}

// NewMapSequenceCatalog constructs an empty MapSequenceCatalog.
func NewMapSequenceCatalog() *MapSequenceCatalog {
	return &MapSequenceCatalog{entries: make(map[uint64]sequenceEntry)}
}

// Put registers or replaces the catalog entry for id.
func (c *MapSequenceCatalog) Put(id uint64, terms lang.Sequence, requiredFirstN int, identifier string) {
	c.entries[id] = sequenceEntry{Terms: terms, RequiredFirstN: requiredFirstN, Identifier: identifier}
}

// Terms implements SequenceCatalog.
func (c *MapSequenceCatalog) Terms(id uint64) (lang.Sequence, bool) {
	e, ok := c.entries[id]
	return e.Terms, ok
}

// RequiredFirstN implements SequenceCatalog.
func (c *MapSequenceCatalog) RequiredFirstN(id uint64) int {
	return c.entries[id].RequiredFirstN
}

// Identifier implements SequenceCatalog.
func (c *MapSequenceCatalog) Identifier(id uint64) string {
	return c.entries[id].Identifier
}

// Len returns the number of entries registered.
func (c *MapSequenceCatalog) Len() int {
	return len(c.entries)
}

// Ids returns every registered sequence id, in no particular order. Callers
// use this to build a fingerprint index over the catalog for a mine.Matcher.
func (c *MapSequenceCatalog) Ids() []uint64 {
	ids := make([]uint64, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}

	return ids
}
