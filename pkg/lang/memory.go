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
package lang

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/loda-lang/loda-go/pkg/number"
)

// InputCell and OutputCell are both cell 0, by convention: a program's input
// is placed there before execution, and its output is read from there
// after.
const InputCell = 0

// OutputCell is an alias for InputCell documenting the cell's role after
// execution; see InputCell.
const OutputCell = InputCell

// Memory is a sparse mapping from nonnegative cell index to Number. Unset
// cells read as zero.  touched tracks which cells have ever been written,
// using a growable bitset rather than a second map so
// ProgramUtil.GetUsedMemoryCells can answer "which cells were referenced"
// without scanning the (unordered) values map.
type Memory struct {
	cells   map[uint64]number.Number
	touched *bitset.BitSet
}

// NewMemory returns an empty memory.
func NewMemory() *Memory {
	return &Memory{
		cells:   make(map[uint64]number.Number),
		touched: bitset.New(64),
	}
}

// Get returns the value at cell i, or zero if never set.  Get is total: it
// never fails, regardless of how large i is.
func (m *Memory) Get(i number.Number) number.Number {
	idx, ok := cellIndex(i)
	if !ok {
		return number.Zero
	}

	if v, ok := m.cells[idx]; ok {
		return v
	}

	return number.Zero
}

// Set records the value v at cell i.
func (m *Memory) Set(i number.Number, v number.Number) {
	idx, ok := cellIndex(i)
	if !ok {
		panic("lang: memory index out of range")
	}

	m.cells[idx] = v
	m.touched.Set(uint(idx))
}

// Clear empties this memory.
func (m *Memory) Clear() {
	m.cells = make(map[uint64]number.Number)
	m.touched.ClearAll()
}

// ClearRegion zeroes n consecutive cells starting at start (the CLR
// operation's effect).
func (m *Memory) ClearRegion(start number.Number, n uint64) {
	idx, ok := cellIndex(start)
	if !ok {
		panic("lang: memory index out of range")
	}

	for i := uint64(0); i < n; i++ {
		delete(m.cells, idx+i)
		m.touched.Clear(uint(idx + i))
	}
}

// Copy replaces this memory's contents with a deep copy of other's.
func (m *Memory) Copy(other *Memory) {
	m.cells = make(map[uint64]number.Number, len(other.cells))
	for k, v := range other.cells {
		m.cells[k] = v
	}

	m.touched = other.touched.Clone()
}

// Clone returns an independent deep copy of m.
func (m *Memory) Clone() *Memory {
	c := NewMemory()
	c.Copy(m)

	return c
}

// Equal reports whether m and other agree on every cell either has ever
// touched (cells at zero implicitly agree with cells never touched).
func (m *Memory) Equal(other *Memory) bool {
	union := m.touched.Clone()
	union.InPlaceUnion(other.touched)

	equal := true

	for i, e := union.NextSet(0); e; i, e = union.NextSet(i + 1) {
		if !m.cellAt(uint64(i)).Equal(other.cellAt(uint64(i))) {
			equal = false

			break
		}
	}

	return equal
}

func (m *Memory) cellAt(idx uint64) number.Number {
	if v, ok := m.cells[idx]; ok {
		return v
	}

	return number.Zero
}

// UsedCells returns the bitset of cell indices ever written via Set (cells
// zeroed via ClearRegion are removed again).
func (m *Memory) UsedCells() *bitset.BitSet {
	return m.touched.Clone()
}

// cellIndex converts a Number cell index into a uint64, rejecting Inf and
// values that cannot be represented (Memory's domain is expected to stay
// small in practice, per spec.md's "sparse indexed cell store").
func cellIndex(i number.Number) (uint64, bool) {
	if i.IsInf() {
		return 0, false
	}

	b := i.BigInt()
	if !b.IsUint64() {
		return 0, false
	}

	return b.Uint64(), true
}
