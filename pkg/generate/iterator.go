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

// Package generate enumerates and randomly synthesizes candidate Programs
// for the miner: Iterator visits every well-formed program in a total
// order, Generator draws randomized ones under a Config, and MultiGenerator
// round-robins across a weighted pool of Configs.
package generate

import (
	"github.com/loda-lang/loda-go/pkg/lang"
	"github.com/loda-lang/loda-go/pkg/lang/putil"
	"github.com/loda-lang/loda-go/pkg/number"
)

var (
	constantZero = lang.NewConstant(number.Zero)
	constantOne  = lang.NewConstant(number.One)
	directZero   = lang.NewDirect(number.Zero)

	// smallestOperation never overrides cell 0, the input cell.
	smallestOperation = lang.NewOperation(lang.MOV, lang.NewDirect(number.One), constantZero)
)

// Iterator enumerates well-formed programs of increasing size in a total
// order, by ripple-carry incrementing the rightmost operation that still
// has room to grow.
type Iterator struct {
	// Program is the most recently produced program; Next mutates it in
	// place and returns a clone.
	Program lang.Program
	// Skipped counts candidates rejected by putil.Validate.
	Skipped uint64
	size    int
}

// NewIterator constructs an iterator starting from the smallest program:
// a single `mov $1,0`.
func NewIterator() *Iterator {
	p := lang.Program{}
	p.Push(smallestOperation)

	return &Iterator{Program: p, size: 1}
}

// Next advances to and returns the next well-formed program in the
// enumeration.
func (it *Iterator) Next() lang.Program {
	for {
		it.doNext()

		if err := putil.Validate(it.Program); err == nil {
			break
		}

		it.Skipped++
	}

	return it.Program.Clone()
}

// doNext performs one ripple-carry increment step, without validating the
// result.
func (it *Iterator) doNext() {
	increased := false

	for i := it.size - 1; i >= 0; i-- {
		op := &it.Program.Ops[i]

		if it.incWithSkip(op) {
			increased = true

			// avoid a loop that has no room to close.
			if op.Kind == lang.LPB && i+3 > it.size {
				*op = lang.NewOperation(lang.LPE, lang.Operand{}, lang.Operand{})
			}

			// avoid an empty loop body.
			if op.Kind == lang.LPE && i > 0 && it.Program.Ops[i-1].Kind == lang.LPB {
				increased = false
			}
		}

		if increased {
			break
		}

		it.Program.Ops[i] = smallestOperation
	}

	if !increased {
		it.Program.Insert(0, smallestOperation)
		it.size = it.Program.Len()
	}
}

// incWithSkip increments op, skipping over trivially reducible operations,
// until a genuinely new one is reached or op has exhausted its range.
func (it *Iterator) incWithSkip(op *lang.Operation) bool {
	for {
		if !it.incOperation(op) {
			return false
		}

		if !shouldSkip(*op) {
			return true
		}
	}
}

// incOperation advances op to the next candidate in the enumeration order:
// source, then target, then kind.
func (it *Iterator) incOperation(op *lang.Operation) bool {
	if op.Kind == lang.LPE {
		return false
	}

	if it.incOperand(&op.Source, op.Kind != lang.LPB) {
		return true
	}

	op.Source = constantZero

	if it.incOperand(&op.Target, true) {
		return true
	}

	op.Target = directZero

	switch op.Kind {
	// These kinds are never produced by this chain (the smallest operation
	// is always MOV and every step above stays within MOV..LPE), so this
	// falls straight through to the MOV case, exactly as the excluded
	// kinds fall through in the enumeration this is ported from.
	case lang.NOP, lang.DBG, lang.CLR, lang.SEQ, lang.LOG, lang.MIN, lang.MAX, lang.MOV:
		op.Kind = lang.ADD
		return true
	case lang.ADD:
		op.Kind = lang.SUB
		return true
	case lang.SUB:
		op.Kind = lang.TRN
		return true
	case lang.TRN:
		op.Kind = lang.MUL
		return true
	case lang.MUL:
		op.Kind = lang.DIV
		return true
	case lang.DIV:
		op.Kind = lang.DIF
		return true
	case lang.DIF:
		op.Kind = lang.MOD
		return true
	case lang.MOD:
		op.Kind = lang.POW
		return true
	case lang.POW:
		op.Kind = lang.GCD
		return true
	case lang.GCD:
		op.Kind = lang.BIN
		return true
	case lang.BIN:
		op.Kind = lang.CMP
		return true
	case lang.CMP:
		op.Kind = lang.LPB
		return true
	case lang.LPB:
		op.Kind = lang.LPE
		return true
	default:
		return false
	}
}

// incOperand advances o to its next value: increment while the value stays
// under a quarter of the program's current size, then wrap CONSTANT to
// DIRECT(0) if direct is allowed, then fail.
func (it *Iterator) incOperand(o *lang.Operand, direct bool) bool {
	if v := o.Value.Int64(); v*4 < int64(it.size) {
		o.Value = number.FromInt64(v + 1)
		return true
	}

	switch o.Type {
	case lang.CONSTANT:
		if direct {
			*o = directZero
			return true
		}

		return false
	default: // DIRECT, INDIRECT: excluded from further growth
		return false
	}
}

// shouldSkip reports whether op is trivially reducible to a simpler
// operation and so should be skipped by the enumeration.
func shouldSkip(op lang.Operation) bool {
	if putil.IsNop(op) {
		return true
	}

	if op.Target.Equal(op.Source) {
		switch op.Kind {
		case lang.ADD, lang.SUB, lang.TRN, lang.MUL, lang.DIV, lang.DIF, lang.MOD, lang.GCD, lang.BIN, lang.CMP:
			return true
		}
	}

	if op.Source.Equal(constantZero) {
		switch op.Kind {
		case lang.MUL, lang.DIV, lang.DIF, lang.MOD, lang.POW, lang.GCD, lang.BIN, lang.LPB:
			return true
		}
	}

	if op.Source.Equal(constantOne) {
		switch op.Kind {
		case lang.MOD, lang.POW, lang.GCD, lang.BIN:
			return true
		}
	}

	return false
}
