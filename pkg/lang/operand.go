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

// Package lang defines the LODA assembly language model: operands,
// operations, programs, memory and sequences, plus the metadata table that
// every other component (parser, interpreter, generator, rewriter) consults
// rather than hard-coding operation arity or commutativity.
package lang

import (
	"fmt"

	"github.com/loda-lang/loda-go/pkg/number"
)

// OperandType identifies which of the three operand cases a value holds.
type OperandType uint8

const (
	// CONSTANT operands evaluate to a fixed Number.
	CONSTANT OperandType = iota
	// DIRECT operands read or write memory cell Value directly.
	DIRECT
	// INDIRECT operands read memory cell Value to obtain an index, then
	// read or write the cell at that index.
	INDIRECT
)

// String renders the operand type as used by the parser/printer.
func (t OperandType) String() string {
	switch t {
	case CONSTANT:
		return ""
	case DIRECT:
		return "$"
	case INDIRECT:
		return "$$"
	default:
		panic(fmt.Sprintf("lang: unknown operand type %d", t))
	}
}

// Operand is a tagged variant: CONSTANT(n), DIRECT(i) or INDIRECT(i).
type Operand struct {
	Type  OperandType
	Value number.Number
}

// NewConstant constructs a CONSTANT operand.
func NewConstant(v number.Number) Operand {
	return Operand{Type: CONSTANT, Value: v}
}

// NewDirect constructs a DIRECT operand referencing cell i.
func NewDirect(i number.Number) Operand {
	return Operand{Type: DIRECT, Value: i}
}

// NewIndirect constructs an INDIRECT operand referencing cell i.
func NewIndirect(i number.Number) Operand {
	return Operand{Type: INDIRECT, Value: i}
}

// Equal reports whether two operands are structurally identical.
func (o Operand) Equal(other Operand) bool {
	return o.Type == other.Type && o.Value.Equal(other.Value)
}

// IsConstant reports whether o is a CONSTANT operand equal to v.
func (o Operand) IsConstant(v int64) bool {
	return o.Type == CONSTANT && o.Value.Equal(number.FromInt64(v))
}

// String renders the operand in the textual program format.
func (o Operand) String() string {
	switch o.Type {
	case CONSTANT:
		return o.Value.String()
	case DIRECT:
		return "$" + o.Value.String()
	case INDIRECT:
		return "$$" + o.Value.String()
	default:
		panic(fmt.Sprintf("lang: unknown operand type %d", o.Type))
	}
}

// Hash returns a hashcode for the operand, combined into
// ProgramUtil-style structural hashes as (11*type) + value.hash(). The
// value's hash is derived from its big.Int representation; Inf hashes to a
// fixed sentinel distinct from any finite value likely to appear in
// practice.
func (o Operand) Hash() uint64 {
	var vh uint64

	if o.Value.IsInf() {
		vh = ^uint64(0)
	} else {
		b := o.Value.BigInt()
		for _, w := range b.Bits() {
			vh = vh*31 + uint64(w)
		}
	}

	return 11*uint64(o.Type) + vh
}
