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

// Kind identifies an operation's mnemonic.
type Kind uint8

// The operation kinds, grouped by arity and role.  Order matters: it is the
// order the Iterator advances through when it increments an operation's
// kind, and Mnemonic/KindByMnemonic must stay exhaustive over it.
const (
	NOP Kind = iota
	DBG
	MOV
	ADD
	SUB
	TRN
	MUL
	DIV
	DIF
	MOD
	POW
	GCD
	BIN
	CMP
	FAC
	LOG
	MIN
	MAX
	SEQ
	CLR
	LPB
	LPE
)

// Metadata describes the shape and algebraic properties of an operation
// kind.  Every validator, printer, generator and rewriter consults this
// table rather than hard-coding arity, per DESIGN NOTES: "Operand arity
// table."
type Metadata struct {
	Kind Kind
	// Mnemonic is the lower-case textual form.
	Mnemonic string
	// NumOperands is 0, 1 or 2.
	NumOperands int
	// IsReadingTarget indicates the operation reads its target cell before
	// writing it (e.g. ADD reads t then writes t+s).
	IsReadingTarget bool
	// IsWritingTarget indicates the operation writes its target cell.
	IsWritingTarget bool
	// IsCommutative indicates target and source may be swapped without
	// changing the operation's effect (only meaningful for 2-operand ops
	// whose target is also a read).
	IsCommutative bool
	// IsArithmetic indicates the operation performs a Semantics
	// computation (excludes NOP, DBG, MOV, SEQ, CLR, LPB, LPE).
	IsArithmetic bool
}

// metadataTable is the single source of truth for operation shape.  Kind
// values index directly into it.
var metadataTable = [...]Metadata{
	NOP: {Kind: NOP, Mnemonic: "nop", NumOperands: 0},
	DBG: {Kind: DBG, Mnemonic: "dbg", NumOperands: 0},
	MOV: {Kind: MOV, Mnemonic: "mov", NumOperands: 2, IsWritingTarget: true},
	ADD: {Kind: ADD, Mnemonic: "add", NumOperands: 2, IsReadingTarget: true, IsWritingTarget: true, IsCommutative: true, IsArithmetic: true},
	SUB: {Kind: SUB, Mnemonic: "sub", NumOperands: 2, IsReadingTarget: true, IsWritingTarget: true, IsArithmetic: true},
	TRN: {Kind: TRN, Mnemonic: "trn", NumOperands: 2, IsReadingTarget: true, IsWritingTarget: true, IsArithmetic: true},
	MUL: {Kind: MUL, Mnemonic: "mul", NumOperands: 2, IsReadingTarget: true, IsWritingTarget: true, IsCommutative: true, IsArithmetic: true},
	DIV: {Kind: DIV, Mnemonic: "div", NumOperands: 2, IsReadingTarget: true, IsWritingTarget: true, IsArithmetic: true},
	DIF: {Kind: DIF, Mnemonic: "dif", NumOperands: 2, IsReadingTarget: true, IsWritingTarget: true, IsArithmetic: true},
	MOD: {Kind: MOD, Mnemonic: "mod", NumOperands: 2, IsReadingTarget: true, IsWritingTarget: true, IsArithmetic: true},
	POW: {Kind: POW, Mnemonic: "pow", NumOperands: 2, IsReadingTarget: true, IsWritingTarget: true, IsArithmetic: true},
	GCD: {Kind: GCD, Mnemonic: "gcd", NumOperands: 2, IsReadingTarget: true, IsWritingTarget: true, IsCommutative: true, IsArithmetic: true},
	BIN: {Kind: BIN, Mnemonic: "bin", NumOperands: 2, IsReadingTarget: true, IsWritingTarget: true, IsArithmetic: true},
	CMP: {Kind: CMP, Mnemonic: "cmp", NumOperands: 2, IsReadingTarget: true, IsWritingTarget: true, IsCommutative: true, IsArithmetic: true},
	FAC: {Kind: FAC, Mnemonic: "fac", NumOperands: 1, IsReadingTarget: true, IsWritingTarget: true, IsArithmetic: true},
	LOG: {Kind: LOG, Mnemonic: "log", NumOperands: 2, IsReadingTarget: true, IsWritingTarget: true, IsArithmetic: true},
	MIN: {Kind: MIN, Mnemonic: "min", NumOperands: 2, IsReadingTarget: true, IsWritingTarget: true, IsCommutative: true, IsArithmetic: true},
	MAX: {Kind: MAX, Mnemonic: "max", NumOperands: 2, IsReadingTarget: true, IsWritingTarget: true, IsCommutative: true, IsArithmetic: true},
	SEQ: {Kind: SEQ, Mnemonic: "seq", NumOperands: 2, IsReadingTarget: true, IsWritingTarget: true},
	CLR: {Kind: CLR, Mnemonic: "clr", NumOperands: 2, IsWritingTarget: true},
	LPB: {Kind: LPB, Mnemonic: "lpb", NumOperands: 2, IsReadingTarget: true},
	LPE: {Kind: LPE, Mnemonic: "lpe", NumOperands: 0},
}

// MetadataOf returns the metadata for a given kind.
func MetadataOf(k Kind) Metadata {
	return metadataTable[k]
}

// Mnemonic returns the lower-case mnemonic for k.
func (k Kind) Mnemonic() string {
	return metadataTable[k].Mnemonic
}

// KindByMnemonic looks up a Kind by its case-normalised mnemonic (the parser
// lower-cases before calling this).
func KindByMnemonic(m string) (Kind, bool) {
	for i := range metadataTable {
		if metadataTable[i].Mnemonic == m {
			return metadataTable[i].Kind, true
		}
	}

	return NOP, false
}

// IsArithmetic reports whether k performs a Semantics computation.
func (k Kind) IsArithmetic() bool {
	return metadataTable[k].IsArithmetic
}

// IsCommutative reports whether k's target and source may be swapped.
func (k Kind) IsCommutative() bool {
	return metadataTable[k].IsCommutative
}

// Operation is a single instruction: (kind, target, source, comment).  The
// comment is free-form annotation ignored by execution.
type Operation struct {
	Kind    Kind
	Target  Operand
	Source  Operand
	Comment string
}

// NewOperation constructs an Operation with no comment.
func NewOperation(k Kind, target, source Operand) Operation {
	return Operation{Kind: k, Target: target, Source: source}
}

// NewNop constructs a NOP carrying a comment (used for comment-only lines).
func NewNop(comment string) Operation {
	return Operation{Kind: NOP, Comment: comment}
}

// Metadata returns the metadata for this operation's kind.
func (op Operation) Metadata() Metadata {
	return metadataTable[op.Kind]
}

// HasIndirectOperand reports whether either operand is INDIRECT.
func (op Operation) HasIndirectOperand() bool {
	return op.Target.Type == INDIRECT || op.Source.Type == INDIRECT
}

// String renders the operation in the textual program format, without
// indentation (the Printer applies indentation across a whole Program).
func (op Operation) String() string {
	meta := op.Metadata()
	s := meta.Mnemonic

	switch meta.NumOperands {
	case 1:
		s += " " + op.Target.String()
	case 2:
		s += " " + op.Target.String() + "," + op.Source.String()
	}

	if op.Comment != "" {
		if meta.NumOperands == 0 && op.Kind == NOP {
			return "; " + op.Comment
		}

		s += " ; " + op.Comment
	}

	return s
}
