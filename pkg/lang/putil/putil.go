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

// Package putil provides structural queries and rewrites over lang.Program
// that don't belong on Program itself: validation, hashing, dependency
// analysis and cell-renaming, mirroring the free-function ("ProgramUtil")
// style of the language this toolkit's assembler is modelled on rather than
// growing Program into a god object.
package putil

import (
	"fmt"
	"io"
	"strings"

	"github.com/loda-lang/loda-go/pkg/lang"
	"github.com/loda-lang/loda-go/pkg/number"
)

// IsNop reports whether op has no effect: NOP/DBG, a MOV/MIN/MAX whose
// source equals its target, an ADD/SUB of constant zero, or a MUL/DIV/DIF/
// POW/BIN by constant one.
func IsNop(op lang.Operation) bool {
	switch op.Kind {
	case lang.NOP, lang.DBG:
		return true
	case lang.MOV, lang.MIN, lang.MAX:
		return op.Source.Equal(op.Target)
	case lang.ADD, lang.SUB:
		return op.Source.IsConstant(0)
	case lang.MUL, lang.DIV, lang.DIF, lang.POW, lang.BIN:
		return op.Source.IsConstant(1)
	default:
		return false
	}
}

// RemoveOps removes every operation of the given kind from p, in place.
func RemoveOps(p *lang.Program, kind lang.Kind) {
	kept := p.Ops[:0]

	for _, op := range p.Ops {
		if op.Kind != kind {
			kept = append(kept, op)
		}
	}

	p.Ops = kept
}

// RemoveComments clears the Comment field of every operation in p.
func RemoveComments(p *lang.Program) {
	for i := range p.Ops {
		p.Ops[i].Comment = ""
	}
}

// AddComment appends a comment-only NOP to p.
func AddComment(p *lang.Program, comment string) {
	p.Push(lang.NewNop(comment))
}

// NumOps counts operations, optionally excluding NOPs.
func NumOps(p lang.Program, withNops bool) int {
	if withNops {
		return p.Len()
	}

	n := 0

	for _, op := range p.Ops {
		if op.Kind != lang.NOP {
			n++
		}
	}

	return n
}

// NumOpsOfKind counts operations of a specific kind.
func NumOpsOfKind(p lang.Program, kind lang.Kind) int {
	n := 0

	for _, op := range p.Ops {
		if op.Kind == kind {
			n++
		}
	}

	return n
}

// HasIndirectOperand reports whether op reads or writes through an
// INDIRECT operand.
func HasIndirectOperand(op lang.Operation) bool {
	return op.HasIndirectOperand()
}

func isAdditive(k lang.Kind) bool {
	return k == lang.ADD || k == lang.SUB
}

// AreIndependent reports whether op1 and op2 can be evaluated in either
// order without changing the program's effect: both must be arithmetic (or
// SEQ), neither may use an INDIRECT operand, and neither may read a cell the
// other writes, except that two ADD/SUB operations may share a target.
func AreIndependent(op1, op2 lang.Operation) bool {
	if !op1.Kind.IsArithmetic() && op1.Kind != lang.SEQ {
		return false
	}

	if !op2.Kind.IsArithmetic() && op2.Kind != lang.SEQ {
		return false
	}

	if HasIndirectOperand(op1) || HasIndirectOperand(op2) {
		return false
	}

	sameTarget := op1.Target.Value.Equal(op2.Target.Value)
	bothAdditive := isAdditive(op1.Kind) && isAdditive(op2.Kind)

	if sameTarget && !bothAdditive {
		return false
	}

	if op1.Source.Type == lang.DIRECT && op2.Target.Value.Equal(op1.Source.Value) {
		return false
	}

	if op2.Source.Type == lang.DIRECT && op1.Target.Value.Equal(op2.Source.Value) {
		return false
	}

	return true
}

// GetUsedMemoryCells reports every direct cell index referenced by p and the
// largest such index.  It returns ok=false if p contains an INDIRECT operand
// or an LPB/CLR region of non-constant length, since the used-cell set is
// then not statically determinable.
func GetUsedMemoryCells(p lang.Program) (used map[int64]bool, largest int64, ok bool) {
	used = make(map[int64]bool)

	for _, op := range p.Ops {
		if op.Source.Type == lang.INDIRECT || op.Target.Type == lang.INDIRECT {
			return nil, 0, false
		}

		regionLen := int64(1)

		if op.Kind == lang.LPB || op.Kind == lang.CLR {
			if op.Source.Type != lang.CONSTANT {
				return nil, 0, false
			}

			regionLen = op.Source.Value.Int64()
		}

		if op.Source.Type == lang.DIRECT {
			base := op.Source.Value.Int64()
			for i := int64(0); i < regionLen; i++ {
				used[base+i] = true
			}
		}

		if op.Target.Type == lang.DIRECT {
			base := op.Target.Value.Int64()
			for i := int64(0); i < regionLen; i++ {
				used[base+i] = true
			}
		}
	}

	for cell := range used {
		if cell > largest {
			largest = cell
		}
	}

	return used, largest, true
}

// GetLargestDirectMemoryCell returns the largest cell index referenced by
// any DIRECT operand in p, or 0 if none.
func GetLargestDirectMemoryCell(p lang.Program) int64 {
	var largest int64

	for _, op := range p.Ops {
		if op.Source.Type == lang.DIRECT {
			if v := op.Source.Value.Int64(); v > largest {
				largest = v
			}
		}

		if op.Target.Type == lang.DIRECT {
			if v := op.Target.Value.Int64(); v > largest {
				largest = v
			}
		}
	}

	return largest
}

// HasLoopWithConstantNumIterations reports whether p contains an LPB whose
// loop-counter cell was most recently set to a CONSTANT by a MOV, which
// makes the loop's iteration count statically known — usually a sign a
// generated program is degenerate.  Assumes p is already free of dead code.
func HasLoopWithConstantNumIterations(p lang.Program) bool {
	values := make(map[int64]number.Number)

	for _, op := range p.Ops {
		if op.Target.Type != lang.DIRECT {
			clear(values)
			continue
		}

		cell := op.Target.Value.Int64()

		switch {
		case op.Kind == lang.MOV:
			if op.Source.Type == lang.CONSTANT {
				values[cell] = op.Source.Value
			} else {
				delete(values, cell)
			}
		case op.Kind == lang.LPB:
			if _, ok := values[cell]; ok {
				return true
			}

			clear(values)
		case op.Kind == lang.LPE:
			clear(values)
		case op.Kind.IsArithmetic():
			delete(values, cell)
		}
	}

	return false
}

// GetEnclosingLoop returns the (LPB, LPE) index pair of the loop enclosing
// opIndex.  If opIndex itself names an LPB or LPE, that loop is returned. It
// panics if p's loop nesting is malformed, which Validate should have
// already ruled out.
func GetEnclosingLoop(p lang.Program, opIndex int) (start, end int) {
	i := opIndex

	if p.Ops[i].Kind != lang.LPB {
		if p.Ops[i].Kind == lang.LPE {
			i--
		}

		openLoops := 1
		for ; i >= 0 && openLoops > 0; i-- {
			switch p.Ops[i].Kind {
			case lang.LPB:
				openLoops--
			case lang.LPE:
				openLoops++
			}
		}

		if openLoops > 0 {
			return -1, -1
		}

		i++
	}

	start = i
	i++

	openLoops := 1
	for ; i < p.Len() && openLoops > 0; i++ {
		switch p.Ops[i].Kind {
		case lang.LPB:
			openLoops++
		case lang.LPE:
			openLoops--
		}
	}

	i--

	if openLoops > 0 {
		panic("putil: unbalanced loop nesting")
	}

	end = i

	if p.Ops[start].Kind != lang.LPB || p.Ops[end].Kind != lang.LPE {
		panic("putil: internal error locating enclosing loop")
	}

	return start, end
}

// Validate checks structural well-formedness: every LPB has a matching LPE,
// loops never close before they open, and no operation that writes its
// target has a CONSTANT target.
func Validate(p lang.Program) error {
	depth := 0

	for i, op := range p.Ops {
		switch op.Kind {
		case lang.LPB:
			depth++
		case lang.LPE:
			depth--
			if depth < 0 {
				return fmt.Errorf("putil: unmatched lpe at operation %d", i)
			}
		}

		meta := op.Metadata()
		if meta.NumOperands >= 1 && op.Target.Type == lang.CONSTANT && meta.IsWritingTarget {
			return fmt.Errorf("putil: operation %d writes to a constant target", i)
		}
	}

	if depth != 0 {
		return fmt.Errorf("putil: %d unmatched lpb", depth)
	}

	return nil
}

// Hash returns an order-sensitive structural hash of p that ignores NOPs,
// so that a program and its NOP-padded or comment-only-decorated equivalent
// hash identically.
func Hash(p lang.Program) uint64 {
	var h uint64

	for _, op := range p.Ops {
		if op.Kind != lang.NOP {
			h = (3 * h) + hashOp(op)
		}
	}

	return h
}

func hashOp(op lang.Operation) uint64 {
	meta := op.Metadata()
	h := uint64(op.Kind)

	if meta.NumOperands > 0 {
		h = (5 * h) + op.Target.Hash()
	}

	if meta.NumOperands > 1 {
		h = (7 * h) + op.Source.Hash()
	}

	return h
}

// swapCells exchanges an operand's references to cells "from" and "to",
// leaving CONSTANT operands and references to any other cell untouched.
func swapCells(op *lang.Operand, from, to int64) {
	if op.Type == lang.CONSTANT {
		return
	}

	switch op.Value.Int64() {
	case from:
		op.Value = number.FromInt64(to)
	case to:
		op.Value = number.FromInt64(from)
	}
}

// MigrateOutputCell rewrites p so that its result is produced in newOut
// instead of oldOut, in whichever of three ways disturbs p the least: if a
// top-level "mov oldOut,newOut" exists, swapping oldOut and newOut in every
// operation after the first such mov; if p ends in a top-level "mov
// oldOut,<constant>" followed only by constant-source operations on oldOut,
// retargeting those operations to newOut in place; or, failing both,
// appending "mov newOut,oldOut".
func MigrateOutputCell(p *lang.Program, oldOut, newOut int64) {
	foundMovToOld := -1
	canSwitch := false
	canReplaceTarget := true
	openLoops := 0

	for i, op := range p.Ops {
		if op.Kind == lang.MOV && op.Target.Type == lang.DIRECT && op.Target.Value.Int64() == oldOut {
			foundMovToOld = i
			canReplaceTarget = true
			canSwitch = openLoops == 0 && op.Source.Type == lang.DIRECT && op.Source.Value.Int64() == newOut

			if canSwitch {
				break
			}
		}

		switch op.Kind {
		case lang.LPB:
			openLoops++
			canReplaceTarget = false
		case lang.LPE:
			openLoops--
			canReplaceTarget = false
		}

		if !(op.Target.Type == lang.DIRECT && op.Target.Value.Int64() == oldOut) || op.Source.Type != lang.CONSTANT {
			canReplaceTarget = false
		}
	}

	switch {
	case foundMovToOld >= 0 && canSwitch:
		for i := foundMovToOld + 1; i < p.Len(); i++ {
			swapCells(&p.Ops[i].Target, oldOut, newOut)
			swapCells(&p.Ops[i].Source, oldOut, newOut)
		}
	case foundMovToOld >= 0 && canReplaceTarget:
		mov := p.Ops[foundMovToOld]
		if mov.Source.Type == lang.DIRECT && mov.Source.Value.Int64() == newOut {
			p.RemoveAt(foundMovToOld)
			foundMovToOld--
		} else {
			p.Ops[foundMovToOld].Target = lang.NewDirect(number.FromInt64(newOut))
		}

		for i := foundMovToOld + 1; i < p.Len(); i++ {
			if p.Ops[i].Target.Type == lang.DIRECT && p.Ops[i].Target.Value.Int64() == oldOut {
				p.Ops[i].Target.Value = number.FromInt64(newOut)
			}
		}
	default:
		p.Push(lang.NewOperation(lang.MOV, lang.NewDirect(number.FromInt64(newOut)), lang.NewDirect(number.FromInt64(oldOut))))
	}
}

// ExportToDot writes p as a Graphviz "dot" digraph to out: adjacent
// AreIndependent operations merge into a single stage (drawn as a
// triangle/inverted-triangle fork and join around the stage's nodes when it
// holds more than one operation), nodes are labelled by operation string
// and colored by kind (MOV blue, other arithmetic green, everything else
// red), and each LPE gets a loop-back edge to its matching LPB.
func ExportToDot(p lang.Program, out io.Writer) error {
	merged := mergeIndependentOps(p)

	if _, err := fmt.Fprintln(out, "digraph G {"); err != nil {
		return err
	}

	if err := writeDotNodes(out, merged); err != nil {
		return err
	}

	if err := writeDotEdges(out, merged); err != nil {
		return err
	}

	_, err := fmt.Fprintln(out, "}")

	return err
}

// mergeIndependentOps groups p's non-NOP operations into maximal runs in
// which each operation is AreIndependent of the one before it, then brackets any run longer than one
// operation with a synthetic fork/join NOP pair.
func mergeIndependentOps(p lang.Program) [][]lang.Operation {
	var merged [][]lang.Operation

	for _, op := range p.Ops {
		if op.Kind == lang.NOP {
			continue
		}

		op.Comment = ""

		if n := len(merged); n > 0 && len(merged[n-1]) > 0 && AreIndependent(op, merged[n-1][len(merged[n-1])-1]) {
			merged[n-1] = append(merged[n-1], op)
		} else {
			merged = append(merged, []lang.Operation{op})
		}
	}

	bracketed := make([][]lang.Operation, 0, len(merged))

	for _, group := range merged {
		if len(group) > 1 {
			bracketed = append(bracketed, []lang.Operation{lang.NewNop("triangle")})
			bracketed = append(bracketed, group)
			bracketed = append(bracketed, []lang.Operation{lang.NewNop("invtriangle")})
		} else {
			bracketed = append(bracketed, group)
		}
	}

	return bracketed
}

// dotNodeID names the node for the j'th operation of merged group i.
func dotNodeID(i, j int) string {
	return fmt.Sprintf("o%d_%d", i, j)
}

func writeDotNodes(out io.Writer, merged [][]lang.Operation) error {
	for i, group := range merged {
		for j, op := range group {
			shape, label := "ellipse", op.String()
			color := "black"

			switch {
			case op.Kind == lang.NOP:
				shape, label = op.Comment, ""
			case op.Kind == lang.MOV:
				color = "blue"
			case op.Kind.IsArithmetic():
				color = "green"
			default:
				color = "red"
			}

			_, err := fmt.Fprintf(out, "  %s [label=\"%s\",shape=%s,color=%s,fontname=\"courier\"];\n",
				dotNodeID(i, j), label, shape, color)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func writeDotEdges(out io.Writer, merged [][]lang.Operation) error {
	var lpbs []string

	for i, group := range merged {
		for j, op := range group {
			src := dotNodeID(i, j)

			var targets []string

			if i+1 < len(merged) {
				for k := range merged[i+1] {
					targets = append(targets, dotNodeID(i+1, k))
				}
			}

			if op.Kind == lang.LPE && len(lpbs) > 0 {
				n := len(lpbs) - 1
				targets = append(targets, lpbs[n])
				lpbs = lpbs[:n]
			}

			if len(targets) > 0 {
				if _, err := fmt.Fprintf(out, "  %s -> { %s }\n", src, strings.Join(targets, " ")); err != nil {
					return err
				}
			}

			if op.Kind == lang.LPB {
				lpbs = append(lpbs, src)
			}
		}
	}

	return nil
}

// AvoidNopOrOverflow nudges a freshly mutated op's operands away from
// values that would make it a no-op or, for MOV/DIV/DIF/MOD/GCD/BIN with a
// DIRECT source equal to the target, a trivial self-reference: a zero
// CONSTANT source on ADD/SUB/LPB becomes one; a zero-or-one CONSTANT source
// on MUL/DIV/DIF/MOD/POW/GCD/BIN becomes two; a DIRECT source equal to the
// target on MOV/DIV/DIF/MOD/GCD/BIN bumps the target to the next cell.
func AvoidNopOrOverflow(op *lang.Operation) {
	switch op.Source.Type {
	case lang.CONSTANT:
		v := op.Source.Value.Int64()

		if v == 0 && (op.Kind == lang.ADD || op.Kind == lang.SUB || op.Kind == lang.LPB) {
			op.Source.Value = number.One
		}

		v = op.Source.Value.Int64()
		if (v == 0 || v == 1) &&
			(op.Kind == lang.MUL || op.Kind == lang.DIV || op.Kind == lang.DIF || op.Kind == lang.MOD ||
				op.Kind == lang.POW || op.Kind == lang.GCD || op.Kind == lang.BIN) {
			op.Source.Value = number.FromInt64(2)
		}
	case lang.DIRECT:
		if op.Source.Value.Int64() == op.Target.Value.Int64() &&
			(op.Kind == lang.MOV || op.Kind == lang.DIV || op.Kind == lang.DIF || op.Kind == lang.MOD ||
				op.Kind == lang.GCD || op.Kind == lang.BIN) {
			op.Target.Value = number.FromInt64(op.Target.Value.Int64() + 1)
		}
	}
}
