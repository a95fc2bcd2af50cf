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

// Package interp executes lang.Program values against lang.Memory: a
// straight-line interpreter for eval/check, and an IncrementalEvaluator
// that amortizes evaluation across successive inputs for programs matching
// a recognizable single-outer-loop shape.
package interp

import (
	"errors"
	"fmt"

	"github.com/loda-lang/loda-go/pkg/lang"
	"github.com/loda-lang/loda-go/pkg/number"
	"github.com/loda-lang/loda-go/pkg/store"
	"github.com/loda-lang/loda-go/pkg/util/collection/stack"
)

// EvalError reports why a run of the interpreter aborted.
type EvalError struct {
	Reason string
}

func (e *EvalError) Error() string {
	return "interp: " + e.Reason
}

var (
	// ErrStepsExceeded is returned when a run's operation count exceeds its
	// configured ceiling.
	ErrStepsExceeded = &EvalError{"maximum number of steps exceeded"}
	// ErrMemoryExceeded is returned when a run touches more memory cells
	// than its configured ceiling allows.
	ErrMemoryExceeded = &EvalError{"maximum memory usage exceeded"}
	// ErrRecursionExceeded is returned when SEQ recursion exceeds its
	// configured depth limit.
	ErrRecursionExceeded = &EvalError{"maximum recursion depth exceeded"}
	// ErrRecursionCycle is returned when a SEQ call graph revisits a
	// program id already on the call stack.
	ErrRecursionCycle = &EvalError{"cyclic seq call detected"}
)

// Options bounds an Interpreter's resource usage; the zero value disables
// all limits.
type Options struct {
	MaxSteps     uint64
	MaxCells     uint64
	MaxRecursion int
}

// Interpreter runs lang.Program values against lang.Memory.  A single
// Interpreter is reused across calls so that SEQ can recursively resolve
// programs from the same ProgramStore.
type Interpreter struct {
	Store store.ProgramStore
	Opts  Options
}

// New constructs an Interpreter.  store may be nil if the program being run
// never contains a SEQ operation.
func New(programs store.ProgramStore, opts Options) *Interpreter {
	return &Interpreter{Store: programs, Opts: opts}
}

type loopFrame struct {
	// pc is the index of the LPB operation that opened this frame.
	pc int
	// counter is the loop-control cell(s), snapshotted after each
	// iteration; length 1 for the canonical s=1 case, longer for s>1.
	counter []number.Number
}

// Run executes program against mem in place, returning the number of
// executed operations (each loop-body iteration counted separately).
func (in *Interpreter) Run(program lang.Program, mem *lang.Memory) (uint64, error) {
	return in.run(program, mem, 0, make(map[uint64]bool))
}

// run executes program, threading depth (the SEQ nesting level, bounded by
// MaxRecursion) and active (the set of program ids currently on the SEQ
// call stack, used to detect cycles) through to runSeq.
func (in *Interpreter) run(program lang.Program, mem *lang.Memory, depth int, active map[uint64]bool) (uint64, error) {
	var steps uint64

	frames := stack.NewStack[loopFrame]()
	loopEnds := matchLoops(program)

	for pc := 0; pc < program.Len(); pc++ {
		op := program.Ops[pc]

		if in.Opts.MaxSteps > 0 && steps >= in.Opts.MaxSteps {
			return steps, ErrStepsExceeded
		}

		switch op.Kind {
		case lang.NOP, lang.DBG:
			// no effect
		case lang.LPE:
			frame := frames.Peek(0)

			cur := readCounter(mem, program.Ops[frame.pc])
			if lessAndPositive(cur, frame.counter) {
				frames.Pop()
				frames.Push(loopFrame{pc: frame.pc, counter: cur})
				pc = frame.pc // continues to frame.pc+1 next iteration
			} else {
				frames.Pop()
			}
		case lang.LPB:
			counter := readCounter(mem, op)
			if allPositive(counter) {
				frames.Push(loopFrame{pc: pc, counter: counter})
			} else {
				// counter already exhausted: skip straight past the
				// matching LPE without running the body at all.
				pc = loopEnds[pc]
			}
		case lang.CLR:
			n := in.resolveRegionLength(op, mem)
			mem.ClearRegion(in.resolveOperand(op.Target, mem), n)
		case lang.SEQ:
			result, subSteps, err := in.runSeq(op, mem, depth, active)
			if err != nil {
				return steps, err
			}

			in.writeOperand(mem, op.Target, result)

			steps += subSteps
		default:
			if err := in.execArithmetic(op, mem); err != nil {
				return steps, err
			}
		}

		steps++

		if in.Opts.MaxCells > 0 && uint64(mem.UsedCells().Count()) > in.Opts.MaxCells {
			return steps, ErrMemoryExceeded
		}
	}

	return steps, nil
}

// resolveRegionLength returns the CLR/LPB region length, which must be a
// CONSTANT source operand.
func (in *Interpreter) resolveRegionLength(op lang.Operation, mem *lang.Memory) uint64 {
	v := in.resolveOperand(op.Source, mem)
	if v.IsInf() {
		return 0
	}

	bi := v.BigInt()
	return bi.Uint64()
}

// readCounter reads the loop-control cell(s) for op (an LPB), which is a
// single cell in the canonical s=1 case.
func readCounter(mem *lang.Memory, lpb lang.Operation) []number.Number {
	idx := lpb.Target.Value
	n := uint64(1)

	if lpb.Source.Type == lang.CONSTANT && !lpb.Source.Value.IsInf() {
		bi := lpb.Source.Value.BigInt()
		n = bi.Uint64()
		if n == 0 {
			n = 1
		}
	}

	vals := make([]number.Number, n)
	base := idx.Int64()

	for i := range vals {
		vals[i] = mem.Get(number.FromInt64(base + int64(i)))
	}

	return vals
}

// lessAndPositive reports whether cur is componentwise less than prev and
// componentwise positive, the loop's continuation condition.
func lessAndPositive(cur, prev []number.Number) bool {
	for i := range cur {
		if cur[i].IsZero() || cur[i].Cmp(prev[i]) >= 0 {
			return false
		}
	}

	return true
}

// allPositive reports whether every component is nonzero (Number's domain
// is nonnegative, so nonzero means strictly positive), the condition for
// entering a loop body at all.
func allPositive(vals []number.Number) bool {
	for _, v := range vals {
		if v.IsZero() {
			return false
		}
	}

	return true
}

// matchLoops maps each LPB's program-counter to its matching LPE's, so the
// interpreter can jump over a loop body whose counter starts at zero
// without executing it.
func matchLoops(program lang.Program) map[int]int {
	matches := make(map[int]int)

	var open []int

	for i, op := range program.Ops {
		switch op.Kind {
		case lang.LPB:
			open = append(open, i)
		case lang.LPE:
			n := len(open) - 1
			matches[open[n]] = i
			open = open[:n]
		}
	}

	return matches
}

func (in *Interpreter) execArithmetic(op lang.Operation, mem *lang.Memory) error {
	meta := op.Metadata()

	var target number.Number
	if meta.IsReadingTarget {
		target = in.resolveOperand(op.Target, mem)
	}

	var source number.Number
	if meta.NumOperands > 1 {
		source = in.resolveOperand(op.Source, mem)
	}

	var result number.Number

	switch op.Kind {
	case lang.MOV:
		result = in.resolveOperand(op.Source, mem)
	case lang.ADD:
		result = number.Add(target, source)
	case lang.SUB, lang.TRN:
		result = number.Sub(target, source)
	case lang.MUL:
		result = number.Mul(target, source)
	case lang.DIV:
		result = number.Div(target, source)
	case lang.DIF:
		result = number.DivExact(target, source)
	case lang.MOD:
		result = number.Mod(target, source)
	case lang.POW:
		result = number.Pow(target, source)
	case lang.GCD:
		result = number.Gcd(target, source)
	case lang.BIN:
		result = number.Bin(target, source)
	case lang.CMP:
		result = number.Cmp01(target, source)
	case lang.FAC:
		result = number.Fac(target)
	case lang.LOG:
		result = number.Log(target, source)
	case lang.MIN:
		result = number.Min(target, source)
	case lang.MAX:
		result = number.Max(target, source)
	default:
		return fmt.Errorf("interp: operation %s has no arithmetic semantics", op.Kind.Mnemonic())
	}

	if meta.IsWritingTarget {
		in.writeOperand(mem, op.Target, result)
	}

	return nil
}

// resolveOperand evaluates o for reading.
func (in *Interpreter) resolveOperand(o lang.Operand, mem *lang.Memory) number.Number {
	switch o.Type {
	case lang.CONSTANT:
		return o.Value
	case lang.DIRECT:
		return mem.Get(o.Value)
	case lang.INDIRECT:
		return mem.Get(mem.Get(o.Value))
	default:
		panic(fmt.Sprintf("interp: unknown operand type %d", o.Type))
	}
}

// writeOperand evaluates o for writing and stores v there.
func (in *Interpreter) writeOperand(mem *lang.Memory, o lang.Operand, v number.Number) {
	switch o.Type {
	case lang.DIRECT:
		mem.Set(o.Value, v)
	case lang.INDIRECT:
		mem.Set(mem.Get(o.Value), v)
	default:
		panic(fmt.Sprintf("interp: cannot write operand type %d", o.Type))
	}
}

func (in *Interpreter) runSeq(op lang.Operation, mem *lang.Memory, depth int, active map[uint64]bool) (number.Number, uint64, error) {
	if in.Store == nil {
		return number.Zero, 0, errors.New("interp: seq operation used without a program store")
	}

	if in.Opts.MaxRecursion > 0 && depth >= in.Opts.MaxRecursion {
		return number.Zero, 0, ErrRecursionExceeded
	}

	id := uint64(in.resolveOperand(op.Source, mem).Int64())

	if active[id] {
		return number.Zero, 0, ErrRecursionCycle
	}

	sub, ok := in.Store.Get(id)
	if !ok {
		return number.Zero, 0, fmt.Errorf("interp: unknown program a%d referenced by seq", id)
	}

	input := in.resolveOperand(op.Target, mem)

	subMem := lang.NewMemory()
	subMem.Set(number.FromInt64(lang.InputCell), input)

	active[id] = true
	steps, err := in.run(sub, subMem, depth+1, active)
	delete(active, id)

	if err != nil {
		return number.Zero, steps, err
	}

	return subMem.Get(number.FromInt64(lang.OutputCell)), steps, nil
}

// Eval computes [out(0), out(1), ..., out(k-1)] by running program with a
// fresh Memory per input.
func Eval(in *Interpreter, program lang.Program, k int) (lang.Sequence, error) {
	seq := make(lang.Sequence, k)

	for i := 0; i < k; i++ {
		mem := lang.NewMemory()
		mem.Set(number.FromInt64(lang.InputCell), number.FromInt64(int64(i)))

		if _, err := in.Run(program, mem); err != nil {
			return nil, fmt.Errorf("eval a(%d): %w", i, err)
		}

		seq[i] = mem.Get(number.FromInt64(lang.OutputCell))
	}

	return seq, nil
}

// CheckResult is the ternary outcome of Check.
type CheckResult int

const (
	// OK means every available term of expected matched.
	OK CheckResult = iota
	// WARNING means the required prefix matched but a later term diverged.
	WARNING
	// ERROR means a term within the required prefix diverged.
	ERROR
)

func (r CheckResult) String() string {
	switch r {
	case OK:
		return "ok"
	case WARNING:
		return "warning"
	case ERROR:
		return "error"
	default:
		return "unknown"
	}
}

// Check evaluates program and compares against expected, up to
// len(expected) terms.  ERROR means one of the first requiredFirstN terms
// diverged; WARNING means the required prefix matched but a later term
// diverged; OK means every available term matched.  id is used only to
// annotate the returned error, if any.
func Check(in *Interpreter, program lang.Program, expected lang.Sequence, requiredFirstN int, id uint64) (CheckResult, error) {
	got, err := Eval(in, program, len(expected))
	if err != nil {
		return ERROR, fmt.Errorf("check a%d: %w", id, err)
	}

	n := requiredFirstN
	if n > len(expected) {
		n = len(expected)
	}

	if !got.Prefix(expected, n) {
		return ERROR, nil
	}

	if !got.Equal(expected) {
		return WARNING, nil
	}

	return OK, nil
}
