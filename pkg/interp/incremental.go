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
package interp

import (
	"fmt"

	"github.com/loda-lang/loda-go/pkg/lang"
	"github.com/loda-lang/loda-go/pkg/lang/putil"
	"github.com/loda-lang/loda-go/pkg/number"
)

// IncrementalEvaluator computes a(0), a(1), a(2), ... in amortized
// sublinear work per term, for programs that decompose into a pre-loop, a
// single outer loop with a monotonically-driven counter, and a post-loop
// whose targets are all commutative accumulators fed by the loop body.
// Init performs the one-time static shape check; Next drives the runtime
// loop described in the package's design notes.
type IncrementalEvaluator struct {
	interp *Interpreter

	preLoop  lang.Program
	loopBody lang.Program
	postLoop lang.Program

	loopCounterCell  int64
	aggregationCells map[int64]bool

	initialized bool

	argument          int64
	previousLoopCount int64
	loopState         *lang.Memory
	totalLoopSteps    uint64
}

// NewIncrementalEvaluator constructs an evaluator that runs fragments
// through interp.
func NewIncrementalEvaluator(interp *Interpreter) *IncrementalEvaluator {
	return &IncrementalEvaluator{interp: interp}
}

// Init attempts to recognize program's shape.  It returns false (with the
// evaluator left uninitialized) if the program doesn't match; callers
// should fall back to the plain Interpreter in that case.
func (e *IncrementalEvaluator) Init(program lang.Program) bool {
	e.reset()

	if !e.extractFragments(program) {
		return false
	}

	if !e.checkPreLoop() {
		return false
	}

	e.computeAggregationCells()

	if !e.checkLoopBody() {
		return false
	}

	e.initialized = true
	e.loopState = lang.NewMemory()

	return true
}

func (e *IncrementalEvaluator) reset() {
	e.preLoop = lang.Program{}
	e.loopBody = lang.Program{}
	e.postLoop = lang.Program{}
	e.aggregationCells = nil
	e.loopCounterCell = 0
	e.initialized = false
	e.argument = 0
	e.previousLoopCount = 0
	e.totalLoopSteps = 0
	e.loopState = nil
}

// extractFragments splits program into pre-loop / loop body / post-loop
// around a single outermost LPB..LPE pair whose counter is a single DIRECT
// cell (LPB source CONSTANT 1, the canonical s=1 shape).
func (e *IncrementalEvaluator) extractFragments(program lang.Program) bool {
	phase := 0

	for _, op := range program.Ops {
		if op.Kind == lang.NOP {
			continue
		}

		if op.Kind == lang.CLR || putil.HasIndirectOperand(op) {
			return false
		}

		switch op.Kind {
		case lang.LPB:
			if phase != 0 || op.Target.Type != lang.DIRECT || !op.Source.IsConstant(1) {
				return false
			}

			e.loopCounterCell = op.Target.Value.Int64()
			phase = 1

			continue
		case lang.LPE:
			if phase != 1 {
				return false
			}

			phase = 2

			continue
		}

		switch phase {
		case 0:
			e.preLoop.Push(op)
		case 1:
			e.loopBody.Push(op)
		case 2:
			e.postLoop.Push(op)
		}
	}

	return phase == 2
}

// checkPreLoop ensures the counter cell's value is monotonically
// non-decreasing in the input, so additional_loops in Next is never
// negative.
func (e *IncrementalEvaluator) checkPreLoop() bool {
	for _, op := range e.preLoop.Ops {
		switch op.Kind {
		case lang.MOV:
			// assigning is fine regardless of source
		case lang.ADD, lang.SUB, lang.TRN:
			if op.Source.Type != lang.CONSTANT {
				return false
			}
		case lang.MUL, lang.DIV:
			if op.Source.Type != lang.CONSTANT {
				return false
			}
		default:
			return false
		}
	}

	return true
}

// computeAggregationCells scans the post-loop: every cell it reads becomes
// an aggregation cell, and OUTPUT_CELL is added unless the post-loop
// overwrites it without reading it first.
func (e *IncrementalEvaluator) computeAggregationCells() {
	cells := make(map[int64]bool)
	overwritesOutput := false

	for _, op := range e.postLoop.Ops {
		meta := op.Metadata()

		if meta.NumOperands > 0 {
			if meta.IsReadingTarget {
				cells[op.Target.Value.Int64()] = true
			} else if meta.IsWritingTarget && op.Target.Value.Int64() == lang.OutputCell {
				overwritesOutput = true
			}
		}

		if meta.NumOperands > 1 && op.Source.Type == lang.DIRECT {
			cells[op.Source.Value.Int64()] = true
		}
	}

	if !overwritesOutput {
		cells[lang.OutputCell] = true
	}

	e.aggregationCells = cells
}

// checkLoopBody requires every write to an aggregation cell to be a
// commutative accumulator (ADD/MUL) and every write to the counter cell to
// be a SUB/TRN by CONSTANT 1.
func (e *IncrementalEvaluator) checkLoopBody() bool {
	for _, op := range e.loopBody.Ops {
		if op.Metadata().NumOperands == 0 {
			continue
		}

		target := op.Target.Value.Int64()

		if e.aggregationCells[target] {
			if op.Kind != lang.ADD && op.Kind != lang.MUL {
				return false
			}
		}

		if target == e.loopCounterCell {
			if op.Kind != lang.SUB && op.Kind != lang.TRN {
				return false
			}

			if !op.Source.IsConstant(1) {
				return false
			}
		}
	}

	return true
}

// Next returns (a(argument), steps) and advances to the next argument.
func (e *IncrementalEvaluator) Next() (number.Number, uint64, error) {
	if !e.initialized {
		return number.Zero, 0, fmt.Errorf("interp: incremental evaluator not initialized")
	}

	tmp := lang.NewMemory()
	tmp.Set(number.FromInt64(lang.InputCell), number.FromInt64(e.argument))

	steps, err := e.interp.Run(e.preLoop, tmp)
	if err != nil {
		return number.Zero, 0, err
	}

	newLoopCount := tmp.Get(number.FromInt64(e.loopCounterCell)).Int64()
	additionalLoops := newLoopCount - e.previousLoopCount

	if additionalLoops < 0 {
		return number.Zero, 0, fmt.Errorf("interp: loop count decreased from %d to %d", e.previousLoopCount, newLoopCount)
	}

	e.previousLoopCount = newLoopCount

	if e.argument == 0 {
		e.loopState.Copy(tmp)
	} else {
		e.loopState.Set(number.FromInt64(e.loopCounterCell), number.FromInt64(newLoopCount))
	}

	for ; additionalLoops > 0; additionalLoops-- {
		bodySteps, err := e.interp.Run(e.loopBody, e.loopState)
		if err != nil {
			return number.Zero, 0, err
		}

		e.totalLoopSteps += bodySteps + 1 // +1 for the implicit lpe check
	}

	if e.argument == 0 {
		terminal := e.loopState.Clone()

		bodySteps, err := e.interp.Run(e.loopBody, terminal)
		if err != nil {
			return number.Zero, 0, err
		}

		e.totalLoopSteps += bodySteps + 2 // +2 for lpb and lpe
	}

	steps += e.totalLoopSteps

	tmp = e.loopState.Clone()

	postSteps, err := e.interp.Run(e.postLoop, tmp)
	if err != nil {
		return number.Zero, 0, err
	}

	steps += postSteps

	e.argument++

	return tmp.Get(number.FromInt64(lang.OutputCell)), steps, nil
}
