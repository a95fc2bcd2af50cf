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

// Package mutate derives small variants of an existing Program: targeted
// random edits, and systematic perturbations of its constant operands.
package mutate

import (
	"math/rand"

	"github.com/loda-lang/loda-go/pkg/lang"
	"github.com/loda-lang/loda-go/pkg/lang/putil"
	"github.com/loda-lang/loda-go/pkg/number"
	"github.com/loda-lang/loda-go/pkg/util/collection/stack"
)

// constantsStart and constantsEnd bound the CONSTANT values mutateOperation
// may draw. The nonnegative Number domain of this rewrite has no negative
// literals, so the source's [-100,1000] window is clamped at zero rather
// than mirrored below it.
const (
	constantsStart int64 = 0
	constantsEnd   int64 = 1000
)

// Mutator produces randomized variants of a Program, using a single seeded
// random source per instance (spec DESIGN NOTES: "no process-wide default
// generator").
type Mutator struct {
	// MutationRate is the fraction of a program's ops targeted per
	// mutateRandom call; at least one op is always mutated.
	MutationRate float64
	// ProgramIDs supplies candidate ids for mutating a SEQ operand; nil
	// disables SEQ mutation (mutateOperation leaves such ops untouched).
	ProgramIDs []uint64

	rng            *rand.Rand
	operationKinds []lang.Kind
}

// New constructs a Mutator seeded deterministically from seed.
func New(mutationRate float64, programIDs []uint64, seed uint64) *Mutator {
	m := &Mutator{
		MutationRate: mutationRate,
		ProgramIDs:   programIDs,
		rng:          rand.New(rand.NewSource(int64(seed))),
	}

	for k := lang.ADD; k <= lang.MAX; k++ {
		if k.IsArithmetic() {
			m.operationKinds = append(m.operationKinds, k)
		}
	}

	return m
}

// MutateRandom mutates program in place: it draws num_mutations uniformly
// from [1, len(ops)*rate+1] and at each draw either inserts a fresh
// `mov $0,0` or picks an op already present, then rewrites that op via
// mutateOperation.
func (m *Mutator) MutateRandom(program *lang.Program) {
	numCells := putil.GetLargestDirectMemoryCell(*program) + 1

	span := int64(float64(program.Len())*m.MutationRate) + 1
	numMutations := m.rng.Int63n(span) + 1

	for ; numMutations > 0; numMutations-- {
		var pos int

		if program.Len() == 0 || m.rng.Intn(2) == 0 {
			pos = m.rng.Intn(maxInt(program.Len(), 1))
			program.Insert(pos, lang.NewOperation(lang.MOV, lang.NewDirect(number.Zero), lang.NewConstant(number.Zero)))
		} else {
			pos = m.randomPos(*program)
		}

		m.mutateOperation(&program.Ops[pos], numCells)
	}
}

// randomPos draws a uniformly random operation index, nudged off an LPB
// (forward) or LPE (backward) so a mutation never lands directly on a loop
// boundary marker.
func (m *Mutator) randomPos(program lang.Program) int {
	pos := m.rng.Intn(program.Len())

	if program.Ops[pos].Kind == lang.LPB && pos+1 < program.Len() {
		pos++
	}

	if program.Ops[pos].Kind == lang.LPE && pos > 0 {
		pos--
	}

	return pos
}

// mutateOperation rewrites op in place: an arithmetic op or a MOV gets a
// fresh arithmetic kind, target and (usually constant) source, normalized
// through AvoidNopOrOverflow; a SEQ op draws a fresh program id.
func (m *Mutator) mutateOperation(op *lang.Operation, numCells int64) {
	switch {
	case op.Kind.IsArithmetic() || op.Kind == lang.MOV:
		op.Kind = m.operationKinds[m.rng.Intn(len(m.operationKinds))]

		if m.rng.Intn(3) != 0 {
			op.Source = lang.NewConstant(number.FromInt64(constantsStart + m.rng.Int63n(constantsEnd-constantsStart+1)))
		} else {
			op.Source = lang.NewDirect(number.FromInt64(m.rng.Int63n(numCells)))
		}

		op.Target = lang.NewDirect(number.FromInt64(m.rng.Int63n(numCells)))

		putil.AvoidNopOrOverflow(op)
	case op.Kind == lang.SEQ && len(m.ProgramIDs) > 0:
		op.Source = lang.NewConstant(number.FromInt64(int64(m.ProgramIDs[m.rng.Intn(len(m.ProgramIDs))])))
	}
}

// MutateConstants pushes, for each op with a CONSTANT source, up to
// numResults/len(indices) nearby variants (source value perturbed by small
// deltas centered on the original) onto out. Multi-word constants are
// skipped, matching the original's single-machine-word guard.
func (m *Mutator) MutateConstants(program lang.Program, numResults int, out *stack.Stack[lang.Program]) {
	var indices []int

	for i, op := range program.Ops {
		if lang.MetadataOf(op.Kind).NumOperands == 2 && op.Source.Type == lang.CONSTANT {
			indices = append(indices, i)
		}
	}

	if len(indices) == 0 {
		return
	}

	variance := int64(numResults) / int64(len(indices))
	if variance < 1 {
		variance = 1
	}

	for _, i := range indices {
		b := program.Ops[i].Source.Value.Int64()

		half := variance / 2
		if half > b {
			half = b
		}

		start := b - half

		for v := start; v <= start+variance; v++ {
			if v == b || v < 0 {
				continue
			}

			p := program.Clone()
			p.Ops[i].Source = lang.NewConstant(number.FromInt64(v))
			out.Push(p)
		}
	}
}

// MutateCopies pushes numResults/2 constant-perturbation variants followed
// by numResults/2 mutateRandom variants onto out.
func (m *Mutator) MutateCopies(program lang.Program, numResults int, out *stack.Stack[lang.Program]) {
	half := numResults / 2

	m.MutateConstants(program, half, out)

	for i := 0; i < half; i++ {
		p := program.Clone()
		m.MutateRandom(&p)
		out.Push(p)
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}

	return b
}
