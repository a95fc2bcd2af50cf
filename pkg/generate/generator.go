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
package generate

import (
	"math/rand"

	"github.com/loda-lang/loda-go/pkg/lang"
	"github.com/loda-lang/loda-go/pkg/number"
)

// Config controls a Generator's sampling strategy and structural bounds.
type Config struct {
	// Version selects the sampling strategy: 1 samples operation kinds
	// uniformly, 2 samples from OperationWeights (falling back to uniform
	// when it's empty, since it is ordinarily populated from an external
	// corpus statistics file this rewrite does not ship).
	Version int
	// Length is the target number of operations before repair passes run.
	Length int
	// MaxConstant bounds generated CONSTANT operand values.
	MaxConstant int64
	// MaxIndex bounds generated DIRECT/INDIRECT operand indices.
	MaxIndex int64
	// Loops enables emitting LPB/LPE.
	Loops bool
	// IndirectAccess enables emitting INDIRECT operands.
	IndirectAccess bool
	// ProgramTemplate, if non-empty, seeds every generated program as a
	// fixed prefix.
	ProgramTemplate lang.Program
	// OperationWeights maps a Kind to its relative sampling weight under
	// Version 2.
	OperationWeights map[lang.Kind]float64
	// Replicas is MultiGenerator's selection weight for this config; it
	// grows as this config produces catalog matches.
	Replicas int
}

// Generator produces randomized Programs under a Config, using a single
// seeded random source (spec DESIGN NOTES: "no process-wide default
// generator").
type Generator struct {
	Config Config

	rng   *rand.Rand
	kinds []lang.Kind
}

// New constructs a Generator seeded deterministically from seed.
func New(cfg Config, seed uint64) *Generator {
	g := &Generator{
		Config: cfg,
		rng:    rand.New(rand.NewSource(int64(seed))),
	}
	g.kinds = candidateKinds(cfg)

	return g
}

// candidateKinds returns the operation kinds this generator may draw:
// MOV, every arithmetic kind (per the metadata table, never hard-coded),
// and LPB when the config enables loops.
func candidateKinds(cfg Config) []lang.Kind {
	kinds := []lang.Kind{lang.MOV}

	for k := lang.ADD; k <= lang.MAX; k++ {
		if k.IsArithmetic() {
			kinds = append(kinds, k)
		}
	}

	if cfg.Loops {
		kinds = append(kinds, lang.LPB)
	}

	return kinds
}

// Generate draws one randomized program: a stateless fill followed by the
// causality, source-preservation, target-written and meaningful-loop
// repair passes.
func (g *Generator) Generate() lang.Program {
	p := g.Config.ProgramTemplate.Clone()

	g.generateStateless(&p, g.Config.Length)

	written := fixCausality(&p)
	ensureSourceNotOverwritten(&p)
	g.ensureTargetWritten(&p, written)
	g.ensureMeaningfulLoops(&p)

	return p
}

// generateStateless repeatedly draws (op, position) pairs and inserts op at
// floor(position*(len+1)), until the program reaches num_operations ops
// (NOP and bare LPE draws are absorbed as no-ops and don't count toward
// growth). A drawn LPB is paired with a freshly inserted LPE somewhere
// after it.
func (g *Generator) generateStateless(p *lang.Program, numOperations int) {
	nops := 0

	for p.Len()+nops < numOperations {
		op, position := g.generateOperation()

		if op.Kind == lang.NOP || op.Kind == lang.LPE {
			nops++
			continue
		}

		pos := int(position * float64(p.Len()+1))
		p.Insert(pos, op)

		if op.Kind == lang.LPB {
			lpePos := (pos+p.Len())/2 + 1
			p.Insert(lpePos, lang.NewOperation(lang.LPE, lang.Operand{}, lang.Operand{}))
		}
	}
}

// generateOperation draws one random operation and an insertion-position
// fraction in [0,1).
func (g *Generator) generateOperation() (lang.Operation, float64) {
	kind := g.sampleKind()
	meta := lang.MetadataOf(kind)

	op := lang.Operation{Kind: kind}

	if meta.NumOperands >= 1 {
		op.Target = g.randomOperand(false)
	}

	if meta.NumOperands >= 2 {
		if kind == lang.LPB {
			// canonical single-cell loop counter.
			op.Source = lang.NewConstant(number.One)
		} else {
			op.Source = g.randomOperand(true)
		}
	}

	return op, float64(g.rng.Intn(100)) / 100.0
}

// randomOperand draws a DIRECT (or occasionally INDIRECT, when enabled)
// operand in [0, MaxIndex], or, when allowConstant, a CONSTANT in
// [0, MaxConstant] about half the time.
func (g *Generator) randomOperand(allowConstant bool) lang.Operand {
	if allowConstant && g.rng.Intn(2) == 0 {
		return lang.NewConstant(number.FromInt64(g.rng.Int63n(g.Config.MaxConstant + 1)))
	}

	idx := number.FromInt64(g.rng.Int63n(g.Config.MaxIndex + 1))

	if g.Config.IndirectAccess && g.rng.Intn(4) == 0 {
		return lang.NewIndirect(idx)
	}

	return lang.NewDirect(idx)
}

// sampleKind draws an operation kind: uniformly for Version 1, or by
// OperationWeights for Version 2 (falling back to uniform if unset).
func (g *Generator) sampleKind() lang.Kind {
	if g.Config.Version == 2 && len(g.Config.OperationWeights) > 0 {
		return g.weightedKind()
	}

	return g.kinds[g.rng.Intn(len(g.kinds))]
}

func (g *Generator) weightedKind() lang.Kind {
	total := 0.0
	for _, k := range g.kinds {
		total += g.Config.OperationWeights[k]
	}

	if total <= 0 {
		return g.kinds[g.rng.Intn(len(g.kinds))]
	}

	r := g.rng.Float64() * total
	for _, k := range g.kinds {
		r -= g.Config.OperationWeights[k]
		if r <= 0 {
			return k
		}
	}

	return g.kinds[len(g.kinds)-1]
}

// fixCausality remaps DIRECT operands that reference a cell not yet
// written by any earlier op, so every read is causally reachable. Cell 0
// (the input cell) is always considered written. Returns the set of cells
// written by the repaired program, in write order.
func fixCausality(p *lang.Program) []int64 {
	written := []int64{0}

	contains := func(v int64) bool {
		for _, w := range written {
			if w == v {
				return true
			}
		}

		return false
	}

	for i := range p.Ops {
		op := &p.Ops[i]
		meta := lang.MetadataOf(op.Kind)

		if meta.NumOperands == 2 && op.Source.Type == lang.DIRECT && !contains(op.Source.Value.Int64()) {
			idx := op.Source.Value.Int64() % int64(len(written))
			op.Source.Value = number.FromInt64(written[idx])
		}

		if meta.NumOperands > 0 && meta.IsReadingTarget && op.Target.Type == lang.DIRECT && !contains(op.Target.Value.Int64()) {
			newCell := op.Target.Value.Int64() % int64(len(written))
			if newCell == op.Source.Value.Int64() {
				newCell = int64(len(written)) - newCell - 1
			}

			op.Target.Value = number.FromInt64(written[newCell])
		}

		if meta.IsWritingTarget && op.Target.Type == lang.DIRECT && !contains(op.Target.Value.Int64()) {
			written = append(written, op.Target.Value.Int64())
		}
	}

	return written
}

// ensureSourceNotOverwritten deletes a leading `mov $0,*` or a leading
// `sub $0,$0`/`trn $0,$0` (a non-constant source referring to cell 0) that
// would clobber the input cell before anything else reads it, stopping at
// the first genuine read of cell 0.
func ensureSourceNotOverwritten(p *lang.Program) {
	for i := 0; i < p.Len(); i++ {
		op := p.Ops[i]

		if op.Target.Value.Int64() == 0 {
			isMov := op.Kind == lang.MOV
			isSubZero := (op.Kind == lang.SUB || op.Kind == lang.TRN) &&
				op.Source.Type != lang.CONSTANT && op.Source.Value.Int64() == 0

			if isMov || isSubZero {
				p.RemoveAt(i)
			}
		} else if op.Source.Type != lang.CONSTANT && op.Source.Value.Int64() == 0 {
			break
		}
	}
}

// ensureTargetWritten appends `mov $1, $<written>` if nothing already
// writes cell 1 (the conventional output cell for two-operand, non-loop
// operations).
func (g *Generator) ensureTargetWritten(p *lang.Program, written []int64) {
	for _, op := range p.Ops {
		meta := lang.MetadataOf(op.Kind)
		if op.Kind != lang.LPB && meta.NumOperands == 2 && op.Target.Type == lang.DIRECT && op.Target.Value.Int64() == 1 {
			return
		}
	}

	var source int64
	if len(written) > 0 {
		source = written[g.rng.Intn(len(written))]
	}

	p.Push(lang.NewOperation(lang.MOV, lang.NewDirect(number.One), lang.NewDirect(number.FromInt64(source))))
}

// ensureMeaningfulLoops walks every loop body, inserting a small
// SUB/DIV/MOD of the counter cell before the LPE if nothing in the body
// already drives the counter down, and padding bodies with fewer than two
// substantial ops with one to three more random, non-loop operations.
func (g *Generator) ensureMeaningfulLoops(p *lang.Program) {
	var mem int64

	numOps := 0
	canDescend := false

	for i := 0; i < p.Len(); i++ {
		op := p.Ops[i]

		switch op.Kind {
		case lang.LPB:
			mem = op.Target.Value.Int64()
			canDescend = false
			numOps = 0
		case lang.ADD, lang.MUL, lang.POW, lang.FAC:
			numOps++
		case lang.SUB, lang.LOG, lang.MOV, lang.DIV, lang.MOD, lang.GCD, lang.BIN, lang.CMP:
			numOps++
			if op.Target.Value.Int64() == mem {
				canDescend = true
			}
		case lang.LPE:
			if !canDescend {
				c := int64(g.rng.Intn(4) + 1)
				dec := lang.Operation{Target: lang.NewDirect(number.FromInt64(mem))}

				switch g.rng.Intn(3) {
				case 0:
					dec.Kind = lang.SUB
					dec.Source = lang.NewConstant(number.FromInt64(c))
				case 1:
					dec.Kind = lang.DIV
					dec.Source = lang.NewConstant(number.FromInt64(c + 1))
				case 2:
					dec.Kind = lang.MOD
					dec.Source = lang.NewConstant(number.FromInt64(c + 1))
				}

				p.Insert(i, dec)
				i++
			}

			if numOps < 2 {
				for extra := g.rng.Intn(3) + 1; extra > 0; extra-- {
					filler, _ := g.generateOperation()
					if filler.Kind != lang.LPB && filler.Kind != lang.LPE {
						p.Insert(i, filler)
						i++
					}
				}
			}
		}
	}
}
