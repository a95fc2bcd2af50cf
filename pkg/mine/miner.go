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
package mine

import (
	log "github.com/sirupsen/logrus"

	"github.com/loda-lang/loda-go/pkg/generate"
	"github.com/loda-lang/loda-go/pkg/interp"
	"github.com/loda-lang/loda-go/pkg/lang"
	"github.com/loda-lang/loda-go/pkg/store"
	"github.com/loda-lang/loda-go/pkg/util"
)

// Candidate pairs a generated program with the sequence id it was checked
// against and the outcome of that check.
type Candidate struct {
	Program    lang.Program
	SequenceID uint64
	Result     interp.CheckResult
}

// Matcher proposes sequence ids worth checking a freshly evaluated term
// sequence against, typically backed by a cheap fingerprint index over a
// SequenceCatalog. Building that index is out of the miner's scope: the
// Matcher is supplied by the caller so the loop below stays a pure driver.
type Matcher func(terms lang.Sequence) []uint64

// Sink receives every Candidate the miner reports, regardless of
// CheckResult; it is up to the sink to decide what, if anything, to persist.
type Sink func(Candidate)

// Miner drives the search loop described by the package doc: draw, evaluate,
// match, check, report, reweight, checkpoint.
type Miner struct {
	Generator *generate.MultiGenerator
	Interp    *interp.Interpreter
	Programs  store.ProgramStore
	Sequences store.SequenceCatalog
	Match     Matcher
	Sink      Sink

	Scheduler *AdaptiveScheduler
	Progress  *ProgressMonitor

	// Status reports periodic progress to the operator; nil disables it.
	Status *StatusLine

	// EvalTerms bounds how many terms Run computes for a program the
	// IncrementalEvaluator can't handle.
	EvalTerms int

	// CheckpointEvery is how many scheduler-approved checks pass between
	// progress-file writes; zero writes on every approved check.
	CheckpointEvery int

	reported        map[uint64]bool
	checksPassed    int
	candidatesTried uint64
	matchesFound    uint64
	perf            *util.PerfStats
}

// NewMiner constructs a Miner from its collaborators. Scheduler and Progress
// may be nil, in which case Run never pauses to persist progress.
func NewMiner(gen *generate.MultiGenerator, in *interp.Interpreter, programs store.ProgramStore, sequences store.SequenceCatalog, match Matcher, sink Sink) *Miner {
	return &Miner{
		Generator: gen,
		Interp:    in,
		Programs:  programs,
		Sequences: sequences,
		Match:     match,
		Sink:      sink,
		EvalTerms: 40,
		reported:  make(map[uint64]bool),
	}
}

// evaluate computes program's leading terms, preferring the amortized
// IncrementalEvaluator and falling back to the plain Interpreter when the
// program's shape doesn't qualify.
func (m *Miner) evaluate(program lang.Program) (lang.Sequence, error) {
	inc := interp.NewIncrementalEvaluator(m.Interp)

	if inc.Init(program) {
		seq := make(lang.Sequence, m.EvalTerms)

		for i := range seq {
			v, _, err := inc.Next()
			if err != nil {
				return nil, err
			}

			seq[i] = v
		}

		return seq, nil
	}

	return interp.Eval(m.Interp, program, m.EvalTerms)
}

// Run executes the outer mining loop until HaltRequested reports true or,
// with a Scheduler and a Progress monitor set, the Progress target is
// reached. It never returns an error itself: per-candidate evaluation failures are
// logged and skipped, matching the source's tolerance for individual
// generated programs misbehaving.
func (m *Miner) Run() {
	m.perf = util.NewPerfStats()

	defer func() {
		m.perf.Log("mine")

		if m.Status != nil {
			m.Status.Done()
		}
	}()

	for !HaltRequested() {
		if m.Scheduler != nil && m.Scheduler.IsTargetReached() {
			m.checkpoint()

			if m.Progress != nil && m.Progress.IsTargetReached() {
				return
			}
		}

		program, idx := m.Generator.Next()
		m.candidatesTried++

		terms, err := m.evaluate(program)
		if err != nil {
			log.Debugf("mine: evaluation failed: %v", err)
			continue
		}

		if m.Match == nil {
			continue
		}

		for _, id := range m.Match(terms) {
			m.checkCandidate(program, idx, id)
		}
	}
}

// checkCandidate verifies program against sequence id's known terms and, on
// a match, reports it to the sink and reweights the config it came from.
func (m *Miner) checkCandidate(program lang.Program, configIdx int, id uint64) {
	expected, ok := m.Sequences.Terms(id)
	if !ok {
		return
	}

	result, err := interp.Check(m.Interp, program, expected, m.Sequences.RequiredFirstN(id), id)
	if err != nil {
		log.Debugf("mine: check a%d failed: %v", id, err)
		return
	}

	if result == interp.ERROR {
		return
	}

	fresh := !m.reported[id]
	m.reported[id] = true
	m.matchesFound++

	log.Infof("mine: candidate for A%d (%s): %s", id, m.Sequences.Identifier(id), result)

	if m.Sink != nil {
		m.Sink(Candidate{Program: program.Clone(), SequenceID: id, Result: result})
	}

	m.Generator.OnMatch(configIdx, fresh)
}

// checkpoint persists progress and increments the internal check counter,
// honoring CheckpointEvery.
func (m *Miner) checkpoint() {
	if m.Status != nil {
		progress := 0.0

		if m.Progress != nil {
			progress = m.Progress.GetProgress()
		}

		m.Status.Update(m.candidatesTried, m.matchesFound, progress)
	}

	if m.Progress == nil {
		return
	}

	m.checksPassed++

	if m.CheckpointEvery > 0 && m.checksPassed%m.CheckpointEvery != 0 {
		return
	}

	if err := m.Progress.WriteProgress(); err != nil {
		log.Warnf("mine: writing progress: %v", err)
	}
}
