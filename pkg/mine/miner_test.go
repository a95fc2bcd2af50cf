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
	"testing"
	"time"

	"github.com/loda-lang/loda-go/pkg/generate"
	"github.com/loda-lang/loda-go/pkg/interp"
	"github.com/loda-lang/loda-go/pkg/lang"
	"github.com/loda-lang/loda-go/pkg/lang/parser"
	"github.com/loda-lang/loda-go/pkg/number"
	"github.com/loda-lang/loda-go/pkg/store"
)

func n(v int64) number.Number { return number.FromInt64(v) }

// triangularSrc computes T(n) = n(n+1)/2, the same fixture pkg/interp's
// tests use, so a program the miner draws is guaranteed to exist here even
// though generate.Generator itself draws at random.
const triangularSrc = `mov $1,0
lpb $0,1
  add $1,$0
  sub $0,1
lpe
mov $0,$1
`

func triangular(t *testing.T) lang.Program {
	t.Helper()

	prog, err := parser.Parse("tri.asm", []byte(triangularSrc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	return prog
}

// Test_Miner_ReportsAKnownMatch checks the triangular-numbers program
// against a catalog seeded with the correct terms, and confirms the miner
// reports exactly one Candidate with CheckResult OK, then reweights the
// originating config of a single-config MultiGenerator.
func Test_Miner_ReportsAKnownMatch(t *testing.T) {
	prog := triangular(t)

	// A generator whose stateless fill happens to reproduce prog on the
	// first draw is impractical to construct deterministically, so this
	// test drives checkCandidate directly instead of through Generator.Next,
	// exercising exactly the matching/reporting/reweighting logic Run calls.
	cfg := &generate.Config{Length: 6, Replicas: 1}
	gen := generate.NewMultiGenerator([]*generate.Config{cfg}, 1)

	catalog := store.NewMapSequenceCatalog()
	catalog.Put(1, lang.Sequence{n(0), n(1), n(3), n(6), n(10)}, 5, "A000217")

	var reported []Candidate
	sink := func(c Candidate) { reported = append(reported, c) }

	m := NewMiner(gen, interp.New(nil, interp.Options{}), store.NewMapProgramStore(), catalog, nil, sink)

	m.checkCandidate(prog, 0, 1)

	if len(reported) != 1 {
		t.Fatalf("got %d candidates, want 1", len(reported))
	}

	if reported[0].Result != interp.OK {
		t.Errorf("result = %v, want OK", reported[0].Result)
	}

	if reported[0].SequenceID != 1 {
		t.Errorf("sequence id = %d, want 1", reported[0].SequenceID)
	}

	if cfg.Replicas != 2 {
		t.Errorf("replicas after fresh match = %d, want 2 (doubled)", cfg.Replicas)
	}

	// A second match against the same id is no longer "fresh": Replicas
	// should increment rather than double.
	m.checkCandidate(prog, 0, 1)

	if cfg.Replicas != 3 {
		t.Errorf("replicas after repeat match = %d, want 3", cfg.Replicas)
	}
}

// Test_Miner_SkipsDivergingCandidate confirms an ERROR-level mismatch never
// reaches the sink.
func Test_Miner_SkipsDivergingCandidate(t *testing.T) {
	prog := triangular(t)

	cfg := &generate.Config{Length: 6, Replicas: 1}
	gen := generate.NewMultiGenerator([]*generate.Config{cfg}, 2)

	catalog := store.NewMapSequenceCatalog()
	catalog.Put(2, lang.Sequence{n(0), n(1), n(999)}, 3, "not-triangular")

	called := false
	sink := func(Candidate) { called = true }

	m := NewMiner(gen, interp.New(nil, interp.Options{}), store.NewMapProgramStore(), catalog, nil, sink)
	m.checkCandidate(prog, 0, 2)

	if called {
		t.Error("sink called for a candidate that diverged within the required prefix")
	}
}

// Test_Miner_Run_StopsOnHalt confirms the outer loop exits promptly once
// RequestHalt is observed, without requiring a real match to occur.
func Test_Miner_Run_StopsOnHalt(t *testing.T) {
	ResetHalt()
	defer ResetHalt()

	cfg := &generate.Config{Length: 4, Replicas: 1}
	gen := generate.NewMultiGenerator([]*generate.Config{cfg}, 3)

	m := NewMiner(gen, interp.New(nil, interp.Options{}), store.NewMapProgramStore(), store.NewMapSequenceCatalog(), func(lang.Sequence) []uint64 {
		RequestHalt()
		return nil
	}, nil)

	done := make(chan struct{})
	go func() {
		m.Run()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after RequestHalt")
	}
}
