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
	"testing"

	"github.com/loda-lang/loda-go/pkg/lang/parser"
)

func Test_IncrementalEvaluator_MatchesFullInterpreter(t *testing.T) {
	prog, err := parser.Parse("tri.asm", []byte(triangularSrc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	full := New(nil, Options{})

	inc := NewIncrementalEvaluator(New(nil, Options{}))
	if !inc.Init(prog) {
		t.Fatal("expected incremental evaluator to recognize the triangular-sum shape")
	}

	for i := int64(0); i < 8; i++ {
		mem := memWithInput(i)
		if _, err := full.Run(prog, mem); err != nil {
			t.Fatalf("full run a(%d): %v", i, err)
		}

		want := mem.Get(n(0))

		got, _, err := inc.Next()
		if err != nil {
			t.Fatalf("incremental next a(%d): %v", i, err)
		}

		if !got.Equal(want) {
			t.Errorf("incremental a(%d) = %s, want %s", i, got, want)
		}
	}
}

func Test_IncrementalEvaluator_RejectsIndirectOperands(t *testing.T) {
	prog, err := parser.Parse("ind.asm", []byte("mov $$0,1\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	inc := NewIncrementalEvaluator(New(nil, Options{}))
	if inc.Init(prog) {
		t.Fatal("expected indirect operand to reject the canonical shape")
	}
}

func Test_IncrementalEvaluator_RejectsMultipleLoops(t *testing.T) {
	src := `lpb $0,1
sub $0,1
lpe
lpb $1,1
sub $1,1
lpe
`
	prog, err := parser.Parse("two.asm", []byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	inc := NewIncrementalEvaluator(New(nil, Options{}))
	if inc.Init(prog) {
		t.Fatal("expected a second top-level loop to reject the canonical shape")
	}
}
