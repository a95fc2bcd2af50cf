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
package parser

import (
	"strings"
	"testing"

	"github.com/loda-lang/loda-go/pkg/lang"
	"github.com/loda-lang/loda-go/pkg/number"
)

func one(v int64) number.Number { return number.FromInt64(v) }

func Test_Parse_Fibonacci(t *testing.T) {
	src := `; Fibonacci numbers
mov $1,1
lpb $0,1
  mov $2,$1
  add $1,$3
  mov $3,$2
  sub $0,1
lpe
mov $0,$3
`
	p, err := Parse("fib.asm", []byte(src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if p.Len() != 9 {
		t.Fatalf("got %d ops, want 9", p.Len())
	}

	if p.Ops[0].Kind != lang.NOP || p.Ops[0].Comment != "Fibonacci numbers" {
		t.Errorf("ops[0] = %+v, want leading comment NOP", p.Ops[0])
	}

	if p.Ops[1].Kind != lang.MOV || !p.Ops[1].Target.Equal(lang.NewDirect(one(1))) {
		t.Errorf("ops[1] = %+v, want mov $1,1", p.Ops[1])
	}

	if p.Ops[2].Kind != lang.LPB {
		t.Errorf("ops[2].Kind = %v, want LPB", p.Ops[2].Kind)
	}

	if p.Ops[len(p.Ops)-2].Kind != lang.LPE {
		t.Errorf("second-to-last op should be LPE, got %v", p.Ops[len(p.Ops)-2].Kind)
	}
}

func Test_Parse_Operands(t *testing.T) {
	p, err := Parse("ops.asm", []byte("mov $$2,$3\n"))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	op := p.Ops[0]
	if op.Target.Type != lang.INDIRECT {
		t.Errorf("target type = %v, want INDIRECT", op.Target.Type)
	}

	if op.Source.Type != lang.DIRECT {
		t.Errorf("source type = %v, want DIRECT", op.Source.Type)
	}
}

func Test_Parse_TrailingComment(t *testing.T) {
	p, err := Parse("c.asm", []byte("add $0,$1 ; running total\n"))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if p.Ops[0].Comment != "running total" {
		t.Errorf("comment = %q, want %q", p.Ops[0].Comment, "running total")
	}
}

func Test_Parse_UnknownMnemonic(t *testing.T) {
	if _, err := Parse("bad.asm", []byte("frobnicate $0,1\n")); err == nil {
		t.Fatal("expected error for unknown mnemonic")
	}
}

func Test_Parse_MissingSeparator(t *testing.T) {
	if _, err := Parse("bad.asm", []byte("mov $0 $1\n")); err == nil {
		t.Fatal("expected error for missing comma")
	}
}

func Test_RoundTrip(t *testing.T) {
	src := "mov $1,1\nlpb $0,1\n  mov $2,$1\n  sub $0,1\nlpe\nmov $0,$2\n"

	p, err := Parse("rt.asm", []byte(src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	out := Print(p)
	if out != src {
		t.Errorf("round trip mismatch:\ngot:\n%s\nwant:\n%s", out, src)
	}
}

func Test_Print_NestedLoops(t *testing.T) {
	prog := lang.NewProgram([]lang.Operation{
		lang.NewOperation(lang.LPB, lang.NewDirect(one(0)), lang.NewConstant(one(1))),
		lang.NewOperation(lang.LPB, lang.NewDirect(one(1)), lang.NewConstant(one(1))),
		lang.NewOperation(lang.SUB, lang.NewDirect(one(1)), lang.NewConstant(one(1))),
		lang.NewOperation(lang.LPE, lang.Operand{}, lang.Operand{}),
		lang.NewOperation(lang.LPE, lang.Operand{}, lang.Operand{}),
	})

	out := Print(prog)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	if !strings.HasPrefix(lines[2], indentUnit+indentUnit) {
		t.Errorf("innermost line not double-indented: %q", lines[2])
	}
}
