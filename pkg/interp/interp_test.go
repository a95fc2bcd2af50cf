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
	"testing"

	"github.com/loda-lang/loda-go/pkg/lang"
	"github.com/loda-lang/loda-go/pkg/lang/parser"
	"github.com/loda-lang/loda-go/pkg/number"
	"github.com/loda-lang/loda-go/pkg/store"
)

func n(v int64) number.Number { return number.FromInt64(v) }

func memWithInput(v int64) *lang.Memory {
	mem := lang.NewMemory()
	mem.Set(number.FromInt64(lang.InputCell), n(v))

	return mem
}

// triangular sums 0..n, i.e. T(n) = n(n+1)/2.
const triangularSrc = `mov $1,0
lpb $0,1
  add $1,$0
  sub $0,1
lpe
mov $0,$1
`

func Test_Run_Triangular(t *testing.T) {
	prog, err := parser.Parse("tri.asm", []byte(triangularSrc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	in := New(nil, Options{})

	want := []int64{0, 1, 3, 6, 10, 15}

	for i, w := range want {
		mem := memWithInput(int64(i))

		if _, err := in.Run(prog, mem); err != nil {
			t.Fatalf("run a(%d): %v", i, err)
		}

		got := mem.Get(n(0))
		if !got.Equal(n(w)) {
			t.Errorf("a(%d) = %s, want %d", i, got, w)
		}
	}
}

func Test_Eval_Triangular(t *testing.T) {
	prog, err := parser.Parse("tri.asm", []byte(triangularSrc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	in := New(nil, Options{})

	seq, err := Eval(in, prog, 6)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}

	want := []int64{0, 1, 3, 6, 10, 15}
	for i, w := range want {
		if !seq[i].Equal(n(w)) {
			t.Errorf("seq[%d] = %s, want %d", i, seq[i], w)
		}
	}
}

func Test_Check_Outcomes(t *testing.T) {
	prog, err := parser.Parse("tri.asm", []byte(triangularSrc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	in := New(nil, Options{})

	ok := lang.Sequence{n(0), n(1), n(3), n(6)}
	if r, err := Check(in, prog, ok, 4, 1); err != nil || r != OK {
		t.Errorf("Check(exact match) = %v, %v; want OK", r, err)
	}

	warn := lang.Sequence{n(0), n(1), n(3), n(999)}
	if r, err := Check(in, prog, warn, 3, 1); err != nil || r != WARNING {
		t.Errorf("Check(late divergence) = %v, %v; want WARNING", r, err)
	}

	fail := lang.Sequence{n(0), n(1), n(999)}
	if r, err := Check(in, prog, fail, 3, 1); err != nil || r != ERROR {
		t.Errorf("Check(early divergence) = %v, %v; want ERROR", r, err)
	}
}

func Test_DivByZero_Saturates(t *testing.T) {
	prog, err := parser.Parse("d.asm", []byte("div $0,0\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	in := New(nil, Options{})
	mem := memWithInput(5)

	if _, err := in.Run(prog, mem); err != nil {
		t.Fatalf("run: %v", err)
	}

	if !mem.Get(n(0)).IsInf() {
		t.Error("div by zero should saturate to inf")
	}
}

func Test_MaxSteps_Aborts(t *testing.T) {
	src := `lpb $0,1
  sub $0,1
lpe
`
	prog, err := parser.Parse("loop.asm", []byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	in := New(nil, Options{MaxSteps: 10})
	mem := memWithInput(1000000)

	if _, err := in.Run(prog, mem); err != ErrStepsExceeded {
		t.Errorf("expected ErrStepsExceeded, got %v", err)
	}
}

func Test_Seq_DirectSelfReference_ReturnsCycleError(t *testing.T) {
	prog, err := parser.Parse("a5.asm", []byte("seq $0,5\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	programs := store.NewMapProgramStore()
	programs.Put(5, prog)

	in := New(programs, Options{})
	mem := memWithInput(3)

	if _, err := in.Run(prog, mem); err != ErrRecursionCycle {
		t.Errorf("expected ErrRecursionCycle, got %v", err)
	}
}

func Test_Seq_MutualCycle_ReturnsCycleError(t *testing.T) {
	progA, err := parser.Parse("a1.asm", []byte("seq $0,2\n"))
	if err != nil {
		t.Fatalf("parse a1: %v", err)
	}

	progB, err := parser.Parse("a2.asm", []byte("seq $0,1\n"))
	if err != nil {
		t.Fatalf("parse a2: %v", err)
	}

	programs := store.NewMapProgramStore()
	programs.Put(1, progA)
	programs.Put(2, progB)

	in := New(programs, Options{})
	mem := memWithInput(3)

	if _, err := in.Run(progA, mem); err != ErrRecursionCycle {
		t.Errorf("expected ErrRecursionCycle, got %v", err)
	}
}

func Test_Seq_RepeatedNonRecursiveCall_Succeeds(t *testing.T) {
	inc, err := parser.Parse("a1.asm", []byte("add $0,1\n"))
	if err != nil {
		t.Fatalf("parse a1: %v", err)
	}

	prog, err := parser.Parse("caller.asm", []byte("seq $0,1\nseq $0,1\n"))
	if err != nil {
		t.Fatalf("parse caller: %v", err)
	}

	programs := store.NewMapProgramStore()
	programs.Put(1, inc)

	in := New(programs, Options{})
	mem := memWithInput(3)

	if _, err := in.Run(prog, mem); err != nil {
		t.Fatalf("run: %v", err)
	}

	if !mem.Get(n(0)).Equal(n(5)) {
		t.Errorf("result = %s, want 5", mem.Get(n(0)))
	}
}

func Test_MaxCells_CountsDistinctCells_NotBitsetCapacity(t *testing.T) {
	prog, err := parser.Parse("touch1.asm", []byte("mov $0,7\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	in := New(nil, Options{MaxCells: 10})
	mem := memWithInput(0)

	if _, err := in.Run(prog, mem); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func Test_MaxCells_Aborts_WhenDistinctCellsExceedLimit(t *testing.T) {
	src := `mov $1,1
mov $2,1
mov $3,1
`
	prog, err := parser.Parse("touch3.asm", []byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	in := New(nil, Options{MaxCells: 2})
	mem := memWithInput(0)

	if _, err := in.Run(prog, mem); err != ErrMemoryExceeded {
		t.Errorf("expected ErrMemoryExceeded, got %v", err)
	}
}

// fibonacciSrc computes a(n) = fib(n) via the classic two-accumulator
// idiom: $1 holds fib(i), $3 holds fib(i+1), advanced once per loop pass.
const fibonacciSrc = `mov $1,0
mov $3,1
lpb $0,1
  mov $2,$1
  add $2,$3
  mov $1,$3
  mov $3,$2
  sub $0,1
lpe
mov $0,$1
`

func Test_Run_Fibonacci(t *testing.T) {
	prog, err := parser.Parse("fib.asm", []byte(fibonacciSrc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	in := New(nil, Options{})

	want := []int64{0, 1, 1, 2, 3, 5, 8, 13, 21, 34, 55, 89, 144, 233}

	for i, w := range want {
		mem := memWithInput(int64(i))

		if _, err := in.Run(prog, mem); err != nil {
			t.Fatalf("run fib(%d): %v", i, err)
		}

		if got := mem.Get(n(0)); !got.Equal(n(w)) {
			t.Errorf("fib(%d) = %s, want %d", i, got, w)
		}
	}
}

// collatzSrc computes the Collatz stopping time of $0+1: the branch on
// parity is expressed arithmetically (no conditional jump exists) by
// blending the even and odd successors through 0/1 selector cells, and a
// "done" latch (once the value reaches 1) freezes both the value and the
// step counter for the remainder of a fixed-budget loop.
const collatzSrc = `mov $1,$0
add $1,1
mov $15,150
lpb $15,1
  mov $3,$1
  mod $3,2
  mov $4,1
  sub $4,$3
  mov $5,$1
  div $5,2
  mov $6,$1
  mul $6,3
  add $6,1
  mov $7,$5
  mul $7,$4
  mov $8,$6
  mul $8,$3
  mov $9,$7
  add $9,$8
  mov $10,$1
  cmp $10,1
  mov $11,1
  sub $11,$10
  mov $12,$9
  mul $12,$11
  mov $13,$1
  mul $13,$10
  mov $14,$12
  add $14,$13
  mov $1,$14
  add $2,$11
  sub $15,1
lpe
mov $0,$2
`

func Test_Run_CollatzStoppingTime(t *testing.T) {
	prog, err := parser.Parse("collatz.asm", []byte(collatzSrc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	in := New(nil, Options{})

	want := []int64{
		0, 1, 7, 2, 5, 8, 16, 3, 19, 6, 14, 9, 9, 17, 17, 4, 12, 20, 20, 7,
		7, 15, 15, 10, 23, 10, 111, 18, 18, 18, 106, 5, 26, 13, 13, 21, 21,
		21, 34, 8, 109, 8, 29, 16, 16, 16, 104, 11, 24, 24, 24, 11, 11, 112,
		112, 19, 32, 19, 32, 19, 19, 107, 107, 6, 27, 27, 27, 14, 14, 14,
		102, 22,
	}

	for i, w := range want {
		mem := memWithInput(int64(i))

		if _, err := in.Run(prog, mem); err != nil {
			t.Fatalf("run collatz(%d): %v", i, err)
		}

		if got := mem.Get(n(0)); !got.Equal(n(w)) {
			t.Errorf("collatz(%d) = %s, want %d", i, got, w)
		}
	}
}

// ackermannRows chains five programs by id, each computing row m of the
// two-argument Ackermann function as A(m,n) = f^(n+1)(1), where f is a SEQ
// call into row m-1: A(m,0) = A(m-1,1) and A(m,n) = A(m-1, A(m,n-1)) unroll
// into exactly n+1 applications of row m-1 starting from the seed value 1.
// Row 0 is the base case A(0,n) = n+1.  This walks the SEQ call graph
// (distinct ids, never a program calling itself) rather than growing an
// unbounded self-recursive stack.
func ackermannRows(prevID uint64) string {
	return fmt.Sprintf(`mov $1,1
mov $2,$0
add $2,1
lpb $2,1
  seq $1,%d
  sub $2,1
lpe
mov $0,$1
`, prevID)
}

func Test_Run_Ackermann(t *testing.T) {
	const row0ID, row1ID, row2ID, row3ID, row4ID = 400, 401, 402, 403, 404

	sources := map[uint64]string{
		row0ID: "add $0,1\n",
		row1ID: ackermannRows(row0ID),
		row2ID: ackermannRows(row1ID),
		row3ID: ackermannRows(row2ID),
		row4ID: ackermannRows(row3ID),
	}

	programs := store.NewMapProgramStore()
	parsed := make(map[uint64]lang.Program, len(sources))

	for id, src := range sources {
		prog, err := parser.Parse("ack.asm", []byte(src))
		if err != nil {
			t.Fatalf("parse row %d: %v", id, err)
		}

		programs.Put(id, prog)
		parsed[id] = prog
	}

	in := New(programs, Options{})

	ack := func(row uint64, arg int64) int64 {
		mem := memWithInput(arg)

		if _, err := in.Run(parsed[row], mem); err != nil {
			t.Fatalf("run row %d(%d): %v", row, arg, err)
		}

		return mem.Get(n(0)).Int64()
	}

	for j := int64(0); j <= 4; j++ {
		if got, want := ack(row0ID, j), j+1; got != want {
			t.Errorf("ack(0,%d) = %d, want %d", j, got, want)
		}
	}

	rowWant := map[uint64][]int64{
		row1ID: {2, 3, 4, 5, 6},
		row2ID: {3, 5, 7, 9, 11},
		row3ID: {5, 13, 29, 61, 125},
	}

	for _, row := range []uint64{row1ID, row2ID, row3ID} {
		for i, want := range rowWant[row] {
			if got := ack(row, int64(i)); got != want {
				t.Errorf("ack(row %d,%d) = %d, want %d", row, i, got, want)
			}
		}
	}

	if got, want := ack(row4ID, 1), int64(65533); got != want {
		t.Errorf("ack(4,1) = %d, want %d", got, want)
	}
}

func Test_Run_TwoCellLoopCounter(t *testing.T) {
	// lpb $1,2 reads a two-cell counter ($1,$2); the loop keeps going only
	// while BOTH components have strictly decreased and stayed positive,
	// so it stops as soon as the smaller of the two hits zero.
	src := `mov $3,0
lpb $1,2
  add $3,1
  sub $1,1
  sub $2,1
lpe
mov $0,$3
`
	prog, err := parser.Parse("twocell.asm", []byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	in := New(nil, Options{})
	mem := lang.NewMemory()
	mem.Set(n(1), n(5))
	mem.Set(n(2), n(3))

	if _, err := in.Run(prog, mem); err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := mem.Get(n(0)); !got.Equal(n(3)) {
		t.Errorf("iterations = %s, want 3", got)
	}
}

func Test_Run_SkipsLoopWhenCounterZero(t *testing.T) {
	prog, err := parser.Parse("z.asm", []byte(triangularSrc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	in := New(nil, Options{})
	mem := memWithInput(0)

	if _, err := in.Run(prog, mem); err != nil {
		t.Fatalf("run: %v", err)
	}

	if !mem.Get(n(0)).Equal(n(0)) {
		t.Errorf("T(0) = %s, want 0", mem.Get(n(0)))
	}
}
