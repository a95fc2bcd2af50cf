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
package number

import "testing"

func n(v int64) Number { return FromInt64(v) }

func Test_Add_Inf(t *testing.T) {
	if !Add(Inf, n(7)).IsInf() {
		t.Errorf("add(inf,7) should be inf")
	}

	if !Add(n(7), Inf).IsInf() {
		t.Errorf("add(7,inf) should be inf")
	}
}

func Test_Sub_Saturates(t *testing.T) {
	if got := Sub(n(3), n(10)); !got.Equal(Zero) {
		t.Errorf("sub(3,10) = %s, want 0", got)
	}

	if got := Sub(n(10), n(3)); !got.Equal(n(7)) {
		t.Errorf("sub(10,3) = %s, want 7", got)
	}
}

func Test_Sub_Inf(t *testing.T) {
	if !Sub(Inf, n(1)).IsInf() {
		t.Errorf("sub(inf,1) should be inf")
	}

	if !Sub(n(1), Inf).IsInf() {
		t.Errorf("sub(1,inf) should be inf")
	}
}

func Test_DivByZero(t *testing.T) {
	if !Div(n(5), Zero).IsInf() {
		t.Errorf("div(5,0) should be inf")
	}
}

func Test_ModByZero(t *testing.T) {
	if !Mod(n(5), Zero).IsInf() {
		t.Errorf("mod(5,0) should be inf")
	}
}

func Test_DivExact(t *testing.T) {
	tests := []struct{ a, b, want int64 }{
		{10, 5, 2},
		{10, 3, 10}, // not divisible: unchanged
		{0, 5, 0},
	}

	for _, tc := range tests {
		if got := DivExact(n(tc.a), n(tc.b)); !got.Equal(n(tc.want)) {
			t.Errorf("dif(%d,%d) = %s, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func Test_Pow(t *testing.T) {
	tests := []struct{ base, exp, want int64 }{
		{0, 0, 1},
		{0, 5, 0},
		{1, 100, 1},
		{2, 10, 1024},
		{3, 4, 81},
	}

	for _, tc := range tests {
		if got := Pow(n(tc.base), n(tc.exp)); !got.Equal(n(tc.want)) {
			t.Errorf("pow(%d,%d) = %s, want %d", tc.base, tc.exp, got, tc.want)
		}
	}
}

func Test_Pow_SaturatesWithinBoundedTime(t *testing.T) {
	if !Pow(n(2), n(1000000)).IsInf() {
		t.Errorf("pow(2,1000000) should saturate to inf")
	}
}

func Test_Fac(t *testing.T) {
	tests := []struct{ a, want int64 }{
		{0, 1},
		{1, 1},
		{5, 120},
		{10, 3628800},
	}

	for _, tc := range tests {
		if got := Fac(n(tc.a)); !got.Equal(n(tc.want)) {
			t.Errorf("fac(%d) = %s, want %d", tc.a, got, tc.want)
		}
	}
}

func Test_Gcd(t *testing.T) {
	tests := []struct{ a, b, want int64 }{
		{12, 18, 6},
		{0, 5, 5},
		{7, 13, 1},
	}

	for _, tc := range tests {
		if got := Gcd(n(tc.a), n(tc.b)); !got.Equal(n(tc.want)) {
			t.Errorf("gcd(%d,%d) = %s, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func Test_Bin(t *testing.T) {
	tests := []struct{ nn, k, want int64 }{
		{5, 2, 10},
		{5, 0, 1},
		{5, 5, 1},
		{2, 5, 0}, // k>n
	}

	for _, tc := range tests {
		if got := Bin(n(tc.nn), n(tc.k)); !got.Equal(n(tc.want)) {
			t.Errorf("bin(%d,%d) = %s, want %d", tc.nn, tc.k, got, tc.want)
		}
	}
}

func Test_Cmp01(t *testing.T) {
	if !Cmp01(n(4), n(4)).Equal(One) {
		t.Errorf("cmp(4,4) should be 1")
	}

	if !Cmp01(n(4), n(5)).Equal(Zero) {
		t.Errorf("cmp(4,5) should be 0")
	}
}

func Test_MinMax_InfAbsorption(t *testing.T) {
	if !Min(Inf, n(3)).Equal(n(3)) {
		t.Errorf("min(inf,3) should be 3")
	}

	if !Max(Inf, n(3)).IsInf() {
		t.Errorf("max(inf,3) should be inf")
	}
}

// Test_InfAbsorption_AllBinaryOps is the universal INF-absorption property
// from the testable properties: for every finite x, f(Inf,x)==Inf and
// f(x,Inf)==Inf for every binary semantics function.
func Test_InfAbsorption_AllBinaryOps(t *testing.T) {
	x := n(42)
	ops := map[string]func(a, b Number) Number{
		"add": Add, "sub": Sub, "mul": Mul, "div": Div,
		"mod": Mod, "pow": Pow, "gcd": Gcd, "bin": Bin, "cmp": Cmp01,
	}

	for name, f := range ops {
		if !f(Inf, x).IsInf() {
			t.Errorf("%s(inf,x) should be inf", name)
		}

		if !f(x, Inf).IsInf() {
			t.Errorf("%s(x,inf) should be inf", name)
		}
	}
}
