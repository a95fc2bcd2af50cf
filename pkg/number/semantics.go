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

import "math/big"

// Add returns a+b, or Inf if either operand is Inf or the sum overflows the
// configured bit limit.
func Add(a, b Number) Number {
	if a.inf || b.inf {
		return Inf
	}

	var r big.Int

	r.Add(&a.val, &b.val)

	return saturate(r)
}

// Sub returns max(0, a-b) (truncating subtraction), or Inf if either operand
// is Inf.  Truncating subtraction never overflows, so no saturation check is
// needed on the finite path.
func Sub(a, b Number) Number {
	if a.inf || b.inf {
		return Inf
	}

	if a.val.Cmp(&b.val) <= 0 {
		return Zero
	}

	var r big.Int

	r.Sub(&a.val, &b.val)

	return Number{val: r}
}

// Mul returns a*b, or Inf if either operand is Inf or the product overflows
// the configured bit limit.
func Mul(a, b Number) Number {
	if a.inf || b.inf {
		return Inf
	}

	var r big.Int

	r.Mul(&a.val, &b.val)

	return saturate(r)
}

// Div returns floor(a/b), or Inf if either operand is Inf or b is zero.
func Div(a, b Number) Number {
	if a.inf || b.inf || b.val.Sign() == 0 {
		return Inf
	}

	var r big.Int

	r.Div(&a.val, &b.val)

	return Number{val: r}
}

// DivExact returns a/b if b evenly divides a, else returns a unchanged (the
// "dividing only if divisible" semantics of the DIF operation).  Returns Inf
// if either operand is Inf; returns a if b is zero (division by zero is not
// a division at all here).
func DivExact(a, b Number) Number {
	if a.inf || b.inf {
		return Inf
	}

	if b.val.Sign() == 0 {
		return a
	}

	var q, m big.Int

	q.QuoRem(&a.val, &b.val, &m)

	if m.Sign() != 0 {
		return a
	}

	return Number{val: q}
}

// Mod returns a mod b, or Inf if either operand is Inf or b is zero.
func Mod(a, b Number) Number {
	if a.inf || b.inf || b.val.Sign() == 0 {
		return Inf
	}

	var r big.Int

	r.Mod(&a.val, &b.val)

	return Number{val: r}
}

// Pow returns base^exp via repeated squaring, saturating to Inf on overflow.
// 0^0 = 1; 0^e = 0 for e>0; 1^e = 1 for any e.
func Pow(base, exp Number) Number {
	if base.inf || exp.inf {
		return Inf
	}

	switch {
	case base.val.Sign() == 0:
		if exp.val.Sign() == 0 {
			return One
		}

		return Zero
	case base.val.Cmp(&One.val) == 0:
		return One
	case base.val.Sign() < 0:
		// unreachable: Number is always nonnegative
		return Inf
	}

	res := One
	b := base
	e := new(big.Int).Set(&exp.val)
	two := big.NewInt(2)
	rem := new(big.Int)

	for e.Sign() > 0 && !res.inf {
		rem.Mod(e, two)

		if rem.Sign() != 0 {
			res = Mul(res, b)
		}

		e.Div(e, two)

		if e.Sign() > 0 {
			b = Mul(b, b)
		}
	}

	return res
}

// Fac returns a!, saturating to Inf on overflow.
func Fac(a Number) Number {
	if a.inf {
		return Inf
	}

	res := One
	i := new(big.Int).Set(&a.val)
	one := big.NewInt(1)

	for i.Cmp(one) > 0 && !res.inf {
		res = Mul(res, Number{val: *i})
		i.Sub(i, one)
	}

	return res
}

// Gcd returns the greatest common divisor of a and b, or Inf if either
// operand is Inf.  It delegates to big.Int.GCD; it does not run a binary
// Euclidean loop of its own.
func Gcd(a, b Number) Number {
	if a.inf || b.inf {
		return Inf
	}

	var r big.Int

	r.GCD(nil, nil, &a.val, &b.val)

	return Number{val: r}
}

// Bin returns the binomial coefficient C(n,k), computed as an interleaved
// product/division to keep intermediate values small, saturating to Inf on
// overflow.  C(n,k) = 0 when k>n.
func Bin(n, k Number) Number {
	if n.inf || k.inf {
		return Inf
	}

	if k.val.Cmp(&n.val) > 0 {
		return Zero
	}

	// Bin(n,k) == Bin(n,n-k); pick whichever is smaller to minimise work.
	kk := new(big.Int).Set(&k.val)

	twoK := new(big.Int).Lsh(kk, 1)
	if twoK.Cmp(&n.val) > 0 {
		kk.Sub(&n.val, kk)
	}

	res := One
	i := big.NewInt(0)

	for i.Cmp(kk) < 0 {
		term := new(big.Int).Sub(&n.val, i)
		res = Mul(res, Number{val: *term})

		if res.inf {
			return Inf
		}

		i.Add(i, big.NewInt(1))
		res = Div(res, Number{val: *i})

		if res.inf {
			return Inf
		}
	}

	return res
}

// Log returns floor(log_s(t)), the number of times s divides into t before
// the quotient drops below s; Inf if either operand is Inf, s<=1 or t==0.
func Log(t, s Number) Number {
	if t.inf || s.inf {
		return Inf
	}

	one := big.NewInt(1)
	if s.val.Cmp(one) <= 0 || t.val.Sign() == 0 {
		return Inf
	}

	n := new(big.Int).Set(&t.val)
	count := big.NewInt(0)

	for n.Cmp(&s.val) >= 0 {
		n.Div(n, &s.val)
		count.Add(count, one)
	}

	return Number{val: *count}
}

// Cmp01 returns 1 if a==b, else 0; Inf if either operand is Inf.  Named to
// avoid colliding with the method Number.Cmp, which returns a three-way
// comparison rather than the CMP operation's boolean-as-Number result.
func Cmp01(a, b Number) Number {
	if a.inf || b.inf {
		return Inf
	}

	if a.val.Cmp(&b.val) == 0 {
		return One
	}

	return Zero
}

// Min returns the smaller of a and b.  Inf is the largest possible value.
func Min(a, b Number) Number {
	if a.inf {
		return b
	}

	if b.inf {
		return a
	}

	if a.val.Cmp(&b.val) <= 0 {
		return a
	}

	return b
}

// Max returns the larger of a and b.  Inf absorbs, since it is the largest
// possible value.
func Max(a, b Number) Number {
	if a.inf || b.inf {
		return Inf
	}

	if a.val.Cmp(&b.val) >= 0 {
		return a
	}

	return b
}
