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
package lang

// Program is an ordered finite sequence of Operations.  It is a value
// object: once constructed, callers should treat its Ops slice as immutable
// while it is being executed, cloning before mutating in place.
type Program struct {
	Ops []Operation
}

// NewProgram constructs a Program from a slice of operations.
func NewProgram(ops []Operation) Program {
	return Program{Ops: ops}
}

// Len returns the number of operations.
func (p Program) Len() int {
	return len(p.Ops)
}

// Clone returns a deep copy of p (Operation values are already immutable
// value types, so cloning is a slice copy).
func (p Program) Clone() Program {
	ops := make([]Operation, len(p.Ops))
	copy(ops, p.Ops)

	return Program{Ops: ops}
}

// Push appends an operation.
func (p *Program) Push(op Operation) {
	p.Ops = append(p.Ops, op)
}

// Insert inserts op at position i, shifting later operations right.
func (p *Program) Insert(i int, op Operation) {
	p.Ops = append(p.Ops, Operation{})
	copy(p.Ops[i+1:], p.Ops[i:])
	p.Ops[i] = op
}

// RemoveAt removes the operation at position i.
func (p *Program) RemoveAt(i int) {
	p.Ops = append(p.Ops[:i], p.Ops[i+1:]...)
}
