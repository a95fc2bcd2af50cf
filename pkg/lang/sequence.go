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

import "github.com/loda-lang/loda-go/pkg/number"

// Sequence is an ordered list of Numbers; equality is elementwise.
type Sequence []number.Number

// Equal reports whether s and other have the same length and agree at every
// index.
func (s Sequence) Equal(other Sequence) bool {
	if len(s) != len(other) {
		return false
	}

	for i := range s {
		if !s[i].Equal(other[i]) {
			return false
		}
	}

	return true
}

// Prefix reports whether s agrees with other on the first n terms (n must
// not exceed either length).
func (s Sequence) Prefix(other Sequence, n int) bool {
	if len(s) < n || len(other) < n {
		return false
	}

	for i := 0; i < n; i++ {
		if !s[i].Equal(other[i]) {
			return false
		}
	}

	return true
}
