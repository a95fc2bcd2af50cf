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

import "sync/atomic"

// halt is the one process-wide cancellation flag: the only justifiable
// shared state, per the source's Signals::HALT, re-expressed as an atomic
// boolean polled cooperatively instead of a bare global.
var halt atomic.Bool

// RequestHalt asks every Miner loop in this process to stop at its next
// outer-loop poll.
func RequestHalt() {
	halt.Store(true)
}

// HaltRequested reports whether RequestHalt has been called.
func HaltRequested() bool {
	return halt.Load()
}

// ResetHalt clears the halt flag. Intended for tests that construct more
// than one Miner run in the same process.
func ResetHalt() {
	halt.Store(false)
}
