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

// Package mine drives the search loop: it draws candidate programs from a
// generate.MultiGenerator, evaluates them, and reports matches to a caller
// supplied sink, while an AdaptiveScheduler paces how often it checks
// progress and a ProgressMonitor persists a resumable checkpoint.
package mine

import "time"

// AdaptiveScheduler decides how often a long-running loop should pause to
// check progress, backing off the check frequency as it learns how fast
// checks are, so that reaching the target duration is detected promptly
// without checking on every single iteration.
type AdaptiveScheduler struct {
	targetMillis int64

	setupTime time.Time
	startTime time.Time

	currentChecks int64
	totalChecks   int64
	nextCheck     int64
}

// NewAdaptiveScheduler constructs a scheduler targeting targetSeconds of
// wall-clock time.
func NewAdaptiveScheduler(targetSeconds int64) *AdaptiveScheduler {
	s := &AdaptiveScheduler{
		setupTime:    time.Now(),
		targetMillis: targetSeconds * 1000,
	}
	s.Reset()

	return s
}

// Reset restarts the elapsed-time clock and check cadence, without
// resetting the historical speed estimate (totalChecks / setupTime).
func (s *AdaptiveScheduler) Reset() {
	s.currentChecks = 0
	s.nextCheck = 1
	s.startTime = time.Now()
}

// IsTargetReached reports whether the target duration has elapsed. It
// must be called once per loop iteration: it only actually measures time
// every nextCheck calls, adaptively growing that interval (capped to
// [1,1000]) based on how many checks per 500ms have been observed so far.
func (s *AdaptiveScheduler) IsTargetReached() bool {
	s.currentChecks++
	s.totalChecks++

	if s.currentChecks < s.nextCheck {
		return false
	}

	elapsed := time.Since(s.startTime).Milliseconds()
	if elapsed >= s.targetMillis {
		return true
	}

	sinceSetup := time.Since(s.setupTime).Milliseconds()
	if sinceSetup < 1 {
		sinceSetup = 1
	}

	speed := (500 * s.totalChecks) / sinceSetup
	speed = clamp64(speed, 1, 1000)
	s.nextCheck += speed

	return false
}

func clamp64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
