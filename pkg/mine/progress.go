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
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ProgressMonitor tracks elapsed wall-clock time against a target
// duration, periodically persisting a progress fraction and a checksummed
// checkpoint so a restarted process can resume its elapsed-time count.
type ProgressMonitor struct {
	startTime time.Time

	targetSeconds     int64
	checkpointSeconds int64

	progressFile   string
	checkpointFile string
	checkpointKey  uint64
}

// NewProgressMonitor constructs a monitor targeting targetSeconds. If
// checkpointFile already contains a validly checksummed value, its decoded
// elapsed-seconds count seeds checkpointSeconds; a missing, empty or
// corrupt checkpoint is silently ignored, matching the source's
// resume-if-possible behavior.
func NewProgressMonitor(targetSeconds int64, progressFile, checkpointFile string, checkpointKey uint64) *ProgressMonitor {
	m := &ProgressMonitor{
		startTime:      time.Now(),
		targetSeconds:  targetSeconds,
		progressFile:   progressFile,
		checkpointFile: checkpointFile,
		checkpointKey:  checkpointKey,
	}

	if checkpointFile == "" {
		return m
	}

	data, err := os.ReadFile(checkpointFile)
	if err != nil {
		return m
	}

	raw, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return m
	}

	if seconds, err := decode(checkpointKey, raw); err == nil {
		m.checkpointSeconds = int64(seconds)
	}

	return m
}

// GetElapsedSeconds returns the checkpoint's carried-over seconds plus the
// time elapsed since this monitor was constructed.
func (m *ProgressMonitor) GetElapsedSeconds() int64 {
	return m.checkpointSeconds + int64(time.Since(m.startTime).Seconds())
}

// IsTargetReached reports whether the elapsed time has reached the target.
func (m *ProgressMonitor) IsTargetReached() bool {
	return m.GetElapsedSeconds() >= m.targetSeconds
}

// GetProgress returns the elapsed fraction of the target, clamped to
// [0,1].
func (m *ProgressMonitor) GetProgress() float64 {
	if m.targetSeconds <= 0 {
		return 1.0
	}

	p := float64(m.GetElapsedSeconds()) / float64(m.targetSeconds)
	if p < 0.0 {
		p = 0.0
	}

	if p > 1.0 {
		p = 1.0
	}

	return p
}

// WriteProgress writes the current progress fraction to progressFile (if
// set) and the encoded checkpoint to checkpointFile (if set).
func (m *ProgressMonitor) WriteProgress() error {
	if m.progressFile != "" {
		if err := os.WriteFile(m.progressFile, []byte(fmt.Sprintf("%.3f\n", m.GetProgress())), 0o644); err != nil {
			return err
		}
	}

	if m.checkpointFile != "" {
		encoded := encode(m.checkpointKey, uint64(m.GetElapsedSeconds()))
		if err := os.WriteFile(m.checkpointFile, []byte(fmt.Sprintf("%d\n", encoded)), 0o644); err != nil {
			return err
		}
	}

	return nil
}

// checksum returns the population count (number of set bits) of v; encode
// stores it in the top 16 bits of a checkpoint.
func checksum(v uint64) uint64 {
	var c uint64

	for v != 0 {
		c += v & 1
		v >>= 1
	}

	return c
}

// encode combines checkpointKey and value into a single value that
// self-checks via a popcount stored in its top 16 bits.
func encode(key, value uint64) uint64 {
	tmp := (key >> 16) + value

	return tmp + (checksum(tmp) << 48)
}

// decode reverses encode, returning an error if the stored checksum
// disagrees with the recomputed one (a corrupt or foreign checkpoint).
func decode(key, value uint64) (uint64, error) {
	check := value >> 48
	masked := (value << 16) >> 16

	if check != checksum(masked) {
		return 0, fmt.Errorf("mine: checkpoint checksum mismatch")
	}

	return masked - (key >> 16), nil
}
