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

	log "github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// StatusLine reports periodic miner progress. On an interactive terminal it
// redraws a single line in place; otherwise (redirected to a file, piped, or
// running under a supervisor) it falls back to plain log lines, since
// carriage-return redraws only make sense on a real TTY.
type StatusLine struct {
	tty bool
}

// NewStatusLine detects whether stdout is a terminal and builds a StatusLine
// accordingly.
func NewStatusLine() *StatusLine {
	return &StatusLine{tty: term.IsTerminal(int(os.Stdout.Fd()))}
}

// Update reports the number of candidates tried, matches found so far, and
// the run's progress fraction in [0,1] (0 if no deadline is configured).
func (s *StatusLine) Update(candidates, matches uint64, progress float64) {
	if s.tty {
		fmt.Fprintf(os.Stdout, "\rmine: candidates=%d matches=%d progress=%5.1f%%\033[K", candidates, matches, progress*100)
		return
	}

	log.Infof("mine: candidates=%d matches=%d progress=%.1f%%", candidates, matches, progress*100)
}

// Done finishes the status display, moving past the in-place line if one was
// drawn.
func (s *StatusLine) Done() {
	if s.tty {
		fmt.Fprintln(os.Stdout)
	}
}
