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
	"os"
	"strings"

	"github.com/loda-lang/loda-go/pkg/lang"
)

const indentUnit = "  "

// Print renders a program in the textual assembly format, indenting loop
// bodies by two spaces per nesting level.
func Print(p lang.Program) string {
	var b strings.Builder

	depth := 0

	for _, op := range p.Ops {
		if op.Kind == lang.LPE && depth > 0 {
			depth--
		}

		b.WriteString(strings.Repeat(indentUnit, depth))
		b.WriteString(op.String())
		b.WriteByte('\n')

		if op.Kind == lang.LPB {
			depth++
		}
	}

	return b.String()
}

// WriteFile renders p and writes it to filename.
func WriteFile(filename string, p lang.Program) error {
	return os.WriteFile(filename, []byte(Print(p)), 0o644)
}
