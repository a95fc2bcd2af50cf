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

// Package parser reads and writes the textual LODA assembly format:
//
//	<mnemonic> [<target>[,<source>]] [; <comment>]
//
// Operands are a bare nonnegative integer for CONSTANT, "$i" for DIRECT and
// "$$i" for INDIRECT; a leading minus sign is rejected as a syntax error.  Loop bodies (LPB ... LPE) are printed with
// two spaces of indentation per nesting level; indentation on input is
// insignificant.  Lines consisting only of a comment become a NOP operation
// carrying that comment, matching the original assembler's convention of
// preserving standalone comments as no-ops.
package parser

import (
	"fmt"
	"math/big"
	"os"
	"unicode"

	"github.com/loda-lang/loda-go/pkg/lang"
	"github.com/loda-lang/loda-go/pkg/number"
	"github.com/loda-lang/loda-go/pkg/util/source"
)

// scanner walks the rune contents of a source file, tracking a byte-ish
// (rune) offset for span-tracked syntax errors.
type scanner struct {
	file *source.File
	text []rune
	pos  int
}

// ParseFile reads and parses a program from disk.
func ParseFile(filename string) (lang.Program, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return lang.Program{}, err
	}

	return Parse(filename, bytes)
}

// Parse parses a program from in-memory source text.  name is used only for
// error messages (typically the originating filename).
func Parse(name string, contents []byte) (lang.Program, error) {
	file := source.NewSourceFile(name, contents)
	s := &scanner{file: file, text: file.Contents()}

	var prog lang.Program

	for {
		s.skipSpace()

		if s.atEnd() {
			break
		}

		op, err := s.readLine()
		if err != nil {
			return lang.Program{}, err
		}

		if op.Kind != lang.NOP || op.Comment != "" {
			prog.Push(op)
		}
	}

	return prog, nil
}

func (s *scanner) readLine() (lang.Operation, error) {
	var op lang.Operation

	if s.peek() == ';' {
		op.Comment = s.readCommentBody()
		return op, nil
	}

	kind, err := s.readMnemonic()
	if err != nil {
		return lang.Operation{}, err
	}

	op.Kind = kind
	meta := lang.MetadataOf(kind)

	s.skipInlineSpace()

	if meta.NumOperands >= 1 {
		target, err := s.readOperand()
		if err != nil {
			return lang.Operation{}, err
		}

		op.Target = target
	}

	if meta.NumOperands == 2 {
		if err := s.readSeparator(','); err != nil {
			return lang.Operation{}, err
		}

		source, err := s.readOperand()
		if err != nil {
			return lang.Operation{}, err
		}

		op.Source = source
	}

	s.skipInlineSpace()

	if s.peek() == ';' {
		op.Comment = s.readCommentBody()
	}

	return op, nil
}

// readCommentBody consumes the leading ';', trims one layer of surrounding
// blank space, and returns the rest of the physical line.
func (s *scanner) readCommentBody() string {
	s.advance() // ';'
	s.skipInlineSpace()

	start := s.pos
	for !s.atEnd() && s.text[s.pos] != '\n' {
		s.pos++
	}

	return string(s.text[start:s.pos])
}

func (s *scanner) readMnemonic() (lang.Kind, error) {
	start := s.pos

	c := s.peek()
	if c != '_' && !unicode.IsLetter(c) {
		return lang.NOP, s.errorf(start, s.pos+1, "expected an operation mnemonic")
	}

	for !s.atEnd() {
		c := s.text[s.pos]
		if c != '_' && !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			break
		}

		s.pos++
	}

	name := toLowerASCII(string(s.text[start:s.pos]))

	kind, ok := lang.KindByMnemonic(name)
	if !ok {
		return lang.NOP, s.errorf(start, s.pos, fmt.Sprintf("unknown operation: %s", name))
	}

	return kind, nil
}

func (s *scanner) readOperand() (lang.Operand, error) {
	if s.peek() == '$' {
		s.advance()

		if s.peek() == '$' {
			s.advance()

			v, err := s.readValue()
			if err != nil {
				return lang.Operand{}, err
			}

			return lang.NewIndirect(v), nil
		}

		v, err := s.readValue()
		if err != nil {
			return lang.Operand{}, err
		}

		return lang.NewDirect(v), nil
	}

	v, err := s.readValue()
	if err != nil {
		return lang.Operand{}, err
	}

	return lang.NewConstant(v), nil
}

// readValue reads a nonnegative decimal integer.  The assembly format has no
// unary minus: negative amounts are expressed with SUB rather than a
// negative CONSTANT, matching Number's nonnegative-only domain.
func (s *scanner) readValue() (number.Number, error) {
	start := s.pos

	if s.atEnd() || !unicode.IsDigit(s.text[s.pos]) {
		return number.Zero, s.errorf(start, start+1, "expected an integer value")
	}

	for !s.atEnd() && unicode.IsDigit(s.text[s.pos]) {
		s.pos++
	}

	digits := string(s.text[start:s.pos])

	v, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return number.Zero, s.errorf(start, s.pos, "malformed integer literal")
	}

	return number.FromBigInt(v), nil
}

func (s *scanner) readSeparator(r rune) error {
	s.skipInlineSpace()

	start := s.pos

	if s.atEnd() || s.text[s.pos] != r {
		return s.errorf(start, start+1, fmt.Sprintf("expected %q", r))
	}

	s.advance()
	s.skipInlineSpace()

	return nil
}

func (s *scanner) peek() rune {
	if s.atEnd() {
		return 0
	}

	return s.text[s.pos]
}

func (s *scanner) advance() {
	if !s.atEnd() {
		s.pos++
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.text)
}

// skipSpace skips whitespace and newlines between operations.
func (s *scanner) skipSpace() {
	for !s.atEnd() && unicode.IsSpace(s.text[s.pos]) {
		s.pos++
	}
}

// skipInlineSpace skips spaces and tabs, but not newlines, matching the
// original assembler's line-oriented reads.
func (s *scanner) skipInlineSpace() {
	for !s.atEnd() && (s.text[s.pos] == ' ' || s.text[s.pos] == '\t') {
		s.pos++
	}
}

func (s *scanner) errorf(start, end int, msg string) error {
	span := source.NewSpan(start, end)
	return s.file.SyntaxError(span, msg)
}

func toLowerASCII(s string) string {
	r := []rune(s)
	for i, c := range r {
		if c >= 'A' && c <= 'Z' {
			r[i] = c - 'A' + 'a'
		}
	}

	return string(r)
}
