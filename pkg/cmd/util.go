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
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/loda-lang/loda-go/pkg/lang"
	"github.com/loda-lang/loda-go/pkg/lang/parser"
	"github.com/loda-lang/loda-go/pkg/store"
	"github.com/loda-lang/loda-go/pkg/util/source"
)

// GetFlag reads an expected bool flag, or exits if the flag isn't registered.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetString reads an expected string flag, or exits if the flag isn't
// registered.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetInt reads an expected int flag, or exits if the flag isn't registered.
func GetInt(cmd *cobra.Command, flag string) int {
	r, err := cmd.Flags().GetInt(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetInt64 reads an expected int64 flag, or exits if the flag isn't
// registered.
func GetInt64(cmd *cobra.Command, flag string) int64 {
	r, err := cmd.Flags().GetInt64(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetFloat64 reads an expected float64 flag, or exits if the flag isn't
// registered.
func GetFloat64(cmd *cobra.Command, flag string) float64 {
	r, err := cmd.Flags().GetFloat64(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetStringArray reads an expected repeated string flag, or exits if the
// flag isn't registered.
func GetStringArray(cmd *cobra.Command, flag string) []string {
	r, err := cmd.Flags().GetStringArray(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// loadProgram parses filename, printing a highlighted syntax error and
// exiting the process on failure.
func loadProgram(filename string) lang.Program {
	p, err := parser.ParseFile(filename)
	if err != nil {
		if se, ok := err.(*source.SyntaxError); ok {
			printSyntaxError(filename, se)
		} else {
			fmt.Println(err)
		}

		os.Exit(2)
	}

	return p
}

// printSyntaxError prints a syntax error with a caret highlighting the
// offending span in its enclosing line.
func printSyntaxError(filename string, e *source.SyntaxError) {
	line := e.FirstEnclosingLine()
	span := e.Span()

	fmt.Printf("%s:%d: %s\n", filename, line.Number(), e.Message())
	fmt.Println(line.String())

	offset := span.Start() - line.Start()
	if offset < 0 {
		offset = 0
	}

	length := span.End() - span.Start()
	if length < 1 {
		length = 1
	}

	fmt.Print(strings.Repeat(" ", offset))
	fmt.Println(strings.Repeat("^", length))
}

// openProgramStore builds the ProgramStore backing SEQ resolution from the
// root "--programs-dir" flag, falling back to an empty in-memory store.
func openProgramStore(cmd *cobra.Command) store.ProgramStore {
	dir := GetString(cmd, "programs-dir")
	if dir == "" {
		return store.NewMapProgramStore()
	}

	return store.NewFileProgramStore(dir)
}

// openSequenceCatalog builds the SequenceCatalog backing check/mine from the
// root "--sequences-file" flag, falling back to an empty in-memory catalog.
func openSequenceCatalog(cmd *cobra.Command) store.SequenceCatalog {
	path := GetString(cmd, "sequences-file")
	if path == "" {
		return store.NewMapSequenceCatalog()
	}

	cat, err := store.LoadFileSequenceCatalog(path)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return cat
}
